package subscription

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/subscription/internal/app/service/offer"
	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/internal/platform/pubsub"
	"github.com/fatflowers/subscription/pkg/apperr"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/logctx"
	"github.com/fatflowers/subscription/pkg/types"
)

const (
	// processedTTL bounds the in-memory dedup cache. The durable marker
	// table remains authoritative; the cache only short-circuits hot
	// redeliveries.
	processedTTL     = 30 * time.Minute
	processedCleanup = 10 * time.Minute
)

// Service is the subscription lifecycle engine. All mutations go through
// version-checked updates so the event consumer and the REST surface cannot
// silently overwrite each other.
type Service struct {
	cfg      *cfgpkg.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	offers   *offer.Service
	producer *pubsub.Producer
	seen     *cache.Cache
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger, db *gorm.DB, offers *offer.Service, producer *pubsub.Producer) *Service {
	return &Service{
		cfg:      cfg,
		log:      log,
		db:       db,
		offers:   offers,
		producer: producer,
		seen:     cache.New(processedTTL, processedCleanup),
	}
}

// NextRenewalDate computes the absolute next renewal instant: at + period
// months, in UTC. Renewal always recomputes from the triggering instant;
// the date is never advanced incrementally, so applying the same signal
// twice would double-extend it. Callers must dedup by payment id first.
func NextRenewalDate(at time.Time, periodMonths int) time.Time {
	return at.UTC().AddDate(0, periodMonths, 0)
}

type CreateSubscriptionRequest struct {
	CustomerID int64 `json:"customer_id" binding:"required"`
	OfferID    int64 `json:"offer_id" binding:"required"`
}

// Create starts a new ACTIVE subscription against an active offer.
func (s *Service) Create(ctx context.Context, req *CreateSubscriptionRequest) (*models.Subscription, error) {
	o, err := s.offers.GetByID(ctx, req.OfferID)
	if err != nil {
		return nil, err
	}
	if !o.Active() {
		return nil, fmt.Errorf("offer %d is not active: %w", o.ID, apperr.ErrInvalidState)
	}

	var existing models.Subscription
	err = s.db.WithContext(ctx).
		Where("customer_id = ? AND offer_id = ?", req.CustomerID, req.OfferID).
		First(&existing).Error
	if err == nil {
		return nil, fmt.Errorf("customer %d already subscribes to offer %d: %w",
			req.CustomerID, req.OfferID, apperr.ErrDuplicateSubscription)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check existing subscription: %w", err)
	}

	now := time.Now().UTC()
	sub := &models.Subscription{
		CustomerID:      req.CustomerID,
		OfferID:         req.OfferID,
		NextRenewalDate: NextRenewalDate(now, o.PeriodMonths),
		Status:          types.SubscriptionStatusActive,
	}
	if err := s.db.WithContext(ctx).Create(sub).Error; err != nil {
		// A concurrent create may have won the unique-index race after the
		// pre-check passed.
		if lookupErr := s.db.WithContext(ctx).
			Where("customer_id = ? AND offer_id = ?", req.CustomerID, req.OfferID).
			First(&existing).Error; lookupErr == nil {
			return nil, fmt.Errorf("customer %d already subscribes to offer %d: %w",
				req.CustomerID, req.OfferID, apperr.ErrDuplicateSubscription)
		}
		return nil, fmt.Errorf("failed to create subscription: %w", err)
	}
	logctx.FromCtx(ctx, s.log).Infow("subscription created",
		"subscription_id", sub.ID, "customer_id", sub.CustomerID, "offer_id", sub.OfferID,
		"next_renewal_date", sub.NextRenewalDate)
	return sub, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Subscription, error) {
	var sub models.Subscription
	if err := s.db.WithContext(ctx).First(&sub, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("subscription %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load subscription %d: %w", id, err)
	}
	return &sub, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subs, nil
}

// GetOverdue returns exactly the ACTIVE subscriptions whose renewal date
// has passed at the given instant. Used by the renewal scheduler.
func (s *Service) GetOverdue(ctx context.Context, now time.Time) ([]*models.Subscription, error) {
	var subs []*models.Subscription
	if err := s.db.WithContext(ctx).
		Where("status = ? AND next_renewal_date < ?", types.SubscriptionStatusActive, now.UTC()).
		Order("next_renewal_date").
		Find(&subs).Error; err != nil {
		return nil, fmt.Errorf("failed to query overdue subscriptions: %w", err)
	}
	return subs, nil
}

// RequestRenewal publishes a PaymentRequest for the subscription. The
// renewal itself happens when the terminal PaymentEvent comes back; the
// response to the caller is accepted-for-processing, not renewed.
func (s *Service) RequestRenewal(ctx context.Context, id int64) error {
	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if sub.Status == types.SubscriptionStatusDeactive {
		return fmt.Errorf("subscription %d is deactivated: %w", id, apperr.ErrInvalidState)
	}
	o, err := s.offers.GetByID(ctx, sub.OfferID)
	if err != nil {
		return err
	}

	req := &events.PaymentRequest{
		SubscriptionID: sub.ID,
		CustomerID:     sub.CustomerID,
		Amount:         o.Price,
		PaymentMethod:  types.PaymentMethod(s.cfg.Payment.DefaultMethod),
	}
	key := strconv.FormatInt(sub.ID, 10)
	if err := s.producer.Publish(ctx, s.cfg.Kafka.Topics.PaymentRequests, key, req); err != nil {
		return fmt.Errorf("renewal request for subscription %d: %w", id, err)
	}
	logctx.FromCtx(ctx, s.log).Infow("payment request published",
		"subscription_id", sub.ID, "amount", o.Price, "customer_id", sub.CustomerID)
	return nil
}

// UpdateStatus applies a manual status change, validated against the
// transition table. Same-state updates are accepted as no-ops.
func (s *Service) UpdateStatus(ctx context.Context, id int64, next types.SubscriptionStatus) (*models.Subscription, error) {
	if !next.Valid() {
		return nil, fmt.Errorf("unknown status %q: %w", next, apperr.ErrValidation)
	}
	sub, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sub.Status.CanTransitionTo(next) {
		return nil, fmt.Errorf("transition %s -> %s not allowed: %w", sub.Status, next, apperr.ErrInvalidState)
	}
	if sub.Status == next {
		return sub, nil
	}
	if err := s.applyVersioned(ctx, s.db, sub, map[string]interface{}{"status": next}); err != nil {
		return nil, err
	}
	sub.Status = next
	sub.Version++
	logctx.FromCtx(ctx, s.log).Infow("subscription status updated",
		"subscription_id", id, "status", next)
	return sub, nil
}

// applyVersioned performs an optimistic-locked update. RowsAffected == 0
// means another writer got there first; the caller sees ErrConflict and can
// retry against fresh state (the message router does this for consumers).
func (s *Service) applyVersioned(ctx context.Context, tx *gorm.DB, sub *models.Subscription, fields map[string]interface{}) error {
	fields["version"] = sub.Version + 1
	res := tx.WithContext(ctx).
		Model(&models.Subscription{}).
		Where("id = ? AND version = ?", sub.ID, sub.Version).
		Updates(fields)
	if res.Error != nil {
		return fmt.Errorf("failed to update subscription %d: %w", sub.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("subscription %d version %d: %w", sub.ID, sub.Version, apperr.ErrConflict)
	}
	return nil
}
