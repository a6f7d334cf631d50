package payment

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/internal/platform/pubsub"
	"github.com/fatflowers/subscription/pkg/apperr"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/logctx"
	"github.com/fatflowers/subscription/pkg/tool"
	"github.com/fatflowers/subscription/pkg/types"
)

// Service is the payment lifecycle engine. Payments are created PENDING and
// resolved exactly once through Confirm or Fail; only the terminal outcome
// is published as a PaymentEvent. The confirm/fail endpoints stand in for
// the gateway callback and are the sole driver of the PENDING->terminal
// transition.
type Service struct {
	cfg      *cfgpkg.Config
	log      *zap.SugaredLogger
	db       *gorm.DB
	producer *pubsub.Producer
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger, db *gorm.DB, producer *pubsub.Producer) *Service {
	return &Service{cfg: cfg, log: log, db: db, producer: producer}
}

type CreatePaymentRequest struct {
	SubscriptionID int64               `json:"subscription_id" binding:"required"`
	CustomerID     int64               `json:"customer_id" binding:"required"`
	Amount         decimal.Decimal     `json:"amount" binding:"required"`
	Currency       string              `json:"currency"`
	PaymentMethod  types.PaymentMethod `json:"payment_method"`
}

// Create persists a PENDING payment. requestID carries the message id when
// the creation came over the bus; the unique index on it makes redelivered
// requests return the already-created payment instead of charging twice.
// No event is published here: the outcome event follows from Confirm/Fail.
func (s *Service) Create(ctx context.Context, req *CreatePaymentRequest, requestID *string) (*models.Payment, error) {
	if req.SubscriptionID == 0 || req.CustomerID == 0 || req.Amount.IsNegative() {
		return nil, fmt.Errorf("invalid payment fields: %w", apperr.ErrValidation)
	}

	if requestID != nil {
		if existing, err := s.getByRequestID(ctx, *requestID); err == nil {
			logctx.FromCtx(ctx, s.log).Infow("payment request already processed",
				"request_id", *requestID, "payment_id", existing.ID)
			return existing, nil
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return nil, err
		}
	}

	currency := req.Currency
	if currency == "" {
		currency = s.cfg.Payment.Currency
	}
	method := req.PaymentMethod
	if method == "" {
		method = types.PaymentMethod(s.cfg.Payment.DefaultMethod)
	}

	p := &models.Payment{
		SubscriptionID:        req.SubscriptionID,
		CustomerID:            req.CustomerID,
		Amount:                req.Amount,
		Currency:              currency,
		Status:                types.PaymentStatusPending,
		PaymentMethod:         method,
		ProviderTransactionID: tool.GenerateUUIDV7(),
		RequestID:             requestID,
	}
	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		// A concurrent redelivery may have won the unique-index race.
		if requestID != nil {
			if existing, lookupErr := s.getByRequestID(ctx, *requestID); lookupErr == nil {
				return existing, nil
			}
		}
		return nil, fmt.Errorf("failed to create payment: %w", err)
	}

	logctx.FromCtx(ctx, s.log).Infow("payment created",
		"payment_id", p.ID, "subscription_id", p.SubscriptionID, "amount", p.Amount, "status", p.Status)
	return p, nil
}

// Confirm resolves a PENDING payment to SUCCESS and publishes the outcome.
// The state change commits before the publish: a publish failure surfaces as
// ErrMessaging, and retrying Confirm on the already-SUCCESS payment
// republishes the event without touching the row. Confirming a FAILED
// payment is rejected.
func (s *Service) Confirm(ctx context.Context, id int64) (*models.Payment, error) {
	p, err := s.resolve(ctx, id, types.PaymentStatusSuccess, "")
	if err != nil {
		return nil, err
	}
	if err := s.publishEvent(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

// Fail resolves a PENDING payment to FAILED with a reason and publishes the
// outcome. Retrying Fail on the already-FAILED payment republishes the event
// with the originally recorded reason.
func (s *Service) Fail(ctx context.Context, id int64, reason string) (*models.Payment, error) {
	if reason == "" {
		reason = "payment declined"
	}
	p, err := s.resolve(ctx, id, types.PaymentStatusFailed, reason)
	if err != nil {
		return nil, err
	}
	if err := s.publishEvent(ctx, p); err != nil {
		return p, err
	}
	return p, nil
}

func (s *Service) resolve(ctx context.Context, id int64, to types.PaymentStatus, errorMessage string) (*models.Payment, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.Status == to {
		// Retried resolution of an already-resolved payment. The caller
		// republishes the outcome event, which recovers a publish failure
		// after the original commit; consumers dedup by payment id.
		logctx.FromCtx(ctx, s.log).Infow("payment already resolved, republishing outcome",
			"payment_id", p.ID, "subscription_id", p.SubscriptionID, "status", p.Status)
		return p, nil
	}
	if !p.Resolvable() {
		return nil, fmt.Errorf("payment %d is %s: %w", id, p.Status, apperr.ErrInvalidState)
	}

	// Guarded update: the WHERE on status makes resolution first-writer-wins
	// even when two resolvers race.
	res := s.db.WithContext(ctx).
		Model(&models.Payment{}).
		Where("id = ? AND status = ?", id, types.PaymentStatusPending).
		Updates(map[string]interface{}{"status": to, "error_message": errorMessage})
	if res.Error != nil {
		return nil, fmt.Errorf("failed to resolve payment %d: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, fmt.Errorf("payment %d already resolved: %w", id, apperr.ErrInvalidState)
	}

	p.Status = to
	p.ErrorMessage = errorMessage
	logctx.FromCtx(ctx, s.log).Infow("payment resolved",
		"payment_id", p.ID, "subscription_id", p.SubscriptionID, "status", to)
	return p, nil
}

func (s *Service) publishEvent(ctx context.Context, p *models.Payment) error {
	ev := &events.PaymentEvent{
		PaymentID:      p.ID,
		SubscriptionID: p.SubscriptionID,
		CustomerID:     p.CustomerID,
		Amount:         p.Amount,
		Currency:       p.Currency,
		Status:         p.Status,
		PaymentMethod:  p.PaymentMethod,
		ErrorMessage:   p.ErrorMessage,
		EventTime:      time.Now().UTC(),
	}
	key := strconv.FormatInt(p.SubscriptionID, 10)
	return s.producer.Publish(ctx, s.cfg.Kafka.Topics.PaymentEvents, key, ev)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load payment %d: %w", id, err)
	}
	return &p, nil
}

func (s *Service) getByRequestID(ctx context.Context, requestID string) (*models.Payment, error) {
	var p models.Payment
	if err := s.db.WithContext(ctx).Where("request_id = ?", requestID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("payment request %s: %w", requestID, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to load payment by request id: %w", err)
	}
	return &p, nil
}

func (s *Service) ListBySubscription(ctx context.Context, subscriptionID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	if err := s.db.WithContext(ctx).
		Where("subscription_id = ?", subscriptionID).
		Order("id").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]*models.Payment, error) {
	var payments []*models.Payment
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id").
		Find(&payments).Error; err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	return payments, nil
}

// FailStale fails every payment stuck in PENDING since before the cutoff.
// Each failure publishes a FAILED event, so the ordinary saga suspends the
// subscription and notifies the customer. Per-item errors are logged and do
// not stop the sweep.
func (s *Service) FailStale(ctx context.Context, cutoff time.Time) (int, error) {
	var stale []*models.Payment
	if err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", types.PaymentStatusPending, cutoff.UTC()).
		Find(&stale).Error; err != nil {
		return 0, fmt.Errorf("failed to query stale payments: %w", err)
	}

	failed := 0
	for _, p := range stale {
		if _, err := s.Fail(ctx, p.ID, "payment timed out"); err != nil {
			s.log.Errorw("failed to time out payment", "payment_id", p.ID, "err", err)
			continue
		}
		failed++
	}
	return failed, nil
}
