package subscription

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/pkg/logctx"
	"github.com/fatflowers/subscription/pkg/types"
)

// RenewFromPayment advances the subscription after a SUCCESS payment event.
// The renewal and the idempotency marker commit in one transaction: a
// redelivered event either finds the marker (no-op) or finds no side effect
// at all. Without the marker the additive date computation would extend the
// subscription once per delivery.
func (s *Service) RenewFromPayment(ctx context.Context, subscriptionID, paymentID int64, at time.Time) error {
	if s.alreadyProcessed(paymentID) {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		done, err := s.markerExists(ctx, tx, paymentID)
		if err != nil || done {
			return err
		}

		var sub models.Subscription
		if err := tx.WithContext(ctx).First(&sub, subscriptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// The subscription is gone; consuming the event again will
				// not change that. Record the marker and move on.
				logctx.FromCtx(ctx, s.log).Warnw("payment event for missing subscription",
					"subscription_id", subscriptionID, "payment_id", paymentID)
				return s.writeMarker(ctx, tx, subscriptionID, paymentID, types.PaymentStatusSuccess, at)
			}
			return fmt.Errorf("failed to load subscription %d: %w", subscriptionID, err)
		}

		if sub.Status == types.SubscriptionStatusDeactive {
			// A stray payment must not revive a deactivated subscription.
			logctx.FromCtx(ctx, s.log).Warnw("ignoring payment for deactivated subscription",
				"subscription_id", subscriptionID, "payment_id", paymentID)
			return s.writeMarker(ctx, tx, subscriptionID, paymentID, types.PaymentStatusSuccess, at)
		}

		o, err := s.offers.GetByID(ctx, sub.OfferID)
		if err != nil {
			return err
		}

		next := NextRenewalDate(at, o.PeriodMonths)
		if err := s.applyVersioned(ctx, tx, &sub, map[string]interface{}{
			"status":            types.SubscriptionStatusActive,
			"next_renewal_date": next,
		}); err != nil {
			return err
		}

		logctx.FromCtx(ctx, s.log).Infow("subscription renewed",
			"subscription_id", sub.ID, "payment_id", paymentID, "next_renewal_date", next)
		return s.writeMarker(ctx, tx, subscriptionID, paymentID, types.PaymentStatusSuccess, at)
	})
	if err != nil {
		return err
	}

	s.rememberProcessed(paymentID)
	return nil
}

// SuspendFromPayment suspends the subscription after a FAILED payment
// event. The renewal date is left untouched. Suspension is idempotent on
// status, but the marker is still written so redeliveries short-circuit.
func (s *Service) SuspendFromPayment(ctx context.Context, subscriptionID, paymentID int64, at time.Time) error {
	if s.alreadyProcessed(paymentID) {
		return nil
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		done, err := s.markerExists(ctx, tx, paymentID)
		if err != nil || done {
			return err
		}

		var sub models.Subscription
		if err := tx.WithContext(ctx).First(&sub, subscriptionID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logctx.FromCtx(ctx, s.log).Warnw("payment event for missing subscription",
					"subscription_id", subscriptionID, "payment_id", paymentID)
				return s.writeMarker(ctx, tx, subscriptionID, paymentID, types.PaymentStatusFailed, at)
			}
			return fmt.Errorf("failed to load subscription %d: %w", subscriptionID, err)
		}

		if sub.Status != types.SubscriptionStatusSuspend {
			if err := s.applyVersioned(ctx, tx, &sub, map[string]interface{}{
				"status": types.SubscriptionStatusSuspend,
			}); err != nil {
				return err
			}
			logctx.FromCtx(ctx, s.log).Infow("subscription suspended after failed payment",
				"subscription_id", sub.ID, "payment_id", paymentID)
		}
		return s.writeMarker(ctx, tx, subscriptionID, paymentID, types.PaymentStatusFailed, at)
	})
	if err != nil {
		return err
	}

	s.rememberProcessed(paymentID)
	return nil
}

func (s *Service) alreadyProcessed(paymentID int64) bool {
	_, ok := s.seen.Get(strconv.FormatInt(paymentID, 10))
	return ok
}

func (s *Service) rememberProcessed(paymentID int64) {
	s.seen.SetDefault(strconv.FormatInt(paymentID, 10), struct{}{})
}

func (s *Service) markerExists(ctx context.Context, tx *gorm.DB, paymentID int64) (bool, error) {
	var count int64
	if err := tx.WithContext(ctx).
		Model(&models.ProcessedPaymentEvent{}).
		Where("payment_id = ?", paymentID).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check processed marker: %w", err)
	}
	return count > 0, nil
}

func (s *Service) writeMarker(ctx context.Context, tx *gorm.DB, subscriptionID, paymentID int64, status types.PaymentStatus, at time.Time) error {
	marker := &models.ProcessedPaymentEvent{
		PaymentID:      paymentID,
		SubscriptionID: subscriptionID,
		Status:         status,
		ProcessedAt:    at.UTC(),
	}
	if err := tx.WithContext(ctx).Create(marker).Error; err != nil {
		return fmt.Errorf("failed to write processed marker for payment %d: %w", paymentID, err)
	}
	return nil
}
