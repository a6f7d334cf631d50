package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/fatflowers/subscription/internal/models"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/logctx"
	"github.com/fatflowers/subscription/pkg/types"
)

// Service renders and delivers notifications and records the outcome. A
// delivery failure is returned to the message router, which redelivers with
// backoff; each attempt is recorded on the row, and the row goes FAILED
// when the retry budget is spent. The old behavior of swallowing delivery
// errors and acking anyway is gone on purpose.
type Service struct {
	cfg     *cfgpkg.Config
	log     *zap.SugaredLogger
	db      *gorm.DB
	senders SenderRegistry
}

func NewService(cfg *cfgpkg.Config, log *zap.SugaredLogger, db *gorm.DB, senders SenderRegistry) *Service {
	return &Service{cfg: cfg, log: log, db: db, senders: senders}
}

// ProcessPaymentEvent is the unit of work per consumed payment event:
// find-or-create the notification row for (paymentId, type), attempt
// delivery, record the outcome. Safe to re-run with the same event.
func (s *Service) ProcessPaymentEvent(ctx context.Context, ev *events.PaymentEvent) error {
	n, err := s.findOrCreate(ctx, ev)
	if err != nil {
		return err
	}
	if n.Delivered() {
		logctx.FromCtx(ctx, s.log).Infow("notification already sent, skipping",
			"notification_id", n.ID, "payment_id", ev.PaymentID)
		return nil
	}
	return s.deliver(ctx, n)
}

func (s *Service) findOrCreate(ctx context.Context, ev *events.PaymentEvent) (*models.Notification, error) {
	notifType := TypeForStatus(ev.Status)

	var existing models.Notification
	err := s.db.WithContext(ctx).
		Where("related_entity_id = ? AND type = ?", ev.PaymentID, notifType).
		First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to look up notification: %w", err)
	}

	n := &models.Notification{
		CustomerID:      ev.CustomerID,
		Type:            notifType,
		Channel:         types.NotificationChannelEmail,
		Recipient:       RecipientForCustomer(ev.CustomerID),
		Subject:         SubjectForStatus(ev.Status),
		Content:         ContentForEvent(ev),
		Status:          types.NotificationStatusPending,
		RelatedEntityID: ev.PaymentID,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		// Lost a redelivery race on the unique index; reuse the winner.
		if lookupErr := s.db.WithContext(ctx).
			Where("related_entity_id = ? AND type = ?", ev.PaymentID, notifType).
			First(&existing).Error; lookupErr == nil {
			return &existing, nil
		}
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	return n, nil
}

func (s *Service) deliver(ctx context.Context, n *models.Notification) error {
	sender, err := s.senders.For(n.Channel)
	if err != nil {
		return err
	}

	log := logctx.FromCtx(ctx, s.log)
	log.Infow("sending notification",
		"notification_id", n.ID, "type", n.Type, "channel", n.Channel, "recipient", n.Recipient)

	if sendErr := sender.Send(ctx, n); sendErr != nil {
		n.RetryCount++
		n.ErrorMessage = sendErr.Error()
		if n.RetryCount >= s.cfg.Consumer.MaxRetries {
			n.Status = types.NotificationStatusFailed
		} else {
			n.Status = types.NotificationStatusRetrying
		}
		if err := s.db.WithContext(ctx).Save(n).Error; err != nil {
			log.Errorw("failed to record delivery failure", "notification_id", n.ID, "err", err)
		}
		log.Errorw("notification delivery failed",
			"notification_id", n.ID, "retry_count", n.RetryCount, "status", n.Status, "err", sendErr)
		return fmt.Errorf("deliver notification %d: %w", n.ID, sendErr)
	}

	now := time.Now().UTC()
	n.Status = types.NotificationStatusSent
	n.SentAt = &now
	n.ErrorMessage = ""
	if err := s.db.WithContext(ctx).Save(n).Error; err != nil {
		return fmt.Errorf("failed to record delivery: %w", err)
	}
	log.Infow("notification sent", "notification_id", n.ID, "recipient", n.Recipient)
	return nil
}

func (s *Service) ListByCustomer(ctx context.Context, customerID int64) ([]*models.Notification, error) {
	var list []*models.Notification
	if err := s.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id desc").
		Find(&list).Error; err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	return list, nil
}
