package notification

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/internal/platform/pubsub"
	"github.com/fatflowers/subscription/internal/platform/pubsub/router"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/metrics"
)

// dispatcher is the slice of Service the consumer needs.
type dispatcher interface {
	ProcessPaymentEvent(ctx context.Context, ev *events.PaymentEvent) error
}

// PaymentEventConsumer is the notification group's independent view of the
// payment-events stream. It shares no ordering with the subscription
// engine's consumer.
type PaymentEventConsumer struct {
	svc dispatcher
	log *zap.SugaredLogger
}

func NewPaymentEventConsumer(svc *Service, log *zap.SugaredLogger) *PaymentEventConsumer {
	return &PaymentEventConsumer{svc: svc, log: log}
}

func (c *PaymentEventConsumer) Handle(msg *message.Message) error {
	var ev events.PaymentEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("malformed payment event %s: %w", msg.UUID, err)
	}

	c.log.Infow("payment event received for notification",
		"payment_id", ev.PaymentID, "customer_id", ev.CustomerID, "status", ev.Status)

	err := c.svc.ProcessPaymentEvent(msg.Context(), &ev)
	if err != nil {
		metrics.ObserveSaga(metrics.SagaStageNotification, metrics.SagaResultError)
		return err
	}
	metrics.ObserveSaga(metrics.SagaStageNotification, metrics.SagaResultOK)
	return nil
}

func registerConsumer(cfg *cfgpkg.Config, bus pubsub.Bus, r *router.Router, c *PaymentEventConsumer) error {
	sub, err := bus.Subscriber(cfg.Kafka.Groups.Notification)
	if err != nil {
		return err
	}
	r.AddNoPublishHandler("notification_payment_events", cfg.Kafka.Topics.PaymentEvents, sub, c.Handle)
	return nil
}
