package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/internal/platform/pubsub"
	"github.com/fatflowers/subscription/internal/platform/pubsub/router"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/metrics"
	"github.com/fatflowers/subscription/pkg/types"
)

func observeOutcome(stage string, err error) {
	if err != nil {
		metrics.ObserveSaga(stage, metrics.SagaResultError)
		return
	}
	metrics.ObserveSaga(stage, metrics.SagaResultOK)
}

// lifecycleEngine is the slice of Service the consumer needs.
type lifecycleEngine interface {
	RenewFromPayment(ctx context.Context, subscriptionID, paymentID int64, at time.Time) error
	SuspendFromPayment(ctx context.Context, subscriptionID, paymentID int64, at time.Time) error
}

// PaymentEventConsumer reacts to payment outcomes: SUCCESS renews, FAILED
// suspends, PENDING is informational. A returned error leaves the message
// unacked so the router redelivers it.
type PaymentEventConsumer struct {
	engine lifecycleEngine
	log    *zap.SugaredLogger
}

func NewPaymentEventConsumer(svc *Service, log *zap.SugaredLogger) *PaymentEventConsumer {
	return &PaymentEventConsumer{engine: svc, log: log}
}

func (c *PaymentEventConsumer) Handle(msg *message.Message) error {
	var ev events.PaymentEvent
	if err := json.Unmarshal(msg.Payload, &ev); err != nil {
		return fmt.Errorf("malformed payment event %s: %w", msg.UUID, err)
	}

	c.log.Infow("payment event received",
		"payment_id", ev.PaymentID, "subscription_id", ev.SubscriptionID, "status", ev.Status)

	at := ev.EventTime
	if at.IsZero() {
		at = time.Now().UTC()
	}

	ctx := msg.Context()
	switch ev.Status {
	case types.PaymentStatusSuccess:
		err := c.engine.RenewFromPayment(ctx, ev.SubscriptionID, ev.PaymentID, at)
		observeOutcome(metrics.SagaStageRenewal, err)
		return err
	case types.PaymentStatusFailed:
		err := c.engine.SuspendFromPayment(ctx, ev.SubscriptionID, ev.PaymentID, at)
		observeOutcome(metrics.SagaStageSuspension, err)
		return err
	default:
		c.log.Infow("no action for payment status",
			"payment_id", ev.PaymentID, "status", ev.Status)
		return nil
	}
}

func registerConsumer(cfg *cfgpkg.Config, bus pubsub.Bus, r *router.Router, c *PaymentEventConsumer) error {
	sub, err := bus.Subscriber(cfg.Kafka.Groups.Subscription)
	if err != nil {
		return err
	}
	r.AddNoPublishHandler("subscription_payment_events", cfg.Kafka.Topics.PaymentEvents, sub, c.Handle)
	return nil
}
