package payment

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/ThreeDotsLabs/watermill/message"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/internal/platform/pubsub"
	"github.com/fatflowers/subscription/internal/platform/pubsub/router"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/metrics"
)

// paymentCreator is the slice of Service the consumer needs.
type paymentCreator interface {
	Create(ctx context.Context, req *CreatePaymentRequest, requestID *string) (*models.Payment, error)
}

// PaymentRequestConsumer turns PaymentRequest messages into PENDING
// payments. The message UUID rides along as the payment's request id, so
// broker redelivery finds the existing row instead of charging again.
type PaymentRequestConsumer struct {
	creator paymentCreator
	log     *zap.SugaredLogger
}

func NewPaymentRequestConsumer(svc *Service, log *zap.SugaredLogger) *PaymentRequestConsumer {
	return &PaymentRequestConsumer{creator: svc, log: log}
}

func (c *PaymentRequestConsumer) Handle(msg *message.Message) error {
	var req events.PaymentRequest
	if err := json.Unmarshal(msg.Payload, &req); err != nil {
		return fmt.Errorf("malformed payment request %s: %w", msg.UUID, err)
	}

	c.log.Infow("payment request received",
		"subscription_id", req.SubscriptionID, "customer_id", req.CustomerID, "amount", req.Amount)

	requestID := msg.UUID
	p, err := c.creator.Create(msg.Context(), &CreatePaymentRequest{
		SubscriptionID: req.SubscriptionID,
		CustomerID:     req.CustomerID,
		Amount:         req.Amount,
		PaymentMethod:  req.PaymentMethod,
	}, &requestID)
	if err != nil {
		metrics.ObserveSaga(metrics.SagaStagePayment, metrics.SagaResultError)
		return err
	}
	metrics.ObserveSaga(metrics.SagaStagePayment, metrics.SagaResultOK)

	c.log.Infow("payment created from request",
		"payment_id", p.ID, "subscription_id", p.SubscriptionID, "status", p.Status)
	return nil
}

func registerConsumer(cfg *cfgpkg.Config, bus pubsub.Bus, r *router.Router, c *PaymentRequestConsumer) error {
	sub, err := bus.Subscriber(cfg.Kafka.Groups.Payment)
	if err != nil {
		return err
	}
	r.AddNoPublishHandler("payment_requests", cfg.Kafka.Topics.PaymentRequests, sub, c.Handle)
	return nil
}
