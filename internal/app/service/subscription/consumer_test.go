package subscription

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/types"
)

type stubEngine struct {
	renewed   []int64
	suspended []int64
	lastAt    time.Time
	err       error
}

func (s *stubEngine) RenewFromPayment(_ context.Context, subscriptionID, paymentID int64, at time.Time) error {
	s.renewed = append(s.renewed, paymentID)
	s.lastAt = at
	_ = subscriptionID
	return s.err
}

func (s *stubEngine) SuspendFromPayment(_ context.Context, subscriptionID, paymentID int64, at time.Time) error {
	s.suspended = append(s.suspended, paymentID)
	s.lastAt = at
	_ = subscriptionID
	return s.err
}

func eventMessage(t *testing.T, ev *events.PaymentEvent) *message.Message {
	t.Helper()
	body, err := json.Marshal(ev)
	require.NoError(t, err)
	return message.NewMessage("msg-1", body)
}

func TestHandleSuccessRenews(t *testing.T) {
	engine := &stubEngine{}
	c := &PaymentEventConsumer{engine: engine, log: zap.NewNop().Sugar()}

	at := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	msg := eventMessage(t, &events.PaymentEvent{
		PaymentID:      7,
		SubscriptionID: 3,
		CustomerID:     1,
		Amount:         decimal.NewFromInt(10),
		Status:         types.PaymentStatusSuccess,
		EventTime:      at,
	})

	require.NoError(t, c.Handle(msg))
	require.Equal(t, []int64{7}, engine.renewed)
	require.Empty(t, engine.suspended)
	require.Equal(t, at, engine.lastAt)
}

func TestHandleFailedSuspends(t *testing.T) {
	engine := &stubEngine{}
	c := &PaymentEventConsumer{engine: engine, log: zap.NewNop().Sugar()}

	msg := eventMessage(t, &events.PaymentEvent{
		PaymentID:      9,
		SubscriptionID: 3,
		Status:         types.PaymentStatusFailed,
		ErrorMessage:   "card declined",
	})

	require.NoError(t, c.Handle(msg))
	require.Equal(t, []int64{9}, engine.suspended)
	require.Empty(t, engine.renewed)
	// Zero event time falls back to the processing instant.
	require.WithinDuration(t, time.Now().UTC(), engine.lastAt, time.Minute)
}

func TestHandlePendingAcksWithoutAction(t *testing.T) {
	engine := &stubEngine{}
	c := &PaymentEventConsumer{engine: engine, log: zap.NewNop().Sugar()}

	msg := eventMessage(t, &events.PaymentEvent{
		PaymentID: 11,
		Status:    types.PaymentStatusPending,
	})

	require.NoError(t, c.Handle(msg))
	require.Empty(t, engine.renewed)
	require.Empty(t, engine.suspended)
}

func TestHandleMalformedPayloadErrors(t *testing.T) {
	engine := &stubEngine{}
	c := &PaymentEventConsumer{engine: engine, log: zap.NewNop().Sugar()}

	msg := message.NewMessage("bad-1", []byte("{not json"))
	require.Error(t, c.Handle(msg))
	require.Empty(t, engine.renewed)
	require.Empty(t, engine.suspended)
}

func TestHandleEngineErrorPropagates(t *testing.T) {
	engine := &stubEngine{err: context.DeadlineExceeded}
	c := &PaymentEventConsumer{engine: engine, log: zap.NewNop().Sugar()}

	msg := eventMessage(t, &events.PaymentEvent{
		PaymentID: 13,
		Status:    types.PaymentStatusSuccess,
	})

	require.Error(t, c.Handle(msg))
}
