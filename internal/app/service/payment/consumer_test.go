package payment

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/types"
)

type stubCreator struct {
	req       *CreatePaymentRequest
	requestID *string
	err       error
}

func (s *stubCreator) Create(_ context.Context, req *CreatePaymentRequest, requestID *string) (*models.Payment, error) {
	s.req = req
	s.requestID = requestID
	if s.err != nil {
		return nil, s.err
	}
	return &models.Payment{ID: 42, SubscriptionID: req.SubscriptionID, Status: types.PaymentStatusPending}, nil
}

func TestHandleCreatesPaymentWithMessageUUIDAsRequestID(t *testing.T) {
	creator := &stubCreator{}
	c := &PaymentRequestConsumer{creator: creator, log: zap.NewNop().Sugar()}

	body, err := json.Marshal(&events.PaymentRequest{
		SubscriptionID: 3,
		CustomerID:     1,
		Amount:         decimal.RequireFromString("9.99"),
		PaymentMethod:  types.PaymentMethodCreditCard,
	})
	require.NoError(t, err)

	msg := message.NewMessage("req-uuid-1", body)
	require.NoError(t, c.Handle(msg))

	require.NotNil(t, creator.requestID)
	require.Equal(t, "req-uuid-1", *creator.requestID)
	require.Equal(t, int64(3), creator.req.SubscriptionID)
	require.Equal(t, int64(1), creator.req.CustomerID)
	require.True(t, creator.req.Amount.Equal(decimal.RequireFromString("9.99")))
}

func TestHandleMalformedRequestErrors(t *testing.T) {
	creator := &stubCreator{}
	c := &PaymentRequestConsumer{creator: creator, log: zap.NewNop().Sugar()}

	require.Error(t, c.Handle(message.NewMessage("bad", []byte("not json"))))
	require.Nil(t, creator.req)
}

func TestHandleCreateErrorPropagates(t *testing.T) {
	creator := &stubCreator{err: errors.New("db down")}
	c := &PaymentRequestConsumer{creator: creator, log: zap.NewNop().Sugar()}

	body, err := json.Marshal(&events.PaymentRequest{SubscriptionID: 3, CustomerID: 1})
	require.NoError(t, err)

	require.Error(t, c.Handle(message.NewMessage("req-uuid-2", body)))
}
