package notification

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/types"
)

func TestSubjectForStatus(t *testing.T) {
	require.Equal(t, "Payment Successful - Subscription Renewed", SubjectForStatus(types.PaymentStatusSuccess))
	require.Equal(t, "Payment Failed - Action Required", SubjectForStatus(types.PaymentStatusFailed))
	require.Equal(t, "Payment Processing - Please Wait", SubjectForStatus(types.PaymentStatusPending))
	require.Equal(t, "Payment Notification", SubjectForStatus(types.PaymentStatusRefunded))
}

func TestTypeForStatus(t *testing.T) {
	require.Equal(t, types.NotificationTypePaymentSuccess, TypeForStatus(types.PaymentStatusSuccess))
	require.Equal(t, types.NotificationTypePaymentFailed, TypeForStatus(types.PaymentStatusFailed))
	require.Equal(t, types.NotificationTypePaymentPending, TypeForStatus(types.PaymentStatusPending))
}

func TestContentForEventSuccess(t *testing.T) {
	ev := &events.PaymentEvent{
		PaymentID:     42,
		Amount:        decimal.RequireFromString("9.9"),
		Currency:      "USD",
		Status:        types.PaymentStatusSuccess,
		PaymentMethod: types.PaymentMethodCreditCard,
		EventTime:     time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}

	content := ContentForEvent(ev)
	require.Contains(t, content, "$9.90 USD")
	require.Contains(t, content, "Transaction ID: 42")
	require.Contains(t, content, "2026-02-01 12:00:00 UTC")
	require.Contains(t, content, "Your subscription has been renewed")
}

func TestContentForEventFailedDefaultsReason(t *testing.T) {
	ev := &events.PaymentEvent{
		PaymentID: 43,
		Amount:    decimal.NewFromInt(10),
		Currency:  "USD",
		Status:    types.PaymentStatusFailed,
	}

	content := ContentForEvent(ev)
	require.Contains(t, content, "Reason: Payment declined")

	ev.ErrorMessage = "card expired"
	require.Contains(t, ContentForEvent(ev), "Reason: card expired")
}

func TestRecipientForCustomer(t *testing.T) {
	require.Equal(t, "customer7@example.com", RecipientForCustomer(7))
}
