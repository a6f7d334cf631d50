package notification

import (
	"fmt"

	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/types"
)

// Subject lines and bodies are a small fixed set keyed by payment status.

func SubjectForStatus(status types.PaymentStatus) string {
	switch status {
	case types.PaymentStatusSuccess:
		return "Payment Successful - Subscription Renewed"
	case types.PaymentStatusFailed:
		return "Payment Failed - Action Required"
	case types.PaymentStatusPending:
		return "Payment Processing - Please Wait"
	default:
		return "Payment Notification"
	}
}

func TypeForStatus(status types.PaymentStatus) types.NotificationType {
	switch status {
	case types.PaymentStatusSuccess:
		return types.NotificationTypePaymentSuccess
	case types.PaymentStatusFailed:
		return types.NotificationTypePaymentFailed
	default:
		return types.NotificationTypePaymentPending
	}
}

func ContentForEvent(ev *events.PaymentEvent) string {
	amount := fmt.Sprintf("$%s", ev.Amount.StringFixed(2))

	switch ev.Status {
	case types.PaymentStatusSuccess:
		return fmt.Sprintf(`Dear Customer,

Your payment has been processed successfully!

Payment Details:
- Amount: %s %s
- Payment Method: %s
- Transaction ID: %d
- Date: %s

Your subscription has been renewed and is now active.

Thank you for your business!

Best regards,
Subscription System Team
`, amount, ev.Currency, ev.PaymentMethod, ev.PaymentID, ev.EventTime.Format("2006-01-02 15:04:05 MST"))

	case types.PaymentStatusFailed:
		reason := ev.ErrorMessage
		if reason == "" {
			reason = "Payment declined"
		}
		return fmt.Sprintf(`Dear Customer,

We were unable to process your payment.

Payment Details:
- Amount: %s %s
- Payment Method: %s
- Reason: %s
- Date: %s

Please update your payment information or try again.

If you need assistance, please contact our support team.

Best regards,
Subscription System Team
`, amount, ev.Currency, ev.PaymentMethod, reason, ev.EventTime.Format("2006-01-02 15:04:05 MST"))

	case types.PaymentStatusPending:
		return fmt.Sprintf(`Dear Customer,

Your payment is being processed.

Payment Details:
- Amount: %s %s
- Payment Method: %s
- Transaction ID: %d
- Date: %s

You will receive a confirmation once the payment is completed.

Best regards,
Subscription System Team
`, amount, ev.Currency, ev.PaymentMethod, ev.PaymentID, ev.EventTime.Format("2006-01-02 15:04:05 MST"))

	default:
		return "Payment notification"
	}
}

// RecipientForCustomer derives the delivery address. Stand-in until a
// customer profile lookup is wired.
func RecipientForCustomer(customerID int64) string {
	return fmt.Sprintf("customer%d@example.com", customerID)
}
