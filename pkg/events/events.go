package events

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/subscription/pkg/types"
)

// Topic keys used by the kafka partitioning marshaler. Messages for the same
// subscription land on the same partition, so each consumer group sees them
// in publish order.
const PartitionKeyMetadata = "partition_key"

// PaymentRequest asks the payment engine to charge a subscription renewal.
// Immutable once published.
type PaymentRequest struct {
	SubscriptionID int64               `json:"subscriptionId"`
	CustomerID     int64               `json:"customerId"`
	Amount         decimal.Decimal     `json:"amount"`
	PaymentMethod  types.PaymentMethod `json:"paymentMethod"`
}

// PaymentEvent carries a payment outcome to the subscription engine and the
// notification dispatcher. Immutable once published; consumers may see it
// more than once and must handle it idempotently.
type PaymentEvent struct {
	PaymentID      int64               `json:"paymentId"`
	SubscriptionID int64               `json:"subscriptionId"`
	CustomerID     int64               `json:"customerId"`
	Amount         decimal.Decimal     `json:"amount"`
	Currency       string              `json:"currency"`
	Status         types.PaymentStatus `json:"status"`
	PaymentMethod  types.PaymentMethod `json:"paymentMethod"`
	ErrorMessage   string              `json:"errorMessage,omitempty"`
	EventTime      time.Time           `json:"eventTime"`
}
