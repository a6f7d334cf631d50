package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/subscription/pkg/types"
)

// Payment is created PENDING and resolved exactly once by confirm or fail.
type Payment struct {
	ID             int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SubscriptionID int64               `gorm:"column:subscription_id;not null;index" json:"subscription_id"`
	CustomerID     int64               `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Amount         decimal.Decimal     `gorm:"column:amount;type:numeric(12,2);not null" json:"amount"`
	Currency       string              `gorm:"column:currency;type:varchar(3);not null" json:"currency"`
	Status         types.PaymentStatus `gorm:"column:status;type:varchar(16);not null;index" json:"status"`
	PaymentMethod  types.PaymentMethod `gorm:"column:payment_method;type:varchar(32);not null" json:"payment_method"`
	// ProviderTransactionID is assigned at creation as the reference the
	// (simulated) gateway would report back.
	ProviderTransactionID string `gorm:"column:provider_transaction_id;type:varchar(64);not null" json:"provider_transaction_id"`
	// RequestID is the message id of the PaymentRequest that created this
	// payment. The unique index makes message-driven creation idempotent
	// across broker redelivery.
	RequestID    *string   `gorm:"column:request_id;type:varchar(64);uniqueIndex" json:"request_id,omitempty"`
	ErrorMessage string    `gorm:"column:error_message;type:varchar(512)" json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (Payment) TableName() string {
	return "payments"
}

// Resolvable reports whether the payment can still be confirmed or failed.
func (p *Payment) Resolvable() bool {
	return p != nil && p.Status == types.PaymentStatusPending
}
