package models

import (
	"time"

	"github.com/fatflowers/subscription/pkg/types"
)

// ProcessedPaymentEvent is the durable idempotency marker for the
// subscription engine. The marker is written in the same transaction as the
// renewal or suspension it guards, so a redelivered event either finds the
// marker or finds none of the side effects.
type ProcessedPaymentEvent struct {
	ID             int64               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	PaymentID      int64               `gorm:"column:payment_id;not null;uniqueIndex" json:"payment_id"`
	SubscriptionID int64               `gorm:"column:subscription_id;not null;index" json:"subscription_id"`
	Status         types.PaymentStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	ProcessedAt    time.Time           `gorm:"column:processed_at;not null" json:"processed_at"`
}

func (ProcessedPaymentEvent) TableName() string {
	return "processed_payment_events"
}
