package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/fatflowers/subscription/pkg/types"
)

// Offer is the catalog entry a subscription is sold against. The renewal
// path re-reads it every cycle, so price and period changes take effect on
// the next renewal without touching existing subscriptions.
type Offer struct {
	ID    int64           `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name  string          `gorm:"column:name;type:varchar(128);not null" json:"name"`
	Price decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null" json:"price"`
	// PeriodMonths is the renewal interval in months.
	PeriodMonths int               `gorm:"column:period_months;not null" json:"period_months"`
	Status       types.OfferStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

func (Offer) TableName() string {
	return "offers"
}

func (o *Offer) Active() bool {
	return o != nil && o.Status == types.OfferStatusActive
}
