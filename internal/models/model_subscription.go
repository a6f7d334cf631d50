package models

import (
	"time"

	"github.com/fatflowers/subscription/pkg/types"
)

// Subscription is the customer's hold on an offer. Mutated by the renewal
// saga, the scheduler and the manual status-update surface; never deleted.
type Subscription struct {
	ID         int64 `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID int64 `gorm:"column:customer_id;not null;uniqueIndex:uniq_customer_offer,priority:1;index" json:"customer_id"`
	OfferID    int64 `gorm:"column:offer_id;not null;uniqueIndex:uniq_customer_offer,priority:2" json:"offer_id"`
	// NextRenewalDate is absolute: every renewal sets it to now + period,
	// it is never advanced incrementally.
	NextRenewalDate time.Time                `gorm:"column:next_renewal_date;not null;index" json:"next_renewal_date"`
	Status          types.SubscriptionStatus `gorm:"column:status;type:varchar(16);not null" json:"status"`
	// Version guards against the event consumer and the REST surface
	// racing on the same row. Writers must match it or fail.
	Version   int64     `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Subscription) TableName() string {
	return "subscriptions"
}

// Overdue reports whether the subscription should be picked up by the
// renewal sweep at the given instant.
func (s *Subscription) Overdue(now time.Time) bool {
	return s != nil &&
		s.Status == types.SubscriptionStatusActive &&
		s.NextRenewalDate.Before(now)
}
