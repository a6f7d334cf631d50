package types

type SubscriptionStatus string

const (
	SubscriptionStatusActive   SubscriptionStatus = "ACTIVE"
	SubscriptionStatusSuspend  SubscriptionStatus = "SUSPEND"
	SubscriptionStatusDeactive SubscriptionStatus = "DEACTIVE"
)

// subscriptionTransitions is the allowed manual transition table.
// DEACTIVE is terminal: a deactivated subscription cannot be revived
// through the status-update surface.
var subscriptionTransitions = map[SubscriptionStatus]map[SubscriptionStatus]bool{
	SubscriptionStatusActive: {
		SubscriptionStatusSuspend:  true,
		SubscriptionStatusDeactive: true,
	},
	SubscriptionStatusSuspend: {
		SubscriptionStatusActive:   true,
		SubscriptionStatusDeactive: true,
	},
	SubscriptionStatusDeactive: {},
}

func (s SubscriptionStatus) Valid() bool {
	_, ok := subscriptionTransitions[s]
	return ok
}

// CanTransitionTo reports whether a manual update from s to next is allowed.
// Same-state updates are accepted as no-ops.
func (s SubscriptionStatus) CanTransitionTo(next SubscriptionStatus) bool {
	if !next.Valid() {
		return false
	}
	if s == next {
		return true
	}
	return subscriptionTransitions[s][next]
}
