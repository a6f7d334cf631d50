package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSubscriptionStatusValid(t *testing.T) {
	require.True(t, SubscriptionStatusActive.Valid())
	require.True(t, SubscriptionStatusSuspend.Valid())
	require.True(t, SubscriptionStatusDeactive.Valid())
	require.False(t, SubscriptionStatus("CANCELLED").Valid())
	require.False(t, SubscriptionStatus("").Valid())
}

func TestSubscriptionStatusCanTransitionTo(t *testing.T) {
	cases := []struct {
		name string
		from SubscriptionStatus
		to   SubscriptionStatus
		ok   bool
	}{
		{"active to suspend", SubscriptionStatusActive, SubscriptionStatusSuspend, true},
		{"active to deactive", SubscriptionStatusActive, SubscriptionStatusDeactive, true},
		{"suspend to active", SubscriptionStatusSuspend, SubscriptionStatusActive, true},
		{"suspend to deactive", SubscriptionStatusSuspend, SubscriptionStatusDeactive, true},
		{"deactive is terminal for active", SubscriptionStatusDeactive, SubscriptionStatusActive, false},
		{"deactive is terminal for suspend", SubscriptionStatusDeactive, SubscriptionStatusSuspend, false},
		{"same state is a no-op", SubscriptionStatusActive, SubscriptionStatusActive, true},
		{"same state deactive", SubscriptionStatusDeactive, SubscriptionStatusDeactive, true},
		{"unknown target", SubscriptionStatusActive, SubscriptionStatus("CANCELLED"), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.ok, tc.from.CanTransitionTo(tc.to))
		})
	}
}
