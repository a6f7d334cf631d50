package subscription

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNextRenewalDate(t *testing.T) {
	at := time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)

	require.Equal(t, time.Date(2026, 2, 15, 10, 30, 0, 0, time.UTC), NextRenewalDate(at, 1))
	require.Equal(t, time.Date(2026, 4, 15, 10, 30, 0, 0, time.UTC), NextRenewalDate(at, 3))
	require.Equal(t, time.Date(2027, 1, 15, 10, 30, 0, 0, time.UTC), NextRenewalDate(at, 12))
}

func TestNextRenewalDateIsAbsoluteNotIncremental(t *testing.T) {
	// Renewal recomputes from the triggering instant, so renewing late
	// must not produce a date in the past.
	late := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	next := NextRenewalDate(late, 1)
	require.True(t, next.After(late))
	require.Equal(t, time.July, next.Month())
}

func TestNextRenewalDateNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	at := time.Date(2026, 1, 15, 10, 0, 0, 0, loc)

	next := NextRenewalDate(at, 1)
	require.Equal(t, time.UTC, next.Location())
	require.Equal(t, at.UTC().AddDate(0, 1, 0), next)
}
