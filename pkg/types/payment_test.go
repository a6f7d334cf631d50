package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPaymentStatusTerminal(t *testing.T) {
	require.False(t, PaymentStatusPending.Terminal())
	require.True(t, PaymentStatusSuccess.Terminal())
	require.True(t, PaymentStatusFailed.Terminal())
	require.True(t, PaymentStatusRefunded.Terminal())
}

func TestPaymentStatusValid(t *testing.T) {
	require.True(t, PaymentStatusPending.Valid())
	require.True(t, PaymentStatusSuccess.Valid())
	require.True(t, PaymentStatusFailed.Valid())
	require.False(t, PaymentStatus("VOID").Valid())
}
