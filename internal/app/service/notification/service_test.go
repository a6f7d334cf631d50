package notification

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fatflowers/subscription/internal/models"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/types"
)

type scriptedSender struct {
	err   error
	calls int
}

func (s *scriptedSender) Send(_ context.Context, _ *models.Notification) error {
	s.calls++
	return s.err
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Notification{}))
	return db
}

func newDispatchFixture(t *testing.T, sender Sender, maxRetries int) (*Service, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	cfg := &cfgpkg.Config{Consumer: cfgpkg.ConsumerConfig{MaxRetries: maxRetries}}
	registry := SenderRegistry{types.NotificationChannelEmail: sender}
	return NewService(cfg, zap.NewNop().Sugar(), db, registry), db
}

func successEvent(paymentID int64) *events.PaymentEvent {
	return &events.PaymentEvent{
		PaymentID:     paymentID,
		CustomerID:    1,
		Amount:        decimal.RequireFromString("9.99"),
		Currency:      "USD",
		Status:        types.PaymentStatusSuccess,
		PaymentMethod: types.PaymentMethodCreditCard,
		EventTime:     time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestProcessPaymentEventRecordsFailureProgression(t *testing.T) {
	sender := &scriptedSender{err: errors.New("smtp unreachable")}
	svc, db := newDispatchFixture(t, sender, 2)
	ctx := context.Background()
	ev := successEvent(7)

	// First delivery attempt fails and is recorded for retry.
	require.Error(t, svc.ProcessPaymentEvent(ctx, ev))

	var n models.Notification
	require.NoError(t, db.Where("related_entity_id = ?", ev.PaymentID).First(&n).Error)
	require.Equal(t, 1, n.RetryCount)
	require.Equal(t, types.NotificationStatusRetrying, n.Status)
	require.Equal(t, "smtp unreachable", n.ErrorMessage)

	// The redelivered event reuses the row; exhausting the budget marks it
	// FAILED.
	require.Error(t, svc.ProcessPaymentEvent(ctx, ev))

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("related_entity_id = ?", ev.PaymentID).Count(&count).Error)
	require.Equal(t, int64(1), count)

	require.NoError(t, db.Where("related_entity_id = ?", ev.PaymentID).First(&n).Error)
	require.Equal(t, 2, n.RetryCount)
	require.Equal(t, types.NotificationStatusFailed, n.Status)
}

func TestProcessPaymentEventRecoversOnLaterAttempt(t *testing.T) {
	sender := &scriptedSender{err: errors.New("smtp unreachable")}
	svc, db := newDispatchFixture(t, sender, 5)
	ctx := context.Background()
	ev := successEvent(8)

	require.Error(t, svc.ProcessPaymentEvent(ctx, ev))

	sender.err = nil
	require.NoError(t, svc.ProcessPaymentEvent(ctx, ev))

	var n models.Notification
	require.NoError(t, db.Where("related_entity_id = ?", ev.PaymentID).First(&n).Error)
	require.Equal(t, types.NotificationStatusSent, n.Status)
	require.NotNil(t, n.SentAt)
	require.Empty(t, n.ErrorMessage)
}

func TestProcessPaymentEventSkipsDeliveredRow(t *testing.T) {
	sender := &scriptedSender{}
	svc, db := newDispatchFixture(t, sender, 5)
	ctx := context.Background()
	ev := successEvent(9)

	require.NoError(t, svc.ProcessPaymentEvent(ctx, ev))
	require.Equal(t, 1, sender.calls)

	// Redelivery after a successful send must not send again or add rows.
	require.NoError(t, svc.ProcessPaymentEvent(ctx, ev))
	require.Equal(t, 1, sender.calls)

	var count int64
	require.NoError(t, db.Model(&models.Notification{}).Where("related_entity_id = ?", ev.PaymentID).Count(&count).Error)
	require.Equal(t, int64(1), count)
}
