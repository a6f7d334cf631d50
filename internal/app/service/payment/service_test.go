package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/internal/platform/pubsub"
	"github.com/fatflowers/subscription/pkg/apperr"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
	"github.com/fatflowers/subscription/pkg/events"
	"github.com/fatflowers/subscription/pkg/types"
)

// captureBus records published messages instead of delivering them.
type captureBus struct {
	published []*message.Message
}

func (b *captureBus) Publisher() message.Publisher { return b }

func (b *captureBus) Publish(_ string, msgs ...*message.Message) error {
	b.published = append(b.published, msgs...)
	return nil
}

func (b *captureBus) Subscriber(string) (message.Subscriber, error) { return nil, nil }

func (b *captureBus) Close() error { return nil }

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Payment{}))
	return db
}

func newPaymentFixture(t *testing.T) (*Service, *captureBus, *gorm.DB) {
	t.Helper()
	db := newTestDB(t)
	bus := &captureBus{}
	cfg := &cfgpkg.Config{
		Kafka:   cfgpkg.KafkaConfig{Topics: cfgpkg.KafkaTopics{PaymentEvents: "payment-events"}},
		Payment: cfgpkg.PaymentConfig{Currency: "USD", DefaultMethod: "CREDIT_CARD"},
	}
	log := zap.NewNop().Sugar()
	return NewService(cfg, log, db, pubsub.NewProducer(bus, log)), bus, db
}

func createPending(t *testing.T, svc *Service, requestID *string) *models.Payment {
	t.Helper()
	p, err := svc.Create(context.Background(), &CreatePaymentRequest{
		SubscriptionID: 3,
		CustomerID:     1,
		Amount:         decimal.RequireFromString("9.99"),
	}, requestID)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusPending, p.Status)
	return p
}

func lastEvent(t *testing.T, bus *captureBus) *events.PaymentEvent {
	t.Helper()
	require.NotEmpty(t, bus.published)
	var ev events.PaymentEvent
	require.NoError(t, json.Unmarshal(bus.published[len(bus.published)-1].Payload, &ev))
	return &ev
}

func TestCreateIsIdempotentOnRequestID(t *testing.T) {
	svc, bus, db := newPaymentFixture(t)
	requestID := "req-uuid-1"

	first := createPending(t, svc, &requestID)
	second := createPending(t, svc, &requestID)
	require.Equal(t, first.ID, second.ID)

	var count int64
	require.NoError(t, db.Model(&models.Payment{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
	// Creation publishes nothing; only confirm/fail emit events.
	require.Empty(t, bus.published)
}

func TestConfirmPublishesSuccessEvent(t *testing.T) {
	svc, bus, _ := newPaymentFixture(t)
	p := createPending(t, svc, nil)

	confirmed, err := svc.Confirm(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, types.PaymentStatusSuccess, confirmed.Status)

	ev := lastEvent(t, bus)
	require.Equal(t, p.ID, ev.PaymentID)
	require.Equal(t, types.PaymentStatusSuccess, ev.Status)
	require.Equal(t, "3", bus.published[0].Metadata.Get(events.PartitionKeyMetadata))
}

func TestConfirmRetryRepublishesWithoutSecondResolution(t *testing.T) {
	svc, bus, db := newPaymentFixture(t)
	p := createPending(t, svc, nil)

	_, err := svc.Confirm(context.Background(), p.ID)
	require.NoError(t, err)

	// A retried confirm (e.g. after a failed publish) emits the event
	// again but leaves the row as it was.
	_, err = svc.Confirm(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, bus.published, 2)

	var stored models.Payment
	require.NoError(t, db.First(&stored, p.ID).Error)
	require.Equal(t, types.PaymentStatusSuccess, stored.Status)
}

func TestFailRetryKeepsOriginalReason(t *testing.T) {
	svc, bus, _ := newPaymentFixture(t)
	p := createPending(t, svc, nil)

	_, err := svc.Fail(context.Background(), p.ID, "card declined")
	require.NoError(t, err)

	failed, err := svc.Fail(context.Background(), p.ID, "different reason")
	require.NoError(t, err)
	require.Equal(t, "card declined", failed.ErrorMessage)
	require.Len(t, bus.published, 2)
	require.Equal(t, "card declined", lastEvent(t, bus).ErrorMessage)
}

func TestConflictingResolutionRejected(t *testing.T) {
	svc, _, _ := newPaymentFixture(t)
	p := createPending(t, svc, nil)

	_, err := svc.Confirm(context.Background(), p.ID)
	require.NoError(t, err)

	_, err = svc.Fail(context.Background(), p.ID, "too late")
	require.ErrorIs(t, err, apperr.ErrInvalidState)
}

func TestFailStaleTimesOutOldPendingPayments(t *testing.T) {
	svc, bus, db := newPaymentFixture(t)
	stale := createPending(t, svc, nil)
	fresh := createPending(t, svc, nil)

	// Age the first payment past the cutoff.
	old := time.Now().UTC().Add(-48 * time.Hour)
	require.NoError(t, db.Model(&models.Payment{}).Where("id = ?", stale.ID).
		Update("created_at", old).Error)

	n, err := svc.FailStale(context.Background(), time.Now().UTC().Add(-24*time.Hour))
	require.NoError(t, err)
	require.Equal(t, 1, n)

	var got models.Payment
	require.NoError(t, db.First(&got, stale.ID).Error)
	require.Equal(t, types.PaymentStatusFailed, got.Status)
	require.Equal(t, "payment timed out", got.ErrorMessage)

	got = models.Payment{}
	require.NoError(t, db.First(&got, fresh.ID).Error)
	require.Equal(t, types.PaymentStatusPending, got.Status)

	require.Len(t, bus.published, 1)
	require.Equal(t, types.PaymentStatusFailed, lastEvent(t, bus).Status)
}
