package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/internal/models"
	"github.com/fatflowers/subscription/pkg/config"
)

type stubRenewalSource struct {
	overdue    []*models.Subscription
	overdueErr error
	failFor    map[int64]error
	requested  []int64
}

func (s *stubRenewalSource) GetOverdue(_ context.Context, _ time.Time) ([]*models.Subscription, error) {
	return s.overdue, s.overdueErr
}

func (s *stubRenewalSource) RequestRenewal(_ context.Context, id int64) error {
	if err := s.failFor[id]; err != nil {
		return err
	}
	s.requested = append(s.requested, id)
	return nil
}

type stubPaymentTimeouts struct {
	cutoff time.Time
	n      int
	err    error
}

func (s *stubPaymentTimeouts) FailStale(_ context.Context, cutoff time.Time) (int, error) {
	s.cutoff = cutoff
	return s.n, s.err
}

func newTestScheduler(subs renewalSource, payments paymentTimeouts) *Scheduler {
	return &Scheduler{
		cfg: &config.Config{Scheduler: config.SchedulerConfig{
			RenewalCron:    "0 0 * * *",
			WatchdogCron:   "*/15 * * * *",
			PaymentTimeout: 24 * time.Hour,
		}},
		log:      zap.NewNop().Sugar(),
		subs:     subs,
		payments: payments,
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

func TestRunRenewalSweepRequestsAllOverdue(t *testing.T) {
	subs := &stubRenewalSource{overdue: []*models.Subscription{{ID: 1}, {ID: 2}, {ID: 3}}}
	s := newTestScheduler(subs, &stubPaymentTimeouts{})

	requested, failed := s.RunRenewalSweep(context.Background())
	require.Equal(t, 3, requested)
	require.Equal(t, 0, failed)
	require.Equal(t, []int64{1, 2, 3}, subs.requested)
}

func TestRunRenewalSweepIsolatesPerItemFailures(t *testing.T) {
	subs := &stubRenewalSource{
		overdue: []*models.Subscription{{ID: 1}, {ID: 2}, {ID: 3}},
		failFor: map[int64]error{2: errors.New("publish failed")},
	}
	s := newTestScheduler(subs, &stubPaymentTimeouts{})

	requested, failed := s.RunRenewalSweep(context.Background())
	require.Equal(t, 2, requested)
	require.Equal(t, 1, failed)
	require.Equal(t, []int64{1, 3}, subs.requested)
}

func TestRunRenewalSweepAbortsWhenQueryFails(t *testing.T) {
	subs := &stubRenewalSource{overdueErr: errors.New("db down")}
	s := newTestScheduler(subs, &stubPaymentTimeouts{})

	requested, failed := s.RunRenewalSweep(context.Background())
	require.Equal(t, 0, requested)
	require.Equal(t, 0, failed)
}

func TestRunWatchdogSweepUsesConfiguredTimeout(t *testing.T) {
	payments := &stubPaymentTimeouts{n: 2}
	s := newTestScheduler(&stubRenewalSource{}, payments)

	before := time.Now().UTC().Add(-s.cfg.Scheduler.PaymentTimeout)
	s.RunWatchdogSweep(context.Background())

	require.WithinDuration(t, before, payments.cutoff, time.Minute)
}
