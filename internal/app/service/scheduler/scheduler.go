package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/samber/lo"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/fatflowers/subscription/internal/app/service/payment"
	"github.com/fatflowers/subscription/internal/app/service/subscription"
	"github.com/fatflowers/subscription/internal/models"
	cfgpkg "github.com/fatflowers/subscription/pkg/config"
)

// renewalSource is the slice of the subscription engine the sweep needs.
type renewalSource interface {
	GetOverdue(ctx context.Context, now time.Time) ([]*models.Subscription, error)
	RequestRenewal(ctx context.Context, id int64) error
}

// paymentTimeouts is the slice of the payment engine the watchdog needs.
type paymentTimeouts interface {
	FailStale(ctx context.Context, cutoff time.Time) (int, error)
}

// Scheduler drives the two time-triggered entry points of the saga: the
// daily renewal sweep and the stale-payment watchdog. Scheduled renewals
// take the same paid path as user-driven ones; the sweep only publishes
// PaymentRequests and never touches the renewal date itself.
type Scheduler struct {
	cfg      *cfgpkg.Config
	log      *zap.SugaredLogger
	subs     renewalSource
	payments paymentTimeouts
	cron     *cron.Cron
}

func NewScheduler(cfg *cfgpkg.Config, log *zap.SugaredLogger, subs *subscription.Service, payments *payment.Service) *Scheduler {
	return &Scheduler{
		cfg:      cfg,
		log:      log,
		subs:     subs,
		payments: payments,
		cron:     cron.New(cron.WithLocation(time.UTC)),
	}
}

// RunRenewalSweep requests a renewal for every overdue subscription.
// Failures are isolated per item: one bad subscription never blocks the
// rest of the batch.
func (s *Scheduler) RunRenewalSweep(ctx context.Context) (requested, failed int) {
	now := time.Now().UTC()
	s.log.Infow("starting subscription renewal sweep", "at", now)

	overdue, err := s.subs.GetOverdue(ctx, now)
	if err != nil {
		s.log.Errorw("renewal sweep aborted", "err", err)
		return 0, 0
	}
	if len(overdue) > 0 {
		ids := lo.Map(overdue, func(sub *models.Subscription, _ int) int64 { return sub.ID })
		s.log.Infow("found overdue subscriptions", "count", len(overdue), "ids", ids)
	}

	for _, sub := range overdue {
		if err := s.subs.RequestRenewal(ctx, sub.ID); err != nil {
			failed++
			s.log.Errorw("renewal request failed",
				"subscription_id", sub.ID, "customer_id", sub.CustomerID, "err", err)
			continue
		}
		requested++
	}

	s.log.Infow("subscription renewal sweep completed",
		"overdue", len(overdue), "requested", requested, "failed", failed)
	return requested, failed
}

// RunWatchdogSweep times out payments stuck in PENDING longer than the
// configured window. The resulting FAILED events suspend the affected
// subscriptions through the ordinary saga.
func (s *Scheduler) RunWatchdogSweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.cfg.Scheduler.PaymentTimeout)
	n, err := s.payments.FailStale(ctx, cutoff)
	if err != nil {
		s.log.Errorw("payment watchdog sweep failed", "err", err)
		return
	}
	if n > 0 {
		s.log.Warnw("timed out stale pending payments", "count", n, "cutoff", cutoff)
	}
}

func (s *Scheduler) start() error {
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.RenewalCron, func() {
		s.RunRenewalSweep(context.Background())
	}); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc(s.cfg.Scheduler.WatchdogCron, func() {
		s.RunWatchdogSweep(context.Background())
	}); err != nil {
		return err
	}
	s.cron.Start()
	s.log.Infow("scheduler started",
		"renewal_cron", s.cfg.Scheduler.RenewalCron,
		"watchdog_cron", s.cfg.Scheduler.WatchdogCron,
		"payment_timeout", s.cfg.Scheduler.PaymentTimeout)
	return nil
}

func (s *Scheduler) stop(ctx context.Context) error {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-ctx.Done():
	}
	s.log.Infow("scheduler stopped")
	return nil
}

func run(lc fx.Lifecycle, s *Scheduler) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return s.start() },
		OnStop:  func(ctx context.Context) error { return s.stop(ctx) },
	})
}

var Module = fx.Options(
	fx.Provide(NewScheduler),
	fx.Invoke(run),
)
