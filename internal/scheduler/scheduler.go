// Package scheduler drives recurring billing runs. Once per check interval
// it bills the previous calendar month; the billing service's own
// idempotency makes extra runs harmless.
package scheduler

import (
	"context"
	"errors"
	"time"

	billingdomain "github.com/smallbiznis/parqo/internal/billing/domain"
	"github.com/smallbiznis/parqo/internal/clock"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var ErrInvalidConfig = errors.New("scheduler: invalid configuration")

type Config struct {
	// CheckInterval is how often the scheduler wakes up. Every wake-up
	// attempts the previous month; duplicates are skipped downstream.
	CheckInterval time.Duration
}

func (c Config) withDefaults() Config {
	if c.CheckInterval <= 0 {
		c.CheckInterval = 6 * time.Hour
	}
	return c
}

type Params struct {
	fx.In

	Log        *zap.Logger
	BillingSvc billingdomain.Service
	Clock      clock.Clock
	Config     Config `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	clock      clock.Clock
	billingSvc billingdomain.Service

	done chan struct{}
	stop chan struct{}
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.BillingSvc == nil || p.Clock == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler"),
		cfg:        p.Config.withDefaults(),
		clock:      p.Clock,
		billingSvc: p.BillingSvc,
		done:       make(chan struct{}),
		stop:       make(chan struct{}),
	}, nil
}

// RunOnce bills the month preceding the clock's current time.
func (s *Scheduler) RunOnce(ctx context.Context) error {
	period := billingdomain.PeriodOf(s.clock.Now()).Prev()

	result, err := s.billingSvc.GenerateInvoices(ctx, period)
	if err != nil {
		if errors.Is(err, billingdomain.ErrGenerationLocked) {
			s.log.Info("billing run already in progress elsewhere",
				zap.String("period", period.String()))
			return nil
		}
		s.log.Error("scheduled billing run failed",
			zap.String("period", period.String()),
			zap.Error(err))
		return err
	}

	if len(result.Generated) > 0 {
		s.log.Info("scheduled billing run generated invoices",
			zap.String("period", period.String()),
			zap.Int("generated", len(result.Generated)))
	}
	return nil
}

func (s *Scheduler) loop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.cfg.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			_ = s.RunOnce(ctx)
		}
	}
}

var Module = fx.Module("scheduler",
	fx.Provide(New),
	fx.Invoke(func(lc fx.Lifecycle, s *Scheduler) {
		ctx, cancel := context.WithCancel(context.Background())
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				go s.loop(ctx)
				return nil
			},
			OnStop: func(stopCtx context.Context) error {
				cancel()
				close(s.stop)
				select {
				case <-s.done:
					return nil
				case <-stopCtx.Done():
					return stopCtx.Err()
				}
			},
		})
	}),
)
