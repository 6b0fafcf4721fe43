// Copyright (c) 2026 IoTeX Foundation
// This source code is provided 'as is' and no warranties are given as to title or non-infringement, merchantability
// or fitness for purpose and, to the extent permitted by law, all liability for your use of the code is disclaimed.
// This source code is governed by Apache License 2.0 that can be found in the LICENSE file.

package poll

import (
	"context"
	"time"

	"github.com/cenkalti/backoff"
	"github.com/facebookgo/clock"
	"go.uber.org/zap"

	"github.com/iotexproject/pollrush/pkg/lifecycle"
	"github.com/iotexproject/pollrush/pkg/log"
	"github.com/iotexproject/pollrush/pkg/routine"
)

type (
	// ReconcilerConfig is the retry schedule of pending rewards
	ReconcilerConfig struct {
		Interval       time.Duration `yaml:"interval"`
		InitialBackoff time.Duration `yaml:"initialBackoff"`
		MaxBackoff     time.Duration `yaml:"maxBackoff"`
		Multiplier     float64       `yaml:"multiplier"`
	}

	// Reconciler retries pending rewards on every tick of its interval
	Reconciler struct {
		lifecycle.Lifecycle
		svc     *Service
		cfg     ReconcilerConfig
		clk     clock.Clock
		ticker  *routine.RecurringTask
		sweeper *routine.TriggerTask
	}

	// ReconcilerOption sets a reconciler option
	ReconcilerOption func(*Reconciler)
)

// DefaultReconcilerConfig is the default reconciler config
var DefaultReconcilerConfig = ReconcilerConfig{
	Interval:       30 * time.Second,
	InitialBackoff: 5 * time.Second,
	MaxBackoff:     10 * time.Minute,
	Multiplier:     2,
}

// WithReconcilerClock sets the clock driving the ticks
func WithReconcilerClock(c clock.Clock) ReconcilerOption {
	return func(r *Reconciler) {
		r.clk = c
	}
}

// NewReconciler creates a reconciler of svc's pending rewards
func NewReconciler(svc *Service, cfg ReconcilerConfig, opts ...ReconcilerOption) *Reconciler {
	r := &Reconciler{
		svc: svc,
		cfg: cfg,
		clk: clock.New(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.sweeper = routine.NewTriggerTask(r.sweep)
	r.ticker = routine.NewRecurringTask(func() { r.sweeper.Trigger() }, cfg.Interval, routine.WithClock(r.clk))
	r.Add(r.sweeper)
	r.Add(r.ticker)
	return r
}

// Start starts the sweeper and the ticker, then kicks a first sweep
func (r *Reconciler) Start(ctx context.Context) error {
	if err := r.OnStart(ctx); err != nil {
		return err
	}
	r.sweeper.Trigger()
	return nil
}

// Stop stops the ticker before the sweeper
func (r *Reconciler) Stop(ctx context.Context) error {
	return r.OnStop(ctx)
}

// Reconcile retries every due pending reward once and returns how many were minted
func (r *Reconciler) Reconcile(ctx context.Context) (int, error) {
	return r.svc.retryPendingRewards(ctx, r.NextBackoff)
}

// NextBackoff returns the delay in nanoseconds before retrying a reward that failed `attempts`
// times: InitialBackoff * Multiplier^(attempts-1), capped at MaxBackoff
func (r *Reconciler) NextBackoff(attempts uint32) uint64 {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialBackoff
	b.MaxInterval = r.cfg.MaxBackoff
	b.Multiplier = r.cfg.Multiplier
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Clock = r.clk
	b.Reset()
	var d time.Duration
	for i := uint32(0); i < attempts; i++ {
		d = b.NextBackOff()
	}
	return uint64(d)
}

func (r *Reconciler) sweep() {
	minted, err := r.Reconcile(context.Background())
	if err != nil {
		log.L().Error("Failed to reconcile pending rewards.", zap.Error(err))
		return
	}
	if minted > 0 {
		log.L().Info("Reconciled pending rewards.", zap.Int("minted", minted))
	}
}
