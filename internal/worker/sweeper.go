// Package worker runs the periodic match refresh sweep.
package worker

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// MatchRefresher refreshes every stale match list and reports how many were rewritten.
type MatchRefresher interface {
	RefreshAll(ctx context.Context) (int, error)
}

// Sweeper triggers MatchRefresher on a cron spec.
type Sweeper struct {
	cron      *cron.Cron
	refresher MatchRefresher
	spec      string
	logger    *zap.Logger
	running   atomic.Bool
}

// NewSweeper creates a sweeper for spec, e.g. "@every 15m".
func NewSweeper(refresher MatchRefresher, spec string, logger *zap.Logger) *Sweeper {
	if logger == nil {
		logger = zap.NewNop()
	}
	cl := cronLogger{s: logger.Sugar()}
	return &Sweeper{
		cron:      cron.New(cron.WithLogger(cl), cron.WithChain(cron.Recover(cl))),
		refresher: refresher,
		spec:      spec,
		logger:    logger,
	}
}

// Start registers the sweep and starts the scheduler. One sweep also runs
// immediately so stale lists are fixed without waiting for the first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.spec, func() { s.RunOnce(ctx) }); err != nil {
		return fmt.Errorf("cron add %q: %w", s.spec, err)
	}
	s.cron.Start()
	s.logger.Info("match sweep scheduled", zap.String("spec", s.spec))

	go s.RunOnce(ctx)
	return nil
}

// Stop stops the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("match sweep stopped")
}

// RunOnce performs one sweep. Overlapping calls return immediately.
func (s *Sweeper) RunOnce(ctx context.Context) int {
	if !s.running.CompareAndSwap(false, true) {
		s.logger.Debug("match sweep already running")
		return 0
	}
	defer s.running.Store(false)

	start := time.Now()
	n, err := s.refresher.RefreshAll(ctx)
	if err != nil {
		s.logger.Error("match sweep failed", zap.Error(err), zap.Int("refreshed", n))
		return n
	}
	s.logger.Info("match sweep complete", zap.Int("refreshed", n), zap.Duration("took", time.Since(start)))
	return n
}

// cronLogger routes cron's own logging through zap.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
