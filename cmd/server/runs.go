package main

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"go-founder-sourcing/internal/models"
)

type runner interface {
	Run(ctx context.Context) (models.RunStats, error)
}

type lastRun struct {
	Stats models.RunStats `json:"stats"`
	Error string          `json:"error,omitempty"`
}

// runManager serialises pipeline runs triggered over HTTP.
type runManager struct {
	base    context.Context
	runner  runner
	timeout time.Duration
	log     *zap.Logger

	mu      sync.Mutex
	running bool
	last    *lastRun
	wg      sync.WaitGroup
}

// newRunManager derives every run from base, so cancelling base aborts an
// in-flight run.
func newRunManager(base context.Context, r runner, timeout time.Duration, log *zap.Logger) *runManager {
	return &runManager{base: base, runner: r, timeout: timeout, log: log.With(zap.String("component", "runs"))}
}

// Start launches a run in the background. It returns false when one is
// already in progress.
func (m *runManager) Start() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return false
	}
	m.running = true
	m.wg.Add(1)

	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(m.base, m.timeout)
		defer cancel()

		m.log.Info("🚀 run triggered")
		stats, err := m.runner.Run(ctx)
		res := &lastRun{Stats: stats}
		if err != nil {
			res.Error = err.Error()
			m.log.Error("❌ triggered run failed", zap.Error(err))
		}

		m.mu.Lock()
		m.last = res
		m.running = false
		m.mu.Unlock()
	}()
	return true
}

func (m *runManager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *runManager) Last() (lastRun, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.last == nil {
		return lastRun{}, false
	}
	return *m.last, true
}

// Wait blocks until an in-flight run finishes.
func (m *runManager) Wait() {
	m.wg.Wait()
}
