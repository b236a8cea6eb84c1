package api

import (
	"context"
	"fmt"
	"sync"
	"time"

	"starlane/internal/engine"
	"starlane/internal/logger"
)

// Runner advances a simulation on a wall-clock ticker while HTTP handlers
// read it. Ticks take the write lock; views take the read lock.
type Runner struct {
	mu      sync.RWMutex
	sim     *engine.Simulation
	running bool

	// OnTick runs under the write lock after every successful tick.
	OnTick func(tick uint64)
}

func NewRunner(sim *engine.Simulation) *Runner {
	return &Runner{sim: sim}
}

// View calls fn with the simulation under the read lock. fn must not keep
// references to simulation state after it returns.
func (r *Runner) View(fn func(sim *engine.Simulation)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(r.sim)
}

// Running reports whether Run is active.
func (r *Runner) Running() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.running
}

// Step advances one tick.
func (r *Runner) Step(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.sim.Tick(ctx); err != nil {
		return err
	}
	if r.OnTick != nil {
		r.OnTick(r.sim.TickCount())
	}
	return nil
}

// Run ticks every interval until ctx is done or maxTicks ticks have run
// (zero means no limit). A cancelled context is a clean stop.
func (r *Runner) Run(ctx context.Context, interval time.Duration, maxTicks int) error {
	r.mu.Lock()
	r.running = true
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	var tick <-chan time.Time
	if interval > 0 {
		t := time.NewTicker(interval)
		defer t.Stop()
		tick = t.C
	}

	for n := 0; maxTicks == 0 || n < maxTicks; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return nil
			case <-tick:
			}
		} else if ctx.Err() != nil {
			return nil
		}
		if err := r.Step(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("tick: %w", err)
		}
	}
	logger.Info("SIM", fmt.Sprintf("Stopped after %d ticks", maxTicks))
	return nil
}
