// Package sim owns the simulation lifecycle: one coordinator starts the
// market simulator and the bot population on their own goroutines and tears
// both down cleanly.
package sim

import (
	"context"
	"log"
	"sync"
)

// Loop is a cancellable background loop. Both the market simulator and the
// bot population satisfy it.
type Loop interface {
	Run(ctx context.Context) error
}

// Coordinator starts and stops a set of loops as a unit. Start and Stop are
// idempotent; Stop blocks until every loop has drained, so no tick is ever
// in flight after Stop returns.
type Coordinator struct {
	loops  []Loop
	logger *log.Logger

	mu      sync.Mutex
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
}

// NewCoordinator creates a Coordinator over the given loops.
func NewCoordinator(logger *log.Logger, loops ...Loop) *Coordinator {
	if logger == nil {
		logger = log.Default()
	}
	return &Coordinator{loops: loops, logger: logger}
}

// Start launches every loop. Calling Start on a running coordinator is a
// no-op.
func (c *Coordinator) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return
	}

	runCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.running = true

	for _, loop := range c.loops {
		c.wg.Add(1)
		go func(l Loop) {
			defer c.wg.Done()
			if err := l.Run(runCtx); err != nil && runCtx.Err() == nil {
				c.logger.Printf("simulation loop exited: %v", err)
			}
		}(loop)
	}

	c.logger.Printf("simulation started (%d loops)", len(c.loops))
}

// Stop cancels the loops and waits for them to drain. Safe to call multiple
// times and before Start.
func (c *Coordinator) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	c.running = false
	cancel := c.cancel
	c.cancel = nil
	c.mu.Unlock()

	cancel()
	c.wg.Wait()
	c.logger.Println("simulation stopped")
}

// Running reports whether the loops are live.
func (c *Coordinator) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}
