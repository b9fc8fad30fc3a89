// Package syncer coalesces bursts of layout changes into single writes to
// the preference gateway. Classic trailing-edge debounce: every change
// resets a quiet-period timer, and only the last layout within a burst is
// ever sent. A pending write is abandoned on Close — accepted data loss for
// the teardown case.
package syncer

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/GregMSThompson/dashboard-engine/internal/models"
)

// DefaultQuietPeriod is how long layout changes must stop before a write
// fires.
const DefaultQuietPeriod = 1000 * time.Millisecond

// WriteFunc persists a layout remotely. It is called off the caller's
// goroutine when the quiet period elapses.
type WriteFunc func(ctx context.Context, layout []models.LayoutCell) error

// ResultFunc observes the outcome of each fired write. Failures are surfaced
// here (non-blocking notification, sync status); the controller itself never
// retries and never rolls anything back.
type ResultFunc func(err error)

// Controller schedules debounced layout writes.
type Controller struct {
	quiet    time.Duration
	write    WriteFunc
	onResult ResultFunc
	log      *slog.Logger

	mu         sync.Mutex
	timer      *time.Timer
	generation int
	pending    []models.LayoutCell
	pendingCtx context.Context
	saving     bool
	closed     bool
}

func New(quiet time.Duration, write WriteFunc, onResult ResultFunc, log *slog.Logger) *Controller {
	if quiet <= 0 {
		quiet = DefaultQuietPeriod
	}
	return &Controller{
		quiet:    quiet,
		write:    write,
		onResult: onResult,
		log:      log,
	}
}

// Schedule records the latest layout and (re)starts the quiet-period timer.
// An earlier pending write is superseded, never fired.
func (c *Controller) Schedule(ctx context.Context, layout []models.LayoutCell) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.pending = models.CloneLayout(layout)
	// The scheduling request finishes long before the timer fires, so keep
	// the context values (session token) but detach from its cancellation.
	c.pendingCtx = context.WithoutCancel(ctx)
	c.generation++
	gen := c.generation
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.quiet, func() { c.fire(gen) })
}

// Flush fires any pending write immediately, bypassing the remaining quiet
// period. Used by explicit save actions.
func (c *Controller) Flush() {
	c.mu.Lock()
	if c.closed || c.pending == nil {
		c.mu.Unlock()
		return
	}
	if c.timer != nil {
		c.timer.Stop()
	}
	gen := c.generation
	c.mu.Unlock()
	c.fire(gen)
}

// IsSaving reports whether a write is currently in flight.
func (c *Controller) IsSaving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// Pending reports whether a write is scheduled but not yet fired.
func (c *Controller) Pending() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pending != nil
}

// Close cancels any pending timer so no stray write fires after teardown.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.pending = nil
	c.pendingCtx = nil
}

func (c *Controller) fire(gen int) {
	c.mu.Lock()
	// A newer Schedule or a Close superseded this timer.
	if c.closed || gen != c.generation || c.pending == nil {
		c.mu.Unlock()
		return
	}
	layout := c.pending
	ctx := c.pendingCtx
	c.pending = nil
	c.pendingCtx = nil
	c.saving = true
	c.mu.Unlock()

	err := c.write(ctx, layout)

	c.mu.Lock()
	c.saving = false
	c.mu.Unlock()

	if err != nil {
		c.log.Warn("debounced layout save failed", "error", err)
	}
	if c.onResult != nil {
		c.onResult(err)
	}
}
