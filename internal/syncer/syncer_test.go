package syncer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/GregMSThompson/dashboard-engine/internal/models"
	"github.com/GregMSThompson/dashboard-engine/pkg/logger"
)

const testQuiet = 25 * time.Millisecond

type writeRecorder struct {
	mu      sync.Mutex
	writes  [][]models.LayoutCell
	err     error
	fired   chan struct{}
}

func newWriteRecorder() *writeRecorder {
	return &writeRecorder{fired: make(chan struct{}, 16)}
}

func (r *writeRecorder) write(_ context.Context, layout []models.LayoutCell) error {
	r.mu.Lock()
	r.writes = append(r.writes, layout)
	err := r.err
	r.mu.Unlock()
	r.fired <- struct{}{}
	return err
}

func (r *writeRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.writes)
}

func (r *writeRecorder) last() []models.LayoutCell {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.writes) == 0 {
		return nil
	}
	return r.writes[len(r.writes)-1]
}

func (r *writeRecorder) waitForWrite(t *testing.T) {
	t.Helper()
	select {
	case <-r.fired:
	case <-time.After(20 * testQuiet):
		t.Fatal("timed out waiting for a write to fire")
	}
}

func testLog() *slog.Logger {
	return slog.New(logger.NewTestHandler(slog.LevelInfo))
}

func layoutOf(id string, y int) []models.LayoutCell {
	return []models.LayoutCell{{I: id, X: 0, Y: y, W: 1, H: 1}}
}

func TestSchedule_CoalescesBurstIntoOneWrite(t *testing.T) {
	rec := newWriteRecorder()
	c := New(testQuiet, rec.write, nil, testLog())
	defer c.Close()

	for i := 0; i < 5; i++ {
		c.Schedule(context.Background(), layoutOf("w1", i))
	}
	rec.waitForWrite(t)

	// Allow a stray second timer to fire if one existed.
	time.Sleep(3 * testQuiet)

	if got := rec.count(); got != 1 {
		t.Fatalf("expected exactly one write for a burst, got %d", got)
	}
	last := rec.last()
	if len(last) != 1 || last[0].Y != 4 {
		t.Errorf("expected payload from the last event (y=4), got %+v", last)
	}
}

func TestSchedule_SeparateQuietPeriodsWriteSeparately(t *testing.T) {
	rec := newWriteRecorder()
	c := New(testQuiet, rec.write, nil, testLog())
	defer c.Close()

	c.Schedule(context.Background(), layoutOf("w1", 0))
	rec.waitForWrite(t)
	c.Schedule(context.Background(), layoutOf("w1", 1))
	rec.waitForWrite(t)

	if got := rec.count(); got != 2 {
		t.Fatalf("expected two writes across two quiet periods, got %d", got)
	}
}

func TestClose_CancelsPendingWrite(t *testing.T) {
	rec := newWriteRecorder()
	c := New(testQuiet, rec.write, nil, testLog())

	c.Schedule(context.Background(), layoutOf("w1", 0))
	c.Close()

	time.Sleep(4 * testQuiet)
	if got := rec.count(); got != 0 {
		t.Fatalf("expected no write after close, got %d", got)
	}
}

func TestSchedule_AfterCloseIsIgnored(t *testing.T) {
	rec := newWriteRecorder()
	c := New(testQuiet, rec.write, nil, testLog())
	c.Close()

	c.Schedule(context.Background(), layoutOf("w1", 0))
	time.Sleep(4 * testQuiet)
	if got := rec.count(); got != 0 {
		t.Fatalf("expected no write after close, got %d", got)
	}
}

func TestFlush_FiresImmediately(t *testing.T) {
	rec := newWriteRecorder()
	c := New(time.Minute, rec.write, nil, testLog())
	defer c.Close()

	c.Schedule(context.Background(), layoutOf("w1", 7))
	c.Flush()

	if got := rec.count(); got != 1 {
		t.Fatalf("expected flush to fire the pending write, got %d writes", got)
	}
	if last := rec.last(); last[0].Y != 7 {
		t.Errorf("unexpected flushed payload: %+v", last)
	}
}

func TestFlush_WithoutPendingIsNoop(t *testing.T) {
	rec := newWriteRecorder()
	c := New(testQuiet, rec.write, nil, testLog())
	defer c.Close()

	c.Flush()
	if got := rec.count(); got != 0 {
		t.Fatalf("expected no write, got %d", got)
	}
}

func TestOnResult_ReceivesWriteError(t *testing.T) {
	rec := newWriteRecorder()
	rec.err = errors.New("gateway down")

	results := make(chan error, 1)
	c := New(testQuiet, rec.write, func(err error) { results <- err }, testLog())
	defer c.Close()

	c.Schedule(context.Background(), layoutOf("w1", 0))

	select {
	case err := <-results:
		if err == nil {
			t.Fatal("expected an error result")
		}
	case <-time.After(20 * testQuiet):
		t.Fatal("timed out waiting for result callback")
	}
}

func TestOnResult_ReceivesNilOnSuccess(t *testing.T) {
	rec := newWriteRecorder()
	results := make(chan error, 1)
	c := New(testQuiet, rec.write, func(err error) { results <- err }, testLog())
	defer c.Close()

	c.Schedule(context.Background(), layoutOf("w1", 0))

	select {
	case err := <-results:
		if err != nil {
			t.Fatalf("expected nil result, got %v", err)
		}
	case <-time.After(20 * testQuiet):
		t.Fatal("timed out waiting for result callback")
	}
}

func TestPending_TracksScheduledWrite(t *testing.T) {
	rec := newWriteRecorder()
	c := New(time.Minute, rec.write, nil, testLog())
	defer c.Close()

	if c.Pending() {
		t.Fatal("expected no pending write initially")
	}
	c.Schedule(context.Background(), layoutOf("w1", 0))
	if !c.Pending() {
		t.Fatal("expected pending write after schedule")
	}
	c.Flush()
	if c.Pending() {
		t.Fatal("expected pending cleared after flush")
	}
}
