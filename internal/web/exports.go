package web

import (
	"context"
	"errors"
	"sync/atomic"
	"time"
)

// errExportsBusy maps to RATE001.
var errExportsBusy = errors.New("export rate limit: too many concurrent downloads")

// exportSlots bounds the number of CSV downloads written at once.
type exportSlots struct {
	sem    chan struct{}
	wait   time.Duration
	active atomic.Int32
}

func newExportSlots(max int, wait time.Duration) *exportSlots {
	return &exportSlots{
		sem:  make(chan struct{}, max),
		wait: wait,
	}
}

// acquire takes a slot, waiting up to the configured time. The caller must
// release a slot it acquired.
func (e *exportSlots) acquire(ctx context.Context) error {
	timer := time.NewTimer(e.wait)
	defer timer.Stop()

	select {
	case e.sem <- struct{}{}:
		e.active.Add(1)
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return errExportsBusy
	}
}

func (e *exportSlots) release() {
	e.active.Add(-1)
	<-e.sem
}

// drain blocks until in-flight downloads finish or ctx ends.
func (e *exportSlots) drain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for e.active.Load() > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}
