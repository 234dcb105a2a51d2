package core

import (
	"sync"
	"testing"
	"time"
)

func TestDebouncer_LatestWins(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	var mu sync.Mutex
	var got []string
	done := make(chan struct{})

	record := func(term string) func() {
		return func() {
			mu.Lock()
			got = append(got, term)
			mu.Unlock()
			if term == "risk" {
				close(done)
			}
		}
	}

	d.Trigger(record("r"))
	d.Trigger(record("ri"))
	d.Trigger(record("ris"))
	d.Trigger(record("risk"))

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced call never fired")
	}

	// Give superseded timers a chance to misfire.
	time.Sleep(60 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 1 || got[0] != "risk" {
		t.Errorf("fired = %v, want [risk]", got)
	}
	if d.Pending() {
		t.Error("Pending() = true after firing")
	}
}

func TestDebouncer_Stop(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)

	fired := make(chan struct{}, 1)
	d.Trigger(func() { fired <- struct{}{} })
	if !d.Pending() {
		t.Fatal("Pending() = false right after Trigger")
	}
	d.Stop()

	select {
	case <-fired:
		t.Error("stopped call fired")
	case <-time.After(80 * time.Millisecond):
	}
	if d.Pending() {
		t.Error("Pending() = true after Stop")
	}
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	if got := NewDebouncer(0).Delay(); got != DefaultDebounce {
		t.Errorf("Delay() = %v, want %v", got, DefaultDebounce)
	}
}
