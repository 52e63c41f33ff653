package scheduler

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestIntervalTicker_StartStop(t *testing.T) {
	tk := NewIntervalTicker(time.Second, zerolog.Nop())
	if tk.Running() {
		t.Fatal("expected new ticker to be stopped")
	}

	var runs int32
	tk.Start(func() { atomic.AddInt32(&runs, 1) })
	tk.Start(func() { atomic.AddInt32(&runs, 100) })
	if !tk.Running() {
		t.Fatal("expected ticker to be running")
	}

	time.Sleep(2500 * time.Millisecond)
	tk.Stop()
	if tk.Running() {
		t.Fatal("expected ticker to be stopped")
	}
	got := atomic.LoadInt32(&runs)
	if got < 1 || got >= 100 {
		t.Fatalf("expected only the first job to run, got %d", got)
	}

	time.Sleep(1500 * time.Millisecond)
	if after := atomic.LoadInt32(&runs); after != got {
		t.Errorf("expected no ticks after Stop, got %d more", after-got)
	}
}

func TestIntervalTicker_Restart(t *testing.T) {
	tk := NewIntervalTicker(time.Second, zerolog.Nop())
	tk.Stop() // stopping a stopped ticker is harmless

	var runs int32
	tk.Start(func() { atomic.AddInt32(&runs, 1) })
	tk.Stop()
	tk.Start(func() { atomic.AddInt32(&runs, 1) })
	defer tk.Stop()
	if !tk.Running() {
		t.Fatal("expected ticker to run after restart")
	}
}
