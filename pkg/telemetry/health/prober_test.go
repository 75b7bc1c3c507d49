package health

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

func TestProber_StartProbesImmediately(t *testing.T) {
	var calls atomic.Int32
	checker := New(time.Second)
	checker.RegisterCheck("identity", func(context.Context) error {
		calls.Add(1)
		return errors.New("invalid_client")
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	prober := NewProber(checker, "@every 1h", nil)
	if err := prober.Start(ctx); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	defer prober.Stop()

	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1 immediate probe", calls.Load())
	}
	if !prober.IsRunning() {
		t.Error("expected prober to be running")
	}
	if next := prober.NextRun(); next == nil || next.Before(time.Now()) {
		t.Errorf("NextRun() = %v, want a future time", next)
	}

	// Readiness now answers from the stored result
	status := checker.Readiness(context.Background())
	if status.Ready() {
		t.Error("expected degraded readiness from failed probe")
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d after Readiness, want 1", calls.Load())
	}
}

func TestProber_EmptySchedule(t *testing.T) {
	prober := NewProber(New(time.Second), "", nil)
	if err := prober.Start(context.Background()); err != nil {
		t.Fatalf("Start() = %v", err)
	}
	if prober.IsRunning() {
		t.Error("expected prober to stay idle without a schedule")
	}
}

func TestProber_InvalidSchedule(t *testing.T) {
	prober := NewProber(New(time.Second), "not a schedule", nil)
	if err := prober.Start(context.Background()); err == nil {
		t.Error("expected error for invalid schedule")
	}
}

func TestProber_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	prober := NewProber(New(time.Second), "@every 1h", nil)
	if err := prober.Start(ctx); err != nil {
		t.Fatalf("Start() = %v", err)
	}

	cancel()

	deadline := time.Now().Add(time.Second)
	for prober.IsRunning() && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if prober.IsRunning() {
		t.Error("prober still running after context cancel")
	}
}
