package pipeline

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestRunnerGoPropagatesError(t *testing.T) {
	r := NewRunner(zap.NewNop())
	defer r.Shutdown(context.Background())

	want := errors.New("boom")
	task := r.Go("failing", func(ctx context.Context) error { return want })

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := task.Wait(ctx); !errors.Is(err, want) {
		t.Fatalf("Wait = %v, want %v", err, want)
	}
	if err := task.Err(); !errors.Is(err, want) {
		t.Fatalf("Err = %v after completion", err)
	}
}

func TestRunnerAfterFires(t *testing.T) {
	r := NewRunner(zap.NewNop())
	defer r.Shutdown(context.Background())

	var fired atomic.Bool
	task := r.After("delayed", 10*time.Millisecond, func(ctx context.Context) error {
		fired.Store(true)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := task.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if !fired.Load() {
		t.Fatal("delayed function never ran")
	}
}

func TestRunnerShutdownCancelsPending(t *testing.T) {
	r := NewRunner(zap.NewNop())

	var fired atomic.Bool
	r.After("never", time.Hour, func(ctx context.Context) error {
		fired.Store(true)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if fired.Load() {
		t.Fatal("pending timer fired despite shutdown")
	}
}

func TestRunnerShutdownWaitsForRunning(t *testing.T) {
	r := NewRunner(zap.NewNop())

	var finished atomic.Bool
	r.Go("slow", func(ctx context.Context) error {
		time.Sleep(50 * time.Millisecond)
		finished.Store(true)
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Shutdown(ctx); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !finished.Load() {
		t.Fatal("shutdown returned before in-flight work finished")
	}
}
