package pylint

import (
	"context"
	"testing"
	"time"
)

func TestThrottle_Disabled(t *testing.T) {
	th := newThrottle(0, 5)
	if th != nil {
		t.Fatal("expected no throttle for a zero rate")
	}
	if err := th.wait(context.Background()); err != nil {
		t.Fatalf("wait on disabled throttle: %v", err)
	}
}

func TestThrottle_WaitsAfterBurst(t *testing.T) {
	th := newThrottle(20, 1)
	if err := th.wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	start := time.Now()
	if err := th.wait(context.Background()); err != nil {
		t.Fatalf("second wait: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 20*time.Millisecond {
		t.Fatalf("second launch after %v, expected a delay", elapsed)
	}
}

func TestThrottle_CanceledContext(t *testing.T) {
	th := newThrottle(0.001, 1)
	if err := th.wait(context.Background()); err != nil {
		t.Fatalf("first wait: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := th.wait(ctx); err == nil {
		t.Fatal("expected error when the context ends before a slot frees")
	}
}
