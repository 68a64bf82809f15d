package lockout

import (
	"context"
	"testing"
	"time"

	"github.com/jjaoguedes/facegate/internal/config"
	"github.com/jjaoguedes/facegate/internal/database"
	"github.com/jjaoguedes/facegate/internal/database/mock"
)

func testGuard() (*Guard, database.CounterStore, context.Context) {
	store := mock.NewStore()
	cfg := config.LockoutConfig{FailureThreshold: 5, Window: 5 * time.Minute}
	return NewGuard(store.Counters(), cfg), store.Counters(), context.Background()
}

func TestIsBlocked_UnknownSource(t *testing.T) {
	guard, _, ctx := testGuard()

	blocked, err := guard.IsBlocked(ctx, "10.0.0.5", time.Now())
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if blocked {
		t.Error("unknown source must not be blocked")
	}
}

func TestIsBlocked_ThresholdBoundary(t *testing.T) {
	guard, _, ctx := testGuard()
	now := time.Now()
	source := "10.0.0.5"

	// threshold-1 failures inside the window do not block.
	for i := 0; i < 4; i++ {
		if err := guard.RecordFailure(ctx, source, now.Add(time.Duration(i)*time.Second)); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}
	blocked, err := guard.IsBlocked(ctx, source, now.Add(5*time.Second))
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if blocked {
		t.Error("4 failures must not block with threshold 5")
	}

	// The threshold-th failure blocks.
	if err := guard.RecordFailure(ctx, source, now.Add(5*time.Second)); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	blocked, err = guard.IsBlocked(ctx, source, now.Add(6*time.Second))
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if !blocked {
		t.Error("5th failure inside the window must block")
	}
}

func TestIsBlocked_WindowExpiryResets(t *testing.T) {
	guard, counters, ctx := testGuard()
	now := time.Now()
	source := "10.0.0.5"

	for i := 0; i < 5; i++ {
		if err := guard.RecordFailure(ctx, source, now); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	// 6 minutes later the window has elapsed: the check clears the counter.
	later := now.Add(6 * time.Minute)
	blocked, err := guard.IsBlocked(ctx, source, later)
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if blocked {
		t.Error("expired window must not block")
	}

	// A new failure after the reset starts over at 1 and does not block.
	if err := guard.RecordFailure(ctx, source, later); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	counter, err := counters.Get(ctx, source)
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if counter == nil || counter.Attempts != 1 {
		t.Fatalf("expected counter reset to 1, got %+v", counter)
	}
	blocked, err = guard.IsBlocked(ctx, source, later.Add(time.Second))
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if blocked {
		t.Error("single failure after reset must not block")
	}
}

func TestIsBlocked_CountsAccumulateWhileBlocked(t *testing.T) {
	guard, _, ctx := testGuard()
	now := time.Now()
	source := "10.0.0.5"

	for i := 0; i < 5; i++ {
		if err := guard.RecordFailure(ctx, source, now); err != nil {
			t.Fatalf("record failure: %v", err)
		}
	}

	// Failures while blocked refresh the window anchor, extending the block.
	if err := guard.RecordFailure(ctx, source, now.Add(4*time.Minute)); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	blocked, err := guard.IsBlocked(ctx, source, now.Add(8*time.Minute))
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if !blocked {
		t.Error("refreshed window must still block 4 minutes after the last attempt")
	}
}

func TestIsBlocked_UnderThresholdCounterSurvivesExpiry(t *testing.T) {
	guard, counters, ctx := testGuard()
	now := time.Now()
	source := "10.0.0.5"

	if err := guard.RecordFailure(ctx, source, now); err != nil {
		t.Fatalf("record failure: %v", err)
	}

	// The reset side effect only applies to counters at or over the
	// threshold; a stale under-threshold counter just keeps accumulating.
	blocked, err := guard.IsBlocked(ctx, source, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("IsBlocked: %v", err)
	}
	if blocked {
		t.Error("single stale failure must not block")
	}
	counter, err := counters.Get(ctx, source)
	if err != nil {
		t.Fatalf("get counter: %v", err)
	}
	if counter == nil {
		t.Error("under-threshold counter must not be deleted by the check")
	}
}
