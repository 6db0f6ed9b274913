package shutdown

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestHooksRunInReverseOrder(t *testing.T) {
	h := NewHandler(time.Second)

	var order []int
	for i := 1; i <= 3; i++ {
		i := i
		h.OnShutdown(func(context.Context) error {
			order = append(order, i)
			return nil
		})
	}

	if err := h.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(order) != 3 || order[0] != 3 || order[1] != 2 || order[2] != 1 {
		t.Errorf("order = %v, want [3 2 1]", order)
	}

	select {
	case <-h.Done():
	default:
		t.Error("Done not closed after Run")
	}
}

func TestRunReturnsLastError(t *testing.T) {
	h := NewHandler(time.Second)
	first := errors.New("first")
	second := errors.New("second")

	h.OnShutdown(func(context.Context) error { return first })
	h.OnShutdown(func(context.Context) error { return second })

	// Hooks run in reverse order, so "first" runs last and wins.
	if err := h.Run(); !errors.Is(err, first) {
		t.Errorf("err = %v, want %v", err, first)
	}
}

func TestHookContextHasDeadline(t *testing.T) {
	h := NewHandler(50 * time.Millisecond)
	h.OnShutdown(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			t.Error("hook context has no deadline")
		}
		return nil
	})
	if err := h.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}
