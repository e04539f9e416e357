package search

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newHistory(t *testing.T) *History {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewHistory(rdb)
}

func TestHistoryNewestFirstBounded(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()

	for _, q := range []string{"one", "two", "three", "four", "five", "six"} {
		if err := h.Record(ctx, "device-a", q); err != nil {
			t.Fatalf("record %q: %v", q, err)
		}
	}

	got, err := h.Recent(ctx, "device-a")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}

	want := []string{"six", "five", "four", "three", "two"}
	if len(got) != len(want) {
		t.Fatalf("history = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("history = %v, want %v", got, want)
		}
	}
}

func TestHistoryDedupesAndPromotes(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()

	for _, q := range []string{"alpha", "beta", "alpha"} {
		if err := h.Record(ctx, "device-a", q); err != nil {
			t.Fatalf("record %q: %v", q, err)
		}
	}

	got, err := h.Recent(ctx, "device-a")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 2 || got[0] != "alpha" || got[1] != "beta" {
		t.Fatalf("history = %v, want [alpha beta]", got)
	}
}

func TestHistoryIsPerDevice(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()

	if err := h.Record(ctx, "device-a", "query"); err != nil {
		t.Fatalf("record: %v", err)
	}

	got, err := h.Recent(ctx, "device-b")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("history leaked across devices: %v", got)
	}
}

func TestHistoryClear(t *testing.T) {
	h := newHistory(t)
	ctx := context.Background()

	if err := h.Record(ctx, "device-a", "query"); err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := h.Clear(ctx, "device-a"); err != nil {
		t.Fatalf("clear: %v", err)
	}

	got, err := h.Recent(ctx, "device-a")
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("history = %v, want empty", got)
	}
}
