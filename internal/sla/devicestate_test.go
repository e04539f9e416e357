package sla

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

func newDeviceState(t *testing.T) (*DeviceState, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewDeviceState(rdb), mr
}

func sampleBreach() Breach {
	return Breach{
		TenantID: uuid.New(),
		LeadID:   uuid.New(),
		Type:     BreachContact24h,
		DueAt:    time.Now().Add(-2 * time.Hour),
		Level:    1,
	}
}

func TestSnoozeHidesUntilExpiry(t *testing.T) {
	devices, mr := newDeviceState(t)
	ctx := context.Background()
	breach := sampleBreach()

	if err := devices.Snooze(ctx, "device-a", breach.Key(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	visible, err := devices.FilterVisible(ctx, "device-a", []Breach{breach})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(visible) != 0 {
		t.Fatal("snoozed breach still visible")
	}

	// Once the snooze elapses the breach reappears with no further writes.
	mr.FastForward(2 * time.Hour)
	visible, err = devices.FilterVisible(ctx, "device-a", []Breach{breach})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(visible) != 1 {
		t.Fatal("breach did not reappear after snooze elapsed")
	}
}

func TestSnoozeIsPerDevice(t *testing.T) {
	devices, _ := newDeviceState(t)
	ctx := context.Background()
	breach := sampleBreach()

	if err := devices.Snooze(ctx, "device-a", breach.Key(), time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("snooze: %v", err)
	}

	visible, err := devices.FilterVisible(ctx, "device-b", []Breach{breach})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(visible) != 1 {
		t.Fatal("snooze leaked across devices")
	}
}

func TestAcknowledgePersists(t *testing.T) {
	devices, mr := newDeviceState(t)
	ctx := context.Background()
	breach := sampleBreach()

	if err := devices.Acknowledge(ctx, "device-a", breach.Key()); err != nil {
		t.Fatalf("acknowledge: %v", err)
	}

	mr.FastForward(30 * 24 * time.Hour)
	visible, err := devices.FilterVisible(ctx, "device-a", []Breach{breach})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(visible) != 0 {
		t.Fatal("acknowledged breach reappeared")
	}
}

func TestSnoozeAllUsesOneTimestamp(t *testing.T) {
	devices, mr := newDeviceState(t)
	ctx := context.Background()

	first, second := sampleBreach(), sampleBreach()
	second.Type = BreachFollowUpOverdue

	until := time.Now().Add(time.Hour)
	if err := devices.SnoozeAll(ctx, "device-a", []Key{first.Key(), second.Key()}, until); err != nil {
		t.Fatalf("snooze all: %v", err)
	}

	visible, err := devices.FilterVisible(ctx, "device-a", []Breach{first, second})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(visible) != 0 {
		t.Fatalf("visible = %d, want 0", len(visible))
	}

	mr.FastForward(2 * time.Hour)
	visible, err = devices.FilterVisible(ctx, "device-a", []Breach{first, second})
	if err != nil {
		t.Fatalf("filter: %v", err)
	}
	if len(visible) != 2 {
		t.Fatalf("visible = %d, want both after shared wake-up", len(visible))
	}
}
