package sla

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DeviceState keeps per-device alert suppression in redis. Snoozes carry a
// TTL and expire on their own; acknowledgements persist until the key is
// deleted by hand. State is scoped to the device, not the user: two devices
// of the same user snooze independently.
type DeviceState struct {
	rdb *redis.Client
}

func NewDeviceState(rdb *redis.Client) *DeviceState {
	return &DeviceState{rdb: rdb}
}

func snoozeKey(deviceID string, key Key) string {
	return fmt.Sprintf("sla:snooze:%s:%s:%s", deviceID, key.LeadID, key.Type)
}

func ackKey(deviceID string, key Key) string {
	return fmt.Sprintf("sla:ack:%s:%s:%s", deviceID, key.LeadID, key.Type)
}

// Snooze hides a breach on this device until the given time. Snoozing again
// replaces the previous timestamp.
func (d *DeviceState) Snooze(ctx context.Context, deviceID string, key Key, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return d.rdb.Del(ctx, snoozeKey(deviceID, key)).Err()
	}
	return d.rdb.Set(ctx, snoozeKey(deviceID, key), until.UTC().Format(time.RFC3339), ttl).Err()
}

// SnoozeAll applies one target timestamp to every given breach.
func (d *DeviceState) SnoozeAll(ctx context.Context, deviceID string, keys []Key, until time.Time) error {
	for _, key := range keys {
		if err := d.Snooze(ctx, deviceID, key, until); err != nil {
			return err
		}
	}
	return nil
}

// Acknowledge hides a breach on this device permanently.
func (d *DeviceState) Acknowledge(ctx context.Context, deviceID string, key Key) error {
	return d.rdb.Set(ctx, ackKey(deviceID, key), time.Now().UTC().Format(time.RFC3339), 0).Err()
}

// FilterVisible removes breaches the device has snoozed or acknowledged.
func (d *DeviceState) FilterVisible(ctx context.Context, deviceID string, breaches []Breach) ([]Breach, error) {
	if len(breaches) == 0 {
		return breaches, nil
	}

	pipe := d.rdb.Pipeline()
	checks := make([]*redis.IntCmd, len(breaches))
	for i, b := range breaches {
		checks[i] = pipe.Exists(ctx, snoozeKey(deviceID, b.Key()), ackKey(deviceID, b.Key()))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	visible := make([]Breach, 0, len(breaches))
	for i, b := range breaches {
		if checks[i].Val() == 0 {
			visible = append(visible, b)
		}
	}
	return visible, nil
}
