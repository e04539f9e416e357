package notifications

import (
	"time"

	"leaddesk_backend/platform/apperr"
	"leaddesk_backend/platform/busday"
)

// SnoozePreset names a canned wake-up time.
type SnoozePreset string

const (
	SnoozeOneHour   SnoozePreset = "1h"
	SnoozeFourHours SnoozePreset = "4h"
	SnoozeTomorrow  SnoozePreset = "tomorrow9"
	SnoozeNextWeek  SnoozePreset = "nextweek"
	SnoozeCustom    SnoozePreset = "custom"
)

const wakeHour = 9

// ResolveSnoozeUntil turns a preset (or a custom timestamp) into the wake-up
// time. tomorrow9 is 09:00 the next calendar day; nextweek is 09:00 on the
// next Monday, always strictly in the future.
func ResolveSnoozeUntil(preset SnoozePreset, custom *time.Time, now time.Time) (time.Time, error) {
	switch preset {
	case SnoozeOneHour:
		return now.Add(time.Hour), nil
	case SnoozeFourHours:
		return now.Add(4 * time.Hour), nil
	case SnoozeTomorrow:
		tomorrow := now.AddDate(0, 0, 1)
		return time.Date(tomorrow.Year(), tomorrow.Month(), tomorrow.Day(), wakeHour, 0, 0, 0, now.Location()), nil
	case SnoozeNextWeek:
		return busday.NextWeekday(now, time.Monday, wakeHour), nil
	case SnoozeCustom:
		if custom == nil {
			return time.Time{}, apperr.Validation("custom snooze requires a timestamp")
		}
		if !custom.After(now) {
			return time.Time{}, apperr.Validation("snooze time must be in the future")
		}
		return *custom, nil
	default:
		return time.Time{}, apperr.Validation("unknown snooze preset: " + string(preset))
	}
}
