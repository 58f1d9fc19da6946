package clock

import (
	"fmt"

	"task-delegator/internal/model"
)

// Slot is a named point in the daily notification schedule. Slots are
// derived from wall-clock time, never stored; the slot id is the third
// component of the reminder dedup key.
type Slot struct {
	Tier   model.Urgency
	Hour   int
	Minute int
}

// ID renders the dedup-key form, e.g. "LIGHT_10:00".
func (s Slot) ID() string {
	return fmt.Sprintf("%s_%02d:%02d", tierTag(s.Tier), s.Hour, s.Minute)
}

func tierTag(u model.Urgency) string {
	switch u {
	case model.UrgencyLight:
		return "LIGHT"
	case model.UrgencyAsap:
		return "ASAP"
	case model.UrgencyTurbo:
		return "TURBO"
	}
	return "UNKNOWN"
}

// Turbo fires every 30 minutes from 09:00 through 18:30 inclusive.
const (
	turboStartHour = 9
	turboEndHour   = 18
	turboEndMinute = 30
)

var (
	lightTimes = [][2]int{{10, 0}, {16, 0}}
	asapTimes  = [][2]int{{9, 0}, {13, 0}, {17, 0}}
)

// ActiveSlots returns every slot that fires at the given wall-clock
// time. Most minutes of the day return nothing; ticks at such times are
// no-ops.
func ActiveSlots(hour, minute int) []Slot {
	var slots []Slot
	for _, t := range lightTimes {
		if t[0] == hour && t[1] == minute {
			slots = append(slots, Slot{Tier: model.UrgencyLight, Hour: hour, Minute: minute})
		}
	}
	for _, t := range asapTimes {
		if t[0] == hour && t[1] == minute {
			slots = append(slots, Slot{Tier: model.UrgencyAsap, Hour: hour, Minute: minute})
		}
	}
	if turboActive(hour, minute) {
		slots = append(slots, Slot{Tier: model.UrgencyTurbo, Hour: hour, Minute: minute})
	}
	return slots
}

func turboActive(hour, minute int) bool {
	if minute != 0 && minute != 30 {
		return false
	}
	if hour < turboStartHour || hour > turboEndHour {
		return false
	}
	if hour == turboEndHour && minute > turboEndMinute {
		return false
	}
	return true
}

// SyntheticSlots builds one slot per tier at the given time. Forced job
// runs use these so that an out-of-window invocation still flows
// through the dedup log instead of bypassing it.
func SyntheticSlots(hour, minute int) []Slot {
	return []Slot{
		{Tier: model.UrgencyLight, Hour: hour, Minute: minute},
		{Tier: model.UrgencyAsap, Hour: hour, Minute: minute},
		{Tier: model.UrgencyTurbo, Hour: hour, Minute: minute},
	}
}
