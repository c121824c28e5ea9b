package schedule

import (
	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

// Calendar holds the weekly study windows, indexed by weekday.
// Slots are expected sorted and non-overlapping with start < end; the engine does not check.
type Calendar struct {
	days [clock.DaysPerWeek][]study.Slot
}

func NewCalendar(avail []study.Availability) Calendar {
	var cal Calendar
	for _, a := range avail {
		if a.Dow.Valid() {
			cal.days[a.Dow] = copySlots(a.Slots)
		}
	}
	return cal
}

// Windows returns a copy of the slots of dow.
func (c Calendar) Windows(dow clock.Weekday) []study.Slot {
	if !dow.Valid() {
		return nil
	}
	return copySlots(c.days[dow])
}

// SetWindows returns a calendar with the slots of dow replaced.
func (c Calendar) SetWindows(dow clock.Weekday, slots []study.Slot) Calendar {
	if !dow.Valid() {
		return c
	}
	out := c
	out.days[dow] = copySlots(slots)
	return out
}

func (c Calendar) IsEmpty() bool {
	for _, slots := range c.days {
		if len(slots) > 0 {
			return false
		}
	}
	return true
}

func copySlots(slots []study.Slot) []study.Slot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]study.Slot, len(slots))
	copy(out, slots)
	return out
}
