package main

import (
	"fmt"
	"strings"

	"github.com/DeivFF/study-space-wire-57-sub000/core"
	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

func argError(flag string, err error) error {
	return core.NewArgumentError(fmt.Sprintf("-%s: %v", flag, err))
}

// parseDate parses a YYYY-MM-DD flag value. An empty value is the zero date.
func parseDate(flag, s string) (clock.Date, error) {
	if s = strings.TrimSpace(s); s == "" {
		return clock.Date{}, nil
	}
	d, err := clock.ParseDate(s)
	if err != nil {
		return clock.Date{}, argError(flag, err)
	}
	return d, nil
}

func parseTime(flag, s string) (clock.Time, error) {
	t, err := clock.ParseTime(strings.TrimSpace(s))
	if err != nil {
		return 0, argError(flag, err)
	}
	return t, nil
}

// parseSlots parses "08:00-10:00,14:00-16:30".
func parseSlots(flag, s string) ([]study.Slot, error) {
	var slots []study.Slot
	for _, part := range splitList(s) {
		bounds := strings.SplitN(part, "-", 2)
		if len(bounds) != 2 {
			return nil, argError(flag, fmt.Errorf("slot %q must look like HH:MM-HH:MM", part))
		}
		start, err := parseTime(flag, bounds[0])
		if err != nil {
			return nil, err
		}
		end, err := parseTime(flag, bounds[1])
		if err != nil {
			return nil, err
		}
		slots = append(slots, study.Slot{Start: start, End: end})
	}
	return slots, nil
}

// parseWeekdays parses "mon,wed,5".
func parseWeekdays(flag, s string) ([]clock.Weekday, error) {
	var days []clock.Weekday
	for _, part := range splitList(s) {
		d, err := clock.ParseWeekday(part)
		if err != nil {
			return nil, argError(flag, err)
		}
		days = append(days, d)
	}
	return days, nil
}

// splitList splits a comma separated value, dropping blank items.
func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
