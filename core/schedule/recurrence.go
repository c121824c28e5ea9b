package schedule

import (
	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

// Instance is one dated occurrence of a recurring session. Conflict is set when it
// overlaps a stored session; the caller decides whether to keep it.
type Instance struct {
	study.Session
	Conflict bool `json:"conflict"`
}

// ExpandRecurrence materializes tmpl on every date selected by rule, starting at tmpl.Date.
// Instances are checked against existing only, never against each other.
// Without rule.Until, daily and weekly rules stop after WeeklyHorizonDays days.
func (p *Planner) ExpandRecurrence(tmpl study.Session, rule study.RecurrenceRule, existing []study.Session) []Instance {
	dates := p.recurrenceDates(tmpl.Date, rule)
	out := make([]Instance, 0, len(dates))
	for _, date := range dates {
		s := tmpl
		s.Date = date
		s.Tags = copyTags(tmpl.Tags)
		if s.Status == "" {
			s.Status = study.StatusOpen
		}
		if s.ID == "" || len(dates) > 1 {
			s.ID = p.newID()
		}
		out = append(out, Instance{Session: s, Conflict: HasConflict(s, existing)})
	}
	return out
}

func (p *Planner) recurrenceDates(start clock.Date, rule study.RecurrenceRule) []clock.Date {
	if start.IsZero() {
		return nil
	}
	end := rule.Until
	if end.IsZero() {
		end = start.AddDays(p.cfg.WeeklyHorizonDays - 1)
	}

	var match func(clock.Date) bool
	switch rule.Frequency {
	case study.FrequencyDaily:
		match = func(clock.Date) bool { return true }
	case study.FrequencyWeekly:
		days := make(map[clock.Weekday]bool, len(rule.Weekdays))
		for _, d := range rule.Weekdays {
			days[d] = true
		}
		if len(days) == 0 {
			days[start.Weekday()] = true
		}
		match = func(d clock.Date) bool { return days[d.Weekday()] }
	default:
		return []clock.Date{start}
	}

	var dates []clock.Date
	for d := start; !d.After(end); d = d.AddDays(1) {
		if match(d) {
			dates = append(dates, d)
		}
	}
	return dates
}
