package schedule

import (
	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

// Plan is the outcome of one auto-scheduling run.
type Plan struct {
	From     clock.Date      `json:"from"`
	To       clock.Date      `json:"to"`
	Sessions []study.Session `json:"sessions"`
	// Backlog is what remains to be scheduled after the run.
	Backlog Backlog `json:"-"`
}

func (p Plan) TotalMin() int {
	total := 0
	for _, s := range p.Sessions {
		total += s.DurationMin
	}
	return total
}

// State is threaded through every Step of a run.
type State struct {
	Backlog   Backlog
	Existing  []study.Session // sessions stored before the run
	Generated []study.Session // sessions emitted so far
}

func (st State) conflicts(candidate study.Session) bool {
	return HasConflict(candidate, st.Existing) || HasConflict(candidate, st.Generated)
}

// Window returns the target dates of a run started on today: next Monday
// (strictly after today) and the following WindowDays-1 days.
func (p *Planner) Window(today clock.Date) (from, to clock.Date) {
	from = today.NextMonday()
	return from, from.AddDays(p.cfg.WindowDays - 1)
}

// AutoSchedule packs the backlog into the availability of the week after today.
// Neither backlog nor existing are modified; the reduced backlog is returned in the Plan.
// An empty calendar or backlog gives an empty plan.
func (p *Planner) AutoSchedule(today clock.Date, cal Calendar, backlog Backlog, existing []study.Session) Plan {
	from, to := p.Window(today)
	plan := Plan{From: from, To: to, Backlog: backlog}

	st := State{Backlog: backlog, Existing: existing}
	for date := from; !date.After(to) && !st.Backlog.IsEmpty(); date = date.AddDays(1) {
		for _, slot := range cal.Windows(date.Weekday()) {
			if st.Backlog.IsEmpty() {
				break
			}
			var emitted []study.Session
			st, emitted = p.Step(st, date, slot)
			plan.Sessions = append(plan.Sessions, emitted...)
		}
	}
	plan.Backlog = st.Backlog
	return plan
}

// Step fills one availability slot on date and returns the next state with the
// sessions it emitted. A conflicting candidate moves the cursor RetryStepMin
// forward without consuming the task, so the loop always ends within the slot.
// MinChunkMin bounds the free time left in the slot, not the chunk: a task whose
// remaining estimate is shorter is still placed whole.
func (p *Planner) Step(st State, date clock.Date, slot study.Slot) (State, []study.Session) {
	var emitted []study.Session
	cur := slot.Start
	for clock.MinutesBetween(cur, slot.End) >= p.cfg.MinChunkMin && !st.Backlog.IsEmpty() {
		task, _ := st.Backlog.Peek()
		chunk := clock.MinutesBetween(cur, slot.End)
		if task.EstMin < chunk {
			chunk = task.EstMin
		}
		candidate := study.Session{
			SubjectID:   task.SubjectID,
			Title:       task.Title,
			Date:        date,
			Start:       cur,
			DurationMin: chunk,
			Pomos:       p.Pomos(chunk),
			Tags:        copyTags(task.Tags),
			Status:      study.StatusOpen,
		}
		if st.conflicts(candidate) {
			cur = cur.AddMinutes(p.cfg.RetryStepMin)
			continue
		}

		candidate.ID = p.newID()
		emitted = append(emitted, candidate)
		n := len(st.Generated)
		st = State{
			Backlog:   st.Backlog.Reduce(task.ID, chunk),
			Existing:  st.Existing,
			Generated: append(st.Generated[:n:n], candidate),
		}
		cur = cur.AddMinutes(chunk)
	}
	return st, emitted
}

// Pomos converts minutes to pomodoros, rounding half up.
func (p *Planner) Pomos(minutes int) int {
	if minutes <= 0 {
		return 0
	}
	return (2*minutes + p.cfg.PomodoroMin) / (2 * p.cfg.PomodoroMin)
}

func copyTags(tags []string) []string {
	if tags == nil {
		return nil
	}
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
