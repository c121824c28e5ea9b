package schedule

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

// 2025-01-01 is a Wednesday; the target week starts on 2025-01-06.
var (
	today  = clock.MustParseDate("2025-01-01")
	monday = clock.MustParseDate("2025-01-06")
)

func newTestPlanner(t *testing.T, cfg Config) *Planner {
	t.Helper()
	n := 0
	p, err := NewPlanner(cfg, WithIDFunc(func() string {
		n++
		return fmt.Sprintf("gen-%d", n)
	}))
	require.NoError(t, err)
	return p
}

func slot(start, end string) study.Slot {
	return study.Slot{Start: clock.MustParseTime(start), End: clock.MustParseTime(end)}
}

func session(id, date, start string, dur int) study.Session {
	return study.Session{
		ID:          id,
		Date:        clock.MustParseDate(date),
		Start:       clock.MustParseTime(start),
		DurationMin: dur,
		Status:      study.StatusOpen,
	}
}

func TestNewPlanner(t *testing.T) {
	p, err := NewPlanner(Config{})
	require.NoError(t, err)
	assert.Equal(t, Config{
		MinChunkMin:       15,
		RetryStepMin:      15,
		WeeklyHorizonDays: 70,
		PomodoroMin:       25,
		WindowDays:        7,
	}, p.Config())

	p, err = NewPlanner(Config{MinChunkMin: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, p.Config().MinChunkMin)
	assert.Equal(t, 15, p.Config().RetryStepMin)

	_, err = NewPlanner(Config{RetryStepMin: -1})
	assert.True(t, errors.Is(err, ErrInvalidConfig))
}

func TestHasConflict(t *testing.T) {
	existing := []study.Session{
		session("a", "2025-01-06", "08:00", 30),
		session("b", "2025-01-06", "10:00", 60),
	}
	tests := []struct {
		name      string
		candidate study.Session
		exclude   []string
		want      bool
	}{
		{name: "same slot", candidate: session("", "2025-01-06", "08:00", 30), want: true},
		{name: "starts inside", candidate: session("", "2025-01-06", "08:15", 30), want: true},
		{name: "contains", candidate: session("", "2025-01-06", "09:30", 120), want: true},
		{name: "back to back before", candidate: session("", "2025-01-06", "07:30", 30)},
		{name: "back to back after", candidate: session("", "2025-01-06", "08:30", 90)},
		{name: "other date", candidate: session("", "2025-01-07", "08:00", 30)},
		{name: "edited session excluded", candidate: session("a", "2025-01-06", "08:00", 45), exclude: []string{"a"}},
		{name: "excluded but overlaps other", candidate: session("a", "2025-01-06", "08:00", 150), exclude: []string{"a"}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HasConflict(tt.candidate, existing, tt.exclude...); got != tt.want {
				t.Errorf("HasConflict() = %v, want %v", got, tt.want)
			}
		})
	}

	got := Conflicts(session("", "2025-01-06", "08:15", 120), existing)
	if assert.Len(t, got, 2) {
		assert.Equal(t, "a", got[0].ID)
		assert.Equal(t, "b", got[1].ID)
	}
}

func TestCalendar(t *testing.T) {
	cal := NewCalendar([]study.Availability{{Dow: clock.Monday, Slots: []study.Slot{slot("08:00", "10:00")}}})
	assert.False(t, cal.IsEmpty())
	assert.Len(t, cal.Windows(clock.Monday), 1)
	assert.Empty(t, cal.Windows(clock.Tuesday))
	assert.Nil(t, cal.Windows(clock.Weekday(9)))

	updated := cal.SetWindows(clock.Tuesday, []study.Slot{slot("18:00", "19:00")})
	assert.Empty(t, cal.Windows(clock.Tuesday))
	assert.Len(t, updated.Windows(clock.Tuesday), 1)
	assert.Len(t, updated.Windows(clock.Monday), 1)

	w := updated.Windows(clock.Monday)
	w[0].Start = clock.MustParseTime("00:00")
	assert.Equal(t, "08:00", updated.Windows(clock.Monday)[0].Start.String())

	assert.True(t, NewCalendar(nil).IsEmpty())
}

func TestBacklog(t *testing.T) {
	tasks := []study.Task{
		{ID: "low", EstMin: 30, Priority: 3},
		{ID: "first", EstMin: 30, Priority: 1},
		{ID: "second", EstMin: 30, Priority: 1},
		{ID: "empty", EstMin: 0, Priority: 0},
	}
	b := NewBacklog(tasks)
	require.Equal(t, 3, b.Len())

	top, ok := b.Peek()
	require.True(t, ok)
	assert.Equal(t, "first", top.ID)

	reduced := b.Reduce("first", 10)
	top, _ = reduced.Peek()
	assert.Equal(t, "first", top.ID)
	assert.Equal(t, 20, top.EstMin)

	top, _ = b.Peek()
	assert.Equal(t, 30, top.EstMin, "original snapshot must not change")

	reduced = reduced.Reduce("first", 20)
	top, _ = reduced.Peek()
	assert.Equal(t, "second", top.ID)

	updated, removed := reduced.Reduce("second", 5).Changes(b)
	assert.Equal(t, []string{"first"}, removed)
	if assert.Len(t, updated, 1) {
		assert.Equal(t, "second", updated[0].ID)
		assert.Equal(t, 25, updated[0].EstMin)
	}

	empty := NewBacklog(nil)
	assert.True(t, empty.IsEmpty())
	_, ok = empty.Peek()
	assert.False(t, ok)
}

func TestAutoSchedule_ScenarioA(t *testing.T) {
	p := newTestPlanner(t, Config{})
	cal := NewCalendar([]study.Availability{{Dow: clock.Monday, Slots: []study.Slot{slot("08:00", "10:00")}}})
	backlog := NewBacklog([]study.Task{
		{ID: "A", SubjectID: "math", Title: "Task A", EstMin: 90, Priority: 1, Tags: []string{"exam"}},
		{ID: "B", SubjectID: "bio", Title: "Task B", EstMin: 60, Priority: 2},
	})

	plan := p.AutoSchedule(today, cal, backlog, nil)

	assert.Equal(t, monday, plan.From)
	assert.Equal(t, clock.MustParseDate("2025-01-12"), plan.To)
	require.Len(t, plan.Sessions, 2)

	a, b := plan.Sessions[0], plan.Sessions[1]
	assert.Equal(t, "math", a.SubjectID)
	assert.Equal(t, "Task A", a.Title)
	assert.Equal(t, monday, a.Date)
	assert.Equal(t, "08:00", a.Start.String())
	assert.Equal(t, 90, a.DurationMin)
	assert.Equal(t, 4, a.Pomos)
	assert.Equal(t, []string{"exam"}, a.Tags)
	assert.Equal(t, study.StatusOpen, a.Status)
	assert.Equal(t, "gen-1", a.ID)

	assert.Equal(t, "Task B", b.Title)
	assert.Equal(t, "09:30", b.Start.String())
	assert.Equal(t, 30, b.DurationMin)
	assert.Equal(t, 1, b.Pomos)

	rest := plan.Backlog.Tasks()
	require.Len(t, rest, 1)
	assert.Equal(t, "B", rest[0].ID)
	assert.Equal(t, 30, rest[0].EstMin)

	assert.Equal(t, 2, backlog.Len(), "input backlog must not change")
	assert.Equal(t, 120, plan.TotalMin())
}

func TestAutoSchedule_ScenarioB(t *testing.T) {
	p := newTestPlanner(t, Config{})
	cal := NewCalendar([]study.Availability{{Dow: clock.Monday, Slots: []study.Slot{slot("08:00", "09:00")}}})
	backlog := NewBacklog([]study.Task{{ID: "C", Title: "Task C", EstMin: 30, Priority: 1}})
	existing := []study.Session{session("manual", "2025-01-06", "08:00", 30)}

	plan := p.AutoSchedule(today, cal, backlog, existing)

	require.Len(t, plan.Sessions, 1)
	assert.Equal(t, "08:30", plan.Sessions[0].Start.String())
	assert.Equal(t, 30, plan.Sessions[0].DurationMin)
	assert.True(t, plan.Backlog.IsEmpty())
}

func TestAutoSchedule_MinChunk(t *testing.T) {
	cal := NewCalendar([]study.Availability{{Dow: clock.Monday, Slots: []study.Slot{slot("08:00", "08:40")}}})
	backlog := NewBacklog([]study.Task{
		{ID: "A", EstMin: 30, Priority: 1},
		{ID: "B", EstMin: 30, Priority: 2},
	})

	tests := []struct {
		name     string
		minChunk int
		want     []int
	}{
		{name: "default chunk abandons tail", want: []int{30}},
		{name: "small chunk uses tail", minChunk: 5, want: []int{30, 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newTestPlanner(t, Config{MinChunkMin: tt.minChunk})
			plan := p.AutoSchedule(today, cal, backlog, nil)
			var got []int
			for _, s := range plan.Sessions {
				got = append(got, s.DurationMin)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAutoSchedule_ShortRemainder(t *testing.T) {
	p := newTestPlanner(t, Config{})
	cal := NewCalendar([]study.Availability{{Dow: clock.Monday, Slots: []study.Slot{slot("08:00", "08:40"), slot("09:00", "10:00")}}})

	plan := p.AutoSchedule(today, cal, NewBacklog([]study.Task{{ID: "A", EstMin: 45, Priority: 1}}), nil)
	require.Len(t, plan.Sessions, 2)
	assert.Equal(t, "08:00", plan.Sessions[0].Start.String())
	assert.Equal(t, 40, plan.Sessions[0].DurationMin)
	assert.Equal(t, "09:00", plan.Sessions[1].Start.String())
	assert.Equal(t, 5, plan.Sessions[1].DurationMin, "the remainder is placed even below MinChunkMin")
	assert.Equal(t, 0, plan.Sessions[1].Pomos)
	assert.True(t, plan.Backlog.IsEmpty())

	plan = p.AutoSchedule(today, cal, NewBacklog([]study.Task{{ID: "B", EstMin: 10, Priority: 1}}), nil)
	require.Len(t, plan.Sessions, 1)
	assert.Equal(t, 10, plan.Sessions[0].DurationMin)
}

func TestAutoSchedule_Empty(t *testing.T) {
	p := newTestPlanner(t, Config{})
	tasks := NewBacklog([]study.Task{{ID: "A", EstMin: 30}})
	cal := NewCalendar([]study.Availability{{Dow: clock.Monday, Slots: []study.Slot{slot("08:00", "09:00")}}})

	assert.Empty(t, p.AutoSchedule(today, Calendar{}, tasks, nil).Sessions)
	assert.Empty(t, p.AutoSchedule(today, cal, Backlog{}, nil).Sessions)

	// saturated window
	busy := []study.Session{session("x", "2025-01-06", "07:00", 180)}
	plan := p.AutoSchedule(today, cal, tasks, busy)
	assert.Empty(t, plan.Sessions)
	assert.Equal(t, 1, plan.Backlog.Len())
}

func TestAutoSchedule_SpansDays(t *testing.T) {
	p := newTestPlanner(t, Config{})
	cal := NewCalendar([]study.Availability{
		{Dow: clock.Monday, Slots: []study.Slot{slot("08:00", "09:00")}},
		{Dow: clock.Sunday, Slots: []study.Slot{slot("08:00", "09:00")}},
	})
	backlog := NewBacklog([]study.Task{{ID: "A", EstMin: 200, Priority: 1}})

	plan := p.AutoSchedule(monday, cal, backlog, nil)

	require.Len(t, plan.Sessions, 2)
	assert.Equal(t, "2025-01-13", plan.Sessions[0].Date.String(), "today's Monday is not in the window")
	assert.Equal(t, "2025-01-19", plan.Sessions[1].Date.String())
	rest, _ := plan.Backlog.Peek()
	assert.Equal(t, 80, rest.EstMin)
}

func TestAutoSchedule_NotIdempotent(t *testing.T) {
	p := newTestPlanner(t, Config{})
	cal := NewCalendar([]study.Availability{{Dow: clock.Tuesday, Slots: []study.Slot{slot("18:00", "19:00")}}})
	backlog := NewBacklog([]study.Task{{ID: "A", EstMin: 100, Priority: 1}})

	first := p.AutoSchedule(today, cal, backlog, nil)
	second := p.AutoSchedule(today, cal, first.Backlog, first.Sessions)

	assert.Len(t, first.Sessions, 1)
	assert.Empty(t, second.Sessions, "the only slot is taken by the first run")

	third := p.AutoSchedule(monday, cal, first.Backlog, first.Sessions)
	if assert.Len(t, third.Sessions, 1) {
		assert.Equal(t, "2025-01-14", third.Sessions[0].Date.String())
		assert.Equal(t, 40, third.Sessions[0].DurationMin)
	}
	assert.True(t, third.Backlog.IsEmpty())
}

func TestAutoSchedule_Properties(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	p := newTestPlanner(t, Config{})

	for run := 0; run < 50; run++ {
		var avail []study.Availability
		for dow := clock.Sunday; dow <= clock.Saturday; dow++ {
			var slots []study.Slot
			cur := clock.Time(6*60 + rnd.Intn(120))
			for i := 0; i < rnd.Intn(4); i++ {
				end := cur.AddMinutes(10 + rnd.Intn(150))
				slots = append(slots, study.Slot{Start: cur, End: end})
				cur = end.AddMinutes(rnd.Intn(90))
			}
			avail = append(avail, study.Availability{Dow: dow, Slots: slots})
		}
		cal := NewCalendar(avail)

		var tasks []study.Task
		orig := map[string]int{}
		for i := 0; i < rnd.Intn(8); i++ {
			id := fmt.Sprintf("t%d", i)
			est := 5 + rnd.Intn(240)
			tasks = append(tasks, study.Task{ID: id, Title: id, EstMin: est, Priority: rnd.Intn(3)})
			orig[id] = est
		}

		var existing []study.Session
		for i := 0; i < rnd.Intn(6); i++ {
			date := monday.AddDays(rnd.Intn(7))
			existing = append(existing, study.Session{
				ID:          fmt.Sprintf("e%d", i),
				Date:        date,
				Start:       clock.Time(6*60 + rnd.Intn(600)),
				DurationMin: 15 + rnd.Intn(90),
			})
		}

		plan := p.AutoSchedule(today, cal, NewBacklog(tasks), existing)

		assigned := map[string]int{}
		for i, s := range plan.Sessions {
			assert.Greater(t, s.DurationMin, 0)
			assert.False(t, s.Date.Before(plan.From) || s.Date.After(plan.To), "date outside window")
			assert.False(t, HasConflict(s, existing), "overlaps an existing session")
			assert.False(t, HasConflict(s, plan.Sessions[i+1:]), "overlaps a generated session")

			inSlot := false
			for _, sl := range cal.Windows(s.Date.Weekday()) {
				if !s.Start.Before(sl.Start) && !s.End().After(sl.End) {
					inSlot = true
				}
			}
			assert.True(t, inSlot, "session outside of availability")
			assigned[s.Title] += s.DurationMin
		}

		remaining := map[string]int{}
		for _, task := range plan.Backlog.Tasks() {
			remaining[task.ID] = task.EstMin
		}
		for id, est := range orig {
			assert.LessOrEqual(t, assigned[id], est)
			if rest, ok := remaining[id]; ok {
				assert.Equal(t, est, assigned[id]+rest)
			} else {
				assert.Equal(t, est, assigned[id])
			}
		}
	}
}

func TestStep(t *testing.T) {
	p := newTestPlanner(t, Config{})
	st := State{Backlog: NewBacklog([]study.Task{{ID: "A", EstMin: 45}, {ID: "B", EstMin: 45, Priority: 1}})}

	next, emitted := p.Step(st, monday, slot("08:00", "08:50"))
	require.Len(t, emitted, 1)
	assert.Equal(t, 45, emitted[0].DurationMin)
	assert.Len(t, next.Generated, 1)
	assert.Empty(t, st.Generated)
	assert.Equal(t, 2, st.Backlog.Len())
	assert.Equal(t, 1, next.Backlog.Len())

	next, emitted = p.Step(next, monday, slot("08:30", "10:00"))
	require.Len(t, emitted, 1)
	assert.Equal(t, "08:45", emitted[0].Start.String(), "retries past the session generated in the first step")
	assert.Len(t, next.Generated, 2)
	assert.True(t, next.Backlog.IsEmpty())
}

func TestPomos(t *testing.T) {
	p := newTestPlanner(t, Config{})
	tests := []struct {
		minutes int
		want    int
	}{
		{0, 0}, {10, 0}, {12, 0}, {13, 1}, {25, 1}, {30, 1}, {37, 1}, {38, 2}, {90, 4}, {120, 5},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.minutes), func(t *testing.T) {
			assert.Equal(t, tt.want, p.Pomos(tt.minutes))
		})
	}
}

func TestExpandRecurrence(t *testing.T) {
	p := newTestPlanner(t, Config{})
	tmpl := study.Session{
		SubjectID:   "math",
		Title:       "Review",
		Date:        clock.MustParseDate("2025-01-01"),
		Start:       clock.MustParseTime("18:00"),
		DurationMin: 60,
		Pomos:       2,
	}

	t.Run("none", func(t *testing.T) {
		got := p.ExpandRecurrence(tmpl, study.RecurrenceRule{Frequency: study.FrequencyNone}, nil)
		require.Len(t, got, 1)
		assert.Equal(t, tmpl.Date, got[0].Date)
		assert.NotEmpty(t, got[0].ID)
		assert.Equal(t, study.StatusOpen, got[0].Status)
	})

	t.Run("daily", func(t *testing.T) {
		rule := study.RecurrenceRule{Frequency: study.FrequencyDaily, Until: clock.MustParseDate("2025-01-05")}
		got := p.ExpandRecurrence(tmpl, rule, nil)
		require.Len(t, got, 5)
		ids := map[string]bool{}
		for i, inst := range got {
			assert.Equal(t, tmpl.Date.AddDays(i), inst.Date)
			assert.Equal(t, "18:00", inst.Start.String())
			assert.Equal(t, 60, inst.DurationMin)
			assert.Equal(t, "math", inst.SubjectID)
			assert.False(t, inst.Conflict)
			ids[inst.ID] = true
		}
		assert.Len(t, ids, 5)
	})

	t.Run("weekly without until", func(t *testing.T) {
		weekly := tmpl
		weekly.Date = monday
		rule := study.RecurrenceRule{Frequency: study.FrequencyWeekly, Weekdays: []clock.Weekday{clock.Monday, clock.Wednesday}}
		got := p.ExpandRecurrence(weekly, rule, nil)
		require.Len(t, got, 20)
		horizon := monday.AddDays(70)
		for _, inst := range got {
			dow := inst.Date.Weekday()
			assert.True(t, dow == clock.Monday || dow == clock.Wednesday)
			assert.True(t, inst.Date.Before(horizon))
		}
		assert.Equal(t, "2025-03-12", got[len(got)-1].Date.String())
	})

	t.Run("weekly until and template weekday", func(t *testing.T) {
		rule := study.RecurrenceRule{Frequency: study.FrequencyWeekly, Until: clock.MustParseDate("2025-01-31")}
		got := p.ExpandRecurrence(tmpl, rule, nil)
		require.Len(t, got, 5)
		for _, inst := range got {
			assert.Equal(t, clock.Wednesday, inst.Date.Weekday())
		}
	})

	t.Run("conflicts flagged against existing only", func(t *testing.T) {
		existing := []study.Session{session("x", "2025-01-02", "18:30", 30)}
		rule := study.RecurrenceRule{Frequency: study.FrequencyDaily, Until: clock.MustParseDate("2025-01-03")}
		got := p.ExpandRecurrence(tmpl, rule, existing)
		require.Len(t, got, 3)
		assert.False(t, got[0].Conflict)
		assert.True(t, got[1].Conflict)
		assert.False(t, got[2].Conflict)
	})

	t.Run("configurable horizon", func(t *testing.T) {
		short := newTestPlanner(t, Config{WeeklyHorizonDays: 14})
		got := short.ExpandRecurrence(tmpl, study.RecurrenceRule{Frequency: study.FrequencyDaily}, nil)
		assert.Len(t, got, 14)
	})
}
