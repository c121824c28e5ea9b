package study

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/DeivFF/study-space-wire-57-sub000/core"
	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
)

// Session statuses
const (
	StatusOpen = "open"
	StatusDone = "done"
)

// Recurrence frequencies
const (
	FrequencyNone   = "none"
	FrequencyDaily  = "daily"
	FrequencyWeekly = "weekly"
)

type Subject struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// Task is a backlog item. EstMin is the remaining estimate; lower Priority is scheduled first.
type Task struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	Title     string    `json:"title"`
	EstMin    int       `json:"est_min"`
	Priority  int       `json:"priority"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"` // UTC
}

type Session struct {
	ID          string     `json:"id"`
	SubjectID   string     `json:"subject_id"`
	Title       string     `json:"title"`
	Date        clock.Date `json:"date"`
	Start       clock.Time `json:"start"`
	DurationMin int        `json:"duration_min"`
	Pomos       int        `json:"pomos"`
	Tags        []string   `json:"tags"`
	Status      string     `json:"status"`
	Notes       *string    `json:"notes,omitempty"`
	ActualMin   *int       `json:"actual_min,omitempty"`
}

func (s Session) End() clock.Time {
	return s.Start.AddMinutes(s.DurationMin)
}

func (s Session) IsDone() bool { return s.Status == StatusDone }

type Slot struct {
	Start clock.Time `json:"start"`
	End   clock.Time `json:"end"`
}

// Availability holds the recurring study windows of one weekday.
type Availability struct {
	Dow   clock.Weekday `json:"dow"`
	Slots []Slot        `json:"slots"`
}

// RecurrenceRule expands one session template into dated instances. A zero Until means none.
type RecurrenceRule struct {
	Frequency string          `json:"frequency" validate:"required,oneof=none daily weekly"`
	Weekdays  []clock.Weekday `json:"weekdays" validate:"omitempty,dive,min=0,max=6"`
	Until     clock.Date      `json:"until"`
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name  string `json:"name" validate:"notblank,max=80"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

func (ns *NewSubject) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Color = core.CleanString(ns.Color, true /* lower */)
	return validate.Struct(ns)
}

// NewTask contains information needed to add a Task to the backlog.
type NewTask struct {
	SubjectID string   `json:"subject_id" validate:"required"`
	Title     string   `json:"title" validate:"notblank,max=200"`
	EstMin    int      `json:"est_min" validate:"min=1"`
	Priority  int      `json:"priority" validate:"min=0"`
	Tags      []string `json:"tags"`
}

// Validate cleans and validates nt; siblings are the subject's current tasks,
// used to reject near-duplicate titles.
func (nt *NewTask) Validate(validate *validator.Validate, siblings []Task) error {
	nt.SubjectID = core.CleanString(nt.SubjectID)
	nt.Title = core.CleanString(nt.Title)
	nt.Tags = core.CleanTags(nt.Tags)
	if err := validate.Struct(nt); err != nil {
		return err
	}
	return checkSimilarTitle(nt.Title, siblings)
}

// NewSession is a manually entered session, and the template of a recurrence.
type NewSession struct {
	SubjectID   string     `json:"subject_id" validate:"required"`
	Title       string     `json:"title" validate:"notblank,max=200"`
	Date        clock.Date `json:"date" validate:"required"`
	Start       clock.Time `json:"start" validate:"min=0,max=1440"`
	DurationMin int        `json:"duration_min" validate:"min=1"`
	Pomos       *int       `json:"pomos" validate:"omitempty,min=0"`
	Tags        []string   `json:"tags"`
	Notes       string     `json:"notes" validate:"max=2000"`
}

func (ns *NewSession) Validate(validate *validator.Validate) error {
	ns.SubjectID = core.CleanString(ns.SubjectID)
	ns.Title = core.CleanString(ns.Title)
	ns.Notes = core.CleanString(ns.Notes)
	ns.Tags = core.CleanTags(ns.Tags)
	return validate.Struct(ns)
}

// UpdateSession defines what may be changed on an existing Session. Nil fields are left untouched.
type UpdateSession struct {
	Title       *string     `json:"title" validate:"omitempty,notblank,max=200"`
	Date        *clock.Date `json:"date"`
	Start       *clock.Time `json:"start" validate:"omitempty,min=0,max=1440"`
	DurationMin *int        `json:"duration_min" validate:"omitempty,min=1"`
	Tags        []string    `json:"tags"`
	Notes       *string     `json:"notes" validate:"omitempty,max=2000"`
}

func (us *UpdateSession) Validate(validate *validator.Validate) error {
	if us.Title != nil {
		title := core.CleanString(*us.Title)
		us.Title = &title
	}
	if us.Tags != nil {
		us.Tags = core.CleanTags(us.Tags)
	}
	return validate.Struct(us)
}

// Apply returns s with the set fields of us.
func (us UpdateSession) Apply(s Session) Session {
	if us.Title != nil {
		s.Title = *us.Title
	}
	if us.Date != nil && !us.Date.IsZero() {
		s.Date = *us.Date
	}
	if us.Start != nil {
		s.Start = *us.Start
	}
	if us.DurationMin != nil {
		s.DurationMin = *us.DurationMin
	}
	if us.Tags != nil {
		s.Tags = us.Tags
	}
	if us.Notes != nil {
		s.Notes = us.Notes
	}
	return s
}

// NewAvailability replaces the study windows of one weekday.
type NewAvailability struct {
	Dow   clock.Weekday `json:"dow" validate:"min=0,max=6"`
	Slots []Slot        `json:"slots" validate:"dive"`
}

func (na *NewAvailability) Validate(validate *validator.Validate) error {
	return validate.Struct(na)
}

func (rr *RecurrenceRule) Validate(validate *validator.Validate, from clock.Date) error {
	rr.Frequency = core.CleanString(rr.Frequency, true /* lower */)
	if rr.Frequency == "" {
		rr.Frequency = FrequencyNone
	}
	if err := validate.Struct(rr); err != nil {
		return err
	}
	if !rr.Until.IsZero() && rr.Until.Before(from) {
		return core.NewValidationError(nil, core.FieldError{Field: "until", Error: untilBeforeDateText})
	}
	return nil
}

// SessionFilter narrows session queries. Zero fields match everything.
type SessionFilter struct {
	From      clock.Date
	To        clock.Date
	SubjectID string
	Status    string
}

func (sf SessionFilter) Match(s Session) bool {
	if !sf.From.IsZero() && s.Date.Before(sf.From) {
		return false
	}
	if !sf.To.IsZero() && s.Date.After(sf.To) {
		return false
	}
	if sf.SubjectID != "" && s.SubjectID != sf.SubjectID {
		return false
	}
	if sf.Status != "" && s.Status != sf.Status {
		return false
	}
	return true
}
