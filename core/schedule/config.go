// Package schedule is the study-session scheduling engine. It packs backlog tasks
// into weekly availability windows and expands recurring sessions into dated
// instances. Every function here works on in-memory snapshots and performs no I/O.
package schedule

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Defaults applied to zero Config fields.
const (
	DefaultMinChunkMin       = 15
	DefaultRetryStepMin      = 15
	DefaultWeeklyHorizonDays = 70
	DefaultPomodoroMin       = 25
	DefaultWindowDays        = 7
)

var ErrInvalidConfig = errors.New("invalid scheduler config")

type Config struct {
	// MinChunkMin is the smallest session the auto-scheduler creates out of a slot.
	MinChunkMin int
	// RetryStepMin is how far the auto-scheduler moves forward after a conflict.
	RetryStepMin int
	// WeeklyHorizonDays bounds recurrences that have no end date.
	WeeklyHorizonDays int
	PomodoroMin       int
	// WindowDays is the length of the auto-scheduling target window, starting next Monday.
	WindowDays int
}

func (c Config) withDefaults() Config {
	if c.MinChunkMin == 0 {
		c.MinChunkMin = DefaultMinChunkMin
	}
	if c.RetryStepMin == 0 {
		c.RetryStepMin = DefaultRetryStepMin
	}
	if c.WeeklyHorizonDays == 0 {
		c.WeeklyHorizonDays = DefaultWeeklyHorizonDays
	}
	if c.PomodoroMin == 0 {
		c.PomodoroMin = DefaultPomodoroMin
	}
	if c.WindowDays == 0 {
		c.WindowDays = DefaultWindowDays
	}
	return c
}

func (c Config) validate() error {
	fields := map[string]int{
		"min_chunk_min":       c.MinChunkMin,
		"retry_step_min":      c.RetryStepMin,
		"weekly_horizon_days": c.WeeklyHorizonDays,
		"pomodoro_min":        c.PomodoroMin,
		"window_days":         c.WindowDays,
	}
	for name, v := range fields {
		if v < 0 {
			return errors.Wrapf(ErrInvalidConfig, "%s must not be negative, got %d", name, v)
		}
	}
	return nil
}

// Planner runs the engine with a fixed Config. It holds no state between runs.
type Planner struct {
	cfg   Config
	newID func() string
}

type Option func(*Planner)

// WithIDFunc replaces the generator of session ids.
func WithIDFunc(fn func() string) Option {
	return func(p *Planner) {
		if fn != nil {
			p.newID = fn
		}
	}
}

func NewPlanner(cfg Config, opts ...Option) (*Planner, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	p := &Planner{
		cfg:   cfg.withDefaults(),
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Config returns the effective configuration, defaults applied.
func (p *Planner) Config() Config { return p.cfg }
