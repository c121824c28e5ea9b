// Package study holds the planner's data model (subjects, backlog tasks, sessions,
// weekly availability), its input validation and the persistence port.
package study

import (
	"context"
	"errors"
)

var (
	// errors
	ErrSubjectNotFound = errors.New("subject not found")
	ErrTaskNotFound    = errors.New("task not found")
	ErrSessionNotFound = errors.New("session not found")
	ErrSessionConflict = errors.New("session overlaps an existing session")
	ErrSimilarTask     = errors.New("similar task exists")
)

type (
	// PlanCommit is the outcome of one scheduling run, applied atomically.
	PlanCommit struct {
		Sessions []Session // generated sessions to insert
		Updated  []Task    // tasks with a reduced EstMin
		Removed  []string  // ids of fully scheduled tasks
	}

	Repository interface {
		CreateSubject(ctx context.Context, subj Subject) (Subject, error)
		QuerySubjects(ctx context.Context) ([]Subject, error)
		GetSubject(ctx context.Context, id string) (Subject, error)
		// DeleteSubject also deletes the subject's tasks and sessions.
		DeleteSubject(ctx context.Context, id string) error

		CreateTask(ctx context.Context, task Task) (Task, error)
		// QueryTasks returns the backlog in insertion order.
		QueryTasks(ctx context.Context) ([]Task, error)
		GetTask(ctx context.Context, id string) (Task, error)
		DeleteTask(ctx context.Context, id string) error

		// CreateSessions inserts all sessions or none.
		CreateSessions(ctx context.Context, sessions ...Session) ([]Session, error)
		QuerySessions(ctx context.Context, filter SessionFilter) ([]Session, error)
		GetSession(ctx context.Context, id string) (Session, error)
		UpdateSession(ctx context.Context, sess Session) (Session, error)
		DeleteSession(ctx context.Context, id string) error

		// QueryAvailability returns one entry per weekday that has slots.
		QueryAvailability(ctx context.Context) ([]Availability, error)
		SetAvailability(ctx context.Context, avail Availability) error

		// CommitPlan applies a scheduling run in a single transaction.
		CommitPlan(ctx context.Context, plan PlanCommit) error
	}
)
