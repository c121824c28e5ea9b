// Package planner is the application service of the study planner. It validates input,
// loads snapshots from the repository, runs the scheduling engine and commits its output.
package planner

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/DeivFF/study-space-wire-57-sub000/core"
	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/schedule"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

const weeklyPlanTemplate = "weekly_plan"

// mockable
var (
	nowFunc   = time.Now
	newIDFunc = func() string { return uuid.New().String() }
)

var endOfDay = clock.MustParseTime("24:00")

type (
	Service struct {
		repo    study.Repository
		engine  *schedule.Planner
		emails  core.EmailService
		logger  core.Logger
		digests []mail.Address

		// mu serializes runs that read and rewrite the backlog.
		mu sync.Mutex
	}

	Options struct {
		Repo   study.Repository
		Engine *schedule.Planner
		Emails core.EmailService
		Logger core.Logger
		// DigestTo receives the weekly plan digest. Empty disables it.
		DigestTo []mail.Address
	}

	weeklyPlanData struct {
		From      clock.Date
		To        clock.Date
		Sessions  []study.Session
		TotalMin  int
		Remaining int
	}
)

// EngineConfig maps the scheduler settings of the application config.
func EngineConfig(sc core.SchedulerConfig) schedule.Config {
	return schedule.Config{
		MinChunkMin:       sc.MinChunkMin,
		RetryStepMin:      sc.RetryStepMin,
		WeeklyHorizonDays: sc.WeeklyHorizonDays,
		PomodoroMin:       sc.PomodoroMin,
		WindowDays:        sc.WindowDays,
	}
}

func NewService(opts Options) *Service {
	return &Service{
		repo:    opts.Repo,
		engine:  opts.Engine,
		emails:  opts.Emails,
		logger:  opts.Logger,
		digests: opts.DigestTo,
	}
}

// Subjects

func (svc *Service) CreateSubject(ctx context.Context, ns study.NewSubject) (study.Subject, error) {
	if err := ns.Validate(core.Validate); err != nil {
		return study.Subject{}, err
	}
	return svc.repo.CreateSubject(ctx, study.Subject{ID: newIDFunc(), Name: ns.Name, Color: ns.Color})
}

func (svc *Service) QuerySubjects(ctx context.Context) ([]study.Subject, error) {
	return svc.repo.QuerySubjects(ctx)
}

// DeleteSubject deletes the subject with its tasks and sessions.
func (svc *Service) DeleteSubject(ctx context.Context, id string) error {
	return svc.repo.DeleteSubject(ctx, id)
}

func (svc *Service) checkSubject(ctx context.Context, id string) error {
	_, err := svc.repo.GetSubject(ctx, id)
	if errors.Is(err, study.ErrSubjectNotFound) {
		return core.NewValidationError(err, core.FieldError{Field: "subject_id", Error: err.Error()})
	}
	return err
}

// Tasks

func (svc *Service) CreateTask(ctx context.Context, nt study.NewTask) (study.Task, error) {
	tasks, err := svc.repo.QueryTasks(ctx)
	if err != nil {
		return study.Task{}, errors.Wrap(err, "querying tasks")
	}
	subjectID := core.CleanString(nt.SubjectID)
	var siblings []study.Task
	for _, t := range tasks {
		if t.SubjectID == subjectID {
			siblings = append(siblings, t)
		}
	}
	if err = nt.Validate(core.Validate, siblings); err != nil {
		return study.Task{}, err
	}
	if err = svc.checkSubject(ctx, nt.SubjectID); err != nil {
		return study.Task{}, err
	}

	return svc.repo.CreateTask(ctx, study.Task{
		ID:        newIDFunc(),
		SubjectID: nt.SubjectID,
		Title:     nt.Title,
		EstMin:    nt.EstMin,
		Priority:  nt.Priority,
		Tags:      nt.Tags,
		CreatedAt: nowFunc().UTC(),
	})
}

// QueryBacklog returns the pending tasks in scheduling order.
func (svc *Service) QueryBacklog(ctx context.Context) ([]study.Task, error) {
	tasks, err := svc.repo.QueryTasks(ctx)
	if err != nil {
		return nil, err
	}
	return schedule.NewBacklog(tasks).Tasks(), nil
}

func (svc *Service) DeleteTask(ctx context.Context, id string) error {
	return svc.repo.DeleteTask(ctx, id)
}

// Sessions

func (svc *Service) sessionsOn(ctx context.Context, date clock.Date) ([]study.Session, error) {
	sessions, err := svc.repo.QuerySessions(ctx, study.SessionFilter{From: date, To: date})
	return sessions, errors.Wrap(err, "querying sessions")
}

func conflictError(conflicts []study.Session) error {
	msgs := make([]string, 0, len(conflicts))
	for _, c := range conflicts {
		msgs = append(msgs, fmt.Sprintf("%q %s-%s", c.Title, c.Start, c.End()))
	}
	return core.NewValidationError(study.ErrSessionConflict, core.FieldError{
		Field: "start",
		Error: "overlaps " + strings.Join(msgs, ", "),
	})
}

// CreateSession saves a manual session. An overlap with a stored session is
// rejected with study.ErrSessionConflict unless override is set.
func (svc *Service) CreateSession(ctx context.Context, ns study.NewSession, override bool) (study.Session, error) {
	if err := ns.Validate(core.Validate); err != nil {
		return study.Session{}, err
	}
	if err := svc.checkSubject(ctx, ns.SubjectID); err != nil {
		return study.Session{}, err
	}

	sess := svc.newSession(ns)
	existing, err := svc.sessionsOn(ctx, sess.Date)
	if err != nil {
		return study.Session{}, err
	}
	if conflicts := schedule.Conflicts(sess, existing); len(conflicts) > 0 && !override {
		return study.Session{}, conflictError(conflicts)
	}

	created, err := svc.repo.CreateSessions(ctx, sess)
	if err != nil {
		return study.Session{}, err
	}
	return created[0], nil
}

func (svc *Service) newSession(ns study.NewSession) study.Session {
	pomos := svc.engine.Pomos(ns.DurationMin)
	if ns.Pomos != nil {
		pomos = *ns.Pomos
	}
	sess := study.Session{
		ID:          newIDFunc(),
		SubjectID:   ns.SubjectID,
		Title:       ns.Title,
		Date:        ns.Date,
		Start:       ns.Start,
		DurationMin: ns.DurationMin,
		Pomos:       pomos,
		Tags:        ns.Tags,
		Status:      study.StatusOpen,
	}
	if ns.Notes != "" {
		notes := ns.Notes
		sess.Notes = &notes
	}
	return sess
}

// UpdateSession edits a stored session. The session never conflicts with its own stored version.
func (svc *Service) UpdateSession(ctx context.Context, id string, us study.UpdateSession, override bool) (study.Session, error) {
	if err := us.Validate(core.Validate); err != nil {
		return study.Session{}, err
	}
	orig, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return study.Session{}, err
	}

	sess := us.Apply(orig)
	if sess.End().After(endOfDay) {
		return study.Session{}, core.NewValidationError(nil, core.FieldError{
			Field: "duration_min",
			Error: "session cannot run past midnight",
		})
	}
	if us.DurationMin != nil {
		sess.Pomos = svc.engine.Pomos(sess.DurationMin)
	}

	existing, err := svc.sessionsOn(ctx, sess.Date)
	if err != nil {
		return study.Session{}, err
	}
	if conflicts := schedule.Conflicts(sess, existing, sess.ID); len(conflicts) > 0 && !override {
		return study.Session{}, conflictError(conflicts)
	}
	return svc.repo.UpdateSession(ctx, sess)
}

// CompleteSession marks a session done. A nil actualMin records the planned duration.
func (svc *Service) CompleteSession(ctx context.Context, id string, actualMin *int, notes string) (study.Session, error) {
	if actualMin != nil && *actualMin < 0 {
		return study.Session{}, core.NewValidationError(nil, core.FieldError{
			Field: "actual_min",
			Error: "actual_min must be 0 or greater",
		})
	}
	sess, err := svc.repo.GetSession(ctx, id)
	if err != nil {
		return study.Session{}, err
	}

	actual := sess.DurationMin
	if actualMin != nil {
		actual = *actualMin
	}
	sess.Status = study.StatusDone
	sess.ActualMin = &actual
	if notes = core.CleanString(notes); notes != "" {
		sess.Notes = &notes
	}
	return svc.repo.UpdateSession(ctx, sess)
}

func (svc *Service) DeleteSession(ctx context.Context, id string) error {
	return svc.repo.DeleteSession(ctx, id)
}

func (svc *Service) QuerySessions(ctx context.Context, filter study.SessionFilter) ([]study.Session, error) {
	return svc.repo.QuerySessions(ctx, filter)
}

// Availability

func (svc *Service) SetAvailability(ctx context.Context, na study.NewAvailability) error {
	if err := na.Validate(core.Validate); err != nil {
		return err
	}
	return svc.repo.SetAvailability(ctx, study.Availability{Dow: na.Dow, Slots: na.Slots})
}

func (svc *Service) GetCalendar(ctx context.Context) (schedule.Calendar, error) {
	avail, err := svc.repo.QueryAvailability(ctx)
	if err != nil {
		return schedule.Calendar{}, errors.Wrap(err, "querying availability")
	}
	return schedule.NewCalendar(avail), nil
}

// Scheduling

// AutoSchedule plans the week after today from the stored availability and backlog,
// then commits the generated sessions and the reduced backlog in one batch.
// Running it again consumes the backlog further.
func (svc *Service) AutoSchedule(ctx context.Context, today clock.Date) (schedule.Plan, error) {
	svc.mu.Lock()
	defer svc.mu.Unlock()

	cal, err := svc.GetCalendar(ctx)
	if err != nil {
		return schedule.Plan{}, err
	}
	tasks, err := svc.repo.QueryTasks(ctx)
	if err != nil {
		return schedule.Plan{}, errors.Wrap(err, "querying tasks")
	}
	from, to := svc.engine.Window(today)
	existing, err := svc.repo.QuerySessions(ctx, study.SessionFilter{From: from, To: to})
	if err != nil {
		return schedule.Plan{}, errors.Wrap(err, "querying sessions")
	}

	backlog := schedule.NewBacklog(tasks)
	if cal.IsEmpty() {
		svc.logger.Warn("auto-schedule: no availability set", map[string]interface{}{
			"from": from.String(), "to": to.String(), "backlog": backlog.Len(),
		})
		return schedule.Plan{From: from, To: to, Backlog: backlog}, nil
	}
	plan := svc.engine.AutoSchedule(today, cal, backlog, existing)
	if len(plan.Sessions) == 0 {
		svc.logger.Info("auto-schedule: nothing to schedule", map[string]interface{}{
			"from": plan.From.String(), "to": plan.To.String(), "backlog": backlog.Len(),
		})
		return plan, nil
	}

	updated, removed := plan.Backlog.Changes(backlog)
	commit := study.PlanCommit{Sessions: plan.Sessions, Updated: updated, Removed: removed}
	if err = svc.repo.CommitPlan(ctx, commit); err != nil {
		return schedule.Plan{}, errors.Wrap(err, "committing plan")
	}

	svc.logger.Info("auto-schedule: plan committed", map[string]interface{}{
		"from":      plan.From.String(),
		"to":        plan.To.String(),
		"sessions":  len(plan.Sessions),
		"minutes":   plan.TotalMin(),
		"completed": len(removed),
		"remaining": plan.Backlog.Len(),
	})
	svc.sendDigest(plan)
	return plan, nil
}

func (svc *Service) sendDigest(plan schedule.Plan) {
	if svc.emails == nil || len(svc.digests) == 0 {
		return
	}
	svc.emails.SendMessages(&core.EmailMessage{
		To:           svc.digests,
		Subject:      fmt.Sprintf("Study plan %s - %s", plan.From, plan.To),
		TemplateName: weeklyPlanTemplate,
		TemplateData: weeklyPlanData{
			From:      plan.From,
			To:        plan.To,
			Sessions:  plan.Sessions,
			TotalMin:  plan.TotalMin(),
			Remaining: plan.Backlog.Len(),
		},
	})
}

// ExpandRecurrence proposes the instances of a recurring session. Instances that
// overlap stored sessions are flagged, not dropped; nothing is saved.
func (svc *Service) ExpandRecurrence(ctx context.Context, ns study.NewSession, rule study.RecurrenceRule) ([]schedule.Instance, error) {
	if err := ns.Validate(core.Validate); err != nil {
		return nil, err
	}
	if err := rule.Validate(core.Validate, ns.Date); err != nil {
		return nil, err
	}
	if err := svc.checkSubject(ctx, ns.SubjectID); err != nil {
		return nil, err
	}

	existing, err := svc.repo.QuerySessions(ctx, study.SessionFilter{From: ns.Date, To: rule.Until})
	if err != nil {
		return nil, errors.Wrap(err, "querying sessions")
	}
	tmpl := svc.newSession(ns)
	tmpl.ID = ""
	return svc.engine.ExpandRecurrence(tmpl, rule, existing), nil
}

// SaveInstances stores the proposed instances in one batch. Conflicting instances
// are skipped unless keepConflicts is set.
func (svc *Service) SaveInstances(ctx context.Context, instances []schedule.Instance, keepConflicts bool) ([]study.Session, error) {
	sessions := make([]study.Session, 0, len(instances))
	for _, inst := range instances {
		if inst.Conflict && !keepConflicts {
			continue
		}
		sessions = append(sessions, inst.Session)
	}
	if len(sessions) == 0 {
		return nil, nil
	}
	saved, err := svc.repo.CreateSessions(ctx, sessions...)
	if err != nil {
		return nil, errors.Wrap(err, "saving sessions")
	}
	return saved, nil
}
