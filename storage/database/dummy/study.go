package dummydb

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

var errDuplicateID = errors.New("duplicate id")

type studyRepository struct {
	db *DB
}

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(db *DB) study.Repository {
	return &studyRepository{db: db}
}

func (repo *studyRepository) CreateSubject(_ context.Context, subj study.Subject) (study.Subject, error) {
	t := repo.db.subject
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[subj.ID]; ok {
		return study.Subject{}, errors.Wrapf(errDuplicateID, "subject %s", subj.ID)
	}
	t.table[subj.ID] = &subj
	return subj, nil
}

func (repo *studyRepository) QuerySubjects(_ context.Context) ([]study.Subject, error) {
	t := repo.db.subject
	t.RLock()
	defer t.RUnlock()

	subjects := make([]study.Subject, 0, len(t.table))
	for _, s := range t.table {
		subjects = append(subjects, *s)
	}
	sort.Slice(subjects, func(i, j int) bool {
		if subjects[i].Name != subjects[j].Name {
			return subjects[i].Name < subjects[j].Name
		}
		return subjects[i].ID < subjects[j].ID
	})
	return subjects, nil
}

func (repo *studyRepository) GetSubject(_ context.Context, id string) (study.Subject, error) {
	t := repo.db.subject
	t.RLock()
	defer t.RUnlock()

	if s, ok := t.table[id]; ok {
		return *s, nil
	}
	return study.Subject{}, study.ErrSubjectNotFound
}

func (repo *studyRepository) DeleteSubject(_ context.Context, id string) error {
	subjects, tasks, sessions := repo.db.subject, repo.db.task, repo.db.session
	subjects.Lock()
	defer subjects.Unlock()
	tasks.Lock()
	defer tasks.Unlock()
	sessions.Lock()
	defer sessions.Unlock()

	if _, ok := subjects.table[id]; !ok {
		return study.ErrSubjectNotFound
	}
	delete(subjects.table, id)
	for tid, task := range tasks.table {
		if task.SubjectID == id {
			tasks.remove(tid)
		}
	}
	for sid, sess := range sessions.table {
		if sess.SubjectID == id {
			delete(sessions.table, sid)
		}
	}
	return nil
}

// remove deletes a task; the caller holds the lock.
func (t *taskTable) remove(id string) {
	delete(t.table, id)
	for i, tid := range t.order {
		if tid == id {
			t.order = append(t.order[:i:i], t.order[i+1:]...)
			return
		}
	}
}

func (repo *studyRepository) CreateTask(_ context.Context, task study.Task) (study.Task, error) {
	t := repo.db.task
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[task.ID]; ok {
		return study.Task{}, errors.Wrapf(errDuplicateID, "task %s", task.ID)
	}
	stored := task
	stored.Tags = copyStrings(task.Tags)
	t.table[task.ID] = &stored
	t.order = append(t.order, task.ID)
	return task, nil
}

func (repo *studyRepository) QueryTasks(_ context.Context) ([]study.Task, error) {
	t := repo.db.task
	t.RLock()
	defer t.RUnlock()

	tasks := make([]study.Task, 0, len(t.order))
	for _, id := range t.order {
		tasks = append(tasks, *t.table[id])
	}
	return tasks, nil
}

func (repo *studyRepository) GetTask(_ context.Context, id string) (study.Task, error) {
	t := repo.db.task
	t.RLock()
	defer t.RUnlock()

	if task, ok := t.table[id]; ok {
		return *task, nil
	}
	return study.Task{}, study.ErrTaskNotFound
}

func (repo *studyRepository) DeleteTask(_ context.Context, id string) error {
	t := repo.db.task
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[id]; !ok {
		return study.ErrTaskNotFound
	}
	t.remove(id)
	return nil
}

func (repo *studyRepository) CreateSessions(_ context.Context, sessions ...study.Session) ([]study.Session, error) {
	t := repo.db.session
	t.Lock()
	defer t.Unlock()

	if err := t.insert(sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

// insert adds all sessions or none; the caller holds the lock.
func (t *sessionTable) insert(sessions []study.Session) error {
	seen := make(map[string]bool, len(sessions))
	for _, s := range sessions {
		if _, ok := t.table[s.ID]; ok || seen[s.ID] {
			return errors.Wrapf(errDuplicateID, "session %s", s.ID)
		}
		seen[s.ID] = true
	}
	for _, s := range sessions {
		stored := s
		stored.Tags = copyStrings(s.Tags)
		t.table[s.ID] = &stored
	}
	return nil
}

func (repo *studyRepository) QuerySessions(_ context.Context, filter study.SessionFilter) ([]study.Session, error) {
	t := repo.db.session
	t.RLock()
	defer t.RUnlock()

	var sessions []study.Session
	for _, s := range t.table {
		if filter.Match(*s) {
			sessions = append(sessions, *s)
		}
	}
	sort.Slice(sessions, func(i, j int) bool {
		a, b := sessions[i], sessions[j]
		switch {
		case !a.Date.Equal(b.Date):
			return a.Date.Before(b.Date)
		case a.Start != b.Start:
			return a.Start.Before(b.Start)
		default:
			return a.ID < b.ID
		}
	})
	return sessions, nil
}

func (repo *studyRepository) GetSession(_ context.Context, id string) (study.Session, error) {
	t := repo.db.session
	t.RLock()
	defer t.RUnlock()

	if s, ok := t.table[id]; ok {
		return *s, nil
	}
	return study.Session{}, study.ErrSessionNotFound
}

func (repo *studyRepository) UpdateSession(_ context.Context, sess study.Session) (study.Session, error) {
	t := repo.db.session
	t.Lock()
	defer t.Unlock()

	orig, ok := t.table[sess.ID]
	if !ok {
		return study.Session{}, study.ErrSessionNotFound
	}
	sess.SubjectID = orig.SubjectID // not editable
	stored := sess
	stored.Tags = copyStrings(sess.Tags)
	t.table[sess.ID] = &stored
	return sess, nil
}

func (repo *studyRepository) DeleteSession(_ context.Context, id string) error {
	t := repo.db.session
	t.Lock()
	defer t.Unlock()

	if _, ok := t.table[id]; !ok {
		return study.ErrSessionNotFound
	}
	delete(t.table, id)
	return nil
}

func (repo *studyRepository) QueryAvailability(_ context.Context) ([]study.Availability, error) {
	t := repo.db.avail
	t.RLock()
	defer t.RUnlock()

	var avail []study.Availability
	for dow, slots := range t.table {
		if len(slots) > 0 {
			a := study.Availability{Dow: clock.Weekday(dow), Slots: make([]study.Slot, len(slots))}
			copy(a.Slots, slots)
			avail = append(avail, a)
		}
	}
	return avail, nil
}

func (repo *studyRepository) SetAvailability(_ context.Context, avail study.Availability) error {
	if !avail.Dow.Valid() {
		return errors.Errorf("invalid weekday %d", avail.Dow)
	}
	t := repo.db.avail
	t.Lock()
	defer t.Unlock()

	slots := make([]study.Slot, len(avail.Slots))
	copy(slots, avail.Slots)
	t.table[avail.Dow] = slots
	return nil
}

func (repo *studyRepository) CommitPlan(_ context.Context, plan study.PlanCommit) error {
	tasks, sessions := repo.db.task, repo.db.session
	tasks.Lock()
	defer tasks.Unlock()
	sessions.Lock()
	defer sessions.Unlock()

	for _, u := range plan.Updated {
		if _, ok := tasks.table[u.ID]; !ok {
			return errors.Wrapf(study.ErrTaskNotFound, "updating task %s", u.ID)
		}
	}
	if err := sessions.insert(plan.Sessions); err != nil {
		return err
	}
	for _, u := range plan.Updated {
		tasks.table[u.ID].EstMin = u.EstMin
	}
	for _, id := range plan.Removed {
		tasks.remove(id)
	}
	return nil
}

func copyStrings(s []string) []string {
	if s == nil {
		return nil
	}
	out := make([]string, len(s))
	copy(out, s)
	return out
}
