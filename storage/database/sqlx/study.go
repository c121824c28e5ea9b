package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

const (
	subjectColumns = "id, name, color"
	taskColumns    = "id, subject_id, title, est_min, priority, tags, created_at"
	sessionColumns = "id, subject_id, title, day, start_time, duration_min, pomos, tags, status, notes, actual_min"

	insertSession = `INSERT INTO sessions (` + sessionColumns + `)
		VALUES (:id, :subject_id, :title, :day, :start_time, :duration_min, :pomos, :tags, :status, :notes, :actual_min)`
)

type positionedTask struct {
	taskRow
	Position int `db:"position"`
}

type studyRepository struct {
	db *sqlx.DB
}

var _ study.Repository = (*studyRepository)(nil) // interface compliance check

func NewStudyRepository(db *sqlx.DB) study.Repository {
	return &studyRepository{db: db}
}

func (repo *studyRepository) CreateSubject(ctx context.Context, subj study.Subject) (study.Subject, error) {
	q := `INSERT INTO subjects (` + subjectColumns + `) VALUES (:id, :name, :color)`
	if _, err := repo.db.NamedExecContext(ctx, q, toSubjectRow(subj)); err != nil {
		return study.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return subj, nil
}

func (repo *studyRepository) QuerySubjects(ctx context.Context) ([]study.Subject, error) {
	var rows []subjectRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+subjectColumns+` FROM subjects ORDER BY name, id`); err != nil {
		return nil, errors.Wrap(err, "selecting subjects")
	}
	subjects := make([]study.Subject, 0, len(rows))
	for _, r := range rows {
		subjects = append(subjects, r.model())
	}
	return subjects, nil
}

func (repo *studyRepository) GetSubject(ctx context.Context, id string) (study.Subject, error) {
	var row subjectRow
	err := repo.db.GetContext(ctx, &row, repo.db.Rebind(`SELECT `+subjectColumns+` FROM subjects WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return study.Subject{}, study.ErrSubjectNotFound
	} else if err != nil {
		return study.Subject{}, errors.Wrap(err, "selecting subject")
	}
	return row.model(), nil
}

func (repo *studyRepository) DeleteSubject(ctx context.Context, id string) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM sessions WHERE subject_id = ?`), id); err != nil {
			return errors.Wrap(err, "deleting subject sessions")
		}
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM tasks WHERE subject_id = ?`), id); err != nil {
			return errors.Wrap(err, "deleting subject tasks")
		}
		res, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM subjects WHERE id = ?`), id)
		if err != nil {
			return errors.Wrap(err, "deleting subject")
		}
		return mustAffect(res, study.ErrSubjectNotFound)
	})
}

func (repo *studyRepository) CreateTask(ctx context.Context, task study.Task) (study.Task, error) {
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		// position keeps the insertion order of the backlog
		var pos int
		if err := tx.GetContext(ctx, &pos, `SELECT COALESCE(MAX(position), 0) + 1 FROM tasks`); err != nil {
			return errors.Wrap(err, "selecting task position")
		}
		row := positionedTask{taskRow: toTaskRow(task), Position: pos}
		q := `INSERT INTO tasks (` + taskColumns + `, position)
			VALUES (:id, :subject_id, :title, :est_min, :priority, :tags, :created_at, :position)`
		_, err := tx.NamedExecContext(ctx, q, row)
		return errors.Wrap(err, "inserting task")
	})
	if err != nil {
		return study.Task{}, err
	}
	return task, nil
}

func (repo *studyRepository) QueryTasks(ctx context.Context) ([]study.Task, error) {
	var rows []taskRow
	if err := repo.db.SelectContext(ctx, &rows, `SELECT `+taskColumns+` FROM tasks ORDER BY position`); err != nil {
		return nil, errors.Wrap(err, "selecting tasks")
	}
	tasks := make([]study.Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.model())
	}
	return tasks, nil
}

func (repo *studyRepository) GetTask(ctx context.Context, id string) (study.Task, error) {
	var row taskRow
	err := repo.db.GetContext(ctx, &row, repo.db.Rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return study.Task{}, study.ErrTaskNotFound
	} else if err != nil {
		return study.Task{}, errors.Wrap(err, "selecting task")
	}
	return row.model(), nil
}

func (repo *studyRepository) DeleteTask(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM tasks WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting task")
	}
	return mustAffect(res, study.ErrTaskNotFound)
}

func (repo *studyRepository) CreateSessions(ctx context.Context, sessions ...study.Session) ([]study.Session, error) {
	if len(sessions) == 0 {
		return nil, nil
	}
	err := withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		return insertSessions(ctx, tx, sessions)
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func insertSessions(ctx context.Context, tx *sqlx.Tx, sessions []study.Session) error {
	for _, s := range sessions {
		if _, err := tx.NamedExecContext(ctx, insertSession, toSessionRow(s)); err != nil {
			return errors.Wrapf(err, "inserting session %s", s.ID)
		}
	}
	return nil
}

func (repo *studyRepository) QuerySessions(ctx context.Context, filter study.SessionFilter) ([]study.Session, error) {
	var (
		where []string
		args  []interface{}
	)
	if !filter.From.IsZero() {
		where = append(where, "day >= ?")
		args = append(args, filter.From)
	}
	if !filter.To.IsZero() {
		where = append(where, "day <= ?")
		args = append(args, filter.To)
	}
	if filter.SubjectID != "" {
		where = append(where, "subject_id = ?")
		args = append(args, filter.SubjectID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	q := `SELECT ` + sessionColumns + ` FROM sessions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY day, start_time, id"

	var rows []sessionRow
	if err := repo.db.SelectContext(ctx, &rows, repo.db.Rebind(q), args...); err != nil {
		return nil, errors.Wrap(err, "selecting sessions")
	}
	sessions := make([]study.Session, 0, len(rows))
	for _, r := range rows {
		sessions = append(sessions, r.model())
	}
	return sessions, nil
}

func (repo *studyRepository) GetSession(ctx context.Context, id string) (study.Session, error) {
	var row sessionRow
	err := repo.db.GetContext(ctx, &row, repo.db.Rebind(`SELECT `+sessionColumns+` FROM sessions WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return study.Session{}, study.ErrSessionNotFound
	} else if err != nil {
		return study.Session{}, errors.Wrap(err, "selecting session")
	}
	return row.model(), nil
}

func (repo *studyRepository) UpdateSession(ctx context.Context, sess study.Session) (study.Session, error) {
	q := `UPDATE sessions SET
		title = :title, day = :day, start_time = :start_time, duration_min = :duration_min, pomos = :pomos,
		tags = :tags, status = :status, notes = :notes, actual_min = :actual_min
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, toSessionRow(sess))
	if err != nil {
		return study.Session{}, errors.Wrap(err, "updating session")
	}
	if err = mustAffect(res, study.ErrSessionNotFound); err != nil {
		return study.Session{}, err
	}
	return sess, nil
}

func (repo *studyRepository) DeleteSession(ctx context.Context, id string) error {
	res, err := repo.db.ExecContext(ctx, repo.db.Rebind(`DELETE FROM sessions WHERE id = ?`), id)
	if err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return mustAffect(res, study.ErrSessionNotFound)
}

func (repo *studyRepository) QueryAvailability(ctx context.Context) ([]study.Availability, error) {
	var rows []slotRow
	q := `SELECT dow, position, start_time, end_time FROM availability_slots ORDER BY dow, position`
	if err := repo.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "selecting availability")
	}

	var avail []study.Availability
	for _, r := range rows {
		if n := len(avail); n == 0 || avail[n-1].Dow != r.Dow {
			avail = append(avail, study.Availability{Dow: r.Dow})
		}
		last := &avail[len(avail)-1]
		last.Slots = append(last.Slots, study.Slot{Start: r.StartTime, End: r.EndTime})
	}
	return avail, nil
}

func (repo *studyRepository) SetAvailability(ctx context.Context, avail study.Availability) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, tx.Rebind(`DELETE FROM availability_slots WHERE dow = ?`), avail.Dow); err != nil {
			return errors.Wrap(err, "clearing availability")
		}
		q := `INSERT INTO availability_slots (dow, position, start_time, end_time)
			VALUES (:dow, :position, :start_time, :end_time)`
		for i, slot := range avail.Slots {
			row := slotRow{Dow: avail.Dow, Position: i, StartTime: slot.Start, EndTime: slot.End}
			if _, err := tx.NamedExecContext(ctx, q, row); err != nil {
				return errors.Wrapf(err, "inserting %s slot", avail.Dow)
			}
		}
		return nil
	})
}

func (repo *studyRepository) CommitPlan(ctx context.Context, plan study.PlanCommit) error {
	return withTx(ctx, repo.db, func(tx *sqlx.Tx) error {
		if err := insertSessions(ctx, tx, plan.Sessions); err != nil {
			return err
		}
		for _, t := range plan.Updated {
			res, err := tx.ExecContext(ctx, tx.Rebind(`UPDATE tasks SET est_min = ? WHERE id = ?`), t.EstMin, t.ID)
			if err != nil {
				return errors.Wrapf(err, "updating task %s", t.ID)
			}
			if err = mustAffect(res, study.ErrTaskNotFound); err != nil {
				return errors.Wrapf(err, "updating task %s", t.ID)
			}
		}
		if len(plan.Removed) > 0 {
			q, args, err := sqlx.In(`DELETE FROM tasks WHERE id IN (?)`, plan.Removed)
			if err != nil {
				return errors.Wrap(err, "building task cleanup")
			}
			if _, err = tx.ExecContext(ctx, tx.Rebind(q), args...); err != nil {
				return errors.Wrap(err, "deleting scheduled tasks")
			}
		}
		return nil
	})
}
