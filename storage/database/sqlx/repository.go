package sqlxrepos

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

type (
	// tagList is stored as a JSON array in a text column.
	tagList []string

	subjectRow struct {
		ID    string `db:"id"`
		Name  string `db:"name"`
		Color string `db:"color"`
	}

	taskRow struct {
		ID        string    `db:"id"`
		SubjectID string    `db:"subject_id"`
		Title     string    `db:"title"`
		EstMin    int       `db:"est_min"`
		Priority  int       `db:"priority"`
		Tags      tagList   `db:"tags"`
		CreatedAt time.Time `db:"created_at"`
	}

	sessionRow struct {
		ID          string      `db:"id"`
		SubjectID   string      `db:"subject_id"`
		Title       string      `db:"title"`
		Day         clock.Date  `db:"day"`
		StartTime   clock.Time  `db:"start_time"`
		DurationMin int         `db:"duration_min"`
		Pomos       int         `db:"pomos"`
		Tags        tagList     `db:"tags"`
		Status      string      `db:"status"`
		Notes       null.String `db:"notes"`
		ActualMin   null.Int    `db:"actual_min"`
	}

	slotRow struct {
		Dow       clock.Weekday `db:"dow"`
		Position  int           `db:"position"`
		StartTime clock.Time    `db:"start_time"`
		EndTime   clock.Time    `db:"end_time"`
	}
)

func (tl tagList) Value() (driver.Value, error) {
	if tl == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(tl))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (tl *tagList) Scan(src interface{}) error {
	var b []byte
	switch v := src.(type) {
	case nil:
		*tl = nil
		return nil
	case string:
		b = []byte(v)
	case []byte:
		b = v
	default:
		return errors.Errorf("tagList: cannot scan %T", src)
	}
	var tags []string
	if err := json.Unmarshal(b, &tags); err != nil {
		return errors.Wrap(err, "decoding tags")
	}
	if len(tags) == 0 {
		tags = nil
	}
	*tl = tags
	return nil
}

func toSubjectRow(s study.Subject) subjectRow {
	return subjectRow{ID: s.ID, Name: s.Name, Color: s.Color}
}

func (r subjectRow) model() study.Subject {
	return study.Subject{ID: r.ID, Name: r.Name, Color: r.Color}
}

func toTaskRow(t study.Task) taskRow {
	return taskRow{
		ID:        t.ID,
		SubjectID: t.SubjectID,
		Title:     t.Title,
		EstMin:    t.EstMin,
		Priority:  t.Priority,
		Tags:      t.Tags,
		CreatedAt: t.CreatedAt.UTC(),
	}
}

func (r taskRow) model() study.Task {
	return study.Task{
		ID:        r.ID,
		SubjectID: r.SubjectID,
		Title:     r.Title,
		EstMin:    r.EstMin,
		Priority:  r.Priority,
		Tags:      r.Tags,
		CreatedAt: r.CreatedAt.UTC(),
	}
}

func toSessionRow(s study.Session) sessionRow {
	return sessionRow{
		ID:          s.ID,
		SubjectID:   s.SubjectID,
		Title:       s.Title,
		Day:         s.Date,
		StartTime:   s.Start,
		DurationMin: s.DurationMin,
		Pomos:       s.Pomos,
		Tags:        s.Tags,
		Status:      s.Status,
		Notes:       null.StringFromPtr(s.Notes),
		ActualMin:   null.IntFromPtr(s.ActualMin),
	}
}

func (r sessionRow) model() study.Session {
	return study.Session{
		ID:          r.ID,
		SubjectID:   r.SubjectID,
		Title:       r.Title,
		Date:        r.Day,
		Start:       r.StartTime,
		DurationMin: r.DurationMin,
		Pomos:       r.Pomos,
		Tags:        r.Tags,
		Status:      r.Status,
		Notes:       r.Notes.Ptr(),
		ActualMin:   r.ActualMin.Ptr(),
	}
}

// withTx runs fn in a transaction, committed when fn returns nil.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) (err error) {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// mustAffect returns notFound when res reports no affected row.
func mustAffect(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, "counting affected rows")
	}
	if n == 0 {
		return notFound
	}
	return nil
}
