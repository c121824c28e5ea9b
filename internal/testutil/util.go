package testutil

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/DeivFF/study-space-wire-57-sub000/core"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
	"github.com/DeivFF/study-space-wire-57-sub000/storage/database"
	logsvc "github.com/DeivFF/study-space-wire-57-sub000/services/logger"
)

// PrepareDB opens a migrated in-memory sqlite database, closed when the test ends.
func PrepareDB(t *testing.T) *sqlx.DB {
	t.Helper()
	conf := &core.Config{Database: core.DatabaseConfig{Engine: database.SQLite, Path: ":memory:"}}
	db, err := database.Open(context.Background(), conf)
	if err != nil {
		t.Fatalf("database.Open() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(db, "up"); err != nil {
		t.Fatalf("database.Migrate() failed: %v", err)
	}
	return db
}

// NewLogger returns a debug console logger writing to the returned buffer.
func NewLogger() (core.Logger, *bytes.Buffer) {
	buf := new(bytes.Buffer)
	return logsvc.NewConsoleLogger(buf, "test", "debug"), buf
}

func CreateSubject(t *testing.T, repo study.Repository, id, name string) study.Subject {
	t.Helper()
	subj, err := repo.CreateSubject(context.Background(), study.Subject{ID: id, Name: name})
	if err != nil {
		t.Fatalf("CreateSubject() failed: %v", err)
	}
	return subj
}

func CreateTask(
	t *testing.T,
	repo study.Repository,
	id, subjectID, title string,
	estMin, priority int,
	createdAt ...time.Time,
) study.Task {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	task, err := repo.CreateTask(context.Background(), study.Task{
		ID:        id,
		SubjectID: subjectID,
		Title:     title,
		EstMin:    estMin,
		Priority:  priority,
		CreatedAt: tstamp,
	})
	if err != nil {
		t.Fatalf("CreateTask() failed: %v", err)
	}
	return task
}
