package sqlxrepos

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
	"github.com/DeivFF/study-space-wire-57-sub000/internal/testutil"
)

func setupRepo(t *testing.T) (study.Repository, study.Subject) {
	t.Helper()
	repo := NewStudyRepository(testutil.PrepareDB(t))
	subj, err := repo.CreateSubject(context.Background(), study.Subject{ID: "math", Name: "Math", Color: "#ff0000"})
	require.NoError(t, err)
	return repo, subj
}

func TestStudyRepository_Subjects(t *testing.T) {
	ctx := context.Background()
	repo, math := setupRepo(t)

	testutil.CreateSubject(t, repo, "bio", "Biology")

	subjects, err := repo.QuerySubjects(ctx)
	require.NoError(t, err)
	if assert.Len(t, subjects, 2) {
		assert.Equal(t, "Biology", subjects[0].Name)
		assert.Equal(t, math, subjects[1])
	}

	got, err := repo.GetSubject(ctx, "math")
	require.NoError(t, err)
	assert.Equal(t, math, got)

	_, err = repo.GetSubject(ctx, "nope")
	assert.Equal(t, study.ErrSubjectNotFound, err)
	assert.Equal(t, study.ErrSubjectNotFound, errors.Cause(repo.DeleteSubject(ctx, "nope")))
}

func TestStudyRepository_DeleteSubjectCascades(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)

	testutil.CreateTask(t, repo, "t1", "math", "Read", 30, 0)
	_, err := repo.CreateSessions(ctx, study.Session{
		ID: "s1", SubjectID: "math", Title: "Read", Date: clock.MustParseDate("2025-01-06"),
		Start: clock.MustParseTime("08:00"), DurationMin: 30, Status: study.StatusOpen,
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteSubject(ctx, "math"))

	tasks, err := repo.QueryTasks(ctx)
	require.NoError(t, err)
	assert.Empty(t, tasks)
	sessions, err := repo.QuerySessions(ctx, study.SessionFilter{})
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestStudyRepository_Tasks(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)

	now := time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)
	for i, title := range []string{"Third", "First", "Second"} {
		_, err := repo.CreateTask(ctx, study.Task{
			ID:        title,
			SubjectID: "math",
			Title:     title,
			EstMin:    30 * (i + 1),
			Priority:  1,
			Tags:      []string{"exam"},
			CreatedAt: now,
		})
		require.NoError(t, err)
	}

	tasks, err := repo.QueryTasks(ctx)
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, "Third", tasks[0].ID, "insertion order")
	assert.Equal(t, "Second", tasks[2].ID)
	assert.Equal(t, []string{"exam"}, tasks[0].Tags)
	assert.True(t, now.Equal(tasks[0].CreatedAt))

	got, err := repo.GetTask(ctx, "First")
	require.NoError(t, err)
	assert.Equal(t, 60, got.EstMin)

	require.NoError(t, repo.DeleteTask(ctx, "First"))
	_, err = repo.GetTask(ctx, "First")
	assert.Equal(t, study.ErrTaskNotFound, err)
	assert.Equal(t, study.ErrTaskNotFound, repo.DeleteTask(ctx, "First"))
}

func TestStudyRepository_Sessions(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)

	mk := func(id, date, start string) study.Session {
		return study.Session{
			ID:          id,
			SubjectID:   "math",
			Title:       "Session " + id,
			Date:        clock.MustParseDate(date),
			Start:       clock.MustParseTime(start),
			DurationMin: 45,
			Pomos:       2,
			Status:      study.StatusOpen,
		}
	}
	_, err := repo.CreateSessions(ctx,
		mk("b", "2025-01-07", "08:00"),
		mk("a", "2025-01-06", "10:00"),
		mk("c", "2025-01-08", "07:00"),
	)
	require.NoError(t, err)

	// a failing batch inserts nothing
	_, err = repo.CreateSessions(ctx, mk("d", "2025-01-09", "08:00"), mk("a", "2025-01-09", "09:00"))
	assert.Error(t, err)
	_, err = repo.GetSession(ctx, "d")
	assert.Equal(t, study.ErrSessionNotFound, err)

	sessions, err := repo.QuerySessions(ctx, study.SessionFilter{
		From: clock.MustParseDate("2025-01-06"),
		To:   clock.MustParseDate("2025-01-07"),
	})
	require.NoError(t, err)
	if assert.Len(t, sessions, 2) {
		assert.Equal(t, "a", sessions[0].ID)
		assert.Equal(t, "b", sessions[1].ID)
		assert.Nil(t, sessions[0].Notes)
		assert.Nil(t, sessions[0].ActualMin)
	}

	sess, err := repo.GetSession(ctx, "c")
	require.NoError(t, err)
	notes, actual := "done early", 40
	sess.Status = study.StatusDone
	sess.Notes = &notes
	sess.ActualMin = &actual
	_, err = repo.UpdateSession(ctx, sess)
	require.NoError(t, err)

	done, err := repo.QuerySessions(ctx, study.SessionFilter{Status: study.StatusDone})
	require.NoError(t, err)
	if assert.Len(t, done, 1) {
		assert.Equal(t, "07:00", done[0].Start.String())
		assert.Equal(t, "2025-01-08", done[0].Date.String())
		if assert.NotNil(t, done[0].Notes) {
			assert.Equal(t, notes, *done[0].Notes)
		}
		if assert.NotNil(t, done[0].ActualMin) {
			assert.Equal(t, actual, *done[0].ActualMin)
		}
	}

	require.NoError(t, repo.DeleteSession(ctx, "c"))
	assert.Equal(t, study.ErrSessionNotFound, repo.DeleteSession(ctx, "c"))
	_, err = repo.UpdateSession(ctx, sess)
	assert.Equal(t, study.ErrSessionNotFound, err)
}

func TestStudyRepository_Availability(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)

	slots := []study.Slot{
		{Start: clock.MustParseTime("08:00"), End: clock.MustParseTime("10:00")},
		{Start: clock.MustParseTime("18:00"), End: clock.MustParseTime("24:00")},
	}
	require.NoError(t, repo.SetAvailability(ctx, study.Availability{Dow: clock.Monday, Slots: slots}))
	require.NoError(t, repo.SetAvailability(ctx, study.Availability{Dow: clock.Friday, Slots: slots[:1]}))

	avail, err := repo.QueryAvailability(ctx)
	require.NoError(t, err)
	require.Len(t, avail, 2)
	assert.Equal(t, study.Availability{Dow: clock.Monday, Slots: slots}, avail[0])
	assert.Equal(t, clock.Friday, avail[1].Dow)

	// replacing with no slots clears the day
	require.NoError(t, repo.SetAvailability(ctx, study.Availability{Dow: clock.Monday}))
	avail, err = repo.QueryAvailability(ctx)
	require.NoError(t, err)
	require.Len(t, avail, 1)
	assert.Equal(t, clock.Friday, avail[0].Dow)
}

func TestStudyRepository_CommitPlan(t *testing.T) {
	ctx := context.Background()
	repo, _ := setupRepo(t)

	testutil.CreateTask(t, repo, "A", "math", "A", 60, 0)
	testutil.CreateTask(t, repo, "B", "math", "B", 60, 0)
	gen := study.Session{
		ID: "g1", SubjectID: "math", Title: "A", Date: clock.MustParseDate("2025-01-06"),
		Start: clock.MustParseTime("08:00"), DurationMin: 60, Pomos: 2, Status: study.StatusOpen,
	}

	err := repo.CommitPlan(ctx, study.PlanCommit{
		Sessions: []study.Session{gen},
		Updated:  []study.Task{{ID: "B", EstMin: 15}},
		Removed:  []string{"A"},
	})
	require.NoError(t, err)

	tasks, err := repo.QueryTasks(ctx)
	require.NoError(t, err)
	if assert.Len(t, tasks, 1) {
		assert.Equal(t, "B", tasks[0].ID)
		assert.Equal(t, 15, tasks[0].EstMin)
	}
	_, err = repo.GetSession(ctx, "g1")
	assert.NoError(t, err)

	// unknown task: everything is rolled back
	gen.ID = "g2"
	err = repo.CommitPlan(ctx, study.PlanCommit{
		Sessions: []study.Session{gen},
		Updated:  []study.Task{{ID: "missing", EstMin: 5}},
	})
	assert.True(t, errors.Is(err, study.ErrTaskNotFound))
	_, err = repo.GetSession(ctx, "g2")
	assert.Equal(t, study.ErrSessionNotFound, err)
}
