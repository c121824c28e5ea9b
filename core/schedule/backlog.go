package schedule

import (
	"sort"

	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

// Backlog is an immutable snapshot of the pending tasks, ordered by priority.
// Tasks with equal priority keep their insertion order.
type Backlog struct {
	tasks []study.Task
}

// NewBacklog orders tasks by priority. Tasks without remaining estimate are dropped.
func NewBacklog(tasks []study.Task) Backlog {
	out := make([]study.Task, 0, len(tasks))
	for _, t := range tasks {
		if t.EstMin > 0 {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Priority < out[j].Priority })
	return Backlog{tasks: out}
}

// Peek returns the highest priority task.
func (b Backlog) Peek() (study.Task, bool) {
	if len(b.tasks) == 0 {
		return study.Task{}, false
	}
	return b.tasks[0], true
}

// Reduce returns a backlog in which the task taskID has minutes less of estimate.
// The task is removed once its estimate reaches zero. b is left unchanged.
func (b Backlog) Reduce(taskID string, minutes int) Backlog {
	out := make([]study.Task, 0, len(b.tasks))
	for _, t := range b.tasks {
		if t.ID == taskID {
			t.EstMin -= minutes
			if t.EstMin <= 0 {
				continue
			}
		}
		out = append(out, t)
	}
	return Backlog{tasks: out}
}

func (b Backlog) IsEmpty() bool { return len(b.tasks) == 0 }
func (b Backlog) Len() int      { return len(b.tasks) }

// Tasks returns a copy of the tasks, in scheduling order.
func (b Backlog) Tasks() []study.Task {
	out := make([]study.Task, len(b.tasks))
	copy(out, b.tasks)
	return out
}

// Changes compares b against the backlog it was reduced from and returns the
// tasks whose estimate changed and the ids of the tasks that are gone.
func (b Backlog) Changes(orig Backlog) (updated []study.Task, removed []string) {
	remaining := make(map[string]study.Task, len(b.tasks))
	for _, t := range b.tasks {
		remaining[t.ID] = t
	}
	for _, t := range orig.tasks {
		cur, ok := remaining[t.ID]
		switch {
		case !ok:
			removed = append(removed, t.ID)
		case cur.EstMin != t.EstMin:
			updated = append(updated, cur)
		}
	}
	return updated, removed
}
