package dummydb

import (
	"sync"

	"github.com/DeivFF/study-space-wire-57-sub000/core/clock"
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

type (
	// DB keeps the planner data in memory. Tables are locked in declaration order.
	DB struct {
		subject *subjectTable
		task    *taskTable
		session *sessionTable
		avail   *availTable
	}

	subjectTable struct {
		sync.RWMutex
		table map[string]*study.Subject
	}

	taskTable struct {
		sync.RWMutex
		table map[string]*study.Task
		order []string // insertion order
	}

	sessionTable struct {
		sync.RWMutex
		table map[string]*study.Session
	}

	availTable struct {
		sync.RWMutex
		table [clock.DaysPerWeek][]study.Slot
	}
)

func Open() (*DB, error) {
	db := &DB{
		subject: &subjectTable{table: make(map[string]*study.Subject)},
		task:    &taskTable{table: make(map[string]*study.Task)},
		session: &sessionTable{table: make(map[string]*study.Session)},
		avail:   &availTable{},
	}
	return db, nil
}
