package schedule

import (
	"github.com/DeivFF/study-space-wire-57-sub000/core/study"
)

// Overlaps reports whether a and b share a date and their half-open intervals
// [start, end) intersect. Back-to-back sessions do not overlap.
func Overlaps(a, b study.Session) bool {
	if !a.Date.Equal(b.Date) {
		return false
	}
	return a.End().After(b.Start) && b.End().After(a.Start)
}

// HasConflict reports whether candidate overlaps any of existing. Sessions whose
// id is in excludeID are skipped, so that re-saving an edited session never
// conflicts with its stored version.
func HasConflict(candidate study.Session, existing []study.Session, excludeID ...string) bool {
	for _, s := range existing {
		if excluded(s.ID, excludeID) {
			continue
		}
		if Overlaps(candidate, s) {
			return true
		}
	}
	return false
}

// Conflicts returns the sessions of existing that candidate overlaps.
func Conflicts(candidate study.Session, existing []study.Session, excludeID ...string) []study.Session {
	var out []study.Session
	for _, s := range existing {
		if !excluded(s.ID, excludeID) && Overlaps(candidate, s) {
			out = append(out, s)
		}
	}
	return out
}

func excluded(id string, ids []string) bool {
	if id == "" {
		return false
	}
	for _, x := range ids {
		if x == id {
			return true
		}
	}
	return false
}
