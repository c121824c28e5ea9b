// Package clock provides the wall-clock arithmetic used by the planner:
// minute-granularity times of day, timezone-free calendar dates and weekdays.
package clock

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var errInvalidTime = errors.New("invalid time of day")

// Time is a time of day expressed in minutes since midnight.
// Scheduling never crosses midnight, so values are not wrapped at 24:00.
type Time int

// ParseTime parses a "HH:MM" string.
func ParseTime(s string) (Time, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return 0, errors.Wrapf(errInvalidTime, "%q", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 24 {
		return 0, errors.Wrapf(errInvalidTime, "%q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 || (h == 24 && m != 0) {
		return 0, errors.Wrapf(errInvalidTime, "%q", s)
	}
	return Time(h*60 + m), nil
}

// MustParseTime is like ParseTime but panics on error. Meant for tests and literals.
func MustParseTime(s string) Time {
	t, err := ParseTime(s)
	if err != nil {
		panic(err)
	}
	return t
}

func (t Time) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

func (t Time) AddMinutes(minutes int) Time {
	return t + Time(minutes)
}

func (t Time) Before(u Time) bool { return t < u }
func (t Time) After(u Time) bool  { return t > u }

// MinutesBetween returns b - a in minutes. A negative result means there is no room.
func MinutesBetween(a, b Time) int {
	return int(b - a)
}

func (t Time) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *Time) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

func (t Time) Value() (driver.Value, error) {
	return t.String(), nil
}

func (t *Time) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	default:
		return errors.Errorf("clock.Time: cannot scan %T", src)
	}
	parsed, err := ParseTime(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
