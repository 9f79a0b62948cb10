// Package timeutil provides utility functions and types for working with
// time-related operations.
package timeutil

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/markusmobius/go-dateparser"
)

const (
	HoursInADay   = 24
	DateLayout    = "2006-01-02"
	ClockLayout   = "15:04"
	minutesInHour = 60

	// KeyLayout is a fixed-width UTC layout whose strings sort chronologically.
	KeyLayout = "2006-01-02T15:04:05.000000000Z"
)

var errInvalidTimeOfDay = errors.New("time of day must be in HH:MM format")

// TimeOfDay is a wall-clock time without a date. It is encoded as HH:MM.
type TimeOfDay struct {
	Hour   int
	Minute int
}

// ParseTimeOfDay parses an HH:MM string.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	h, m, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || !isDigits(h, 1, 2) || !isDigits(m, 2, 2) {
		return TimeOfDay{}, fmt.Errorf("%w: %q", errInvalidTimeOfDay, s)
	}

	tod := TimeOfDay{Hour: atoi(h), Minute: atoi(m)}

	if tod.Hour > 23 || tod.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("%w: %q", errInvalidTimeOfDay, s)
	}

	return tod, nil
}

func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}

	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

// atoi assumes s holds only ASCII digits.
func atoi(s string) int {
	n := 0
	for _, r := range s {
		n = n*10 + int(r-'0')
	}

	return n
}

// MustTimeOfDay is like ParseTimeOfDay but panics on error. Intended for
// constants and tests.
func MustTimeOfDay(s string) TimeOfDay {
	tod, err := ParseTimeOfDay(s)
	if err != nil {
		panic(err)
	}

	return tod
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// Offset returns the time elapsed since midnight.
func (t TimeOfDay) Offset() time.Duration {
	return time.Duration(t.Hour)*time.Hour + time.Duration(t.Minute)*time.Minute
}

// Before reports whether t is numerically earlier than u.
func (t TimeOfDay) Before(u TimeOfDay) bool {
	return t.Offset() < u.Offset()
}

// On returns the instant at which t occurs on the day of date, in date's
// location.
func (t TimeOfDay) On(date time.Time) time.Time {
	y, m, d := date.Date()

	return time.Date(y, m, d, t.Hour, t.Minute, 0, 0, date.Location())
}

func (t TimeOfDay) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

func (t *TimeOfDay) UnmarshalText(b []byte) error {
	tod, err := ParseTimeOfDay(string(b))
	if err != nil {
		return err
	}

	*t = tod

	return nil
}

// RoundToStart resets the given time to the start of the day.
func RoundToStart(t time.Time) time.Time {
	return time.Date(
		t.Year(),
		t.Month(),
		t.Day(),
		0,
		0,
		0,
		0,
		t.Location(),
	)
}

// NextDay returns the start of the day after t.
func NextDay(t time.Time) time.Time {
	start := RoundToStart(t)

	return time.Date(start.Year(), start.Month(), start.Day()+1, 0, 0, 0, 0, t.Location())
}

// DayBounds returns the half-open range [start, end) covering the day of t.
func DayBounds(t time.Time) (start, end time.Time) {
	return RoundToStart(t), NextDay(t)
}

// Overlap returns the length of the intersection of [aStart, aEnd) and
// [bStart, bEnd), or zero when they do not intersect.
func Overlap(aStart, aEnd, bStart, bEnd time.Time) time.Duration {
	start := aStart
	if bStart.After(start) {
		start = bStart
	}

	end := aEnd
	if bEnd.Before(end) {
		end = bEnd
	}

	if !end.After(start) {
		return 0
	}

	return end.Sub(start)
}

// HoursToDuration converts fractional hours to a duration rounded to the
// nearest second.
func HoursToDuration(hours float64) time.Duration {
	return time.Duration(math.Round(hours*60*60)) * time.Second
}

// FormatDuration renders d as e.g. 3h05m.
func FormatDuration(d time.Duration) string {
	mins := int(math.Round(d.Minutes()))

	sign := ""
	if mins < 0 {
		sign = "-"
		mins = -mins
	}

	return fmt.Sprintf("%s%dh%02dm", sign, mins/minutesInHour, mins%minutesInHour)
}

// FromStr parses a date expressed either as YYYY-MM-DD or in natural language
// ("yesterday", "last friday") relative to now. The result is the start of
// that day in now's location.
func FromStr(s string, now time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return RoundToStart(now), nil
	}

	if t, err := time.ParseInLocation(DateLayout, s, now.Location()); err == nil {
		return t, nil
	}

	cfg := &dateparser.Configuration{
		CurrentTime: now,
	}

	dt, err := dateparser.Parse(cfg, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse date %q: %w", s, err)
	}

	return RoundToStart(dt.Time.In(now.Location())), nil
}

// ToKey converts a time value to a database key for Bolt. Keys compare
// bytewise in chronological order.
func ToKey(t time.Time) []byte {
	return []byte(t.UTC().Format(KeyLayout))
}
