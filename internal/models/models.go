// Package models defines the schedule, activity, and rule records shared by
// the registration pipelines
package models

import (
	"errors"
	"slices"
	"strings"
	"time"

	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

// EntryKind distinguishes planned work from measured work.
type EntryKind string

const (
	KindPlan   EntryKind = "PLAN"
	KindActual EntryKind = "ACTUAL"
	KindShared EntryKind = "SHARED"
)

// ParseEntryKind normalizes s to an EntryKind. Matching is case-insensitive.
func ParseEntryKind(s string) EntryKind {
	return EntryKind(strings.ToUpper(strings.TrimSpace(s)))
}

// Valid reports whether k is one of the known kinds.
func (k EntryKind) Valid() bool {
	return k == KindPlan || k == KindActual || k == KindShared
}

var (
	errBoundaryAmbiguous = errors.New("boundary cannot hold both an instant and a date")
	errStartAfterEnd     = errors.New("entry start must not be after its end")
)

// Boundary is one side of a schedule entry. It carries either a wall-clock
// instant or an all-day date (YYYY-MM-DD), never both.
type Boundary struct {
	DateTime *time.Time `json:"date_time,omitempty"`
	Date     string     `json:"date,omitempty"`
}

// At returns an instant boundary.
func At(t time.Time) Boundary {
	return Boundary{DateTime: &t}
}

// Instant returns the boundary's wall-clock instant if it has one.
func (b Boundary) Instant() (time.Time, bool) {
	if b.DateTime == nil {
		return time.Time{}, false
	}

	return *b.DateTime, true
}

// ExternalID identifies an entry imported from an external calendar.
type ExternalID struct {
	ID         string `json:"id"`
	CalendarID string `json:"calendar_id"`
}

// ScheduleEntry is a PLAN, ACTUAL, or SHARED block of time.
type ScheduleEntry struct {
	LastSynced    time.Time   `json:"last_synced"`
	Updated       time.Time   `json:"updated"`
	Start         Boundary    `json:"start"`
	End           Boundary    `json:"end"`
	ExternalID    *ExternalID `json:"external_id,omitempty"`
	Deleted       *time.Time  `json:"deleted,omitempty"`
	ID            string      `json:"id"`
	UserID        string      `json:"user_id"`
	Kind          EntryKind   `json:"kind"`
	Summary       string      `json:"summary"`
	Description   string      `json:"description,omitempty"`
	Location      string      `json:"location,omitempty"`
	ProjectID     string      `json:"project_id,omitempty"`
	CategoryID    string      `json:"category_id,omitempty"`
	TaskID        string      `json:"task_id,omitempty"`
	LabelIDs      []string    `json:"label_ids,omitempty"`
	IsProvisional bool        `json:"is_provisional"`
}

// Interval returns the entry's start and end instants. ok is false if either
// side is an all-day date or missing.
func (e *ScheduleEntry) Interval() (start, end time.Time, ok bool) {
	start, okStart := e.Start.Instant()
	end, okEnd := e.End.Instant()

	return start, end, okStart && okEnd
}

// HasInstants reports whether both boundaries carry instants.
func (e *ScheduleEntry) HasInstants() bool {
	_, _, ok := e.Interval()

	return ok
}

// IsDeleted reports whether the entry has been logically deleted.
func (e *ScheduleEntry) IsDeleted() bool {
	return e.Deleted != nil
}

// Duration returns end - start, or zero for entries without instants.
func (e *ScheduleEntry) Duration() time.Duration {
	start, end, ok := e.Interval()
	if !ok {
		return 0
	}

	return end.Sub(start)
}

// Validate checks the boundary invariants.
func (e *ScheduleEntry) Validate() error {
	for _, b := range []Boundary{e.Start, e.End} {
		if b.DateTime != nil && b.Date != "" {
			return errBoundaryAmbiguous
		}
	}

	if start, end, ok := e.Interval(); ok && start.After(end) {
		return errStartAfterEnd
	}

	return nil
}

// Clone returns a deep copy of the entry.
func (e *ScheduleEntry) Clone() *ScheduleEntry {
	c := *e

	c.Start = cloneBoundary(e.Start)
	c.End = cloneBoundary(e.End)
	c.LabelIDs = slices.Clone(e.LabelIDs)

	if e.ExternalID != nil {
		ext := *e.ExternalID
		c.ExternalID = &ext
	}

	if e.Deleted != nil {
		d := *e.Deleted
		c.Deleted = &d
	}

	return &c
}

func cloneBoundary(b Boundary) Boundary {
	if b.DateTime == nil {
		return b
	}

	t := *b.DateTime

	return Boundary{DateTime: &t, Date: b.Date}
}

// SameLabels reports whether a and b hold the same label set. Order is
// ignored and nil is equivalent to empty.
func SameLabels(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}

	x, y := slices.Clone(a), slices.Clone(b)
	slices.Sort(x)
	slices.Sort(y)

	return slices.Equal(x, y)
}

// MatchRule maps window activity to schedule attributes. A rule matches on
// an application basename, a window-title regular expression, or both.
type MatchRule struct {
	ID         string   `json:"id"         yaml:"id"`
	Basename   string   `json:"basename"   yaml:"basename"`
	Regex      string   `json:"regex"      yaml:"regex"`
	ProjectID  string   `json:"project_id" yaml:"project_id"`
	CategoryID string   `json:"category_id" yaml:"category_id"`
	TaskID     string   `json:"task_id"    yaml:"task_id"`
	LabelIDs   []string `json:"label_ids"  yaml:"label_ids"`
}

// Task is a unit of outstanding work that can be allocated into free time.
type Task struct {
	EstimatedHours *float64 `json:"estimated_hours,omitempty" yaml:"estimated_hours"`
	ID             string   `json:"id"                        yaml:"id"`
	Name           string   `json:"name"                      yaml:"name"`
	ProjectID      string   `json:"project_id"                yaml:"project_id"`
	Description    string   `json:"description,omitempty"     yaml:"description"`
	Priority       int      `json:"priority"                  yaml:"priority"`
	Completed      bool     `json:"completed"                 yaml:"completed"`
}

// Detail is a focus-window change inside an activity sample.
type Detail struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Title string    `json:"title"`
}

// ActivitySample is a span of time spent in one application.
type ActivitySample struct {
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	ID       string    `json:"id"`
	Basename string    `json:"basename"`
	Details  []Detail  `json:"details"`
}

// TimeSlot is a half-open [Start, End) range.
type TimeSlot[T any] struct {
	Start T `json:"start"`
	End   T `json:"end"`
}

type (
	// Slot is a range of absolute instants.
	Slot = TimeSlot[time.Time]

	// BreakSlot is a daily recurring range of wall-clock times.
	BreakSlot = TimeSlot[timeutil.TimeOfDay]
)

// SlotDuration returns the length of an absolute slot.
func SlotDuration(s Slot) time.Duration {
	return s.End.Sub(s.Start)
}

// UserPreference holds the work-day settings used for plan allocation.
type UserPreference struct {
	UserID    string             `json:"user_id"`
	WorkStart timeutil.TimeOfDay `json:"work_start"`
	Breaks    []BreakSlot        `json:"breaks"`
	WorkHours float64            `json:"work_hours"`
}

// OverrunTask reports a task whose scheduled time already meets its
// estimate. It is never persisted.
type OverrunTask struct {
	TaskID        string        `json:"task_id"`
	ScheduledTime time.Duration `json:"scheduled_time"`
}

// EntryFilter selects schedule entries overlapping [Start, End). Zero Start
// or End leaves that side unbounded.
type EntryFilter struct {
	Start          time.Time
	End            time.Time
	Provisional    *bool
	UserID         string
	Kinds          []EntryKind
	IncludeDeleted bool
	// AllDay lets a bounded filter match entries with date boundaries. A
	// date covers the whole day in the location of the filter's bounds and
	// an end date is exclusive.
	AllDay bool
}

// Match reports whether e satisfies the filter. Entries without both
// instants never match a bounded filter unless AllDay is set.
func (f EntryFilter) Match(e *ScheduleEntry) bool {
	if f.UserID != "" && e.UserID != f.UserID {
		return false
	}

	if !f.IncludeDeleted && e.IsDeleted() {
		return false
	}

	if len(f.Kinds) > 0 && !slices.Contains(f.Kinds, e.Kind) {
		return false
	}

	if f.Provisional != nil && e.IsProvisional != *f.Provisional {
		return false
	}

	if f.Start.IsZero() && f.End.IsZero() {
		return true
	}

	start, end, ok := e.Interval()
	if !ok && f.AllDay {
		start, end, ok = e.dayInterval(f.location())
	}

	if !ok {
		return false
	}

	if !f.End.IsZero() && !start.Before(f.End) {
		return false
	}

	if !f.Start.IsZero() && !end.After(f.Start) {
		return false
	}

	return true
}

func (f EntryFilter) location() *time.Location {
	if !f.Start.IsZero() {
		return f.Start.Location()
	}

	return f.End.Location()
}

// dayInterval resolves date boundaries to midnights in loc. A missing end
// makes the entry last one day.
func (e *ScheduleEntry) dayInterval(loc *time.Location) (start, end time.Time, ok bool) {
	start, ok = e.Start.resolve(loc)
	if !ok {
		return time.Time{}, time.Time{}, false
	}

	end, ok = e.End.resolve(loc)
	if !ok || !end.After(start) {
		end = timeutil.NextDay(start)
	}

	return start, end, true
}

func (b Boundary) resolve(loc *time.Location) (time.Time, bool) {
	if b.DateTime != nil {
		return *b.DateTime, true
	}

	if b.Date == "" {
		return time.Time{}, false
	}

	t, err := time.ParseInLocation(timeutil.DateLayout, b.Date, loc)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

// Bool returns a pointer to b, for EntryFilter.Provisional.
func Bool(b bool) *bool {
	return &b
}
