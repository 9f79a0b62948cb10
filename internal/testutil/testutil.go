// Package testutil provides in-memory collaborators and time helpers shared
// by package tests
package testutil

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

var errNotFound = errors.New("entry not found")

// Day returns midnight of the given date in UTC.
func Day(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// Clock returns the instant at hhmm on the day of date.
func Clock(t *testing.T, date time.Time, hhmm string) time.Time {
	t.Helper()

	tod, err := timeutil.ParseTimeOfDay(hhmm)
	if err != nil {
		t.Fatal(err)
	}

	return tod.On(date)
}

// Entry builds an instant-bounded entry for tests.
func Entry(
	id string,
	kind models.EntryKind,
	start, end time.Time,
) *models.ScheduleEntry {
	return &models.ScheduleEntry{
		ID:     id,
		UserID: "u1",
		Kind:   kind,
		Start:  models.At(start),
		End:    models.At(end),
	}
}

// Factory is a deterministic entry factory producing ids new-1, new-2, ...
type Factory struct {
	Now time.Time
	mu  sync.Mutex
	n   int
}

func (f *Factory) New(partial models.ScheduleEntry) *models.ScheduleEntry {
	f.mu.Lock()
	f.n++
	id := fmt.Sprintf("new-%d", f.n)
	f.mu.Unlock()

	e := partial.Clone()
	e.ID = id
	e.LastSynced = f.Now
	e.Updated = f.Now

	return e
}

// Store is an in-memory implementation of every collaborator the
// registration pipelines read from or write to. It is safe for concurrent
// use. Setting an error field makes the matching operation fail.
type Store struct {
	Preferences map[string]*models.UserPreference
	// Scheduled, when non-nil, replaces the computed scheduled time. Task
	// ids absent from it are omitted from ScheduledTime results.
	Scheduled  map[string]time.Duration
	Now        time.Time
	ListErr    error
	SaveErr    error
	entries    map[string]*models.ScheduleEntry
	Rules      []models.MatchRule
	Tasks      []models.Task
	Candidates []models.Task
	Samples    []models.ActivitySample
	mu         sync.Mutex
	Saves      int
}

// NewStore returns a Store seeded with entries.
func NewStore(entries ...*models.ScheduleEntry) *Store {
	s := &Store{entries: make(map[string]*models.ScheduleEntry)}

	for _, e := range entries {
		s.entries[e.ID] = e.Clone()
	}

	return s
}

// All returns every stored entry, deleted ones included, ordered by start
// then id.
func (s *Store) All() []*models.ScheduleEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.sorted(models.EntryFilter{IncludeDeleted: true})
}

func (s *Store) sorted(f models.EntryFilter) []*models.ScheduleEntry {
	var out []*models.ScheduleEntry

	for _, e := range s.entries {
		if f.Match(e) {
			out = append(out, e.Clone())
		}
	}

	slices.SortFunc(out, func(a, b *models.ScheduleEntry) int {
		as, _, _ := a.Interval()
		bs, _, _ := b.Interval()

		if c := as.Compare(bs); c != 0 {
			return c
		}

		if a.ID < b.ID {
			return -1
		}

		if a.ID > b.ID {
			return 1
		}

		return 0
	})

	return out
}

func (s *Store) ListEntries(
	_ context.Context,
	f models.EntryFilter,
) ([]*models.ScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ListErr != nil {
		return nil, s.ListErr
	}

	return s.sorted(f), nil
}

func (s *Store) GetEntry(
	_ context.Context,
	id string,
) (*models.ScheduleEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, errNotFound
	}

	return e.Clone(), nil
}

func (s *Store) SaveEntry(_ context.Context, e *models.ScheduleEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	s.Saves++
	s.entries[e.ID] = e.Clone()

	return nil
}

func (s *Store) UpsertEntries(
	_ context.Context,
	entries []*models.ScheduleEntry,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	for _, e := range entries {
		s.Saves++
		s.entries[e.ID] = e.Clone()
	}

	return nil
}

func (s *Store) DeleteEntries(_ context.Context, ids []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.SaveErr != nil {
		return s.SaveErr
	}

	now := s.Now

	for _, id := range ids {
		if e, ok := s.entries[id]; ok {
			e.Deleted = &now
		}
	}

	return nil
}

func (s *Store) Preference(
	_ context.Context,
	userID string,
) (*models.UserPreference, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.Preferences[userID]
	if !ok {
		return nil, nil
	}

	cp := *p

	return &cp, nil
}

func (s *Store) ListRules(context.Context) ([]models.MatchRule, error) {
	return slices.Clone(s.Rules), nil
}

func (s *Store) ListTasks(context.Context) ([]models.Task, error) {
	return slices.Clone(s.Tasks), nil
}

func (s *Store) CandidateTasks(
	_ context.Context,
	_ time.Time,
	projectID string,
) ([]models.Task, error) {
	var out []models.Task

	for _, t := range s.Candidates {
		if projectID == "" || t.ProjectID == projectID {
			out = append(out, t)
		}
	}

	return out, nil
}

func (s *Store) ListSamples(
	_ context.Context,
	start, end time.Time,
) ([]models.ActivitySample, error) {
	var out []models.ActivitySample

	for _, sample := range s.Samples {
		if sample.End.After(start) && sample.Start.Before(end) {
			out = append(out, sample)
		}
	}

	return out, nil
}

func (s *Store) ScheduledTime(
	_ context.Context,
	userID string,
	taskIDs []string,
) (map[string]time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]time.Duration, len(taskIDs))

	if s.Scheduled != nil {
		for _, id := range taskIDs {
			if d, ok := s.Scheduled[id]; ok {
				out[id] = d
			}
		}

		return out, nil
	}

	for _, id := range taskIDs {
		out[id] = 0
	}

	for _, e := range s.entries {
		if e.UserID != userID || e.IsDeleted() || e.Kind == models.KindActual {
			continue
		}

		if _, ok := out[e.TaskID]; ok {
			out[e.TaskID] += e.Duration()
		}
	}

	return out, nil
}
