// Package registrar orchestrates automatic plan and actual registration for
// a day, and the provisional confirm and discard lifecycle of both
package registrar

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayoisaiah/autotrack/actual"
	"github.com/ayoisaiah/autotrack/internal/apperr"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
	"github.com/ayoisaiah/autotrack/interval"
	"github.com/ayoisaiah/autotrack/plan"
)

var (
	errPredict = &apperr.Error{
		Message: "predicting actual for %s failed",
	}

	errMerge = &apperr.Error{
		Message: "merging predicted actuals failed",
	}

	errFreeSlots = &apperr.Error{
		Message: "computing free slots failed",
	}

	errCandidates = &apperr.Error{
		Message: "fetching candidate tasks failed",
	}

	errAllocate = &apperr.Error{
		Message: "allocating tasks failed",
	}

	errPersistPlan = &apperr.Error{
		Message: "saving provisional plan failed",
	}
)

// EntryStore is the schedule entry persistence the registrar needs.
type EntryStore interface {
	ListEntries(
		ctx context.Context,
		filter models.EntryFilter,
	) ([]*models.ScheduleEntry, error)
	SaveEntry(ctx context.Context, e *models.ScheduleEntry) error
	UpsertEntries(ctx context.Context, entries []*models.ScheduleEntry) error
	DeleteEntries(ctx context.Context, ids []string) error
}

// TaskPrioritizer returns the tasks to allocate on date, highest priority
// first. An empty projectID means every project.
type TaskPrioritizer interface {
	CandidateTasks(
		ctx context.Context,
		date time.Time,
		projectID string,
	) ([]models.Task, error)
}

// EntryFactory creates entries with a fresh identity.
type EntryFactory interface {
	New(partial models.ScheduleEntry) *models.ScheduleEntry
}

// Collaborators groups the data sources the registrar reads from and writes
// to.
type Collaborators struct {
	Entries     EntryStore
	Preferences plan.PreferenceReader
	Samples     actual.SampleReader
	Rules       actual.RuleReader
	Tasks       actual.TaskReader
	Prioritizer TaskPrioritizer
	Aggregator  plan.ScheduledTimeAggregator
	Factory     EntryFactory
}

// PlanResult reports the outcome of a plan allocation. When Success is false
// nothing was saved and Overruns lists the tasks that need extra hours.
type PlanResult struct {
	Overruns []models.OverrunTask    `json:"overruns,omitempty"`
	Entries  []*models.ScheduleEntry `json:"entries,omitempty"`
	Success  bool                    `json:"success"`
}

// Service registers plans and actuals for a single user. It holds no state
// between calls and performs no locking: concurrent calls for the same day
// may race.
type Service struct {
	entries     EntryStore
	prioritizer TaskPrioritizer
	factory     EntryFactory
	calculator  *plan.Calculator
	allocator   *plan.Allocator
	predictor   *actual.Predictor
	finalizer   *actual.Finalizer
	logger      *slog.Logger
	now         func() time.Time
	userID      string
}

// New returns a Service for userID. A nil logger uses slog.Default().
func New(userID string, c Collaborators, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}

	return &Service{
		userID:      userID,
		entries:     c.Entries,
		prioritizer: c.Prioritizer,
		factory:     c.Factory,
		logger:      logger,
		now:         time.Now,
		calculator: &plan.Calculator{
			Entries:     c.Entries,
			Preferences: c.Preferences,
			Logger:      logger,
		},
		allocator: &plan.Allocator{
			Aggregator: c.Aggregator,
			Factory:    c.Factory,
			Logger:     logger,
		},
		predictor: &actual.Predictor{
			Entries: c.Entries,
			Samples: c.Samples,
			Rules:   c.Rules,
			Tasks:   c.Tasks,
			Factory: c.Factory,
			Logger:  logger,
		},
		finalizer: &actual.Finalizer{
			Entries: c.Entries,
			Logger:  logger,
		},
	}
}

// UserID returns the user the service registers entries for.
func (s *Service) UserID() string {
	return s.userID
}

// HourlyWindows splits the day of date into consecutive one-hour windows.
// Days with a daylight-saving transition yield 23 or 25 windows.
func HourlyWindows(date time.Time) []models.Slot {
	start, end := timeutil.DayBounds(date)

	windows := make([]models.Slot, 0, timeutil.HoursInADay)

	for t := start; t.Before(end); t = t.Add(time.Hour) {
		next := t.Add(time.Hour)
		if next.After(end) {
			next = end
		}

		windows = append(windows, models.Slot{Start: t, End: next})
	}

	return windows
}

// GenerateProvisionalActuals infers provisional ACTUAL entries for every
// hour of date, merges adjacent ones, titles them and saves them. Hours
// already covered by an ACTUAL are skipped, so re-running is safe.
func (s *Service) GenerateProvisionalActuals(
	ctx context.Context,
	date time.Time,
) ([]*models.ScheduleEntry, error) {
	windows := HourlyWindows(date)
	predicted := make([]*models.ScheduleEntry, len(windows))

	g, gctx := errgroup.WithContext(ctx)

	for i, w := range windows {
		g.Go(func() error {
			e, err := s.predictor.Predict(gctx, s.userID, w.Start, w.End)
			if err != nil {
				return errPredict.Fmt(w.Start.Format(timeutil.ClockLayout)).Wrap(err)
			}

			predicted[i] = e

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	var found []*models.ScheduleEntry

	for _, e := range predicted {
		if e != nil {
			found = append(found, e)
		}
	}

	if len(found) == 0 {
		s.logger.InfoContext(
			ctx,
			"no activity to register",
			slog.String("date", date.Format(timeutil.DateLayout)),
		)

		return nil, nil
	}

	merged, err := interval.MergeEntries(found, s.factory)
	if err != nil {
		return nil, errMerge.Wrap(err)
	}

	return s.finalizer.Finalize(ctx, s.userID, merged)
}

// ConfirmActuals makes the provisional actuals of date permanent.
func (s *Service) ConfirmActuals(ctx context.Context, date time.Time) (int, error) {
	return s.confirm(ctx, date, models.KindActual)
}

// DiscardProvisionalActuals deletes the provisional actuals of date.
func (s *Service) DiscardProvisionalActuals(
	ctx context.Context,
	date time.Time,
) (int, error) {
	return s.discard(ctx, date, models.KindActual)
}

// FreeSlots returns the free time on date.
func (s *Service) FreeSlots(
	ctx context.Context,
	date time.Time,
) ([]models.Slot, error) {
	return s.calculator.FreeSlots(ctx, s.userID, date)
}

// AllocateProvisionalPlan fills the free time on date with provisional PLAN
// entries for the prioritized tasks, optionally limited to projectID.
// extraHours maps task ids to the exact hours to allocate, bypassing the
// overrun check. If any task overruns its estimate, nothing is saved and
// the overruns are returned with Success set to false.
func (s *Service) AllocateProvisionalPlan(
	ctx context.Context,
	date time.Time,
	extraHours map[string]float64,
	projectID string,
) (*PlanResult, error) {
	free, err := s.calculator.FreeSlots(ctx, s.userID, date)
	if err != nil {
		return nil, errFreeSlots.Wrap(err)
	}

	tasks, err := s.prioritizer.CandidateTasks(ctx, date, projectID)
	if err != nil {
		return nil, errCandidates.Wrap(err)
	}

	alloc, err := s.allocator.Allocate(ctx, s.userID, free, tasks, extraHours)
	if err != nil {
		return nil, errAllocate.Wrap(err)
	}

	if len(alloc.Overruns) > 0 {
		s.logger.InfoContext(
			ctx,
			"plan allocation blocked by overruns",
			slog.String("date", date.Format(timeutil.DateLayout)),
			slog.Int("overruns", len(alloc.Overruns)),
		)

		return &PlanResult{Overruns: alloc.Overruns}, nil
	}

	if len(alloc.Entries) > 0 {
		if err := s.entries.UpsertEntries(ctx, alloc.Entries); err != nil {
			return nil, errPersistPlan.Wrap(err)
		}
	}

	s.logger.InfoContext(
		ctx,
		"provisional plan allocated",
		slog.String("date", date.Format(timeutil.DateLayout)),
		slog.Int("entries", len(alloc.Entries)),
	)

	return &PlanResult{Success: true, Entries: alloc.Entries}, nil
}

// ConfirmPlan makes the provisional plan entries of date permanent.
func (s *Service) ConfirmPlan(ctx context.Context, date time.Time) (int, error) {
	return s.confirm(ctx, date, models.KindPlan)
}

// DiscardProvisionalPlan deletes the provisional plan entries of date.
func (s *Service) DiscardProvisionalPlan(
	ctx context.Context,
	date time.Time,
) (int, error) {
	return s.discard(ctx, date, models.KindPlan)
}
