package actual

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ayoisaiah/autotrack/internal/apperr"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

var (
	errListPlans = &apperr.Error{
		Message: "fetching plans for title resolution failed",
	}

	errSaveActuals = &apperr.Error{
		Message: "saving finalized actuals failed",
	}
)

// EntryStore reads and writes schedule entries.
type EntryStore interface {
	EntryReader
	SaveEntry(ctx context.Context, e *models.ScheduleEntry) error
}

// Finalizer titles inferred actuals after the plans they overlap and
// persists them.
type Finalizer struct {
	Entries EntryStore
	Logger  *slog.Logger
}

func (f *Finalizer) logger() *slog.Logger {
	if f.Logger != nil {
		return f.Logger
	}

	return slog.Default()
}

// bounds returns the smallest window covering every instant-bounded entry.
func bounds(entries []*models.ScheduleEntry) (start, end time.Time, ok bool) {
	for _, e := range entries {
		s, en, has := e.Interval()
		if !has {
			continue
		}

		if !ok || s.Before(start) {
			start = s
		}

		if !ok || en.After(end) {
			end = en
		}

		ok = true
	}

	return start, end, ok
}

// compatible reports whether plan can lend its title to act. Unset
// attributes on act match anything.
func compatible(plan, act *models.ScheduleEntry) bool {
	if act.ProjectID != "" && plan.ProjectID != act.ProjectID {
		return false
	}

	if act.CategoryID != "" && plan.CategoryID != act.CategoryID {
		return false
	}

	if act.TaskID != "" && plan.TaskID != act.TaskID {
		return false
	}

	for _, l := range act.LabelIDs {
		if !slices.Contains(plan.LabelIDs, l) {
			return false
		}
	}

	return true
}

// bestPlan returns the compatible plan overlapping act the longest, or nil.
func bestPlan(
	act *models.ScheduleEntry,
	plans []*models.ScheduleEntry,
) *models.ScheduleEntry {
	start, end, ok := act.Interval()
	if !ok {
		return nil
	}

	var (
		best    *models.ScheduleEntry
		longest time.Duration
	)

	for _, p := range plans {
		ps, pe, ok := p.Interval()
		if !ok {
			continue
		}

		overlap := timeutil.Overlap(start, end, ps, pe)
		if overlap <= 0 || !compatible(p, act) {
			continue
		}

		if overlap > longest {
			best, longest = p, overlap
		}
	}

	return best
}

// Finalize sets each actual's summary to that of its best matching plan and
// saves every actual. Saves run concurrently and independently: a failure
// does not stop the others, and the first error is returned once all have
// finished.
func (f *Finalizer) Finalize(
	ctx context.Context,
	userID string,
	actuals []*models.ScheduleEntry,
) ([]*models.ScheduleEntry, error) {
	if len(actuals) == 0 {
		return actuals, nil
	}

	var plans []*models.ScheduleEntry

	if start, end, ok := bounds(actuals); ok {
		var err error

		plans, err = f.Entries.ListEntries(ctx, models.EntryFilter{
			UserID: userID,
			Kinds:  []models.EntryKind{models.KindPlan},
			Start:  start,
			End:    end,
		})
		if err != nil {
			return nil, errListPlans.Wrap(err)
		}
	}

	titled := 0

	for _, a := range actuals {
		if p := bestPlan(a, plans); p != nil {
			a.Summary = p.Summary
			titled++
		}
	}

	var g errgroup.Group

	for _, a := range actuals {
		g.Go(func() error {
			return f.Entries.SaveEntry(ctx, a)
		})
	}

	if err := g.Wait(); err != nil {
		return nil, errSaveActuals.Wrap(err)
	}

	f.logger().InfoContext(
		ctx,
		"finalized actuals",
		slog.String("user_id", userID),
		slog.Int("count", len(actuals)),
		slog.Int("titled", titled),
	)

	return actuals, nil
}
