// Package plan computes free time within a user's work day and allocates
// outstanding task work into it
package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/ayoisaiah/autotrack/internal/apperr"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
	"github.com/ayoisaiah/autotrack/interval"
)

var (
	ErrNoPreference = &apperr.Error{
		Message: "no work preference found for user %q: run 'autotrack pref init' first",
	}

	errListBusy = &apperr.Error{
		Message: "listing scheduled entries failed",
	}

	errReadPreference = &apperr.Error{
		Message: "reading work preference failed",
	}
)

// EntryReader lists schedule entries.
type EntryReader interface {
	ListEntries(
		ctx context.Context,
		filter models.EntryFilter,
	) ([]*models.ScheduleEntry, error)
}

// PreferenceReader returns a user's work preference, or nil if none exists.
type PreferenceReader interface {
	Preference(
		ctx context.Context,
		userID string,
	) (*models.UserPreference, error)
}

// Calculator computes free slots in a user's work day.
type Calculator struct {
	Entries     EntryReader
	Preferences PreferenceReader
	Logger      *slog.Logger
}

func (c *Calculator) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}

	return slog.Default()
}

// FreeSlots returns the ordered free time on date within the user's work
// window. Breaks and existing PLAN or SHARED entries count as busy.
func (c *Calculator) FreeSlots(
	ctx context.Context,
	userID string,
	date time.Time,
) ([]models.Slot, error) {
	pref, err := c.Preferences.Preference(ctx, userID)
	if err != nil {
		return nil, errReadPreference.Wrap(err)
	}

	if pref == nil {
		return nil, ErrNoPreference.Fmt(userID)
	}

	window := WorkWindow(date, pref)
	busy := BreakSlots(date, pref.Breaks)

	entries, err := c.Entries.ListEntries(ctx, models.EntryFilter{
		UserID: userID,
		Kinds:  []models.EntryKind{models.KindPlan, models.KindShared},
		Start:  window.Start,
		End:    window.End,
	})
	if err != nil {
		return nil, errListBusy.Wrap(err)
	}

	for _, e := range entries {
		start, end, ok := e.Interval()
		if !ok || e.IsDeleted() {
			continue
		}

		busy = append(busy, models.Slot{Start: start, End: end})
	}

	free := Subtract(window, busy)

	c.logger().DebugContext(
		ctx,
		"computed free slots",
		slog.String("user_id", userID),
		slog.Time("window_start", window.Start),
		slog.Time("window_end", window.End),
		slog.Int("busy", len(busy)),
		slog.Int("free", len(free)),
	)

	return free, nil
}

// WorkWindow returns the work window for date. Breaks extend the window so
// that the full WorkHours remain available for work.
func WorkWindow(date time.Time, pref *models.UserPreference) models.Slot {
	start := pref.WorkStart.On(date)

	var breaks time.Duration
	for _, s := range BreakSlots(date, pref.Breaks) {
		breaks += models.SlotDuration(s)
	}

	return models.Slot{
		Start: start,
		End:   start.Add(timeutil.HoursToDuration(pref.WorkHours) + breaks),
	}
}

// BreakSlots places the recurring breaks on date. A break whose end is
// earlier than its start wraps midnight and yields two slots: one from the
// start of date to the break end, one from the break start to the next day.
func BreakSlots(date time.Time, breaks []models.BreakSlot) []models.Slot {
	dayStart, nextDay := timeutil.DayBounds(date)

	slots := make([]models.Slot, 0, len(breaks))

	for _, b := range breaks {
		start, end := b.Start.On(date), b.End.On(date)

		if b.End.Before(b.Start) {
			slots = append(
				slots,
				models.Slot{Start: dayStart, End: end},
				models.Slot{Start: start, End: nextDay},
			)

			continue
		}

		slots = append(slots, models.Slot{Start: start, End: end})
	}

	return slots
}

// Subtract returns window minus busy as sorted, disjoint slots. Busy slots
// may overlap one another and extend past the window.
func Subtract(window models.Slot, busy []models.Slot) []models.Slot {
	inside := make([]models.Slot, 0, len(busy))

	for _, b := range busy {
		if b.End.After(window.Start) && b.Start.Before(window.End) {
			inside = append(inside, b)
		}
	}

	var free []models.Slot

	cursor := window.Start

	for _, b := range interval.Merge(inside) {
		if b.End.Before(cursor) {
			continue
		}

		if !b.Start.After(cursor) {
			if b.End.After(cursor) {
				cursor = b.End
			}

			continue
		}

		free = append(free, models.Slot{Start: cursor, End: b.Start})
		cursor = b.End
	}

	if cursor.Before(window.End) {
		free = append(free, models.Slot{Start: cursor, End: window.End})
	}

	return free
}
