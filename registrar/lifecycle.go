package registrar

import (
	"context"
	"log/slog"
	"time"

	"github.com/ayoisaiah/autotrack/internal/apperr"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

var (
	errListProvisional = &apperr.Error{
		Message: "listing provisional %s entries failed",
	}

	errConfirm = &apperr.Error{
		Message: "confirming %d %s entries failed",
	}

	errDiscard = &apperr.Error{
		Message: "discarding %d %s entries failed",
	}
)

func (s *Service) provisional(
	ctx context.Context,
	date time.Time,
	kind models.EntryKind,
) ([]*models.ScheduleEntry, error) {
	start, end := timeutil.DayBounds(date)

	entries, err := s.entries.ListEntries(ctx, models.EntryFilter{
		UserID:      s.userID,
		Kinds:       []models.EntryKind{kind},
		Start:       start,
		End:         end,
		Provisional: models.Bool(true),
	})
	if err != nil {
		return nil, errListProvisional.Fmt(kind).Wrap(err)
	}

	return entries, nil
}

// confirm clears the provisional flag on the day's entries of kind.
func (s *Service) confirm(
	ctx context.Context,
	date time.Time,
	kind models.EntryKind,
) (int, error) {
	entries, err := s.provisional(ctx, date, kind)
	if err != nil {
		return 0, err
	}

	if len(entries) == 0 {
		return 0, nil
	}

	now := s.now()

	for _, e := range entries {
		e.IsProvisional = false
		e.Updated = now
	}

	if err := s.entries.UpsertEntries(ctx, entries); err != nil {
		return 0, errConfirm.Fmt(len(entries), kind).Wrap(err)
	}

	s.logger.InfoContext(
		ctx,
		"confirmed provisional entries",
		slog.String("kind", string(kind)),
		slog.String("date", date.Format(timeutil.DateLayout)),
		slog.Int("count", len(entries)),
	)

	return len(entries), nil
}

// discard logically deletes the day's provisional entries of kind.
func (s *Service) discard(
	ctx context.Context,
	date time.Time,
	kind models.EntryKind,
) (int, error) {
	entries, err := s.provisional(ctx, date, kind)
	if err != nil {
		return 0, err
	}

	if len(entries) == 0 {
		return 0, nil
	}

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.ID
	}

	if err := s.entries.DeleteEntries(ctx, ids); err != nil {
		return 0, errDiscard.Fmt(len(ids), kind).Wrap(err)
	}

	s.logger.InfoContext(
		ctx,
		"discarded provisional entries",
		slog.String("kind", string(kind)),
		slog.String("date", date.Format(timeutil.DateLayout)),
		slog.Int("count", len(ids)),
	)

	return len(ids), nil
}
