package plan

import (
	"context"
	"log/slog"
	"time"

	"github.com/davecgh/go-spew/spew"

	"github.com/ayoisaiah/autotrack/internal/apperr"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

var (
	ErrNegativeOverride = &apperr.Error{
		Message: "extra hours for task %s must not be negative, got %v",
	}

	ErrMissingScheduledTime = &apperr.Error{
		Message: "no scheduled time reported for task %s",
	}

	errAggregate = &apperr.Error{
		Message: "aggregating scheduled time failed",
	}
)

// ScheduledTimeAggregator sums the PLAN and SHARED time already scheduled
// for each task. It must report every requested task id.
type ScheduledTimeAggregator interface {
	ScheduledTime(
		ctx context.Context,
		userID string,
		taskIDs []string,
	) (map[string]time.Duration, error)
}

// EntryFactory creates entries with a fresh identity.
type EntryFactory interface {
	New(partial models.ScheduleEntry) *models.ScheduleEntry
}

// Allocation is the outcome of a single allocation pass.
type Allocation struct {
	Entries  []*models.ScheduleEntry
	Overruns []models.OverrunTask
}

// Allocator packs task work into free slots in task order.
type Allocator struct {
	Aggregator ScheduledTimeAggregator
	Factory    EntryFactory
	Logger     *slog.Logger
}

func (a *Allocator) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}

	return slog.Default()
}

// Allocate fills slots front to back with the remaining work of each task,
// in the order given. extraHours maps a task id to the exact number of hours
// to allocate for it, bypassing the overrun check. A task whose scheduled
// time already meets its estimate is reported as an overrun and receives
// nothing. Allocation stops once the slots run out.
func (a *Allocator) Allocate(
	ctx context.Context,
	userID string,
	slots []models.Slot,
	tasks []models.Task,
	extraHours map[string]float64,
) (*Allocation, error) {
	for id, hours := range extraHours {
		if hours < 0 {
			return nil, ErrNegativeOverride.Fmt(id, hours)
		}
	}

	result := &Allocation{}

	if len(tasks) == 0 {
		return result, nil
	}

	ids := make([]string, len(tasks))
	for i := range tasks {
		ids[i] = tasks[i].ID
	}

	scheduled, err := a.Aggregator.ScheduledTime(ctx, userID, ids)
	if err != nil {
		return nil, errAggregate.Wrap(err)
	}

	for _, id := range ids {
		if _, ok := scheduled[id]; !ok {
			return nil, ErrMissingScheduledTime.Fmt(id)
		}
	}

	queue := make([]models.Slot, 0, len(slots))

	for _, s := range slots {
		if s.End.After(s.Start) {
			queue = append(queue, s)
		}
	}

	for i := range tasks {
		if len(queue) == 0 {
			break
		}

		task := &tasks[i]

		var required time.Duration

		if hours, ok := extraHours[task.ID]; ok {
			required = timeutil.HoursToDuration(hours)
		} else if task.EstimatedHours != nil {
			estimate := timeutil.HoursToDuration(*task.EstimatedHours)

			if scheduled[task.ID] >= estimate {
				result.Overruns = append(result.Overruns, models.OverrunTask{
					TaskID:        task.ID,
					ScheduledTime: scheduled[task.ID],
				})

				continue
			}

			required = estimate - scheduled[task.ID]
		}

		for required > 0 && len(queue) > 0 {
			slot := queue[0]
			queue = queue[1:]

			if models.SlotDuration(slot) > required {
				split := slot.Start.Add(required)
				queue = append([]models.Slot{{Start: split, End: slot.End}}, queue...)
				slot.End = split
			}

			result.Entries = append(result.Entries, a.Factory.New(models.ScheduleEntry{
				UserID:        userID,
				Kind:          models.KindPlan,
				Summary:       task.Name,
				Description:   task.Description,
				ProjectID:     task.ProjectID,
				TaskID:        task.ID,
				Start:         models.At(slot.Start),
				End:           models.At(slot.End),
				IsProvisional: true,
			}))

			required -= models.SlotDuration(slot)
		}
	}

	if logger := a.logger(); logger.Enabled(ctx, slog.LevelDebug) {
		logger.DebugContext(
			ctx,
			"allocation computed",
			slog.String("user_id", userID),
			slog.String("result", spew.Sdump(result)),
		)
	}

	return result, nil
}
