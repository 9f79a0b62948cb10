package store

import (
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/autotrack/internal/models"
)

// ScheduledTime sums the duration of the user's live PLAN and SHARED
// entries per task. Every requested id is present in the result, with zero
// when nothing is scheduled for it.
func (c *Client) ScheduledTime(
	_ context.Context,
	userID string,
	taskIDs []string,
) (map[string]time.Duration, error) {
	totals := make(map[string]time.Duration, len(taskIDs))
	for _, id := range taskIDs {
		totals[id] = 0
	}

	filter := models.EntryFilter{
		UserID: userID,
		Kinds:  []models.EntryKind{models.KindPlan, models.KindShared},
	}

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(entryBucket)).ForEach(func(_, v []byte) error {
			var e models.ScheduleEntry

			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}

			if e.TaskID == "" || !filter.Match(&e) {
				return nil
			}

			if _, ok := totals[e.TaskID]; ok {
				totals[e.TaskID] += e.Duration()
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	return totals, nil
}
