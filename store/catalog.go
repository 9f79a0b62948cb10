package store

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"time"

	"github.com/maruel/natural"
	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/autotrack/internal/models"
)

// Preference returns the user's work preference, or nil if none is stored.
func (c *Client) Preference(
	_ context.Context,
	userID string,
) (*models.UserPreference, error) {
	var pref *models.UserPreference

	err := c.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(preferenceBucket)).Get([]byte(userID))
		if len(v) == 0 {
			return nil
		}

		pref = &models.UserPreference{}

		return json.Unmarshal(v, pref)
	})

	return pref, err
}

// PutPreference stores pref, replacing any existing record for the user.
func (c *Client) PutPreference(
	_ context.Context,
	pref *models.UserPreference,
) error {
	if pref.UserID == "" {
		return errMissingID.Fmt("preference")
	}

	return c.Update(func(tx *bolt.Tx) error {
		return put(tx.Bucket([]byte(preferenceBucket)), []byte(pref.UserID), pref)
	})
}

// EnsurePreference returns the stored preference for seed.UserID, storing
// seed first if there is none.
func (c *Client) EnsurePreference(
	_ context.Context,
	seed models.UserPreference,
) (*models.UserPreference, error) {
	if seed.UserID == "" {
		return nil, errMissingID.Fmt("preference")
	}

	var pref *models.UserPreference

	err := c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(preferenceBucket))

		if v := b.Get([]byte(seed.UserID)); len(v) > 0 {
			pref = &models.UserPreference{}
			return json.Unmarshal(v, pref)
		}

		pref = &seed

		return put(b, []byte(seed.UserID), pref)
	})
	if err != nil {
		return nil, err
	}

	return pref, nil
}

// ListRules returns every match rule in the order they were stored.
func (c *Client) ListRules(context.Context) ([]models.MatchRule, error) {
	var rules []models.MatchRule

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(ruleBucket)).ForEach(func(_, v []byte) error {
			var r models.MatchRule

			if err := json.Unmarshal(v, &r); err != nil {
				return err
			}

			rules = append(rules, r)

			return nil
		})
	})

	return rules, err
}

// PutRules replaces the stored rules. Order is preserved since it decides
// ties between equally used attributes.
func (c *Client) PutRules(_ context.Context, rules []models.MatchRule) error {
	return c.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket([]byte(ruleBucket)); err != nil {
			return err
		}

		b, err := tx.CreateBucket([]byte(ruleBucket))
		if err != nil {
			return err
		}

		for i := range rules {
			if rules[i].ID == "" {
				rules[i].ID = fmt.Sprintf("rule-%d", i+1)
			}

			key := fmt.Sprintf("%08d", i)

			if err := put(b, []byte(key), &rules[i]); err != nil {
				return err
			}
		}

		return nil
	})
}

// ListTasks returns every task in natural name order.
func (c *Client) ListTasks(context.Context) ([]models.Task, error) {
	var tasks []models.Task

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(taskBucket)).ForEach(func(_, v []byte) error {
			var t models.Task

			if err := json.Unmarshal(v, &t); err != nil {
				return err
			}

			tasks = append(tasks, t)

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortStableFunc(tasks, func(a, b models.Task) int {
		return compareNatural(a.Name, b.Name)
	})

	return tasks, nil
}

// PutTasks creates or overwrites tasks by id.
func (c *Client) PutTasks(_ context.Context, tasks []models.Task) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(taskBucket))

		for i := range tasks {
			if tasks[i].ID == "" {
				return errMissingID.Fmt("task " + tasks[i].Name)
			}

			if err := put(b, []byte(tasks[i].ID), &tasks[i]); err != nil {
				return err
			}
		}

		return nil
	})
}

// CandidateTasks is the default prioritizer: incomplete tasks, optionally
// limited to one project, by descending priority and then natural name
// order. The date is accepted for callers with date-aware policies and is
// not used here.
func (c *Client) CandidateTasks(
	ctx context.Context,
	_ time.Time,
	projectID string,
) ([]models.Task, error) {
	tasks, err := c.ListTasks(ctx)
	if err != nil {
		return nil, err
	}

	candidates := slices.DeleteFunc(tasks, func(t models.Task) bool {
		return t.Completed || (projectID != "" && t.ProjectID != projectID)
	})

	slices.SortStableFunc(candidates, func(a, b models.Task) int {
		if a.Priority != b.Priority {
			return b.Priority - a.Priority
		}

		return compareNatural(a.Name, b.Name)
	})

	return candidates, nil
}

func compareNatural(a, b string) int {
	switch {
	case natural.Less(a, b):
		return -1
	case natural.Less(b, a):
		return 1
	default:
		return 0
	}
}
