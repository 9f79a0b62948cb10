package store

import (
	"context"
	"encoding/json"
	"slices"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/autotrack/internal/models"
)

func entryOrder(a, b *models.ScheduleEntry) int {
	as, _, _ := a.Interval()
	bs, _, _ := b.Interval()

	if c := as.Compare(bs); c != 0 {
		return c
	}

	switch {
	case a.ID < b.ID:
		return -1
	case a.ID > b.ID:
		return 1
	default:
		return 0
	}
}

// ListEntries returns the entries matching f ordered by start time.
func (c *Client) ListEntries(
	_ context.Context,
	f models.EntryFilter,
) ([]*models.ScheduleEntry, error) {
	var entries []*models.ScheduleEntry

	err := c.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(entryBucket)).ForEach(func(_, v []byte) error {
			var e models.ScheduleEntry

			if err := json.Unmarshal(v, &e); err != nil {
				return err
			}

			if f.Match(&e) {
				entries = append(entries, &e)
			}

			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	slices.SortFunc(entries, entryOrder)

	return entries, nil
}

// GetEntry retrieves a single entry, deleted or not.
func (c *Client) GetEntry(
	_ context.Context,
	id string,
) (*models.ScheduleEntry, error) {
	var e models.ScheduleEntry

	err := c.View(func(tx *bolt.Tx) error {
		v := tx.Bucket([]byte(entryBucket)).Get([]byte(id))
		if len(v) == 0 {
			return ErrEntryNotFound.Fmt(id)
		}

		return json.Unmarshal(v, &e)
	})
	if err != nil {
		return nil, err
	}

	return &e, nil
}

func putEntry(b *bolt.Bucket, e *models.ScheduleEntry) error {
	if e.ID == "" {
		return errMissingID.Fmt("schedule entry")
	}

	if err := e.Validate(); err != nil {
		return errInvalidEntry.Fmt(e.ID).Wrap(err)
	}

	return put(b, []byte(e.ID), e)
}

// SaveEntry creates or overwrites an entry.
func (c *Client) SaveEntry(_ context.Context, e *models.ScheduleEntry) error {
	return c.Update(func(tx *bolt.Tx) error {
		return putEntry(tx.Bucket([]byte(entryBucket)), e)
	})
}

// UpsertEntries creates or overwrites several entries in one transaction.
func (c *Client) UpsertEntries(
	_ context.Context,
	entries []*models.ScheduleEntry,
) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entryBucket))

		for _, e := range entries {
			if err := putEntry(b, e); err != nil {
				return err
			}
		}

		return nil
	})
}

func (c *Client) markDeleted(b *bolt.Bucket, id string) (bool, error) {
	v := b.Get([]byte(id))
	if len(v) == 0 {
		return false, nil
	}

	var e models.ScheduleEntry

	if err := json.Unmarshal(v, &e); err != nil {
		return false, err
	}

	if e.IsDeleted() {
		return true, nil
	}

	now := c.now()
	e.Deleted = &now
	e.Updated = now

	return true, put(b, []byte(id), &e)
}

// DeleteEntry logically deletes an entry by stamping its deletion time.
func (c *Client) DeleteEntry(_ context.Context, id string) error {
	return c.Update(func(tx *bolt.Tx) error {
		found, err := c.markDeleted(tx.Bucket([]byte(entryBucket)), id)
		if err != nil {
			return err
		}

		if !found {
			return ErrEntryNotFound.Fmt(id)
		}

		return nil
	})
}

// DeleteEntries logically deletes every listed entry. Unknown ids are
// ignored.
func (c *Client) DeleteEntries(_ context.Context, ids []string) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(entryBucket))

		for _, id := range ids {
			if _, err := c.markDeleted(b, id); err != nil {
				return err
			}
		}

		return nil
	})
}
