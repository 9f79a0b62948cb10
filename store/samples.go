package store

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

// ListSamples returns the activity samples overlapping [start, end) in
// chronological order.
func (c *Client) ListSamples(
	_ context.Context,
	start, end time.Time,
) ([]models.ActivitySample, error) {
	var samples []models.ActivitySample

	collect := func(v []byte) error {
		var s models.ActivitySample

		if err := json.Unmarshal(v, &s); err != nil {
			return err
		}

		if s.End.After(start) && s.Start.Before(end) {
			samples = append(samples, s)
		}

		return nil
	}

	err := c.View(func(tx *bolt.Tx) error {
		cur := tx.Bucket([]byte(sampleBucket)).Cursor()
		from := timeutil.ToKey(start)
		to := timeutil.ToKey(end)

		// samples starting before the range may still be running at its
		// start, however long ago they began
		var running [][]byte

		k, v := cur.Seek(from)
		if k != nil {
			k, v = cur.Prev()
		} else {
			k, v = cur.Last()
		}

		for ; k != nil; k, v = cur.Prev() {
			running = append(running, v)
		}

		for i := len(running) - 1; i >= 0; i-- {
			if err := collect(running[i]); err != nil {
				return err
			}
		}

		for k, v := cur.Seek(from); k != nil && bytes.Compare(k, to) < 0; k, v = cur.Next() {
			if err := collect(v); err != nil {
				return err
			}
		}

		return nil
	})

	return samples, err
}

// PutSamples stores activity samples keyed by start time.
func (c *Client) PutSamples(
	_ context.Context,
	samples []models.ActivitySample,
) error {
	return c.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket([]byte(sampleBucket))

		for i := range samples {
			if samples[i].ID == "" {
				return errMissingID.Fmt("activity sample")
			}

			if err := put(b, sampleKey(&samples[i]), &samples[i]); err != nil {
				return err
			}
		}

		return nil
	})
}
