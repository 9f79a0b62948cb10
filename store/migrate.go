package store

import (
	"encoding/binary"

	bolt "go.etcd.io/bbolt"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

var schemaVersionKey = []byte("schema_version")

// migrations[i] upgrades the schema from version i to i+1. Append new steps;
// never reorder or edit existing ones.
var migrations = []func(tx *bolt.Tx) error{
	createBuckets,
}

func schemaVersion(tx *bolt.Tx) int {
	v := tx.Bucket([]byte(metaBucket)).Get(schemaVersionKey)
	if len(v) != 8 {
		return 0
	}

	return int(binary.BigEndian.Uint64(v))
}

func setSchemaVersion(tx *bolt.Tx, version int) error {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, uint64(version))

	return tx.Bucket([]byte(metaBucket)).Put(schemaVersionKey, b)
}

// createBuckets is the baseline schema.
func createBuckets(tx *bolt.Tx) error {
	for _, name := range buckets {
		if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) migrate(tx *bolt.Tx) error {
	if _, err := tx.CreateBucketIfNotExists([]byte(metaBucket)); err != nil {
		return err
	}

	for v := schemaVersion(tx); v < len(migrations); v++ {
		if err := migrations[v](tx); err != nil {
			return err
		}

		if err := setSchemaVersion(tx, v+1); err != nil {
			return err
		}
	}

	return nil
}

func sampleKey(s *models.ActivitySample) []byte {
	return append(timeutil.ToKey(s.Start), []byte("/"+s.ID)...)
}
