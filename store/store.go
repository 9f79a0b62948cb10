// Package store persists schedule entries, preferences, rules, tasks and
// activity samples in a BoltDB database
package store

import (
	"encoding/json"
	"errors"
	"time"

	bolt "go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/ayoisaiah/autotrack/internal/apperr"
	"github.com/ayoisaiah/autotrack/internal/osutil"
)

const (
	entryBucket      = "entries"
	preferenceBucket = "preferences"
	ruleBucket       = "rules"
	taskBucket       = "tasks"
	sampleBucket     = "samples"
	metaBucket       = "meta"
)

var buckets = []string{
	entryBucket,
	preferenceBucket,
	ruleBucket,
	taskBucket,
	sampleBucket,
	metaBucket,
}

var (
	errAlreadyRunning = &apperr.Error{
		Message: "is autotrack already running? Only one instance can access the database at a time",
	}

	ErrEntryNotFound = &apperr.Error{
		Message: "schedule entry %s not found",
	}

	errInvalidEntry = &apperr.Error{
		Message: "invalid schedule entry %s",
	}

	errMissingID = &apperr.Error{
		Message: "cannot save %s without an id",
	}
)

// Client is a BoltDB database client.
type Client struct {
	*bolt.DB
	now func() time.Time
}

// open creates or opens a database and locks it.
func openDB(pathToDB string) (*bolt.DB, error) {
	db, err := bolt.Open(
		pathToDB,
		osutil.DBPermission,
		&bolt.Options{Timeout: 1 * time.Second},
	)
	if err != nil {
		if errors.Is(err, berrors.ErrTimeout) {
			return nil, errAlreadyRunning
		}

		return nil, err
	}

	return db, nil
}

// NewClient returns a wrapper to a BoltDB connection. The buckets are created
// and pending migrations applied if necessary.
func NewClient(dbPath string) (*Client, error) {
	db, err := openDB(dbPath)
	if err != nil {
		return nil, err
	}

	c := &Client{
		DB:  db,
		now: time.Now,
	}

	err = db.Update(c.migrate)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	return c, nil
}

func put(b *bolt.Bucket, key []byte, v any) error {
	value, err := json.Marshal(v)
	if err != nil {
		return err
	}

	return b.Put(key, value)
}
