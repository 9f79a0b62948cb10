// Package activity reads window-activity samples recorded by a watcher into
// a SQLite database
package activity

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/osutil"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

const currentVersion = 1

const schemaV1 = `
CREATE TABLE IF NOT EXISTS samples (
	id         TEXT PRIMARY KEY,
	basename   TEXT NOT NULL,
	start_time TEXT NOT NULL,
	end_time   TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS details (
	sample_id  TEXT NOT NULL REFERENCES samples(id) ON DELETE CASCADE,
	start_time TEXT NOT NULL,
	end_time   TEXT NOT NULL,
	title      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_samples_start ON samples(start_time);
CREATE INDEX IF NOT EXISTS idx_details_sample ON details(sample_id);
`

const overlapQuery = `
SELECT s.id, s.basename, s.start_time, s.end_time,
       d.start_time, d.end_time, d.title
FROM samples s
LEFT JOIN details d ON d.sample_id = s.id
WHERE s.start_time < ? AND s.end_time > ?
ORDER BY s.start_time, s.id, d.start_time`

// SQLiteReader reads activity samples from a watcher database. Timestamps
// are stored as fixed-width UTC text so that range queries compare
// lexically.
type SQLiteReader struct {
	db *sql.DB
}

// Open opens (or creates) the watcher database at path and ensures its
// schema exists. Use ":memory:" for a throwaway database.
func Open(path string) (*SQLiteReader, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), osutil.DirPermission); err != nil {
			return nil, fmt.Errorf("create activity db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open activity database: %w", err)
	}

	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("exec pragma %q: %w", p, err)
		}
	}

	r := &SQLiteReader{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate activity database: %w", err)
	}

	return r, nil
}

func (r *SQLiteReader) migrate() error {
	var version int

	if err := r.db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read user_version: %w", err)
	}

	if version >= currentVersion {
		return nil
	}

	if _, err := r.db.Exec(schemaV1); err != nil {
		return err
	}

	_, err := r.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentVersion))

	return err
}

func (r *SQLiteReader) Close() error {
	return r.db.Close()
}

func formatTime(t time.Time) string {
	return string(timeutil.ToKey(t))
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeutil.KeyLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse activity timestamp %q: %w", s, err)
	}

	return t, nil
}

// ListSamples returns the samples overlapping [start, end), each with its
// details in chronological order. Times are returned in start's location.
func (r *SQLiteReader) ListSamples(
	ctx context.Context,
	start, end time.Time,
) ([]models.ActivitySample, error) {
	rows, err := r.db.QueryContext(ctx, overlapQuery, formatTime(end), formatTime(start))
	if err != nil {
		return nil, fmt.Errorf("query activity samples: %w", err)
	}
	defer rows.Close()

	loc := start.Location()

	var samples []models.ActivitySample

	for rows.Next() {
		var (
			id, basename, sStart, sEnd string
			dStart, dEnd, title        sql.NullString
		)

		if err := rows.Scan(&id, &basename, &sStart, &sEnd, &dStart, &dEnd, &title); err != nil {
			return nil, fmt.Errorf("scan activity sample: %w", err)
		}

		if n := len(samples); n == 0 || samples[n-1].ID != id {
			s := models.ActivitySample{ID: id, Basename: basename}

			if s.Start, err = parseTime(sStart); err != nil {
				return nil, err
			}

			if s.End, err = parseTime(sEnd); err != nil {
				return nil, err
			}

			s.Start, s.End = s.Start.In(loc), s.End.In(loc)
			samples = append(samples, s)
		}

		if !dStart.Valid {
			continue
		}

		d := models.Detail{Title: title.String}

		if d.Start, err = parseTime(dStart.String); err != nil {
			return nil, err
		}

		if d.End, err = parseTime(dEnd.String); err != nil {
			return nil, err
		}

		d.Start, d.End = d.Start.In(loc), d.End.In(loc)

		last := &samples[len(samples)-1]
		last.Details = append(last.Details, d)
	}

	return samples, rows.Err()
}

// Record stores samples and their details, replacing samples with the same
// id.
func (r *SQLiteReader) Record(
	ctx context.Context,
	samples []models.ActivitySample,
) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for i := range samples {
		s := &samples[i]

		if _, err := tx.ExecContext(ctx, `DELETE FROM details WHERE sample_id = ?`, s.ID); err != nil {
			return fmt.Errorf("clear details of %s: %w", s.ID, err)
		}

		_, err := tx.ExecContext(
			ctx,
			`INSERT OR REPLACE INTO samples (id, basename, start_time, end_time) VALUES (?, ?, ?, ?)`,
			s.ID,
			s.Basename,
			formatTime(s.Start),
			formatTime(s.End),
		)
		if err != nil {
			return fmt.Errorf("insert sample %s: %w", s.ID, err)
		}

		for _, d := range s.Details {
			_, err := tx.ExecContext(
				ctx,
				`INSERT INTO details (sample_id, start_time, end_time, title) VALUES (?, ?, ?, ?)`,
				s.ID,
				formatTime(d.Start),
				formatTime(d.End),
				d.Title,
			)
			if err != nil {
				return fmt.Errorf("insert detail of %s: %w", s.ID, err)
			}
		}
	}

	return tx.Commit()
}
