// Package entry constructs new schedule entries with identity and audit
// timestamps assigned
package entry

import (
	"time"

	"github.com/google/uuid"

	"github.com/ayoisaiah/autotrack/internal/models"
)

// Factory creates schedule entries. The zero value is ready to use.
type Factory struct {
	Now   func() time.Time
	NewID func() string
}

// NewFactory returns a Factory backed by the system clock and random UUIDs.
func NewFactory() *Factory {
	return &Factory{
		Now:   time.Now,
		NewID: uuid.NewString,
	}
}

func (f *Factory) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}

	return time.Now()
}

func (f *Factory) newID() string {
	if f.NewID != nil {
		return f.NewID()
	}

	return uuid.NewString()
}

// New returns a copy of partial with a fresh ID and LastSynced and Updated
// set to the current time. Any ID or audit fields on partial are discarded.
func (f *Factory) New(partial models.ScheduleEntry) *models.ScheduleEntry {
	e := partial.Clone()

	now := f.now()

	e.ID = f.newID()
	e.LastSynced = now
	e.Updated = now

	return e
}
