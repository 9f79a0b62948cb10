package store

import (
	"context"
	"time"

	"github.com/ayoisaiah/autotrack/internal/models"
)

// DB is the database storage interface.
type DB interface {
	// ListEntries returns the schedule entries matching the filter, ordered
	// by start time
	ListEntries(
		ctx context.Context,
		filter models.EntryFilter,
	) ([]*models.ScheduleEntry, error)
	GetEntry(ctx context.Context, id string) (*models.ScheduleEntry, error)
	// SaveEntry creates the entry if it doesn't exist already, or overwrites
	// it if it does
	SaveEntry(ctx context.Context, e *models.ScheduleEntry) error
	UpsertEntries(ctx context.Context, entries []*models.ScheduleEntry) error
	// DeleteEntry and DeleteEntries stamp a deletion time; nothing is
	// physically removed
	DeleteEntry(ctx context.Context, id string) error
	DeleteEntries(ctx context.Context, ids []string) error
	Preference(ctx context.Context, userID string) (*models.UserPreference, error)
	PutPreference(ctx context.Context, pref *models.UserPreference) error
	EnsurePreference(
		ctx context.Context,
		seed models.UserPreference,
	) (*models.UserPreference, error)
	ListRules(ctx context.Context) ([]models.MatchRule, error)
	PutRules(ctx context.Context, rules []models.MatchRule) error
	ListTasks(ctx context.Context) ([]models.Task, error)
	PutTasks(ctx context.Context, tasks []models.Task) error
	CandidateTasks(
		ctx context.Context,
		date time.Time,
		projectID string,
	) ([]models.Task, error)
	ListSamples(
		ctx context.Context,
		start, end time.Time,
	) ([]models.ActivitySample, error)
	PutSamples(ctx context.Context, samples []models.ActivitySample) error
	ScheduledTime(
		ctx context.Context,
		userID string,
		taskIDs []string,
	) (map[string]time.Duration, error)
	// Close ends the database connection
	Close() error
}

var _ DB = (*Client)(nil)
