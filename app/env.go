package app

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/autotrack/activity"
	"github.com/ayoisaiah/autotrack/actual"
	"github.com/ayoisaiah/autotrack/entry"
	"github.com/ayoisaiah/autotrack/internal/config"
	"github.com/ayoisaiah/autotrack/internal/logging"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/pathutil"
	"github.com/ayoisaiah/autotrack/internal/ui"
	"github.com/ayoisaiah/autotrack/registrar"
	"github.com/ayoisaiah/autotrack/store"
)

// env holds everything an action needs for one invocation.
type env struct {
	cfg      *config.Config
	logger   *slog.Logger
	db       store.DB
	samples  actual.SampleReader
	recorder sampleRecorder
	svc      *registrar.Service
	closers  []io.Closer
}

// sampleRecorder stores imported activity samples in the configured source.
type sampleRecorder func(ctx context.Context, samples []models.ActivitySample) error

func loadConfig(ctx *cli.Context) (*config.Config, error) {
	path := pathutil.ConfigFilePath()

	return config.New(
		config.WithPromptConfig(path),
		config.WithViperConfig(path),
		config.WithCLIConfig(ctx),
	)
}

// setup loads the config, opens the log file and the databases, and builds
// the registrar for the configured user.
func setup(ctx *cli.Context) (*env, error) {
	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	ui.DarkTheme = cfg.Display.DarkTheme

	e := &env{cfg: cfg}

	logger, closer, err := logging.New(logging.Options{
		Path:       pathutil.LogFilePath(),
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSize,
		MaxBackups: cfg.Log.MaxBackups,
	})
	if err != nil {
		return nil, err
	}

	e.logger = logger
	e.closers = append(e.closers, closer)

	slog.SetDefault(logger)

	db, err := store.NewClient(pathutil.DBFilePath())
	if err != nil {
		e.Close()
		return nil, err
	}

	e.db = db
	e.closers = append(e.closers, db)

	if err := e.openActivity(); err != nil {
		e.Close()
		return nil, err
	}

	seed, err := cfg.Preference()
	if err != nil {
		e.Close()
		return nil, err
	}

	if _, err := db.EnsurePreference(ctx.Context, seed); err != nil {
		e.Close()
		return nil, err
	}

	e.svc = registrar.New(cfg.User.ID, registrar.Collaborators{
		Entries:     db,
		Preferences: db,
		Samples:     e.samples,
		Rules:       db,
		Tasks:       db,
		Prioritizer: db,
		Aggregator:  db,
		Factory:     entry.NewFactory(),
	}, logger)

	logger.DebugContext(
		ctx.Context,
		"environment ready",
		slog.String("user", cfg.User.ID),
		slog.String("activity_source", cfg.Activity.Source),
		slog.String("config", cfg.ConfigPath),
	)

	return e, nil
}

func (e *env) openActivity() error {
	if e.cfg.Activity.Source != config.SourceSQLite {
		e.samples = e.db
		e.recorder = e.db.PutSamples

		return nil
	}

	path := e.cfg.Activity.SQLitePath
	if path == "" {
		path = pathutil.ActivityFilePath()
	}

	reader, err := activity.Open(path)
	if err != nil {
		return err
	}

	e.samples = reader
	e.recorder = reader.Record
	e.closers = append(e.closers, reader)

	return nil
}

// Close releases resources in reverse order of acquisition.
func (e *env) Close() error {
	var errs []error

	for i := len(e.closers) - 1; i >= 0; i-- {
		if err := e.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}

	e.closers = nil

	return errors.Join(errs...)
}

// withEnv wraps an action so that it receives a ready environment which is
// closed afterwards.
func withEnv(fn func(ctx *cli.Context, e *env) error) cli.ActionFunc {
	return func(ctx *cli.Context) error {
		e, err := setup(ctx)
		if err != nil {
			return err
		}

		defer e.Close()

		return fn(ctx, e)
	}
}
