// Package config loads autotrack settings from the config file, command-line
// flags and the first-run prompt
package config

import (
	"io"
	"os"
	"os/user"
	"time"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

type (
	// Config holds all configuration settings
	Config struct {
		User          UserConfig         `mapstructure:"user"`
		Activity      ActivityConfig     `mapstructure:"activity"`
		Settings      SettingsConfig     `mapstructure:"settings"`
		Server        ServerConfig       `mapstructure:"server"`
		Log           LogConfig          `mapstructure:"log"`
		CLI           CLIConfig          `mapstructure:"-"`
		Work          WorkConfig         `mapstructure:"work"`
		Notifications NotificationConfig `mapstructure:"notifications"`
		Display       DisplayConfig      `mapstructure:"display"`
		ConfigPath    string             `mapstructure:"-"`
	}

	// UserConfig identifies whose schedule is registered
	UserConfig struct {
		ID string `mapstructure:"id"`
	}

	// WorkConfig seeds the stored work preference
	WorkConfig struct {
		Start  string        `mapstructure:"start"`
		Breaks []BreakConfig `mapstructure:"breaks"`
		Hours  float64       `mapstructure:"hours"`
	}

	// BreakConfig is a daily break in HH:MM
	BreakConfig struct {
		Start string `mapstructure:"start" yaml:"start"`
		End   string `mapstructure:"end"   yaml:"end"`
	}

	// ActivityConfig selects where activity samples are read from
	ActivityConfig struct {
		Source     string `mapstructure:"source"`
		SQLitePath string `mapstructure:"sqlite_path"`
	}

	// NotificationConfig holds notification settings
	NotificationConfig struct {
		Enabled bool `mapstructure:"enabled"`
	}

	// SettingsConfig holds miscellaneous settings
	SettingsConfig struct {
		Cmd string `mapstructure:"cmd"`
	}

	// DisplayConfig holds display-related settings
	DisplayConfig struct {
		DarkTheme bool `mapstructure:"dark_theme"`
	}

	// ServerConfig holds settings for the local API
	ServerConfig struct {
		Addr string `mapstructure:"addr"`
	}

	// LogConfig holds log file settings
	LogConfig struct {
		Level      string `mapstructure:"level"`
		MaxSize    int    `mapstructure:"max_size"`
		MaxBackups int    `mapstructure:"max_backups"`
	}

	// CLIConfig holds per-invocation options that only come from flags
	CLIConfig struct {
		Date       time.Time
		ExtraHours map[string]float64
		ProjectID  string
		JSON       bool
	}

	// Option is a function that modifies Config
	Option func(*Config) error
)

const Version = "v0.3.0"

const (
	SourceStore  = "store"
	SourceSQLite = "sqlite"
)

var (
	Stdin  io.Reader = os.Stdin
	Stdout io.Writer = os.Stdout
	Stderr io.Writer = os.Stderr
)

// New creates a new Config and applies options in order.
func New(opts ...Option) (*Config, error) {
	cfg := &Config{}

	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			return nil, errConfigOption.Wrap(err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errConfigValidation.Wrap(err)
	}

	return cfg, nil
}

// Preference converts the work settings into a user preference record.
func (c *Config) Preference() (models.UserPreference, error) {
	start, err := timeutil.ParseTimeOfDay(c.Work.Start)
	if err != nil {
		return models.UserPreference{}, errInvalidWorkStart.Fmt(c.Work.Start)
	}

	pref := models.UserPreference{
		UserID:    c.User.ID,
		WorkStart: start,
		WorkHours: c.Work.Hours,
		Breaks:    make([]models.BreakSlot, 0, len(c.Work.Breaks)),
	}

	for _, b := range c.Work.Breaks {
		slot, err := b.slot()
		if err != nil {
			return models.UserPreference{}, err
		}

		pref.Breaks = append(pref.Breaks, slot)
	}

	return pref, nil
}

func (b BreakConfig) slot() (models.BreakSlot, error) {
	start, err := timeutil.ParseTimeOfDay(b.Start)
	if err != nil {
		return models.BreakSlot{}, errInvalidBreak.Fmt(b.Start, b.End)
	}

	end, err := timeutil.ParseTimeOfDay(b.End)
	if err != nil {
		return models.BreakSlot{}, errInvalidBreak.Fmt(b.Start, b.End)
	}

	return models.BreakSlot{Start: start, End: end}, nil
}

func defaultUserID() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "local"
	}

	return u.Username
}
