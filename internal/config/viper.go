package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/ayoisaiah/autotrack/internal/osutil"
)

// viperKeys defines the mapping between config keys and their Viper counterparts.
const (
	keyUserID               = "user.id"
	keyWorkStart            = "work.start"
	keyWorkHours            = "work.hours"
	keyWorkBreaks           = "work.breaks"
	keyActivitySource       = "activity.source"
	keyActivitySQLitePath   = "activity.sqlite_path"
	keyNotificationsEnabled = "notifications.enabled"
	keySettingsCmd          = "settings.cmd"
	keyDarkTheme            = "display.dark_theme"
	keyServerAddr           = "server.addr"
	keyLogLevel             = "log.level"
	keyLogMaxSize           = "log.max_size"
	keyLogMaxBackups        = "log.max_backups"
)

// WithViperConfig returns an Option that loads configuration from the YAML
// file at configPath, writing one with defaults if it does not exist.
func WithViperConfig(configPath string) Option {
	return func(c *Config) error {
		v := viper.New()

		v.SetConfigFile(configPath)
		v.SetConfigType("yaml")

		setupViper(v, c)

		c.ConfigPath = configPath

		err := v.ReadInConfig()
		if err == nil {
			return loadViperConfig(v, c)
		}

		if !errors.Is(err, fs.ErrNotExist) {
			return errReadConfig.Wrap(err)
		}

		if err := os.MkdirAll(filepath.Dir(configPath), osutil.DirPermission); err != nil {
			return errWriteConfig.Wrap(err)
		}

		if err := v.WriteConfig(); err != nil {
			return errWriteConfig.Wrap(err)
		}

		return loadViperConfig(v, c)
	}
}

// setupViper configures Viper with defaults and prompt values.
func setupViper(v *viper.Viper, c *Config) {
	v.SetDefault(keyUserID, defaultUserID())
	v.SetDefault(keyWorkStart, "09:00")
	v.SetDefault(keyWorkHours, 8)
	v.SetDefault(keyWorkBreaks, []map[string]string{
		{"start": "12:00", "end": "13:00"},
	})
	v.SetDefault(keyActivitySource, SourceStore)
	v.SetDefault(keyActivitySQLitePath, "")
	v.SetDefault(keyNotificationsEnabled, true)
	v.SetDefault(keySettingsCmd, "")
	v.SetDefault(keyDarkTheme, true)
	v.SetDefault(keyServerAddr, "127.0.0.1:4646")
	v.SetDefault(keyLogLevel, "info")
	v.SetDefault(keyLogMaxSize, 10)
	v.SetDefault(keyLogMaxBackups, 3)

	// values answered in the first-run prompt
	if c.Work.Start != "" {
		v.Set(keyWorkStart, c.Work.Start)
	}

	if c.Work.Hours != 0 {
		v.Set(keyWorkHours, c.Work.Hours)
	}

	if c.Work.Breaks != nil {
		breaks := make([]map[string]string, len(c.Work.Breaks))
		for i, b := range c.Work.Breaks {
			breaks[i] = map[string]string{"start": b.Start, "end": b.End}
		}

		v.Set(keyWorkBreaks, breaks)
	}
}

// loadViperConfig loads configuration from Viper into the Config struct.
func loadViperConfig(v *viper.Viper, c *Config) error {
	if err := v.Unmarshal(c); err != nil {
		return errReadConfig.Wrap(err)
	}

	return nil
}
