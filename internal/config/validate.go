package config

import (
	"strings"
	"time"

	"github.com/ayoisaiah/autotrack/internal/logging"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

// Validate performs validation checks on the Config struct and its fields.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.User.ID) == "" {
		return errEmptyUserID
	}

	if err := c.validateWork(); err != nil {
		return err
	}

	if err := c.validateActivity(); err != nil {
		return err
	}

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return errInvalidLogLevel.Fmt(c.Log.Level)
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		return errEmptyServerAddr
	}

	return nil
}

// validateWork checks that the configured work day fits inside one day.
func (c *Config) validateWork() error {
	pref, err := c.Preference()
	if err != nil {
		return err
	}

	if pref.WorkHours <= 0 || pref.WorkHours > timeutil.HoursInADay {
		return errInvalidWorkHours.Fmt(timeutil.HoursInADay, pref.WorkHours)
	}

	total := timeutil.HoursToDuration(pref.WorkHours)

	for _, b := range pref.Breaks {
		d := b.End.Offset() - b.Start.Offset()
		if d < 0 {
			d += timeutil.HoursInADay * time.Hour
		}

		total += d
	}

	if total > timeutil.HoursInADay*time.Hour {
		return errDayTooLong.Fmt(timeutil.FormatDuration(total))
	}

	return nil
}

func (c *Config) validateActivity() error {
	switch c.Activity.Source {
	case SourceStore, SourceSQLite:
		return nil
	default:
		return errUnknownSource.Fmt(c.Activity.Source, SourceStore, SourceSQLite)
	}
}
