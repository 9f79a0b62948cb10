package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

// CLIOptions represents command-line configuration options.
type CLIOptions struct {
	Now           time.Time
	Date          string
	ProjectID     string
	UserID        string
	Cmd           string
	Extra         []string
	DisableNotify bool
	JSON          bool
}

// WithCLIConfig returns an Option that loads configuration from CLI flags.
func WithCLIConfig(ctx *cli.Context) Option {
	return func(c *Config) error {
		opts := CLIOptions{
			Now:           time.Now(),
			Date:          ctx.String("date"),
			ProjectID:     ctx.String("project"),
			UserID:        ctx.String("user"),
			Cmd:           ctx.String("cmd"),
			Extra:         ctx.StringSlice("extra"),
			DisableNotify: ctx.Bool("disable-notification"),
			JSON:          ctx.Bool("json"),
		}

		return applyCLIOptions(c, opts)
	}
}

// applyCLIOptions applies CLI options to the config.
func applyCLIOptions(c *Config, opts CLIOptions) error {
	date, err := timeutil.FromStr(opts.Date, opts.Now)
	if err != nil {
		return errInvalidDate.Fmt(opts.Date).Wrap(err)
	}

	c.CLI.Date = date

	extra, err := parseExtraHours(opts.Extra)
	if err != nil {
		return err
	}

	c.CLI.ExtraHours = extra
	c.CLI.ProjectID = opts.ProjectID
	c.CLI.JSON = opts.JSON

	if opts.UserID != "" {
		c.User.ID = opts.UserID
	}

	if opts.Cmd != "" {
		c.Settings.Cmd = opts.Cmd
	}

	if opts.DisableNotify {
		c.Notifications.Enabled = false
	}

	return nil
}

// parseExtraHours parses TASK=HOURS pairs. Values may repeat a task, in
// which case the last one wins. Negative hours are accepted here and
// rejected by the allocator.
func parseExtraHours(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	extra := make(map[string]float64, len(pairs))

	for _, pair := range pairs {
		for _, p := range strings.Split(pair, ",") {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}

			task, hours, ok := strings.Cut(p, "=")
			if !ok || strings.TrimSpace(task) == "" {
				return nil, errInvalidExtraHours.Fmt(p)
			}

			h, err := strconv.ParseFloat(strings.TrimSpace(hours), 64)
			if err != nil {
				return nil, errInvalidExtraHours.Fmt(p).Wrap(err)
			}

			extra[strings.TrimSpace(task)] = h
		}
	}

	return extra, nil
}
