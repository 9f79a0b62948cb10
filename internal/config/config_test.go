package config

import (
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

func validConfig() *Config {
	return &Config{
		User:     UserConfig{ID: "u1"},
		Activity: ActivityConfig{Source: SourceStore},
		Server:   ServerConfig{Addr: "127.0.0.1:4646"},
		Log:      LogConfig{Level: "info"},
		Work: WorkConfig{
			Start:  "09:00",
			Hours:  8,
			Breaks: []BreakConfig{{Start: "12:00", End: "13:00"}},
		},
	}
}

func TestParseExtraHours(t *testing.T) {
	testCases := []struct {
		Name     string
		Input    []string
		Expected map[string]float64
		Err      bool
	}{
		{Name: "no values", Input: nil, Expected: nil},
		{
			Name:     "repeated flags",
			Input:    []string{"t1=1.5", "t2=0"},
			Expected: map[string]float64{"t1": 1.5, "t2": 0},
		},
		{
			Name:     "comma separated with last value winning",
			Input:    []string{"t1=1, t2=2,t1=3"},
			Expected: map[string]float64{"t1": 3, "t2": 2},
		},
		{
			Name:     "negative is left for the allocator",
			Input:    []string{"t1=-1"},
			Expected: map[string]float64{"t1": -1},
		},
		{Name: "missing separator", Input: []string{"t1"}, Err: true},
		{Name: "missing task", Input: []string{"=2"}, Err: true},
		{Name: "not a number", Input: []string{"t1=two"}, Err: true},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			got, err := parseExtraHours(tc.Input)
			if tc.Err {
				if !errors.Is(err, errInvalidExtraHours) {
					t.Fatalf("expected errInvalidExtraHours, got %v", err)
				}

				return
			}

			if err != nil {
				t.Fatal(err)
			}

			if diff := cmp.Diff(tc.Expected, got); diff != "" {
				t.Errorf("extra hours mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestWithCLIConfig(t *testing.T) {
	f := flag.NewFlagSet("plan", flag.ContinueOnError)
	_ = f.String("date", "", "")
	_ = f.String("project", "", "")
	_ = f.String("user", "", "")
	_ = f.String("cmd", "", "")
	_ = f.Bool("json", false, "")
	_ = f.Bool("disable-notification", false, "")

	extra := cli.NewStringSlice()
	f.Var(extra, "extra", "")

	args := []string{
		"--date", "2024-07-03",
		"--project", "p1",
		"--user", "alice",
		"--extra", "t1=2",
		"--json",
		"--disable-notification",
	}

	if err := f.Parse(args); err != nil {
		t.Fatal(err)
	}

	ctx := cli.NewContext(&cli.App{}, f, nil)

	c := validConfig()
	c.Notifications.Enabled = true

	if err := WithCLIConfig(ctx)(c); err != nil {
		t.Fatal(err)
	}

	if got := c.CLI.Date.Format(timeutil.DateLayout); got != "2024-07-03" {
		t.Errorf("expected date 2024-07-03, got %s", got)
	}

	if c.CLI.ProjectID != "p1" || c.User.ID != "alice" || !c.CLI.JSON {
		t.Errorf("flags not applied: %+v", c.CLI)
	}

	if c.Notifications.Enabled {
		t.Error("expected notifications to be disabled")
	}

	if diff := cmp.Diff(map[string]float64{"t1": 2}, c.CLI.ExtraHours); diff != "" {
		t.Errorf("extra hours mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyCLIOptionsDefaultsToToday(t *testing.T) {
	now := time.Date(2024, time.July, 3, 15, 4, 5, 0, time.UTC)

	c := validConfig()
	if err := applyCLIOptions(c, CLIOptions{Now: now}); err != nil {
		t.Fatal(err)
	}

	if !c.CLI.Date.Equal(timeutil.RoundToStart(now)) {
		t.Errorf("expected start of today, got %v", c.CLI.Date)
	}
}

func TestValidate(t *testing.T) {
	testCases := []struct {
		Name   string
		Modify func(c *Config)
		Err    error
	}{
		{Name: "valid", Modify: func(*Config) {}},
		{
			Name:   "empty user",
			Modify: func(c *Config) { c.User.ID = " " },
			Err:    errEmptyUserID,
		},
		{
			Name:   "bad work start",
			Modify: func(c *Config) { c.Work.Start = "9am" },
			Err:    errInvalidWorkStart,
		},
		{
			Name:   "zero hours",
			Modify: func(c *Config) { c.Work.Hours = 0 },
			Err:    errInvalidWorkHours,
		},
		{
			Name: "bad break",
			Modify: func(c *Config) {
				c.Work.Breaks = []BreakConfig{{Start: "12", End: "13:00"}}
			},
			Err: errInvalidBreak,
		},
		{
			Name: "day too long",
			Modify: func(c *Config) {
				c.Work.Hours = 23
				c.Work.Breaks = []BreakConfig{{Start: "22:00", End: "00:00"}}
			},
			Err: errDayTooLong,
		},
		{
			Name:   "unknown source",
			Modify: func(c *Config) { c.Activity.Source = "aw" },
			Err:    errUnknownSource,
		},
		{
			Name:   "bad log level",
			Modify: func(c *Config) { c.Log.Level = "loud" },
			Err:    errInvalidLogLevel,
		},
		{
			Name:   "empty server address",
			Modify: func(c *Config) { c.Server.Addr = "" },
			Err:    errEmptyServerAddr,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.Name, func(t *testing.T) {
			c := validConfig()
			tc.Modify(c)

			err := c.Validate()
			if tc.Err == nil {
				if err != nil {
					t.Fatalf("expected no error, got %v", err)
				}

				return
			}

			if !errors.Is(err, tc.Err) {
				t.Fatalf("expected %v, got %v", tc.Err, err)
			}
		})
	}
}

func TestPreference(t *testing.T) {
	pref, err := validConfig().Preference()
	if err != nil {
		t.Fatal(err)
	}

	expected := models.UserPreference{
		UserID:    "u1",
		WorkStart: timeutil.MustTimeOfDay("09:00"),
		WorkHours: 8,
		Breaks: []models.BreakSlot{{
			Start: timeutil.MustTimeOfDay("12:00"),
			End:   timeutil.MustTimeOfDay("13:00"),
		}},
	}

	if diff := cmp.Diff(expected, pref); diff != "" {
		t.Errorf("preference mismatch (-want +got):\n%s", diff)
	}
}

func TestWithViperConfigWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autotrack", "config.yml")

	c := &Config{}
	c.Work.Start = "08:00"

	cfg, err := New(WithViperConfig(path))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to be written: %v", err)
	}

	if cfg.Work.Start != "09:00" || cfg.Work.Hours != 8 {
		t.Errorf("unexpected work defaults: %+v", cfg.Work)
	}

	if len(cfg.Work.Breaks) != 1 || cfg.Work.Breaks[0].Start != "12:00" {
		t.Errorf("unexpected default breaks: %+v", cfg.Work.Breaks)
	}

	if cfg.Activity.Source != SourceStore || cfg.ConfigPath != path {
		t.Errorf("unexpected config: %+v", cfg)
	}

	// prompt answers take precedence over defaults on first run
	path = filepath.Join(t.TempDir(), "config.yml")
	if err := WithViperConfig(path)(c); err != nil {
		t.Fatal(err)
	}

	if c.Work.Start != "08:00" {
		t.Errorf("expected prompt value 08:00, got %s", c.Work.Start)
	}
}

func TestWithViperConfigReadsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")

	data := []byte(`user:
  id: bob
work:
  start: "10:00"
  hours: 6
  breaks: []
activity:
  source: sqlite
  sqlite_path: /tmp/activity.db
`)

	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := New(WithViperConfig(path))
	if err != nil {
		t.Fatal(err)
	}

	if cfg.User.ID != "bob" || cfg.Work.Start != "10:00" || cfg.Work.Hours != 6 {
		t.Errorf("file values not loaded: %+v", cfg)
	}

	if len(cfg.Work.Breaks) != 0 {
		t.Errorf("expected no breaks, got %+v", cfg.Work.Breaks)
	}

	if cfg.Activity.Source != SourceSQLite || cfg.Activity.SQLitePath != "/tmp/activity.db" {
		t.Errorf("activity settings not loaded: %+v", cfg.Activity)
	}

	// defaults fill keys absent from the file
	if cfg.Server.Addr == "" || cfg.Log.Level != "info" {
		t.Errorf("defaults not applied: %+v %+v", cfg.Server, cfg.Log)
	}
}

func TestWithPromptConfigSkipsWithoutTerminal(t *testing.T) {
	old := Stdin
	Stdin = nil

	t.Cleanup(func() { Stdin = old })

	c := &Config{}

	if err := WithPromptConfig(filepath.Join(t.TempDir(), "missing.yml"))(c); err != nil {
		t.Fatal(err)
	}

	if c.Work.Start != "" {
		t.Errorf("expected no prompt values, got %+v", c.Work)
	}
}
