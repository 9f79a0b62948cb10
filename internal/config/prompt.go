package config

import (
	"errors"
	"os"
	"strconv"

	"github.com/charmbracelet/huh"
	"github.com/pterm/pterm"
	"github.com/pterm/pterm/putils"
)

const asciiLogo = `
 █████╗ ██╗   ██╗████████╗ ██████╗ ████████╗██████╗  █████╗  ██████╗██╗  ██╗
██╔══██╗██║   ██║╚══██╔══╝██╔═══██╗╚══██╔══╝██╔══██╗██╔══██╗██╔════╝██║ ██╔╝
███████║██║   ██║   ██║   ██║   ██║   ██║   ██████╔╝███████║██║     █████╔╝
██╔══██║██║   ██║   ██║   ██║   ██║   ██║   ██╔══██╗██╔══██║██║     ██╔═██╗
██║  ██║╚██████╔╝   ██║   ╚██████╔╝   ██║   ██║  ██║██║  ██║╚██████╗██║  ██╗
╚═╝  ╚═╝ ╚═════╝    ╚═╝    ╚═════╝    ╚═╝   ╚═╝  ╚═╝╚═╝  ╚═╝ ╚═════╝╚═╝  ╚═╝`

// PromptOptions holds the user's responses to the configuration prompts.
type PromptOptions struct {
	WorkStart  string
	BreakStart string
	BreakEnd   string
	WorkHours  float64
}

// WithPromptConfig returns an Option that asks for the work-day settings
// when no config file exists yet. It is skipped when stdin is not a
// terminal.
func WithPromptConfig(configPath string) Option {
	return func(c *Config) error {
		_, err := os.Stat(configPath)
		if err == nil || !errors.Is(err, os.ErrNotExist) {
			return err
		}

		if !isTerminal() {
			return nil
		}

		opts, err := promptUser()
		if err != nil {
			return errPrompt.Wrap(err)
		}

		return applyPromptOptions(c, opts)
	}
}

func isTerminal() bool {
	f, ok := Stdin.(*os.File)
	if !ok {
		return false
	}

	info, err := f.Stat()
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeCharDevice != 0
}

// promptUser handles the interactive configuration process.
func promptUser() (PromptOptions, error) {
	var (
		opts  PromptOptions
		hours string
		lunch string
	)

	pterm.Println(asciiLogo)

	_ = putils.BulletListFromString(`Follow the prompts below to configure autotrack for the first time.
Select your preferred value, or press ENTER to accept the defaults.
Edit the config file with 'autotrack edit-config' to change any settings.`, " ").
		Render()

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("When does your work day start?").
				Options(
					huh.NewOption("07:00", "07:00"),
					huh.NewOption("08:00", "08:00"),
					huh.NewOption("09:00", "09:00").Selected(true),
					huh.NewOption("10:00", "10:00"),
				).
				Value(&opts.WorkStart),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("How many hours do you work per day?").
				Options(
					huh.NewOption("6 hours", "6"),
					huh.NewOption("7 hours", "7"),
					huh.NewOption("8 hours", "8").Selected(true),
					huh.NewOption("9 hours", "9"),
				).
				Value(&hours),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Lunch break").
				Options(
					huh.NewOption("12:00 - 13:00", "12:00-13:00").Selected(true),
					huh.NewOption("12:30 - 13:30", "12:30-13:30"),
					huh.NewOption("13:00 - 14:00", "13:00-14:00"),
					huh.NewOption("No break", ""),
				).
				Value(&lunch),
		),
	)

	if err := form.Run(); err != nil {
		return opts, err
	}

	h, err := strconv.ParseFloat(hours, 64)
	if err != nil {
		return opts, err
	}

	opts.WorkHours = h

	if len(lunch) == len("12:00-13:00") {
		opts.BreakStart, opts.BreakEnd = lunch[:5], lunch[6:]
	}

	return opts, nil
}

// applyPromptOptions applies the user's prompt responses to the configuration.
func applyPromptOptions(c *Config, opts PromptOptions) error {
	c.Work.Start = opts.WorkStart
	c.Work.Hours = opts.WorkHours
	c.Work.Breaks = []BreakConfig{}

	if opts.BreakStart != "" {
		c.Work.Breaks = append(c.Work.Breaks, BreakConfig{
			Start: opts.BreakStart,
			End:   opts.BreakEnd,
		})
	}

	return nil
}
