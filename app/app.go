// Package app defines the autotrack command-line interface
package app

import (
	"github.com/pterm/pterm"
	"github.com/urfave/cli/v2"

	"github.com/ayoisaiah/autotrack/internal/config"
)

const (
	envNoColor          = "NO_COLOR"
	envAutotrackNoColor = "AUTOTRACK_NO_COLOR"
)

// disableStyling disables all styling provided by pterm.
func disableStyling() {
	pterm.DisableColor()
	pterm.DisableStyling()
	pterm.Debug.Prefix.Text = ""
	pterm.Info.Prefix.Text = ""
	pterm.Success.Prefix.Text = ""
	pterm.Warning.Prefix.Text = ""
	pterm.Error.Prefix.Text = ""
	pterm.Fatal.Prefix.Text = ""
}

func dayCommand(name, usage string, action func(*cli.Context, *env) error, flags ...cli.Flag) *cli.Command {
	return &cli.Command{
		Name:   name,
		Usage:  usage,
		Flags:  dayFlags(flags...),
		Action: withEnv(action),
	}
}

// Get retrieves the autotrack app instance.
func Get() *cli.App {
	return &cli.App{
		Name: "autotrack",
		Usage: `
		autotrack registers your day automatically. It infers what you actually
		worked on from window activity, and fills your free time with a plan
		built from your outstanding tasks.`,
		UsageText:            "[COMMAND] [OPTIONS]",
		Version:              config.Version,
		EnableBashCompletion: true,
		Commands: []*cli.Command{
			{
				Name:  "actual",
				Usage: "Infer, confirm or discard the actuals of a day",
				Subcommands: []*cli.Command{
					dayCommand("generate", "Register provisional actuals from window activity", generateActualsAction, jsonFlag),
					dayCommand("confirm", "Confirm the provisional actuals", confirmActualsAction),
					dayCommand("discard", "Discard the provisional actuals", discardActualsAction),
				},
			},
			{
				Name:  "plan",
				Usage: "Allocate, confirm or discard the plan of a day",
				Subcommands: []*cli.Command{
					dayCommand(
						"allocate",
						"Fill free time with provisional plan entries for outstanding tasks",
						allocatePlanAction,
						projectFlag,
						extraFlag,
						interactiveFlag,
						jsonFlag,
					),
					dayCommand("confirm", "Confirm the provisional plan", confirmPlanAction),
					dayCommand("discard", "Discard the provisional plan", discardPlanAction),
				},
			},
			dayCommand("slots", "Print the free time of a day", slotsAction, jsonFlag),
			dayCommand("entries", "List the schedule entries of a day", entriesAction, jsonFlag),
			dayCommand("summary", "Compare planned and actual time per project", summaryAction, jsonFlag),
			{
				Name:  "rule",
				Usage: "Manage the rules that map window activity to projects and tasks",
				Subcommands: []*cli.Command{
					{
						Name:   "import",
						Usage:  "Replace all rules with those in a YAML file",
						Flags:  []cli.Flag{fileFlag},
						Action: withEnv(importRulesAction),
					},
					{
						Name:   "list",
						Usage:  "List the stored rules",
						Flags:  []cli.Flag{jsonFlag},
						Action: withEnv(listRulesAction),
					},
				},
			},
			{
				Name:  "task",
				Usage: "Manage the tasks available for plan allocation",
				Subcommands: []*cli.Command{
					{
						Name:   "import",
						Usage:  "Replace all tasks with those in a YAML file",
						Flags:  []cli.Flag{fileFlag},
						Action: withEnv(importTasksAction),
					},
					{
						Name:   "list",
						Usage:  "List the stored tasks",
						Flags:  []cli.Flag{jsonFlag},
						Action: withEnv(listTasksAction),
					},
				},
			},
			{
				Name:  "activity",
				Usage: "Manage recorded window activity",
				Subcommands: []*cli.Command{
					{
						Name:   "import",
						Usage:  "Record activity samples from a YAML file into the configured source",
						Flags:  []cli.Flag{fileFlag},
						Action: withEnv(importSamplesAction),
					},
				},
			},
			{
				Name:  "pref",
				Usage: "Show or reset the stored work preference",
				Subcommands: []*cli.Command{
					{
						Name:   "show",
						Usage:  "Print the stored work preference",
						Flags:  []cli.Flag{userFlag, jsonFlag},
						Action: withEnv(showPreferenceAction),
					},
					{
						Name:   "init",
						Usage:  "Overwrite the stored work preference with the config file settings",
						Flags:  []cli.Flag{userFlag},
						Action: withEnv(initPreferenceAction),
					},
				},
			},
			{
				Name:   "examples",
				Usage:  "Copy example rule and task files to the data directory",
				Action: examplesAction,
			},
			{
				Name:   "serve",
				Usage:  "Serve the registration operations over a local JSON API",
				Flags:  []cli.Flag{userFlag, addrFlag},
				Action: withEnv(serveAction),
			},
			{
				Name:   "edit-config",
				Usage:  "Edit the configuration file",
				Action: editConfigAction,
			},
		},
		Flags: []cli.Flag{
			noColorFlag,
			disableNotificationFlag,
			cmdFlag,
		},
		Before: beforeAction,
	}
}
