package app

import "github.com/urfave/cli/v2"

var (
	dateFlag = &cli.StringFlag{
		Name:  "date",
		Usage: "Day to register, as YYYY-MM-DD or in natural language (e.g. 'yesterday'). Defaults to today",
	}

	projectFlag = &cli.StringFlag{
		Name:    "project",
		Aliases: []string{"p"},
		Usage:   "Only allocate tasks belonging to this project",
	}

	extraFlag = &cli.StringSliceFlag{
		Name:    "extra",
		Aliases: []string{"e"},
		Usage:   "Allocate exactly HOURS for TASK, bypassing its estimate (TASK=HOURS). Repeatable",
	}

	interactiveFlag = &cli.BoolFlag{
		Name:    "interactive",
		Aliases: []string{"i"},
		Usage:   "Prompt for extra hours when tasks have reached their estimate",
	}

	userFlag = &cli.StringFlag{
		Name:    "user",
		Aliases: []string{"u"},
		Usage:   "Register entries for this user instead of user.id from the config file",
	}

	jsonFlag = &cli.BoolFlag{
		Name:  "json",
		Usage: "Print output as JSON",
	}

	fileFlag = &cli.StringFlag{
		Name:     "file",
		Aliases:  []string{"f"},
		Usage:    "Path to a YAML file",
		Required: true,
	}

	noColorFlag = &cli.BoolFlag{
		Name:  "no-color",
		Usage: "Disable coloured output",
	}

	disableNotificationFlag = &cli.BoolFlag{
		Name:    "disable-notification",
		Aliases: []string{"d"},
		Usage:   "Disable the system notification that appears after a registration",
	}

	cmdFlag = &cli.StringFlag{
		Name:  "cmd",
		Usage: "Execute an arbitrary command after a successful registration",
	}

	addrFlag = &cli.StringFlag{
		Name:  "addr",
		Usage: "Address for the local API to listen on. Defaults to server.addr",
	}
)

// dayFlags are accepted by every command that works on a single day.
func dayFlags(extra ...cli.Flag) []cli.Flag {
	return append([]cli.Flag{dateFlag, userFlag}, extra...)
}
