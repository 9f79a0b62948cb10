package app

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/gen2brain/beeep"
	"github.com/kballard/go-shellquote"
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/autotrack/internal/pathutil"
)

// notify shows a desktop notification if notifications are enabled.
func (e *env) notify(title, msg string) {
	if !e.cfg.Notifications.Enabled {
		return
	}

	// pathToIcon will be an empty string if file is not found
	pathToIcon, _ := xdg.SearchDataFile(
		filepath.Join(pathutil.Dir(), "icon.png"),
	)

	if err := beeep.Notify(title, msg, pathToIcon); err != nil {
		pterm.Error.Printfln("unable to display notification: %v", err)
	}
}

// runCmd executes the post-registration command from settings.cmd.
func runCmd(ctx context.Context, command string) error {
	if command == "" {
		return nil
	}

	cmdSlice, err := shellquote.Split(command)
	if err != nil {
		return fmt.Errorf("unable to parse settings.cmd option: %w", err)
	}

	if len(cmdSlice) == 0 {
		return nil
	}

	name := cmdSlice[0]
	args := cmdSlice[1:]

	return exec.CommandContext(ctx, name, args...).Run()
}

// registered notifies the user and runs the hook after a successful
// registration. Hook failures are reported but not returned.
func (e *env) registered(ctx context.Context, title, msg string) {
	e.notify(title, msg)

	if err := runCmd(ctx, e.cfg.Settings.Cmd); err != nil {
		e.logger.ErrorContext(
			ctx,
			"post-registration command failed",
			slog.String("cmd", e.cfg.Settings.Cmd),
			slog.Any("error", err),
		)

		pterm.Warning.Printfln("settings.cmd failed: %v", err)
	}
}
