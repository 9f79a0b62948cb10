// Package report prints user-facing messages
package report

import (
	"github.com/pterm/pterm"
)

func Error(err error) {
	pterm.Error.Println(err)
}

func Success(format string, args ...any) {
	pterm.Success.Printfln(format, args...)
}

func Info(format string, args ...any) {
	pterm.Info.Printfln(format, args...)
}

func Warning(format string, args ...any) {
	pterm.Warning.Printfln(format, args...)
}
