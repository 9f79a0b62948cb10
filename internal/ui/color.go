// Package ui renders schedule entries and allocation results in the terminal
package ui

import (
	"github.com/pterm/pterm"

	"github.com/ayoisaiah/autotrack/internal/models"
)

// DarkTheme switches to the light color variants.
var DarkTheme bool

func Green(a any) string {
	if DarkTheme {
		return pterm.LightGreen(a)
	}

	return pterm.Green(a)
}

func Yellow(a any) string {
	if DarkTheme {
		return pterm.LightYellow(a)
	}

	return pterm.Yellow(a)
}

func Blue(a any) string {
	if DarkTheme {
		return pterm.LightBlue(a)
	}

	return pterm.Blue(a)
}

func Red(a any) string {
	if DarkTheme {
		return pterm.LightRed(a)
	}

	return pterm.Red(a)
}

// Kind colors an entry kind: plans blue, actuals green, shared yellow.
func Kind(k models.EntryKind) string {
	switch k {
	case models.KindPlan:
		return Blue(k)
	case models.KindActual:
		return Green(k)
	default:
		return Yellow(k)
	}
}
