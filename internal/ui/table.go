package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

const provisionalMark = "*"

func PrintTable(data [][]string, writer io.Writer) {
	table := pterm.DefaultTable
	table.Boxed = true

	str, err := table.WithHasHeader().WithData(data).Srender()
	if err != nil {
		pterm.Error.Printfln("Failed to output table: %s", err.Error())
		return
	}

	fmt.Fprintln(writer, str)
}

func clock(b models.Boundary) string {
	t, ok := b.Instant()
	if !ok {
		return b.Date
	}

	return t.Format(timeutil.ClockLayout)
}

// EntryRows builds table rows for entries, header first. Provisional entries
// are marked with an asterisk after their kind.
func EntryRows(entries []*models.ScheduleEntry) [][]string {
	data := [][]string{
		{"#", "Kind", "Start", "End", "Duration", "Summary", "Project", "Task", "Labels"},
	}

	for i, e := range entries {
		kind := Kind(e.Kind)
		if e.IsProvisional {
			kind += provisionalMark
		}

		data = append(data, []string{
			strconv.Itoa(i + 1),
			kind,
			clock(e.Start),
			clock(e.End),
			timeutil.FormatDuration(e.Duration()),
			e.Summary,
			e.ProjectID,
			e.TaskID,
			strings.Join(e.LabelIDs, ","),
		})
	}

	return data
}

// PrintEntries writes entries as a boxed table.
func PrintEntries(w io.Writer, entries []*models.ScheduleEntry) {
	if len(entries) == 0 {
		pterm.Info.Println("no entries found")
		return
	}

	PrintTable(EntryRows(entries), w)
}

// SlotRows builds table rows for free slots.
func SlotRows(slots []models.Slot) [][]string {
	data := [][]string{{"#", "Start", "End", "Duration"}}

	for i, s := range slots {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			s.Start.Format(timeutil.ClockLayout),
			s.End.Format(timeutil.ClockLayout),
			timeutil.FormatDuration(models.SlotDuration(s)),
		})
	}

	return data
}

// OverrunRows builds table rows for tasks whose scheduled time has reached
// their estimate.
func OverrunRows(overruns []models.OverrunTask, tasks map[string]models.Task) [][]string {
	data := [][]string{{"Task", "Name", "Scheduled", "Estimate"}}

	for _, o := range overruns {
		name, estimate := "", "-"

		if t, ok := tasks[o.TaskID]; ok {
			name = t.Name
			if t.EstimatedHours != nil {
				estimate = timeutil.FormatDuration(timeutil.HoursToDuration(*t.EstimatedHours))
			}
		}

		data = append(data, []string{
			o.TaskID,
			name,
			Red(timeutil.FormatDuration(o.ScheduledTime)),
			estimate,
		})
	}

	return data
}
