// Package stats reconciles planned time against actual time for a day
package stats

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/pterm/pterm"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
	"github.com/ayoisaiah/autotrack/internal/ui"
)

const (
	barChartChar = "▇"
	// NoProject labels time not attributed to any project.
	NoProject = "(none)"
)

// Row compares planned and actual time for one project.
type Row struct {
	ProjectID string        `json:"project_id"`
	Planned   time.Duration `json:"planned"`
	Actual    time.Duration `json:"actual"`
	Delta     time.Duration `json:"delta"`
}

// Summary is the per-project reconciliation of a day.
type Summary struct {
	Rows  []Row `json:"rows"`
	Total Row   `json:"total"`
}

// Reconcile sums the durations of plans and actuals per project. Deleted
// entries and entries without instants are ignored. SHARED entries count as
// planned time. Rows are sorted by project id and Delta is Actual - Planned.
func Reconcile(plans, actuals []*models.ScheduleEntry) Summary {
	byProject := make(map[string]*Row)

	add := func(e *models.ScheduleEntry, actual bool) {
		if e.IsDeleted() || !e.HasInstants() {
			return
		}

		id := e.ProjectID
		if id == "" {
			id = NoProject
		}

		row, ok := byProject[id]
		if !ok {
			row = &Row{ProjectID: id}
			byProject[id] = row
		}

		if actual {
			row.Actual += e.Duration()
		} else {
			row.Planned += e.Duration()
		}
	}

	for _, e := range plans {
		add(e, false)
	}

	for _, e := range actuals {
		add(e, true)
	}

	var s Summary

	for _, row := range byProject {
		row.Delta = row.Actual - row.Planned
		s.Rows = append(s.Rows, *row)

		s.Total.Planned += row.Planned
		s.Total.Actual += row.Actual
	}

	slices.SortFunc(s.Rows, func(a, b Row) int {
		return cmp.Compare(a.ProjectID, b.ProjectID)
	})

	s.Total.ProjectID = "Total"
	s.Total.Delta = s.Total.Actual - s.Total.Planned

	return s
}

func delta(d time.Duration) string {
	switch {
	case d > 0:
		return ui.Green("+" + timeutil.FormatDuration(d))
	case d < 0:
		return ui.Red(timeutil.FormatDuration(d))
	default:
		return timeutil.FormatDuration(d)
	}
}

// TableData renders the summary as table rows with a header and a total.
func (s Summary) TableData() [][]string {
	data := [][]string{{"Project", "Planned", "Actual", "Delta"}}

	for _, r := range append(slices.Clone(s.Rows), s.Total) {
		data = append(data, []string{
			r.ProjectID,
			timeutil.FormatDuration(r.Planned),
			timeutil.FormatDuration(r.Actual),
			delta(r.Delta),
		})
	}

	return data
}

// BarChart renders actual minutes per project.
func (s Summary) BarChart() string {
	if len(s.Rows) == 0 {
		return ""
	}

	bars := make(pterm.Bars, 0, len(s.Rows))

	for _, r := range s.Rows {
		bars = append(bars, pterm.Bar{
			Value: int(math.Round(r.Actual.Minutes())),
			Label: r.ProjectID,
		})
	}

	chart, err := pterm.DefaultBarChart.WithHorizontalBarCharacter(barChartChar).
		WithHorizontal().
		WithShowValue().
		WithBars(bars).
		Srender()
	if err != nil {
		pterm.Error.Println(err)
		return ""
	}

	return fmt.Sprintf("%s\n%s", ui.Blue("Actual time per project (minutes)"), chart)
}
