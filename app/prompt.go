package app

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

// promptExtraHours asks how many hours to allocate to each overrunning
// task. An empty answer skips the task.
func promptExtraHours(
	overruns []models.OverrunTask,
	tasks map[string]models.Task,
) (map[string]float64, error) {
	answers := make([]string, len(overruns))
	fields := make([]huh.Field, 0, len(overruns))

	for i, o := range overruns {
		name := o.TaskID
		if t, ok := tasks[o.TaskID]; ok && t.Name != "" {
			name = t.Name
		}

		fields = append(fields, huh.NewInput().
			Title(fmt.Sprintf("Extra hours for %q", name)).
			Description(fmt.Sprintf(
				"%s already scheduled. Leave empty to skip",
				timeutil.FormatDuration(o.ScheduledTime),
			)).
			Validate(validateHours).
			Value(&answers[i]))
	}

	if err := huh.NewForm(huh.NewGroup(fields...)).Run(); err != nil {
		return nil, err
	}

	return parseAnswers(overruns, answers)
}

func validateHours(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	h, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("%q is not a number", s)
	}

	if h < 0 {
		return fmt.Errorf("hours must not be negative")
	}

	return nil
}

// parseAnswers maps non-empty answers to their overrun task ids.
func parseAnswers(
	overruns []models.OverrunTask,
	answers []string,
) (map[string]float64, error) {
	extra := make(map[string]float64)

	for i, o := range overruns {
		s := strings.TrimSpace(answers[i])
		if s == "" {
			continue
		}

		if err := validateHours(s); err != nil {
			return nil, err
		}

		h, _ := strconv.ParseFloat(s, 64)
		extra[o.TaskID] = h
	}

	return extra, nil
}
