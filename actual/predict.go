// Package actual infers ACTUAL schedule entries from window activity and
// titles them against the day's plan
package actual

import (
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/ayoisaiah/autotrack/internal/apperr"
	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

// PlaceholderSummary is the title given to inferred entries until a
// matching plan supplies a better one.
const PlaceholderSummary = "Untitled activity"

var (
	errListActuals = &apperr.Error{
		Message: "checking existing actuals failed",
	}

	errListSamples = &apperr.Error{
		Message: "fetching activity samples failed",
	}

	errListRules = &apperr.Error{
		Message: "fetching match rules failed",
	}

	errListTasks = &apperr.Error{
		Message: "fetching tasks failed",
	}
)

// EntryReader lists schedule entries.
type EntryReader interface {
	ListEntries(
		ctx context.Context,
		filter models.EntryFilter,
	) ([]*models.ScheduleEntry, error)
}

// SampleReader returns activity samples overlapping [start, end).
type SampleReader interface {
	ListSamples(
		ctx context.Context,
		start, end time.Time,
	) ([]models.ActivitySample, error)
}

// RuleReader lists every match rule.
type RuleReader interface {
	ListRules(ctx context.Context) ([]models.MatchRule, error)
}

// TaskReader lists every task.
type TaskReader interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
}

// EntryFactory creates entries with a fresh identity.
type EntryFactory interface {
	New(partial models.ScheduleEntry) *models.ScheduleEntry
}

// Predictor infers at most one ACTUAL entry for a window of time.
type Predictor struct {
	Entries EntryReader
	Samples SampleReader
	Rules   RuleReader
	Tasks   TaskReader
	Factory EntryFactory
	Logger  *slog.Logger
}

func (p *Predictor) logger() *slog.Logger {
	if p.Logger != nil {
		return p.Logger
	}

	return slog.Default()
}

type compiledRule struct {
	re *regexp.Regexp
	models.MatchRule
}

func (r *compiledRule) matches(basename, title string) bool {
	if r.Basename == "" && r.re == nil {
		return false
	}

	if r.Basename != "" && r.Basename != basename {
		return false
	}

	return r.re == nil || r.re.MatchString(title)
}

func (p *Predictor) compile(
	ctx context.Context,
	rules []models.MatchRule,
) []compiledRule {
	compiled := make([]compiledRule, 0, len(rules))

	for _, r := range rules {
		c := compiledRule{MatchRule: r}

		if r.Regex != "" {
			re, err := regexp.Compile(r.Regex)
			if err != nil {
				p.logger().WarnContext(
					ctx,
					"skipping match rule with invalid regex",
					slog.String("rule_id", r.ID),
					slog.String("regex", r.Regex),
					slog.Any("error", err),
				)

				continue
			}

			c.re = re
		}

		compiled = append(compiled, c)
	}

	return compiled
}

// Predict returns a provisional ACTUAL entry for [start, end), or nil when
// an ACTUAL already covers part of the window, when there is no activity, or
// when no rule matches the activity. An all-day ACTUAL on the window's day
// counts as covering it.
func (p *Predictor) Predict(
	ctx context.Context,
	userID string,
	start, end time.Time,
) (*models.ScheduleEntry, error) {
	existing, err := p.Entries.ListEntries(ctx, models.EntryFilter{
		UserID: userID,
		Kinds:  []models.EntryKind{models.KindActual},
		Start:  start,
		End:    end,
		AllDay: true,
	})
	if err != nil {
		return nil, errListActuals.Wrap(err)
	}

	if len(existing) > 0 {
		return nil, nil
	}

	samples, err := p.Samples.ListSamples(ctx, start, end)
	if err != nil {
		return nil, errListSamples.Wrap(err)
	}

	if len(samples) == 0 {
		return nil, nil
	}

	rules, err := p.Rules.ListRules(ctx)
	if err != nil {
		return nil, errListRules.Wrap(err)
	}

	tasks, err := p.Tasks.ListTasks(ctx)
	if err != nil {
		return nil, errListTasks.Wrap(err)
	}

	compiled := p.compile(ctx, rules)

	var projects, categories, labels, taskUsage Usage

	matched := false

	for i := range samples {
		sample := &samples[i]

		for _, d := range sample.Details {
			overlap := timeutil.Overlap(d.Start, d.End, start, end)
			if overlap <= 0 {
				continue
			}

			for j := range compiled {
				rule := &compiled[j]
				if !rule.matches(sample.Basename, d.Title) {
					continue
				}

				matched = true

				if rule.ProjectID != "" {
					projects.Add(rule.ProjectID, overlap)
				}

				if rule.CategoryID != "" {
					categories.Add(rule.CategoryID, overlap)
				}

				for _, l := range rule.LabelIDs {
					labels.Add(l, overlap)
				}

				if rule.TaskID != "" {
					taskUsage.Add(rule.TaskID, overlap)
				}
			}
		}
	}

	if !matched {
		return nil, nil
	}

	partial := models.ScheduleEntry{
		UserID:        userID,
		Kind:          models.KindActual,
		Summary:       PlaceholderSummary,
		Start:         models.At(start),
		End:           models.At(end),
		IsProvisional: true,
	}

	partial.ProjectID, _ = projects.Winner()
	partial.CategoryID, _ = categories.Winner()

	if label, ok := labels.Winner(); ok {
		partial.LabelIDs = []string{label}
	}

	if partial.ProjectID != "" {
		inProject := make(map[string]bool)

		for _, t := range tasks {
			if t.ProjectID == partial.ProjectID {
				inProject[t.ID] = true
			}
		}

		partial.TaskID, _ = taskUsage.WinnerAmong(func(id string) bool {
			return inProject[id]
		})
	}

	p.logger().DebugContext(
		ctx,
		"predicted actual",
		slog.Time("start", start),
		slog.Int("samples", len(samples)),
		slog.String("project_id", partial.ProjectID),
		slog.String("task_id", partial.TaskID),
	)

	return p.Factory.New(partial), nil
}
