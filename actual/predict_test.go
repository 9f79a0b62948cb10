package actual

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/testutil"
	"github.com/ayoisaiah/autotrack/internal/timeutil"
)

var testDay = testutil.Day(2024, time.July, 3)

func sample(
	t *testing.T,
	basename, start, end string,
	details ...models.Detail,
) models.ActivitySample {
	t.Helper()

	return models.ActivitySample{
		ID:       basename + "-" + start,
		Basename: basename,
		Start:    testutil.Clock(t, testDay, start),
		End:      testutil.Clock(t, testDay, end),
		Details:  details,
	}
}

func detail(t *testing.T, title, start, end string) models.Detail {
	t.Helper()

	return models.Detail{
		Title: title,
		Start: testutil.Clock(t, testDay, start),
		End:   testutil.Clock(t, testDay, end),
	}
}

func newPredictor(s *testutil.Store) *Predictor {
	return &Predictor{
		Entries: s,
		Samples: s,
		Rules:   s,
		Tasks:   s,
		Factory: &testutil.Factory{Now: testDay},
	}
}

func predict(t *testing.T, s *testutil.Store, start, end string) *models.ScheduleEntry {
	t.Helper()

	got, err := newPredictor(s).Predict(
		context.Background(),
		"u1",
		testutil.Clock(t, testDay, start),
		testutil.Clock(t, testDay, end),
	)
	if err != nil {
		t.Fatal(err)
	}

	return got
}

var editorRules = []models.MatchRule{
	{
		ID:         "r1",
		Basename:   "code",
		Regex:      `autotrack`,
		ProjectID:  "p1",
		CategoryID: "dev",
		LabelIDs:   []string{"go", "backend"},
		TaskID:     "t1",
	},
	{
		ID:         "r2",
		Basename:   "firefox",
		ProjectID:  "p2",
		CategoryID: "research",
		TaskID:     "t2",
	},
}

func TestPredictNoSamples(t *testing.T) {
	s := testutil.NewStore()
	s.Rules = editorRules

	if got := predict(t, s, "09:00", "10:00"); got != nil {
		t.Fatalf("expected no entry, got %+v", got)
	}
}

func TestPredictExistingActual(t *testing.T) {
	s := testutil.NewStore(testutil.Entry(
		"existing",
		models.KindActual,
		testutil.Clock(t, testDay, "09:30"),
		testutil.Clock(t, testDay, "09:45"),
	))
	s.Rules = editorRules
	s.Samples = []models.ActivitySample{
		sample(t, "code", "09:00", "10:00", detail(t, "main.go - autotrack", "09:00", "10:00")),
	}

	if got := predict(t, s, "09:00", "10:00"); got != nil {
		t.Fatalf("existing actual must suppress inference, got %+v", got)
	}
}

func TestPredictAllDayActual(t *testing.T) {
	allDay := &models.ScheduleEntry{
		ID:     "leave",
		UserID: "u1",
		Kind:   models.KindActual,
		Start:  models.Boundary{Date: testDay.Format(timeutil.DateLayout)},
		End:    models.Boundary{Date: timeutil.NextDay(testDay).Format(timeutil.DateLayout)},
	}

	s := testutil.NewStore(allDay)
	s.Rules = editorRules
	s.Samples = []models.ActivitySample{
		sample(t, "code", "09:00", "10:00", detail(t, "main.go - autotrack", "09:00", "10:00")),
	}

	if got := predict(t, s, "09:00", "10:00"); got != nil {
		t.Fatalf("an all-day actual must suppress inference, got %+v", got)
	}

	// the end date is exclusive
	allDay.Start.Date = testutil.Day(2024, time.July, 2).Format(timeutil.DateLayout)
	allDay.End.Date = testDay.Format(timeutil.DateLayout)

	s = testutil.NewStore(allDay)
	s.Rules = editorRules
	s.Samples = []models.ActivitySample{
		sample(t, "code", "09:00", "10:00", detail(t, "main.go - autotrack", "09:00", "10:00")),
	}

	if got := predict(t, s, "09:00", "10:00"); got == nil {
		t.Fatal("an all-day actual ending before the window must not suppress inference")
	}
}

func TestPredictDeletedActualDoesNotBlock(t *testing.T) {
	existing := testutil.Entry(
		"existing",
		models.KindActual,
		testutil.Clock(t, testDay, "09:30"),
		testutil.Clock(t, testDay, "09:45"),
	)
	deletedAt := testDay
	existing.Deleted = &deletedAt

	s := testutil.NewStore(existing)
	s.Rules = editorRules
	s.Samples = []models.ActivitySample{
		sample(t, "code", "09:00", "10:00", detail(t, "main.go - autotrack", "09:00", "10:00")),
	}

	if got := predict(t, s, "09:00", "10:00"); got == nil {
		t.Fatal("a deleted actual must not suppress inference")
	}
}

func TestPredictNoMatchingRule(t *testing.T) {
	s := testutil.NewStore()
	s.Rules = editorRules
	s.Samples = []models.ActivitySample{
		sample(t, "slack", "09:00", "10:00", detail(t, "general", "09:00", "10:00")),
		sample(t, "code", "09:00", "10:00", detail(t, "notes.md - diary", "09:00", "10:00")),
	}

	if got := predict(t, s, "09:00", "10:00"); got != nil {
		t.Fatalf("expected no entry, got %+v", got)
	}
}

func TestPredictWeightedWinner(t *testing.T) {
	s := testutil.NewStore()
	s.Rules = editorRules
	s.Tasks = []models.Task{
		{ID: "t1", ProjectID: "p1"},
		{ID: "t2", ProjectID: "p2"},
	}
	s.Samples = []models.ActivitySample{
		sample(t, "code", "08:50", "09:40",
			detail(t, "main.go - autotrack", "08:50", "09:15"),
			detail(t, "store.go - autotrack", "09:15", "09:40"),
		),
		sample(t, "firefox", "09:40", "10:10",
			detail(t, "Go docs", "09:40", "10:10"),
		),
	}

	got := predict(t, s, "09:00", "10:00")
	if got == nil {
		t.Fatal("expected an entry")
	}

	want := &models.ScheduleEntry{
		UserID:        "u1",
		Kind:          models.KindActual,
		Summary:       PlaceholderSummary,
		Start:         models.At(testutil.Clock(t, testDay, "09:00")),
		End:           models.At(testutil.Clock(t, testDay, "10:00")),
		ProjectID:     "p1",
		CategoryID:    "dev",
		TaskID:        "t1",
		LabelIDs:      []string{"go"},
		IsProvisional: true,
	}

	opt := cmpopts.IgnoreFields(models.ScheduleEntry{}, "ID", "LastSynced", "Updated")

	if diff := cmp.Diff(want, got, opt); diff != "" {
		t.Fatal(diff)
	}
}

func TestPredictTaskOutsideWinningProject(t *testing.T) {
	s := testutil.NewStore()
	s.Rules = []models.MatchRule{
		{ID: "r1", Basename: "code", ProjectID: "p1"},
		{ID: "r2", Basename: "code", Regex: "ticket", TaskID: "t9"},
	}
	s.Tasks = []models.Task{{ID: "t9", ProjectID: "p2"}}
	s.Samples = []models.ActivitySample{
		sample(t, "code", "09:00", "10:00", detail(t, "ticket 42", "09:00", "10:00")),
	}

	got := predict(t, s, "09:00", "10:00")
	if got == nil {
		t.Fatal("expected an entry")
	}

	if got.ProjectID != "p1" || got.TaskID != "" {
		t.Fatalf("task from another project must not be assigned, got %+v", got)
	}
}

func TestPredictRegexOnlyRuleAndInvalidRegex(t *testing.T) {
	s := testutil.NewStore()
	s.Rules = []models.MatchRule{
		{ID: "bad", Basename: "code", Regex: "(", ProjectID: "broken"},
		{ID: "any-app", Regex: `(?i)standup`, CategoryID: "meetings"},
		{ID: "empty"},
	}
	s.Samples = []models.ActivitySample{
		sample(t, "zoom", "09:00", "09:30", detail(t, "Daily Standup", "09:00", "09:30")),
	}

	got := predict(t, s, "09:00", "10:00")
	if got == nil {
		t.Fatal("expected an entry")
	}

	if got.CategoryID != "meetings" || got.ProjectID != "" || got.TaskID != "" {
		t.Fatalf("unexpected attributes: %+v", got)
	}

	if got.LabelIDs != nil {
		t.Fatalf("expected no label, got %v", got.LabelIDs)
	}
}
