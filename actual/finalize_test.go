package actual

import (
	"context"
	"errors"
	"testing"

	"github.com/ayoisaiah/autotrack/internal/models"
	"github.com/ayoisaiah/autotrack/internal/testutil"
)

func plan(t *testing.T, id, summary, start, end string) *models.ScheduleEntry {
	t.Helper()

	e := testutil.Entry(
		id,
		models.KindPlan,
		testutil.Clock(t, testDay, start),
		testutil.Clock(t, testDay, end),
	)
	e.Summary = summary

	return e
}

func inferred(t *testing.T, id, start, end string) *models.ScheduleEntry {
	t.Helper()

	e := testutil.Entry(
		id,
		models.KindActual,
		testutil.Clock(t, testDay, start),
		testutil.Clock(t, testDay, end),
	)
	e.Summary = PlaceholderSummary
	e.IsProvisional = true

	return e
}

func TestFinalizeTitles(t *testing.T) {
	review := plan(t, "p-review", "Code review", "09:00", "12:00")
	review.ProjectID = "p1"
	review.LabelIDs = []string{"go", "backend"}

	otherProject := plan(t, "p-other", "Marketing sync", "13:00", "15:00")
	otherProject.ProjectID = "p2"

	short := plan(t, "p-short", "Quick call", "16:00", "16:10")
	long := plan(t, "p-long", "Deep work", "16:10", "17:00")

	s := testutil.NewStore(review, otherProject, short, long)

	contained := inferred(t, "a1", "10:00", "11:00")
	contained.ProjectID = "p1"
	contained.LabelIDs = []string{"go"}

	mismatched := inferred(t, "a2", "13:00", "14:00")
	mismatched.ProjectID = "p1"

	unplanned := inferred(t, "a3", "18:00", "19:00")

	split := inferred(t, "a4", "16:00", "17:00")

	f := &Finalizer{Entries: s}

	got, err := f.Finalize(
		context.Background(),
		"u1",
		[]*models.ScheduleEntry{contained, mismatched, unplanned, split},
	)
	if err != nil {
		t.Fatal(err)
	}

	want := map[string]string{
		"a1": "Code review",
		"a2": PlaceholderSummary,
		"a3": PlaceholderSummary,
		"a4": "Deep work",
	}

	for _, e := range got {
		if e.Summary != want[e.ID] {
			t.Errorf("%s: expected summary %q, got %q", e.ID, want[e.ID], e.Summary)
		}

		stored, err := s.GetEntry(context.Background(), e.ID)
		if err != nil {
			t.Fatalf("%s was not saved: %v", e.ID, err)
		}

		if stored.Summary != want[e.ID] {
			t.Errorf("%s: stored summary %q", e.ID, stored.Summary)
		}
	}
}

func TestFinalizeLabelMustBeContained(t *testing.T) {
	p := plan(t, "p", "Planned", "09:00", "10:00")
	p.LabelIDs = []string{"go"}

	a := inferred(t, "a", "09:00", "10:00")
	a.LabelIDs = []string{"rust"}

	s := testutil.NewStore(p)

	got, err := (&Finalizer{Entries: s}).Finalize(
		context.Background(),
		"u1",
		[]*models.ScheduleEntry{a},
	)
	if err != nil {
		t.Fatal(err)
	}

	if got[0].Summary != PlaceholderSummary {
		t.Fatalf("plan without the actual's label must not be used, got %q", got[0].Summary)
	}
}

func TestFinalizeSaveFailure(t *testing.T) {
	s := testutil.NewStore()
	s.SaveErr = errors.New("disk full")

	_, err := (&Finalizer{Entries: s}).Finalize(
		context.Background(),
		"u1",
		[]*models.ScheduleEntry{inferred(t, "a", "09:00", "10:00")},
	)
	if !errors.Is(err, errSaveActuals) {
		t.Fatalf("expected save error, got %v", err)
	}
}

func TestBounds(t *testing.T) {
	entries := []*models.ScheduleEntry{
		inferred(t, "b", "11:00", "12:00"),
		inferred(t, "a", "09:00", "10:00"),
		{ID: "all-day", Start: models.Boundary{Date: "2024-07-03"}},
		inferred(t, "c", "10:00", "11:30"),
	}

	start, end, ok := bounds(entries)
	if !ok {
		t.Fatal("expected bounds")
	}

	if !start.Equal(testutil.Clock(t, testDay, "09:00")) ||
		!end.Equal(testutil.Clock(t, testDay, "12:00")) {
		t.Fatalf("expected 09:00-12:00, got %v-%v", start, end)
	}

	if _, _, ok := bounds(nil); ok {
		t.Fatal("no entries should have no bounds")
	}
}
