// Package interval merges overlapping or touching time ranges, both as bare
// slots and as schedule entries that share the same attributes
package interval

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/ayoisaiah/autotrack/internal/apperr"
	"github.com/ayoisaiah/autotrack/internal/models"
)

// ErrMissingBoundary is returned when an entry without both boundary
// instants reaches the merge sweep.
var ErrMissingBoundary = &apperr.Error{
	Message: "entry %s has no start or end instant and cannot be merged",
}

// EntryFactory creates entries with a fresh identity.
type EntryFactory interface {
	New(partial models.ScheduleEntry) *models.ScheduleEntry
}

// Merge coalesces slots that overlap or touch. The result is sorted by start
// and pairwise disjoint. The input is not modified.
func Merge(slots []models.Slot) []models.Slot {
	if len(slots) == 0 {
		return nil
	}

	sorted := slices.Clone(slots)
	slices.SortStableFunc(sorted, func(a, b models.Slot) int {
		return a.Start.Compare(b.Start)
	})

	merged := []models.Slot{sorted[0]}

	for _, s := range sorted[1:] {
		last := &merged[len(merged)-1]

		if !s.Start.After(last.End) {
			last.End = later(last.End, s.End)
			continue
		}

		merged = append(merged, s)
	}

	return merged
}

func later(a, b time.Time) time.Time {
	if b.After(a) {
		return b
	}

	return a
}

// groupKey holds every attribute that must be equal for two entries to be
// merged. Labels are stored sorted so that order is irrelevant.
type groupKey struct {
	external    models.ExternalID
	userID      string
	kind        models.EntryKind
	summary     string
	description string
	location    string
	projectID   string
	categoryID  string
	taskID      string
	labels      string
	hasExternal bool
}

func keyOf(e *models.ScheduleEntry) groupKey {
	labels := slices.Clone(e.LabelIDs)
	slices.Sort(labels)

	k := groupKey{
		userID:      e.UserID,
		kind:        e.Kind,
		summary:     e.Summary,
		description: e.Description,
		location:    e.Location,
		projectID:   e.ProjectID,
		categoryID:  e.CategoryID,
		taskID:      e.TaskID,
		labels:      strings.Join(labels, "\x00"),
	}

	if e.ExternalID != nil {
		k.external = *e.ExternalID
		k.hasExternal = true
	}

	return k
}

// passThrough reports whether e is excluded from merging.
func passThrough(e *models.ScheduleEntry) bool {
	return e.IsDeleted() || e.ExternalID != nil || !e.HasInstants()
}

// MergeEntries merges maximal runs of touching or overlapping entries that
// share identical attributes. Deleted, externally sourced, and boundary-less
// entries are returned unchanged ahead of the merged entries. Each merged run
// becomes a new entry created by factory.
func MergeEntries(
	entries []*models.ScheduleEntry,
	factory EntryFactory,
) ([]*models.ScheduleEntry, error) {
	var (
		result []*models.ScheduleEntry
		order  []groupKey
	)

	groups := make(map[groupKey][]*models.ScheduleEntry)

	for _, e := range entries {
		if passThrough(e) {
			result = append(result, e)
			continue
		}

		k := keyOf(e)
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}

		groups[k] = append(groups[k], e)
	}

	for _, k := range order {
		merged, err := sweep(groups[k], factory)
		if err != nil {
			return nil, err
		}

		result = append(result, merged...)
	}

	return result, nil
}

// sweep merges one attribute group. Every entry must carry both instants.
func sweep(
	group []*models.ScheduleEntry,
	factory EntryFactory,
) ([]*models.ScheduleEntry, error) {
	type span struct {
		entry      *models.ScheduleEntry
		start, end time.Time
	}

	spans := make([]span, 0, len(group))

	for _, e := range group {
		start, end, ok := e.Interval()
		if !ok {
			return nil, ErrMissingBoundary.Fmt(e.ID)
		}

		spans = append(spans, span{entry: e, start: start, end: end})
	}

	slices.SortStableFunc(spans, func(a, b span) int {
		return cmp.Compare(a.start.UnixNano(), b.start.UnixNano())
	})

	var merged []*models.ScheduleEntry

	emit := func(template *models.ScheduleEntry, start, end time.Time) {
		partial := *template
		partial.Start = models.At(start)
		partial.End = models.At(end)

		merged = append(merged, factory.New(partial))
	}

	cur := spans[0]

	for _, s := range spans[1:] {
		if !s.start.After(cur.end) {
			cur.end = later(cur.end, s.end)
			continue
		}

		emit(cur.entry, cur.start, cur.end)

		cur = s
	}

	emit(cur.entry, cur.start, cur.end)

	return merged, nil
}
