package actual

import "time"

// Usage accumulates overlap time per attribute id. The zero value is ready
// to use.
type Usage struct {
	totals map[string]time.Duration
	order  []string
}

// Add accumulates d under id, inserting id on first use.
func (u *Usage) Add(id string, d time.Duration) {
	if u.totals == nil {
		u.totals = make(map[string]time.Duration)
	}

	if _, ok := u.totals[id]; !ok {
		u.order = append(u.order, id)
	}

	u.totals[id] += d
}

// Total returns the time accumulated under id.
func (u *Usage) Total(id string) time.Duration {
	return u.totals[id]
}

// Len returns the number of distinct ids.
func (u *Usage) Len() int {
	return len(u.order)
}

// Winner returns the id with the largest total. Ties go to the id that was
// added first.
func (u *Usage) Winner() (string, bool) {
	return u.WinnerAmong(func(string) bool { return true })
}

// WinnerAmong is like Winner but only considers ids for which allowed
// returns true.
func (u *Usage) WinnerAmong(allowed func(id string) bool) (string, bool) {
	var (
		best  string
		total time.Duration
		found bool
	)

	for _, id := range u.order {
		if !allowed(id) {
			continue
		}

		if !found || u.totals[id] > total {
			best, total, found = id, u.totals[id], true
		}
	}

	return best, found
}
