package shift

import "time"

// Resolve selects the single assignment governing the given day, or nil when
// none covers it. An unassigned employee is an expected outcome, not an
// error.
//
// Overlapping assignments can exist through data-entry error, so selection
// must be deterministic: among covering assignments the latest FromDate
// wins, and remaining ties are broken by assignment ID ascending. The result
// does not depend on the order of the candidate slice.
func Resolve(assignments []Assignment, date time.Time) *Assignment {
	var best *Assignment
	for i := range assignments {
		a := &assignments[i]
		if !a.Covers(date) {
			continue
		}
		if best == nil {
			best = a
			continue
		}
		if a.FromDate.After(best.FromDate) {
			best = a
			continue
		}
		if a.FromDate.Equal(best.FromDate) && a.ID < best.ID {
			best = a
		}
	}
	return best
}
