package request

import (
	"context"
	"time"
)

// PeriodsOverlap reports whether two inclusive day ranges share at least
// one calendar day: [s1,e1] and [s2,e2] overlap iff s1 <= e2 and s2 <= e1.
// A shared boundary day counts.
func PeriodsOverlap(s1, e1, s2, e2 time.Time) bool {
	return !s1.After(e2) && !s2.After(e1)
}

// OverlapDetector flags a candidate period that conflicts with any other
// non-rejected request of the same employee. It mutates nothing; the
// transition engine persists the flag. The check runs at submission, at
// manager queue listing, and again at manager approval so a conflict
// introduced after submission still surfaces to the next stage.
type OverlapDetector struct {
	repo Repository
}

func NewOverlapDetector(repo Repository) *OverlapDetector {
	return &OverlapDetector{repo: repo}
}

// HasOverlap checks the employee's other requests; excludeID skips the
// request being evaluated so it never conflicts with itself.
func (d *OverlapDetector) HasOverlap(ctx context.Context, employeeID string, start, end time.Time, excludeID *string) (bool, error) {
	return d.repo.HasOverlappingPeriod(ctx, employeeID, start, end, excludeID)
}
