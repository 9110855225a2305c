// Package hierarchy contains the pure time-hierarchy logic: canonical
// date ranges per granularity and the deterministic ids that make
// concurrent get-or-create of hierarchy tides safe without locks.
package hierarchy

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
)

// Granularity is an automatic hierarchy level.
type Granularity string

const (
	Daily   Granularity = models.FlowTypeDaily
	Weekly  Granularity = models.FlowTypeWeekly
	Monthly Granularity = models.FlowTypeMonthly
)

// Levels lists the hierarchy granularities in child-before-parent order.
var Levels = []Granularity{Daily, Weekly, Monthly}

// DateLayout is the date-only wire format used across index rows,
// documents and rollup keys.
const DateLayout = "2006-01-02"

// Range is a canonical date range, date-only, inclusive on both ends.
type Range struct {
	Start string // YYYY-MM-DD
	End   string // YYYY-MM-DD
}

// ComputeRange maps an instant to the canonical range of a granularity
// in the given time zone. Total over all instants; the only failure is
// an invalid time zone name.
//
//	daily:   start == end == local calendar date
//	weekly:  most recent Monday through the following Sunday (ISO week)
//	monthly: first through last calendar day of the local month
func ComputeRange(instant time.Time, timezone string, g Granularity) (Range, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return Range{}, fault.Validationf("invalid time zone %q", timezone)
	}

	local := instant.In(loc)
	y, m, d := local.Date()

	switch g {
	case Daily:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		s := day.Format(DateLayout)
		return Range{Start: s, End: s}, nil

	case Weekly:
		day := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		// time.Weekday counts Sunday as 0; ISO weeks start on Monday.
		offset := (int(day.Weekday()) + 6) % 7
		monday := day.AddDate(0, 0, -offset)
		return Range{
			Start: monday.Format(DateLayout),
			End:   monday.AddDate(0, 0, 6).Format(DateLayout),
		}, nil

	case Monthly:
		first := time.Date(y, m, 1, 0, 0, 0, 0, time.UTC)
		last := first.AddDate(0, 1, -1)
		return Range{
			Start: first.Format(DateLayout),
			End:   last.Format(DateLayout),
		}, nil
	}

	return Range{}, fault.Validationf("unknown granularity %q", g)
}

// SessionDate returns the local calendar date of an instant, used as the
// per-user-per-day rollup key.
func SessionDate(instant time.Time, timezone string) (string, error) {
	r, err := ComputeRange(instant, timezone, Daily)
	if err != nil {
		return "", err
	}
	return r.Start, nil
}

// AnchorDate re-anchors a caller-named calendar date to midnight in the
// given time zone. The date components are taken as named, whatever
// location the value carries, so a request for "2025-03-10" resolves
// the 10th in every zone instead of drifting across the UTC offset.
func AnchorDate(d time.Time, timezone string) (time.Time, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return time.Time{}, fault.Validationf("invalid time zone %q", timezone)
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc), nil
}

// tideNamespace is the fixed UUIDv5 namespace for hierarchy tide ids.
var tideNamespace = uuid.MustParse("6c1a2f58-9f6e-4b7d-8a3c-2d94c07a11e4")

// TideID derives the id of the hierarchy tide covering (user,
// granularity, dateStart). Deterministic: two concurrent get-or-create
// calls for the same key derive the same id, so the stores' per-row
// uniqueness resolves the race instead of an application lock.
func TideID(userID string, g Granularity, dateStart string) string {
	return uuid.NewSHA1(tideNamespace, []byte(fmt.Sprintf("%s/%s/%s", userID, g, dateStart))).String()
}

// DisplayName returns the human name for an auto-created hierarchy tide.
func DisplayName(g Granularity, r Range) string {
	switch g {
	case Daily:
		return fmt.Sprintf("Daily Tide %s", r.Start)
	case Weekly:
		return fmt.Sprintf("Weekly Tide %s", r.Start)
	case Monthly:
		return fmt.Sprintf("Monthly Tide %s", r.Start[:7])
	}
	return string(g)
}

// Contains reports whether the outer range fully contains the inner one.
// Date-only strings in DateLayout compare correctly as strings.
func (r Range) Contains(inner Range) bool {
	return r.Start <= inner.Start && inner.End <= r.End
}
