package models

import "time"

// TideAnalytics is the per-tide derived aggregate, 1:1 with a tide.
// It is a best-effort cache; the document history is the source of truth.
type TideAnalytics struct {
	TideID        string
	TotalSessions int
	TotalDuration int // minutes
	AvgIntensity  float64
	LastSessionAt *time.Time
}

// UserActivityRollup aggregates activity per (user, date, period type).
type UserActivityRollup struct {
	UserID        string
	Date          string // YYYY-MM-DD
	PeriodType    string // "daily"
	FlowCount     int
	TotalDuration int // minutes
}

// RollupPeriodDaily is the only rollup period written by the core;
// weekly/monthly views are derived at read time.
const RollupPeriodDaily = "daily"
