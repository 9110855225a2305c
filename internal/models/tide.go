// Package models contains domain types for tide entities.
// The Tide struct is also the document blob schema: one tide is stored
// as a single JSON document with its full nested history.
package models

import "time"

// Flow type constants. Daily, weekly and monthly tides form the
// automatic time hierarchy; project and seasonal tides are user-named.
const (
	FlowTypeDaily    = "daily"
	FlowTypeWeekly   = "weekly"
	FlowTypeMonthly  = "monthly"
	FlowTypeProject  = "project"
	FlowTypeSeasonal = "seasonal"
)

// Tide status constants.
const (
	TideStatusActive    = "active"
	TideStatusPaused    = "paused"
	TideStatusCompleted = "completed"
)

// Intensity constants for flow sessions.
const (
	IntensityGentle   = "gentle"
	IntensityModerate = "moderate"
	IntensityStrong   = "strong"
)

// Tide is a named container tracking focused-work activity. Hierarchy
// tides (daily/weekly/monthly) carry a date range and are auto-created;
// project and seasonal tides are unbounded and user-created.
type Tide struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description,omitempty"`
	FlowType     string    `json:"flow_type"`
	Status       string    `json:"status"`
	ParentTideID string    `json:"parent_tide_id,omitempty"`
	DateStart    string    `json:"date_start,omitempty"` // YYYY-MM-DD, required for hierarchy tides
	DateEnd      string    `json:"date_end,omitempty"`
	AutoCreated  bool      `json:"auto_created"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// Denormalized counters, mirrored into the index row.
	FlowCount     int        `json:"flow_count"`
	TotalDuration int        `json:"total_duration"` // minutes
	LastFlowAt    *time.Time `json:"last_flow_at,omitempty"`

	// Nested history, ordered by append time.
	FlowSessions  []FlowSession  `json:"flow_sessions"`
	EnergyUpdates []EnergyUpdate `json:"energy_updates"`
	TaskLinks     []TaskLink     `json:"task_links"`
}

// FlowSession is one discrete period of focused work recorded against a
// tide. The same session (same ID) is appended at every hierarchy level
// it falls into.
type FlowSession struct {
	ID          string    `json:"id"`
	TideID      string    `json:"tide_id"`
	Intensity   string    `json:"intensity"`
	Duration    int       `json:"duration"` // minutes, > 0
	StartedAt   time.Time `json:"started_at"`
	WorkContext string    `json:"work_context,omitempty"`
	EnergyLevel int       `json:"energy_level,omitempty"` // 1..10 snapshot, 0 if absent
}

// EnergyUpdate is a point-in-time self-reported energy sample.
type EnergyUpdate struct {
	ID          string    `json:"id"`
	TideID      string    `json:"tide_id"`
	EnergyLevel int       `json:"energy_level"` // 1..10
	Context     string    `json:"context,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// TaskLink references an external task-tracking item from a tide.
type TaskLink struct {
	ID       string    `json:"id"`
	TideID   string    `json:"tide_id"`
	URL      string    `json:"url"`
	Title    string    `json:"title"`
	Type     string    `json:"type,omitempty"`
	LinkedAt time.Time `json:"linked_at"`
}

// IsHierarchy reports whether the flow type belongs to the automatic
// daily/weekly/monthly hierarchy.
func IsHierarchy(flowType string) bool {
	switch flowType {
	case FlowTypeDaily, FlowTypeWeekly, FlowTypeMonthly:
		return true
	}
	return false
}

// ValidFlowType reports whether flowType is one of the five flow types.
func ValidFlowType(flowType string) bool {
	switch flowType {
	case FlowTypeDaily, FlowTypeWeekly, FlowTypeMonthly, FlowTypeProject, FlowTypeSeasonal:
		return true
	}
	return false
}

// ValidStatus reports whether status is a known tide status.
func ValidStatus(status string) bool {
	switch status {
	case TideStatusActive, TideStatusPaused, TideStatusCompleted:
		return true
	}
	return false
}

// IntensityWeight maps an intensity to its numeric weight for running
// averages. Unknown intensities weigh 0.
func IntensityWeight(intensity string) float64 {
	switch intensity {
	case IntensityGentle:
		return 1
	case IntensityModerate:
		return 2
	case IntensityStrong:
		return 3
	}
	return 0
}
