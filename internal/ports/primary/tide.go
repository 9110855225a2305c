// Package primary defines the primary ports (driving interfaces) for
// the application. Every request carries the verified user id supplied
// by the authentication collaborator; all operations are scoped to it.
package primary

import (
	"context"
	"time"

	"github.com/example/tide/internal/models"
)

// TideService defines the primary port for tide CRUD and history
// operations.
type TideService interface {
	// CreateTide creates an explicit (project or seasonal) tide.
	CreateTide(ctx context.Context, req CreateTideRequest) (*models.Tide, error)

	// GetTide retrieves a tide with its full nested history.
	GetTide(ctx context.Context, userID, tideID string) (*models.Tide, error)

	// ListTides lists the caller's tides as summary projections.
	ListTides(ctx context.Context, userID string, filters TideFilters) ([]*TideSummary, error)

	// UpdateTide applies a partial edit to a tide.
	UpdateTide(ctx context.Context, req UpdateTideRequest) (*models.Tide, error)

	// CompleteTide marks a tide completed. Tides are never hard-deleted.
	CompleteTide(ctx context.Context, userID, tideID string) error

	// PauseTide pauses an active tide.
	PauseTide(ctx context.Context, userID, tideID string) error

	// ResumeTide resumes a paused tide.
	ResumeTide(ctx context.Context, userID, tideID string) error

	// AddEnergyUpdate appends an energy sample to a tide.
	AddEnergyUpdate(ctx context.Context, req AddEnergyRequest) (*models.EnergyUpdate, error)

	// AddTaskLink links an external task to a tide.
	AddTaskLink(ctx context.Context, req AddTaskLinkRequest) (*models.TaskLink, error)

	// RemoveTaskLink removes a task link. Returns false, not an error,
	// when no such link exists.
	RemoveTaskLink(ctx context.Context, userID, tideID, linkID string) (bool, error)

	// GetOrCreateDailyTide resolves the daily tide covering the given
	// date, creating it when absent. Idempotent.
	GetOrCreateDailyTide(ctx context.Context, req DailyTideRequest) (*models.Tide, error)
}

// FlowService defines the primary port for recording focused work and
// fanning it out across the time hierarchy.
type FlowService interface {
	// AddFlowSession records one session against an explicit tide and
	// reflects it at every hierarchy level covering its start instant.
	AddFlowSession(ctx context.Context, req AddFlowSessionRequest) (*models.FlowSession, error)

	// StartHierarchicalFlow records one session into the daily, weekly
	// and monthly tides (creating and linking them as needed) plus an
	// optional explicit tide.
	StartHierarchicalFlow(ctx context.Context, req StartFlowRequest) (*StartFlowResponse, error)

	// ListTideContexts summarizes each hierarchy granularity around a
	// date: flow count, total minutes and availability.
	ListTideContexts(ctx context.Context, req ContextsRequest) (*TideContexts, error)
}

// IntegrityService defines the primary port for cross-store invariant
// checks. Checks report; they never repair.
type IntegrityService interface {
	CheckIntegrity(ctx context.Context) (*IntegrityReport, error)
}

// CreateTideRequest contains parameters for creating an explicit tide.
type CreateTideRequest struct {
	UserID      string `validate:"required"`
	Name        string `validate:"required,max=200"`
	FlowType    string `validate:"required,oneof=project seasonal"`
	Description string `validate:"max=2000"`
}

// UpdateTideRequest contains a partial tide edit. Nil fields are left
// untouched.
type UpdateTideRequest struct {
	UserID      string `validate:"required"`
	TideID      string `validate:"required"`
	Name        *string
	Description *string
	Status      *string
}

// AddFlowSessionRequest contains parameters for recording a session
// against a named tide.
type AddFlowSessionRequest struct {
	UserID      string `validate:"required"`
	TideID      string `validate:"required"`
	Intensity   string `validate:"required,oneof=gentle moderate strong"`
	Duration    int    `validate:"required,gt=0"`
	WorkContext string
	EnergyLevel int `validate:"omitempty,min=1,max=10"`
	StartedAt   time.Time
	Timezone    string
}

// StartFlowRequest contains parameters for a hierarchical flow session.
// Intensity and duration default to moderate / 25 minutes when unset.
type StartFlowRequest struct {
	UserID         string `validate:"required"`
	Intensity      string `validate:"omitempty,oneof=gentle moderate strong"`
	Duration       int    `validate:"omitempty,gt=0"`
	EnergyLevel    int    `validate:"omitempty,min=1,max=10"`
	WorkContext    string
	ExplicitTideID string
	StartedAt      time.Time
	Timezone       string
}

// StartFlowResponse lists every tide the session was recorded into.
type StartFlowResponse struct {
	Session  *models.FlowSession
	DailyID  string
	WeeklyID string
	MonthID  string
	// ExplicitID is set when the request named an explicit tide.
	ExplicitID string
}

// AddEnergyRequest contains parameters for an energy sample.
type AddEnergyRequest struct {
	UserID      string `validate:"required"`
	TideID      string `validate:"required"`
	EnergyLevel int    `validate:"required,min=1,max=10"`
	Context     string
}

// AddTaskLinkRequest contains parameters for linking an external task.
type AddTaskLinkRequest struct {
	UserID string `validate:"required"`
	TideID string `validate:"required"`
	URL    string `validate:"required,url"`
	Title  string `validate:"required"`
	Type   string
}

// DailyTideRequest contains parameters for daily tide resolution.
type DailyTideRequest struct {
	UserID   string `validate:"required"`
	Timezone string
	// Date overrides "now" when non-zero. Its calendar date is read as
	// named, in Timezone, whatever location the value carries.
	Date time.Time
}

// ContextsRequest contains parameters for the per-granularity summary.
// Date semantics match DailyTideRequest.
type ContextsRequest struct {
	UserID   string `validate:"required"`
	Timezone string
	Date     time.Time
}

// TideFilters contains filter options for listing tides.
type TideFilters struct {
	FlowType   string
	ActiveOnly bool
}

// TideSummary is the listing projection: no history, index row only.
type TideSummary struct {
	ID            string
	Name          string
	FlowType      string
	Status        string
	DateStart     string
	DateEnd       string
	AutoCreated   bool
	FlowCount     int
	TotalDuration int
	CreatedAt     time.Time
}

// TideContext summarizes one hierarchy granularity around a date.
type TideContext struct {
	Granularity  string
	TideID       string // empty when the tide does not exist yet
	DateStart    string
	DateEnd      string
	FlowCount    int
	TotalMinutes int
	Available    bool // true when the tide exists and is active
}

// TideContexts is the per-granularity summary for one date.
type TideContexts struct {
	Date     string
	Contexts []TideContext
}

// IntegrityReport is the outcome of a cross-store invariant sweep.
type IntegrityReport struct {
	RowsChecked int
	Issues      []IntegrityIssue
}

// IntegrityIssue describes one violated invariant at the port boundary.
type IntegrityIssue struct {
	TideID string
	UserID string
	Kind   string
	Detail string
}
