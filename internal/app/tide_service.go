package app

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/example/tide/internal/core/hierarchy"
	coretide "github.com/example/tide/internal/core/tide"
	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/primary"
	"github.com/example/tide/internal/ports/secondary"
)

// TideServiceImpl implements the TideService interface over the hybrid
// persistence engine.
type TideServiceImpl struct {
	repo     secondary.TideRepository
	resolver *Resolver
}

// NewTideService creates a TideService with injected dependencies.
func NewTideService(repo secondary.TideRepository, resolver *Resolver) *TideServiceImpl {
	return &TideServiceImpl{repo: repo, resolver: resolver}
}

// CreateTide creates an explicit (project or seasonal) tide. Hierarchy
// tides are never created this way; they appear implicitly on the first
// session falling into their range.
func (s *TideServiceImpl) CreateTide(ctx context.Context, req primary.CreateTideRequest) (*models.Tide, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	t := &models.Tide{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Name:          req.Name,
		Description:   req.Description,
		FlowType:      req.FlowType,
		Status:        models.TideStatusActive,
		CreatedAt:     now,
		UpdatedAt:     now,
		FlowSessions:  []models.FlowSession{},
		EnergyUpdates: []models.EnergyUpdate{},
		TaskLinks:     []models.TaskLink{},
	}
	if err := coretide.CanCreateTide(t).Error(); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, err
	}

	return t, nil
}

// GetTide retrieves a tide with its full nested history.
func (s *TideServiceImpl) GetTide(ctx context.Context, userID, tideID string) (*models.Tide, error) {
	return s.repo.Get(ctx, tideID, userID)
}

// ListTides lists the caller's tides as summary projections, newest
// first. No documents are read.
func (s *TideServiceImpl) ListTides(ctx context.Context, userID string, filters primary.TideFilters) ([]*primary.TideSummary, error) {
	rows, err := s.repo.List(ctx, userID, secondary.TideFilters{
		FlowType:   filters.FlowType,
		ActiveOnly: filters.ActiveOnly,
	})
	if err != nil {
		return nil, err
	}

	summaries := make([]*primary.TideSummary, len(rows))
	for i, row := range rows {
		summaries[i] = rowToSummary(row)
	}
	return summaries, nil
}

// UpdateTide applies a partial edit.
func (s *TideServiceImpl) UpdateTide(ctx context.Context, req primary.UpdateTideRequest) (*models.Tide, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Status != nil && !models.ValidStatus(*req.Status) {
		return nil, fault.Validationf("unknown status %q", *req.Status)
	}

	return s.repo.Update(ctx, req.TideID, req.UserID, secondary.TidePatch{
		Name:        req.Name,
		Description: req.Description,
		Status:      req.Status,
	})
}

// CompleteTide marks a tide completed. Completion is a status
// transition: tides are never hard-deleted.
func (s *TideServiceImpl) CompleteTide(ctx context.Context, userID, tideID string) error {
	return s.transition(ctx, userID, tideID, models.TideStatusCompleted, coretide.CanComplete)
}

// PauseTide pauses an active tide.
func (s *TideServiceImpl) PauseTide(ctx context.Context, userID, tideID string) error {
	return s.transition(ctx, userID, tideID, models.TideStatusPaused, coretide.CanPause)
}

// ResumeTide resumes a paused tide.
func (s *TideServiceImpl) ResumeTide(ctx context.Context, userID, tideID string) error {
	return s.transition(ctx, userID, tideID, models.TideStatusActive, coretide.CanResume)
}

func (s *TideServiceImpl) transition(ctx context.Context, userID, tideID, target string, guard func(coretide.StatusTransitionContext) coretide.GuardResult) error {
	t, err := s.repo.Get(ctx, tideID, userID)
	if err != nil {
		return err
	}

	result := guard(coretide.StatusTransitionContext{TideID: tideID, Status: t.Status})
	if err := result.Error(); err != nil {
		return err
	}

	_, err = s.repo.Update(ctx, tideID, userID, secondary.TidePatch{Status: &target})
	return err
}

// AddEnergyUpdate appends an energy sample. A failed guard leaves the
// tide unmutated: validation happens before any store write.
func (s *TideServiceImpl) AddEnergyUpdate(ctx context.Context, req primary.AddEnergyRequest) (*models.EnergyUpdate, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	u := models.EnergyUpdate{
		ID:          uuid.NewString(),
		EnergyLevel: req.EnergyLevel,
		Context:     req.Context,
		Timestamp:   time.Now().UTC(),
	}
	if err := coretide.CanRecordEnergy(&u).Error(); err != nil {
		return nil, err
	}

	if _, err := s.repo.AppendEnergy(ctx, req.TideID, req.UserID, u); err != nil {
		return nil, err
	}

	return &u, nil
}

// AddTaskLink links an external task to a tide.
func (s *TideServiceImpl) AddTaskLink(ctx context.Context, req primary.AddTaskLinkRequest) (*models.TaskLink, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	l := models.TaskLink{
		ID:       uuid.NewString(),
		URL:      req.URL,
		Title:    req.Title,
		Type:     req.Type,
		LinkedAt: time.Now().UTC(),
	}
	if err := coretide.CanLinkTask(&l).Error(); err != nil {
		return nil, err
	}

	if _, err := s.repo.AppendTask(ctx, req.TideID, req.UserID, l); err != nil {
		return nil, err
	}

	return &l, nil
}

// RemoveTaskLink removes a task link. Removing a link that does not
// exist returns false, not an error.
func (s *TideServiceImpl) RemoveTaskLink(ctx context.Context, userID, tideID, linkID string) (bool, error) {
	return s.repo.RemoveTask(ctx, tideID, userID, linkID)
}

// GetOrCreateDailyTide resolves the daily tide covering the requested
// date (or today), creating it when absent.
func (s *TideServiceImpl) GetOrCreateDailyTide(ctx context.Context, req primary.DailyTideRequest) (*models.Tide, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Timezone == "" {
		req.Timezone = defaultTimezone
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	} else {
		// A named date is a calendar date, not an instant: anchor it in
		// the request time zone so the range math cannot shift the day.
		anchored, err := hierarchy.AnchorDate(req.Date, req.Timezone)
		if err != nil {
			return nil, err
		}
		req.Date = anchored
	}

	row, err := s.resolver.GetOrCreate(ctx, req.UserID, req.Date, req.Timezone, hierarchy.Daily)
	if err != nil {
		return nil, err
	}

	return s.repo.Get(ctx, row.ID, req.UserID)
}

func rowToSummary(row *secondary.TideRow) *primary.TideSummary {
	return &primary.TideSummary{
		ID:            row.ID,
		Name:          row.Name,
		FlowType:      row.FlowType,
		Status:        row.Status,
		DateStart:     row.DateStart,
		DateEnd:       row.DateEnd,
		AutoCreated:   row.AutoCreated,
		FlowCount:     row.FlowCount,
		TotalDuration: row.TotalDuration,
		CreatedAt:     row.CreatedAt,
	}
}

var _ primary.TideService = (*TideServiceImpl)(nil)
