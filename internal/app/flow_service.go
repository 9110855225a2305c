package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/example/tide/internal/core/hierarchy"
	coretide "github.com/example/tide/internal/core/tide"
	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/primary"
	"github.com/example/tide/internal/ports/secondary"
)

// Session defaults applied when the caller leaves them unset.
const (
	defaultIntensity = models.IntensityModerate
	defaultDuration  = 25 // minutes
	defaultTimezone  = "UTC"
)

// FlowServiceImpl implements the FlowService interface: it fans one
// recorded session out to every applicable hierarchy tide, linking
// parents lazily, and feeds the rollup maintainer afterwards.
type FlowServiceImpl struct {
	repo     secondary.TideRepository
	resolver *Resolver
	rollups  *RollupMaintainer
	logger   *slog.Logger
}

// NewFlowService creates a FlowService with injected dependencies.
func NewFlowService(repo secondary.TideRepository, resolver *Resolver, rollups *RollupMaintainer, logger *slog.Logger) *FlowServiceImpl {
	return &FlowServiceImpl{
		repo:     repo,
		resolver: resolver,
		rollups:  rollups,
		logger:   logger,
	}
}

// StartHierarchicalFlow records one session into the daily, weekly and
// monthly tides covering its start instant, plus an optional explicit
// tide. The three appends are independent and non-atomic: a failure
// propagates immediately without undoing appends that already
// succeeded, and each level converges on its own once its append lands.
func (s *FlowServiceImpl) StartHierarchicalFlow(ctx context.Context, req primary.StartFlowRequest) (*primary.StartFlowResponse, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	if req.Intensity == "" {
		req.Intensity = defaultIntensity
	}
	if req.Duration == 0 {
		req.Duration = defaultDuration
	}
	if req.Timezone == "" {
		req.Timezone = defaultTimezone
	}
	if req.StartedAt.IsZero() {
		req.StartedAt = time.Now().UTC()
	}

	session := models.FlowSession{
		ID:          uuid.NewString(),
		Intensity:   req.Intensity,
		Duration:    req.Duration,
		StartedAt:   req.StartedAt,
		WorkContext: req.WorkContext,
		EnergyLevel: req.EnergyLevel,
	}
	if err := coretide.CanRecordSession(&session).Error(); err != nil {
		return nil, err
	}

	sessionDate, err := hierarchy.SessionDate(req.StartedAt, req.Timezone)
	if err != nil {
		return nil, err
	}

	// Resolve the three levels concurrently; each resolution is
	// independent and idempotent.
	rows := make([]*secondary.TideRow, len(hierarchy.Levels))
	g, gctx := errgroup.WithContext(ctx)
	for i, level := range hierarchy.Levels {
		i, level := i, level
		g.Go(func() error {
			row, err := s.resolver.GetOrCreate(gctx, req.UserID, req.StartedAt, req.Timezone, level)
			if err != nil {
				return fmt.Errorf("resolve %s tide: %w", level, err)
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	daily, weekly, monthly := rows[0], rows[1], rows[2]

	// Lazy parent linkage, child before parent, so a just-created
	// child id is always available to link from.
	if err := s.linkParent(ctx, req.UserID, daily, weekly); err != nil {
		return nil, err
	}
	if err := s.linkParent(ctx, req.UserID, weekly, monthly); err != nil {
		return nil, err
	}

	targets := []string{daily.ID, weekly.ID, monthly.ID}
	if req.ExplicitTideID != "" {
		targets = append(targets, req.ExplicitTideID)
	}

	// The same session id goes into every target, so a retried append
	// is detected and suppressed inside the engine. No ordering
	// guarantee across levels.
	g, gctx = errgroup.WithContext(ctx)
	for _, tideID := range targets {
		tideID := tideID
		g.Go(func() error {
			if _, err := s.repo.AppendSession(gctx, tideID, req.UserID, session); err != nil {
				return fmt.Errorf("append session to tide %s: %w", tideID, err)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Best-effort: rollup failures are logged inside the maintainer
	// and never surfaced.
	if s.rollups != nil {
		s.rollups.RecordSession(ctx, req.UserID, targets, &session, sessionDate)
	}

	resp := &primary.StartFlowResponse{
		Session:  &session,
		DailyID:  daily.ID,
		WeeklyID: weekly.ID,
		MonthID:  monthly.ID,
	}
	if req.ExplicitTideID != "" {
		resp.ExplicitID = req.ExplicitTideID
	}
	return resp, nil
}

// linkParent sets child.parent_tide_id to parent.ID when unset. A
// parent whose range does not contain the child's stays unlinked: a
// week spilling across a month boundary belongs to no single month, so
// its parent link is skipped rather than failing the whole flow.
func (s *FlowServiceImpl) linkParent(ctx context.Context, userID string, child, parent *secondary.TideRow) error {
	if child.ParentTideID != "" {
		return nil
	}

	guard := coretide.CanLinkParent(coretide.ParentLinkContext{
		ChildOwner:  child.UserID,
		ParentOwner: parent.UserID,
		ChildStart:  child.DateStart,
		ChildEnd:    child.DateEnd,
		ParentStart: parent.DateStart,
		ParentEnd:   parent.DateEnd,
	})
	if !guard.Allowed {
		s.logger.Debug("skipping parent link",
			slog.String("child", child.ID),
			slog.String("parent", parent.ID),
			slog.String("reason", guard.Reason))
		return nil
	}

	if err := s.repo.SetParentIfUnset(ctx, child.ID, userID, parent.ID); err != nil {
		return fmt.Errorf("link %s tide to parent: %w", child.FlowType, err)
	}
	return nil
}

// AddFlowSession records a session against a named tide. Per the
// distribution contract the session is still reflected at every
// hierarchy level covering its start instant; the explicit tide is the
// fourth target.
func (s *FlowServiceImpl) AddFlowSession(ctx context.Context, req primary.AddFlowSessionRequest) (*models.FlowSession, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}

	resp, err := s.StartHierarchicalFlow(ctx, primary.StartFlowRequest{
		UserID:         req.UserID,
		Intensity:      req.Intensity,
		Duration:       req.Duration,
		EnergyLevel:    req.EnergyLevel,
		WorkContext:    req.WorkContext,
		ExplicitTideID: req.TideID,
		StartedAt:      req.StartedAt,
		Timezone:       req.Timezone,
	})
	if err != nil {
		return nil, err
	}
	return resp.Session, nil
}

// ListTideContexts summarizes each hierarchy granularity around a
// date: counters from the index row, availability from its status. A
// granularity whose tide does not exist yet reports the computed range
// with zero counters.
func (s *FlowServiceImpl) ListTideContexts(ctx context.Context, req primary.ContextsRequest) (*primary.TideContexts, error) {
	if err := validateRequest(req); err != nil {
		return nil, err
	}
	if req.Timezone == "" {
		req.Timezone = defaultTimezone
	}
	if req.Date.IsZero() {
		req.Date = time.Now().UTC()
	} else {
		// Named dates are calendar dates; anchor in the request zone.
		anchored, err := hierarchy.AnchorDate(req.Date, req.Timezone)
		if err != nil {
			return nil, err
		}
		req.Date = anchored
	}

	date, err := hierarchy.SessionDate(req.Date, req.Timezone)
	if err != nil {
		return nil, err
	}

	out := &primary.TideContexts{Date: date}
	for _, level := range hierarchy.Levels {
		rng, err := hierarchy.ComputeRange(req.Date, req.Timezone, level)
		if err != nil {
			return nil, err
		}

		tc := primary.TideContext{
			Granularity: string(level),
			DateStart:   rng.Start,
			DateEnd:     rng.End,
		}

		row, err := s.repo.FindByRange(ctx, req.UserID, string(level), rng.Start)
		switch {
		case err == nil:
			tc.TideID = row.ID
			tc.FlowCount = row.FlowCount
			tc.TotalMinutes = row.TotalDuration
			tc.Available = row.Status == models.TideStatusActive
		case errors.Is(err, fault.ErrNotFound):
			// Not created yet; zero counters, not available.
		default:
			return nil, err
		}

		out.Contexts = append(out.Contexts, tc)
	}

	return out, nil
}

var _ primary.FlowService = (*FlowServiceImpl)(nil)
