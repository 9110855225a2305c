package app

import (
	"context"
	"errors"
	"log/slog"

	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/secondary"
)

// RollupMaintainer keeps the derived aggregates: per-tide analytics and
// per-user-per-day activity rollups. Strictly best-effort — a failed
// rollup write is logged and swallowed, never rolled back into or
// surfaced from the underlying document write.
type RollupMaintainer struct {
	store  secondary.AnalyticsStore
	logger *slog.Logger
}

// NewRollupMaintainer creates a rollup maintainer.
func NewRollupMaintainer(store secondary.AnalyticsStore, logger *slog.Logger) *RollupMaintainer {
	return &RollupMaintainer{store: store, logger: logger}
}

// RecordSession folds one session into the aggregates of every tide it
// was appended to, and bumps the caller's daily activity rollup once.
func (m *RollupMaintainer) RecordSession(ctx context.Context, userID string, tideIDs []string, s *models.FlowSession, sessionDate string) {
	for _, tideID := range tideIDs {
		if err := m.applyToTide(ctx, tideID, s); err != nil {
			m.logger.Warn("tide analytics update failed",
				slog.String("tide_id", tideID),
				slog.String("session_id", s.ID),
				slog.String("error", err.Error()))
		}
	}

	if err := m.applyToUserDay(ctx, userID, sessionDate, s); err != nil {
		m.logger.Warn("user rollup update failed",
			slog.String("user_id", userID),
			slog.String("date", sessionDate),
			slog.String("error", err.Error()))
	}
}

// applyToTide folds the session into one tide's aggregate:
// running average over the intensity weights, max over timestamps.
func (m *RollupMaintainer) applyToTide(ctx context.Context, tideID string, s *models.FlowSession) error {
	a, err := m.store.GetTideAnalytics(ctx, tideID)
	if errors.Is(err, fault.ErrNotFound) {
		a = &models.TideAnalytics{TideID: tideID}
	} else if err != nil {
		return err
	}

	n := float64(a.TotalSessions)
	a.AvgIntensity = (a.AvgIntensity*n + models.IntensityWeight(s.Intensity)) / (n + 1)
	a.TotalSessions++
	a.TotalDuration += s.Duration
	if a.LastSessionAt == nil || s.StartedAt.After(*a.LastSessionAt) {
		at := s.StartedAt
		a.LastSessionAt = &at
	}

	return m.store.UpsertTideAnalytics(ctx, a)
}

// applyToUserDay bumps the (user, date, daily) rollup by one session.
func (m *RollupMaintainer) applyToUserDay(ctx context.Context, userID, date string, s *models.FlowSession) error {
	r, err := m.store.GetUserRollup(ctx, userID, date, models.RollupPeriodDaily)
	if errors.Is(err, fault.ErrNotFound) {
		r = &models.UserActivityRollup{
			UserID:     userID,
			Date:       date,
			PeriodType: models.RollupPeriodDaily,
		}
	} else if err != nil {
		return err
	}

	r.FlowCount++
	r.TotalDuration += s.Duration

	return m.store.UpsertUserRollup(ctx, r)
}
