package sqlite

import (
	"context"
	"database/sql"
	"errors"

	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/secondary"
)

// AnalyticsStore implements secondary.AnalyticsStore with SQLite.
// All writes are last-writer-wins upserts; the rollup maintainer owns
// the aggregate math.
type AnalyticsStore struct {
	db *sql.DB
}

// NewAnalyticsStore creates a new SQLite analytics store.
func NewAnalyticsStore(db *sql.DB) *AnalyticsStore {
	return &AnalyticsStore{db: db}
}

// GetTideAnalytics reads the per-tide aggregate.
func (s *AnalyticsStore) GetTideAnalytics(ctx context.Context, tideID string) (*models.TideAnalytics, error) {
	var (
		a             models.TideAnalytics
		lastSessionAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT tide_id, total_sessions, total_duration, avg_intensity, last_session_at FROM tide_analytics WHERE tide_id = ?",
		tideID,
	).Scan(&a.TideID, &a.TotalSessions, &a.TotalDuration, &a.AvgIntensity, &lastSessionAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.NotFoundf("analytics for tide %s", tideID)
	}
	if err != nil {
		return nil, fault.Storage(fault.StoreIndex, "get tide analytics", err)
	}

	if lastSessionAt.Valid {
		t := lastSessionAt.Time
		a.LastSessionAt = &t
	}

	return &a, nil
}

// UpsertTideAnalytics writes the per-tide aggregate.
func (s *AnalyticsStore) UpsertTideAnalytics(ctx context.Context, a *models.TideAnalytics) error {
	var lastSessionAt sql.NullTime
	if a.LastSessionAt != nil {
		lastSessionAt = sql.NullTime{Time: *a.LastSessionAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tide_analytics (tide_id, total_sessions, total_duration, avg_intensity, last_session_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(tide_id) DO UPDATE SET
			total_sessions = excluded.total_sessions,
			total_duration = excluded.total_duration,
			avg_intensity = excluded.avg_intensity,
			last_session_at = excluded.last_session_at`,
		a.TideID, a.TotalSessions, a.TotalDuration, a.AvgIntensity, lastSessionAt,
	)
	if err != nil {
		return fault.Storage(fault.StoreIndex, "upsert tide analytics", err)
	}

	return nil
}

// GetUserRollup reads one (user, date, period) rollup.
func (s *AnalyticsStore) GetUserRollup(ctx context.Context, userID, date, period string) (*models.UserActivityRollup, error) {
	var r models.UserActivityRollup
	err := s.db.QueryRowContext(ctx,
		"SELECT user_id, date, period_type, flow_count, total_duration FROM user_activity_rollups WHERE user_id = ? AND date = ? AND period_type = ?",
		userID, date, period,
	).Scan(&r.UserID, &r.Date, &r.PeriodType, &r.FlowCount, &r.TotalDuration)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.NotFoundf("rollup %s/%s/%s", userID, date, period)
	}
	if err != nil {
		return nil, fault.Storage(fault.StoreIndex, "get user rollup", err)
	}

	return &r, nil
}

// UpsertUserRollup writes one rollup row.
func (s *AnalyticsStore) UpsertUserRollup(ctx context.Context, r *models.UserActivityRollup) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO user_activity_rollups (user_id, date, period_type, flow_count, total_duration)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, date, period_type) DO UPDATE SET
			flow_count = excluded.flow_count,
			total_duration = excluded.total_duration`,
		r.UserID, r.Date, r.PeriodType, r.FlowCount, r.TotalDuration,
	)
	if err != nil {
		return fault.Storage(fault.StoreIndex, "upsert user rollup", err)
	}

	return nil
}

var _ secondary.AnalyticsStore = (*AnalyticsStore)(nil)
