package app_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tide/internal/app"
	"github.com/example/tide/internal/models"
)

func TestRollupMaintainerRunningAverage(t *testing.T) {
	store := newFakeAnalytics()
	m := app.NewRollupMaintainer(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()
	started := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	sessions := []models.FlowSession{
		{ID: "s1", Intensity: models.IntensityGentle, Duration: 10, StartedAt: started},
		{ID: "s2", Intensity: models.IntensityStrong, Duration: 50, StartedAt: started.Add(time.Hour)},
		{ID: "s3", Intensity: models.IntensityModerate, Duration: 30, StartedAt: started.Add(2 * time.Hour)},
	}
	for i := range sessions {
		m.RecordSession(ctx, "user-1", []string{"tide-1"}, &sessions[i], "2025-03-10")
	}

	a, err := store.GetTideAnalytics(ctx, "tide-1")
	require.NoError(t, err)
	assert.Equal(t, 3, a.TotalSessions)
	assert.Equal(t, 90, a.TotalDuration)
	// Weights 1, 3, 2 average to 2.
	assert.InDelta(t, 2.0, a.AvgIntensity, 1e-9)
	require.NotNil(t, a.LastSessionAt)
	assert.True(t, a.LastSessionAt.Equal(started.Add(2*time.Hour)))

	r, err := store.GetUserRollup(ctx, "user-1", "2025-03-10", models.RollupPeriodDaily)
	require.NoError(t, err)
	assert.Equal(t, 3, r.FlowCount)
	assert.Equal(t, 90, r.TotalDuration)
}

func TestRollupMaintainerFansOutPerTide(t *testing.T) {
	store := newFakeAnalytics()
	m := app.NewRollupMaintainer(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	ctx := context.Background()

	s := models.FlowSession{ID: "s1", Intensity: models.IntensityModerate, Duration: 25, StartedAt: time.Now().UTC()}
	m.RecordSession(ctx, "user-1", []string{"daily-1", "weekly-1", "monthly-1"}, &s, "2025-03-10")

	for _, id := range []string{"daily-1", "weekly-1", "monthly-1"} {
		a, err := store.GetTideAnalytics(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, a.TotalSessions)
	}

	// One session bumps the user's day once, not once per tide.
	r, err := store.GetUserRollup(ctx, "user-1", "2025-03-10", models.RollupPeriodDaily)
	require.NoError(t, err)
	assert.Equal(t, 1, r.FlowCount)
}

func TestRollupMaintainerSwallowsFailures(t *testing.T) {
	store := newFakeAnalytics()
	store.fail = true
	m := app.NewRollupMaintainer(store, slog.New(slog.NewTextHandler(io.Discard, nil)))

	s := models.FlowSession{ID: "s1", Intensity: models.IntensityModerate, Duration: 25, StartedAt: time.Now().UTC()}
	// Must not panic or propagate anything.
	m.RecordSession(context.Background(), "user-1", []string{"tide-1"}, &s, "2025-03-10")
}
