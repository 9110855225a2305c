package app_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tide/internal/core/hierarchy"
	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/primary"
)

func TestCreateTide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tide, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID:      "user-1",
		Name:        "Ship parser",
		FlowType:    models.FlowTypeProject,
		Description: "rewrite of the expression parser",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, tide.ID)
	assert.Equal(t, models.TideStatusActive, tide.Status)
	assert.False(t, tide.AutoCreated)
	assert.Empty(t, tide.DateStart, "explicit tides carry no range")

	got, err := env.tides.GetTide(ctx, "user-1", tide.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ship parser", got.Name)
	assert.NotNil(t, got.FlowSessions)
}

func TestCreateTideValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  primary.CreateTideRequest
	}{
		{"missing name", primary.CreateTideRequest{UserID: "user-1", FlowType: models.FlowTypeProject}},
		{"missing user", primary.CreateTideRequest{Name: "x", FlowType: models.FlowTypeProject}},
		{"hierarchy type rejected", primary.CreateTideRequest{UserID: "user-1", Name: "x", FlowType: models.FlowTypeDaily}},
		{"unknown type", primary.CreateTideRequest{UserID: "user-1", Name: "x", FlowType: "sprint"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.tides.CreateTide(ctx, tt.req)
			assert.ErrorIs(t, err, fault.ErrValidation)
		})
	}
}

func TestListTidesScoped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-1", Name: "Mine", FlowType: models.FlowTypeProject,
	})
	require.NoError(t, err)
	_, err = env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-2", Name: "Theirs", FlowType: models.FlowTypeSeasonal,
	})
	require.NoError(t, err)

	mine, err := env.tides.ListTides(ctx, "user-1", primary.TideFilters{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Mine", mine[0].Name)
}

func TestUpdateTide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tide, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-1", Name: "Before", FlowType: models.FlowTypeProject,
	})
	require.NoError(t, err)

	name := "After"
	got, err := env.tides.UpdateTide(ctx, primary.UpdateTideRequest{
		UserID: "user-1",
		TideID: tide.ID,
		Name:   &name,
	})
	require.NoError(t, err)
	assert.Equal(t, "After", got.Name)

	bad := "archived"
	_, err = env.tides.UpdateTide(ctx, primary.UpdateTideRequest{
		UserID: "user-1",
		TideID: tide.ID,
		Status: &bad,
	})
	assert.ErrorIs(t, err, fault.ErrValidation)
}

func TestStatusTransitionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tide, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-1", Name: "x", FlowType: models.FlowTypeProject,
	})
	require.NoError(t, err)

	require.NoError(t, env.tides.PauseTide(ctx, "user-1", tide.ID))
	assert.ErrorIs(t, env.tides.PauseTide(ctx, "user-1", tide.ID), fault.ErrValidation,
		"pausing a paused tide is rejected")

	require.NoError(t, env.tides.ResumeTide(ctx, "user-1", tide.ID))
	assert.ErrorIs(t, env.tides.ResumeTide(ctx, "user-1", tide.ID), fault.ErrValidation)

	require.NoError(t, env.tides.CompleteTide(ctx, "user-1", tide.ID))
	assert.ErrorIs(t, env.tides.CompleteTide(ctx, "user-1", tide.ID), fault.ErrValidation)
	assert.ErrorIs(t, env.tides.ResumeTide(ctx, "user-1", tide.ID), fault.ErrValidation,
		"completion is terminal")

	// The tide still exists: completion never deletes.
	got, err := env.tides.GetTide(ctx, "user-1", tide.ID)
	require.NoError(t, err)
	assert.Equal(t, models.TideStatusCompleted, got.Status)
}

func TestAddEnergyUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tide, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-1", Name: "x", FlowType: models.FlowTypeProject,
	})
	require.NoError(t, err)

	update, err := env.tides.AddEnergyUpdate(ctx, primary.AddEnergyRequest{
		UserID:      "user-1",
		TideID:      tide.ID,
		EnergyLevel: 7,
		Context:     "after a walk",
	})
	require.NoError(t, err)
	assert.Equal(t, 7, update.EnergyLevel)

	// Out-of-scale levels fail validation and leave the tide untouched.
	for _, level := range []int{0, 11, -3} {
		_, err := env.tides.AddEnergyUpdate(ctx, primary.AddEnergyRequest{
			UserID:      "user-1",
			TideID:      tide.ID,
			EnergyLevel: level,
		})
		assert.ErrorIs(t, err, fault.ErrValidation, "level %d", level)
	}

	got, err := env.tides.GetTide(ctx, "user-1", tide.ID)
	require.NoError(t, err)
	assert.Len(t, got.EnergyUpdates, 1)
}

func TestTaskLinks(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tide, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-1", Name: "x", FlowType: models.FlowTypeProject,
	})
	require.NoError(t, err)

	link, err := env.tides.AddTaskLink(ctx, primary.AddTaskLinkRequest{
		UserID: "user-1",
		TideID: tide.ID,
		URL:    "https://example.com/issues/42",
		Title:  "Fix the tokenizer",
		Type:   "issue",
	})
	require.NoError(t, err)

	_, err = env.tides.AddTaskLink(ctx, primary.AddTaskLinkRequest{
		UserID: "user-1",
		TideID: tide.ID,
		URL:    "not a url",
		Title:  "broken",
	})
	assert.ErrorIs(t, err, fault.ErrValidation)

	removed, err := env.tides.RemoveTaskLink(ctx, "user-1", tide.ID, link.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = env.tides.RemoveTaskLink(ctx, "user-1", tide.ID, link.ID)
	require.NoError(t, err)
	assert.False(t, removed, "absent link is false, not an error")
}

func TestGetOrCreateDailyTide(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	date := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

	first, err := env.tides.GetOrCreateDailyTide(ctx, primary.DailyTideRequest{
		UserID: "user-1",
		Date:   date,
	})
	require.NoError(t, err)
	assert.Equal(t, hierarchy.TideID("user-1", hierarchy.Daily, "2025-03-10"), first.ID)
	assert.True(t, first.AutoCreated)

	second, err := env.tides.GetOrCreateDailyTide(ctx, primary.DailyTideRequest{
		UserID: "user-1",
		Date:   date,
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
}

func TestGetOrCreateDailyTideNamedDateInWesternZone(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	// A date-only argument parses to midnight UTC; the tide must still
	// be the named day in a zone behind UTC.
	tide, err := env.tides.GetOrCreateDailyTide(ctx, primary.DailyTideRequest{
		UserID:   "user-1",
		Timezone: "America/New_York",
		Date:     time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", tide.DateStart)
	assert.Equal(t, hierarchy.TideID("user-1", hierarchy.Daily, "2025-03-10"), tide.ID)
}

func TestCrossUserAccess(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	tide, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-1", Name: "Private", FlowType: models.FlowTypeProject,
	})
	require.NoError(t, err)

	_, err = env.tides.GetTide(ctx, "user-2", tide.ID)
	assert.ErrorIs(t, err, fault.ErrUnauthorized)

	err = env.tides.CompleteTide(ctx, "user-2", tide.ID)
	assert.ErrorIs(t, err, fault.ErrUnauthorized)
}
