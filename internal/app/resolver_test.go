package app_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tide/internal/app"
	"github.com/example/tide/internal/core/hierarchy"
	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
)

func TestResolverGetOrCreate(t *testing.T) {
	env := newTestEnv(t)
	resolver := app.NewResolver(env.engine)
	ctx := context.Background()
	instant := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	row, err := resolver.GetOrCreate(ctx, "user-1", instant, "UTC", hierarchy.Daily)
	require.NoError(t, err)
	assert.Equal(t, hierarchy.TideID("user-1", hierarchy.Daily, "2025-03-10"), row.ID)
	assert.Equal(t, "2025-03-10", row.DateStart)
	assert.Equal(t, "2025-03-10", row.DateEnd)
	assert.True(t, row.AutoCreated)
	assert.Equal(t, models.TideStatusActive, row.Status)
	assert.Equal(t, "Daily Tide 2025-03-10", row.Name)

	// Second call must return the same tide, not create another.
	again, err := resolver.GetOrCreate(ctx, "user-1", instant, "UTC", hierarchy.Daily)
	require.NoError(t, err)
	assert.Equal(t, row.ID, again.ID)

	rows, err := env.index.AllRows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestResolverConcurrentCreatesConverge(t *testing.T) {
	env := newTestEnv(t)
	resolver := app.NewResolver(env.engine)
	ctx := context.Background()
	instant := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	const workers = 16
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			row, err := resolver.GetOrCreate(ctx, "user-1", instant, "UTC", hierarchy.Weekly)
			if err != nil {
				t.Errorf("worker %d: %v", i, err)
				return
			}
			ids[i] = row.ID
		}(i)
	}
	wg.Wait()

	// The conflict loser re-reads the winner: everyone ends up with
	// the same tide and exactly one row exists.
	want := hierarchy.TideID("user-1", hierarchy.Weekly, "2025-03-10")
	for i, id := range ids {
		assert.Equal(t, want, id, "worker %d", i)
	}
	rows, err := env.index.AllRows(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestResolverInvalidTimezone(t *testing.T) {
	env := newTestEnv(t)
	resolver := app.NewResolver(env.engine)

	_, err := resolver.GetOrCreate(context.Background(), "user-1", time.Now(), "Not/AZone", hierarchy.Daily)
	assert.ErrorIs(t, err, fault.ErrValidation)
}
