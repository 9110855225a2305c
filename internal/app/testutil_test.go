package app_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/example/tide/internal/adapters/hybrid"
	"github.com/example/tide/internal/adapters/memory"
	"github.com/example/tide/internal/app"
	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/secondary"
)

// testEnv wires the services over in-memory stores.
type testEnv struct {
	engine    *hybrid.Engine
	index     *memory.IndexStore
	docs      *memory.DocumentStore
	analytics *fakeAnalytics
	tides     *app.TideServiceImpl
	flows     *app.FlowServiceImpl
	integrity *app.IntegrityServiceImpl
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	index := memory.NewIndexStore()
	docs := memory.NewDocumentStore()
	engine := hybrid.New(index, docs)
	analytics := newFakeAnalytics()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	resolver := app.NewResolver(engine)
	rollups := app.NewRollupMaintainer(analytics, logger)

	return &testEnv{
		engine:    engine,
		index:     index,
		docs:      docs,
		analytics: analytics,
		tides:     app.NewTideService(engine, resolver),
		flows:     app.NewFlowService(engine, resolver, rollups, logger),
		integrity: app.NewIntegrityService(engine, logger),
	}
}

// fakeAnalytics is an in-memory secondary.AnalyticsStore. With fail set
// every call errors, to exercise the best-effort path.
type fakeAnalytics struct {
	mu      sync.Mutex
	tides   map[string]*models.TideAnalytics
	rollups map[string]*models.UserActivityRollup
	fail    bool
}

func newFakeAnalytics() *fakeAnalytics {
	return &fakeAnalytics{
		tides:   make(map[string]*models.TideAnalytics),
		rollups: make(map[string]*models.UserActivityRollup),
	}
}

func (f *fakeAnalytics) GetTideAnalytics(ctx context.Context, tideID string) (*models.TideAnalytics, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("analytics store down")
	}
	a, ok := f.tides[tideID]
	if !ok {
		return nil, fault.NotFoundf("analytics for tide %s", tideID)
	}
	c := *a
	return &c, nil
}

func (f *fakeAnalytics) UpsertTideAnalytics(ctx context.Context, a *models.TideAnalytics) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("analytics store down")
	}
	c := *a
	f.tides[a.TideID] = &c
	return nil
}

func (f *fakeAnalytics) GetUserRollup(ctx context.Context, userID, date, period string) (*models.UserActivityRollup, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return nil, errors.New("analytics store down")
	}
	r, ok := f.rollups[userID+"/"+date+"/"+period]
	if !ok {
		return nil, fault.NotFoundf("rollup %s/%s/%s", userID, date, period)
	}
	c := *r
	return &c, nil
}

func (f *fakeAnalytics) UpsertUserRollup(ctx context.Context, r *models.UserActivityRollup) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("analytics store down")
	}
	c := *r
	f.rollups[r.UserID+"/"+r.Date+"/"+r.PeriodType] = &c
	return nil
}

var _ secondary.AnalyticsStore = (*fakeAnalytics)(nil)
