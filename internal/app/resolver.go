// Package app contains the services implementing the primary ports:
// tide CRUD, hierarchical flow distribution, rollup maintenance and
// integrity checks. Services hold no mutable state between calls; every
// operation is a pure function of its inputs plus store reads.
package app

import (
	"context"
	"errors"
	"time"

	"github.com/example/tide/internal/core/hierarchy"
	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/secondary"
)

// Resolver performs idempotent get-or-create of the hierarchy tide
// covering an instant. The race between concurrent creates of the same
// (user, granularity, date_start) is resolved by the deterministic tide
// id plus the index store's per-row uniqueness: the loser's create
// fails with a conflict and is converted into a re-read of the winner.
type Resolver struct {
	repo secondary.TideRepository
}

// NewResolver creates a resolver over the hybrid engine.
func NewResolver(repo secondary.TideRepository) *Resolver {
	return &Resolver{repo: repo}
}

// GetOrCreate resolves the tide for (user, instant, granularity),
// creating it with auto_created=true when absent. Two calls with the
// same inputs always return the same tide id.
func (r *Resolver) GetOrCreate(ctx context.Context, userID string, instant time.Time, timezone string, g hierarchy.Granularity) (*secondary.TideRow, error) {
	rng, err := hierarchy.ComputeRange(instant, timezone, g)
	if err != nil {
		return nil, err
	}

	row, err := r.repo.FindByRange(ctx, userID, string(g), rng.Start)
	if err == nil {
		return row, nil
	}
	if !errors.Is(err, fault.ErrNotFound) {
		return nil, err
	}

	now := time.Now().UTC()
	t := &models.Tide{
		ID:            hierarchy.TideID(userID, g, rng.Start),
		UserID:        userID,
		Name:          hierarchy.DisplayName(g, rng),
		FlowType:      string(g),
		Status:        models.TideStatusActive,
		DateStart:     rng.Start,
		DateEnd:       rng.End,
		AutoCreated:   true,
		CreatedAt:     now,
		UpdatedAt:     now,
		FlowSessions:  []models.FlowSession{},
		EnergyUpdates: []models.EnergyUpdate{},
		TaskLinks:     []models.TaskLink{},
	}

	err = r.repo.Create(ctx, t)
	if err != nil && !errors.Is(err, fault.ErrConflict) {
		return nil, err
	}

	// Re-read in both outcomes: after a conflict this returns the
	// concurrent winner, after a successful create our own row.
	return r.repo.FindByRange(ctx, userID, string(g), rng.Start)
}
