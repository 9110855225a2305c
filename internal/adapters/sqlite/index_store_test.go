package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/tide/internal/adapters/sqlite"
	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/secondary"
)

func TestIndexStoreInsertAndLookup(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))
	ctx := context.Background()

	row := testRow("tide-1", "user-1")
	if err := store.Insert(ctx, row); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	got, err := store.Lookup(ctx, "tide-1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if got.Name != "Test Tide" || got.UserID != "user-1" || got.FlowType != models.FlowTypeProject {
		t.Errorf("Lookup() = %+v, want inserted row back", got)
	}
	if got.DateStart != "" || got.ParentTideID != "" {
		t.Errorf("null columns should scan to empty strings, got start=%q parent=%q", got.DateStart, got.ParentTideID)
	}
}

func TestIndexStoreLookupNotFound(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))

	_, err := store.Lookup(context.Background(), "missing")
	if !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Lookup() error = %v, want ErrNotFound", err)
	}
}

func TestIndexStoreDuplicateIDConflicts(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Insert(ctx, testRow("tide-1", "user-1")); err != nil {
		t.Fatalf("first Insert() error = %v", err)
	}

	err := store.Insert(ctx, testRow("tide-1", "user-1"))
	if !errors.Is(err, fault.ErrConflict) {
		t.Errorf("duplicate Insert() error = %v, want ErrConflict", err)
	}
}

func TestIndexStoreAutoRangeUnique(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Insert(ctx, hierarchyRow("daily-1", "user-1", "2025-03-10")); err != nil {
		t.Fatalf("first Insert() error = %v", err)
	}

	// Same (user, flow_type, date_start) with a different id: the
	// partial unique index must reject the second auto-created row.
	err := store.Insert(ctx, hierarchyRow("daily-2", "user-1", "2025-03-10"))
	if !errors.Is(err, fault.ErrConflict) {
		t.Errorf("duplicate range Insert() error = %v, want ErrConflict", err)
	}

	// A different user owns an independent range.
	if err := store.Insert(ctx, hierarchyRow("daily-3", "user-2", "2025-03-10")); err != nil {
		t.Errorf("other user's Insert() error = %v", err)
	}
}

func TestIndexStoreQueryFilters(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))
	ctx := context.Background()

	project := testRow("tide-1", "user-1")
	if err := store.Insert(ctx, project); err != nil {
		t.Fatal(err)
	}
	paused := testRow("tide-2", "user-1")
	paused.Status = models.TideStatusPaused
	if err := store.Insert(ctx, paused); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, hierarchyRow("daily-1", "user-1", "2025-03-10")); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, testRow("tide-9", "user-2")); err != nil {
		t.Fatal(err)
	}

	all, err := store.Query(ctx, "user-1", secondary.TideFilters{})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(all) != 3 {
		t.Errorf("Query() returned %d rows, want 3 (user scoping)", len(all))
	}

	projects, err := store.Query(ctx, "user-1", secondary.TideFilters{FlowType: models.FlowTypeProject})
	if err != nil {
		t.Fatal(err)
	}
	if len(projects) != 2 {
		t.Errorf("flow type filter returned %d rows, want 2", len(projects))
	}

	active, err := store.Query(ctx, "user-1", secondary.TideFilters{ActiveOnly: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(active) != 2 {
		t.Errorf("active filter returned %d rows, want 2", len(active))
	}
}

func TestIndexStoreFindByRange(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Insert(ctx, hierarchyRow("daily-1", "user-1", "2025-03-10")); err != nil {
		t.Fatal(err)
	}

	got, err := store.FindByRange(ctx, "user-1", models.FlowTypeDaily, "2025-03-10")
	if err != nil {
		t.Fatalf("FindByRange() error = %v", err)
	}
	if got.ID != "daily-1" {
		t.Errorf("FindByRange() id = %s, want daily-1", got.ID)
	}

	_, err = store.FindByRange(ctx, "user-1", models.FlowTypeWeekly, "2025-03-10")
	if !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("absent range error = %v, want ErrNotFound", err)
	}
}

func TestIndexStoreUpdateRow(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Insert(ctx, testRow("tide-1", "user-1")); err != nil {
		t.Fatal(err)
	}

	status := models.TideStatusPaused
	count := 3
	duration := 75
	lastFlow := time.Now().UTC().Truncate(time.Second)
	err := store.UpdateRow(ctx, "tide-1", secondary.RowPatch{
		Status:        &status,
		FlowCount:     &count,
		TotalDuration: &duration,
		LastFlowAt:    &lastFlow,
	})
	if err != nil {
		t.Fatalf("UpdateRow() error = %v", err)
	}

	got, err := store.Lookup(ctx, "tide-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != status || got.FlowCount != 3 || got.TotalDuration != 75 {
		t.Errorf("UpdateRow() left row %+v", got)
	}
	if got.LastFlowAt == nil || !got.LastFlowAt.Equal(lastFlow) {
		t.Errorf("LastFlowAt = %v, want %v", got.LastFlowAt, lastFlow)
	}
	// Untouched fields survive a partial patch.
	if got.Name != "Test Tide" {
		t.Errorf("Name = %q, want unchanged", got.Name)
	}

	err = store.UpdateRow(ctx, "missing", secondary.RowPatch{Status: &status})
	if !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("UpdateRow(missing) error = %v, want ErrNotFound", err)
	}
}

func TestIndexStoreDeleteRow(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Insert(ctx, testRow("tide-1", "user-1")); err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteRow(ctx, "tide-1"); err != nil {
		t.Fatalf("DeleteRow() error = %v", err)
	}
	if _, err := store.Lookup(ctx, "tide-1"); !errors.Is(err, fault.ErrNotFound) {
		t.Errorf("Lookup() after delete error = %v, want ErrNotFound", err)
	}

	// Deleting an absent row is not an error (compensation path).
	if err := store.DeleteRow(ctx, "tide-1"); err != nil {
		t.Errorf("second DeleteRow() error = %v", err)
	}
}

func TestIndexStoreAllRows(t *testing.T) {
	store := sqlite.NewIndexStore(setupTestDB(t))
	ctx := context.Background()

	if err := store.Insert(ctx, testRow("tide-1", "user-1")); err != nil {
		t.Fatal(err)
	}
	if err := store.Insert(ctx, testRow("tide-2", "user-2")); err != nil {
		t.Fatal(err)
	}

	rows, err := store.AllRows(ctx)
	if err != nil {
		t.Fatalf("AllRows() error = %v", err)
	}
	if len(rows) != 2 {
		t.Errorf("AllRows() returned %d rows, want 2 (all users)", len(rows))
	}
}
