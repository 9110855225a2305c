// Package sqlite_test contains integration tests for the SQLite stores.
//
// # Schema Protection
//
// This file is the SINGLE POINT where the database schema is loaded for
// tests. All test setup uses db.GetSchemaSQL() so tests run against the
// authoritative schema, preventing drift between test and production.
package sqlite_test

import (
	"database/sql"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/example/tide/internal/db"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/secondary"
)

// setupTestDB creates an in-memory database with the authoritative schema.
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	testDB, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	// Use the authoritative schema from schema.go
	if _, err := testDB.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() {
		testDB.Close()
	})

	return testDB
}

// testRow builds a valid index row with overridable id.
func testRow(id, userID string) *secondary.TideRow {
	now := time.Now().UTC()
	return &secondary.TideRow{
		ID:        id,
		UserID:    userID,
		Name:      "Test Tide",
		FlowType:  models.FlowTypeProject,
		Status:    models.TideStatusActive,
		DocKey:    secondary.DocumentKey(userID, id),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// hierarchyRow builds an auto-created daily row for a date.
func hierarchyRow(id, userID, date string) *secondary.TideRow {
	row := testRow(id, userID)
	row.Name = "Daily Tide " + date
	row.FlowType = models.FlowTypeDaily
	row.DateStart = date
	row.DateEnd = date
	row.AutoCreated = true
	return row
}
