// Package secondary defines the secondary ports (driven adapters) for
// the application: the two halves of the hybrid persistence engine and
// the composed tide repository contract built on top of them.
package secondary

import (
	"context"
	"fmt"
	"time"

	"github.com/example/tide/internal/models"
)

// TideRow is a tide as stored in the index: the user-scoped summary
// projection plus denormalized counters. The full nested history lives
// in the document store under DocKey.
type TideRow struct {
	ID           string
	UserID       string
	Name         string
	FlowType     string
	Status       string
	ParentTideID string // Empty string means null
	DateStart    string // Empty string means null (project/seasonal)
	DateEnd      string // Empty string means null
	AutoCreated  bool
	DocKey       string

	FlowCount     int
	TotalDuration int // minutes
	LastFlowAt    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TideFilters contains filter options for querying the index.
type TideFilters struct {
	FlowType   string
	ActiveOnly bool
}

// RowPatch is a partial index-row update. Nil fields are left untouched.
type RowPatch struct {
	Name          *string
	Status        *string
	ParentTideID  *string
	FlowCount     *int
	TotalDuration *int
	LastFlowAt    *time.Time
}

// IndexStore is the relational half: fast, user-scoped, filterable rows
// pointing at document keys. Implementations must enforce per-row
// uniqueness on the tide id so concurrent creates of the same
// deterministic id collapse into one winner and one fault.ErrConflict.
type IndexStore interface {
	// Insert persists a new row. Returns fault.ErrConflict when the id
	// already exists.
	Insert(ctx context.Context, row *TideRow) error

	// Lookup retrieves a row by id. Returns fault.ErrNotFound when
	// absent. Ownership is enforced by the hybrid engine, which is the
	// only caller that sees rows across users.
	Lookup(ctx context.Context, id string) (*TideRow, error)

	// Query retrieves a user's rows matching the filters, newest first.
	Query(ctx context.Context, userID string, filters TideFilters) ([]*TideRow, error)

	// FindByRange retrieves the unique row for (user, flowType,
	// dateStart), the get-or-create probe. Returns fault.ErrNotFound
	// when no such tide exists yet.
	FindByRange(ctx context.Context, userID, flowType, dateStart string) (*TideRow, error)

	// UpdateRow applies a partial update. Returns fault.ErrNotFound
	// when the row is absent.
	UpdateRow(ctx context.Context, id string, patch RowPatch) error

	// DeleteRow removes a row. Used only for create compensation.
	DeleteRow(ctx context.Context, id string) error

	// AllRows returns every row, for integrity sweeps.
	AllRows(ctx context.Context) ([]*TideRow, error)
}

// DocumentStore is the blob half: key to JSON document, no query
// capability, whole-blob read-modify-write only.
type DocumentStore interface {
	// Put writes a blob. Overwrites are idempotent.
	Put(ctx context.Context, key string, blob []byte) error

	// Get reads a blob. Returns fault.ErrNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a blob. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error
}

// DocumentKey derives the blob key for a tide. Deterministic so any
// reader can locate the document from the index row alone.
func DocumentKey(userID, tideID string) string {
	return fmt.Sprintf("tides/%s/%s", userID, tideID)
}

// TidePatch is a partial document update applied by Update. Nil fields
// are left untouched.
type TidePatch struct {
	Name         *string
	Description  *string
	Status       *string
	ParentTideID *string
}

// TideRepository is the single tide CRUD contract the hybrid
// persistence engine presents over both stores. Ownership is enforced
// here: every operation is scoped to the calling user.
type TideRepository interface {
	// Create persists a new tide: document first, then index row.
	// Returns fault.ErrConflict when the id is already taken.
	Create(ctx context.Context, t *models.Tide) error

	// Get retrieves the full tide, nested history included. Returns
	// fault.ErrUnauthorized when the tide belongs to another user. An
	// index row whose document is missing is a StorageError, not a
	// NotFound.
	Get(ctx context.Context, id, userID string) (*models.Tide, error)

	// List retrieves the summary projection only, never documents.
	List(ctx context.Context, userID string, filters TideFilters) ([]*TideRow, error)

	// FindByRange probes the index for a hierarchy tide.
	FindByRange(ctx context.Context, userID, flowType, dateStart string) (*TideRow, error)

	// Update merges the patch into the document, then projects the
	// denormalized subset into the index row (document before index).
	Update(ctx context.Context, id, userID string, patch TidePatch) (*models.Tide, error)

	// SetParentIfUnset establishes the lazy parent link. A no-op when
	// the tide already has a parent.
	SetParentIfUnset(ctx context.Context, id, userID, parentID string) error

	// AppendSession appends one session and bumps the counters. A
	// session id already present in the tide is suppressed (retry
	// de-duplication) and returns the tide unchanged.
	AppendSession(ctx context.Context, id, userID string, s models.FlowSession) (*models.Tide, error)

	// AppendEnergy appends one energy sample.
	AppendEnergy(ctx context.Context, id, userID string, u models.EnergyUpdate) (*models.Tide, error)

	// AppendTask appends one task link.
	AppendTask(ctx context.Context, id, userID string, l models.TaskLink) (*models.Tide, error)

	// RemoveTask removes a task link by id. Returns false, not an
	// error, when no such link exists.
	RemoveTask(ctx context.Context, id, userID, linkID string) (bool, error)

	// CheckIntegrity verifies that every index row's key resolves to a
	// document describing the same id and owner and that denormalized
	// counters match document-derived sums. Returns the number of rows
	// swept and the issues found; reports, never repairs.
	CheckIntegrity(ctx context.Context) (int, []IntegrityIssue, error)
}

// IntegrityIssue describes one violated cross-store invariant.
type IntegrityIssue struct {
	TideID string
	UserID string
	Kind   string // "missing_document", "identity_mismatch", "counter_drift"
	Detail string
}

// AnalyticsStore persists the derived aggregates. All writes are
// last-writer-wins upserts; the maintainer owns the math.
type AnalyticsStore interface {
	// GetTideAnalytics reads the per-tide aggregate. Returns
	// fault.ErrNotFound before the first session.
	GetTideAnalytics(ctx context.Context, tideID string) (*models.TideAnalytics, error)

	// UpsertTideAnalytics writes the per-tide aggregate.
	UpsertTideAnalytics(ctx context.Context, a *models.TideAnalytics) error

	// GetUserRollup reads one (user, date, period) rollup. Returns
	// fault.ErrNotFound when absent.
	GetUserRollup(ctx context.Context, userID, date, period string) (*models.UserActivityRollup, error)

	// UpsertUserRollup writes one rollup row.
	UpsertUserRollup(ctx context.Context, r *models.UserActivityRollup) error
}
