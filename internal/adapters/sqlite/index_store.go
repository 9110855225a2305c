// Package sqlite contains the SQLite implementations of the index-side
// secondary ports: the tide index store and the analytics store.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"

	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/ports/secondary"
)

// IndexStore implements secondary.IndexStore with SQLite.
type IndexStore struct {
	db *sql.DB
}

// NewIndexStore creates a new SQLite index store.
func NewIndexStore(db *sql.DB) *IndexStore {
	return &IndexStore{db: db}
}

const tideSelectCols = "id, user_id, name, flow_type, status, parent_tide_id, date_start, date_end, auto_created, doc_key, flow_count, total_duration, last_flow_at, created_at, updated_at"

// scanTideRow scans one index row.
func scanTideRow(scanner interface {
	Scan(dest ...any) error
}) (*secondary.TideRow, error) {
	var (
		parentID   sql.NullString
		dateStart  sql.NullString
		dateEnd    sql.NullString
		lastFlowAt sql.NullTime
	)

	row := &secondary.TideRow{}
	err := scanner.Scan(
		&row.ID, &row.UserID, &row.Name, &row.FlowType, &row.Status,
		&parentID, &dateStart, &dateEnd, &row.AutoCreated, &row.DocKey,
		&row.FlowCount, &row.TotalDuration, &lastFlowAt,
		&row.CreatedAt, &row.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	row.ParentTideID = parentID.String
	row.DateStart = dateStart.String
	row.DateEnd = dateEnd.String
	if lastFlowAt.Valid {
		t := lastFlowAt.Time
		row.LastFlowAt = &t
	}

	return row, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// isUniqueViolation reports whether err is a primary-key or unique
// constraint failure from the sqlite3 driver.
func isUniqueViolation(err error) bool {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return serr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey ||
			serr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}

// Insert persists a new index row. A duplicate id, or a duplicate
// (user, flow_type, date_start) for an auto-created tide, surfaces as
// fault.ErrConflict so the resolver can re-read the race winner.
func (s *IndexStore) Insert(ctx context.Context, row *secondary.TideRow) error {
	var lastFlowAt sql.NullTime
	if row.LastFlowAt != nil {
		lastFlowAt = sql.NullTime{Time: *row.LastFlowAt, Valid: true}
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO tides (id, user_id, name, flow_type, status, parent_tide_id, date_start, date_end, auto_created, doc_key, flow_count, total_duration, last_flow_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		row.ID, row.UserID, row.Name, row.FlowType, row.Status,
		nullable(row.ParentTideID), nullable(row.DateStart), nullable(row.DateEnd),
		row.AutoCreated, row.DocKey, row.FlowCount, row.TotalDuration,
		lastFlowAt, row.CreatedAt, row.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fault.Conflictf("tide %s", row.ID)
		}
		return fault.Storage(fault.StoreIndex, "insert", err)
	}

	return nil
}

// Lookup retrieves a row by id.
func (s *IndexStore) Lookup(ctx context.Context, id string) (*secondary.TideRow, error) {
	row, err := scanTideRow(s.db.QueryRowContext(ctx,
		"SELECT "+tideSelectCols+" FROM tides WHERE id = ?",
		id,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.NotFoundf("tide %s", id)
	}
	if err != nil {
		return nil, fault.Storage(fault.StoreIndex, "lookup", err)
	}

	return row, nil
}

// Query retrieves a user's rows matching the filters, newest first.
func (s *IndexStore) Query(ctx context.Context, userID string, filters secondary.TideFilters) ([]*secondary.TideRow, error) {
	query := "SELECT " + tideSelectCols + " FROM tides WHERE user_id = ?"
	args := []any{userID}

	if filters.FlowType != "" {
		query += " AND flow_type = ?"
		args = append(args, filters.FlowType)
	}
	if filters.ActiveOnly {
		query += " AND status = 'active'"
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fault.Storage(fault.StoreIndex, "query", err)
	}
	defer rows.Close()

	var result []*secondary.TideRow
	for rows.Next() {
		row, err := scanTideRow(rows)
		if err != nil {
			return nil, fault.Storage(fault.StoreIndex, "query scan", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Storage(fault.StoreIndex, "query rows", err)
	}

	return result, nil
}

// FindByRange retrieves the unique row for (user, flowType, dateStart).
func (s *IndexStore) FindByRange(ctx context.Context, userID, flowType, dateStart string) (*secondary.TideRow, error) {
	row, err := scanTideRow(s.db.QueryRowContext(ctx,
		"SELECT "+tideSelectCols+" FROM tides WHERE user_id = ? AND flow_type = ? AND date_start = ?",
		userID, flowType, dateStart,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fault.NotFoundf("%s tide starting %s", flowType, dateStart)
	}
	if err != nil {
		return nil, fault.Storage(fault.StoreIndex, "find by range", err)
	}

	return row, nil
}

// UpdateRow applies a partial update to an index row.
func (s *IndexStore) UpdateRow(ctx context.Context, id string, patch secondary.RowPatch) error {
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if patch.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *patch.Name)
	}
	if patch.Status != nil {
		sets = append(sets, "status = ?")
		args = append(args, *patch.Status)
	}
	if patch.ParentTideID != nil {
		sets = append(sets, "parent_tide_id = ?")
		args = append(args, nullable(*patch.ParentTideID))
	}
	if patch.FlowCount != nil {
		sets = append(sets, "flow_count = ?")
		args = append(args, *patch.FlowCount)
	}
	if patch.TotalDuration != nil {
		sets = append(sets, "total_duration = ?")
		args = append(args, *patch.TotalDuration)
	}
	if patch.LastFlowAt != nil {
		sets = append(sets, "last_flow_at = ?")
		args = append(args, *patch.LastFlowAt)
	}

	args = append(args, id)
	result, err := s.db.ExecContext(ctx,
		"UPDATE tides SET "+strings.Join(sets, ", ")+" WHERE id = ?",
		args...,
	)
	if err != nil {
		return fault.Storage(fault.StoreIndex, "update", err)
	}

	affected, _ := result.RowsAffected()
	if affected == 0 {
		return fault.NotFoundf("tide %s", id)
	}

	return nil
}

// DeleteRow removes an index row. Used only for create compensation.
func (s *IndexStore) DeleteRow(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM tides WHERE id = ?", id); err != nil {
		return fault.Storage(fault.StoreIndex, "delete", err)
	}
	return nil
}

// AllRows returns every index row, for integrity sweeps.
func (s *IndexStore) AllRows(ctx context.Context) ([]*secondary.TideRow, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+tideSelectCols+" FROM tides ORDER BY created_at")
	if err != nil {
		return nil, fault.Storage(fault.StoreIndex, "all rows", err)
	}
	defer rows.Close()

	var result []*secondary.TideRow
	for rows.Next() {
		row, err := scanTideRow(rows)
		if err != nil {
			return nil, fault.Storage(fault.StoreIndex, "all rows scan", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fault.Storage(fault.StoreIndex, "all rows", err)
	}

	return result, nil
}

var _ secondary.IndexStore = (*IndexStore)(nil)
