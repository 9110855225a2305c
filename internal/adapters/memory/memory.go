// Package memory contains in-memory implementations of both store
// halves. They satisfy the same contracts as the SQLite and Badger
// adapters and back tests and throwaway environments.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/secondary"
)

// IndexStore implements secondary.IndexStore with a mutex-guarded map.
type IndexStore struct {
	mu   sync.RWMutex
	rows map[string]*secondary.TideRow
}

// NewIndexStore creates an empty in-memory index store.
func NewIndexStore() *IndexStore {
	return &IndexStore{rows: make(map[string]*secondary.TideRow)}
}

func cloneRow(r *secondary.TideRow) *secondary.TideRow {
	c := *r
	if r.LastFlowAt != nil {
		t := *r.LastFlowAt
		c.LastFlowAt = &t
	}
	return &c
}

// Insert persists a new row, enforcing the same uniqueness the SQLite
// schema does: unique id, and one auto-created tide per (user,
// flow_type, date_start).
func (s *IndexStore) Insert(ctx context.Context, row *secondary.TideRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.rows[row.ID]; ok {
		return fault.Conflictf("tide %s", row.ID)
	}
	if row.AutoCreated {
		for _, existing := range s.rows {
			if existing.AutoCreated &&
				existing.UserID == row.UserID &&
				existing.FlowType == row.FlowType &&
				existing.DateStart == row.DateStart {
				return fault.Conflictf("tide %s", row.ID)
			}
		}
	}

	s.rows[row.ID] = cloneRow(row)
	return nil
}

// Lookup retrieves a row by id.
func (s *IndexStore) Lookup(ctx context.Context, id string) (*secondary.TideRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row, ok := s.rows[id]
	if !ok {
		return nil, fault.NotFoundf("tide %s", id)
	}
	return cloneRow(row), nil
}

// Query retrieves a user's rows matching the filters, newest first.
func (s *IndexStore) Query(ctx context.Context, userID string, filters secondary.TideFilters) ([]*secondary.TideRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*secondary.TideRow
	for _, row := range s.rows {
		if row.UserID != userID {
			continue
		}
		if filters.FlowType != "" && row.FlowType != filters.FlowType {
			continue
		}
		if filters.ActiveOnly && row.Status != models.TideStatusActive {
			continue
		}
		result = append(result, cloneRow(row))
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})

	return result, nil
}

// FindByRange retrieves the unique row for (user, flowType, dateStart).
func (s *IndexStore) FindByRange(ctx context.Context, userID, flowType, dateStart string) (*secondary.TideRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, row := range s.rows {
		if row.UserID == userID && row.FlowType == flowType && row.DateStart == dateStart {
			return cloneRow(row), nil
		}
	}
	return nil, fault.NotFoundf("%s tide starting %s", flowType, dateStart)
}

// UpdateRow applies a partial update to a row.
func (s *IndexStore) UpdateRow(ctx context.Context, id string, patch secondary.RowPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, ok := s.rows[id]
	if !ok {
		return fault.NotFoundf("tide %s", id)
	}

	if patch.Name != nil {
		row.Name = *patch.Name
	}
	if patch.Status != nil {
		row.Status = *patch.Status
	}
	if patch.ParentTideID != nil {
		row.ParentTideID = *patch.ParentTideID
	}
	if patch.FlowCount != nil {
		row.FlowCount = *patch.FlowCount
	}
	if patch.TotalDuration != nil {
		row.TotalDuration = *patch.TotalDuration
	}
	if patch.LastFlowAt != nil {
		t := *patch.LastFlowAt
		row.LastFlowAt = &t
	}
	row.UpdatedAt = time.Now().UTC()

	return nil
}

// DeleteRow removes a row. Absent rows are a no-op.
func (s *IndexStore) DeleteRow(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rows, id)
	return nil
}

// AllRows returns every row, oldest first.
func (s *IndexStore) AllRows(ctx context.Context) ([]*secondary.TideRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*secondary.TideRow, 0, len(s.rows))
	for _, row := range s.rows {
		result = append(result, cloneRow(row))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result, nil
}

// DocumentStore implements secondary.DocumentStore with a map of blobs.
type DocumentStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

// NewDocumentStore creates an empty in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{blobs: make(map[string][]byte)}
}

// Put writes a blob. Overwrites are idempotent.
func (s *DocumentStore) Put(ctx context.Context, key string, blob []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), blob...)
	return nil
}

// Get reads a blob, or fault.ErrNotFound when the key is absent.
func (s *DocumentStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	blob, ok := s.blobs[key]
	if !ok {
		return nil, fault.NotFoundf("document %s", key)
	}
	return append([]byte(nil), blob...), nil
}

// Delete removes a blob. Absent keys are a no-op.
func (s *DocumentStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

var (
	_ secondary.IndexStore    = (*IndexStore)(nil)
	_ secondary.DocumentStore = (*DocumentStore)(nil)
)
