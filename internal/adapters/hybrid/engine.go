// Package hybrid composes the index store and the document store into
// the single tide repository contract, and owns the consistency policy
// between them: document writes always precede index writes, the
// document is the authoritative history, and the index is a derived
// projection that may briefly lag.
package hybrid

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/example/tide/internal/fault"
	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/secondary"
)

// Engine implements secondary.TideRepository over an IndexStore and a
// DocumentStore. Stateless between calls; no internal retries — retry
// policy belongs to the caller.
type Engine struct {
	index secondary.IndexStore
	docs  secondary.DocumentStore
}

// New creates a hybrid persistence engine over the two stores.
func New(index secondary.IndexStore, docs secondary.DocumentStore) *Engine {
	return &Engine{index: index, docs: docs}
}

func marshalTide(t *models.Tide) ([]byte, error) {
	blob, err := json.Marshal(t)
	if err != nil {
		return nil, fault.Storage(fault.StoreDocument, "marshal", err)
	}
	return blob, nil
}

func unmarshalTide(blob []byte, key string) (*models.Tide, error) {
	var t models.Tide
	if err := json.Unmarshal(blob, &t); err != nil {
		return nil, fault.Storage(fault.StoreDocument, "unmarshal "+key, err)
	}
	return &t, nil
}

// rowProjection derives the denormalized index subset from a document.
func rowProjection(t *models.Tide) secondary.RowPatch {
	return secondary.RowPatch{
		Name:          &t.Name,
		Status:        &t.Status,
		ParentTideID:  &t.ParentTideID,
		FlowCount:     &t.FlowCount,
		TotalDuration: &t.TotalDuration,
		LastFlowAt:    t.LastFlowAt,
	}
}

// Create writes the document first, then the index row. When the index
// insert fails with anything but a conflict, the document is deleted
// best-effort; an orphaned blob that survives the compensation is
// caught by CheckIntegrity rather than repaired here. On a conflict the
// blob is left in place: the key now belongs to the race winner.
func (e *Engine) Create(ctx context.Context, t *models.Tide) error {
	blob, err := marshalTide(t)
	if err != nil {
		return err
	}

	key := secondary.DocumentKey(t.UserID, t.ID)
	if err := e.docs.Put(ctx, key, blob); err != nil {
		return err
	}

	row := &secondary.TideRow{
		ID:            t.ID,
		UserID:        t.UserID,
		Name:          t.Name,
		FlowType:      t.FlowType,
		Status:        t.Status,
		ParentTideID:  t.ParentTideID,
		DateStart:     t.DateStart,
		DateEnd:       t.DateEnd,
		AutoCreated:   t.AutoCreated,
		DocKey:        key,
		FlowCount:     t.FlowCount,
		TotalDuration: t.TotalDuration,
		LastFlowAt:    t.LastFlowAt,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}

	if err := e.index.Insert(ctx, row); err != nil {
		if errors.Is(err, fault.ErrConflict) {
			return err
		}
		_ = e.docs.Delete(ctx, key)
		if _, ok := fault.IsStorage(err); ok {
			return err
		}
		return fault.Storage(fault.StoreIndex, "insert after document write", err)
	}

	return nil
}

// Get retrieves the full tide. Ownership is enforced here: a tide
// owned by another user fails with fault.ErrUnauthorized. An index row
// whose document is missing is a data-integrity StorageError, never a
// NotFound.
func (e *Engine) Get(ctx context.Context, id, userID string) (*models.Tide, error) {
	row, err := e.index.Lookup(ctx, id)
	if err != nil {
		return nil, err
	}
	if row.UserID != userID {
		return nil, fmt.Errorf("%w: tide %s", fault.ErrUnauthorized, id)
	}

	blob, err := e.docs.Get(ctx, row.DocKey)
	if errors.Is(err, fault.ErrNotFound) {
		return nil, fault.Storage(fault.StoreDocument, "integrity",
			fmt.Errorf("index row %s has no document at %s", row.ID, row.DocKey))
	}
	if err != nil {
		return nil, err
	}

	t, err := unmarshalTide(blob, row.DocKey)
	if err != nil {
		return nil, err
	}
	if t.ID != row.ID || t.UserID != row.UserID {
		return nil, fault.Storage(fault.StoreDocument, "integrity",
			fmt.Errorf("document %s describes %s/%s, index row says %s/%s",
				row.DocKey, t.UserID, t.ID, row.UserID, row.ID))
	}

	return t, nil
}

// List returns the summary projection straight from the index.
func (e *Engine) List(ctx context.Context, userID string, filters secondary.TideFilters) ([]*secondary.TideRow, error) {
	return e.index.Query(ctx, userID, filters)
}

// FindByRange probes the index for a hierarchy tide.
func (e *Engine) FindByRange(ctx context.Context, userID, flowType, dateStart string) (*secondary.TideRow, error) {
	return e.index.FindByRange(ctx, userID, flowType, dateStart)
}

// mutate is the whole-document read-modify-write cycle shared by every
// update: load, apply, write document, then project into the index. A
// crash between the two writes leaves the document ahead of the index,
// by policy. The mutator returns false to skip both writes.
func (e *Engine) mutate(ctx context.Context, id, userID string, fn func(t *models.Tide) (bool, error)) (*models.Tide, error) {
	t, err := e.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	changed, err := fn(t)
	if err != nil {
		return nil, err
	}
	if !changed {
		return t, nil
	}
	t.UpdatedAt = time.Now().UTC()

	blob, err := marshalTide(t)
	if err != nil {
		return nil, err
	}
	if err := e.docs.Put(ctx, secondary.DocumentKey(userID, id), blob); err != nil {
		return nil, err
	}

	if err := e.index.UpdateRow(ctx, id, rowProjection(t)); err != nil {
		return nil, err
	}

	return t, nil
}

// Update merges the patch into the document.
func (e *Engine) Update(ctx context.Context, id, userID string, patch secondary.TidePatch) (*models.Tide, error) {
	return e.mutate(ctx, id, userID, func(t *models.Tide) (bool, error) {
		if patch.Name != nil {
			t.Name = *patch.Name
		}
		if patch.Description != nil {
			t.Description = *patch.Description
		}
		if patch.Status != nil {
			t.Status = *patch.Status
		}
		if patch.ParentTideID != nil {
			t.ParentTideID = *patch.ParentTideID
		}
		return true, nil
	})
}

// SetParentIfUnset establishes the lazy parent link from the child
// side. A tide that already has a parent is left untouched.
func (e *Engine) SetParentIfUnset(ctx context.Context, id, userID, parentID string) error {
	_, err := e.mutate(ctx, id, userID, func(t *models.Tide) (bool, error) {
		if t.ParentTideID != "" {
			return false, nil
		}
		t.ParentTideID = parentID
		return true, nil
	})
	return err
}

// AppendSession appends one session and bumps the denormalized
// counters. An id already present means a retried append; it is
// suppressed and the tide returned unchanged.
func (e *Engine) AppendSession(ctx context.Context, id, userID string, s models.FlowSession) (*models.Tide, error) {
	return e.mutate(ctx, id, userID, func(t *models.Tide) (bool, error) {
		for i := range t.FlowSessions {
			if t.FlowSessions[i].ID == s.ID {
				return false, nil
			}
		}
		s.TideID = t.ID
		t.FlowSessions = append(t.FlowSessions, s)
		t.FlowCount++
		t.TotalDuration += s.Duration
		if t.LastFlowAt == nil || s.StartedAt.After(*t.LastFlowAt) {
			at := s.StartedAt
			t.LastFlowAt = &at
		}
		return true, nil
	})
}

// AppendEnergy appends one energy sample.
func (e *Engine) AppendEnergy(ctx context.Context, id, userID string, u models.EnergyUpdate) (*models.Tide, error) {
	return e.mutate(ctx, id, userID, func(t *models.Tide) (bool, error) {
		for i := range t.EnergyUpdates {
			if t.EnergyUpdates[i].ID == u.ID {
				return false, nil
			}
		}
		u.TideID = t.ID
		t.EnergyUpdates = append(t.EnergyUpdates, u)
		return true, nil
	})
}

// AppendTask appends one task link.
func (e *Engine) AppendTask(ctx context.Context, id, userID string, l models.TaskLink) (*models.Tide, error) {
	return e.mutate(ctx, id, userID, func(t *models.Tide) (bool, error) {
		for i := range t.TaskLinks {
			if t.TaskLinks[i].ID == l.ID {
				return false, nil
			}
		}
		l.TideID = t.ID
		t.TaskLinks = append(t.TaskLinks, l)
		return true, nil
	})
}

// RemoveTask removes a task link by id. Returns false when no such
// link exists; that is not an error.
func (e *Engine) RemoveTask(ctx context.Context, id, userID, linkID string) (bool, error) {
	removed := false
	_, err := e.mutate(ctx, id, userID, func(t *models.Tide) (bool, error) {
		for i := range t.TaskLinks {
			if t.TaskLinks[i].ID == linkID {
				t.TaskLinks = append(t.TaskLinks[:i], t.TaskLinks[i+1:]...)
				removed = true
				return true, nil
			}
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return removed, nil
}

// CheckIntegrity sweeps the index and verifies, for every row, that its
// key resolves to a document describing the same tide and owner and
// that the denormalized counters match the document-derived sums.
// Issues are reported, never repaired.
func (e *Engine) CheckIntegrity(ctx context.Context) (int, []secondary.IntegrityIssue, error) {
	rows, err := e.index.AllRows(ctx)
	if err != nil {
		return 0, nil, err
	}

	var issues []secondary.IntegrityIssue
	for _, row := range rows {
		blob, err := e.docs.Get(ctx, row.DocKey)
		if errors.Is(err, fault.ErrNotFound) {
			issues = append(issues, secondary.IntegrityIssue{
				TideID: row.ID,
				UserID: row.UserID,
				Kind:   "missing_document",
				Detail: fmt.Sprintf("no document at %s", row.DocKey),
			})
			continue
		}
		if err != nil {
			return 0, nil, err
		}

		t, err := unmarshalTide(blob, row.DocKey)
		if err != nil {
			return 0, nil, err
		}

		if t.ID != row.ID || t.UserID != row.UserID {
			issues = append(issues, secondary.IntegrityIssue{
				TideID: row.ID,
				UserID: row.UserID,
				Kind:   "identity_mismatch",
				Detail: fmt.Sprintf("document %s describes %s/%s", row.DocKey, t.UserID, t.ID),
			})
			continue
		}

		totalDuration := 0
		for i := range t.FlowSessions {
			totalDuration += t.FlowSessions[i].Duration
		}
		if row.FlowCount != len(t.FlowSessions) || row.TotalDuration != totalDuration {
			issues = append(issues, secondary.IntegrityIssue{
				TideID: row.ID,
				UserID: row.UserID,
				Kind:   "counter_drift",
				Detail: fmt.Sprintf("index says %d sessions / %d min, document has %d / %d",
					row.FlowCount, row.TotalDuration, len(t.FlowSessions), totalDuration),
			})
		}
	}

	return len(rows), issues, nil
}

var _ secondary.TideRepository = (*Engine)(nil)
