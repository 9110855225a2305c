package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tide/internal/models"
	"github.com/example/tide/internal/ports/primary"
	"github.com/example/tide/internal/ports/secondary"
)

func TestCheckIntegrityReport(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	a, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-1", Name: "healthy", FlowType: models.FlowTypeProject,
	})
	require.NoError(t, err)
	b, err := env.tides.CreateTide(ctx, primary.CreateTideRequest{
		UserID: "user-1", Name: "orphaned", FlowType: models.FlowTypeProject,
	})
	require.NoError(t, err)
	_ = a

	report, err := env.integrity.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RowsChecked)
	assert.Empty(t, report.Issues)

	// Orphan one row and sweep again.
	require.NoError(t, env.docs.Delete(ctx, secondary.DocumentKey("user-1", b.ID)))

	report, err = env.integrity.CheckIntegrity(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.RowsChecked)
	require.Len(t, report.Issues, 1)
	assert.Equal(t, b.ID, report.Issues[0].TideID)
	assert.Equal(t, "missing_document", report.Issues[0].Kind)
}
