package app

import (
	"context"
	"log/slog"

	"github.com/example/tide/internal/ports/primary"
	"github.com/example/tide/internal/ports/secondary"
)

// IntegrityServiceImpl sweeps the hybrid engine's two stores and reports
// rows whose projection and document disagree.
type IntegrityServiceImpl struct {
	repo   secondary.TideRepository
	logger *slog.Logger
}

// NewIntegrityService creates an integrity service backed by the given
// repository.
func NewIntegrityService(repo secondary.TideRepository, logger *slog.Logger) *IntegrityServiceImpl {
	return &IntegrityServiceImpl{repo: repo, logger: logger}
}

// CheckIntegrity runs a full sweep and returns the findings. The sweep
// only reports; any repair is a separate, deliberate action.
func (s *IntegrityServiceImpl) CheckIntegrity(ctx context.Context) (*primary.IntegrityReport, error) {
	rows, issues, err := s.repo.CheckIntegrity(ctx)
	if err != nil {
		return nil, err
	}

	report := &primary.IntegrityReport{
		RowsChecked: rows,
		Issues:      make([]primary.IntegrityIssue, 0, len(issues)),
	}
	for _, issue := range issues {
		report.Issues = append(report.Issues, primary.IntegrityIssue{
			TideID: issue.TideID,
			UserID: issue.UserID,
			Kind:   issue.Kind,
			Detail: issue.Detail,
		})
	}
	if len(report.Issues) > 0 {
		s.logger.Warn("integrity sweep found issues",
			"rows_checked", report.RowsChecked,
			"issues", len(report.Issues))
	}
	return report, nil
}
