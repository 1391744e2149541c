package driven

import (
	"context"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

// RunStore defines the driven port for the run journal.
type RunStore interface {
	// SaveRun persists a finished run and all of its outcomes.
	SaveRun(ctx context.Context, report *model.RunReport) error
	// LatestRun returns the most recently started run, or nil, nil if none exist.
	LatestRun(ctx context.Context) (*model.RunRecord, error)
	// OutcomesForRun returns the persisted outcomes of a run ordered by PR number.
	OutcomesForRun(ctx context.Context, runID string) ([]model.Outcome, error)
}
