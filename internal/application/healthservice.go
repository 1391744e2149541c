package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
	"github.com/ericfisherdev/ctbot/internal/domain/port/driven"
)

var (
	// ErrNoRuns is returned when the journal holds no runs yet.
	ErrNoRuns = errors.New("no sync runs recorded")
	// ErrStaleRun is returned when the latest run finished too long ago.
	ErrStaleRun = errors.New("latest sync run is stale")
	// ErrRunFailed is returned when the latest run recorded errors.
	ErrRunFailed = errors.New("latest sync run failed")
)

// HealthService judges bot health from the run journal.
type HealthService struct {
	runStore driven.RunStore
	maxAge   time.Duration
	now      func() time.Time
}

// NewHealthService creates a HealthService that accepts runs finished within maxAge.
func NewHealthService(runStore driven.RunStore, maxAge time.Duration) *HealthService {
	return &HealthService{
		runStore: runStore,
		maxAge:   maxAge,
		now:      time.Now,
	}
}

// Check returns the latest run if it is recent and succeeded. Otherwise it
// returns the run (when one exists) together with the reason it is unhealthy.
func (s *HealthService) Check(ctx context.Context) (*model.RunRecord, error) {
	run, err := s.runStore.LatestRun(ctx)
	if err != nil {
		return nil, fmt.Errorf("read latest run: %w", err)
	}
	if run == nil {
		return nil, ErrNoRuns
	}

	if age := run.Age(s.now()); age > s.maxAge {
		return run, fmt.Errorf("%w: finished %s ago (max %s)", ErrStaleRun, age.Round(time.Second), s.maxAge)
	}

	switch {
	case run.Failed > 0:
		return run, fmt.Errorf("%w: %d pull requests failed", ErrRunFailed, run.Failed)
	case run.Error != "":
		return run, fmt.Errorf("%w: %s", ErrRunFailed, run.Error)
	}

	return run, nil
}

// FailedOutcomes returns the outcomes of runID that ended in failure, ordered
// by PR number.
func (s *HealthService) FailedOutcomes(ctx context.Context, runID string) ([]model.Outcome, error) {
	outcomes, err := s.runStore.OutcomesForRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("read outcomes for run %s: %w", runID, err)
	}

	var failed []model.Outcome
	for _, o := range outcomes {
		if o.Action == model.SyncActionFailed {
			failed = append(failed, o)
		}
	}
	return failed, nil
}
