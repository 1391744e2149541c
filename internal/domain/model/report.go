package model

import (
	"errors"
	"time"
)

// Outcome records what a run did for a single pull request.
type Outcome struct {
	PRNumber int
	HeadSHA  string
	Action   SyncAction
	Summary  *ResultsSummary // Nil when the dashboard had no results.
	Err      error
}

// RunReport collects every outcome of one sync run.
type RunReport struct {
	RunID      string
	Repo       string
	StartedAt  time.Time
	FinishedAt time.Time
	Considered int // Open PRs listed.
	Selected   int // PRs inside the activity window.
	Outcomes   []Outcome

	// RunErr is set when the run aborted before any PR was processed,
	// e.g. the repository was unreachable with the configured token.
	RunErr error
	// DryRun marks runs that decided actions without writing comments.
	DryRun bool
}

// Count returns how many outcomes ended with the given action.
func (r *RunReport) Count(action SyncAction) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Action == action {
			n++
		}
	}
	return n
}

// Duration returns the wall time of the run.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Err joins the run error and every per-PR error in outcome order. Returns
// nil if the run and all PRs succeeded.
func (r *RunReport) Err() error {
	var errs []error
	if r.RunErr != nil {
		errs = append(errs, r.RunErr)
	}
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
	}
	return errors.Join(errs...)
}

// Succeeded reports whether the run completed and no outcome failed.
func (r *RunReport) Succeeded() bool {
	return r.RunErr == nil && r.Count(SyncActionFailed) == 0
}

// RunRecord is the persisted summary of a run, as read back from the journal.
type RunRecord struct {
	RunID      string
	Repo       string
	StartedAt  time.Time
	FinishedAt time.Time
	Considered int
	Selected   int
	Created    int
	Edited     int
	Unchanged  int
	Skipped    int
	Failed     int
	Error      string // Run and per-PR errors joined, empty on success.
	DryRun     bool
}

// Age returns how long ago the run finished relative to now.
func (r *RunRecord) Age(now time.Time) time.Duration {
	return now.Sub(r.FinishedAt)
}
