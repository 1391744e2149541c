package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
	"github.com/ericfisherdev/ctbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.RunStore = (*RunRepo)(nil)

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// RunRepo is the SQLite implementation of the RunStore port interface.
type RunRepo struct {
	db *DB
}

// NewRunRepo creates a new RunRepo backed by the given DB.
func NewRunRepo(db *DB) *RunRepo {
	return &RunRepo{db: db}
}

// SaveRun inserts the run summary and every outcome in a single transaction.
// Saving the same run ID twice replaces the earlier record.
func (r *RunRepo) SaveRun(ctx context.Context, report *model.RunReport) error {
	const deleteRun = `DELETE FROM sync_runs WHERE run_id = ?`

	const insertRun = `
		INSERT INTO sync_runs (
			run_id, repo, started_at, finished_at, considered, selected,
			created, edited, unchanged, skipped, failed, error, dry_run
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	const insertOutcome = `
		INSERT INTO sync_outcomes (run_id, pr_number, head_sha, action, error)
		VALUES (?, ?, ?, ?, ?)`

	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.ExecContext(ctx, deleteRun, report.RunID); err != nil {
		return fmt.Errorf("clear run %s: %w", report.RunID, err)
	}

	_, err = tx.ExecContext(ctx, insertRun,
		report.RunID,
		report.Repo,
		formatTime(report.StartedAt),
		formatTime(report.FinishedAt),
		report.Considered,
		report.Selected,
		report.Count(model.SyncActionCreated),
		report.Count(model.SyncActionEdited),
		report.Count(model.SyncActionUnchanged),
		report.Count(model.SyncActionSkipped),
		report.Count(model.SyncActionFailed),
		errorText(report.Err()),
		report.DryRun,
	)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", report.RunID, err)
	}

	for _, o := range report.Outcomes {
		_, err := tx.ExecContext(ctx, insertOutcome,
			report.RunID, o.PRNumber, o.HeadSHA, string(o.Action), errorText(o.Err),
		)
		if err != nil {
			return fmt.Errorf("insert outcome for PR #%d: %w", o.PRNumber, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %s: %w", report.RunID, err)
	}

	return nil
}

// LatestRun returns the most recently started run. Returns nil, nil if the
// journal is empty.
func (r *RunRepo) LatestRun(ctx context.Context) (*model.RunRecord, error) {
	const query = `
		SELECT run_id, repo, started_at, finished_at, considered, selected,
		       created, edited, unchanged, skipped, failed, error, dry_run
		FROM sync_runs
		ORDER BY started_at DESC, rowid DESC
		LIMIT 1`

	rec, err := scanRunRecord(r.db.Reader.QueryRowContext(ctx, query))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get latest run: %w", err)
	}

	return rec, nil
}

// OutcomesForRun returns the outcomes recorded for a run, ordered by PR number.
func (r *RunRepo) OutcomesForRun(ctx context.Context, runID string) ([]model.Outcome, error) {
	const query = `
		SELECT pr_number, head_sha, action, error
		FROM sync_outcomes
		WHERE run_id = ?
		ORDER BY pr_number ASC`

	rows, err := r.db.Reader.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("list outcomes for run %s: %w", runID, err)
	}
	defer rows.Close()

	var outcomes []model.Outcome
	for rows.Next() {
		var (
			o      model.Outcome
			action string
			errMsg string
		)
		if err := rows.Scan(&o.PRNumber, &o.HeadSHA, &action, &errMsg); err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		o.Action = model.SyncAction(action)
		if errMsg != "" {
			o.Err = errors.New(errMsg)
		}
		outcomes = append(outcomes, o)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}

	return outcomes, nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRunRecord(s scanner) (*model.RunRecord, error) {
	var (
		rec                 model.RunRecord
		startedAt, finished string
	)

	err := s.Scan(
		&rec.RunID, &rec.Repo, &startedAt, &finished,
		&rec.Considered, &rec.Selected,
		&rec.Created, &rec.Edited, &rec.Unchanged, &rec.Skipped, &rec.Failed,
		&rec.Error, &rec.DryRun,
	)
	if err != nil {
		return nil, err
	}

	rec.StartedAt, err = parseTime(startedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}
	rec.FinishedAt, err = parseTime(finished)
	if err != nil {
		return nil, fmt.Errorf("parse finished_at: %w", err)
	}

	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime tries the journal layout first, then other common SQLite formats.
func parseTime(s string) (time.Time, error) {
	for _, layout := range []string{
		timeLayout,
		time.RFC3339Nano,
		"2006-01-02 15:04:05",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized time format: %q", s)
}

func errorText(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
