// Package application contains use-case orchestration services.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
	"github.com/ericfisherdev/ctbot/internal/domain/port/driven"
)

// SyncSettings configures a SyncService.
type SyncSettings struct {
	Repo    string        // owner/name of the target repository.
	Render  RenderOptions // Marker and details URL for rendered comments.
	Window  time.Duration // Only PRs updated within this window are processed.
	Workers int           // Maximum number of PRs processed concurrently.

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time
}

// SyncService runs one pass of the comment sync: list PRs, select recently
// active ones and bring each PR's status comment up to date.
type SyncService struct {
	ghClient  driven.GitHubClient
	dashboard driven.Dashboard
	syncer    *CommentSyncer
	settings  SyncSettings
}

// NewSyncService creates a new SyncService with all required dependencies.
func NewSyncService(
	ghClient driven.GitHubClient,
	dashboard driven.Dashboard,
	syncer *CommentSyncer,
	settings SyncSettings,
) *SyncService {
	if settings.Window <= 0 {
		settings.Window = model.DefaultWindow
	}
	if settings.Workers < 1 {
		settings.Workers = model.DefaultWorkers
	}
	if settings.Now == nil {
		settings.Now = time.Now
	}
	return &SyncService{
		ghClient:  ghClient,
		dashboard: dashboard,
		syncer:    syncer,
		settings:  settings,
	}
}

// Run performs a single sync pass. It always returns a report, even on error.
// Failures before dispatch (repository access, PR listing) abort the run.
// Per-PR failures never cancel sibling work; they are recorded in the report
// and returned joined once every PR has finished.
func (s *SyncService) Run(ctx context.Context) (*model.RunReport, error) {
	report := &model.RunReport{
		RunID:     uuid.NewString(),
		Repo:      s.settings.Repo,
		StartedAt: s.settings.Now().UTC(),
		DryRun:    s.syncer.DryRun(),
	}
	logger := slog.With("run_id", report.RunID, "repo", s.settings.Repo)

	if _, err := s.ghClient.FetchRepository(ctx, s.settings.Repo); err != nil {
		return s.abort(report, err)
	}

	prs, err := s.ghClient.FetchOpenPullRequests(ctx, s.settings.Repo)
	if err != nil {
		return s.abort(report, err)
	}
	report.Considered = len(prs)

	selected := SelectRecent(prs, report.StartedAt, s.settings.Window)
	report.Selected = len(selected)

	logger.Info("pull requests selected",
		"open", len(prs),
		"selected", len(selected),
		"window", s.settings.Window,
		"workers", s.settings.Workers,
	)

	// Each goroutine owns exactly one slot, so no locking is needed.
	report.Outcomes = make([]model.Outcome, len(selected))

	var g errgroup.Group
	g.SetLimit(s.settings.Workers)
	for i, pr := range selected {
		g.Go(func() error {
			report.Outcomes[i] = s.processPullRequest(ctx, logger, pr)
			return report.Outcomes[i].Err
		})
	}
	if firstErr := g.Wait(); firstErr != nil {
		logger.Error("pull request processing failed", "error", firstErr)
	}

	report.FinishedAt = s.settings.Now().UTC()

	logger.Info("sync run complete",
		"selected", report.Selected,
		"created", report.Count(model.SyncActionCreated),
		"edited", report.Count(model.SyncActionEdited),
		"unchanged", report.Count(model.SyncActionUnchanged),
		"skipped", report.Count(model.SyncActionSkipped),
		"failed", report.Count(model.SyncActionFailed),
		"dry_run", report.DryRun,
		"duration", report.Duration().Round(time.Millisecond),
	)

	return report, report.Err()
}

// abort records a failure that stopped the run before dispatch.
func (s *SyncService) abort(report *model.RunReport, err error) (*model.RunReport, error) {
	report.RunErr = err
	report.FinishedAt = s.settings.Now().UTC()
	slog.Error("sync run aborted", "run_id", report.RunID, "repo", report.Repo, "error", err)
	return report, err
}

// SelectRecent returns the PRs updated strictly after now-window, most
// recently updated first. The input slice is not modified.
func SelectRecent(prs []model.PullRequest, now time.Time, window time.Duration) []model.PullRequest {
	selected := make([]model.PullRequest, 0, len(prs))
	for _, pr := range prs {
		if pr.UpdatedWithin(now, window) {
			selected = append(selected, pr)
		}
	}

	slices.SortStableFunc(selected, func(a, b model.PullRequest) int {
		return b.UpdatedAt.Compare(a.UpdatedAt)
	})

	return selected
}

// processPullRequest runs the full pipeline for one PR: fetch test data, fetch
// results, render and sync the comment.
func (s *SyncService) processPullRequest(ctx context.Context, logger *slog.Logger, pr model.PullRequest) model.Outcome {
	outcome := model.Outcome{PRNumber: pr.Number, HeadSHA: pr.HeadSHA}
	logger = logger.With("pr", pr.Number, "sha", pr.HeadSHA)

	data, err := s.dashboard.FetchTestData(ctx, pr.HeadSHA)
	if err != nil {
		return failed(outcome, fmt.Errorf("PR #%d: %w", pr.Number, err))
	}
	if data == nil {
		logger.Info("no test data available, skipping")
		outcome.Action = model.SyncActionSkipped
		return outcome
	}

	results, err := s.dashboard.FetchTestResults(ctx, pr.HeadSHA)
	if err != nil {
		return failed(outcome, fmt.Errorf("PR #%d: %w", pr.Number, err))
	}

	if results == nil {
		logger.Info("test results not yet available")
	} else {
		summary := results.Summary()
		outcome.Summary = &summary
		logger.Debug("test results fetched",
			"total", summary.Total,
			"passed", summary.Passed,
			"failed", summary.Failed,
			"total_duration_s", summary.TotalDuration,
			"max_duration_s", summary.MaxDuration,
		)
	}

	body := RenderComment(s.settings.Render, *data, results, s.settings.Now())

	action, err := s.syncer.SyncComment(ctx, pr, pr.HeadSHA, body)
	outcome.Action = action
	if err != nil {
		outcome.Err = fmt.Errorf("syncing comment on PR #%d: %w", pr.Number, err)
	}

	return outcome
}

func failed(outcome model.Outcome, err error) model.Outcome {
	outcome.Action = model.SyncActionFailed
	outcome.Err = err
	return outcome
}
