package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
	"github.com/ericfisherdev/ctbot/internal/domain/port/driven"
)

// CommentSyncer maintains a single marked status comment per pull request.
type CommentSyncer struct {
	ghClient driven.GitHubClient
	ghWriter driven.GitHubWriter
	marker   string
	dryRun   bool
}

// NewCommentSyncer creates a CommentSyncer. When dryRun is set the decision is
// made and logged but nothing is written to GitHub.
func NewCommentSyncer(ghClient driven.GitHubClient, ghWriter driven.GitHubWriter, marker string, dryRun bool) *CommentSyncer {
	return &CommentSyncer{
		ghClient: ghClient,
		ghWriter: ghWriter,
		marker:   marker,
		dryRun:   dryRun,
	}
}

// DryRun reports whether the syncer only logs the writes it would make.
func (s *CommentSyncer) DryRun() bool {
	return s.dryRun
}

// SyncComment creates or updates the PR's marked comment so that it reflects sha.
//
// The first comment containing the marker is canonical; later marked comments
// are left alone. If the canonical body already mentions sha nothing is
// written. Otherwise the canonical comment is edited in place, or a new
// comment is created when none exists.
func (s *CommentSyncer) SyncComment(ctx context.Context, pr model.PullRequest, sha, body string) (model.SyncAction, error) {
	comments, err := s.ghClient.FetchIssueComments(ctx, pr.RepoFullName, pr.Number)
	if err != nil {
		return model.SyncActionFailed, err
	}

	canonical := s.findCanonical(comments)

	switch {
	case canonical != nil && strings.Contains(canonical.Body, sha):
		slog.Info("comment already up to date, skipping",
			"repo", pr.RepoFullName, "pr", pr.Number, "sha", sha, "comment", canonical.ID)
		return model.SyncActionUnchanged, nil

	case canonical != nil:
		if s.dryRun {
			slog.Info("dry run: would edit comment", "repo", pr.RepoFullName, "pr", pr.Number, "sha", sha, "comment", canonical.ID)
			return model.SyncActionEdited, nil
		}
		if err := s.ghWriter.EditIssueComment(ctx, pr.RepoFullName, canonical.ID, body); err != nil {
			return model.SyncActionFailed, err
		}
		slog.Info("comment updated", "repo", pr.RepoFullName, "pr", pr.Number, "sha", sha, "comment", canonical.ID)
		return model.SyncActionEdited, nil

	default:
		if s.dryRun {
			slog.Info("dry run: would create comment", "repo", pr.RepoFullName, "pr", pr.Number, "sha", sha)
			return model.SyncActionCreated, nil
		}
		if err := s.ghWriter.CreateIssueComment(ctx, pr.RepoFullName, pr.Number, body); err != nil {
			return model.SyncActionFailed, err
		}
		slog.Info("comment created", "repo", pr.RepoFullName, "pr", pr.Number, "sha", sha)
		return model.SyncActionCreated, nil
	}
}

func (s *CommentSyncer) findCanonical(comments []model.IssueComment) *model.IssueComment {
	for i := range comments {
		if strings.Contains(comments[i].Body, s.marker) {
			return &comments[i]
		}
	}
	return nil
}
