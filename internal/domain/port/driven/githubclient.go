package driven

import (
	"context"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

// GitHubClient defines the driven port for reading from the GitHub API.
type GitHubClient interface {
	// FetchRepository loads repository metadata. It doubles as the
	// authentication check before any pull request is touched.
	FetchRepository(ctx context.Context, repoFullName string) (*model.Repository, error)
	// FetchOpenPullRequests lists all open pull requests, most recently updated first.
	FetchOpenPullRequests(ctx context.Context, repoFullName string) ([]model.PullRequest, error)
	// FetchIssueComments lists PR-level comments in creation order.
	FetchIssueComments(ctx context.Context, repoFullName string, prNumber int) ([]model.IssueComment, error)
}
