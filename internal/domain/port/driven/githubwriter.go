package driven

import "context"

// GitHubWriter defines the driven port for GitHub write operations.
// It is intentionally separate from GitHubClient (read operations) following
// the Interface Segregation Principle.
type GitHubWriter interface {
	// CreateIssueComment creates a top-level (non-diff) comment on a pull request.
	CreateIssueComment(ctx context.Context, repoFullName string, prNumber int, body string) error

	// EditIssueComment replaces the body of an existing issue comment.
	EditIssueComment(ctx context.Context, repoFullName string, commentID int64, body string) error
}
