package model

import "time"

// PullRequest represents an open GitHub pull request considered for a status comment.
type PullRequest struct {
	Number       int
	RepoFullName string
	Title        string
	Author       string
	URL          string
	Branch       string
	HeadSHA      string // Head commit SHA; join key into the CT dashboard.
	UpdatedAt    time.Time
}

// UpdatedWithin reports whether the PR was updated strictly after now-window.
// Both sides are compared in UTC.
func (pr PullRequest) UpdatedWithin(now time.Time, window time.Duration) bool {
	cutoff := now.UTC().Add(-window)
	return pr.UpdatedAt.UTC().After(cutoff)
}
