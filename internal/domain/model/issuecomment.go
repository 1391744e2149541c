package model

import "time"

// IssueComment represents a PR-level general comment (from the GitHub Issues API,
// not the Pull Requests review comments API).
type IssueComment struct {
	ID        int64
	Author    string
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DefaultCommentMarker is the hidden sentinel that identifies ctbot's own
// status comment among all comments on a pull request.
const DefaultCommentMarker = "<!-- GR0VITY_DEV_BOT_NANOCT -->"
