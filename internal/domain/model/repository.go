package model

// Repository represents the GitHub repository whose pull requests receive comments.
type Repository struct {
	ID            int64
	FullName      string
	Owner         string
	Name          string
	DefaultBranch string
}
