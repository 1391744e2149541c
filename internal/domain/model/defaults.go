package model

import "time"

// Defaults matching the CT bot's historical behaviour.
const (
	DefaultWindow  = 48 * time.Hour // PRs updated longer ago are left alone.
	DefaultWorkers = 5
)
