package model_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

func TestPullRequest_UpdatedWithin(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		updated time.Time
		want    bool
	}{
		{name: "now", updated: now, want: true},
		{name: "47h ago", updated: now.Add(-47 * time.Hour), want: true},
		{name: "49h ago", updated: now.Add(-49 * time.Hour), want: false},
		{name: "exactly at cutoff", updated: now.Add(-48 * time.Hour), want: false},
		{name: "non-UTC zone", updated: now.Add(-47 * time.Hour).In(time.FixedZone("UTC+9", 9*3600)), want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pr := model.PullRequest{Number: 1, UpdatedAt: tc.updated}
			assert.Equal(t, tc.want, pr.UpdatedWithin(now, 48*time.Hour))
		})
	}
}
