package model

import (
	"encoding/json"

	"github.com/montanaflynn/stats"
)

// StatusPass is the only test-case status rendered as passing. Comparison is case-sensitive.
const StatusPass = "PASS"

// TestData is the canonical CT dashboard record for a commit. The dashboard
// returns an array; only its first element is meaningful.
type TestData struct {
	Hash          string `json:"hash"`
	PullRequest   int    `json:"pull_request"`
	OverallStatus string `json:"overall_status"`
}

// TestResult is a single test case outcome reported by the CT dashboard.
type TestResult struct {
	TestCase string `json:"testcase"`
	Status   string `json:"status"`
	// Duration keeps the dashboard's number encoding so it renders byte-for-byte.
	Duration json.Number `json:"duration"`
	Log      string      `json:"log,omitempty"`
}

// Passed reports whether the test case status is exactly "PASS".
func (r TestResult) Passed() bool {
	return r.Status == StatusPass
}

// TestResults is the set of test case outcomes for a commit. A nil value means
// the dashboard has not produced results yet; an empty non-nil value means it
// produced zero test cases.
type TestResults []TestResult

// ResultsSummary aggregates a result set for logging and metrics.
type ResultsSummary struct {
	Total         int
	Passed        int
	Failed        int
	TotalDuration float64 // Seconds.
	MaxDuration   float64 // Seconds.
}

// Summary counts passes and failures and aggregates durations. Entries whose
// duration cannot be parsed are counted but contribute no time.
func (rs TestResults) Summary() ResultsSummary {
	s := ResultsSummary{Total: len(rs)}

	durations := make(stats.Float64Data, 0, len(rs))
	for _, r := range rs {
		if r.Passed() {
			s.Passed++
		} else {
			s.Failed++
		}
		if d, err := r.Duration.Float64(); err == nil {
			durations = append(durations, d)
		}
	}

	if len(durations) == 0 {
		return s
	}

	if sum, err := stats.Sum(durations); err == nil {
		s.TotalDuration = sum
	}
	if maxDuration, err := stats.Max(durations); err == nil {
		s.MaxDuration = maxDuration
	}

	return s
}
