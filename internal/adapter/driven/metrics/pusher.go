// Package metrics pushes per-run gauges to a Prometheus Pushgateway.
package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
	"github.com/ericfisherdev/ctbot/internal/domain/port/driven"
)

// JobName is the Pushgateway job every run is grouped under.
const JobName = "ctbot"

// Compile-time interface satisfaction check.
var _ driven.ReportPusher = (*Pusher)(nil)

// Pusher publishes the outcome of a run. A fresh registry is built per push so
// the gateway always holds exactly the last run.
type Pusher struct {
	url        string
	httpClient *http.Client
}

// NewPusher creates a Pusher for the gateway at url.
func NewPusher(url string, httpClient *http.Client) *Pusher {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Pusher{url: url, httpClient: httpClient}
}

// Push replaces the job's metrics on the gateway with those of report.
func (p *Pusher) Push(ctx context.Context, report *model.RunReport) error {
	reg := prometheus.NewRegistry()

	selected := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ctbot_pull_requests_selected",
		Help: "Open pull requests inside the activity window on the last run",
	})
	considered := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ctbot_pull_requests_open",
		Help: "Open pull requests listed on the last run",
	})
	actions := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ctbot_sync_actions",
		Help: "Pull requests per comment sync action on the last run",
	}, []string{"action"})
	testCases := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "ctbot_test_cases",
		Help: "Test cases reported by the dashboard across synced pull requests",
	}, []string{"result"})
	duration := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ctbot_run_duration_seconds",
		Help: "Wall time of the last run",
	})
	success := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ctbot_run_success",
		Help: "1 if the last run completed without errors",
	})
	dryRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ctbot_run_dry_run",
		Help: "1 if the last run only logged the comment writes it would make",
	})
	lastRun := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "ctbot_last_run_timestamp_seconds",
		Help: "Unix time the last run finished",
	})

	reg.MustRegister(selected, considered, actions, testCases, duration, success, dryRun, lastRun)

	selected.Set(float64(report.Selected))
	considered.Set(float64(report.Considered))
	for _, a := range model.AllSyncActions {
		actions.WithLabelValues(string(a)).Set(float64(report.Count(a)))
	}

	var passed, failed int
	for _, o := range report.Outcomes {
		if o.Summary != nil {
			passed += o.Summary.Passed
			failed += o.Summary.Failed
		}
	}
	testCases.WithLabelValues("passed").Set(float64(passed))
	testCases.WithLabelValues("failed").Set(float64(failed))

	duration.Set(report.Duration().Seconds())
	if report.Succeeded() {
		success.Set(1)
	}
	if report.DryRun {
		dryRun.Set(1)
	}
	lastRun.Set(float64(report.FinishedAt.Unix()))

	err := push.New(p.url, JobName).
		Gatherer(reg).
		Client(p.httpClient).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", p.url, err)
	}

	slog.Debug("pushed run metrics", "gateway", p.url, "run_id", report.RunID)
	return nil
}
