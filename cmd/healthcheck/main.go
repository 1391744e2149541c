package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	sqliteadapter "github.com/ericfisherdev/ctbot/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/ctbot/internal/application"
	"github.com/ericfisherdev/ctbot/internal/config"
)

func main() {
	os.Exit(check())
}

// check exits 0 when the journal's latest run is recent and clean.
func check() int {
	cfg, err := config.LoadHealthcheck()
	if err != nil {
		slog.Error("healthcheck config", "error", err)
		return 1
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	db, err := sqliteadapter.NewDB(ctx, cfg.JournalPath)
	if err != nil {
		slog.Error("open journal", "error", err)
		return 1
	}
	defer db.Close() //nolint:errcheck

	health := application.NewHealthService(sqliteadapter.NewRunRepo(db), cfg.MaxAge)

	run, err := health.Check(ctx)
	if err != nil {
		slog.Error("unhealthy", "error", err)
		if run != nil && errors.Is(err, application.ErrRunFailed) {
			logFailedPullRequests(ctx, health, run.RunID)
		}
		return 1
	}

	slog.Info("healthy", "run_id", run.RunID, "finished_at", run.FinishedAt)
	return 0
}

func logFailedPullRequests(ctx context.Context, health *application.HealthService, runID string) {
	failed, err := health.FailedOutcomes(ctx, runID)
	if err != nil {
		slog.Error("read failed pull requests", "run_id", runID, "error", err)
		return
	}
	for _, o := range failed {
		slog.Error("pull request failed", "run_id", runID, "pr", o.PRNumber, "sha", o.HeadSHA, "error", o.Err)
	}
}
