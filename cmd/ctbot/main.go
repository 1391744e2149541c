package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	dashboardadapter "github.com/ericfisherdev/ctbot/internal/adapter/driven/dashboard"
	githubadapter "github.com/ericfisherdev/ctbot/internal/adapter/driven/github"
	metricsadapter "github.com/ericfisherdev/ctbot/internal/adapter/driven/metrics"
	sqliteadapter "github.com/ericfisherdev/ctbot/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/ctbot/internal/application"
	"github.com/ericfisherdev/ctbot/internal/config"
	"github.com/ericfisherdev/ctbot/internal/domain/port/driven"
)

// publishTimeout bounds journal and metrics writes after the run, which still
// happen when the run itself was interrupted.
const publishTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on a missing token). A .env file never
	// overrides variables already set in the environment.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	slog.SetDefault(newLogger(cfg))
	slog.Info("config loaded",
		"repo", cfg.Repo,
		"window", cfg.Window,
		"workers", cfg.Workers,
		"dry_run", cfg.DryRun,
		"journal", cfg.JournalPath != "",
		"pushgateway", cfg.PushgatewayURL != "",
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open the run journal if configured.
	var runStore driven.RunStore
	if cfg.JournalPath != "" {
		db, err := sqliteadapter.OpenJournal(ctx, cfg.JournalPath)
		if err != nil {
			return err
		}
		defer func() {
			if closeErr := db.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		runStore = sqliteadapter.NewRunRepo(db)
		slog.Info("journal opened", "path", cfg.JournalPath)
	}

	// 4. Wire adapters.
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}

	var pusher driven.ReportPusher
	if cfg.PushgatewayURL != "" {
		pusher = metricsadapter.NewPusher(cfg.PushgatewayURL, httpClient)
	}

	ghClient := githubadapter.NewClient(cfg.GitHubToken, cfg.HTTPTimeout)
	dashboard := dashboardadapter.NewClient(httpClient, cfg.DataURL, cfg.ResultsURL)

	// 5. Create services.
	syncer := application.NewCommentSyncer(ghClient, ghClient, cfg.CommentMarker, cfg.DryRun)
	syncSvc := application.NewSyncService(ghClient, dashboard, syncer, application.SyncSettings{
		Repo: cfg.Repo,
		Render: application.RenderOptions{
			Marker:     cfg.CommentMarker,
			DetailsURL: cfg.DetailsURL,
		},
		Window:  cfg.Window,
		Workers: cfg.Workers,
	})
	publisher := application.NewReportPublisher(runStore, pusher)

	// 6. Run one sync pass and publish whatever it produced.
	report, runErr := syncSvc.Run(ctx)

	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := publisher.Publish(publishCtx, report); err != nil {
		slog.Error("publishing run report failed", "run_id", report.RunID, "error", err)
	}

	return runErr
}

// newLogger builds the process logger from the configured format and level.
func newLogger(cfg *config.Config) *slog.Logger {
	opts := &slog.HandlerOptions{Level: cfg.LogLevel}

	if cfg.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(os.Stderr, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, opts))
}
