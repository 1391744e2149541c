package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
	"github.com/ericfisherdev/ctbot/internal/domain/port/driven"
)

// ReportPublisher hands a finished run to the journal and the metrics
// gateway. Either sink may be nil when it is not configured.
type ReportPublisher struct {
	runStore driven.RunStore
	pusher   driven.ReportPusher
}

// NewReportPublisher creates a ReportPublisher. Nil sinks are skipped.
func NewReportPublisher(runStore driven.RunStore, pusher driven.ReportPusher) *ReportPublisher {
	return &ReportPublisher{runStore: runStore, pusher: pusher}
}

// Publish writes the report to every configured sink. A failing sink does not
// stop the others; all failures are returned joined.
func (p *ReportPublisher) Publish(ctx context.Context, report *model.RunReport) error {
	if report == nil {
		return nil
	}

	var errs []error

	if p.runStore != nil {
		if err := p.runStore.SaveRun(ctx, report); err != nil {
			errs = append(errs, fmt.Errorf("save run to journal: %w", err))
		} else {
			slog.Debug("run journaled", "run_id", report.RunID)
		}
	}

	if p.pusher != nil {
		if err := p.pusher.Push(ctx, report); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}
