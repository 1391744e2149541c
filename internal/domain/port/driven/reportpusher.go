package driven

import (
	"context"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

// ReportPusher publishes run metrics to an external collector.
type ReportPusher interface {
	Push(ctx context.Context, report *model.RunReport) error
}
