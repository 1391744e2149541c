package driven

import (
	"context"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

// Dashboard defines the driven port for the continuous-testing dashboard.
// Absence of data is not an error: both methods return nil, nil when the
// dashboard has nothing for the commit.
type Dashboard interface {
	FetchTestData(ctx context.Context, sha string) (*model.TestData, error)
	FetchTestResults(ctx context.Context, sha string) (model.TestResults, error)
}
