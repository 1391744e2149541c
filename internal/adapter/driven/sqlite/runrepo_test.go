package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

func makeReport(runID string, started time.Time, outcomes ...model.Outcome) *model.RunReport {
	return &model.RunReport{
		RunID:      runID,
		Repo:       "nanocurrency/nano-node",
		StartedAt:  started,
		FinishedAt: started.Add(42 * time.Second),
		Considered: 12,
		Selected:   len(outcomes),
		Outcomes:   outcomes,
	}
}

func TestRunRepo_SaveAndLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	started := time.Date(2026, 3, 1, 12, 0, 0, 123456789, time.UTC)
	report := makeReport("run-1", started,
		model.Outcome{PRNumber: 4512, HeadSHA: "abc123", Action: model.SyncActionCreated},
		model.Outcome{PRNumber: 4513, HeadSHA: "def456", Action: model.SyncActionUnchanged},
		model.Outcome{PRNumber: 4514, HeadSHA: "0a1b2c", Action: model.SyncActionSkipped},
	)

	require.NoError(t, repo.SaveRun(ctx, report))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "run-1", got.RunID)
	assert.Equal(t, "nanocurrency/nano-node", got.Repo)
	assert.True(t, started.Equal(got.StartedAt))
	assert.True(t, started.Add(42*time.Second).Equal(got.FinishedAt))
	assert.Equal(t, 12, got.Considered)
	assert.Equal(t, 3, got.Selected)
	assert.Equal(t, 1, got.Created)
	assert.Equal(t, 0, got.Edited)
	assert.Equal(t, 1, got.Unchanged)
	assert.Equal(t, 1, got.Skipped)
	assert.Equal(t, 0, got.Failed)
	assert.Empty(t, got.Error)
	assert.False(t, got.DryRun)
}

func TestRunRepo_LatestEmpty(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)

	got, err := repo.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunRepo_LatestPicksNewestStart(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.SaveRun(ctx, makeReport("newest", base.Add(time.Hour))))
	require.NoError(t, repo.SaveRun(ctx, makeReport("oldest", base)))
	// Sub-second start sorts after the whole second that precedes it.
	require.NoError(t, repo.SaveRun(ctx, makeReport("middle", base.Add(500*time.Millisecond))))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "newest", got.RunID)
}

func TestRunRepo_FailedRunKeepsErrors(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	report := makeReport("run-err", time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC),
		model.Outcome{PRNumber: 7, HeadSHA: "aaa", Action: model.SyncActionFailed, Err: errors.New("PR #7: fetching test results: boom")},
		model.Outcome{PRNumber: 3, HeadSHA: "bbb", Action: model.SyncActionEdited},
	)
	require.NoError(t, repo.SaveRun(ctx, report))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 1, got.Failed)
	assert.Equal(t, 1, got.Edited)
	assert.Contains(t, got.Error, "boom")

	outcomes, err := repo.OutcomesForRun(ctx, "run-err")
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(t, 3, outcomes[0].PRNumber)
	assert.Equal(t, model.SyncActionEdited, outcomes[0].Action)
	assert.NoError(t, outcomes[0].Err)

	assert.Equal(t, 7, outcomes[1].PRNumber)
	assert.Equal(t, "aaa", outcomes[1].HeadSHA)
	assert.Equal(t, model.SyncActionFailed, outcomes[1].Action)
	require.Error(t, outcomes[1].Err)
	assert.Equal(t, "PR #7: fetching test results: boom", outcomes[1].Err.Error())
}

func TestRunRepo_SaveTwiceReplaces(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	started := time.Date(2026, 3, 3, 9, 0, 0, 0, time.UTC)
	first := makeReport("run-x", started,
		model.Outcome{PRNumber: 1, HeadSHA: "a", Action: model.SyncActionCreated},
		model.Outcome{PRNumber: 2, HeadSHA: "b", Action: model.SyncActionCreated},
	)
	require.NoError(t, repo.SaveRun(ctx, first))

	second := makeReport("run-x", started,
		model.Outcome{PRNumber: 1, HeadSHA: "a", Action: model.SyncActionUnchanged},
	)
	require.NoError(t, repo.SaveRun(ctx, second))

	outcomes, err := repo.OutcomesForRun(ctx, "run-x")
	require.NoError(t, err)
	require.Len(t, outcomes, 1)
	assert.Equal(t, model.SyncActionUnchanged, outcomes[0].Action)

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Unchanged)
	assert.Equal(t, 0, got.Created)
}

func TestRunRepo_OutcomesUnknownRun(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)

	outcomes, err := repo.OutcomesForRun(context.Background(), "missing")
	require.NoError(t, err)
	assert.Empty(t, outcomes)
}

func TestNewDB_FileBacked(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "journal.db")

	db, err := NewDB(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, RunMigrations(db.Writer))
	// Applying migrations again is a no-op.
	require.NoError(t, RunMigrations(db.Writer))

	repo := NewRunRepo(db)
	require.NoError(t, repo.SaveRun(ctx, makeReport("file-run", time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC))))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "file-run", got.RunID)
}

func TestParseTime(t *testing.T) {
	want := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for _, s := range []string{
		"2026-03-01T12:00:00.000000000Z",
		"2026-03-01T12:00:00Z",
		"2026-03-01 12:00:00",
	} {
		got, err := parseTime(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := parseTime("yesterday")
	assert.Error(t, err)
}

func TestOpenJournal(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested.db")

	db, err := OpenJournal(ctx, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	got, err := NewRunRepo(db).LatestRun(ctx)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRunRepo_AbortedRunRecordsError(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	report := makeReport("aborted", time.Date(2026, 3, 5, 6, 0, 0, 0, time.UTC))
	report.RunErr = errors.New("fetching repository nanocurrency/nano-node: 401 Bad credentials")
	require.NoError(t, repo.SaveRun(ctx, report))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 0, got.Failed)
	assert.Equal(t, 0, got.Selected)
	assert.Contains(t, got.Error, "401 Bad credentials")
}

func TestRunRepo_DryRunFlagPersisted(t *testing.T) {
	db := setupTestDB(t)
	repo := NewRunRepo(db)
	ctx := context.Background()

	report := makeReport("dry", time.Date(2026, 3, 6, 6, 0, 0, 0, time.UTC),
		model.Outcome{PRNumber: 9, HeadSHA: "c0ffee", Action: model.SyncActionCreated},
	)
	report.DryRun = true
	require.NoError(t, repo.SaveRun(ctx, report))

	got, err := repo.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.DryRun)
	assert.Equal(t, 1, got.Created)
}
