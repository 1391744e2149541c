package application_test

import (
	"context"
	"fmt"
	"sync"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

// --- In-memory GitHub implementing both GitHubClient and GitHubWriter ---

type createCall struct {
	PRNumber int
	Body     string
}

type editCall struct {
	CommentID int64
	Body      string
}

type fakeGitHub struct {
	mu sync.Mutex

	repoErr     error
	listErr     error
	prs         []model.PullRequest
	comments    map[int][]model.IssueComment
	commentsErr map[int]error
	writeErr    error
	nextID      int64

	creates     []createCall
	edits       []editCall
	listedRepos []string
}

func newFakeGitHub() *fakeGitHub {
	return &fakeGitHub{
		comments:    make(map[int][]model.IssueComment),
		commentsErr: make(map[int]error),
		nextID:      1000,
	}
}

func (f *fakeGitHub) FetchRepository(_ context.Context, repoFullName string) (*model.Repository, error) {
	if f.repoErr != nil {
		return nil, f.repoErr
	}
	return &model.Repository{FullName: repoFullName}, nil
}

func (f *fakeGitHub) FetchOpenPullRequests(_ context.Context, repoFullName string) ([]model.PullRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listedRepos = append(f.listedRepos, repoFullName)
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]model.PullRequest, len(f.prs))
	copy(out, f.prs)
	return out, nil
}

func (f *fakeGitHub) FetchIssueComments(_ context.Context, _ string, prNumber int) ([]model.IssueComment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.commentsErr[prNumber]; err != nil {
		return nil, err
	}
	out := make([]model.IssueComment, len(f.comments[prNumber]))
	copy(out, f.comments[prNumber])
	return out, nil
}

func (f *fakeGitHub) CreateIssueComment(_ context.Context, _ string, prNumber int, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	f.nextID++
	f.comments[prNumber] = append(f.comments[prNumber], model.IssueComment{ID: f.nextID, Author: "ctbot", Body: body})
	f.creates = append(f.creates, createCall{PRNumber: prNumber, Body: body})
	return nil
}

func (f *fakeGitHub) EditIssueComment(_ context.Context, _ string, commentID int64, body string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.writeErr != nil {
		return f.writeErr
	}
	for pr, comments := range f.comments {
		for i := range comments {
			if comments[i].ID == commentID {
				f.comments[pr][i].Body = body
				f.edits = append(f.edits, editCall{CommentID: commentID, Body: body})
				return nil
			}
		}
	}
	return fmt.Errorf("comment %d not found", commentID)
}

func (f *fakeGitHub) addComment(prNumber int, id int64, body string) {
	f.comments[prNumber] = append(f.comments[prNumber], model.IssueComment{ID: id, Body: body})
}

// --- In-memory CT dashboard ---

type fakeDashboard struct {
	mu sync.Mutex

	data       map[string]*model.TestData
	results    map[string]model.TestResults
	dataErr    map[string]error
	resultsErr map[string]error

	dataCalls    []string
	resultsCalls []string

	// onData runs outside the lock before each data lookup.
	onData func(sha string)
}

func newFakeDashboard() *fakeDashboard {
	return &fakeDashboard{
		data:       make(map[string]*model.TestData),
		results:    make(map[string]model.TestResults),
		dataErr:    make(map[string]error),
		resultsErr: make(map[string]error),
	}
}

func (d *fakeDashboard) FetchTestData(_ context.Context, sha string) (*model.TestData, error) {
	if d.onData != nil {
		d.onData(sha)
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.dataCalls = append(d.dataCalls, sha)
	if err := d.dataErr[sha]; err != nil {
		return nil, err
	}
	return d.data[sha], nil
}

func (d *fakeDashboard) FetchTestResults(_ context.Context, sha string) (model.TestResults, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.resultsCalls = append(d.resultsCalls, sha)
	if err := d.resultsErr[sha]; err != nil {
		return nil, err
	}
	return d.results[sha], nil
}

// --- In-memory run journal ---

type fakeJournal struct {
	mu      sync.Mutex
	records []model.RunRecord
}

func (j *fakeJournal) SaveRun(_ context.Context, report *model.RunReport) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	rec := model.RunRecord{
		RunID:      report.RunID,
		Repo:       report.Repo,
		StartedAt:  report.StartedAt,
		FinishedAt: report.FinishedAt,
		Considered: report.Considered,
		Selected:   report.Selected,
		Created:    report.Count(model.SyncActionCreated),
		Edited:     report.Count(model.SyncActionEdited),
		Unchanged:  report.Count(model.SyncActionUnchanged),
		Skipped:    report.Count(model.SyncActionSkipped),
		Failed:     report.Count(model.SyncActionFailed),
		DryRun:     report.DryRun,
	}
	if err := report.Err(); err != nil {
		rec.Error = err.Error()
	}
	j.records = append(j.records, rec)
	return nil
}

func (j *fakeJournal) LatestRun(_ context.Context) (*model.RunRecord, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if len(j.records) == 0 {
		return nil, nil
	}
	rec := j.records[len(j.records)-1]
	return &rec, nil
}

func (j *fakeJournal) OutcomesForRun(_ context.Context, _ string) ([]model.Outcome, error) {
	return nil, nil
}
