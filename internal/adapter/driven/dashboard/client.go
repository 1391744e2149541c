// Package dashboard implements the Dashboard port against the CT dashboard's JSON API.
package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
	"github.com/ericfisherdev/ctbot/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.Dashboard = (*Client)(nil)

// maxBodyBytes caps how much of a dashboard response is decoded.
const maxBodyBytes = 8 << 20

// Client fetches test data and test results for a commit. Each lookup is a
// single GET to a base URL suffixed with the commit SHA; there are no retries.
type Client struct {
	httpClient *http.Client
	dataURL    string
	resultsURL string
}

// NewClient creates a dashboard client. dataURL and resultsURL are used as
// prefixes, e.g. "https://ct.bnano.info/api/data/".
func NewClient(httpClient *http.Client, dataURL, resultsURL string) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient: httpClient,
		dataURL:    dataURL,
		resultsURL: resultsURL,
	}
}

// FetchTestData returns the first test data record for the commit, or nil if
// the dashboard has none (non-200, empty array, or client timeout).
func (c *Client) FetchTestData(ctx context.Context, sha string) (*model.TestData, error) {
	var records []model.TestData
	found, err := c.getJSON(ctx, c.dataURL+sha, &records)
	if err != nil {
		return nil, fmt.Errorf("fetching test data for %s: %w", sha, err)
	}
	if !found || len(records) == 0 {
		return nil, nil
	}

	if len(records) > 1 {
		slog.Debug("dashboard returned multiple test data records, using first", "sha", sha, "count", len(records))
	}

	data := records[0]
	return &data, nil
}

// FetchTestResults returns the test case results for the commit, or nil if the
// dashboard has not produced them. A 200 with an empty array yields an empty,
// non-nil slice.
func (c *Client) FetchTestResults(ctx context.Context, sha string) (model.TestResults, error) {
	var results model.TestResults
	found, err := c.getJSON(ctx, c.resultsURL+sha, &results)
	if err != nil {
		return nil, fmt.Errorf("fetching test results for %s: %w", sha, err)
	}
	if !found {
		return nil, nil
	}

	if results == nil {
		results = model.TestResults{}
	}
	return results, nil
}

// getJSON issues a GET and decodes a 200 body into dst. It returns false with
// no error when the dashboard answered with any other status or the request
// timed out. Other transport failures and undecodable bodies are errors.
func (c *Client) getJSON(ctx context.Context, url string, dst any) (bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return false, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			slog.Warn("dashboard request timed out, treating as no data", "url", url, "error", err)
			return false, nil
		}
		return false, fmt.Errorf("request %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		slog.Info("dashboard has no data", "url", url, "status", resp.StatusCode)
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return false, nil
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", url, err)
	}

	return true, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
