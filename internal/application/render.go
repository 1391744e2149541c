package application

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"

	"github.com/ericfisherdev/ctbot/internal/domain/model"
)

// lastUpdatedLayout is the trailing timestamp format, always rendered in UTC.
const lastUpdatedLayout = "2006-01-02 15:04:05 UTC"

const (
	glyphPass = "✅"
	glyphFail = "❌"
)

// tagStripper removes HTML tags from dashboard-supplied free text.
var tagStripper = bluemonday.StrictPolicy()

// RenderOptions holds the fixed parts of every rendered comment.
type RenderOptions struct {
	Marker     string
	DetailsURL string // Prefix for the per-commit details page; the hash is appended.
}

// RenderComment produces the markdown status comment for a commit. The output
// depends only on its inputs; now supplies the "Last updated" line. A nil
// results value renders the "not yet available" status instead of test cases.
func RenderComment(opts RenderOptions, data model.TestData, results model.TestResults, now time.Time) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s\n## Test Results for Commit %s\n\n", opts.Marker, data.Hash)
	fmt.Fprintf(&b, "**Pull Request %d:** [Results](%s%s)\n", data.PullRequest, opts.DetailsURL, data.Hash)

	if results == nil {
		b.WriteString("\n**Status:** Test results are not yet available. Please check back later.\n")
	} else {
		fmt.Fprintf(&b, "**Overall Status:** %s\n\n", sanitize(data.OverallStatus))
		b.WriteString("### Test Case Results\n\n")
		for _, r := range results {
			writeResultLine(&b, r)
		}
	}

	fmt.Fprintf(&b, "\nLast updated: %s", now.UTC().Format(lastUpdatedLayout))

	return b.String()
}

// writeResultLine renders one test case bullet, followed by a log link when a
// non-passing case carries one.
func writeResultLine(b *strings.Builder, r model.TestResult) {
	glyph := glyphFail
	if r.Passed() {
		glyph = glyphPass
	}

	fmt.Fprintf(b, "- %s **%s**: %s (Duration: %ss)\n", glyph, sanitize(r.TestCase), sanitize(r.Status), r.Duration.String())

	if !r.Passed() && r.Log != "" {
		fmt.Fprintf(b, " - [Log](%s)\n", r.Log)
	}
}

// sanitize drops HTML tags and keeps every other character as the dashboard
// sent it. Text without '<' cannot hold a tag and is returned unchanged.
func sanitize(s string) string {
	if !strings.Contains(s, "<") {
		return s
	}
	return html.UnescapeString(tagStripper.Sanitize(s))
}
