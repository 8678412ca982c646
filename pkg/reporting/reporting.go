package reporting

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/slipwayhq/slipway/pkg/ci"
)

type Reporter interface {
	Report(report string, reportFormatting func(report string) string) error
	SupportsMarkdown() bool
}

// CiReporter publishes the run output as a pull request comment. Repeat runs
// on the same pull request edit the previous comment instead of stacking new
// ones, keyed by a hidden marker.
type CiReporter struct {
	CiService         ci.PullRequestService
	PrNumber          int
	IsSupportMarkdown bool
}

const commentMarker = "<!-- slipway -->"

func (reporter CiReporter) Report(report string, reportFormatting func(report string) string) error {
	formatted := commentMarker + "\n" + reportFormatting(report)

	comments, err := reporter.CiService.GetComments(reporter.PrNumber)
	if err != nil {
		return fmt.Errorf("error getting comments: %v", err)
	}
	for _, comment := range comments {
		if comment.Body != nil && strings.HasPrefix(*comment.Body, commentMarker) {
			slog.Debug("Updating existing comment", "commentId", comment.Id)
			return reporter.CiService.EditComment(reporter.PrNumber, comment.Id, formatted)
		}
	}

	_, err = reporter.CiService.PublishComment(reporter.PrNumber, formatted)
	return err
}

func (reporter CiReporter) SupportsMarkdown() bool {
	return reporter.IsSupportMarkdown
}

type StdOutReporter struct{}

func (reporter StdOutReporter) Report(report string, reportFormatting func(report string) string) error {
	slog.Info("Info: " + report)
	return nil
}

func (reporter StdOutReporter) SupportsMarkdown() bool {
	return false
}
