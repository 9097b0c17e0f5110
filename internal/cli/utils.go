// Package cli formats results and run summaries for the command line.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/hyperjump/kensho/internal/models"
	"github.com/hyperjump/kensho/internal/pipeline"
)

// OutputFormat is the format for command output.
type OutputFormat string

const (
	// OutputText is human-readable text (default).
	OutputText OutputFormat = "text"
	// OutputJSON is structured JSON for machine consumption.
	OutputJSON OutputFormat = "json"
)

// ParseFormat returns the format named by s.
func ParseFormat(s string) (OutputFormat, error) {
	switch OutputFormat(strings.ToLower(s)) {
	case OutputText, "":
		return OutputText, nil
	case OutputJSON:
		return OutputJSON, nil
	default:
		return "", fmt.Errorf("unknown output format %q (supported: text, json)", s)
	}
}

// WriteResults writes results to w in the given format.
func WriteResults(w io.Writer, results []models.Result, format OutputFormat) error {
	if format == OutputJSON {
		if results == nil {
			results = []models.Result{}
		}
		return writeJSON(w, results)
	}
	if len(results) == 0 {
		_, err := fmt.Fprintln(w, "No results.")
		return err
	}
	contradictions := 0
	for _, r := range results {
		if r.Prediction == models.LabelContradict {
			contradictions++
		}
	}
	fmt.Fprintf(w, "\n%d results (%d contradictions, %d consistent)\n\n",
		len(results), contradictions, len(results)-contradictions)
	for _, r := range results {
		verdict := "consistent"
		if r.Prediction == models.LabelContradict {
			verdict = "CONTRADICTS"
		}
		fmt.Fprintf(w, "%-8s %-11s %s\n", r.StoryID, verdict, Truncate(r.Rationale, 100))
	}
	return nil
}

// WriteSummary writes a run summary to w in the given format.
func WriteSummary(w io.Writer, s *pipeline.Summary, format OutputFormat) error {
	if format == OutputJSON {
		return writeJSON(w, s)
	}
	fmt.Fprintf(w, "\nRun %s finished in %s\n", s.RunID, s.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  books:        %d\n", s.Books)
	fmt.Fprintf(w, "  new results:  %d\n", s.Processed)
	fmt.Fprintf(w, "  already done: %d\n", s.AlreadyDone)
	if len(s.SkippedBooks) > 0 {
		fmt.Fprintf(w, "  skipped:      %s\n", strings.Join(s.SkippedBooks, ", "))
	}
	if len(s.FailedBooks) > 0 {
		fmt.Fprintf(w, "  failed:       %s\n", strings.Join(s.FailedBooks, ", "))
	}
	return nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Truncate shortens s to maxLen characters and appends "..." if truncated.
// Newlines are flattened to spaces.
func Truncate(s string, maxLen int) string {
	s = strings.Join(strings.Fields(s), " ")
	if maxLen <= 0 || utf8.RuneCountInString(s) <= maxLen {
		return s
	}
	return string([]rune(s)[:maxLen]) + "..."
}
