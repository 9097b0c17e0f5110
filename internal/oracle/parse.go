package oracle

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/hyperjump/kensho/internal/models"
)

const (
	noResponseRationale = "No response from LLM."
	consistentRationale = "Consistent with context."
	notAvailable        = "N/A"
)

var (
	labelPattern = regexp.MustCompile(`[01]`)
	fencePattern = regexp.MustCompile("(?m)^```(?:json)?\\n?|```$")
)

// ParseResponse turns a raw completion into a verdict. The last line carries the
// label (first 0 or 1 on it, default 1); the lines before it hold a JSON object.
// Any failure to decode the JSON yields label 1 with a "Parsing error" rationale.
func ParseResponse(raw string) models.Verdict {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return models.Verdict{Label: models.LabelConsistent, Rationale: noResponseRationale}
	}
	lines := splitLines(raw)

	label := models.LabelConsistent
	if m := labelPattern.FindString(lines[len(lines)-1]); m == "0" {
		label = models.LabelContradict
	}

	body := strings.TrimSpace(strings.Join(lines[:len(lines)-1], "\n"))
	if strings.Contains(body, "```") {
		body = strings.TrimSpace(fencePattern.ReplaceAllString(body, ""))
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(body), &data); err != nil {
		return parseError(err)
	}
	if data == nil {
		return parseError(fmt.Errorf("expected a JSON object, got null"))
	}

	if label == models.LabelContradict {
		return models.Verdict{
			Label: label,
			Rationale: fmt.Sprintf("Target: %s | Proof: %s | Why: %s",
				field(data, "target", notAvailable),
				field(data, "proof", notAvailable),
				field(data, "explanation", notAvailable)),
		}
	}
	return models.Verdict{Label: label, Rationale: field(data, "explanation", consistentRationale)}
}

func parseError(err error) models.Verdict {
	return models.Verdict{Label: models.LabelConsistent, Rationale: "Parsing error: " + err.Error()}
}

// field returns data[key] as text, or def when the key is absent or null.
func field(data map[string]any, key, def string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return def
	}
	if s, ok := v.(string); ok {
		return s
	}
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(b)
}

func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.Split(s, "\n")
}
