package models

// Label values returned by the oracle.
const (
	// LabelContradict means the claim is incompatible with the retrieved context.
	LabelContradict = 0
	// LabelConsistent means the claim is compatible with the retrieved context.
	LabelConsistent = 1
)

// Verdict is the oracle's judgment for one claim.
type Verdict struct {
	Label     int    `json:"label"`
	Rationale string `json:"rationale"`
	// Degraded marks a fail-open verdict given while the oracle was unreachable.
	Degraded bool `json:"-"`
}

// Result is a persisted verification outcome, keyed by the claim id.
type Result struct {
	StoryID    string `json:"story_id"`
	Prediction int    `json:"prediction"`
	Rationale  string `json:"rationale"`
	// Book and RunID are recorded by stores that keep more than the three log columns.
	Book  string `json:"book,omitempty"`
	RunID string `json:"run_id,omitempty"`
}
