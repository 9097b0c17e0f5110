// Package models defines core data structures for claims, chunks, and verification results.
package models

// Candidate is a chunk produced by the splitter before it is embedded.
type Candidate struct {
	Text    string `json:"text"`
	Chapter string `json:"chapter"`
}

// Chunk is a retrievable unit of a document, used for semantic indexing.
// SeqNum is the chunk's position in splitter output and breaks similarity ties.
type Chunk struct {
	ID      string    `json:"id"`
	SeqNum  int       `json:"seq_num"`
	Text    string    `json:"text"`
	Chapter string    `json:"chapter"`
	Vector  []float32 `json:"-"`
}
