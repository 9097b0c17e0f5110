// Package keyword provides BM25 keyword search over a document's chunks.
package keyword

import (
	"context"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// FuzzyEnabled matches terms within Fuzziness edits, for OCR noise and spelling variants.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance (1 or 2). Default is 1.
	Fuzziness int
}

// KeywordIndex defines keyword search operations.
type KeywordIndex interface {
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit. ID is the chunk ID.
type KeywordResult struct {
	ID    string
	Score float64
}
