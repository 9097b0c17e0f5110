package keyword

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	blevequery "github.com/blevesearch/bleve/v2/search/query"
	"github.com/hyperjump/kensho/internal/models"
)

// ChunkIndex is an in-memory Bleve index over one document's chunks. It lives only
// as long as the document is being processed.
type ChunkIndex struct {
	index bleve.Index
}

type chunkDoc struct {
	Text    string `json:"text"`
	Chapter string `json:"chapter"`
}

// NewChunkIndex builds an in-memory index over chunks, keyed by chunk ID.
func NewChunkIndex(chunks []models.Chunk) (*ChunkIndex, error) {
	im := bleve.NewIndexMapping()

	docMapping := bleve.NewDocumentMapping()
	textFieldMapping := bleve.NewTextFieldMapping()
	// Standard analyzer (lowercase + tokenize, no stemming) so names match exactly.
	textFieldMapping.Analyzer = standard.Name
	docMapping.AddFieldMappingsAt("text", textFieldMapping)
	docMapping.AddFieldMappingsAt("chapter", textFieldMapping)
	im.AddDocumentMapping("chunk", docMapping)
	im.DefaultType = "chunk"
	im.DefaultMapping = docMapping

	index, err := bleve.NewMemOnly(im)
	if err != nil {
		return nil, fmt.Errorf("failed to create Bleve index: %w", err)
	}
	batch := index.NewBatch()
	for _, c := range chunks {
		if err := batch.Index(c.ID, chunkDoc{Text: c.Text, Chapter: c.Chapter}); err != nil {
			_ = index.Close()
			return nil, fmt.Errorf("failed to index chunk %s: %w", c.ID, err)
		}
	}
	if err := index.Batch(batch); err != nil {
		_ = index.Close()
		return nil, fmt.Errorf("failed to index chunks: %w", err)
	}
	return &ChunkIndex{index: index}, nil
}

// Search runs a match query over chunk text and returns up to limit results.
func (b *ChunkIndex) Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error) {
	if strings.TrimSpace(query) == "" || limit <= 0 {
		return nil, nil
	}
	var q blevequery.Query
	if opts != nil && opts.FuzzyEnabled {
		fuzziness := opts.Fuzziness
		if fuzziness <= 0 {
			fuzziness = 1
		}
		q = buildFuzzyQuery(query, fuzziness, "text")
	} else {
		mq := bleve.NewMatchQuery(query)
		mq.SetField("text")
		q = mq
	}
	search := bleve.NewSearchRequest(q)
	search.Size = limit
	results, err := b.index.SearchInContext(ctx, search)
	if err != nil {
		return nil, fmt.Errorf("Bleve search failed: %w", err)
	}
	out := make([]*KeywordResult, len(results.Hits))
	for i, hit := range results.Hits {
		out[i] = &KeywordResult{ID: hit.ID, Score: hit.Score}
	}
	return out, nil
}

func tokenizeQuery(query string) []string {
	return strings.Fields(strings.ToLower(query))
}

// buildFuzzyQuery creates a disjunction of FuzzyQueries, one per query term.
func buildFuzzyQuery(queryStr string, fuzziness int, field string) blevequery.Query {
	terms := tokenizeQuery(queryStr)
	if len(terms) == 0 {
		mq := bleve.NewMatchQuery(queryStr)
		mq.SetField(field)
		return mq
	}
	queries := make([]blevequery.Query, 0, len(terms))
	for _, term := range terms {
		fq := bleve.NewFuzzyQuery(strings.Trim(term, ".,;:!?\"'()"))
		fq.SetFuzziness(fuzziness)
		fq.SetField(field)
		queries = append(queries, fq)
	}
	return bleve.NewDisjunctionQuery(queries...)
}

// DocCount returns the number of indexed chunks.
func (b *ChunkIndex) DocCount() (uint64, error) {
	return b.index.DocCount()
}

// Close closes the Bleve index.
func (b *ChunkIndex) Close() error {
	return b.index.Close()
}
