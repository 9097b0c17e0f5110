// Package search retrieves the chunks most relevant to a claim and fuses keyword and semantic scores.
package search

import (
	"sort"

	"github.com/hyperjump/kensho/internal/keyword"
	"github.com/hyperjump/kensho/internal/vector"
)

// FusedResult holds a chunk ID and fused keyword/semantic scores.
type FusedResult struct {
	ChunkID       string
	SeqNum        int
	Score         float64
	KeywordScore  float64
	SemanticScore float64
}

// NormalizeKeywordScores normalizes keyword scores to [0,1] by max.
func NormalizeKeywordScores(results []*keyword.KeywordResult) map[string]float64 {
	if len(results) == 0 {
		return make(map[string]float64)
	}
	maxScore := results[0].Score
	for _, r := range results {
		if r.Score > maxScore {
			maxScore = r.Score
		}
	}
	normalized := make(map[string]float64)
	for _, r := range results {
		if maxScore > 0 {
			normalized[r.ID] = r.Score / maxScore
		} else {
			normalized[r.ID] = 0
		}
	}
	return normalized
}

// NormalizeSemanticScores returns cosine scores keyed by chunk ID.
func NormalizeSemanticScores(results []*vector.VectorResult) map[string]float64 {
	normalized := make(map[string]float64)
	for _, r := range results {
		normalized[r.Chunk.ID] = r.Score
	}
	return normalized
}

// Fuse merges keyword and semantic score maps with weights and returns results sorted
// by fused score, ties broken by ascending sequence number from seq.
func Fuse(keywordScores, semanticScores map[string]float64, keywordWeight, semanticWeight float64, seq map[string]int) []*FusedResult {
	scoreMap := make(map[string]*FusedResult)
	for id, score := range keywordScores {
		scoreMap[id] = &FusedResult{
			ChunkID:      id,
			SeqNum:       seq[id],
			KeywordScore: score,
		}
	}
	for id, score := range semanticScores {
		if result, exists := scoreMap[id]; exists {
			result.SemanticScore = score
		} else {
			scoreMap[id] = &FusedResult{
				ChunkID:       id,
				SeqNum:        seq[id],
				SemanticScore: score,
			}
		}
	}
	results := make([]*FusedResult, 0, len(scoreMap))
	for _, result := range scoreMap {
		result.Score = (keywordWeight * result.KeywordScore) + (semanticWeight * result.SemanticScore)
		results = append(results, result)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].SeqNum < results[j].SeqNum
	})
	return results
}
