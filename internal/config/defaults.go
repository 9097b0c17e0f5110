package config

import "strings"

// ApplyDefaults sets default values for any zero values in cfg.
func ApplyDefaults(cfg *Config) {
	if cfg.Input.ClaimsPath == "" {
		cfg.Input.ClaimsPath = "Dataset/test.csv"
	}
	if cfg.Input.DocumentsDir == "" {
		cfg.Input.DocumentsDir = "Dataset/Books"
	}
	if cfg.Input.DocumentExtensions == nil {
		cfg.Input.DocumentExtensions = []string{".txt", ".pdf", ".docx", ".md"}
	}
	cfg.Output.Backend = strings.ToLower(strings.TrimSpace(cfg.Output.Backend))
	if cfg.Output.Backend == "" {
		cfg.Output.Backend = "csv"
	}
	if cfg.Output.ResultsPath == "" {
		cfg.Output.ResultsPath = "results.csv"
	}
	if cfg.Output.SQLitePath == "" {
		cfg.Output.SQLitePath = "results.db"
	}
	if cfg.Chunking.SimilarityThreshold == 0 {
		cfg.Chunking.SimilarityThreshold = 0.8
	}
	if cfg.Chunking.MinChunkChars == 0 {
		cfg.Chunking.MinChunkChars = 200
	}
	if cfg.Chunking.MaxChunkChars == 0 {
		cfg.Chunking.MaxChunkChars = 1000
	}
	if cfg.Chunking.OverlapChars == 0 {
		cfg.Chunking.OverlapChars = 300
	}
	if cfg.Chunking.ChapterScanChars == 0 {
		cfg.Chunking.ChapterScanChars = 300
	}
	if cfg.Chunking.DefaultChapter == "" {
		cfg.Chunking.DefaultChapter = "Prologue/Introduction"
	}
	if cfg.Retrieval.TopK == 0 {
		cfg.Retrieval.TopK = 5
	}
	if cfg.Retrieval.Separator == "" {
		cfg.Retrieval.Separator = "\n---\n"
	}
	cfg.Retrieval.Mode = strings.ToLower(strings.TrimSpace(cfg.Retrieval.Mode))
	if cfg.Retrieval.Mode == "" {
		cfg.Retrieval.Mode = "dense"
	}
	if cfg.Retrieval.KeywordWeight == 0 && cfg.Retrieval.SemanticWeight == 0 {
		cfg.Retrieval.KeywordWeight = 0.3
		cfg.Retrieval.SemanticWeight = 0.7
	}
	if cfg.Retrieval.Fuzziness < 0 {
		cfg.Retrieval.Fuzziness = 0
	} else if cfg.Retrieval.Fuzziness > 2 {
		cfg.Retrieval.Fuzziness = 2
	}
	if cfg.Embedding.Provider == "" {
		cfg.Embedding.Provider = "ollama"
	}
	if cfg.Embedding.Model == "" {
		cfg.Embedding.Model = "mxbai-embed-large"
	}
	if cfg.Embedding.BaseURL == "" && cfg.Embedding.Provider == "ollama" {
		cfg.Embedding.BaseURL = "http://localhost:11434"
	}
	if cfg.Embedding.TimeoutSecs == 0 {
		cfg.Embedding.TimeoutSecs = 120
	}
	if cfg.Embedding.CacheSize == 0 {
		cfg.Embedding.CacheSize = 10000
	}
	if cfg.Embedding.Dimensions == 0 {
		cfg.Embedding.Dimensions = 384
	}
	if cfg.Embedding.MaxTokens == 0 {
		cfg.Embedding.MaxTokens = 256
	}
	if cfg.Oracle.Provider == "" {
		cfg.Oracle.Provider = "ollama"
	}
	if cfg.Oracle.Model == "" {
		cfg.Oracle.Model = "mistral"
	}
	if cfg.Oracle.BaseURL == "" && cfg.Oracle.Provider == "ollama" {
		cfg.Oracle.BaseURL = "http://localhost:11434"
	}
	if cfg.Oracle.MaxTokens == 0 {
		cfg.Oracle.MaxTokens = 1024
	}
	if cfg.Oracle.TimeoutSecs == 0 {
		cfg.Oracle.TimeoutSecs = 300
	}
	if cfg.Oracle.RetryBackoffMs == 0 {
		cfg.Oracle.RetryBackoffMs = 1000
	}
	if cfg.Oracle.CacheTTLSecs == 0 {
		cfg.Oracle.CacheTTLSecs = 3600
	}
	if cfg.Oracle.StaticLabel == 0 && cfg.Oracle.StaticRationale == "" {
		cfg.Oracle.StaticLabel = 1
		cfg.Oracle.StaticRationale = "Consistent with context."
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Watch.DebounceMs == 0 {
		cfg.Watch.DebounceMs = 400
	}
}
