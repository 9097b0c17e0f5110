// Package config provides configuration loading and structs for the kensho verifier.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Debug     bool            `yaml:"debug"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Chunking  ChunkingConfig  `yaml:"chunking"`
	Retrieval RetrievalConfig `yaml:"retrieval"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Oracle    OracleConfig    `yaml:"oracle"`
	Server    ServerConfig    `yaml:"server"`
	Watch     WatchConfig     `yaml:"watch"`
}

// InputConfig locates the claims table and the documents directory.
type InputConfig struct {
	ClaimsPath         string   `yaml:"claims_path"`
	DocumentsDir       string   `yaml:"documents_dir"`
	DocumentExtensions []string `yaml:"document_extensions"`
}

// OutputConfig selects where verification results are persisted.
type OutputConfig struct {
	// Backend is "csv" (default) or "sqlite".
	Backend     string `yaml:"backend"`
	ResultsPath string `yaml:"results_path"`
	SQLitePath  string `yaml:"sqlite_path"`
}

// ChunkingConfig holds the hybrid splitter thresholds. Lengths are in characters.
type ChunkingConfig struct {
	SimilarityThreshold float64 `yaml:"similarity_threshold"`
	MinChunkChars       int     `yaml:"min_chunk_chars"`
	MaxChunkChars       int     `yaml:"max_chunk_chars"`
	OverlapChars        int     `yaml:"overlap_chars"`
	ChapterScanChars    int     `yaml:"chapter_scan_chars"`
	DefaultChapter      string  `yaml:"default_chapter"`
}

// RetrievalConfig holds per-claim retrieval settings.
type RetrievalConfig struct {
	TopK      int    `yaml:"top_k"`
	Separator string `yaml:"separator"`
	// Mode is "dense" (default) or "hybrid".
	Mode           string  `yaml:"mode"`
	KeywordWeight  float64 `yaml:"keyword_weight"`
	SemanticWeight float64 `yaml:"semantic_weight"`
	// Fuzziness is the keyword edit distance in hybrid mode (0 = exact terms, max 2).
	Fuzziness int `yaml:"fuzziness"`
}

// MarshalYAML writes Separator double-quoted. A block scalar would lose its leading
// newline on load.
func (r RetrievalConfig) MarshalYAML() (interface{}, error) {
	type plain RetrievalConfig
	var node yaml.Node
	if err := node.Encode(plain(r)); err != nil {
		return nil, err
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == "separator" {
			node.Content[i+1].Style = yaml.DoubleQuotedStyle
		}
	}
	return &node, nil
}

// EmbeddingConfig holds embedder settings.
type EmbeddingConfig struct {
	// Provider is one of "ollama", "openai", "onnx", "mock".
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	BatchSize         int     `yaml:"batch_size"`
	CacheSize         int     `yaml:"cache_size"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	ModelPath         string  `yaml:"model_path"`
	Dimensions        int     `yaml:"dimensions"`
	MaxTokens         int     `yaml:"max_tokens"`
}

// OracleConfig holds settings for the verification oracle.
type OracleConfig struct {
	// Provider is one of "ollama", "openai", "anthropic", "gemini", "static".
	Provider          string  `yaml:"provider"`
	Model             string  `yaml:"model"`
	BaseURL           string  `yaml:"base_url"`
	APIKeyEnv         string  `yaml:"api_key_env"`
	Temperature       float64 `yaml:"temperature"`
	MaxTokens         int     `yaml:"max_tokens"`
	TimeoutSecs       int     `yaml:"timeout_secs"`
	MaxRetries        *int    `yaml:"max_retries"`
	RetryBackoffMs    int     `yaml:"retry_backoff_ms"`
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
	CacheTTLSecs      int     `yaml:"cache_ttl_secs"`
	// StaticLabel and StaticRationale are returned by the "static" provider.
	StaticLabel     int    `yaml:"static_label"`
	StaticRationale string `yaml:"static_rationale"`
}

// Retries returns the configured retry count; defaults to 2 when unset.
func (o *OracleConfig) Retries() int {
	if o.MaxRetries != nil {
		return *o.MaxRetries
	}
	return 2
}

// APIKey resolves the API key from the configured environment variable.
func (o *OracleConfig) APIKey() string {
	if o.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(o.APIKeyEnv)
}

// APIKey resolves the API key from the configured environment variable.
func (e *EmbeddingConfig) APIKey() string {
	if e.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(e.APIKeyEnv)
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

// WatchConfig holds watch mode settings.
type WatchConfig struct {
	DebounceMs int `yaml:"debounce_ms"`
}

// Default returns a config with every default applied.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// Load reads and parses the config file at path, expands paths, and applies defaults.
// Returns an error if the file cannot be read or parsed.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	configDir := filepath.Dir(path)
	cfg.Input.ClaimsPath = expandPath(cfg.Input.ClaimsPath, configDir)
	cfg.Input.DocumentsDir = expandPath(cfg.Input.DocumentsDir, configDir)
	cfg.Output.ResultsPath = expandPath(cfg.Output.ResultsPath, configDir)
	cfg.Output.SQLitePath = expandPath(cfg.Output.SQLitePath, configDir)
	if cfg.Embedding.ModelPath != "" {
		cfg.Embedding.ModelPath = expandPath(cfg.Embedding.ModelPath, configDir)
	}

	return &cfg, nil
}

// Validate rejects settings that ApplyDefaults cannot fill in.
func (c *Config) Validate() error {
	switch c.Output.Backend {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("invalid output backend %q: want csv or sqlite", c.Output.Backend)
	}
	switch c.Retrieval.Mode {
	case "dense", "hybrid":
	default:
		return fmt.Errorf("invalid retrieval mode %q: want dense or hybrid", c.Retrieval.Mode)
	}
	return nil
}

// Save writes the config to path.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// expandPath resolves a configured path. Paths starting with "./" are relative to configDir,
// "~/" is the home directory, and other relative paths stay relative to the working directory.
func expandPath(path string, configDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	if strings.HasPrefix(path, "./") || path == "." {
		return filepath.Join(configDir, path)
	}
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
