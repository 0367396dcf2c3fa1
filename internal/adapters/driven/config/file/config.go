// Package file loads and persists application configuration as a TOML
// file. Settings are typed; secrets may also come from the environment
// so they never have to be written to disk.
package file

import (
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/repovec/repovec/internal/chunker"
	"github.com/repovec/repovec/internal/core/services"
)

// Environment variables that override their file counterparts.
const (
	EnvOpenAIAPIKey = "OPENAI_API_KEY"
	EnvGitHubToken  = "GITHUB_TOKEN"
)

// Embedding backend names accepted in the config file.
const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"
)

// Config is the full application configuration.
type Config struct {
	// DataDir is where the catalog database lives. Empty selects the
	// default under the user's home directory.
	DataDir string `toml:"data_dir"`

	Chunking  ChunkingConfig  `toml:"chunking"`
	Embedding EmbeddingConfig `toml:"embedding"`
	Ingest    IngestConfig    `toml:"ingest"`
	GitHub    GitHubConfig    `toml:"github"`
}

// ChunkingConfig tunes the document splitter.
type ChunkingConfig struct {
	MaxTokens int `toml:"max_tokens"`
	Overlap   int `toml:"overlap"`
}

// EmbeddingConfig selects and configures the embedding backend.
type EmbeddingConfig struct {
	// Backend is "ollama" or "openai".
	Backend string `toml:"backend"`

	// Model overrides the backend's default embedding model.
	Model string `toml:"model"`

	// BaseURL overrides the backend's API endpoint.
	BaseURL string `toml:"base_url"`

	// APIKey authenticates the OpenAI backend. The OPENAI_API_KEY
	// environment variable takes precedence.
	APIKey string `toml:"api_key"`

	// Dimensions overrides the model's default vector size.
	Dimensions int `toml:"dimensions"`

	// TimeoutSeconds bounds one embedding request.
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// Timeout returns the request timeout, zero when unset.
func (c EmbeddingConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// IngestConfig tunes the ingestion pipeline.
type IngestConfig struct {
	// Workers bounds parallel document processing.
	Workers int `toml:"workers"`

	// EmbedConcurrency bounds in-flight embedding batches.
	EmbedConcurrency int `toml:"embed_concurrency"`

	// EmbedRetries is the retry count for transient embedding failures.
	EmbedRetries int `toml:"embed_retries"`
}

// GitHubConfig configures the GitHub crawler.
type GitHubConfig struct {
	// Token authenticates API requests. The GITHUB_TOKEN environment
	// variable takes precedence. Empty means unauthenticated access.
	Token string `toml:"token"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		Chunking: ChunkingConfig{
			MaxTokens: chunker.DefaultMaxTokens,
			Overlap:   chunker.DefaultOverlap,
		},
		Embedding: EmbeddingConfig{
			Backend: BackendOllama,
		},
		Ingest: IngestConfig{
			Workers:          services.DefaultIngestWorkers,
			EmbedConcurrency: services.DefaultEmbedConcurrency,
			EmbedRetries:     services.DefaultEmbedRetries,
		},
	}
}

// DefaultPath returns ~/.repovec/config.toml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".repovec", "config.toml"), nil
}

// Load reads the configuration file at path, layering it over the
// defaults and the defaults over zero values. A missing file yields the
// defaults without error. If path is empty the default location is used.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return cfg, err
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the configuration to path with restricted permissions,
// creating the parent directory if needed.
func Save(cfg Config, path string) error {
	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// applyEnv overlays secrets from the environment.
func applyEnv(cfg *Config) {
	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		cfg.Embedding.APIKey = key
	}
	if token := os.Getenv(EnvGitHubToken); token != "" {
		cfg.GitHub.Token = token
	}
}
