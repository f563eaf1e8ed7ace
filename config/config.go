package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the codebase RAG pipeline.
type Config struct {
	Storage   StorageConfig   `yaml:"storage"`
	Loader    LoaderConfig    `yaml:"loader"`
	Chunk     ChunkConfig     `yaml:"chunk"`
	Retrieve  RetrieveConfig  `yaml:"retrieve"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	LLM       LLMConfig       `yaml:"llm"`
}

// StorageConfig holds the roots under which per-session directories live.
type StorageConfig struct {
	RepoRoot  string `yaml:"repo_root"`  // fetched source trees: {repo_root}/{session_id}
	IndexRoot string `yaml:"index_root"` // persisted vector indexes: {index_root}/{session_id}
}

// LoaderConfig holds the file filter. The filter is explicit configuration,
// not a hard-coded language assumption; defaults match the reference
// behavior of indexing Python files only.
type LoaderConfig struct {
	Includes    []string `yaml:"includes"`
	Excludes    []string `yaml:"excludes"`
	MaxFileSize int64    `yaml:"max_file_size"`
}

// ChunkConfig holds splitting parameters, in characters.
type ChunkConfig struct {
	Size       int      `yaml:"size"`
	Overlap    int      `yaml:"overlap"`
	Separators []string `yaml:"separators"`
}

// RetrieveConfig holds retrieval parameters.
type RetrieveConfig struct {
	TopK int `yaml:"top_k"`
}

// EmbeddingConfig holds embedding configuration.
type EmbeddingConfig struct {
	Provider  string `yaml:"provider"`    // "openai" or "mock"
	Model     string `yaml:"model"`       // e.g., "text-embedding-3-small"
	APIKeyEnv string `yaml:"api_key_env"` // environment variable holding the API key
	Dimension int    `yaml:"dimension"`
	BatchSize int    `yaml:"batch_size"`
}

// LLMConfig holds generative model configuration.
type LLMConfig struct {
	Model       string  `yaml:"model"`
	APIKeyEnv   string  `yaml:"api_key_env"`
	Temperature float32 `yaml:"temperature"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Storage: StorageConfig{
			RepoRoot:  "./sessions/repos",
			IndexRoot: "./sessions/index",
		},
		Loader: LoaderConfig{
			Includes:    []string{"**/*.py"},
			Excludes:    []string{"**/.git/**", "**/__pycache__/**", "**/node_modules/**", "**/venv/**", "**/.venv/**"},
			MaxFileSize: 1 << 20,
		},
		Chunk: ChunkConfig{
			Size:    2000,
			Overlap: 200,
			// Highest priority first: class and function boundaries, then
			// blank lines, then single newlines, then words.
			Separators: []string{"\nclass ", "\ndef ", "\n\tdef ", "\n    def ", "\n\n", "\n", " "},
		},
		Retrieve: RetrieveConfig{
			TopK: 3,
		},
		Embedding: EmbeddingConfig{
			Provider:  "openai",
			Model:     "text-embedding-3-small",
			APIKeyEnv: "OPENAI_API_KEY",
			Dimension: 1536,
			BatchSize: 100,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			APIKeyEnv:   "OPENAI_API_KEY",
			Temperature: 0.1,
		},
	}
}

// Load loads configuration from a YAML file, falling back to defaults if
// the file does not exist.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromDir loads configuration from a directory (looks for codebase-rag.yaml).
func LoadFromDir(dir string) (*Config, error) {
	path := filepath.Join(dir, "codebase-rag.yaml")
	if _, err := os.Stat(path); err == nil {
		return Load(path)
	}
	return DefaultConfig(), nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SessionRepoPath returns the directory holding a session's fetched source tree.
func (c *Config) SessionRepoPath(sessionID string) string {
	return filepath.Join(c.Storage.RepoRoot, sessionID)
}

// SessionIndexPath returns the directory holding a session's persisted index.
func (c *Config) SessionIndexPath(sessionID string) string {
	return filepath.Join(c.Storage.IndexRoot, sessionID)
}
