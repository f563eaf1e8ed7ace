package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Chunk.Size != 2000 {
		t.Errorf("expected Chunk.Size=2000, got %d", cfg.Chunk.Size)
	}
	if cfg.Chunk.Overlap != 200 {
		t.Errorf("expected Chunk.Overlap=200, got %d", cfg.Chunk.Overlap)
	}
	if cfg.Retrieve.TopK != 3 {
		t.Errorf("expected TopK=3, got %d", cfg.Retrieve.TopK)
	}
	if len(cfg.Loader.Includes) == 0 || cfg.Loader.Includes[0] != "**/*.py" {
		t.Errorf("expected default include **/*.py, got %v", cfg.Loader.Includes)
	}
	if cfg.Embedding.BatchSize != 100 {
		t.Errorf("expected BatchSize=100, got %d", cfg.Embedding.BatchSize)
	}
	if cfg.LLM.Temperature != 0.1 {
		t.Errorf("expected Temperature=0.1, got %f", cfg.LLM.Temperature)
	}
}

func TestLoad_NonExistent(t *testing.T) {
	cfg, err := Load("/nonexistent/path/config.yaml")
	if err != nil {
		t.Errorf("expected no error for non-existent file, got %v", err)
	}
	if cfg == nil {
		t.Error("expected default config, got nil")
	}
}

func TestLoad_ValidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "codebase-rag.yaml")

	content := `
chunk:
  size: 1000
  overlap: 100
retrieve:
  top_k: 5
loader:
  includes: ["**/*.go"]
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Chunk.Size != 1000 {
		t.Errorf("expected Chunk.Size=1000, got %d", cfg.Chunk.Size)
	}
	if cfg.Chunk.Overlap != 100 {
		t.Errorf("expected Chunk.Overlap=100, got %d", cfg.Chunk.Overlap)
	}
	if cfg.Retrieve.TopK != 5 {
		t.Errorf("expected TopK=5, got %d", cfg.Retrieve.TopK)
	}
	if len(cfg.Loader.Includes) != 1 || cfg.Loader.Includes[0] != "**/*.go" {
		t.Errorf("expected includes [**/*.go], got %v", cfg.Loader.Includes)
	}
	// Untouched sections keep their defaults.
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %s", cfg.Embedding.Model)
	}
}

func TestLoadFromDir(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "codebase-rag.yaml")

	content := `
storage:
  repo_root: /data/repos
  index_root: /data/index
`
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromDir(tmpDir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Storage.RepoRoot != "/data/repos" {
		t.Errorf("expected repo_root=/data/repos, got %s", cfg.Storage.RepoRoot)
	}
}

func TestSessionPaths(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Storage.RepoRoot = "/tmp/repos"
	cfg.Storage.IndexRoot = "/tmp/index"

	repo := cfg.SessionRepoPath("abc123")
	if repo != filepath.Join("/tmp/repos", "abc123") {
		t.Errorf("unexpected repo path: %s", repo)
	}

	index := cfg.SessionIndexPath("abc123")
	if index != filepath.Join("/tmp/index", "abc123") {
		t.Errorf("unexpected index path: %s", index)
	}

	if repo == index {
		t.Error("repo and index paths must not collide")
	}
}
