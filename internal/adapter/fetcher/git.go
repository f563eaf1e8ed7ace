package fetcher

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
)

// GitFetcher materializes a repository by shallow-cloning it with the git
// CLI. Any pre-existing tree at the destination is removed first, so a
// re-fetch always starts clean.
type GitFetcher struct{}

// NewGitFetcher creates a GitFetcher.
func NewGitFetcher() *GitFetcher {
	return &GitFetcher{}
}

// Fetch clones locator into dest, replacing whatever was there.
func (f *GitFetcher) Fetch(ctx context.Context, locator, dest string) error {
	if err := os.RemoveAll(dest); err != nil {
		return fmt.Errorf("failed to clear destination %s: %w", dest, err)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create destination parent: %w", err)
	}

	cmd := exec.CommandContext(ctx, "git", "clone", "--depth", "1", locator, dest)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		// Leave nothing behind after a failed clone.
		os.RemoveAll(dest)
		if msg := bytes.TrimSpace(stderr.Bytes()); len(msg) > 0 {
			return fmt.Errorf("git clone failed: %s", msg)
		}
		return fmt.Errorf("git clone failed: %w", err)
	}

	return nil
}
