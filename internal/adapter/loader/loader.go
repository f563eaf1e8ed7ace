package loader

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/saurabh1712/codebase-rag/internal/domain"
)

// Loader walks a fetched repository tree and produces one Document per file
// matching the include globs. Files matching an exclude glob, exceeding the
// size cap, or failing to read are silently skipped; skipping is a filter
// outcome, not an error.
type Loader struct {
	includes    []string
	excludes    []string
	maxFileSize int64
}

// New creates a Loader with doublestar include/exclude patterns, matched
// against repo-relative slash paths.
func New(includes, excludes []string, maxFileSize int64) *Loader {
	if len(includes) == 0 {
		includes = []string{"**/*"}
	}
	if maxFileSize <= 0 {
		maxFileSize = 1 << 20
	}
	return &Loader{
		includes:    includes,
		excludes:    excludes,
		maxFileSize: maxFileSize,
	}
}

// Includes returns the configured include globs, for error reporting.
func (l *Loader) Includes() []string {
	return l.includes
}

// Load reads all qualifying files under root. Returns an empty slice when
// nothing matches; the caller decides whether that is fatal. The tree is
// never mutated.
func (l *Loader) Load(root string) ([]domain.Document, error) {
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	var docs []domain.Document

	err = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if info.IsDir() {
			if path != root && l.matchesAny(l.excludes, relPath+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}
		if info.Size() == 0 || info.Size() > l.maxFileSize {
			return nil
		}
		if !l.matchesAny(l.includes, relPath) || l.matchesAny(l.excludes, relPath) {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			// Unreadable files are excluded, same as filter misses.
			return nil
		}

		docs = append(docs, domain.Document{
			ID:         docID(relPath),
			SourcePath: relPath,
			Content:    string(data),
		})
		return nil
	})

	return docs, err
}

func (l *Loader) matchesAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		matched, err := doublestar.Match(pattern, path)
		if err == nil && matched {
			return true
		}
	}
	return false
}

// docID derives a stable identifier from the repo-relative path.
func docID(relPath string) string {
	hash := sha256.Sum256([]byte(relPath))
	return hex.EncodeToString(hash[:8])
}
