package chunker

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/saurabh1712/codebase-rag/internal/domain"
)

// Splitter cuts documents into overlapping character-bounded chunks,
// preferring syntactic boundaries over raw character cuts. Separators are
// tried in priority order; a separator consisting only of whitespace cuts
// after itself, any other separator (a definition marker such as "\ndef ")
// cuts after its leading newline so the definition opens the next chunk.
//
// Splitting is deterministic and chunks carry byte offsets into the parent
// document, so concatenating chunks with the overlap stripped reproduces
// the document exactly.
type Splitter struct {
	size       int
	overlap    int
	separators []string
}

// New creates a Splitter with the given chunk size and overlap, both in
// bytes. An overlap at or above size is clamped to a tenth of size.
func New(size, overlap int, separators []string) *Splitter {
	if size <= 0 {
		size = 2000
	}
	if overlap < 0 || overlap >= size {
		overlap = size / 10
	}
	if len(separators) == 0 {
		separators = []string{"\n\n", "\n", " "}
	}
	return &Splitter{
		size:       size,
		overlap:    overlap,
		separators: separators,
	}
}

// Split chunks every document, preserving each parent's provenance metadata.
func (s *Splitter) Split(docs []domain.Document) []domain.Chunk {
	var chunks []domain.Chunk
	for _, doc := range docs {
		chunks = append(chunks, s.splitDocument(doc)...)
	}
	return chunks
}

func (s *Splitter) splitDocument(doc domain.Document) []domain.Chunk {
	content := doc.Content
	if content == "" {
		return nil
	}

	var chunks []domain.Chunk
	start := 0

	for start < len(content) {
		end := start + s.size
		if end >= len(content) {
			end = len(content)
		} else {
			end = s.cutPoint(content, start, end)
		}

		chunks = append(chunks, domain.Chunk{
			ID:         chunkID(doc.ID, start, end),
			DocID:      doc.ID,
			SourcePath: doc.SourcePath,
			Start:      start,
			End:        end,
			Text:       content[start:end],
		})

		if end == len(content) {
			break
		}

		next := end - s.overlap
		if next <= start {
			next = start + 1
		}
		for next > start+1 && !utf8.RuneStart(content[next]) {
			next--
		}
		start = next
	}

	return chunks
}

// cutPoint finds the best position to end a chunk that starts at start and
// may extend at most to limit. Separators are tried in priority order; the
// last occurrence in the back half of the window wins, so chunks stay close
// to the target size. Falls back to a hard cut at limit.
func (s *Splitter) cutPoint(content string, start, limit int) int {
	window := content[start:limit]
	half := len(window) / 2

	for _, sep := range s.separators {
		idx := strings.LastIndex(window, sep)
		if idx <= 0 {
			continue
		}

		cut := idx + len(sep)
		if strings.TrimSpace(sep) != "" {
			// Keep the definition with the next chunk, cutting just past
			// the separator's leading newline.
			cut = idx + 1
		}
		if cut <= half {
			continue
		}
		if start+cut >= limit {
			continue
		}
		return start + cut
	}

	// Hard cut: back up to a rune boundary so no UTF-8 sequence is split.
	for limit > start+1 && !utf8.RuneStart(content[limit]) {
		limit--
	}
	return limit
}

// chunkID derives a stable identifier from the parent document and the
// chunk's byte range.
func chunkID(docID string, start, end int) string {
	data := fmt.Sprintf("%s:%d-%d", docID, start, end)
	hash := sha256.Sum256([]byte(data))
	return hex.EncodeToString(hash[:8])
}
