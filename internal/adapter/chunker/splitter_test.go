package chunker

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/saurabh1712/codebase-rag/internal/domain"
)

func pythonSeparators() []string {
	return []string{"\nclass ", "\ndef ", "\n\tdef ", "\n    def ", "\n\n", "\n", " "}
}

// reconstruct stitches chunks back together using their byte offsets,
// dropping the overlapping prefix of each chunk after the first.
func reconstruct(chunks []domain.Chunk) string {
	if len(chunks) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(chunks[0].Text)
	prevEnd := chunks[0].End
	for _, c := range chunks[1:] {
		sb.WriteString(c.Text[prevEnd-c.Start:])
		prevEnd = c.End
	}
	return sb.String()
}

func TestSplitSmallDocumentSingleChunk(t *testing.T) {
	splitter := New(2000, 200, pythonSeparators())

	doc := domain.Document{ID: "d1", SourcePath: "main.py", Content: "def main():\n    pass\n"}
	chunks := splitter.Split([]domain.Document{doc})

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	if chunks[0].Text != doc.Content {
		t.Error("single chunk should cover the whole document")
	}
	if chunks[0].SourcePath != "main.py" {
		t.Errorf("chunk lost provenance: %s", chunks[0].SourcePath)
	}
	if chunks[0].Start != 0 || chunks[0].End != len(doc.Content) {
		t.Errorf("unexpected offsets: %d-%d", chunks[0].Start, chunks[0].End)
	}
}

func TestSplitRoundTrip(t *testing.T) {
	splitter := New(120, 20, pythonSeparators())

	var sb strings.Builder
	for i := 0; i < 30; i++ {
		sb.WriteString("def handler_")
		sb.WriteString(strings.Repeat("x", i%7))
		sb.WriteString("(request):\n    return process(request)\n\n")
	}
	doc := domain.Document{ID: "d1", SourcePath: "views.py", Content: sb.String()}

	chunks := splitter.Split([]domain.Document{doc})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	if got := reconstruct(chunks); got != doc.Content {
		t.Errorf("round trip failed:\nwant %d bytes\ngot  %d bytes", len(doc.Content), len(got))
	}
}

func TestSplitRespectsMaxSize(t *testing.T) {
	const size = 100
	splitter := New(size, 10, pythonSeparators())

	doc := domain.Document{
		ID:         "d1",
		SourcePath: "big.py",
		Content:    strings.Repeat("some code tokens here\n", 200),
	}

	for _, chunk := range splitter.Split([]domain.Document{doc}) {
		if len(chunk.Text) > size {
			t.Errorf("chunk %s exceeds max size: %d > %d", chunk.ID, len(chunk.Text), size)
		}
	}
}

func TestSplitDeterministic(t *testing.T) {
	splitter := New(80, 15, pythonSeparators())

	doc := domain.Document{
		ID:         "d1",
		SourcePath: "a.py",
		Content:    strings.Repeat("def f():\n    x = 1\n    return x\n\n", 20),
	}

	first := splitter.Split([]domain.Document{doc})
	second := splitter.Split([]domain.Document{doc})

	if len(first) != len(second) {
		t.Fatalf("chunk counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("chunk %d differs between runs", i)
		}
	}
}

func TestSplitPrefersDefinitionBoundary(t *testing.T) {
	splitter := New(100, 0, pythonSeparators())

	content := "def first():\n    a = 1\n    b = 2\n    return a + b\n" +
		"\ndef second():\n    return 42\n" +
		"\ndef third():\n    return 43\n"
	doc := domain.Document{ID: "d1", SourcePath: "m.py", Content: content}

	chunks := splitter.Split([]domain.Document{doc})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	// At least one continuation chunk should open at a def boundary rather
	// than mid-statement.
	found := false
	for _, chunk := range chunks[1:] {
		if strings.HasPrefix(chunk.Text, "def ") || strings.HasPrefix(chunk.Text, "\ndef ") {
			found = true
		}
	}
	if !found {
		t.Error("no chunk starts at a function boundary")
	}
}

func TestSplitOverlap(t *testing.T) {
	splitter := New(60, 20, []string{"\n", " "})

	doc := domain.Document{
		ID:         "d1",
		SourcePath: "a.py",
		Content:    strings.Repeat("alpha beta gamma delta\n", 15),
	}

	chunks := splitter.Split([]domain.Document{doc})
	if len(chunks) < 2 {
		t.Fatalf("expected multiple chunks, got %d", len(chunks))
	}

	for i := 1; i < len(chunks); i++ {
		if chunks[i].Start >= chunks[i-1].End {
			t.Errorf("chunks %d and %d do not overlap: prev ends %d, next starts %d",
				i-1, i, chunks[i-1].End, chunks[i].Start)
		}
	}
}

func TestSplitEmptyDocument(t *testing.T) {
	splitter := New(2000, 200, pythonSeparators())

	chunks := splitter.Split([]domain.Document{{ID: "d1", SourcePath: "e.py", Content: ""}})
	if len(chunks) != 0 {
		t.Errorf("expected no chunks for empty document, got %d", len(chunks))
	}
}

func TestChunkIDUniqueness(t *testing.T) {
	splitter := New(50, 10, pythonSeparators())

	doc := domain.Document{
		ID:         "d1",
		SourcePath: "a.py",
		Content:    strings.Repeat("line of code here\n", 40),
	}

	ids := make(map[string]bool)
	for _, chunk := range splitter.Split([]domain.Document{doc}) {
		if ids[chunk.ID] {
			t.Errorf("duplicate chunk ID: %s", chunk.ID)
		}
		ids[chunk.ID] = true
	}
}

func TestSplitMultiByteSafety(t *testing.T) {
	// No separators apply, forcing hard cuts through multi-byte text.
	splitter := New(50, 5, []string{"\x00never"})

	doc := domain.Document{
		ID:         "d1",
		SourcePath: "u.py",
		Content:    strings.Repeat("héllo wörld çödé ", 30),
	}

	chunks := splitter.Split([]domain.Document{doc})
	for i, chunk := range chunks {
		if !utf8.ValidString(chunk.Text) {
			t.Errorf("chunk %d splits a UTF-8 sequence", i)
		}
	}
	if got := reconstruct(chunks); got != doc.Content {
		t.Error("round trip failed for multi-byte content")
	}
}
