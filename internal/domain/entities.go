package domain

// Document is one loaded source file, immutable once created by the loader.
type Document struct {
	ID         string
	SourcePath string // repo-relative, slash-separated
	Content    string
}

// Chunk is a bounded segment of a document, the unit of embedding and
// retrieval. Start and End are byte offsets into the parent document's
// content, so the overlap between consecutive chunks can be stripped exactly.
type Chunk struct {
	ID         string `json:"id"`
	DocID      string `json:"doc_id"`
	SourcePath string `json:"source_path"`
	Start      int    `json:"start"`
	End        int    `json:"end"`
	Text       string `json:"text"`
}

// ScoredChunk pairs a chunk with its similarity score against a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Session identifies one isolated indexing/query context. RepoPath and
// DBPath are derived from the session ID and never shared across sessions.
type Session struct {
	ID       string
	RepoPath string
	DBPath   string
}

// RetrievalResult is the answer to one question plus the chunks the
// synthesizer conditioned on, in retrieval rank order.
type RetrievalResult struct {
	Answer       string
	SourceChunks []Chunk
}
