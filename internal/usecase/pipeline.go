package usecase

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"

	"github.com/saurabh1712/codebase-rag/config"
	"github.com/saurabh1712/codebase-rag/internal/adapter/chunker"
	"github.com/saurabh1712/codebase-rag/internal/adapter/loader"
	"github.com/saurabh1712/codebase-rag/internal/adapter/retriever"
	"github.com/saurabh1712/codebase-rag/internal/adapter/store"
	"github.com/saurabh1712/codebase-rag/internal/domain"
	"github.com/saurabh1712/codebase-rag/internal/port"
)

// State tracks where a session's pipeline is in its lifecycle.
type State int

const (
	StateUninitialized State = iota
	StateIndexing
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateIndexing:
		return "indexing"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// ProgressFunc reports embedding progress during an index build.
type ProgressFunc func(done, total int)

// Pipeline orchestrates fetch, load, chunk, embed and ask for one session.
// All operations on a session are serialized by a mutex; sessions share no
// state with each other, so separate sessions run concurrently without
// coordination.
type Pipeline struct {
	mu    sync.Mutex
	state State

	session  domain.Session
	fetcher  port.Fetcher
	embedder port.Embedder
	synth    *Synthesizer
	loader   *loader.Loader
	splitter *chunker.Splitter

	topK      int
	batchSize int
}

// NewSession derives the session's storage paths from its identifier,
// generating a fresh unguessable ID when none is supplied.
func NewSession(cfg *config.Config, id string) domain.Session {
	if id == "" {
		id = uuid.NewString()
	}
	return domain.Session{
		ID:       id,
		RepoPath: cfg.SessionRepoPath(id),
		DBPath:   cfg.SessionIndexPath(id),
	}
}

// NewPipeline wires a pipeline for one session. If the session already has
// a persisted index on disk, the pipeline starts Ready, so a new process
// can answer questions without re-indexing.
func NewPipeline(
	session domain.Session,
	fetcher port.Fetcher,
	embedder port.Embedder,
	generator port.Generator,
	ld *loader.Loader,
	splitter *chunker.Splitter,
	topK int,
	batchSize int,
) *Pipeline {
	if topK <= 0 {
		topK = 3
	}
	if batchSize <= 0 {
		batchSize = 100
	}

	state := StateUninitialized
	if store.Exists(session.DBPath) {
		state = StateReady
	}

	return &Pipeline{
		state:     state,
		session:   session,
		fetcher:   fetcher,
		embedder:  embedder,
		synth:     NewSynthesizer(generator),
		loader:    ld,
		splitter:  splitter,
		topK:      topK,
		batchSize: batchSize,
	}
}

// Session returns the session this pipeline operates on.
func (p *Pipeline) Session() domain.Session {
	return p.session
}

// State returns the pipeline's current lifecycle state.
func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Index fetches the repository, loads and chunks its documents, embeds the
// chunks and persists the session's vector index. Stages run in strict
// order and the first failure aborts the rest; a failed build removes the
// index directory so Ask can never observe a half-built index. Re-indexing
// the same session starts from an empty index.
func (p *Pipeline) Index(ctx context.Context, locator string, progress ProgressFunc) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.state = StateIndexing

	fail := func(err error) error {
		os.RemoveAll(p.session.DBPath)
		p.state = StateFailed
		return err
	}

	// Discard any prior index before building.
	if err := os.RemoveAll(p.session.DBPath); err != nil {
		return fail(&domain.IndexBuildError{Stage: "reset", Err: err})
	}

	if err := p.fetcher.Fetch(ctx, locator, p.session.RepoPath); err != nil {
		return fail(&domain.FetchError{Locator: locator, Err: err})
	}

	docs, err := p.loader.Load(p.session.RepoPath)
	if err != nil {
		return fail(&domain.IndexBuildError{Stage: "load", Err: err})
	}
	if len(docs) == 0 {
		return fail(&domain.EmptyCorpusError{Root: p.session.RepoPath, Includes: p.loader.Includes()})
	}

	chunks := p.splitter.Split(docs)

	if err := p.buildIndex(ctx, chunks, progress); err != nil {
		return fail(err)
	}

	p.state = StateReady
	return nil
}

// buildIndex holds the session's store open for exclusive writing, embeds
// all chunks in batches and persists them, then releases the store so Ask
// can reopen it read-only.
func (p *Pipeline) buildIndex(ctx context.Context, chunks []domain.Chunk, progress ProgressFunc) error {
	vs, err := store.Open(p.session.DBPath)
	if err != nil {
		return &domain.IndexBuildError{Stage: "open-store", Err: err}
	}
	defer vs.Close()

	if err := vs.SetModel(p.embedder.ModelName(), p.embedder.Dimension()); err != nil {
		return &domain.IndexBuildError{Stage: "store-meta", Err: err}
	}

	for i := 0; i < len(chunks); i += p.batchSize {
		end := i + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		texts := make([]string, len(batch))
		for j, chunk := range batch {
			texts[j] = chunk.Text
		}

		vectors, err := p.embedder.Embed(ctx, texts)
		if err != nil {
			return &domain.IndexBuildError{Stage: "embed", Err: err}
		}

		if err := vs.Upsert(batch, vectors); err != nil {
			return &domain.IndexBuildError{Stage: "persist", Err: err}
		}

		if progress != nil {
			progress(end, len(chunks))
		}
	}

	return nil
}

// Ask retrieves the top-k chunks for question and synthesizes a grounded
// answer from exactly those chunks. Valid only once the session is Ready;
// per-question failures are returned as errors without touching the
// session state.
func (p *Pipeline) Ask(ctx context.Context, question string) (domain.RetrievalResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.state != StateReady {
		return domain.RetrievalResult{}, domain.ErrNotIndexed
	}

	vs, err := store.OpenReadOnly(p.session.DBPath)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("failed to open session index: %w", err)
	}
	defer vs.Close()

	scored, err := retriever.NewSemantic(p.embedder, vs).Retrieve(ctx, question, p.topK)
	if err != nil {
		return domain.RetrievalResult{}, fmt.Errorf("retrieval failed: %w", err)
	}

	// The chunks shown as sources are exactly the chunks the synthesizer
	// conditioned on.
	sourceChunks := make([]domain.Chunk, len(scored))
	for i, sc := range scored {
		sourceChunks[i] = sc.Chunk
	}

	answer, err := p.synth.Generate(ctx, question, sourceChunks)
	if err != nil {
		return domain.RetrievalResult{}, &domain.SynthesisError{Err: err}
	}

	return domain.RetrievalResult{
		Answer:       answer,
		SourceChunks: sourceChunks,
	}, nil
}

// Clear deletes the session's repository tree and index, then recreates
// both directories empty. The session returns to Uninitialized.
func (p *Pipeline) Clear() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if err := ClearSession(p.session); err != nil {
		return err
	}

	p.state = StateUninitialized
	return nil
}

// ClearSession deletes and recreates a session's storage directories, so no
// later call can observe a partial deletion.
func ClearSession(session domain.Session) error {
	for _, dir := range []string{session.RepoPath, session.DBPath} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("failed to clear %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to recreate %s: %w", dir, err)
		}
	}
	return nil
}
