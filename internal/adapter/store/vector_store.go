package store

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"go.etcd.io/bbolt"

	"github.com/saurabh1712/codebase-rag/internal/domain"
)

var (
	bucketChunks  = []byte("chunks")
	bucketVectors = []byte("vectors")
	bucketMeta    = []byte("meta")
	keyModel      = []byte("embedding_model")
)

const dbFileName = "index.db"

// VectorStore is a persistent, path-addressed similarity index backed by
// BoltDB. One store lives inside one session's index directory; it survives
// process restarts and is reopened purely by path. Search is brute-force
// cosine over an in-memory vector cache, which is plenty for per-session
// repository indexes.
type VectorStore struct {
	db       *bbolt.DB
	readOnly bool

	mu      sync.RWMutex
	vectors map[string][]float32
}

// meta describes the embedding space the index was built with. Queries from
// a different embedding model are rejected rather than silently degraded.
type meta struct {
	Model     string `json:"model"`
	Dimension int    `json:"dimension"`
}

// DBPath returns the database file path inside a session's index directory.
func DBPath(dir string) string {
	return filepath.Join(dir, dbFileName)
}

// Exists reports whether a persisted index is present in dir.
func Exists(dir string) bool {
	_, err := os.Stat(DBPath(dir))
	return err == nil
}

// Open opens the store in dir for exclusive writing, creating the directory
// and database as needed.
func Open(dir string) (*VectorStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create index directory: %w", err)
	}

	db, err := bbolt.Open(DBPath(dir), 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open index db: %w", err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		for _, b := range [][]byte{bucketChunks, bucketVectors, bucketMeta} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", b, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return load(db, false)
}

// OpenReadOnly opens an existing store in dir for querying. Readers never
// observe a half-written index because writers hold the db exclusively
// until Close.
func OpenReadOnly(dir string) (*VectorStore, error) {
	if !Exists(dir) {
		return nil, fmt.Errorf("no index found at %s", dir)
	}

	db, err := bbolt.Open(DBPath(dir), 0600, &bbolt.Options{
		ReadOnly: true,
		Timeout:  5 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open index db read-only: %w", err)
	}

	return load(db, true)
}

// load pulls all vectors into memory for search.
func load(db *bbolt.DB, readOnly bool) (*VectorStore, error) {
	s := &VectorStore{
		db:       db,
		readOnly: readOnly,
		vectors:  make(map[string][]float32),
	}

	err := db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketVectors)
		if b == nil {
			return nil
		}
		return b.ForEach(func(k, v []byte) error {
			var vec []float32
			if err := json.Unmarshal(v, &vec); err != nil {
				return fmt.Errorf("corrupt vector %s: %w", k, err)
			}
			s.vectors[string(k)] = vec
			return nil
		})
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to load vectors: %w", err)
	}

	return s, nil
}

// SetModel records the embedding model the index is built with.
func (s *VectorStore) SetModel(model string, dimension int) error {
	if s.readOnly {
		return fmt.Errorf("store is open read-only")
	}
	data, err := json.Marshal(meta{Model: model, Dimension: dimension})
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(bucketMeta).Put(keyModel, data)
	})
}

// Model returns the embedding model and dimension the index was built with.
func (s *VectorStore) Model() (string, int, error) {
	var m meta
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(bucketMeta)
		if b == nil {
			return nil
		}
		data := b.Get(keyModel)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &m)
	})
	return m.Model, m.Dimension, err
}

// Upsert stores chunks and their embedding vectors, one vector per chunk.
func (s *VectorStore) Upsert(chunks []domain.Chunk, vectors [][]float32) error {
	if s.readOnly {
		return fmt.Errorf("store is open read-only")
	}
	if len(chunks) != len(vectors) {
		return fmt.Errorf("chunk/vector count mismatch: %d chunks, %d vectors", len(chunks), len(vectors))
	}

	_, dimension, err := s.Model()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.db.Update(func(tx *bbolt.Tx) error {
		chunkBucket := tx.Bucket(bucketChunks)
		vectorBucket := tx.Bucket(bucketVectors)

		for i, chunk := range chunks {
			if dimension > 0 && len(vectors[i]) != dimension {
				return fmt.Errorf("vector dimension mismatch for chunk %s: expected %d, got %d", chunk.ID, dimension, len(vectors[i]))
			}

			chunkData, err := json.Marshal(chunk)
			if err != nil {
				return err
			}
			if err := chunkBucket.Put([]byte(chunk.ID), chunkData); err != nil {
				return err
			}

			vecData, err := json.Marshal(vectors[i])
			if err != nil {
				return err
			}
			if err := vectorBucket.Put([]byte(chunk.ID), vecData); err != nil {
				return err
			}

			s.vectors[chunk.ID] = vectors[i]
		}

		return nil
	})
}

// Search returns the k chunks whose vectors are closest to query under
// cosine similarity, nearest first. An empty store yields an empty result,
// not an error.
func (s *VectorStore) Search(query []float32, k int) ([]domain.ScoredChunk, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.vectors) == 0 || k <= 0 {
		return nil, nil
	}

	_, dimension, err := s.Model()
	if err != nil {
		return nil, err
	}
	if dimension > 0 && len(query) != dimension {
		return nil, fmt.Errorf("query dimension mismatch: expected %d, got %d", dimension, len(query))
	}

	type scored struct {
		id    string
		score float64
	}

	scores := make([]scored, 0, len(s.vectors))
	for id, vec := range s.vectors {
		scores = append(scores, scored{id: id, score: cosineSimilarity(query, vec)})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].score != scores[j].score {
			return scores[i].score > scores[j].score
		}
		return scores[i].id < scores[j].id
	})

	if k > len(scores) {
		k = len(scores)
	}

	results := make([]domain.ScoredChunk, 0, k)
	err = s.db.View(func(tx *bbolt.Tx) error {
		chunkBucket := tx.Bucket(bucketChunks)
		for i := 0; i < k; i++ {
			data := chunkBucket.Get([]byte(scores[i].id))
			if data == nil {
				return fmt.Errorf("chunk record missing for vector %s", scores[i].id)
			}
			var chunk domain.Chunk
			if err := json.Unmarshal(data, &chunk); err != nil {
				return fmt.Errorf("corrupt chunk %s: %w", scores[i].id, err)
			}
			results = append(results, domain.ScoredChunk{Chunk: chunk, Score: scores[i].score})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return results, nil
}

// Count returns the number of stored vectors.
func (s *VectorStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.vectors), nil
}

// Close releases the database file.
func (s *VectorStore) Close() error {
	return s.db.Close()
}

// cosineSimilarity calculates the cosine similarity between two vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
