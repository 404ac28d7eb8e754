// Package knowledge implements the retrieval layer behind stage prompts.
// A Store holds documents for one source and searches them by embedding
// similarity, degrading to keyword overlap whenever no embedding service
// is configured or an embedding call fails. A Federator groups the
// general store with named per-topic stores.
package knowledge

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/mindio-dev/mindio/pkg/embeddings"
	"github.com/mindio-dev/mindio/pkg/observability"
)

// ErrInvalidDocument is returned when a document has no content.
var ErrInvalidDocument = errors.New("document content cannot be empty")

// DefaultTopK is the result count used when a caller passes topK <= 0.
const DefaultTopK = 3

// Document is a single retrievable unit of knowledge.
type Document struct {
	Content  string            `json:"content"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result pairs a document with its similarity score for one query.
type Result struct {
	Document Document
	Score    float64
}

// Store holds documents and their embedding vectors for one source.
// The vector cache may lag behind the documents; Search rebuilds it in
// full when the counts diverge.
type Store struct {
	mu       sync.RWMutex
	docs     []Document
	vectors  [][]float32
	embedder embeddings.Service
}

// NewStore creates a store. A nil embedder is valid and limits the
// store to keyword search.
func NewStore(embedder embeddings.Service) *Store {
	return &Store{embedder: embedder}
}

// Add appends a document. Embedding is best-effort; a failed or skipped
// embedding leaves the vector cache stale and Search repairs it later.
func (s *Store) Add(ctx context.Context, doc Document) error {
	if strings.TrimSpace(doc.Content) == "" {
		return ErrInvalidDocument
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.embedder != nil && len(s.vectors) == len(s.docs) {
		if vec, err := s.embedder.Embed(ctx, doc.Content); err == nil {
			s.vectors = append(s.vectors, vec)
		}
	}
	s.docs = append(s.docs, doc)
	return nil
}

// AddAll appends all documents, stopping at the first invalid one.
func (s *Store) AddAll(ctx context.Context, docs []Document) error {
	for _, doc := range docs {
		if err := s.Add(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

// Search returns the topK most relevant documents. Every stored
// document is scored and ranked; zero-score documents still appear when
// topK exceeds the number of better matches. Ties keep insertion order.
func (s *Store) Search(ctx context.Context, query string, topK int) []Result {
	if topK <= 0 {
		topK = DefaultTopK
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.docs) == 0 {
		return nil
	}

	scores, ok := s.vectorScores(ctx, query)
	mode := "embedding"
	if !ok {
		scores = s.keywordScores(query)
		mode = "keyword"
	}
	observability.RecordKnowledgeSearch(mode)

	results := make([]Result, len(s.docs))
	for i, doc := range s.docs {
		results[i] = Result{Document: doc, Score: scores[i]}
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > topK {
		results = results[:topK]
	}
	return results
}

// vectorScores computes cosine similarities for all documents,
// rebuilding the vector cache first if it is out of sync. Returns
// ok=false when embeddings are unavailable, which switches the caller
// to keyword scoring.
func (s *Store) vectorScores(ctx context.Context, query string) ([]float64, bool) {
	if s.embedder == nil {
		return nil, false
	}

	if len(s.vectors) != len(s.docs) {
		texts := make([]string, len(s.docs))
		for i, doc := range s.docs {
			texts[i] = doc.Content
		}
		vectors, err := s.embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, false
		}
		s.vectors = vectors
	}

	queryVec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, false
	}

	scores := make([]float64, len(s.docs))
	for i, vec := range s.vectors {
		scores[i] = cosineSimilarity(queryVec, vec)
	}
	return scores, true
}

// keywordScores scores each document by the fraction of query words it
// contains.
func (s *Store) keywordScores(query string) []float64 {
	queryWords := tokenize(query)

	scores := make([]float64, len(s.docs))
	if len(queryWords) == 0 {
		return scores
	}

	for i, doc := range s.docs {
		docWords := make(map[string]bool)
		for _, w := range strings.Fields(strings.ToLower(doc.Content)) {
			docWords[w] = true
		}

		matched := 0
		for w := range queryWords {
			if docWords[w] {
				matched++
			}
		}
		scores[i] = float64(matched) / float64(len(queryWords))
	}
	return scores
}

func tokenize(text string) map[string]bool {
	words := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(text)) {
		words[w] = true
	}
	return words
}

// cosineSimilarity returns 0 when either vector has zero norm.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
