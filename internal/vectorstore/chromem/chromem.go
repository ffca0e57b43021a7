package chromem

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/philippgille/chromem-go"

	"supportbot/internal/domain"
	"supportbot/internal/vectorstore"
)

const queryTimeout = 10 * time.Second

var errPrecomputedOnly = errors.New("chromem store accepts precomputed embeddings only")

// Storage keeps the knowledge base in an in-process chromem-go collection.
// Entries are carried in document metadata.
type Storage struct {
	mu         sync.RWMutex
	db         *chromem.DB
	name       string
	collection *chromem.Collection
	dimension  int
	entries    []domain.KnowledgeEntry // insertion order
}

// NewStorage creates a store backed by collection name.
func NewStorage(name string) *Storage {
	if name == "" {
		name = "knowledge"
	}
	return &Storage{db: chromem.NewDB(), name: name}
}

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.reset(); err != nil {
		return err
	}
	s.dimension = dimension
	return nil
}

func (s *Storage) Upsert(entries []domain.KnowledgeEntry, vectors [][]float64) error {
	if len(entries) != len(vectors) {
		return vectorstore.ErrLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.collection == nil {
		return errors.New("chromem store not initialised")
	}

	docs := make([]chromem.Document, len(entries))
	for i, e := range entries {
		if len(vectors[i]) != s.dimension {
			return vectorstore.ErrDimensionMismatch
		}
		docs[i] = chromem.Document{
			ID:        e.ID,
			Content:   e.Query,
			Embedding: toFloat32(vectors[i]),
			Metadata: map[string]string{
				"query":      e.Query,
				"response":   e.Response,
				"category":   string(e.Category),
				"related_id": e.RelatedID,
			},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	if err := s.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add documents: %w", err)
	}

	index := make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		index[e.ID] = i
	}
	for _, e := range entries {
		if j, ok := index[e.ID]; ok {
			s.entries[j] = e
			continue
		}
		index[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return nil
}

// Search returns entries ranked by cosine similarity. A zero query vector
// matches nothing, so every entry is returned with score 0.
func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.collection == nil {
		return nil, nil
	}
	count := s.collection.Count()
	if count == 0 {
		return nil, nil
	}
	if len(vector) != s.dimension {
		return nil, vectorstore.ErrDimensionMismatch
	}
	n := topK
	if n <= 0 || n > count {
		n = count
	}

	if isZero(vector) {
		return s.zeroScores(n), nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()
	res, err := s.collection.QueryEmbedding(ctx, toFloat32(vector), n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to query collection: %w", err)
	}

	out := make([]domain.SearchResult, len(res))
	for i, r := range res {
		out[i] = domain.SearchResult{Entry: toEntry(r.ID, r.Metadata), Score: float64(r.Similarity)}
	}
	return out, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reset()
}

func (s *Storage) reset() error {
	if s.collection != nil {
		if err := s.db.DeleteCollection(s.name); err != nil {
			return fmt.Errorf("failed to delete collection: %w", err)
		}
	}
	s.entries = nil
	coll, err := s.db.CreateCollection(s.name, nil, func(context.Context, string) ([]float32, error) {
		return nil, errPrecomputedOnly
	})
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}
	s.collection = coll
	return nil
}

func (s *Storage) zeroScores(n int) []domain.SearchResult {
	out := make([]domain.SearchResult, n)
	for i := range out {
		out[i] = domain.SearchResult{Entry: s.entries[i]}
	}
	return out
}

func toEntry(id string, md map[string]string) domain.KnowledgeEntry {
	return domain.KnowledgeEntry{
		ID:        id,
		Query:     md["query"],
		Response:  md["response"],
		Category:  domain.Category(md["category"]),
		RelatedID: md["related_id"],
	}
}

func toFloat32(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

func isZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
