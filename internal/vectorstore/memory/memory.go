package memory

import (
	"sort"
	"sync"

	"supportbot/internal/domain"
	"supportbot/internal/embedding"
	"supportbot/internal/vectorstore"
)

// Storage is an in-memory vector store using brute-force dot products.
// Vectors are expected to be L2-normalised.
type Storage struct {
	mu        sync.RWMutex
	dimension int
	vectors   [][]float64
	entries   []domain.KnowledgeEntry
}

func NewStorage() *Storage { return &Storage{} }

func (s *Storage) Init(dimension int) error {
	if dimension <= 0 {
		return vectorstore.ErrInvalidDimension
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dimension = dimension
	s.vectors = nil
	s.entries = nil
	return nil
}

func (s *Storage) Upsert(entries []domain.KnowledgeEntry, vectors [][]float64) error {
	if len(entries) != len(vectors) {
		return vectorstore.ErrLengthMismatch
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range vectors {
		if len(v) != s.dimension {
			return vectorstore.ErrDimensionMismatch
		}
	}

	index := make(map[string]int, len(s.entries))
	for i, e := range s.entries {
		index[e.ID] = i
	}
	for i, e := range entries {
		if j, ok := index[e.ID]; ok {
			s.entries[j] = e
			s.vectors[j] = vectors[i]
			continue
		}
		index[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
		s.vectors = append(s.vectors, vectors[i])
	}
	return nil
}

// Search scores every entry against vector. Ties keep insertion order.
func (s *Storage) Search(vector []float64, topK int) ([]domain.SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entries) > 0 && len(vector) != s.dimension {
		return nil, vectorstore.ErrDimensionMismatch
	}

	results := make([]domain.SearchResult, len(s.entries))
	for i := range s.entries {
		results[i] = domain.SearchResult{Entry: s.entries[i], Score: embedding.Dot(s.vectors[i], vector)}
	}
	sort.SliceStable(results, func(i, j int) bool { return results[i].Score > results[j].Score })

	if topK > 0 && topK < len(results) {
		results = results[:topK]
	}
	return results, nil
}

func (s *Storage) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.vectors = nil
	s.entries = nil
	return nil
}

// Len returns the number of stored entries.
func (s *Storage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
