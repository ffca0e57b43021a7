// Package vectorstore defines the similarity index the knowledge base is
// searched through. Implementations live in subpackages.
package vectorstore

import (
	"errors"

	"supportbot/internal/domain"
)

var (
	ErrInvalidDimension  = errors.New("invalid dimension")
	ErrLengthMismatch    = errors.New("entries and vectors length mismatch")
	ErrDimensionMismatch = errors.New("vector dimension mismatch")
)

// Storage persists vectors and supports similarity search. Search with
// topK <= 0 returns every stored entry, best first.
type Storage interface {
	domain.VectorStore
}
