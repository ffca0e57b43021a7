// Package cache persists corpus embeddings in a bbolt file so restarts do not
// re-embed the static corpus against a remote API. Keys carry a fingerprint
// of the prepared corpus, so vectors from a corpus-dependent embedder such
// as TF-IDF are never served after the corpus changes. Texts outside the
// prepared corpus (live queries) bypass the cache.
package cache

import (
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"strconv"
	"sync"

	"github.com/cespare/xxhash/v2"
	bolt "go.etcd.io/bbolt"

	"supportbot/internal/domain"
)

var bucketName = []byte("embeddings")

// Embedder decorates another embedder with a bbolt-backed vector cache.
type Embedder struct {
	inner domain.Embedder
	model string
	db    *bolt.DB

	mu        sync.RWMutex
	prefix    string
	corpus    map[uint64]struct{}
	dimension int
}

// Open opens (or creates) the cache file at path in front of inner. model
// distinguishes vectors of different remote models sharing one file.
func Open(path string, inner domain.Embedder, model string) (*Embedder, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open embedding cache: %w", err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketName)
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create embeddings bucket: %w", err)
	}
	return &Embedder{inner: inner, model: model, db: db}, nil
}

// Name returns the wrapped embedder's name.
func (e *Embedder) Name() string { return e.inner.Name() }

// Prepare delegates to the wrapped embedder and scopes the cache to corpus.
func (e *Embedder) Prepare(corpus []string) error {
	if err := e.inner.Prepare(corpus); err != nil {
		return err
	}

	d := xxhash.New()
	members := make(map[uint64]struct{}, len(corpus))
	for _, text := range corpus {
		_, _ = d.WriteString(text)
		_, _ = d.Write([]byte{0})
		members[xxhash.Sum64String(text)] = struct{}{}
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.prefix = e.inner.Name() + "|" + e.model + "|" + strconv.FormatUint(d.Sum64(), 16) + "|"
	e.corpus = members
	e.dimension = 0
	return nil
}

// Dimension reports the wrapped embedder's dimension, or the size of the
// first cached vector when the wrapped one has not learned it yet.
func (e *Embedder) Dimension() int {
	if d := e.inner.Dimension(); d > 0 {
		return d
	}
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.dimension
}

// Embed returns the cached vector for text or computes and stores it.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float64, error) {
	key, ok := e.key(text)
	if !ok {
		return e.inner.Embed(ctx, text)
	}

	var cached []float64
	if err := e.db.View(func(tx *bolt.Tx) error {
		if raw := tx.Bucket(bucketName).Get(key); raw != nil {
			cached = decode(raw)
		}
		return nil
	}); err != nil {
		return nil, fmt.Errorf("read embedding cache: %w", err)
	}
	if cached != nil {
		e.learn(len(cached))
		return cached, nil
	}

	vec, err := e.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := e.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketName).Put(key, encode(vec))
	}); err != nil {
		return nil, fmt.Errorf("write embedding cache: %w", err)
	}
	e.learn(len(vec))
	return vec, nil
}

// Len returns the number of cached vectors.
func (e *Embedder) Len() int {
	n := 0
	_ = e.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(bucketName).Stats().KeyN
		return nil
	})
	return n
}

// Close releases the cache file.
func (e *Embedder) Close() error {
	return e.db.Close()
}

// key returns the cache key for text, or false when text is not part of the
// prepared corpus.
func (e *Embedder) key(text string) ([]byte, bool) {
	h := xxhash.Sum64String(text)
	e.mu.RLock()
	defer e.mu.RUnlock()
	if _, ok := e.corpus[h]; !ok {
		return nil, false
	}
	return []byte(e.prefix + strconv.FormatUint(h, 16)), true
}

func (e *Embedder) learn(n int) {
	e.mu.Lock()
	if e.dimension == 0 {
		e.dimension = n
	}
	e.mu.Unlock()
}

func encode(vec []float64) []byte {
	buf := make([]byte, 8*len(vec))
	for i, v := range vec {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(v))
	}
	return buf
}

func decode(raw []byte) []float64 {
	vec := make([]float64, len(raw)/8)
	for i := range vec {
		vec[i] = math.Float64frombits(binary.LittleEndian.Uint64(raw[i*8:]))
	}
	return vec
}
