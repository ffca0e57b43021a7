package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/embedding/tfidf"
)

type countingEmbedder struct {
	calls int
	dim   int
	fail  bool
}

func (c *countingEmbedder) Name() string           { return "counting" }
func (c *countingEmbedder) Prepare([]string) error { return nil }
func (c *countingEmbedder) Dimension() int         { return c.dim }

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float64, error) {
	if c.fail {
		return nil, errors.New("remote down")
	}
	c.calls++
	return []float64{float64(len(text)), 0.5, -1}, nil
}

func TestEmbed_HitsCacheOnSecondCall(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), inner, "m1")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Prepare([]string{"hello"}))

	ctx := context.Background()
	first, err := c.Embed(ctx, "hello")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 1, c.Len())
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbed_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	c, err := Open(path, &countingEmbedder{}, "m1")
	require.NoError(t, err)
	require.NoError(t, c.Prepare([]string{"persist me"}))
	want, err := c.Embed(ctx, "persist me")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	offline := &countingEmbedder{fail: true}
	c, err = Open(path, offline, "m1")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Prepare([]string{"persist me"}))

	got, err := c.Embed(ctx, "persist me")
	require.NoError(t, err)
	assert.Equal(t, want, got)
	assert.Equal(t, 3, c.Dimension())
}

func TestEmbed_ModelIsPartOfKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	c, err := Open(path, &countingEmbedder{}, "m1")
	require.NoError(t, err)
	require.NoError(t, c.Prepare([]string{"text"}))
	_, err = c.Embed(ctx, "text")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	inner := &countingEmbedder{}
	c, err = Open(path, inner, "m2")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Prepare([]string{"text"}))
	_, err = c.Embed(ctx, "text")
	require.NoError(t, err)
	assert.Equal(t, 1, inner.calls)
	assert.Equal(t, 2, c.Len())
}

func TestEmbed_PropagatesInnerError(t *testing.T) {
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), &countingEmbedder{fail: true}, "m1")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Prepare([]string{"x"}))

	_, err = c.Embed(context.Background(), "x")
	assert.EqualError(t, err, "remote down")
	assert.Zero(t, c.Len())
}

func TestEmbed_QueriesOutsideCorpusAreNotCached(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), inner, "m1")
	require.NoError(t, err)
	defer c.Close()
	require.NoError(t, c.Prepare([]string{"corpus text"}))

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		_, err := c.Embed(ctx, "what a user typed")
		require.NoError(t, err)
	}
	assert.Equal(t, 3, inner.calls)
	assert.Zero(t, c.Len())
}

func TestEmbed_UnpreparedBypassesCache(t *testing.T) {
	inner := &countingEmbedder{}
	c, err := Open(filepath.Join(t.TempDir(), "cache.db"), inner, "m1")
	require.NoError(t, err)
	defer c.Close()

	_, err = c.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Zero(t, c.Len())
}

func TestEmbed_CorpusChangeInvalidatesTFIDFVectors(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	ctx := context.Background()

	c, err := Open(path, tfidf.NewEmbedder(), "tfidf")
	require.NoError(t, err)
	require.NoError(t, c.Prepare([]string{"alpha beta", "gamma"}))
	old, err := c.Embed(ctx, "alpha beta")
	require.NoError(t, err)
	require.NoError(t, c.Close())

	inner := tfidf.NewEmbedder()
	c, err = Open(path, inner, "tfidf")
	require.NoError(t, err)
	defer c.Close()
	corpus := []string{"alpha beta", "gamma delta", "epsilon zeta eta"}
	require.NoError(t, c.Prepare(corpus))

	got, err := c.Embed(ctx, "alpha beta")
	require.NoError(t, err)
	fresh, err := inner.Embed(ctx, "alpha beta")
	require.NoError(t, err)

	assert.NotEqual(t, len(old), len(got))
	assert.Equal(t, fresh, got)
	assert.Len(t, got, c.Dimension())
}

func TestEncodeDecode(t *testing.T) {
	in := []float64{0, 1.5, -2.25, 1e-9}
	assert.Equal(t, in, decode(encode(in)))
}
