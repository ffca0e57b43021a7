package chromem

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/domain"
	"supportbot/internal/vectorstore"
)

func seeded(t *testing.T) *Storage {
	t.Helper()
	s := NewStorage("")
	require.NoError(t, s.Init(3))
	require.NoError(t, s.Upsert([]domain.KnowledgeEntry{
		{ID: "eva-description", Query: "What does EVA do?", Response: "EVA verifies eligibility.", Category: domain.CategoryAgentDescription, RelatedID: "EVA"},
		{ID: "cam-description", Query: "What does CAM do?", Response: "CAM processes claims.", Category: domain.CategoryAgentDescription, RelatedID: "CAM"},
		{ID: "company-overview", Query: "Tell me about Thoughtful AI", Response: "Overview.", Category: domain.CategoryCompany},
	}, [][]float64{{1, 0, 0}, {0, 1, 0}, {0, 0.6, 0.8}}))
	return s
}

func TestSearch_RanksAndRestoresEntries(t *testing.T) {
	s := seeded(t)

	res, err := s.Search([]float64{0, 1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, res, 2)

	assert.Equal(t, "cam-description", res[0].Entry.ID)
	assert.Equal(t, "CAM processes claims.", res[0].Entry.Response)
	assert.Equal(t, domain.CategoryAgentDescription, res[0].Entry.Category)
	assert.Equal(t, "CAM", res[0].Entry.RelatedID)
	assert.InDelta(t, 1.0, res[0].Score, 1e-5)

	assert.Equal(t, "company-overview", res[1].Entry.ID)
	assert.InDelta(t, 0.6, res[1].Score, 1e-5)
}

func TestSearch_NonPositiveTopKReturnsAll(t *testing.T) {
	res, err := seeded(t).Search([]float64{1, 0, 0}, -1)
	require.NoError(t, err)
	assert.Len(t, res, 3)
	assert.Equal(t, "eva-description", res[0].Entry.ID)
}

func TestSearch_ZeroVector(t *testing.T) {
	res, err := seeded(t).Search([]float64{0, 0, 0}, 0)
	require.NoError(t, err)
	require.Len(t, res, 3)
	for _, r := range res {
		assert.Zero(t, r.Score)
	}
	assert.Equal(t, "eva-description", res[0].Entry.ID)
}

func TestSearch_Empty(t *testing.T) {
	s := NewStorage("kb")
	res, err := s.Search([]float64{1}, 1)
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestUpsert_Validation(t *testing.T) {
	s := NewStorage("kb")
	assert.Error(t, s.Upsert([]domain.KnowledgeEntry{{ID: "a"}}, [][]float64{{1}}))

	require.NoError(t, s.Init(2))
	assert.ErrorIs(t, s.Upsert([]domain.KnowledgeEntry{{ID: "a"}}, nil), vectorstore.ErrLengthMismatch)
	assert.ErrorIs(t, s.Upsert([]domain.KnowledgeEntry{{ID: "a", Query: "q"}}, [][]float64{{1, 0, 0}}), vectorstore.ErrDimensionMismatch)
	assert.ErrorIs(t, s.Init(0), vectorstore.ErrInvalidDimension)
}

func TestSearch_DimensionMismatch(t *testing.T) {
	_, err := seeded(t).Search([]float64{1, 0}, 1)
	assert.ErrorIs(t, err, vectorstore.ErrDimensionMismatch)
}

func TestClear(t *testing.T) {
	s := seeded(t)
	require.NoError(t, s.Clear())

	res, err := s.Search([]float64{1, 0, 0}, 0)
	require.NoError(t, err)
	assert.Empty(t, res)
}
