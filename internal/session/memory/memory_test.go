package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supportbot/internal/domain"
	"supportbot/internal/session"
)

func TestStore_RoundTripIsolatesCopies(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	c := domain.ConversationContext{}
	c.MentionAgent("EVA")
	c.AddTopic("pricing")
	require.NoError(t, s.Save(ctx, "s1", c))

	c.MentionAgent("CAM")

	got, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "EVA", got.LastAgentID)
	assert.Equal(t, []string{"EVA"}, got.MentionedAgents)
	assert.Equal(t, []string{"pricing"}, got.TopicsDiscussed)

	got.AddTopic("demo")
	again, err := s.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, []string{"pricing"}, again.TopicsDiscussed)
}

func TestStore_UnknownSessionIsEmpty(t *testing.T) {
	got, err := NewStore().Load(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Empty(t, got.LastAgentID)
	assert.Empty(t, got.MentionedAgents)
}

func TestStore_SessionsAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewStore()

	a := domain.ConversationContext{}
	a.MentionAgent("DANA")
	require.NoError(t, s.Save(ctx, "a", a))
	require.NoError(t, s.Save(ctx, "b", domain.ConversationContext{UserIntent: "general"}))

	got, err := s.Load(ctx, "b")
	require.NoError(t, err)
	assert.Empty(t, got.LastAgentID)
	assert.Equal(t, 2, s.Len())
}

func TestStore_Clear(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	require.NoError(t, s.Save(ctx, "a", domain.ConversationContext{LastAgentID: "EVA"}))
	require.NoError(t, s.Clear(ctx, "a"))

	got, err := s.Load(ctx, "a")
	require.NoError(t, err)
	assert.Empty(t, got.LastAgentID)
	assert.Zero(t, s.Len())
}

func TestStore_EmptyID(t *testing.T) {
	ctx := context.Background()
	s := NewStore()
	_, err := s.Load(ctx, "")
	assert.ErrorIs(t, err, session.ErrEmptySessionID)
	assert.ErrorIs(t, s.Save(ctx, "", domain.ConversationContext{}), session.ErrEmptySessionID)
	assert.ErrorIs(t, s.Clear(ctx, ""), session.ErrEmptySessionID)
}
