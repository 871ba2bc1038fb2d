package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

func TestSession_RecordsTurns(t *testing.T) {
	s := NewSession(newMockRefStore())

	s.RecordUser("how did revenue develop?")
	s.RecordAssistant("Revenue grew twelve percent.")

	turns := s.History()
	require.Len(t, turns, 2)
	assert.Equal(t, domain.RoleUser, turns[0].Role)
	assert.Equal(t, domain.RoleAssistant, turns[1].Role)
	assert.False(t, turns[0].At.IsZero())
}

func TestSession_ClosePersists(t *testing.T) {
	store := newMockRefStore()
	s := NewSession(store)

	s.RecordUser("question")
	s.RecordAssistant("answer")
	require.NoError(t, s.Close(context.Background()))

	saved, err := store.GetConversation(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestSession_CloseEmptySessionNotStored(t *testing.T) {
	store := newMockRefStore()
	s := NewSession(store)

	require.NoError(t, s.Close(context.Background()))
	assert.Empty(t, store.conversations)
}

func TestSession_NilStore(t *testing.T) {
	s := NewSession(nil)
	s.RecordUser("question")
	assert.NoError(t, s.Close(context.Background()))
}

func TestSession_HistoryIsACopy(t *testing.T) {
	s := NewSession(nil)
	s.RecordUser("original")

	turns := s.History()
	turns[0].Content = "mutated"
	assert.Equal(t, "original", s.History()[0].Content)
}
