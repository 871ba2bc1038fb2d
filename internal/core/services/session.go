package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
	"github.com/finsight-labs/finsight-cli/internal/core/ports/driven"
)

// Session is an append-only conversation log for one interactive
// session. The owning command passes it explicitly; there is no global
// session state. Close persists the transcript.
type Session struct {
	id    string
	turns []domain.Turn
	store driven.ReferenceStore
}

// NewSession starts a fresh session. store may be nil when transcript
// persistence is not wanted.
func NewSession(store driven.ReferenceStore) *Session {
	return &Session{
		id:    uuid.NewString(),
		store: store,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// RecordUser appends a user turn.
func (s *Session) RecordUser(content string) {
	s.append(domain.RoleUser, content)
}

// RecordAssistant appends an assistant turn.
func (s *Session) RecordAssistant(content string) {
	s.append(domain.RoleAssistant, content)
}

// History returns the turns recorded so far, oldest first.
func (s *Session) History() []domain.Turn {
	turns := make([]domain.Turn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// Close persists the transcript. Empty sessions are not stored.
func (s *Session) Close(ctx context.Context) error {
	if s.store == nil || len(s.turns) == 0 {
		return nil
	}
	if err := s.store.SaveConversation(ctx, s.id, s.turns); err != nil {
		return fmt.Errorf("saving session %s: %w", s.id, err)
	}
	return nil
}

func (s *Session) append(role domain.Role, content string) {
	s.turns = append(s.turns, domain.Turn{
		Role:    role,
		Content: content,
		At:      time.Now().UTC(),
	})
}
