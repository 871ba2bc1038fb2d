package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finsight-labs/finsight-cli/internal/core/domain"
)

func TestHistoryCmd_ListsSessions(t *testing.T) {
	ref := &mockReference{ids: []string{"session-b", "session-a"}}
	configureForTest(t, &mockIngest{}, nil, nil, ref)

	out, _, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "session-a")
	assert.Contains(t, out, "session-b")
}

func TestHistoryCmd_Empty(t *testing.T) {
	configureForTest(t, &mockIngest{}, nil, nil, &mockReference{})

	out, _, err := execute(t, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No stored sessions")
}

func TestHistoryCmd_ShowsTranscript(t *testing.T) {
	ref := &mockReference{conversations: map[string][]domain.Turn{
		"session-a": {
			{Role: domain.RoleUser, Content: "how did revenue develop?"},
			{Role: domain.RoleAssistant, Content: "Revenue grew."},
		},
	}}
	configureForTest(t, &mockIngest{}, nil, nil, ref)

	out, _, err := execute(t, "history", "session-a")
	require.NoError(t, err)
	assert.Contains(t, out, "[user] how did revenue develop?")
	assert.Contains(t, out, "[assistant] Revenue grew.")
}

func TestHistoryCmd_MissingSession(t *testing.T) {
	configureForTest(t, &mockIngest{}, nil, nil, &mockReference{})

	_, _, err := execute(t, "history", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
