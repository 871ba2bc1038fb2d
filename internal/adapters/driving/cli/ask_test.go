package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAskCmd_PrintsAnswer(t *testing.T) {
	answerer := &mockAnswerer{answer: "Revenue grew twelve percent."}
	ref := &mockReference{}
	configureForTest(t, &mockIngest{}, answerer, nil, ref)

	out, _, err := execute(t, "ask", "how did revenue develop?")
	require.NoError(t, err)
	assert.Contains(t, out, "Revenue grew twelve percent.")
	assert.Equal(t, []string{"how did revenue develop?"}, answerer.questions)

	// Session transcript persisted with both turns.
	require.Len(t, ref.conversations, 1)
	for _, turns := range ref.conversations {
		require.Len(t, turns, 2)
		assert.Equal(t, "how did revenue develop?", turns[0].Content)
	}
}

func TestAskCmd_NoCorpus(t *testing.T) {
	configureForTest(t, &mockIngest{}, nil, nil, &mockReference{})

	_, _, err := execute(t, "ask", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no sources ingested")
}

func TestAskCmd_AnswerError(t *testing.T) {
	answerer := &mockAnswerer{err: assert.AnError}
	configureForTest(t, &mockIngest{}, answerer, nil, &mockReference{})

	_, _, err := execute(t, "ask", "anything")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "answering")
}
