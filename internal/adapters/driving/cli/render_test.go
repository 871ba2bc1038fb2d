package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderCmd_Charts(t *testing.T) {
	for _, chart := range []string{"sales", "stock", "correlation"} {
		visualize := &mockVisualize{out: "/data/graphs/" + chart + ".png"}
		configureForTest(t, &mockIngest{}, nil, visualize, &mockReference{})

		out, _, err := execute(t, "render", chart)
		require.NoError(t, err, chart)
		assert.Equal(t, []string{chart}, visualize.calls, chart)
		assert.Contains(t, out, chart+".png")
	}
}

func TestRenderCmd_UnknownChart(t *testing.T) {
	configureForTest(t, &mockIngest{}, nil, &mockVisualize{}, &mockReference{})

	_, _, err := execute(t, "render", "pie")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown chart")
}

func TestRenderCmd_RenderFailure(t *testing.T) {
	visualize := &mockVisualize{err: assert.AnError}
	configureForTest(t, &mockIngest{}, nil, visualize, &mockReference{})

	_, _, err := execute(t, "render", "sales")
	assert.Error(t, err)
}
