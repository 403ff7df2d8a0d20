package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatReport(t *testing.T) {
	t.Run("valid DAG", func(t *testing.T) {
		got := FormatReport(Result{NumNodes: 3, NumEdges: 2, IsDAG: true})
		want := "Pipeline Submission Analysis:\n" +
			"- Number of Nodes: 3\n" +
			"- Number of Edges: 2\n" +
			"- The pipeline is a valid DAG."
		assert.Equal(t, want, got)
	})

	t.Run("cycles", func(t *testing.T) {
		got := FormatReport(Result{NumNodes: 4, NumEdges: 5, IsDAG: false})
		want := "Pipeline Submission Analysis:\n" +
			"- Number of Nodes: 4\n" +
			"- Number of Edges: 5\n" +
			"- The pipeline has cycles and is not a valid DAG."
		assert.Equal(t, want, got)
	})
}

func TestFormatFailure(t *testing.T) {
	assert.Equal(t, "Failed to submit pipeline: HTTP error! status: 502", FormatFailure(&StatusError{Code: 502}))
	assert.Equal(t, "Failed to submit pipeline: boom", FormatFailure(errors.New("boom")))
}
