package pipeline

import "fmt"

const (
	validDAGSentence  = "The pipeline is a valid DAG."
	cyclicDAGSentence = "The pipeline has cycles and is not a valid DAG."
)

// FormatReport renders the user-facing analysis summary for r.
func FormatReport(r Result) string {
	sentence := cyclicDAGSentence
	if r.IsDAG {
		sentence = validDAGSentence
	}
	return fmt.Sprintf("Pipeline Submission Analysis:\n- Number of Nodes: %d\n- Number of Edges: %d\n- %s",
		r.NumNodes, r.NumEdges, sentence)
}

// FormatFailure renders the user-facing message for a failed submission.
func FormatFailure(err error) string {
	return "Failed to submit pipeline: " + err.Error()
}
