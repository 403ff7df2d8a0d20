package pipeline

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrMultipleRoots      = errors.New("pipeline: more than one node has no target handles")
	ErrSubmissionInFlight = errors.New("pipeline: a submission is already in flight")
	ErrMalformedResponse  = errors.New("pipeline: malformed analysis response")
	ErrPipelineNotFound   = errors.New("pipeline: pipeline not found")
)

// StatusError is returned when the analysis service answers with a
// non-success HTTP status.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP error! status: %d", e.Code)
}

// GraphSource is the read accessor over the graph being edited.
// Snapshot must return nodes and edges that are consistent with each other
// and must not modify the underlying store.
type GraphSource interface {
	Snapshot(ctx context.Context) (Graph, error)
}

// GraphSourceFunc adapts a plain function to GraphSource.
type GraphSourceFunc func(ctx context.Context) (Graph, error)

func (f GraphSourceFunc) Snapshot(ctx context.Context) (Graph, error) { return f(ctx) }

// Analyzer submits a graph to the analysis service.
type Analyzer interface {
	Parse(ctx context.Context, g Graph) (*Result, error)
}

// Reporter displays submission outcomes to the user.
type Reporter interface {
	ReportSuccess(message string)
	ReportError(message string)
}

// SubmissionRecorder persists finished submissions.
type SubmissionRecorder interface {
	RecordSubmission(ctx context.Context, s *Submission) error
}
