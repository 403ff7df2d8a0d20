// Package workflow runs the submit action: it snapshots the graph, applies
// the structural pre-check, calls the analysis service and reports the
// outcome.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/meikuraledutech/pipeline"
	"github.com/meikuraledutech/pipeline/internal/logging"
)

// ErrReplaced is returned by a submission that was cancelled by a newer one
// under PolicyReplace.
var ErrReplaced = errors.New("workflow: submission replaced by a newer one")

// Workflow is the submission state machine for one editing session.
// Its zero value is not usable; create one with New.
type Workflow struct {
	source   pipeline.GraphSource
	analyzer pipeline.Analyzer
	reporter pipeline.Reporter

	policy     Policy
	pipelineID string
	recorder   pipeline.SubmissionRecorder
	logger     *slog.Logger
	metrics    *Metrics
	onState    func(pipeline.State)
	now        func() time.Time

	// slot is held from Validating until the workflow is back to Idle.
	slot chan struct{}

	mu      sync.Mutex
	state   pipeline.State
	current *run
	latest  uint64
}

type run struct {
	gen      uint64
	cancel   context.CancelFunc
	replaced bool
}

// Option configures a Workflow.
type Option func(*Workflow)

// WithPolicy selects the in-flight policy. The default is PolicyIgnore.
func WithPolicy(p Policy) Option {
	return func(w *Workflow) { w.policy = p }
}

// WithLogger sets the operator-facing logger.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workflow) { w.logger = l }
}

// WithMetrics records submission metrics.
func WithMetrics(m *Metrics) Option {
	return func(w *Workflow) { w.metrics = m }
}

// WithRecorder persists every finished submission under pipelineID.
func WithRecorder(r pipeline.SubmissionRecorder, pipelineID string) Option {
	return func(w *Workflow) {
		w.recorder = r
		w.pipelineID = pipelineID
	}
}

// WithStateHook is called on every state transition, in order.
func WithStateHook(fn func(pipeline.State)) Option {
	return func(w *Workflow) { w.onState = fn }
}

// New creates an idle Workflow reading graphs from source.
func New(source pipeline.GraphSource, analyzer pipeline.Analyzer, reporter pipeline.Reporter, opts ...Option) *Workflow {
	w := &Workflow{
		source:   source,
		analyzer: analyzer,
		reporter: reporter,
		policy:   PolicyIgnore,
		logger:   logging.NewNop(),
		now:      time.Now,
		slot:     make(chan struct{}, 1),
		state:    pipeline.StateIdle,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// State returns the current workflow state.
func (w *Workflow) State() pipeline.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// Submit performs one submit action and blocks until it finishes.
// The outcome is shown through the Reporter; the returned Submission and
// error describe the same outcome for the caller. Rejected and failed
// submissions return a non-nil error alongside the Submission.
func (w *Workflow) Submit(ctx context.Context) (*pipeline.Submission, error) {
	r, runCtx, err := w.admit(ctx)
	if err != nil {
		return nil, err
	}
	defer w.release(r)

	sub := &pipeline.Submission{
		ID:         uuid.NewString(),
		PipelineID: w.pipelineID,
		StartedAt:  w.now(),
	}
	log := w.logger.With("submission_id", sub.ID)

	w.setState(pipeline.StateValidating)
	g, err := w.source.Snapshot(runCtx)
	if err != nil {
		return w.fail(ctx, log, r, sub, fmt.Errorf("workflow: read graph: %w", err))
	}
	if w.isReplaced(r) {
		return w.fail(ctx, log, r, sub, context.Canceled)
	}

	if err := pipeline.Precheck(g); err != nil {
		w.setState(pipeline.StateRejected)
		sub.State = pipeline.StateRejected
		sub.Message = pipeline.RejectionMessage
		sub.Error = err.Error()
		log.Info("submission rejected", "error", err, "nodes", len(g.Nodes))
		w.reporter.ReportError(pipeline.RejectionMessage)
		w.metrics.count(outcomeRejected)
		w.finish(ctx, log, sub)
		return sub, err
	}

	w.setState(pipeline.StateSubmitting)
	log.Debug("submitting pipeline", "nodes", len(g.Nodes), "edges", len(g.Edges))
	started := w.now()
	res, err := w.analyzer.Parse(runCtx, g)
	w.metrics.observe(w.now().Sub(started))
	if err != nil {
		return w.fail(ctx, log, r, sub, err)
	}
	if w.isReplaced(r) {
		return w.fail(ctx, log, r, sub, context.Canceled)
	}

	msg := pipeline.FormatReport(*res)
	w.setState(pipeline.StateSucceeded)
	sub.State = pipeline.StateSucceeded
	sub.Result = res
	sub.Message = msg
	log.Info("submission analysed", "num_nodes", res.NumNodes, "num_edges", res.NumEdges, "is_dag", res.IsDAG)
	w.reporter.ReportSuccess(msg)
	w.metrics.count(outcomeSucceeded)
	w.finish(ctx, log, sub)
	return sub, nil
}

func (w *Workflow) fail(ctx context.Context, log *slog.Logger, r *run, sub *pipeline.Submission, err error) (*pipeline.Submission, error) {
	replaced := w.isReplaced(r)
	if replaced {
		err = fmt.Errorf("%w: %v", ErrReplaced, err)
	}

	w.setState(pipeline.StateFailed)
	sub.State = pipeline.StateFailed
	sub.Error = err.Error()

	if replaced {
		log.Info("submission replaced")
		w.metrics.count(outcomeReplaced)
	} else {
		sub.Message = pipeline.FormatFailure(err)
		log.Error("failed to submit pipeline", "error", err)
		w.reporter.ReportError(sub.Message)
		w.metrics.count(outcomeFailed)
	}
	w.finish(ctx, log, sub)
	return sub, err
}

func (w *Workflow) finish(ctx context.Context, log *slog.Logger, sub *pipeline.Submission) {
	done := w.now()
	sub.FinishedAt = &done
	if w.recorder != nil {
		// Record even when the caller's context is already done.
		if err := w.recorder.RecordSubmission(context.WithoutCancel(ctx), sub); err != nil {
			log.Warn("record submission", "error", err)
		}
	}
	w.setState(pipeline.StateIdle)
}

func (w *Workflow) isReplaced(r *run) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return r.replaced
}

// admit applies the in-flight policy, takes the slot and derives the
// context the submission runs under.
func (w *Workflow) admit(ctx context.Context) (*run, context.Context, error) {
	w.mu.Lock()
	w.latest++
	r := &run{gen: w.latest}
	if w.policy == PolicyReplace && w.current != nil {
		w.current.replaced = true
		w.current.cancel()
	}
	w.mu.Unlock()

	if w.policy == PolicyIgnore {
		select {
		case w.slot <- struct{}{}:
		default:
			w.logger.Info("submit ignored, submission in flight")
			w.metrics.count(outcomeIgnored)
			return nil, nil, pipeline.ErrSubmissionInFlight
		}
	} else {
		select {
		case w.slot <- struct{}{}:
		case <-ctx.Done():
			return nil, nil, ctx.Err()
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.policy == PolicyReplace && r.gen != w.latest {
		// A newer trigger arrived while this one waited.
		<-w.slot
		w.metrics.count(outcomeReplaced)
		return nil, nil, ErrReplaced
	}
	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel
	w.current = r
	return r, runCtx, nil
}

func (w *Workflow) release(r *run) {
	w.mu.Lock()
	if w.current == r {
		w.current = nil
	}
	w.mu.Unlock()
	r.cancel()
	<-w.slot
}

func (w *Workflow) setState(s pipeline.State) {
	w.mu.Lock()
	w.state = s
	w.mu.Unlock()
	w.logger.Debug("workflow state", "state", s)
	if w.onState != nil {
		w.onState(s)
	}
}
