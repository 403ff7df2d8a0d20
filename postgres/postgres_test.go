package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/pipeline"
)

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(fmt.Errorf("wrapped: %w", &pgconn.PgError{Code: "23503"})))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isForeignKeyViolation(errors.New("plain")))
}

// newTestStore connects to PIPELINE_TEST_DATABASE_URL or skips.
func newTestStore(t *testing.T) *PGStore {
	t.Helper()
	url := os.Getenv("PIPELINE_TEST_DATABASE_URL")
	if url == "" {
		t.Skip("PIPELINE_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	pool, err := pgxpool.New(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	s := New(pool)
	require.NoError(t, s.CreateSchema(ctx))
	return s
}

func TestPGStore_SaveAndGetPipeline(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.NewString()
	t.Cleanup(func() { s.DeletePipeline(context.Background(), id) })

	g := &pipeline.Graph{
		Nodes: []pipeline.Node{
			{ID: "input", Type: "customInput", Position: &pipeline.Position{X: 10, Y: 20},
				Data: json.RawMessage(`{"handles":[{"id":"value","type":"source"}]}`)},
			{ID: "llm", Type: "llm", Handles: []pipeline.Handle{{ID: "prompt", Type: pipeline.HandleTarget}}},
			{ID: "note", Type: "text", Handles: []pipeline.Handle{}},
		},
		Edges: []pipeline.Edge{{Source: "input", SourceHandle: "value", Target: "llm", TargetHandle: "prompt"}},
	}
	require.NoError(t, s.SavePipeline(ctx, id, g))
	assert.NotEmpty(t, g.Edges[0].ID)

	got, err := s.Source(id).Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, got.Nodes, 3)
	require.Len(t, got.Edges, 1)

	assert.Equal(t, []string{"input", "llm", "note"}, []string{got.Nodes[0].ID, got.Nodes[1].ID, got.Nodes[2].ID})
	assert.Nil(t, got.Nodes[0].Handles)
	assert.Equal(t, &pipeline.Position{X: 10, Y: 20}, got.Nodes[0].Position)
	assert.JSONEq(t, `{"handles":[{"id":"value","type":"source"}]}`, string(got.Nodes[0].Data))
	assert.Equal(t, 1, pipeline.TargetHandleCount(got.Nodes[1]))
	assert.NotNil(t, got.Nodes[2].Handles)
	assert.Empty(t, got.Nodes[2].Handles)
	assert.Equal(t, g.Edges[0], got.Edges[0])

	// Saving again replaces the graph.
	require.NoError(t, s.SavePipeline(ctx, id, &pipeline.Graph{Nodes: []pipeline.Node{{ID: "only"}}}))
	got, err = s.Source(id).Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, got.Nodes, 1)
	assert.Empty(t, got.Edges)
}

func TestPGStore_GranularEdits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.NewString()
	t.Cleanup(func() { s.DeletePipeline(context.Background(), id) })

	a, err := s.AddNode(ctx, id, &pipeline.Node{Type: "customInput"})
	require.NoError(t, err)
	b, err := s.AddNode(ctx, id, &pipeline.Node{ID: "b"})
	require.NoError(t, err)
	assert.Equal(t, "b", b)

	eid, err := s.AddEdge(ctx, id, &pipeline.Edge{Source: a, Target: b})
	require.NoError(t, err)

	_, err = s.AddEdge(ctx, id, &pipeline.Edge{Source: a, Target: "missing"})
	assert.Error(t, err)

	edges, err := s.ListEdges(ctx, id)
	require.NoError(t, err)
	require.Len(t, edges, 1)
	assert.Equal(t, eid, edges[0].ID)

	// Deleting a node cascades to its edges.
	require.NoError(t, s.DeleteNode(ctx, id, b))
	edges, err = s.ListEdges(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, edges)

	nodes, err := s.ListNodes(ctx, id)
	require.NoError(t, err)
	assert.Len(t, nodes, 1)

	require.NoError(t, s.DeleteEdge(ctx, id, "nope"))

	require.NoError(t, s.DeletePipeline(ctx, id))
	_, err = s.GetPipeline(ctx, id)
	assert.ErrorIs(t, err, pipeline.ErrPipelineNotFound)
}

func TestPGStore_Submissions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	id := "test-" + uuid.NewString()

	start := time.Now().UTC().Truncate(time.Millisecond)
	done := start.Add(time.Second)
	ok := &pipeline.Submission{
		ID: uuid.NewString(), PipelineID: id, State: pipeline.StateSucceeded,
		Result:    &pipeline.Result{NumNodes: 3, NumEdges: 2, IsDAG: true},
		Message:   pipeline.FormatReport(pipeline.Result{NumNodes: 3, NumEdges: 2, IsDAG: true}),
		StartedAt: start, FinishedAt: &done,
	}
	rejected := &pipeline.Submission{
		ID: uuid.NewString(), PipelineID: id, State: pipeline.StateRejected,
		Message: pipeline.RejectionMessage, Error: "multiple roots",
		StartedAt: start.Add(2 * time.Second), FinishedAt: &done,
	}
	require.NoError(t, s.RecordSubmission(ctx, ok))
	require.NoError(t, s.RecordSubmission(ctx, rejected))

	subs, err := s.ListSubmissions(ctx, id, 0)
	require.NoError(t, err)
	require.Len(t, subs, 2)
	assert.Equal(t, rejected.ID, subs[0].ID)
	assert.Nil(t, subs[0].Result)
	assert.Equal(t, pipeline.StateSucceeded, subs[1].State)
	assert.Equal(t, ok.Result, subs[1].Result)

	subs, err = s.ListSubmissions(ctx, id, 1)
	require.NoError(t, err)
	assert.Len(t, subs, 1)
}
