package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/meikuraledutech/pipeline"
)

// RecordSubmission stores a finished submission. Recording the same
// submission ID again overwrites it.
func (s *PGStore) RecordSubmission(ctx context.Context, sub *pipeline.Submission) error {
	var (
		numNodes, numEdges *int
		isDAG              *bool
	)
	if sub.Result != nil {
		numNodes, numEdges, isDAG = &sub.Result.NumNodes, &sub.Result.NumEdges, &sub.Result.IsDAG
	}

	_, err := s.db.Exec(ctx, `
		INSERT INTO pipeline_submissions
			(id, pipeline_id, state, num_nodes, num_edges, is_dag, message, error, started_at, finished_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			state = EXCLUDED.state,
			num_nodes = EXCLUDED.num_nodes,
			num_edges = EXCLUDED.num_edges,
			is_dag = EXCLUDED.is_dag,
			message = EXCLUDED.message,
			error = EXCLUDED.error,
			finished_at = EXCLUDED.finished_at`,
		sub.ID, sub.PipelineID, string(sub.State), numNodes, numEdges, isDAG,
		sub.Message, sub.Error, sub.StartedAt, sub.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("pipeline: record submission: %w", err)
	}
	return nil
}

// ListSubmissions returns the most recent submissions of a pipeline,
// newest first. A limit of zero or less returns all of them.
func (s *PGStore) ListSubmissions(ctx context.Context, pipelineID string, limit int) ([]pipeline.Submission, error) {
	query := `SELECT id, pipeline_id, state, num_nodes, num_edges, is_dag, message, error, started_at, finished_at
		FROM pipeline_submissions WHERE pipeline_id = $1 ORDER BY started_at DESC`
	args := []any{pipelineID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list submissions: %w", err)
	}
	defer rows.Close()

	subs := []pipeline.Submission{}
	for rows.Next() {
		var (
			sub                pipeline.Submission
			state              string
			numNodes, numEdges *int
			isDAG              *bool
			finished           *time.Time
		)
		if err := rows.Scan(&sub.ID, &sub.PipelineID, &state, &numNodes, &numEdges, &isDAG,
			&sub.Message, &sub.Error, &sub.StartedAt, &finished); err != nil {
			return nil, fmt.Errorf("pipeline: scan submission: %w", err)
		}
		sub.State = pipeline.State(state)
		sub.FinishedAt = finished
		if numNodes != nil && numEdges != nil && isDAG != nil {
			sub.Result = &pipeline.Result{NumNodes: *numNodes, NumEdges: *numEdges, IsDAG: *isDAG}
		}
		subs = append(subs, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: rows submissions: %w", err)
	}

	return subs, nil
}
