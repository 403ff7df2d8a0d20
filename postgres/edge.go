package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/meikuraledutech/pipeline"
)

// AddEdge appends a single edge to a pipeline.
// If edge.ID is empty, a UUID is auto-generated.
// Both endpoints must already be nodes of the pipeline. Cycles are allowed;
// the analysis service reports them.
// Returns the edge ID (generated or provided).
func (s *PGStore) AddEdge(ctx context.Context, pipelineID string, edge *pipeline.Edge) (string, error) {
	if edge.ID == "" {
		edge.ID = uuid.NewString()
	}
	if err := insertEdge(ctx, s.db, pipelineID, edge); err != nil {
		return "", err
	}
	return edge.ID, nil
}

// DeleteEdge deletes an edge from a pipeline.
// No error if the edge doesn't exist.
func (s *PGStore) DeleteEdge(ctx context.Context, pipelineID, edgeID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM pipeline_edges WHERE pipeline_id = $1 AND id = $2`, pipelineID, edgeID)
	if err != nil {
		return fmt.Errorf("pipeline: delete edge: %w", err)
	}
	return nil
}

// ListEdges returns all edges of a pipeline in insertion order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListEdges(ctx context.Context, pipelineID string) ([]pipeline.Edge, error) {
	return listEdges(ctx, s.db, pipelineID)
}

func insertEdge(ctx context.Context, db execer, pipelineID string, e *pipeline.Edge) error {
	_, err := db.Exec(ctx,
		`INSERT INTO pipeline_edges (pipeline_id, id, source, source_handle, target, target_handle) VALUES ($1, $2, $3, $4, $5, $6)`,
		pipelineID, e.ID, e.Source, e.SourceHandle, e.Target, e.TargetHandle,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return fmt.Errorf("pipeline: edge %s references an unknown node: %w", e.ID, err)
		}
		return fmt.Errorf("pipeline: insert edge %s: %w", e.ID, err)
	}
	return nil
}

func listEdges(ctx context.Context, db querier, pipelineID string) ([]pipeline.Edge, error) {
	rows, err := db.Query(ctx,
		`SELECT id, source, source_handle, target, target_handle FROM pipeline_edges WHERE pipeline_id = $1 ORDER BY seq`, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list edges: %w", err)
	}
	defer rows.Close()

	edges := []pipeline.Edge{}
	for rows.Next() {
		var e pipeline.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.SourceHandle, &e.Target, &e.TargetHandle); err != nil {
			return nil, fmt.Errorf("pipeline: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: rows edges: %w", err)
	}

	return edges, nil
}
