package postgres

import (
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/meikuraledutech/pipeline"
)

// execer and querier are satisfied by both *pgxpool.Pool and pgx.Tx.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// AddNode appends a single node to a pipeline.
// If node.ID is empty, a UUID is auto-generated.
// Returns the node ID (generated or provided).
func (s *PGStore) AddNode(ctx context.Context, pipelineID string, node *pipeline.Node) (string, error) {
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if err := insertNode(ctx, s.db, pipelineID, node); err != nil {
		return "", err
	}
	return node.ID, nil
}

// DeleteNode deletes a node from a pipeline.
// Attached edges are cascade-deleted by the DB.
// No error if the node doesn't exist.
func (s *PGStore) DeleteNode(ctx context.Context, pipelineID, nodeID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM pipeline_nodes WHERE pipeline_id = $1 AND id = $2`, pipelineID, nodeID)
	if err != nil {
		return fmt.Errorf("pipeline: delete node: %w", err)
	}
	return nil
}

// ListNodes returns all nodes of a pipeline in insertion order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListNodes(ctx context.Context, pipelineID string) ([]pipeline.Node, error) {
	return listNodes(ctx, s.db, pipelineID)
}

func insertNode(ctx context.Context, db execer, pipelineID string, n *pipeline.Node) error {
	var handles, position []byte
	var err error
	// NULL handles keeps "not declared" apart from "declared empty".
	if n.Handles != nil {
		if handles, err = json.Marshal(n.Handles); err != nil {
			return fmt.Errorf("pipeline: encode handles: %w", err)
		}
	}
	if n.Position != nil {
		if position, err = json.Marshal(n.Position); err != nil {
			return fmt.Errorf("pipeline: encode position: %w", err)
		}
	}

	_, err = db.Exec(ctx,
		`INSERT INTO pipeline_nodes (pipeline_id, id, type, position, handles, data) VALUES ($1, $2, $3, $4, $5, $6)`,
		pipelineID, n.ID, n.Type, position, handles, []byte(n.Data),
	)
	if err != nil {
		return fmt.Errorf("pipeline: insert node %s: %w", n.ID, err)
	}
	return nil
}

func listNodes(ctx context.Context, db querier, pipelineID string) ([]pipeline.Node, error) {
	rows, err := db.Query(ctx,
		`SELECT id, type, position, handles, data FROM pipeline_nodes WHERE pipeline_id = $1 ORDER BY seq`, pipelineID)
	if err != nil {
		return nil, fmt.Errorf("pipeline: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []pipeline.Node{}
	for rows.Next() {
		var (
			n                       pipeline.Node
			position, handles, data []byte
		)
		if err := rows.Scan(&n.ID, &n.Type, &position, &handles, &data); err != nil {
			return nil, fmt.Errorf("pipeline: scan node: %w", err)
		}
		if position != nil {
			n.Position = &pipeline.Position{}
			if err := json.Unmarshal(position, n.Position); err != nil {
				return nil, fmt.Errorf("pipeline: decode position of %s: %w", n.ID, err)
			}
		}
		if handles != nil {
			n.Handles = []pipeline.Handle{}
			if err := json.Unmarshal(handles, &n.Handles); err != nil {
				return nil, fmt.Errorf("pipeline: decode handles of %s: %w", n.ID, err)
			}
		}
		if data != nil {
			n.Data = json.RawMessage(data)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pipeline: rows nodes: %w", err)
	}

	return nodes, nil
}
