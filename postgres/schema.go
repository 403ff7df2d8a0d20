package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS pipeline_nodes (
    pipeline_id TEXT NOT NULL,
    id          TEXT NOT NULL,
    seq         BIGSERIAL,
    type        TEXT NOT NULL DEFAULT '',
    position    JSONB,
    handles     JSONB,
    data        JSONB,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (pipeline_id, id)
);

CREATE TABLE IF NOT EXISTS pipeline_edges (
    pipeline_id   TEXT NOT NULL,
    id            TEXT NOT NULL,
    seq           BIGSERIAL,
    source        TEXT NOT NULL,
    source_handle TEXT NOT NULL DEFAULT '',
    target        TEXT NOT NULL,
    target_handle TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    PRIMARY KEY (pipeline_id, id),
    FOREIGN KEY (pipeline_id, source) REFERENCES pipeline_nodes(pipeline_id, id) ON DELETE CASCADE,
    FOREIGN KEY (pipeline_id, target) REFERENCES pipeline_nodes(pipeline_id, id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS pipeline_submissions (
    id          TEXT PRIMARY KEY,
    pipeline_id TEXT NOT NULL,
    state       TEXT NOT NULL,
    num_nodes   INTEGER,
    num_edges   INTEGER,
    is_dag      BOOLEAN,
    message     TEXT NOT NULL DEFAULT '',
    error       TEXT NOT NULL DEFAULT '',
    started_at  TIMESTAMPTZ NOT NULL,
    finished_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_pipeline_nodes_seq       ON pipeline_nodes(pipeline_id, seq);
CREATE INDEX IF NOT EXISTS idx_pipeline_edges_seq       ON pipeline_edges(pipeline_id, seq);
CREATE INDEX IF NOT EXISTS idx_pipeline_submissions_pid ON pipeline_submissions(pipeline_id, started_at);
`

// CreateSchema creates the pipeline tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the pipeline tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS pipeline_submissions, pipeline_edges, pipeline_nodes CASCADE;`)
	return err
}
