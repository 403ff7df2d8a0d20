// Package postgres stores pipelines and their submission history in
// PostgreSQL via pgx.
package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/meikuraledutech/pipeline"
)

// PGStore persists pipeline graphs and submission records.
type PGStore struct {
	db *pgxpool.Pool
}

var _ pipeline.SubmissionRecorder = (*PGStore)(nil)

// New creates a new PGStore backed by the given pgx connection pool.
func New(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// isForeignKeyViolation reports whether err is a foreign key violation,
// which here means an edge references a node that is not in the pipeline.
func isForeignKeyViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
