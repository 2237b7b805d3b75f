package retriever

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pgvector/pgvector-go"
)

// DefaultTable is the curriculum table name.
const DefaultTable = "curriculum"

const createExtensionSQL = `CREATE EXTENSION IF NOT EXISTS vector`

const createTableSQL = `CREATE TABLE IF NOT EXISTS %s (
    id           SERIAL PRIMARY KEY,
    basecode     TEXT UNIQUE,
    content      TEXT,
    school_level TEXT,
    grade        TEXT,
    domain       TEXT,
    category     TEXT,
    embedding    VECTOR(%d)
)`

const searchSQL = `SELECT basecode, content, school_level, grade, domain, category
FROM %s
ORDER BY embedding <=> $1
LIMIT $2`

const insertSQL = `INSERT INTO %s (basecode, content, school_level, grade, domain, category, embedding)
VALUES ($1, $2, $3, $4, $5, $6, $7)
ON CONFLICT (basecode) DO NOTHING`

// Querier abstracts the pgx query methods needed by PGVector.
// *pgxpool.Pool, *pgx.Conn and pgx.Tx all satisfy it.
type Querier interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxQuerier extends Querier with transactions. Upsert uses one when available.
type TxQuerier interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

// PGVector is a VectorStore backed by PostgreSQL with the pgvector extension.
// It uses cosine distance.
type PGVector struct {
	db        Querier
	tableName string
	dimension int
}

// PGOption configures a PGVector.
type PGOption func(*PGVector)

// WithTableName overrides the default table name. The name is sanitized via pgx.Identifier.
func WithTableName(name string) PGOption {
	return func(s *PGVector) {
		s.tableName = pgx.Identifier{name}.Sanitize()
	}
}

// NewPGVector creates a store for vectors of the given dimension.
func NewPGVector(db Querier, dimension int, opts ...PGOption) *PGVector {
	s := &PGVector{db: db, tableName: DefaultTable, dimension: dimension}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// EnsureSchema enables pgvector and creates the table if needed.
func (s *PGVector) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, createExtensionSQL); err != nil {
		return fmt.Errorf("pgvector: create extension: %w", err)
	}
	if _, err := s.db.Exec(ctx, fmt.Sprintf(createTableSQL, s.tableName, s.dimension)); err != nil {
		return fmt.Errorf("pgvector: create table: %w", err)
	}
	return nil
}

// Search returns the k nearest documents by cosine distance.
func (s *PGVector) Search(ctx context.Context, vector []float32, k int) ([]Document, error) {
	if s.dimension > 0 && len(vector) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), s.dimension)
	}
	rows, err := s.db.Query(ctx, fmt.Sprintf(searchSQL, s.tableName), pgvector.NewVector(vector), k)
	if err != nil {
		return nil, fmt.Errorf("pgvector: search: %w", err)
	}
	defer rows.Close()

	var docs []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.Basecode, &d.Content, &d.SchoolLevel, &d.Grade, &d.Domain, &d.Category); err != nil {
			return nil, fmt.Errorf("pgvector: scan: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("pgvector: rows: %w", err)
	}
	return docs, nil
}

// Upsert inserts documents, skipping basecodes that already exist. It returns
// the number of rows inserted. Every document must carry an embedding.
func (s *PGVector) Upsert(ctx context.Context, docs []Document) (int, error) {
	for _, d := range docs {
		if s.dimension > 0 && len(d.Embedding) != s.dimension {
			return 0, fmt.Errorf("%w: %s has %d, want %d", ErrDimensionMismatch, d.Basecode, len(d.Embedding), s.dimension)
		}
	}
	txq, ok := s.db.(TxQuerier)
	if !ok {
		return s.insert(ctx, s.db, docs)
	}
	tx, err := txq.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("pgvector: begin: %w", err)
	}
	inserted, err := s.insert(ctx, tx, docs)
	if err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return 0, errors.Join(err, rbErr)
		}
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("pgvector: commit: %w", err)
	}
	return inserted, nil
}

func (s *PGVector) insert(ctx context.Context, q Querier, docs []Document) (int, error) {
	query := fmt.Sprintf(insertSQL, s.tableName)
	inserted := 0
	for _, d := range docs {
		tag, err := q.Exec(ctx, query,
			d.Basecode, d.Content, d.SchoolLevel, d.Grade, d.Domain, d.Category,
			pgvector.NewVector(d.Embedding),
		)
		if err != nil {
			return inserted, fmt.Errorf("pgvector: insert %s: %w", d.Basecode, err)
		}
		inserted += int(tag.RowsAffected())
	}
	return inserted, nil
}
