// Copyright 2025 James Ross
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/lib/pq"
)

// PostgresStore is a Store backed by database/sql and lib/pq. It is the
// production adapter; tests exercise Store through a sqlmock-backed
// database/sql connection instead of a real cluster.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore wraps an already-configured *sql.DB. The caller owns
// the DB's lifecycle except for Close, which this type forwards.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Acquire(ctx context.Context) (Conn, error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, fmt.Errorf("%w: %v", ErrPoolExhausted, err)
		}
		return nil, err
	}
	return &pgConn{conn: conn}, nil
}

func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Classify inspects a *pq.Error's SQLSTATE code. Class 23 (integrity
// constraint violation) is Fatal; the documented transient classes
// (connection exception 08, serialization failure 40001, deadlock
// detected 40P01, statement timeout 57014, and class 53 resource
// exhaustion) are Retriable. Anything else, including errors the driver
// did not originate, is treated as Retriable so the executor retries
// rather than silently drops a chunk it doesn't understand.
func (s *PostgresStore) Classify(err error) Classification {
	return classify(err)
}

func classify(err error) Classification {
	if err == nil {
		return Retriable
	}
	if errors.Is(err, ErrPoolExhausted) {
		return Retriable
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		code := string(pqErr.Code)
		switch {
		case strings.HasPrefix(code, "23"):
			return Fatal
		case code == "40001", code == "40P01", code == "57014":
			return Retriable
		case strings.HasPrefix(code, "08"), strings.HasPrefix(code, "53"):
			return Retriable
		}
	}
	return Retriable
}

type pgConn struct {
	conn *sql.Conn
}

func (c *pgConn) BulkInsert(ctx context.Context, table string, columns []string, rows [][]any) error {
	if len(rows) == 0 {
		return nil
	}

	tx, err := c.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query, args := buildBulkInsert(table, columns, rows)
	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (c *pgConn) Release() {
	c.conn.Close()
}

// buildBulkInsert renders a single multi-row INSERT statement with
// positional $N placeholders, the shape lib/pq expects.
func buildBulkInsert(table string, columns []string, rows [][]any) (string, []any) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('(')
		for j := range row {
			if j > 0 {
				sb.WriteByte(',')
			}
			fmt.Fprintf(&sb, "$%d", n)
			n++
		}
		sb.WriteByte(')')
		args = append(args, row...)
	}
	sb.WriteString(" ON CONFLICT DO NOTHING")
	return sb.String(), args
}
