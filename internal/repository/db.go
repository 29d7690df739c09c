// Package repository implements the core storage interfaces on PostgreSQL
// with pgx.
package repository

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
}

// PostgreSQL error codes handled explicitly.
const (
	pgUniqueViolation = "23505"
)

//go:embed schema.sql
var favoritesSchema string

// EnsureSchema creates the tables this service owns. Facility tables are
// owned by the host application and only read here.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.Exec(ctx, favoritesSchema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return false
	}
	return constraint == "" || pgErr.ConstraintName == constraint
}
