// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist,
// or update data, abstracting SQL logic away from the service layer.
//
// Missing rows are returned as pgx.ErrNoRows wrapped with a
// "table:<name>:" prefix, which sqlerr.HandleError turns into a
// "<Entity> not found" response.
package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// querier is the subset of pgxpool.Pool and pgx.Tx the repositories use.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func notFound(table string, format string, args ...any) error {
	return errors.Wrapf(pgx.ErrNoRows, "table:%s: %s", table, fmt.Sprintf(format, args...))
}

// wrapMissing prefixes pgx.ErrNoRows with the table name and wraps any
// other error with msg.
func wrapMissing(err error, table, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errors.Wrapf(err, "table:%s: %s", table, msg)
	}
	return errors.Wrap(err, msg)
}

// collectOne reads exactly one row as a column map.
func collectOne(ctx context.Context, q querier, sql string, args ...any) (map[string]any, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectExactlyOneRow(rows, pgx.RowToMap)
}

// collectAll reads every row as a column map.
func collectAll(ctx context.Context, q querier, sql string, args ...any) ([]map[string]any, error) {
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToMap)
}

// columnSet renders "col = @col" pairs and an insert column list for the
// given columns. Column names come from model field lists, never from
// requests.
type columnSet []string

func (c columnSet) names() string {
	quoted := make([]string, len(c))
	for i, col := range c {
		quoted[i] = pgx.Identifier{col}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}

func (c columnSet) params() string {
	params := make([]string, len(c))
	for i, col := range c {
		params[i] = "@" + col
	}
	return strings.Join(params, ", ")
}

func (c columnSet) assignments() string {
	set := make([]string, len(c))
	for i, col := range c {
		set[i] = fmt.Sprintf("%s = @%s", pgx.Identifier{col}.Sanitize(), col)
	}
	return strings.Join(set, ", ")
}
