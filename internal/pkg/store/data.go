package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/fault"
	"github.com/GoosefleetEO/aa-hrapplications-two/pkg/store"
	"github.com/jmoiron/sqlx"
)

type dataStore[T any] struct {
	db        *sqlx.DB
	tablename string
}

// NewDataStore returns a Datastorer for a single table whose rows scan into T.
func NewDataStore[T any](db *sqlx.DB, tablename string) store.Datastorer[T] {
	return &dataStore[T]{
		db:        db,
		tablename: tablename,
	}
}

func (s *dataStore[T]) QueryRow(ctx context.Context, query string, args ...any) (any, error) {
	row := s.db.QueryRowContext(ctx, query, args...)

	var result any

	if err := row.Scan(&result); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}

	return result, nil
}

func (s *dataStore[T]) Get(ctx context.Context, query string, args ...any) (*T, error) {
	var result T

	if err := s.db.GetContext(ctx, &result, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fault.ErrNotFound
		}
		return nil, err
	}

	return &result, nil
}

func (s *dataStore[T]) Select(ctx context.Context, query string, args ...any) ([]T, error) {
	results := []T{}

	if err := s.db.SelectContext(ctx, &results, query, args...); err != nil {
		return nil, err
	}

	return results, nil
}

func (s *dataStore[T]) Create(ctx context.Context, data store.DTO) (any, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	columns, placeholders := store.InsertColumns(data)
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id", s.tablename, columns, placeholders)

	stmt, err := s.db.PrepareNamedContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var id int
	if err := stmt.QueryRowContext(ctx, data).Scan(&id); err != nil {
		return nil, fault.FromPQ(err)
	}

	return data.ToModel(id), nil
}

func (s *dataStore[T]) Update(ctx context.Context, id int, data store.DTO) (*T, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	params := map[string]any{"id": id}
	setClause := store.UpdateAssignments(data, params)

	if setClause == "" {
		return nil, fmt.Errorf("no fields to update")
	}

	query := fmt.Sprintf("UPDATE %s SET %s WHERE id = :id", s.tablename, setClause)

	res, err := s.db.NamedExecContext(ctx, query, params)
	if err != nil {
		return nil, fault.FromPQ(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fault.ErrNotFound
	}

	return s.getByID(ctx, id)
}

func (s *dataStore[T]) Delete(ctx context.Context, id int) error {
	query := fmt.Sprintf("DELETE FROM %s WHERE id = $1", s.tablename)

	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		return fault.FromPQ(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fault.ErrNotFound
	}

	return nil
}

func (s *dataStore[T]) getByID(ctx context.Context, id int) (*T, error) {
	fields := strings.Join(store.StructColumns(new(T)), ", ")
	query := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1", fields, s.tablename)

	return s.Get(ctx, query, id)
}
