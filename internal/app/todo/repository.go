package todo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("Todo not found")

const createTodosTableSQL = `
CREATE TABLE IF NOT EXISTS todos (
  id bigserial PRIMARY KEY,
  title text NOT NULL,
  description text,
  completed boolean NOT NULL DEFAULT false,
  created_at timestamptz NOT NULL DEFAULT now(),
  updated_at timestamptz NOT NULL DEFAULT now()
)`

const todoColumns = `id, title, description, completed, created_at, updated_at`

// Change is one (column, value) pair collected from an update request.
// Columns only ever come from the fixed allow-list in service.go; values
// are always bound as statement parameters.
type Change struct {
	Column string
	Value  any
}

// Repository persists todos in Postgres. All statements go through the
// shared pool; mutations use RETURNING so the fresh row comes back in the
// same round trip.
type Repository struct {
	Pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{Pool: pool}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	_, err := r.Pool.Exec(ctx, createTodosTableSQL)
	return err
}

func (r *Repository) Ping(ctx context.Context) error {
	return r.Pool.Ping(ctx)
}

func (r *Repository) List(ctx context.Context) ([]Todo, error) {
	rows, err := r.Pool.Query(ctx,
		`SELECT `+todoColumns+`
		 FROM todos
		 ORDER BY created_at DESC, id DESC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := []Todo{}
	for rows.Next() {
		var t Todo
		if err := scanTodo(rows, &t); err != nil {
			return nil, err
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *Repository) Get(ctx context.Context, id int64) (Todo, error) {
	var t Todo
	row := r.Pool.QueryRow(ctx,
		`SELECT `+todoColumns+` FROM todos WHERE id = $1`, id)
	if err := scanTodo(row, &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Todo{}, ErrNotFound
		}
		return Todo{}, err
	}
	return t, nil
}

// Create inserts a row and returns it with the store-assigned id and
// timestamps. Values arrive as decoded JSON; the store rejects anything a
// column cannot hold.
func (r *Repository) Create(ctx context.Context, title, description, completed any) (Todo, error) {
	var t Todo
	row := r.Pool.QueryRow(ctx,
		`INSERT INTO todos (title, description, completed)
		 VALUES ($1, $2, $3)
		 RETURNING `+todoColumns,
		title, description, completed,
	)
	if err := scanTodo(row, &t); err != nil {
		return Todo{}, err
	}
	return t, nil
}

// Update applies the collected changes in one statement, refreshing
// updated_at alongside. The existence check and the mutation share a
// transaction so two racing updates cannot both observe the row and the
// loser of an update/delete race still sees ErrNotFound.
func (r *Repository) Update(ctx context.Context, id int64, changes []Change) (Todo, error) {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Todo{}, err
	}
	defer tx.Rollback(ctx)

	if err := checkExists(ctx, tx, id); err != nil {
		return Todo{}, err
	}

	sql, args := buildUpdateSQL(id, changes)
	var t Todo
	if err := scanTodo(tx.QueryRow(ctx, sql, args...), &t); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Todo{}, ErrNotFound
		}
		return Todo{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return Todo{}, err
	}
	return t, nil
}

// Delete removes the row for good. Existence is verified inside the same
// transaction, so the second of two concurrent deletes reports ErrNotFound.
func (r *Repository) Delete(ctx context.Context, id int64) error {
	tx, err := r.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := checkExists(ctx, tx, id); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM todos WHERE id = $1`, id); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func checkExists(ctx context.Context, tx pgx.Tx, id int64) error {
	var marker int
	err := tx.QueryRow(ctx, `SELECT 1 FROM todos WHERE id = $1`, id).Scan(&marker)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// buildUpdateSQL emits one parameterized UPDATE for exactly the supplied
// changes, in their given order, plus the updated_at refresh.
func buildUpdateSQL(id int64, changes []Change) (string, []any) {
	var sb strings.Builder
	sb.WriteString("UPDATE todos SET ")
	args := make([]any, 0, len(changes)+1)
	for _, c := range changes {
		if len(args) > 0 {
			sb.WriteString(", ")
		}
		args = append(args, c.Value)
		fmt.Fprintf(&sb, "%s = $%d", c.Column, len(args))
	}
	args = append(args, id)
	fmt.Fprintf(&sb, ", updated_at = now() WHERE id = $%d RETURNING %s", len(args), todoColumns)
	return sb.String(), args
}

func scanTodo(row pgx.Row, t *Todo) error {
	return row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&t.Completed,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
}
