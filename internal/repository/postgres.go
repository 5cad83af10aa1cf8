package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	_ "github.com/lib/pq"

	"github.com/jaekwang-park/taskboard/internal/model"
)

// NewDB opens a PostgreSQL pool and checks that it answers.
func NewDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(10)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// PostgresTodoRepository reads todos from a "todos" table:
// id, user_id, title, completed, created_at, updated_at.
type PostgresTodoRepository struct {
	db *sql.DB
}

func NewPostgresTodo(db *sql.DB) *PostgresTodoRepository {
	return &PostgresTodoRepository{db: db}
}

func (r *PostgresTodoRepository) List(ctx context.Context, params TodoListParams) ([]model.Todo, error) {
	query := `
		SELECT id, user_id, title, completed, created_at, updated_at
		FROM todos
		WHERE 1 = 1`

	var args []any
	argIdx := 1

	if params.UserID != "" {
		userID, err := strconv.ParseInt(params.UserID, 10, 64)
		if err != nil {
			return []model.Todo{}, nil
		}
		query += fmt.Sprintf(" AND user_id = $%d", argIdx)
		args = append(args, userID)
		argIdx++
	}
	if params.Completed != nil {
		query += fmt.Sprintf(" AND completed = $%d", argIdx)
		args = append(args, *params.Completed)
		argIdx++
	}

	query += " ORDER BY id"
	if params.paged() {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, params.Limit, params.offset())
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list todos: %w", err)
	}
	defer rows.Close()

	todos := []model.Todo{}
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, err
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate todos: %w", err)
	}
	return todos, nil
}

func (r *PostgresTodoRepository) GetByID(ctx context.Context, id string) (model.Todo, error) {
	query := `
		SELECT id, user_id, title, completed, created_at, updated_at
		FROM todos
		WHERE id = $1`

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return model.Todo{}, ErrNotFound
	}
	todo, err := scanTodo(r.db.QueryRowContext(ctx, query, n))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Todo{}, ErrNotFound
	}
	return todo, err
}

func (r *PostgresTodoRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT count(*) FROM todos`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count todos: %w", err)
	}
	return n, nil
}

// PostgresUserRepository reads users from a "users" table:
// id, name, username, email, phone, website, company_name.
type PostgresUserRepository struct {
	db *sql.DB
}

func NewPostgresUser(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) List(ctx context.Context) ([]model.User, error) {
	query := `
		SELECT id, name, username, email, phone, website, company_name
		FROM users
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func (r *PostgresUserRepository) GetByID(ctx context.Context, id string) (model.User, error) {
	query := `
		SELECT id, name, username, email, phone, website, company_name
		FROM users
		WHERE id = $1`

	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return model.User{}, ErrNotFound
	}
	u, err := scanUser(r.db.QueryRowContext(ctx, query, n))
	if errors.Is(err, sql.ErrNoRows) {
		return model.User{}, ErrNotFound
	}
	return u, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanTodo(row scannable) (model.Todo, error) {
	var t model.Todo
	var id, userID int64
	err := row.Scan(&id, &userID, &t.Title, &t.Completed, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return model.Todo{}, fmt.Errorf("failed to scan todo: %w", err)
	}
	t.ID = strconv.FormatInt(id, 10)
	t.UserID = strconv.FormatInt(userID, 10)
	return t, nil
}

func scanUser(row scannable) (model.User, error) {
	var u model.User
	var id int64
	var username, phone, website, company sql.NullString
	err := row.Scan(&id, &u.Name, &username, &u.Email, &phone, &website, &company)
	if err != nil {
		return model.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	u.ID = strconv.FormatInt(id, 10)
	u.Username = username.String
	u.Phone = phone.String
	u.Website = website.String
	u.Company.Name = company.String
	return u, nil
}

var (
	_ TodoRepository = (*PostgresTodoRepository)(nil)
	_ UserRepository = (*PostgresUserRepository)(nil)
)
