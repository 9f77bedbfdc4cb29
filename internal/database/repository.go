package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"go-founder-sourcing/internal/store"
)

// columns mirrors store.Header in order.
var columns = []string{
	"date_added", "name", "email", "location", "company", "title",
	"linkedin", "twitter", "github", "website", "source", "bio", "signals",
	"overall_score", "founder_score", "thesis_fit", "timing_score", "signal_score",
	"priority", "reasoning",
}

// Repository is a PostgreSQL row backend for the prospect store.
type Repository struct {
	db *sql.DB
}

func ConnectDB(ctx context.Context, connString string) (*Repository, error) {
	config, err := pgx.ParseConfig(connString)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database url: %w", err)
	}

	// PgBouncer in transaction mode does not support prepared statements.
	config.DefaultQueryExecMode = pgx.QueryExecModeExec

	db := stdlib.OpenDB(*config)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("database unreachable: %w", err)
	}
	return &Repository{db: db}, nil
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// EnsureSchema creates the prospects table if it is missing.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	defs := make([]string, len(columns))
	for i, c := range columns {
		defs[i] = c + " TEXT NOT NULL DEFAULT ''"
	}
	query := fmt.Sprintf(`CREATE TABLE IF NOT EXISTS prospects (
	id BIGSERIAL PRIMARY KEY,
	%s,
	inserted_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`, strings.Join(defs, ",\n\t"))

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("failed to create prospects table: %w", err)
	}
	return nil
}

func (r *Repository) Identities(ctx context.Context) ([]store.Identity, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT name, email FROM prospects")
	if err != nil {
		return nil, fmt.Errorf("failed to query prospects: %w", err)
	}
	defer rows.Close()

	var ids []store.Identity
	for rows.Next() {
		var id store.Identity
		if err := rows.Scan(&id.Name, &id.Email); err != nil {
			return nil, fmt.Errorf("failed to scan prospect: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate prospects: %w", err)
	}
	return ids, nil
}

func (r *Repository) Append(ctx context.Context, row []string) error {
	if len(row) != len(columns) {
		return fmt.Errorf("row has %d values, want %d", len(row), len(columns))
	}

	args := make([]any, len(row))
	placeholders := make([]string, len(row))
	for i, v := range row {
		args[i] = v
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO prospects (%s) VALUES (%s)",
		strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to insert prospect: %w", err)
	}
	return nil
}
