package storage

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/nikbrunner/smartmark/internal/model"
	"github.com/nikbrunner/smartmark/internal/storage/migrations"
)

// PostgresStorage implements Store on a shared Postgres database. Writes
// fire the notify trigger, which feeds feed.PostgresChannel.
type PostgresStorage struct {
	db    *sql.DB
	owner string
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// OpenPostgres connects to dsn and applies the embedded migrations.
func OpenPostgres(ctx context.Context, dsn, owner string) (*PostgresStorage, error) {
	if owner == "" {
		return nil, ErrNoOwner
	}

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return NewPostgresStorage(db, owner), nil
}

// RunMigrations applies the embedded goose migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect("pgx"); err != nil {
		return fmt.Errorf("goose dialect: %w", err)
	}
	if err := gooseUpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// NewPostgresStorage wraps an already migrated database handle.
func NewPostgresStorage(db *sql.DB, owner string) *PostgresStorage {
	return &PostgresStorage{db: db, owner: owner}
}

func (s *PostgresStorage) Close() error {
	return s.db.Close()
}

func (s *PostgresStorage) Insert(ctx context.Context, title, url string) (model.Bookmark, error) {
	b := model.Bookmark{Title: title, URL: url}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO bookmarks (owner_id, title, url)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, s.owner, title, url).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return model.Bookmark{}, fmt.Errorf("insert bookmark: %w", err)
	}
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}

func (s *PostgresStorage) Delete(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM bookmarks WHERE id::text = $1 AND owner_id = $2`, id, s.owner); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// ListAll returns the owner's bookmarks, newest first.
func (s *PostgresStorage) ListAll(ctx context.Context) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, created_at
		FROM bookmarks
		WHERE owner_id = $1
		ORDER BY created_at DESC, id DESC
	`, s.owner)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.CreatedAt = b.CreatedAt.UTC()
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, rows.Err()
}
