package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/nikbrunner/smartmark/internal/model"
)

const currentSchemaVersion = 2

// timeLayout is fixed width so that text ordering matches time ordering.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// SQLiteStorage implements Store using a local SQLite database.
type SQLiteStorage struct {
	db    *sql.DB
	path  string
	owner string
	now   func() time.Time
}

// SQLiteParams holds parameters for NewSQLiteStorage.
type SQLiteParams struct {
	Path    string
	OwnerID string
	// Now overrides the clock used for created_at. Defaults to time.Now.
	Now func() time.Time
}

// NewSQLiteStorage opens (and migrates) the database at params.Path.
func NewSQLiteStorage(params SQLiteParams) (*SQLiteStorage, error) {
	if params.OwnerID == "" {
		return nil, ErrNoOwner
	}
	if params.Now == nil {
		params.Now = time.Now
	}

	dir := filepath.Dir(params.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", params.Path)
	if err != nil {
		return nil, err
	}

	// Pragmas are per connection; a single connection keeps them in force
	// and serializes writers.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, err
		}
	}

	s := &SQLiteStorage{db: db, path: params.Path, owner: params.OwnerID, now: params.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

// Path returns the database file path.
func (s *SQLiteStorage) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) migrate() error {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	if err != nil {
		// Table doesn't exist or is empty, start fresh
		version = 0
	}
	if version > currentSchemaVersion {
		return fmt.Errorf("%w: database is at version %d, this build knows %d",
			ErrSchemaTooNew, version, currentSchemaVersion)
	}

	if version < 1 {
		if err := s.migrateV1(); err != nil {
			return err
		}
	}

	if version < 2 {
		if err := s.migrateV2(); err != nil {
			return err
		}
	}

	return nil
}

// migrateV1 creates the bookmarks table.
func (s *SQLiteStorage) migrateV1() error {
	schema := `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS bookmarks (
			id TEXT PRIMARY KEY NOT NULL,
			owner_id TEXT NOT NULL,
			title TEXT NOT NULL,
			url TEXT NOT NULL,
			created_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_bookmarks_url ON bookmarks(url);

		INSERT OR REPLACE INTO schema_version (version) VALUES (1);
	`
	_, err := s.db.Exec(schema)
	return err
}

// migrateV2 adds the per-owner ordering index used by ListAll.
func (s *SQLiteStorage) migrateV2() error {
	migration := `
		CREATE INDEX IF NOT EXISTS idx_bookmarks_owner_created
			ON bookmarks(owner_id, created_at DESC);
		UPDATE schema_version SET version = 2;
	`
	_, err := s.db.Exec(migration)
	return err
}

// SchemaVersion reports the applied migration level.
func (s *SQLiteStorage) SchemaVersion() (int, error) {
	var version int
	err := s.db.QueryRow("SELECT version FROM schema_version LIMIT 1").Scan(&version)
	return version, err
}

func (s *SQLiteStorage) Insert(ctx context.Context, title, url string) (model.Bookmark, error) {
	b := model.Bookmark{
		ID:        model.NewID(),
		Title:     title,
		URL:       url,
		CreatedAt: s.now().UTC(),
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (id, owner_id, title, url, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, b.ID, s.owner, b.Title, b.URL, b.CreatedAt.Format(timeLayout))
	if err != nil {
		return model.Bookmark{}, fmt.Errorf("insert bookmark: %w", err)
	}
	return b, nil
}

func (s *SQLiteStorage) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx,
		"DELETE FROM bookmarks WHERE id = ? AND owner_id = ?", id, s.owner)
	if err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	return nil
}

// ListAll returns the owner's bookmarks, newest first.
func (s *SQLiteStorage) ListAll(ctx context.Context) ([]model.Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, url, created_at
		FROM bookmarks
		WHERE owner_id = ?
		ORDER BY created_at DESC, rowid DESC
	`, s.owner)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	defer rows.Close()

	bookmarks := []model.Bookmark{}
	for rows.Next() {
		var b model.Bookmark
		var createdAtStr string
		if err := rows.Scan(&b.ID, &b.Title, &b.URL, &createdAtStr); err != nil {
			return nil, err
		}
		b.CreatedAt, err = time.Parse(timeLayout, createdAtStr)
		if err != nil {
			return nil, fmt.Errorf("parse created_at of %s: %w", b.ID, err)
		}
		bookmarks = append(bookmarks, b)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bookmarks, nil
}
