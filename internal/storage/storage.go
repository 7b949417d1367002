package storage

import (
	"context"
	"errors"

	"github.com/nikbrunner/smartmark/internal/model"
)

var (
	ErrNoOwner      = errors.New("storage: owner is required")
	ErrSchemaTooNew = errors.New("storage: schema is newer than this build")
)

// Store is the authoritative bookmark store for one owner. Delete of an id
// that does not exist succeeds.
type Store interface {
	Insert(ctx context.Context, title, url string) (model.Bookmark, error)
	Delete(ctx context.Context, id string) error
	ListAll(ctx context.Context) ([]model.Bookmark, error)
	Close() error
}
