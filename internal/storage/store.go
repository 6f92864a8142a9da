package storage

import (
	"context"
	"errors"

	"feedsync/internal/model"
)

// ErrBatchFatal wraps storage errors that leave the whole batch
// transaction unusable. The batch engine rolls back and counts every
// record of the batch as an error when it sees one.
var ErrBatchFatal = errors.New("batch transaction failed")

// Store is the catalog storage collaborator. The pipeline only needs
// keyed upsert inside a transaction plus taxonomy lookup.
type Store interface {
	Begin(ctx context.Context) (Tx, error)
	FindCategoryBySlug(ctx context.Context, slug string) (*model.CategoryRef, error)
}

// Tx scopes one upsert batch. A per-record failure from Insert or
// Update leaves the transaction usable; failures wrapping ErrBatchFatal
// do not.
type Tx interface {
	// FindByKey resolves the (feedSource, feedProductID) natural key to
	// a stored row id.
	FindByKey(ctx context.Context, feedSource, feedProductID string) (string, bool, error)
	Insert(ctx context.Context, p *model.Product) (string, error)
	Update(ctx context.Context, id string, p *model.Product) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}
