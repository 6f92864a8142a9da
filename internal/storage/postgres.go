package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"feedsync/internal/model"
)

// Postgres implements Store on a pgx connection pool. Connections are
// held only for the duration of one batch transaction.
type Postgres struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, url string) (*Postgres, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("postgres connect: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

func (p *Postgres) Close() {
	p.pool.Close()
}

func (p *Postgres) Begin(ctx context.Context) (Tx, error) {
	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: begin: %v", ErrBatchFatal, err)
	}
	return &pgTx{tx: tx}, nil
}

func (p *Postgres) FindCategoryBySlug(ctx context.Context, slug string) (*model.CategoryRef, error) {
	var ref model.CategoryRef
	err := p.pool.QueryRow(ctx,
		"SELECT id, slug FROM categories WHERE slug = $1", slug,
	).Scan(&ref.ID, &ref.Slug)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find category %q: %w", slug, err)
	}
	return &ref, nil
}

type pgTx struct {
	tx pgx.Tx
}

func (t *pgTx) FindByKey(ctx context.Context, feedSource, feedProductID string) (string, bool, error) {
	var id string
	err := t.tx.QueryRow(ctx,
		"SELECT id FROM products WHERE feed_source = $1 AND feed_product_id = $2",
		feedSource, feedProductID,
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		// A failed query aborts the surrounding transaction.
		return "", false, fmt.Errorf("%w: lookup %s/%s: %v", ErrBatchFatal, feedSource, feedProductID, err)
	}
	return id, true, nil
}

const insertSQL = `
	INSERT INTO products (
		id, feed_product_id, feed_source, title, slug, brand, model, ean,
		category_id, feed_category_original, price_cents, old_price_cents,
		description, description_enriched, image_url, affiliate_link,
		affiliate_network, commission_percent, in_stock, stock_status,
		indexation_priority, feed_last_seen, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8,
		$9, $10, $11, $12,
		$13, $14, $15, $16,
		$17, $18, $19, $20,
		$21, $22, NOW(), NOW()
	)`

// Insert adds a new product row inside a savepoint, so a constraint
// violation fails only this record and the batch transaction stays
// usable.
func (t *pgTx) Insert(ctx context.Context, p *model.Product) (string, error) {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: savepoint: %v", ErrBatchFatal, err)
	}

	id := uuid.New().String()
	_, err = sp.Exec(ctx, insertSQL,
		id, p.FeedProductID, p.FeedSource, p.Title, p.Slug,
		nullString(p.Brand), nullString(p.Model), nullString(p.EAN),
		p.CategoryID, p.FeedCategoryOriginal, p.PriceCents, p.OldPriceCents,
		p.Description, p.DescriptionEnriched, p.ImageURL, p.AffiliateLink,
		p.FeedSource, p.CommissionPercent, p.InStock, p.StockStatus,
		p.IndexationPriority, p.FeedLastSeen,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		return "", fmt.Errorf("insert %s/%s: %w", p.FeedSource, p.FeedProductID, err)
	}
	if err := sp.Commit(ctx); err != nil {
		return "", fmt.Errorf("%w: release savepoint: %v", ErrBatchFatal, err)
	}
	return id, nil
}

const updateSQL = `
	UPDATE products SET
		title = $1,
		price_cents = $2,
		old_price_cents = $3,
		in_stock = $4,
		stock_status = $5,
		image_url = $6,
		affiliate_link = $7,
		feed_last_seen = $8,
		updated_at = NOW()
	WHERE id = $9`

// Update refreshes the volatile fields of an existing row. Brand,
// category, slug and description are left as first ingested;
// re-classification is a separate pass.
func (t *pgTx) Update(ctx context.Context, id string, p *model.Product) error {
	sp, err := t.tx.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: savepoint: %v", ErrBatchFatal, err)
	}

	_, err = sp.Exec(ctx, updateSQL,
		p.Title, p.PriceCents, p.OldPriceCents, p.InStock, p.StockStatus,
		p.ImageURL, p.AffiliateLink, p.FeedLastSeen, id,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		return fmt.Errorf("update %s/%s: %w", p.FeedSource, p.FeedProductID, err)
	}
	if err := sp.Commit(ctx); err != nil {
		return fmt.Errorf("%w: release savepoint: %v", ErrBatchFatal, err)
	}
	return nil
}

func (t *pgTx) Commit(ctx context.Context) error {
	if err := t.tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrBatchFatal, err)
	}
	return nil
}

func (t *pgTx) Rollback(ctx context.Context) error {
	return t.tx.Rollback(ctx)
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
