package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"feedsync/internal/model"
	"feedsync/internal/storage"
)

// memStore is an in-memory Store with the same transactional contract
// as the Postgres implementation: per-record constraint errors leave
// the batch usable, fatal errors poison the whole transaction, nothing
// is visible until Commit.
type memStore struct {
	mu         sync.Mutex
	seq        int
	rows       map[string]*storedRow // natural key → row
	categories map[string]int64

	failInsert  map[string]bool // feedProductID → constraint violation
	failCommits int             // fail the next N commits fatally
	failLookups bool
	begun       int
}

type storedRow struct {
	id string
	p  model.Product
}

func newMemStore() *memStore {
	return &memStore{
		rows:       make(map[string]*storedRow),
		categories: make(map[string]int64),
		failInsert: make(map[string]bool),
	}
}

func naturalKey(source, feedID string) string {
	return source + "|" + feedID
}

func (s *memStore) Begin(context.Context) (storage.Tx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.begun++
	return &memTx{store: s}, nil
}

func (s *memStore) FindCategoryBySlug(_ context.Context, slug string) (*model.CategoryRef, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.categories[slug]; ok {
		return &model.CategoryRef{ID: id, Slug: slug}, nil
	}
	return nil, nil
}

func (s *memStore) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rows)
}

func (s *memStore) byTitle(title string) (model.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, row := range s.rows {
		if row.p.Title == title {
			return row.p, true
		}
	}
	return model.Product{}, false
}

type memTx struct {
	store   *memStore
	pending []func()
}

func (t *memTx) FindByKey(_ context.Context, source, feedID string) (string, bool, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.failLookups {
		return "", false, fmt.Errorf("%w: lookup: connection reset", storage.ErrBatchFatal)
	}
	if row, ok := t.store.rows[naturalKey(source, feedID)]; ok {
		return row.id, true, nil
	}
	return "", false, nil
}

func (t *memTx) Insert(_ context.Context, p *model.Product) (string, error) {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.failInsert[p.FeedProductID] {
		return "", errors.New("duplicate key value violates unique constraint")
	}
	t.store.seq++
	id := fmt.Sprintf("row-%d", t.store.seq)
	cp := *p
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	k := naturalKey(p.FeedSource, p.FeedProductID)
	t.pending = append(t.pending, func() {
		t.store.rows[k] = &storedRow{id: id, p: cp}
	})
	return id, nil
}

func (t *memTx) Update(_ context.Context, _ string, p *model.Product) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	cp := *p
	k := naturalKey(p.FeedSource, p.FeedProductID)
	t.pending = append(t.pending, func() {
		row, ok := t.store.rows[k]
		if !ok {
			return
		}
		// Volatile fields only, like the real update statement.
		row.p.Title = cp.Title
		row.p.PriceCents = cp.PriceCents
		row.p.OldPriceCents = cp.OldPriceCents
		row.p.InStock = cp.InStock
		row.p.StockStatus = cp.StockStatus
		row.p.ImageURL = cp.ImageURL
		row.p.AffiliateLink = cp.AffiliateLink
		row.p.FeedLastSeen = cp.FeedLastSeen
		row.p.UpdatedAt = time.Now()
	})
	return nil
}

func (t *memTx) Commit(context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.failCommits > 0 {
		t.store.failCommits--
		t.pending = nil
		return fmt.Errorf("%w: commit: connection reset", storage.ErrBatchFatal)
	}
	for _, apply := range t.pending {
		apply()
	}
	t.pending = nil
	return nil
}

func (t *memTx) Rollback(context.Context) error {
	t.pending = nil
	return nil
}
