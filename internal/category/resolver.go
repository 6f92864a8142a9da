package category

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	"feedsync/internal/model"
)

// Lookup is the slice of the storage collaborator the resolver needs.
type Lookup interface {
	FindCategoryBySlug(ctx context.Context, slug string) (*model.CategoryRef, error)
}

// Resolver maps free-text feed categories onto the taxonomy using the
// per-source aliases of the mapping config. Immutable after
// construction.
type Resolver struct {
	mapping *Mapping
	store   Lookup
	cache   slugCache
}

// NewResolver builds a resolver. rdb may be nil, in which case resolved
// slugs are memoized in process instead of Redis.
func NewResolver(mapping *Mapping, store Lookup, rdb *redis.Client) *Resolver {
	var cache slugCache = newMemCache()
	if rdb != nil {
		cache = &redisCache{client: rdb}
	}
	return &Resolver{mapping: mapping, store: store, cache: cache}
}

// Resolve returns the taxonomy node for a feed category, or nil when
// nothing matches — the caller sends unresolved records to the default
// bucket. Top-level entries are tried first, in config order; only when
// none match are the subcategories of every entry tried, same rule.
// Matching is bidirectional substring containment, so config order is a
// priority ordering.
func (r *Resolver) Resolve(ctx context.Context, feedCategory, feedSource string) (*model.CategoryRef, error) {
	normalized := strings.ToLower(strings.TrimSpace(feedCategory))
	if normalized == "" {
		return nil, nil
	}

	for _, entry := range r.mapping.Entries {
		if !aliasMatch(entry, feedSource, normalized) {
			continue
		}
		ref, err := r.lookup(ctx, entry.Slug)
		if err != nil {
			return nil, err
		}
		if ref != nil {
			return ref, nil
		}
		// Slug not present in storage: keep scanning.
	}

	for _, entry := range r.mapping.Entries {
		for _, sub := range entry.Subcategories {
			if !aliasMatch(sub, feedSource, normalized) {
				continue
			}
			ref, err := r.lookup(ctx, sub.Slug)
			if err != nil {
				return nil, err
			}
			if ref != nil {
				return ref, nil
			}
		}
	}

	return nil, nil
}

func aliasMatch(e Entry, feedSource, normalized string) bool {
	for _, alias := range e.FeedMappings[feedSource] {
		a := strings.ToLower(strings.TrimSpace(alias))
		if a == "" {
			continue
		}
		if strings.Contains(normalized, a) || strings.Contains(a, normalized) {
			return true
		}
	}
	return false
}

func (r *Resolver) lookup(ctx context.Context, slug string) (*model.CategoryRef, error) {
	if id, ok := r.cache.get(ctx, slug); ok {
		return &model.CategoryRef{ID: id, Slug: slug}, nil
	}
	ref, err := r.store.FindCategoryBySlug(ctx, slug)
	if err != nil || ref == nil {
		return nil, err
	}
	r.cache.put(ctx, slug, ref.ID)
	return ref, nil
}
