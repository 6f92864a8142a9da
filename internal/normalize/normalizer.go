package normalize

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"feedsync/internal/model"
	"feedsync/internal/observability"
)

const (
	maxTitleLen       = 500
	defaultCommission = 5.0
	basePriority      = 5
	maxPriority       = 10
	expensiveCents    = 50000
)

// ErrMissingIdentity marks a record that lacks both a title and any way
// to derive a stable product id. Such records are dropped before
// storage and counted as errors.
var ErrMissingIdentity = errors.New("record has no usable identity")

// Resolver maps a verbatim feed category onto the site taxonomy.
// Implemented by category.Resolver.
type Resolver interface {
	Resolve(ctx context.Context, feedCategory, feedSource string) (*model.CategoryRef, error)
}

// Source describes the feed a record came from.
type Source struct {
	Name              string
	CommissionPercent float64
	AffCode           string
}

// Normalizer turns raw feed records into canonical products. It holds
// no mutable state and is safe to share across workers.
type Normalizer struct {
	resolver Resolver
	now      func() time.Time
}

func New(resolver Resolver) *Normalizer {
	return &Normalizer{resolver: resolver, now: time.Now}
}

// Normalize converts one RawRecord into a Product. Only a missing
// identity is an error; everything else falls back to a default.
func (n *Normalizer) Normalize(ctx context.Context, rec model.RawRecord, src Source) (*model.Product, error) {
	title := strings.TrimSpace(rec.GetDefault("", "title", "name"))
	if title == "" {
		return nil, fmt.Errorf("%w: missing title", ErrMissingIdentity)
	}
	title = truncateRunes(title, maxTitleLen)

	priceCents := ParsePrice(rec.GetDefault("", "price"))

	var oldPriceCents *int64
	if raw, ok := rec.Get("old_price", "sale_price"); ok {
		cents := ParsePrice(raw)
		oldPriceCents = &cents
		if cents <= priceCents {
			// Old price not above the current one: not a real
			// discount, flag it for product review instead of
			// correcting it here.
			observability.DiscountSuspect.Inc()
		}
	}

	brand := strings.TrimSpace(rec.GetDefault("", "brand", "manufacturer"))
	if brand == "" {
		brand = BrandFromTitle(title)
	}

	slug := Slug(title, brand)
	link := rec.GetDefault("", "link", "url")

	id := strings.TrimSpace(rec.GetDefault("", "id", "product_id", "sku", "code"))
	if id == "" {
		id = deriveID(link, slug)
	}
	if id == "" {
		return nil, fmt.Errorf("%w: missing product id", ErrMissingIdentity)
	}

	feedCategory := rec.GetDefault("", "category", "product_type")
	var categoryID *int64
	if n.resolver != nil {
		ref, err := n.resolver.Resolve(ctx, feedCategory, src.Name)
		if err != nil {
			// Unresolved means default bucket, never a dropped record.
			log.Printf("normalize: category lookup failed for %q (%s): %v", feedCategory, src.Name, err)
		} else if ref != nil {
			categoryID = &ref.ID
		}
	}

	description := FlattenHTML(rec.GetDefault("", "description"))
	enriched := Enrich(description, title, brand, collectSpecs(rec))

	availability := rec.GetDefault("", "availability")
	inStock := strings.EqualFold(strings.TrimSpace(availability), "in stock")
	stockStatus := model.StockOutOfStock
	if inStock {
		stockStatus = model.StockInStock
	}

	commission := src.CommissionPercent
	if commission == 0 {
		commission = defaultCommission
	}
	if raw, ok := rec.Get("commission"); ok {
		if v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64); err == nil {
			commission = v
		}
	}

	affiliateLink := link
	if src.AffCode != "" && link != "" {
		affiliateLink = TrackingLink(link, src.AffCode, n.now())
	}

	return &model.Product{
		FeedSource:           src.Name,
		FeedProductID:        id,
		Title:                title,
		Slug:                 slug,
		Brand:                brand,
		Model:                rec.GetDefault("", "model"),
		EAN:                  rec.GetDefault("", "ean", "gtin"),
		PriceCents:           priceCents,
		OldPriceCents:        oldPriceCents,
		CommissionPercent:    commission,
		CategoryID:           categoryID,
		FeedCategoryOriginal: feedCategory,
		Description:          description,
		DescriptionEnriched:  enriched,
		ImageURL:             rec.GetDefault("", "image", "image_url", "image_link"),
		AffiliateLink:        affiliateLink,
		InStock:              inStock,
		StockStatus:          stockStatus,
		IndexationPriority:   priority(brand, priceCents, oldPriceCents != nil),
		FeedLastSeen:         n.now().UTC(),
	}, nil
}

// priority computes the initial indexation priority: 5 base, +2 for a
// top brand, +1 above 500 RON, +1 when a discount reference exists,
// capped at 10.
func priority(brand string, priceCents int64, hasDiscount bool) int {
	p := basePriority
	if topBrands[brand] {
		p += 2
	}
	if priceCents > expensiveCents {
		p++
	}
	if hasDiscount {
		p++
	}
	if p > maxPriority {
		p = maxPriority
	}
	return p
}

// deriveID builds a stable fallback id for feeds without a product id
// column, so re-ingestion still matches the same row.
func deriveID(link, slug string) string {
	seed := link
	if seed == "" {
		seed = slug
	}
	if seed == "" {
		return ""
	}
	sum := sha1.Sum([]byte(seed))
	return hex.EncodeToString(sum[:])
}

func collectSpecs(rec model.RawRecord) []Spec {
	var specs []Spec
	for _, k := range rec.Keys() {
		if !strings.HasPrefix(k, specPrefix) {
			continue
		}
		v, _ := rec.Get(k)
		specs = append(specs, Spec{Key: strings.TrimPrefix(k, specPrefix), Value: v})
	}
	return specs
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max])
}
