package model

import "time"

const (
	StockInStock    = "in_stock"
	StockOutOfStock = "out_of_stock"
)

// Product is the canonical, storage-ready form of one feed item.
// (FeedSource, FeedProductID) is the natural key and never changes
// after the first ingestion.
type Product struct {
	FeedSource    string
	FeedProductID string

	Title string
	Slug  string
	Brand string
	Model string
	EAN   string

	PriceCents        int64
	OldPriceCents     *int64
	CommissionPercent float64

	CategoryID           *int64
	FeedCategoryOriginal string

	Description         string
	DescriptionEnriched string

	ImageURL      string
	AffiliateLink string

	InStock     bool
	StockStatus string

	IndexationPriority int

	FeedLastSeen time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// CategoryRef points at a node of the site taxonomy.
type CategoryRef struct {
	ID   int64
	Slug string
}

// Stats aggregates the outcome of an ingestion pass. Skipped counts
// malformed feed rows that never reached normalization; Errors counts
// records that failed normalization or storage.
type Stats struct {
	Imported int
	Updated  int
	Errors   int
	Skipped  int
}

func (s *Stats) Add(o Stats) {
	s.Imported += o.Imported
	s.Updated += o.Updated
	s.Errors += o.Errors
	s.Skipped += o.Skipped
}
