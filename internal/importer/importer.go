package importer

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"feedsync/internal/feed"
	"feedsync/internal/model"
	"feedsync/internal/normalize"
	"feedsync/internal/observability"
	"feedsync/internal/storage"
)

// Feed is one (url, source, format) tuple to ingest.
type Feed struct {
	URL    string
	Format string
	Source normalize.Source
}

// SourceResult is the outcome for one feed source. Err is set only for
// source-fatal failures (fetch or whole-feed decode); such a source
// contributes nothing to the counts.
type SourceResult struct {
	Source string
	Stats  model.Stats
	Err    error
}

// Importer drives feeds through fetch → decode → normalize → upsert.
type Importer struct {
	fetcher    *feed.Fetcher
	normalizer *normalize.Normalizer
	store      storage.Store

	batchSize     int
	workers       int
	maxConcurrent int
}

func New(f *feed.Fetcher, n *normalize.Normalizer, s storage.Store, batchSize, workers, maxConcurrent int) *Importer {
	if workers <= 0 {
		workers = 1
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	return &Importer{
		fetcher:       f,
		normalizer:    n,
		store:         s,
		batchSize:     batchSize,
		workers:       workers,
		maxConcurrent: maxConcurrent,
	}
}

// Run ingests every feed, sources concurrently up to the configured
// limit. One source failing never stops the others; the aggregate
// stats always come back alongside the per-source results.
func (im *Importer) Run(ctx context.Context, feeds []Feed) ([]SourceResult, model.Stats) {
	results := make([]SourceResult, len(feeds))

	var g errgroup.Group
	g.SetLimit(im.maxConcurrent)
	for i, f := range feeds {
		i, f := i, f
		g.Go(func() error {
			results[i] = im.runSource(ctx, f)
			return nil
		})
	}
	_ = g.Wait()

	var total model.Stats
	for _, r := range results {
		total.Add(r.Stats)
	}
	return results, total
}

func (im *Importer) runSource(ctx context.Context, f Feed) SourceResult {
	log.Printf("starting %s import from %s: %s", f.Format, f.Source.Name, f.URL)

	body, err := im.fetcher.Fetch(ctx, f.URL)
	if err != nil {
		log.Printf("%s: fetch failed: %v", f.Source.Name, err)
		return SourceResult{Source: f.Source.Name, Err: err}
	}

	var records []model.RawRecord
	var skipped int
	switch f.Format {
	case "csv":
		records, skipped, err = feed.DecodeCSV(bytes.NewReader(body))
	case "xml":
		records, skipped, err = feed.DecodeXML(bytes.NewReader(body))
	default:
		err = fmt.Errorf("unknown feed format %q", f.Format)
	}
	if err != nil {
		log.Printf("%s: decode failed: %v", f.Source.Name, err)
		return SourceResult{Source: f.Source.Name, Err: err}
	}

	stats := model.Stats{Skipped: skipped}
	observability.RowsSkipped.Add(float64(skipped))
	log.Printf("%s: decoded %d records, %d rows skipped", f.Source.Name, len(records), skipped)

	products, normErrors := im.normalizeAll(ctx, records, f.Source)
	stats.Errors += normErrors
	observability.ProductErrors.Add(float64(normErrors))

	stats.Add(UpsertBatches(ctx, im.store, products, im.batchSize))

	log.Printf("%s: %d imported, %d updated, %d errors", f.Source.Name, stats.Imported, stats.Updated, stats.Errors)
	return SourceResult{Source: f.Source.Name, Stats: stats}
}

// normalizeAll fans records out across a worker pool. Normalization is
// pure, so output order does not matter.
func (im *Importer) normalizeAll(ctx context.Context, records []model.RawRecord, src normalize.Source) ([]*model.Product, int) {
	jobs := make(chan model.RawRecord)

	var mu sync.Mutex
	products := make([]*model.Product, 0, len(records))
	errCount := 0

	var wg sync.WaitGroup
	for w := 0; w < im.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range jobs {
				p, err := im.normalizer.Normalize(ctx, rec, src)
				if err != nil {
					log.Printf("%s: dropping record: %v", src.Name, err)
					mu.Lock()
					errCount++
					mu.Unlock()
					continue
				}
				mu.Lock()
				products = append(products, p)
				mu.Unlock()
			}
		}()
	}

	for _, rec := range records {
		jobs <- rec
	}
	close(jobs)
	wg.Wait()

	return products, errCount
}
