package importer

import (
	"context"
	"errors"
	"log"

	"feedsync/internal/model"
	"feedsync/internal/observability"
	"feedsync/internal/storage"
)

const defaultBatchSize = 1000

// UpsertBatches partitions products into consecutive batches and
// commits each batch as one transaction. Batches are independent: a
// rolled-back batch never blocks the next one. Aborting the context
// stops the run at the next batch boundary.
func UpsertBatches(ctx context.Context, store storage.Store, products []*model.Product, batchSize int) model.Stats {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	var stats model.Stats
	for i := 0; i < len(products); i += batchSize {
		if ctx.Err() != nil {
			log.Printf("upsert aborted after %d of %d records", i, len(products))
			break
		}
		end := i + batchSize
		if end > len(products) {
			end = len(products)
		}
		stats.Add(upsertBatch(ctx, store, products[i:end]))
	}
	return stats
}

// upsertBatch resolves every record against the (feedSource,
// feedProductID) key and inserts or updates it. A per-record failure is
// counted and the batch moves on; an ErrBatchFatal rolls the whole
// batch back with every record counted as an error, succeeded ones
// included.
func upsertBatch(ctx context.Context, store storage.Store, batch []*model.Product) model.Stats {
	tx, err := store.Begin(ctx)
	if err != nil {
		log.Printf("batch begin failed: %v", err)
		observability.BatchesRolledBack.Inc()
		observability.ProductErrors.Add(float64(len(batch)))
		return model.Stats{Errors: len(batch)}
	}

	var s model.Stats
	fatal := false

	for _, p := range batch {
		id, found, err := tx.FindByKey(ctx, p.FeedSource, p.FeedProductID)
		if err != nil {
			if errors.Is(err, storage.ErrBatchFatal) {
				log.Printf("batch aborted: %v", err)
				fatal = true
				break
			}
			log.Printf("record error: %v", err)
			s.Errors++
			continue
		}

		if found {
			err = tx.Update(ctx, id, p)
		} else {
			_, err = tx.Insert(ctx, p)
		}
		if err != nil {
			if errors.Is(err, storage.ErrBatchFatal) {
				log.Printf("batch aborted: %v", err)
				fatal = true
				break
			}
			log.Printf("record error: %v", err)
			s.Errors++
			continue
		}
		if found {
			s.Updated++
		} else {
			s.Imported++
		}
	}

	if !fatal {
		if err := tx.Commit(ctx); err != nil {
			log.Printf("batch commit failed: %v", err)
			fatal = true
		}
	}
	if fatal {
		_ = tx.Rollback(ctx)
		observability.BatchesRolledBack.Inc()
		observability.ProductErrors.Add(float64(len(batch)))
		return model.Stats{Errors: len(batch)}
	}

	observability.BatchesCommitted.Inc()
	observability.ProductsImported.Add(float64(s.Imported))
	observability.ProductsUpdated.Add(float64(s.Updated))
	observability.ProductErrors.Add(float64(s.Errors))
	return s
}
