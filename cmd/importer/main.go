package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"feedsync/internal/category"
	"feedsync/internal/config"
	"feedsync/internal/feed"
	"feedsync/internal/importer"
	"feedsync/internal/normalize"
	"feedsync/internal/observability"
	"feedsync/internal/storage"
)

// go run cmd/importer/main.go -feeds=config/feeds.json -mapping=config/category-mapping.json
// go run cmd/importer/main.go -url="https://export.profitshare.ro/feed.csv" -source=profitshare -format=csv
func main() {
	feedsPath := flag.String("feeds", "config/feeds.json", "JSON file listing the feeds to ingest")
	mappingPath := flag.String("mapping", "config/category-mapping.json", "category mapping JSON file")
	singleURL := flag.String("url", "", "ingest a single feed URL instead of the feeds file")
	singleSource := flag.String("source", "", "feed source name, required with -url")
	singleFormat := flag.String("format", "csv", "feed format for -url: csv or xml")
	flag.Parse()

	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var specs []config.FeedSpec
	if *singleURL != "" {
		if *singleSource == "" {
			log.Fatal("-source is required with -url")
		}
		specs = []config.FeedSpec{{Source: *singleSource, URL: *singleURL, Format: *singleFormat}}
	} else {
		var err error
		specs, err = config.LoadFeeds(*feedsPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	mapping, err := category.LoadMapping(*mappingPath)
	if err != nil {
		log.Fatal(err)
	}

	store, err := storage.NewPostgres(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		opt, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			log.Fatal(err)
		}
		rdb = redis.NewClient(opt)
		defer rdb.Close()
	}

	observability.Start(cfg.MetricsPort)

	resolver := category.NewResolver(mapping, store, rdb)
	normalizer := normalize.New(resolver)
	fetcher := feed.NewFetcher(cfg.FetchTimeout, cfg.FetchRPS)
	imp := importer.New(fetcher, normalizer, store, cfg.BatchSize, cfg.WorkerCount, cfg.MaxConcurrentFeeds)

	feeds := make([]importer.Feed, 0, len(specs))
	for _, s := range specs {
		feeds = append(feeds, importer.Feed{
			URL:    s.URL,
			Format: s.Format,
			Source: normalize.Source{
				Name:              s.Source,
				CommissionPercent: s.CommissionPercent,
				AffCode:           s.AffCode,
			},
		})
	}

	results, total := imp.Run(ctx, feeds)
	for _, r := range results {
		if r.Err != nil {
			log.Printf("%s: failed: %v", r.Source, r.Err)
		}
	}
	log.Printf("import complete: %d imported, %d updated, %d errors, %d rows skipped",
		total.Imported, total.Updated, total.Errors, total.Skipped)
}
