package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseURL        string
	RedisURL           string
	MetricsPort        string
	BatchSize          int
	WorkerCount        int
	MaxConcurrentFeeds int
	FetchTimeout       time.Duration
	FetchRPS           float64
}

func Load() *Config {
	_ = godotenv.Load()
	return &Config{
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		RedisURL:           os.Getenv("REDIS_URL"),
		MetricsPort:        getEnv("METRICS_PORT", "9090"),
		BatchSize:          getEnvInt("BATCH_SIZE", 1000),
		WorkerCount:        getEnvInt("WORKER_COUNT", 5),
		MaxConcurrentFeeds: getEnvInt("MAX_CONCURRENT_FEEDS", 3),
		FetchTimeout:       time.Duration(getEnvInt("FETCH_TIMEOUT_SECONDS", 60)) * time.Second,
		FetchRPS:           float64(getEnvInt("FETCH_RPS", 2)),
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvInt(k string, d int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return d
}

// FeedSpec is one entry of the feeds file: where to fetch a feed, how
// to decode it and the source defaults applied during normalization.
type FeedSpec struct {
	Source            string  `json:"source"`
	URL               string  `json:"url"`
	Format            string  `json:"format"`
	CommissionPercent float64 `json:"commission_percent"`
	AffCode           string  `json:"aff_code"`
}

// LoadFeeds reads the feeds file. A missing or malformed file is fatal
// at startup.
func LoadFeeds(path string) ([]FeedSpec, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("feeds config: %w", err)
	}
	var feeds []FeedSpec
	if err := json.Unmarshal(b, &feeds); err != nil {
		return nil, fmt.Errorf("feeds config: %w", err)
	}
	for i, f := range feeds {
		if f.Source == "" || f.URL == "" {
			return nil, fmt.Errorf("feeds config: entry %d is missing source or url", i)
		}
		if f.Format != "csv" && f.Format != "xml" {
			return nil, fmt.Errorf("feeds config: entry %d has unknown format %q", i, f.Format)
		}
	}
	return feeds, nil
}
