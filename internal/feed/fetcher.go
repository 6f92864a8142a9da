package feed

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const maxAttempts = 3

// Fetcher downloads feed bodies over HTTP. A shared rate limiter keeps
// concurrent source runs from hammering the affiliate networks.
type Fetcher struct {
	client  *http.Client
	limiter *rate.Limiter
	backoff time.Duration
}

func NewFetcher(timeout time.Duration, requestsPerSecond float64) *Fetcher {
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	if requestsPerSecond <= 0 {
		requestsPerSecond = 2
	}
	return &Fetcher{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
		backoff: time.Second,
	}
}

// Fetch retrieves the full feed body. Network errors and 5xx responses
// are retried with doubling backoff; 4xx responses are terminal.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr error
	backoff := f.backoff

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := f.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, retryable, err := f.fetchOnce(ctx, url)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
		if attempt < maxAttempts {
			log.Printf("fetch %s attempt %d failed, retrying in %s: %v", url, attempt, backoff, err)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}
	}

	return nil, fmt.Errorf("fetch %s: giving up after %d attempts: %w", url, maxAttempts, lastErr)
}

func (f *Fetcher) fetchOnce(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request for %s: %w", url, err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("failed to fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		err := fmt.Errorf("feed status %d for %s", resp.StatusCode, url)
		return nil, resp.StatusCode >= 500, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read body from %s: %w", url, err)
	}
	return body, false, nil
}
