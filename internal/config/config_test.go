package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFeeds(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feeds.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFeeds(t *testing.T) {
	path := writeFeeds(t, `[
		{"source": "profitshare", "url": "https://example.com/a.csv", "format": "csv", "commission_percent": 5},
		{"source": "2performant", "url": "https://example.com/b.xml", "format": "xml", "aff_code": "abc"}
	]`)

	feeds, err := LoadFeeds(path)
	require.NoError(t, err)
	require.Len(t, feeds, 2)
	assert.Equal(t, "profitshare", feeds[0].Source)
	assert.Equal(t, 5.0, feeds[0].CommissionPercent)
	assert.Equal(t, "abc", feeds[1].AffCode)
}

func TestLoadFeedsRejectsUnknownFormat(t *testing.T) {
	path := writeFeeds(t, `[{"source": "s", "url": "https://example.com", "format": "yaml"}]`)
	_, err := LoadFeeds(path)
	assert.Error(t, err)
}

func TestLoadFeedsRejectsMissingSource(t *testing.T) {
	path := writeFeeds(t, `[{"url": "https://example.com", "format": "csv"}]`)
	_, err := LoadFeeds(path)
	assert.Error(t, err)
}

func TestLoadFeedsMissingFile(t *testing.T) {
	_, err := LoadFeeds(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	cfg := Load()
	assert.Equal(t, 1000, cfg.BatchSize)
	assert.Equal(t, 5, cfg.WorkerCount)
	assert.Equal(t, 3, cfg.MaxConcurrentFeeds)
}
