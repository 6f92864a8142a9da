package category

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeMapping(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "category-mapping.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadMappingKeepsEntryOrder(t *testing.T) {
	path := writeMapping(t, `{
		"categoryMapping": {
			"electronics": {
				"feedMappings": {"profitshare": ["electronice", "telefoane"]},
				"subcategories": {
					"laptops": {"feedMappings": {"profitshare": ["laptop"]}},
					"phones": {"feedMappings": {"profitshare": ["smartphone"]}}
				}
			},
			"fashion": {
				"feedMappings": {"profitshare": ["imbracaminte"]}
			},
			"home": {
				"feedMappings": {"2performant": ["casa"]}
			}
		}
	}`)

	m, err := LoadMapping(path)
	require.NoError(t, err)
	require.Len(t, m.Entries, 3)

	assert.Equal(t, "electronics", m.Entries[0].Slug)
	assert.Equal(t, "fashion", m.Entries[1].Slug)
	assert.Equal(t, "home", m.Entries[2].Slug)

	assert.Equal(t, []string{"electronice", "telefoane"}, m.Entries[0].FeedMappings["profitshare"])

	require.Len(t, m.Entries[0].Subcategories, 2)
	assert.Equal(t, "laptops", m.Entries[0].Subcategories[0].Slug)
	assert.Equal(t, "phones", m.Entries[0].Subcategories[1].Slug)

	assert.Empty(t, m.Entries[1].Subcategories)
	assert.Equal(t, []string{"casa"}, m.Entries[2].FeedMappings["2performant"])
}

func TestLoadMappingIgnoresUnknownKeys(t *testing.T) {
	path := writeMapping(t, `{
		"version": 2,
		"categoryMapping": {
			"electronics": {
				"displayOrder": 1,
				"name": "Electronics",
				"feedMappings": {"profitshare": ["tv"]}
			}
		}
	}`)

	m, err := LoadMapping(path)
	require.NoError(t, err)
	require.Len(t, m.Entries, 1)
	assert.Equal(t, []string{"tv"}, m.Entries[0].FeedMappings["profitshare"])
}

func TestLoadMappingMissingFile(t *testing.T) {
	_, err := LoadMapping(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestLoadMappingMalformed(t *testing.T) {
	_, err := LoadMapping(writeMapping(t, `{"categoryMapping": {`))
	assert.Error(t, err)
}

func TestLoadMappingWithoutMappingObject(t *testing.T) {
	_, err := LoadMapping(writeMapping(t, `{"other": 1}`))
	assert.Error(t, err)
}
