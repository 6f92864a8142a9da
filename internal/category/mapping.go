package category

import (
	"encoding/json"
	"fmt"
	"os"
)

// Mapping is the category mapping document: taxonomy slugs with their
// per-source alias lists and nested subcategories. Entry order in the
// file is the resolution priority order, so decoding keeps it.
type Mapping struct {
	Entries []Entry
}

type Entry struct {
	Slug          string
	FeedMappings  map[string][]string
	Subcategories []Entry
}

// LoadMapping reads the mapping JSON. A missing or malformed file is
// fatal at startup, never per record.
//
//	{
//	  "categoryMapping": {
//	    "electronics": {
//	      "feedMappings": {"profitshare": ["electronice", "telefoane"]},
//	      "subcategories": {
//	        "laptops": {"feedMappings": {"profitshare": ["laptop"]}}
//	      }
//	    }
//	  }
//	}
func LoadMapping(path string) (*Mapping, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("category mapping: %w", err)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	if err := expectDelim(dec, '{'); err != nil {
		return nil, fmt.Errorf("category mapping: %w", err)
	}

	var entries []Entry
	found := false
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, fmt.Errorf("category mapping: %w", err)
		}
		if key != "categoryMapping" {
			if err := skipValue(dec); err != nil {
				return nil, fmt.Errorf("category mapping: %w", err)
			}
			continue
		}
		entries, err = parseEntryMap(dec)
		if err != nil {
			return nil, fmt.Errorf("category mapping: %w", err)
		}
		found = true
	}

	if !found {
		return nil, fmt.Errorf("category mapping: no categoryMapping object in %s", path)
	}
	return &Mapping{Entries: entries}, nil
}

// parseEntryMap walks a {slug: entry, ...} object with the decoder's
// token stream, preserving the key order encoding/json would lose.
func parseEntryMap(dec *json.Decoder) ([]Entry, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var entries []Entry
	for dec.More() {
		slug, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		e, err := parseEntry(dec)
		if err != nil {
			return nil, fmt.Errorf("entry %q: %w", slug, err)
		}
		e.Slug = slug
		entries = append(entries, e)
	}
	if err := expectDelim(dec, '}'); err != nil {
		return nil, err
	}
	return entries, nil
}

func parseEntry(dec *json.Decoder) (Entry, error) {
	var e Entry
	if err := expectDelim(dec, '{'); err != nil {
		return e, err
	}
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return e, err
		}
		switch key {
		case "feedMappings":
			if err := dec.Decode(&e.FeedMappings); err != nil {
				return e, fmt.Errorf("feedMappings: %w", err)
			}
		case "subcategories":
			subs, err := parseEntryMap(dec)
			if err != nil {
				return e, err
			}
			e.Subcategories = subs
		default:
			if err := skipValue(dec); err != nil {
				return e, err
			}
		}
	}
	if err := expectDelim(dec, '}'); err != nil {
		return e, err
	}
	return e, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	s, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return s, nil
}

func skipValue(dec *json.Decoder) error {
	var raw json.RawMessage
	return dec.Decode(&raw)
}
