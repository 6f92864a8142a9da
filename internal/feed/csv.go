package feed

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"strings"

	"feedsync/internal/model"
)

// DecodeCSV reads a CSV feed whose first row is the header. Each data
// row becomes a RawRecord keyed by the header names. Malformed rows are
// skipped and counted, never fatal; an unreadable header is fatal for
// the whole feed.
func DecodeCSV(r io.Reader) ([]model.RawRecord, int, error) {
	cr := csv.NewReader(r)
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var records []model.RawRecord
	skipped := 0
	line := 1

	for {
		line++
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("csv: skipping malformed row %d: %v", line, err)
			skipped++
			continue
		}

		rec := model.NewRawRecord()
		for i, col := range header {
			if col == "" || i >= len(row) {
				continue
			}
			rec.Set(col, strings.TrimSpace(row[i]))
		}
		if rec.Len() == 0 {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return records, skipped, nil
}
