// Package ingest appends CSV exports to the entity tables.
package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/foodbridge/foodbridge/internal/database"
)

// Inserter is the subset of the store used by ingestion.
type Inserter interface {
	BulkInsert(ctx context.Context, e database.Entity, columns []string, records [][]any) (int, error)
}

// Summary reports how many rows were appended per table.
type Summary map[database.Entity]int

var fileNames = map[database.Entity][]string{
	database.EntityProviders:    {"providers.csv", "providers_data.csv"},
	database.EntityReceivers:    {"receivers.csv", "receivers_data.csv"},
	database.EntityFoodListings: {"food_listings.csv", "food_listings_data.csv"},
	database.EntityClaims:       {"claims.csv", "claims_data.csv"},
}

var dateLayouts = []string{
	database.DateLayout,
	"1/2/2006",
	"01/02/2006",
	"2006/01/02",
}

var timestampLayouts = []string{
	time.DateTime,
	"2006-01-02 15:04",
	"2006-01-02T15:04:05Z07:00",
	"1/2/2006 15:04",
	"1/2/2006 15:04:05",
	"01/02/2006 15:04",
}

// Dir appends every recognised CSV in dir, referenced tables first. Missing files are
// skipped. Each file is loaded atomically; the first failing file stops the run.
func Dir(ctx context.Context, store Inserter, dir string) (Summary, error) {
	summary := Summary{}
	for _, e := range database.Entities() {
		path, ok := findFile(dir, e)
		if !ok {
			log.Debug().Str("table", string(e)).Str("dir", dir).Msg("No CSV found for table")
			continue
		}
		n, err := File(ctx, store, e, path)
		if err != nil {
			return summary, err
		}
		summary[e] = n
	}
	return summary, nil
}

// File appends one CSV file to the entity's table.
func File(ctx context.Context, store Inserter, e database.Entity, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	n, err := Read(ctx, store, e, f)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", filepath.Base(path), err)
	}

	log.Info().Str("table", string(e)).Str("file", path).Int("rows", n).Msg("CSV ingested")
	return n, nil
}

// Read parses CSV from r, whose header names the columns, and appends it to e.
// Header names match schema columns case-insensitively; others are skipped.
func Read(ctx context.Context, store Inserter, e database.Entity, r io.Reader) (int, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read header: %w", err)
	}

	columns, positions := mapHeader(e, header)
	if len(columns) == 0 {
		return 0, &database.ValidationError{Fields: map[string]string{"header": fmt.Sprintf("has no %s columns", e)}}
	}

	var records [][]any
	for line := 2; ; line++ {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("line %d: %w", line, err)
		}

		record := make([]any, len(columns))
		for i, col := range columns {
			value, err := convert(col, row[positions[i]])
			if err != nil {
				return 0, fmt.Errorf("line %d: %w", line, err)
			}
			record[i] = value
		}
		records = append(records, record)
	}

	return store.BulkInsert(ctx, e, columns, records)
}

func findFile(dir string, e database.Entity) (string, bool) {
	for _, name := range fileNames[e] {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}

// mapHeader returns the schema columns present in header and their CSV positions.
func mapHeader(e database.Entity, header []string) ([]string, []int) {
	var columns []string
	var positions []int
	for pos, name := range header {
		name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		matched := false
		for _, col := range e.Columns() {
			if strings.EqualFold(col, name) {
				columns = append(columns, col)
				positions = append(positions, pos)
				matched = true
				break
			}
		}
		if !matched {
			log.Warn().Str("table", string(e)).Str("column", name).Msg("Skipping unknown CSV column")
		}
	}
	return columns, positions
}

// convert normalises one CSV cell for its column. Empty cells become NULL.
func convert(column, raw string) (any, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}

	switch column {
	case "Expiry_Date":
		t, err := parseAny(dateLayouts, value)
		if err != nil {
			return nil, &database.ValidationError{Fields: map[string]string{column: fmt.Sprintf("has unrecognised date %q", value)}}
		}
		return t.Format(database.DateLayout), nil
	case "Timestamp":
		t, err := parseAny(timestampLayouts, value)
		if err != nil {
			return nil, &database.ValidationError{Fields: map[string]string{column: fmt.Sprintf("has unrecognised timestamp %q", value)}}
		}
		return t.Format(time.DateTime), nil
	default:
		return value, nil
	}
}

func parseAny(layouts []string, value string) (time.Time, error) {
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
