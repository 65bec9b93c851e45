package database

import (
	"context"
	"database/sql"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"
)

// BulkInsert appends records to the entity's table in one transaction. columns must be
// schema columns of the entity; each record holds one value per column. Nothing is
// written if any record is rejected by the store.
func (db *DB) BulkInsert(ctx context.Context, e Entity, columns []string, records [][]any) (int, error) {
	known, ok := entityColumns[e]
	if !ok {
		return 0, fmt.Errorf("unknown table %q: %w", e, ErrValidation)
	}
	if len(columns) == 0 {
		return 0, &ValidationError{Fields: map[string]string{"columns": "is required"}}
	}
	for _, c := range columns {
		if !slices.Contains(known, c) {
			return 0, &ValidationError{Fields: map[string]string{c: fmt.Sprintf("is not a column of %s", e)}}
		}
	}
	if len(records) == 0 {
		return 0, nil
	}

	placeholders := strings.TrimRight(strings.Repeat("?,", len(columns)), ",")
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", e, strings.Join(columns, ", "), placeholders)

	err := db.transaction(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare %s insert: %w", e, storeError(err))
		}
		defer stmt.Close()

		for i, record := range records {
			if len(record) != len(columns) {
				return &ValidationError{Fields: map[string]string{
					fmt.Sprintf("record %d", i+1): fmt.Sprintf("has %d values, expected %d", len(record), len(columns)),
				}}
			}
			if _, err := stmt.ExecContext(ctx, record...); err != nil {
				return fmt.Errorf("failed to insert %s record %d: %w", e, i+1, storeError(err))
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Str("table", string(e)).Int("rows", len(records)).Msg("Bulk insert complete")
	return len(records), nil
}
