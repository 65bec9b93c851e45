package database

import (
	"database/sql"
	"fmt"
	"slices"
	"time"
)

// Table is a tabular query result. Columns keep the projection order of the query.
type Table struct {
	Columns []string
	Rows    [][]any
}

// Len returns the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether a column with exactly this name is present.
func (t *Table) HasColumn(name string) bool {
	return slices.Contains(t.Columns, name)
}

// Chartable reports whether the result carries a Count or Quantity column and
// can be rendered as a bar chart keyed by its first column.
func (t *Table) Chartable() bool {
	return t.HasColumn("Count") || t.HasColumn("Quantity")
}

// Column returns the values of the named column, or nil if it is absent.
func (t *Table) Column(name string) []any {
	idx := slices.Index(t.Columns, name)
	if idx < 0 {
		return nil
	}
	values := make([]any, len(t.Rows))
	for i, row := range t.Rows {
		values[i] = row[idx]
	}
	return values
}

// ScanTable reads every row into a Table. When maxRows is positive and the result
// holds more rows than that, scanning stops and exceeded is true.
func ScanTable(rows *sql.Rows, maxRows int) (table *Table, exceeded bool, err error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, false, fmt.Errorf("failed to read columns: %w", err)
	}

	table = &Table{Columns: columns, Rows: [][]any{}}
	for rows.Next() {
		if maxRows > 0 && len(table.Rows) >= maxRows {
			return table, true, nil
		}

		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, false, fmt.Errorf("failed to scan row: %w", err)
		}
		for i, v := range values {
			values[i] = normalizeValue(v)
		}
		table.Rows = append(table.Rows, values)
	}

	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("failed to iterate rows: %w", err)
	}
	return table, false, nil
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case []byte:
		return string(val)
	case time.Time:
		return val.Format(time.DateTime)
	default:
		return val
	}
}
