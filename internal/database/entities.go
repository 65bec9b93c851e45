package database

import (
	"context"
	"fmt"
	"strings"
)

// Entity names one of the four domain tables.
type Entity string

const (
	EntityProviders    Entity = "Providers"
	EntityReceivers    Entity = "Receivers"
	EntityFoodListings Entity = "Food_Listings"
	EntityClaims       Entity = "Claims"
)

var entityColumns = map[Entity][]string{
	EntityProviders:    {"Provider_ID", "Name", "Type", "Address", "City", "Contact"},
	EntityReceivers:    {"Receiver_ID", "Name", "Type", "City", "Contact"},
	EntityFoodListings: {"Food_ID", "Food_Name", "Quantity", "Expiry_Date", "Provider_ID", "Provider_Type", "Location", "Food_Type", "Meal_Type"},
	EntityClaims:       {"Claim_ID", "Food_ID", "Receiver_ID", "Status", "Timestamp"},
}

// Entities lists the tables in dependency order (referenced tables first).
func Entities() []Entity {
	return []Entity{EntityProviders, EntityReceivers, EntityFoodListings, EntityClaims}
}

// ParseEntity resolves a table name case-insensitively.
func ParseEntity(name string) (Entity, error) {
	for _, e := range Entities() {
		if strings.EqualFold(string(e), strings.TrimSpace(name)) {
			return e, nil
		}
	}
	return "", fmt.Errorf("unknown table %q: %w", name, ErrValidation)
}

// Columns returns the schema columns of the entity in declaration order.
func (e Entity) Columns() []string {
	return append([]string(nil), entityColumns[e]...)
}

// ReadEntity returns every row of the table in natural order.
func (db *DB) ReadEntity(ctx context.Context, e Entity) (*Table, error) {
	if _, ok := entityColumns[e]; !ok {
		return nil, fmt.Errorf("unknown table %q: %w", e, ErrValidation)
	}

	rows, err := db.query(ctx, fmt.Sprintf("SELECT %s FROM %s", strings.Join(entityColumns[e], ", "), e))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e, storeError(err))
	}
	defer rows.Close()

	table, _, err := ScanTable(rows, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e, storeError(err))
	}
	return table, nil
}

// CountRows returns the number of rows in the table.
func (db *DB) CountRows(ctx context.Context, e Entity) (int, error) {
	if _, ok := entityColumns[e]; !ok {
		return 0, fmt.Errorf("unknown table %q: %w", e, ErrValidation)
	}

	var count int
	if err := db.queryRow(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", e)).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", e, storeError(err))
	}
	return count, nil
}
