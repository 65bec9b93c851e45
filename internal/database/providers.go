package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Provider is a row of the Providers table.
type Provider struct {
	ID      int64
	Name    string
	Type    string
	Address string
	City    string
	Contact string
}

// NewProvider holds the fields accepted when adding a provider.
type NewProvider struct {
	Name    string `db:"Name" validate:"notblank"`
	Type    string `db:"Type"`
	Address string `db:"Address"`
	City    string `db:"City"`
	Contact string `db:"Contact"`
}

// AddProvider inserts a provider and returns its id.
func (db *DB) AddProvider(ctx context.Context, p NewProvider) (int64, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := validateStruct(p); err != nil {
		return 0, err
	}

	result, err := db.exec(ctx, `
		INSERT INTO Providers (Name, Type, Address, City, Contact)
		VALUES (?, ?, ?, ?, ?)
	`, p.Name, p.Type, p.Address, p.City, p.Contact)
	if err != nil {
		return 0, fmt.Errorf("failed to create provider: %w", storeError(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get provider id: %w", storeError(err))
	}

	log.Debug().Int64("provider_id", id).Str("name", p.Name).Msg("Provider added")
	return id, nil
}

// GetProvider retrieves a provider by ID.
func (db *DB) GetProvider(ctx context.Context, id int64) (*Provider, error) {
	p := &Provider{}
	var typ, address, city, contact sql.NullString
	err := db.queryRow(ctx, `
		SELECT Provider_ID, Name, Type, Address, City, Contact
		FROM Providers WHERE Provider_ID = ?
	`, id).Scan(&p.ID, &p.Name, &typ, &address, &city, &contact)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("provider %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get provider: %w", storeError(err))
	}
	p.Type = nullStringValue(typ)
	p.Address = nullStringValue(address)
	p.City = nullStringValue(city)
	p.Contact = nullStringValue(contact)
	return p, nil
}

// DeleteProvider removes a provider. Its listings are left in place and keep the
// now-dangling Provider_ID.
func (db *DB) DeleteProvider(ctx context.Context, id int64) error {
	result, err := db.exec(ctx, "DELETE FROM Providers WHERE Provider_ID = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete provider: %w", storeError(err))
	}
	if err := requireAffected(result, "provider", id); err != nil {
		return err
	}

	log.Debug().Int64("provider_id", id).Msg("Provider deleted")
	return nil
}

// requireAffected turns a zero-row mutation into ErrNotFound.
func requireAffected(result sql.Result, kind string, id int64) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", storeError(err))
	}
	if n == 0 {
		return fmt.Errorf("%s %d: %w", kind, id, ErrNotFound)
	}
	return nil
}
