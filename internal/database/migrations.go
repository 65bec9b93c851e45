package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// Migrate creates the schema. Every statement is guarded by IF NOT EXISTS, so running
// it against an initialised store changes nothing.
func (db *DB) Migrate() error {
	ctx := context.Background()
	log.Debug().Msg("Running database migrations")

	_, err := db.exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", storeError(err))
	}

	var currentVersion int
	err = db.queryRow(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get current migration version: %w", storeError(err))
	}

	log.Debug().Int("current_version", currentVersion).Msg("Current schema version")

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}
		log.Info().Int("version", migration.Version).Str("name", migration.Name).Msg("Applying migration")

		if err := db.transaction(ctx, func(tx *sql.Tx) error {
			statements := splitSQLStatements(migration.SQL)
			for i, stmt := range statements {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("migration %d statement %d failed: %w", migration.Version, i+1, storeError(err))
				}
			}

			if _, err := tx.Exec("INSERT OR IGNORE INTO schema_migrations (version) VALUES (?)", migration.Version); err != nil {
				return fmt.Errorf("failed to record migration %d: %w", migration.Version, storeError(err))
			}

			return nil
		}); err != nil {
			return err
		}
	}

	return nil
}

type migration struct {
	Version int
	Name    string
	SQL     string
}

// splitSQLStatements splits a SQL string into individual statements.
// It handles comments and only returns non-empty statements.
func splitSQLStatements(sql string) []string {
	var statements []string
	var current strings.Builder

	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		current.WriteString(line)
		current.WriteString("\n")

		if strings.HasSuffix(trimmed, ";") {
			stmt := strings.TrimSpace(current.String())
			if stmt != "" && stmt != ";" {
				statements = append(statements, stmt)
			}
			current.Reset()
		}
	}

	if remaining := strings.TrimSpace(current.String()); remaining != "" {
		statements = append(statements, remaining)
	}

	return statements
}

var migrations = []migration{
	{
		Version: 1,
		Name:    "initial_schema",
		SQL: `
			CREATE TABLE IF NOT EXISTS Providers (
				Provider_ID INTEGER PRIMARY KEY,
				Name TEXT NOT NULL,
				Type TEXT,
				Address TEXT,
				City TEXT,
				Contact TEXT
			);

			CREATE TABLE IF NOT EXISTS Receivers (
				Receiver_ID INTEGER PRIMARY KEY,
				Name TEXT NOT NULL,
				Type TEXT,
				City TEXT,
				Contact TEXT
			);

			-- Expiry_Date is ISO text so date() comparisons work directly
			CREATE TABLE IF NOT EXISTS Food_Listings (
				Food_ID INTEGER PRIMARY KEY,
				Food_Name TEXT NOT NULL,
				Quantity INTEGER NOT NULL CHECK (Quantity >= 0),
				Expiry_Date TEXT NOT NULL CHECK (date(Expiry_Date) = Expiry_Date),
				Provider_ID INTEGER REFERENCES Providers(Provider_ID),
				Provider_Type TEXT,
				Location TEXT,
				Food_Type TEXT,
				Meal_Type TEXT
			);

			CREATE TABLE IF NOT EXISTS Claims (
				Claim_ID INTEGER PRIMARY KEY,
				Food_ID INTEGER REFERENCES Food_Listings(Food_ID),
				Receiver_ID INTEGER REFERENCES Receivers(Receiver_ID),
				Status TEXT NOT NULL CHECK (Status IN ('Pending', 'Completed', 'Cancelled')),
				Timestamp TEXT
			);
		`,
	},
	{
		Version: 2,
		Name:    "settings",
		SQL: `
			CREATE TABLE IF NOT EXISTS settings (
				key TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
			);
		`,
	},
	{
		Version: 3,
		Name:    "reporting_indexes",
		SQL: `
			CREATE INDEX IF NOT EXISTS idx_food_listings_provider ON Food_Listings(Provider_ID);
			CREATE INDEX IF NOT EXISTS idx_food_listings_expiry ON Food_Listings(Expiry_Date);
			CREATE INDEX IF NOT EXISTS idx_claims_food ON Claims(Food_ID);
			CREATE INDEX IF NOT EXISTS idx_claims_receiver ON Claims(Receiver_ID);
			CREATE INDEX IF NOT EXISTS idx_claims_status ON Claims(Status);
		`,
	},
}
