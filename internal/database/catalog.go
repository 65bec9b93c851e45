package database

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// CatalogQuery identifies one of the fixed analytical reports.
type CatalogQuery int

const (
	QueryAvailableFood CatalogQuery = iota + 1
	QueryExpiredFood
	QueryProvidersPerCity
	QueryReceiversPerCity
	QueryTopProviders
	QueryListingsByFoodType
	QueryListingsByMealType
	QueryClaimsPerStatus
	QueryMostClaimedFood
	QueryTopReceivers
	QueryTopVegetarianProviders
	QueryAverageQuantityPerProvider
	QueryExpiringSoon
	QueryTotalQuantityPerCity
	QueryCompletedClaims
)

// expiringSoonDays is the inclusive window of QueryExpiringSoon.
const expiringSoonDays = 2

type catalogEntry struct {
	label string
	build func(today time.Time) (string, []any)
}

func static(query string) func(time.Time) (string, []any) {
	return func(time.Time) (string, []any) { return query, nil }
}

var catalog = map[CatalogQuery]catalogEntry{
	QueryAvailableFood: {
		label: "All available food",
		build: static(`SELECT Food_Name, Quantity, Expiry_Date FROM Food_Listings`),
	},
	QueryExpiredFood: {
		label: "Expired food items",
		build: func(today time.Time) (string, []any) {
			return `SELECT Food_Name, Quantity, Expiry_Date FROM Food_Listings
				WHERE date(Expiry_Date) < date(?)`, []any{today.Format(DateLayout)}
		},
	},
	QueryProvidersPerCity: {
		label: "Providers per city",
		build: static(`SELECT City, COUNT(*) AS Count FROM Providers GROUP BY City`),
	},
	QueryReceiversPerCity: {
		label: "Receivers per city",
		build: static(`SELECT City, COUNT(*) AS Count FROM Receivers GROUP BY City`),
	},
	QueryTopProviders: {
		label: "Top 5 providers by food items",
		build: static(`SELECT p.Name, COUNT(*) AS Food_Items
			FROM Providers p JOIN Food_Listings f ON p.Provider_ID = f.Provider_ID
			GROUP BY p.Name ORDER BY Food_Items DESC, p.Name ASC LIMIT 5`),
	},
	QueryListingsByFoodType: {
		label: "Food listings by type",
		build: static(`SELECT Food_Type, COUNT(*) AS Count FROM Food_Listings GROUP BY Food_Type`),
	},
	QueryListingsByMealType: {
		label: "Food listings by meal type",
		build: static(`SELECT Meal_Type, COUNT(*) AS Count FROM Food_Listings GROUP BY Meal_Type`),
	},
	QueryClaimsPerStatus: {
		label: "Claims per status",
		build: static(`SELECT Status, COUNT(*) AS Count FROM Claims GROUP BY Status`),
	},
	QueryMostClaimedFood: {
		label: "Most claimed food items",
		build: static(`SELECT f.Food_Name, COUNT(c.Claim_ID) AS Claims
			FROM Claims c JOIN Food_Listings f ON c.Food_ID = f.Food_ID
			GROUP BY f.Food_Name ORDER BY Claims DESC, f.Food_Name ASC LIMIT 5`),
	},
	QueryTopReceivers: {
		label: "Receivers with highest claims",
		build: static(`SELECT r.Name, COUNT(c.Claim_ID) AS Total_Claims
			FROM Claims c JOIN Receivers r ON c.Receiver_ID = r.Receiver_ID
			GROUP BY r.Name ORDER BY Total_Claims DESC, r.Name ASC LIMIT 5`),
	},
	QueryTopVegetarianProviders: {
		label: "Providers contributing most vegetarian food",
		build: func(time.Time) (string, []any) {
			return `SELECT p.Name, COUNT(*) AS Veg_Items
				FROM Providers p JOIN Food_Listings f ON p.Provider_ID = f.Provider_ID
				WHERE f.Food_Type = ?
				GROUP BY p.Name ORDER BY Veg_Items DESC, p.Name ASC LIMIT 5`, []any{string(FoodTypeVegetarian)}
		},
	},
	QueryAverageQuantityPerProvider: {
		label: "Average quantity of food per provider",
		build: static(`SELECT p.Name, AVG(f.Quantity) AS Avg_Quantity
			FROM Providers p JOIN Food_Listings f ON p.Provider_ID = f.Provider_ID
			GROUP BY p.Name`),
	},
	QueryExpiringSoon: {
		label: "Providers with food expiring soon (2 days)",
		build: func(today time.Time) (string, []any) {
			return `SELECT p.Name, f.Food_Name, f.Expiry_Date
				FROM Providers p JOIN Food_Listings f ON p.Provider_ID = f.Provider_ID
				WHERE date(f.Expiry_Date) >= date(?) AND date(f.Expiry_Date) <= date(?)`,
				[]any{today.Format(DateLayout), today.AddDate(0, 0, expiringSoonDays).Format(DateLayout)}
		},
	},
	QueryTotalQuantityPerCity: {
		label: "Total food quantity per city",
		build: static(`SELECT p.City, SUM(f.Quantity) AS Total_Quantity
			FROM Providers p JOIN Food_Listings f ON p.Provider_ID = f.Provider_ID
			GROUP BY p.City`),
	},
	QueryCompletedClaims: {
		label: "Completed claims with details",
		build: func(time.Time) (string, []any) {
			return `SELECT c.Claim_ID, f.Food_Name, r.Name AS Receiver, p.Name AS Provider, c.Timestamp
				FROM Claims c
				JOIN Food_Listings f ON c.Food_ID = f.Food_ID
				JOIN Providers p ON f.Provider_ID = p.Provider_ID
				JOIN Receivers r ON c.Receiver_ID = r.Receiver_ID
				WHERE c.Status = ?`, []any{string(ClaimStatusCompleted)}
		},
	},
}

// CatalogQueries lists every catalog query in catalog order.
func CatalogQueries() []CatalogQuery {
	queries := make([]CatalogQuery, 0, len(catalog))
	for q := QueryAvailableFood; q <= QueryCompletedClaims; q++ {
		queries = append(queries, q)
	}
	return queries
}

// CatalogLabels lists the human-readable labels in catalog order.
func CatalogLabels() []string {
	queries := CatalogQueries()
	labels := make([]string, len(queries))
	for i, q := range queries {
		labels[i] = q.Label()
	}
	return labels
}

// Label returns the human-readable name of the query.
func (q CatalogQuery) Label() string {
	if entry, ok := catalog[q]; ok {
		return entry.label
	}
	return fmt.Sprintf("CatalogQuery(%d)", int(q))
}

func (q CatalogQuery) String() string {
	return q.Label()
}

// ParseCatalogQuery resolves a label (case-insensitive) or a 1-based catalog number.
func ParseCatalogQuery(label string) (CatalogQuery, error) {
	trimmed := strings.TrimSpace(label)
	if n, err := strconv.Atoi(trimmed); err == nil {
		q := CatalogQuery(n)
		if _, ok := catalog[q]; ok {
			return q, nil
		}
	}
	for _, q := range CatalogQueries() {
		if strings.EqualFold(catalog[q].label, trimmed) {
			return q, nil
		}
	}
	return 0, fmt.Errorf("%q: %w", label, ErrUnknownQuery)
}

// RunCatalogQuery executes a catalog query against the current evaluation date.
func (db *DB) RunCatalogQuery(ctx context.Context, q CatalogQuery) (*Table, error) {
	entry, ok := catalog[q]
	if !ok {
		return nil, fmt.Errorf("%d: %w", int(q), ErrUnknownQuery)
	}

	query, args := entry.build(db.today())
	rows, err := db.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog query %q: %w", entry.label, storeError(err))
	}
	defer rows.Close()

	table, _, err := ScanTable(rows, 0)
	if err != nil {
		return nil, fmt.Errorf("catalog query %q: %w", entry.label, storeError(err))
	}

	log.Debug().Str("query", entry.label).Int("rows", table.Len()).Msg("Catalog query executed")
	return table, nil
}

// RunCatalogQueryLabel resolves label and runs the matching query.
func (db *DB) RunCatalogQueryLabel(ctx context.Context, label string) (*Table, error) {
	q, err := ParseCatalogQuery(label)
	if err != nil {
		return nil, err
	}
	return db.RunCatalogQuery(ctx, q)
}
