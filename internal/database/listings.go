package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// DateLayout is the storage format of Expiry_Date.
const DateLayout = "2006-01-02"

// FoodListing is a row of the Food_Listings table.
type FoodListing struct {
	ID           int64
	FoodName     string
	Quantity     int
	ExpiryDate   time.Time
	ProviderID   *int64
	ProviderType string
	Location     string
	FoodType     FoodType
	MealType     MealType
}

// NewFoodListing holds the fields accepted when adding a listing.
type NewFoodListing struct {
	FoodName   string    `db:"Food_Name" validate:"notblank"`
	Quantity   int       `db:"Quantity" validate:"gte=0"`
	ExpiryDate time.Time `db:"Expiry_Date" validate:"required"`
	ProviderID int64     `db:"Provider_ID"`
	FoodType   FoodType  `db:"Food_Type" validate:"omitempty,oneof=Vegetarian Non-Vegetarian Vegan"`
	MealType   MealType  `db:"Meal_Type" validate:"omitempty,oneof=Breakfast Lunch Dinner Snacks"`
	Location   string    `db:"Location"`
}

// AddFoodListing inserts a listing for an existing provider and returns its id.
// The provider check and the insert share a transaction.
func (db *DB) AddFoodListing(ctx context.Context, l NewFoodListing) (int64, error) {
	l.FoodName = strings.TrimSpace(l.FoodName)
	if err := validateStruct(l); err != nil {
		return 0, err
	}

	var id int64
	err := db.transaction(ctx, func(tx *sql.Tx) error {
		var providerType, city sql.NullString
		err := tx.QueryRowContext(ctx,
			"SELECT Type, City FROM Providers WHERE Provider_ID = ?", l.ProviderID,
		).Scan(&providerType, &city)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("provider %d: %w", l.ProviderID, ErrDanglingReference)
		}
		if err != nil {
			return fmt.Errorf("failed to look up provider: %w", storeError(err))
		}

		location := l.Location
		if location == "" {
			location = nullStringValue(city)
		}

		result, err := tx.ExecContext(ctx, `
			INSERT INTO Food_Listings (Food_Name, Quantity, Expiry_Date, Provider_ID, Provider_Type, Location, Food_Type, Meal_Type)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		`, l.FoodName, l.Quantity, l.ExpiryDate.Format(DateLayout), l.ProviderID,
			providerType, nullableString(location), nullableString(string(l.FoodType)), nullableString(string(l.MealType)))
		if err != nil {
			return fmt.Errorf("failed to create food listing: %w", storeError(err))
		}

		id, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get food listing id: %w", storeError(err))
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	log.Debug().Int64("food_id", id).Int64("provider_id", l.ProviderID).Str("food_name", l.FoodName).Msg("Food listing added")
	return id, nil
}

// GetFoodListing retrieves a listing by ID.
func (db *DB) GetFoodListing(ctx context.Context, id int64) (*FoodListing, error) {
	l := &FoodListing{}
	var expiry string
	var providerID sql.NullInt64
	var providerType, location, foodType, mealType sql.NullString
	err := db.queryRow(ctx, `
		SELECT Food_ID, Food_Name, Quantity, Expiry_Date, Provider_ID, Provider_Type, Location, Food_Type, Meal_Type
		FROM Food_Listings WHERE Food_ID = ?
	`, id).Scan(&l.ID, &l.FoodName, &l.Quantity, &expiry, &providerID, &providerType, &location, &foodType, &mealType)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("food listing %d: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get food listing: %w", storeError(err))
	}

	l.ExpiryDate, err = time.ParseInLocation(DateLayout, expiry, time.Local)
	if err != nil {
		return nil, fmt.Errorf("food listing %d has malformed expiry %q: %w", id, expiry, ErrStore)
	}
	l.ProviderID = nullInt64ToPtr(providerID)
	l.ProviderType = nullStringValue(providerType)
	l.Location = nullStringValue(location)
	l.FoodType = FoodType(nullStringValue(foodType))
	l.MealType = MealType(nullStringValue(mealType))
	return l, nil
}

// DeleteFoodListing removes a listing. Claims against it are left in place.
func (db *DB) DeleteFoodListing(ctx context.Context, id int64) error {
	result, err := db.exec(ctx, "DELETE FROM Food_Listings WHERE Food_ID = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete food listing: %w", storeError(err))
	}
	if err := requireAffected(result, "food listing", id); err != nil {
		return err
	}

	log.Debug().Int64("food_id", id).Msg("Food listing deleted")
	return nil
}
