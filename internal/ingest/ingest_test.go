package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge/foodbridge/internal/database"
)

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
}

func openDB(t *testing.T) *database.DB {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestDir_LoadsAllTables(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()
	dir := t.TempDir()

	writeFile(t, dir, "providers_data.csv", "Provider_ID,Name,Type,Address,City,Contact\n"+
		"1,Gonzales Inc,Supermarket,74347 Christopher Extensions,New Jessica,+1-600-220-0480\n"+
		"2,Nielsen Group,Grocery Store,91228 Hanson Stream,Lake Jesusview,+1-925-283-8901\n")
	writeFile(t, dir, "receivers.csv", "Receiver_ID,Name,Type,City,Contact\n"+
		"1,Donald Gomez,Shelter,Port Carlburgh,(955)922-5295\n")
	writeFile(t, dir, "food_listings.csv", "Food_ID,Food_Name,Quantity,Expiry_Date,Provider_ID,Provider_Type,Location,Food_Type,Meal_Type,Notes\n"+
		"1,Bread,43,3/17/2025,1,Supermarket,New Jessica,Vegetarian,Breakfast,day old\n"+
		"2,Soup,22,2025-03-24,2,Grocery Store,Lake Jesusview,Vegan,Dinner,\n")
	writeFile(t, dir, "claims.csv", "Claim_ID,Food_ID,Receiver_ID,Status,Timestamp\n"+
		"1,1,1,Completed,3/5/2025 5:26\n"+
		"2,2,1,Pending,2025-03-11 10:24:30\n")

	summary, err := Dir(ctx, db, dir)
	require.NoError(t, err)
	assert.Equal(t, Summary{
		database.EntityProviders:    2,
		database.EntityReceivers:    1,
		database.EntityFoodListings: 2,
		database.EntityClaims:       2,
	}, summary)

	l, err := db.GetFoodListing(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-17", l.ExpiryDate.Format(database.DateLayout))
	assert.Equal(t, 43, l.Quantity)

	completed, err := db.RunCatalogQuery(ctx, database.QueryCompletedClaims)
	require.NoError(t, err)
	require.Equal(t, 1, completed.Len())
	assert.Equal(t, []any{int64(1), "Bread", "Donald Gomez", "Gonzales Inc", "2025-03-05 05:26:00"}, completed.Rows[0])
}

func TestDir_MissingFilesAreSkipped(t *testing.T) {
	db := openDB(t)

	summary, err := Dir(context.Background(), db, t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, summary)
}

func TestRead_BadRowLeavesTableUnchanged(t *testing.T) {
	db := openDB(t)
	ctx := context.Background()

	csv := "Food_Name,Quantity,Expiry_Date\n" +
		"Rice,5,2025-03-17\n" +
		"Dal,-2,2025-03-17\n"
	_, err := Read(ctx, db, database.EntityFoodListings, strings.NewReader(csv))
	require.ErrorIs(t, err, database.ErrStore)

	count, err := db.CountRows(ctx, database.EntityFoodListings)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRead_UnparseableDate(t *testing.T) {
	db := openDB(t)

	csv := "Food_Name,Quantity,Expiry_Date\nRice,5,next tuesday\n"
	_, err := Read(context.Background(), db, database.EntityFoodListings, strings.NewReader(csv))
	assert.ErrorIs(t, err, database.ErrValidation)
}

func TestRead_NoKnownColumns(t *testing.T) {
	db := openDB(t)

	_, err := Read(context.Background(), db, database.EntityProviders, strings.NewReader("foo,bar\n1,2\n"))
	assert.ErrorIs(t, err, database.ErrValidation)
}

func TestMapHeader(t *testing.T) {
	columns, positions := mapHeader(database.EntityProviders, []string{"\ufeffprovider_id", "Notes", " NAME "})
	assert.Equal(t, []string{"Provider_ID", "Name"}, columns)
	assert.Equal(t, []int{0, 2}, positions)
}
