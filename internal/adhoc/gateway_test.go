package adhoc

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foodbridge/foodbridge/internal/config"
	"github.com/foodbridge/foodbridge/internal/database"
)

func newTestGateway(t *testing.T, limits config.QueryLimits) (*Gateway, *database.DB) {
	t.Helper()
	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	_, err = db.AddProvider(context.Background(), database.NewProvider{Name: "Spice Corner", City: "Ranchi"})
	require.NoError(t, err)
	_, err = db.AddProvider(context.Background(), database.NewProvider{Name: "Fresh Mart", City: "Delhi"})
	require.NoError(t, err)

	return New(db, limits), db
}

func TestGateway_SelectOne(t *testing.T) {
	g, _ := newTestGateway(t, config.DefaultQueryLimits())

	res, err := g.Run(context.Background(), "SELECT 1")
	require.NoError(t, err)
	assert.Equal(t, StateReturned, res.State)
	require.NotNil(t, res.Table)
	assert.Len(t, res.Table.Columns, 1)
	assert.Equal(t, [][]any{{int64(1)}}, res.Table.Rows)
}

func TestGateway_CallerDefinedColumns(t *testing.T) {
	g, _ := newTestGateway(t, config.DefaultQueryLimits())

	res, err := g.Run(context.Background(), "SELECT City AS Town, COUNT(*) AS Count FROM Providers GROUP BY City ORDER BY City")
	require.NoError(t, err)
	assert.Equal(t, []string{"Town", "Count"}, res.Table.Columns)
	assert.Equal(t, [][]any{{"Delhi", int64(1)}, {"Ranchi", int64(1)}}, res.Table.Rows)
	assert.True(t, res.Table.Chartable())
}

func TestGateway_RejectsMutation(t *testing.T) {
	g, db := newTestGateway(t, config.DefaultQueryLimits())
	ctx := context.Background()

	for _, text := range []string{
		"DELETE FROM Providers",
		"WITH x AS (SELECT 1) DELETE FROM Providers",
		"SELECT 1; DROP TABLE Providers",
	} {
		res, err := g.Run(ctx, text)
		require.ErrorIs(t, err, ErrForbiddenOperation, text)
		assert.Equal(t, StateRejected, res.State)
		assert.Nil(t, res.Table)
	}

	count, err := db.CountRows(ctx, database.EntityProviders)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestGateway_RestoresWriteAccess(t *testing.T) {
	g, db := newTestGateway(t, config.DefaultQueryLimits())
	ctx := context.Background()

	_, err := g.Run(ctx, "SELECT * FROM Providers")
	require.NoError(t, err)
	_, err = g.Run(ctx, "SELECT * FROM missing_table")
	require.Error(t, err)

	_, err = db.AddProvider(ctx, database.NewProvider{Name: "After Query"})
	require.NoError(t, err)
}

func TestGateway_SyntaxErrorIsQueryError(t *testing.T) {
	g, _ := newTestGateway(t, config.DefaultQueryLimits())

	res, err := g.Run(context.Background(), "SELECT FROM WHERE")
	require.Error(t, err)
	assert.Equal(t, StateFaulted, res.State)
	assert.ErrorIs(t, err, ErrQuery)

	var qerr *QueryError
	require.True(t, errors.As(err, &qerr))
	assert.NotEmpty(t, qerr.Message)
	assert.NotContains(t, qerr.Message, "\n")
	assert.NotContains(t, qerr.Message, "goroutine")
}

func TestGateway_UnknownTableIsQueryError(t *testing.T) {
	g, _ := newTestGateway(t, config.DefaultQueryLimits())

	_, err := g.Run(context.Background(), "SELECT * FROM Donors")
	var qerr *QueryError
	require.ErrorAs(t, err, &qerr)
	assert.Contains(t, qerr.Message, "Donors")
}

func TestGateway_RowCeiling(t *testing.T) {
	g, _ := newTestGateway(t, config.QueryLimits{Timeout: 5 * time.Second, MaxRows: 3})
	ctx := context.Background()

	res, err := g.Run(ctx, "WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM c LIMIT 10) SELECT x FROM c")
	require.ErrorIs(t, err, ErrResourceLimitExceeded)
	assert.Equal(t, StateFaulted, res.State)

	res, err = g.Run(ctx, "WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM c LIMIT 3) SELECT x FROM c")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Table.Len())
}

func TestGateway_Timeout(t *testing.T) {
	g, _ := newTestGateway(t, config.QueryLimits{Timeout: 100 * time.Millisecond, MaxRows: 10})

	res, err := g.Run(context.Background(),
		"WITH RECURSIVE c(x) AS (SELECT 1 UNION ALL SELECT x + 1 FROM c) SELECT COUNT(*) FROM c")
	require.ErrorIs(t, err, ErrResourceLimitExceeded)
	assert.Equal(t, StateFaulted, res.State)

	// The shared connection is still usable afterwards.
	res, err = g.Run(context.Background(), "SELECT COUNT(*) FROM Providers")
	require.NoError(t, err)
	assert.Equal(t, [][]any{{int64(2)}}, res.Table.Rows)
}

func TestGateway_ClosedStore(t *testing.T) {
	g, db := newTestGateway(t, config.DefaultQueryLimits())
	require.NoError(t, db.Close())

	res, err := g.Run(context.Background(), "SELECT 1")
	require.ErrorIs(t, err, database.ErrStoreUnavailable)
	assert.Equal(t, StateFaulted, res.State)
}

func TestNew_InvalidLimitsFallBack(t *testing.T) {
	g := New(nil, config.QueryLimits{})
	assert.Equal(t, config.DefaultQueryLimits(), g.Limits())
}

func TestSanitize(t *testing.T) {
	msg := sanitize(errors.New("SQL logic error: no such table: /var/lib/app/data.db (1)\nat frame 3"))
	assert.Equal(t, "SQL logic error: no such table: <path>", msg)
	assert.Equal(t, "query failed", sanitize(errors.New("\n")))
}
