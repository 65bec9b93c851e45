package adhoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify_AllowsReads(t *testing.T) {
	tests := []struct {
		text    string
		keyword string
		stmt    string
	}{
		{"SELECT 1", "SELECT", "SELECT 1"},
		{"  select * from Providers;  ", "SELECT", "select * from Providers"},
		{"SELECT 1; -- trailing comment", "SELECT", "SELECT 1"},
		{"WITH c AS (SELECT City FROM Providers) SELECT * FROM c", "WITH", "WITH c AS (SELECT City FROM Providers) SELECT * FROM c"},
		{"VALUES (1), (2)", "VALUES", "VALUES (1), (2)"},
		{"EXPLAIN QUERY PLAN SELECT * FROM Claims", "EXPLAIN", "EXPLAIN QUERY PLAN SELECT * FROM Claims"},
		{"SELECT 'DELETE FROM Providers' AS note", "SELECT", "SELECT 'DELETE FROM Providers' AS note"},
		{`SELECT "update" FROM t`, "SELECT", `SELECT "update" FROM t`},
		{"SELECT replace(Name, 'a', 'b') FROM Providers", "SELECT", "SELECT replace(Name, 'a', 'b') FROM Providers"},
		{"/* drop table */ SELECT 'it''s; fine'", "SELECT", "/* drop table */ SELECT 'it''s; fine'"},
		{"SELECT * FROM pragma_table_info('Providers')", "SELECT", "SELECT * FROM pragma_table_info('Providers')"},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			stmt, err := Classify(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.keyword, stmt.Keyword)
			assert.Equal(t, tt.stmt, stmt.Text)
		})
	}
}

func TestClassify_RejectsWrites(t *testing.T) {
	for _, text := range []string{
		"",
		"   -- only a comment",
		"DELETE FROM Providers",
		"delete from Providers where 1",
		"INSERT INTO Providers (Name) VALUES ('x')",
		"UPDATE Food_Listings SET Quantity = 0",
		"REPLACE INTO Providers (Name) VALUES ('x')",
		"DROP TABLE Claims",
		"CREATE TABLE x (id INTEGER)",
		"ALTER TABLE Providers ADD COLUMN x TEXT",
		"PRAGMA query_only = OFF",
		"ATTACH DATABASE '/tmp/x.db' AS x",
		"VACUUM",
		"BEGIN",
		"WITH doomed AS (SELECT 1) DELETE FROM Providers",
		"SELECT 1; DELETE FROM Providers",
		"SELECT 1; SELECT 2",
		"SELECT 1; 'x'",
		"EXPLAIN DELETE FROM Providers",
		"/* SELECT */ DELETE FROM Providers",
	} {
		t.Run(text, func(t *testing.T) {
			_, err := Classify(text)
			assert.ErrorIs(t, err, ErrForbiddenOperation)
		})
	}
}
