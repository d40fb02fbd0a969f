package database

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDB_CreatesTables(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err, "InitDB should not return an error")
	defer teardown()

	for _, table := range []string{"players", "matches", "metrics"} {
		var name string
		err = db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		require.NoError(t, err, "Querying for %s table should not produce an error", table)
		assert.Equal(t, table, name)
	}
}

func TestInitDB_EnforcesForeignKeys(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	_, err = db.Exec(`INSERT INTO matches (host_id, guest_id, start_time) VALUES ('nope1', 'nope2', 0)`)
	assert.Error(t, err, "matches must reference existing players")
}

func TestReset_DropsAllData(t *testing.T) {
	db, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()

	_, err = db.Exec(`INSERT INTO players (id, name, birthdate, rating, region) VALUES ('A1', 'Alice', '1990-01-01', 1000, 'NY')`)
	require.NoError(t, err)

	require.NoError(t, Reset(context.Background(), db))

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM players").Scan(&count))
	assert.Zero(t, count, "players table should be empty after reset")

	// The schema is usable again right away.
	_, err = db.Exec(`INSERT INTO players (id, name, birthdate, rating, region) VALUES ('A1', 'Alice', '1990-01-01', 1000, 'NY')`)
	assert.NoError(t, err)
}

func TestDialectOf(t *testing.T) {
	local, teardown, err := InitDB(":memory:", "", "")
	require.NoError(t, err)
	defer teardown()
	assert.Equal(t, goose.DialectSQLite3, dialectOf(local))

	// Opening a libsql handle does not connect, so no server is needed.
	remote, err := sql.Open("libsql", "http://127.0.0.1:1?authToken=test")
	require.NoError(t, err)
	defer remote.Close()
	assert.Equal(t, goose.Dialect("turso"), dialectOf(remote))
}
