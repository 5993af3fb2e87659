package database

import (
	"os"
	"testing"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/umakantv/go-utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(logger.LoggerConfig{
		CallerKey:  "file",
		TimeKey:    "timestamp",
		CallerSkip: 1,
	})
	os.Exit(m.Run())
}

func newSeedDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`
		CREATE TABLE users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL UNIQUE,
			email TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			access_token TEXT NOT NULL UNIQUE,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE ads (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			info TEXT NOT NULL,
			price REAL NOT NULL,
			category TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			delivery TEXT NOT NULL,
			image_url TEXT NOT NULL,
			image_id TEXT NOT NULL,
			seller_id INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE conversations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT NOT NULL,
			ad_id INTEGER NOT NULL,
			seller_id INTEGER NOT NULL,
			buyer_id INTEGER NOT NULL,
			status INTEGER NOT NULL DEFAULT 1,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE TABLE messages (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			message TEXT NOT NULL,
			sender_id INTEGER NOT NULL,
			conversation_id INTEGER NOT NULL,
			created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	require.NoError(t, err)
	return db
}

func TestSeed(t *testing.T) {
	db := newSeedDB(t)

	require.NoError(t, Seed(db))

	var users, ads int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM ads").Scan(&ads))
	assert.Equal(t, len(seedUsers), users)
	assert.Equal(t, len(seedAds), ads)

	// Every seeded account gets a distinct credential
	var tokens int
	require.NoError(t, db.QueryRow("SELECT COUNT(DISTINCT access_token) FROM users").Scan(&tokens))
	assert.Equal(t, users, tokens)

	// Every seeded ad references a seeded seller
	var orphans int
	require.NoError(t, db.QueryRow(
		"SELECT COUNT(*) FROM ads a LEFT JOIN users u ON u.id = a.seller_id WHERE u.id IS NULL").Scan(&orphans))
	assert.Zero(t, orphans)
}

func TestSeedIsDestructiveAndRepeatable(t *testing.T) {
	db := newSeedDB(t)

	require.NoError(t, Seed(db))
	_, err := db.Exec("INSERT INTO messages (message, sender_id, conversation_id) VALUES ('stale', 1, 1)")
	require.NoError(t, err)

	require.NoError(t, Seed(db))

	var users, messages int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM users").Scan(&users))
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM messages").Scan(&messages))
	assert.Equal(t, len(seedUsers), users, "reseeding must not accumulate records")
	assert.Zero(t, messages, "reseeding must wipe dependent collections")
}
