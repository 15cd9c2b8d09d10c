// Package testutil поднимает in-memory SQLite со схемой, совместимой с миграциями Postgres.
package testutil

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

// Типы TIMESTAMP нужны драйверу, чтобы возвращать time.Time
const schema = `
CREATE TABLE users (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	username         TEXT      NOT NULL UNIQUE,
	email            TEXT      UNIQUE,
	password         TEXT,
	telegram_id      INTEGER   UNIQUE,
	active_resume_id TEXT,
	created_at       TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE refresh_tokens (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id    INTEGER   NOT NULL REFERENCES users (id) ON DELETE CASCADE,
	token      TEXT      NOT NULL UNIQUE,
	expires_at TIMESTAMP NOT NULL,
	created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE vacancies (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	title       TEXT      NOT NULL,
	company     TEXT      NOT NULL,
	location    TEXT,
	url         TEXT,
	source      TEXT      NOT NULL DEFAULT 'manual',
	external_id TEXT UNIQUE,
	created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE hh_tokens (
	user_id            INTEGER PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
	access_token       TEXT    NOT NULL,
	refresh_token      TEXT    NOT NULL,
	issued_at          TIMESTAMP,
	expires_in_seconds INTEGER NOT NULL DEFAULT 0
);
`

// OpenSQLite возвращает пустую базу с полной схемой; закрывается вместе с тестом
func OpenSQLite(t testing.TB) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	// у каждого соединения своя :memory: база
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`PRAGMA foreign_keys = ON;`)
	require.NoError(t, err)
	_, err = db.Exec(schema)
	require.NoError(t, err)

	return db
}

// InsertUser создает пользователя напрямую в таблице и возвращает его ID
func InsertUser(t testing.TB, db *sql.DB, username string) int64 {
	t.Helper()

	var id int64
	err := db.QueryRow(
		`INSERT INTO users (username, email, password) VALUES ($1, $2, 'x') RETURNING id`,
		username, username+"@example.com").Scan(&id)
	require.NoError(t, err)
	return id
}
