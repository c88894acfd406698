// internal/database/db.go
package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the global connection pool. Call ConnectDB once at startup.
var DB *pgxpool.Pool

// ConnectDB builds the pool from POSTGRES_USER / POSTGRES_PASSWORD /
// PG_HOST / PG_PORT / PG_DATABASE and pings it. Exits the process on
// failure; the service cannot run without its store.
func ConnectDB() {
	connStr := fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s",
		os.Getenv("POSTGRES_USER"),
		os.Getenv("POSTGRES_PASSWORD"),
		os.Getenv("PG_HOST"),
		os.Getenv("PG_PORT"),
		os.Getenv("PG_DATABASE"),
	)

	config, err := pgxpool.ParseConfig(connStr)
	if err != nil {
		log.Fatalf("unable to parse pgx config: %v", err)
	}

	DB, err = pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		log.Fatalf("unable to create pgx pool: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := DB.Ping(ctx); err != nil {
		log.Fatalf("db ping error: %v", err)
	}
}

// schema creates the tables on first boot. Real deployments run the SQL
// migration files; this keeps dev and test databases usable out of the box.
const schema = `
CREATE TABLE IF NOT EXISTS lobbies (
	id BIGSERIAL PRIMARY KEY,
	guild_id TEXT NOT NULL,
	channel_id TEXT NOT NULL UNIQUE,
	category_id TEXT NOT NULL DEFAULT '',
	default_user_limit INT NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_lobbies_guild ON lobbies (guild_id);

CREATE TABLE IF NOT EXISTS voice_sessions (
	id BIGSERIAL PRIMARY KEY,
	lobby_id BIGINT NOT NULL REFERENCES lobbies (id) ON DELETE CASCADE,
	channel_id TEXT NOT NULL UNIQUE,
	owner_id TEXT NOT NULL,
	name TEXT NOT NULL,
	user_limit INT NOT NULL DEFAULT 0,
	is_locked BOOLEAN NOT NULL DEFAULT FALSE,
	is_hidden BOOLEAN NOT NULL DEFAULT FALSE,
	text_channel_id TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS admin_users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS lifecycle_events (
	event_id UUID PRIMARY KEY,
	event TEXT NOT NULL,
	session_id BIGINT NOT NULL,
	channel_id TEXT NOT NULL,
	owner_id TEXT NOT NULL,
	is_locked BOOLEAN NOT NULL,
	is_hidden BOOLEAN NOT NULL,
	occurred_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lifecycle_events_channel ON lifecycle_events (channel_id);
`

// InitSchema applies the bootstrap schema.
func InitSchema(ctx context.Context) error {
	if _, err := DB.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
