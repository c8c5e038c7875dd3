package postgres

import (
	"context"
	"database/sql"
)

// schema holds the idempotent DDL for the dispatch core.
const schema = `
CREATE TABLE IF NOT EXISTS trips (
	id TEXT PRIMARY KEY,
	driver_id TEXT,
	customer_name TEXT NOT NULL DEFAULT '',
	customer_phone TEXT NOT NULL DEFAULT '',
	pickup_address TEXT NOT NULL DEFAULT '',
	pickup_lat DOUBLE PRECISION NOT NULL DEFAULT 0,
	pickup_lng DOUBLE PRECISION NOT NULL DEFAULT 0,
	dropoff_address TEXT NOT NULL DEFAULT '',
	dropoff_lat DOUBLE PRECISION NOT NULL DEFAULT 0,
	dropoff_lng DOUBLE PRECISION NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	price BIGINT NOT NULL DEFAULT 0,
	service_type TEXT NOT NULL DEFAULT '',
	vehicle_model TEXT NOT NULL DEFAULT '',
	distance_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	distance_traveled_km DOUBLE PRECISION NOT NULL DEFAULT 0,
	additional_services JSONB,
	created_at TIMESTAMPTZ NOT NULL,
	started_at TIMESTAMPTZ,
	ended_at TIMESTAMPTZ,
	cancelled_at TIMESTAMPTZ,
	cancel_reason TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS trips_status_ended_at_idx ON trips (status, ended_at);

CREATE TABLE IF NOT EXISTS wallets (
	driver_id TEXT PRIMARY KEY,
	balance BIGINT NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS wallet_transactions (
	id TEXT PRIMARY KEY,
	driver_id TEXT NOT NULL,
	type TEXT NOT NULL,
	amount BIGINT NOT NULL CHECK (amount >= 0),
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS wallet_transactions_driver_idx ON wallet_transactions (driver_id, created_at);

CREATE TABLE IF NOT EXISTS pricing_rules (
	id TEXT PRIMARY KEY,
	vehicle_type TEXT NOT NULL UNIQUE,
	base_price BIGINT NOT NULL,
	price_per_km BIGINT NOT NULL,
	display_order INT NOT NULL DEFAULT 0,
	active BOOLEAN NOT NULL DEFAULT TRUE
);

CREATE TABLE IF NOT EXISTS drivers (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	phone TEXT NOT NULL UNIQUE,
	vehicle_type TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL
);
`

// Migrate applies the schema. All statements are idempotent, so running it
// on every startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schema)
	return err
}
