package db

import (
	"fmt"
)

// Timestamps are UTC unix microseconds so range boundaries compare exactly on
// both dialects.

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sites (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    location   TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment_types (
    id         INTEGER PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    category   TEXT NOT NULL,
    image      BLOB,
    image_mime TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id            INTEGER PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('ADMIN', 'BASE_COMMANDER', 'LOGISTICS_OFFICER')),
    site_id       INTEGER REFERENCES sites(id),
    created_at    INTEGER NOT NULL,
    deleted_at    INTEGER
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS transfers (
    id                INTEGER PRIMARY KEY,
    from_site_id      INTEGER NOT NULL REFERENCES sites(id),
    to_site_id        INTEGER NOT NULL REFERENCES sites(id),
    equipment_type_id INTEGER NOT NULL REFERENCES equipment_types(id),
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    created_by        INTEGER REFERENCES users(id),
    created_at        INTEGER NOT NULL,
    CHECK (from_site_id <> to_site_id)
);

CREATE TABLE IF NOT EXISTS stock_movements (
    id                INTEGER PRIMARY KEY,
    site_id           INTEGER NOT NULL REFERENCES sites(id),
    equipment_type_id INTEGER NOT NULL REFERENCES equipment_types(id),
    movement_type     TEXT NOT NULL CHECK (movement_type IN ('PURCHASE', 'TRANSFER_IN', 'TRANSFER_OUT')),
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    ref_transfer_id   INTEGER REFERENCES transfers(id),
    created_by        INTEGER REFERENCES users(id),
    created_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movements_site_equipment_time
    ON stock_movements(site_id, equipment_type_id, created_at);
CREATE INDEX IF NOT EXISTS idx_movements_transfer
    ON stock_movements(ref_transfer_id);

CREATE TABLE IF NOT EXISTS assignments (
    id                INTEGER PRIMARY KEY,
    site_id           INTEGER NOT NULL REFERENCES sites(id),
    equipment_type_id INTEGER NOT NULL REFERENCES equipment_types(id),
    assigned_to       TEXT NOT NULL,
    quantity          INTEGER NOT NULL CHECK (quantity > 0),
    is_expended       BOOLEAN NOT NULL DEFAULT 0,
    created_by        INTEGER REFERENCES users(id),
    created_at        INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignments_site_equipment_time
    ON assignments(site_id, equipment_type_id, created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS api_logs (
    id          INTEGER PRIMARY KEY,
    user_id     INTEGER,
    method      TEXT NOT NULL,
    path        TEXT NOT NULL,
    status_code INTEGER NOT NULL,
    duration_ms INTEGER NOT NULL,
    request_id  TEXT,
    created_at  INTEGER NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS sites (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    location   TEXT NOT NULL DEFAULT '',
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS equipment_types (
    id         BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    category   TEXT NOT NULL,
    image      BYTEA,
    image_mime TEXT,
    created_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS users (
    id            BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    username      TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    role          TEXT NOT NULL CHECK (role IN ('ADMIN', 'BASE_COMMANDER', 'LOGISTICS_OFFICER')),
    site_id       BIGINT REFERENCES sites(id),
    created_at    BIGINT NOT NULL,
    deleted_at    BIGINT
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_active
    ON users(username) WHERE deleted_at IS NULL;

CREATE TABLE IF NOT EXISTS transfers (
    id                BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    from_site_id      BIGINT NOT NULL REFERENCES sites(id),
    to_site_id        BIGINT NOT NULL REFERENCES sites(id),
    equipment_type_id BIGINT NOT NULL REFERENCES equipment_types(id),
    quantity          BIGINT NOT NULL CHECK (quantity > 0),
    created_by        BIGINT REFERENCES users(id),
    created_at        BIGINT NOT NULL,
    CHECK (from_site_id <> to_site_id)
);

CREATE TABLE IF NOT EXISTS stock_movements (
    id                BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    site_id           BIGINT NOT NULL REFERENCES sites(id),
    equipment_type_id BIGINT NOT NULL REFERENCES equipment_types(id),
    movement_type     TEXT NOT NULL CHECK (movement_type IN ('PURCHASE', 'TRANSFER_IN', 'TRANSFER_OUT')),
    quantity          BIGINT NOT NULL CHECK (quantity > 0),
    ref_transfer_id   BIGINT REFERENCES transfers(id),
    created_by        BIGINT REFERENCES users(id),
    created_at        BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_movements_site_equipment_time
    ON stock_movements(site_id, equipment_type_id, created_at);
CREATE INDEX IF NOT EXISTS idx_movements_transfer
    ON stock_movements(ref_transfer_id);

CREATE TABLE IF NOT EXISTS assignments (
    id                BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    site_id           BIGINT NOT NULL REFERENCES sites(id),
    equipment_type_id BIGINT NOT NULL REFERENCES equipment_types(id),
    assigned_to       TEXT NOT NULL,
    quantity          BIGINT NOT NULL CHECK (quantity > 0),
    is_expended       BOOLEAN NOT NULL DEFAULT FALSE,
    created_by        BIGINT REFERENCES users(id),
    created_at        BIGINT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_assignments_site_equipment_time
    ON assignments(site_id, equipment_type_id, created_at);

CREATE TABLE IF NOT EXISTS settings (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS revoked_tokens (
    jti        TEXT PRIMARY KEY,
    expires_at BIGINT NOT NULL
);

CREATE TABLE IF NOT EXISTS api_logs (
    id          BIGINT GENERATED BY DEFAULT AS IDENTITY PRIMARY KEY,
    user_id     BIGINT,
    method      TEXT NOT NULL,
    path        TEXT NOT NULL,
    status_code INTEGER NOT NULL,
    duration_ms BIGINT NOT NULL,
    request_id  TEXT,
    created_at  BIGINT NOT NULL
);
`

// EnsureSchema creates all tables and indexes if they don't already exist.
func EnsureSchema(d *DB) error {
	schema := sqliteSchema
	if d.Dialect == Postgres {
		schema = postgresSchema
	}
	if _, err := d.Exec(schema); err != nil {
		return fmt.Errorf("creating schema: %w", err)
	}
	return nil
}
