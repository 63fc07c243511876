package main

import (
	"database/sql"
	"fmt"
)

// metre_price stays TEXT: legacy rows carry free-form values and the product
// repository drops the ones that do not parse.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id SERIAL PRIMARY KEY,
		email TEXT NOT NULL,
		password TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		phone TEXT,
		wilaya TEXT NOT NULL DEFAULT '',
		address TEXT,
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (lower(email))`,
	`CREATE TABLE IF NOT EXISTS category (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		image TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS product (
		id SERIAL PRIMARY KEY,
		category_id INT NOT NULL REFERENCES category(id),
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		price NUMERIC(10,2) NOT NULL,
		metre_price TEXT,
		poids NUMERIC(10,3),
		image TEXT,
		is_available BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS wilaya_delivery (
		id SERIAL PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		delivery_price NUMERIC(10,2) NOT NULL DEFAULT 0 CHECK (delivery_price >= 0)
	)`,
	`CREATE TABLE IF NOT EXISTS orders (
		id SERIAL PRIMARY KEY,
		reference UUID NOT NULL UNIQUE,
		client_id INT REFERENCES users(id) ON DELETE SET NULL,
		guest_name TEXT NOT NULL DEFAULT '',
		guest_email TEXT NOT NULL DEFAULT '',
		guest_phone TEXT NOT NULL DEFAULT '',
		guest_wilaya TEXT NOT NULL DEFAULT '',
		guest_address TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		is_sent BOOLEAN NOT NULL DEFAULT FALSE,
		delivery_price NUMERIC(10,2) NOT NULL DEFAULT 0,
		total_price NUMERIC(12,2) NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS order_items (
		id SERIAL PRIMARY KEY,
		order_id INT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
		position INT NOT NULL,
		product_id INT NOT NULL REFERENCES product(id),
		quantity INT NOT NULL CHECK (quantity >= 1),
		length NUMERIC(10,2) CHECK (length > 0),
		color TEXT,
		product_name TEXT NOT NULL DEFAULT '',
		price NUMERIC(12,2) NOT NULL CHECK (price >= 0)
	)`,
	`CREATE INDEX IF NOT EXISTS order_items_order_id_idx ON order_items (order_id, position)`,
}

func ensureSchema(db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("schema: %w", err)
		}
	}
	return nil
}
