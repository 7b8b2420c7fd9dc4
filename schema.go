package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaDDL cria as tabelas do pipeline de faturamento.
// UNIQUE(order_id) em invoices garante uma fatura por pedido.
const schemaDDL = `
CREATE TABLE IF NOT EXISTS products (
	id BIGSERIAL PRIMARY KEY,
	name VARCHAR(255) NOT NULL,
	price NUMERIC(10,2) NOT NULL,
	stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
	description TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS orders (
	id BIGSERIAL PRIMARY KEY,
	order_id VARCHAR(20) NOT NULL UNIQUE,
	customer_id VARCHAR(20) NOT NULL,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS order_items (
	id BIGSERIAL PRIMARY KEY,
	order_id BIGINT NOT NULL REFERENCES orders(id),
	product_id BIGINT NOT NULL REFERENCES products(id),
	item_type VARCHAR(100) NOT NULL DEFAULT '',
	quantity INT NOT NULL CHECK (quantity > 0),
	price NUMERIC(10,2) NOT NULL,
	deposit NUMERIC(10,2) NOT NULL DEFAULT 0,
	total NUMERIC(10,2) NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
	id BIGSERIAL PRIMARY KEY,
	invoice_id VARCHAR(20) NOT NULL UNIQUE,
	order_id BIGINT NOT NULL UNIQUE REFERENCES orders(id),
	total_amount NUMERIC(10,2) NOT NULL,
	status VARCHAR(20) NOT NULL DEFAULT 'pending',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS payments (
	id BIGSERIAL PRIMARY KEY,
	invoice_id BIGINT NOT NULL REFERENCES invoices(id),
	amount NUMERIC(10,2) NOT NULL CHECK (amount > 0),
	method VARCHAR(10) NOT NULL,
	amount_paid NUMERIC(10,2) NOT NULL DEFAULT 0,
	change_amount NUMERIC(10,2) NOT NULL DEFAULT 0,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS sequences (
	name VARCHAR(40) PRIMARY KEY,
	value BIGINT NOT NULL
);
`

// EnsureSchema cria as tabelas de faturamento caso ainda não existam
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, schemaDDL); err != nil {
		return fmt.Errorf("failed to ensure billing schema: %w", err)
	}
	return nil
}
