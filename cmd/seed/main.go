// Package main provides a CLI tool for creating the database schema and
// seeding an initial admin account.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"golang.org/x/crypto/bcrypt"

	"autodf/internal/core/id"
	"autodf/internal/infrastructure/storage/postgres"
	"autodf/pkg/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id UUID PRIMARY KEY,
	email TEXT NOT NULL,
	password_hash TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	siret TEXT NOT NULL DEFAULT '',
	organization_id TEXT NOT NULL,
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	last_login_at TIMESTAMPTZ,
	failed_login_attempts INT NOT NULL DEFAULT 0,
	locked_until TIMESTAMPTZ,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	version INT NOT NULL DEFAULT 1
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_users_email ON users (LOWER(email));

CREATE TABLE IF NOT EXISTS cat_clients (
	id UUID PRIMARY KEY,
	deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
	version INT NOT NULL DEFAULT 1,
	organization_id TEXT NOT NULL,
	code TEXT NOT NULL DEFAULT '',
	name TEXT NOT NULL,
	type TEXT NOT NULL,
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	company_name TEXT NOT NULL DEFAULT '',
	siret TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL,
	mobile TEXT NOT NULL DEFAULT '',
	address TEXT NOT NULL DEFAULT '',
	city TEXT NOT NULL DEFAULT '',
	postal_code TEXT NOT NULL DEFAULT '',
	comment TEXT NOT NULL DEFAULT ''
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_clients_org_code
	ON cat_clients (organization_id, code) WHERE code <> '' AND NOT deletion_mark;
CREATE UNIQUE INDEX IF NOT EXISTS ux_cat_clients_org_siret
	ON cat_clients (organization_id, siret) WHERE siret <> '' AND NOT deletion_mark;
CREATE INDEX IF NOT EXISTS ix_cat_clients_org_name ON cat_clients (organization_id, name);

CREATE TABLE IF NOT EXISTS doc_estimates (
	id UUID PRIMARY KEY,
	deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
	version INT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_by TEXT NOT NULL DEFAULT '',
	updated_by TEXT NOT NULL DEFAULT '',
	number TEXT NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	organization_id TEXT NOT NULL,
	client_id UUID NOT NULL REFERENCES cat_clients(id),
	header_discount NUMERIC(12,4) NOT NULL DEFAULT 0,
	total_net NUMERIC(14,2) NOT NULL DEFAULT 0,
	total_tax NUMERIC(14,2) NOT NULL DEFAULT 0,
	total_gross NUMERIC(14,2) NOT NULL DEFAULT 0,
	sent_date TIMESTAMPTZ,
	comment TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	invoice_id UUID
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_doc_estimates_org_number
	ON doc_estimates (organization_id, number);
CREATE INDEX IF NOT EXISTS ix_doc_estimates_org_date ON doc_estimates (organization_id, date);

CREATE TABLE IF NOT EXISTS doc_estimate_lines (
	document_id UUID NOT NULL REFERENCES doc_estimates(id) ON DELETE CASCADE,
	line_id UUID NOT NULL,
	line_no INT NOT NULL,
	description TEXT NOT NULL,
	line_type TEXT NOT NULL,
	quantity NUMERIC(14,4) NOT NULL DEFAULT 0,
	unit_price NUMERIC(14,2) NOT NULL DEFAULT 0,
	tax_rate NUMERIC(12,4) NOT NULL DEFAULT 0,
	discount NUMERIC(12,4) NOT NULL DEFAULT 0,
	net NUMERIC(14,2) NOT NULL DEFAULT 0,
	tax NUMERIC(14,2) NOT NULL DEFAULT 0,
	gross NUMERIC(14,2) NOT NULL DEFAULT 0,
	note TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (document_id, line_id)
);

CREATE TABLE IF NOT EXISTS doc_invoices (
	id UUID PRIMARY KEY,
	deletion_mark BOOLEAN NOT NULL DEFAULT FALSE,
	version INT NOT NULL DEFAULT 1,
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	created_by TEXT NOT NULL DEFAULT '',
	updated_by TEXT NOT NULL DEFAULT '',
	number TEXT NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	organization_id TEXT NOT NULL,
	client_id UUID NOT NULL REFERENCES cat_clients(id),
	header_discount NUMERIC(12,4) NOT NULL DEFAULT 0,
	total_net NUMERIC(14,2) NOT NULL DEFAULT 0,
	total_tax NUMERIC(14,2) NOT NULL DEFAULT 0,
	total_gross NUMERIC(14,2) NOT NULL DEFAULT 0,
	sent_date TIMESTAMPTZ,
	comment TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	due_date TIMESTAMPTZ NOT NULL,
	estimate_id UUID REFERENCES doc_estimates(id),
	payment_status TEXT NOT NULL,
	paid_amount NUMERIC(14,2) NOT NULL DEFAULT 0,
	remaining_amount NUMERIC(14,2) NOT NULL DEFAULT 0
);

CREATE UNIQUE INDEX IF NOT EXISTS ux_doc_invoices_org_number
	ON doc_invoices (organization_id, number);
CREATE INDEX IF NOT EXISTS ix_doc_invoices_org_date ON doc_invoices (organization_id, date);
CREATE INDEX IF NOT EXISTS ix_doc_invoices_outstanding
	ON doc_invoices (organization_id, due_date) WHERE remaining_amount > 0;

CREATE TABLE IF NOT EXISTS doc_invoice_lines (
	document_id UUID NOT NULL REFERENCES doc_invoices(id) ON DELETE CASCADE,
	line_id UUID NOT NULL,
	line_no INT NOT NULL,
	description TEXT NOT NULL,
	line_type TEXT NOT NULL,
	quantity NUMERIC(14,4) NOT NULL DEFAULT 0,
	unit_price NUMERIC(14,2) NOT NULL DEFAULT 0,
	tax_rate NUMERIC(12,4) NOT NULL DEFAULT 0,
	discount NUMERIC(12,4) NOT NULL DEFAULT 0,
	net NUMERIC(14,2) NOT NULL DEFAULT 0,
	tax NUMERIC(14,2) NOT NULL DEFAULT 0,
	gross NUMERIC(14,2) NOT NULL DEFAULT 0,
	note TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (document_id, line_id)
);

CREATE TABLE IF NOT EXISTS doc_invoice_payments (
	document_id UUID NOT NULL REFERENCES doc_invoices(id) ON DELETE CASCADE,
	payment_id UUID NOT NULL,
	amount NUMERIC(14,2) NOT NULL,
	date TIMESTAMPTZ NOT NULL,
	method TEXT NOT NULL,
	reference TEXT NOT NULL DEFAULT '',
	recorded_by TEXT NOT NULL DEFAULT '',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (document_id, payment_id)
);

CREATE TABLE IF NOT EXISTS sys_audit (
	id UUID PRIMARY KEY,
	organization_id TEXT NOT NULL DEFAULT '',
	entity_type TEXT NOT NULL,
	entity_id UUID NOT NULL,
	action TEXT NOT NULL,
	user_id TEXT NOT NULL DEFAULT '',
	user_email TEXT NOT NULL DEFAULT '',
	changes JSONB,
	changes_compressed BYTEA,
	compression_algo TEXT NOT NULL DEFAULT 'none',
	created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS ix_sys_audit_entity ON sys_audit (entity_type, entity_id, created_at);
`

func main() {
	_ = godotenv.Load()

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()

	log.Info("connected to database")

	if _, err := pool.Pool.Exec(ctx, schema); err != nil {
		log.Fatalw("failed to apply schema", "error", err)
	}
	log.Info("schema applied")

	if _, err := seedAdminUser(ctx, pool, log); err != nil {
		log.Fatalw("failed to seed admin user", "error", err)
	}

	log.Info("seeding completed successfully")
}

func seedAdminUser(ctx context.Context, pool *postgres.Pool, log *logger.Logger) (id.ID, error) {
	adminEmail := os.Getenv("ADMIN_EMAIL")
	if adminEmail == "" {
		adminEmail = "admin@autodf.fr"
	}

	adminPassword := os.Getenv("ADMIN_PASSWORD")
	if adminPassword == "" {
		adminPassword = "Admin123!"
	}

	adminSIRET := os.Getenv("ADMIN_SIRET")
	if adminSIRET == "" {
		adminSIRET = "00000000000000"
	}

	// Check if admin already exists
	var existingID id.ID
	err := pool.Pool.QueryRow(ctx,
		`SELECT id FROM users WHERE LOWER(email) = LOWER($1)`,
		adminEmail,
	).Scan(&existingID)
	if err == nil {
		log.Infow("admin user already exists", "email", adminEmail, "user_id", existingID)
		return existingID, nil
	}
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return id.Nil(), fmt.Errorf("check admin exists: %w", err)
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(adminPassword), bcrypt.DefaultCost)
	if err != nil {
		return id.Nil(), fmt.Errorf("hash password: %w", err)
	}

	userID := id.New()
	now := time.Now().UTC()

	_, err = pool.Pool.Exec(ctx, `
		INSERT INTO users (
			id, email, password_hash, first_name, last_name,
			siret, organization_id, is_active, created_at, updated_at, version
		)
		VALUES ($1, $2, $3, 'System', 'Admin', $4, $5, true, $6, $6, 1)
	`, userID, adminEmail, string(passwordHash), adminSIRET, userID.String(), now)
	if err != nil {
		return id.Nil(), fmt.Errorf("insert admin user: %w", err)
	}

	log.Infow("admin user created",
		"email", adminEmail,
		"user_id", userID,
	)

	return userID, nil
}
