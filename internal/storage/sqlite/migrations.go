package sqlite

import "database/sql"

// schema runs on startup to ensure tables exist.
// Money and meter values are TEXT so decimals round-trip exactly.
// invoices.tenant_id carries no foreign key: deleting a tenant keeps its invoices.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL UNIQUE,
    display_name TEXT NOT NULL,
    password_hash TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS tenants (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    name TEXT NOT NULL,
    base_rent TEXT NOT NULL,
    contact TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS invoices (
    seq INTEGER PRIMARY KEY AUTOINCREMENT,
    id TEXT NOT NULL UNIQUE,
    user_id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    tenant_name TEXT NOT NULL,
    date INTEGER NOT NULL,
    base_rent TEXT NOT NULL,
    previous_month_reading TEXT NOT NULL,
    current_month_reading TEXT NOT NULL,
    units_consumed TEXT NOT NULL,
    electricity_rate TEXT,
    electricity_cost TEXT NOT NULL,
    total TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS settings (
    user_id TEXT PRIMARY KEY,
    electricity_rate TEXT NOT NULL,
    updated_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_tenants_user_id ON tenants(user_id);
CREATE INDEX IF NOT EXISTS idx_invoices_user_id ON invoices(user_id);
CREATE INDEX IF NOT EXISTS idx_invoices_user_tenant_date ON invoices(user_id, tenant_id, date);
`

// runMigrations executes the schema setup.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
