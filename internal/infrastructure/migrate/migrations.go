package migrate

// DefaultMigrations is the ordered schema history of the payment store.
// Append only; never edit an entry that has shipped.
func DefaultMigrations() []Migration {
	return []Migration{
		{
			Version: 1,
			Name:    "create_payments",
			Up: []Statement{
				{SQL: `
					CREATE TABLE IF NOT EXISTS payments (
						id             TEXT PRIMARY KEY,
						service_name   TEXT NOT NULL,
						description    TEXT NOT NULL DEFAULT '',
						amount         NUMERIC(20,6) NOT NULL CHECK (amount > 0),
						chain          TEXT NOT NULL DEFAULT '',
						status         TEXT NOT NULL DEFAULT 'pending',
						wallet_address TEXT NOT NULL DEFAULT '',
						tx_hash        TEXT NOT NULL DEFAULT '',
						webhook_url    TEXT NOT NULL DEFAULT '',
						created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
						updated_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
						expires_at     TIMESTAMPTZ NOT NULL,
						CHECK (expires_at >= created_at)
					)`},
				{SQL: `
					CREATE TABLE IF NOT EXISTS payment_events (
						id         UUID PRIMARY KEY,
						payment_id TEXT NOT NULL REFERENCES payments(id),
						event_type TEXT NOT NULL,
						data       JSONB,
						created_at TIMESTAMPTZ NOT NULL DEFAULT now()
					)`},
				{SQL: `CREATE INDEX IF NOT EXISTS idx_payment_events_payment_id ON payment_events (payment_id)`},
			},
			Down: []string{
				`DROP TABLE IF EXISTS payment_events`,
				`DROP TABLE IF EXISTS payments`,
			},
		},
		{
			Version: 2,
			Name:    "create_sweep_tables",
			Up: []Statement{
				{SQL: `
					CREATE TABLE IF NOT EXISTS wallet_balances (
						address       TEXT NOT NULL,
						chain         TEXT NOT NULL,
						total_handled NUMERIC(20,6) NOT NULL DEFAULT 0,
						last_activity TIMESTAMPTZ,
						PRIMARY KEY (address, chain)
					)`},
				{SQL: `
					CREATE TABLE IF NOT EXISTS auto_transfers (
						id            UUID PRIMARY KEY,
						from_address  TEXT NOT NULL,
						to_address    TEXT NOT NULL,
						amount        NUMERIC(20,6) NOT NULL,
						chain         TEXT NOT NULL,
						tx_hash       TEXT NOT NULL DEFAULT '',
						success       BOOLEAN NOT NULL,
						error_message TEXT NOT NULL DEFAULT '',
						created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
					)`},
				{SQL: `CREATE INDEX IF NOT EXISTS idx_auto_transfers_from ON auto_transfers (from_address)`},
			},
			Down: []string{
				`DROP TABLE IF EXISTS auto_transfers`,
				`DROP TABLE IF EXISTS wallet_balances`,
			},
		},
		{
			Version: 3,
			Name:    "payment_lookup_indexes",
			Up: []Statement{
				// Built without locking writers; postgres rejects
				// CONCURRENTLY inside a transaction.
				{SQL: `CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_payments_status_expires ON payments (status, expires_at)`, NoTx: true},
				{SQL: `CREATE INDEX CONCURRENTLY IF NOT EXISTS idx_payments_created_at ON payments (created_at)`, NoTx: true},
				{SQL: `CREATE INDEX IF NOT EXISTS idx_payments_chain ON payments (chain)`},
			},
			Down: []string{
				`DROP INDEX IF EXISTS idx_payments_chain`,
				`DROP INDEX IF EXISTS idx_payments_created_at`,
				`DROP INDEX IF EXISTS idx_payments_status_expires`,
			},
		},
	}
}
