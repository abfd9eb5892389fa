package sqlite

const schema = `
CREATE TABLE IF NOT EXISTS users (
	username      TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS balances (
	username   TEXT NOT NULL,
	currency   TEXT NOT NULL CHECK (currency IN ('BTC', 'USD')),
	balance    TEXT NOT NULL DEFAULT '0',
	created_at TIMESTAMP NOT NULL,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (username, currency)
);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	username    TEXT NOT NULL,
	destination TEXT NOT NULL DEFAULT '',
	description TEXT NOT NULL DEFAULT '',
	currency    TEXT NOT NULL CHECK (currency IN ('BTC', 'USD')),
	status      TEXT NOT NULL CHECK (status IN ('pending', 'settled', 'canceled')),
	kind        TEXT NOT NULL CHECK (kind IN ('deposit', 'withdraw')),
	value       TEXT NOT NULL,
	fee         TEXT NOT NULL DEFAULT '0',
	created_at  TIMESTAMP NOT NULL,
	updated_at  TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_transactions_username_created ON transactions(username, created_at, id);
`
