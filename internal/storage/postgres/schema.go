package postgres

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	pool_address   TEXT PRIMARY KEY,
	asset_a        TEXT NOT NULL,
	asset_b        TEXT NOT NULL,
	share_symbol   TEXT NOT NULL,
	fee            BIGINT NOT NULL,
	first_seen_seq BIGINT NOT NULL,
	created_at     TIMESTAMPTZ NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS pool_events (
	run_id       TEXT NOT NULL,
	seq          BIGINT NOT NULL,
	pool_address TEXT NOT NULL,
	event_name   TEXT NOT NULL,
	event_ts     BIGINT NOT NULL,
	decoded      JSONB NOT NULL,
	reserve_a    NUMERIC,
	reserve_b    NUMERIC,
	total_supply NUMERIC,
	created_at   TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, seq, event_name)
);

CREATE TABLE IF NOT EXISTS operation_errors (
	run_id     TEXT NOT NULL,
	seq        BIGINT NOT NULL,
	op_ts      BIGINT NOT NULL,
	op         TEXT NOT NULL,
	account    TEXT NOT NULL,
	error      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (run_id, seq)
);

CREATE TABLE IF NOT EXISTS pool_window_metrics (
	pool_address        TEXT NOT NULL,
	window_size_seconds BIGINT NOT NULL,
	window_start_ts     TIMESTAMPTZ NOT NULL,
	window_end_ts       TIMESTAMPTZ NOT NULL,
	swap_count          BIGINT NOT NULL,
	add_count           BIGINT NOT NULL,
	remove_count        BIGINT NOT NULL,
	volume_a            NUMERIC NOT NULL,
	volume_b            NUMERIC NOT NULL,
	fee_a               NUMERIC NOT NULL,
	fee_b               NUMERIC NOT NULL,
	fee_rate_a          NUMERIC,
	fee_rate_b          NUMERIC,
	tvl_a               NUMERIC,
	tvl_b               NUMERIC,
	apr                 NUMERIC,
	fee_method          TEXT NOT NULL,
	tvl_method          TEXT NOT NULL,
	created_at          TIMESTAMPTZ NOT NULL,
	updated_at          TIMESTAMPTZ NOT NULL,
	PRIMARY KEY (pool_address, window_size_seconds, window_start_ts)
);

CREATE TABLE IF NOT EXISTS runner_state (
	name           TEXT PRIMARY KEY,
	last_processed BIGINT NOT NULL,
	updated_at     TIMESTAMPTZ NOT NULL
);
`
