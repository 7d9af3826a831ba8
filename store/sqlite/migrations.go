package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the tokenledger store (SQLite).
var Migrations = migrate.NewGroup("tokenledger")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_tokenledger_events",
			Version: "20250101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tokenledger_events (
    id          TEXT PRIMARY KEY,
    seq         INTEGER NOT NULL,
    tx_id       TEXT NOT NULL DEFAULT '',
    type        TEXT NOT NULL DEFAULT '',
    attributes  TEXT NOT NULL DEFAULT '{}',
    timestamp   INTEGER NOT NULL DEFAULT 0,
    created_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tokenledger_events_seq ON tokenledger_events (seq);
CREATE INDEX IF NOT EXISTS idx_tokenledger_events_type ON tokenledger_events (type, seq);
CREATE INDEX IF NOT EXISTS idx_tokenledger_events_tx ON tokenledger_events (tx_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tokenledger_events`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tokenledger_balances",
			Version: "20250101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tokenledger_balances (
    id          TEXT PRIMARY KEY,
    account     TEXT NOT NULL,
    token_id    TEXT NOT NULL,
    amount      TEXT NOT NULL DEFAULT '0',
    updated_at  TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_tokenledger_balances_account ON tokenledger_balances (account);
CREATE INDEX IF NOT EXISTS idx_tokenledger_balances_token ON tokenledger_balances (token_id);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tokenledger_balances`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_tokenledger_vesting_schedules",
			Version: "20250101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS tokenledger_vesting_schedules (
    id                TEXT PRIMARY KEY,
    idx               INTEGER NOT NULL,
    escrow            TEXT NOT NULL,
    owner             TEXT NOT NULL,
    beneficiary       TEXT NOT NULL DEFAULT '',
    asset             TEXT NOT NULL DEFAULT '',
    total_amount      TEXT NOT NULL DEFAULT '0',
    initial_unlocked  TEXT NOT NULL DEFAULT '0',
    claimed_amount    TEXT NOT NULL DEFAULT '0',
    start_time        INTEGER NOT NULL DEFAULT 0,
    unlock_period     INTEGER NOT NULL DEFAULT 0,
    duration          INTEGER NOT NULL DEFAULT 0,
    status            TEXT NOT NULL DEFAULT 'created',
    created_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at        TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_tokenledger_schedules_idx ON tokenledger_vesting_schedules (idx);
CREATE INDEX IF NOT EXISTS idx_tokenledger_schedules_owner ON tokenledger_vesting_schedules (owner);
CREATE INDEX IF NOT EXISTS idx_tokenledger_schedules_beneficiary ON tokenledger_vesting_schedules (beneficiary);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS tokenledger_vesting_schedules`)
				return err
			},
		},
	)
}
