package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var steps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_users",
		SQL: `CREATE TABLE IF NOT EXISTS users (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  email         TEXT        NOT NULL UNIQUE,
  password_hash TEXT        NOT NULL,
  name          TEXT        NOT NULL DEFAULT '',
  phone         TEXT        NOT NULL DEFAULT '',
  country       TEXT        NOT NULL DEFAULT '',
  city          TEXT        NOT NULL DEFAULT '',
  avatar_key    TEXT        NOT NULL DEFAULT '',
  role          TEXT        NOT NULL DEFAULT 'user' CHECK (role IN ('user', 'admin')),
  status        TEXT        NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'blocked')),
  referral_code TEXT        NOT NULL UNIQUE,
  referred_by   UUID        REFERENCES users (id) ON DELETE SET NULL,
  preferences   JSONB       NOT NULL DEFAULT '{}'::jsonb,
  notifications JSONB       NOT NULL DEFAULT '{}'::jsonb,
  created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_balances",
		SQL: `CREATE TABLE IF NOT EXISTS balances (
  user_id      UUID          PRIMARY KEY REFERENCES users (id) ON DELETE CASCADE,
  balance      NUMERIC(20,8) NOT NULL DEFAULT 0 CHECK (balance >= 0),
  demo_balance NUMERIC(20,8) NOT NULL DEFAULT 0 CHECK (demo_balance >= 0),
  updated_at   TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_investments",
		SQL: `CREATE TABLE IF NOT EXISTS investments (
  id              UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id         UUID          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  plan_id         INT           NOT NULL,
  plan_name       TEXT          NOT NULL,
  amount          NUMERIC(20,8) NOT NULL CHECK (amount > 0),
  currency        TEXT          NOT NULL,
  original_amount NUMERIC(20,8) NOT NULL,
  daily_return    NUMERIC(6,3)  NOT NULL,
  duration_days   INT           NOT NULL CHECK (duration_days > 0),
  days_paid       INT           NOT NULL DEFAULT 0,
  earned          NUMERIC(20,8) NOT NULL DEFAULT 0,
  status          TEXT          NOT NULL DEFAULT 'active' CHECK (status IN ('active', 'completed')),
  created_at      TIMESTAMPTZ   NOT NULL DEFAULT now(),
  last_accrual_at TIMESTAMPTZ,
  completed_at    TIMESTAMPTZ
);`,
	},
	{
		Name: "create_table_transactions",
		SQL: `CREATE TABLE IF NOT EXISTS transactions (
  id          UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id     UUID          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  type        TEXT          NOT NULL,
  amount      NUMERIC(20,8) NOT NULL,
  currency    TEXT          NOT NULL DEFAULT 'USD',
  description TEXT          NOT NULL DEFAULT '',
  status      TEXT          NOT NULL CHECK (status IN ('pending', 'completed', 'failed')),
  created_at  TIMESTAMPTZ   NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_referrals",
		SQL: `CREATE TABLE IF NOT EXISTS referrals (
  id          UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  referrer_id UUID          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  referred_id UUID          NOT NULL UNIQUE REFERENCES users (id) ON DELETE CASCADE,
  bonus       NUMERIC(20,8) NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ   NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_trades",
		SQL: `CREATE TABLE IF NOT EXISTS trades (
  id              UUID          PRIMARY KEY DEFAULT uuid_generate_v4(),
  user_id         UUID          NOT NULL REFERENCES users (id) ON DELETE CASCADE,
  pair            TEXT          NOT NULL,
  side            TEXT          NOT NULL CHECK (side IN ('buy', 'sell')),
  amount          NUMERIC(20,8) NOT NULL CHECK (amount > 0),
  entry_price     NUMERIC(24,8) NOT NULL,
  exit_price      NUMERIC(24,8),
  profit          NUMERIC(20,8) NOT NULL DEFAULT 0,
  status          TEXT          NOT NULL DEFAULT 'open' CHECK (status IN ('open', 'closed')),
  closed_manually BOOLEAN       NOT NULL DEFAULT false,
  opened_at       TIMESTAMPTZ   NOT NULL DEFAULT now(),
  close_at        TIMESTAMPTZ   NOT NULL,
  closed_at       TIMESTAMPTZ
);`,
	},
	{
		Name: "create_index_transactions_user_created",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_transactions_user_created ON transactions (user_id, created_at DESC);`,
	},
	{
		Name: "create_index_investments_status",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_investments_status ON investments (status);`,
	},
	{
		Name: "create_index_trades_open_close_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_trades_open_close_at ON trades (close_at) WHERE status = 'open';`,
	},
	{
		Name: "create_index_referrals_referrer",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_referrals_referrer ON referrals (referrer_id);`,
	},
}

// EnsureMigrated checks if the 'users' table exists and runs migrations if it doesn't.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.Named("database").With(zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("event", "db_migration_check"), zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.users') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("event", "db_migration_failed"),
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("schema already exists, skipping migration",
			zap.String("event", "db_migration_skip"),
			zap.String("status", "success"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("event", "db_migration_start"), zap.String("status", "in_progress"))

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := db.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("event", "db_migration_failed"),
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Info("db_migration_step",
			zap.String("event", "db_migration_step"),
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	log.Info("db_migration_success",
		zap.String("event", "db_migration_success"),
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
