package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// EnsureSchema creates the assets table when it does not exist yet. In
// deployments the asset API owns this table; this is for dev and test setups.
//
// tree_versions holds one counter per tree kind so docs and gallery edits do
// not invalidate each other's snapshots.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool, tables *TableNames) error {
	ddl := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %[1]s (
			id            UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			user_id       TEXT NOT NULL,
			name          TEXT NOT NULL,
			metadata      JSONB NOT NULL DEFAULT '{}'::jsonb,
			tree_versions JSONB NOT NULL DEFAULT '{}'::jsonb,
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS %[1]s_user_id_idx ON %[1]s (user_id);
		ALTER TABLE %[1]s ADD COLUMN IF NOT EXISTS tree_versions JSONB NOT NULL DEFAULT '{}'::jsonb;
	`, tables.Assets)

	if _, err := pool.Exec(ctx, ddl); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}
