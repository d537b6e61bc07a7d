package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"assetdesk/internal/domain"
	"assetdesk/internal/domain/models"
	"assetdesk/internal/domain/models/foldertree"
	"assetdesk/internal/domain/repositories"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresAssetRepository implements the AssetRepository interface
type PostgresAssetRepository struct {
	pool   *pgxpool.Pool
	tables *TableNames
}

// NewAssetRepository creates a new asset repository
func NewAssetRepository(config *RepositoryConfig) repositories.AssetRepository {
	return &PostgresAssetRepository{
		pool:   config.Pool,
		tables: config.Tables,
	}
}

// GetByID retrieves an asset owned by userID
func (r *PostgresAssetRepository) GetByID(ctx context.Context, id, userID string) (*models.Asset, error) {
	query := fmt.Sprintf(`
		SELECT id, user_id, name, created_at, updated_at
		FROM %s
		WHERE id = $1 AND user_id = $2
	`, r.tables.Assets)

	var asset models.Asset
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, id, userID).Scan(
		&asset.ID,
		&asset.UserID,
		&asset.Name,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)

	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("asset %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get asset: %w", err)
	}

	return &asset, nil
}

// GetTree reads and normalizes metadata.<kind>
func (r *PostgresAssetRepository) GetTree(ctx context.Context, assetID string, kind foldertree.Kind) (*foldertree.Snapshot, error) {
	return r.getTree(ctx, assetID, kind, "")
}

// GetTreeForUpdate is GetTree with a row lock; call it inside ExecTx
func (r *PostgresAssetRepository) GetTreeForUpdate(ctx context.Context, assetID string, kind foldertree.Kind) (*foldertree.Snapshot, error) {
	return r.getTree(ctx, assetID, kind, "FOR UPDATE")
}

func (r *PostgresAssetRepository) getTree(ctx context.Context, assetID string, kind foldertree.Kind, lock string) (*foldertree.Snapshot, error) {
	query := fmt.Sprintf(`
		SELECT metadata -> $2::text, COALESCE((tree_versions ->> $2::text)::bigint, 0)
		FROM %s
		WHERE id = $1
		%s
	`, r.tables.Assets, lock)

	var raw []byte
	var version int64
	executor := GetExecutor(ctx, r.pool)
	err := executor.QueryRow(ctx, query, assetID, string(kind)).Scan(&raw, &version)
	if err != nil {
		if IsPgNoRowsError(err) || IsPgInvalidTextError(err) {
			return nil, fmt.Errorf("asset %s: %w", assetID, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s tree: %w", kind, err)
	}

	return &foldertree.Snapshot{
		Tree:    foldertree.Normalize(raw),
		Version: version,
	}, nil
}

// SaveTree rewrites metadata.<kind> only, guarded by the per-kind version counter
func (r *PostgresAssetRepository) SaveTree(ctx context.Context, assetID string, kind foldertree.Kind, tree foldertree.Tree, expectedVersion int64) (int64, error) {
	payload, err := json.Marshal(tree)
	if err != nil {
		return 0, fmt.Errorf("encode %s tree: %w", kind, err)
	}

	query := fmt.Sprintf(`
		UPDATE %s
		SET metadata = jsonb_set(COALESCE(metadata, '{}'::jsonb), ARRAY[$2::text], $3::jsonb, true),
		    tree_versions = jsonb_set(COALESCE(tree_versions, '{}'::jsonb), ARRAY[$2::text], to_jsonb($4::bigint + 1), true),
		    updated_at = now()
		WHERE id = $1 AND COALESCE((tree_versions ->> $2::text)::bigint, 0) = $4
	`, r.tables.Assets)

	executor := GetExecutor(ctx, r.pool)
	result, err := executor.Exec(ctx, query, assetID, string(kind), string(payload), expectedVersion)
	if err != nil {
		if IsPgInvalidTextError(err) {
			return 0, fmt.Errorf("asset %s: %w", assetID, domain.ErrNotFound)
		}
		return 0, fmt.Errorf("save %s tree: %w", kind, err)
	}

	if result.RowsAffected() == 0 {
		// Either the asset is gone or someone else wrote first
		if _, err := r.GetTree(ctx, assetID, kind); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("asset %s %s tree at version %d: %w", assetID, kind, expectedVersion, domain.ErrVersionConflict)
	}

	return expectedVersion + 1, nil
}
