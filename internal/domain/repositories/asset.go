package repositories

import (
	"context"

	"assetdesk/internal/domain/models"
	"assetdesk/internal/domain/models/foldertree"
)

// AssetRepository reads asset ownership and reads/writes the folder trees
// stored under metadata.<kind>.
type AssetRepository interface {
	// GetByID retrieves an asset owned by userID
	GetByID(ctx context.Context, id, userID string) (*models.Asset, error)

	// GetTree reads and normalizes the tree of the given kind
	GetTree(ctx context.Context, assetID string, kind foldertree.Kind) (*foldertree.Snapshot, error)

	// GetTreeForUpdate is GetTree with the asset row locked until the surrounding transaction ends
	GetTreeForUpdate(ctx context.Context, assetID string, kind foldertree.Kind) (*foldertree.Snapshot, error)

	// SaveTree rewrites metadata.<kind> if the stored version still equals expectedVersion.
	// Other metadata keys are preserved. Returns the new version, or domain.ErrVersionConflict.
	SaveTree(ctx context.Context, assetID string, kind foldertree.Kind, tree foldertree.Tree, expectedVersion int64) (int64, error)
}
