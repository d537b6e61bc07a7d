package services

import "context"

// ResourceAuthorizer checks if a user can access resources.
// Current implementation: ownership-based (user owns the asset).
//
// Services call the authorizer before operating on a tree.
type ResourceAuthorizer interface {
	// CanAccessAsset checks if user can read and modify an asset's trees
	CanAccessAsset(ctx context.Context, userID, assetID string) error
}
