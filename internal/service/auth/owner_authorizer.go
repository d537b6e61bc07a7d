package auth

import (
	"context"
	"errors"
	"fmt"

	"assetdesk/internal/domain"
	"assetdesk/internal/domain/repositories"
)

// OwnerBasedAuthorizer implements ResourceAuthorizer using ownership checks.
// A user can access an asset's trees if they own the asset.
type OwnerBasedAuthorizer struct {
	assetRepo repositories.AssetRepository
}

// NewOwnerBasedAuthorizer creates a new ownership-based authorizer
func NewOwnerBasedAuthorizer(assetRepo repositories.AssetRepository) *OwnerBasedAuthorizer {
	return &OwnerBasedAuthorizer{assetRepo: assetRepo}
}

// CanAccessAsset checks if user owns the asset
func (a *OwnerBasedAuthorizer) CanAccessAsset(ctx context.Context, userID, assetID string) error {
	// GetByID filters by userID, so not found means not owned (or absent)
	_, err := a.assetRepo.GetByID(ctx, assetID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return fmt.Errorf("access denied to asset %s: %w", assetID, domain.ErrForbidden)
		}
		return fmt.Errorf("check asset access: %w", err)
	}
	return nil
}
