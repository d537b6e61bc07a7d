package foldertree

import (
	"context"
	"log/slog"

	models "assetdesk/internal/domain/models/foldertree"
	"assetdesk/internal/domain/repositories"
	svc "assetdesk/internal/domain/services"

	"github.com/google/uuid"
)

// treeService implements the FolderTreeService interface
type treeService struct {
	assetRepo  repositories.AssetRepository
	blobs      svc.BlobStore
	txManager  repositories.TransactionManager
	authorizer svc.ResourceAuthorizer
	newID      func() string
	logger     *slog.Logger
}

// NewTreeService creates the folder tree service shared by docs and gallery
func NewTreeService(
	assetRepo repositories.AssetRepository,
	blobs svc.BlobStore,
	txManager repositories.TransactionManager,
	authorizer svc.ResourceAuthorizer,
	logger *slog.Logger,
) svc.FolderTreeService {
	return &treeService{
		assetRepo:  assetRepo,
		blobs:      blobs,
		txManager:  txManager,
		authorizer: authorizer,
		newID:      uuid.NewString,
		logger:     logger,
	}
}

// access validates the reference and checks the user owns the asset
func (s *treeService) access(ctx context.Context, ref svc.TreeRef) error {
	if err := validateRef(ref); err != nil {
		return err
	}
	return s.authorizer.CanAccessAsset(ctx, ref.UserID, ref.AssetID)
}

// mutate runs fn against a copy of the stored tree while the asset row is
// locked, validates the result and writes it back. When fn reports no change
// nothing is written and the stored snapshot is returned.
func (s *treeService) mutate(ctx context.Context, ref svc.TreeRef, fn func(tree *models.Tree) (bool, error)) (*models.Snapshot, error) {
	if err := s.access(ctx, ref); err != nil {
		return nil, err
	}

	var result *models.Snapshot
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.assetRepo.GetTreeForUpdate(txCtx, ref.AssetID, ref.Kind)
		if err != nil {
			return err
		}

		tree := current.Tree.Clone()
		changed, err := fn(&tree)
		if err != nil {
			return err
		}
		if !changed {
			result = current
			return nil
		}

		if err := tree.ValidateChange(current.Tree); err != nil {
			return err
		}

		version, err := s.assetRepo.SaveTree(txCtx, ref.AssetID, ref.Kind, tree, current.Version)
		if err != nil {
			return err
		}
		result = &models.Snapshot{Tree: tree, Version: version}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// discardBlobs removes stored content of files that left the tree. The tree
// write has already committed, so failures are only logged.
func (s *treeService) discardBlobs(ctx context.Context, ref svc.TreeRef, files []models.FileItem) {
	for _, f := range files {
		if err := s.blobs.Delete(ctx, f.ID); err != nil {
			s.logger.Warn("failed to delete file content",
				"asset_id", ref.AssetID,
				"kind", ref.Kind,
				"file_id", f.ID,
				"error", err,
			)
		}
	}
}
