package foldertree

import (
	"context"

	models "assetdesk/internal/domain/models/foldertree"
	svc "assetdesk/internal/domain/services"
)

// CreateFolder creates a folder under req.ParentID (nil = root). The name
// defaults to "New Folder" and gets a " (n)" suffix when a sibling already uses it.
func (s *treeService) CreateFolder(ctx context.Context, req *svc.CreateFolderRequest) (*svc.FolderResult, error) {
	if err := validateCreateFolderRequest(req); err != nil {
		return nil, err
	}

	var created models.FolderItem
	snap, err := s.mutate(ctx, req.TreeRef, func(tree *models.Tree) (bool, error) {
		folder, err := tree.CreateFolder(s.newID(), req.Name, req.ParentID)
		if err != nil {
			return false, err
		}
		created = folder
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	path := models.Path(snap.Tree.Folders, &created.ID)
	s.logger.Info("folder created",
		"asset_id", req.AssetID,
		"kind", req.Kind,
		"id", created.ID,
		"name", created.Name,
		"parent_id", created.ParentID,
		"path", path,
	)

	return &svc.FolderResult{FolderItem: created, Path: path, Version: snap.Version}, nil
}

// UpdateFolder renames and/or moves a folder. Moves into the folder itself or
// one of its descendants are refused, as are sibling name clashes.
func (s *treeService) UpdateFolder(ctx context.Context, req *svc.UpdateFolderRequest) (*svc.FolderResult, error) {
	if err := validateUpdateFolderRequest(req); err != nil {
		return nil, err
	}

	snap, err := s.mutate(ctx, req.TreeRef, func(tree *models.Tree) (bool, error) {
		changed := false
		if req.Name != nil {
			renamed, err := tree.RenameFolder(req.FolderID, *req.Name)
			if err != nil {
				return false, err
			}
			changed = changed || renamed
		}

		// Tri-state: only move if parent_id was present in the request
		if req.ParentID.Present {
			moved, err := tree.MoveFolder(req.FolderID, req.ParentID.OrNil())
			if err != nil {
				return false, err
			}
			changed = changed || moved
		}

		if !changed {
			// Still report a missing folder as such
			_, err := tree.Folder(req.FolderID)
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	folder, err := snap.Tree.Folder(req.FolderID)
	if err != nil {
		return nil, err
	}
	path := models.Path(snap.Tree.Folders, &folder.ID)

	s.logger.Info("folder updated",
		"asset_id", req.AssetID,
		"kind", req.Kind,
		"id", folder.ID,
		"name", folder.Name,
		"parent_id", folder.ParentID,
		"path", path,
	)

	return &svc.FolderResult{FolderItem: folder, Path: path, Version: snap.Version}, nil
}

// DeleteFolder deletes a folder that has no direct subfolders or files.
// Recursive deletion is not supported; non-empty folders yield a conflict.
func (s *treeService) DeleteFolder(ctx context.Context, ref svc.TreeRef, folderID string) (int64, error) {
	var removed models.FolderItem
	snap, err := s.mutate(ctx, ref, func(tree *models.Tree) (bool, error) {
		folder, err := tree.DeleteFolder(folderID)
		if err != nil {
			return false, err
		}
		removed = folder
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	s.logger.Info("folder deleted",
		"asset_id", ref.AssetID,
		"kind", ref.Kind,
		"id", removed.ID,
		"name", removed.Name,
	)

	return snap.Version, nil
}
