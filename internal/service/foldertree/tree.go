package foldertree

import (
	"context"
	"fmt"
	"strings"

	"assetdesk/internal/domain"
	models "assetdesk/internal/domain/models/foldertree"
	svc "assetdesk/internal/domain/services"
)

// GetTree returns the normalized tree and its version
func (s *treeService) GetTree(ctx context.Context, ref svc.TreeRef) (*models.Snapshot, error) {
	if err := s.access(ctx, ref); err != nil {
		return nil, err
	}
	return s.assetRepo.GetTree(ctx, ref.AssetID, ref.Kind)
}

// GetNestedTree returns the tree with folders nested and paths filled in
func (s *treeService) GetNestedTree(ctx context.Context, ref svc.TreeRef) (*models.Node, error) {
	snap, err := s.GetTree(ctx, ref)
	if err != nil {
		return nil, err
	}
	return models.Build(snap.Tree), nil
}

// ListChildren lists the direct children of folderID (nil = root)
func (s *treeService) ListChildren(ctx context.Context, ref svc.TreeRef, folderID *string) (*svc.FolderContents, error) {
	snap, err := s.GetTree(ctx, ref)
	if err != nil {
		return nil, err
	}

	result := &svc.FolderContents{Version: snap.Version}
	if folderID != nil {
		folder, err := snap.Tree.Folder(*folderID)
		if err != nil {
			return nil, err
		}
		result.Folder = &folder
		result.Path = models.Path(snap.Tree.Folders, folderID)
	}

	contents := models.GetItemsInFolder(snap.Tree.Folders, snap.Tree.Files, folderID)
	result.Folders = contents.Subfolders
	result.Files = contents.Files
	return result, nil
}

// ReplaceTree stores a whole tree built by a client. The write is refused
// unless req.ExpectedVersion is the stored version. Files cannot be created
// this way; only their name and folder are taken from the request.
func (s *treeService) ReplaceTree(ctx context.Context, req *svc.ReplaceTreeRequest) (*models.Snapshot, error) {
	if err := s.access(ctx, req.TreeRef); err != nil {
		return nil, err
	}

	var (
		result  *models.Snapshot
		removed []models.FileItem
	)
	err := s.txManager.ExecTx(ctx, func(txCtx context.Context) error {
		current, err := s.assetRepo.GetTreeForUpdate(txCtx, req.AssetID, req.Kind)
		if err != nil {
			return err
		}
		if current.Version != req.ExpectedVersion {
			return fmt.Errorf("expected version %d, stored %d: %w",
				req.ExpectedVersion, current.Version, domain.ErrVersionConflict)
		}

		tree, dropped, err := reconcile(current.Tree, req.Tree)
		if err != nil {
			return err
		}
		if err := tree.ValidateChange(current.Tree); err != nil {
			return err
		}

		version, err := s.assetRepo.SaveTree(txCtx, req.AssetID, req.Kind, tree, current.Version)
		if err != nil {
			return err
		}
		result = &models.Snapshot{Tree: tree, Version: version}
		removed = dropped
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.discardBlobs(ctx, req.TreeRef, removed)

	s.logger.Info("tree replaced",
		"asset_id", req.AssetID,
		"kind", req.Kind,
		"version", result.Version,
		"folders", len(result.Tree.Folders),
		"files", len(result.Tree.Files),
		"files_removed", len(removed),
	)

	return result, nil
}

// reconcile merges an incoming tree with the stored one. Names are trimmed.
// Folders come from incoming, and a stored folder may only be left out when
// none of its stored children are left out with it. Each incoming file must
// already be stored and keeps its stored content fields. Stored files missing
// from incoming are returned as removed.
func reconcile(stored, incoming models.Tree) (models.Tree, []models.FileItem, error) {
	tree := incoming.Clone()
	for i := range tree.Folders {
		tree.Folders[i].Name = strings.TrimSpace(tree.Folders[i].Name)
	}

	byID := make(map[string]models.FileItem, len(stored.Files))
	for _, f := range stored.Files {
		byID[f.ID] = f
	}

	seen := make(map[string]struct{}, len(tree.Files))
	for i, f := range tree.Files {
		orig, ok := byID[f.ID]
		if !ok {
			return models.Tree{}, nil, &domain.ValidationError{
				Message: fmt.Sprintf("file %q is not part of the stored tree; upload it first", f.ID),
			}
		}
		orig.Name = strings.TrimSpace(f.Name)
		orig.FolderID = f.FolderID
		tree.Files[i] = orig
		seen[f.ID] = struct{}{}
	}

	if err := checkFolderRemovals(stored, tree, seen); err != nil {
		return models.Tree{}, nil, err
	}

	var removed []models.FileItem
	for _, f := range stored.Files {
		if _, ok := seen[f.ID]; !ok {
			removed = append(removed, f)
		}
	}
	return tree, removed, nil
}

// checkFolderRemovals refuses a write that drops a stored folder together
// with any of its stored direct children. Folders are deleted one empty
// folder at a time, as with DeleteFolder.
func checkFolderRemovals(stored, tree models.Tree, keptFiles map[string]struct{}) error {
	keptFolders := make(map[string]struct{}, len(tree.Folders))
	for _, f := range tree.Folders {
		keptFolders[f.ID] = struct{}{}
	}

	for _, folder := range stored.Folders {
		if _, ok := keptFolders[folder.ID]; ok {
			continue
		}
		contents := models.GetItemsInFolder(stored.Folders, stored.Files, &folder.ID)
		nonEmpty := false
		for _, sub := range contents.Subfolders {
			if _, ok := keptFolders[sub.ID]; !ok {
				nonEmpty = true
			}
		}
		for _, f := range contents.Files {
			if _, ok := keptFiles[f.ID]; !ok {
				nonEmpty = true
			}
		}
		if nonEmpty {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("folder %q is not empty", folder.Name),
				ResourceType: "folder",
				ResourceID:   folder.ID,
			}
		}
	}
	return nil
}
