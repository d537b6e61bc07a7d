package foldertree

import (
	"context"
	"path/filepath"
	"strings"

	models "assetdesk/internal/domain/models/foldertree"
	svc "assetdesk/internal/domain/services"
)

// UpdateFile renames and/or moves a file
func (s *treeService) UpdateFile(ctx context.Context, req *svc.UpdateFileRequest) (*svc.FileResult, error) {
	if err := validateUpdateFileRequest(req); err != nil {
		return nil, err
	}

	snap, err := s.mutate(ctx, req.TreeRef, func(tree *models.Tree) (bool, error) {
		changed := false
		if req.Name != nil {
			renamed, err := tree.RenameFile(req.FileID, *req.Name)
			if err != nil {
				return false, err
			}
			changed = changed || renamed
		}

		if req.FolderID.Present {
			moved, err := tree.MoveFile(req.FileID, req.FolderID.OrNil())
			if err != nil {
				return false, err
			}
			changed = changed || moved
		}

		if !changed {
			_, err := tree.File(req.FileID)
			return false, err
		}
		return true, nil
	})
	if err != nil {
		return nil, err
	}

	file, err := snap.Tree.File(req.FileID)
	if err != nil {
		return nil, err
	}

	s.logger.Info("file updated",
		"asset_id", req.AssetID,
		"kind", req.Kind,
		"id", file.ID,
		"name", file.Name,
		"folder_id", file.FolderID,
	)

	return &svc.FileResult{FileItem: file, Version: snap.Version}, nil
}

// DeleteFile removes a file from the tree, then its stored content
func (s *treeService) DeleteFile(ctx context.Context, ref svc.TreeRef, fileID string) (int64, error) {
	var removed models.FileItem
	snap, err := s.mutate(ctx, ref, func(tree *models.Tree) (bool, error) {
		file, err := tree.DeleteFile(fileID)
		if err != nil {
			return false, err
		}
		removed = file
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	s.discardBlobs(ctx, ref, []models.FileItem{removed})

	s.logger.Info("file deleted",
		"asset_id", ref.AssetID,
		"kind", ref.Kind,
		"id", removed.ID,
		"name", removed.Name,
	)

	return snap.Version, nil
}

// UploadFile stores the content, then appends the file to the tree. If the
// tree write fails the stored content is deleted again.
func (s *treeService) UploadFile(ctx context.Context, req *svc.UploadFileRequest) (*svc.FileResult, error) {
	req.Name = strings.TrimSpace(filepath.Base(filepath.ToSlash(req.Name)))
	if req.Name == "." || req.Name == "/" {
		req.Name = ""
	}
	if err := validateUploadRequest(req); err != nil {
		return nil, err
	}
	if err := s.access(ctx, req.TreeRef); err != nil {
		return nil, err
	}

	// Fail before storing anything when the target folder is gone
	if req.FolderID != nil {
		current, err := s.assetRepo.GetTree(ctx, req.AssetID, req.Kind)
		if err != nil {
			return nil, err
		}
		if _, err := current.Tree.Folder(*req.FolderID); err != nil {
			return nil, err
		}
	}

	blob, err := s.blobs.Put(ctx, &svc.PutBlobRequest{
		AssetID:     req.AssetID,
		Kind:        req.Kind,
		Name:        req.Name,
		ContentType: req.ContentType,
		Body:        req.Body,
	})
	if err != nil {
		return nil, err
	}

	var added models.FileItem
	snap, err := s.mutate(ctx, req.TreeRef, func(tree *models.Tree) (bool, error) {
		file, err := tree.AddFile(blob.PreviewItem, req.FolderID)
		if err != nil {
			return false, err
		}
		added = file
		return true, nil
	})
	if err != nil {
		s.discardBlobs(ctx, req.TreeRef, []models.FileItem{{PreviewItem: blob.PreviewItem}})
		return nil, err
	}

	s.logger.Info("file uploaded",
		"asset_id", req.AssetID,
		"kind", req.Kind,
		"id", added.ID,
		"name", added.Name,
		"folder_id", added.FolderID,
		"mime_type", added.MimeType,
	)

	return &svc.FileResult{FileItem: added, Version: snap.Version}, nil
}
