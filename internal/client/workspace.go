package client

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"assetdesk/internal/domain"
	"assetdesk/internal/domain/models/foldertree"
	"assetdesk/internal/optimistic"

	"github.com/google/uuid"
)

// errNoChange short-circuits a mutation that leaves the tree as it was
var errNoChange = errors.New("no change")

type treeKey struct {
	AssetID string
	Kind    foldertree.Kind
}

// Workspace edits trees locally first and then persists the whole tree.
// A failed write puts the previous tree back and returns the error.
type Workspace struct {
	client *Client
	trees  *optimistic.Store[treeKey, foldertree.Snapshot]
	newID  func() string
	logger *slog.Logger
}

// NewWorkspace creates an empty workspace backed by c
func NewWorkspace(c *Client, logger *slog.Logger) *Workspace {
	return &Workspace{
		client: c,
		trees: optimistic.NewStore[treeKey](func(s foldertree.Snapshot) foldertree.Snapshot {
			return foldertree.Snapshot{Tree: s.Tree.Clone(), Version: s.Version}
		}),
		newID:  uuid.NewString,
		logger: logger,
	}
}

// Load fetches a tree from the server and replaces the local copy
func (w *Workspace) Load(ctx context.Context, assetID string, kind foldertree.Kind) (foldertree.Snapshot, error) {
	snap, err := w.client.GetTree(ctx, assetID, kind)
	if err != nil {
		return foldertree.Snapshot{}, err
	}
	w.trees.Set(treeKey{assetID, kind}, *snap)
	return *snap, nil
}

// Tree returns the local copy, loading it on first use
func (w *Workspace) Tree(ctx context.Context, assetID string, kind foldertree.Kind) (foldertree.Snapshot, error) {
	if snap, ok := w.trees.Get(treeKey{assetID, kind}); ok {
		return snap, nil
	}
	return w.Load(ctx, assetID, kind)
}

// apply runs fn on the local tree, shows the result immediately and persists it.
func (w *Workspace) apply(ctx context.Context, assetID string, kind foldertree.Kind, fn func(t *foldertree.Tree) (bool, error)) (foldertree.Snapshot, error) {
	current, err := w.Tree(ctx, assetID, kind)
	if err != nil {
		return foldertree.Snapshot{}, err
	}

	key := treeKey{assetID, kind}
	snap, err := w.trees.Mutate(ctx, key,
		func(s foldertree.Snapshot) (foldertree.Snapshot, error) {
			changed, err := fn(&s.Tree)
			if err != nil {
				return s, err
			}
			if !changed {
				return s, errNoChange
			}
			return s, nil
		},
		func(ctx context.Context, s foldertree.Snapshot) (*foldertree.Snapshot, error) {
			return w.client.PutTree(ctx, assetID, kind, s.Tree, s.Version)
		},
	)
	if errors.Is(err, errNoChange) {
		return current, nil
	}
	if errors.Is(err, domain.ErrVersionConflict) {
		// Someone else wrote first; pick up their tree so the next attempt starts from it
		if _, loadErr := w.Load(ctx, assetID, kind); loadErr != nil {
			w.logger.Warn("failed to reload tree after conflict", "asset_id", assetID, "kind", kind, "error", loadErr)
		}
	}
	return snap, err
}

// CreateFolder creates a folder under parentID (nil = root)
func (w *Workspace) CreateFolder(ctx context.Context, assetID string, kind foldertree.Kind, name string, parentID *string) (foldertree.FolderItem, error) {
	var created foldertree.FolderItem
	_, err := w.apply(ctx, assetID, kind, func(t *foldertree.Tree) (bool, error) {
		f, err := t.CreateFolder(w.newID(), name, parentID)
		created = f
		return err == nil, err
	})
	return created, err
}

// Rename renames the folder or file with the given id
func (w *Workspace) Rename(ctx context.Context, assetID string, kind foldertree.Kind, id, name string) error {
	_, err := w.apply(ctx, assetID, kind, func(t *foldertree.Tree) (bool, error) {
		if _, err := t.Folder(id); err == nil {
			return t.RenameFolder(id, name)
		}
		return t.RenameFile(id, name)
	})
	return err
}

// MoveFile moves a file into folderID (nil = root)
func (w *Workspace) MoveFile(ctx context.Context, assetID string, kind foldertree.Kind, fileID string, folderID *string) error {
	_, err := w.apply(ctx, assetID, kind, func(t *foldertree.Tree) (bool, error) {
		return t.MoveFile(fileID, folderID)
	})
	return err
}

// MoveFolder moves a folder under targetID (nil = root)
func (w *Workspace) MoveFolder(ctx context.Context, assetID string, kind foldertree.Kind, folderID string, targetID *string) error {
	_, err := w.apply(ctx, assetID, kind, func(t *foldertree.Tree) (bool, error) {
		return t.MoveFolder(folderID, targetID)
	})
	return err
}

// DeleteFile removes a file. The server deletes its content once the tree is saved.
func (w *Workspace) DeleteFile(ctx context.Context, assetID string, kind foldertree.Kind, fileID string) error {
	_, err := w.apply(ctx, assetID, kind, func(t *foldertree.Tree) (bool, error) {
		_, err := t.DeleteFile(fileID)
		return err == nil, err
	})
	return err
}

// DeleteFolder removes an empty folder
func (w *Workspace) DeleteFolder(ctx context.Context, assetID string, kind foldertree.Kind, folderID string) error {
	_, err := w.apply(ctx, assetID, kind, func(t *foldertree.Tree) (bool, error) {
		_, err := t.DeleteFolder(folderID)
		return err == nil, err
	})
	return err
}

// Upload sends content to the server, which adds the file to the tree. The
// local copy is updated from the result.
func (w *Workspace) Upload(ctx context.Context, assetID string, kind foldertree.Kind, folderID *string, name string, content io.Reader) (foldertree.FileItem, error) {
	current, err := w.Tree(ctx, assetID, kind)
	if err != nil {
		return foldertree.FileItem{}, err
	}

	result, err := w.client.Upload(ctx, assetID, kind, folderID, name, content)
	if err != nil {
		return foldertree.FileItem{}, err
	}

	// Apply locally when no other write happened in between, otherwise refetch
	if result.Version == current.Version+1 {
		if _, err := current.Tree.AddFile(result.PreviewItem, result.FolderID); err == nil {
			current.Version = result.Version
			w.trees.Set(treeKey{assetID, kind}, current)
			return result.FileItem, nil
		}
	}
	if _, err := w.Load(ctx, assetID, kind); err != nil {
		w.logger.Warn("failed to reload tree after upload", "asset_id", assetID, "kind", kind, "error", err)
	}
	return result.FileItem, nil
}

// MoveTargets lists the folders folderID may be dropped into. Root is always
// a valid target and is not listed.
func (w *Workspace) MoveTargets(ctx context.Context, assetID string, kind foldertree.Kind, folderID string) ([]foldertree.FolderItem, error) {
	snap, err := w.Tree(ctx, assetID, kind)
	if err != nil {
		return nil, err
	}
	return foldertree.MoveTargets(folderID, snap.Tree.Folders), nil
}

// Children lists the direct children of folderID in the local copy
func (w *Workspace) Children(ctx context.Context, assetID string, kind foldertree.Kind, folderID *string) (foldertree.Contents, error) {
	snap, err := w.Tree(ctx, assetID, kind)
	if err != nil {
		return foldertree.Contents{}, err
	}
	return foldertree.GetItemsInFolder(snap.Tree.Folders, snap.Tree.Files, folderID), nil
}
