package services

import (
	"context"
	"io"

	"assetdesk/internal/domain/models/foldertree"
	"assetdesk/internal/httputil"
)

// FolderTreeService is the single entry point for folder tree mutations.
// Both the docs and the gallery surfaces go through it.
type FolderTreeService interface {
	// GetTree returns the normalized tree and its version
	GetTree(ctx context.Context, ref TreeRef) (*foldertree.Snapshot, error)

	// GetNestedTree returns the tree with folders nested
	GetNestedTree(ctx context.Context, ref TreeRef) (*foldertree.Node, error)

	// ListChildren lists the immediate subfolders and files of a folder (nil = root)
	ListChildren(ctx context.Context, ref TreeRef, folderID *string) (*FolderContents, error)

	// ReplaceTree persists a whole client-built snapshot after validating it
	ReplaceTree(ctx context.Context, req *ReplaceTreeRequest) (*foldertree.Snapshot, error)

	// CreateFolder creates a folder with a sibling-unique name
	CreateFolder(ctx context.Context, req *CreateFolderRequest) (*FolderResult, error)

	// UpdateFolder renames and/or moves a folder
	UpdateFolder(ctx context.Context, req *UpdateFolderRequest) (*FolderResult, error)

	// DeleteFolder deletes an empty folder
	DeleteFolder(ctx context.Context, ref TreeRef, folderID string) (int64, error)

	// UpdateFile renames and/or moves a file
	UpdateFile(ctx context.Context, req *UpdateFileRequest) (*FileResult, error)

	// DeleteFile removes a file from the tree and its stored content
	DeleteFile(ctx context.Context, ref TreeRef, fileID string) (int64, error)

	// UploadFile stores content and places the file in the tree
	UploadFile(ctx context.Context, req *UploadFileRequest) (*FileResult, error)
}

// TreeRef addresses one tree of one asset on behalf of a user.
type TreeRef struct {
	UserID  string          `json:"-"`
	AssetID string          `json:"-"`
	Kind    foldertree.Kind `json:"-"`
}

// ReplaceTreeRequest carries a whole snapshot. ExpectedVersion comes from If-Match.
type ReplaceTreeRequest struct {
	TreeRef
	Tree            foldertree.Tree `json:"tree"`
	ExpectedVersion int64           `json:"version"`
}

// CreateFolderRequest represents a folder creation request
type CreateFolderRequest struct {
	TreeRef
	Name     string  `json:"name"`
	ParentID *string `json:"parent_id,omitempty"` // null for root
}

// UpdateFolderRequest represents a folder rename and/or move.
// ParentID is tri-state: absent = keep, null = move to root, value = move there.
type UpdateFolderRequest struct {
	TreeRef
	FolderID string                  `json:"-"`
	Name     *string                 `json:"name,omitempty"`
	ParentID httputil.OptionalString `json:"parent_id"`
}

// UpdateFileRequest represents a file rename and/or move. FolderID is tri-state.
type UpdateFileRequest struct {
	TreeRef
	FileID   string                  `json:"-"`
	Name     *string                 `json:"name,omitempty"`
	FolderID httputil.OptionalString `json:"folder_id"`
}

// UploadFileRequest carries an upload's content and placement.
type UploadFileRequest struct {
	TreeRef
	FolderID    *string
	Name        string
	ContentType string
	Body        io.Reader
}

// FolderContents represents a folder with its immediate children
type FolderContents struct {
	Folder  *foldertree.FolderItem  `json:"folder,omitempty"` // null for root
	Path    string                  `json:"path"`
	Folders []foldertree.FolderItem `json:"folders"`
	Files   []foldertree.FileItem   `json:"files"`
	Version int64                   `json:"version"`
}

// FolderResult is a folder after a mutation plus the tree version it produced.
type FolderResult struct {
	foldertree.FolderItem
	Path    string `json:"path"`
	Version int64  `json:"version"`
}

// FileResult is a file after a mutation plus the tree version it produced.
type FileResult struct {
	foldertree.FileItem
	Version int64 `json:"version"`
}
