package foldertree

import (
	"encoding/json"
	"fmt"

	"assetdesk/internal/domain"
)

// Kind selects which folder tree of an asset is addressed. It doubles as the
// metadata key the tree is stored under and as the upload type.
type Kind string

const (
	KindDocs    Kind = "docs"
	KindGallery Kind = "gallery"
)

// Kinds lists every supported tree kind.
var Kinds = []Kind{KindDocs, KindGallery}

// ParseKind converts a path segment into a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindDocs, KindGallery:
		return Kind(s), nil
	default:
		return "", &domain.ValidationError{Message: fmt.Sprintf("unknown tree kind %q (supported: docs, gallery)", s)}
	}
}

// PreviewItem is the descriptor returned by the upload collaborator.
type PreviewItem struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	Size      *int64 `json:"size,omitempty"`
	MimeType  string `json:"mimeType,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
}

// FolderItem is a folder in the tree. ParentID nil = root level.
type FolderItem struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	ParentID *string `json:"parentId"`
}

// FileItem is an uploaded file placed in the tree. FolderID nil = root level.
type FileItem struct {
	PreviewItem
	FolderID *string `json:"folderId"`
}

// Tree is the {folders, files} container embedded in an asset's metadata.
type Tree struct {
	Folders []FolderItem `json:"folders"`
	Files   []FileItem   `json:"files"`
}

// Empty returns a tree with non-nil empty slices.
func Empty() Tree {
	return Tree{Folders: []FolderItem{}, Files: []FileItem{}}
}

// MarshalJSON always writes arrays, never null.
func (t Tree) MarshalJSON() ([]byte, error) {
	type plain Tree
	out := plain(t)
	if out.Folders == nil {
		out.Folders = []FolderItem{}
	}
	if out.Files == nil {
		out.Files = []FileItem{}
	}
	return json.Marshal(out)
}

// Clone returns a deep copy, so a snapshot survives mutation of the original.
func (t Tree) Clone() Tree {
	out := Tree{
		Folders: make([]FolderItem, len(t.Folders)),
		Files:   make([]FileItem, len(t.Files)),
	}
	for i, f := range t.Folders {
		f.ParentID = cloneID(f.ParentID)
		out.Folders[i] = f
	}
	for i, f := range t.Files {
		f.FolderID = cloneID(f.FolderID)
		if f.Size != nil {
			size := *f.Size
			f.Size = &size
		}
		out.Files[i] = f
	}
	return out
}

func cloneID(id *string) *string {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

// sameParent compares two ownership references, nil meaning root.
func sameParent(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}
