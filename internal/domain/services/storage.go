package services

import (
	"context"
	"io"

	"assetdesk/internal/domain/models/foldertree"
)

// BlobInfo describes stored upload content.
type BlobInfo struct {
	foldertree.PreviewItem
	AssetID string          `json:"assetId"`
	Kind    foldertree.Kind `json:"kind"`
}

// PutBlobRequest is the input of BlobStore.Put.
type PutBlobRequest struct {
	AssetID     string
	Kind        foldertree.Kind
	Name        string
	ContentType string // sniffed from content when empty
	Body        io.Reader
}

// BlobStore is the upload collaborator: it keeps file content and hands back
// the descriptor that ends up in the tree.
type BlobStore interface {
	// Put stores content and returns its descriptor
	Put(ctx context.Context, req *PutBlobRequest) (*BlobInfo, error)

	// Open returns the descriptor and a reader for the content (caller closes)
	Open(ctx context.Context, id string) (*BlobInfo, io.ReadCloser, error)

	// Delete removes content. Deleting an unknown id is not an error.
	Delete(ctx context.Context, id string) error
}
