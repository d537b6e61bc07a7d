package main

import (
	"encoding/json"
	"testing"

	"assetdesk/internal/domain/models/foldertree"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleMetadata(t *testing.T) {
	raw, err := sampleMetadata("http://localhost:8080")
	require.NoError(t, err)

	var metadata map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &metadata))

	docs := foldertree.NormalizeMetadata(metadata, foldertree.KindDocs)
	require.NoError(t, docs.Validate())
	assert.Len(t, docs.Folders, 3)
	assert.Len(t, docs.Files, 2)

	jan, err := docs.File("d-jan")
	require.NoError(t, err)
	assert.Equal(t, "Invoices/2024", foldertree.Path(docs.Folders, jan.FolderID))
	assert.Equal(t, "http://localhost:8080/api/files/d-jan", jan.URL)

	gallery := foldertree.NormalizeMetadata(metadata, foldertree.KindGallery)
	require.NoError(t, gallery.Validate())
	assert.Empty(t, gallery.Folders)
	require.Len(t, gallery.Files, 2)
	for _, f := range gallery.Files {
		assert.Nil(t, f.FolderID)
	}
}
