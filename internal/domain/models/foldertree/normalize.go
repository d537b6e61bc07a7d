package foldertree

import (
	"bytes"
	"encoding/json"
)

// Normalize converts a stored metadata value into a Tree.
//
// Legacy assets stored a flat array of files with no folders; those load as
// root-level files. Objects are read as {folders, files}, with any field that
// is not an array treated as empty. Missing or null input gives an empty tree.
// Entries that are not objects or have no id are dropped.
//
// Normalize is idempotent: normalizing the JSON of a normalized tree is a no-op.
func Normalize(raw json.RawMessage) Tree {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return Empty()
	}

	switch trimmed[0] {
	case '[':
		files := decodeFiles(trimmed)
		for i := range files {
			files[i].FolderID = nil
		}
		return Tree{Folders: []FolderItem{}, Files: files}
	case '{':
		var shape struct {
			Folders json.RawMessage `json:"folders"`
			Files   json.RawMessage `json:"files"`
		}
		if err := json.Unmarshal(trimmed, &shape); err != nil {
			return Empty()
		}
		return Tree{
			Folders: decodeFolders(shape.Folders),
			Files:   decodeFiles(shape.Files),
		}
	default:
		return Empty()
	}
}

// NormalizeMetadata picks the tree of the given kind out of an asset's metadata.
func NormalizeMetadata(metadata map[string]json.RawMessage, kind Kind) Tree {
	return Normalize(metadata[string(kind)])
}

func decodeFolders(raw json.RawMessage) []FolderItem {
	folders := []FolderItem{}
	for _, elem := range arrayElements(raw) {
		var f FolderItem
		if err := json.Unmarshal(elem, &f); err != nil || f.ID == "" {
			continue
		}
		f.ParentID = nullIfBlank(f.ParentID)
		folders = append(folders, f)
	}
	return folders
}

func decodeFiles(raw json.RawMessage) []FileItem {
	files := []FileItem{}
	for _, elem := range arrayElements(raw) {
		var f FileItem
		if err := json.Unmarshal(elem, &f); err != nil || f.ID == "" {
			continue
		}
		f.FolderID = nullIfBlank(f.FolderID)
		files = append(files, f)
	}
	return files
}

func arrayElements(raw json.RawMessage) []json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil
	}
	return elems
}

func nullIfBlank(id *string) *string {
	if id == nil || *id == "" {
		return nil
	}
	return id
}
