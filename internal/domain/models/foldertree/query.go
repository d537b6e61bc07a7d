package foldertree

import (
	"slices"
	"strings"
)

// Contents holds the immediate children of one folder.
type Contents struct {
	Subfolders []FolderItem `json:"folders"`
	Files      []FileItem   `json:"files"`
}

// GetItemsInFolder returns the direct subfolders and files of folderID (nil = root).
// Descendants further down are not included. An unknown id yields empty slices.
func GetItemsInFolder(folders []FolderItem, files []FileItem, folderID *string) Contents {
	contents := Contents{
		Subfolders: []FolderItem{},
		Files:      []FileItem{},
	}
	for _, f := range folders {
		if sameParent(f.ParentID, folderID) {
			contents.Subfolders = append(contents.Subfolders, f)
		}
	}
	for _, f := range files {
		if sameParent(f.FolderID, folderID) {
			contents.Files = append(contents.Files, f)
		}
	}
	return contents
}

// IsFolderEmpty reports whether folderID has no direct subfolders and no direct files.
func IsFolderEmpty(folders []FolderItem, files []FileItem, folderID string) bool {
	for _, f := range folders {
		if f.ParentID != nil && *f.ParentID == folderID {
			return false
		}
	}
	for _, f := range files {
		if f.FolderID != nil && *f.FolderID == folderID {
			return false
		}
	}
	return true
}

// CanMoveFolderTo reports whether sourceID may be reparented under targetID
// without creating a cycle. Moving to root (nil) is always allowed.
func CanMoveFolderTo(targetID *string, sourceID string, folders []FolderItem) bool {
	if targetID == nil {
		return true
	}
	if *targetID == sourceID {
		return false
	}
	_, isDescendant := Descendants(sourceID, folders)[*targetID]
	return !isDescendant
}

// Descendants collects every folder transitively parented by sourceID.
// The visited set keeps the walk finite even on corrupted, cyclic input.
func Descendants(sourceID string, folders []FolderItem) map[string]struct{} {
	children := make(map[string][]string, len(folders))
	for _, f := range folders {
		if f.ParentID != nil {
			children[*f.ParentID] = append(children[*f.ParentID], f.ID)
		}
	}

	found := make(map[string]struct{})
	var walk func(id string)
	walk = func(id string) {
		for _, child := range children[id] {
			if _, seen := found[child]; seen {
				continue
			}
			found[child] = struct{}{}
			walk(child)
		}
	}
	walk(sourceID)
	return found
}

// MoveTargets lists the folders sourceID may be dropped into, root excluded.
func MoveTargets(sourceID string, folders []FolderItem) []FolderItem {
	excluded := Descendants(sourceID, folders)
	excluded[sourceID] = struct{}{}

	targets := make([]FolderItem, 0, len(folders))
	for _, f := range folders {
		if _, skip := excluded[f.ID]; !skip {
			targets = append(targets, f)
		}
	}
	return targets
}

// Path computes the display path ("A/B/C") of a folder. Root is "".
func Path(folders []FolderItem, folderID *string) string {
	if folderID == nil {
		return ""
	}
	byID := make(map[string]FolderItem, len(folders))
	for _, f := range folders {
		byID[f.ID] = f
	}

	var segments []string
	seen := make(map[string]struct{})
	current := folderID
	for current != nil {
		if _, loop := seen[*current]; loop {
			break
		}
		seen[*current] = struct{}{}
		folder, ok := byID[*current]
		if !ok {
			break
		}
		segments = append(segments, folder.Name)
		current = folder.ParentID
	}

	slices.Reverse(segments)
	return strings.Join(segments, "/")
}
