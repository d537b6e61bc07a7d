package foldertree

import (
	"fmt"
	"strings"

	"assetdesk/internal/config"
	"assetdesk/internal/domain"
)

// Validate checks the tree invariants a client-built snapshot must satisfy
// before it is persisted: unique ids, valid names, folder names unique among
// siblings, every parentId/folderId referencing an existing folder, and an
// acyclic folder hierarchy.
func (t *Tree) Validate() error {
	return t.validate(nil)
}

// ValidateChange is Validate for a tree derived from prev. Names and sibling
// clashes that prev already had, on items that kept their name and location,
// are not reported, so trees stored before these rules stay writable.
func (t *Tree) ValidateChange(prev Tree) error {
	return t.validate(&prev)
}

func (t *Tree) validate(prev *Tree) error {
	if n := len(t.Folders) + len(t.Files); n > config.MaxTreeItems {
		return invalid("tree has %d items (max %d)", n, config.MaxTreeItems)
	}

	var (
		oldFolders map[string]FolderItem
		oldFiles   map[string]FileItem
	)
	if prev != nil {
		oldFolders = make(map[string]FolderItem, len(prev.Folders))
		for _, f := range prev.Folders {
			oldFolders[f.ID] = f
		}
		oldFiles = make(map[string]FileItem, len(prev.Files))
		for _, f := range prev.Files {
			oldFiles[f.ID] = f
		}
	}
	folderKept := func(f FolderItem) bool {
		old, ok := oldFolders[f.ID]
		return ok && old.Name == f.Name && sameParent(old.ParentID, f.ParentID)
	}

	parents := make(map[string]*string, len(t.Folders))
	for _, f := range t.Folders {
		if f.ID == "" {
			return invalid("folder with empty id")
		}
		if _, dup := parents[f.ID]; dup {
			return invalid("duplicate folder id %s", f.ID)
		}
		if !folderKept(f) {
			if err := checkName(f.Name); err != nil {
				return invalid("folder %s: %v", f.ID, err)
			}
		}
		parents[f.ID] = f.ParentID
	}

	for _, f := range t.Folders {
		if f.ParentID == nil {
			continue
		}
		if _, ok := parents[*f.ParentID]; !ok {
			return invalid("folder %s references missing parent %s", f.ID, *f.ParentID)
		}
	}

	if err := t.checkSiblingNames(folderKept); err != nil {
		return err
	}

	fileIDs := make(map[string]struct{}, len(t.Files))
	for _, f := range t.Files {
		if f.ID == "" {
			return invalid("file with empty id")
		}
		if _, dup := fileIDs[f.ID]; dup {
			return invalid("duplicate file id %s", f.ID)
		}
		fileIDs[f.ID] = struct{}{}
		if old, ok := oldFiles[f.ID]; !ok || old.Name != f.Name {
			if err := checkName(f.Name); err != nil {
				return invalid("file %s: %v", f.ID, err)
			}
		}
		if f.FolderID != nil {
			if _, ok := parents[*f.FolderID]; !ok {
				return invalid("file %s references missing folder %s", f.ID, *f.FolderID)
			}
		}
	}

	if id, ok := findCycle(parents); ok {
		return invalid("folder %s is its own ancestor", id)
	}
	return nil
}

// checkSiblingNames reports two folders sharing a name (case-insensitively)
// under one parent. A clash between folders that all satisfy kept is
// tolerated.
func (t *Tree) checkSiblingNames(kept func(FolderItem) bool) error {
	type key struct {
		parent string
		name   string
	}
	groups := make(map[key][]FolderItem, len(t.Folders))
	for _, f := range t.Folders {
		k := key{name: strings.ToLower(f.Name)}
		if f.ParentID != nil {
			k.parent = *f.ParentID
		}
		groups[k] = append(groups[k], f)
	}

	for _, f := range t.Folders {
		k := key{name: strings.ToLower(f.Name)}
		if f.ParentID != nil {
			k.parent = *f.ParentID
		}
		group := groups[k]
		if len(group) < 2 || kept(f) {
			continue
		}
		for _, other := range group {
			if other.ID != f.ID {
				return &domain.ConflictError{
					Message:      fmt.Sprintf("a folder named %q already exists in this location", other.Name),
					ResourceType: "folder",
					ResourceID:   other.ID,
				}
			}
		}
	}
	return nil
}

// findCycle walks every parent chain once, colouring folders as it goes.
func findCycle(parents map[string]*string) (string, bool) {
	const (
		unvisited = iota
		inProgress
		done
	)
	state := make(map[string]int, len(parents))

	for start := range parents {
		var chain []string
		id := start
		for {
			if state[id] == done {
				break
			}
			if state[id] == inProgress {
				return id, true
			}
			state[id] = inProgress
			chain = append(chain, id)
			parent := parents[id]
			if parent == nil {
				break
			}
			id = *parent
		}
		for _, c := range chain {
			state[c] = done
		}
	}
	return "", false
}

func invalid(format string, args ...any) error {
	return &domain.ValidationError{Message: fmt.Sprintf(format, args...)}
}
