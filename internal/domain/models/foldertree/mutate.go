package foldertree

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"assetdesk/internal/config"
	"assetdesk/internal/domain"
)

func (t *Tree) folderIndex(id string) int {
	for i, f := range t.Folders {
		if f.ID == id {
			return i
		}
	}
	return -1
}

func (t *Tree) fileIndex(id string) int {
	for i, f := range t.Files {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// Folder returns the folder with the given id.
func (t *Tree) Folder(id string) (FolderItem, error) {
	i := t.folderIndex(id)
	if i < 0 {
		return FolderItem{}, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	return t.Folders[i], nil
}

// File returns the file with the given id.
func (t *Tree) File(id string) (FileItem, error) {
	i := t.fileIndex(id)
	if i < 0 {
		return FileItem{}, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	return t.Files[i], nil
}

// requireFolder checks a target location. Root always exists.
func (t *Tree) requireFolder(id *string) error {
	if id == nil {
		return nil
	}
	if t.folderIndex(*id) < 0 {
		return fmt.Errorf("folder %s: %w", *id, domain.ErrNotFound)
	}
	return nil
}

// checkName validates an already trimmed item name. Slashes are reserved as
// the separator of folder paths.
func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return &domain.ValidationError{Message: "name cannot be empty"}
	}
	if name != strings.TrimSpace(name) {
		return &domain.ValidationError{Message: "name cannot start or end with whitespace"}
	}
	if strings.Contains(name, "/") {
		return &domain.ValidationError{Message: "name cannot contain slashes"}
	}
	if utf8.RuneCountInString(name) > config.MaxItemNameLength {
		return &domain.ValidationError{Message: fmt.Sprintf("name exceeds %d characters", config.MaxItemNameLength)}
	}
	return nil
}

// checkSiblingName refuses a folder name already used (case-insensitively)
// by another folder under parentID.
func (t *Tree) checkSiblingName(name string, parentID *string, excludeID string) error {
	for _, f := range t.Folders {
		if f.ID != excludeID && sameParent(f.ParentID, parentID) && strings.EqualFold(f.Name, name) {
			return &domain.ConflictError{
				Message:      fmt.Sprintf("a folder named %q already exists in this location", f.Name),
				ResourceType: "folder",
				ResourceID:   f.ID,
			}
		}
	}
	return nil
}

// CreateFolder prepends a new folder under parentID. Name defaults to
// config.DefaultFolderName and is suffixed until unique among siblings.
func (t *Tree) CreateFolder(id, name string, parentID *string) (FolderItem, error) {
	if id == "" || t.folderIndex(id) >= 0 {
		return FolderItem{}, &domain.ValidationError{Message: fmt.Sprintf("invalid folder id %q", id)}
	}
	if err := t.requireFolder(parentID); err != nil {
		return FolderItem{}, err
	}

	base := strings.TrimSpace(name)
	if base == "" {
		base = config.DefaultFolderName
	}
	if err := checkName(base); err != nil {
		return FolderItem{}, err
	}

	folder := FolderItem{
		ID:       id,
		Name:     UniqueNewFolderName(base, siblingFolderNames(t.Folders, parentID, "")),
		ParentID: cloneID(parentID),
	}
	t.Folders = append([]FolderItem{folder}, t.Folders...)
	return folder, nil
}

// RenameFolder sets a folder's name. Returns false when the trimmed name is unchanged.
func (t *Tree) RenameFolder(id, name string) (bool, error) {
	i := t.folderIndex(id)
	if i < 0 {
		return false, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	name = strings.TrimSpace(name)
	if name == t.Folders[i].Name {
		return false, nil
	}
	if err := checkName(name); err != nil {
		return false, err
	}
	if err := t.checkSiblingName(name, t.Folders[i].ParentID, id); err != nil {
		return false, err
	}
	t.Folders[i].Name = name
	return true, nil
}

// RenameFile sets a file's name. Returns false when the trimmed name is unchanged.
func (t *Tree) RenameFile(id, name string) (bool, error) {
	i := t.fileIndex(id)
	if i < 0 {
		return false, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	name = strings.TrimSpace(name)
	if name == t.Files[i].Name {
		return false, nil
	}
	if err := checkName(name); err != nil {
		return false, err
	}
	t.Files[i].Name = name
	return true, nil
}

// MoveFile reparents a file. Returns false when it is already there.
func (t *Tree) MoveFile(id string, folderID *string) (bool, error) {
	i := t.fileIndex(id)
	if i < 0 {
		return false, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	if err := t.requireFolder(folderID); err != nil {
		return false, err
	}
	if sameParent(t.Files[i].FolderID, folderID) {
		return false, nil
	}
	t.Files[i].FolderID = cloneID(folderID)
	return true, nil
}

// MoveFolder reparents a folder, refusing moves into itself or a descendant.
func (t *Tree) MoveFolder(id string, targetID *string) (bool, error) {
	i := t.folderIndex(id)
	if i < 0 {
		return false, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	if err := t.requireFolder(targetID); err != nil {
		return false, err
	}
	if !CanMoveFolderTo(targetID, id, t.Folders) {
		return false, &domain.ValidationError{Message: "cannot move a folder into itself or one of its descendants"}
	}
	if sameParent(t.Folders[i].ParentID, targetID) {
		return false, nil
	}
	if err := t.checkSiblingName(t.Folders[i].Name, targetID, id); err != nil {
		return false, err
	}
	t.Folders[i].ParentID = cloneID(targetID)
	return true, nil
}

// DeleteFile removes a file and returns it.
func (t *Tree) DeleteFile(id string) (FileItem, error) {
	i := t.fileIndex(id)
	if i < 0 {
		return FileItem{}, fmt.Errorf("file %s: %w", id, domain.ErrNotFound)
	}
	removed := t.Files[i]
	t.Files = append(t.Files[:i], t.Files[i+1:]...)
	return removed, nil
}

// DeleteFolder removes an empty folder. Folders with direct children are refused.
func (t *Tree) DeleteFolder(id string) (FolderItem, error) {
	i := t.folderIndex(id)
	if i < 0 {
		return FolderItem{}, fmt.Errorf("folder %s: %w", id, domain.ErrNotFound)
	}
	if !IsFolderEmpty(t.Folders, t.Files, id) {
		return FolderItem{}, &domain.ConflictError{
			Message:      fmt.Sprintf("folder %q is not empty", t.Folders[i].Name),
			ResourceType: "folder",
			ResourceID:   id,
		}
	}
	removed := t.Folders[i]
	t.Folders = append(t.Folders[:i], t.Folders[i+1:]...)
	return removed, nil
}

// AddFile appends an uploaded file under folderID.
func (t *Tree) AddFile(item PreviewItem, folderID *string) (FileItem, error) {
	if item.ID == "" || t.fileIndex(item.ID) >= 0 {
		return FileItem{}, &domain.ValidationError{Message: fmt.Sprintf("invalid file id %q", item.ID)}
	}
	if err := t.requireFolder(folderID); err != nil {
		return FileItem{}, err
	}
	item.Name = strings.TrimSpace(item.Name)
	if err := checkName(item.Name); err != nil {
		return FileItem{}, err
	}

	file := FileItem{PreviewItem: item, FolderID: cloneID(folderID)}
	t.Files = append(t.Files, file)
	return file, nil
}
