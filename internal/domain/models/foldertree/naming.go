package foldertree

import (
	"fmt"
	"strings"
)

// UniqueNewFolderName returns base if no sibling uses it, otherwise the first
// free "base (n)" for n = 1, 2, ... Comparison is case-insensitive.
func UniqueNewFolderName(base string, siblingNames []string) string {
	taken := make(map[string]struct{}, len(siblingNames))
	for _, name := range siblingNames {
		taken[strings.ToLower(name)] = struct{}{}
	}

	if _, exists := taken[strings.ToLower(base)]; !exists {
		return base
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s (%d)", base, i)
		if _, exists := taken[strings.ToLower(candidate)]; !exists {
			return candidate
		}
	}
}

func siblingFolderNames(folders []FolderItem, parentID *string, excludeID string) []string {
	var names []string
	for _, f := range folders {
		if f.ID != excludeID && sameParent(f.ParentID, parentID) {
			names = append(names, f.Name)
		}
	}
	return names
}
