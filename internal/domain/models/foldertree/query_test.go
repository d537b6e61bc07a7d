package foldertree

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

// chain builds A -> B -> C (C's parent is B, B's parent is A) plus a sibling D at root.
func chain() []FolderItem {
	return []FolderItem{
		{ID: "A", Name: "A"},
		{ID: "B", Name: "B", ParentID: ptr("A")},
		{ID: "C", Name: "C", ParentID: ptr("B")},
		{ID: "D", Name: "D"},
	}
}

func folderIDs(folders []FolderItem) []string {
	ids := make([]string, 0, len(folders))
	for _, f := range folders {
		ids = append(ids, f.ID)
	}
	return ids
}

func TestGetItemsInFolder(t *testing.T) {
	folders := chain()
	files := []FileItem{
		{PreviewItem: PreviewItem{ID: "f1", Name: "root.txt"}},
		{PreviewItem: PreviewItem{ID: "f2", Name: "a.txt"}, FolderID: ptr("A")},
		{PreviewItem: PreviewItem{ID: "f3", Name: "c.txt"}, FolderID: ptr("C")},
	}

	tests := []struct {
		name        string
		folderID    *string
		wantFolders []string
		wantFiles   int
	}{
		{name: "root", folderID: nil, wantFolders: []string{"A", "D"}, wantFiles: 1},
		{name: "immediate children only", folderID: ptr("A"), wantFolders: []string{"B"}, wantFiles: 1},
		{name: "leaf", folderID: ptr("C"), wantFolders: []string{}, wantFiles: 1},
		{name: "unknown id", folderID: ptr("nope"), wantFolders: []string{}, wantFiles: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GetItemsInFolder(folders, files, tt.folderID)
			assert.Equal(t, tt.wantFolders, folderIDs(got.Subfolders))
			assert.Len(t, got.Files, tt.wantFiles)
			assert.NotNil(t, got.Subfolders)
			assert.NotNil(t, got.Files)
		})
	}
}

func TestGetItemsInFolder_ExactlyMatchingParents(t *testing.T) {
	folders := chain()
	for _, parent := range []*string{nil, ptr("A"), ptr("B"), ptr("C"), ptr("D")} {
		got := GetItemsInFolder(folders, nil, parent)

		var want []string
		for _, f := range folders {
			if sameParent(f.ParentID, parent) {
				want = append(want, f.ID)
			}
		}
		assert.ElementsMatch(t, want, folderIDs(got.Subfolders))
	}
}

func TestIsFolderEmpty(t *testing.T) {
	folders := []FolderItem{
		{ID: "outer", Name: "outer"},
		{ID: "inner", Name: "inner", ParentID: ptr("outer")},
		{ID: "withFile", Name: "withFile"},
	}
	files := []FileItem{{PreviewItem: PreviewItem{ID: "f"}, FolderID: ptr("withFile")}}

	assert.False(t, IsFolderEmpty(folders, files, "outer"), "folder holding only an empty subfolder is not empty")
	assert.True(t, IsFolderEmpty(folders, files, "inner"))
	assert.False(t, IsFolderEmpty(folders, files, "withFile"))
	assert.True(t, IsFolderEmpty(folders, files, "missing"))
}

func TestCanMoveFolderTo(t *testing.T) {
	folders := chain()

	tests := []struct {
		name   string
		target *string
		source string
		want   bool
	}{
		{name: "root always allowed", target: nil, source: "A", want: true},
		{name: "into itself", target: ptr("A"), source: "A", want: false},
		{name: "into child", target: ptr("B"), source: "A", want: false},
		{name: "into grandchild", target: ptr("C"), source: "A", want: false},
		{name: "into sibling", target: ptr("D"), source: "A", want: true},
		{name: "child into ancestor", target: ptr("A"), source: "C", want: true},
		{name: "leaf into itself", target: ptr("C"), source: "C", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanMoveFolderTo(tt.target, tt.source, folders))
		})
	}
}

func TestCanMoveFolderTo_NeverSelf(t *testing.T) {
	for _, f := range chain() {
		assert.False(t, CanMoveFolderTo(ptr(f.ID), f.ID, chain()), f.ID)
	}
}

func TestDescendants_TerminatesOnCycle(t *testing.T) {
	folders := []FolderItem{
		{ID: "x", ParentID: ptr("y")},
		{ID: "y", ParentID: ptr("x")},
	}
	got := Descendants("x", folders)
	assert.Contains(t, got, "y")
	assert.Contains(t, got, "x")
}

func TestMoveTargets(t *testing.T) {
	got := MoveTargets("A", chain())
	assert.Equal(t, []string{"D"}, folderIDs(got))

	got = MoveTargets("C", chain())
	assert.Equal(t, []string{"A", "B", "D"}, folderIDs(got))
}

func TestPath(t *testing.T) {
	folders := chain()
	assert.Equal(t, "", Path(folders, nil))
	assert.Equal(t, "A", Path(folders, ptr("A")))
	assert.Equal(t, "A/B/C", Path(folders, ptr("C")))
}

func TestBuild(t *testing.T) {
	tree := Tree{
		Folders: chain(),
		Files: []FileItem{
			{PreviewItem: PreviewItem{ID: "f1"}, FolderID: ptr("C")},
			{PreviewItem: PreviewItem{ID: "f2"}},
			{PreviewItem: PreviewItem{ID: "orphan"}, FolderID: ptr("gone")},
		},
	}

	root := Build(tree)
	require.Len(t, root.Folders, 2)
	assert.Equal(t, "A", root.Folders[0].ID)
	assert.Len(t, root.Files, 2, "orphaned file is shown at root")

	c := root.Folders[0].Folders[0].Folders[0]
	assert.Equal(t, "C", c.ID)
	assert.Equal(t, "A/B/C", c.Path)
	require.Len(t, c.Files, 1)
	assert.Equal(t, "f1", c.Files[0].ID)
}

func TestBuild_CycleFoldersShownAtRoot(t *testing.T) {
	tree := Tree{
		Folders: []FolderItem{
			{ID: "a", Name: "a", ParentID: ptr("b")},
			{ID: "b", Name: "b", ParentID: ptr("a")},
			{ID: "c", Name: "c", ParentID: ptr("a")},
			{ID: "self", Name: "self", ParentID: ptr("self")},
		},
		Files: []FileItem{{PreviewItem: PreviewItem{ID: "f1"}, FolderID: ptr("c")}},
	}

	root := Build(tree)
	var ids []string
	for _, f := range root.Folders {
		ids = append(ids, f.ID)
	}
	assert.ElementsMatch(t, []string{"a", "b", "self"}, ids)

	var a *FolderNode
	for _, f := range root.Folders {
		if f.ID == "a" {
			a = f
		}
	}
	require.NotNil(t, a)
	require.Len(t, a.Folders, 1, "folders hanging off a cycle stay nested")
	assert.Equal(t, "c", a.Folders[0].ID)
	assert.Equal(t, "a/c", a.Folders[0].Path)
	require.Len(t, a.Folders[0].Files, 1)
}
