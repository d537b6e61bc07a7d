package foldertree

// Node is the nested view of a tree returned by the tree endpoint.
type Node struct {
	Folders []*FolderNode `json:"folders"`
	Files   []FileItem    `json:"files"`
}

// FolderNode is a folder with its children nested inside.
type FolderNode struct {
	ID       string        `json:"id"`
	Name     string        `json:"name"`
	ParentID *string       `json:"parentId"`
	Path     string        `json:"path"`
	Folders  []*FolderNode `json:"folders"`
	Files    []FileItem    `json:"files"`
}

// Build nests a flat tree. Items whose parent is missing, and folders that
// sit on a parent cycle, are attached to root so nothing disappears from the
// view of a damaged tree.
func Build(t Tree) *Node {
	nodes := make(map[string]*FolderNode, len(t.Folders))
	for _, f := range t.Folders {
		nodes[f.ID] = &FolderNode{
			ID:       f.ID,
			Name:     f.Name,
			ParentID: f.ParentID,
			Folders:  []*FolderNode{},
			Files:    []FileItem{},
		}
	}

	onCycle := cycleMembers(t.Folders)
	root := &Node{Folders: []*FolderNode{}, Files: []FileItem{}}
	for _, f := range t.Folders {
		node := nodes[f.ID]
		if f.ParentID != nil && !onCycle[f.ID] {
			if parent, ok := nodes[*f.ParentID]; ok {
				parent.Folders = append(parent.Folders, node)
				continue
			}
		}
		root.Folders = append(root.Folders, node)
	}

	for _, f := range t.Files {
		if f.FolderID != nil {
			if parent, ok := nodes[*f.FolderID]; ok {
				parent.Files = append(parent.Files, f)
				continue
			}
		}
		root.Files = append(root.Files, f)
	}

	assignPaths(root.Folders, "")
	return root
}

func assignPaths(folders []*FolderNode, prefix string) {
	for _, f := range folders {
		f.Path = f.Name
		if prefix != "" {
			f.Path = prefix + "/" + f.Name
		}
		assignPaths(f.Folders, f.Path)
	}
}

// cycleMembers returns the folders whose own parent chain leads back to them.
func cycleMembers(folders []FolderItem) map[string]bool {
	parents := make(map[string]*string, len(folders))
	for _, f := range folders {
		parents[f.ID] = f.ParentID
	}

	members := make(map[string]bool)
	for _, f := range folders {
		seen := map[string]struct{}{}
		for id := f.ParentID; id != nil; id = parents[*id] {
			if *id == f.ID {
				members[f.ID] = true
				break
			}
			if _, loop := seen[*id]; loop {
				break
			}
			seen[*id] = struct{}{}
		}
	}
	return members
}
