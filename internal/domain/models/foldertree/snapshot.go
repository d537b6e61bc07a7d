package foldertree

// Snapshot is a tree together with the version it was read at. Writers pass
// the version back so a stale snapshot cannot overwrite a newer one.
type Snapshot struct {
	Tree    Tree  `json:"tree"`
	Version int64 `json:"version"`
}
