package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"assetdesk/internal/domain/models/foldertree"

	"gopkg.in/yaml.v3"
)

// write prints v as JSON or YAML. Text output is handled by each command.
func write(w io.Writer, format string, v interface{}) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		// Go through JSON so field names match the API (parentId, folderId, ...)
		raw, err := json.Marshal(v)
		if err != nil {
			return err
		}
		var generic interface{}
		if err := json.Unmarshal(raw, &generic); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(generic); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// printNode renders a nested tree as an indented listing
func printNode(w io.Writer, node *foldertree.Node) {
	for _, f := range node.Folders {
		printFolder(w, f, 0)
	}
	for _, f := range node.Files {
		printFile(w, f, 0)
	}
}

func printFolder(w io.Writer, f *foldertree.FolderNode, depth int) {
	fmt.Fprintf(w, "%s%s/  [%s]\n", strings.Repeat("  ", depth), f.Name, f.ID)
	for _, sub := range f.Folders {
		printFolder(w, sub, depth+1)
	}
	for _, file := range f.Files {
		printFile(w, file, depth+1)
	}
}

func printFile(w io.Writer, f foldertree.FileItem, depth int) {
	size := ""
	if f.Size != nil {
		size = fmt.Sprintf(" %d B", *f.Size)
	}
	fmt.Fprintf(w, "%s%s  [%s]%s\n", strings.Repeat("  ", depth), f.Name, f.ID, size)
}
