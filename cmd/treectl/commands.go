package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"assetdesk/internal/client"
	"assetdesk/internal/domain/models/foldertree"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// target is the tree addressed by the global flags
type target struct {
	ws      *client.Workspace
	client  *client.Client
	assetID string
	kind    foldertree.Kind
	format  string
}

func newTarget(ctx *cli.Context) (*target, error) {
	assetID := ctx.String("asset")
	if assetID == "" {
		return nil, errors.New("--asset is required")
	}
	kind, err := foldertree.ParseKind(ctx.String("kind"))
	if err != nil {
		return nil, err
	}

	c := client.New(ctx.String("server"), ctx.String("token"))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	return &target{
		ws:      client.NewWorkspace(c, logger),
		client:  c,
		assetID: assetID,
		kind:    kind,
		format:  ctx.String("format"),
	}, nil
}

// optionalID turns an empty flag into root
func optionalID(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

var normalizeCmd = &cli.Command{
	Name:      "normalize",
	Usage:     "Normalize a stored tree offline and check it",
	ArgsUsage: "FILE",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "raw",
			Usage: "FILE holds the tree value itself instead of the asset metadata object",
		},
		&cli.StringFlag{
			Name:  "input-format",
			Value: "json",
			Usage: "Input format: json or yaml",
		},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errors.New("expected exactly one FILE argument (use - for stdin)")
		}
		kind, err := foldertree.ParseKind(ctx.String("kind"))
		if err != nil {
			return err
		}

		data, err := readInput(ctx.Args().First())
		if err != nil {
			return err
		}
		if ctx.String("input-format") == "yaml" {
			if data, err = yamlToJSON(data); err != nil {
				return err
			}
		}

		var tree foldertree.Tree
		if ctx.Bool("raw") {
			tree = foldertree.Normalize(data)
		} else {
			var metadata map[string]json.RawMessage
			if err := json.Unmarshal(data, &metadata); err != nil {
				return fmt.Errorf("metadata must be a JSON object: %w", err)
			}
			tree = foldertree.NormalizeMetadata(metadata, kind)
		}

		format := ctx.String("format")
		if format == "text" {
			printNode(ctx.App.Writer, foldertree.Build(tree))
		} else if err := write(ctx.App.Writer, format, tree); err != nil {
			return err
		}

		if err := tree.Validate(); err != nil {
			return cli.Exit(fmt.Sprintf("tree is not valid: %v", err), 2)
		}
		return nil
	},
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name)
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v interface{}
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	return json.Marshal(v)
}

var treeCmd = &cli.Command{
	Name:  "tree",
	Usage: "Show the whole tree",
	Action: func(ctx *cli.Context) error {
		t, err := newTarget(ctx)
		if err != nil {
			return err
		}
		node, err := t.client.GetNestedTree(ctx.Context, t.assetID, t.kind)
		if err != nil {
			return err
		}
		if t.format == "text" {
			printNode(ctx.App.Writer, node)
			return nil
		}
		return write(ctx.App.Writer, t.format, node)
	},
}

var lsCmd = &cli.Command{
	Name:  "ls",
	Usage: "List the direct children of a folder",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "folder", Usage: "Folder ID (default: root)"},
	},
	Action: func(ctx *cli.Context) error {
		t, err := newTarget(ctx)
		if err != nil {
			return err
		}
		contents, err := t.ws.Children(ctx.Context, t.assetID, t.kind, optionalID(ctx.String("folder")))
		if err != nil {
			return err
		}
		if t.format != "text" {
			return write(ctx.App.Writer, t.format, contents)
		}
		for _, f := range contents.Subfolders {
			fmt.Fprintf(ctx.App.Writer, "%s/  [%s]\n", f.Name, f.ID)
		}
		for _, f := range contents.Files {
			printFile(ctx.App.Writer, f, 0)
		}
		return nil
	},
}

var mkdirCmd = &cli.Command{
	Name:      "mkdir",
	Usage:     "Create a folder",
	ArgsUsage: "[NAME]",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "parent", Usage: "Parent folder ID (default: root)"},
	},
	Action: func(ctx *cli.Context) error {
		t, err := newTarget(ctx)
		if err != nil {
			return err
		}
		folder, err := t.ws.CreateFolder(ctx.Context, t.assetID, t.kind, ctx.Args().First(), optionalID(ctx.String("parent")))
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "created %q [%s]\n", folder.Name, folder.ID)
		return nil
	},
}

var renameCmd = &cli.Command{
	Name:      "rename",
	Usage:     "Rename a folder or file",
	ArgsUsage: "ID NAME",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 2 {
			return errors.New("expected ID and NAME")
		}
		t, err := newTarget(ctx)
		if err != nil {
			return err
		}
		return t.ws.Rename(ctx.Context, t.assetID, t.kind, ctx.Args().Get(0), ctx.Args().Get(1))
	},
}

var mvCmd = &cli.Command{
	Name:      "mv",
	Usage:     "Move a folder or file",
	ArgsUsage: "ID",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "to", Usage: "Target folder ID (default: root)"},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errors.New("expected ID")
		}
		t, err := newTarget(ctx)
		if err != nil {
			return err
		}
		id := ctx.Args().First()
		to := optionalID(ctx.String("to"))

		snap, err := t.ws.Tree(ctx.Context, t.assetID, t.kind)
		if err != nil {
			return err
		}
		if _, err := snap.Tree.Folder(id); err == nil {
			return t.ws.MoveFolder(ctx.Context, t.assetID, t.kind, id, to)
		}
		return t.ws.MoveFile(ctx.Context, t.assetID, t.kind, id, to)
	},
}

var rmCmd = &cli.Command{
	Name:      "rm",
	Usage:     "Delete a file or an empty folder",
	ArgsUsage: "ID",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errors.New("expected ID")
		}
		t, err := newTarget(ctx)
		if err != nil {
			return err
		}
		id := ctx.Args().First()

		snap, err := t.ws.Tree(ctx.Context, t.assetID, t.kind)
		if err != nil {
			return err
		}
		if _, err := snap.Tree.Folder(id); err == nil {
			return t.ws.DeleteFolder(ctx.Context, t.assetID, t.kind, id)
		}
		return t.ws.DeleteFile(ctx.Context, t.assetID, t.kind, id)
	},
}

var uploadCmd = &cli.Command{
	Name:      "upload",
	Usage:     "Upload a local file",
	ArgsUsage: "PATH",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "folder", Usage: "Target folder ID (default: root)"},
		&cli.StringFlag{Name: "name", Usage: "Name in the tree (default: base name of PATH)"},
	},
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errors.New("expected PATH")
		}
		t, err := newTarget(ctx)
		if err != nil {
			return err
		}

		path := ctx.Args().First()
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		name := ctx.String("name")
		if name == "" {
			name = filepath.Base(path)
		}

		file, err := t.ws.Upload(ctx.Context, t.assetID, t.kind, optionalID(ctx.String("folder")), name, f)
		if err != nil {
			return err
		}
		fmt.Fprintf(ctx.App.Writer, "uploaded %q [%s] %s\n", file.Name, file.ID, file.URL)
		return nil
	},
}

var targetsCmd = &cli.Command{
	Name:      "targets",
	Usage:     "List folders a folder can be moved into (root is always allowed)",
	ArgsUsage: "ID",
	Action: func(ctx *cli.Context) error {
		if ctx.NArg() != 1 {
			return errors.New("expected ID")
		}
		t, err := newTarget(ctx)
		if err != nil {
			return err
		}
		snap, err := t.ws.Tree(ctx.Context, t.assetID, t.kind)
		if err != nil {
			return err
		}
		folders, err := t.ws.MoveTargets(ctx.Context, t.assetID, t.kind, ctx.Args().First())
		if err != nil {
			return err
		}
		if t.format != "text" {
			return write(ctx.App.Writer, t.format, folders)
		}
		for _, f := range folders {
			fmt.Fprintf(ctx.App.Writer, "%s  [%s]\n", foldertree.Path(snap.Tree.Folders, &f.ID), f.ID)
		}
		return nil
	},
}
