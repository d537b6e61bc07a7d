package main

import (
	"log"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatalln(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "treectl",
		Usage: "Inspect and edit asset folder trees",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "server",
				Value:   "http://localhost:8080",
				Usage:   "API base URL",
				EnvVars: []string{"ASSETDESK_SERVER"},
			},
			&cli.StringFlag{
				Name:    "token",
				Usage:   "Bearer token",
				EnvVars: []string{"ASSETDESK_TOKEN"},
			},
			&cli.StringFlag{
				Name:    "asset",
				Usage:   "Asset ID",
				EnvVars: []string{"ASSETDESK_ASSET"},
			},
			&cli.StringFlag{
				Name:    "kind",
				Value:   "docs",
				Usage:   "Tree kind: docs or gallery",
				EnvVars: []string{"ASSETDESK_KIND"},
			},
			&cli.StringFlag{
				Name:  "format",
				Value: "text",
				Usage: "Output format: text, json or yaml",
			},
		},
		Commands: []*cli.Command{
			normalizeCmd,
			treeCmd,
			lsCmd,
			mkdirCmd,
			renameCmd,
			mvCmd,
			rmCmd,
			uploadCmd,
			targetsCmd,
		},
	}
}
