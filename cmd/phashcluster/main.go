package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/imagedupe/phashcluster/cmd/phashcluster/commands"
)

func main() {
	app := &cli.App{
		Name:    "phashcluster",
		Version: "1.0.0",
		Usage:   "Perceptual-hash fingerprinting and parallel clustering for image corpora",
		Commands: []*cli.Command{
			{
				Name:  "hash",
				Usage: "Fingerprint every image under a directory into a hashes store",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "path",
						Aliases:  []string{"p"},
						Usage:    "Directory to scan for images",
						Required: true,
					},
					&cli.StringFlag{
						Name:    "hashes",
						Aliases: []string{"o"},
						Usage:   "Hashes SQLite database path",
						Value:   "hashes.db",
					},
					&cli.StringFlag{
						Name:  "stage",
						Usage: "Optional BoltDB staging path for resumable runs (empty disables staging)",
					},
					&cli.IntFlag{
						Name:  "size",
						Usage: "DCT grid dimension N",
						Value: 32,
					},
					&cli.IntFlag{
						Name:  "bits",
						Usage: "Fingerprint bit budget",
						Value: 64,
					},
					&cli.StringFlag{
						Name:  "policy",
						Usage: "Coefficient extraction policy: block or diagonal",
						Value: "block",
					},
					&cli.StringFlag{
						Name:  "config",
						Usage: "Optional YAML config file; flags set explicitly take precedence over it",
					},
				},
				Action: commands.HashCommand,
			},
			{
				Name:      "cluster",
				Usage:     "Cluster a hashes store under a Hamming-distance threshold",
				ArgsUsage: "<hashes.db> <threshold> <threads>",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "Optional SQLite database to write clusters to instead of stdout",
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "Cluster output table name (with --out)",
						Value: "clusters",
					},
					&cli.DurationFlag{
						Name:  "compaction-interval",
						Usage: "Working-set compaction period",
						Value: 0,
					},
				},
				Action: commands.ClusterCommand,
			},
			{
				Name:      "export-text",
				Usage:     "Export a hashes store to the intermediate <fingerprint>\\t<path> text format",
				ArgsUsage: "<hashes.db> <output.txt>",
				Action:    commands.ExportTextCommand,
			},
			{
				Name:      "import-text",
				Usage:     "Import an intermediate hash text file into a hashes store",
				ArgsUsage: "<input.txt> <hashes.db>",
				Action:    commands.ImportTextCommand,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
