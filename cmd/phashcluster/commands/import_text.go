package commands

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/imagedupe/phashcluster/internal/store"
	"github.com/imagedupe/phashcluster/internal/textio"
)

// ImportTextCommand loads an intermediate hash text file and appends its
// rows to a hashes store, creating the store if it does not exist.
func ImportTextCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		_ = cli.ShowCommandHelp(c, "import-text")
		return cli.Exit("usage: phashcluster import-text <input.txt> <hashes.db>", 1)
	}

	inputPath := c.Args().Get(0)
	hashesPath := c.Args().Get(1)

	in, err := os.Open(inputPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open input file: %v", err), 1)
	}
	defer in.Close()

	lines, err := textio.ReadLines(in)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to parse input file: %v", err), 1)
	}

	hashStore, err := store.OpenHashStore(hashesPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open hashes store: %v", err), 1)
	}
	defer hashStore.Close()

	for _, line := range lines {
		if err := hashStore.InsertHash(line.Fingerprint, line.Path); err != nil {
			return cli.Exit(fmt.Sprintf("failed to insert hash: %v", err), 1)
		}
	}

	fmt.Printf("imported %d hashes into %s\n", len(lines), hashesPath)
	return nil
}
