package commands

import (
	"bufio"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/imagedupe/phashcluster/internal/store"
	"github.com/imagedupe/phashcluster/internal/textio"
)

// ExportTextCommand dumps a hashes store to the intermediate
// "<fingerprint>\t<path>" text format, one line per row, in id order.
func ExportTextCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		_ = cli.ShowCommandHelp(c, "export-text")
		return cli.Exit("usage: phashcluster export-text <hashes.db> <output.txt>", 1)
	}

	hashesPath := c.Args().Get(0)
	outputPath := c.Args().Get(1)

	hashStore, err := store.OpenHashStore(hashesPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open hashes store: %v", err), 1)
	}
	defer hashStore.Close()

	records, err := hashStore.LoadAll()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load hashes: %v", err), 1)
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create output file: %v", err), 1)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	for _, rec := range records {
		if err := textio.WriteLine(w, rec.Fingerprint, rec.SourcePath); err != nil {
			return cli.Exit(fmt.Sprintf("failed to write line: %v", err), 1)
		}
	}
	if err := w.Flush(); err != nil {
		return cli.Exit(fmt.Sprintf("failed to flush output: %v", err), 1)
	}

	fmt.Printf("exported %d hashes to %s\n", len(records), outputPath)
	return nil
}
