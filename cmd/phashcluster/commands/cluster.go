package commands

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/imagedupe/phashcluster/internal/cluster"
	"github.com/imagedupe/phashcluster/internal/store"
	"github.com/imagedupe/phashcluster/internal/utils"
)

// ClusterCommand implements the clusterizer CLI surface: positional
// <hashes.db> <threshold> <threads>. Invalid arguments print usage to
// stderr and exit 1 (the stricter of the two behaviors the reference
// tolerates); any persistence or runtime failure also exits non-zero.
func ClusterCommand(c *cli.Context) error {
	if c.NArg() != 3 {
		_ = cli.ShowCommandHelp(c, "cluster")
		return cli.Exit("usage: phashcluster cluster <hashes.db> <threshold> <threads>", 1)
	}

	hashesPath := c.Args().Get(0)
	threshold, err := strconv.ParseUint(c.Args().Get(1), 10, 32)
	if err != nil || threshold < 1 {
		return cli.Exit("threshold must be an integer >= 1", 1)
	}
	threads, err := strconv.Atoi(c.Args().Get(2))
	if err != nil || threads < 1 {
		return cli.Exit("threads must be an integer >= 1", 1)
	}

	logger, err := utils.CreateModuleLogger("cluster", utils.DefaultLogConfig())
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create logger: %v", err), 1)
	}

	hashStore, err := store.OpenHashStore(hashesPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open hashes store: %v", err), 1)
	}
	defer hashStore.Close()

	working, err := hashStore.LoadAll()
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to load hashes: %v", err), 1)
	}

	var emitter cluster.Emitter
	if outPath := c.String("out"); outPath != "" {
		clusterStore, err := store.OpenClusterStore(outPath, c.String("table"))
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to open cluster output store: %v", err), 1)
		}
		defer clusterStore.Close()
		emitter = clusterStore
	} else {
		emitter = cluster.NewStreamEmitter(os.Stdout)
	}

	compactionInterval := c.Duration("compaction-interval")
	if compactionInterval <= 0 {
		compactionInterval = cluster.DefaultCompactionInterval
	}

	driverCfg := cluster.Config{
		ThreadsNum:         threads,
		Threshold:          uint32(threshold),
		CompactionInterval: compactionInterval,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupInterruptHandler(cancel)

	driver := cluster.NewDriver(driverCfg, working, logger.Logger)
	if err := driver.Run(ctx, emitter); err != nil {
		return cli.Exit(fmt.Sprintf("clustering failed: %v", err), 1)
	}

	return nil
}
