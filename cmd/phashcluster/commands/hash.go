package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/imagedupe/phashcluster/internal/stage"
	"github.com/imagedupe/phashcluster/internal/store"
	"github.com/imagedupe/phashcluster/internal/utils"
	"github.com/imagedupe/phashcluster/internal/walk"
	"github.com/imagedupe/phashcluster/pkg/phash"
)

// HashCommand fingerprints every image under --path and persists the
// results to the hashes store, optionally resuming from a Bolt staging
// database when --stage is given.
func HashCommand(c *cli.Context) error {
	cfg := utils.DefaultAppConfig()
	if path := c.String("config"); path != "" {
		mgr := utils.NewConfigManager(path)
		if err := mgr.LoadConfig(&cfg); err != nil {
			return cli.Exit(fmt.Sprintf("failed to load config: %v", err), 1)
		}
	}
	if c.IsSet("size") {
		cfg.DCTSize = c.Int("size")
	}
	if c.IsSet("bits") {
		cfg.BitBudget = c.Int("bits")
	}
	if c.IsSet("policy") {
		cfg.ExtractionPolicy = c.String("policy")
	}
	if c.IsSet("hashes") {
		cfg.HashesDBPath = c.String("hashes")
	}

	policy, err := parsePolicy(cfg.ExtractionPolicy)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	logger, err := utils.CreateModuleLogger("hash", utils.DefaultLogConfig())
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to create logger: %v", err), 1)
	}

	root := c.String("path")
	paths, err := walk.ImagePaths(root, walk.DefaultFilter())
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to scan directory: %v", err), 1)
	}
	logger.Infof("found %d candidate images under %s", len(paths), root)

	hashStore, err := store.OpenHashStore(cfg.HashesDBPath)
	if err != nil {
		return cli.Exit(fmt.Sprintf("failed to open hashes store: %v", err), 1)
	}
	defer hashStore.Close()

	var stageStore *stage.Store
	if stagePath := c.String("stage"); stagePath != "" {
		stageStore, err = stage.Open(stagePath)
		if err != nil {
			return cli.Exit(fmt.Sprintf("failed to open staging store: %v", err), 1)
		}
		defer stageStore.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupInterruptHandler(cancel)

	hasher := phash.New(cfg.DCTSize, cfg.BitBudget, policy)
	progress := utils.NewProgressTracker(len(paths), "hashing")

	var failed, written int
	for i, path := range paths {
		select {
		case <-ctx.Done():
			return cli.Exit("interrupted", 1)
		default:
		}

		if persisted, err := hashStore.PathExists(path); err != nil {
			return cli.Exit(fmt.Sprintf("failed to check existing hash: %v", err), 1)
		} else if persisted {
			written++
			progress.Update(1)
			continue
		}

		if stageStore != nil {
			if fp, ok, err := stageStore.Get(uint32(i + 1)); err == nil && ok {
				if err := hashStore.InsertHash(fp, path); err != nil {
					return cli.Exit(fmt.Sprintf("failed to persist staged hash: %v", err), 1)
				}
				written++
				progress.Update(1)
				continue
			}
		}

		fp, ok, err := computeFingerprint(hasher, path)
		if err != nil || !ok {
			logger.Warnf("failed to hash %s: %v", path, err)
			failed++
			progress.Update(1)
			continue
		}

		if err := hashStore.InsertHash(fp, path); err != nil {
			return cli.Exit(fmt.Sprintf("failed to persist hash: %v", err), 1)
		}
		if stageStore != nil {
			if err := stageStore.Put(uint32(i+1), fp); err != nil {
				logger.Warnf("failed to checkpoint %s: %v", path, err)
			}
		}
		written++
		progress.Update(1)
	}
	progress.Complete()

	logger.Infof("hashed %d images, %d failed, written to %s", written, failed, cfg.HashesDBPath)
	return nil
}

func computeFingerprint(hasher *phash.Hasher, path string) (phash.PHash, bool, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, false, err
	}
	defer f.Close()
	return hasher.Compute(f)
}

func parsePolicy(name string) (phash.ExtractionPolicy, error) {
	switch name {
	case "", "block":
		return phash.PolicyBlock, nil
	case "diagonal":
		return phash.PolicyDiagonal, nil
	default:
		return 0, fmt.Errorf("unknown extraction policy %q", name)
	}
}

func setupInterruptHandler(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nreceived interrupt signal, stopping...")
		cancel()
	}()
}
