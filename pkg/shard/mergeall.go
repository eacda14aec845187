package shard

import (
	"path/filepath"
	"sort"

	"gitshard/pkg/tracker"

	"go.uber.org/zap"
)

// MergeAll reconstructs every tracked original from its chunk files. The
// tracker store and the ignore file are deliberately left untouched so
// the command can be re-run without side effects beyond reconstruction.
// Per-file merge failures are reported and the remaining files still
// merge.
func MergeAll(cfg Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	tr := tracker.New(filepath.Join(cfg.Root, cfg.StorePath), logger)
	store, err := tr.Load()
	if err != nil {
		logger.Warn("tracker store unreadable, nothing to merge", zap.Error(err))
	}
	if len(store) == 0 {
		logger.Info("no split file information found")
		return nil
	}
	logger.Info("found split records", zap.Int("count", len(store)))

	paths := make([]string, 0, len(store))
	for path := range store {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	merged, failed := 0, 0
	for _, path := range paths {
		if err := Merge(cfg.Root, store[path], logger); err != nil {
			logger.Error("failed to merge file",
				zap.String("file", path),
				zap.Error(err))
			failed++
			continue
		}
		merged++
	}

	logger.Info("merge completed, tracker store and ignore file left unchanged",
		zap.Int("merged", merged),
		zap.Int("failed", failed))
	return nil
}
