package shard

import (
	"os"
	"path/filepath"

	"gitshard/pkg/tracker"

	"go.uber.org/zap"
)

// Clean removes every known chunk file and then the tracker store itself.
// It returns the number of chunk files removed. Running with nothing to
// clean is a no-op, not an error.
func Clean(cfg Config, logger *zap.Logger) (int, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	tr := tracker.New(filepath.Join(cfg.Root, cfg.StorePath), logger)
	store, err := tr.Load()
	if err != nil {
		logger.Warn("tracker store unreadable, treating as empty", zap.Error(err))
	}

	removed := 0
	for _, chunk := range tr.AllChunkPaths(store, cfg.Root) {
		if err := os.Remove(filepath.Join(cfg.Root, chunk)); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("failed to remove chunk file",
					zap.String("chunk", chunk),
					zap.Error(err))
			}
			continue
		}
		logger.Info("removed chunk file", zap.String("chunk", chunk))
		removed++
	}

	if removed > 0 {
		logger.Info("cleaned chunk files", zap.Int("count", removed))
	} else {
		logger.Info("no chunk files to clean")
	}

	if err := tr.Remove(); err != nil {
		return removed, err
	}
	return removed, nil
}
