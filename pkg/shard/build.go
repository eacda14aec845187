// Package shard implements the split, merge and clean operations that keep
// a source tree under an external file-size limit. Oversized files are
// sliced into chunk files that fit the limit, the provenance is recorded
// in a tracker store, and the originals are appended to the ignore file so
// the version-control system only ever sees the chunks.
package shard

import (
	"fmt"
	"path/filepath"
	"time"

	"gitshard/pkg/gitignore"
	"gitshard/pkg/tracker"

	"go.uber.org/zap"
)

// Build scans the working root for files above the size limit, splits the
// ones without a valid record, merges the new records into the tracker
// store with a single atomic write, and appends the originals to the
// ignore file. Per-file split failures are reported and skipped; only the
// store persistence failing aborts the run.
func Build(cfg Config, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	start := time.Now()

	limit, err := cfg.LimitBytes()
	if err != nil {
		return err
	}
	if limit <= headroom {
		return fmt.Errorf("%w: limit %s leaves nothing below the 1 MiB headroom",
			ErrChunkLimitTooSmall, cfg.SizeLimit)
	}

	tr := tracker.New(filepath.Join(cfg.Root, cfg.StorePath), logger)
	store, err := tr.Load()
	if err != nil {
		logger.Warn("tracker store unreadable, starting from an empty store", zap.Error(err))
	}

	logger.Info("scanning for oversized files",
		zap.String("root", cfg.Root),
		zap.Int64("limitBytes", limit))

	skip := map[string]bool{cfg.StorePath: true, cfg.IgnoreFile: true}
	candidates, err := ScanLargeFiles(cfg.Root, limit, skip, logger)
	if err != nil {
		return fmt.Errorf("failed to scan %s: %w", cfg.Root, err)
	}
	if len(candidates) == 0 {
		logger.Info("no files above the size limit")
		return nil
	}
	logger.Info("found oversized files", zap.Int("count", len(candidates)))

	var toSplit []string
	alreadySplit := 0
	for _, path := range candidates {
		status, rec := tr.Check(store, cfg.Root, path)
		switch status {
		case tracker.SplitValid:
			logger.Info("file already split, skipping",
				zap.String("file", path),
				zap.Int("parts", rec.SplitCount))
			alreadySplit++
		case tracker.SplitStale:
			removeChunks(cfg.Root, rec.SplitFiles, logger)
			toSplit = append(toSplit, path)
		default:
			toSplit = append(toSplit, path)
		}
	}
	if alreadySplit > 0 {
		logger.Info("skipped files that are already split", zap.Int("count", alreadySplit))
	}
	if len(toSplit) == 0 {
		logger.Info("no new files need splitting")
		return nil
	}

	results := splitConcurrently(cfg.Root, toSplit, limit, cfg.Workers, logger)

	newRecords := make(map[string]tracker.Record)
	var ignorePaths []string
	failed := 0
	for _, res := range results {
		if res.err != nil {
			logger.Error("failed to split file",
				zap.String("file", res.path),
				zap.Error(res.err))
			failed++
			continue
		}
		newRecords[res.path] = res.rec
		ignorePaths = append(ignorePaths, res.path)
	}
	if len(newRecords) == 0 {
		logger.Warn("no files were split", zap.Int("failed", failed))
		return nil
	}

	store = tr.Merge(store, newRecords)
	if err := tr.Save(store); err != nil {
		return fmt.Errorf("failed to persist tracker store: %w", err)
	}

	if err := gitignore.AddPaths(cfg.Root, cfg.IgnoreFile, ignorePaths, logger); err != nil {
		return fmt.Errorf("failed to update %s: %w", cfg.IgnoreFile, err)
	}

	logger.Info("build completed",
		zap.Int("splitFiles", len(newRecords)),
		zap.Int("failedFiles", failed),
		zap.Duration("elapsed", time.Since(start)))
	return nil
}
