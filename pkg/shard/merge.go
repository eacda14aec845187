package shard

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitshard/pkg/tracker"

	"go.uber.org/zap"
)

// copyBufferSize is the read window used when concatenating chunk files.
const copyBufferSize = 1 << 20

// Merge reconstructs the original file described by rec from its chunk
// files under root. When the original already exists with the recorded
// size the merge short-circuits and only removes the leftover chunks,
// which makes repeated merge runs safe. The tracker store and the ignore
// file are never touched here; that is left to the caller.
func Merge(root string, rec tracker.Record, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	target := filepath.Join(root, rec.OriginalFile)

	if info, err := os.Stat(target); err == nil {
		if info.Size() == rec.OriginalSize {
			logger.Info("original already present with expected size, skipping merge",
				zap.String("file", rec.OriginalFile))
			removeChunks(root, rec.SplitFiles, logger)
			return nil
		}
		logger.Warn("original exists with unexpected size, recreating from chunks",
			zap.String("file", rec.OriginalFile),
			zap.Int64("expectedSize", rec.OriginalSize),
			zap.Int64("currentSize", info.Size()))
	}

	var missing []string
	for _, chunk := range rec.SplitFiles {
		if _, err := os.Stat(filepath.Join(root, chunk)); err != nil {
			missing = append(missing, chunk)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w for %s: %s",
			ErrMissingChunks, rec.OriginalFile, strings.Join(missing, ", "))
	}

	logger.Info("merging file",
		zap.String("file", rec.OriginalFile),
		zap.Int("parts", rec.SplitCount))

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", rec.OriginalFile, err)
	}

	out, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", rec.OriginalFile, err)
	}

	buf := make([]byte, copyBufferSize)
	for _, chunk := range rec.SplitFiles {
		in, err := os.Open(filepath.Join(root, chunk))
		if err != nil {
			out.Close()
			os.Remove(target)
			return fmt.Errorf("failed to open chunk %s: %w", chunk, err)
		}
		_, err = io.CopyBuffer(out, in, buf)
		in.Close()
		if err != nil {
			out.Close()
			os.Remove(target)
			return fmt.Errorf("failed to append chunk %s: %w", chunk, err)
		}
	}
	if err := out.Close(); err != nil {
		os.Remove(target)
		return fmt.Errorf("failed to close %s: %w", rec.OriginalFile, err)
	}

	info, err := os.Stat(target)
	if err != nil {
		return fmt.Errorf("failed to stat %s after merge: %w", rec.OriginalFile, err)
	}
	if info.Size() != rec.OriginalSize {
		os.Remove(target)
		return fmt.Errorf("%w for %s: expected %d bytes, got %d",
			ErrSizeMismatch, rec.OriginalFile, rec.OriginalSize, info.Size())
	}

	removeChunks(root, rec.SplitFiles, logger)
	logger.Info("merged file",
		zap.String("file", rec.OriginalFile),
		zap.Float64("sizeMB", float64(info.Size())/(1<<20)))
	return nil
}

// removeChunks deletes chunk files under root, tolerating ones that are
// already gone.
func removeChunks(root string, chunks []string, logger *zap.Logger) {
	for _, chunk := range chunks {
		if err := os.Remove(filepath.Join(root, chunk)); err != nil {
			if !os.IsNotExist(err) {
				logger.Warn("failed to remove chunk file",
					zap.String("chunk", chunk),
					zap.Error(err))
			}
			continue
		}
		logger.Debug("removed chunk file", zap.String("chunk", chunk))
	}
}
