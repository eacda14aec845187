package shard

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gitshard/pkg/tracker"

	"go.uber.org/zap"
)

// headroom is kept free below the size limit so a chunk plus any storage
// metadata still stays under the external cap.
const headroom = 1 << 20

// SplitPrefix derives the chunk file prefix for an original file path:
// path separators become underscores, a leading "./" segment and any
// leading underscore are stripped, and the file extension is dropped.
func SplitPrefix(relPath string) string {
	p := filepath.ToSlash(relPath)
	p = strings.TrimPrefix(p, "./")
	p = strings.ReplaceAll(p, "/", "_")
	p = strings.TrimPrefix(p, "_")
	if ext := filepath.Ext(p); ext != "" {
		p = strings.TrimSuffix(p, ext)
	}
	return p + "_split_"
}

// Split slices the file at relPath (under root) into chunk files written
// into root, each holding at most limitBytes minus the headroom. The
// returned record captures the post-split size of the original; the
// original itself is never touched. On any failure every chunk written
// during this attempt is removed so no partial artifacts remain.
func Split(root, relPath string, limitBytes int64, logger *zap.Logger) (tracker.Record, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	chunkSize := limitBytes - headroom
	if chunkSize <= 0 {
		return tracker.Record{}, fmt.Errorf("%w: limit %d bytes leaves nothing below the %d byte headroom",
			ErrChunkLimitTooSmall, limitBytes, int64(headroom))
	}

	src, err := os.Open(filepath.Join(root, relPath))
	if err != nil {
		return tracker.Record{}, fmt.Errorf("failed to open %s: %w", relPath, err)
	}
	defer src.Close()

	logger.Info("splitting file", zap.String("file", relPath))

	prefix := SplitPrefix(relPath)
	chunks := []string{}
	cleanup := func() {
		for _, chunk := range chunks {
			if err := os.Remove(filepath.Join(root, chunk)); err != nil && !os.IsNotExist(err) {
				logger.Warn("failed to remove partial chunk file",
					zap.String("chunk", chunk),
					zap.Error(err))
			}
		}
	}

	reader := bufio.NewReader(src)
	for index := 0; ; index++ {
		// Peek distinguishes end of file from an empty trailing chunk so a
		// zero-byte chunk file is never created.
		if _, err := reader.Peek(1); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			cleanup()
			return tracker.Record{}, fmt.Errorf("failed to read %s: %w", relPath, err)
		}

		chunkName := fmt.Sprintf("%s%03d", prefix, index)
		dst, err := os.Create(filepath.Join(root, chunkName))
		if err != nil {
			cleanup()
			return tracker.Record{}, fmt.Errorf("failed to create chunk %s: %w", chunkName, err)
		}
		chunks = append(chunks, chunkName)

		written, copyErr := io.CopyN(dst, reader, chunkSize)
		closeErr := dst.Close()
		if copyErr != nil && !errors.Is(copyErr, io.EOF) {
			cleanup()
			return tracker.Record{}, fmt.Errorf("failed to write chunk %s: %w", chunkName, copyErr)
		}
		if closeErr != nil {
			cleanup()
			return tracker.Record{}, fmt.Errorf("failed to close chunk %s: %w", chunkName, closeErr)
		}

		logger.Info("created chunk file",
			zap.String("chunk", chunkName),
			zap.Float64("sizeMB", float64(written)/(1<<20)))
	}

	info, err := os.Stat(filepath.Join(root, relPath))
	if err != nil {
		cleanup()
		return tracker.Record{}, fmt.Errorf("failed to stat %s after split: %w", relPath, err)
	}

	logger.Info("split file into parts",
		zap.String("file", relPath),
		zap.Int("parts", len(chunks)))

	return tracker.Record{
		OriginalFile: relPath,
		OriginalSize: info.Size(),
		SplitPrefix:  prefix,
		SplitFiles:   chunks,
		SplitCount:   len(chunks),
	}, nil
}
