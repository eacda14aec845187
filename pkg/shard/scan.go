package shard

import (
	"io/fs"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// ScanLargeFiles walks root and returns root-relative paths of regular
// files strictly larger than limitBytes. Dot-directories are pruned, so
// .git and friends are never descended into. Paths listed in skip are
// excluded; unreadable entries are logged and skipped rather than failing
// the scan.
func ScanLargeFiles(root string, limitBytes int64, skip map[string]bool, logger *zap.Logger) ([]string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("error accessing path during scan",
				zap.String("path", path),
				zap.Error(err))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		relPath, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		relPath = filepath.ToSlash(relPath)
		if skip[relPath] {
			return nil
		}

		info, infoErr := d.Info()
		if infoErr != nil {
			logger.Warn("failed to stat file during scan",
				zap.String("path", path),
				zap.Error(infoErr))
			return nil
		}
		if info.Size() > limitBytes {
			files = append(files, relPath)
		}
		return nil
	})
	return files, err
}
