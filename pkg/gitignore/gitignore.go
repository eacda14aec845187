// Package gitignore appends entries to the ignore file consumed by the
// enclosing version-control system. Entries are only ever added, never
// removed, and the file is kept sorted and deduplicated.
package gitignore

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// AddPaths merges paths into the ignore file under root. Existing entries
// are preserved; new entries are stored relative to root. A path that
// cannot be made relative is logged and skipped, the rest still go in.
func AddPaths(root, ignoreFile string, paths []string, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if len(paths) == 0 {
		return nil
	}

	ignorePath := filepath.Join(root, ignoreFile)
	entries := make(map[string]bool)

	data, err := os.ReadFile(ignorePath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to read %s: %w", ignorePath, err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			entries[line] = true
		}
	}

	added := 0
	for _, p := range paths {
		rel, err := Relative(root, p)
		if err != nil {
			logger.Error("cannot add path to ignore file",
				zap.String("path", p),
				zap.Error(err))
			continue
		}
		if !entries[rel] {
			added++
		}
		entries[rel] = true
	}

	all := make([]string, 0, len(entries))
	for entry := range entries {
		all = append(all, entry)
	}
	sort.Strings(all)

	var buf bytes.Buffer
	for _, entry := range all {
		buf.WriteString(entry)
		buf.WriteByte('\n')
	}
	if err := os.WriteFile(ignorePath, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", ignorePath, err)
	}

	logger.Info("updated ignore file",
		zap.String("ignoreFile", ignoreFile),
		zap.Int("added", added),
		zap.Int("total", len(all)))
	return nil
}

// Relative normalizes p to a slash-separated path relative to root. Paths
// that escape the root fail with ErrOutsideRoot.
func Relative(root, p string) (string, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", root, err)
	}

	abs := p
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(absRoot, p)
	}

	rel, err := filepath.Rel(absRoot, abs)
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, p)
	}
	return filepath.ToSlash(rel), nil
}
