package shard

import (
	"runtime"
	"sync"

	"gitshard/pkg/tracker"

	"go.uber.org/zap"
)

// splitResult carries the outcome of one file's split out of the pool.
type splitResult struct {
	path string
	rec  tracker.Record
	err  error
}

// splitConcurrently runs Split for each path across a worker pool. Each
// file succeeds or fails on its own; failed splits have already cleaned up
// their partial chunks by the time the result is reported.
func splitConcurrently(root string, paths []string, limitBytes int64, maxWorkers int, logger *zap.Logger) []splitResult {
	jobs := make(chan string, len(paths))
	results := make(chan splitResult, len(paths))
	var wg sync.WaitGroup

	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
		logger.Debug("adjusted worker count", zap.Int("workers", maxWorkers))
	}
	if maxWorkers > len(paths) {
		maxWorkers = len(paths)
	}

	logger.Debug("initializing split worker pool", zap.Int("workers", maxWorkers))
	for w := 0; w < maxWorkers; w++ {
		wg.Add(1)
		workerLogger := logger.With(zap.Int("workerID", w))
		go func() {
			defer wg.Done()
			for path := range jobs {
				workerLogger.Debug("worker received file to split", zap.String("file", path))
				rec, err := Split(root, path, limitBytes, workerLogger)
				results <- splitResult{path: path, rec: rec, err: err}
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	collected := make([]splitResult, 0, len(paths))
	for res := range results {
		collected = append(collected, res)
	}
	return collected
}
