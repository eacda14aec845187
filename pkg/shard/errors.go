package shard

import "errors"

var (
	// ErrInvalidSize reports an unparseable size string such as "12Q".
	ErrInvalidSize = errors.New("invalid size string")

	// ErrChunkLimitTooSmall reports a size limit that leaves no room for
	// chunk data once the headroom is subtracted.
	ErrChunkLimitTooSmall = errors.New("size limit too small for splitting")

	// ErrMissingChunks reports chunk files that a merge needs but that no
	// longer exist on disk.
	ErrMissingChunks = errors.New("missing chunk files")

	// ErrSizeMismatch reports a merged file whose size does not match the
	// recorded original size.
	ErrSizeMismatch = errors.New("merged file size mismatch")
)
