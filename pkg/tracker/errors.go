package tracker

import "errors"

var (
	ErrCorruptStore = errors.New("tracker store is corrupt")
)
