package gitignore

import "errors"

var (
	ErrOutsideRoot = errors.New("path is outside the working root")
)
