package shard

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseSize converts a human-readable size string such as "100M" or "1G"
// into a byte count. A bare integer is taken as bytes; the K, M and G
// suffixes are binary (1024-based) and case-insensitive.
func ParseSize(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("%w: empty string", ErrInvalidSize)
	}

	multiplier := int64(1)
	switch s[len(s)-1] {
	case 'K', 'k':
		multiplier = 1 << 10
		s = s[:len(s)-1]
	case 'M', 'm':
		multiplier = 1 << 20
		s = s[:len(s)-1]
	case 'G', 'g':
		multiplier = 1 << 30
		s = s[:len(s)-1]
	}

	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidSize, s)
	}
	if n < 0 {
		return 0, fmt.Errorf("%w: negative size %d", ErrInvalidSize, n)
	}
	return n * multiplier, nil
}
