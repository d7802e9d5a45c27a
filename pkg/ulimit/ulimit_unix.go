//go:build unix

// Package ulimit queries and raises the process's soft NOFILE limit, the
// OS-imposed ceiling the Concurrency Pool's batch size must be clamped
// against. It is deliberately outside pkg/scan's core per spec.md §1.
package ulimit

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// SoftLimit returns the process's current soft RLIMIT_NOFILE.
func SoftLimit() (uint64, error) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}
	return rlimit.Cur, nil
}

// Raise attempts to raise the soft RLIMIT_NOFILE to want, capped at the
// hard limit. It returns the limit actually in effect afterward.
func Raise(want uint64) (uint64, error) {
	var rlimit unix.Rlimit
	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("getrlimit: %w", err)
	}

	target := want
	if target > rlimit.Max {
		target = rlimit.Max
	}
	if target <= rlimit.Cur {
		return rlimit.Cur, nil
	}

	rlimit.Cur = target
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rlimit); err != nil {
		return 0, fmt.Errorf("setrlimit: %w", err)
	}
	return rlimit.Cur, nil
}
