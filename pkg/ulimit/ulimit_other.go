//go:build !unix

package ulimit

import "errors"

// errUnsupported is returned on platforms without an rlimit concept
// (Windows); the CLI treats it as "don't know, don't clamp further".
var errUnsupported = errors.New("ulimit: not supported on this platform")

func SoftLimit() (uint64, error) {
	return 0, errUnsupported
}

func Raise(want uint64) (uint64, error) {
	return 0, errUnsupported
}
