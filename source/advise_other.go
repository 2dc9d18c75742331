//go:build !linux

package source

// fadviseSequential is a no-op on non-Linux platforms.
func fadviseSequential(fd int, offset, length int64) {}

// madviseSequential is a no-op on non-Linux platforms.
func madviseSequential(data []byte) {}
