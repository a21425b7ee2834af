//go:build !linux

package slotstore

import "errors"

var errUnsupported = errors.New("slotstore: mmap unsupported on this platform")

// mmapRegion is unused on non-Linux hosts; newMmapRegion always fails
// so New falls back to a plain make([]uint64, ...) slice.
type mmapRegion struct{}

func newMmapRegion(count uint64) (*mmapRegion, []uint64, error) {
	return nil, nil, errUnsupported
}

func (r *mmapRegion) unmap() error {
	return nil
}
