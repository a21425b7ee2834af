//go:build linux

package slotstore

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapRegion tracks an anonymous mmap backing a Store, so Close can
// unmap the exact byte range it was given.
type mmapRegion struct {
	b []byte
}

// newMmapRegion allocates an anonymous, page-aligned mapping large
// enough for count uint64 slots and returns it reinterpreted as a
// []uint64. Anonymous mmap pages come back zeroed by the kernel, so
// the store starts fully unoccupied without an explicit clear.
func newMmapRegion(count uint64) (*mmapRegion, []uint64, error) {
	size := count * 8
	b, err := unix.Mmap(-1, 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, nil, err
	}
	slots := unsafe.Slice((*uint64)(unsafe.Pointer(&b[0])), count)
	return &mmapRegion{b: b}, slots, nil
}

func (r *mmapRegion) unmap() error {
	return unix.Munmap(r.b)
}
