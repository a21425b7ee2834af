// Package slotstore provides the fixed-size flat slot array backing
// the forwarding table: a contiguous []uint64 of N*B slots, one per
// (bucket-row, bucket-position) pair, allocated once and never resized.
package slotstore

import "fmt"

// Store owns the raw slot array. Its length never changes after New.
type Store struct {
	slots  []uint64
	region *mmapRegion // nil when backed by a plain make([]uint64, ...)
}

// New allocates a store of n*b slots, attempting a page-aligned
// unix.Mmap allocation first (see store_mmap.go) and falling back to a
// plain Go slice when that is unavailable. Either backing is already
// naturally aligned to an 8-byte boundary, which is all the probe
// needs; the mmap path additionally guarantees a full 64-byte
// cache-line alignment for the start of the array, matching the "the
// allocator returns cache-line-aligned memory" boundary this module
// assumes of its host.
func New(n, b uint32) (*Store, error) {
	if n == 0 || b == 0 {
		return nil, fmt.Errorf("slotstore: n and b must be nonzero")
	}
	count := uint64(n) * uint64(b)
	if region, slots, err := newMmapRegion(count); err == nil {
		return &Store{slots: slots, region: region}, nil
	}
	return &Store{slots: make([]uint64, count)}, nil
}

// Close releases the backing memory. It is safe to call on a
// slice-backed Store (a no-op) and idempotent.
func (s *Store) Close() error {
	if s.region == nil {
		return nil
	}
	err := s.region.unmap()
	s.region = nil
	s.slots = nil
	return err
}

// Len returns the total number of slots (n*b).
func (s *Store) Len() int {
	return len(s.slots)
}

// Slot returns the raw 64-bit word at index i.
func (s *Store) Slot(i uint32) uint64 {
	return s.slots[i]
}

// SetSlot writes the raw 64-bit word at index i.
func (s *Store) SetSlot(i uint32, v uint64) {
	s.slots[i] = v
}

// Row returns the b contiguous slots of bucket row `index`, for a
// table with `bucket` slots per row. The returned slice aliases the
// store's backing array.
func (s *Store) Row(index, bucket uint32) []uint64 {
	off := index * bucket
	return s.slots[off : off+bucket]
}

// Zero clears every slot to zero, preserving the allocation.
func (s *Store) Zero() {
	clear(s.slots)
}
