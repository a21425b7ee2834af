// Package l2table implements the bounded, cuckoo-hashed, multi-way
// bucketed dictionary from a 48-bit MAC address to a gate index.
package l2table

import (
	"sync"
	"sync/atomic"

	"github.com/l2fwd/l2fwd/internal/l2err"
	"github.com/l2fwd/l2fwd/internal/l2hash"
	"github.com/l2fwd/l2fwd/internal/probe"
	"github.com/l2fwd/l2fwd/internal/slotstore"
)

// MaxSize is the largest permitted number of bucket rows.
const MaxSize = 1048576 * 64

// MaxBucket is the largest permitted number of slots per row. The
// vectorized probe assumes exactly this width.
const MaxBucket = 4

const gateMask = 0x7FFF

// Table is the forwarding table core. Lookups take a read lock;
// mutations (Add, Delete, Flush) take the write lock, matching the
// concurrent-mutation contract of a single writer with many readers.
type Table struct {
	mu        sync.RWMutex
	store        *slotstore.Store
	size         uint32
	sizePower    uint32
	bucket       uint32
	count        atomic.Int64
	displacement atomic.Int64
}

// Stats is a point-in-time snapshot of table occupancy.
type Stats struct {
	Size         uint32
	Bucket       uint32
	Count        int64
	Displacement int64
}

func isPowerOf2(n uint32) bool {
	return n != 0 && n&(n-1) == 0
}

func log2(n uint32) uint32 {
	var p uint32
	for n > 1 {
		n >>= 1
		p++
	}
	return p
}

// Init allocates a table of size rows by bucket slots per row. size
// and bucket must each be a power of two, greater than zero, and
// bounded by MaxSize / MaxBucket respectively.
func Init(size, bucket uint32) (*Table, error) {
	if size == 0 || size > MaxSize || !isPowerOf2(size) {
		return nil, l2err.ErrInvalidArgument
	}
	if bucket == 0 || bucket > MaxBucket || !isPowerOf2(bucket) {
		return nil, l2err.ErrInvalidArgument
	}
	store, err := slotstore.New(size, bucket)
	if err != nil {
		return nil, l2err.ErrOutOfMemory
	}
	return &Table{
		store:     store,
		size:      size,
		sizePower: log2(size),
		bucket:    bucket,
	}, nil
}

// Close releases the table's backing memory.
func (t *Table) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.store.Close()
}

func (t *Table) indices(addr uint64) (idx1, idx2 uint32) {
	hash := l2hash.Hash(addr)
	idx1 = l2hash.Primary(hash, t.size)
	idx2 = l2hash.Alternate(hash, t.sizePower, idx1)
	return idx1, idx2
}

// findInRow scans row for addr and returns the matching bucket
// position, using the vectorized probe when bucket == 4 and a plain
// scalar scan otherwise -- probe.Find already makes that choice.
func findInRow(addr uint64, row []uint64) (int, bool) {
	return probe.Find(addr, row)
}

// Find looks up addr and returns its gate, or ok=false if absent.
func (t *Table) Find(addr uint64) (gate uint16, ok bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.findLocked(addr)
}

func (t *Table) findLocked(addr uint64) (uint16, bool) {
	idx1, idx2 := t.indices(addr)

	row := t.store.Row(idx1, t.bucket)
	if pos, ok := findInRow(addr, row); ok {
		return gateOf(row[pos]), true
	}

	row = t.store.Row(idx2, t.bucket)
	if pos, ok := findInRow(addr, row); ok {
		return gateOf(row[pos]), true
	}

	return 0, false
}

func gateOf(slot uint64) uint16 {
	return uint16((slot >> 48) & gateMask)
}

func makeSlot(addr uint64, gate uint16) uint64 {
	return (addr & l2hash.AddrMask) | (uint64(gate&gateMask) << 48) | 0x8000_0000_0000_0000
}

// findSlot locates a free slot for addr, performing at most one round
// of cuckoo displacement from the primary row. It returns the row
// index and bucket position to insert into.
func (t *Table) findSlot(addr uint64) (index, bucket uint32, ok bool) {
	idx1, _ := t.indices(addr)

	row := t.store.Row(idx1, t.bucket)
	if pos := probe.FindEmpty(row); pos >= 0 {
		return idx1, uint32(pos), true
	}

	// try displacing one occupant of the primary row into its own
	// alternate row.
	for i := uint32(0); i < t.bucket; i++ {
		occOffset := idx1*t.bucket + i
		occSlot := t.store.Slot(occOffset)
		occAddr := occSlot & l2hash.AddrMask
		occHash := l2hash.Hash(occAddr)
		occIdx1 := l2hash.Primary(occHash, t.size)
		occIdx2 := l2hash.Alternate(occHash, t.sizePower, occIdx1)

		if occIdx1 == occIdx2 || idx1 == occIdx2 {
			break
		}

		altRow := t.store.Row(occIdx2, t.bucket)
		if pos := probe.FindEmpty(altRow); pos >= 0 {
			t.store.SetSlot(occIdx2*t.bucket+uint32(pos), occSlot)
			t.store.SetSlot(occOffset, 0)
			t.displacement.Add(1)
			// the new entry always lands in bucket 0 of the primary
			// row, not the bucket just vacated at i.
			return idx1, 0, true
		}
	}

	return 0, 0, false
}

// Add inserts addr -> gate. It fails with ErrAlreadyExists if addr is
// already present and ErrOutOfMemory if no slot can be freed for it
// even after one round of cuckoo displacement.
func (t *Table) Add(addr uint64, gate uint16) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.findLocked(addr); ok {
		return l2err.ErrAlreadyExists
	}

	index, bucket, ok := t.findSlot(addr)
	if !ok {
		return l2err.ErrOutOfMemory
	}

	t.store.SetSlot(index*t.bucket+bucket, makeSlot(addr, gate))
	t.count.Add(1)
	return nil
}

// Delete removes addr. It fails with ErrNotFound if addr is absent.
func (t *Table) Delete(addr uint64) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx1, idx2 := t.indices(addr)

	for _, idx := range [2]uint32{idx1, idx2} {
		row := t.store.Row(idx, t.bucket)
		if pos, ok := findInRow(addr, row); ok {
			t.store.SetSlot(idx*t.bucket+uint32(pos), 0)
			t.count.Add(-1)
			return nil
		}
	}
	return l2err.ErrNotFound
}

// Flush clears every entry, resetting the table to its initial empty
// state without reallocating.
func (t *Table) Flush() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.store.Zero()
	t.count.Store(0)
}

// Entry is one occupied (address, gate) pair, as returned by Entries.
type Entry struct {
	Addr uint64
	Gate uint16
}

// Entries returns every occupied slot in row-major order. It takes
// the read lock for the duration of the scan, so a concurrent Add or
// Delete blocks until the snapshot completes.
func (t *Table) Entries() []Entry {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Entry, 0, t.count.Load())
	total := t.size * t.bucket
	for i := uint32(0); i < total; i++ {
		slot := t.store.Slot(i)
		if !probe.Occupied(slot) {
			continue
		}
		out = append(out, Entry{Addr: slot & l2hash.AddrMask, Gate: gateOf(slot)})
	}
	return out
}

// Stats reports current occupancy.
func (t *Table) Stats() Stats {
	return Stats{
		Size:         t.size,
		Bucket:       t.bucket,
		Count:        t.count.Load(),
		Displacement: t.displacement.Load(),
	}
}
