package l2table

import (
	"errors"
	"testing"

	"github.com/l2fwd/l2fwd/internal/l2err"
)

func mac(b0, b1, b2, b3, b4, b5 byte) uint64 {
	return uint64(b0) | uint64(b1)<<8 | uint64(b2)<<16 | uint64(b3)<<24 | uint64(b4)<<32 | uint64(b5)<<40
}

func TestInitValidation(t *testing.T) {
	cases := []struct {
		size, bucket uint32
		wantErr      bool
	}{
		{0, 0, true},
		{4, 0, true},
		{0, 2, true},
		{4, 2, false},
		{4, 4, false},
		{4, 8, true},
		{6, 4, true},
		{2 << 10, 2, false},
		{2 << 10, 3, true},
	}
	for _, c := range cases {
		tbl, err := Init(c.size, c.bucket)
		if c.wantErr {
			if err == nil {
				t.Errorf("Init(%d, %d) succeeded, want error", c.size, c.bucket)
			}
			continue
		}
		if err != nil {
			t.Errorf("Init(%d, %d) failed: %v", c.size, c.bucket, err)
			continue
		}
		tbl.Close()
	}
}

func TestAddFindDelete(t *testing.T) {
	tbl, err := Init(4, 4)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer tbl.Close()

	addr := mac(1, 2, 3, 4, 5, 6)

	if _, ok := tbl.Find(addr); ok {
		t.Fatal("Find found entry before Add")
	}

	if err := tbl.Add(addr, 7); err != nil {
		t.Fatalf("Add: %v", err)
	}

	if gate, ok := tbl.Find(addr); !ok || gate != 7 {
		t.Fatalf("Find = (%d, %v), want (7, true)", gate, ok)
	}

	if err := tbl.Add(addr, 9); !errors.Is(err, l2err.ErrAlreadyExists) {
		t.Fatalf("Add duplicate = %v, want ErrAlreadyExists", err)
	}

	if err := tbl.Delete(addr); err != nil {
		t.Fatalf("Delete: %v", err)
	}

	if _, ok := tbl.Find(addr); ok {
		t.Fatal("Find found entry after Delete")
	}

	if err := tbl.Delete(addr); !errors.Is(err, l2err.ErrNotFound) {
		t.Fatalf("Delete missing = %v, want ErrNotFound", err)
	}
}

func TestFlush(t *testing.T) {
	tbl, err := Init(4, 4)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer tbl.Close()

	for i := 0; i < 4; i++ {
		addr := mac(byte(i), 1, 1, 1, 1, 1)
		if err := tbl.Add(addr, uint16(i)); err != nil {
			t.Fatalf("Add %d: %v", i, err)
		}
	}

	if got := tbl.Stats().Count; got != 4 {
		t.Fatalf("Count = %d, want 4", got)
	}

	tbl.Flush()

	if got := tbl.Stats().Count; got != 0 {
		t.Fatalf("Count after Flush = %d, want 0", got)
	}
	for i := 0; i < 4; i++ {
		addr := mac(byte(i), 1, 1, 1, 1, 1)
		if _, ok := tbl.Find(addr); ok {
			t.Fatalf("Find(%d) succeeded after Flush", i)
		}
	}
}

// TestCollisionFillsBucketAndFails mirrors the fill-a-single-row,
// then-overflow scenario from the original collision test: with a
// table of two rows (size=2), every insert's primary row is 0 or 1 and
// its alternate row is always 0, so the eight slots fill up and later
// inserts must fail with ErrOutOfMemory rather than corrupt state.
func TestCollisionFillsBucketAndFails(t *testing.T) {
	tbl, err := Init(2, 4)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer tbl.Close()

	inserted := 0
	var addrs []uint64
	for i := 0; i < 64; i++ {
		addr := mac(byte(i), byte(i>>8), 0xAB, 0xCD, 0xEF, 1)
		err := tbl.Add(addr, uint16(i%100))
		if err == nil {
			inserted++
			addrs = append(addrs, addr)
			continue
		}
		if !errors.Is(err, l2err.ErrOutOfMemory) && !errors.Is(err, l2err.ErrAlreadyExists) {
			t.Fatalf("Add(%d) unexpected error: %v", i, err)
		}
	}

	if inserted == 0 {
		t.Fatal("no entries inserted, test setup is broken")
	}

	for _, addr := range addrs {
		if _, ok := tbl.Find(addr); !ok {
			t.Fatalf("Find(%x) failed for a previously inserted entry", addr)
		}
	}

	if got := tbl.Stats().Count; int(got) != inserted {
		t.Fatalf("Count = %d, want %d", got, inserted)
	}
}

func TestDisplacementFreesPrimaryRow(t *testing.T) {
	tbl, err := Init(8, 2)
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer tbl.Close()

	inserted := 0
	for i := 0; i < 32; i++ {
		addr := mac(byte(i), byte(i>>4), 0x11, 0x22, 0x33, 0x44)
		if err := tbl.Add(addr, uint16(i)); err == nil {
			inserted++
		} else if !errors.Is(err, l2err.ErrOutOfMemory) {
			t.Fatalf("Add(%d): unexpected error %v", i, err)
		}
	}

	if inserted == 0 {
		t.Fatal("expected at least one successful insert")
	}
	if got := tbl.Stats().Count; int(got) != inserted {
		t.Fatalf("Count = %d, want %d", got, inserted)
	}
}
