//go:build amd64

package probe

import "golang.org/x/sys/cpu"

func init() {
	if cpu.X86.HasAVX2 {
		find4 = find4Vector
	}
}

// movemask4 broadcasts query into a 256-bit register, ANDs each lane
// of row against matchMask, compares for equality, and returns the
// 4-bit movemask (bit i set iff row[i] matched). Implemented in
// probe_amd64.s.
//
//go:noescape
func movemask4(query uint64, row *uint64) uint32

// find4Vector is the AVX2 counterpart to find4Scalar; both must agree
// on every input, and probe_test.go checks that directly.
func find4Vector(query uint64, row []uint64) int {
	_ = row[3] // bounds check hint; the asm loads all 4 lanes unconditionally
	return ffs(movemask4(query, &row[0]))
}
