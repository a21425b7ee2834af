// Package macaddr converts between the command surface's string form
// of a MAC address and the table's internal 64-bit representation.
package macaddr

import (
	"fmt"

	"github.com/l2fwd/l2fwd/internal/l2hash"
)

// Parse accepts strict "HH:HH:HH:HH:HH:HH" hex notation and returns
// the internal 48-bit address word.
func Parse(s string) (uint64, error) {
	var b [6]byte
	n, err := fmt.Sscanf(s, "%02x:%02x:%02x:%02x:%02x:%02x", &b[0], &b[1], &b[2], &b[3], &b[4], &b[5])
	if err != nil || n != 6 {
		return 0, fmt.Errorf("macaddr: invalid address %q", s)
	}
	if !isStrict(s) {
		return 0, fmt.Errorf("macaddr: invalid address %q", s)
	}
	return l2hash.Pack(b), nil
}

// isStrict rejects inputs Sscanf would otherwise accept loosely, such
// as short hex groups ("1:2:3:4:5:6") or trailing garbage.
func isStrict(s string) bool {
	if len(s) != 17 {
		return false
	}
	for i, c := range s {
		if i%3 == 2 {
			if c != ':' {
				return false
			}
			continue
		}
		if !isHexDigit(byte(c)) {
			return false
		}
	}
	return true
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// Format renders an internal address word as "HH:HH:HH:HH:HH:HH".
func Format(addr uint64) string {
	b := l2hash.Unpack(addr)
	return fmt.Sprintf("%02x:%02x:%02x:%02x:%02x:%02x", b[0], b[1], b[2], b[3], b[4], b[5])
}
