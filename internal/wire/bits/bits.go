// Package bits implements typed access to IEEE-numbered bit ranges inside
// unsigned integers. Bit 0 is the least significant bit, matching 802.11
// field numbering.
package bits

import "fmt"

// Mask returns a mask of width consecutive set bits.
func Mask(width uint) uint64 {
	if width >= 64 {
		return ^uint64(0)
	}
	return (uint64(1) << width) - 1
}

// Get extracts the inclusive bit range [lo, hi] from v.
func Get(v uint64, lo, hi uint) uint64 {
	return (v >> lo) & Mask(hi-lo+1)
}

// Set replaces the inclusive bit range [lo, hi] of v with field. Bits outside
// the range, including reserved ranges, are left unchanged. It fails without
// modifying anything if field does not fit in hi-lo+1 bits.
func Set(v uint64, lo, hi uint, field uint64) (uint64, error) {
	width := hi - lo + 1
	if field > Mask(width) {
		return v, fmt.Errorf("value %#x does not fit in %d bit(s)", field, width)
	}
	m := Mask(width) << lo
	return (v &^ m) | (field << lo), nil
}

// GetBit reports whether bit n of v is set.
func GetBit(v uint64, n uint) bool {
	return v&(1<<n) != 0
}

// SetBit returns v with bit n set or cleared.
func SetBit(v uint64, n uint, on bool) uint64 {
	if on {
		return v | 1<<n
	}
	return v &^ (1 << n)
}

// Several 802.11 count fields are encoded off by one: the wire values 0..3
// mean 1..4 (spatial streams, antennas, CSI rows). ToHuman and FromHuman
// convert between the encoded and human form.

// ToHuman converts an off-by-one encoded count (0..3) to its human value.
func ToHuman(encoded uint8) uint8 {
	return encoded + 1
}

// FromHuman converts a human count in [1, 4] to its off-by-one encoding. The
// name parameter is used in the failure message.
func FromHuman(name string, human uint8) (uint8, error) {
	if human < 1 || human > 4 {
		return 0, fmt.Errorf("%s must be between 1 and 4, %d is invalid", name, human)
	}
	return human - 1, nil
}
