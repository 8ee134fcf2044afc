// Package bits holds the fixed-width unsigned arithmetic used by value nodes
// and behaviour functions. Values are stored in a uint64, so the widest
// supported signal is MaxWidth bits.
package bits

import (
	"fmt"
	"math/bits"
	"strings"
)

// MaxWidth is the widest signal a value node can hold.
const MaxWidth = 64

// ValidWidth reports whether w is a representable signal width.
func ValidWidth(w int) bool {
	return w > 0 && w <= MaxWidth
}

// Mask returns a mask with the low w bits set.
func Mask(w int) uint64 {
	if w >= MaxWidth {
		return ^uint64(0)
	}
	if w <= 0 {
		return 0
	}
	return uint64(1)<<uint(w) - 1
}

// Truncate drops every bit of v above width w.
func Truncate(v uint64, w int) uint64 {
	return v & Mask(w)
}

// Fits reports whether v can be stored in w bits without loss.
func Fits(v uint64, w int) bool {
	return v&^Mask(w) == 0
}

// Slice returns bits hi..lo (inclusive) of v, shifted down to bit 0.
func Slice(v uint64, hi, lo int) uint64 {
	if hi < lo || lo < 0 || lo >= MaxWidth {
		return 0
	}
	return Truncate(v>>uint(lo), hi-lo+1)
}

// Zext zero extends v to w bits, truncating when v is wider.
func Zext(v uint64, w int) uint64 {
	return Truncate(v, w)
}

// Sext sign extends the from-bit value v to w bits.
func Sext(v uint64, from, w int) uint64 {
	if from <= 0 || from >= w {
		return Truncate(v, w)
	}
	v = Truncate(v, from)
	if v&(uint64(1)<<uint(from-1)) != 0 {
		v |= Mask(w) &^ Mask(from)
	}
	return v
}

// NBits returns the number of bits needed to represent n.
func NBits(n uint64) int {
	if n == 0 {
		return 1
	}
	return bits.Len64(n)
}

// SelNBits returns the width of a select signal that chooses between n items.
func SelNBits(n uint64) int {
	if n <= 1 {
		return 0
	}
	return bits.Len64(n - 1)
}

// Format renders v as a zero-padded binary literal of width w, e.g. 0b0101.
func Format(v uint64, w int) string {
	if !ValidWidth(w) {
		return fmt.Sprintf("%#x", v)
	}
	s := fmt.Sprintf("%b", Truncate(v, w))
	if pad := w - len(s); pad > 0 {
		s = strings.Repeat("0", pad) + s
	}
	return "0b" + s
}
