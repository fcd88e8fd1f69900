package encoder

import (
	"fmt"
	"math/bits"
)

// RotatedImm8 is an ARM data-processing immediate: an 8-bit value rotated
// right by an even amount in 0..30. Get reconstructs the represented
// 32-bit value. The pair (Rotate, Value) is always canonicalized to the
// smallest rotate that expresses the value. TryRotatedImm8 finds it by
// trying each even rotate from 0 upward; it does not use the
// leading/trailing-zero construction, which only nearestRotatedImm8Below
// uses.
type RotatedImm8 struct {
	Rotate uint8 // 0..15, field value; actual rotation is Rotate*2
	Value  uint8
}

// Get reconstructs the 32-bit value this RotatedImm8 represents.
func (r RotatedImm8) Get() uint32 {
	return bits.RotateLeft32(uint32(r.Value), -int(r.Rotate)*2)
}

// RotatedImm8FromParts builds a RotatedImm8 directly from an encoded field,
// as read out of a decoded instruction word.
func RotatedImm8FromParts(rotateField, value uint8) RotatedImm8 {
	return RotatedImm8{Rotate: rotateField, Value: value}
}

// TryRotatedImm8 attempts to encode n as a RotatedImm8, returning the
// canonical (smallest-rotate) encoding. ok is false if n cannot be
// expressed as an 8-bit value rotated by an even amount.
func TryRotatedImm8(n uint32) (imm RotatedImm8, ok bool) {
	for rotate := uint32(0); rotate < 32; rotate += 2 {
		rotated := bits.RotateLeft32(n, int(rotate))
		if rotated <= 0xFF {
			return RotatedImm8{Rotate: uint8(rotate / 2), Value: uint8(rotated)}, true
		}
	}
	return RotatedImm8{}, false
}

// nearestRotatedImm8Below computes the RotatedImm8 closest to n from below
// (or exactly equal, if n is itself encodable), using the closed-form
// leading/trailing-zero construction from the rotated-immediate search:
// rather than scanning every even rotate, derive the one rotate whose
// 8-bit window covers either the top set bit of n or the all-ones span
// that would saturate it.
func nearestRotatedImm8Below(n uint32) RotatedImm8 {
	if n == 0 {
		return RotatedImm8{Rotate: 0, Value: 0}
	}

	leading := bits.LeadingZeros32(n)
	if leading > 24 {
		leading = 24
	}
	trailing := bits.TrailingZeros32(n)

	rotateAmount := (8 + leading) % 32
	if alt := 32 - trailing; alt < rotateAmount {
		rotateAmount = alt
	}

	rotate := uint8(rotateAmount / 2) // ARM only allows even rotates; floor to the field width
	value := uint8(bits.RotateLeft32(n, int(rotate)*2) & 0xFF)

	return RotatedImm8{Rotate: rotate, Value: value}
}

// Next returns the RotatedImm8 immediately above the receiver in the
// (rotate, value) enumeration order used by nearestRotatedImm8Below: +1 to
// the 8-bit value, carrying into the rotate field and resetting the value
// to the window's top bit (0b0100_0000) on overflow.
func (r RotatedImm8) Next() RotatedImm8 {
	if r.Value != 0xFF {
		return RotatedImm8{Rotate: r.Rotate, Value: r.Value + 1}
	}
	return RotatedImm8{Rotate: (r.Rotate + 1) % 16, Value: 0b0100_0000}
}

// NearestRotatedImm8WithRemainder finds the RotatedImm8 nearest to n and
// the signed remainder needed to reach n exactly: remainder is positive
// when the returned immediate was rounded down, negative when it was
// rounded up to the next representable immediate. Used by the ADRL
// pseudo-instruction to split an unencodable PC-relative offset into two
// arithmetic instructions.
func NearestRotatedImm8WithRemainder(n uint32) (imm RotatedImm8, remainder int64) {
	below := nearestRotatedImm8Below(n)
	belowVal := int64(below.Get())
	belowRemainder := int64(n) - belowVal

	above := below.Next()
	aboveVal := int64(above.Get())
	aboveRemainder := int64(n) - aboveVal

	if belowRemainder <= -aboveRemainder {
		return below, belowRemainder
	}
	return above, aboveRemainder
}

// String renders the immediate as ARM disassembly would.
func (r RotatedImm8) String() string {
	return fmt.Sprintf("#0x%X", r.Get())
}
