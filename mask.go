package ecs

import (
	"math/bits"

	"github.com/rivenforge/ecs/internal/assert"
)

// isSingleBit reports whether mask has exactly one bit set.
func isSingleBit(mask uint64) bool {
	return mask != 0 && mask&(mask-1) == 0
}

// bitIndex returns the index of the single set bit in mask. Callers must
// have already validated mask with isSingleBit; this is not itself a
// validation point.
func bitIndex(mask uint64) int {
	assert.That(isSingleBit(mask), "mask %#x passed to bitIndex is not a single bit", mask)
	return bits.TrailingZeros64(mask)
}
