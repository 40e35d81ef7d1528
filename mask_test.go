package ecs

import "testing"

func TestIsSingleBit(t *testing.T) {
	cases := map[uint64]bool{
		0:          false,
		1:          true,
		2:          true,
		3:          false,
		1 << 63:    true,
		(1 << 5) | (1 << 6): false,
	}
	for mask, want := range cases {
		if got := isSingleBit(mask); got != want {
			t.Errorf("isSingleBit(%#x) = %v, want %v", mask, got, want)
		}
	}
}

func TestBitIndex(t *testing.T) {
	for i := 0; i < 64; i++ {
		mask := uint64(1) << uint(i)
		if got := bitIndex(mask); got != i {
			t.Errorf("bitIndex(%#x) = %d, want %d", mask, got, i)
		}
	}
}
