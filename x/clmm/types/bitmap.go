package types

import (
	"math/bits"
)

// TickArrayBitmapWords covers every tick array of the full tick range at
// spacing 1. Wider spacings use a prefix of the same bit set.
const TickArrayBitmapWords = 434

// TickArrayBitmap holds one bit per tick array: set while the array has at
// least one initialized tick.
type TickArrayBitmap [TickArrayBitmapWords]uint64

// MaxBit returns the number of addressable bits.
func (b *TickArrayBitmap) MaxBit() int { return TickArrayBitmapWords * 64 }

// Set marks bit i.
func (b *TickArrayBitmap) Set(i int) { b[i/64] |= 1 << uint(i%64) }

// Clear unmarks bit i.
func (b *TickArrayBitmap) Clear(i int) { b[i/64] &^= 1 << uint(i%64) }

// IsSet reports whether bit i is marked.
func (b *TickArrayBitmap) IsSet(i int) bool { return b[i/64]&(1<<uint(i%64)) != 0 }

// NextSetBit returns the lowest marked bit at or above from.
func (b *TickArrayBitmap) NextSetBit(from int) (int, bool) {
	if from < 0 {
		from = 0
	}
	if from >= b.MaxBit() {
		return 0, false
	}
	w := from / 64
	word := b[w] &^ (1<<uint(from%64) - 1)
	for {
		if word != 0 {
			return w*64 + bits.TrailingZeros64(word), true
		}
		w++
		if w >= TickArrayBitmapWords {
			return 0, false
		}
		word = b[w]
	}
}

// PrevSetBit returns the highest marked bit at or below from.
func (b *TickArrayBitmap) PrevSetBit(from int) (int, bool) {
	if from < 0 {
		return 0, false
	}
	if from >= b.MaxBit() {
		from = b.MaxBit() - 1
	}
	w := from / 64
	shift := uint(63 - from%64)
	word := b[w] << shift >> shift
	for {
		if word != 0 {
			return w*64 + 63 - bits.LeadingZeros64(word), true
		}
		w--
		if w < 0 {
			return 0, false
		}
		word = b[w]
	}
}

// Count returns the number of marked bits.
func (b *TickArrayBitmap) Count() int {
	n := 0
	for _, w := range b {
		n += bits.OnesCount64(w)
	}
	return n
}

func minArrayIndex(tickSpacing uint32) int32 {
	return floorDiv(MinTick, TicksInArray(tickSpacing))
}

// ArrayBit maps a tick array start index to its bitmap position.
func ArrayBit(startIndex int32, tickSpacing uint32) int {
	return int(floorDiv(startIndex, TicksInArray(tickSpacing)) - minArrayIndex(tickSpacing))
}

// ArrayStartFromBit is the inverse of ArrayBit.
func ArrayStartFromBit(bit int, tickSpacing uint32) int32 {
	return (int32(bit) + minArrayIndex(tickSpacing)) * TicksInArray(tickSpacing)
}
