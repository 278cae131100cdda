package types

import (
	"cosmossdk.io/math"
)

// TickArraySize is the number of ticks stored in one tick array.
const TickArraySize = 32

// Tick is one initialized-or-not price point inside a tick array.
type Tick struct {
	LiquidityNet      math.Int `json:"liquidity_net"`
	LiquidityGross    math.Int `json:"liquidity_gross"`
	FeeGrowthOutsideA math.Int `json:"fee_growth_outside_a"`
	FeeGrowthOutsideB math.Int `json:"fee_growth_outside_b"`
	Initialized       bool     `json:"initialized"`
}

// NewTick returns an uninitialized tick with zeroed accumulators.
func NewTick() Tick {
	return Tick{
		LiquidityNet:      math.ZeroInt(),
		LiquidityGross:    math.ZeroInt(),
		FeeGrowthOutsideA: math.ZeroInt(),
		FeeGrowthOutsideB: math.ZeroInt(),
	}
}

// TickArray is a contiguous block of TickArraySize ticks. StartTickIndex is
// always a multiple of TickArraySize * tick spacing.
type TickArray struct {
	PoolId           uint64              `json:"pool_id"`
	StartTickIndex   int32               `json:"start_tick_index"`
	Ticks            [TickArraySize]Tick `json:"ticks"`
	InitializedCount uint32              `json:"initialized_count"`
}

// NewTickArray returns an empty tick array.
func NewTickArray(poolID uint64, startIndex int32) TickArray {
	ta := TickArray{PoolId: poolID, StartTickIndex: startIndex}
	for i := range ta.Ticks {
		ta.Ticks[i] = NewTick()
	}
	return ta
}

// TicksInArray returns the tick span covered by one array at the given spacing.
func TicksInArray(tickSpacing uint32) int32 {
	return TickArraySize * int32(tickSpacing)
}

// floorDiv divides rounding toward negative infinity.
func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// ArrayStartIndex returns the start index of the array containing tick.
func ArrayStartIndex(tick int32, tickSpacing uint32) int32 {
	span := TicksInArray(tickSpacing)
	return floorDiv(tick, span) * span
}

// ValidateArrayStartIndex checks alignment and bounds of a tick array start index.
func ValidateArrayStartIndex(startIndex int32, tickSpacing uint32) error {
	span := TicksInArray(tickSpacing)
	if startIndex%span != 0 {
		return ErrMisalignedStartIndex.Wrapf("start index %d is not a multiple of %d", startIndex, span)
	}
	if startIndex+span-1 < MinTick || startIndex > MaxTick {
		return ErrTickOutOfRange.Wrapf("tick array %d outside [%d, %d]", startIndex, MinTick, MaxTick)
	}
	return nil
}

// ValidatePositionTick checks that tick is in range and on the spacing grid.
func ValidatePositionTick(tick int32, tickSpacing uint32) error {
	if err := ValidateTick(tick); err != nil {
		return err
	}
	if tick%int32(tickSpacing) != 0 {
		return ErrTickMisaligned.Wrapf("tick %d is not a multiple of spacing %d", tick, tickSpacing)
	}
	return nil
}

// ValidateTickRange checks a position range [lower, upper).
func ValidateTickRange(lower, upper int32, tickSpacing uint32) error {
	if lower >= upper {
		return ErrInvalidTickRange.Wrapf("lower tick %d must be below upper tick %d", lower, upper)
	}
	if err := ValidatePositionTick(lower, tickSpacing); err != nil {
		return err
	}
	return ValidatePositionTick(upper, tickSpacing)
}

// Offset returns the slot of tick inside the array.
func (ta TickArray) Offset(tick int32, tickSpacing uint32) (int, error) {
	span := TicksInArray(tickSpacing)
	if tick < ta.StartTickIndex || tick >= ta.StartTickIndex+span {
		return 0, ErrTickOutOfRange.Wrapf("tick %d not in array starting at %d", tick, ta.StartTickIndex)
	}
	if (tick-ta.StartTickIndex)%int32(tickSpacing) != 0 {
		return 0, ErrTickMisaligned.Wrapf("tick %d is not a multiple of spacing %d", tick, tickSpacing)
	}
	return int((tick - ta.StartTickIndex) / int32(tickSpacing)), nil
}

// TickIndexAt returns the tick index stored at a slot.
func (ta TickArray) TickIndexAt(offset int, tickSpacing uint32) int32 {
	return ta.StartTickIndex + int32(offset)*int32(tickSpacing)
}

// NextInitializedInArray scans the array for the nearest initialized tick.
// When lte is set it searches ticks at or below from, otherwise strictly
// above it. The scan is bounded by TickArraySize.
func (ta TickArray) NextInitializedInArray(from int32, tickSpacing uint32, lte bool) (int32, bool) {
	spacing := int32(tickSpacing)
	span := TicksInArray(tickSpacing)
	if lte {
		if from < ta.StartTickIndex {
			return 0, false
		}
		offset := int((floorDiv(from, spacing)*spacing - ta.StartTickIndex) / spacing)
		if offset >= TickArraySize {
			offset = TickArraySize - 1
		}
		for i := offset; i >= 0; i-- {
			if ta.Ticks[i].Initialized {
				return ta.TickIndexAt(i, tickSpacing), true
			}
		}
		return 0, false
	}

	if from >= ta.StartTickIndex+span {
		return 0, false
	}
	offset := 0
	if from >= ta.StartTickIndex {
		offset = int((floorDiv(from, spacing)*spacing-ta.StartTickIndex)/spacing) + 1
	}
	for i := offset; i < TickArraySize; i++ {
		if ta.Ticks[i].Initialized {
			return ta.TickIndexAt(i, tickSpacing), true
		}
	}
	return 0, false
}

// SumLiquidityNet returns the sum of liquidity_net over the array.
func (ta TickArray) SumLiquidityNet() math.Int {
	sum := math.ZeroInt()
	for _, t := range ta.Ticks {
		if !t.LiquidityNet.IsNil() {
			sum = sum.Add(t.LiquidityNet)
		}
	}
	return sum
}

// CountInitialized recounts the initialized ticks.
func (ta TickArray) CountInitialized() uint32 {
	var n uint32
	for _, t := range ta.Ticks {
		if t.Initialized {
			n++
		}
	}
	return n
}
