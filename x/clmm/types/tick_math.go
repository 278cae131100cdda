package types

import (
	"cosmossdk.io/math"
	"github.com/holiman/uint256"
)

// Tick bounds for Q64.64 square-root prices.
const (
	MinTick int32 = -443636
	MaxTick int32 = 443636
)

// sqrt(1.0001^-(2^i)) in Q64.64 for i = 1..18. Bit 0 is handled separately.
var tickRatios = [...]uint64{
	18444899583751176192,
	18443055278223355904,
	18439367220385607680,
	18431993317065453568,
	18417254355718170624,
	18387811781193609216,
	18329067761203558400,
	18212142134806163456,
	17980523815641700352,
	17526086738831433728,
	16651378430235570176,
	15030750278694412288,
	12247334978884435968,
	8131365268886854656,
	3584323654725218816,
	696457651848324352,
	26294789957507116,
	37481735321082,
}

const tickRatioBit0 uint64 = 18445821805675395072

var maxU128Word = func() *uint256.Int {
	z := new(uint256.Int).Lsh(one256, 128)
	return z.Sub(z, one256)
}()

// Square-root price bounds, derived from the tick bounds so the two stay consistent.
var (
	MinSqrtPriceX64 = mustSqrtPriceAtTick(MinTick)
	MaxSqrtPriceX64 = mustSqrtPriceAtTick(MaxTick)
)

func mustSqrtPriceAtTick(tick int32) math.Int {
	p, err := SqrtPriceAtTick(tick)
	if err != nil {
		panic(err)
	}
	return p
}

// ValidateTick fails with ErrTickOutOfRange outside [MinTick, MaxTick].
func ValidateTick(tick int32) error {
	if tick < MinTick || tick > MaxTick {
		return ErrTickOutOfRange.Wrapf("tick %d outside [%d, %d]", tick, MinTick, MaxTick)
	}
	return nil
}

// SqrtPriceAtTick returns sqrt(1.0001^tick) as a Q64.64 value.
func SqrtPriceAtTick(tick int32) (math.Int, error) {
	if err := ValidateTick(tick); err != nil {
		return math.Int{}, err
	}
	return fromU256(sqrtPriceAtTick(tick)), nil
}

func sqrtPriceAtTick(tick int32) *uint256.Int {
	abs := uint32(tick)
	if tick < 0 {
		abs = uint32(-tick)
	}

	ratio := new(uint256.Int)
	if abs&1 != 0 {
		ratio.SetUint64(tickRatioBit0)
	} else {
		ratio.Lsh(one256, 64)
	}
	m := new(uint256.Int)
	for i, r := range tickRatios {
		if abs&(1<<(i+1)) != 0 {
			ratio.Mul(ratio, m.SetUint64(r))
			ratio.Rsh(ratio, 64)
		}
	}

	if tick > 0 {
		ratio.Div(maxU128Word, ratio)
	}
	return ratio
}

// TickAtSqrtPrice returns the greatest tick whose square-root price is at
// most sqrtPriceX64.
func TickAtSqrtPrice(sqrtPriceX64 math.Int) (int32, error) {
	return TickAtSqrtPriceWithin(sqrtPriceX64, MinTick, MaxTick)
}

// TickAtSqrtPriceWithin is TickAtSqrtPrice restricted to a known bracket
// [lo, hi], which callers use to shorten the search during a swap step.
func TickAtSqrtPriceWithin(sqrtPriceX64 math.Int, lo, hi int32) (int32, error) {
	if sqrtPriceX64.LT(MinSqrtPriceX64) || sqrtPriceX64.GT(MaxSqrtPriceX64) {
		return 0, ErrInvalidPriceLimit.Wrapf("sqrt price %s outside [%s, %s]", sqrtPriceX64, MinSqrtPriceX64, MaxSqrtPriceX64)
	}
	if lo < MinTick {
		lo = MinTick
	}
	if hi > MaxTick {
		hi = MaxTick
	}
	target, err := toU256(sqrtPriceX64)
	if err != nil {
		return 0, err
	}
	if sqrtPriceAtTick(lo).Gt(target) {
		lo = MinTick
	}
	if hi < MaxTick && !sqrtPriceAtTick(hi+1).Gt(target) {
		hi = MaxTick
	}

	for lo < hi {
		mid := lo + (hi-lo+1)/2
		if sqrtPriceAtTick(mid).Gt(target) {
			hi = mid - 1
		} else {
			lo = mid
		}
	}
	return lo, nil
}
