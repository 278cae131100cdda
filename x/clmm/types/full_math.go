package types

import (
	"math/big"

	"cosmossdk.io/math"
	"github.com/holiman/uint256"
)

// Fixed-point constants. Prices and fee growth are Q64.64.
var (
	Q64     = math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 64))
	MaxU128 = math.NewIntFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1)))

	one256 = uint256.NewInt(1)
)

// FeeRateDenominator is the denominator of the per-step LP fee rate (ppm).
const FeeRateDenominator = 1_000_000

// BpsDenominator is the denominator of every basis-point quantity.
const BpsDenominator = 10_000

func toU256(x math.Int) (*uint256.Int, error) {
	if x.IsNil() || x.IsNegative() {
		return nil, ErrMathOverflow.Wrapf("operand %v is not a non-negative integer", x)
	}
	z, overflow := uint256.FromBig(x.BigInt())
	if overflow {
		return nil, ErrMathOverflow.Wrapf("operand %s exceeds 256 bits", x)
	}
	return z, nil
}

func fromU256(z *uint256.Int) math.Int {
	return math.NewIntFromBigInt(z.ToBig())
}

// MulDiv returns a*b/d with a 512-bit intermediate product, rounded down or up.
// Fails with ErrMathOverflow when d is zero or the quotient exceeds 256 bits.
func MulDiv(a, b, d math.Int, roundUp bool) (math.Int, error) {
	x, err := toU256(a)
	if err != nil {
		return math.Int{}, err
	}
	y, err := toU256(b)
	if err != nil {
		return math.Int{}, err
	}
	den, err := toU256(d)
	if err != nil {
		return math.Int{}, err
	}
	if den.IsZero() {
		return math.Int{}, ErrMathOverflow.Wrap("division by zero")
	}

	z, overflow := new(uint256.Int).MulDivOverflow(x, y, den)
	if overflow {
		return math.Int{}, ErrMathOverflow.Wrapf("%s * %s / %s exceeds 256 bits", a, b, d)
	}
	if roundUp && !new(uint256.Int).MulMod(x, y, den).IsZero() {
		if _, carry := z.AddOverflow(z, one256); carry {
			return math.Int{}, ErrMathOverflow.Wrapf("%s * %s / %s rounded up exceeds 256 bits", a, b, d)
		}
	}
	return fromU256(z), nil
}

// DivRoundUp returns ceil(a/b) for non-negative a and positive b.
func DivRoundUp(a, b math.Int) (math.Int, error) {
	if b.IsZero() {
		return math.Int{}, ErrMathOverflow.Wrap("division by zero")
	}
	q, r := new(big.Int).QuoRem(a.BigInt(), b.BigInt(), new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return math.NewIntFromBigInt(q), nil
}

// checkBits fails when |r| needs more than bits bits.
func checkBits(r *big.Int, bits int, op string) (math.Int, error) {
	if r.BitLen() > bits {
		return math.Int{}, ErrMathOverflow.Wrapf("%s result exceeds %d bits", op, bits)
	}
	return math.NewIntFromBigInt(r), nil
}

// SafeAdd adds two signed values within the 256-bit range.
func SafeAdd(a, b math.Int) (math.Int, error) {
	return checkBits(new(big.Int).Add(a.BigInt(), b.BigInt()), 256, "addition")
}

// SafeSub subtracts two signed values within the 256-bit range.
func SafeSub(a, b math.Int) (math.Int, error) {
	return checkBits(new(big.Int).Sub(a.BigInt(), b.BigInt()), 256, "subtraction")
}

// AddU128 adds two non-negative values and fails past 2^128-1.
func AddU128(a, b math.Int) (math.Int, error) {
	return checkBits(new(big.Int).Add(a.BigInt(), b.BigInt()), 128, "u128 addition")
}

// SubU128 subtracts b from a and fails on underflow.
func SubU128(a, b math.Int) (math.Int, error) {
	if a.LT(b) {
		return math.Int{}, ErrMathOverflow.Wrapf("underflow: %s - %s", a, b)
	}
	return a.Sub(b), nil
}

// ApplyLiquidityDelta adds a signed delta to an unsigned liquidity value.
func ApplyLiquidityDelta(liquidity, delta math.Int) (math.Int, error) {
	r := new(big.Int).Add(liquidity.BigInt(), delta.BigInt())
	if r.Sign() < 0 {
		return math.Int{}, ErrMathOverflow.Wrapf("liquidity underflow: %s + %s", liquidity, delta)
	}
	return checkBits(r, 128, "liquidity")
}

// FeeGrowthDelta converts an amount of fees into Q64.64 growth per unit of liquidity.
func FeeGrowthDelta(fee, liquidity math.Int) (math.Int, error) {
	if liquidity.IsZero() || fee.IsZero() {
		return math.ZeroInt(), nil
	}
	return MulDiv(fee, Q64, liquidity, false)
}

// FeesOwed returns liquidity * (insideNow - insideLast) >> 64.
func FeesOwed(liquidity, insideNow, insideLast math.Int) (math.Int, error) {
	delta, err := SafeSub(insideNow, insideLast)
	if err != nil {
		return math.Int{}, err
	}
	if delta.IsNegative() || liquidity.IsZero() {
		return math.ZeroInt(), nil
	}
	return MulDiv(liquidity, delta, Q64, false)
}
