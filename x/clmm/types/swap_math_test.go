package types

import (
	"math/big"
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestMulDiv(t *testing.T) {
	got, err := MulDiv(math.NewInt(7), math.NewInt(3), math.NewInt(2), false)
	require.NoError(t, err)
	require.Equal(t, "10", got.String())

	got, err = MulDiv(math.NewInt(7), math.NewInt(3), math.NewInt(2), true)
	require.NoError(t, err)
	require.Equal(t, "11", got.String())

	got, err = MulDiv(math.NewInt(8), math.NewInt(3), math.NewInt(2), true)
	require.NoError(t, err)
	require.Equal(t, "12", got.String())

	_, err = MulDiv(math.NewInt(1), math.NewInt(1), math.ZeroInt(), false)
	require.ErrorIs(t, err, ErrMathOverflow)

	huge := math.NewIntFromBigInt(new(big.Int).Lsh(big.NewInt(1), 200))
	_, err = MulDiv(huge, huge, math.NewInt(1), false)
	require.ErrorIs(t, err, ErrMathOverflow)

	// the intermediate product may exceed 256 bits
	got, err = MulDiv(huge, huge, huge, false)
	require.NoError(t, err)
	require.True(t, got.Equal(huge))

	_, err = MulDiv(math.NewInt(-1), math.NewInt(1), math.NewInt(1), false)
	require.ErrorIs(t, err, ErrMathOverflow)
}

func TestU128Bounds(t *testing.T) {
	_, err := AddU128(MaxU128, math.NewInt(1))
	require.ErrorIs(t, err, ErrMathOverflow)
	_, err = SubU128(math.NewInt(1), math.NewInt(2))
	require.ErrorIs(t, err, ErrMathOverflow)

	l, err := ApplyLiquidityDelta(math.NewInt(100), math.NewInt(-40))
	require.NoError(t, err)
	require.Equal(t, "60", l.String())
	_, err = ApplyLiquidityDelta(math.NewInt(100), math.NewInt(-101))
	require.ErrorIs(t, err, ErrMathOverflow)
}

func TestFeeGrowthAndOwed(t *testing.T) {
	growth, err := FeeGrowthDelta(math.NewInt(500), math.NewInt(1000))
	require.NoError(t, err)
	require.True(t, growth.Equal(Q64.QuoRaw(2)))

	owed, err := FeesOwed(math.NewInt(1000), growth, math.ZeroInt())
	require.NoError(t, err)
	require.Equal(t, "500", owed.String())

	zero, err := FeeGrowthDelta(math.NewInt(500), math.ZeroInt())
	require.NoError(t, err)
	require.True(t, zero.IsZero())

	pos := Position{
		Liquidity:            math.NewInt(1000),
		FeeGrowthInsideLastA: math.ZeroInt(),
		FeeGrowthInsideLastB: math.ZeroInt(),
		TokensOwedA:          math.NewInt(3),
		TokensOwedB:          math.ZeroInt(),
	}
	require.NoError(t, pos.Accrue(growth, math.ZeroInt()))
	require.Equal(t, "503", pos.TokensOwedA.String())
	require.True(t, pos.FeeGrowthInsideLastA.Equal(growth))

	// accruing twice at the same growth adds nothing
	require.NoError(t, pos.Accrue(growth, math.ZeroInt()))
	require.Equal(t, "503", pos.TokensOwedA.String())
}

func TestAmountDeltas(t *testing.T) {
	two := Q64.MulRaw(2)
	liq := math.NewInt(1000)

	b, err := AmountBDelta(Q64, two, liq, false)
	require.NoError(t, err)
	require.Equal(t, "1000", b.String())

	a, err := AmountADelta(two, Q64, liq, true)
	require.NoError(t, err)
	require.Equal(t, "500", a.String())

	a, b, err = AmountsForLiquidity(Q64, Q64, two, liq, false)
	require.NoError(t, err)
	require.Equal(t, "500", a.String())
	require.True(t, b.IsZero())

	a, b, err = AmountsForLiquidity(two, Q64, two, liq, false)
	require.NoError(t, err)
	require.True(t, a.IsZero())
	require.Equal(t, "1000", b.String())

	fromB, err := LiquidityFromAmountB(Q64, two, math.NewInt(1000))
	require.NoError(t, err)
	require.Equal(t, "1000", fromB.String())

	fromA, err := LiquidityFromAmountA(Q64, two, math.NewInt(500))
	require.NoError(t, err)
	require.Equal(t, "1000", fromA.String())

	_, err = LiquidityFromAmountA(Q64, Q64, math.NewInt(500))
	require.ErrorIs(t, err, ErrInvalidTickRange)
}

func TestComputeSwapStepReachesTarget(t *testing.T) {
	target, err := SqrtPriceAtTick(-10)
	require.NoError(t, err)

	step, err := ComputeSwapStep(Q64, target, math.NewInt(1_000_000_000), math.NewInt(1_000_000_000), 3000, true)
	require.NoError(t, err)
	require.True(t, step.SqrtPriceNext.Equal(target))
	require.True(t, step.AmountOut.IsPositive())
	require.True(t, step.FeeAmount.IsPositive())
	require.True(t, step.AmountIn.Add(step.FeeAmount).LTE(math.NewInt(1_000_000_000)))
}

func TestComputeSwapStepProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		zeroForOne := rapid.Bool().Draw(t, "zero_for_one")
		current := rapid.Int32Range(-100000, 100000).Draw(t, "current_tick")
		distance := rapid.Int32Range(1, 5000).Draw(t, "distance")
		target := current + distance
		if zeroForOne {
			target = current - distance
		}
		fee := rapid.SampledFrom([]uint32{0, 100, 500, 3000, 10000}).Draw(t, "fee_ppm")
		liquidity := math.NewIntFromUint64(rapid.Uint64Range(1, 1e18).Draw(t, "liquidity"))
		remaining := math.NewIntFromUint64(rapid.Uint64Range(1, 1e18).Draw(t, "amount"))

		sqrtCurrent, _ := SqrtPriceAtTick(current)
		sqrtTarget, _ := SqrtPriceAtTick(target)
		step, err := ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, remaining, fee, zeroForOne)
		if err != nil {
			t.Fatalf("swap step: %v", err)
		}

		if step.AmountIn.IsNegative() || step.AmountOut.IsNegative() || step.FeeAmount.IsNegative() {
			t.Fatalf("negative step %+v", step)
		}
		if step.AmountIn.Add(step.FeeAmount).GT(remaining) {
			t.Fatalf("step consumed %s + %s of %s", step.AmountIn, step.FeeAmount, remaining)
		}
		if zeroForOne {
			if step.SqrtPriceNext.GT(sqrtCurrent) || step.SqrtPriceNext.LT(sqrtTarget) {
				t.Fatalf("price %s left [%s, %s]", step.SqrtPriceNext, sqrtTarget, sqrtCurrent)
			}
		} else if step.SqrtPriceNext.LT(sqrtCurrent) || step.SqrtPriceNext.GT(sqrtTarget) {
			t.Fatalf("price %s left [%s, %s]", step.SqrtPriceNext, sqrtCurrent, sqrtTarget)
		}
		if !step.SqrtPriceNext.Equal(sqrtTarget) && !step.AmountIn.Add(step.FeeAmount).Equal(remaining) {
			t.Fatalf("partial step left input unspent: %+v of %s", step, remaining)
		}

		// output never exceeds the value of the input at the better price
		var outBound math.Int
		if zeroForOne {
			outBound, err = AmountBDelta(step.SqrtPriceNext, sqrtCurrent, liquidity, true)
		} else {
			outBound, err = AmountADelta(sqrtCurrent, step.SqrtPriceNext, liquidity, true)
		}
		if err != nil || step.AmountOut.GT(outBound) {
			t.Fatalf("output %s above bound %s (%v)", step.AmountOut, outBound, err)
		}
	})
}
