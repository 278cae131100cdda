package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// swapResult is the outcome of one pass of the swap loop.
type swapResult struct {
	AmountIn  math.Int
	AmountOut math.Int
	LpFee     math.Int
	StartTick int32
	EndTick   int32
	Steps     uint32
	Crossings uint32
}

// resolvePriceLimit maps a zero limit to the price extreme in the trade
// direction and checks that the limit lies on the correct side of sqrtPrice.
// Limits stay strictly inside the price range so the tick never leaves it.
func resolvePriceLimit(sqrtPrice, limit math.Int, zeroForOne bool) (math.Int, error) {
	lowest := types.MinSqrtPriceX64.AddRaw(1)
	highest := types.MaxSqrtPriceX64.SubRaw(1)
	if limit.IsNil() || limit.IsZero() {
		if zeroForOne {
			limit = lowest
		} else {
			limit = highest
		}
	}
	if zeroForOne {
		if limit.GTE(sqrtPrice) || limit.LT(lowest) {
			return math.Int{}, types.ErrInvalidPriceLimit.Wrapf("limit %s must be in [%s, %s)", limit, lowest, sqrtPrice)
		}
		return limit, nil
	}
	if limit.LTE(sqrtPrice) || limit.GT(highest) {
		return math.Int{}, types.ErrInvalidPriceLimit.Wrapf("limit %s must be in (%s, %s]", limit, sqrtPrice, highest)
	}
	return limit, nil
}

// executeSwap runs the exact-input swap loop over the working set. All tick
// crossings and fee growth land in pc; the store is not touched.
func (pc *poolContext) executeSwap(amountIn math.Int, zeroForOne bool, sqrtPriceLimit math.Int) (swapResult, error) {
	res := swapResult{
		AmountIn:  math.ZeroInt(),
		AmountOut: math.ZeroInt(),
		LpFee:     math.ZeroInt(),
		StartTick: pc.pool.TickCurrent,
		EndTick:   pc.pool.TickCurrent,
	}
	limit, err := resolvePriceLimit(pc.pool.SqrtPriceX64, sqrtPriceLimit, zeroForOne)
	if err != nil {
		return res, err
	}

	remaining := amountIn
	sqrtPrice := pc.pool.SqrtPriceX64
	tick := pc.pool.TickCurrent
	liquidity := pc.pool.Liquidity

	for remaining.IsPositive() && !sqrtPrice.Equal(limit) {
		if res.Steps >= pc.params.Swap.MaxSteps {
			return res, types.WrapWithRecovery(types.ErrStepLimitExceeded, "swap exceeded %d steps", pc.params.Swap.MaxSteps)
		}
		res.Steps++

		next, found, err := pc.nextInitializedTick(tick, zeroForOne)
		if err != nil {
			return res, err
		}
		if !found {
			return res, types.WrapWithRecovery(types.ErrInsufficientLiquidity,
				"no initialized tick beyond %d with %s input remaining", tick, remaining)
		}
		sqrtNext, err := types.SqrtPriceAtTick(next)
		if err != nil {
			return res, err
		}
		target := sqrtNext
		if (zeroForOne && sqrtNext.LT(limit)) || (!zeroForOne && sqrtNext.GT(limit)) {
			target = limit
		}

		step, err := types.ComputeSwapStep(sqrtPrice, target, liquidity, remaining, pc.pool.FeeRatePpm, zeroForOne)
		if err != nil {
			return res, err
		}
		consumed := step.AmountIn.Add(step.FeeAmount)
		if remaining, err = types.SubU128(remaining, consumed); err != nil {
			return res, err
		}
		if res.AmountIn, err = types.AddU128(res.AmountIn, consumed); err != nil {
			return res, err
		}
		if res.AmountOut, err = types.AddU128(res.AmountOut, step.AmountOut); err != nil {
			return res, err
		}
		res.LpFee = res.LpFee.Add(step.FeeAmount)

		// fee growth is scaled by the liquidity active during this step
		if liquidity.IsPositive() && step.FeeAmount.IsPositive() {
			growth, err := types.FeeGrowthDelta(step.FeeAmount, liquidity)
			if err != nil {
				return res, err
			}
			if zeroForOne {
				pc.pool.FeeGrowthGlobalA, err = types.SafeAdd(pc.pool.FeeGrowthGlobalA, growth)
			} else {
				pc.pool.FeeGrowthGlobalB, err = types.SafeAdd(pc.pool.FeeGrowthGlobalB, growth)
			}
			if err != nil {
				return res, err
			}
		}

		prevSqrt := sqrtPrice
		sqrtPrice = step.SqrtPriceNext
		switch {
		case sqrtPrice.Equal(sqrtNext):
			net, err := pc.crossTick(next)
			if err != nil {
				return res, err
			}
			res.Crossings++
			if zeroForOne {
				net = net.Neg()
			}
			if liquidity, err = types.ApplyLiquidityDelta(liquidity, net); err != nil {
				return res, err
			}
			if zeroForOne {
				tick = next - 1
			} else {
				tick = next
			}
		case !sqrtPrice.Equal(prevSqrt):
			lo, hi := tick, next
			if zeroForOne {
				lo, hi = next, tick
			}
			if tick, err = types.TickAtSqrtPriceWithin(sqrtPrice, lo, hi); err != nil {
				return res, err
			}
		}
	}

	if res.AmountOut.IsZero() {
		return res, types.WrapWithRecovery(types.ErrInsufficientLiquidity, "swap of %s produced no output", amountIn)
	}

	pc.pool.SqrtPriceX64 = sqrtPrice
	pc.pool.TickCurrent = tick
	pc.pool.Liquidity = liquidity
	res.EndTick = tick
	return res, nil
}
