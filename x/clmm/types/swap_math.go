package types

import (
	"cosmossdk.io/math"
)

// SwapStep is the outcome of one price movement inside a single tick range.
type SwapStep struct {
	SqrtPriceNext math.Int
	AmountIn      math.Int
	AmountOut     math.Int
	FeeAmount     math.Int
}

// ComputeSwapStep moves the price from sqrtCurrent toward sqrtTarget with an
// exact input of amountRemaining. The LP fee (feeRatePpm of FeeRateDenominator)
// is deducted from the input before the price update.
func ComputeSwapStep(sqrtCurrent, sqrtTarget, liquidity, amountRemaining math.Int, feeRatePpm uint32, zeroForOne bool) (SwapStep, error) {
	var step SwapStep
	feeRate := math.NewInt(int64(feeRatePpm))
	feeComplement := math.NewInt(FeeRateDenominator - int64(feeRatePpm))
	denominator := math.NewInt(FeeRateDenominator)

	remainingLessFee, err := MulDiv(amountRemaining, feeComplement, denominator, false)
	if err != nil {
		return step, err
	}

	var amountIn math.Int
	if zeroForOne {
		amountIn, err = AmountADelta(sqrtTarget, sqrtCurrent, liquidity, true)
	} else {
		amountIn, err = AmountBDelta(sqrtCurrent, sqrtTarget, liquidity, true)
	}
	if err != nil {
		return step, err
	}

	if remainingLessFee.GTE(amountIn) {
		step.SqrtPriceNext = sqrtTarget
	} else {
		step.SqrtPriceNext, err = NextSqrtPriceFromInput(sqrtCurrent, liquidity, remainingLessFee, zeroForOne)
		if err != nil {
			return step, err
		}
	}
	reachedTarget := step.SqrtPriceNext.Equal(sqrtTarget)

	if zeroForOne {
		if !reachedTarget {
			if amountIn, err = AmountADelta(step.SqrtPriceNext, sqrtCurrent, liquidity, true); err != nil {
				return step, err
			}
		}
		step.AmountOut, err = AmountBDelta(step.SqrtPriceNext, sqrtCurrent, liquidity, false)
	} else {
		if !reachedTarget {
			if amountIn, err = AmountBDelta(sqrtCurrent, step.SqrtPriceNext, liquidity, true); err != nil {
				return step, err
			}
		}
		step.AmountOut, err = AmountADelta(sqrtCurrent, step.SqrtPriceNext, liquidity, false)
	}
	if err != nil {
		return step, err
	}
	step.AmountIn = amountIn

	if !reachedTarget {
		// the remainder of the input becomes fee
		step.FeeAmount = amountRemaining.Sub(amountIn)
	} else if step.FeeAmount, err = MulDiv(amountIn, feeRate, feeComplement, true); err != nil {
		return step, err
	}
	return step, nil
}
