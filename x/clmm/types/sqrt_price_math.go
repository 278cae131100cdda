package types

import (
	"cosmossdk.io/math"
)

func orderSqrtPrices(a, b math.Int) (math.Int, math.Int) {
	if a.GT(b) {
		return b, a
	}
	return a, b
}

func boundU128(x math.Int, what string) (math.Int, error) {
	if x.GT(MaxU128) {
		return math.Int{}, ErrMathOverflow.Wrapf("%s %s exceeds 128 bits", what, x)
	}
	return x, nil
}

// AmountADelta returns L * (sqrtB - sqrtA) * 2^64 / (sqrtA * sqrtB), the
// amount of token A spanned by liquidity between two square-root prices.
func AmountADelta(sqrtA, sqrtB, liquidity math.Int, roundUp bool) (math.Int, error) {
	sqrtA, sqrtB = orderSqrtPrices(sqrtA, sqrtB)
	if !sqrtA.IsPositive() {
		return math.Int{}, ErrMathOverflow.Wrap("sqrt price must be positive")
	}
	if liquidity.IsZero() || sqrtA.Equal(sqrtB) {
		return math.ZeroInt(), nil
	}

	numerator1 := liquidity.Mul(Q64)
	numerator2 := sqrtB.Sub(sqrtA)
	t, err := MulDiv(numerator1, numerator2, sqrtB, roundUp)
	if err != nil {
		return math.Int{}, err
	}
	var amount math.Int
	if roundUp {
		if amount, err = DivRoundUp(t, sqrtA); err != nil {
			return math.Int{}, err
		}
	} else {
		amount = t.Quo(sqrtA)
	}
	return boundU128(amount, "token A amount")
}

// AmountBDelta returns L * (sqrtB - sqrtA) / 2^64, the amount of token B
// spanned by liquidity between two square-root prices.
func AmountBDelta(sqrtA, sqrtB, liquidity math.Int, roundUp bool) (math.Int, error) {
	sqrtA, sqrtB = orderSqrtPrices(sqrtA, sqrtB)
	if liquidity.IsZero() || sqrtA.Equal(sqrtB) {
		return math.ZeroInt(), nil
	}
	amount, err := MulDiv(liquidity, sqrtB.Sub(sqrtA), Q64, roundUp)
	if err != nil {
		return math.Int{}, err
	}
	return boundU128(amount, "token B amount")
}

// NextSqrtPriceFromInput returns the square-root price after adding amountIn
// of the input token to liquidity at sqrtPrice. Rounding always favours the
// pool: a zero-for-one input moves the price down by at least the exact
// amount, a one-for-zero input moves it up by at most the exact amount.
func NextSqrtPriceFromInput(sqrtPrice, liquidity, amountIn math.Int, zeroForOne bool) (math.Int, error) {
	if !sqrtPrice.IsPositive() || !liquidity.IsPositive() {
		return math.Int{}, ErrMathOverflow.Wrap("sqrt price and liquidity must be positive")
	}
	if amountIn.IsZero() {
		return sqrtPrice, nil
	}

	if zeroForOne {
		// L*2^64*sqrtP / (L*2^64 + amount*sqrtP), rounded up
		numerator1 := liquidity.Mul(Q64)
		product, err := SafeAdd(numerator1, amountIn.Mul(sqrtPrice))
		if err != nil {
			return math.Int{}, err
		}
		return MulDiv(numerator1, sqrtPrice, product, true)
	}

	// sqrtP + amount*2^64/L, rounded down
	quotient, err := MulDiv(amountIn, Q64, liquidity, false)
	if err != nil {
		return math.Int{}, err
	}
	return boundU128(sqrtPrice.Add(quotient), "sqrt price")
}

// AmountsForLiquidity returns the token amounts represented by liquidity over
// [sqrtLower, sqrtUpper) when the pool sits at sqrtCurrent.
func AmountsForLiquidity(sqrtCurrent, sqrtLower, sqrtUpper, liquidity math.Int, roundUp bool) (amountA, amountB math.Int, err error) {
	amountA, amountB = math.ZeroInt(), math.ZeroInt()
	switch {
	case sqrtCurrent.LTE(sqrtLower):
		amountA, err = AmountADelta(sqrtLower, sqrtUpper, liquidity, roundUp)
	case sqrtCurrent.LT(sqrtUpper):
		if amountA, err = AmountADelta(sqrtCurrent, sqrtUpper, liquidity, roundUp); err != nil {
			return
		}
		amountB, err = AmountBDelta(sqrtLower, sqrtCurrent, liquidity, roundUp)
	default:
		amountB, err = AmountBDelta(sqrtLower, sqrtUpper, liquidity, roundUp)
	}
	return
}

// LiquidityFromAmountA returns the liquidity a deposit of amountA buys over
// [sqrtA, sqrtB) when the range lies entirely above the current price.
func LiquidityFromAmountA(sqrtA, sqrtB, amountA math.Int) (math.Int, error) {
	sqrtA, sqrtB = orderSqrtPrices(sqrtA, sqrtB)
	if sqrtA.Equal(sqrtB) {
		return math.Int{}, ErrInvalidTickRange.Wrap("empty price range")
	}
	intermediate, err := MulDiv(sqrtA, sqrtB, Q64, false)
	if err != nil {
		return math.Int{}, err
	}
	liquidity, err := MulDiv(amountA, intermediate, sqrtB.Sub(sqrtA), false)
	if err != nil {
		return math.Int{}, err
	}
	return boundU128(liquidity, "liquidity")
}

// LiquidityFromAmountB returns the liquidity a deposit of amountB buys over
// [sqrtA, sqrtB) when the range lies entirely below the current price.
func LiquidityFromAmountB(sqrtA, sqrtB, amountB math.Int) (math.Int, error) {
	sqrtA, sqrtB = orderSqrtPrices(sqrtA, sqrtB)
	if sqrtA.Equal(sqrtB) {
		return math.Int{}, ErrInvalidTickRange.Wrap("empty price range")
	}
	liquidity, err := MulDiv(amountB, Q64, sqrtB.Sub(sqrtA), false)
	if err != nil {
		return math.Int{}, err
	}
	return boundU128(liquidity, "liquidity")
}
