package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestSqrtPriceAtTickZero(t *testing.T) {
	p, err := SqrtPriceAtTick(0)
	require.NoError(t, err)
	require.True(t, p.Equal(Q64), "got %s", p)

	tick, err := TickAtSqrtPrice(Q64)
	require.NoError(t, err)
	require.Equal(t, int32(0), tick)
}

func TestSqrtPriceBounds(t *testing.T) {
	require.Equal(t, "4295048016", MinSqrtPriceX64.String())
	require.Equal(t, "79226673521066979257578248091", MaxSqrtPriceX64.String())

	_, err := SqrtPriceAtTick(MaxTick + 1)
	require.ErrorIs(t, err, ErrTickOutOfRange)
	_, err = SqrtPriceAtTick(MinTick - 1)
	require.ErrorIs(t, err, ErrTickOutOfRange)

	_, err = TickAtSqrtPrice(MinSqrtPriceX64.SubRaw(1))
	require.ErrorIs(t, err, ErrInvalidPriceLimit)
	_, err = TickAtSqrtPrice(MaxSqrtPriceX64.AddRaw(1))
	require.ErrorIs(t, err, ErrInvalidPriceLimit)

	tick, err := TickAtSqrtPrice(MinSqrtPriceX64)
	require.NoError(t, err)
	require.Equal(t, MinTick, tick)
	tick, err = TickAtSqrtPrice(MaxSqrtPriceX64)
	require.NoError(t, err)
	require.Equal(t, MaxTick, tick)
}

func TestSqrtPriceSymmetry(t *testing.T) {
	// sqrt(p(t)) * sqrt(p(-t)) is 1 in Q64.64, up to rounding
	for _, tick := range []int32{1, 10, 100, 1000, 60000, 200000} {
		up, err := SqrtPriceAtTick(tick)
		require.NoError(t, err)
		down, err := SqrtPriceAtTick(-tick)
		require.NoError(t, err)
		product := up.Mul(down).Quo(Q64)
		diff := product.Sub(Q64).Abs()
		require.True(t, diff.LTE(math.NewInt(1<<20)), "tick %d: product %s", tick, product)
	}
}

func TestTickRoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		tick := rapid.Int32Range(MinTick, MaxTick).Draw(t, "tick")
		sqrt, err := SqrtPriceAtTick(tick)
		if err != nil {
			t.Fatalf("sqrt price at %d: %v", tick, err)
		}
		got, err := TickAtSqrtPrice(sqrt)
		if err != nil {
			t.Fatalf("tick at %s: %v", sqrt, err)
		}
		if got != tick {
			t.Fatalf("round trip %d -> %s -> %d", tick, sqrt, got)
		}
		if tick < MaxTick {
			next, _ := SqrtPriceAtTick(tick + 1)
			if !next.GT(sqrt) {
				t.Fatalf("sqrt price not increasing at %d", tick)
			}
			// a price strictly between two ticks maps to the lower one
			mid := sqrt.Add(next).QuoRaw(2)
			if mid.GT(sqrt) {
				got, err := TickAtSqrtPrice(mid)
				if err != nil || got != tick {
					t.Fatalf("mid price of %d mapped to %d (%v)", tick, got, err)
				}
			}
		}
	})
}

func TestTickAtSqrtPriceWithinRepairsBracket(t *testing.T) {
	sqrt, err := SqrtPriceAtTick(5000)
	require.NoError(t, err)

	// bracket entirely below the answer
	got, err := TickAtSqrtPriceWithin(sqrt, -100, 100)
	require.NoError(t, err)
	require.Equal(t, int32(5000), got)

	// bracket entirely above the answer
	got, err = TickAtSqrtPriceWithin(sqrt, 6000, 7000)
	require.NoError(t, err)
	require.Equal(t, int32(5000), got)
}
