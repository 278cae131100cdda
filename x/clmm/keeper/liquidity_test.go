package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/clmm/testutil/keeper"
	"github.com/paw-chain/clmm/x/clmm/types"
)

// TestAddLiquidity_InRange tests a position straddling the current price
func TestAddLiquidity_InRange(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	poolID := keepertest.CreateTestPool(t, k, ctx, 10)
	ctx = freshEvents(ctx)

	liquidity := math.NewInt(1_000_000_000)
	posID, amountA, amountB, err := k.AddLiquidity(ctx, poolID, "paw1lp", -1000, 1000, liquidity)
	require.NoError(t, err)
	require.Equal(t, uint64(1), posID)

	// symmetric range around price 1 needs equal amounts of both tokens
	require.True(t, amountA.IsPositive())
	require.True(t, amountB.IsPositive())
	require.True(t, amountA.Sub(amountB).Abs().LTE(math.NewInt(2)), "a=%s b=%s", amountA, amountB)

	pool := mustPool(t, k, ctx, poolID)
	require.True(t, pool.Liquidity.Equal(liquidity))
	require.Equal(t, 2, pool.Bitmap.Count())
	require.Equal(t, uint64(2), pool.NextPositionId)

	lower, err := k.QueryTick(ctx, poolID, -1000)
	require.NoError(t, err)
	require.True(t, lower.Initialized)
	require.True(t, lower.LiquidityNet.Equal(liquidity))
	upper, err := k.QueryTick(ctx, poolID, 1000)
	require.NoError(t, err)
	require.True(t, upper.LiquidityNet.Equal(liquidity.Neg()))
	require.True(t, upper.LiquidityGross.Equal(liquidity))

	require.Equal(t, 2, countEvents(ctx, types.EventTypeTickArrayCreated))
	require.Equal(t, 1, countEvents(ctx, types.EventTypeLiquidityAdded))
	requireInvariants(t, k, ctx)
}

// TestAddLiquidity_OutOfRange tests single-sided deposits
func TestAddLiquidity_OutOfRange(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	poolID := keepertest.CreateTestPool(t, k, ctx, 10)

	_, amountA, amountB, err := k.AddLiquidity(ctx, poolID, "paw1lp", 100, 200, math.NewInt(1_000_000))
	require.NoError(t, err)
	require.True(t, amountA.IsPositive())
	require.True(t, amountB.IsZero())

	_, amountA, amountB, err = k.AddLiquidity(ctx, poolID, "paw1lp", -200, -100, math.NewInt(1_000_000))
	require.NoError(t, err)
	require.True(t, amountA.IsZero())
	require.True(t, amountB.IsPositive())

	// neither range covers the current tick
	require.True(t, mustPool(t, k, ctx, poolID).Liquidity.IsZero())
	requireInvariants(t, k, ctx)
}

// TestAddLiquidity_Invalid tests input validation
func TestAddLiquidity_Invalid(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	poolID := keepertest.CreateTestPool(t, k, ctx, 10)
	before := exportJSON(t, k, ctx)

	tests := []struct {
		name         string
		owner        string
		lower, upper int32
		liquidity    math.Int
		wantErr      error
	}{
		{"zero liquidity", "paw1lp", -10, 10, math.ZeroInt(), types.ErrZeroAmount},
		{"nil liquidity", "paw1lp", -10, 10, math.Int{}, types.ErrZeroAmount},
		{"inverted range", "paw1lp", 10, -10, math.NewInt(1), types.ErrInvalidTickRange},
		{"misaligned tick", "paw1lp", -15, 10, math.NewInt(1), types.ErrTickMisaligned},
		{"tick out of range", "paw1lp", -10, types.MaxTick + 10, math.NewInt(1), types.ErrTickOutOfRange},
		{"liquidity above 128 bits", "paw1lp", -10, 10, types.MaxU128.AddRaw(1), types.ErrMathOverflow},
		{"empty owner", " ", -10, 10, math.NewInt(1), types.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, _, err := k.AddLiquidity(ctx, poolID, tt.owner, tt.lower, tt.upper, tt.liquidity)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}

	_, _, _, err := k.AddLiquidity(ctx, 42, "paw1lp", -10, 10, math.NewInt(1))
	require.ErrorIs(t, err, types.ErrPoolNotFound)
	require.Equal(t, before, exportJSON(t, k, ctx))
}

// TestRemoveLiquidity_Full tests that a full withdrawal closes the position
// and clears its tick arrays
func TestRemoveLiquidity_Full(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	poolID := keepertest.CreateTestPool(t, k, ctx, 10)

	liquidity := math.NewInt(1_000_000_000)
	posID, depositA, depositB, err := k.AddLiquidity(ctx, poolID, "paw1lp", -1000, 1000, liquidity)
	require.NoError(t, err)

	ctx = freshEvents(ctx)
	amountA, amountB, err := k.RemoveLiquidity(ctx, poolID, posID, "paw1lp", liquidity)
	require.NoError(t, err)

	// withdrawals round down, deposits round up
	require.True(t, amountA.LTE(depositA))
	require.True(t, amountB.LTE(depositB))
	require.True(t, depositA.Sub(amountA).LTE(math.NewInt(1)))
	require.True(t, depositB.Sub(amountB).LTE(math.NewInt(1)))

	_, err = k.GetPosition(ctx, poolID, posID)
	require.ErrorIs(t, err, types.ErrPositionNotFound)

	pool := mustPool(t, k, ctx, poolID)
	require.True(t, pool.Liquidity.IsZero())
	require.Zero(t, pool.Bitmap.Count())
	require.Equal(t, 2, countEvents(ctx, types.EventTypeTickArrayEmptied))

	_, found, err := k.GetTickArray(ctx, poolID, types.ArrayStartIndex(-1000, 10))
	require.NoError(t, err)
	require.False(t, found)
	ta, err := k.QueryTickArray(ctx, poolID, types.ArrayStartIndex(-1000, 10))
	require.NoError(t, err)
	require.Zero(t, ta.InitializedCount)
	requireInvariants(t, k, ctx)
}

// TestRemoveLiquidity_Partial tests partial withdrawal and error paths
func TestRemoveLiquidity_Partial(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	poolID := keepertest.CreateTestPool(t, k, ctx, 10)
	posID := keepertest.AddTestLiquidity(t, k, ctx, poolID, -100, 100, 1_000_000)

	_, _, err := k.RemoveLiquidity(ctx, poolID, posID, "paw1thief", math.NewInt(1))
	require.ErrorIs(t, err, types.ErrUnauthorized)
	_, _, err = k.RemoveLiquidity(ctx, poolID, posID, "paw1lp", math.NewInt(1_000_001))
	require.ErrorIs(t, err, types.ErrInsufficientPositionLiquidity)
	_, _, err = k.RemoveLiquidity(ctx, poolID, 77, "paw1lp", math.NewInt(1))
	require.ErrorIs(t, err, types.ErrPositionNotFound)
	_, _, err = k.RemoveLiquidity(ctx, poolID, posID, "paw1lp", math.ZeroInt())
	require.ErrorIs(t, err, types.ErrZeroAmount)

	_, _, err = k.RemoveLiquidity(ctx, poolID, posID, "paw1lp", math.NewInt(400_000))
	require.NoError(t, err)

	pos, err := k.GetPosition(ctx, poolID, posID)
	require.NoError(t, err)
	require.Equal(t, "600000", pos.Liquidity.String())
	require.Equal(t, "600000", mustPool(t, k, ctx, poolID).Liquidity.String())

	tick, err := k.QueryTick(ctx, poolID, -100)
	require.NoError(t, err)
	require.Equal(t, "600000", tick.LiquidityGross.String())
	requireInvariants(t, k, ctx)
}

// TestSharedTicks tests two positions sharing a bound
func TestSharedTicks(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	poolID := keepertest.CreateTestPool(t, k, ctx, 10)
	first := keepertest.AddTestLiquidity(t, k, ctx, poolID, -100, 100, 500)
	second := keepertest.AddTestLiquidity(t, k, ctx, poolID, 100, 200, 300)

	tick, err := k.QueryTick(ctx, poolID, 100)
	require.NoError(t, err)
	require.Equal(t, "-200", tick.LiquidityNet.String())
	require.Equal(t, "800", tick.LiquidityGross.String())

	_, _, err = k.RemoveLiquidity(ctx, poolID, first, "paw1lp", math.NewInt(500))
	require.NoError(t, err)
	tick, err = k.QueryTick(ctx, poolID, 100)
	require.NoError(t, err)
	require.True(t, tick.Initialized)
	require.Equal(t, "300", tick.LiquidityNet.String())

	_, _, err = k.RemoveLiquidity(ctx, poolID, second, "paw1lp", math.NewInt(300))
	require.NoError(t, err)
	tick, err = k.QueryTick(ctx, poolID, 100)
	require.NoError(t, err)
	require.False(t, tick.Initialized)
	pool := mustPool(t, k, ctx, poolID)
	require.Zero(t, pool.Bitmap.Count())
	requireInvariants(t, k, ctx)
}

// TestCollectFees tests fee accrual from both the swap fee and the
// dynamic fee overlay
func TestCollectFees(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	keepertest.SetParams(t, k, ctx, func(p *types.Params) { p.Jit.Enabled = false })
	poolID := setupLiquidPool(t, k, ctx)

	res, err := k.Swap(ctx, swapReq(poolID, 1_000_000, true))
	require.NoError(t, err)
	require.True(t, res.LpFeeAmount.IsPositive())

	queried, err := k.QueryPosition(ctx, poolID, 1)
	require.NoError(t, err)

	_, _, err = k.CollectFees(ctx, poolID, 1, "paw1thief")
	require.ErrorIs(t, err, types.ErrUnauthorized)

	ctx = freshEvents(ctx)
	feesA, feesB, err := k.CollectFees(ctx, poolID, 1, "paw1lp")
	require.NoError(t, err)
	require.Equal(t, 1, countEvents(ctx, types.EventTypeFeesCollected))

	// the sole position earns the whole swap fee in A, less rounding
	require.True(t, feesA.IsPositive())
	require.True(t, feesA.LTE(res.LpFeeAmount))
	require.True(t, res.LpFeeAmount.Sub(feesA).LTE(math.NewInt(1)))

	// and the LP share of the overlay fee in B
	lpShare := res.FeeAmount.MulRaw(7000).QuoRaw(10000)
	require.True(t, feesB.IsPositive())
	require.True(t, feesB.LTE(lpShare))
	require.True(t, lpShare.Sub(feesB).LTE(math.NewInt(1)))

	require.True(t, queried.TokensOwedA.Equal(feesA))
	require.True(t, queried.TokensOwedB.Equal(feesB))

	feesA, feesB, err = k.CollectFees(ctx, poolID, 1, "paw1lp")
	require.NoError(t, err)
	require.True(t, feesA.IsZero())
	require.True(t, feesB.IsZero())
}

// TestFeesOutsideRange tests that a position outside the traded range earns
// nothing
func TestFeesOutsideRange(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	keepertest.SetParams(t, k, ctx, func(p *types.Params) { p.Jit.Enabled = false })
	poolID := setupLiquidPool(t, k, ctx)
	far, _, _, err := k.AddLiquidity(ctx, poolID, "paw1far", 500, 600, math.NewInt(1_000_000))
	require.NoError(t, err)

	_, err = k.Swap(ctx, swapReq(poolID, 1_000_000, true))
	require.NoError(t, err)

	feesA, feesB, err := k.CollectFees(ctx, poolID, far, "paw1far")
	require.NoError(t, err)
	require.True(t, feesA.IsZero())
	require.True(t, feesB.IsZero())
}
