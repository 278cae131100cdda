package keeper_test

import (
	"testing"
	"time"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/clmm/testutil/keeper"
	"github.com/paw-chain/clmm/x/clmm/types"
)

func TestGenesis_Default(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)

	gs, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.Equal(t, uint64(1), gs.NextPoolId)
	require.Empty(t, gs.Pools)
	require.NoError(t, gs.Validate())
}

// TestGenesis_RoundTrip tests that an exported chain imports into an
// identical state that keeps trading
func TestGenesis_RoundTrip(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	poolID := setupLiquidPool(t, k, ctx)
	keepertest.CreateTestPool(t, k, ctx, 60)
	keepertest.AddTestLiquidity(t, k, ctx, poolID, -3000, -500, 400_000_000)
	require.NoError(t, k.FundJitBuffer(ctx, poolID, math.NewInt(10_000_000), math.NewInt(10_000_000)))

	ctx = keepertest.Advance(ctx, 45*time.Second)
	_, err := k.Swap(ctx, swapReq(poolID, 30_000_000, true))
	require.NoError(t, err)

	gs, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	require.NoError(t, gs.Validate())
	require.Len(t, gs.Pools, 2)
	require.Len(t, gs.Oracles, 2)
	require.Len(t, gs.JitStates, 2)
	require.Len(t, gs.Positions, 2)
	exported := exportJSON(t, k, ctx)

	imported, ictx := keepertest.ClmmKeeper(t)
	ictx = ictx.WithBlockTime(ctx.BlockTime())
	require.NoError(t, imported.InitGenesis(ictx, *gs))
	require.Equal(t, exported, exportJSON(t, imported, ictx))
	requireInvariants(t, imported, ictx)

	// both chains agree on the next trade
	req := swapReq(poolID, 2_000_000, false)
	want, err := k.Swap(ctx, req)
	require.NoError(t, err)
	got, err := imported.Swap(ictx, req)
	require.NoError(t, err)
	require.True(t, want.AmountOut.Equal(got.AmountOut))
	require.Equal(t, want.EndTick, got.EndTick)
	require.Equal(t, exportJSON(t, k, ctx), exportJSON(t, imported, ictx))

	// new pools continue the id sequence
	require.Equal(t, uint64(3), keepertest.CreateTestPool(t, imported, ictx, 10))
}

func TestGenesis_RejectsInvalid(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	setupLiquidPool(t, k, ctx)
	gs, err := k.ExportGenesis(ctx)
	require.NoError(t, err)

	bad := *gs
	bad.TickArrays = append([]types.TickArray(nil), gs.TickArrays...)
	bad.TickArrays = bad.TickArrays[1:]

	fresh, fctx := keepertest.ClmmKeeper(t)
	require.ErrorIs(t, fresh.InitGenesis(fctx, bad), types.ErrInvalidGenesis)
	_, found := fresh.GetPool(fctx, 1)
	require.False(t, found)
}
