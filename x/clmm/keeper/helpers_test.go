package keeper_test

import (
	"encoding/json"
	"testing"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/clmm/x/clmm/keeper"
	"github.com/paw-chain/clmm/x/clmm/types"
)

// setupLiquidPool creates a spacing-10 pool at tick 0 with one position of
// liquidity on [-1000, 1000).
func setupLiquidPool(t *testing.T, k *keeper.Keeper, ctx sdk.Context) uint64 {
	t.Helper()
	poolID, err := k.CreatePool(ctx, types.PoolConfig{DenomA: "uatom", DenomB: "upaw", TickSpacing: 10}, types.Q64)
	require.NoError(t, err)
	_, _, _, err = k.AddLiquidity(ctx, poolID, "paw1lp", -1000, 1000, math.NewInt(1_000_000_000))
	require.NoError(t, err)
	return poolID
}

func swapReq(poolID uint64, amountIn int64, zeroForOne bool) keeper.SwapRequest {
	return keeper.SwapRequest{
		PoolId:     poolID,
		AmountIn:   math.NewInt(amountIn),
		ZeroForOne: zeroForOne,
	}
}

func countEvents(ctx sdk.Context, eventType string) int {
	n := 0
	for _, ev := range ctx.EventManager().Events() {
		if ev.Type == eventType {
			n++
		}
	}
	return n
}

func freshEvents(ctx sdk.Context) sdk.Context {
	return ctx.WithEventManager(sdk.NewEventManager())
}

// exportJSON snapshots every persisted record of the module.
func exportJSON(t *testing.T, k *keeper.Keeper, ctx sdk.Context) string {
	t.Helper()
	gs, err := k.ExportGenesis(ctx)
	require.NoError(t, err)
	bz, err := json.Marshal(gs)
	require.NoError(t, err)
	return string(bz)
}

func requireInvariants(t *testing.T, k *keeper.Keeper, ctx sdk.Context) {
	t.Helper()
	msg, broken := keeper.AllInvariants(*k)(ctx)
	require.False(t, broken, msg)
}

func mustPool(t *testing.T, k *keeper.Keeper, ctx sdk.Context, poolID uint64) types.PoolState {
	t.Helper()
	pool, found := k.GetPool(ctx, poolID)
	require.True(t, found)
	return pool
}
