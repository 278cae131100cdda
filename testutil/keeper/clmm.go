package keeper

import (
	"context"
	"testing"
	"time"

	"cosmossdk.io/log"
	"cosmossdk.io/math"
	"cosmossdk.io/store"
	"cosmossdk.io/store/metrics"
	storetypes "cosmossdk.io/store/types"
	cmtproto "github.com/cometbft/cometbft/proto/tendermint/types"
	dbm "github.com/cosmos/cosmos-db"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	"github.com/paw-chain/clmm/x/clmm/keeper"
	"github.com/paw-chain/clmm/x/clmm/types"
)

// Authority is the address the test keeper accepts for privileged calls.
const Authority = "paw-authority"

// GenesisTime is the block time of a fresh test context.
var GenesisTime = time.Unix(1_700_000_000, 0).UTC()

// MockFloorKeeper serves fixed floor ticks per pool.
type MockFloorKeeper struct {
	Floors map[uint64]int32
}

func NewMockFloorKeeper() *MockFloorKeeper {
	return &MockFloorKeeper{Floors: map[uint64]int32{}}
}

func (m *MockFloorKeeper) GetFloorTick(_ context.Context, poolID uint64) (int32, bool) {
	tick, ok := m.Floors[poolID]
	return tick, ok
}

// ClmmKeeper creates a test keeper for the clmm module backed by an
// in-memory IAVL store.
func ClmmKeeper(t testing.TB) (*keeper.Keeper, sdk.Context) {
	return ClmmKeeperWithFloor(t, nil)
}

// ClmmKeeperWithFloor is ClmmKeeper with a floor provider wired in.
func ClmmKeeperWithFloor(t testing.TB, floors types.FloorKeeper) (*keeper.Keeper, sdk.Context) {
	storeKey := storetypes.NewKVStoreKey(types.StoreKey)

	db := dbm.NewMemDB()
	stateStore := store.NewCommitMultiStore(db, log.NewNopLogger(), metrics.NewNoOpMetrics())
	stateStore.MountStoreWithDB(storeKey, storetypes.StoreTypeIAVL, db)
	require.NoError(t, stateStore.LoadLatestVersion())

	k := keeper.NewKeeper(storeKey, Authority, floors)

	ctx := sdk.NewContext(stateStore, cmtproto.Header{Time: GenesisTime}, false, log.NewNopLogger())

	// Initialize module genesis
	require.NoError(t, k.InitGenesis(ctx, *types.DefaultGenesis()))

	return k, ctx
}

// SetParams replaces the module params, failing the test on error.
func SetParams(t testing.TB, k *keeper.Keeper, ctx sdk.Context, mutate func(*types.Params)) types.Params {
	params := types.DefaultParams()
	mutate(&params)
	require.NoError(t, k.SetParams(ctx, params))
	return params
}

// CreateTestPool creates a pool at tick 0 (price 1) with the given spacing.
func CreateTestPool(t testing.TB, k *keeper.Keeper, ctx sdk.Context, tickSpacing uint32) uint64 {
	poolID, err := k.CreatePool(ctx, types.PoolConfig{
		DenomA:      "uatom",
		DenomB:      "upaw",
		TickSpacing: tickSpacing,
	}, types.Q64)
	require.NoError(t, err)
	return poolID
}

// AddTestLiquidity opens a position and returns its id.
func AddTestLiquidity(t testing.TB, k *keeper.Keeper, ctx sdk.Context, poolID uint64, lower, upper int32, liquidity int64) uint64 {
	id, _, _, err := k.AddLiquidity(ctx, poolID, "paw1lp", lower, upper, math.NewInt(liquidity))
	require.NoError(t, err)
	return id
}

// Advance moves the block clock forward.
func Advance(ctx sdk.Context, d time.Duration) sdk.Context {
	return ctx.WithBlockTime(ctx.BlockTime().Add(d))
}
