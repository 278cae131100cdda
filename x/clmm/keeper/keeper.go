package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// Keeper of the clmm store
type Keeper struct {
	storeKey    storetypes.StoreKey
	authority   string
	floorKeeper types.FloorKeeper
	metrics     *ClmmMetrics
}

var _ types.ClmmKeeperV1 = Keeper{}

// NewKeeper creates a new clmm Keeper instance. floorKeeper may be nil, in
// which case no floor constrains the JIT ask side beyond the tick range.
func NewKeeper(
	key storetypes.StoreKey,
	authority string,
	floorKeeper types.FloorKeeper,
) *Keeper {
	return &Keeper{
		storeKey:    key,
		authority:   authority,
		floorKeeper: floorKeeper,
		metrics:     NewClmmMetrics(),
	}
}

// SetFloorKeeper wires the floor provider after construction.
func (k *Keeper) SetFloorKeeper(fk types.FloorKeeper) {
	k.floorKeeper = fk
}

// GetAuthority returns the address allowed to update params and pause pools.
func (k Keeper) GetAuthority() string {
	return k.authority
}

// Logger returns a module-specific logger
func (k Keeper) Logger(ctx sdk.Context) log.Logger {
	return ctx.Logger().With("module", fmt.Sprintf("x/%s", types.ModuleName))
}

// getStore returns the KVStore for the clmm module
func (k Keeper) getStore(ctx context.Context) storetypes.KVStore {
	sdkCtx := sdk.UnwrapSDKContext(ctx)
	return sdkCtx.KVStore(k.storeKey)
}

// floorTick returns the externally owned floor for a pool, or MinTick when
// no floor is configured.
func (k Keeper) floorTick(ctx context.Context, poolID uint64) int32 {
	if k.floorKeeper == nil {
		return types.MinTick
	}
	tick, found := k.floorKeeper.GetFloorTick(ctx, poolID)
	if !found {
		return types.MinTick
	}
	return tick
}

// clock returns the logical clock driving oracle timestamps and JIT slots.
func clock(ctx sdk.Context) int64 {
	return ctx.BlockTime().Unix()
}
