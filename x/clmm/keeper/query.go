package keeper

import (
	"context"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// QueryPosition returns a position with the fees earned since its last
// checkpoint already added to TokensOwed. Nothing is written.
func (k Keeper) QueryPosition(goCtx context.Context, poolID, positionID uint64) (types.Position, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	pc, err := k.loadPoolContext(ctx, poolID)
	if err != nil {
		return types.Position{}, err
	}
	pos, err := pc.position(positionID)
	if err != nil {
		return types.Position{}, err
	}
	if err := pc.accruePosition(pos); err != nil {
		return types.Position{}, err
	}
	return *pos, nil
}

// QueryTickArray returns the tick array starting at startIndex, or an empty
// array if none of its ticks is initialized.
func (k Keeper) QueryTickArray(ctx context.Context, poolID uint64, startIndex int32) (types.TickArray, error) {
	pool, err := k.loadPool(ctx, poolID)
	if err != nil {
		return types.TickArray{}, err
	}
	if err := types.ValidateArrayStartIndex(startIndex, pool.TickSpacing); err != nil {
		return types.TickArray{}, err
	}
	ta, found, err := k.GetTickArray(ctx, poolID, startIndex)
	if err != nil {
		return types.TickArray{}, err
	}
	if !found {
		return types.NewTickArray(poolID, startIndex), nil
	}
	return ta, nil
}

// QueryTick returns a single tick.
func (k Keeper) QueryTick(ctx context.Context, poolID uint64, tick int32) (types.Tick, error) {
	pool, err := k.loadPool(ctx, poolID)
	if err != nil {
		return types.Tick{}, err
	}
	if err := types.ValidatePositionTick(tick, pool.TickSpacing); err != nil {
		return types.Tick{}, err
	}
	ta, err := k.QueryTickArray(ctx, poolID, types.ArrayStartIndex(tick, pool.TickSpacing))
	if err != nil {
		return types.Tick{}, err
	}
	offset, err := ta.Offset(tick, pool.TickSpacing)
	if err != nil {
		return types.Tick{}, err
	}
	return ta.Ticks[offset], nil
}
