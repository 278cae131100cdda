package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// CreatePool initializes a pool at sqrtPriceX64 together with its oracle
// ring and JIT state. A zero fee rate selects the fee tier of the spacing.
func (k Keeper) CreatePool(goCtx context.Context, cfg types.PoolConfig, sqrtPriceX64 math.Int) (uint64, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)

	if cfg.FeeRatePpm == 0 {
		if fee, ok := types.FeeTiers[cfg.TickSpacing]; ok {
			cfg.FeeRatePpm = fee
		}
	}
	if err := cfg.Validate(); err != nil {
		return 0, err
	}
	if sqrtPriceX64.IsNil() || !sqrtPriceX64.IsPositive() {
		return 0, types.ErrInvalidPriceLimit.Wrap("initial sqrt price must be positive")
	}

	params, err := k.GetParams(ctx)
	if err != nil {
		return 0, err
	}

	poolID := k.GetNextPoolID(ctx)
	pool, err := types.NewPoolState(poolID, cfg, sqrtPriceX64)
	if err != nil {
		return 0, err
	}
	if err := pool.Validate(); err != nil {
		return 0, err
	}

	if err := k.setPool(ctx, pool); err != nil {
		return 0, err
	}
	if err := k.setObservationRing(ctx, types.NewObservationRing(poolID, params.Oracle.Capacity, clock(ctx))); err != nil {
		return 0, err
	}
	if err := k.setJitState(ctx, types.NewJitState(poolID)); err != nil {
		return 0, err
	}
	k.setNextPoolID(ctx, poolID+1)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolCreated,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyDenomA, cfg.DenomA),
			sdk.NewAttribute(types.AttributeKeyDenomB, cfg.DenomB),
			sdk.NewAttribute(types.AttributeKeySqrtPrice, sqrtPriceX64.String()),
			sdk.NewAttribute(types.AttributeKeyTick, fmt.Sprintf("%d", pool.TickCurrent)),
		),
	)
	k.Logger(ctx).Info("clmm pool created", "pool", pool.String())

	return poolID, nil
}

// PausePool stops swaps and liquidity changes on a pool (authority only).
func (k Keeper) PausePool(goCtx context.Context, authority string, poolID uint64, reason string) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, authority)
	}
	pool, err := k.loadPool(ctx, poolID)
	if err != nil {
		return err
	}
	if pool.Paused {
		return types.ErrPoolPaused.Wrapf("pool %d is already paused", poolID)
	}

	pool.Paused = true
	if err := k.setPool(ctx, pool); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolPaused,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyActor, authority),
			sdk.NewAttribute(types.AttributeKeyReason, reason),
		),
	)
	k.Logger(ctx).Info("clmm pool paused", "pool_id", poolID, "reason", reason)
	return nil
}

// ResumePool lifts a pause (authority only).
func (k Keeper) ResumePool(goCtx context.Context, authority string, poolID uint64) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, authority)
	}
	pool, err := k.loadPool(ctx, poolID)
	if err != nil {
		return err
	}
	if !pool.Paused {
		return types.ErrInvalidParams.Wrapf("pool %d is not paused", poolID)
	}

	pool.Paused = false
	if err := k.setPool(ctx, pool); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypePoolResumed,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyActor, authority),
		),
	)
	k.Logger(ctx).Info("clmm pool resumed", "pool_id", poolID)
	return nil
}
