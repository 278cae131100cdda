package keeper

import (
	"context"
	"fmt"
	"strings"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// updateTick applies a liquidity delta to one bound of a range. upper selects
// the sign applied to liquidity_net. It reports whether the tick flipped
// between initialized and uninitialized.
func (pc *poolContext) updateTick(tick int32, delta math.Int, upper bool) (bool, error) {
	t, e, err := pc.mutableTick(tick)
	if err != nil {
		return false, err
	}

	grossBefore := t.LiquidityGross
	grossAfter, err := types.ApplyLiquidityDelta(grossBefore, delta)
	if err != nil {
		return false, err
	}
	flipped := grossAfter.IsZero() != grossBefore.IsZero()

	if grossBefore.IsZero() && !grossAfter.IsZero() {
		// all growth before initialization is assumed to have happened below
		if tick <= pc.pool.TickCurrent {
			t.FeeGrowthOutsideA = pc.pool.FeeGrowthGlobalA
			t.FeeGrowthOutsideB = pc.pool.FeeGrowthGlobalB
		} else {
			t.FeeGrowthOutsideA = math.ZeroInt()
			t.FeeGrowthOutsideB = math.ZeroInt()
		}
		t.Initialized = true
	}

	if upper {
		t.LiquidityNet, err = types.SafeSub(t.LiquidityNet, delta)
	} else {
		t.LiquidityNet, err = types.SafeAdd(t.LiquidityNet, delta)
	}
	if err != nil {
		return false, err
	}
	t.LiquidityGross = grossAfter

	if !flipped {
		return false, nil
	}
	if grossAfter.IsZero() {
		if !t.LiquidityNet.IsZero() {
			return false, types.ErrLiquidityNetNonZero.Wrapf("tick %d cleared with liquidity_net %s", tick, t.LiquidityNet)
		}
		*t = types.NewTick()
		e.array.InitializedCount--
	} else {
		e.array.InitializedCount++
	}
	pc.markArray(e)
	return true, nil
}

// crossTick flips the fee growth outside of tick and returns its liquidity_net.
func (pc *poolContext) crossTick(tick int32) (math.Int, error) {
	t, _, err := pc.mutableTick(tick)
	if err != nil {
		return math.Int{}, err
	}
	if t.FeeGrowthOutsideA, err = types.SafeSub(pc.pool.FeeGrowthGlobalA, t.FeeGrowthOutsideA); err != nil {
		return math.Int{}, err
	}
	if t.FeeGrowthOutsideB, err = types.SafeSub(pc.pool.FeeGrowthGlobalB, t.FeeGrowthOutsideB); err != nil {
		return math.Int{}, err
	}
	return t.LiquidityNet, nil
}

// feeGrowthInside returns the fee growth per unit of liquidity accumulated
// inside [lower, upper). Values are exact signed integers.
func (pc *poolContext) feeGrowthInside(lower, upper int32) (math.Int, math.Int, error) {
	lo, err := pc.tickAt(lower)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	hi, err := pc.tickAt(upper)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	globalA, globalB := pc.pool.FeeGrowthGlobalA, pc.pool.FeeGrowthGlobalB

	belowA, belowB := lo.FeeGrowthOutsideA, lo.FeeGrowthOutsideB
	if pc.pool.TickCurrent < lower {
		belowA, belowB = globalA.Sub(belowA), globalB.Sub(belowB)
	}
	aboveA, aboveB := hi.FeeGrowthOutsideA, hi.FeeGrowthOutsideB
	if pc.pool.TickCurrent >= upper {
		aboveA, aboveB = globalA.Sub(aboveA), globalB.Sub(aboveB)
	}
	return globalA.Sub(belowA).Sub(aboveA), globalB.Sub(belowB).Sub(aboveB), nil
}

// modifyLiquidity applies a signed liquidity delta over [lower, upper) and
// returns the token amounts it represents: rounded up for deposits, down for
// withdrawals.
func (pc *poolContext) modifyLiquidity(lower, upper int32, delta math.Int) (math.Int, math.Int, error) {
	if _, err := pc.updateTick(lower, delta, false); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if _, err := pc.updateTick(upper, delta, true); err != nil {
		return math.Int{}, math.Int{}, err
	}
	if lower <= pc.pool.TickCurrent && pc.pool.TickCurrent < upper {
		liquidity, err := types.ApplyLiquidityDelta(pc.pool.Liquidity, delta)
		if err != nil {
			return math.Int{}, math.Int{}, err
		}
		pc.pool.Liquidity = liquidity
	}

	sqrtLower, err := types.SqrtPriceAtTick(lower)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	sqrtUpper, err := types.SqrtPriceAtTick(upper)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	return types.AmountsForLiquidity(pc.pool.SqrtPriceX64, sqrtLower, sqrtUpper, delta.Abs(), delta.IsPositive())
}

// accruePosition crystallizes the fees a position earned since its checkpoint.
func (pc *poolContext) accruePosition(pos *types.Position) error {
	insideA, insideB, err := pc.feeGrowthInside(pos.TickLower, pos.TickUpper)
	if err != nil {
		return err
	}
	return pos.Accrue(insideA, insideB)
}

func validateLiquidityAmount(liquidity math.Int) error {
	if liquidity.IsNil() || !liquidity.IsPositive() {
		return types.ErrZeroAmount.Wrap("liquidity must be positive")
	}
	if liquidity.GT(types.MaxU128) {
		return types.ErrMathOverflow.Wrapf("liquidity %s exceeds 128 bits", liquidity)
	}
	return nil
}

// AddLiquidity opens a position of liquidity over [tickLower, tickUpper) and
// returns the token amounts the owner must deposit, rounded up.
func (k Keeper) AddLiquidity(
	goCtx context.Context,
	poolID uint64,
	owner string,
	tickLower, tickUpper int32,
	liquidity math.Int,
) (uint64, math.Int, math.Int, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)

	// Validate inputs
	if strings.TrimSpace(owner) == "" {
		return 0, math.Int{}, math.Int{}, types.ErrInvalidParams.Wrap("owner cannot be empty")
	}
	if err := validateLiquidityAmount(liquidity); err != nil {
		return 0, math.Int{}, math.Int{}, err
	}
	if tickLower >= tickUpper {
		return 0, math.Int{}, math.Int{}, types.ErrInvalidTickRange.Wrapf("lower tick %d must be below upper tick %d", tickLower, tickUpper)
	}

	pc, err := k.loadPoolContext(ctx, poolID)
	if err != nil {
		return 0, math.Int{}, math.Int{}, err
	}
	if pc.pool.Paused {
		return 0, math.Int{}, math.Int{}, types.ErrPoolPaused.Wrapf("pool %d", poolID)
	}
	if err := types.ValidateTickRange(tickLower, tickUpper, pc.pool.TickSpacing); err != nil {
		return 0, math.Int{}, math.Int{}, err
	}

	amountA, amountB, err := pc.modifyLiquidity(tickLower, tickUpper, liquidity)
	if err != nil {
		return 0, math.Int{}, math.Int{}, err
	}
	insideA, insideB, err := pc.feeGrowthInside(tickLower, tickUpper)
	if err != nil {
		return 0, math.Int{}, math.Int{}, err
	}

	positionID := pc.pool.NextPositionId
	pc.pool.NextPositionId++
	pc.putPosition(types.Position{
		PoolId:               poolID,
		Id:                   positionID,
		Owner:                owner,
		TickLower:            tickLower,
		TickUpper:            tickUpper,
		Liquidity:            liquidity,
		FeeGrowthInsideLastA: insideA,
		FeeGrowthInsideLastB: insideB,
		TokensOwedA:          math.ZeroInt(),
		TokensOwedB:          math.ZeroInt(),
	})
	pc.observe(pc.pool.TickCurrent)

	if err := pc.commit(); err != nil {
		return 0, math.Int{}, math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityAdded,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyPositionID, fmt.Sprintf("%d", positionID)),
			sdk.NewAttribute(types.AttributeKeyOwner, owner),
			sdk.NewAttribute(types.AttributeKeyTickLower, fmt.Sprintf("%d", tickLower)),
			sdk.NewAttribute(types.AttributeKeyTickUpper, fmt.Sprintf("%d", tickUpper)),
			sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
			sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
			sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
		),
	)
	k.metrics.LiquidityOps.WithLabelValues(fmt.Sprintf("%d", poolID), "add").Inc()
	k.Logger(ctx).Debug("liquidity added", "pool_id", poolID, "position_id", positionID, "liquidity", liquidity.String())

	return positionID, amountA, amountB, nil
}

// RemoveLiquidity withdraws liquidity from a position. The returned amounts
// are rounded down and include every fee owed on the position. A position
// withdrawn in full is closed.
func (k Keeper) RemoveLiquidity(
	goCtx context.Context,
	poolID, positionID uint64,
	owner string,
	liquidity math.Int,
) (math.Int, math.Int, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)

	if err := validateLiquidityAmount(liquidity); err != nil {
		return math.Int{}, math.Int{}, err
	}

	pc, err := k.loadPoolContext(ctx, poolID)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if pc.pool.Paused {
		return math.Int{}, math.Int{}, types.ErrPoolPaused.Wrapf("pool %d", poolID)
	}
	pos, err := pc.position(positionID)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if pos.Owner != owner {
		return math.Int{}, math.Int{}, types.ErrUnauthorized.Wrapf("position %d is owned by %s", positionID, pos.Owner)
	}
	if liquidity.GT(pos.Liquidity) {
		return math.Int{}, math.Int{}, types.ErrInsufficientPositionLiquidity.Wrapf("requested %s, position holds %s", liquidity, pos.Liquidity)
	}

	if err := pc.accruePosition(pos); err != nil {
		return math.Int{}, math.Int{}, err
	}
	principalA, principalB, err := pc.modifyLiquidity(pos.TickLower, pos.TickUpper, liquidity.Neg())
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	amountA := principalA.Add(pos.TokensOwedA)
	amountB := principalB.Add(pos.TokensOwedB)

	pos.Liquidity = pos.Liquidity.Sub(liquidity)
	pos.TokensOwedA = math.ZeroInt()
	pos.TokensOwedB = math.ZeroInt()
	closed := pos.Liquidity.IsZero()
	if closed {
		pc.deletePosition(positionID)
	}
	pc.observe(pc.pool.TickCurrent)

	if err := pc.commit(); err != nil {
		return math.Int{}, math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeLiquidityRemoved,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyPositionID, fmt.Sprintf("%d", positionID)),
			sdk.NewAttribute(types.AttributeKeyOwner, owner),
			sdk.NewAttribute(types.AttributeKeyLiquidity, liquidity.String()),
			sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
			sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
		),
	)
	k.metrics.LiquidityOps.WithLabelValues(fmt.Sprintf("%d", poolID), "remove").Inc()
	k.Logger(ctx).Debug("liquidity removed", "pool_id", poolID, "position_id", positionID, "closed", closed)

	return amountA, amountB, nil
}

// CollectFees pays out the fees owed on a position without touching its
// liquidity.
func (k Keeper) CollectFees(goCtx context.Context, poolID, positionID uint64, owner string) (math.Int, math.Int, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)

	pc, err := k.loadPoolContext(ctx, poolID)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	pos, err := pc.position(positionID)
	if err != nil {
		return math.Int{}, math.Int{}, err
	}
	if pos.Owner != owner {
		return math.Int{}, math.Int{}, types.ErrUnauthorized.Wrapf("position %d is owned by %s", positionID, pos.Owner)
	}
	if err := pc.accruePosition(pos); err != nil {
		return math.Int{}, math.Int{}, err
	}
	amountA, amountB := pos.TokensOwedA, pos.TokensOwedB
	pos.TokensOwedA = math.ZeroInt()
	pos.TokensOwedB = math.ZeroInt()

	if err := pc.commit(); err != nil {
		return math.Int{}, math.Int{}, err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeFeesCollected,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyPositionID, fmt.Sprintf("%d", positionID)),
			sdk.NewAttribute(types.AttributeKeyOwner, owner),
			sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
			sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
		),
	)
	k.metrics.LiquidityOps.WithLabelValues(fmt.Sprintf("%d", poolID), "collect").Inc()
	return amountA, amountB, nil
}
