package keeper

import (
	"context"
	"errors"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// observe records tick as the tick that prevailed up to now. Calls within
// the same clock value are no-ops.
func (pc *poolContext) observe(tick int32) {
	if pc.oracle.Observe(pc.now, tick) {
		pc.observed = true
	}
}

// anchorTwap reads the TWAP the JIT layer anchors on. Degradation errors are
// folded into the Degraded flag; anything else is returned.
func (pc *poolContext) anchorTwap() (types.TwapResult, error) {
	res, err := pc.oracle.Twap(pc.params.Oracle.JitWindowSeconds, pc.now, pc.pool.TickCurrent, pc.params.Oracle)
	if err != nil {
		if !types.IsDegradation(err) {
			return res, err
		}
		res.Degraded = true
		pc.k.metrics.OracleDegradations.WithLabelValues(fmt.Sprintf("%d", pc.pool.Id), degradationReason(err)).Inc()
		return res, nil
	}
	if res.Degraded {
		pc.k.metrics.OracleDegradations.WithLabelValues(fmt.Sprintf("%d", pc.pool.Id), "low_cardinality").Inc()
	}
	return res, nil
}

func degradationReason(err error) string {
	switch {
	case errors.Is(err, types.ErrWindowTooShort):
		return "window_too_short"
	case errors.Is(err, types.ErrObservationTooOld):
		return "observation_too_old"
	default:
		return "low_cardinality"
	}
}

// Twap returns the time-weighted average tick of a pool over the last
// secondsAgo seconds.
func (k Keeper) Twap(goCtx context.Context, poolID uint64, secondsAgo uint32) (types.TwapResult, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	params, err := k.GetParams(ctx)
	if err != nil {
		return types.TwapResult{}, err
	}
	pool, err := k.loadPool(ctx, poolID)
	if err != nil {
		return types.TwapResult{}, err
	}
	ring, err := k.GetObservationRing(ctx, poolID)
	if err != nil {
		return types.TwapResult{}, err
	}

	res, err := ring.Twap(secondsAgo, clock(ctx), pool.TickCurrent, params.Oracle)
	if err != nil {
		if types.IsDegradation(err) {
			k.metrics.OracleDegradations.WithLabelValues(fmt.Sprintf("%d", poolID), degradationReason(err)).Inc()
		}
		return res, err
	}
	if res.Degraded {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeOracleDegraded,
				sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
				sdk.NewAttribute(types.AttributeKeyReason, "low_cardinality"),
			),
		)
	}
	return res, nil
}

// GtwapPrice returns the TWAP over secondsAgo as a price of token A in
// token B.
func (k Keeper) GtwapPrice(ctx context.Context, poolID uint64, secondsAgo uint32) (math.LegacyDec, types.TwapResult, error) {
	res, err := k.Twap(ctx, poolID, secondsAgo)
	if err != nil {
		return math.LegacyDec{}, res, err
	}
	price, err := types.TickToPrice(res.Tick)
	if err != nil {
		return math.LegacyDec{}, res, err
	}
	return price, res, nil
}
