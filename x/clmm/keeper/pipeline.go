package keeper

import (
	"context"
	"errors"
	"fmt"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/cosmos/cosmos-sdk/telemetry"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/hashicorp/go-metrics"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// SwapRequest is an exact-input trade against one pool.
type SwapRequest struct {
	PoolId     uint64
	AmountIn   math.Int
	ZeroForOne bool
	// MinAmountOut is checked against the output net of the dynamic fee.
	MinAmountOut math.Int
	// SqrtPriceLimitX64 of zero means the price extreme in the trade direction.
	SqrtPriceLimitX64 math.Int
	// MaxFeeBps of zero means no cap.
	MaxFeeBps uint32
}

// JitFill reports one ephemeral band that traded against the taker.
type JitFill struct {
	Side    types.BandSide
	Filled  math.Int
	AmountA math.Int
	AmountB math.Int
}

// SwapResult is the committed outcome of a trade.
type SwapResult struct {
	AmountIn     math.Int
	AmountOut    math.Int
	LpFeeAmount  math.Int
	FeeBps       uint32
	FeeAmount    math.Int
	StartTick    int32
	EndTick      int32
	SqrtPriceX64 math.Int
	Steps        uint32
	Crossings    uint32
	Bands        []types.EphemeralBand
	JitFills     []JitFill
	TwapDegraded bool
}

func (r SwapRequest) validate() error {
	if r.AmountIn.IsNil() || !r.AmountIn.IsPositive() {
		return types.ErrZeroAmount.Wrap("amount in must be positive")
	}
	if r.AmountIn.GT(types.MaxU128) {
		return types.ErrMathOverflow.Wrapf("amount in %s exceeds 128 bits", r.AmountIn)
	}
	if !r.MinAmountOut.IsNil() && r.MinAmountOut.IsNegative() {
		return types.ErrInvalidParams.Wrap("min amount out cannot be negative")
	}
	if !r.SqrtPriceLimitX64.IsNil() && r.SqrtPriceLimitX64.IsNegative() {
		return types.ErrInvalidPriceLimit.Wrap("sqrt price limit cannot be negative")
	}
	if r.MaxFeeBps > types.BpsDenominator {
		return types.ErrInvalidParams.Wrapf("max fee %d bps exceeds %d", r.MaxFeeBps, types.BpsDenominator)
	}
	return nil
}

// Swap runs one trade through the pricing pipeline: oracle read, JIT
// placement, swap execution, JIT removal, dynamic fee, slippage check and
// oracle write. The working set is committed once at the end, so any error
// leaves the store untouched.
func (k Keeper) Swap(goCtx context.Context, req SwapRequest) (result SwapResult, err error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	poolLabel := fmt.Sprintf("%d", req.PoolId)
	defer func() {
		if err != nil {
			k.recordSwapFailure(ctx, poolLabel, err)
		}
	}()

	// Validate inputs
	if err := req.validate(); err != nil {
		return SwapResult{}, err
	}
	minOut := req.MinAmountOut
	if minOut.IsNil() {
		minOut = math.ZeroInt()
	}

	// Load working set
	pc, err := k.loadPoolContext(ctx, req.PoolId)
	if err != nil {
		return SwapResult{}, err
	}
	if pc.pool.Paused {
		return SwapResult{}, types.WrapWithRecovery(types.ErrPoolPaused, "pool %d", req.PoolId)
	}
	startTick := pc.pool.TickCurrent

	// Oracle read, degradation folded into the flag
	twap, err := pc.anchorTwap()
	if err != nil {
		return SwapResult{}, err
	}

	// Roll the slot and place contrarian liquidity
	pc.prepareJit()
	planned, err := planQuote(pc.quoteInput(types.DirectionOf(req.ZeroForOne), twap), pc.params.Jit)
	if err != nil {
		return SwapResult{}, err
	}
	guard, err := pc.placeJit(planned)
	defer guard.abandon()
	if err != nil {
		return SwapResult{}, err
	}

	// Execute
	swapRes, err := pc.executeSwap(req.AmountIn, req.ZeroForOne, req.SqrtPriceLimitX64)
	if err != nil {
		return SwapResult{}, err
	}

	// Remove JIT bands
	fills, err := guard.release()
	if err != nil {
		return SwapResult{}, err
	}

	// Dynamic fee on the realized displacement
	overlay, err := pc.applyOverlayFee(swapRes, req.ZeroForOne, req.MaxFeeBps)
	if err != nil {
		return SwapResult{}, err
	}
	if overlay.AmountOut.LT(minOut) {
		return SwapResult{}, types.WrapWithRecovery(types.ErrSlippageExceeded,
			"output %s below minimum %s", overlay.AmountOut, minOut)
	}

	// Oracle write with the tick that prevailed before this trade
	pc.observe(startTick)
	pc.recordJitOutcome(fills, startTick, swapRes.EndTick)

	if err := pc.commit(); err != nil {
		return SwapResult{}, err
	}

	result = SwapResult{
		AmountIn:     swapRes.AmountIn,
		AmountOut:    overlay.AmountOut,
		LpFeeAmount:  swapRes.LpFee,
		FeeBps:       overlay.FeeBps,
		FeeAmount:    overlay.Shares.Total,
		StartTick:    startTick,
		EndTick:      swapRes.EndTick,
		SqrtPriceX64: pc.pool.SqrtPriceX64,
		Steps:        swapRes.Steps,
		Crossings:    swapRes.Crossings,
		Bands:        guard.bands(),
		TwapDegraded: twap.Degraded,
	}
	for _, f := range fills {
		result.JitFills = append(result.JitFills, JitFill{Side: f.Side, Filled: f.Filled, AmountA: f.AmountA, AmountB: f.AmountB})
	}

	k.emitSwapEvents(ctx, pc, req, result)
	return result, nil
}

func (k Keeper) emitSwapEvents(ctx sdk.Context, pc *poolContext, req SwapRequest, res SwapResult) {
	poolLabel := fmt.Sprintf("%d", req.PoolId)

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeSwap,
			sdk.NewAttribute(types.AttributeKeyPoolID, poolLabel),
			sdk.NewAttribute(types.AttributeKeyZeroForOne, fmt.Sprintf("%t", req.ZeroForOne)),
			sdk.NewAttribute(types.AttributeKeyAmountIn, res.AmountIn.String()),
			sdk.NewAttribute(types.AttributeKeyAmountOut, res.AmountOut.String()),
			sdk.NewAttribute(types.AttributeKeyFeeBps, fmt.Sprintf("%d", res.FeeBps)),
			sdk.NewAttribute(types.AttributeKeyFeeAmount, res.FeeAmount.String()),
			sdk.NewAttribute(types.AttributeKeySqrtPrice, res.SqrtPriceX64.String()),
			sdk.NewAttribute(types.AttributeKeyTick, fmt.Sprintf("%d", res.EndTick)),
		),
	)
	for _, f := range res.JitFills {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeJitFill,
				sdk.NewAttribute(types.AttributeKeyPoolID, poolLabel),
				sdk.NewAttribute(types.AttributeKeySide, f.Side.String()),
				sdk.NewAttribute(types.AttributeKeyFilled, f.Filled.String()),
				sdk.NewAttribute(types.AttributeKeyAmountA, f.AmountA.String()),
				sdk.NewAttribute(types.AttributeKeyAmountB, f.AmountB.String()),
				sdk.NewAttribute(types.AttributeKeyToxicity, pc.jit.Toxicity.String()),
			),
		)
		k.metrics.JitFills.WithLabelValues(poolLabel, f.Side.String()).Inc()
	}
	if res.TwapDegraded {
		ctx.EventManager().EmitEvent(
			sdk.NewEvent(
				types.EventTypeOracleDegraded,
				sdk.NewAttribute(types.AttributeKeyPoolID, poolLabel),
				sdk.NewAttribute(types.AttributeKeyReason, "jit_anchor_fallback"),
			),
		)
	}

	for _, b := range res.Bands {
		k.metrics.JitQuotes.WithLabelValues(poolLabel, b.Side.String()).Inc()
		k.metrics.JitQuoteSize.Observe(math.LegacyNewDecFromInt(b.Deposit).MustFloat64())
	}
	k.metrics.SwapsTotal.WithLabelValues(poolLabel, "success").Inc()
	k.metrics.SwapSteps.Observe(float64(res.Steps))
	k.metrics.SwapFeeBps.Observe(float64(res.FeeBps))
	if res.Crossings > 0 {
		k.metrics.TickCrossing.WithLabelValues(poolLabel).Add(float64(res.Crossings))
	}
	k.metrics.JitToxicity.WithLabelValues(poolLabel).Set(pc.jit.Toxicity.MustFloat64())

	k.Logger(ctx).Debug("swap executed",
		"pool_id", req.PoolId,
		"amount_in", res.AmountIn.String(),
		"amount_out", res.AmountOut.String(),
		"fee_bps", res.FeeBps,
		"start_tick", res.StartTick,
		"end_tick", res.EndTick,
	)
}

func (k Keeper) recordSwapFailure(ctx sdk.Context, poolLabel string, err error) {
	reason := "internal"
	var sdkErr *errorsmod.Error
	if errors.As(err, &sdkErr) {
		reason = sdkErr.Error()
	}
	k.metrics.SwapsTotal.WithLabelValues(poolLabel, "failed").Inc()
	telemetry.IncrCounterWithLabels(
		[]string{types.ModuleName, "swap_rejected"},
		1,
		[]metrics.Label{
			telemetry.NewLabel("pool_id", poolLabel),
			telemetry.NewLabel("reason", reason),
		},
	)
	if types.IsInvariantViolation(err) {
		k.Logger(ctx).Error("swap aborted on invariant violation", "pool_id", poolLabel, "error", err)
	}
}
