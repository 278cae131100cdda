package keeper

import (
	"context"
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// quoteInput is everything a quoting decision depends on.
type quoteInput struct {
	Direction   types.TradeDirection
	CurrentTick int32
	Twap        types.TwapResult
	FloorTick   int32
	TickSpacing uint32
	Now         int64
	State       types.JitState
}

// planQuote decides which contrarian bands to offer against the incoming
// taker. A zero-for-one taker meets a bid of token B below the price, a
// one-for-zero taker an ask of token A above it, and an unknown direction
// gets both at half size. An ask whose lower tick falls below the floor is
// rejected with ErrFloorBreached.
func planQuote(in quoteInput, p types.JitParams) ([]types.EphemeralBand, error) {
	if !p.Enabled {
		return nil, nil
	}
	st := in.State
	if p.CooldownSeconds > 0 && st.LastFillTime > 0 && in.Now-st.LastFillTime < int64(p.CooldownSeconds) {
		return nil, nil
	}

	cur := int64(in.CurrentTick)
	anchor := int64(in.Twap.Tick)
	spread := int64(p.BaseSpreadTicks) + st.Toxicity.MulInt64(int64(p.ToxicitySpreadTicks)).TruncateInt64()
	if in.Twap.Degraded {
		anchor = cur
		spread += int64(p.DegradedExtraSpreadTicks)
	}
	if floor := int64(in.FloorTick); floor > anchor {
		anchor = floor
	}
	dev := int64(p.MaxAnchorDeviationTicks)
	if anchor > cur+dev {
		anchor = cur + dev
	}
	if anchor < cur-dev {
		anchor = cur - dev
	}

	var sides []types.BandSide
	switch in.Direction {
	case types.DirectionZeroForOne:
		sides = []types.BandSide{types.SideBid}
	case types.DirectionOneForZero:
		sides = []types.BandSide{types.SideAsk}
	default:
		sides = []types.BandSide{types.SideBid, types.SideAsk}
	}

	var bands []types.EphemeralBand
	for _, side := range sides {
		size := quoteSize(side, st, in.Twap.Degraded, p)
		if len(sides) > 1 {
			size = size.QuoRaw(2)
		}
		if !size.IsPositive() {
			continue
		}
		lower, upper, ok := bandRange(side, anchor, spread, cur, in.TickSpacing, p.BandWidthSpacings)
		if !ok {
			continue
		}
		if side == types.SideAsk && lower < in.FloorTick {
			return nil, types.ErrFloorBreached.Wrapf("ask lower tick %d below floor %d", lower, in.FloorTick)
		}
		liquidity, err := bandLiquidity(side, lower, upper, size)
		if err != nil {
			return nil, err
		}
		if !liquidity.IsPositive() {
			continue
		}
		bands = append(bands, types.EphemeralBand{
			Side:      side,
			TickLower: lower,
			TickUpper: upper,
			Liquidity: liquidity,
			Deposit:   size,
		})
	}
	return bands, nil
}

// quoteSize sizes one band from the side's buffer. Once the slot is
// exhausted the size collapses to the configured minimum.
func quoteSize(side types.BandSide, st types.JitState, degraded bool, p types.JitParams) math.Int {
	buffer, used := st.BufferA, st.SlotUsedA
	if side == types.SideBid {
		buffer, used = st.BufferB, st.SlotUsedB
	}
	if !buffer.IsPositive() {
		return math.ZeroInt()
	}
	remaining := p.PerSlotBudget.Sub(used)
	if slotExhausted(st, p) || !remaining.IsPositive() {
		return math.MinInt(p.MinQuoteSize, buffer)
	}

	size := buffer.MulRaw(int64(p.MaxBufferShareBps)).QuoRaw(types.BpsDenominator)
	size = math.MinInt(size, p.PerTradeCap)
	size = math.MinInt(size, remaining)

	factor := math.LegacyOneDec().Sub(st.Toxicity.Mul(p.ToxicitySizeFactor))
	if factor.IsNegative() {
		return math.ZeroInt()
	}
	size = math.LegacyNewDecFromInt(size).Mul(factor).TruncateInt()
	if degraded {
		size = size.MulRaw(int64(p.DegradedSizeBps)).QuoRaw(types.BpsDenominator)
	}
	return size
}

func slotExhausted(st types.JitState, p types.JitParams) bool {
	return st.SlotExhausted ||
		st.SlotFills >= p.MaxFillsPerSlot ||
		st.SlotTickMovement >= int64(p.MaxSlotTickMovement)
}

// bandRange places a band of width spacings beyond the spread: bids end at
// or below the current tick, asks start strictly above it.
func bandRange(side types.BandSide, anchor, spread, cur int64, tickSpacing, width uint32) (int32, int32, bool) {
	s := int64(tickSpacing)
	w := int64(width) * s
	var lower, upper int64
	if side == types.SideBid {
		upper = anchor - spread
		if upper > cur {
			upper = cur
		}
		upper = alignDown(upper, s)
		lower = upper - w
	} else {
		lower = anchor + spread
		if lower <= cur {
			lower = cur + 1
		}
		lower = alignUp(lower, s)
		upper = lower + w
	}
	if lower < int64(types.MinTick) || upper > int64(types.MaxTick) || lower >= upper {
		return 0, 0, false
	}
	return int32(lower), int32(upper), true
}

func alignDown(x, s int64) int64 {
	q := x / s
	if x%s != 0 && x < 0 {
		q--
	}
	return q * s
}

func alignUp(x, s int64) int64 {
	d := alignDown(x, s)
	if d < x {
		d += s
	}
	return d
}

// bandLiquidity converts a one-sided deposit into liquidity, rounded down so
// the placed amounts never exceed the deposit.
func bandLiquidity(side types.BandSide, lower, upper int32, size math.Int) (math.Int, error) {
	sqrtLower, err := types.SqrtPriceAtTick(lower)
	if err != nil {
		return math.Int{}, err
	}
	sqrtUpper, err := types.SqrtPriceAtTick(upper)
	if err != nil {
		return math.Int{}, err
	}
	if side == types.SideBid {
		return types.LiquidityFromAmountB(sqrtLower, sqrtUpper, size)
	}
	return types.LiquidityFromAmountA(sqrtLower, sqrtUpper, size)
}

type placedBand struct {
	band    types.EphemeralBand
	insideA math.Int
	insideB math.Int
}

// bands returns the bands as placed, with the deposits actually drawn.
func (g *jitGuard) bands() []types.EphemeralBand {
	out := make([]types.EphemeralBand, 0, len(g.placed))
	for _, p := range g.placed {
		out = append(out, p.band)
	}
	return out
}

// jitFill is a band that traded against the taker.
type jitFill struct {
	Side    types.BandSide
	Filled  math.Int
	AmountA math.Int
	AmountB math.Int
	FeesA   math.Int
	FeesB   math.Int
}

// jitGuard owns the bands placed for one trade and removes them exactly once.
type jitGuard struct {
	pc       *poolContext
	placed   []placedBand
	released bool
}

// placeJit adds the planned bands to the working set as transient positions
// funded from the buffer.
func (pc *poolContext) placeJit(bands []types.EphemeralBand) (*jitGuard, error) {
	g := &jitGuard{pc: pc}
	for _, b := range bands {
		amountA, amountB, err := pc.modifyLiquidity(b.TickLower, b.TickUpper, b.Liquidity)
		if err != nil {
			return g, err
		}
		if b.Side == types.SideBid {
			if pc.jit.BufferB, err = types.SubU128(pc.jit.BufferB, amountB); err != nil {
				return g, err
			}
			pc.jit.SlotUsedB = pc.jit.SlotUsedB.Add(amountB)
			b.Deposit = amountB
		} else {
			if pc.jit.BufferA, err = types.SubU128(pc.jit.BufferA, amountA); err != nil {
				return g, err
			}
			pc.jit.SlotUsedA = pc.jit.SlotUsedA.Add(amountA)
			b.Deposit = amountA
		}
		insideA, insideB, err := pc.feeGrowthInside(b.TickLower, b.TickUpper)
		if err != nil {
			return g, err
		}
		g.placed = append(g.placed, placedBand{band: b, insideA: insideA, insideB: insideB})
	}
	return g, nil
}

// release withdraws every band at the current price and returns principal,
// fills and earned fees to the buffer.
func (g *jitGuard) release() ([]jitFill, error) {
	if g == nil || g.released {
		return nil, nil
	}
	g.released = true
	pc := g.pc

	var fills []jitFill
	for i := len(g.placed) - 1; i >= 0; i-- {
		p := g.placed[i]
		insideA, insideB, err := pc.feeGrowthInside(p.band.TickLower, p.band.TickUpper)
		if err != nil {
			return nil, err
		}
		feesA, err := types.FeesOwed(p.band.Liquidity, insideA, p.insideA)
		if err != nil {
			return nil, err
		}
		feesB, err := types.FeesOwed(p.band.Liquidity, insideB, p.insideB)
		if err != nil {
			return nil, err
		}
		amountA, amountB, err := pc.modifyLiquidity(p.band.TickLower, p.band.TickUpper, p.band.Liquidity.Neg())
		if err != nil {
			return nil, err
		}
		if pc.jit.BufferA, err = types.AddU128(pc.jit.BufferA, amountA.Add(feesA)); err != nil {
			return nil, err
		}
		if pc.jit.BufferB, err = types.AddU128(pc.jit.BufferB, amountB.Add(feesB)); err != nil {
			return nil, err
		}

		filled := amountA
		if p.band.Side == types.SideAsk {
			filled = amountB
		}
		if filled.IsPositive() {
			fills = append(fills, jitFill{
				Side:    p.band.Side,
				Filled:  filled,
				AmountA: amountA,
				AmountB: amountB,
				FeesA:   feesA,
				FeesB:   feesB,
			})
		}
	}
	return fills, nil
}

// abandon releases the bands on an early return. The working set is being
// discarded, so errors are irrelevant.
func (g *jitGuard) abandon() {
	_, _ = g.release()
}

// recordJitOutcome settles the verdict on the previous fill against where
// this trade left the price, updates the slot counters and queues this
// trade's last fill for its own verdict.
func (pc *poolContext) recordJitOutcome(fills []jitFill, startTick, endTick int32) {
	st := &pc.jit
	st.SettlePending(endTick, pc.params.Jit)
	move := int64(endTick) - int64(startTick)
	if move < 0 {
		move = -move
	}
	st.SlotTickMovement += move
	for _, f := range fills {
		st.SlotFills++
		st.LastFillTime = pc.now
		st.Pending = types.PendingFill{Active: true, Side: f.Side, Tick: endTick}
	}
	p := pc.params.Jit
	if st.SlotUsedA.GTE(p.PerSlotBudget) || st.SlotUsedB.GTE(p.PerSlotBudget) || slotExhausted(*st, p) {
		st.SlotExhausted = true
	}
}

// prepareJit rolls the slot counters over to the current clock.
func (pc *poolContext) prepareJit() {
	if pc.params.Jit.SlotSeconds > 0 {
		pc.jit.RollSlot(pc.now / int64(pc.params.Jit.SlotSeconds))
	}
}

func (pc *poolContext) quoteInput(dir types.TradeDirection, twap types.TwapResult) quoteInput {
	return quoteInput{
		Direction:   dir,
		CurrentTick: pc.pool.TickCurrent,
		Twap:        twap,
		FloorTick:   pc.k.floorTick(pc.ctx, pc.pool.Id),
		TickSpacing: pc.pool.TickSpacing,
		Now:         pc.now,
		State:       pc.jit,
	}
}

// QuoteJit previews the bands the next trade in direction would meet. It
// reads state only.
func (k Keeper) QuoteJit(goCtx context.Context, poolID uint64, dir types.TradeDirection) ([]types.EphemeralBand, error) {
	ctx := sdk.UnwrapSDKContext(goCtx)
	pc, err := k.loadPoolContext(ctx, poolID)
	if err != nil {
		return nil, err
	}
	twap, err := pc.anchorTwap()
	if err != nil {
		return nil, err
	}
	pc.prepareJit()
	return planQuote(pc.quoteInput(dir, twap), pc.params.Jit)
}

// FundJitBuffer credits the JIT buffers of a pool. Moving the tokens is the
// caller's responsibility.
func (k Keeper) FundJitBuffer(goCtx context.Context, poolID uint64, amountA, amountB math.Int) error {
	ctx := sdk.UnwrapSDKContext(goCtx)
	if amountA.IsNil() {
		amountA = math.ZeroInt()
	}
	if amountB.IsNil() {
		amountB = math.ZeroInt()
	}
	if amountA.IsNegative() || amountB.IsNegative() {
		return types.ErrInvalidParams.Wrap("funding amounts cannot be negative")
	}
	if amountA.IsZero() && amountB.IsZero() {
		return types.ErrZeroAmount.Wrap("nothing to fund")
	}

	pc, err := k.loadPoolContext(ctx, poolID)
	if err != nil {
		return err
	}
	if pc.jit.BufferA, err = types.AddU128(pc.jit.BufferA, amountA); err != nil {
		return err
	}
	if pc.jit.BufferB, err = types.AddU128(pc.jit.BufferB, amountB); err != nil {
		return err
	}
	if err := pc.commit(); err != nil {
		return err
	}

	ctx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeJitBufferFunded,
			sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", poolID)),
			sdk.NewAttribute(types.AttributeKeyAmountA, amountA.String()),
			sdk.NewAttribute(types.AttributeKeyAmountB, amountB.String()),
		),
	)
	return nil
}
