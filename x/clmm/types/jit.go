package types

import (
	"cosmossdk.io/math"
)

// TradeDirection is the taker's inferred direction.
type TradeDirection int32

const (
	DirectionUnknown TradeDirection = iota
	// DirectionZeroForOne sells token A; the price moves down.
	DirectionZeroForOne
	// DirectionOneForZero sells token B; the price moves up.
	DirectionOneForZero
)

// DirectionOf maps a swap flag to its direction.
func DirectionOf(zeroForOne bool) TradeDirection {
	if zeroForOne {
		return DirectionZeroForOne
	}
	return DirectionOneForZero
}

// BandSide is the side of the book an ephemeral band quotes.
type BandSide int32

const (
	// SideBid holds token B below the price and buys token A.
	SideBid BandSide = iota + 1
	// SideAsk holds token A above the price and sells token A.
	SideAsk
)

func (s BandSide) String() string {
	switch s {
	case SideBid:
		return "bid"
	case SideAsk:
		return "ask"
	default:
		return "unknown"
	}
}

// EphemeralBand is a contrarian quote that lives for one trade only.
type EphemeralBand struct {
	Side      BandSide `json:"side"`
	TickLower int32    `json:"tick_lower"`
	TickUpper int32    `json:"tick_upper"`
	Liquidity math.Int `json:"liquidity"`
	// Deposit is the amount drawn from the buffer: token B for a bid,
	// token A for an ask.
	Deposit math.Int `json:"deposit"`
}

// PendingFill is the last JIT fill, awaiting its adverse/non-adverse verdict.
type PendingFill struct {
	Active bool     `json:"active"`
	Side   BandSide `json:"side"`
	Tick   int32    `json:"tick"`
}

// JitState is the persisted per-pool JIT controller state.
type JitState struct {
	PoolId           uint64         `json:"pool_id"`
	BufferA          math.Int       `json:"buffer_a"`
	BufferB          math.Int       `json:"buffer_b"`
	Slot             int64          `json:"slot"`
	SlotUsedA        math.Int       `json:"slot_used_a"`
	SlotUsedB        math.Int       `json:"slot_used_b"`
	SlotFills        uint32         `json:"slot_fills"`
	SlotTickMovement int64          `json:"slot_tick_movement"`
	SlotExhausted    bool           `json:"slot_exhausted"`
	LastFillTime     int64          `json:"last_fill_time"`
	Toxicity         math.LegacyDec `json:"toxicity"`
	Pending          PendingFill    `json:"pending"`
}

// NewJitState returns an empty controller state.
func NewJitState(poolID uint64) JitState {
	return JitState{
		PoolId:    poolID,
		BufferA:   math.ZeroInt(),
		BufferB:   math.ZeroInt(),
		SlotUsedA: math.ZeroInt(),
		SlotUsedB: math.ZeroInt(),
		Toxicity:  math.LegacyZeroDec(),
	}
}

// RollSlot resets the per-slot counters when slot differs from the stored one.
func (s *JitState) RollSlot(slot int64) {
	if slot == s.Slot {
		return
	}
	s.Slot = slot
	s.SlotUsedA = math.ZeroInt()
	s.SlotUsedB = math.ZeroInt()
	s.SlotFills = 0
	s.SlotTickMovement = 0
	s.SlotExhausted = false
}

// UpdateToxicity applies one EWMA step. Adverse fills move toward 1 by
// alphaUp; others decay by alphaDown and then add floorStep.
func (s *JitState) UpdateToxicity(adverse bool, p JitParams) {
	one := math.LegacyOneDec()
	if adverse {
		s.Toxicity = s.Toxicity.Add(one.Sub(s.Toxicity).Mul(p.ToxicityAlphaUp))
	} else {
		s.Toxicity = s.Toxicity.Mul(one.Sub(p.ToxicityAlphaDown)).Add(p.ToxicityFloorStep)
	}
	if s.Toxicity.GT(one) {
		s.Toxicity = one
	}
	if s.Toxicity.IsNegative() {
		s.Toxicity = math.LegacyZeroDec()
	}
}

// SettlePending decides the verdict for the pending fill given the tick
// observed afterwards. A bid fill is adverse when the price kept falling, an
// ask fill when it kept rising.
func (s *JitState) SettlePending(tickNow int32, p JitParams) (settled, adverse bool) {
	if !s.Pending.Active {
		return false, false
	}
	switch s.Pending.Side {
	case SideBid:
		adverse = tickNow < s.Pending.Tick
	case SideAsk:
		adverse = tickNow > s.Pending.Tick
	}
	s.UpdateToxicity(adverse, p)
	s.Pending = PendingFill{}
	return true, adverse
}
