package types

import (
	"fmt"

	"cosmossdk.io/math"
)

// FeeSplit distributes the dynamic fee. The shares sum to BpsDenominator.
type FeeSplit struct {
	LpBps       uint32 `json:"lp_bps"`
	BufferBps   uint32 `json:"buffer_bps"`
	ProtocolBps uint32 `json:"protocol_bps"`
}

// FeeParams configure the post-trade dynamic fee. All fees are in bps.
type FeeParams struct {
	BaseFeeBps     uint32 `json:"base_fee_bps"`
	ImpactFloorBps uint32 `json:"impact_floor_bps"`
	MinTotalFeeBps uint32 `json:"min_total_fee_bps"`
	MaxTotalFeeBps uint32 `json:"max_total_fee_bps"`

	// Impact table: one bps per DenseTicksPerBps ticks up to DenseLimitTicks,
	// then CoarseBucketBps per CoarseBucketTicks bucket up to
	// ImpactCeilingTicks, flat beyond.
	DenseTicksPerBps   uint32 `json:"dense_ticks_per_bps"`
	DenseLimitTicks    uint32 `json:"dense_limit_ticks"`
	CoarseBucketTicks  uint32 `json:"coarse_bucket_ticks"`
	CoarseBucketBps    uint32 `json:"coarse_bucket_bps"`
	ImpactCeilingTicks uint32 `json:"impact_ceiling_ticks"`

	Split FeeSplit `json:"split"`
}

// JitParams configure the ephemeral contrarian liquidity layer.
type JitParams struct {
	Enabled                  bool           `json:"enabled"`
	BandWidthSpacings        uint32         `json:"band_width_spacings"`
	BaseSpreadTicks          uint32         `json:"base_spread_ticks"`
	ToxicitySpreadTicks      uint32         `json:"toxicity_spread_ticks"`
	MaxAnchorDeviationTicks  uint32         `json:"max_anchor_deviation_ticks"`
	MaxBufferShareBps        uint32         `json:"max_buffer_share_bps"`
	PerTradeCap              math.Int       `json:"per_trade_cap"`
	PerSlotBudget            math.Int       `json:"per_slot_budget"`
	MaxFillsPerSlot          uint32         `json:"max_fills_per_slot"`
	MaxSlotTickMovement      uint32         `json:"max_slot_tick_movement"`
	MinQuoteSize             math.Int       `json:"min_quote_size"`
	SlotSeconds              uint32         `json:"slot_seconds"`
	CooldownSeconds          uint32         `json:"cooldown_seconds"`
	ToxicityAlphaUp          math.LegacyDec `json:"toxicity_alpha_up"`
	ToxicityAlphaDown        math.LegacyDec `json:"toxicity_alpha_down"`
	ToxicityFloorStep        math.LegacyDec `json:"toxicity_floor_step"`
	ToxicitySizeFactor       math.LegacyDec `json:"toxicity_size_factor"`
	DegradedSizeBps          uint32         `json:"degraded_size_bps"`
	DegradedExtraSpreadTicks uint32         `json:"degraded_extra_spread_ticks"`
}

// OracleParams configure the GTWAP ring buffer.
type OracleParams struct {
	Capacity         uint32 `json:"capacity"`
	MinWindowSeconds uint32 `json:"min_window_seconds"`
	MinCardinality   uint32 `json:"min_cardinality"`
	JitWindowSeconds uint32 `json:"jit_window_seconds"`
}

// SwapParams bound the cost of one swap.
type SwapParams struct {
	MaxSteps uint32 `json:"max_steps"`
}

// Params is the immutable per-call configuration of the module.
type Params struct {
	Fee    FeeParams    `json:"fee"`
	Jit    JitParams    `json:"jit"`
	Oracle OracleParams `json:"oracle"`
	Swap   SwapParams   `json:"swap"`
}

// DefaultFeeParams returns the default fee schedule: 45 bps base, 10 bps
// impact floor, capped at 10%.
func DefaultFeeParams() FeeParams {
	return FeeParams{
		BaseFeeBps:         45,
		ImpactFloorBps:     10,
		MinTotalFeeBps:     30,
		MaxTotalFeeBps:     1000,
		DenseTicksPerBps:   10,
		DenseLimitTicks:    100,
		CoarseBucketTicks:  100,
		CoarseBucketBps:    10,
		ImpactCeilingTicks: 10_000,
		Split: FeeSplit{
			LpBps:       7000,
			BufferBps:   2000,
			ProtocolBps: 1000,
		},
	}
}

// DefaultJitParams returns the default JIT controller configuration.
func DefaultJitParams() JitParams {
	return JitParams{
		Enabled:                  true,
		BandWidthSpacings:        2,
		BaseSpreadTicks:          10,
		ToxicitySpreadTicks:      200,
		MaxAnchorDeviationTicks:  500,
		MaxBufferShareBps:        1000,
		PerTradeCap:              math.NewInt(1_000_000),
		PerSlotBudget:            math.NewInt(5_000_000),
		MaxFillsPerSlot:          8,
		MaxSlotTickMovement:      2000,
		MinQuoteSize:             math.NewInt(1_000),
		SlotSeconds:              60,
		CooldownSeconds:          0,
		ToxicityAlphaUp:          math.LegacyMustNewDecFromStr("0.3"),
		ToxicityAlphaDown:        math.LegacyMustNewDecFromStr("0.05"),
		ToxicityFloorStep:        math.LegacyMustNewDecFromStr("0.002"),
		ToxicitySizeFactor:       math.LegacyMustNewDecFromStr("0.8"),
		DegradedSizeBps:          5000,
		DegradedExtraSpreadTicks: 50,
	}
}

// DefaultOracleParams returns the default oracle configuration.
func DefaultOracleParams() OracleParams {
	return OracleParams{
		Capacity:         64,
		MinWindowSeconds: 30,
		MinCardinality:   4,
		JitWindowSeconds: 300,
	}
}

// DefaultParams returns a default set of parameters
func DefaultParams() Params {
	return Params{
		Fee:    DefaultFeeParams(),
		Jit:    DefaultJitParams(),
		Oracle: DefaultOracleParams(),
		Swap:   SwapParams{MaxSteps: 256},
	}
}

// Validate validates the set of params
func (p Params) Validate() error {
	if err := p.Fee.Validate(); err != nil {
		return err
	}
	if err := p.Jit.Validate(); err != nil {
		return err
	}
	if err := p.Oracle.Validate(); err != nil {
		return err
	}
	if p.Swap.MaxSteps == 0 {
		return ErrInvalidParams.Wrap("max swap steps must be positive")
	}
	return nil
}

// SplitSafetyMargin returns the smallest base fee for which splitting a
// trade can never lower its aggregate fee under this impact table: twice
// the coarsest table step plus the table's convexity excess.
func (f FeeParams) SplitSafetyMargin() uint32 {
	quantum := f.CoarseBucketBps
	if quantum < 1 {
		quantum = 1
	}
	margin := uint64(2 * quantum)

	coarseSlope := uint64(f.CoarseBucketBps) * uint64(f.DenseTicksPerBps)
	if coarseSlope > uint64(f.CoarseBucketTicks) {
		num := (coarseSlope - uint64(f.CoarseBucketTicks)) * uint64(f.DenseLimitTicks)
		den := uint64(f.CoarseBucketTicks) * uint64(f.DenseTicksPerBps)
		margin += (num + den - 1) / den
	}
	if margin > BpsDenominator {
		return BpsDenominator
	}
	return uint32(margin)
}

// Validate checks the fee schedule, including that the impact table keeps
// splitting unprofitable.
func (f FeeParams) Validate() error {
	if f.MinTotalFeeBps > f.MaxTotalFeeBps {
		return ErrInvalidParams.Wrapf("min total fee %d bps above max %d bps", f.MinTotalFeeBps, f.MaxTotalFeeBps)
	}
	if f.MaxTotalFeeBps > BpsDenominator {
		return ErrInvalidParams.Wrapf("max total fee %d bps above %d", f.MaxTotalFeeBps, BpsDenominator)
	}
	if f.DenseTicksPerBps == 0 || f.CoarseBucketTicks == 0 {
		return ErrInvalidParams.Wrap("impact table resolutions must be positive")
	}
	if f.DenseLimitTicks < f.DenseTicksPerBps || f.DenseLimitTicks%f.DenseTicksPerBps != 0 {
		return ErrInvalidParams.Wrapf("dense limit %d must be a positive multiple of %d", f.DenseLimitTicks, f.DenseTicksPerBps)
	}
	if f.ImpactCeilingTicks < f.DenseLimitTicks {
		return ErrInvalidParams.Wrapf("impact ceiling %d below dense limit %d", f.ImpactCeilingTicks, f.DenseLimitTicks)
	}
	if margin := f.SplitSafetyMargin(); f.BaseFeeBps < margin {
		return ErrInvalidParams.Wrapf("base fee %d bps below split safety margin %d bps", f.BaseFeeBps, margin)
	}
	return f.Split.Validate()
}

// Validate checks that the shares sum to 10,000 bps.
func (s FeeSplit) Validate() error {
	if sum := uint64(s.LpBps) + uint64(s.BufferBps) + uint64(s.ProtocolBps); sum != BpsDenominator {
		return ErrInvalidParams.Wrapf("fee split sums to %d bps, want %d", sum, BpsDenominator)
	}
	return nil
}

func validateNonNegativeInt(name string, v math.Int) error {
	if v.IsNil() || v.IsNegative() {
		return ErrInvalidParams.Wrapf("%s must be non-negative, got %v", name, v)
	}
	if v.GT(MaxU128) {
		return ErrInvalidParams.Wrapf("%s exceeds 128 bits", name)
	}
	return nil
}

func validateFraction(name string, v math.LegacyDec, allowZero bool) error {
	if v.IsNil() || v.IsNegative() || v.GT(math.LegacyOneDec()) {
		return ErrInvalidParams.Wrapf("%s must be in [0, 1], got %v", name, v)
	}
	if !allowZero && v.IsZero() {
		return ErrInvalidParams.Wrapf("%s must be positive", name)
	}
	return nil
}

// Validate checks the JIT configuration.
func (j JitParams) Validate() error {
	if j.BandWidthSpacings == 0 {
		return ErrInvalidParams.Wrap("band width must be at least one tick spacing")
	}
	if j.SlotSeconds == 0 {
		return ErrInvalidParams.Wrap("slot duration must be positive")
	}
	if j.MaxBufferShareBps > BpsDenominator || j.DegradedSizeBps > BpsDenominator {
		return ErrInvalidParams.Wrap("bps shares cannot exceed 10000")
	}
	if err := validateNonNegativeInt("per trade cap", j.PerTradeCap); err != nil {
		return err
	}
	if err := validateNonNegativeInt("per slot budget", j.PerSlotBudget); err != nil {
		return err
	}
	if err := validateNonNegativeInt("min quote size", j.MinQuoteSize); err != nil {
		return err
	}
	if j.MinQuoteSize.GT(j.PerTradeCap) {
		return ErrInvalidParams.Wrapf("min quote size %s above per trade cap %s", j.MinQuoteSize, j.PerTradeCap)
	}
	if err := validateFraction("toxicity alpha up", j.ToxicityAlphaUp, false); err != nil {
		return err
	}
	if err := validateFraction("toxicity alpha down", j.ToxicityAlphaDown, false); err != nil {
		return err
	}
	if err := validateFraction("toxicity size factor", j.ToxicitySizeFactor, true); err != nil {
		return err
	}
	if err := validateFraction("toxicity floor step", j.ToxicityFloorStep, false); err != nil {
		return err
	}
	// the non-adverse fixed point floor/alphaDown must stay below full toxicity
	if j.ToxicityFloorStep.GTE(j.ToxicityAlphaDown) {
		return ErrInvalidParams.Wrapf("toxicity floor step %s must be below alpha down %s", j.ToxicityFloorStep, j.ToxicityAlphaDown)
	}
	return nil
}

// Validate checks the oracle configuration.
func (o OracleParams) Validate() error {
	if o.Capacity < 2 || o.Capacity > 65535 {
		return ErrInvalidParams.Wrapf("oracle capacity %d outside [2, 65535]", o.Capacity)
	}
	if o.MinWindowSeconds == 0 {
		return ErrInvalidParams.Wrap("minimum twap window must be positive")
	}
	if o.MinCardinality == 0 || o.MinCardinality > o.Capacity {
		return ErrInvalidParams.Wrapf("min cardinality %d outside [1, %d]", o.MinCardinality, o.Capacity)
	}
	if o.JitWindowSeconds < o.MinWindowSeconds {
		return ErrInvalidParams.Wrapf("jit window %ds below minimum window %ds", o.JitWindowSeconds, o.MinWindowSeconds)
	}
	return nil
}

// String implements fmt.Stringer.
func (p Params) String() string {
	return fmt.Sprintf("fee=%+v oracle=%+v swap=%+v jit_enabled=%t", p.Fee, p.Oracle, p.Swap, p.Jit.Enabled)
}
