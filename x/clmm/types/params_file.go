package types

import (
	"strings"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/math"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// ParamsEnvPrefix prefixes environment overrides, e.g. CLMM_FEE_BASE_FEE_BPS.
const ParamsEnvPrefix = "CLMM"

// LoadParamsFile reads a parameter override file (toml, yaml or json, by
// extension) on top of DefaultParams. Only keys present in the file or in
// the environment are overridden; the result is validated.
func LoadParamsFile(path string) (Params, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix(ParamsEnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		return Params{}, errorsmod.Wrapf(ErrInvalidParams, "read %s: %s", path, err)
	}
	return ParamsFromViper(v)
}

// ParamsFromViper overlays the keys set in v on DefaultParams.
func ParamsFromViper(v *viper.Viper) (Params, error) {
	p := DefaultParams()
	l := paramLoader{v: v}

	l.setUint32("fee.base_fee_bps", &p.Fee.BaseFeeBps)
	l.setUint32("fee.impact_floor_bps", &p.Fee.ImpactFloorBps)
	l.setUint32("fee.min_total_fee_bps", &p.Fee.MinTotalFeeBps)
	l.setUint32("fee.max_total_fee_bps", &p.Fee.MaxTotalFeeBps)
	l.setUint32("fee.dense_ticks_per_bps", &p.Fee.DenseTicksPerBps)
	l.setUint32("fee.dense_limit_ticks", &p.Fee.DenseLimitTicks)
	l.setUint32("fee.coarse_bucket_ticks", &p.Fee.CoarseBucketTicks)
	l.setUint32("fee.coarse_bucket_bps", &p.Fee.CoarseBucketBps)
	l.setUint32("fee.impact_ceiling_ticks", &p.Fee.ImpactCeilingTicks)
	l.setUint32("fee.split.lp_bps", &p.Fee.Split.LpBps)
	l.setUint32("fee.split.buffer_bps", &p.Fee.Split.BufferBps)
	l.setUint32("fee.split.protocol_bps", &p.Fee.Split.ProtocolBps)

	l.setBool("jit.enabled", &p.Jit.Enabled)
	l.setUint32("jit.band_width_spacings", &p.Jit.BandWidthSpacings)
	l.setUint32("jit.base_spread_ticks", &p.Jit.BaseSpreadTicks)
	l.setUint32("jit.toxicity_spread_ticks", &p.Jit.ToxicitySpreadTicks)
	l.setUint32("jit.max_anchor_deviation_ticks", &p.Jit.MaxAnchorDeviationTicks)
	l.setUint32("jit.max_buffer_share_bps", &p.Jit.MaxBufferShareBps)
	l.setInt("jit.per_trade_cap", &p.Jit.PerTradeCap)
	l.setInt("jit.per_slot_budget", &p.Jit.PerSlotBudget)
	l.setUint32("jit.max_fills_per_slot", &p.Jit.MaxFillsPerSlot)
	l.setUint32("jit.max_slot_tick_movement", &p.Jit.MaxSlotTickMovement)
	l.setInt("jit.min_quote_size", &p.Jit.MinQuoteSize)
	l.setUint32("jit.slot_seconds", &p.Jit.SlotSeconds)
	l.setUint32("jit.cooldown_seconds", &p.Jit.CooldownSeconds)
	l.setDec("jit.toxicity_alpha_up", &p.Jit.ToxicityAlphaUp)
	l.setDec("jit.toxicity_alpha_down", &p.Jit.ToxicityAlphaDown)
	l.setDec("jit.toxicity_floor_step", &p.Jit.ToxicityFloorStep)
	l.setDec("jit.toxicity_size_factor", &p.Jit.ToxicitySizeFactor)
	l.setUint32("jit.degraded_size_bps", &p.Jit.DegradedSizeBps)
	l.setUint32("jit.degraded_extra_spread_ticks", &p.Jit.DegradedExtraSpreadTicks)

	l.setUint32("oracle.capacity", &p.Oracle.Capacity)
	l.setUint32("oracle.min_window_seconds", &p.Oracle.MinWindowSeconds)
	l.setUint32("oracle.min_cardinality", &p.Oracle.MinCardinality)
	l.setUint32("oracle.jit_window_seconds", &p.Oracle.JitWindowSeconds)

	l.setUint32("swap.max_steps", &p.Swap.MaxSteps)

	if l.err != nil {
		return Params{}, l.err
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// paramLoader keeps the first conversion error so call sites stay flat.
type paramLoader struct {
	v   *viper.Viper
	err error
}

func (l *paramLoader) fail(key string, err error) {
	if l.err == nil {
		l.err = ErrInvalidParams.Wrapf("%s: %s", key, err)
	}
}

func (l *paramLoader) setUint32(key string, dst *uint32) {
	if l.err != nil || !l.v.IsSet(key) {
		return
	}
	val, err := cast.ToUint32E(l.v.Get(key))
	if err != nil {
		l.fail(key, err)
		return
	}
	*dst = val
}

func (l *paramLoader) setBool(key string, dst *bool) {
	if l.err != nil || !l.v.IsSet(key) {
		return
	}
	val, err := cast.ToBoolE(l.v.Get(key))
	if err != nil {
		l.fail(key, err)
		return
	}
	*dst = val
}

func (l *paramLoader) setInt(key string, dst *math.Int) {
	if l.err != nil || !l.v.IsSet(key) {
		return
	}
	raw, err := cast.ToStringE(l.v.Get(key))
	if err != nil {
		l.fail(key, err)
		return
	}
	val, ok := math.NewIntFromString(strings.TrimSpace(raw))
	if !ok {
		l.fail(key, errorsmod.Wrapf(ErrInvalidParams, "not an integer: %q", raw))
		return
	}
	*dst = val
}

func (l *paramLoader) setDec(key string, dst *math.LegacyDec) {
	if l.err != nil || !l.v.IsSet(key) {
		return
	}
	raw, err := cast.ToStringE(l.v.Get(key))
	if err != nil {
		l.fail(key, err)
		return
	}
	val, err := math.LegacyNewDecFromStr(strings.TrimSpace(raw))
	if err != nil {
		l.fail(key, err)
		return
	}
	*dst = val
}
