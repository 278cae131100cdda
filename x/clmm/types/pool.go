package types

import (
	"fmt"
	"strings"

	"cosmossdk.io/math"
)

// Supported tick spacings and their LP fee rates in ppm.
var FeeTiers = map[uint32]uint32{
	1:   100,   // 0.01%
	10:  500,   // 0.05%
	60:  3000,  // 0.30%
	200: 10000, // 1.00%
}

// PoolConfig is the creation-time configuration of a pool.
type PoolConfig struct {
	DenomA      string `json:"denom_a"`
	DenomB      string `json:"denom_b"`
	TickSpacing uint32 `json:"tick_spacing"`
	FeeRatePpm  uint32 `json:"fee_rate_ppm"`
}

// Validate checks the pool pair and fee tier.
func (c PoolConfig) Validate() error {
	if strings.TrimSpace(c.DenomA) == "" || strings.TrimSpace(c.DenomB) == "" {
		return ErrInvalidPoolConfig.Wrap("denoms cannot be empty")
	}
	if c.DenomA == c.DenomB {
		return ErrInvalidPoolConfig.Wrapf("identical denoms %s", c.DenomA)
	}
	if c.DenomA > c.DenomB {
		return ErrInvalidPoolConfig.Wrapf("denoms must be sorted: %s > %s", c.DenomA, c.DenomB)
	}
	if c.TickSpacing == 0 || c.TickSpacing > 16384 {
		return ErrInvalidPoolConfig.Wrapf("tick spacing %d out of range", c.TickSpacing)
	}
	if c.FeeRatePpm >= FeeRateDenominator {
		return ErrInvalidPoolConfig.Wrapf("fee rate %d ppm must be below %d", c.FeeRatePpm, FeeRateDenominator)
	}
	return nil
}

// PoolState is the persisted state of one concentrated-liquidity pool.
type PoolState struct {
	Id               uint64          `json:"id"`
	DenomA           string          `json:"denom_a"`
	DenomB           string          `json:"denom_b"`
	TickSpacing      uint32          `json:"tick_spacing"`
	FeeRatePpm       uint32          `json:"fee_rate_ppm"`
	TickCurrent      int32           `json:"tick_current"`
	SqrtPriceX64     math.Int        `json:"sqrt_price_x64"`
	Liquidity        math.Int        `json:"liquidity"`
	FeeGrowthGlobalA math.Int        `json:"fee_growth_global_a"`
	FeeGrowthGlobalB math.Int        `json:"fee_growth_global_b"`
	ProtocolFeesA    math.Int        `json:"protocol_fees_a"`
	ProtocolFeesB    math.Int        `json:"protocol_fees_b"`
	Bitmap           TickArrayBitmap `json:"bitmap"`
	NextPositionId   uint64          `json:"next_position_id"`
	Paused           bool            `json:"paused"`
}

// NewPoolState initializes a pool at the given square-root price.
func NewPoolState(id uint64, cfg PoolConfig, sqrtPriceX64 math.Int) (PoolState, error) {
	tick, err := TickAtSqrtPrice(sqrtPriceX64)
	if err != nil {
		return PoolState{}, err
	}
	return PoolState{
		Id:               id,
		DenomA:           cfg.DenomA,
		DenomB:           cfg.DenomB,
		TickSpacing:      cfg.TickSpacing,
		FeeRatePpm:       cfg.FeeRatePpm,
		TickCurrent:      tick,
		SqrtPriceX64:     sqrtPriceX64,
		Liquidity:        math.ZeroInt(),
		FeeGrowthGlobalA: math.ZeroInt(),
		FeeGrowthGlobalB: math.ZeroInt(),
		ProtocolFeesA:    math.ZeroInt(),
		ProtocolFeesB:    math.ZeroInt(),
		NextPositionId:   1,
	}, nil
}

// Validate performs stateless checks on a pool record.
func (p PoolState) Validate() error {
	cfg := PoolConfig{DenomA: p.DenomA, DenomB: p.DenomB, TickSpacing: p.TickSpacing, FeeRatePpm: p.FeeRatePpm}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := ValidateTick(p.TickCurrent); err != nil {
		return err
	}
	if p.SqrtPriceX64.IsNil() || p.SqrtPriceX64.LT(MinSqrtPriceX64) || p.SqrtPriceX64.GT(MaxSqrtPriceX64) {
		return ErrInvalidPoolConfig.Wrapf("sqrt price %v out of range", p.SqrtPriceX64)
	}
	if p.Liquidity.IsNil() || p.Liquidity.IsNegative() || p.Liquidity.GT(MaxU128) {
		return ErrInvalidPoolConfig.Wrapf("liquidity %v out of range", p.Liquidity)
	}
	return nil
}

// String implements fmt.Stringer for log lines.
func (p PoolState) String() string {
	return fmt.Sprintf("pool %d %s/%s tick=%d liquidity=%s", p.Id, p.DenomA, p.DenomB, p.TickCurrent, p.Liquidity)
}
