package types

import (
	"cosmossdk.io/math"
)

// Position is liquidity over [TickLower, TickUpper) with fee checkpoints.
type Position struct {
	PoolId               uint64   `json:"pool_id"`
	Id                   uint64   `json:"id"`
	Owner                string   `json:"owner"`
	TickLower            int32    `json:"tick_lower"`
	TickUpper            int32    `json:"tick_upper"`
	Liquidity            math.Int `json:"liquidity"`
	FeeGrowthInsideLastA math.Int `json:"fee_growth_inside_last_a"`
	FeeGrowthInsideLastB math.Int `json:"fee_growth_inside_last_b"`
	TokensOwedA          math.Int `json:"tokens_owed_a"`
	TokensOwedB          math.Int `json:"tokens_owed_b"`
}

// Accrue moves fees earned since the last checkpoint into TokensOwed and
// advances the checkpoints.
func (p *Position) Accrue(insideA, insideB math.Int) error {
	owedA, err := FeesOwed(p.Liquidity, insideA, p.FeeGrowthInsideLastA)
	if err != nil {
		return err
	}
	owedB, err := FeesOwed(p.Liquidity, insideB, p.FeeGrowthInsideLastB)
	if err != nil {
		return err
	}
	if p.TokensOwedA, err = AddU128(p.TokensOwedA, owedA); err != nil {
		return err
	}
	if p.TokensOwedB, err = AddU128(p.TokensOwedB, owedB); err != nil {
		return err
	}
	p.FeeGrowthInsideLastA = insideA
	p.FeeGrowthInsideLastB = insideB
	return nil
}
