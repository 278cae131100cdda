package keeper

import (
	"cosmossdk.io/math"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// overlayResult is the dynamic fee charged on one trade's output.
type overlayResult struct {
	FeeBps    uint32
	Shares    types.FeeShares
	AmountOut math.Int
}

// applyOverlayFee prices the trade from its realized displacement, enforces
// the caller's cap and distributes the fee charged on the output token.
func (pc *poolContext) applyOverlayFee(res swapResult, zeroForOne bool, maxFeeBps uint32) (overlayResult, error) {
	feeBps := types.FeeAfterSwap(res.StartTick, res.EndTick, pc.params.Fee)
	if err := types.CheckFeeCap(feeBps, maxFeeBps); err != nil {
		return overlayResult{}, err
	}

	shares, err := types.SplitFee(res.AmountOut, feeBps, pc.params.Fee.Split)
	if err != nil {
		return overlayResult{}, err
	}

	// the output token is B for zero-for-one trades
	lpToProtocol := math.ZeroInt()
	if shares.Lp.IsPositive() {
		if pc.pool.Liquidity.IsPositive() {
			growth, err := types.FeeGrowthDelta(shares.Lp, pc.pool.Liquidity)
			if err != nil {
				return overlayResult{}, err
			}
			if zeroForOne {
				pc.pool.FeeGrowthGlobalB, err = types.SafeAdd(pc.pool.FeeGrowthGlobalB, growth)
			} else {
				pc.pool.FeeGrowthGlobalA, err = types.SafeAdd(pc.pool.FeeGrowthGlobalA, growth)
			}
			if err != nil {
				return overlayResult{}, err
			}
		} else {
			lpToProtocol = shares.Lp
		}
	}
	protocol := shares.Protocol.Add(lpToProtocol)

	if zeroForOne {
		if pc.jit.BufferB, err = types.AddU128(pc.jit.BufferB, shares.Buffer); err != nil {
			return overlayResult{}, err
		}
		if pc.pool.ProtocolFeesB, err = types.AddU128(pc.pool.ProtocolFeesB, protocol); err != nil {
			return overlayResult{}, err
		}
	} else {
		if pc.jit.BufferA, err = types.AddU128(pc.jit.BufferA, shares.Buffer); err != nil {
			return overlayResult{}, err
		}
		if pc.pool.ProtocolFeesA, err = types.AddU128(pc.pool.ProtocolFeesA, protocol); err != nil {
			return overlayResult{}, err
		}
	}

	return overlayResult{
		FeeBps:    feeBps,
		Shares:    shares,
		AmountOut: res.AmountOut.Sub(shares.Total),
	}, nil
}
