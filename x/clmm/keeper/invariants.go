package keeper

import (
	"fmt"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// RegisterInvariants registers all clmm invariants
func RegisterInvariants(ir sdk.InvariantRegistry, k Keeper) {
	ir.RegisterRoute(types.ModuleName, "liquidity-net-conservation", LiquidityNetConservationInvariant(k))
	ir.RegisterRoute(types.ModuleName, "tick-bitmap-consistency", TickBitmapConsistencyInvariant(k))
	ir.RegisterRoute(types.ModuleName, "active-liquidity", ActiveLiquidityInvariant(k))
}

// AllInvariants runs all invariants of the clmm module
func AllInvariants(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		res, stop := LiquidityNetConservationInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		res, stop = TickBitmapConsistencyInvariant(k)(ctx)
		if stop {
			return res, stop
		}

		return ActiveLiquidityInvariant(k)(ctx)
	}
}

func (k Keeper) allPools(ctx sdk.Context) ([]types.PoolState, error) {
	var pools []types.PoolState
	err := k.IteratePools(ctx, func(pool types.PoolState) bool {
		pools = append(pools, pool)
		return false
	})
	return pools, err
}

// LiquidityNetConservationInvariant checks that liquidity_net sums to zero
// over every tick of every pool.
func LiquidityNetConservationInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.allPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "liquidity-net-conservation", err.Error()), true
		}
		for _, pool := range pools {
			sum := math.ZeroInt()
			if err := k.IterateTickArrays(ctx, pool.Id, func(ta types.TickArray) bool {
				sum = sum.Add(ta.SumLiquidityNet())
				return false
			}); err != nil {
				count++
				msg += fmt.Sprintf("pool %d: %s\n", pool.Id, err)
				continue
			}
			if !sum.IsZero() {
				count++
				msg += fmt.Sprintf("pool %d: liquidity_net sums to %s\n", pool.Id, sum)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "liquidity-net-conservation",
			fmt.Sprintf("found %d pools with non-zero liquidity_net\n%s", count, msg),
		), broken
	}
}

// TickBitmapConsistencyInvariant checks that a bitmap bit is set exactly for
// the stored tick arrays and that each stored array has initialized ticks.
func TickBitmapConsistencyInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.allPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "tick-bitmap-consistency", err.Error()), true
		}
		for _, pool := range pools {
			arrays := 0
			if err := k.IterateTickArrays(ctx, pool.Id, func(ta types.TickArray) bool {
				arrays++
				if ta.CountInitialized() != ta.InitializedCount || ta.InitializedCount == 0 {
					count++
					msg += fmt.Sprintf("pool %d: array %d records %d initialized ticks, has %d\n",
						pool.Id, ta.StartTickIndex, ta.InitializedCount, ta.CountInitialized())
				}
				if !pool.Bitmap.IsSet(types.ArrayBit(ta.StartTickIndex, pool.TickSpacing)) {
					count++
					msg += fmt.Sprintf("pool %d: array %d missing from bitmap\n", pool.Id, ta.StartTickIndex)
				}
				return false
			}); err != nil {
				count++
				msg += fmt.Sprintf("pool %d: %s\n", pool.Id, err)
				continue
			}
			if bits := pool.Bitmap.Count(); bits != arrays {
				count++
				msg += fmt.Sprintf("pool %d: bitmap has %d bits for %d arrays\n", pool.Id, bits, arrays)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "tick-bitmap-consistency",
			fmt.Sprintf("found %d bitmap inconsistencies\n%s", count, msg),
		), broken
	}
}

// ActiveLiquidityInvariant checks that each pool's active liquidity equals
// the liquidity_net of its initialized ticks at or below the current tick.
func ActiveLiquidityInvariant(k Keeper) sdk.Invariant {
	return func(ctx sdk.Context) (string, bool) {
		var (
			msg   string
			count int
		)

		pools, err := k.allPools(ctx)
		if err != nil {
			return sdk.FormatInvariant(types.ModuleName, "active-liquidity", err.Error()), true
		}
		for _, pool := range pools {
			active := math.ZeroInt()
			if err := k.IterateTickArrays(ctx, pool.Id, func(ta types.TickArray) bool {
				for i, t := range ta.Ticks {
					if t.Initialized && ta.TickIndexAt(i, pool.TickSpacing) <= pool.TickCurrent {
						active = active.Add(t.LiquidityNet)
					}
				}
				return false
			}); err != nil {
				count++
				msg += fmt.Sprintf("pool %d: %s\n", pool.Id, err)
				continue
			}
			if !active.Equal(pool.Liquidity) {
				count++
				msg += fmt.Sprintf("pool %d: active liquidity %s, ticks imply %s\n", pool.Id, pool.Liquidity, active)
			}
		}

		broken := count != 0
		return sdk.FormatInvariant(
			types.ModuleName, "active-liquidity",
			fmt.Sprintf("found %d pools with inconsistent active liquidity\n%s", count, msg),
		), broken
	}
}
