package keeper

import (
	"context"
	"fmt"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// InitGenesis initializes the clmm module's state from a genesis state
func (k Keeper) InitGenesis(ctx context.Context, genState types.GenesisState) error {
	if err := genState.Validate(); err != nil {
		return err
	}

	// Set parameters
	if err := k.SetParams(ctx, genState.Params); err != nil {
		return fmt.Errorf("failed to set params: %w", err)
	}

	// Set next pool ID counter
	nextPoolID := genState.NextPoolId
	if nextPoolID == 0 {
		nextPoolID = 1
	}
	k.setNextPoolID(ctx, nextPoolID)

	for _, pool := range genState.Pools {
		if err := k.setPool(ctx, pool); err != nil {
			return fmt.Errorf("failed to set pool %d: %w", pool.Id, err)
		}
	}
	for _, ta := range genState.TickArrays {
		if err := k.setTickArray(ctx, ta); err != nil {
			return fmt.Errorf("failed to set tick array %d of pool %d: %w", ta.StartTickIndex, ta.PoolId, err)
		}
	}
	for _, pos := range genState.Positions {
		if err := k.setPosition(ctx, pos); err != nil {
			return fmt.Errorf("failed to set position %d of pool %d: %w", pos.Id, pos.PoolId, err)
		}
	}
	for _, ring := range genState.Oracles {
		if err := k.setObservationRing(ctx, ring); err != nil {
			return fmt.Errorf("failed to set oracle of pool %d: %w", ring.PoolId, err)
		}
	}
	for _, st := range genState.JitStates {
		if err := k.setJitState(ctx, st); err != nil {
			return fmt.Errorf("failed to set jit state of pool %d: %w", st.PoolId, err)
		}
	}
	return nil
}

// ExportGenesis returns the clmm module's exported genesis.
func (k Keeper) ExportGenesis(ctx context.Context) (*types.GenesisState, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get params: %w", err)
	}

	genesis := types.DefaultGenesis()
	genesis.Params = params
	genesis.NextPoolId = k.GetNextPoolID(ctx)

	if err := k.IteratePools(ctx, func(pool types.PoolState) bool {
		genesis.Pools = append(genesis.Pools, pool)
		return false
	}); err != nil {
		return nil, err
	}

	for _, pool := range genesis.Pools {
		if err := k.IterateTickArrays(ctx, pool.Id, func(ta types.TickArray) bool {
			genesis.TickArrays = append(genesis.TickArrays, ta)
			return false
		}); err != nil {
			return nil, err
		}
		if err := k.IteratePositions(ctx, pool.Id, func(pos types.Position) bool {
			genesis.Positions = append(genesis.Positions, pos)
			return false
		}); err != nil {
			return nil, err
		}
		ring, err := k.GetObservationRing(ctx, pool.Id)
		if err != nil {
			return nil, err
		}
		genesis.Oracles = append(genesis.Oracles, ring)
		st, err := k.GetJitState(ctx, pool.Id)
		if err != nil {
			return nil, err
		}
		genesis.JitStates = append(genesis.JitStates, st)
	}
	return genesis, nil
}
