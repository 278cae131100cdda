package keeper

import (
	"context"
	"encoding/json"
	"fmt"

	storetypes "cosmossdk.io/store/types"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

func getJSON(store storetypes.KVStore, key []byte, v interface{}) (bool, error) {
	bz := store.Get(key)
	if bz == nil {
		return false, nil
	}
	if err := json.Unmarshal(bz, v); err != nil {
		return false, fmt.Errorf("failed to unmarshal %x: %w", key, err)
	}
	return true, nil
}

func setJSON(store storetypes.KVStore, key []byte, v interface{}) error {
	bz, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %x: %w", key, err)
	}
	store.Set(key, bz)
	return nil
}

// GetNextPoolID returns the id the next created pool receives.
func (k Keeper) GetNextPoolID(ctx context.Context) uint64 {
	bz := k.getStore(ctx).Get(types.PoolCountKey)
	if bz == nil {
		return 1
	}
	return sdk.BigEndianToUint64(bz)
}

func (k Keeper) setNextPoolID(ctx context.Context, id uint64) {
	k.getStore(ctx).Set(types.PoolCountKey, sdk.Uint64ToBigEndian(id))
}

// GetPool returns a pool by id.
func (k Keeper) GetPool(ctx context.Context, poolID uint64) (types.PoolState, bool) {
	pool, err := k.loadPool(ctx, poolID)
	if err != nil {
		return types.PoolState{}, false
	}
	return pool, true
}

func (k Keeper) loadPool(ctx context.Context, poolID uint64) (types.PoolState, error) {
	var pool types.PoolState
	found, err := getJSON(k.getStore(ctx), types.GetPoolKey(poolID), &pool)
	if err != nil {
		return types.PoolState{}, err
	}
	if !found {
		return types.PoolState{}, types.ErrPoolNotFound.Wrapf("pool %d", poolID)
	}
	return pool, nil
}

func (k Keeper) setPool(ctx context.Context, pool types.PoolState) error {
	return setJSON(k.getStore(ctx), types.GetPoolKey(pool.Id), &pool)
}

// IteratePools calls cb for every pool in id order until cb returns true.
func (k Keeper) IteratePools(ctx context.Context, cb func(types.PoolState) (stop bool)) error {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.PoolKeyPrefix)
	defer iter.Close()
	for ; iter.Valid(); iter.Next() {
		var pool types.PoolState
		if err := json.Unmarshal(iter.Value(), &pool); err != nil {
			return fmt.Errorf("failed to unmarshal pool: %w", err)
		}
		if cb(pool) {
			break
		}
	}
	return nil
}

// GetTickArray returns the tick array of a pool starting at startIndex.
func (k Keeper) GetTickArray(ctx context.Context, poolID uint64, startIndex int32) (types.TickArray, bool, error) {
	var ta types.TickArray
	found, err := getJSON(k.getStore(ctx), types.GetTickArrayKey(poolID, startIndex), &ta)
	return ta, found, err
}

func (k Keeper) setTickArray(ctx context.Context, ta types.TickArray) error {
	return setJSON(k.getStore(ctx), types.GetTickArrayKey(ta.PoolId, ta.StartTickIndex), &ta)
}

// IterateTickArrays calls cb for every tick array of a pool in tick order.
func (k Keeper) IterateTickArrays(ctx context.Context, poolID uint64, cb func(types.TickArray) (stop bool)) error {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.GetTickArrayPrefix(poolID))
	defer iter.Close()
	for ; iter.Valid(); iter.Next() {
		var ta types.TickArray
		if err := json.Unmarshal(iter.Value(), &ta); err != nil {
			return fmt.Errorf("failed to unmarshal tick array: %w", err)
		}
		if cb(ta) {
			break
		}
	}
	return nil
}

// GetPosition returns a position by pool and id.
func (k Keeper) GetPosition(ctx context.Context, poolID, positionID uint64) (types.Position, error) {
	var pos types.Position
	found, err := getJSON(k.getStore(ctx), types.GetPositionKey(poolID, positionID), &pos)
	if err != nil {
		return types.Position{}, err
	}
	if !found {
		return types.Position{}, types.ErrPositionNotFound.Wrapf("pool %d position %d", poolID, positionID)
	}
	return pos, nil
}

func (k Keeper) setPosition(ctx context.Context, pos types.Position) error {
	return setJSON(k.getStore(ctx), types.GetPositionKey(pos.PoolId, pos.Id), &pos)
}

func (k Keeper) deletePosition(ctx context.Context, poolID, positionID uint64) {
	k.getStore(ctx).Delete(types.GetPositionKey(poolID, positionID))
}

// IteratePositions calls cb for every position of a pool in id order.
func (k Keeper) IteratePositions(ctx context.Context, poolID uint64, cb func(types.Position) (stop bool)) error {
	iter := storetypes.KVStorePrefixIterator(k.getStore(ctx), types.GetPositionPrefix(poolID))
	defer iter.Close()
	for ; iter.Valid(); iter.Next() {
		var pos types.Position
		if err := json.Unmarshal(iter.Value(), &pos); err != nil {
			return fmt.Errorf("failed to unmarshal position: %w", err)
		}
		if cb(pos) {
			break
		}
	}
	return nil
}

// GetObservationRing returns the oracle ring buffer of a pool.
func (k Keeper) GetObservationRing(ctx context.Context, poolID uint64) (types.ObservationRing, error) {
	var ring types.ObservationRing
	found, err := getJSON(k.getStore(ctx), types.GetObservationKey(poolID), &ring)
	if err != nil {
		return types.ObservationRing{}, err
	}
	if !found {
		return types.ObservationRing{}, types.ErrPoolNotFound.Wrapf("no oracle for pool %d", poolID)
	}
	return ring, nil
}

func (k Keeper) setObservationRing(ctx context.Context, ring types.ObservationRing) error {
	return setJSON(k.getStore(ctx), types.GetObservationKey(ring.PoolId), &ring)
}

// GetJitState returns the JIT controller state of a pool.
func (k Keeper) GetJitState(ctx context.Context, poolID uint64) (types.JitState, error) {
	var st types.JitState
	found, err := getJSON(k.getStore(ctx), types.GetJitStateKey(poolID), &st)
	if err != nil {
		return types.JitState{}, err
	}
	if !found {
		return types.JitState{}, types.ErrPoolNotFound.Wrapf("no jit state for pool %d", poolID)
	}
	return st, nil
}

func (k Keeper) setJitState(ctx context.Context, st types.JitState) error {
	return setJSON(k.getStore(ctx), types.GetJitStateKey(st.PoolId), &st)
}
