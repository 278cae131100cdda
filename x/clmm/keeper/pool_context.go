package keeper

import (
	"encoding/json"
	"fmt"
	"sort"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// arrayEntry is one arena slot: a working copy of a tick array plus what is
// needed to decide, at commit, whether it is written, deleted or dropped.
type arrayEntry struct {
	array     types.TickArray
	stored    bool
	dirty     bool
	netAtLoad math.Int
}

type positionEntry struct {
	position types.Position
	deleted  bool
}

// poolContext is the working set of one operation on one pool. Everything an
// operation mutates lives here until commit; dropping the value discards the
// operation.
type poolContext struct {
	k      Keeper
	ctx    sdk.Context
	params types.Params
	now    int64

	pool   types.PoolState
	oracle types.ObservationRing
	jit    types.JitState

	// arena of tick arrays addressed by slot, never by pointer identity
	arrays []arrayEntry
	slots  map[int32]int

	positions map[uint64]*positionEntry

	observed bool
}

type storeWrite struct {
	key    []byte
	value  []byte
	delete bool
}

// loadPoolContext reads the pool, its oracle and its JIT state into a fresh
// working set. Tick arrays and positions are loaded lazily.
func (k Keeper) loadPoolContext(ctx sdk.Context, poolID uint64) (*poolContext, error) {
	params, err := k.GetParams(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := k.loadPool(ctx, poolID)
	if err != nil {
		return nil, err
	}
	oracle, err := k.GetObservationRing(ctx, poolID)
	if err != nil {
		return nil, err
	}
	jit, err := k.GetJitState(ctx, poolID)
	if err != nil {
		return nil, err
	}
	return &poolContext{
		k:         k,
		ctx:       ctx,
		params:    params,
		now:       clock(ctx),
		pool:      pool,
		oracle:    oracle,
		jit:       jit,
		slots:     make(map[int32]int),
		positions: make(map[uint64]*positionEntry),
	}, nil
}

// entry returns the arena slot for start, loading it from the store on first
// use. A nil entry means the array does not exist. The pointer stays valid
// only until the next array enters the arena.
func (pc *poolContext) entry(start int32) (*arrayEntry, error) {
	if slot, ok := pc.slots[start]; ok {
		return &pc.arrays[slot], nil
	}
	ta, found, err := pc.k.GetTickArray(pc.ctx, pc.pool.Id, start)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return pc.addEntry(arrayEntry{array: ta, stored: true, netAtLoad: ta.SumLiquidityNet()}), nil
}

func (pc *poolContext) addEntry(e arrayEntry) *arrayEntry {
	pc.slots[e.array.StartTickIndex] = len(pc.arrays)
	pc.arrays = append(pc.arrays, e)
	return &pc.arrays[len(pc.arrays)-1]
}

// getOrCreateArray returns a mutable tick array, creating it in the arena
// when it does not exist yet.
func (pc *poolContext) getOrCreateArray(start int32) (*arrayEntry, error) {
	if err := types.ValidateArrayStartIndex(start, pc.pool.TickSpacing); err != nil {
		return nil, err
	}
	e, err := pc.entry(start)
	if err != nil {
		return nil, err
	}
	if e == nil {
		e = pc.addEntry(arrayEntry{
			array:     types.NewTickArray(pc.pool.Id, start),
			netAtLoad: math.ZeroInt(),
		})
	}
	e.dirty = true
	return e, nil
}

// tickAt returns the tick at index, or an uninitialized tick if its array
// does not exist.
func (pc *poolContext) tickAt(tick int32) (types.Tick, error) {
	if err := types.ValidatePositionTick(tick, pc.pool.TickSpacing); err != nil {
		return types.Tick{}, err
	}
	e, err := pc.entry(types.ArrayStartIndex(tick, pc.pool.TickSpacing))
	if err != nil {
		return types.Tick{}, err
	}
	if e == nil {
		return types.NewTick(), nil
	}
	offset, err := e.array.Offset(tick, pc.pool.TickSpacing)
	if err != nil {
		return types.Tick{}, err
	}
	return e.array.Ticks[offset], nil
}

// mutableTick returns a pointer into the arena for tick, creating its array
// if needed.
func (pc *poolContext) mutableTick(tick int32) (*types.Tick, *arrayEntry, error) {
	if err := types.ValidatePositionTick(tick, pc.pool.TickSpacing); err != nil {
		return nil, nil, err
	}
	e, err := pc.getOrCreateArray(types.ArrayStartIndex(tick, pc.pool.TickSpacing))
	if err != nil {
		return nil, nil, err
	}
	offset, err := e.array.Offset(tick, pc.pool.TickSpacing)
	if err != nil {
		return nil, nil, err
	}
	return &e.array.Ticks[offset], e, nil
}

func (pc *poolContext) position(id uint64) (*types.Position, error) {
	if pe, ok := pc.positions[id]; ok {
		if pe.deleted {
			return nil, types.ErrPositionNotFound.Wrapf("pool %d position %d", pc.pool.Id, id)
		}
		return &pe.position, nil
	}
	pos, err := pc.k.GetPosition(pc.ctx, pc.pool.Id, id)
	if err != nil {
		return nil, err
	}
	pe := &positionEntry{position: pos}
	pc.positions[id] = pe
	return &pe.position, nil
}

func (pc *poolContext) putPosition(pos types.Position) *types.Position {
	pe := &positionEntry{position: pos}
	pc.positions[pos.Id] = pe
	return &pe.position
}

func (pc *poolContext) deletePosition(id uint64) {
	pc.positions[id] = &positionEntry{deleted: true}
}

// verify checks the touched tick arrays against the bitmap and checks that
// the sum of liquidity_net over them is unchanged, which together with the
// untouched arrays keeps the pool-wide sum at zero.
func (pc *poolContext) verify() error {
	netDelta := math.ZeroInt()
	for i := range pc.arrays {
		e := &pc.arrays[i]
		if !e.dirty {
			continue
		}
		count := e.array.CountInitialized()
		if count != e.array.InitializedCount {
			return types.ErrBitmapInconsistent.Wrapf("array %d counts %d initialized ticks, records %d",
				e.array.StartTickIndex, count, e.array.InitializedCount)
		}
		bit := types.ArrayBit(e.array.StartTickIndex, pc.pool.TickSpacing)
		if pc.pool.Bitmap.IsSet(bit) != (count > 0) {
			return types.ErrBitmapInconsistent.Wrapf("array %d has %d initialized ticks but bit is %t",
				e.array.StartTickIndex, count, pc.pool.Bitmap.IsSet(bit))
		}
		netDelta = netDelta.Add(e.array.SumLiquidityNet()).Sub(e.netAtLoad)
	}
	if !netDelta.IsZero() {
		return types.ErrLiquidityNetNonZero.Wrapf("pool %d liquidity_net drifted by %s", pc.pool.Id, netDelta)
	}
	return nil
}

// commit verifies the working set, encodes every record and only then writes
// them. Nothing reaches the store unless every record encoded.
func (pc *poolContext) commit() error {
	if err := pc.verify(); err != nil {
		return err
	}

	var (
		writes []storeWrite
		events sdk.Events
	)
	encode := func(key []byte, v interface{}) error {
		bz, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal %x: %w", key, err)
		}
		writes = append(writes, storeWrite{key: key, value: bz})
		return nil
	}

	poolLabel := fmt.Sprintf("%d", pc.pool.Id)
	var created, emptied int
	for i := range pc.arrays {
		e := &pc.arrays[i]
		if !e.dirty {
			continue
		}
		key := types.GetTickArrayKey(pc.pool.Id, e.array.StartTickIndex)
		switch {
		case e.array.InitializedCount == 0 && e.stored:
			writes = append(writes, storeWrite{key: key, delete: true})
			events = append(events, tickArrayEvent(types.EventTypeTickArrayEmptied, e.array))
			emptied++
		case e.array.InitializedCount == 0:
			// created and emptied inside this operation
		default:
			if err := encode(key, &e.array); err != nil {
				return err
			}
			if !e.stored {
				events = append(events, tickArrayEvent(types.EventTypeTickArrayCreated, e.array))
				created++
			}
		}
	}

	ids := make([]uint64, 0, len(pc.positions))
	for id := range pc.positions {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		pe := pc.positions[id]
		key := types.GetPositionKey(pc.pool.Id, id)
		if pe.deleted {
			writes = append(writes, storeWrite{key: key, delete: true})
			continue
		}
		if err := encode(key, &pe.position); err != nil {
			return err
		}
	}

	if err := encode(types.GetPoolKey(pc.pool.Id), &pc.pool); err != nil {
		return err
	}
	if err := encode(types.GetObservationKey(pc.pool.Id), &pc.oracle); err != nil {
		return err
	}
	if err := encode(types.GetJitStateKey(pc.pool.Id), &pc.jit); err != nil {
		return err
	}

	store := pc.k.getStore(pc.ctx)
	for _, w := range writes {
		if w.delete {
			store.Delete(w.key)
		} else {
			store.Set(w.key, w.value)
		}
	}

	pc.ctx.EventManager().EmitEvents(events)
	if created > 0 {
		pc.k.metrics.TickArrayEvents.WithLabelValues(poolLabel, "created").Add(float64(created))
	}
	if emptied > 0 {
		pc.k.metrics.TickArrayEvents.WithLabelValues(poolLabel, "emptied").Add(float64(emptied))
	}
	pc.k.metrics.TickArraysActive.WithLabelValues(poolLabel).Set(float64(pc.pool.Bitmap.Count()))
	if pc.observed {
		pc.k.metrics.OracleWrites.Inc()
	}
	return nil
}

func tickArrayEvent(eventType string, ta types.TickArray) sdk.Event {
	return sdk.NewEvent(
		eventType,
		sdk.NewAttribute(types.AttributeKeyPoolID, fmt.Sprintf("%d", ta.PoolId)),
		sdk.NewAttribute(types.AttributeKeyStartTickIndex, fmt.Sprintf("%d", ta.StartTickIndex)),
	)
}
