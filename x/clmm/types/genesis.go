package types

import (
	"cosmossdk.io/math"
)

// GenesisState holds every persisted record of the module.
type GenesisState struct {
	Params     Params            `json:"params"`
	NextPoolId uint64            `json:"next_pool_id"`
	Pools      []PoolState       `json:"pools"`
	TickArrays []TickArray       `json:"tick_arrays"`
	Positions  []Position        `json:"positions"`
	Oracles    []ObservationRing `json:"oracles"`
	JitStates  []JitState        `json:"jit_states"`
}

// DefaultGenesis returns the default genesis state for the clmm module.
func DefaultGenesis() *GenesisState {
	return &GenesisState{
		Params:     DefaultParams(),
		NextPoolId: 1,
		Pools:      []PoolState{},
		TickArrays: []TickArray{},
		Positions:  []Position{},
		Oracles:    []ObservationRing{},
		JitStates:  []JitState{},
	}
}

// Validate ensures the genesis state is well-formed.
func (gs GenesisState) Validate() error {
	if err := gs.Params.Validate(); err != nil {
		return err
	}

	pools := make(map[uint64]PoolState, len(gs.Pools))
	for _, p := range gs.Pools {
		if p.Id == 0 || p.Id >= gs.NextPoolId {
			return ErrInvalidGenesis.Wrapf("pool id %d outside [1, %d)", p.Id, gs.NextPoolId)
		}
		if _, dup := pools[p.Id]; dup {
			return ErrInvalidGenesis.Wrapf("duplicate pool %d", p.Id)
		}
		if err := p.Validate(); err != nil {
			return ErrInvalidGenesis.Wrapf("pool %d: %s", p.Id, err)
		}
		pools[p.Id] = p
	}

	netSums := make(map[uint64]math.Int, len(pools))
	seenArrays := make(map[uint64]map[int32]bool, len(pools))
	for _, ta := range gs.TickArrays {
		p, ok := pools[ta.PoolId]
		if !ok {
			return ErrInvalidGenesis.Wrapf("tick array %d references unknown pool %d", ta.StartTickIndex, ta.PoolId)
		}
		if err := ValidateArrayStartIndex(ta.StartTickIndex, p.TickSpacing); err != nil {
			return ErrInvalidGenesis.Wrapf("pool %d: %s", p.Id, err)
		}
		if ta.CountInitialized() != ta.InitializedCount || ta.InitializedCount == 0 {
			return ErrInvalidGenesis.Wrapf("pool %d tick array %d has bad initialized count", p.Id, ta.StartTickIndex)
		}
		if !p.Bitmap.IsSet(ArrayBit(ta.StartTickIndex, p.TickSpacing)) {
			return ErrInvalidGenesis.Wrapf("pool %d tick array %d missing from bitmap", p.Id, ta.StartTickIndex)
		}
		if seenArrays[p.Id] == nil {
			seenArrays[p.Id] = map[int32]bool{}
		}
		if seenArrays[p.Id][ta.StartTickIndex] {
			return ErrInvalidGenesis.Wrapf("pool %d duplicate tick array %d", p.Id, ta.StartTickIndex)
		}
		seenArrays[p.Id][ta.StartTickIndex] = true
		sum, ok := netSums[p.Id]
		if !ok {
			sum = math.ZeroInt()
		}
		netSums[p.Id] = sum.Add(ta.SumLiquidityNet())
	}
	for id, p := range pools {
		if p.Bitmap.Count() != len(seenArrays[id]) {
			return ErrInvalidGenesis.Wrapf("pool %d bitmap has %d bits for %d arrays", id, p.Bitmap.Count(), len(seenArrays[id]))
		}
		if sum, ok := netSums[id]; ok && !sum.IsZero() {
			return ErrInvalidGenesis.Wrapf("pool %d liquidity net sums to %s", id, sum)
		}
	}

	for _, pos := range gs.Positions {
		p, ok := pools[pos.PoolId]
		if !ok {
			return ErrInvalidGenesis.Wrapf("position %d references unknown pool %d", pos.Id, pos.PoolId)
		}
		if pos.Id == 0 || pos.Id >= p.NextPositionId {
			return ErrInvalidGenesis.Wrapf("position id %d outside [1, %d)", pos.Id, p.NextPositionId)
		}
		if err := ValidateTickRange(pos.TickLower, pos.TickUpper, p.TickSpacing); err != nil {
			return ErrInvalidGenesis.Wrapf("position %d: %s", pos.Id, err)
		}
	}

	oracles := make(map[uint64]bool, len(gs.Oracles))
	for _, o := range gs.Oracles {
		if _, ok := pools[o.PoolId]; !ok || oracles[o.PoolId] {
			return ErrInvalidGenesis.Wrapf("oracle for pool %d is unknown or duplicated", o.PoolId)
		}
		if o.Capacity() < 2 || o.Cardinality == 0 || o.Cardinality > o.Capacity() || o.Index >= o.Capacity() {
			return ErrInvalidGenesis.Wrapf("oracle for pool %d has inconsistent ring", o.PoolId)
		}
		oracles[o.PoolId] = true
	}
	jits := make(map[uint64]bool, len(gs.JitStates))
	for _, j := range gs.JitStates {
		if _, ok := pools[j.PoolId]; !ok || jits[j.PoolId] {
			return ErrInvalidGenesis.Wrapf("jit state for pool %d is unknown or duplicated", j.PoolId)
		}
		jits[j.PoolId] = true
	}
	for id := range pools {
		if !oracles[id] || !jits[id] {
			return ErrInvalidGenesis.Wrapf("pool %d missing oracle or jit state", id)
		}
	}
	return nil
}
