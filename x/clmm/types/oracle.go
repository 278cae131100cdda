package types

import (
	"sort"

	"cosmossdk.io/math"
)

// Observation is one ring-buffer sample of the cumulative tick.
type Observation struct {
	Timestamp      int64 `json:"timestamp"`
	TickCumulative int64 `json:"tick_cumulative"`
	Initialized    bool  `json:"initialized"`
}

// ObservationRing is a fixed-capacity ring of observations. Index points at
// the most recent entry; Cardinality counts populated slots.
type ObservationRing struct {
	PoolId       uint64        `json:"pool_id"`
	Observations []Observation `json:"observations"`
	Index        uint32        `json:"index"`
	Cardinality  uint32        `json:"cardinality"`
}

// NewObservationRing seeds a ring with a single observation at timestamp.
func NewObservationRing(poolID uint64, capacity uint32, timestamp int64) ObservationRing {
	r := ObservationRing{
		PoolId:       poolID,
		Observations: make([]Observation, capacity),
		Cardinality:  1,
	}
	r.Observations[0] = Observation{Timestamp: timestamp, Initialized: true}
	return r
}

// Capacity returns the ring size.
func (r ObservationRing) Capacity() uint32 { return uint32(len(r.Observations)) }

// Latest returns the most recent observation.
func (r ObservationRing) Latest() Observation { return r.Observations[r.Index] }

// Oldest returns the earliest retained observation.
func (r ObservationRing) Oldest() Observation {
	if r.Cardinality < r.Capacity() {
		return r.Observations[0]
	}
	return r.Observations[(r.Index+1)%r.Capacity()]
}

// Observe records tick as the tick that prevailed since the latest entry.
// Nothing is written unless timestamp is strictly later. Reports whether a
// new entry was appended.
func (r *ObservationRing) Observe(timestamp int64, tick int32) bool {
	last := r.Latest()
	if timestamp <= last.Timestamp {
		return false
	}
	next := (r.Index + 1) % r.Capacity()
	r.Observations[next] = Observation{
		Timestamp:      timestamp,
		TickCumulative: last.TickCumulative + int64(tick)*(timestamp-last.Timestamp),
		Initialized:    true,
	}
	r.Index = next
	if r.Cardinality < r.Capacity() {
		r.Cardinality++
	}
	return true
}

// at returns the i-th retained observation in chronological order.
func (r ObservationRing) at(i uint32) Observation {
	if r.Cardinality < r.Capacity() {
		return r.Observations[i]
	}
	return r.Observations[(r.Index+1+i)%r.Capacity()]
}

// CumulativeAt returns the tick cumulative at target. Targets after the
// latest entry are extrapolated with currentTick; targets between two
// samples are interpolated exactly, since the tick is constant between them.
func (r ObservationRing) CumulativeAt(target, now int64, currentTick int32) (int64, error) {
	if target > now {
		return 0, ErrObservationTooOld.Wrapf("target %d is after now %d", target, now)
	}
	last := r.Latest()
	if target >= last.Timestamp {
		return last.TickCumulative + int64(currentTick)*(target-last.Timestamp), nil
	}
	oldest := r.Oldest()
	if target < oldest.Timestamp {
		return 0, ErrObservationTooOld.Wrapf("target %d precedes oldest observation %d", target, oldest.Timestamp)
	}

	// first retained sample strictly after target
	n := int(r.Cardinality)
	i := sort.Search(n, func(i int) bool { return r.at(uint32(i)).Timestamp > target })
	before, after := r.at(uint32(i-1)), r.at(uint32(i))
	if before.Timestamp == target {
		return before.TickCumulative, nil
	}
	tickDuring := (after.TickCumulative - before.TickCumulative) / (after.Timestamp - before.Timestamp)
	return before.TickCumulative + tickDuring*(target-before.Timestamp), nil
}

// TwapBetween returns the time-weighted average tick over [start, end],
// rounded toward negative infinity.
func (r ObservationRing) TwapBetween(start, end, now int64, currentTick int32) (int32, error) {
	if end <= start {
		return 0, ErrWindowTooShort.Wrapf("empty window [%d, %d]", start, end)
	}
	cumStart, err := r.CumulativeAt(start, now, currentTick)
	if err != nil {
		return 0, err
	}
	cumEnd, err := r.CumulativeAt(end, now, currentTick)
	if err != nil {
		return 0, err
	}
	delta := cumEnd - cumStart
	span := end - start
	avg := delta / span
	if delta < 0 && delta%span != 0 {
		avg--
	}
	return int32(avg), nil
}

// TwapResult is a windowed TWAP with its degradation flag.
type TwapResult struct {
	Tick        int32  `json:"tick"`
	Cardinality uint32 `json:"cardinality"`
	Capacity    uint32 `json:"capacity"`
	Degraded    bool   `json:"degraded"`
}

// Twap answers a query looking secondsAgo back from now.
func (r ObservationRing) Twap(secondsAgo uint32, now int64, currentTick int32, params OracleParams) (TwapResult, error) {
	res := TwapResult{
		Cardinality: r.Cardinality,
		Capacity:    r.Capacity(),
		Degraded:    r.Cardinality < params.MinCardinality,
	}
	if secondsAgo < params.MinWindowSeconds {
		return res, ErrWindowTooShort.Wrapf("window %ds below minimum %ds", secondsAgo, params.MinWindowSeconds)
	}
	tick, err := r.TwapBetween(now-int64(secondsAgo), now, now, currentTick)
	if err != nil {
		res.Degraded = true
		return res, err
	}
	res.Tick = tick
	return res, nil
}

// TickToPrice returns 1.0001^tick, the price of token A in token B.
func TickToPrice(tick int32) (math.LegacyDec, error) {
	sqrt, err := SqrtPriceAtTick(tick)
	if err != nil {
		return math.LegacyDec{}, err
	}
	s := math.LegacyNewDecFromInt(sqrt).QuoInt(Q64)
	return s.Mul(s), nil
}
