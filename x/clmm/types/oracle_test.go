package types

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestObservationRingCumulative(t *testing.T) {
	r := NewObservationRing(1, 8, 1000)
	require.Equal(t, uint32(1), r.Cardinality)

	require.True(t, r.Observe(1010, 5))
	require.False(t, r.Observe(1010, 7), "same timestamp must not append")
	require.False(t, r.Observe(1005, 7), "earlier timestamp must not append")
	require.True(t, r.Observe(1030, -3))
	require.Equal(t, uint32(3), r.Cardinality)
	require.Equal(t, int64(-10), r.Latest().TickCumulative)

	cum, err := r.CumulativeAt(1005, 1030, 0)
	require.NoError(t, err)
	require.Equal(t, int64(25), cum)

	// extrapolated with the current tick
	cum, err = r.CumulativeAt(1040, 1040, 2)
	require.NoError(t, err)
	require.Equal(t, int64(10), cum)

	twap, err := r.TwapBetween(1000, 1030, 1030, 0)
	require.NoError(t, err)
	require.Equal(t, int32(-1), twap, "negative averages round toward negative infinity")

	twap, err = r.TwapBetween(1000, 1010, 1030, 0)
	require.NoError(t, err)
	require.Equal(t, int32(5), twap)
}

func TestObservationRingWraps(t *testing.T) {
	r := NewObservationRing(1, 4, 0)
	for i := int64(1); i <= 6; i++ {
		require.True(t, r.Observe(i*10, int32(i)))
	}
	require.Equal(t, uint32(4), r.Cardinality)
	require.Equal(t, int64(30), r.Oldest().Timestamp)
	require.Equal(t, int64(60), r.Latest().Timestamp)

	_, err := r.CumulativeAt(29, 60, 0)
	require.ErrorIs(t, err, ErrObservationTooOld)

	twap, err := r.TwapBetween(30, 60, 60, 0)
	require.NoError(t, err)
	// ticks 4, 5, 6 over three equal intervals
	require.Equal(t, int32(5), twap)
}

func TestTwapErrors(t *testing.T) {
	params := DefaultOracleParams()
	r := NewObservationRing(1, params.Capacity, 1000)

	_, err := r.Twap(params.MinWindowSeconds-1, 2000, 0, params)
	require.ErrorIs(t, err, ErrWindowTooShort)
	require.True(t, IsDegradation(err))

	res, err := r.Twap(params.MinWindowSeconds, 1010, 0, params)
	require.ErrorIs(t, err, ErrObservationTooOld)
	require.True(t, res.Degraded)

	_, err = r.TwapBetween(10, 10, 20, 0)
	require.ErrorIs(t, err, ErrWindowTooShort)

	_, err = r.CumulativeAt(3000, 2000, 0)
	require.ErrorIs(t, err, ErrObservationTooOld)
}

func TestTwapDegradedOnLowCardinality(t *testing.T) {
	params := DefaultOracleParams()
	r := NewObservationRing(1, params.Capacity, 1000)
	r.Observe(1100, 40)

	res, err := r.Twap(60, 1200, 40, params)
	require.NoError(t, err)
	require.Equal(t, int32(40), res.Tick)
	require.True(t, res.Degraded)
	require.Equal(t, uint32(2), res.Cardinality)

	for i := int64(1); i <= 4; i++ {
		r.Observe(1200+i*10, 40)
	}
	res, err = r.Twap(60, 1240, 40, params)
	require.NoError(t, err)
	require.False(t, res.Degraded)
}

func TestTwapConsistencyProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		capacity := rapid.Uint32Range(2, 32).Draw(t, "capacity")
		start := rapid.Int64Range(0, 1_000_000).Draw(t, "start")
		r := NewObservationRing(1, capacity, start)

		now := start
		n := rapid.IntRange(1, 40).Draw(t, "observations")
		for i := 0; i < n; i++ {
			now += rapid.Int64Range(1, 100).Draw(t, "dt")
			r.Observe(now, rapid.Int32Range(MinTick, MaxTick).Draw(t, "tick"))
		}
		current := rapid.Int32Range(MinTick, MaxTick).Draw(t, "current")
		now += rapid.Int64Range(0, 100).Draw(t, "tail")

		oldest := r.Oldest().Timestamp
		if now-oldest < 2 {
			return
		}
		t0 := rapid.Int64Range(oldest, now-2).Draw(t, "t0")
		t1 := rapid.Int64Range(t0+1, now-1).Draw(t, "t1")
		t2 := rapid.Int64Range(t1+1, now).Draw(t, "t2")

		twap01, err := r.TwapBetween(t0, t1, now, current)
		if err != nil {
			t.Fatalf("twap [%d, %d]: %v", t0, t1, err)
		}
		twap12, err := r.TwapBetween(t1, t2, now, current)
		if err != nil {
			t.Fatalf("twap [%d, %d]: %v", t1, t2, err)
		}
		twap02, err := r.TwapBetween(t0, t2, now, current)
		if err != nil {
			t.Fatalf("twap [%d, %d]: %v", t0, t2, err)
		}

		s01, s12, s02 := t1-t0, t2-t1, t2-t0
		diff := int64(twap02)*s02 - (int64(twap01)*s01 + int64(twap12)*s12)
		if diff < 0 {
			diff = -diff
		}
		if diff >= s02 {
			t.Fatalf("windows disagree: %d*%d vs %d*%d + %d*%d", twap02, s02, twap01, s01, twap12, s12)
		}

		if twap02 < MinTick || twap02 > MaxTick {
			t.Fatalf("twap %d outside tick range", twap02)
		}
	})
}
