package types

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestRollSlot(t *testing.T) {
	s := NewJitState(1)
	s.Slot = 10
	s.SlotUsedA = math.NewInt(50)
	s.SlotFills = 3
	s.SlotTickMovement = 120
	s.SlotExhausted = true

	s.RollSlot(10)
	require.Equal(t, uint32(3), s.SlotFills, "same slot keeps counters")

	s.RollSlot(11)
	require.Equal(t, int64(11), s.Slot)
	require.True(t, s.SlotUsedA.IsZero())
	require.Zero(t, s.SlotFills)
	require.Zero(t, s.SlotTickMovement)
	require.False(t, s.SlotExhausted)
}

func TestSettlePending(t *testing.T) {
	p := DefaultJitParams()
	tests := []struct {
		name        string
		side        BandSide
		fillTick    int32
		nowTick     int32
		wantAdverse bool
	}{
		{"bid then price falls", SideBid, 100, 90, true},
		{"bid then price recovers", SideBid, 100, 110, false},
		{"ask then price rises", SideAsk, 100, 110, true},
		{"ask then price reverts", SideAsk, 100, 90, false},
		{"unchanged price is benign", SideAsk, 100, 100, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewJitState(1)
			s.Pending = PendingFill{Active: true, Side: tt.side, Tick: tt.fillTick}
			settled, adverse := s.SettlePending(tt.nowTick, p)
			require.True(t, settled)
			require.Equal(t, tt.wantAdverse, adverse)
			require.False(t, s.Pending.Active)
			if tt.wantAdverse {
				require.Equal(t, p.ToxicityAlphaUp.String(), s.Toxicity.String())
			} else {
				require.Equal(t, p.ToxicityFloorStep.String(), s.Toxicity.String())
			}
		})
	}

	s := NewJitState(1)
	settled, _ := s.SettlePending(0, p)
	require.False(t, settled)
	require.True(t, s.Toxicity.IsZero())
}

func TestToxicityBoundedProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := DefaultJitParams()
		s := NewJitState(1)
		verdicts := rapid.SliceOfN(rapid.Bool(), 1, 200).Draw(t, "adverse")
		for _, adverse := range verdicts {
			before := s.Toxicity
			s.UpdateToxicity(adverse, p)
			if s.Toxicity.IsNegative() || s.Toxicity.GT(math.LegacyOneDec()) {
				t.Fatalf("toxicity %s left [0, 1]", s.Toxicity)
			}
			if adverse && s.Toxicity.LT(before) {
				t.Fatalf("adverse fill lowered toxicity %s -> %s", before, s.Toxicity)
			}
		}
	})
}

func TestToxicityDecaysTowardFloor(t *testing.T) {
	p := DefaultJitParams()
	s := NewJitState(1)
	s.Toxicity = math.LegacyOneDec()
	for i := 0; i < 2000; i++ {
		s.UpdateToxicity(false, p)
	}
	// fixed point is floorStep / alphaDown
	fixed := p.ToxicityFloorStep.Quo(p.ToxicityAlphaDown)
	require.True(t, s.Toxicity.Sub(fixed).Abs().LT(math.LegacyMustNewDecFromStr("0.0001")), "toxicity %s", s.Toxicity)
}

func TestDirectionOf(t *testing.T) {
	require.Equal(t, DirectionZeroForOne, DirectionOf(true))
	require.Equal(t, DirectionOneForZero, DirectionOf(false))
	require.Equal(t, "bid", SideBid.String())
	require.Equal(t, "ask", SideAsk.String())
	require.Equal(t, "unknown", BandSide(0).String())
}
