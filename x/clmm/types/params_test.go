package types

import (
	"os"
	"path/filepath"
	"testing"

	"cosmossdk.io/math"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"
)

func TestDefaultParamsValidate(t *testing.T) {
	require.NoError(t, DefaultParams().Validate())
	require.NoError(t, DefaultGenesis().Validate())
}

func TestParamsValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
	}{
		{"split does not sum", func(p *Params) { p.Fee.Split.LpBps = 8000 }},
		{"min above max", func(p *Params) { p.Fee.MinTotalFeeBps = p.Fee.MaxTotalFeeBps + 1 }},
		{"max above 100%", func(p *Params) { p.Fee.MaxTotalFeeBps = BpsDenominator + 1 }},
		{"zero dense resolution", func(p *Params) { p.Fee.DenseTicksPerBps = 0 }},
		{"dense limit not a multiple", func(p *Params) { p.Fee.DenseLimitTicks = 105 }},
		{"ceiling below dense limit", func(p *Params) { p.Fee.ImpactCeilingTicks = 50 }},
		{"base below split margin", func(p *Params) { p.Fee.BaseFeeBps = 19 }},
		{"zero band width", func(p *Params) { p.Jit.BandWidthSpacings = 0 }},
		{"zero slot", func(p *Params) { p.Jit.SlotSeconds = 0 }},
		{"buffer share above 100%", func(p *Params) { p.Jit.MaxBufferShareBps = BpsDenominator + 1 }},
		{"negative cap", func(p *Params) { p.Jit.PerTradeCap = math.NewInt(-1) }},
		{"nil budget", func(p *Params) { p.Jit.PerSlotBudget = math.Int{} }},
		{"min quote above cap", func(p *Params) { p.Jit.MinQuoteSize = p.Jit.PerTradeCap.AddRaw(1) }},
		{"alpha up zero", func(p *Params) { p.Jit.ToxicityAlphaUp = math.LegacyZeroDec() }},
		{"alpha down above one", func(p *Params) { p.Jit.ToxicityAlphaDown = math.LegacyNewDec(2) }},
		{"floor step not below alpha down", func(p *Params) { p.Jit.ToxicityFloorStep = p.Jit.ToxicityAlphaDown }},
		{"oracle capacity one", func(p *Params) { p.Oracle.Capacity = 1 }},
		{"zero min window", func(p *Params) { p.Oracle.MinWindowSeconds = 0 }},
		{"cardinality above capacity", func(p *Params) { p.Oracle.MinCardinality = p.Oracle.Capacity + 1 }},
		{"jit window below minimum", func(p *Params) { p.Oracle.JitWindowSeconds = p.Oracle.MinWindowSeconds - 1 }},
		{"zero max steps", func(p *Params) { p.Swap.MaxSteps = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			require.ErrorIs(t, p.Validate(), ErrInvalidParams)
		})
	}
}

func writeParamsFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadParamsFileYAML(t *testing.T) {
	path := writeParamsFile(t, "params.yaml", `
fee:
  base_fee_bps: 50
  split:
    lp_bps: 6000
    buffer_bps: 3000
jit:
  enabled: false
  per_trade_cap: 2000000
  toxicity_alpha_up: 0.25
oracle:
  capacity: 128
`)
	p, err := LoadParamsFile(path)
	require.NoError(t, err)
	require.Equal(t, uint32(50), p.Fee.BaseFeeBps)
	require.Equal(t, uint32(6000), p.Fee.Split.LpBps)
	require.Equal(t, uint32(3000), p.Fee.Split.BufferBps)
	require.Equal(t, uint32(1000), p.Fee.Split.ProtocolBps)
	require.False(t, p.Jit.Enabled)
	require.Equal(t, "2000000", p.Jit.PerTradeCap.String())
	require.Equal(t, "0.250000000000000000", p.Jit.ToxicityAlphaUp.String())
	require.Equal(t, uint32(128), p.Oracle.Capacity)

	// untouched keys keep their defaults
	require.Equal(t, DefaultParams().Swap, p.Swap)
	require.Equal(t, DefaultJitParams().PerSlotBudget.String(), p.Jit.PerSlotBudget.String())
}

func TestLoadParamsFileJSONWithEnvOverride(t *testing.T) {
	path := writeParamsFile(t, "params.json", `{"swap": {"max_steps": 64}, "jit": {"min_quote_size": "500"}}`)
	t.Setenv("CLMM_SWAP_MAX_STEPS", "100")

	p, err := LoadParamsFile(path)
	require.NoError(t, err)
	require.Equal(t, uint32(100), p.Swap.MaxSteps)
	require.Equal(t, "500", p.Jit.MinQuoteSize.String())
}

func TestLoadParamsFileRejects(t *testing.T) {
	_, err := LoadParamsFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, ErrInvalidParams)

	path := writeParamsFile(t, "split.yaml", "fee:\n  split:\n    lp_bps: 9000\n")
	_, err = LoadParamsFile(path)
	require.ErrorIs(t, err, ErrInvalidParams)

	path = writeParamsFile(t, "cap.yaml", "jit:\n  per_trade_cap: lots\n")
	_, err = LoadParamsFile(path)
	require.ErrorIs(t, err, ErrInvalidParams)

	path = writeParamsFile(t, "steps.yaml", "swap:\n  max_steps: -4\n")
	_, err = LoadParamsFile(path)
	require.ErrorIs(t, err, ErrInvalidParams)
}

func TestParamsFromViperDefaults(t *testing.T) {
	p, err := ParamsFromViper(viper.New())
	require.NoError(t, err)
	require.Equal(t, DefaultParams().String(), p.String())
}
