package clmm_test

import (
	"encoding/json"
	"testing"

	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/clmm/testutil/keeper"
	"github.com/paw-chain/clmm/x/clmm"
	"github.com/paw-chain/clmm/x/clmm/types"
)

type routeRecorder struct {
	routes []string
}

func (r *routeRecorder) RegisterRoute(moduleName, route string, _ sdk.Invariant) {
	r.routes = append(r.routes, moduleName+"/"+route)
}

func TestAppModuleBasic_Name(t *testing.T) {
	require.Equal(t, "clmm", clmm.AppModuleBasic{}.Name())
}

func TestAppModuleBasic_Genesis(t *testing.T) {
	amb := clmm.AppModuleBasic{}

	bz := amb.DefaultGenesis(nil)
	require.NoError(t, amb.ValidateGenesis(nil, nil, bz))

	var gs types.GenesisState
	require.NoError(t, json.Unmarshal(bz, &gs))
	require.Equal(t, uint64(1), gs.NextPoolId)

	require.Error(t, amb.ValidateGenesis(nil, nil, json.RawMessage(`{"params":`)))

	gs.NextPoolId = 0
	gs.Params.Fee.Split.LpBps = 1
	bad, err := json.Marshal(gs)
	require.NoError(t, err)
	require.ErrorIs(t, amb.ValidateGenesis(nil, nil, bad), types.ErrInvalidParams)
}

func TestAppModule_GenesisRoundTrip(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	poolID := keepertest.CreateTestPool(t, k, ctx, 10)
	keepertest.AddTestLiquidity(t, k, ctx, poolID, -100, 100, 1_000_000)
	am := clmm.NewAppModule(k)

	exported := am.ExportGenesis(ctx, nil)

	k2, ctx2 := keepertest.ClmmKeeper(t)
	am2 := clmm.NewAppModule(k2)
	require.NotPanics(t, func() { am2.InitGenesis(ctx2, nil, exported) })
	require.JSONEq(t, string(exported), string(am2.ExportGenesis(ctx2, nil)))

	require.Panics(t, func() { am2.InitGenesis(ctx2, nil, json.RawMessage(`[]`)) })
}

func TestAppModule_Invariants(t *testing.T) {
	k, ctx := keepertest.ClmmKeeper(t)
	am := clmm.NewAppModule(k)

	var rec routeRecorder
	am.RegisterInvariants(&rec)
	require.ElementsMatch(t, []string{
		"clmm/liquidity-net-conservation",
		"clmm/tick-bitmap-consistency",
		"clmm/active-liquidity",
	}, rec.routes)

	require.NoError(t, am.EndBlock(ctx))
	require.Equal(t, uint64(1), am.ConsensusVersion())
}
