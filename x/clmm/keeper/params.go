package keeper

import (
	"context"
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"

	"github.com/paw-chain/clmm/x/clmm/types"
)

// GetParams returns the current parameters from the store
func (k Keeper) GetParams(ctx context.Context) (types.Params, error) {
	var params types.Params
	found, err := getJSON(k.getStore(ctx), types.ParamsKey, &params)
	if err != nil {
		return types.Params{}, fmt.Errorf("GetParams: %w", err)
	}
	if !found {
		return types.DefaultParams(), nil
	}
	return params, nil
}

// SetParams validates and stores the parameters. Invalid parameters never
// reach the store, so every read sees a validated set.
func (k Keeper) SetParams(ctx context.Context, params types.Params) error {
	if err := params.Validate(); err != nil {
		return err
	}
	if err := setJSON(k.getStore(ctx), types.ParamsKey, &params); err != nil {
		return fmt.Errorf("SetParams: %w", err)
	}
	return nil
}

// UpdateParams replaces the parameters on behalf of the authority.
func (k Keeper) UpdateParams(ctx context.Context, authority string, params types.Params) error {
	if authority != k.authority {
		return types.ErrUnauthorized.Wrapf("expected %s, got %s", k.authority, authority)
	}
	if err := k.SetParams(ctx, params); err != nil {
		return err
	}

	sdkCtx := sdk.UnwrapSDKContext(ctx)
	sdkCtx.EventManager().EmitEvent(
		sdk.NewEvent(
			types.EventTypeParamsUpdated,
			sdk.NewAttribute(types.AttributeKeyActor, authority),
		),
	)
	k.Logger(sdkCtx).Info("clmm params updated", "authority", authority)
	return nil
}
