package types

// Event types for the clmm module
const (
	EventTypePoolCreated      = "clmm_pool_created"
	EventTypeSwap             = "clmm_swap"
	EventTypeLiquidityAdded   = "clmm_liquidity_added"
	EventTypeLiquidityRemoved = "clmm_liquidity_removed"
	EventTypeFeesCollected    = "clmm_fees_collected"
	EventTypeTickArrayCreated = "clmm_tick_array_created"
	EventTypeTickArrayEmptied = "clmm_tick_array_emptied"
	EventTypeJitFill          = "clmm_jit_fill"
	EventTypeJitBufferFunded  = "clmm_jit_buffer_funded"
	EventTypeOracleDegraded   = "clmm_oracle_degraded"
	EventTypePoolPaused       = "clmm_pool_paused"
	EventTypePoolResumed      = "clmm_pool_resumed"
	EventTypeParamsUpdated    = "clmm_params_updated"
)

// Event attribute keys
const (
	AttributeKeyPoolID         = "pool_id"
	AttributeKeyPositionID     = "position_id"
	AttributeKeyOwner          = "owner"
	AttributeKeyDenomA         = "denom_a"
	AttributeKeyDenomB         = "denom_b"
	AttributeKeyZeroForOne     = "zero_for_one"
	AttributeKeyAmountIn       = "amount_in"
	AttributeKeyAmountOut      = "amount_out"
	AttributeKeyAmountA        = "amount_a"
	AttributeKeyAmountB        = "amount_b"
	AttributeKeyFeeBps         = "fee_bps"
	AttributeKeyFeeAmount      = "fee_amount"
	AttributeKeySqrtPrice      = "sqrt_price_x64"
	AttributeKeyTick           = "tick"
	AttributeKeyTickLower      = "tick_lower"
	AttributeKeyTickUpper      = "tick_upper"
	AttributeKeyLiquidity      = "liquidity"
	AttributeKeyStartTickIndex = "start_tick_index"
	AttributeKeySide           = "side"
	AttributeKeyFilled         = "filled"
	AttributeKeyToxicity       = "toxicity"
	AttributeKeyReason         = "reason"
	AttributeKeyActor          = "actor"
)
