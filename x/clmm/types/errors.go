package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// Input validation errors. These are returned before any state is read.
var (
	ErrInvalidTickRange     = errorsmod.Register(ModuleName, 2, "invalid tick range")
	ErrTickOutOfRange       = errorsmod.Register(ModuleName, 3, "tick out of range")
	ErrMisalignedStartIndex = errorsmod.Register(ModuleName, 4, "tick array start index misaligned")
	ErrTickMisaligned       = errorsmod.Register(ModuleName, 5, "tick not a multiple of tick spacing")
	ErrZeroAmount           = errorsmod.Register(ModuleName, 6, "amount cannot be zero")
	ErrInvalidPriceLimit    = errorsmod.Register(ModuleName, 7, "invalid sqrt price limit")
	ErrInvalidParams        = errorsmod.Register(ModuleName, 8, "invalid parameters")
	ErrPoolNotFound         = errorsmod.Register(ModuleName, 9, "pool not found")
	ErrPositionNotFound     = errorsmod.Register(ModuleName, 10, "position not found")
	ErrUnauthorized         = errorsmod.Register(ModuleName, 11, "unauthorized")
	ErrInvalidPoolConfig    = errorsmod.Register(ModuleName, 12, "invalid pool configuration")
	ErrInvalidGenesis       = errorsmod.Register(ModuleName, 13, "invalid genesis state")
)

// Execution errors. The whole operation aborts with no partial effect.
var (
	ErrInsufficientLiquidity         = errorsmod.Register(ModuleName, 20, "insufficient liquidity")
	ErrMathOverflow                  = errorsmod.Register(ModuleName, 21, "math overflow")
	ErrSlippageExceeded              = errorsmod.Register(ModuleName, 22, "slippage exceeded")
	ErrFeeCapExceeded                = errorsmod.Register(ModuleName, 23, "fee exceeds caller cap")
	ErrStepLimitExceeded             = errorsmod.Register(ModuleName, 24, "swap step limit exceeded")
	ErrPoolPaused                    = errorsmod.Register(ModuleName, 25, "pool is paused")
	ErrInsufficientPositionLiquidity = errorsmod.Register(ModuleName, 26, "insufficient position liquidity")
)

// Degradation conditions. Not fatal; consumers fall back to conservative parameters.
var (
	ErrWindowTooShort    = errorsmod.Register(ModuleName, 40, "twap window too short")
	ErrObservationTooOld = errorsmod.Register(ModuleName, 41, "twap target older than oldest observation")
	ErrLowCardinality    = errorsmod.Register(ModuleName, 42, "oracle cardinality below minimum")
)

// Invariant violations. Unrecoverable: the calling transaction must abort.
var (
	ErrFloorBreached       = errorsmod.Register(ModuleName, 50, "ask placed below floor")
	ErrBitmapInconsistent  = errorsmod.Register(ModuleName, 51, "tick array bitmap inconsistent with initialization")
	ErrLiquidityNetNonZero = errorsmod.Register(ModuleName, 52, "sum of liquidity net is not zero")
)

// IsDegradation reports whether err is a staleness condition that callers
// should degrade around instead of failing.
func IsDegradation(err error) bool {
	return errors.Is(err, ErrWindowTooShort) ||
		errors.Is(err, ErrObservationTooOld) ||
		errors.Is(err, ErrLowCardinality)
}

// IsInvariantViolation reports whether err signals corrupted or unsafe state.
func IsInvariantViolation(err error) bool {
	return errors.Is(err, ErrFloorBreached) ||
		errors.Is(err, ErrBitmapInconsistent) ||
		errors.Is(err, ErrLiquidityNetNonZero)
}

// ErrorWithRecovery pairs an error with a hint for the caller's retry policy.
type ErrorWithRecovery struct {
	Err      error
	Recovery string
}

func (e *ErrorWithRecovery) Error() string { return e.Err.Error() }

func (e *ErrorWithRecovery) Unwrap() error { return e.Err }

var recoverySuggestions = map[*errorsmod.Error]string{
	ErrSlippageExceeded:      "resubmit with a lower min_amount_out or a smaller amount_in",
	ErrFeeCapExceeded:        "resubmit with a higher max_fee_bps or split across blocks",
	ErrInsufficientLiquidity: "reduce amount_in or relax the sqrt price limit",
	ErrStepLimitExceeded:     "reduce amount_in so the swap crosses fewer ticks",
	ErrPoolPaused:            "wait for the pool authority to resume trading",
}

// WrapWithRecovery wraps err with a formatted message and attaches the
// registered recovery suggestion, if any.
func WrapWithRecovery(err *errorsmod.Error, format string, args ...interface{}) error {
	wrapped := err.Wrapf(format, args...)
	if hint, ok := recoverySuggestions[err]; ok {
		return &ErrorWithRecovery{Err: wrapped, Recovery: hint}
	}
	return wrapped
}
