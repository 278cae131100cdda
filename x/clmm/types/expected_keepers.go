package types

import (
	"context"
)

// FloorKeeper supplies the externally owned floor for a pool, expressed as
// the lowest tick at which the protocol may sell token A. The floor is
// monotonically non-decreasing; its owner enforces that.
type FloorKeeper interface {
	GetFloorTick(ctx context.Context, poolID uint64) (tick int32, found bool)
}

// ClmmKeeperV1 is the read-only surface offered to other modules such as a
// router or an external risk system.
type ClmmKeeperV1 interface {
	GetPool(ctx context.Context, poolID uint64) (PoolState, bool)
	Twap(ctx context.Context, poolID uint64, secondsAgo uint32) (TwapResult, error)
}
