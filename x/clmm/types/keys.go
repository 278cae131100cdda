package types

import (
	"encoding/binary"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "clmm"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName
)

// Store key prefixes
var (
	ParamsKey            = []byte{0x01} // module parameters
	PoolKeyPrefix        = []byte{0x02} // pool state by id
	PoolCountKey         = []byte{0x03} // next pool id
	TickArrayKeyPrefix   = []byte{0x04} // tick arrays by pool and start index
	PositionKeyPrefix    = []byte{0x05} // positions by pool and position id
	ObservationKeyPrefix = []byte{0x06} // oracle ring buffer by pool
	JitStateKeyPrefix    = []byte{0x07} // JIT controller state by pool
)

// GetPoolKey returns the store key for a pool
func GetPoolKey(poolID uint64) []byte {
	return append(append([]byte{}, PoolKeyPrefix...), sdk.Uint64ToBigEndian(poolID)...)
}

// GetTickArrayPrefix returns the prefix under which all tick arrays of a pool live
func GetTickArrayPrefix(poolID uint64) []byte {
	return append(append([]byte{}, TickArrayKeyPrefix...), sdk.Uint64ToBigEndian(poolID)...)
}

// GetTickArrayKey returns the store key for the tick array starting at startIndex.
// The start index is encoded with its sign bit flipped so keys sort by tick.
func GetTickArrayKey(poolID uint64, startIndex int32) []byte {
	return append(GetTickArrayPrefix(poolID), encodeTickIndex(startIndex)...)
}

// GetPositionPrefix returns the prefix under which all positions of a pool live
func GetPositionPrefix(poolID uint64) []byte {
	return append(append([]byte{}, PositionKeyPrefix...), sdk.Uint64ToBigEndian(poolID)...)
}

// GetPositionKey returns the store key for a position
func GetPositionKey(poolID, positionID uint64) []byte {
	return append(GetPositionPrefix(poolID), sdk.Uint64ToBigEndian(positionID)...)
}

// GetObservationKey returns the store key for a pool's oracle ring buffer
func GetObservationKey(poolID uint64) []byte {
	return append(append([]byte{}, ObservationKeyPrefix...), sdk.Uint64ToBigEndian(poolID)...)
}

// GetJitStateKey returns the store key for a pool's JIT controller state
func GetJitStateKey(poolID uint64) []byte {
	return append(append([]byte{}, JitStateKeyPrefix...), sdk.Uint64ToBigEndian(poolID)...)
}

func encodeTickIndex(tick int32) []byte {
	bz := make([]byte, 4)
	binary.BigEndian.PutUint32(bz, uint32(tick)^0x80000000)
	return bz
}

// DecodeTickIndex reverses the sortable encoding used in tick array keys.
func DecodeTickIndex(bz []byte) int32 {
	return int32(binary.BigEndian.Uint32(bz) ^ 0x80000000)
}
