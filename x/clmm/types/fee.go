package types

import (
	"cosmossdk.io/math"
)

// ImpactBps looks up the impact component for a realized tick displacement.
//
// Below DenseLimitTicks the table resolves one bps per DenseTicksPerBps
// ticks. Above it the table steps by CoarseBucketBps at every
// CoarseBucketTicks boundary up to ImpactCeilingTicks and is flat beyond.
// The steps at bucket boundaries are part of the schedule.
func (f FeeParams) ImpactBps(displacement uint32) uint32 {
	if displacement >= f.ImpactCeilingTicks {
		displacement = f.ImpactCeilingTicks
	}
	if displacement < f.DenseLimitTicks {
		return displacement / f.DenseTicksPerBps
	}
	base := uint64(f.DenseLimitTicks / f.DenseTicksPerBps)
	buckets := uint64((displacement - f.DenseLimitTicks) / f.CoarseBucketTicks)
	impact := base + buckets*uint64(f.CoarseBucketBps)
	if impact > BpsDenominator {
		return BpsDenominator
	}
	return uint32(impact)
}

// FeeAfterSwap returns the total dynamic fee for a trade that moved the pool
// from startTick to endTick: clamp(base + max(impact, floor), min, max).
func FeeAfterSwap(startTick, endTick int32, f FeeParams) uint32 {
	d := int64(endTick) - int64(startTick)
	if d < 0 {
		d = -d
	}
	if d > int64(^uint32(0)) {
		d = int64(^uint32(0))
	}
	impact := f.ImpactBps(uint32(d))
	if impact < f.ImpactFloorBps {
		impact = f.ImpactFloorBps
	}
	total := uint64(f.BaseFeeBps) + uint64(impact)
	if total < uint64(f.MinTotalFeeBps) {
		total = uint64(f.MinTotalFeeBps)
	}
	if total > uint64(f.MaxTotalFeeBps) {
		total = uint64(f.MaxTotalFeeBps)
	}
	return uint32(total)
}

// CheckFeeCap fails with ErrFeeCapExceeded when a caller-declared cap is set
// and the computed fee exceeds it. A zero cap means no cap.
func CheckFeeCap(feeBps, maxFeeBps uint32) error {
	if maxFeeBps != 0 && feeBps > maxFeeBps {
		return WrapWithRecovery(ErrFeeCapExceeded, "fee %d bps exceeds cap %d bps", feeBps, maxFeeBps)
	}
	return nil
}

// FeeShares is the dynamic fee amount broken down by recipient.
type FeeShares struct {
	Total    math.Int
	Lp       math.Int
	Buffer   math.Int
	Protocol math.Int
}

// SplitFee charges feeBps on amountOut, rounded up, and divides it by split.
// The protocol share absorbs rounding.
func SplitFee(amountOut math.Int, feeBps uint32, split FeeSplit) (FeeShares, error) {
	denom := math.NewInt(BpsDenominator)
	total, err := MulDiv(amountOut, math.NewInt(int64(feeBps)), denom, true)
	if err != nil {
		return FeeShares{}, err
	}
	if total.GT(amountOut) {
		total = amountOut
	}
	lp, err := MulDiv(total, math.NewInt(int64(split.LpBps)), denom, false)
	if err != nil {
		return FeeShares{}, err
	}
	buffer, err := MulDiv(total, math.NewInt(int64(split.BufferBps)), denom, false)
	if err != nil {
		return FeeShares{}, err
	}
	return FeeShares{
		Total:    total,
		Lp:       lp,
		Buffer:   buffer,
		Protocol: total.Sub(lp).Sub(buffer),
	}, nil
}
