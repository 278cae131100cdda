package keeper

import (
	"github.com/paw-chain/clmm/x/clmm/types"
)

// markArray sets or clears the bitmap bit of an array after its initialized
// count changed.
func (pc *poolContext) markArray(e *arrayEntry) {
	bit := types.ArrayBit(e.array.StartTickIndex, pc.pool.TickSpacing)
	if e.array.InitializedCount > 0 {
		pc.pool.Bitmap.Set(bit)
	} else {
		pc.pool.Bitmap.Clear(bit)
	}
}

// nextInitializedTick returns the nearest initialized tick in the swap
// direction: at or below from when lte is set, strictly above from otherwise.
// The search scans at most the array containing from and then jumps through
// the bitmap to the next populated array.
func (pc *poolContext) nextInitializedTick(from int32, lte bool) (int32, bool, error) {
	spacing := pc.pool.TickSpacing
	if lte && from < types.MinTick {
		return 0, false, nil
	}
	if !lte && from >= types.MaxTick {
		return 0, false, nil
	}
	if from < types.MinTick {
		from = types.MinTick - 1
	}
	if from > types.MaxTick {
		from = types.MaxTick
	}

	start := types.ArrayStartIndex(from, spacing)
	bit := types.ArrayBit(start, spacing)
	if bit >= 0 && bit < pc.pool.Bitmap.MaxBit() && pc.pool.Bitmap.IsSet(bit) {
		tick, found, err := pc.scanArray(start, from, lte)
		if err != nil || found {
			return tick, found, err
		}
	}

	var next int
	var ok bool
	if lte {
		next, ok = pc.pool.Bitmap.PrevSetBit(bit - 1)
	} else {
		next, ok = pc.pool.Bitmap.NextSetBit(bit + 1)
	}
	if !ok {
		return 0, false, nil
	}
	nextStart := types.ArrayStartFromBit(next, spacing)
	scanFrom := nextStart - 1
	if lte {
		scanFrom = nextStart + types.TicksInArray(spacing) - 1
	}
	tick, found, err := pc.scanArray(nextStart, scanFrom, lte)
	if err != nil {
		return 0, false, err
	}
	if !found {
		return 0, false, types.ErrBitmapInconsistent.Wrapf("bit set for empty array %d", nextStart)
	}
	return tick, true, nil
}

func (pc *poolContext) scanArray(start, from int32, lte bool) (int32, bool, error) {
	e, err := pc.entry(start)
	if err != nil {
		return 0, false, err
	}
	if e == nil {
		return 0, false, types.ErrBitmapInconsistent.Wrapf("bit set for missing array %d", start)
	}
	tick, found := e.array.NextInitializedInArray(from, pc.pool.TickSpacing, lte)
	return tick, found, nil
}
