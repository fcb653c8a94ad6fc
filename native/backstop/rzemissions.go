package backstop

import (
	"math/big"

	"blendpool/fixedpoint"
)

// RzEmissions is one reward-zone pool's undistributed backfill bucket:
// tokens allocated to it by Distribute but not yet drained into its own
// backstop-depositor emission stream by GulpEmissions (spec.md §4.7's
// RzEmissions: { accrued, last_time }).
type RzEmissions struct {
	Accrued  *big.Int
	LastTime uint64
}

// NewRzEmissions returns a zeroed backfill bucket starting at now.
func NewRzEmissions(now uint64) *RzEmissions {
	return &RzEmissions{Accrued: big.NewInt(0), LastTime: now}
}

// MaxBackfill returns the ceiling a pool's RzEmissions.Accrued may reach:
// rate (SCALAR7-scaled tokens/second) times windowSeconds, rescaled back down
// to raw token units. A pool that sits un-gulped for longer than the window
// does not keep accumulating past this ceiling, bounding how much one
// dormant or newly-admitted pool can hoard out of the shared Emitter
// allowance (spec.md's MAX_BACKFILLED_EMISSIONS).
func MaxBackfill(rate *big.Int, windowSeconds uint64) *big.Int {
	if rate == nil || rate.Sign() <= 0 || windowSeconds == 0 {
		return big.NewInt(0)
	}
	return fixedpoint.MulFloor(rate, new(big.Int).SetUint64(windowSeconds), fixedpoint.SCALAR7)
}
