// Package emission implements the per-user reward-index accrual shared by
// both the backstop's own emissions (native/backstop) and pool-side reserve
// emissions (native/pool): an eps (tokens/second) rate compounds into a
// cumulative index scaled by fixedpoint.SCALAR14, and each holder's share of
// unclaimed reward is shares * (index - user_index).
package emission

import (
	"math/big"

	"blendpool/fixedpoint"
)

// Config is one emission stream's governance-set parameters.
type Config struct {
	EPS     *big.Int // tokens per second, SCALAR7-scaled
	ExpTime uint64   // unix-seconds the stream stops distributing
}

// Tracker is the accrual state for one emission stream (one reserve side, or
// the backstop as a whole).
type Tracker struct {
	Index    *big.Int // SCALAR14-scaled cumulative index
	LastTime uint64
}

// NewTracker returns a zeroed tracker starting at now.
func NewTracker(now uint64) *Tracker {
	return &Tracker{Index: big.NewInt(0), LastTime: now}
}

// Accrue advances the index by eps * delta_t / totalShares, scaled to
// SCALAR14, and is a no-op if totalShares is zero (nothing to distribute
// into) or the stream has expired.
func (t *Tracker) Accrue(cfg Config, totalShares *big.Int, now uint64) {
	if now <= t.LastTime {
		t.LastTime = now
		return
	}
	end := now
	if cfg.ExpTime != 0 && cfg.ExpTime < end {
		end = cfg.ExpTime
	}
	if end <= t.LastTime || totalShares == nil || totalShares.Sign() == 0 || cfg.EPS == nil || cfg.EPS.Sign() == 0 {
		t.LastTime = now
		return
	}
	delta := end - t.LastTime
	distributed := new(big.Int).Mul(cfg.EPS, new(big.Int).SetUint64(delta))
	// EPS is SCALAR7-scaled, so distributed is tokens*SCALAR7; one more
	// SCALAR7 over totalShares (raw share units) gives a SCALAR14-scaled
	// per-share index step.
	deltaIndex := fixedpoint.DivFloor(distributed, fixedpoint.SCALAR7, totalShares)
	t.Index = new(big.Int).Add(t.Index, deltaIndex)
	t.LastTime = now
}

// UserPosition is the minimal per-holder state the claim calculation needs.
type UserPosition struct {
	Shares     *big.Int
	UserIndex  *big.Int // the tracker Index value as of this holder's last claim/touch
	Accrued    *big.Int // unclaimed reward not yet swept into a claim
}

// NewUserPosition returns a zeroed position pinned to the tracker's current
// index (so a brand new depositor does not retroactively earn past reward).
func NewUserPosition(tracker *Tracker) *UserPosition {
	return &UserPosition{
		Shares:    big.NewInt(0),
		UserIndex: new(big.Int).Set(tracker.Index),
		Accrued:   big.NewInt(0),
	}
}

// Touch folds the delta between the tracker's current index and the user's
// last-seen index into Accrued, then advances UserIndex to match. Must be
// called before any change to Shares (spec's "accrue before mutate" rule:
// otherwise the new share balance would retroactively earn past emissions).
func (u *UserPosition) Touch(tracker *Tracker) {
	if u.UserIndex == nil {
		u.UserIndex = big.NewInt(0)
	}
	diff := new(big.Int).Sub(tracker.Index, u.UserIndex)
	if diff.Sign() > 0 && u.Shares != nil && u.Shares.Sign() > 0 {
		delta := fixedpoint.MulFloor(u.Shares, diff, fixedpoint.SCALAR14)
		if u.Accrued == nil {
			u.Accrued = big.NewInt(0)
		}
		u.Accrued = new(big.Int).Add(u.Accrued, delta)
	}
	u.UserIndex = new(big.Int).Set(tracker.Index)
}

// Claim zeroes and returns the accrued reward.
func (u *UserPosition) Claim() *big.Int {
	if u.Accrued == nil {
		return big.NewInt(0)
	}
	out := u.Accrued
	u.Accrued = big.NewInt(0)
	return out
}
