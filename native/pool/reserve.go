package pool

import (
	"math/big"

	"blendpool/fixedpoint"
)

// Reserve is the per-asset accounting state described in spec.md §3.
type Reserve struct {
	Config ReserveConfig

	BRate          *big.Int // 12-dec, tokens redeemable per b-share
	DRate          *big.Int // 12-dec, tokens owed per d-share
	BSupply        *big.Int
	DSupply        *big.Int
	IRMod          *big.Int // 7-dec, bounded [0.1, 10]
	BackstopCredit *big.Int
	LastTime       uint64
}

var (
	irModMin = new(big.Int).Div(fixedpoint.SCALAR7, big.NewInt(10))       // 0.1
	irModMax = new(big.Int).Mul(fixedpoint.SCALAR7, big.NewInt(10))       // 10.0
	oneRay12 = new(big.Int).Set(fixedpoint.SCALAR12)
	oneBps7  = new(big.Int).Set(fixedpoint.SCALAR7)
)

// NewReserve constructs a Reserve at its genesis state: b_rate = d_rate =
// 1.0, ir_mod = 1.0, everything else zero.
func NewReserve(cfg ReserveConfig, now uint64) *Reserve {
	return &Reserve{
		Config:         cfg.Clone(),
		BRate:          new(big.Int).Set(oneRay12),
		DRate:          new(big.Int).Set(oneRay12),
		BSupply:        big.NewInt(0),
		DSupply:        big.NewInt(0),
		IRMod:          new(big.Int).Set(oneBps7),
		BackstopCredit: big.NewInt(0),
		LastTime:       now,
	}
}

// Utilization computes min(d_supply*d_rate / (b_supply*b_rate), 1) at
// 7-decimal precision. Returns zero if there is no supply.
func (r *Reserve) Utilization() *big.Int {
	if r.BSupply.Sign() == 0 {
		return big.NewInt(0)
	}
	supplied := fixedpoint.MulFloor(r.BSupply, r.BRate, fixedpoint.SCALAR12)
	if supplied.Sign() == 0 {
		return big.NewInt(0)
	}
	borrowed := fixedpoint.MulFloor(r.DSupply, r.DRate, fixedpoint.SCALAR12)
	util := fixedpoint.DivFloor(borrowed, fixedpoint.SCALAR7, supplied)
	if util.Cmp(fixedpoint.SCALAR7) > 0 {
		return new(big.Int).Set(fixedpoint.SCALAR7)
	}
	return util
}

// targetRate implements the kinked curve of spec.md §4.1 step 2, operating
// in 7-decimal fixed point throughout.
func (r *Reserve) targetRate(util *big.Int) *big.Int {
	cfg := r.Config
	rBase := bpsToScalar7(cfg.RBaseBps)
	rOne := bpsToScalar7(cfg.ROneBps)
	rTwo := bpsToScalar7(cfg.RTwoBps)
	rThree := bpsToScalar7(cfg.RThreeBps)
	target := bpsToScalar7(cfg.UtilTargetBps)
	ninetyFive := big.NewInt(9_500_000) // 0.95 in SCALAR7

	if target.Sign() == 0 {
		target = big.NewInt(1) // avoid div by zero; degenerate config
	}

	switch {
	case util.Cmp(target) <= 0:
		// r_base + util/target * r_one
		scaled := fixedpoint.DivFloor(util, fixedpoint.SCALAR7, target)
		term := fixedpoint.MulFloor(scaled, rOne, fixedpoint.SCALAR7)
		return new(big.Int).Add(rBase, term)
	case util.Cmp(ninetyFive) <= 0:
		span := new(big.Int).Sub(ninetyFive, target)
		if span.Sign() == 0 {
			span = big.NewInt(1)
		}
		excess := new(big.Int).Sub(util, target)
		scaled := fixedpoint.DivFloor(excess, fixedpoint.SCALAR7, span)
		term := fixedpoint.MulFloor(scaled, rTwo, fixedpoint.SCALAR7)
		return new(big.Int).Add(new(big.Int).Add(rBase, rOne), term)
	default:
		span := big.NewInt(500_000) // 0.05 in SCALAR7
		excess := new(big.Int).Sub(util, ninetyFive)
		scaled := fixedpoint.DivFloor(excess, fixedpoint.SCALAR7, span)
		term := fixedpoint.MulFloor(scaled, rThree, fixedpoint.SCALAR7)
		sum := new(big.Int).Add(rBase, rOne)
		sum.Add(sum, rTwo)
		return sum.Add(sum, term)
	}
}

func bpsToScalar7(bps uint64) *big.Int {
	// bps is basis points (1/10_000); SCALAR7 is 1e7, so scale by 1e3.
	return new(big.Int).Mul(new(big.Int).SetUint64(bps), big.NewInt(1_000))
}

const secondsPerYear = 31_536_000

// Accrue applies spec.md §4.1's interest accrual algorithm in place, returning
// the backstop credit delta minted this call (zero if nothing accrued).
func (r *Reserve) Accrue(now uint64) *big.Int {
	if now <= r.LastTime || r.BSupply.Sign() == 0 {
		r.LastTime = now
		return big.NewInt(0)
	}
	util := r.Utilization()
	if util.Sign() == 0 {
		r.LastTime = now
		return big.NewInt(0)
	}

	delta := now - r.LastTime
	rTarget := r.targetRate(util)

	// ir_mod += reactivity * (util - target) * delta_t, clamped [0.1, 10].
	target := bpsToScalar7(r.Config.UtilTargetBps)
	reactivity := bpsToScalar7(r.Config.ReactivityBps)
	diff := new(big.Int).Sub(util, target)
	adj := fixedpoint.MulFloor(reactivity, diff, fixedpoint.SCALAR7)
	adj = new(big.Int).Mul(adj, new(big.Int).SetUint64(delta))
	// adj currently has an extra implicit division by seconds-per-year
	// baked into reactivity's governance-chosen units; apply it explicitly.
	adj = new(big.Int).Quo(adj, big.NewInt(secondsPerYear))
	newIRMod := new(big.Int).Add(r.IRMod, adj)
	if newIRMod.Sign() < 0 {
		newIRMod = big.NewInt(0)
	}
	if newIRMod.Cmp(irModMin) < 0 {
		newIRMod = new(big.Int).Set(irModMin)
	}
	if newIRMod.Cmp(irModMax) > 0 {
		newIRMod = new(big.Int).Set(irModMax)
	}
	r.IRMod = newIRMod

	// effective per-period rate = ir_mod * r_target
	effRate := fixedpoint.MulFloor(r.IRMod, rTarget, fixedpoint.SCALAR7)

	// g = (1 + eff_rate)^(delta / seconds_per_year), approximated via a
	// simple-interest linearisation over the (typically short) accrual
	// window: g = 1 + eff_rate * delta / seconds_per_year. This matches the
	// per-block linear accrual the teacher's interest model uses and avoids
	// a fractional-exponent big.Int power.
	perPeriod := new(big.Int).Mul(effRate, new(big.Int).SetUint64(delta))
	perPeriod.Quo(perPeriod, big.NewInt(secondsPerYear))
	// perPeriod is in SCALAR7; convert to a SCALAR12 growth factor g.
	g := new(big.Int).Mul(perPeriod, new(big.Int).Quo(fixedpoint.SCALAR12, fixedpoint.SCALAR7))
	g.Add(g, fixedpoint.SCALAR12)

	preLiab := fixedpoint.MulFloor(r.DSupply, r.DRate, fixedpoint.SCALAR12)
	newDRate := fixedpoint.MulCeil(r.DRate, g, fixedpoint.SCALAR12)
	newLiab := fixedpoint.MulFloor(r.DSupply, newDRate, fixedpoint.SCALAR12)
	accrued := new(big.Int).Sub(newLiab, preLiab)
	if accrued.Sign() < 0 {
		accrued = big.NewInt(0)
	}
	r.DRate = newDRate

	r.LastTime = now
	return accrued
}

// AccrueWithBackstopRate performs the full accrual including the backstop
// credit carve and b_rate adjustment (steps 5-7 of spec.md §4.1). bstopRateBps
// is the pool-wide bstop_take_rate.
func (r *Reserve) AccrueWithBackstopRate(now uint64, bstopRateBps uint64) *big.Int {
	if now <= r.LastTime || r.BSupply.Sign() == 0 {
		r.LastTime = now
		return big.NewInt(0)
	}
	preSupply := fixedpoint.MulFloor(r.BSupply, r.BRate, fixedpoint.SCALAR12)
	oldBRate := new(big.Int).Set(r.BRate)

	accrued := r.Accrue(now)
	if accrued.Sign() == 0 {
		return big.NewInt(0)
	}

	deltaBC := fixedpoint.MulFloor(accrued, bpsToScalar7(bstopRateBps), fixedpoint.SCALAR7)
	r.BackstopCredit = new(big.Int).Add(r.BackstopCredit, deltaBC)

	if r.BSupply.Sign() > 0 {
		numerator := new(big.Int).Add(preSupply, accrued)
		numerator.Sub(numerator, deltaBC)
		r.BRate = fixedpoint.DivFloor(numerator, fixedpoint.SCALAR12, r.BSupply)
	}
	if r.BRate.Cmp(oldBRate) < 0 {
		// b_rate must be monotonic non-decreasing except on default.
		r.BRate = oldBRate
	}
	return deltaBC
}

// RequireUtilizationBelowMax enforces util <= max_util.
func (r *Reserve) RequireUtilizationBelowMax() error {
	max := bpsToScalar7(r.Config.MaxUtilBps)
	if max.Sign() == 0 {
		max = new(big.Int).Set(fixedpoint.SCALAR7)
	}
	if r.Utilization().Cmp(max) > 0 {
		return ErrInvalidUtilizationRate
	}
	return nil
}

// RequireUtilizationBelow100 enforces util < 1.
func (r *Reserve) RequireUtilizationBelow100() error {
	if r.Utilization().Cmp(fixedpoint.SCALAR7) >= 0 {
		return ErrInvalidUtilizationRate
	}
	return nil
}

// RequireSupplyCap enforces b_supply*b_rate <= supply_cap (spec.md §4.2's
// SupplyCollateral/Supply gating), in underlying asset units. A zero or nil
// cap means uncapped.
func (r *Reserve) RequireSupplyCap() error {
	if r.Config.SupplyCap == nil || r.Config.SupplyCap.Sign() == 0 {
		return nil
	}
	supplied := fixedpoint.ToAssetFromB(r.BSupply, r.BRate)
	if supplied.Cmp(r.Config.SupplyCap) > 0 {
		return ErrExceededSupplyCap
	}
	return nil
}

// Action identifies which request type is being gated by the enabled flag.
type Action int

const (
	ActionSupply Action = iota
	ActionSupplyCollateral
	ActionBorrow
	ActionWithdraw
	ActionWithdrawCollateral
	ActionRepay
)

// RequireActionAllowed enforces the enabled flag for gated actions (spec.md
// §4.1: supply/supply-collateral/borrow disabled when enabled == false).
func (r *Reserve) RequireActionAllowed(action Action) error {
	if r.Config.Enabled {
		return nil
	}
	switch action {
	case ActionSupply, ActionSupplyCollateral, ActionBorrow:
		return ErrReserveDisabled
	default:
		return nil
	}
}

// Default applies a bad-debt default: reduces b_rate by the given
// liability's asset value divided by b_supply, per spec.md §4.3/S3. b_rate
// never decreases below zero.
func (r *Reserve) Default(liabilityAssetValue *big.Int) {
	if r.BSupply.Sign() == 0 {
		return
	}
	reduction := fixedpoint.DivFloor(liabilityAssetValue, fixedpoint.SCALAR12, r.BSupply)
	newRate := new(big.Int).Sub(r.BRate, reduction)
	if newRate.Sign() < 0 {
		newRate = big.NewInt(0)
	}
	r.BRate = newRate
}

// Gulp compares the token contract's externally reported balance against
// this reserve's internally tracked claim and donates any positive surplus
// into b_rate (spec.md §12 supplemented feature, grounded on
// contracts/pool/src/pool/gulp.rs). Returns the donated delta.
func (r *Reserve) Gulp(tokenBalance *big.Int) *big.Int {
	tracked := new(big.Int).Add(fixedpoint.MulFloor(r.BSupply, r.BRate, fixedpoint.SCALAR12), r.BackstopCredit)
	surplus := new(big.Int).Sub(tokenBalance, tracked)
	if surplus.Sign() <= 0 {
		return big.NewInt(0)
	}
	if r.BSupply.Sign() == 0 {
		return big.NewInt(0)
	}
	bump := fixedpoint.DivFloor(surplus, fixedpoint.SCALAR12, r.BSupply)
	if bump.Sign() == 0 {
		return big.NewInt(0)
	}
	r.BRate = new(big.Int).Add(r.BRate, bump)
	return fixedpoint.MulFloor(bump, r.BSupply, fixedpoint.SCALAR12)
}

// Clone returns a deep copy of the reserve.
func (r *Reserve) Clone() *Reserve {
	if r == nil {
		return nil
	}
	return &Reserve{
		Config:         r.Config.Clone(),
		BRate:          new(big.Int).Set(r.BRate),
		DRate:          new(big.Int).Set(r.DRate),
		BSupply:        new(big.Int).Set(r.BSupply),
		DSupply:        new(big.Int).Set(r.DSupply),
		IRMod:          new(big.Int).Set(r.IRMod),
		BackstopCredit: new(big.Int).Set(r.BackstopCredit),
		LastTime:       r.LastTime,
	}
}
