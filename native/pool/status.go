package pool

// Status is the pool operation-mode state machine of spec.md §4.5.
type Status uint32

const (
	StatusAdminActive    Status = 0
	StatusBackstopActive Status = 1
	StatusAdminOnIce     Status = 2
	StatusBackstopOnIce  Status = 3
	StatusAdminFrozen    Status = 4
	StatusBackstopFrozen Status = 5
)

// BackstopHealth is the subset of backstop state the status machine reads:
// whether the pool's backstop balance clears the reward-zone threshold, and
// the fraction of backstop shares currently queued for withdrawal.
type BackstopHealth struct {
	ThresholdMet bool
	Q4WPctBps    uint64 // queued shares / total shares, in basis points
}

// RecomputeStatus implements update_status: derives the status purely from
// backstop health, per the table in spec.md §4.5.
func RecomputeStatus(h BackstopHealth) Status {
	switch {
	case !h.ThresholdMet || h.Q4WPctBps >= 5_000:
		return StatusBackstopFrozen
	case h.Q4WPctBps >= 3_000:
		return StatusBackstopOnIce
	default:
		return StatusBackstopActive
	}
}

// SetStatus validates an admin-requested status transition against the
// preconditions in spec.md §4.5's table, returning the new status or an
// error.
func SetStatus(requested Status, h BackstopHealth) (Status, error) {
	switch requested {
	case StatusAdminActive:
		if !h.ThresholdMet || h.Q4WPctBps >= 5_000 {
			return 0, ErrInvalidPoolStatus
		}
		return StatusAdminActive, nil
	case StatusAdminOnIce:
		if h.Q4WPctBps >= 7_500 {
			return 0, ErrInvalidPoolStatus
		}
		return StatusAdminOnIce, nil
	case StatusAdminFrozen:
		return StatusAdminFrozen, nil
	default:
		// Backstop-derived statuses (1/3/5) cannot be admin-set directly;
		// only update_status can arrive at them.
		return 0, ErrInvalidPoolStatus
	}
}

// ActionAllowed gates a Request's Action against the current status, per
// spec.md §4.5's "Action gating" bullets.
func ActionAllowed(status Status, action Action) bool {
	onIceOrFrozen := status == StatusAdminOnIce || status == StatusBackstopOnIce ||
		status == StatusAdminFrozen || status == StatusBackstopFrozen
	frozen := status == StatusAdminFrozen || status == StatusBackstopFrozen

	switch action {
	case ActionBorrow:
		return !onIceOrFrozen
	case ActionSupply, ActionSupplyCollateral:
		return !frozen
	default:
		return true
	}
}

// CancelLiquidationAllowed gates DeleteLiquidationAuction the same way as
// Borrow per spec.md §4.5.
func CancelLiquidationAllowed(status Status) bool {
	return status != StatusAdminOnIce && status != StatusBackstopOnIce &&
		status != StatusAdminFrozen && status != StatusBackstopFrozen
}
