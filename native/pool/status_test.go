package pool

import "testing"

func TestRecomputeStatusThresholds(t *testing.T) {
	cases := []struct {
		name string
		h    BackstopHealth
		want Status
	}{
		{"below threshold", BackstopHealth{ThresholdMet: false, Q4WPctBps: 0}, StatusBackstopFrozen},
		{"frozen q4w", BackstopHealth{ThresholdMet: true, Q4WPctBps: 5_000}, StatusBackstopFrozen},
		{"on ice q4w", BackstopHealth{ThresholdMet: true, Q4WPctBps: 3_000}, StatusBackstopOnIce},
		{"healthy", BackstopHealth{ThresholdMet: true, Q4WPctBps: 0}, StatusBackstopActive},
	}
	for _, c := range cases {
		if got := RecomputeStatus(c.h); got != c.want {
			t.Errorf("%s: RecomputeStatus = %d, want %d", c.name, got, c.want)
		}
	}
}

func TestSetStatusAdminActiveRequiresHealthyBackstop(t *testing.T) {
	if _, err := SetStatus(StatusAdminActive, BackstopHealth{ThresholdMet: false}); err != ErrInvalidPoolStatus {
		t.Fatalf("SetStatus(AdminActive) below threshold = %v, want ErrInvalidPoolStatus", err)
	}
	if _, err := SetStatus(StatusAdminActive, BackstopHealth{ThresholdMet: true, Q4WPctBps: 5_000}); err != ErrInvalidPoolStatus {
		t.Fatalf("SetStatus(AdminActive) at frozen q4w = %v, want ErrInvalidPoolStatus", err)
	}
	got, err := SetStatus(StatusAdminActive, BackstopHealth{ThresholdMet: true, Q4WPctBps: 0})
	if err != nil || got != StatusAdminActive {
		t.Fatalf("SetStatus(AdminActive) healthy = (%d, %v), want (%d, nil)", got, err, StatusAdminActive)
	}
}

func TestSetStatusAdminOnIceRejectsAboveQ4WCeiling(t *testing.T) {
	if _, err := SetStatus(StatusAdminOnIce, BackstopHealth{Q4WPctBps: 7_500}); err != ErrInvalidPoolStatus {
		t.Fatalf("SetStatus(AdminOnIce) at 7500bps q4w = %v, want ErrInvalidPoolStatus", err)
	}
	got, err := SetStatus(StatusAdminOnIce, BackstopHealth{Q4WPctBps: 7_499})
	if err != nil || got != StatusAdminOnIce {
		t.Fatalf("SetStatus(AdminOnIce) under ceiling = (%d, %v), want (%d, nil)", got, err, StatusAdminOnIce)
	}
}

func TestSetStatusAdminFrozenAlwaysAllowed(t *testing.T) {
	got, err := SetStatus(StatusAdminFrozen, BackstopHealth{ThresholdMet: false, Q4WPctBps: 10_000})
	if err != nil || got != StatusAdminFrozen {
		t.Fatalf("SetStatus(AdminFrozen) = (%d, %v), want (%d, nil)", got, err, StatusAdminFrozen)
	}
}

func TestSetStatusRejectsBackstopDerivedStatuses(t *testing.T) {
	for _, s := range []Status{StatusBackstopActive, StatusBackstopOnIce, StatusBackstopFrozen} {
		if _, err := SetStatus(s, BackstopHealth{ThresholdMet: true}); err != ErrInvalidPoolStatus {
			t.Errorf("SetStatus(%d) = %v, want ErrInvalidPoolStatus (admin cannot set backstop-derived status)", s, err)
		}
	}
}

func TestActionAllowedGatesBorrowOnIceAndFrozen(t *testing.T) {
	for _, s := range []Status{StatusAdminOnIce, StatusBackstopOnIce, StatusAdminFrozen, StatusBackstopFrozen} {
		if ActionAllowed(s, ActionBorrow) {
			t.Errorf("ActionAllowed(%d, Borrow) = true, want false", s)
		}
	}
	if !ActionAllowed(StatusAdminActive, ActionBorrow) {
		t.Fatal("ActionAllowed(AdminActive, Borrow) = false, want true")
	}
}

func TestActionAllowedGatesSupplyOnlyWhenFrozen(t *testing.T) {
	if !ActionAllowed(StatusAdminOnIce, ActionSupply) {
		t.Fatal("ActionAllowed(AdminOnIce, Supply) = false, want true (on-ice still allows supply)")
	}
	for _, s := range []Status{StatusAdminFrozen, StatusBackstopFrozen} {
		if ActionAllowed(s, ActionSupply) {
			t.Errorf("ActionAllowed(%d, Supply) = true, want false", s)
		}
		if ActionAllowed(s, ActionSupplyCollateral) {
			t.Errorf("ActionAllowed(%d, SupplyCollateral) = true, want false", s)
		}
	}
}

func TestActionAllowedDefaultsTrueForOtherActions(t *testing.T) {
	if !ActionAllowed(StatusAdminFrozen, ActionWithdraw) {
		t.Fatal("ActionAllowed(AdminFrozen, Withdraw) = false, want true (withdrawals always permitted)")
	}
}

func TestCancelLiquidationAllowedMatchesBorrowGating(t *testing.T) {
	for _, s := range []Status{StatusAdminOnIce, StatusBackstopOnIce, StatusAdminFrozen, StatusBackstopFrozen} {
		if CancelLiquidationAllowed(s) {
			t.Errorf("CancelLiquidationAllowed(%d) = true, want false", s)
		}
	}
	if !CancelLiquidationAllowed(StatusAdminActive) {
		t.Fatal("CancelLiquidationAllowed(AdminActive) = false, want true")
	}
}
