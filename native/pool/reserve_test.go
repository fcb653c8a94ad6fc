package pool

import (
	"math/big"
	"testing"

	"blendpool/fixedpoint"
)

func testReserveConfig() ReserveConfig {
	return ReserveConfig{
		Index:         0,
		Decimals:      7,
		CFactorBps:    9_000,
		LFactorBps:    9_000,
		UtilTargetBps: 8_000,
		MaxUtilBps:    9_500,
		RBaseBps:      0,
		ROneBps:       400,
		RTwoBps:       3_000,
		RThreeBps:     10_000,
		ReactivityBps: 2_000,
		Enabled:       true,
	}
}

func TestNewReserveGenesisRates(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	if r.BRate.Cmp(fixedpoint.SCALAR12) != 0 {
		t.Fatalf("BRate = %s, want SCALAR12", r.BRate)
	}
	if r.DRate.Cmp(fixedpoint.SCALAR12) != 0 {
		t.Fatalf("DRate = %s, want SCALAR12", r.DRate)
	}
	if r.Utilization().Sign() != 0 {
		t.Fatal("a fresh reserve must start at zero utilization")
	}
}

func TestAccrueNoopWithoutElapsedTime(t *testing.T) {
	r := NewReserve(testReserveConfig(), 1000)
	r.BSupply = big.NewInt(1_000_000)
	r.DSupply = big.NewInt(500_000)
	delta := r.Accrue(1000)
	if delta.Sign() != 0 {
		t.Fatalf("Accrue at the same timestamp returned %s, want 0", delta)
	}
}

func TestAccrueGrowsDRate(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	r.BSupply = big.NewInt(1_000_000_000)
	r.DSupply = big.NewInt(800_000_000)
	before := new(big.Int).Set(r.DRate)
	r.Accrue(secondsPerYear)
	if r.DRate.Cmp(before) <= 0 {
		t.Fatalf("DRate did not grow under positive utilization: before=%s after=%s", before, r.DRate)
	}
}

func TestAccrueWithBackstopRateCreditsBackstop(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	r.BSupply = big.NewInt(1_000_000_000)
	r.DSupply = big.NewInt(800_000_000)
	deltaBC := r.AccrueWithBackstopRate(secondsPerYear, 1_000) // 10% take rate
	if deltaBC.Sign() <= 0 {
		t.Fatal("expected a positive backstop credit delta")
	}
	if r.BackstopCredit.Cmp(deltaBC) != 0 {
		t.Fatalf("BackstopCredit = %s, want %s", r.BackstopCredit, deltaBC)
	}
}

func TestBRateNeverDecreasesFromAccrual(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	r.BSupply = big.NewInt(1_000_000_000)
	r.DSupply = big.NewInt(10_000_000) // low utilization
	before := new(big.Int).Set(r.BRate)
	r.AccrueWithBackstopRate(secondsPerYear, 1_000)
	if r.BRate.Cmp(before) < 0 {
		t.Fatalf("BRate decreased: before=%s after=%s", before, r.BRate)
	}
}

func TestRequireUtilizationBelowMax(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	r.BSupply = big.NewInt(1_000_000_000)
	r.DSupply = new(big.Int).Set(fixedpoint.MulFloor(r.BSupply, big.NewInt(9_600_000), fixedpoint.SCALAR7))
	if err := r.RequireUtilizationBelowMax(); err == nil {
		t.Fatal("expected ErrInvalidUtilizationRate above MaxUtilBps")
	}
}

func TestRequireActionAllowedWhenDisabled(t *testing.T) {
	cfg := testReserveConfig()
	cfg.Enabled = false
	r := NewReserve(cfg, 0)
	if err := r.RequireActionAllowed(ActionSupply); err != ErrReserveDisabled {
		t.Fatalf("RequireActionAllowed(Supply) = %v, want ErrReserveDisabled", err)
	}
	if err := r.RequireActionAllowed(ActionRepay); err != nil {
		t.Fatalf("Repay must stay allowed while disabled, got %v", err)
	}
}

func TestDefaultReducesBRateNeverBelowZero(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	r.BSupply = big.NewInt(100)
	r.BRate = big.NewInt(10)
	hugeLoss := new(big.Int).Mul(big.NewInt(1_000_000), fixedpoint.SCALAR12)
	r.Default(hugeLoss)
	if r.BRate.Sign() < 0 {
		t.Fatal("BRate went negative after Default")
	}
}

func TestGulpDonatesSurplusToBRate(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	r.BSupply = big.NewInt(1_000_000)
	tracked := fixedpoint.MulFloor(r.BSupply, r.BRate, fixedpoint.SCALAR12)
	surplus := big.NewInt(1_000_000)
	reported := new(big.Int).Add(tracked, surplus)

	before := new(big.Int).Set(r.BRate)
	donated := r.Gulp(reported)
	if donated.Sign() <= 0 {
		t.Fatal("expected Gulp to donate a positive surplus")
	}
	if r.BRate.Cmp(before) <= 0 {
		t.Fatal("Gulp did not bump BRate")
	}
}

func TestGulpNoopWithoutSurplus(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	r.BSupply = big.NewInt(1_000_000)
	tracked := fixedpoint.MulFloor(r.BSupply, r.BRate, fixedpoint.SCALAR12)
	donated := r.Gulp(tracked)
	if donated.Sign() != 0 {
		t.Fatalf("Gulp donated %s with no surplus", donated)
	}
}

func TestRequireSupplyCapUncappedWhenNil(t *testing.T) {
	r := NewReserve(testReserveConfig(), 0)
	r.BSupply = big.NewInt(1_000_000_000)
	if err := r.RequireSupplyCap(); err != nil {
		t.Fatalf("RequireSupplyCap with no cap set = %v, want nil", err)
	}
}

func TestRequireSupplyCapRejectsOverCap(t *testing.T) {
	cfg := testReserveConfig()
	cfg.SupplyCap = big.NewInt(1_000)
	r := NewReserve(cfg, 0)
	r.BSupply = big.NewInt(1_001)
	if err := r.RequireSupplyCap(); err != ErrExceededSupplyCap {
		t.Fatalf("RequireSupplyCap over cap = %v, want ErrExceededSupplyCap", err)
	}
}

func TestRequireSupplyCapAllowsAtExactCap(t *testing.T) {
	cfg := testReserveConfig()
	cfg.SupplyCap = big.NewInt(1_000)
	r := NewReserve(cfg, 0)
	r.BSupply = big.NewInt(1_000)
	if err := r.RequireSupplyCap(); err != nil {
		t.Fatalf("RequireSupplyCap at exact cap = %v, want nil", err)
	}
}
