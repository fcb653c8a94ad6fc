package pool

import (
	"math/big"
	"os"
	"path/filepath"
	"testing"
)

func writeGenesisFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "genesis.toml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

const sampleGenesisTOML = `
[Pool]
BstopRateBps = 1000
MaxPositions = 4
MinCollateral = "1000000"
FlashLoanFeeBps = 5
BorrowHealthBufferBps = 200
OracleMaxAgeSeconds = 300

[[Reserves]]
Asset = "USDC"
Index = 0
Decimals = 7
CFactorBps = 9500
LFactorBps = 9000
UtilTargetBps = 8000
MaxUtilBps = 9500
RBaseBps = 10
ROneBps = 400
RTwoBps = 2000
RThreeBps = 10000
ReactivityBps = 2000
SupplyCap = "1000000000000"
Enabled = true
ConfigTimelockSeconds = 604800

[[Reserves]]
Asset = "XLM"
Index = 1
Decimals = 7
CFactorBps = 7500
LFactorBps = 7000
UtilTargetBps = 7000
MaxUtilBps = 9000
RBaseBps = 20
ROneBps = 600
RTwoBps = 3000
RThreeBps = 15000
ReactivityBps = 2000
SupplyCap = ""
Enabled = true
ConfigTimelockSeconds = 604800
`

func TestLoadGenesisParsesPoolConfigAndReserves(t *testing.T) {
	path := writeGenesisFile(t, sampleGenesisTOML)

	cfg, seeds, err := LoadGenesis(path)
	if err != nil {
		t.Fatalf("LoadGenesis: %v", err)
	}
	if cfg.BstopRateBps != 1000 {
		t.Fatalf("BstopRateBps = %d, want 1000", cfg.BstopRateBps)
	}
	if cfg.MaxPositions != 4 {
		t.Fatalf("MaxPositions = %d, want 4", cfg.MaxPositions)
	}
	if cfg.MinCollateral.Cmp(big.NewInt(1_000_000)) != 0 {
		t.Fatalf("MinCollateral = %s, want 1000000", cfg.MinCollateral)
	}
	if len(seeds) != 2 {
		t.Fatalf("len(seeds) = %d, want 2", len(seeds))
	}
	if seeds[0].Asset != "USDC" || seeds[0].Config.Index != 0 {
		t.Fatalf("seeds[0] = %+v, want USDC at index 0", seeds[0])
	}
	if seeds[0].Config.SupplyCap.Cmp(big.NewInt(1_000_000_000_000)) != 0 {
		t.Fatalf("seeds[0].SupplyCap = %s, want 1000000000000", seeds[0].Config.SupplyCap)
	}
	if seeds[1].Asset != "XLM" || seeds[1].Config.SupplyCap.Sign() != 0 {
		t.Fatalf("seeds[1] = %+v, want XLM with zero (uncapped) SupplyCap", seeds[1])
	}
}

func TestLoadGenesisRejectsMissingFile(t *testing.T) {
	if _, _, err := LoadGenesis(filepath.Join(t.TempDir(), "does-not-exist.toml")); err == nil {
		t.Fatal("LoadGenesis on a missing file = nil error, want decode error")
	}
}

func TestLoadGenesisRejectsInvalidDecimalField(t *testing.T) {
	path := writeGenesisFile(t, `
[Pool]
MinCollateral = "not-a-number"

[[Reserves]]
Asset = "USDC"
Index = 0
`)
	if _, _, err := LoadGenesis(path); err == nil {
		t.Fatal("LoadGenesis with a non-numeric MinCollateral = nil error, want parse error")
	}
}
