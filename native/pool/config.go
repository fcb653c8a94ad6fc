package pool

import "math/big"

// ReserveConfig is the static, governance-controlled configuration for a
// single reserve (spec.md §3 "Static config").
type ReserveConfig struct {
	Index      uint32 `toml:"Index" json:"index"`
	Decimals   uint8  `toml:"Decimals" json:"decimals"`
	CFactorBps uint64 `toml:"CFactorBps" json:"c_factor_bps"`
	LFactorBps uint64 `toml:"LFactorBps" json:"l_factor_bps"`

	// UtilTargetBps is the target utilization used by the kinked rate curve
	// (spec.md §4.1 step 2).
	UtilTargetBps uint64 `toml:"UtilTargetBps" json:"util_target_bps"`
	// MaxUtilBps bounds utilization for supply/borrow gating.
	MaxUtilBps uint64 `toml:"MaxUtilBps" json:"max_util_bps"`

	// RBase/ROne/RTwo/RThree are the kinked interest-rate slopes, 7-decimal
	// fixed point APR fractions.
	RBaseBps  uint64 `toml:"RBaseBps" json:"r_base_bps"`
	ROneBps   uint64 `toml:"ROneBps" json:"r_one_bps"`
	RTwoBps   uint64 `toml:"RTwoBps" json:"r_two_bps"`
	RThreeBps uint64 `toml:"RThreeBps" json:"r_three_bps"`

	// ReactivityBps controls how fast ir_mod converges toward the target
	// rate (spec.md §4.1 step 3).
	ReactivityBps uint64 `toml:"ReactivityBps" json:"reactivity_bps"`

	SupplyCap *big.Int `toml:"-" json:"supply_cap"`
	Enabled   bool     `toml:"Enabled" json:"enabled"`

	// ConfigTimelockSeconds is the delay queue_set_reserve must wait before
	// set_reserve may apply the change (§12 supplemented feature).
	ConfigTimelockSeconds uint64 `toml:"ConfigTimelockSeconds" json:"config_timelock_seconds"`
}

// Clone returns a deep copy of the reserve config.
func (c ReserveConfig) Clone() ReserveConfig {
	clone := c
	if c.SupplyCap != nil {
		clone.SupplyCap = new(big.Int).Set(c.SupplyCap)
	}
	return clone
}

// PoolConfig captures the pool-wide governance knobs from spec.md §6
// (`update_pool`).
type PoolConfig struct {
	BstopRateBps     uint64   `toml:"BstopRateBps"`
	MaxPositions     uint32   `toml:"MaxPositions"`
	MinCollateral    *big.Int `toml:"-"`
	FlashLoanFeeBps  uint64   `toml:"FlashLoanFeeBps"`
	// BorrowHealthBufferBps is the small buffer added to liab_val in the
	// borrow-healthy check, in SCALAR7 units (1e-7) despite the Bps name:
	// liab_val is scaled by 1 + BorrowHealthBufferBps/1e7, so 100 gives the
	// factor 1.0000100.
	BorrowHealthBufferBps uint64 `toml:"BorrowHealthBufferBps"`
	OracleMaxAgeSeconds   uint64 `toml:"OracleMaxAgeSeconds"`
}

// Clone returns a deep copy of the pool config.
func (c PoolConfig) Clone() PoolConfig {
	clone := c
	if c.MinCollateral != nil {
		clone.MinCollateral = new(big.Int).Set(c.MinCollateral)
	}
	return clone
}

// DefaultPoolConfig mirrors the conservative defaults a freshly deployed
// pool would ship with.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		BstopRateBps:          0,
		MaxPositions:          12,
		MinCollateral:         big.NewInt(0),
		FlashLoanFeeBps:       0,
		BorrowHealthBufferBps: 100, // 0.001% over 1.0, i.e. 1.0000100
		OracleMaxAgeSeconds:   24 * 3600,
	}
}
