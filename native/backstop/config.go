package backstop

import (
	"math/big"

	"blendpool/fixedpoint"
)

// Q4WLockSeconds is the mandatory queue-for-withdrawal lock duration (spec.md
// §4.6: 17 days).
const Q4WLockSeconds = 17 * 24 * 3600

// MaxQ4WEntries bounds how many queued-withdrawal entries a single user may
// hold at once, preventing unbounded per-user storage growth.
const MaxQ4WEntries = 20

// MaxRewardZoneSize bounds how many pools may sit in the reward zone at once.
const MaxRewardZoneSize = 30

// EmissionWindowSeconds is the duration a gulped emission stream runs for
// (spec.md §4.7/§6: 7 days) before its eps expires and must be re-gulped.
const EmissionWindowSeconds = 7 * 24 * 3600

// Config is the backstop's governance-controlled, protocol-wide parameters.
type Config struct {
	// MinDepositThreshold is a pool backstop balance threshold (in backstop
	// tokens). Nothing in this package reads it: reward-zone admission does
	// not check it, and no status input is derived from it.
	MinDepositThreshold *big.Int `toml:"-"`

	// EmitterRate is the backstop-wide emission allowance, in tokens/second,
	// SCALAR7-scaled, that Distribute consumes since LastDistributionTime and
	// allocates pro-rata across the reward zone.
	EmitterRate *big.Int `toml:"-"`

	// MaxBackfillWindow bounds how many seconds of EmitterRate a single
	// reward-zone pool may accumulate in its RzEmissions bucket before a
	// gulp, so a dormant or newly-admitted pool cannot hoard an unbounded
	// backlog (spec.md's MAX_BACKFILLED_EMISSIONS).
	MaxBackfillWindow uint64
}

// Clone returns a deep copy of the config.
func (c Config) Clone() Config {
	clone := c
	if c.MinDepositThreshold != nil {
		clone.MinDepositThreshold = new(big.Int).Set(c.MinDepositThreshold)
	}
	if c.EmitterRate != nil {
		clone.EmitterRate = new(big.Int).Set(c.EmitterRate)
	}
	return clone
}

// DefaultConfig mirrors a conservative deployment default.
func DefaultConfig() Config {
	return Config{
		MinDepositThreshold: big.NewInt(0),
		EmitterRate:         new(big.Int).Set(fixedpoint.SCALAR7),
		MaxBackfillWindow:   EmissionWindowSeconds,
	}
}
