package backstop

import "math/big"

// RewardZone is the ordered set of pools eligible for backstop emissions
// (spec.md §4.7), capped at MaxRewardZoneSize.
type RewardZone struct {
	Pools []string
}

// NewRewardZone returns an empty reward zone.
func NewRewardZone() *RewardZone { return &RewardZone{} }

// Contains reports whether poolID currently holds a reward-zone seat.
func (z *RewardZone) Contains(poolID string) bool {
	for _, p := range z.Pools {
		if p == poolID {
			return true
		}
	}
	return false
}

// AddReward admits poolID to the zone. If the zone is full, poolID replaces
// toSwap, a current member named by the caller, provided poolBalance strictly
// exceeds swapBalance; otherwise the call is rejected. Whether toSwap is the
// weakest member is not checked.
func (z *RewardZone) AddReward(poolID string, toSwap string, poolBalance, swapBalance *big.Int) error {
	if z.Contains(poolID) {
		return nil
	}
	if len(z.Pools) < MaxRewardZoneSize {
		z.Pools = append(z.Pools, poolID)
		return nil
	}
	if toSwap == "" || !z.Contains(toSwap) {
		return ErrRewardZoneFull
	}
	if poolBalance == nil || swapBalance == nil || poolBalance.Cmp(swapBalance) <= 0 {
		return ErrRewardZoneSwapTooSmall
	}
	for i, p := range z.Pools {
		if p == toSwap {
			z.Pools[i] = poolID
			return nil
		}
	}
	return ErrRewardZoneFull
}

// RemoveReward evicts poolID from the zone (e.g. once its pool status goes
// to Frozen). No-op if poolID is not a member.
func (z *RewardZone) RemoveReward(poolID string) {
	for i, p := range z.Pools {
		if p == poolID {
			z.Pools = append(z.Pools[:i], z.Pools[i+1:]...)
			return
		}
	}
}

// Clone returns a deep copy of the reward zone.
func (z *RewardZone) Clone() *RewardZone {
	if z == nil {
		return nil
	}
	clone := &RewardZone{Pools: make([]string, len(z.Pools))}
	copy(clone.Pools, z.Pools)
	return clone
}
