package fixedpoint

import "math/big"

// ToAssetFromD converts a d-token share amount to underlying asset units,
// rounding up (liability rate rounds conservatively toward the pool).
func ToAssetFromD(shares, dRate *big.Int) *big.Int {
	return MulCeil(shares, dRate, SCALAR12)
}

// ToAssetFromB converts a b-token share amount to underlying asset units,
// rounding down.
func ToAssetFromB(shares, bRate *big.Int) *big.Int {
	return MulFloor(shares, bRate, SCALAR12)
}

// ToDUp converts an asset amount to d-token shares, rounding up.
func ToDUp(amount, dRate *big.Int) *big.Int {
	return DivCeil(amount, SCALAR12, dRate)
}

// ToDDown converts an asset amount to d-token shares, rounding down.
func ToDDown(amount, dRate *big.Int) *big.Int {
	return DivFloor(amount, SCALAR12, dRate)
}

// ToBUp converts an asset amount to b-token shares, rounding up.
func ToBUp(amount, bRate *big.Int) *big.Int {
	return DivCeil(amount, SCALAR12, bRate)
}

// ToBDown converts an asset amount to b-token shares, rounding down.
func ToBDown(amount, bRate *big.Int) *big.Int {
	return DivFloor(amount, SCALAR12, bRate)
}

// EffectiveLiability inflates a liability asset value by dividing by the
// liability factor (l_factor, 7-decimal), rounding up — a smaller l_factor
// makes debt count for *more* in the health check.
func EffectiveLiability(assetValue, lFactorBps *big.Int) *big.Int {
	if lFactorBps == nil || lFactorBps.Sign() == 0 {
		return Checked(new(big.Int).Set(assetValue))
	}
	return DivCeil(assetValue, SCALAR7, lFactorBps)
}

// EffectiveCollateral deflates a collateral asset value by multiplying by
// the collateral factor (c_factor, 7-decimal), rounding down.
func EffectiveCollateral(assetValue, cFactorBps *big.Int) *big.Int {
	return MulFloor(assetValue, cFactorBps, SCALAR7)
}
