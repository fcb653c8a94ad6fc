// Package fixedpoint implements the protocol's integer fixed-point math:
// explicit scalars, explicit rounding, and checked overflow. Amounts are
// modelled as math/big.Int internally (the accrual series in the reserve
// engine are exact-rational computations that are awkward to express in
// fixed-width arithmetic), but every result is range-checked against the
// spec's signed-128-bit budget and panics if exceeded, matching "overflow
// must panic" and "negative values represent bugs and must panic".
package fixedpoint

import (
	"math/big"

	"github.com/holiman/uint256"
)

var (
	// SCALAR7 scales interest-rate modifiers and emission basis-point style
	// fields.
	SCALAR7 = big.NewInt(10_000_000)
	// SCALAR12 scales b_rate/d_rate.
	SCALAR12 = big.NewInt(1_000_000_000_000)
	// SCALAR14 scales emission eps/index fields.
	SCALAR14 = big.NewInt(100_000_000_000_000)

	half7  = new(big.Int).Rsh(SCALAR7, 1)
	half12 = new(big.Int).Rsh(SCALAR12, 1)
	half14 = new(big.Int).Rsh(SCALAR14, 1)

	// maxI128 is the largest magnitude a signed 128-bit integer can hold;
	// every checked result is bounded to this range.
	maxI128 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1))
)

// Checked panics if v is negative or exceeds the signed-128-bit range, and
// otherwise returns v unchanged. Every public arithmetic helper in this
// package routes its result through Checked before returning it.
func Checked(v *big.Int) *big.Int {
	if v == nil {
		panic("fixedpoint: nil result")
	}
	if v.Sign() < 0 {
		panic("fixedpoint: negative amount")
	}
	if v.CmpAbs(maxI128) > 0 {
		panic("fixedpoint: overflow")
	}
	return v
}

// MulFloor computes floor(a*b/scalar).
func MulFloor(a, b, scalar *big.Int) *big.Int {
	if a == nil || b == nil || a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	result := new(big.Int).Mul(a, b)
	result.Quo(result, scalar)
	return Checked(result)
}

// MulCeil computes ceil(a*b/scalar).
func MulCeil(a, b, scalar *big.Int) *big.Int {
	if a == nil || b == nil || a.Sign() == 0 || b.Sign() == 0 {
		return big.NewInt(0)
	}
	product := new(big.Int).Mul(a, b)
	result := ceilDiv(product, scalar)
	return Checked(result)
}

// DivFloor computes floor(a*scalar/b).
func DivFloor(a, scalar, b *big.Int) *big.Int {
	if a == nil || a.Sign() == 0 || b == nil || b.Sign() == 0 {
		return big.NewInt(0)
	}
	numerator := new(big.Int).Mul(a, scalar)
	result := new(big.Int).Quo(numerator, b)
	return Checked(result)
}

// DivCeil computes ceil(a*scalar/b).
func DivCeil(a, scalar, b *big.Int) *big.Int {
	if a == nil || a.Sign() == 0 || b == nil || b.Sign() == 0 {
		return big.NewInt(0)
	}
	numerator := new(big.Int).Mul(a, scalar)
	return Checked(ceilDiv(numerator, b))
}

func ceilDiv(numerator, denominator *big.Int) *big.Int {
	quotient, remainder := new(big.Int).QuoRem(numerator, denominator, new(big.Int))
	if remainder.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	return quotient
}

// HalfUp returns ceil(x/2), used internally by rate-factor rounding.
func HalfUp(x *big.Int) *big.Int {
	if x == nil || x.Sign() <= 0 {
		return big.NewInt(0)
	}
	v := new(big.Int).Add(x, big.NewInt(1))
	return Checked(v.Rsh(v, 1))
}

// RayMul multiplies two SCALAR12-scaled values, rounding to nearest.
func RayMul(a, b *big.Int) *big.Int {
	if a == nil || b == nil {
		return big.NewInt(0)
	}
	product := new(big.Int).Mul(a, b)
	product.Add(product, half12)
	product.Quo(product, SCALAR12)
	return Checked(product)
}

// ToUint256 widens a checked amount to a 256-bit word for wire encoding at
// RPC/event boundaries, detecting overflow explicitly rather than silently
// wrapping.
func ToUint256(v *big.Int) (*uint256.Int, bool) {
	if v == nil || v.Sign() < 0 {
		return nil, false
	}
	out, overflow := uint256.FromBig(v)
	if overflow {
		return nil, false
	}
	return out, true
}

// FromUint256 narrows a 256-bit wire value back into a big.Int, checking it
// still fits the protocol's i128 budget.
func FromUint256(v *uint256.Int) *big.Int {
	if v == nil {
		return big.NewInt(0)
	}
	return Checked(v.ToBig())
}
