package fixedpoint

import (
	"math/big"
	"testing"
)

func TestMulFloorRoundsDown(t *testing.T) {
	got := MulFloor(big.NewInt(10), big.NewInt(3), big.NewInt(4))
	if got.Cmp(big.NewInt(7)) != 0 {
		t.Fatalf("MulFloor(10,3,4) = %s, want 7", got)
	}
}

func TestMulCeilRoundsUp(t *testing.T) {
	got := MulCeil(big.NewInt(10), big.NewInt(3), big.NewInt(4))
	if got.Cmp(big.NewInt(8)) != 0 {
		t.Fatalf("MulCeil(10,3,4) = %s, want 8", got)
	}
}

func TestDivFloorAndDivCeil(t *testing.T) {
	floor := DivFloor(big.NewInt(7), big.NewInt(10), big.NewInt(3))
	if floor.Cmp(big.NewInt(23)) != 0 {
		t.Fatalf("DivFloor(7,10,3) = %s, want 23", floor)
	}
	ceil := DivCeil(big.NewInt(7), big.NewInt(10), big.NewInt(3))
	if ceil.Cmp(big.NewInt(24)) != 0 {
		t.Fatalf("DivCeil(7,10,3) = %s, want 24", ceil)
	}
}

func TestMulFloorZeroInputsShortCircuit(t *testing.T) {
	if got := MulFloor(nil, big.NewInt(5), big.NewInt(2)); got.Sign() != 0 {
		t.Fatalf("MulFloor with nil a = %s, want 0", got)
	}
	if got := MulFloor(big.NewInt(0), big.NewInt(5), big.NewInt(2)); got.Sign() != 0 {
		t.Fatalf("MulFloor with zero a = %s, want 0", got)
	}
}

func TestCheckedPanicsOnNegative(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Checked(-1) did not panic")
		}
	}()
	Checked(big.NewInt(-1))
}

func TestCheckedPanicsOnOverflow(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("Checked(2^127) did not panic")
		}
	}()
	tooBig := new(big.Int).Lsh(big.NewInt(1), 127)
	Checked(tooBig)
}

func TestRayMulRoundsToNearest(t *testing.T) {
	// 1.5 * 2.0 in SCALAR12 terms.
	a := new(big.Int).Mul(big.NewInt(3), new(big.Int).Div(SCALAR12, big.NewInt(2)))
	b := new(big.Int).Mul(big.NewInt(2), SCALAR12)
	got := RayMul(a, b)
	want := new(big.Int).Mul(big.NewInt(3), SCALAR12)
	if got.Cmp(want) != 0 {
		t.Fatalf("RayMul = %s, want %s", got, want)
	}
}

func TestUint256RoundTrip(t *testing.T) {
	v := big.NewInt(123456789)
	wide, ok := ToUint256(v)
	if !ok {
		t.Fatal("ToUint256 reported overflow for a small value")
	}
	back := FromUint256(wide)
	if back.Cmp(v) != 0 {
		t.Fatalf("round trip = %s, want %s", back, v)
	}
}

func TestToUint256RejectsNegative(t *testing.T) {
	if _, ok := ToUint256(big.NewInt(-1)); ok {
		t.Fatal("ToUint256 accepted a negative value")
	}
}
