package observability

import (
	"math/big"
	"testing"
)

func TestNilPoolMetricsMethodsAreNoops(t *testing.T) {
	var m *PoolMetrics
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("nil *PoolMetrics method panicked: %v", r)
		}
	}()
	m.ObserveRequest("pool-1", "supply", nil)
	m.ObserveSubmit("pool-1", 0)
	m.RecordAuctionCreated("pool-1", 0)
	m.RecordAuctionFill("pool-1", 0, true)
	m.RecordBadDebt("pool-1")
	m.SetStatus("pool-1", 1)
}

func TestNilBackstopMetricsMethodsAreNoops(t *testing.T) {
	var m *BackstopMetrics
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("nil *BackstopMetrics method panicked: %v", r)
		}
	}()
	m.RecordShareEvent("pool-1", "deposit")
	m.SetTotals("pool-1", big.NewInt(1), big.NewInt(2))
	m.RecordClaim("pool-1")
}

func TestPoolAndBackstopRegistriesAreSingletons(t *testing.T) {
	if Pool() != Pool() {
		t.Fatal("Pool() returned different instances across calls, want a singleton")
	}
	if Backstop() != Backstop() {
		t.Fatal("Backstop() returned different instances across calls, want a singleton")
	}
}

func TestLabelPoolAndLabelActionFallBackOnBlank(t *testing.T) {
	if got := labelPool("  "); got != "unknown" {
		t.Fatalf("labelPool(blank) = %q, want unknown", got)
	}
	if got := labelPool(" pool-9 "); got != "pool-9" {
		t.Fatalf("labelPool = %q, want trimmed pool-9", got)
	}
	if got := labelAction(""); got != "unknown" {
		t.Fatalf("labelAction(\"\") = %q, want unknown", got)
	}
	if got := labelAction(" Supply "); got != "supply" {
		t.Fatalf("labelAction = %q, want lowercased supply", got)
	}
}

func TestAuctionKindLabelCoversKnownAndUnknown(t *testing.T) {
	cases := map[uint8]string{0: "user_liquidation", 1: "bad_debt", 2: "interest", 9: "unknown"}
	for kind, want := range cases {
		if got := auctionKindLabel(kind); got != want {
			t.Errorf("auctionKindLabel(%d) = %q, want %q", kind, got, want)
		}
	}
}

func TestBigToFloatHandlesNil(t *testing.T) {
	if got := bigToFloat(nil); got != 0 {
		t.Fatalf("bigToFloat(nil) = %v, want 0", got)
	}
	if got := bigToFloat(big.NewInt(42)); got != 42 {
		t.Fatalf("bigToFloat(42) = %v, want 42", got)
	}
}
