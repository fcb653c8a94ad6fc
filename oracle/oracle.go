// Package oracle declares the external price-feed collaborator interface
// (spec.md §1/§6). The pool engine never implements price discovery itself —
// it only consumes whatever this interface returns, exactly as spec.md
// requires ("returns (price, timestamp) per asset").
package oracle

import "math/big"

// Price is the oracle's reported value for one asset, expressed in the
// oracle's own base-unit decimals, alongside the unix-seconds timestamp it
// was observed at.
type Price struct {
	Value     *big.Int
	Timestamp uint64
}

// Oracle is the narrow interface the pool engine calls through. A missing
// quote is signalled by ok == false, matching the Rust source's
// `lastprice(asset) -> Option<PriceData>`.
type Oracle interface {
	LastPrice(asset string) (Price, bool)
	Decimals() uint8
}
