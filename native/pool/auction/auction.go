// Package auction implements the three-phase Dutch auction mechanics of
// spec.md §4.3: creation, linear scaling, fill, and stale deletion. It is a
// sub-package of native/pool (auction lifecycle is pool-owned state) kept
// separate because the scaling/fill math is self-contained and reused
// identically across the three auction kinds.
package auction

import "math/big"

// Kind identifies which of the three auction types this is.
type Kind uint8

const (
	KindUserLiquidation Kind = 0
	KindBadDebt         Kind = 1
	KindInterest        Kind = 2
)

// Auction is the on-chain auction record of spec.md §3.
type Auction struct {
	Kind  Kind
	User  string
	Block uint64
	Bid   map[uint32]*big.Int
	Lot   map[uint32]*big.Int
}

// New constructs an auction with the given unscaled bid/lot maps and the
// creation block.
func New(kind Kind, user string, bid, lot map[uint32]*big.Int, block uint64) *Auction {
	return &Auction{Kind: kind, User: user, Block: block, Bid: bid, Lot: lot}
}

// Scale computes the piecewise-linear (f_lot, f_bid) ramps of spec.md §4.3
// for the given current block.
func Scale(a *Auction, currentBlock uint64) (fLot, fBid *big.Rat) {
	delta := int64(currentBlock) - int64(a.Block)
	if delta < 0 {
		delta = 0
	}
	switch {
	case delta <= 200:
		return big.NewRat(delta, 200), big.NewRat(1, 1)
	case delta <= 400:
		return big.NewRat(1, 1), new(big.Rat).Sub(big.NewRat(1, 1), big.NewRat(delta-200, 200))
	default:
		return big.NewRat(1, 1), big.NewRat(0, 1)
	}
}

// IsStale reports whether the auction has passed block 500 and may be
// deleted without a fill.
func IsStale(a *Auction, currentBlock uint64) bool {
	delta := int64(currentBlock) - int64(a.Block)
	return delta > 500
}

// FillResult is the outcome of scaling and applying a partial or full fill.
type FillResult struct {
	BidFilled map[uint32]*big.Int
	LotFilled map[uint32]*big.Int
	// Complete is true when this fill exhausted the auction (fill_percent
	// == 100), signalling the caller should delete the auction record.
	Complete bool
}

// Fill applies fillPercent (1-100) against the auction's current bid/lot at
// the scaling implied by currentBlock, per spec.md §4.3's ceil(bid)/floor(lot)
// rounding rule. It mutates a.Bid/a.Lot to remove the filled (unscaled)
// portion when the fill is partial, and returns the scaled amounts the
// caller must actually transfer.
func Fill(a *Auction, fillPercent uint64, currentBlock uint64) FillResult {
	if fillPercent == 0 {
		fillPercent = 100
	}
	p := big.NewRat(int64(fillPercent), 100)
	fLot, fBid := Scale(a, currentBlock)

	result := FillResult{
		BidFilled: make(map[uint32]*big.Int),
		LotFilled: make(map[uint32]*big.Int),
	}

	unscaledBidRemoved := make(map[uint32]*big.Int)
	unscaledLotRemoved := make(map[uint32]*big.Int)

	for asset, amount := range a.Bid {
		scaled := new(big.Rat).Mul(p, fBid)
		result.BidFilled[asset] = ratMulCeil(amount, scaled)
		unscaledBidRemoved[asset] = ratMulCeil(amount, p)
	}
	for asset, amount := range a.Lot {
		scaled := new(big.Rat).Mul(p, fLot)
		result.LotFilled[asset] = ratMulFloor(amount, scaled)
		unscaledLotRemoved[asset] = ratMulFloor(amount, p)
	}

	if fillPercent >= 100 {
		result.Complete = true
		return result
	}

	for asset, removed := range unscaledBidRemoved {
		remaining := new(big.Int).Sub(a.Bid[asset], removed)
		if remaining.Sign() <= 0 {
			delete(a.Bid, asset)
		} else {
			a.Bid[asset] = remaining
		}
	}
	for asset, removed := range unscaledLotRemoved {
		remaining := new(big.Int).Sub(a.Lot[asset], removed)
		if remaining.Sign() <= 0 {
			delete(a.Lot, asset)
		} else {
			a.Lot[asset] = remaining
		}
	}
	return result
}

func ratMulCeil(amount *big.Int, factor *big.Rat) *big.Int {
	num := new(big.Int).Mul(amount, factor.Num())
	den := factor.Denom()
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))
	if r.Sign() != 0 {
		q.Add(q, big.NewInt(1))
	}
	return q
}

func ratMulFloor(amount *big.Int, factor *big.Rat) *big.Int {
	num := new(big.Int).Mul(amount, factor.Num())
	den := factor.Denom()
	return new(big.Int).Quo(num, den)
}
