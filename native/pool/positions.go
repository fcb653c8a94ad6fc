package pool

import "math/big"

// Positions holds a user's per-reserve-index share balances for a single
// pool (spec.md §3). Entries at zero are always pruned so EffectiveCount and
// equality checks stay simple across implementations.
type Positions struct {
	Liabilities map[uint32]*big.Int
	Collateral  map[uint32]*big.Int
	Supply      map[uint32]*big.Int
}

// NewPositions returns an empty Positions set.
func NewPositions() *Positions {
	return &Positions{
		Liabilities: make(map[uint32]*big.Int),
		Collateral:  make(map[uint32]*big.Int),
		Supply:      make(map[uint32]*big.Int),
	}
}

// EffectiveCount is |liabilities| + |collateral|, bounded by max_positions.
func (p *Positions) EffectiveCount() int {
	return len(p.Liabilities) + len(p.Collateral)
}

// AddLiability increases the liability share balance at index, creating the
// entry if absent.
func (p *Positions) AddLiability(index uint32, amount *big.Int) {
	addShares(p.Liabilities, index, amount)
}

// AddCollateral increases the collateral share balance at index.
func (p *Positions) AddCollateral(index uint32, amount *big.Int) {
	addShares(p.Collateral, index, amount)
}

// AddSupply increases the non-collateral supply share balance at index.
func (p *Positions) AddSupply(index uint32, amount *big.Int) {
	addShares(p.Supply, index, amount)
}

// SubLiability decreases the liability share balance, pruning zero entries.
// It panics if amount exceeds the current balance (a caller bug).
func (p *Positions) SubLiability(index uint32, amount *big.Int) {
	subShares(p.Liabilities, index, amount)
}

// SubCollateral decreases the collateral share balance, pruning zero entries.
func (p *Positions) SubCollateral(index uint32, amount *big.Int) {
	subShares(p.Collateral, index, amount)
}

// SubSupply decreases the non-collateral supply share balance, pruning zero
// entries.
func (p *Positions) SubSupply(index uint32, amount *big.Int) {
	subShares(p.Supply, index, amount)
}

func addShares(m map[uint32]*big.Int, index uint32, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	cur, ok := m[index]
	if !ok {
		m[index] = new(big.Int).Set(amount)
		return
	}
	cur.Add(cur, amount)
}

func subShares(m map[uint32]*big.Int, index uint32, amount *big.Int) {
	if amount == nil || amount.Sign() == 0 {
		return
	}
	cur, ok := m[index]
	if !ok {
		panic("pool: subtracting from absent position")
	}
	if cur.Cmp(amount) < 0 {
		panic("pool: subtracting more shares than held")
	}
	cur.Sub(cur, amount)
	if cur.Sign() == 0 {
		delete(m, index)
	}
}

// Clone returns a deep copy of the positions.
func (p *Positions) Clone() *Positions {
	clone := NewPositions()
	for k, v := range p.Liabilities {
		clone.Liabilities[k] = new(big.Int).Set(v)
	}
	for k, v := range p.Collateral {
		clone.Collateral[k] = new(big.Int).Set(v)
	}
	for k, v := range p.Supply {
		clone.Supply[k] = new(big.Int).Set(v)
	}
	return clone
}
