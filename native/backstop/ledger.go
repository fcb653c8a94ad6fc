package backstop

import (
	"math/big"
	"sort"
)

// PoolBackstopData is one pool's slice of the shared backstop share ledger
// (spec.md §4.6).
type PoolBackstopData struct {
	TotalShares *big.Int
	TotalTokens *big.Int
	TotalQ4W    *big.Int // shares currently queued for withdrawal, across all users
}

// NewPoolBackstopData returns a zeroed ledger entry for a newly onboarded pool.
func NewPoolBackstopData() *PoolBackstopData {
	return &PoolBackstopData{TotalShares: big.NewInt(0), TotalTokens: big.NewInt(0), TotalQ4W: big.NewInt(0)}
}

// Q4WEntry is one queued-withdrawal record.
type Q4WEntry struct {
	Shares         *big.Int
	ExpirationTime uint64
}

// UserBalance is one user's holdings against one pool's backstop ledger.
type UserBalance struct {
	Shares *big.Int
	Q4W    []Q4WEntry
}

// NewUserBalance returns an empty balance.
func NewUserBalance() *UserBalance {
	return &UserBalance{Shares: big.NewInt(0)}
}

// valueOfShares converts shares to underlying tokens at the pool's current
// ratio, shares*TotalTokens/TotalShares rounded down, without materializing
// a fixed-point share price; it returns 0 when the pool has no shares.
func (p *PoolBackstopData) valueOfShares(shares *big.Int) *big.Int {
	if p.TotalShares.Sign() == 0 {
		return big.NewInt(0)
	}
	value := new(big.Int).Mul(shares, p.TotalTokens)
	return value.Quo(value, p.TotalShares)
}

// Deposit mints shares for amount tokens deposited, crediting the pool
// ledger and the user's balance. Genesis deposits (TotalShares == 0) mint
// 1:1.
func Deposit(pool *PoolBackstopData, user *UserBalance, amount *big.Int) (*big.Int, error) {
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	var shares *big.Int
	if pool.TotalShares.Sign() == 0 || pool.TotalTokens.Sign() == 0 {
		shares = new(big.Int).Set(amount)
	} else {
		shares = new(big.Int).Mul(amount, pool.TotalShares)
		shares.Quo(shares, pool.TotalTokens)
	}
	if shares.Sign() == 0 {
		return nil, ErrInvalidAmount
	}
	pool.TotalShares = new(big.Int).Add(pool.TotalShares, shares)
	pool.TotalTokens = new(big.Int).Add(pool.TotalTokens, amount)
	user.Shares = new(big.Int).Add(user.Shares, shares)
	return shares, nil
}

// QueueWithdrawal moves shares from freely-usable to queued, starting the
// 17-day lock. Entries beyond MaxQ4WEntries are rejected.
func QueueWithdrawal(pool *PoolBackstopData, user *UserBalance, shares *big.Int, now uint64) error {
	if shares == nil || shares.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if len(user.Q4W) >= MaxQ4WEntries {
		return ErrQ4WQueueFull
	}
	available := availableShares(user)
	if available.Cmp(shares) < 0 {
		return ErrInsufficientShares
	}
	user.Q4W = append(user.Q4W, Q4WEntry{Shares: new(big.Int).Set(shares), ExpirationTime: now + Q4WLockSeconds})
	pool.TotalQ4W = new(big.Int).Add(pool.TotalQ4W, shares)
	return nil
}

// DequeueWithdrawal cancels up to `shares` of queued withdrawal, LIFO (most
// recently queued first), restoring them to freely-usable status.
func DequeueWithdrawal(pool *PoolBackstopData, user *UserBalance, shares *big.Int) error {
	if shares == nil || shares.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if len(user.Q4W) == 0 {
		return ErrQ4WEmpty
	}
	remaining := new(big.Int).Set(shares)
	for i := len(user.Q4W) - 1; i >= 0 && remaining.Sign() > 0; i-- {
		entry := &user.Q4W[i]
		if entry.Shares.Cmp(remaining) <= 0 {
			remaining.Sub(remaining, entry.Shares)
			pool.TotalQ4W = new(big.Int).Sub(pool.TotalQ4W, entry.Shares)
			user.Q4W = append(user.Q4W[:i], user.Q4W[i+1:]...)
		} else {
			entry.Shares = new(big.Int).Sub(entry.Shares, remaining)
			pool.TotalQ4W = new(big.Int).Sub(pool.TotalQ4W, remaining)
			remaining = big.NewInt(0)
		}
	}
	if remaining.Sign() > 0 {
		return ErrQ4WInsufficient
	}
	return nil
}

// Withdraw redeems matured queued shares (FIFO, oldest first) for their
// current token value, burning the shares from both the pool and user
// ledgers. Returns the tokens released.
func Withdraw(pool *PoolBackstopData, user *UserBalance, shares *big.Int, now uint64) (*big.Int, error) {
	if shares == nil || shares.Sign() <= 0 {
		return nil, ErrInvalidAmount
	}
	sort.SliceStable(user.Q4W, func(i, j int) bool { return user.Q4W[i].ExpirationTime < user.Q4W[j].ExpirationTime })

	remaining := new(big.Int).Set(shares)
	matured := big.NewInt(0)
	idx := 0
	for idx < len(user.Q4W) && remaining.Sign() > 0 {
		entry := &user.Q4W[idx]
		if entry.ExpirationTime > now {
			break
		}
		if entry.Shares.Cmp(remaining) <= 0 {
			matured.Add(matured, entry.Shares)
			remaining.Sub(remaining, entry.Shares)
			idx++
		} else {
			matured.Add(matured, remaining)
			entry.Shares = new(big.Int).Sub(entry.Shares, remaining)
			remaining = big.NewInt(0)
		}
	}
	if remaining.Sign() > 0 {
		return nil, ErrQ4WNotMatured
	}
	user.Q4W = user.Q4W[idx:]

	value := pool.valueOfShares(matured)
	pool.TotalShares = new(big.Int).Sub(pool.TotalShares, matured)
	pool.TotalTokens = new(big.Int).Sub(pool.TotalTokens, value)
	pool.TotalQ4W = new(big.Int).Sub(pool.TotalQ4W, matured)
	user.Shares = new(big.Int).Sub(user.Shares, matured)
	return value, nil
}

// Donate credits tokens to the pool ledger without minting shares, raising
// the value of every existing share (spec.md §4.6 donate).
func Donate(pool *PoolBackstopData, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	pool.TotalTokens = new(big.Int).Add(pool.TotalTokens, amount)
	return nil
}

// Draw debits tokens from the pool ledger to cover bad debt, without
// burning shares, lowering the value of every remaining share.
func Draw(pool *PoolBackstopData, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}
	if pool.TotalTokens.Cmp(amount) < 0 {
		return ErrInsufficientTokens
	}
	pool.TotalTokens = new(big.Int).Sub(pool.TotalTokens, amount)
	return nil
}

func availableShares(user *UserBalance) *big.Int {
	queued := big.NewInt(0)
	for _, e := range user.Q4W {
		queued.Add(queued, e.Shares)
	}
	return new(big.Int).Sub(user.Shares, queued)
}

// Clone returns a deep copy of the pool backstop ledger entry.
func (p *PoolBackstopData) Clone() *PoolBackstopData {
	if p == nil {
		return nil
	}
	return &PoolBackstopData{
		TotalShares: new(big.Int).Set(p.TotalShares),
		TotalTokens: new(big.Int).Set(p.TotalTokens),
		TotalQ4W:    new(big.Int).Set(p.TotalQ4W),
	}
}

// Clone returns a deep copy of a user's backstop balance.
func (u *UserBalance) Clone() *UserBalance {
	if u == nil {
		return nil
	}
	clone := &UserBalance{Shares: new(big.Int).Set(u.Shares), Q4W: make([]Q4WEntry, len(u.Q4W))}
	for i, e := range u.Q4W {
		clone.Q4W[i] = Q4WEntry{Shares: new(big.Int).Set(e.Shares), ExpirationTime: e.ExpirationTime}
	}
	return clone
}
