package token

import (
	"fmt"
	"math/big"

	"github.com/dgraph-io/badger/v4"
)

// LedgerToken is a Token backed directly by a badger database: it tracks
// every holder's balance of one asset as a JSON-encoded big.Int under a
// dedicated key, the same scheme the store package uses for engine state.
// There is no external chain or RPC client in this module to bind a real
// ERC20 contract against, so the module's own balances (and every
// counterparty's) live in the same database the pool/backstop engines
// persist their ledgers to.
type LedgerToken struct {
	db     *badger.DB
	asset  string
	holder string
}

// NewLedgerToken returns a Token for asset whose "own balance" (the
// receiving/spending side of Transfer/TransferFrom/BalanceOf) is holder —
// normally the pool or backstop module's own address.
func NewLedgerToken(db *badger.DB, asset, holder string) *LedgerToken {
	return &LedgerToken{db: db, asset: asset, holder: holder}
}

func ledgerBalanceKey(asset, holder string) string {
	return fmt.Sprintf("ledger:%s:balance:%s", asset, holder)
}

// Credit increases holder's balance of asset by amount, creating the
// account if absent. Used to seed test fixtures and to fund accounts from
// outside the engines (faucet/admin operations).
func Credit(db *badger.DB, asset, holder string, amount *big.Int) error {
	return adjustLedgerBalance(db, asset, holder, amount)
}

// Debit decreases holder's balance of asset by amount, failing if the
// resulting balance would go negative.
func Debit(db *badger.DB, asset, holder string, amount *big.Int) error {
	return adjustLedgerBalance(db, asset, holder, new(big.Int).Neg(amount))
}

func adjustLedgerBalance(db *badger.DB, asset, holder string, delta *big.Int) error {
	key := []byte(ledgerBalanceKey(asset, holder))
	return db.Update(func(txn *badger.Txn) error {
		current := new(big.Int)
		item, err := txn.Get(key)
		switch err {
		case nil:
			if err := item.Value(func(val []byte) error {
				return current.UnmarshalJSON(val)
			}); err != nil {
				return fmt.Errorf("token: decode balance %s/%s: %w", asset, holder, err)
			}
		case badger.ErrKeyNotFound:
		default:
			return err
		}
		next := new(big.Int).Add(current, delta)
		if next.Sign() < 0 {
			return fmt.Errorf("token: insufficient balance for %s/%s: have %s, need %s", asset, holder, current, new(big.Int).Neg(delta))
		}
		data, err := next.MarshalJSON()
		if err != nil {
			return fmt.Errorf("token: encode balance %s/%s: %w", asset, holder, err)
		}
		return txn.Set(key, data)
	})
}

func readLedgerBalance(db *badger.DB, asset, holder string) (*big.Int, error) {
	balance := new(big.Int)
	err := db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(ledgerBalanceKey(asset, holder)))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return balance.UnmarshalJSON(val)
		})
	})
	if err != nil {
		return nil, fmt.Errorf("token: read balance %s/%s: %w", asset, holder, err)
	}
	return balance, nil
}

// Transfer moves amount from the module's own holder balance to to.
func (t *LedgerToken) Transfer(to string, amount *big.Int) error {
	if err := Debit(t.db, t.asset, t.holder, amount); err != nil {
		return err
	}
	return Credit(t.db, t.asset, to, amount)
}

// TransferFrom moves amount from from to the module's own holder balance.
// The ledger token grants every engine an implicit allowance over accounts
// it is the sole mutator of; callers outside the engines never invoke
// TransferFrom directly.
func (t *LedgerToken) TransferFrom(from string, amount *big.Int) error {
	if err := Debit(t.db, t.asset, from, amount); err != nil {
		return err
	}
	return Credit(t.db, t.asset, t.holder, amount)
}

// BalanceOf returns holder's current balance of this token's asset.
func (t *LedgerToken) BalanceOf(holder string) (*big.Int, error) {
	return readLedgerBalance(t.db, t.asset, holder)
}

// Resolver resolves an asset symbol to a LedgerToken scoped to holder,
// satisfying pool.TokenResolver and any analogous backstop resolver.
type Resolver struct {
	db     *badger.DB
	holder string
}

// NewResolver returns a TokenResolver whose tokens all use holder (the
// owning module's own address) as the transfer/balance counterparty.
func NewResolver(db *badger.DB, holder string) *Resolver {
	return &Resolver{db: db, holder: holder}
}

// Resolve implements pool.TokenResolver. Every asset symbol resolves
// successfully: the ledger has no notion of an unsupported asset, only
// empty balances.
func (r *Resolver) Resolve(asset string) (Token, bool) {
	return NewLedgerToken(r.db, asset, r.holder), true
}

// MustResolve is a convenience wrapper for callers (such as an emissions
// engine constructor) that need a single Token outright rather than a
// resolver, since Resolve on this implementation never fails.
func (r *Resolver) MustResolve(asset string) Token {
	tok, _ := r.Resolve(asset)
	return tok
}
