package oracle

import (
	"encoding/json"
	"fmt"
	"math/big"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

// StoreOracle is a push-model Oracle: an operator (or an external feeder
// process) writes quotes in over SetPrice, typically from an admin HTTP
// route, and the pool engine reads them back through LastPrice. It keeps a
// decimals-scoped read-through cache over badger so restarts do not lose the
// last quote for every configured asset.
type StoreOracle struct {
	db       *badger.DB
	decimals uint8

	mu     sync.RWMutex
	cached map[string]Price
}

// NewStoreOracle returns an oracle reporting prices scaled to decimals.
func NewStoreOracle(db *badger.DB, decimals uint8) *StoreOracle {
	return &StoreOracle{db: db, decimals: decimals, cached: make(map[string]Price)}
}

func oraclePriceKey(asset string) string { return fmt.Sprintf("oracle:price:%s", asset) }

type storedPrice struct {
	Value     *big.Int
	Timestamp uint64
}

// SetPrice records the latest observed price for asset, persisting it and
// updating the in-memory cache LastPrice reads from.
func (o *StoreOracle) SetPrice(asset string, value *big.Int, timestamp uint64) error {
	rec := storedPrice{Value: value, Timestamp: timestamp}
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("oracle: marshal price %s: %w", asset, err)
	}
	if err := o.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(oraclePriceKey(asset)), data)
	}); err != nil {
		return fmt.Errorf("oracle: persist price %s: %w", asset, err)
	}
	o.mu.Lock()
	o.cached[asset] = Price{Value: value, Timestamp: timestamp}
	o.mu.Unlock()
	return nil
}

// LastPrice implements Oracle, preferring the in-memory cache and falling
// back to badger (e.g. immediately after process start before any cache
// miss has been repopulated).
func (o *StoreOracle) LastPrice(asset string) (Price, bool) {
	o.mu.RLock()
	price, ok := o.cached[asset]
	o.mu.RUnlock()
	if ok {
		return price, true
	}

	var rec storedPrice
	found := false
	err := o.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(oraclePriceKey(asset)))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		found = true
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err != nil || !found {
		return Price{}, false
	}
	price = Price{Value: rec.Value, Timestamp: rec.Timestamp}
	o.mu.Lock()
	o.cached[asset] = price
	o.mu.Unlock()
	return price, true
}

// Decimals implements Oracle.
func (o *StoreOracle) Decimals() uint8 { return o.decimals }
