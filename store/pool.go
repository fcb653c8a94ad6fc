package store

import (
	"fmt"

	"blendpool/native/emission"
	"blendpool/native/pool"
	"blendpool/native/pool/auction"
)

// PoolStore adapts Store to pool.EngineState and pool.EmissionState for one
// pool ID namespace (keys are additionally scoped by poolID so a single
// badger database serves every pool a poold instance hosts).
type PoolStore struct {
	s *Store
}

// NewPoolStore wraps s for pool-module persistence.
func NewPoolStore(s *Store) *PoolStore { return &PoolStore{s: s} }

type reserveRecord struct {
	Asset   string
	Reserve *pool.Reserve
}

func reserveKey(poolID string, index uint32) string {
	return fmt.Sprintf("pool:%s:reserve:%010d", poolID, index)
}

func reservePrefix(poolID string) string {
	return fmt.Sprintf("pool:%s:reserve:", poolID)
}

func (ps *PoolStore) GetReserve(poolID string, index uint32) (*pool.Reserve, string, bool, error) {
	var rec reserveRecord
	ok, err := getJSON(ps.s.db, reserveKey(poolID, index), &rec)
	if err != nil || !ok {
		return nil, "", ok, err
	}
	return rec.Reserve, rec.Asset, true, nil
}

func (ps *PoolStore) PutReserve(poolID string, index uint32, asset string, reserve *pool.Reserve) error {
	return putJSON(ps.s.db, reserveKey(poolID, index), reserveRecord{Asset: asset, Reserve: reserve})
}

func (ps *PoolStore) ListReserveIndices(poolID string) ([]uint32, error) {
	suffixes, err := scanSuffixes(ps.s.db, reservePrefix(poolID))
	if err != nil {
		return nil, err
	}
	indices := make([]uint32, 0, len(suffixes))
	for _, suf := range suffixes {
		var idx uint32
		if _, err := fmt.Sscanf(suf, "%d", &idx); err != nil {
			continue
		}
		indices = append(indices, idx)
	}
	return indices, nil
}

func positionsKey(poolID, user string) string {
	return fmt.Sprintf("pool:%s:positions:%s", poolID, user)
}

func (ps *PoolStore) GetPositions(poolID, user string) (*pool.Positions, error) {
	var p pool.Positions
	ok, err := getJSON(ps.s.db, positionsKey(poolID, user), &p)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &p, nil
}

func (ps *PoolStore) PutPositions(poolID, user string, positions *pool.Positions) error {
	return putJSON(ps.s.db, positionsKey(poolID, user), positions)
}

func auctionKey(poolID string, kind auction.Kind, user string) string {
	return fmt.Sprintf("pool:%s:auction:%d:%s", poolID, kind, user)
}

func auctionPrefix(poolID string) string {
	return fmt.Sprintf("pool:%s:auction:", poolID)
}

func (ps *PoolStore) GetAuction(poolID string, kind auction.Kind, user string) (*auction.Auction, bool, error) {
	var a auction.Auction
	ok, err := getJSON(ps.s.db, auctionKey(poolID, kind, user), &a)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &a, true, nil
}

func (ps *PoolStore) PutAuction(poolID string, a *auction.Auction) error {
	return putJSON(ps.s.db, auctionKey(poolID, a.Kind, a.User), a)
}

func (ps *PoolStore) DeleteAuction(poolID string, kind auction.Kind, user string) error {
	return deleteKey(ps.s.db, auctionKey(poolID, kind, user))
}

func (ps *PoolStore) ListAuctions(poolID string) ([]*auction.Auction, error) {
	var out []*auction.Auction
	err := scanValues(ps.s.db, auctionPrefix(poolID), func(_ string, val []byte) error {
		var a auction.Auction
		if err := jsonUnmarshal(val, &a); err != nil {
			return err
		}
		out = append(out, &a)
		return nil
	})
	return out, err
}

func configKey(poolID string) string { return fmt.Sprintf("pool:%s:config", poolID) }

func (ps *PoolStore) GetPoolConfig(poolID string) (*pool.PoolConfig, bool, error) {
	var cfg pool.PoolConfig
	ok, err := getJSON(ps.s.db, configKey(poolID), &cfg)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &cfg, true, nil
}

func (ps *PoolStore) PutPoolConfig(poolID string, cfg *pool.PoolConfig) error {
	return putJSON(ps.s.db, configKey(poolID), cfg)
}

func statusKey(poolID string) string { return fmt.Sprintf("pool:%s:status", poolID) }

func (ps *PoolStore) GetStatus(poolID string) (pool.Status, error) {
	var status pool.Status
	ok, err := getJSON(ps.s.db, statusKey(poolID), &status)
	if err != nil || !ok {
		return pool.StatusAdminActive, err
	}
	return status, nil
}

func (ps *PoolStore) PutStatus(poolID string, status pool.Status) error {
	return putJSON(ps.s.db, statusKey(poolID), status)
}

type queuedReserveRecord struct {
	Cfg     *pool.ReserveConfig
	ReadyAt uint64
}

func queuedReserveKey(poolID string, index uint32) string {
	return fmt.Sprintf("pool:%s:queued_reserve:%010d", poolID, index)
}

func (ps *PoolStore) GetQueuedReserveConfig(poolID string, index uint32) (*pool.ReserveConfig, uint64, bool, error) {
	var rec queuedReserveRecord
	ok, err := getJSON(ps.s.db, queuedReserveKey(poolID, index), &rec)
	if err != nil || !ok {
		return nil, 0, ok, err
	}
	return rec.Cfg, rec.ReadyAt, true, nil
}

func (ps *PoolStore) PutQueuedReserveConfig(poolID string, index uint32, cfg *pool.ReserveConfig, readyAt uint64) error {
	return putJSON(ps.s.db, queuedReserveKey(poolID, index), queuedReserveRecord{Cfg: cfg, ReadyAt: readyAt})
}

func (ps *PoolStore) ClearQueuedReserveConfig(poolID string, index uint32) error {
	return deleteKey(ps.s.db, queuedReserveKey(poolID, index))
}

// Pool-side emissions (pool.EmissionState).

func reserveEmissionsKey(poolID string, index uint32) string {
	return fmt.Sprintf("pool:%s:emissions:%010d", poolID, index)
}

func (ps *PoolStore) GetReserveEmissions(poolID string, index uint32) (*pool.ReserveEmissions, bool, error) {
	var em pool.ReserveEmissions
	ok, err := getJSON(ps.s.db, reserveEmissionsKey(poolID, index), &em)
	if err != nil || !ok {
		return nil, ok, err
	}
	return &em, true, nil
}

func (ps *PoolStore) PutReserveEmissions(poolID string, index uint32, emissions *pool.ReserveEmissions) error {
	return putJSON(ps.s.db, reserveEmissionsKey(poolID, index), emissions)
}

func userEmissionKey(poolID, user string, index uint32, supplySide bool) string {
	side := "borrow"
	if supplySide {
		side = "supply"
	}
	return fmt.Sprintf("pool:%s:emission_pos:%010d:%s:%s", poolID, index, side, user)
}

func (ps *PoolStore) GetUserReserveEmissionPosition(poolID, user string, index uint32, supplySide bool) (*emission.UserPosition, error) {
	var pos emission.UserPosition
	ok, err := getJSON(ps.s.db, userEmissionKey(poolID, user, index, supplySide), &pos)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return &pos, nil
}

func (ps *PoolStore) PutUserReserveEmissionPosition(poolID, user string, index uint32, supplySide bool, pos *emission.UserPosition) error {
	return putJSON(ps.s.db, userEmissionKey(poolID, user, index, supplySide), pos)
}
