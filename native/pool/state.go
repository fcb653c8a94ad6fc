package pool

import "blendpool/native/pool/auction"

// EngineState is the persistence port the pool Engine reads and writes
// through. Concrete storage (the store package's badger-backed
// implementation) satisfies this interface; the engine itself never touches
// a database handle directly, mirroring the teacher's engineState pattern.
type EngineState interface {
	// GetReserve returns the reserve at index and its asset symbol. ok is
	// false if the index has never been configured for this pool.
	GetReserve(poolID string, index uint32) (reserve *Reserve, asset string, ok bool, err error)
	PutReserve(poolID string, index uint32, asset string, reserve *Reserve) error
	// ListReserveIndices returns every configured reserve index for the pool,
	// in ascending order.
	ListReserveIndices(poolID string) ([]uint32, error)

	GetPositions(poolID, user string) (*Positions, error)
	PutPositions(poolID, user string, positions *Positions) error

	GetAuction(poolID string, kind auction.Kind, user string) (*auction.Auction, bool, error)
	PutAuction(poolID string, a *auction.Auction) error
	DeleteAuction(poolID string, kind auction.Kind, user string) error
	// ListAuctions returns every in-flight auction for the pool, used by the
	// interest-auction creation path to find accrued backstop credit and by
	// stale-auction sweeps.
	ListAuctions(poolID string) ([]*auction.Auction, error)

	GetPoolConfig(poolID string) (*PoolConfig, bool, error)
	PutPoolConfig(poolID string, cfg *PoolConfig) error

	GetStatus(poolID string) (Status, error)
	PutStatus(poolID string, status Status) error

	// GetQueuedReserveConfig returns a pending queue_set_reserve change and the
	// unix-seconds timestamp it becomes applicable at.
	GetQueuedReserveConfig(poolID string, index uint32) (cfg *ReserveConfig, readyAt uint64, ok bool, err error)
	PutQueuedReserveConfig(poolID string, index uint32, cfg *ReserveConfig, readyAt uint64) error
	ClearQueuedReserveConfig(poolID string, index uint32) error
}

// reserveView adapts a snapshot of reserves loaded for one Submit call to the
// health/auction-creation packages' narrow ReserveView/ReserveView-like
// interfaces, so those packages never depend on EngineState or the store
// directly.
type reserveView struct {
	reserves map[uint32]*Reserve
	assets   map[uint32]string
}

func newReserveView() *reserveView {
	return &reserveView{reserves: make(map[uint32]*Reserve), assets: make(map[uint32]string)}
}

func (v *reserveView) Get(index uint32) (*Reserve, string, bool) {
	r, ok := v.reserves[index]
	if !ok {
		return nil, "", false
	}
	return r, v.assets[index], true
}

func (v *reserveView) put(index uint32, asset string, r *Reserve) {
	v.reserves[index] = r
	v.assets[index] = asset
}
