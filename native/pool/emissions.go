package pool

import (
	"math/big"

	"blendpool/native/emission"
	"blendpool/token"
)

// ReserveEmissions holds the two emission streams (supply side and borrow
// side) a reserve can run, per spec.md §4.8. Each stream distributes over
// the reserve's b_supply or d_supply respectively.
type ReserveEmissions struct {
	SupplyTracker *emission.Tracker
	SupplyConfig  emission.Config
	BorrowTracker *emission.Tracker
	BorrowConfig  emission.Config
}

// NewReserveEmissions returns a zeroed, inactive emissions pair.
func NewReserveEmissions(now uint64) *ReserveEmissions {
	return &ReserveEmissions{
		SupplyTracker: emission.NewTracker(now),
		BorrowTracker: emission.NewTracker(now),
	}
}

// Distribute advances both streams' indices against the reserve's current
// supply totals.
func (r *ReserveEmissions) Distribute(reserve *Reserve, now uint64) {
	r.SupplyTracker.Accrue(r.SupplyConfig, reserve.BSupply, now)
	r.BorrowTracker.Accrue(r.BorrowConfig, reserve.DSupply, now)
}

// EmissionState is the persistence port for pool-side reserve emissions,
// kept separate from EngineState since not every reserve in a pool needs to
// run emissions.
type EmissionState interface {
	GetReserveEmissions(poolID string, index uint32) (*ReserveEmissions, bool, error)
	PutReserveEmissions(poolID string, index uint32, emissions *ReserveEmissions) error
	GetUserReserveEmissionPosition(poolID, user string, index uint32, supplySide bool) (*emission.UserPosition, error)
	PutUserReserveEmissionPosition(poolID, user string, index uint32, supplySide bool, pos *emission.UserPosition) error
}

// EmissionsEngine claims pool-side reserve emissions. It is kept distinct
// from Engine since claiming does not touch Submit's reentrancy guard or
// require a Token for every reserve at once — only the one reward token.
type EmissionsEngine struct {
	state   EngineState
	emstate EmissionState
	reward  token.Token
}

// NewEmissionsEngine constructs a claims helper against the given reward
// token (typically the protocol's own governance/emission token).
func NewEmissionsEngine(state EngineState, emstate EmissionState, reward token.Token) *EmissionsEngine {
	return &EmissionsEngine{state: state, emstate: emstate, reward: reward}
}

// Claim settles and pays out a user's accrued emissions for one reserve
// side (supplySide true claims the b_supply stream, false the d_supply
// stream).
func (ee *EmissionsEngine) Claim(poolID, user string, index uint32, supplySide bool, now uint64) (*big.Int, error) {
	reserve, _, ok, err := ee.state.GetReserve(poolID, index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrReserveNotFound
	}
	emissions, ok, err := ee.emstate.GetReserveEmissions(poolID, index)
	if err != nil {
		return nil, err
	}
	if !ok || emissions == nil {
		return big.NewInt(0), nil
	}
	emissions.Distribute(reserve, now)
	if err := ee.emstate.PutReserveEmissions(poolID, index, emissions); err != nil {
		return nil, err
	}

	tracker := emissions.BorrowTracker
	var shares *big.Int
	if supplySide {
		tracker = emissions.SupplyTracker
	}

	positions, err := ee.state.GetPositions(poolID, user)
	if err != nil {
		return nil, err
	}
	if positions == nil {
		positions = NewPositions()
	}
	if supplySide {
		shares = positions.Supply[index]
	} else {
		shares = positions.Liabilities[index]
	}
	if shares == nil {
		shares = big.NewInt(0)
	}

	pos, err := ee.emstate.GetUserReserveEmissionPosition(poolID, user, index, supplySide)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		// No touch has recorded this holder against the stream, so the
		// current shares have been held since the tracker started at index 0.
		pos = &emission.UserPosition{Shares: new(big.Int).Set(shares), UserIndex: big.NewInt(0), Accrued: big.NewInt(0)}
	}
	pos.Touch(tracker)
	pos.Shares = shares
	reward := pos.Claim()
	if err := ee.emstate.PutUserReserveEmissionPosition(poolID, user, index, supplySide, pos); err != nil {
		return nil, err
	}
	if reward.Sign() > 0 {
		if err := ee.reward.Transfer(user, reward); err != nil {
			return nil, err
		}
	}
	return reward, nil
}

// touchReserveEmissions folds a user's accrued reward for one reserve side
// into their emission position before Submit applies a share-count change,
// mirroring the backstop ledger's touchEmissions. pos.Shares still holds the
// share count from before this call when Touch runs, so the fold uses the
// OLD balance against the index delta; only afterward is it advanced to
// newShares for the next touch. Calling Submit with no EmissionState wired
// (e.emstate == nil) or no emissions configured for this reserve is a no-op.
func (e *Engine) touchReserveEmissions(index uint32, reserve *Reserve, user string, supplySide bool, newShares *big.Int, now uint64) error {
	if e.emstate == nil {
		return nil
	}
	emissions, ok, err := e.emstate.GetReserveEmissions(e.poolID, index)
	if err != nil {
		return err
	}
	if !ok || emissions == nil {
		return nil
	}
	emissions.Distribute(reserve, now)
	if err := e.emstate.PutReserveEmissions(e.poolID, index, emissions); err != nil {
		return err
	}

	tracker := emissions.BorrowTracker
	if supplySide {
		tracker = emissions.SupplyTracker
	}

	pos, err := e.emstate.GetUserReserveEmissionPosition(e.poolID, user, index, supplySide)
	if err != nil {
		return err
	}
	if pos == nil {
		pos = emission.NewUserPosition(tracker)
	}
	pos.Touch(tracker)
	pos.Shares = new(big.Int).Set(newShares)
	return e.emstate.PutUserReserveEmissionPosition(e.poolID, user, index, supplySide, pos)
}

// supplyShares reads a user's current b_supply share balance for a reserve,
// defaulting to zero since subShares prunes zero entries from the map.
func supplyShares(positions *Positions, index uint32) *big.Int {
	if shares, ok := positions.Supply[index]; ok && shares != nil {
		return shares
	}
	return big.NewInt(0)
}

// liabilityShares reads a user's current d_supply share balance for a
// reserve, defaulting to zero since subShares prunes zero entries.
func liabilityShares(positions *Positions, index uint32) *big.Int {
	if shares, ok := positions.Liabilities[index]; ok && shares != nil {
		return shares
	}
	return big.NewInt(0)
}
