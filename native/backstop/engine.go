package backstop

import (
	"math/big"

	"github.com/google/uuid"

	"blendpool/fixedpoint"
	nativecommon "blendpool/native/common"
	"blendpool/native/emission"
	"blendpool/token"
)

const moduleName = "backstop"

// Engine is the backstop module's aggregate: share ledger, Q4W, reward zone,
// and emissions distribution, all keyed by pool ID and addressed against a
// single underlying backstop token (typically a BLND/USDC LP share).
type Engine struct {
	state  EngineState
	token  token.Token
	lpPool LPPool
	sink   Sink
	pauses nativecommon.PauseView
	cfg    Config
}

// NewEngine constructs a backstop engine against its single underlying
// token. lpPool is the collaborator Claim reinvests accrued reward through;
// pass nil if the deployment never calls Claim with a nonzero total.
func NewEngine(state EngineState, tok token.Token, lpPool LPPool, sink Sink, cfg Config) *Engine {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Engine{state: state, token: tok, lpPool: lpPool, sink: sink, cfg: cfg}
}

// SetPauses wires the module pause registry.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

func (e *Engine) loadPool(poolID string) (*PoolBackstopData, error) {
	data, ok, err := e.state.GetPoolData(poolID)
	if err != nil {
		return nil, err
	}
	if !ok || data == nil {
		data = NewPoolBackstopData()
	}
	return data, nil
}

func (e *Engine) loadUser(poolID, user string) (*UserBalance, error) {
	balance, err := e.state.GetUserBalance(poolID, user)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = NewUserBalance()
	}
	return balance, nil
}

// Deposit implements backstop deposit: pulls amount of the underlying token
// from user and mints backstop shares.
func (e *Engine) Deposit(poolID, user string, amount *big.Int) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	pool, err := e.loadPool(poolID)
	if err != nil {
		return nil, err
	}
	balance, err := e.loadUser(poolID, user)
	if err != nil {
		return nil, err
	}
	if err := e.token.TransferFrom(user, amount); err != nil {
		return nil, err
	}
	shares, err := Deposit(pool, balance, amount)
	if err != nil {
		return nil, err
	}
	if err := e.touchEmissions(poolID, user, balance.Shares); err != nil {
		return nil, err
	}
	if err := e.state.PutPoolData(poolID, pool); err != nil {
		return nil, err
	}
	if err := e.state.PutUserBalance(poolID, user, balance); err != nil {
		return nil, err
	}
	e.sink.Emit(DepositEvent{Event: Event{PoolID: poolID, Kind: "deposit", TraceID: uuid.NewString()}, User: user, SharesDelta: shares, TokensDelta: amount})
	return shares, nil
}

// touchEmissions folds any elapsed reward (per the emission tracker's index
// as it currently stands, without advancing it) into the user's emission
// position before their share balance changes, so a later Claim's diff
// against the index at claim time does not silently drop reward accrued
// while the user held their prior share balance. A pool with no emission
// tracker yet configured has nothing to fold in.
func (e *Engine) touchEmissions(poolID, user string, newShares *big.Int) error {
	tracker, err := e.state.GetEmissionTracker(poolID)
	if err != nil {
		return err
	}
	if tracker == nil {
		return nil
	}
	pos, err := e.state.GetUserEmissionPosition(poolID, user)
	if err != nil {
		return err
	}
	if pos == nil {
		pos = emission.NewUserPosition(tracker)
	}
	pos.Touch(tracker)
	pos.Shares = new(big.Int).Set(newShares)
	return e.state.PutUserEmissionPosition(poolID, user, pos)
}

// QueueWithdrawal starts the 17-day lock on shares.
func (e *Engine) QueueWithdrawal(poolID, user string, shares *big.Int, now uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	pool, err := e.loadPool(poolID)
	if err != nil {
		return err
	}
	balance, err := e.loadUser(poolID, user)
	if err != nil {
		return err
	}
	if err := QueueWithdrawal(pool, balance, shares, now); err != nil {
		return err
	}
	if err := e.state.PutPoolData(poolID, pool); err != nil {
		return err
	}
	return e.state.PutUserBalance(poolID, user, balance)
}

// DequeueWithdrawal cancels queued shares, LIFO.
func (e *Engine) DequeueWithdrawal(poolID, user string, shares *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	pool, err := e.loadPool(poolID)
	if err != nil {
		return err
	}
	balance, err := e.loadUser(poolID, user)
	if err != nil {
		return err
	}
	if err := DequeueWithdrawal(pool, balance, shares); err != nil {
		return err
	}
	if err := e.state.PutPoolData(poolID, pool); err != nil {
		return err
	}
	return e.state.PutUserBalance(poolID, user, balance)
}

// Withdraw redeems matured queued shares and pays out the underlying tokens.
func (e *Engine) Withdraw(poolID, user string, shares *big.Int, now uint64) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	pool, err := e.loadPool(poolID)
	if err != nil {
		return nil, err
	}
	balance, err := e.loadUser(poolID, user)
	if err != nil {
		return nil, err
	}
	tokens, err := Withdraw(pool, balance, shares, now)
	if err != nil {
		return nil, err
	}
	if err := e.touchEmissions(poolID, user, balance.Shares); err != nil {
		return nil, err
	}
	if err := e.token.Transfer(user, tokens); err != nil {
		return nil, err
	}
	if err := e.state.PutPoolData(poolID, pool); err != nil {
		return nil, err
	}
	if err := e.state.PutUserBalance(poolID, user, balance); err != nil {
		return nil, err
	}
	e.sink.Emit(DepositEvent{Event: Event{PoolID: poolID, Kind: "withdraw", TraceID: uuid.NewString()}, User: user, SharesDelta: new(big.Int).Neg(shares), TokensDelta: tokens})
	return tokens, nil
}

// Donate credits tokens without minting shares.
func (e *Engine) Donate(poolID, donor string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	pool, err := e.loadPool(poolID)
	if err != nil {
		return err
	}
	if err := e.token.TransferFrom(donor, amount); err != nil {
		return err
	}
	if err := Donate(pool, amount); err != nil {
		return err
	}
	if err := e.state.PutPoolData(poolID, pool); err != nil {
		return err
	}
	e.sink.Emit(DonateDrawEvent{Event: Event{PoolID: poolID, Kind: "donate", TraceID: uuid.NewString()}, Amount: amount})
	return nil
}

// Draw debits tokens to cover bad debt and pays them to recipient (typically
// the pool's auction settlement address).
func (e *Engine) Draw(poolID, recipient string, amount *big.Int) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	pool, err := e.loadPool(poolID)
	if err != nil {
		return err
	}
	if err := Draw(pool, amount); err != nil {
		return err
	}
	if err := e.token.Transfer(recipient, amount); err != nil {
		return err
	}
	if err := e.state.PutPoolData(poolID, pool); err != nil {
		return err
	}
	e.sink.Emit(DonateDrawEvent{Event: Event{PoolID: poolID, Kind: "draw", TraceID: uuid.NewString()}, Amount: amount, Draw: true})
	return nil
}

// SettleBadDebtFill implements pool.BackstopCoordinator: moves lotFilled
// shares from the pool's own backstop balance (pseudo-user "pool") to
// filler; the pool's total shares are unchanged.
func (e *Engine) SettleBadDebtFill(poolID, filler string, lotFilled *big.Int) error {
	pool, err := e.loadPool(poolID)
	if err != nil {
		return err
	}
	poolBalance, err := e.loadUser(poolID, poolHoldingsKey)
	if err != nil {
		return err
	}
	fillerBalance, err := e.loadUser(poolID, filler)
	if err != nil {
		return err
	}
	if poolBalance.Shares.Cmp(lotFilled) < 0 {
		return ErrInsufficientShares
	}
	poolBalance.Shares = new(big.Int).Sub(poolBalance.Shares, lotFilled)
	fillerBalance.Shares = new(big.Int).Add(fillerBalance.Shares, lotFilled)
	if err := e.touchEmissions(poolID, poolHoldingsKey, poolBalance.Shares); err != nil {
		return err
	}
	if err := e.touchEmissions(poolID, filler, fillerBalance.Shares); err != nil {
		return err
	}
	if err := e.state.PutUserBalance(poolID, poolHoldingsKey, poolBalance); err != nil {
		return err
	}
	if err := e.state.PutUserBalance(poolID, filler, fillerBalance); err != nil {
		return err
	}
	return e.state.PutPoolData(poolID, pool)
}

// SettleInterestFill implements pool.BackstopCoordinator: collects
// bidFilled backstop shares from filler into the pool's own holdings.
func (e *Engine) SettleInterestFill(poolID, filler string, bidFilled *big.Int) error {
	fillerBalance, err := e.loadUser(poolID, filler)
	if err != nil {
		return err
	}
	if fillerBalance.Shares.Cmp(bidFilled) < 0 {
		return ErrInsufficientShares
	}
	poolBalance, err := e.loadUser(poolID, poolHoldingsKey)
	if err != nil {
		return err
	}
	fillerBalance.Shares = new(big.Int).Sub(fillerBalance.Shares, bidFilled)
	poolBalance.Shares = new(big.Int).Add(poolBalance.Shares, bidFilled)
	if err := e.touchEmissions(poolID, filler, fillerBalance.Shares); err != nil {
		return err
	}
	if err := e.touchEmissions(poolID, poolHoldingsKey, poolBalance.Shares); err != nil {
		return err
	}
	if err := e.state.PutUserBalance(poolID, filler, fillerBalance); err != nil {
		return err
	}
	return e.state.PutUserBalance(poolID, poolHoldingsKey, poolBalance)
}

// poolHoldingsKey is the reserved user key used to track backstop shares the
// pool itself holds (e.g. bad-debt-auction proceeds), distinct from any real
// bech32 address.
const poolHoldingsKey = "\x00pool-holdings"

// AddRewardZone admits a pool; if the zone is full it evicts the
// caller-named toSwap, provided poolID holds strictly more tokens.
func (e *Engine) AddRewardZone(poolID, toSwap string) error {
	zone, err := e.state.GetRewardZone()
	if err != nil {
		return err
	}
	if zone == nil {
		zone = NewRewardZone()
	}
	poolData, err := e.loadPool(poolID)
	if err != nil {
		return err
	}
	var swapBalance *big.Int
	if toSwap != "" {
		swapData, err := e.loadPool(toSwap)
		if err != nil {
			return err
		}
		swapBalance = swapData.TotalTokens
	}
	if err := zone.AddReward(poolID, toSwap, poolData.TotalTokens, swapBalance); err != nil {
		return err
	}
	return e.state.PutRewardZone(zone)
}

// RemoveRewardZone evicts a pool from the reward zone.
func (e *Engine) RemoveRewardZone(poolID string) error {
	zone, err := e.state.GetRewardZone()
	if err != nil {
		return err
	}
	if zone == nil {
		return nil
	}
	zone.RemoveReward(poolID)
	return e.state.PutRewardZone(zone)
}

// Distribute implements the shared Emitter (spec.md §4.7/§6): it pulls
// forward the elapsed allowance since the last distribution at
// Config.EmitterRate tokens/second and allocates it pro-rata across every
// reward-zone pool's TotalTokens share, accumulating into each pool's own
// RzEmissions backfill bucket (clamped to MaxBackfill so one pool cannot
// hoard an unbounded backlog). Returns the total tokens pulled forward.
func (e *Engine) Distribute(now uint64) (*big.Int, error) {
	last, err := e.state.GetLastDistributionTime()
	if err != nil {
		return nil, err
	}
	if now <= last {
		return big.NewInt(0), nil
	}
	if err := e.state.PutLastDistributionTime(now); err != nil {
		return nil, err
	}

	zone, err := e.state.GetRewardZone()
	if err != nil {
		return nil, err
	}
	if zone == nil || len(zone.Pools) == 0 {
		return big.NewInt(0), nil
	}

	elapsed := now - last
	newTokens := fixedpoint.MulFloor(e.cfg.EmitterRate, new(big.Int).SetUint64(elapsed), fixedpoint.SCALAR7)
	if newTokens.Sign() <= 0 {
		return big.NewInt(0), nil
	}

	pools := make([]*PoolBackstopData, len(zone.Pools))
	totalZoneTokens := big.NewInt(0)
	for i, poolID := range zone.Pools {
		pool, err := e.loadPool(poolID)
		if err != nil {
			return nil, err
		}
		pools[i] = pool
		totalZoneTokens = new(big.Int).Add(totalZoneTokens, pool.TotalTokens)
	}
	if totalZoneTokens.Sign() == 0 {
		return big.NewInt(0), nil
	}

	ceiling := MaxBackfill(e.cfg.EmitterRate, e.cfg.MaxBackfillWindow)
	for i, poolID := range zone.Pools {
		share := fixedpoint.MulFloor(newTokens, pools[i].TotalTokens, totalZoneTokens)
		if share.Sign() == 0 {
			continue
		}
		rz, err := e.state.GetRzEmissions(poolID)
		if err != nil {
			return nil, err
		}
		if rz == nil {
			rz = NewRzEmissions(now)
		}
		rz.Accrued = new(big.Int).Add(rz.Accrued, share)
		if ceiling.Sign() > 0 && rz.Accrued.Cmp(ceiling) > 0 {
			rz.Accrued = new(big.Int).Set(ceiling)
		}
		rz.LastTime = now
		if err := e.state.PutRzEmissions(poolID, rz); err != nil {
			return nil, err
		}
	}

	e.sink.Emit(DistributeEvent{Event: Event{Kind: "distribute", TraceID: uuid.NewString()}, Amount: newTokens})
	return newTokens, nil
}

// GulpEmissions drains poolID's RzEmissions backlog and splits it 70%
// (floor) into a fresh 7-day backstop-depositor emission stream (rolling any
// un-expired eps from the prior stream forward) and the remaining 30% as
// the pool-side allowance the caller routes onward into the pool module's
// own reserve-emission distribution (spec.md §4.7/§6's gulp_emissions).
func (e *Engine) GulpEmissions(poolID string, now uint64) (backstopEmis *big.Int, poolEmis *big.Int, err error) {
	rz, err := e.state.GetRzEmissions(poolID)
	if err != nil {
		return nil, nil, err
	}
	if rz == nil || rz.Accrued == nil || rz.Accrued.Sign() == 0 {
		return big.NewInt(0), big.NewInt(0), nil
	}
	amount := rz.Accrued
	rz.Accrued = big.NewInt(0)
	rz.LastTime = now
	if err := e.state.PutRzEmissions(poolID, rz); err != nil {
		return nil, nil, err
	}

	backstopEmis = fixedpoint.MulFloor(amount, big.NewInt(70), big.NewInt(100))
	poolEmis = new(big.Int).Sub(amount, backstopEmis)

	pool, err := e.loadPool(poolID)
	if err != nil {
		return nil, nil, err
	}
	unqueued := new(big.Int).Sub(pool.TotalShares, pool.TotalQ4W)
	if unqueued.Sign() < 0 {
		unqueued = big.NewInt(0)
	}

	tracker, err := e.state.GetEmissionTracker(poolID)
	if err != nil {
		return nil, nil, err
	}
	if tracker == nil {
		tracker = emission.NewTracker(now)
	}
	oldCfg, err := e.state.GetEmissionConfig(poolID)
	if err != nil {
		return nil, nil, err
	}
	tracker.Accrue(oldCfg, unqueued, now)

	leftover := big.NewInt(0)
	if oldCfg.EPS != nil && oldCfg.EPS.Sign() > 0 && oldCfg.ExpTime > now {
		remaining := oldCfg.ExpTime - now
		leftover = fixedpoint.MulFloor(oldCfg.EPS, new(big.Int).SetUint64(remaining), fixedpoint.SCALAR7)
	}

	total := new(big.Int).Add(backstopEmis, leftover)
	newCfg := emission.Config{
		EPS:     fixedpoint.DivFloor(total, fixedpoint.SCALAR7, big.NewInt(EmissionWindowSeconds)),
		ExpTime: now + EmissionWindowSeconds,
	}
	if err := e.state.PutEmissionConfig(poolID, newCfg); err != nil {
		return nil, nil, err
	}
	if err := e.state.PutEmissionTracker(poolID, tracker); err != nil {
		return nil, nil, err
	}

	e.sink.Emit(GulpEmissionsEvent{
		Event:             Event{PoolID: poolID, Kind: "gulp_emissions", TraceID: uuid.NewString()},
		BackstopEmissions: backstopEmis,
		PoolEmissions:     poolEmis,
	})
	return backstopEmis, poolEmis, nil
}

// Drop is the admin-only one-shot that evicts poolID from the reward zone
// and zeroes its undistributed RzEmissions backlog, so a pool dropped for
// cause (e.g. gone Frozen) neither keeps a reward-zone seat nor silently
// piles up backfill nobody will ever gulp.
func (e *Engine) Drop(poolID string) error {
	zone, err := e.state.GetRewardZone()
	if err != nil {
		return err
	}
	if zone != nil {
		zone.RemoveReward(poolID)
		if err := e.state.PutRewardZone(zone); err != nil {
			return err
		}
	}
	if err := e.state.PutRzEmissions(poolID, NewRzEmissions(0)); err != nil {
		return err
	}
	e.sink.Emit(DropEvent{Event: Event{PoolID: poolID, Kind: "drop", TraceID: uuid.NewString()}})
	return nil
}

// accrueClaim advances poolID's own backstop-depositor emission stream
// against its unqueued shares and folds user's accrued reward since their
// last touch into their position, returning (without paying out) the
// amount now due.
func (e *Engine) accrueClaim(poolID, user string, now uint64) (*big.Int, error) {
	pool, err := e.loadPool(poolID)
	if err != nil {
		return nil, err
	}
	tracker, err := e.state.GetEmissionTracker(poolID)
	if err != nil {
		return nil, err
	}
	if tracker == nil {
		tracker = emission.NewTracker(now)
	}
	cfg, err := e.state.GetEmissionConfig(poolID)
	if err != nil {
		return nil, err
	}
	unqueued := new(big.Int).Sub(pool.TotalShares, pool.TotalQ4W)
	if unqueued.Sign() < 0 {
		unqueued = big.NewInt(0)
	}
	tracker.Accrue(cfg, unqueued, now)
	if err := e.state.PutEmissionTracker(poolID, tracker); err != nil {
		return nil, err
	}

	balance, err := e.loadUser(poolID, user)
	if err != nil {
		return nil, err
	}
	pos, err := e.state.GetUserEmissionPosition(poolID, user)
	if err != nil {
		return nil, err
	}
	if pos == nil {
		// No touch has recorded this holder against the stream, so the
		// current shares have been held since the tracker started at index 0.
		pos = &emission.UserPosition{Shares: new(big.Int).Set(balance.Shares), UserIndex: big.NewInt(0), Accrued: big.NewInt(0)}
	}
	pos.Touch(tracker)
	pos.Shares = new(big.Int).Set(balance.Shares)
	reward := pos.Claim()
	return reward, e.state.PutUserEmissionPosition(poolID, user, pos)
}

// Claim settles a user's accrued backstop emissions across every named
// pool, reinvests the combined total as a single LP-pool deposit, and
// splits the resulting LP/backstop-share tokens pro-rata across the claimed
// pools as new backstop shares — an auto-reinvest, not a raw token payout —
// matching the original claim_emissions flow. A duplicate pool id anywhere
// in pools is rejected; minLPOut bounds the acceptable reinvestment
// slippage. Returns the total LP/backstop-share tokens minted.
func (e *Engine) Claim(user string, pools []string, minLPOut *big.Int, now uint64) (*big.Int, error) {
	if len(pools) == 0 {
		return nil, ErrBadRequest
	}
	seen := make(map[string]bool, len(pools))
	claims := make(map[string]*big.Int, len(pools))
	order := make([]string, 0, len(pools))
	total := big.NewInt(0)

	for _, poolID := range pools {
		if seen[poolID] {
			return nil, ErrDuplicatePoolInClaim
		}
		seen[poolID] = true
		order = append(order, poolID)

		reward, err := e.accrueClaim(poolID, user, now)
		if err != nil {
			return nil, err
		}
		claims[poolID] = reward
		total = new(big.Int).Add(total, reward)
	}

	if total.Sign() == 0 {
		return big.NewInt(0), nil
	}
	if e.lpPool == nil {
		return nil, ErrLPPoolNotConfigured
	}
	lpOut, err := e.lpPool.SingleSidedDeposit(total, minLPOut)
	if err != nil {
		return nil, err
	}

	for _, poolID := range order {
		claimAmount := claims[poolID]
		if claimAmount.Sign() == 0 {
			continue
		}
		depositAmount := fixedpoint.MulFloor(lpOut, claimAmount, total)
		if depositAmount.Sign() == 0 {
			continue
		}
		pool, err := e.loadPool(poolID)
		if err != nil {
			return nil, err
		}
		balance, err := e.loadUser(poolID, user)
		if err != nil {
			return nil, err
		}
		if _, err := Deposit(pool, balance, depositAmount); err != nil {
			return nil, err
		}
		if err := e.touchEmissions(poolID, user, balance.Shares); err != nil {
			return nil, err
		}
		if err := e.state.PutPoolData(poolID, pool); err != nil {
			return nil, err
		}
		if err := e.state.PutUserBalance(poolID, user, balance); err != nil {
			return nil, err
		}
		e.sink.Emit(ClaimEvent{Event: Event{PoolID: poolID, Kind: "claim", TraceID: uuid.NewString()}, User: user, Amount: claimAmount})
	}

	return lpOut, nil
}
