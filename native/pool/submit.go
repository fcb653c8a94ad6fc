package pool

import (
	"math/big"

	"github.com/google/uuid"

	"blendpool/fixedpoint"
	nativecommon "blendpool/native/common"
	"blendpool/native/pool/auction"
	"blendpool/oracle"
	"blendpool/token"
)

const (
	// ActionFillUserLiquidationAuction and the three action types after it
	// name auction requests. Submit does not dispatch them and returns
	// ErrBadRequest for each; auctions are filled through FillAuction.
	ActionFillUserLiquidationAuction Action = 10 + iota
	ActionFillBadDebtAuction
	ActionFillInterestAuction
	ActionDeleteLiquidationAuction
)

// Request is a single entry of a Submit batch (spec.md §4.2's Request).
type Request struct {
	Type         Action
	ReserveIndex uint32
	Amount       *big.Int
	// FillPercent and AuctionUser belong to the three fill-auction request
	// types, which Submit rejects (see ActionFillUserLiquidationAuction).
	FillPercent uint64
	AuctionUser string
}

// moduleName is the pause-gate identifier this package registers under,
// matching the teacher's nativecommon.Guard convention.
const moduleName = "pool"

// TokenResolver maps a reserve's asset symbol to the token collaborator that
// moves it, since a single pool holds many distinct underlying assets.
type TokenResolver interface {
	Resolve(asset string) (token.Token, bool)
}

// Engine ties together reserve accrual, positions, health, status, and
// auctions into the single Submit entry point spec.md §4.2 describes, the
// way the teacher's lending Engine ties market/account/fee state together.
type Engine struct {
	state  EngineState
	tokens TokenResolver
	px     oracle.Oracle
	sink   Sink
	pauses   nativecommon.PauseView
	guard    *nativecommon.ReentrancyGuard
	poolID   string
	backstop BackstopCoordinator
	emstate  EmissionState
}

// SetEmissionState wires the reserve-emissions persistence port so Submit
// folds accrued reward into each touched position's emission tracker before
// its share balance changes. Optional: a pool that never configures reserve
// emissions may leave this nil.
func (e *Engine) SetEmissionState(es EmissionState) { e.emstate = es }

// NewEngine constructs a pool engine. tokens resolves each reserve's asset
// symbol to its transfer collaborator; px is the price oracle; sink receives
// emitted events (pass NoopSink{} if the caller does not need them).
func NewEngine(poolID string, state EngineState, tokens TokenResolver, px oracle.Oracle, sink Sink) *Engine {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Engine{
		state:  state,
		tokens: tokens,
		px:     px,
		sink:   sink,
		guard:  nativecommon.NewReentrancyGuard(),
		poolID: poolID,
	}
}

func (e *Engine) resolveToken(asset string) (token.Token, error) {
	if e.tokens == nil {
		return nil, ErrInvalidReserveMetadata
	}
	tok, ok := e.tokens.Resolve(asset)
	if !ok || tok == nil {
		return nil, ErrInvalidReserveMetadata
	}
	return tok, nil
}

// SetPauses wires the engine to the host's module pause registry.
func (e *Engine) SetPauses(p nativecommon.PauseView) { e.pauses = p }

func (e *Engine) loadConfig() (PoolConfig, error) {
	cfg, ok, err := e.state.GetPoolConfig(e.poolID)
	if err != nil {
		return PoolConfig{}, err
	}
	if !ok || cfg == nil {
		return PoolConfig{}, ErrPoolNotConfigured
	}
	return *cfg, nil
}

func (e *Engine) loadStatus() (Status, error) {
	return e.state.GetStatus(e.poolID)
}

// loadReserve fetches and, if stale, accrues a reserve before returning it.
// traceID correlates the resulting reserve_accrue event (if any) with every
// other event the enclosing Submit/FlashLoan/FillAuction call emits.
func (e *Engine) loadReserve(view *reserveView, index uint32, now uint64, bstopRateBps uint64, traceID string) (*Reserve, string, error) {
	if r, asset, ok := view.Get(index); ok {
		return r, asset, nil
	}
	reserve, asset, ok, err := e.state.GetReserve(e.poolID, index)
	if err != nil {
		return nil, "", err
	}
	if !ok {
		return nil, "", ErrReserveNotFound
	}
	deltaBC := reserve.AccrueWithBackstopRate(now, bstopRateBps)
	if deltaBC.Sign() > 0 {
		e.sink.Emit(SupplyEvent{Event: Event{PoolID: e.poolID, Kind: "reserve_accrue", TraceID: traceID}, ReserveIdx: index, Amount: deltaBC})
	}
	view.put(index, asset, reserve)
	return reserve, asset, nil
}

// Submit implements spec.md §4.2: apply every request against the caller's
// positions, net each asset's transfers across the whole batch, and
// re-validate health once at the end if any request can reduce it.
func (e *Engine) Submit(user string, requests []Request, now uint64, currentBlock uint64) (*Positions, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return nil, err
	}
	release, err := e.guard.Enter(e.poolID)
	if err != nil {
		return nil, err
	}
	defer release()
	if len(requests) == 0 {
		return nil, ErrBadRequest
	}
	traceID := uuid.NewString()

	cfg, err := e.loadConfig()
	if err != nil {
		return nil, err
	}
	status, err := e.loadStatus()
	if err != nil {
		return nil, err
	}

	positions, err := e.state.GetPositions(e.poolID, user)
	if err != nil {
		return nil, err
	}
	if positions == nil {
		positions = NewPositions()
	}

	view := newReserveView()
	net := make(map[uint32]*big.Int) // positive: pool owes user; negative: user owes pool
	addNet := func(index uint32, amount *big.Int) {
		cur, ok := net[index]
		if !ok {
			net[index] = new(big.Int).Set(amount)
			return
		}
		cur.Add(cur, amount)
	}

	touchedHealth := false

	for _, req := range requests {
		if !ActionAllowed(status, req.Type) {
			return nil, ErrStatusNotAllowed
		}
		reserve, _, err := e.loadReserve(view, req.ReserveIndex, now, cfg.BstopRateBps, traceID)
		if err != nil {
			return nil, err
		}
		if req.Amount == nil || req.Amount.Sign() <= 0 {
			if req.Type != ActionFillUserLiquidationAuction && req.Type != ActionFillBadDebtAuction &&
				req.Type != ActionFillInterestAuction && req.Type != ActionDeleteLiquidationAuction {
				return nil, ErrInvalidAmount
			}
		}

		switch req.Type {
		case ActionSupply:
			if err := reserve.RequireActionAllowed(ActionSupply); err != nil {
				return nil, err
			}
			shares := fixedpoint.ToBDown(req.Amount, reserve.BRate)
			reserve.BSupply = new(big.Int).Add(reserve.BSupply, shares)
			positions.AddSupply(req.ReserveIndex, shares)
			if err := reserve.RequireUtilizationBelowMax(); err != nil {
				return nil, err
			}
			if err := reserve.RequireSupplyCap(); err != nil {
				return nil, err
			}
			if err := e.touchReserveEmissions(req.ReserveIndex, reserve, user, true, supplyShares(positions, req.ReserveIndex), now); err != nil {
				return nil, err
			}
			addNet(req.ReserveIndex, new(big.Int).Neg(req.Amount))

		case ActionSupplyCollateral:
			if err := reserve.RequireActionAllowed(ActionSupplyCollateral); err != nil {
				return nil, err
			}
			shares := fixedpoint.ToBDown(req.Amount, reserve.BRate)
			reserve.BSupply = new(big.Int).Add(reserve.BSupply, shares)
			positions.AddCollateral(req.ReserveIndex, shares)
			if err := reserve.RequireUtilizationBelowMax(); err != nil {
				return nil, err
			}
			if err := reserve.RequireSupplyCap(); err != nil {
				return nil, err
			}
			addNet(req.ReserveIndex, new(big.Int).Neg(req.Amount))

		case ActionWithdraw:
			shares := fixedpoint.ToBUp(req.Amount, reserve.BRate)
			reserve.BSupply = new(big.Int).Sub(reserve.BSupply, shares)
			if reserve.BSupply.Sign() < 0 {
				return nil, ErrInsufficientLiquidity
			}
			positions.SubSupply(req.ReserveIndex, shares)
			if err := e.touchReserveEmissions(req.ReserveIndex, reserve, user, true, supplyShares(positions, req.ReserveIndex), now); err != nil {
				return nil, err
			}
			addNet(req.ReserveIndex, new(big.Int).Set(req.Amount))

		case ActionWithdrawCollateral:
			shares := fixedpoint.ToBUp(req.Amount, reserve.BRate)
			positions.SubCollateral(req.ReserveIndex, shares)
			reserve.BSupply = new(big.Int).Sub(reserve.BSupply, shares)
			if reserve.BSupply.Sign() < 0 {
				return nil, ErrInsufficientLiquidity
			}
			addNet(req.ReserveIndex, new(big.Int).Set(req.Amount))
			touchedHealth = true

		case ActionBorrow:
			if err := reserve.RequireActionAllowed(ActionBorrow); err != nil {
				return nil, err
			}
			shares := fixedpoint.ToDUp(req.Amount, reserve.DRate)
			reserve.DSupply = new(big.Int).Add(reserve.DSupply, shares)
			positions.AddLiability(req.ReserveIndex, shares)
			if err := reserve.RequireUtilizationBelow100(); err != nil {
				return nil, err
			}
			if err := e.touchReserveEmissions(req.ReserveIndex, reserve, user, false, liabilityShares(positions, req.ReserveIndex), now); err != nil {
				return nil, err
			}
			addNet(req.ReserveIndex, new(big.Int).Set(req.Amount))
			touchedHealth = true

		case ActionRepay:
			shares := fixedpoint.ToDDown(req.Amount, reserve.DRate)
			liability := positions.Liabilities[req.ReserveIndex]
			if liability != nil && shares.Cmp(liability) > 0 {
				shares = new(big.Int).Set(liability)
			}
			positions.SubLiability(req.ReserveIndex, shares)
			reserve.DSupply = new(big.Int).Sub(reserve.DSupply, shares)
			if err := e.touchReserveEmissions(req.ReserveIndex, reserve, user, false, liabilityShares(positions, req.ReserveIndex), now); err != nil {
				return nil, err
			}
			repayAmount := fixedpoint.ToAssetFromD(shares, reserve.DRate)
			addNet(req.ReserveIndex, new(big.Int).Neg(repayAmount))

		default:
			return nil, ErrBadRequest
		}
	}

	if touchedHealth {
		health, err := EvaluateHealth(positions, view, e.px, cfg.BorrowHealthBufferBps, cfg.MinCollateral, cfg.OracleMaxAgeSeconds, now)
		if err != nil {
			return nil, err
		}
		if !health.BorrowHealthy {
			return nil, ErrInvalidHealthFactor
		}
	}
	if positions.EffectiveCount() > int(cfg.MaxPositions) {
		return nil, ErrMaxPositionsExceeded
	}

	for index, amount := range net {
		if amount.Sign() == 0 {
			continue
		}
		_, asset, ok := view.Get(index)
		if !ok {
			return nil, ErrReserveNotFound
		}
		tok, err := e.resolveToken(asset)
		if err != nil {
			return nil, err
		}
		if amount.Sign() > 0 {
			if err := tok.Transfer(user, amount); err != nil {
				return nil, err
			}
		} else {
			if err := tok.TransferFrom(user, new(big.Int).Neg(amount)); err != nil {
				return nil, err
			}
		}
	}

	for index, reserve := range view.reserves {
		if err := e.state.PutReserve(e.poolID, index, view.assets[index], reserve); err != nil {
			return nil, err
		}
	}
	if err := e.state.PutPositions(e.poolID, user, positions); err != nil {
		return nil, err
	}

	return positions, nil
}

// FlashLoan implements spec.md §4.2's flash-loan pseudo-request: the amount
// is lent out, the receiver callback runs, and the loan plus fee must be
// repaid before Submit's reentrancy guard releases. A Submit invoked from
// within receiver against this same poolID is rejected by the guard.
func (e *Engine) FlashLoan(user string, reserveIndex uint32, amount *big.Int, receiver func(amount *big.Int) error, now uint64) error {
	if e == nil || e.state == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return err
	}
	release, err := e.guard.Enter(e.poolID)
	if err != nil {
		return err
	}
	defer release()
	if amount == nil || amount.Sign() <= 0 {
		return ErrInvalidAmount
	}

	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	traceID := uuid.NewString()

	view := newReserveView()
	reserve, asset, err := e.loadReserve(view, reserveIndex, now, cfg.BstopRateBps, traceID)
	if err != nil {
		return err
	}
	if err := reserve.RequireActionAllowed(ActionBorrow); err != nil {
		return err
	}
	tok, err := e.resolveToken(asset)
	if err != nil {
		return err
	}

	if err := tok.Transfer(user, amount); err != nil {
		return err
	}

	fee := fixedpoint.MulCeil(amount, new(big.Int).SetUint64(cfg.FlashLoanFeeBps), big.NewInt(10_000))
	owed := new(big.Int).Add(amount, fee)

	if receiver != nil {
		if err := receiver(owed); err != nil {
			return err
		}
	}

	if err := tok.TransferFrom(user, owed); err != nil {
		return err
	}

	deltaBC := fixedpoint.MulFloor(fee, new(big.Int).SetUint64(cfg.BstopRateBps), fixedpoint.SCALAR7)
	reserve.BackstopCredit = new(big.Int).Add(reserve.BackstopCredit, deltaBC)
	if reserve.BSupply.Sign() > 0 {
		bump := fixedpoint.DivFloor(new(big.Int).Sub(fee, deltaBC), fixedpoint.SCALAR12, reserve.BSupply)
		reserve.BRate = new(big.Int).Add(reserve.BRate, bump)
	}

	return e.state.PutReserve(e.poolID, reserveIndex, asset, reserve)
}

// BackstopCoordinator is the cross-module hook fill_auction calls for the
// bad-debt and interest auction kinds, whose lot/bid sides are backstop LP
// shares rather than pool reserves. The pool engine never reaches into the
// backstop's share ledger directly; it only settles its own reserve side and
// asks the coordinator to settle the backstop side atomically alongside it.
type BackstopCoordinator interface {
	// SettleBadDebtFill is called after the pool engine has already zeroed
	// the backstop's own liability positions for bidFilled; it must move
	// lotFilled backstop shares from the pool's backstop balance to filler.
	SettleBadDebtFill(poolID, filler string, lotFilled *big.Int) error
	// SettleInterestFill must collect bidFilled backstop shares from filler
	// into the pool's backstop balance.
	SettleInterestFill(poolID, filler string, bidFilled *big.Int) error
}

// SetBackstopCoordinator wires the cross-module settlement hook. Optional:
// pools that never run bad-debt/interest auctions (or whose caller settles
// those out-of-band) may leave this nil.
func (e *Engine) SetBackstopCoordinator(c BackstopCoordinator) { e.backstop = c }

// FillAuction implements fill_auction for all three auction kinds: it loads
// the auction, scales it at currentBlock, applies the fill, transfers the
// scaled bid/lot amounts, and updates the auction owner's positions.
func (e *Engine) FillAuction(filler string, kind auction.Kind, auctionUser string, fillPercent uint64, now uint64, currentBlock uint64) (auction.FillResult, error) {
	if e == nil || e.state == nil {
		return auction.FillResult{}, ErrNilState
	}
	if err := nativecommon.Guard(e.pauses, moduleName); err != nil {
		return auction.FillResult{}, err
	}
	a, ok, err := e.state.GetAuction(e.poolID, kind, auctionUser)
	if err != nil {
		return auction.FillResult{}, err
	}
	if !ok {
		return auction.FillResult{}, ErrNoAuction
	}

	result := auction.Fill(a, fillPercent, currentBlock)
	traceID := uuid.NewString()

	if err := e.settleFill(kind, auctionUser, filler, result, now, traceID); err != nil {
		return auction.FillResult{}, err
	}

	if result.Complete {
		if err := e.state.DeleteAuction(e.poolID, kind, auctionUser); err != nil {
			return auction.FillResult{}, err
		}
	} else {
		if err := e.state.PutAuction(e.poolID, a); err != nil {
			return auction.FillResult{}, err
		}
	}

	e.sink.Emit(AuctionFillEvent{
		Event:       Event{PoolID: e.poolID, Kind: "auction_fill", TraceID: traceID},
		User:        auctionUser,
		Filler:      filler,
		AuctionKind: uint8(kind),
		FillPercent: fillPercent,
		Complete:    result.Complete,
	})

	return result, nil
}

// settleFill moves the scaled bid/lot amounts and updates positions/reserves
// for one auction fill. For KindUserLiquidation everything is self-contained
// within the pool; for the other two kinds the backstop-share leg is
// delegated to the BackstopCoordinator.
func (e *Engine) settleFill(kind auction.Kind, auctionUser, filler string, result auction.FillResult, now uint64, traceID string) error {
	switch kind {
	case auction.KindUserLiquidation:
		return e.settleUserLiquidationFill(auctionUser, filler, result, now, traceID)
	case auction.KindBadDebt:
		return e.settleBadDebtFill(auctionUser, filler, result, now, traceID)
	case auction.KindInterest:
		return e.settleInterestFill(filler, result, now, traceID)
	default:
		return ErrBadRequest
	}
}

func (e *Engine) settleUserLiquidationFill(auctionUser, filler string, result auction.FillResult, now uint64, traceID string) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	positions, err := e.state.GetPositions(e.poolID, auctionUser)
	if err != nil {
		return err
	}
	if positions == nil {
		return ErrReserveNotFound
	}
	view := newReserveView()

	for index, bidShares := range result.BidFilled {
		if bidShares.Sign() == 0 {
			continue
		}
		reserve, asset, err := e.loadReserve(view, index, now, cfg.BstopRateBps, traceID)
		if err != nil {
			return err
		}
		tok, err := e.resolveToken(asset)
		if err != nil {
			return err
		}
		assetAmount := fixedpoint.ToAssetFromD(bidShares, reserve.DRate)
		if err := tok.TransferFrom(filler, assetAmount); err != nil {
			return err
		}
		positions.SubLiability(index, bidShares)
		reserve.DSupply = new(big.Int).Sub(reserve.DSupply, bidShares)
	}

	for index, lotShares := range result.LotFilled {
		if lotShares.Sign() == 0 {
			continue
		}
		reserve, asset, err := e.loadReserve(view, index, now, cfg.BstopRateBps, traceID)
		if err != nil {
			return err
		}
		tok, err := e.resolveToken(asset)
		if err != nil {
			return err
		}
		assetAmount := fixedpoint.ToAssetFromB(lotShares, reserve.BRate)
		if err := tok.Transfer(filler, assetAmount); err != nil {
			return err
		}
		positions.SubCollateral(index, lotShares)
		reserve.BSupply = new(big.Int).Sub(reserve.BSupply, lotShares)
	}

	for index, reserve := range view.reserves {
		if err := e.state.PutReserve(e.poolID, index, view.assets[index], reserve); err != nil {
			return err
		}
	}
	return e.state.PutPositions(e.poolID, auctionUser, positions)
}

func (e *Engine) settleBadDebtFill(auctionUser, filler string, result auction.FillResult, now uint64, traceID string) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	positions, err := e.state.GetPositions(e.poolID, auctionUser)
	if err != nil {
		return err
	}
	if positions == nil {
		return ErrReserveNotFound
	}
	view := newReserveView()

	for index, bidShares := range result.BidFilled {
		if bidShares.Sign() == 0 {
			continue
		}
		reserve, asset, err := e.loadReserve(view, index, now, cfg.BstopRateBps, traceID)
		if err != nil {
			return err
		}
		tok, err := e.resolveToken(asset)
		if err != nil {
			return err
		}
		assetAmount := fixedpoint.ToAssetFromD(bidShares, reserve.DRate)
		if err := tok.TransferFrom(filler, assetAmount); err != nil {
			return err
		}
		positions.SubLiability(index, bidShares)
		reserve.DSupply = new(big.Int).Sub(reserve.DSupply, bidShares)
	}
	for index, reserve := range view.reserves {
		if err := e.state.PutReserve(e.poolID, index, view.assets[index], reserve); err != nil {
			return err
		}
	}
	if err := e.state.PutPositions(e.poolID, auctionUser, positions); err != nil {
		return err
	}

	if e.backstop == nil {
		return nil
	}
	lotShares, ok := result.LotFilled[0]
	if !ok || lotShares.Sign() == 0 {
		return nil
	}
	return e.backstop.SettleBadDebtFill(e.poolID, filler, lotShares)
}

func (e *Engine) settleInterestFill(filler string, result auction.FillResult, now uint64, traceID string) error {
	cfg, err := e.loadConfig()
	if err != nil {
		return err
	}
	view := newReserveView()

	for index, lotShares := range result.LotFilled {
		if lotShares.Sign() == 0 {
			continue
		}
		reserve, asset, err := e.loadReserve(view, index, now, cfg.BstopRateBps, traceID)
		if err != nil {
			return err
		}
		tok, err := e.resolveToken(asset)
		if err != nil {
			return err
		}
		if err := tok.Transfer(filler, lotShares); err != nil {
			return err
		}
		reserve.BackstopCredit = new(big.Int).Sub(reserve.BackstopCredit, lotShares)
		if reserve.BackstopCredit.Sign() < 0 {
			reserve.BackstopCredit = big.NewInt(0)
		}
	}
	for index, reserve := range view.reserves {
		if err := e.state.PutReserve(e.poolID, index, view.assets[index], reserve); err != nil {
			return err
		}
	}

	if e.backstop == nil {
		return nil
	}
	bidShares, ok := result.BidFilled[0]
	if !ok || bidShares.Sign() == 0 {
		return nil
	}
	return e.backstop.SettleInterestFill(e.poolID, filler, bidShares)
}

// DeleteStaleAuction implements spec.md §4.3's stale-auction deletion: any
// caller may delete an auction once it has passed block 500 unfilled.
func (e *Engine) DeleteStaleAuction(kind auction.Kind, auctionUser string, currentBlock uint64) error {
	a, ok, err := e.state.GetAuction(e.poolID, kind, auctionUser)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoAuction
	}
	if !auction.IsStale(a, currentBlock) {
		return ErrAuctionNotStale
	}
	return e.state.DeleteAuction(e.poolID, kind, auctionUser)
}
