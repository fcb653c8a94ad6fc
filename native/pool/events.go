package pool

import "math/big"

// Event is the common envelope every pool-emitted event embeds, mirroring
// spec.md §6's event table (pool, kind, and kind-specific fields). TraceID
// is shared by every event a single Submit, FlashLoan or FillAuction call
// emits, so a log aggregator can group one call's events together.
type Event struct {
	PoolID  string
	Kind    string
	TraceID string
}

// SupplyEvent describes a change on a reserve's supply side. The engine
// emits it only with Kind "reserve_accrue", when reserve accrual credits the
// backstop; Submit emits no per-request supply or withdraw events.
type SupplyEvent struct {
	Event
	User        string
	ReserveIdx  uint32
	Amount      *big.Int
	SharesDelta *big.Int
	Collateral  bool
}

// BorrowEvent describes a borrow or repay. No engine path emits it: Submit
// emits no per-request borrow or repay events.
type BorrowEvent struct {
	Event
	User        string
	ReserveIdx  uint32
	Amount      *big.Int
	SharesDelta *big.Int
}

// AuctionCreatedEvent describes a newly created auction. No engine path
// emits it; the constructors in auction_create.go return the auction only.
type AuctionCreatedEvent struct {
	Event
	User        string
	AuctionKind uint8
	Block       uint64
}

// AuctionFillEvent is emitted by fill_auction.
type AuctionFillEvent struct {
	Event
	User         string
	Filler       string
	AuctionKind  uint8
	FillPercent  uint64
	Complete     bool
}

// StatusChangedEvent describes a change of the pool's Status. No engine path
// emits it; RecomputeStatus and SetStatus return the new status only.
type StatusChangedEvent struct {
	Event
	OldStatus Status
	NewStatus Status
}

// BadDebtEvent describes a reserve liability defaulted onto the backstop. No
// engine path emits it.
type BadDebtEvent struct {
	Event
	User       string
	ReserveIdx uint32
	Amount     *big.Int
}

// ReserveConfigQueuedEvent is emitted by queue_set_reserve.
type ReserveConfigQueuedEvent struct {
	Event
	ReserveIdx uint32
	ReadyAt    uint64
}

// ReserveConfigAppliedEvent is emitted by set_reserve once a queued config's
// timelock has elapsed and it takes effect, or by cancel_set_reserve when the
// pending change is discarded instead.
type ReserveConfigAppliedEvent struct {
	Event
	ReserveIdx uint32
	Cancelled  bool
}

// Sink receives events emitted by the engine. Implementations typically
// forward to the host chain's event log; tests typically collect into a
// slice.
type Sink interface {
	Emit(event interface{})
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) Emit(interface{}) {}
