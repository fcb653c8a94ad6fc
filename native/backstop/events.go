package backstop

import "math/big"

// Event is the common envelope for backstop-emitted events (spec.md §6).
// TraceID is a fresh ID generated for each emitted event; SettleBadDebtFill
// and SettleInterestFill emit no events.
type Event struct {
	PoolID  string
	Kind    string
	TraceID string
}

// DepositEvent covers Deposit/Withdraw; QueueWithdrawal and
// DequeueWithdrawal emit no event.
type DepositEvent struct {
	Event
	User        string
	SharesDelta *big.Int
	TokensDelta *big.Int
}

// DonateDrawEvent covers Donate/Draw.
type DonateDrawEvent struct {
	Event
	Amount *big.Int
	Draw   bool
}

// ClaimEvent is emitted when a user claims accrued backstop emissions.
type ClaimEvent struct {
	Event
	User   string
	Amount *big.Int
}

// DistributeEvent is emitted when the shared Emitter allowance is pulled
// forward and allocated across the reward zone.
type DistributeEvent struct {
	Event
	Amount *big.Int
}

// GulpEmissionsEvent is emitted when a pool drains its RzEmissions backlog
// into its own backstop-depositor emission stream and pool-side allowance.
type GulpEmissionsEvent struct {
	Event
	BackstopEmissions *big.Int
	PoolEmissions     *big.Int
}

// DropEvent is emitted when an admin evicts a pool from the reward zone and
// zeroes its undistributed backfill bucket.
type DropEvent struct {
	Event
}

// Sink receives backstop events.
type Sink interface {
	Emit(event interface{})
}

// NoopSink discards every event.
type NoopSink struct{}

func (NoopSink) Emit(interface{}) {}
