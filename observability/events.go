package observability

import (
	"log/slog"

	"blendpool/native/backstop"
	"blendpool/native/pool"
)

// EventSink fans engine events out to structured logs and Prometheus
// counters. It satisfies both pool.Sink and backstop.Sink since Emit takes
// an untyped event and both modules define their own event structs.
type EventSink struct {
	log      *slog.Logger
	pool     *PoolMetrics
	backstop *BackstopMetrics
}

// NewEventSink constructs a sink bound to the given logger. Metrics are
// always recorded against the package-level singleton registries.
func NewEventSink(log *slog.Logger) *EventSink {
	return &EventSink{log: log, pool: Pool(), backstop: Backstop()}
}

// Emit implements pool.Sink and backstop.Sink.
func (s *EventSink) Emit(event interface{}) {
	if s.log == nil {
		s.log = slog.Default()
	}
	switch ev := event.(type) {
	case pool.SupplyEvent:
		s.log.Info("pool event", "pool", ev.PoolID, "kind", ev.Kind, "trace_id", ev.TraceID, "user", ev.User,
			"reserve", ev.ReserveIdx, "amount", ev.Amount.String(), "collateral", ev.Collateral)
		s.pool.ObserveRequest(ev.PoolID, ev.Kind, nil)
	case pool.BorrowEvent:
		s.log.Info("pool event", "pool", ev.PoolID, "kind", ev.Kind, "trace_id", ev.TraceID, "user", ev.User,
			"reserve", ev.ReserveIdx, "amount", ev.Amount.String())
		s.pool.ObserveRequest(ev.PoolID, ev.Kind, nil)
	case pool.AuctionCreatedEvent:
		s.log.Info("auction created", "pool", ev.PoolID, "trace_id", ev.TraceID, "user", ev.User,
			"kind", ev.AuctionKind, "block", ev.Block)
		s.pool.RecordAuctionCreated(ev.PoolID, ev.AuctionKind)
	case pool.AuctionFillEvent:
		s.log.Info("auction filled", "pool", ev.PoolID, "trace_id", ev.TraceID, "user", ev.User, "filler", ev.Filler,
			"kind", ev.AuctionKind, "fill_percent", ev.FillPercent, "complete", ev.Complete)
		s.pool.RecordAuctionFill(ev.PoolID, ev.AuctionKind, ev.Complete)
	case pool.StatusChangedEvent:
		s.log.Warn("pool status changed", "pool", ev.PoolID, "trace_id", ev.TraceID, "old", ev.OldStatus, "new", ev.NewStatus)
		s.pool.SetStatus(ev.PoolID, uint8(ev.NewStatus))
	case pool.BadDebtEvent:
		s.log.Warn("bad debt recognized", "pool", ev.PoolID, "trace_id", ev.TraceID, "user", ev.User,
			"reserve", ev.ReserveIdx, "amount", ev.Amount.String())
		s.pool.RecordBadDebt(ev.PoolID)
	case pool.ReserveConfigQueuedEvent:
		s.log.Info("reserve config queued", "pool", ev.PoolID, "trace_id", ev.TraceID,
			"reserve", ev.ReserveIdx, "ready_at", ev.ReadyAt)
	case pool.ReserveConfigAppliedEvent:
		s.log.Info("reserve config applied", "pool", ev.PoolID, "trace_id", ev.TraceID,
			"reserve", ev.ReserveIdx, "cancelled", ev.Cancelled)

	case backstop.DepositEvent:
		s.log.Info("backstop event", "pool", ev.PoolID, "kind", ev.Kind, "trace_id", ev.TraceID, "user", ev.User,
			"shares_delta", ev.SharesDelta.String(), "tokens_delta", ev.TokensDelta.String())
		s.backstop.RecordShareEvent(ev.PoolID, ev.Kind)
	case backstop.DonateDrawEvent:
		s.log.Info("backstop event", "pool", ev.PoolID, "kind", ev.Kind, "trace_id", ev.TraceID, "amount", ev.Amount.String(), "draw", ev.Draw)
		s.backstop.RecordShareEvent(ev.PoolID, ev.Kind)
	case backstop.ClaimEvent:
		s.log.Info("backstop claim", "pool", ev.PoolID, "trace_id", ev.TraceID, "user", ev.User, "amount", ev.Amount.String())
		s.backstop.RecordClaim(ev.PoolID)
	case backstop.DistributeEvent:
		s.log.Info("backstop distribute", "trace_id", ev.TraceID, "amount", ev.Amount.String())
	case backstop.GulpEmissionsEvent:
		s.log.Info("backstop gulp emissions", "pool", ev.PoolID, "trace_id", ev.TraceID,
			"backstop_emissions", ev.BackstopEmissions.String(), "pool_emissions", ev.PoolEmissions.String())
	case backstop.DropEvent:
		s.log.Warn("backstop pool dropped", "pool", ev.PoolID, "trace_id", ev.TraceID)

	default:
		s.log.Warn("unrecognized event", "type", event)
	}
}
