package observability

import (
	"io"
	"log/slog"
	"math/big"
	"testing"

	"blendpool/native/backstop"
	"blendpool/native/pool"
)

func testSink() *EventSink {
	return NewEventSink(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestEventSinkEmitDoesNotPanicAcrossEventKinds(t *testing.T) {
	sink := testSink()
	events := []interface{}{
		pool.SupplyEvent{
			Event:       pool.Event{PoolID: "pool-1", Kind: "supply", TraceID: "t1"},
			User:        "alice",
			ReserveIdx:  0,
			Amount:      big.NewInt(100),
			SharesDelta: big.NewInt(100),
			Collateral:  true,
		},
		pool.BorrowEvent{
			Event:       pool.Event{PoolID: "pool-1", Kind: "borrow", TraceID: "t2"},
			User:        "alice",
			ReserveIdx:  1,
			Amount:      big.NewInt(50),
			SharesDelta: big.NewInt(50),
		},
		pool.AuctionCreatedEvent{
			Event:       pool.Event{PoolID: "pool-1", Kind: "auction_created", TraceID: "t3"},
			User:        "bob",
			AuctionKind: 0,
			Block:       42,
		},
		pool.AuctionFillEvent{
			Event:       pool.Event{PoolID: "pool-1", Kind: "auction_fill", TraceID: "t4"},
			User:        "bob",
			Filler:      "carol",
			AuctionKind: 1,
			FillPercent: 100,
			Complete:    true,
		},
		pool.StatusChangedEvent{
			Event:     pool.Event{PoolID: "pool-1", Kind: "status_changed", TraceID: "t5"},
			OldStatus: pool.StatusAdminActive,
			NewStatus: pool.StatusBackstopOnIce,
		},
		pool.BadDebtEvent{
			Event:      pool.Event{PoolID: "pool-1", Kind: "bad_debt", TraceID: "t6"},
			User:       "dave",
			ReserveIdx: 2,
			Amount:     big.NewInt(10),
		},
		pool.ReserveConfigQueuedEvent{
			Event:      pool.Event{PoolID: "pool-1", Kind: "reserve_config_queued", TraceID: "t7"},
			ReserveIdx: 0,
			ReadyAt:    123456,
		},
		pool.ReserveConfigAppliedEvent{
			Event:      pool.Event{PoolID: "pool-1", Kind: "reserve_config_applied", TraceID: "t8"},
			ReserveIdx: 0,
			Cancelled:  false,
		},
		backstop.DepositEvent{
			Event:       backstop.Event{PoolID: "pool-1", Kind: "deposit", TraceID: "t9"},
			User:        "alice",
			SharesDelta: big.NewInt(10),
			TokensDelta: big.NewInt(10),
		},
		backstop.DonateDrawEvent{
			Event:  backstop.Event{PoolID: "pool-1", Kind: "donate", TraceID: "t10"},
			Amount: big.NewInt(5),
			Draw:   false,
		},
		backstop.ClaimEvent{
			Event:  backstop.Event{PoolID: "pool-1", Kind: "claim", TraceID: "t11"},
			User:   "alice",
			Amount: big.NewInt(7),
		},
		"an unrecognized event type",
	}

	for i, ev := range events {
		func() {
			defer func() {
				if r := recover(); r != nil {
					t.Errorf("event %d panicked: %v", i, r)
				}
			}()
			sink.Emit(ev)
		}()
	}
}

func TestEventSinkUsesDefaultLoggerWhenNil(t *testing.T) {
	sink := &EventSink{pool: Pool(), backstop: Backstop()}
	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Emit with nil logger panicked: %v", r)
		}
	}()
	sink.Emit(pool.BadDebtEvent{
		Event:      pool.Event{PoolID: "pool-1", Kind: "bad_debt"},
		User:       "alice",
		ReserveIdx: 0,
		Amount:     big.NewInt(1),
	})
}
