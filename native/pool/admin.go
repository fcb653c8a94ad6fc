package pool

import (
	"github.com/google/uuid"
)

// QueueSetReserveConfig stages a governance change to an existing reserve's
// static config, grounded on the Rust source's queued-config pattern
// (`contracts/pool/src/pool/reserve.rs`): the change does not take effect
// until SetReserveConfig is called no earlier than cfg.ConfigTimelockSeconds
// after now.
func (e *Engine) QueueSetReserveConfig(index uint32, cfg ReserveConfig, now uint64) error {
	if _, _, ok, err := e.state.GetReserve(e.poolID, index); err != nil {
		return err
	} else if !ok {
		return ErrReserveNotFound
	}
	readyAt := now + cfg.ConfigTimelockSeconds
	staged := cfg.Clone()
	if err := e.state.PutQueuedReserveConfig(e.poolID, index, &staged, readyAt); err != nil {
		return err
	}
	e.sink.Emit(ReserveConfigQueuedEvent{
		Event:      Event{PoolID: e.poolID, Kind: "queue_set_reserve", TraceID: uuid.NewString()},
		ReserveIdx: index,
		ReadyAt:    readyAt,
	})
	return nil
}

// CancelSetReserveConfig discards a pending QueueSetReserveConfig change
// before it applies.
func (e *Engine) CancelSetReserveConfig(index uint32) error {
	if _, _, ok, err := e.state.GetQueuedReserveConfig(e.poolID, index); err != nil {
		return err
	} else if !ok {
		return ErrNoQueuedConfig
	}
	if err := e.state.ClearQueuedReserveConfig(e.poolID, index); err != nil {
		return err
	}
	e.sink.Emit(ReserveConfigAppliedEvent{
		Event:      Event{PoolID: e.poolID, Kind: "cancel_set_reserve", TraceID: uuid.NewString()},
		ReserveIdx: index,
		Cancelled:  true,
	})
	return nil
}

// SetReserveConfig applies a previously queued reserve config change once its
// timelock has elapsed. The reserve's live accounting state (rates, supply,
// ir_mod) carries over unchanged; only the static Config is replaced.
func (e *Engine) SetReserveConfig(index uint32, now uint64) error {
	queued, readyAt, ok, err := e.state.GetQueuedReserveConfig(e.poolID, index)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoQueuedConfig
	}
	if now < readyAt {
		return ErrQueuedConfigNotReady
	}
	reserve, asset, ok, err := e.state.GetReserve(e.poolID, index)
	if err != nil {
		return err
	}
	if !ok {
		return ErrReserveNotFound
	}
	reserve.Config = queued.Clone()
	if err := e.state.PutReserve(e.poolID, index, asset, reserve); err != nil {
		return err
	}
	if err := e.state.ClearQueuedReserveConfig(e.poolID, index); err != nil {
		return err
	}
	e.sink.Emit(ReserveConfigAppliedEvent{
		Event:      Event{PoolID: e.poolID, Kind: "set_reserve", TraceID: uuid.NewString()},
		ReserveIdx: index,
	})
	return nil
}
