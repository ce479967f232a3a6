// Package worker runs the background loops of the server: applying slot
// changes broadcast by other processes and mirroring reports to Google
// Sheets.
package worker

import (
	"context"
	"errors"
	"sync/atomic"

	"homefinances/internal/amqp"
	"homefinances/internal/log"
	"homefinances/internal/storage"
)

// Consumer delivers broadcast slot changes until ctx is done.
type Consumer interface {
	ConsumeSlotChanges(ctx context.Context, handler func(context.Context, *amqp.SlotChangeMessage) error) error
}

// Ledger is the part of the ledger service a SlotWorker drives.
type Ledger interface {
	HandleSlotChange(ctx context.Context, msg *amqp.SlotChangeMessage) error
	Origin() string
}

// SlotWorker reloads the ledger whenever another process rewrites a slot.
type SlotWorker struct {
	consumer Consumer
	ledger   Ledger
	logger   *log.Logger

	applied int64
	ignored int64
}

func NewSlotWorker(consumer Consumer, ledger Ledger, logger *log.Logger) *SlotWorker {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SlotWorker{
		consumer: consumer,
		ledger:   ledger,
		logger:   logger.WithComponent(log.ComponentAMQP),
	}
}

// Run consumes until ctx is cancelled. Cancellation is not an error.
func (w *SlotWorker) Run(ctx context.Context) error {
	w.logger.InfoContext(ctx, "Slot change worker started", log.FieldOrigin, w.ledger.Origin())
	err := w.consumer.ConsumeSlotChanges(ctx, w.HandleMessage)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return nil
	}
	return err
}

// HandleMessage applies one change. Echoes of this process' own writes and
// unknown slot keys are acknowledged and dropped.
func (w *SlotWorker) HandleMessage(ctx context.Context, msg *amqp.SlotChangeMessage) error {
	if msg.Origin == w.ledger.Origin() || !storage.IsKey(msg.Key) {
		atomic.AddInt64(&w.ignored, 1)
		w.logger.DebugContext(ctx, "Ignoring slot change", log.FieldSlot, msg.Key, log.FieldOrigin, msg.Origin)
		return nil
	}
	ctx = log.IntoContext(ctx, w.logger.With(log.FieldSlot, msg.Key))
	if err := w.ledger.HandleSlotChange(ctx, msg); err != nil {
		return err
	}
	atomic.AddInt64(&w.applied, 1)
	return nil
}

// Stats returns how many changes were applied and ignored.
func (w *SlotWorker) Stats() (applied, ignored int64) {
	return atomic.LoadInt64(&w.applied), atomic.LoadInt64(&w.ignored)
}
