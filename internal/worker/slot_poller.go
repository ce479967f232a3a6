package worker

import (
	"context"
	"sync/atomic"
	"time"

	"homefinances/internal/log"
)

// Syncer reloads the slots other processes have written and returns their
// keys.
type Syncer interface {
	Sync(ctx context.Context) []string
}

// SlotPoller watches the store for slots written by other processes, such
// as the CLI, when no broker carries slot changes.
type SlotPoller struct {
	ledger   Syncer
	interval time.Duration
	logger   *log.Logger

	reloaded int64
}

func NewSlotPoller(ledger Syncer, interval time.Duration, logger *log.Logger) *SlotPoller {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if interval <= 0 {
		interval = 2 * time.Second
	}
	return &SlotPoller{
		ledger:   ledger,
		interval: interval,
		logger:   logger.WithComponent(log.ComponentStorage),
	}
}

// Run polls every interval until ctx is cancelled.
func (p *SlotPoller) Run(ctx context.Context) error {
	p.logger.InfoContext(ctx, "Slot poller started", "interval", p.interval)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			p.Poll(ctx)
		}
	}
}

// Poll runs one check and returns how many slots were reloaded.
func (p *SlotPoller) Poll(ctx context.Context) int {
	keys := p.ledger.Sync(ctx)
	for _, key := range keys {
		p.logger.InfoContext(ctx, "Reloaded slot written by another process",
			log.FieldSlot, key, log.FieldOperation, log.OpReload)
	}
	atomic.AddInt64(&p.reloaded, int64(len(keys)))
	return len(keys)
}

// Reloaded returns the number of slot reloads so far.
func (p *SlotPoller) Reloaded() int64 {
	return atomic.LoadInt64(&p.reloaded)
}
