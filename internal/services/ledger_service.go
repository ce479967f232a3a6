package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"homefinances/internal/amqp"
	"homefinances/internal/cache"
	"homefinances/internal/core"
	"homefinances/internal/log"
	"homefinances/internal/notify"
	"homefinances/internal/register"
	"homefinances/internal/report"
	"homefinances/internal/sheets"
	"homefinances/internal/state"
	"homefinances/internal/storage"
)

// Publisher broadcasts slot changes to other processes.
type Publisher interface {
	PublishSlotChange(ctx context.Context, msg *amqp.SlotChangeMessage) error
}

// Status tones.
const (
	ToneSuccess = "success"
	ToneError   = "error"
)

// Status is a user-facing outcome message.
type Status struct {
	Message string `json:"message"`
	Tone    string `json:"tone,omitempty"`
}

type Options struct {
	Store     storage.SlotStore
	Hub       *notify.Hub
	Publisher Publisher
	Sheets    sheets.ReportWriter
	Seeds     []register.SeedRow
	Env       state.Env
	// Origin identifies this process on the change bus; a new id when empty.
	Origin   string
	CacheTTL time.Duration
	Logger   *log.Logger
}

// LedgerService is the single writer of the household state. Every
// operation swaps in a new snapshot, writes the changed slots best-effort
// and announces them.
type LedgerService struct {
	mu        sync.Mutex
	store     storage.SlotStore
	versions  storage.Versioner
	hub       *notify.Hub
	publisher Publisher
	sheets    sheets.ReportWriter
	env       state.Env
	origin    string
	logger    *log.Logger
	events    *log.StructuredLogger

	state         state.State
	version       uint64
	seen          map[string]int64
	persistFailed bool
	register      *register.Engine
	views         *cache.LRUCache[*register.Session]
	summaries     *cache.LRUCache[report.Summary]
}

const (
	maxViews = 1024
	viewTTL  = 30 * time.Minute
)

// NewLedgerService loads the slots from opts.Store. Accounts repaired while
// loading are written back.
func NewLedgerService(ctx context.Context, opts Options) *LedgerService {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentLedger)
	hub := opts.Hub
	if hub == nil {
		hub = notify.NewHub(0)
	}
	origin := opts.Origin
	if origin == "" {
		origin = core.NewID()
	}
	ttl := opts.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}

	s := &LedgerService{
		store:     opts.Store,
		hub:       hub,
		publisher: opts.Publisher,
		sheets:    opts.Sheets,
		env:       opts.Env,
		origin:    origin,
		logger:    logger,
		events:    log.NewStructuredLogger(logger),
		register:  register.New(opts.Seeds),
		views:     cache.NewLRUCache[*register.Session](maxViews, viewTTL),
		summaries: cache.NewLRUCache[report.Summary](256, ttl),
	}
	s.versions, _ = opts.Store.(storage.Versioner)
	s.seen = make(map[string]int64, len(storage.Keys))
	for _, key := range storage.Keys {
		s.markSeen(ctx, key)
	}

	loaded, changes := state.Load(ctx, s.store, s.env)
	s.state = loaded
	if changes != 0 {
		logger.InfoContext(ctx, "Repaired account ids while loading")
		s.persist(ctx, changes)
	}
	s.rerender()
	return s
}

// Snapshot returns a copy of the current state.
func (s *LedgerService) Snapshot() state.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version increases with every applied change, local or remote.
func (s *LedgerService) Version() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// PersistWarning reports whether the most recent write failed.
func (s *LedgerService) PersistWarning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.persistFailed
}

func (s *LedgerService) Origin() string {
	return s.origin
}

// Caches lists the caches a cache.Manager should sweep.
func (s *LedgerService) Caches() []cache.Cleaner {
	return []cache.Cleaner{s.summaries, s.views}
}

// Hub exposes the in-process change stream.
func (s *LedgerService) Hub() *notify.Hub {
	return s.hub
}

// Summary returns the month rollup, cached per state version.
func (s *LedgerService) Summary(month string) report.Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.summaryLocked(month)
}

func (s *LedgerService) summaryLocked(month string) report.Summary {
	txs := s.state.Transactions
	return s.summaries.GetOrCompute(cache.VersionedKey(s.version, month), func() report.Summary {
		return report.SummarizeMonth(month, txs)
	})
}

// commit installs next and persists the changed slots. Callers hold mu.
func (s *LedgerService) commit(ctx context.Context, next state.State, changes state.Changes, op string) {
	if changes == 0 {
		return
	}
	s.state = next
	s.version++
	s.persist(ctx, changes)
	if changes&(state.TransactionsChanged|state.AccountsChanged) != 0 {
		s.rerender()
	}
	for _, key := range changes.Keys() {
		s.events.LogSlotChange(ctx, op, key, s.origin)
	}
}

// persist writes every changed slot and announces it. Write failures keep
// the in-memory state and raise the persist warning.
func (s *LedgerService) persist(ctx context.Context, changes state.Changes) {
	failed := false
	for _, key := range changes.Keys() {
		raw, err := s.write(ctx, key)
		if err != nil {
			failed = true
			s.logger.WarnContext(ctx, "Slot write failed, change kept in memory only",
				log.FieldSlot, key, log.FieldError, err, log.FieldOperation, log.OpPersist)
		} else {
			s.noteWrite(ctx, key)
		}
		if raw == nil {
			continue
		}
		s.hub.Publish(notify.Change{Key: key, Value: raw, Origin: s.origin})
		s.publish(ctx, key, raw)
	}
	s.persistFailed = failed
}

func (s *LedgerService) write(ctx context.Context, key string) ([]byte, error) {
	switch key {
	case storage.TransactionsKey:
		return storage.WriteSlot(ctx, s.store, key, s.state.Transactions)
	case storage.AccountsKey:
		return storage.WriteSlot(ctx, s.store, key, s.state.Accounts)
	case storage.ReportsKey:
		return storage.WriteSlot(ctx, s.store, key, s.state.Reports)
	}
	return nil, fmt.Errorf("write %q: %w", key, storage.ErrUnknownKey)
}

func (s *LedgerService) publish(ctx context.Context, key string, raw []byte) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishSlotChange(ctx, amqp.NewSlotChangeMessage(key, s.origin, raw)); err != nil {
		s.logger.WarnContext(ctx, "Failed to broadcast slot change",
			log.FieldSlot, key, log.FieldError, err, log.FieldOperation, log.OpPublish)
	}
}

// rerender refreshes the register rows from the current snapshot.
func (s *LedgerService) rerender() {
	s.register.SetAccountOptions(s.state.AccountNames())
	s.register.Render(s.state.Transactions)
}

// Reload re-reads the slot named by key from the store, replacing the
// in-memory list unconditionally. Views are notified through the hub.
func (s *LedgerService) Reload(ctx context.Context, key string) error {
	if !storage.IsKey(key) {
		return fmt.Errorf("reload %q: %w", key, storage.ErrUnknownKey)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.markSeen(ctx, key)
	s.reloadLocked(ctx, key)
	return nil
}

func (s *LedgerService) reloadLocked(ctx context.Context, key string) {
	next, repaired := s.state.Reload(ctx, s.store, key, s.env)
	s.state = next
	s.version++
	if repaired != 0 {
		s.persist(ctx, repaired)
	}
	if state.ChangesFor(key)&(state.TransactionsChanged|state.AccountsChanged) != 0 {
		s.rerender()
	}
	s.hub.Publish(notify.Change{Key: key, Origin: "remote"})
	s.events.LogSlotChange(ctx, log.OpReload, key, "")
}

// HandleSlotChange applies a change broadcast by another process. Messages
// from this process are ignored.
func (s *LedgerService) HandleSlotChange(ctx context.Context, msg *amqp.SlotChangeMessage) error {
	if msg.Origin == s.origin {
		return nil
	}
	return s.Reload(ctx, msg.Key)
}

// Close releases the store.
func (s *LedgerService) Close() error {
	if s.store == nil {
		return nil
	}
	if err := s.store.Close(); err != nil {
		return fmt.Errorf("close ledger store: %w", err)
	}
	return nil
}
