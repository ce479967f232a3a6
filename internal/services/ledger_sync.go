package services

import (
	"context"

	"homefinances/internal/log"
	"homefinances/internal/storage"
)

// lockFresh takes mu and first reloads the slots other processes rewrote,
// so a mutation starts from the stored lists.
func (s *LedgerService) lockFresh(ctx context.Context) {
	s.mu.Lock()
	s.syncLocked(ctx)
}

// Sync reloads every slot another process has written since this one last
// read or wrote it, and returns their keys. Stores that do not count
// writes never report a change.
func (s *LedgerService) Sync(ctx context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.syncLocked(ctx)
}

func (s *LedgerService) syncLocked(ctx context.Context) []string {
	if s.versions == nil {
		return nil
	}
	var reloaded []string
	for _, key := range storage.Keys {
		v, err := s.versions.Version(ctx, key)
		if err != nil {
			s.logger.DebugContext(ctx, "Slot version check failed",
				log.FieldSlot, key, log.FieldError, err, log.FieldOperation, log.OpRead)
			continue
		}
		if v == s.seen[key] {
			continue
		}
		s.seen[key] = v
		s.reloadLocked(ctx, key)
		reloaded = append(reloaded, key)
	}
	return reloaded
}

// markSeen records the current version of key as already applied.
func (s *LedgerService) markSeen(ctx context.Context, key string) {
	if s.versions == nil {
		return
	}
	if v, err := s.versions.Version(ctx, key); err == nil {
		s.seen[key] = v
	}
}

// noteWrite accounts for this process' own write of key. When the version
// moved by more than one another process wrote as well, and the old version
// is kept so the next sync reloads the slot.
func (s *LedgerService) noteWrite(ctx context.Context, key string) {
	if s.versions == nil {
		return
	}
	v, err := s.versions.Version(ctx, key)
	if err != nil {
		return
	}
	if v == s.seen[key]+1 {
		s.seen[key] = v
	}
}
