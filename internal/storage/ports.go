// Package storage persists the three application slots. Each slot holds a
// JSON-encoded array; reads are lenient and writes are best-effort.
package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
)

// Slot keys.
const (
	TransactionsKey = "home-finances-transactions"
	AccountsKey     = "home-finances-accounts"
	ReportsKey      = "home-finances-reports"
)

// Keys lists every slot in load order.
var Keys = []string{TransactionsKey, AccountsKey, ReportsKey}

// ErrUnknownKey is returned for keys outside Keys.
var ErrUnknownKey = errors.New("unknown slot key")

// SlotStore is the key-value port implemented by every backend.
type SlotStore interface {
	// Get returns the raw slot value and whether the key exists.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// Set replaces the slot value.
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// Versioner is implemented by stores that count the writes of each slot.
// Processes sharing the store compare versions to notice each other's
// writes.
type Versioner interface {
	// Version returns the write count of key, 0 when it was never written.
	Version(ctx context.Context, key string) (int64, error)
}

// IsKey reports whether key names one of the slots.
func IsKey(key string) bool {
	for _, k := range Keys {
		if k == key {
			return true
		}
	}
	return false
}

// ReadSlot decodes the array stored under key. A missing key, a backend
// error, malformed JSON or a non-array value all read as an empty slice.
func ReadSlot[T any](ctx context.Context, store SlotStore, key string) []T {
	raw, ok, err := store.Get(ctx, key)
	if err != nil {
		slog.DebugContext(ctx, "Slot read failed, using empty list", "key", key, "error", err)
		return []T{}
	}
	if !ok || len(raw) == 0 {
		return []T{}
	}
	return DecodeSlot[T](raw)
}

// DecodeSlot decodes a raw slot value with the same leniency as ReadSlot.
// Elements that are null or do not decode into T are dropped.
func DecodeSlot[T any](raw []byte) []T {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return []T{}
	}
	items := make([]T, 0, len(elems))
	for _, elem := range elems {
		if bytes.Equal(bytes.TrimSpace(elem), []byte("null")) {
			continue
		}
		var item T
		if err := json.Unmarshal(elem, &item); err != nil {
			continue
		}
		items = append(items, item)
	}
	return items
}

// WriteSlot encodes items and stores them under key.
func WriteSlot[T any](ctx context.Context, store SlotStore, key string, items []T) ([]byte, error) {
	if !IsKey(key) {
		return nil, fmt.Errorf("write %q: %w", key, ErrUnknownKey)
	}
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	if err := store.Set(ctx, key, raw); err != nil {
		return raw, fmt.Errorf("store %s: %w", key, err)
	}
	return raw, nil
}
