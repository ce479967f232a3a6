package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"homefinances/internal/storage/memory"
)

type item struct {
	ID string `json:"id"`
}

type brokenStore struct{ err error }

func (b brokenStore) Get(context.Context, string) ([]byte, bool, error) { return nil, false, b.err }
func (b brokenStore) Set(context.Context, string, []byte) error         { return b.err }
func (b brokenStore) Close() error                                      { return nil }

func TestReadSlotLenient(t *testing.T) {
	ctx := context.Background()
	cases := []struct {
		name  string
		raw   string
		set   bool
		count int
	}{
		{"missing", "", false, 0},
		{"malformed", "{not json", true, 0},
		{"object", `{"id":"1"}`, true, 0},
		{"string", `"hello"`, true, 0},
		{"null", `null`, true, 0},
		{"array", `[{"id":"1"},{"id":"2"}]`, true, 2},
		{"mixed elements", `[{"id":"1"},5,null,"x",{"id":"2"}]`, true, 2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := memory.New()
			if tc.set {
				_ = s.Set(ctx, TransactionsKey, []byte(tc.raw))
			}
			got := ReadSlot[item](ctx, s, TransactionsKey)
			if got == nil {
				t.Fatalf("expected non-nil slice")
			}
			if len(got) != tc.count {
				t.Fatalf("expected %d items, got %d", tc.count, len(got))
			}
		})
	}
}

func TestReadSlotBackendError(t *testing.T) {
	got := ReadSlot[item](context.Background(), brokenStore{err: errors.New("disabled")}, AccountsKey)
	if len(got) != 0 {
		t.Fatalf("expected empty, got %v", got)
	}
}

func TestWriteSlot(t *testing.T) {
	ctx := context.Background()
	s := memory.New()
	raw, err := WriteSlot(ctx, s, ReportsKey, []item{{ID: "a"}})
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if string(raw) != `[{"id":"a"}]` {
		t.Fatalf("unexpected encoding %s", raw)
	}
	if _, err := WriteSlot[item](ctx, s, ReportsKey, nil); err != nil {
		t.Fatalf("write nil: %v", err)
	}
	if v, _, _ := s.Get(ctx, ReportsKey); string(v) != `[]` {
		t.Fatalf("nil list should store [], got %s", v)
	}
	if _, err := WriteSlot(ctx, s, "other", []item{}); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("expected ErrUnknownKey, got %v", err)
	}
	if _, err := WriteSlot(ctx, brokenStore{err: errors.New("quota")}, ReportsKey, []item{}); err == nil {
		t.Fatalf("expected write error")
	}
}

func TestSQLiteStore(t *testing.T) {
	ctx := context.Background()
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "data", "home.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer s.Close()

	if _, ok, err := s.Get(ctx, AccountsKey); ok || err != nil {
		t.Fatalf("expected missing slot, got ok=%v err=%v", ok, err)
	}
	if _, err := WriteSlot(ctx, s, AccountsKey, []item{{ID: "1"}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := WriteSlot(ctx, s, AccountsKey, []item{{ID: "1"}, {ID: "2"}}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	got := ReadSlot[item](ctx, s, AccountsKey)
	if len(got) != 2 || got[1].ID != "2" {
		t.Fatalf("unexpected slot %v", got)
	}
}

func TestSQLiteStoreVersionsAcrossHandles(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "home.db")
	a, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open a: %v", err)
	}
	defer a.Close()
	b, err := NewSQLiteStore(path)
	if err != nil {
		t.Fatalf("open b: %v", err)
	}
	defer b.Close()

	if v, err := b.Version(ctx, ReportsKey); err != nil || v != 0 {
		t.Fatalf("unwritten slot version = %d, %v", v, err)
	}
	for i := 0; i < 2; i++ {
		if _, err := WriteSlot(ctx, a, ReportsKey, []item{{ID: "r"}}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if v, err := b.Version(ctx, ReportsKey); err != nil || v != 2 {
		t.Fatalf("version seen by other handle = %d, %v", v, err)
	}
}
