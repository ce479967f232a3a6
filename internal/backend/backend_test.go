package backend

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"homefinances/internal/config"
	"homefinances/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *config.Config
		want    BackendType
		wantErr bool
	}{
		{name: "nil config", cfg: nil, wantErr: true},
		{name: "unknown backend", cfg: &config.Config{DataBackend: "sheets"}, wantErr: true},
		{name: "memory", cfg: &config.Config{DataBackend: "memory", DataDir: "data"}, want: MemoryBackend},
		{name: "postgres", cfg: &config.Config{DataBackend: "postgres", PostgresURL: "postgres://x"}, want: PostgresBackend},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FromAppConfig(tt.cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("FromAppConfig() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && got.Type != tt.want {
				t.Errorf("FromAppConfig() type = %s, want %s", got.Type, tt.want)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"memory needs nothing", Config{Type: MemoryBackend}, false},
		{"sqlite without path", Config{Type: SQLiteBackend}, true},
		{"postgres without url", Config{Type: PostgresBackend}, true},
		{"invalid type", Config{Type: "bogus"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.config.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestCreateMemoryBackend_SeedsFromDir(t *testing.T) {
	dir := t.TempDir()
	seed := []byte(`[{"id":"a1","name":"Checking","type":"Checking"}]`)
	if err := os.WriteFile(filepath.Join(dir, storage.AccountsKey+".json"), seed, 0644); err != nil {
		t.Fatal(err)
	}

	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: MemoryBackend, DataDirectory: dir})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	raw, ok, err := res.Store.Get(context.Background(), storage.AccountsKey)
	if err != nil || !ok || string(raw) != string(seed) {
		t.Errorf("Get() = %s, %v, %v", raw, ok, err)
	}
	if err := res.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "slots.db")
	res, err := NewFactory(nil).CreateBackend(context.Background(), Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend() error = %v", err)
	}
	defer res.Cleanup()

	if err := res.Ping(context.Background()); err != nil {
		t.Errorf("Ping() error = %v", err)
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 3 || got[0] != "memory" || got[2] != "postgres" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}

func TestUnknownBackendNamesChoices(t *testing.T) {
	_, err := FromAppConfig(&config.Config{DataBackend: "redis"})
	if !errors.Is(err, errUnknownBackend) {
		t.Fatalf("FromAppConfig() error = %v, want errUnknownBackend", err)
	}
	if !strings.Contains(err.Error(), "memory, sqlite, postgres") {
		t.Errorf("error %q should list the accepted backends", err)
	}
}
