package backend

import (
	"context"

	"homefinances/internal/storage"
)

// CleanupFunc releases backend resources
type CleanupFunc func() error

// BackendResult is an opened slot store plus its readiness probe.
type BackendResult struct {
	Store storage.SlotStore
	// Ping reports whether the backend is reachable; always nil for memory.
	Ping    func(ctx context.Context) error
	Cleanup CleanupFunc
}

// Factory opens the slot store selected by Config.
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	// sqlite
	SQLiteDBPath string

	// postgres
	PostgresURL string

	// memory: optional "<key>.json" seed files
	DataDirectory string
}

type BackendType string

const (
	MemoryBackend   BackendType = "memory"
	SQLiteBackend   BackendType = "sqlite"
	PostgresBackend BackendType = "postgres"
)

func (bt BackendType) String() string {
	return string(bt)
}

func (bt BackendType) IsValid() bool {
	switch bt {
	case MemoryBackend, SQLiteBackend, PostgresBackend:
		return true
	default:
		return false
	}
}
