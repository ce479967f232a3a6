package backend

import (
	"errors"
	"fmt"
	"strings"

	"homefinances/internal/config"
)

var errUnknownBackend = errors.New("unknown data backend")

// FromAppConfig picks the slot backend named by DATA_BACKEND.
func FromAppConfig(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return Config{}, errors.New("backend: nil app config")
	}
	bc := Config{
		Type:          BackendType(cfg.DataBackend),
		SQLiteDBPath:  cfg.SQLiteDBPath,
		PostgresURL:   cfg.PostgresURL,
		DataDirectory: cfg.DataDir,
	}
	if !bc.Type.IsValid() {
		return Config{}, unknownBackend(cfg.DataBackend)
	}
	return bc, nil
}

func unknownBackend(name string) error {
	return fmt.Errorf("%w %q (use one of %s)", errUnknownBackend, name, strings.Join(GetBackendTypeStrings(), ", "))
}

// Validate checks that the selected backend has its connection setting.
func (c Config) Validate() error {
	switch c.Type {
	case MemoryBackend:
		return nil
	case SQLiteBackend:
		if c.SQLiteDBPath == "" {
			return errors.New("sqlite backend needs SQLITE_DB_PATH")
		}
	case PostgresBackend:
		if c.PostgresURL == "" {
			return errors.New("postgres backend needs POSTGRES_URL")
		}
	default:
		return unknownBackend(string(c.Type))
	}
	return nil
}

// GetBackendTypeStrings lists the accepted DATA_BACKEND values.
func GetBackendTypeStrings() []string {
	return []string{MemoryBackend.String(), SQLiteBackend.String(), PostgresBackend.String()}
}
