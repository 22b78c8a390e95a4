package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/soundprediction/kgreason/pkg/alert"
	"github.com/soundprediction/kgreason/pkg/config"
	"github.com/soundprediction/kgreason/pkg/types"
)

// Store saves and loads whole snapshots.
type Store interface {
	// Save replaces the stored snapshot.
	Save(ctx context.Context, snap *types.Snapshot) error
	// Load returns the stored snapshot, or types.ErrSnapshotNotFound if none exists.
	Load(ctx context.Context) (*types.Snapshot, error)
	// Location describes where snapshots are kept.
	Location() string
	Close() error
}

// Backend names a Store implementation.
type Backend string

const (
	BackendFile    Backend = "file"
	BackendBadger  Backend = "badger"
	BackendParquet Backend = "parquet"
)

// New opens the store described by cfg, wrapped in a circuit breaker when
// enabled. Breaker trips are reported through alerter, which may be nil.
func New(cfg config.StorageConfig, cb config.CircuitBreakerConfig, alerter alert.Alerter, logger *slog.Logger) (Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	var (
		s   Store
		err error
	)
	switch Backend(strings.ToLower(cfg.Backend)) {
	case "", BackendFile:
		s, err = NewFileStore(cfg.Path, FormatFromPath(cfg.Path))
	case BackendBadger:
		s, err = NewBadgerStore(cfg.Path)
	case BackendParquet:
		s, err = NewParquetStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
	if err != nil {
		return nil, err
	}

	if cb.Enabled {
		s = NewBreakerStore(s, cb, alerter, logger)
	}
	logger.Info("Snapshot store ready", "backend", cfg.Backend, "location", s.Location())
	return s, nil
}
