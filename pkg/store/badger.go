package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/soundprediction/kgreason/pkg/types"
)

// DefaultBadgerPath is the database directory used when none is configured.
const DefaultBadgerPath = "knowledge_base.badger"

var snapshotKey = []byte("kgreason/snapshot")

// BadgerStore keeps the snapshot as a single JSON value in a Badger database.
// Each Save is one transaction, so readers see either the old or the new snapshot.
type BadgerStore struct {
	dir string
	db  *badger.DB
}

// NewBadgerStore opens (or creates) a Badger database in dir.
func NewBadgerStore(dir string) (*BadgerStore, error) {
	if dir == "" {
		dir = DefaultBadgerPath
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger store: %w", err)
	}
	return &BadgerStore{dir: dir, db: db}, nil
}

// Location returns the database directory.
func (s *BadgerStore) Location() string {
	return s.dir
}

// Save writes the snapshot in a single transaction.
func (s *BadgerStore) Save(ctx context.Context, snap *types.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := Marshal(snap, FormatJSON)
	if err != nil {
		return err
	}
	if err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey, data)
	}); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

// Load reads the snapshot stored by the last successful Save.
func (s *BadgerStore) Load(ctx context.Context) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey)
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, s.dir)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	return Unmarshal(data, FormatJSON)
}

// Close closes the underlying database.
func (s *BadgerStore) Close() error {
	return s.db.Close()
}
