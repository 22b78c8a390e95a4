// Package manager implements the administrative side of the knowledge base:
// CRUD with save-on-write, batched ingestion with per-item fault isolation,
// optimization, import/export, and lookup caches.
//
// A Manager shares its graph with other readers such as the reasoning engine.
// Every mutation made through the Manager invalidates its caches; code that
// mutates the graph directly must call ClearCaches afterwards.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/store"
	"github.com/soundprediction/kgreason/pkg/utils"
)

const (
	// DefaultBatchSize is the chunk size used by the batch operations.
	DefaultBatchSize = 100
	// DefaultCacheSize bounds each lookup cache.
	DefaultCacheSize = 1024
)

// ErrNoStore is returned by Save and Load when the manager has no store.
var ErrNoStore = errors.New("no snapshot store configured")

// Options configures a Manager.
type Options struct {
	BatchSize int
	CacheSize int
	// RepairJSON runs JSON import payloads through a repair pass before decoding.
	RepairJSON bool
	Logger     *slog.Logger
}

// Manager wraps a shared knowledge graph and an optional snapshot store.
type Manager struct {
	graph *graph.KnowledgeGraph
	store store.Store

	mu         sync.RWMutex
	batchSize  int
	repairJSON bool

	// persistMu orders snapshot writes so an older snapshot never lands last.
	persistMu sync.Mutex

	nameCache   *lru.Cache[string, string]
	searchCache *lru.Cache[string, []string]

	logger *slog.Logger
}

// New creates a Manager over g. st may be nil, in which case mutations are
// kept in memory only.
func New(g *graph.KnowledgeGraph, st store.Store, opts ...Options) *Manager {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if g == nil {
		g = graph.New()
	}
	if o.BatchSize <= 0 {
		o.BatchSize = DefaultBatchSize
	}
	if o.CacheSize <= 0 {
		o.CacheSize = DefaultCacheSize
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}

	// lru.New only fails for a non-positive size.
	nameCache, _ := lru.New[string, string](o.CacheSize)
	searchCache, _ := lru.New[string, []string](o.CacheSize)

	return &Manager{
		graph:       g,
		store:       st,
		batchSize:   o.BatchSize,
		repairJSON:  o.RepairJSON,
		nameCache:   nameCache,
		searchCache: searchCache,
		logger:      o.Logger,
	}
}

// Graph returns the wrapped graph.
func (m *Manager) Graph() *graph.KnowledgeGraph {
	return m.graph
}

// BatchSize returns the chunk size used by the batch operations.
func (m *Manager) BatchSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.batchSize
}

// SetBatchSize changes the chunk size. Non-positive values are ignored.
func (m *Manager) SetBatchSize(n int) {
	if n <= 0 {
		return
	}
	m.mu.Lock()
	m.batchSize = n
	m.mu.Unlock()
}

// ClearCaches drops every cached lookup.
func (m *Manager) ClearCaches() {
	m.nameCache.Purge()
	m.searchCache.Purge()
}

// Save writes the current graph snapshot to the store.
func (m *Manager) Save(ctx context.Context) error {
	if m.store == nil {
		return ErrNoStore
	}
	m.persistMu.Lock()
	defer m.persistMu.Unlock()

	snap := m.graph.Snapshot()
	if err := m.store.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save knowledge base to %s: %w", m.store.Location(), err)
	}
	m.logger.Debug("Persisted knowledge base",
		"location", m.store.Location(),
		"concepts", len(snap.Concepts),
		"relations", len(snap.Relations))
	return nil
}

// Load replaces the graph contents with the stored snapshot. On any failure
// the in-memory graph is left untouched.
func (m *Manager) Load(ctx context.Context) error {
	if m.store == nil {
		return ErrNoStore
	}
	snap, err := m.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load knowledge base from %s: %w", m.store.Location(), err)
	}
	loaded, err := graph.FromSnapshot(snap)
	if err != nil {
		return err
	}
	m.graph.ReplaceWith(loaded)
	m.ClearCaches()
	m.logger.Info("Knowledge base loaded",
		"location", m.store.Location(),
		"concepts", m.graph.ConceptCount(),
		"edges", m.graph.EdgeCount())
	return nil
}

// persist is the save-on-write hook. A failed write is logged and the in-memory
// mutation stands; the store keeps its previous snapshot.
func (m *Manager) persist(ctx context.Context) {
	if m.store == nil {
		return
	}
	if err := m.Save(ctx); err != nil {
		m.logger.Error("Snapshot save failed", "error", err)
	}
}

// changed runs after every successful mutation.
func (m *Manager) changed(ctx context.Context, persist bool) {
	m.ClearCaches()
	if persist {
		m.persist(ctx)
	}
}

// Stats summarizes the managed graph.
type Stats struct {
	Concepts   int            `json:"concepts"`
	Edges      int            `json:"edges"`
	Categories map[string]int `json:"categories"`
	BatchSize  int            `json:"batch_size"`
	Location   string         `json:"location,omitempty"`
}

// Stats reports concept and edge counts along with per-category totals.
func (m *Manager) Stats() Stats {
	st := Stats{
		Categories: make(map[string]int),
		BatchSize:  m.BatchSize(),
	}
	for _, c := range m.graph.Concepts() {
		st.Concepts++
		st.Categories[c.Category]++
	}
	st.Edges = m.graph.EdgeCount()
	if m.store != nil {
		st.Location = m.store.Location()
	}
	return st
}

func withRecovery(fn func() error) (err error) {
	defer utils.RecoverAsError(&err)
	return fn()
}
