package kgreason

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/soundprediction/kgreason/pkg/alert"
	"github.com/soundprediction/kgreason/pkg/config"
	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/manager"
	"github.com/soundprediction/kgreason/pkg/reasoning"
	"github.com/soundprediction/kgreason/pkg/store"
	"github.com/soundprediction/kgreason/pkg/types"
)

// KGReason is the main interface for reasoning over and administering a knowledge base.
type KGReason interface {
	// Reason grounds a free-text question in the graph and derives inferences.
	// It never mutates the graph.
	Reason(question string) *types.ReasoningResult

	// FormatResult renders a reasoning result as human-readable text.
	FormatResult(result *types.ReasoningResult) string

	// GetConcept retrieves a concept by id.
	GetConcept(id string) (*types.Concept, error)

	// ListConcepts returns concepts filtered by category and a search query.
	// Empty filters match everything.
	ListConcepts(category, query string) []*types.Concept

	// AddConcept creates a concept and returns its generated id.
	AddConcept(ctx context.Context, in types.ConceptInput) (string, error)

	// UpdateConcept applies a partial update to a concept.
	UpdateConcept(ctx context.Context, id string, upd types.ConceptUpdate) error

	// DeleteConcept removes a concept and its incident relations.
	DeleteConcept(ctx context.Context, id string) error

	// AddRelation links two concepts identified by name.
	AddRelation(ctx context.Context, in types.RelationInput) error

	// BatchProcessConcepts ingests concepts with per-item fault isolation.
	BatchProcessConcepts(ctx context.Context, items []map[string]any) manager.BatchResult

	// BatchProcessRelations ingests relations with per-item fault isolation.
	BatchProcessRelations(ctx context.Context, items []map[string]any) manager.BatchResult

	// Optimize removes duplicate concepts and dangling relations.
	Optimize(ctx context.Context) manager.OptimizeStats

	// Export serializes the knowledge base ("json" or "yaml").
	Export(format string) (string, error)

	// Import replaces the knowledge base with a serialized snapshot.
	Import(ctx context.Context, data []byte, format string) error

	// Stats summarizes the knowledge base.
	Stats() manager.Stats

	// Close releases the snapshot store.
	Close(ctx context.Context) error
}

// Client is the main implementation of the KGReason interface. Its engine and
// manager share a single graph.
type Client struct {
	graph   *graph.KnowledgeGraph
	engine  *reasoning.Engine
	manager *manager.Manager
	store   store.Store
	logger  *slog.Logger
}

// Config holds configuration for the Client.
type Config struct {
	Reasoning reasoning.Options
	Manager   manager.Options
}

// NewClient creates a client over g. st may be nil for an in-memory knowledge base.
func NewClient(g *graph.KnowledgeGraph, st store.Store, cfg *Config, logger *slog.Logger) *Client {
	if g == nil {
		g = graph.New()
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Reasoning.Logger == nil {
		cfg.Reasoning.Logger = logger
	}
	if cfg.Manager.Logger == nil {
		cfg.Manager.Logger = logger
	}

	return &Client{
		graph:   g,
		engine:  reasoning.NewEngine(g, cfg.Reasoning),
		manager: manager.New(g, st, cfg.Manager),
		store:   st,
		logger:  logger,
	}
}

// Open builds a client from application configuration: it opens the configured
// snapshot store and loads the stored knowledge base. When no snapshot exists
// yet the client starts from the initial knowledge base and saves it.
func Open(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}

	st, err := store.New(cfg.Storage, cfg.CircuitBreaker, alert.New(cfg.Alert), logger)
	if err != nil {
		return nil, err
	}

	client := NewClient(graph.New(), st, ClientConfig(cfg), logger)
	if err := client.manager.Load(ctx); err != nil {
		if !errors.Is(err, types.ErrSnapshotNotFound) {
			st.Close()
			return nil, err
		}
		logger.Info("No stored knowledge base, seeding initial concepts", "location", st.Location())
		client.graph.ReplaceWith(graph.NewInitialKnowledgeBase())
		client.manager.ClearCaches()
		if err := client.manager.Save(ctx); err != nil {
			logger.Error("Snapshot save failed", "error", err)
		}
	}
	return client, nil
}

// ClientConfig maps application configuration onto client options.
func ClientConfig(cfg *config.Config) *Config {
	return &Config{
		Reasoning: reasoning.Options{
			ExpansionDepth:     cfg.Reasoning.ExpansionDepth,
			ExpansionThreshold: cfg.Reasoning.ExpansionThreshold,
			PathDepth:          cfg.Reasoning.PathDepth,
			KeepLog:            cfg.Reasoning.KeepLog,
		},
		Manager: manager.Options{
			BatchSize:  cfg.Manager.BatchSize,
			CacheSize:  cfg.Manager.CacheSize,
			RepairJSON: cfg.Storage.RepairJSON,
		},
	}
}

// Graph returns the shared graph.
func (c *Client) Graph() *graph.KnowledgeGraph {
	return c.graph
}

// Engine returns the reasoning engine.
func (c *Client) Engine() *reasoning.Engine {
	return c.engine
}

// Manager returns the knowledge manager.
func (c *Client) Manager() *manager.Manager {
	return c.manager
}

func (c *Client) Reason(question string) *types.ReasoningResult {
	return c.engine.Reason(question)
}

func (c *Client) FormatResult(result *types.ReasoningResult) string {
	return c.engine.FormatResult(result)
}

func (c *Client) GetConcept(id string) (*types.Concept, error) {
	return c.manager.GetConcept(id)
}

func (c *Client) ListConcepts(category, query string) []*types.Concept {
	var concepts []*types.Concept
	switch {
	case query != "":
		concepts = c.manager.SearchConcepts(query)
	case category != "":
		return c.manager.GetConceptsByCategory(category)
	default:
		return c.graph.Concepts()
	}
	if category == "" {
		return concepts
	}
	out := make([]*types.Concept, 0, len(concepts))
	for _, concept := range concepts {
		if strings.EqualFold(concept.Category, category) {
			out = append(out, concept)
		}
	}
	return out
}

func (c *Client) AddConcept(ctx context.Context, in types.ConceptInput) (string, error) {
	return c.manager.AddConcept(ctx, in)
}

func (c *Client) UpdateConcept(ctx context.Context, id string, upd types.ConceptUpdate) error {
	return c.manager.UpdateConcept(ctx, id, upd)
}

func (c *Client) DeleteConcept(ctx context.Context, id string) error {
	return c.manager.DeleteConcept(ctx, id)
}

func (c *Client) AddRelation(ctx context.Context, in types.RelationInput) error {
	return c.manager.AddRelation(ctx, in)
}

func (c *Client) BatchProcessConcepts(ctx context.Context, items []map[string]any) manager.BatchResult {
	return c.manager.BatchProcessConcepts(ctx, items)
}

func (c *Client) BatchProcessRelations(ctx context.Context, items []map[string]any) manager.BatchResult {
	return c.manager.BatchProcessRelations(ctx, items)
}

func (c *Client) Optimize(ctx context.Context) manager.OptimizeStats {
	return c.manager.Optimize(ctx)
}

func (c *Client) Export(format string) (string, error) {
	return c.manager.Export(format)
}

func (c *Client) Import(ctx context.Context, data []byte, format string) error {
	return c.manager.Import(ctx, data, format)
}

func (c *Client) Stats() manager.Stats {
	return c.manager.Stats()
}

// Close releases the snapshot store.
func (c *Client) Close(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}
