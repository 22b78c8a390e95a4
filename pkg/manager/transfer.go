package manager

import (
	"context"
	"fmt"

	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/store"
)

// Export serializes the whole graph in the named format ("json" or "yaml").
func (m *Manager) Export(format string) (string, error) {
	f, err := store.ParseFormat(format)
	if err != nil {
		return "", err
	}
	data, err := store.Marshal(m.graph.Snapshot(), f)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Import replaces the graph contents with the snapshot in data and persists. The
// payload is fully decoded and validated before the graph is touched, so a
// malformed payload leaves the live graph unchanged.
func (m *Manager) Import(ctx context.Context, data []byte, format string) error {
	f, err := store.ParseFormat(format)
	if err != nil {
		return err
	}

	m.mu.RLock()
	repair := m.repairJSON
	m.mu.RUnlock()
	if repair && f == store.FormatJSON {
		if data, err = store.RepairJSON(data); err != nil {
			return err
		}
	}

	snap, err := store.Unmarshal(data, f)
	if err != nil {
		m.logger.Warn("Import rejected", "format", f, "error", err)
		return err
	}
	imported, err := graph.FromSnapshot(snap)
	if err != nil {
		return fmt.Errorf("failed to build graph from import: %w", err)
	}

	m.graph.ReplaceWith(imported)
	m.logger.Info("Knowledge base imported",
		"format", f,
		"concepts", m.graph.ConceptCount(),
		"edges", m.graph.EdgeCount())
	m.changed(ctx, true)
	return nil
}
