package manager

import (
	"context"

	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/types"
)

// OptimizeStats reports what an optimization pass changed.
type OptimizeStats struct {
	DuplicateConceptsRemoved int `json:"duplicate_concepts_removed"`
	InvalidRelationsRemoved  int `json:"invalid_relations_removed"`
	OrphanedConceptsCount    int `json:"orphaned_concepts_count"`
}

// Removed reports whether the pass removed anything.
func (s OptimizeStats) Removed() bool {
	return s.DuplicateConceptsRemoved > 0 || s.InvalidRelationsRemoved > 0
}

// Optimize removes concepts whose name duplicates an earlier one (case-insensitive),
// removes edges with a missing endpoint, and counts concepts with no incident edges.
// The whole pass runs under the graph's writer lock. The graph is persisted only if
// something was removed.
func (m *Manager) Optimize(ctx context.Context) OptimizeStats {
	var stats OptimizeStats
	_ = m.graph.Update(func(tx *graph.Tx) error {
		seen := make(map[string]struct{})
		for _, c := range tx.Concepts() {
			key := types.NameKey(c.Name)
			if _, dup := seen[key]; dup {
				if tx.RemoveConcept(c.ID) {
					stats.DuplicateConceptsRemoved++
				}
				continue
			}
			seen[key] = struct{}{}
		}

		for _, e := range tx.Edges() {
			if !tx.HasConcept(e.Source) || !tx.HasConcept(e.Target) {
				if tx.RemoveEdge(types.EdgeKey{Source: e.Source, Target: e.Target}) {
					stats.InvalidRelationsRemoved++
				}
			}
		}

		for _, c := range tx.Concepts() {
			if tx.Degree(c.ID) == 0 {
				stats.OrphanedConceptsCount++
			}
		}
		return nil
	})

	m.logger.Info("Knowledge base optimized",
		"duplicates_removed", stats.DuplicateConceptsRemoved,
		"invalid_relations_removed", stats.InvalidRelationsRemoved,
		"orphaned", stats.OrphanedConceptsCount)
	if stats.Removed() {
		m.changed(ctx, true)
	}
	return stats
}
