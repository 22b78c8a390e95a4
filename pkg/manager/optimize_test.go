package manager

import (
	"context"
	"testing"

	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptimizeRemovesDuplicates(t *testing.T) {
	g := graph.New()
	require.True(t, g.AddConcept(&types.Concept{ID: "c1", Name: "Privacy"}))
	require.True(t, g.AddConcept(&types.Concept{ID: "c2", Name: "Data"}))
	require.True(t, g.AddConcept(&types.Concept{ID: "c3", Name: "PRIVACY"}))
	require.True(t, g.AddConcept(&types.Concept{ID: "c4", Name: "Orphan"}))
	require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "r", Strength: 0.5}))
	require.True(t, g.AddRelation(types.Relation{Source: "c3", Target: "c2", RelationType: "r", Strength: 0.5}))

	st := &memStore{}
	m := New(g, st)

	stats := m.Optimize(context.Background())
	assert.Equal(t, OptimizeStats{
		DuplicateConceptsRemoved: 1,
		InvalidRelationsRemoved:  0,
		OrphanedConceptsCount:    1,
	}, stats)

	assert.True(t, g.HasConcept("c1"), "first-seen concept is kept")
	assert.False(t, g.HasConcept("c3"))
	assert.False(t, g.HasEdge("c3", "c2"))
	assert.Equal(t, 1, g.EdgeCount())
	assert.Equal(t, 1, st.saveCount())
}

func TestOptimizeNoChangesDoesNotPersist(t *testing.T) {
	st := &memStore{}
	m := New(graph.NewInitialKnowledgeBase(), st)

	stats := m.Optimize(context.Background())
	assert.False(t, stats.Removed())
	assert.Zero(t, stats.DuplicateConceptsRemoved)
	assert.Zero(t, st.saveCount())
}

func TestOptimizeCountsOrphans(t *testing.T) {
	g := graph.New()
	for _, id := range []string{"c1", "c2", "c3"} {
		require.True(t, g.AddConcept(&types.Concept{ID: id, Name: id}))
	}
	require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c1", RelationType: "self", Strength: 0.5}))

	stats := New(g, nil).Optimize(context.Background())
	assert.Equal(t, 2, stats.OrphanedConceptsCount)
	assert.Equal(t, 3, g.ConceptCount(), "orphans are reported, not removed")
}
