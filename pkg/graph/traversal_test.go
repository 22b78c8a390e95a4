package graph

import (
	"testing"

	"github.com/soundprediction/kgreason/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetRelatedConcepts(t *testing.T) {
	g := newTestGraph(t, "c", "a", "b", "d")
	require.True(t, g.AddRelation(types.Relation{Source: "c", Target: "a", RelationType: "rel", Strength: 0.6}))
	require.True(t, g.AddRelation(types.Relation{Source: "a", Target: "b", RelationType: "rel", Strength: 0.5}))
	require.True(t, g.AddRelation(types.Relation{Source: "b", Target: "d", RelationType: "rel", Strength: 0.9}))

	t.Run("decays per hop", func(t *testing.T) {
		related := g.GetRelatedConcepts("c", 2)
		require.Len(t, related, 2)
		assert.InDelta(t, 0.6, related["a"], 1e-9)
		assert.InDelta(t, 0.4, related["b"], 1e-9)
	})

	t.Run("depth bounds reach", func(t *testing.T) {
		assert.Len(t, g.GetRelatedConcepts("c", 1), 1)
		related := g.GetRelatedConcepts("c", 3)
		assert.InDelta(t, 0.9*0.8*0.8, related["d"], 1e-9)
	})

	t.Run("unknown id and zero depth", func(t *testing.T) {
		assert.Empty(t, g.GetRelatedConcepts("missing", 2))
		assert.Empty(t, g.GetRelatedConcepts("c", 0))
	})

	t.Run("first visit wins and origin is never scored", func(t *testing.T) {
		cyc := newTestGraph(t, "x", "y", "z")
		require.True(t, cyc.AddRelation(types.Relation{Source: "x", Target: "y", RelationType: "r", Strength: 0.5}))
		require.True(t, cyc.AddRelation(types.Relation{Source: "y", Target: "z", RelationType: "r", Strength: 1.0}))
		require.True(t, cyc.AddRelation(types.Relation{Source: "x", Target: "z", RelationType: "r", Strength: 0.2}))
		require.True(t, cyc.AddRelation(types.Relation{Source: "z", Target: "x", RelationType: "r", Strength: 1.0}))

		related := cyc.GetRelatedConcepts("x", 3)
		assert.NotContains(t, related, "x")
		assert.InDelta(t, 0.2, related["z"], 1e-9, "direct edge reaches z first")
	})
}

func TestFindPaths(t *testing.T) {
	g := newTestGraph(t, "c1", "c2", "c3")
	require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "rel", Strength: 0.5}))
	require.True(t, g.AddRelation(types.Relation{Source: "c2", Target: "c3", RelationType: "rel", Strength: 0.5}))

	t.Run("single chain", func(t *testing.T) {
		paths := g.FindPaths("c1", "c3", 3)
		require.Len(t, paths, 1)
		assert.Equal(t, types.Path{
			{Source: "c1", RelationType: "rel", Target: "c2"},
			{Source: "c2", RelationType: "rel", Target: "c3"},
		}, paths[0])
	})

	t.Run("direction matters", func(t *testing.T) {
		assert.Empty(t, g.FindPaths("c3", "c1", 3))
	})

	t.Run("depth cutoff", func(t *testing.T) {
		assert.Empty(t, g.FindPaths("c1", "c3", 1))
	})

	t.Run("unknown endpoints", func(t *testing.T) {
		assert.Empty(t, g.FindPaths("c1", "missing", 3))
		assert.Empty(t, g.FindPaths("missing", "c1", 3))
	})
}

func TestFindPathsTerminatesOnCycles(t *testing.T) {
	g := newTestGraph(t, "a", "b", "c", "d")
	for _, pair := range [][2]string{{"a", "b"}, {"b", "c"}, {"c", "a"}, {"c", "d"}, {"b", "a"}, {"a", "c"}} {
		require.True(t, g.AddRelation(types.Relation{Source: pair[0], Target: pair[1], RelationType: "r", Strength: 0.5}))
	}

	paths := g.FindPaths("a", "d", 10)
	require.Len(t, paths, 2)
	for _, p := range paths {
		seen := map[string]bool{p[0].Source: true}
		for _, step := range p {
			assert.False(t, seen[step.Target], "node repeated in %v", p)
			seen[step.Target] = true
		}
		assert.Equal(t, "d", p[len(p)-1].Target)
	}
}

func TestPathStrengths(t *testing.T) {
	g := newTestGraph(t, "a", "b", "c")
	require.True(t, g.AddRelation(types.Relation{Source: "a", Target: "b", RelationType: "r", Strength: 0.9}))
	require.True(t, g.AddRelation(types.Relation{Source: "b", Target: "c", RelationType: "r", Strength: 0.3}))

	path := g.FindPaths("a", "c", 3)[0]
	assert.Equal(t, []float64{0.9, 0.3}, g.PathStrengths(path))
}

func TestInitialKnowledgeBase(t *testing.T) {
	g := NewInitialKnowledgeBase()
	assert.Equal(t, 10, g.ConceptCount())
	assert.Equal(t, 10, g.EdgeCount())

	other := NewInitialKnowledgeBase()
	other.RemoveConcept("c1")
	assert.True(t, g.HasConcept("c1"), "instances are independent")

	paths := g.FindPaths("c1", "c5", 3)
	require.Len(t, paths, 1)
	assert.Len(t, paths[0], 3)
}
