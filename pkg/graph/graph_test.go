package graph

import (
	"sync"
	"testing"

	"github.com/soundprediction/kgreason/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGraph(t *testing.T, ids ...string) *KnowledgeGraph {
	t.Helper()
	g := New()
	for _, id := range ids {
		require.True(t, g.AddConcept(&types.Concept{ID: id, Name: "concept " + id}))
	}
	return g
}

func TestAddConcept(t *testing.T) {
	g := New()

	t.Run("inserts concept and node", func(t *testing.T) {
		ok := g.AddConcept(&types.Concept{ID: "c1", Name: "Privacy", Category: "security", Description: "d"})
		require.True(t, ok)

		node, found := g.Node("c1")
		require.True(t, found)
		assert.Equal(t, types.Node{ID: "c1", Name: "Privacy", Category: "security", Description: "d"}, node)
	})

	t.Run("rejects duplicate id without mutation", func(t *testing.T) {
		ok := g.AddConcept(&types.Concept{ID: "c1", Name: "Other"})
		assert.False(t, ok)

		c, found := g.Concept("c1")
		require.True(t, found)
		assert.Equal(t, "Privacy", c.Name)
		assert.Equal(t, 1, g.ConceptCount())
	})

	t.Run("rejects nil and empty id", func(t *testing.T) {
		assert.False(t, g.AddConcept(nil))
		assert.False(t, g.AddConcept(&types.Concept{Name: "x"}))
	})

	t.Run("stores a copy", func(t *testing.T) {
		c := &types.Concept{ID: "c2", Name: "Ethics"}
		require.True(t, g.AddConcept(c))
		c.Name = "mutated"

		stored, _ := g.Concept("c2")
		assert.Equal(t, "Ethics", stored.Name)
	})
}

func TestAddRelation(t *testing.T) {
	t.Run("rejects unknown endpoint", func(t *testing.T) {
		g := newTestGraph(t, "c1")
		ok := g.AddRelation(types.Relation{Source: "c1", Target: "c9", RelationType: "rel", Strength: 0.5})
		assert.False(t, ok)
		assert.Equal(t, 0, g.EdgeCount())
	})

	t.Run("rejects out-of-range strength", func(t *testing.T) {
		for _, strength := range []float64{-0.1, 1.5} {
			g := newTestGraph(t, "c1", "c2")
			ok := g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "rel", Strength: strength, Bidirectional: true})
			assert.False(t, ok, "strength %v", strength)
			assert.Equal(t, 0, g.EdgeCount())
		}
	})

	t.Run("bidirectional creates mirror edge", func(t *testing.T) {
		g := newTestGraph(t, "c1", "c2")
		require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "similar", Strength: 0.7, Bidirectional: true}))

		assert.Equal(t, 2, g.EdgeCount())
		fwd, ok := g.Edge("c1", "c2")
		require.True(t, ok)
		back, ok := g.Edge("c2", "c1")
		require.True(t, ok)
		assert.Equal(t, fwd.RelationType, back.RelationType)
		assert.Equal(t, fwd.Strength, back.Strength)
	})

	t.Run("same ordered pair overwrites", func(t *testing.T) {
		g := newTestGraph(t, "c1", "c2")
		require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "first", Strength: 0.2}))
		require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "second", Strength: 0.9}))

		assert.Equal(t, 1, g.EdgeCount())
		e, _ := g.Edge("c1", "c2")
		assert.Equal(t, "second", e.RelationType)
		assert.Equal(t, []string{"c2"}, g.Neighbors("c1"))
	})

	t.Run("empty relation type defaults", func(t *testing.T) {
		g := newTestGraph(t, "c1", "c2")
		require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", Strength: 0.5}))
		e, _ := g.Edge("c1", "c2")
		assert.Equal(t, types.DefaultRelationType, e.RelationType)
	})
}

func TestReferentialIntegrity(t *testing.T) {
	g := NewInitialKnowledgeBase()
	for _, e := range g.Edges() {
		assert.True(t, g.HasConcept(e.Source), "source %s", e.Source)
		assert.True(t, g.HasConcept(e.Target), "target %s", e.Target)
	}
}

func TestRemoveConceptCascades(t *testing.T) {
	g := newTestGraph(t, "c1", "c2", "c3")
	require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "a", Strength: 0.5}))
	require.True(t, g.AddRelation(types.Relation{Source: "c2", Target: "c3", RelationType: "b", Strength: 0.5, Bidirectional: true}))

	require.True(t, g.RemoveConcept("c2"))

	assert.False(t, g.HasConcept("c2"))
	assert.Empty(t, g.GetRelatedConcepts("c2", 2))
	for _, e := range g.Edges() {
		assert.NotEqual(t, "c2", e.Source)
		assert.NotEqual(t, "c2", e.Target)
	}
	assert.Equal(t, 0, g.EdgeCount())
	assert.Equal(t, 0, g.Degree("c1"))
	assert.False(t, g.RemoveConcept("c2"))
}

func TestUpdateConceptSyncsNode(t *testing.T) {
	g := newTestGraph(t, "c1")

	ok := g.UpdateConcept("c1", func(c *types.Concept) {
		c.Name = "Renamed"
		c.Category = "new"
		c.ID = "hijack"
	})
	require.True(t, ok)

	node, _ := g.Node("c1")
	assert.Equal(t, "Renamed", node.Name)
	assert.Equal(t, "new", node.Category)
	assert.True(t, g.HasConcept("c1"))
	assert.False(t, g.HasConcept("hijack"))

	assert.False(t, g.UpdateConcept("missing", func(*types.Concept) {}))
}

func TestSnapshotBidirectionalFlag(t *testing.T) {
	g := newTestGraph(t, "c1", "c2", "c3")
	require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "peer", Strength: 0.6, Bidirectional: true}))
	require.True(t, g.AddRelation(types.Relation{Source: "c2", Target: "c3", RelationType: "x", Strength: 0.6}))
	require.True(t, g.AddRelation(types.Relation{Source: "c3", Target: "c2", RelationType: "y", Strength: 0.6}))

	snap := g.Snapshot()
	require.Len(t, snap.Relations, 4)

	flags := map[types.EdgeKey]bool{}
	for _, r := range snap.Relations {
		flags[r.Key()] = r.Bidirectional
	}
	assert.True(t, flags[types.EdgeKey{Source: "c1", Target: "c2"}])
	assert.True(t, flags[types.EdgeKey{Source: "c2", Target: "c1"}])
	assert.False(t, flags[types.EdgeKey{Source: "c2", Target: "c3"}], "mirror with a different type is not bidirectional")
	assert.False(t, flags[types.EdgeKey{Source: "c3", Target: "c2"}])
}

func TestFromSnapshotRoundTrip(t *testing.T) {
	original := NewInitialKnowledgeBase()

	rebuilt, err := FromSnapshot(original.Snapshot())
	require.NoError(t, err)

	assert.Equal(t, original.ConceptCount(), rebuilt.ConceptCount())
	assert.Equal(t, original.Edges(), rebuilt.Edges())

	_, err = FromSnapshot(&types.Snapshot{Concepts: []*types.Concept{{ID: "c1"}}})
	assert.ErrorIs(t, err, types.ErrMalformedSnapshot)
}

func TestFromSnapshotKeepsAsymmetricMirrors(t *testing.T) {
	g := newTestGraph(t, "a", "b")
	require.True(t, g.AddRelation(types.Relation{Source: "a", Target: "b", RelationType: "rel", Strength: 0.2, Description: "ab"}))
	require.True(t, g.AddRelation(types.Relation{Source: "b", Target: "a", RelationType: "rel", Strength: 0.9, Description: "ba"}))

	rebuilt, err := FromSnapshot(g.Snapshot())
	require.NoError(t, err)

	ab, ok := rebuilt.Edge("a", "b")
	require.True(t, ok)
	assert.Equal(t, 0.2, ab.Strength)
	assert.Equal(t, "ab", ab.Description)

	ba, ok := rebuilt.Edge("b", "a")
	require.True(t, ok)
	assert.Equal(t, 0.9, ba.Strength)
	assert.Equal(t, "ba", ba.Description)
	assert.Equal(t, g.Edges(), rebuilt.Edges())
}

func TestFromSnapshotSingleBidirectionalEntry(t *testing.T) {
	snap := &types.Snapshot{
		Concepts: []*types.Concept{{ID: "a", Name: "A"}, {ID: "b", Name: "B"}},
		Relations: []types.Relation{
			{Source: "a", Target: "b", RelationType: "similar", Strength: 0.6, Bidirectional: true},
		},
	}

	g, err := FromSnapshot(snap)
	require.NoError(t, err)
	assert.Equal(t, 2, g.EdgeCount())
	back, ok := g.Edge("b", "a")
	require.True(t, ok)
	assert.Equal(t, 0.6, back.Strength)
}

func TestSnapshotOfAcceptedRelationsReloads(t *testing.T) {
	g := newTestGraph(t, "a", "b")
	assert.False(t, g.AddRelation(types.Relation{Source: "a", Target: "b", RelationType: "rel", Strength: 1.5}))
	require.True(t, g.AddRelation(types.Relation{Source: "a", Target: "b", RelationType: "rel", Strength: 1}))

	_, err := FromSnapshot(g.Snapshot())
	assert.NoError(t, err)
}

func TestReplaceWithKeepsReference(t *testing.T) {
	g := NewInitialKnowledgeBase()
	shared := g

	replacement := newTestGraph(t, "x1")
	g.ReplaceWith(replacement)

	assert.Equal(t, 1, shared.ConceptCount())
	assert.True(t, shared.HasConcept("x1"))
	assert.Equal(t, 0, replacement.ConceptCount())

	g.ReplaceWith(g)
	assert.Equal(t, 1, g.ConceptCount())
}

func TestUpdateRunsUnderWriterLock(t *testing.T) {
	g := newTestGraph(t, "c1", "c2")
	require.True(t, g.AddRelation(types.Relation{Source: "c1", Target: "c2", RelationType: "r", Strength: 0.5}))

	err := g.Update(func(tx *Tx) error {
		assert.Equal(t, 1, tx.Degree("c1"))
		assert.True(t, tx.RemoveEdge(types.EdgeKey{Source: "c1", Target: "c2"}))
		assert.True(t, tx.RemoveConcept("c2"))
		assert.False(t, tx.HasConcept("c2"))
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, g.ConceptCount())
}

func TestTxIDsByName(t *testing.T) {
	g := New()
	require.True(t, g.AddConcept(&types.Concept{ID: "c1", Name: "Privacy"}))
	require.True(t, g.AddConcept(&types.Concept{ID: "c2", Name: "Ethics"}))
	require.True(t, g.AddConcept(&types.Concept{ID: "c3", Name: "PRIVACY"}))

	require.NoError(t, g.Update(func(tx *Tx) error {
		assert.Equal(t, []string{"c1", "c3"}, tx.IDsByName("privacy"))
		assert.Empty(t, tx.IDsByName("bias"))
		assert.Equal(t, 3, tx.ConceptCount())
		return nil
	}))
}

func TestConcurrentReadersAndWriter(t *testing.T) {
	g := NewInitialKnowledgeBase()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				g.GetRelatedConcepts("c1", 2)
				g.FindPaths("c1", "c5", 3)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for j := 0; j < 50; j++ {
			g.AddRelation(types.Relation{Source: "c9", Target: "c8", RelationType: "r", Strength: 0.3})
			g.RemoveEdge("c9", "c8")
		}
	}()
	wg.Wait()

	assert.Equal(t, 10, g.ConceptCount())
}
