package graph

import "github.com/soundprediction/kgreason/pkg/types"

// Tx exposes graph mutations to a function running under the writer lock.
// A Tx is only valid inside the Update call that created it.
type Tx struct {
	g *KnowledgeGraph
}

// Update runs fn while holding the writer lock, so readers never observe the
// intermediate states of a multi-step edit.
func (g *KnowledgeGraph) Update(fn func(tx *Tx) error) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	return fn(&Tx{g: g})
}

// Concepts returns copies of all concepts in insertion order.
func (tx *Tx) Concepts() []*types.Concept { return tx.g.conceptsLocked() }

// Edges returns every directed edge.
func (tx *Tx) Edges() []types.Edge { return tx.g.edgesLocked() }

// HasConcept reports whether id is in the concept table.
func (tx *Tx) HasConcept(id string) bool {
	_, ok := tx.g.concepts[id]
	return ok
}

// Degree returns the number of edges incident to id.
func (tx *Tx) Degree(id string) int { return len(tx.g.out[id]) + len(tx.g.in[id]) }

// AddConcept inserts a concept; see KnowledgeGraph.AddConcept.
func (tx *Tx) AddConcept(c *types.Concept) bool {
	if c == nil || c.ID == "" {
		return false
	}
	return tx.g.addConceptLocked(c)
}

// AddRelation inserts a relation; see KnowledgeGraph.AddRelation.
func (tx *Tx) AddRelation(r types.Relation) bool { return tx.g.addRelationLocked(r) }

// RemoveConcept removes a concept and its incident edges.
func (tx *Tx) RemoveConcept(id string) bool { return tx.g.removeConceptLocked(id) }

// RemoveEdge removes a directed edge.
func (tx *Tx) RemoveEdge(key types.EdgeKey) bool { return tx.g.removeEdgeLocked(key) }

// ConceptCount returns the number of concepts.
func (tx *Tx) ConceptCount() int { return len(tx.g.concepts) }

// IDsByName returns, in insertion order, the ids of concepts whose name matches
// under case-insensitive comparison.
func (tx *Tx) IDsByName(name string) []string {
	key := types.NameKey(name)
	var ids []string
	for _, id := range tx.g.order {
		if types.NameKey(tx.g.concepts[id].Name) == key {
			ids = append(ids, id)
		}
	}
	return ids
}
