package graph

import (
	"slices"
	"sync"

	"github.com/soundprediction/kgreason/pkg/types"
)

// KnowledgeGraph owns a concept table and a directed edge set.
type KnowledgeGraph struct {
	mu sync.RWMutex

	concepts map[string]*types.Concept
	nodes    map[string]types.Node
	order    []string

	out   map[string][]string
	in    map[string][]string
	edges map[types.EdgeKey]types.Edge
}

// New creates an empty knowledge graph.
func New() *KnowledgeGraph {
	return &KnowledgeGraph{
		concepts: make(map[string]*types.Concept),
		nodes:    make(map[string]types.Node),
		out:      make(map[string][]string),
		in:       make(map[string][]string),
		edges:    make(map[types.EdgeKey]types.Edge),
	}
}

// AddConcept inserts a concept and its graph node. It returns false without
// mutating anything if the id is empty or already present.
func (g *KnowledgeGraph) AddConcept(c *types.Concept) bool {
	if c == nil || c.ID == "" {
		return false
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addConceptLocked(c)
}

func (g *KnowledgeGraph) addConceptLocked(c *types.Concept) bool {
	if _, exists := g.concepts[c.ID]; exists {
		return false
	}
	stored := c.Clone()
	g.concepts[c.ID] = stored
	g.nodes[c.ID] = types.NodeOf(stored)
	g.order = append(g.order, c.ID)
	return true
}

// AddRelation inserts the directed edge source→target, plus its mirror when the
// relation is bidirectional. It returns false without mutating anything if either
// endpoint is unknown or the strength lies outside [0, 1]. Re-adding an edge for the same ordered pair overwrites it.
func (g *KnowledgeGraph) AddRelation(r types.Relation) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.addRelationLocked(r)
}

func (g *KnowledgeGraph) addRelationLocked(r types.Relation) bool {
	if r.Strength < 0 || r.Strength > 1 {
		return false
	}
	if _, ok := g.concepts[r.Source]; !ok {
		return false
	}
	if _, ok := g.concepts[r.Target]; !ok {
		return false
	}
	g.putEdgeLocked(r)
	if r.Bidirectional {
		g.putEdgeLocked(r.Reverse())
	}
	return true
}

func (g *KnowledgeGraph) putEdgeLocked(r types.Relation) {
	key := r.Key()
	if _, exists := g.edges[key]; !exists {
		g.out[r.Source] = append(g.out[r.Source], r.Target)
		g.in[r.Target] = append(g.in[r.Target], r.Source)
	}
	relType := r.RelationType
	if relType == "" {
		relType = types.DefaultRelationType
	}
	g.edges[key] = types.Edge{
		Source:       r.Source,
		Target:       r.Target,
		RelationType: relType,
		Strength:     r.Strength,
		Description:  r.Description,
	}
}

// HasConcept reports whether id is in the concept table.
func (g *KnowledgeGraph) HasConcept(id string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.concepts[id]
	return ok
}

// Concept returns a deep copy of the concept with the given id.
func (g *KnowledgeGraph) Concept(id string) (*types.Concept, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	c, ok := g.concepts[id]
	if !ok {
		return nil, false
	}
	return c.Clone(), true
}

// Node returns the denormalized node attributes for id.
func (g *KnowledgeGraph) Node(id string) (types.Node, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n, ok := g.nodes[id]
	return n, ok
}

// Concepts returns copies of all concepts in insertion order.
func (g *KnowledgeGraph) Concepts() []*types.Concept {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.conceptsLocked()
}

func (g *KnowledgeGraph) conceptsLocked() []*types.Concept {
	out := make([]*types.Concept, 0, len(g.order))
	for _, id := range g.order {
		out = append(out, g.concepts[id].Clone())
	}
	return out
}

// ConceptCount returns the number of concepts.
func (g *KnowledgeGraph) ConceptCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.concepts)
}

// EdgeCount returns the number of directed edges.
func (g *KnowledgeGraph) EdgeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.edges)
}

// HasEdge reports whether the directed edge source→target exists.
func (g *KnowledgeGraph) HasEdge(source, target string) bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	_, ok := g.edges[types.EdgeKey{Source: source, Target: target}]
	return ok
}

// Edge returns the directed edge source→target.
func (g *KnowledgeGraph) Edge(source, target string) (types.Edge, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	e, ok := g.edges[types.EdgeKey{Source: source, Target: target}]
	return e, ok
}

// Edges returns every directed edge, grouped by source in adjacency order.
func (g *KnowledgeGraph) Edges() []types.Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.edgesLocked()
}

func (g *KnowledgeGraph) edgesLocked() []types.Edge {
	out := make([]types.Edge, 0, len(g.edges))
	seen := make(map[string]struct{}, len(g.out))
	visit := func(src string) {
		if _, ok := seen[src]; ok {
			return
		}
		seen[src] = struct{}{}
		for _, tgt := range g.out[src] {
			out = append(out, g.edges[types.EdgeKey{Source: src, Target: tgt}])
		}
	}
	for _, id := range g.order {
		visit(id)
	}
	// Sources without a concept entry are only reachable through the adjacency map.
	if len(out) < len(g.edges) {
		rest := make([]string, 0)
		for src := range g.out {
			if _, ok := seen[src]; !ok {
				rest = append(rest, src)
			}
		}
		slices.Sort(rest)
		for _, src := range rest {
			visit(src)
		}
	}
	return out
}

// Neighbors returns the targets of id's outgoing edges in insertion order.
func (g *KnowledgeGraph) Neighbors(id string) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return slices.Clone(g.out[id])
}

// Degree returns the number of edges incident to id, counting both directions.
func (g *KnowledgeGraph) Degree(id string) int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.out[id]) + len(g.in[id])
}

// UpdateConcept applies fn to the stored concept and re-syncs its node attributes.
// The id cannot be changed. It returns false if id is unknown.
func (g *KnowledgeGraph) UpdateConcept(id string, fn func(c *types.Concept)) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	c, ok := g.concepts[id]
	if !ok {
		return false
	}
	fn(c)
	c.ID = id
	g.nodes[id] = types.NodeOf(c)
	return true
}

// RemoveConcept removes the concept, its node, and every incident edge.
func (g *KnowledgeGraph) RemoveConcept(id string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeConceptLocked(id)
}

func (g *KnowledgeGraph) removeConceptLocked(id string) bool {
	if _, ok := g.concepts[id]; !ok {
		return false
	}
	g.removeNodeLocked(id)
	delete(g.concepts, id)
	g.order = slices.DeleteFunc(g.order, func(s string) bool { return s == id })
	return true
}

// removeNodeLocked drops the node and cascades to its incident edges.
func (g *KnowledgeGraph) removeNodeLocked(id string) {
	for _, tgt := range slices.Clone(g.out[id]) {
		g.removeEdgeLocked(types.EdgeKey{Source: id, Target: tgt})
	}
	for _, src := range slices.Clone(g.in[id]) {
		g.removeEdgeLocked(types.EdgeKey{Source: src, Target: id})
	}
	delete(g.out, id)
	delete(g.in, id)
	delete(g.nodes, id)
}

// RemoveEdge removes the directed edge source→target.
func (g *KnowledgeGraph) RemoveEdge(source, target string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.removeEdgeLocked(types.EdgeKey{Source: source, Target: target})
}

func (g *KnowledgeGraph) removeEdgeLocked(key types.EdgeKey) bool {
	if _, ok := g.edges[key]; !ok {
		return false
	}
	delete(g.edges, key)
	g.out[key.Source] = slices.DeleteFunc(g.out[key.Source], func(s string) bool { return s == key.Target })
	g.in[key.Target] = slices.DeleteFunc(g.in[key.Target], func(s string) bool { return s == key.Source })
	if len(g.out[key.Source]) == 0 {
		delete(g.out, key.Source)
	}
	if len(g.in[key.Target]) == 0 {
		delete(g.in, key.Target)
	}
	return true
}

// ReplaceWith moves the contents of src into g, discarding g's previous contents.
// References held to g stay valid and observe the new data. src must not be used afterwards.
func (g *KnowledgeGraph) ReplaceWith(src *KnowledgeGraph) {
	if src == nil || src == g {
		return
	}
	src.mu.Lock()
	concepts, nodes, order := src.concepts, src.nodes, src.order
	out, in, edges := src.out, src.in, src.edges
	*src = *New()
	src.mu.Unlock()

	g.mu.Lock()
	defer g.mu.Unlock()
	g.concepts, g.nodes, g.order = concepts, nodes, order
	g.out, g.in, g.edges = out, in, edges
}

// Snapshot captures the graph state. A relation is reported as bidirectional when
// its mirror edge exists with an identical relation type.
func (g *KnowledgeGraph) Snapshot() *types.Snapshot {
	g.mu.RLock()
	defer g.mu.RUnlock()
	snap := &types.Snapshot{
		Concepts:  g.conceptsLocked(),
		Relations: make([]types.Relation, 0, len(g.edges)),
	}
	for _, e := range g.edgesLocked() {
		r := e.Relation()
		if mirror, ok := g.edges[types.EdgeKey{Source: e.Target, Target: e.Source}]; ok {
			r.Bidirectional = mirror.RelationType == e.RelationType
		}
		snap.Relations = append(snap.Relations, r)
	}
	return snap
}

// FromSnapshot builds a new graph from a snapshot. The snapshot is validated first;
// nothing is built from an invalid one. A bidirectional entry only materializes its
// mirror when the snapshot does not list the reverse edge itself, so mirror pairs
// with differing strength or description survive a round trip.
func FromSnapshot(snap *types.Snapshot) (*KnowledgeGraph, error) {
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	g := New()
	for _, c := range snap.Concepts {
		g.addConceptLocked(c)
	}
	listed := make(map[types.EdgeKey]struct{}, len(snap.Relations))
	for i := range snap.Relations {
		listed[snap.Relations[i].Key()] = struct{}{}
	}
	for _, r := range snap.Relations {
		if r.Bidirectional {
			rev := r.Reverse()
			if _, ok := listed[rev.Key()]; ok {
				r.Bidirectional = false
			}
		}
		g.addRelationLocked(r)
	}
	return g, nil
}
