package graph

import (
	"math"

	"github.com/soundprediction/kgreason/pkg/types"
)

// DecayFactor is the per-hop attenuation applied during neighborhood expansion.
const DecayFactor = 0.8

// GetRelatedConcepts expands breadth-first from conceptID up to maxDepth hops.
// A node first reached at hop h scores strength × DecayFactor^(h-1), where strength
// is the edge it was reached through. The first visit wins; among equally short
// paths the winning edge follows adjacency order and callers must not rely on it.
// The origin itself is never scored. Unknown ids yield an empty map.
func (g *KnowledgeGraph) GetRelatedConcepts(conceptID string, maxDepth int) map[string]float64 {
	related := make(map[string]float64)

	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.concepts[conceptID]; !ok || maxDepth < 1 {
		return related
	}

	type item struct {
		id  string
		hop int
	}
	visited := map[string]struct{}{conceptID: {}}
	queue := []item{{id: conceptID}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.hop >= maxDepth {
			continue
		}
		decay := math.Pow(DecayFactor, float64(cur.hop))
		for _, next := range g.out[cur.id] {
			if _, seen := visited[next]; seen {
				continue
			}
			visited[next] = struct{}{}
			e := g.edges[types.EdgeKey{Source: cur.id, Target: next}]
			related[next] = e.Strength * decay
			queue = append(queue, item{id: next, hop: cur.hop + 1})
		}
	}
	return related
}

// FindPaths enumerates every simple directed path from source to target with at
// most maxDepth edges. It returns nil if either endpoint is unknown, the endpoints
// coincide, or no path exists.
func (g *KnowledgeGraph) FindPaths(source, target string, maxDepth int) []types.Path {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if _, ok := g.concepts[source]; !ok {
		return nil
	}
	if _, ok := g.concepts[target]; !ok {
		return nil
	}
	if source == target || maxDepth < 1 {
		return nil
	}

	var (
		paths   []types.Path
		stack   types.Path
		onStack = map[string]struct{}{source: {}}
	)

	var walk func(cur string)
	walk = func(cur string) {
		if len(stack) >= maxDepth {
			return
		}
		for _, next := range g.out[cur] {
			if _, repeated := onStack[next]; repeated {
				continue
			}
			e := g.edges[types.EdgeKey{Source: cur, Target: next}]
			stack = append(stack, types.PathStep{Source: cur, RelationType: e.RelationType, Target: next})
			if next == target {
				paths = append(paths, append(types.Path(nil), stack...))
			} else {
				onStack[next] = struct{}{}
				walk(next)
				delete(onStack, next)
			}
			stack = stack[:len(stack)-1]
		}
	}
	walk(source)

	return paths
}

// PathStrengths returns the strength of each edge along path. Edges that no
// longer exist contribute the default strength.
func (g *KnowledgeGraph) PathStrengths(path types.Path) []float64 {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]float64, 0, len(path))
	for _, step := range path {
		if e, ok := g.edges[types.EdgeKey{Source: step.Source, Target: step.Target}]; ok {
			out = append(out, e.Strength)
		} else {
			out = append(out, types.DefaultStrength)
		}
	}
	return out
}
