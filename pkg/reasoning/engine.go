package reasoning

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/types"
)

const (
	DefaultExpansionDepth     = 2
	DefaultExpansionThreshold = 0.3
	DefaultPathDepth          = 3
	MinTokenLength            = 3
)

// Options configures an Engine. Zero values fall back to the defaults above.
type Options struct {
	ExpansionDepth int
	// ExpansionThreshold is the decayed strength a reached concept must exceed to
	// join the expanded set. Zero or negative selects DefaultExpansionThreshold;
	// pass a small positive value to keep nearly every reached concept.
	ExpansionThreshold float64
	PathDepth          int
	// KeepLog records every produced inference for later inspection.
	KeepLog bool
	Logger  *slog.Logger
	// Now supplies inference timestamps.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.ExpansionDepth <= 0 {
		o.ExpansionDepth = DefaultExpansionDepth
	}
	if o.ExpansionThreshold <= 0 {
		o.ExpansionThreshold = DefaultExpansionThreshold
	}
	if o.PathDepth <= 0 {
		o.PathDepth = DefaultPathDepth
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Engine reasons over a shared knowledge graph. It holds no per-call state beyond
// the optional inference log.
type Engine struct {
	graph *graph.KnowledgeGraph
	opts  Options

	logMu sync.Mutex
	log   []types.Inference
}

// NewEngine creates an engine over g. A nil graph gets an empty one.
func NewEngine(g *graph.KnowledgeGraph, opts ...Options) *Engine {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if g == nil {
		g = graph.New()
	}
	return &Engine{graph: g, opts: o.withDefaults()}
}

// Graph returns the graph the engine reads.
func (e *Engine) Graph() *graph.KnowledgeGraph {
	return e.graph
}

// tokenize splits text into case-folded words of at least MinTokenLength runes.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsMark(r) || r == '_')
	})
	words := fields[:0]
	for _, f := range fields {
		if utf8.RuneCountInString(f) >= MinTokenLength {
			words = append(words, f)
		}
	}
	return words
}

// ExtractConcepts returns the ids of concepts whose name or description contains
// any word of text as a substring. Matching is case-insensitive and unranked; ids
// come back once each, in graph insertion order.
func (e *Engine) ExtractConcepts(text string) []string {
	words := tokenize(text)
	if len(words) == 0 {
		return nil
	}
	var ids []string
	for _, c := range e.graph.Concepts() {
		name := strings.ToLower(c.Name)
		desc := strings.ToLower(c.Description)
		for _, w := range words {
			if strings.Contains(name, w) || strings.Contains(desc, w) {
				ids = append(ids, c.ID)
				break
			}
		}
	}
	return ids
}

// IdentifyRelations returns a Relation view for every existing edge between each
// unordered pair of conceptIDs, in either direction. Pairs with no edge are skipped.
func (e *Engine) IdentifyRelations(conceptIDs []string) []types.Relation {
	var relations []types.Relation
	for i, a := range conceptIDs {
		for _, b := range conceptIDs[i+1:] {
			if a == b {
				continue
			}
			if edge, ok := e.graph.Edge(a, b); ok {
				relations = append(relations, edge.Relation())
			}
			if edge, ok := e.graph.Edge(b, a); ok {
				relations = append(relations, edge.Relation())
			}
		}
	}
	return relations
}

// GenerateInferences builds one Inference per simple path between every ordered
// pair of distinct concepts. Confidence is the mean edge strength along the path.
func (e *Engine) GenerateInferences(conceptIDs []string, question string) []types.Inference {
	names := e.nameIndex()
	var inferences []types.Inference

	for _, src := range conceptIDs {
		for _, tgt := range conceptIDs {
			if src == tgt {
				continue
			}
			for _, path := range e.graph.FindPaths(src, tgt, e.opts.PathDepth) {
				if len(path) == 0 {
					continue
				}
				inferences = append(inferences, e.buildInference(path, names))
			}
		}
	}

	if len(inferences) > 0 {
		e.opts.Logger.Debug("Generated inferences", "question", question, "count", len(inferences))
	}
	return inferences
}

func (e *Engine) buildInference(path types.Path, names map[string]string) types.Inference {
	premises := make([]string, 0, len(path))
	for _, step := range path {
		premises = append(premises, fmt.Sprintf("%s %s %s", names[step.Source], step.RelationType, names[step.Target]))
	}
	first, last := path[0].Source, path[len(path)-1].Target
	return types.Inference{
		Premises:      premises,
		Conclusion:    fmt.Sprintf("There is a relation between %s and %s", names[first], names[last]),
		Confidence:    mean(e.graph.PathStrengths(path)),
		ReasoningPath: append(types.Path(nil), path...),
		Timestamp:     e.opts.Now(),
	}
}

// nameIndex maps concept ids to names, falling back to the id itself.
func (e *Engine) nameIndex() map[string]string {
	concepts := e.graph.Concepts()
	names := make(map[string]string, len(concepts))
	for _, c := range concepts {
		names[c.ID] = c.Name
	}
	return names
}

// Reason answers a question: extract seeds, expand them, then derive relations and
// inferences over the expanded set. No matching concept yields an empty result with
// zero confidence.
func (e *Engine) Reason(question string) *types.ReasoningResult {
	seeds := e.ExtractConcepts(question)
	if len(seeds) == 0 {
		return &types.ReasoningResult{
			Concepts:   []*types.Concept{},
			Relations:  []types.Relation{},
			Inferences: []types.Inference{},
		}
	}

	expanded := make(map[string]struct{}, len(seeds))
	for _, id := range seeds {
		expanded[id] = struct{}{}
	}
	for _, id := range seeds {
		for related, strength := range e.graph.GetRelatedConcepts(id, e.opts.ExpansionDepth) {
			if strength > e.opts.ExpansionThreshold {
				expanded[related] = struct{}{}
			}
		}
	}

	concepts := make([]*types.Concept, 0, len(expanded))
	ids := make([]string, 0, len(expanded))
	for _, c := range e.graph.Concepts() {
		if _, ok := expanded[c.ID]; ok {
			concepts = append(concepts, c)
			ids = append(ids, c.ID)
		}
	}

	relations := e.IdentifyRelations(ids)
	inferences := e.GenerateInferences(ids, question)

	confidences := make([]float64, len(inferences))
	for i, inf := range inferences {
		confidences[i] = inf.Confidence
	}

	if e.opts.KeepLog && len(inferences) > 0 {
		e.logMu.Lock()
		e.log = append(e.log, inferences...)
		e.logMu.Unlock()
	}

	e.opts.Logger.Debug("Reasoning complete",
		"seeds", len(seeds),
		"expanded", len(ids),
		"relations", len(relations),
		"inferences", len(inferences))

	if relations == nil {
		relations = []types.Relation{}
	}
	if inferences == nil {
		inferences = []types.Inference{}
	}
	return &types.ReasoningResult{
		Concepts:   concepts,
		Relations:  relations,
		Inferences: inferences,
		Confidence: mean(confidences),
	}
}

// Inferences returns a copy of the inference log. It is empty unless KeepLog is set.
func (e *Engine) Inferences() []types.Inference {
	e.logMu.Lock()
	defer e.logMu.Unlock()
	return append([]types.Inference(nil), e.log...)
}

// ClearInferences empties the inference log.
func (e *Engine) ClearInferences() {
	e.logMu.Lock()
	e.log = nil
	e.logMu.Unlock()
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}
