// Package reasoning implements inference over a knowledge graph.
//
// An Engine extracts seed concepts from a question by keyword match, expands them
// through the graph with per-hop decay, enumerates justificatory paths between the
// expanded concepts, and turns each path into a scored Inference:
//
//	engine := reasoning.NewEngine(graph.NewInitialKnowledgeBase())
//	result := engine.Reason("How does machine learning relate to bias?")
//	fmt.Println(engine.FormatResult(result))
//
// The engine never mutates the graph it reads.
package reasoning
