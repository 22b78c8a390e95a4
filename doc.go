// Package kgreason provides an in-memory knowledge graph with a reasoning engine.
//
// A knowledge base is a set of concepts joined by typed, weighted, directed
// relations. The reasoning engine grounds a free-text question in that graph,
// expands the matched concepts through their neighbourhood, and derives
// inferences from the paths between them. The knowledge manager covers the
// administrative side: CRUD with save-on-write, batched ingestion, optimization,
// and snapshot import/export.
//
// # Basic Usage
//
// Open a client from configuration. The stored snapshot is loaded, or the
// initial knowledge base is seeded when none exists:
//
//	cfg, err := config.Load()
//	if err != nil {
//		log.Fatal(err)
//	}
//	client, err := kgreason.Open(ctx, cfg, slog.Default())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close(ctx)
//
// # Reasoning
//
//	result := client.Reason("How does machine learning affect privacy?")
//	fmt.Println(client.FormatResult(result))
//
// # Managing Concepts
//
//	id, err := client.AddConcept(ctx, types.ConceptInput{
//		Name:        "Fairness",
//		Description: "Equal treatment in automated decisions",
//		Category:    "philosophy",
//	})
//
//	err = client.AddRelation(ctx, types.RelationInput{
//		SourceName:   "Fairness",
//		TargetName:   "Bias",
//		RelationType: "opposes",
//	})
//
// The engine and the manager share one graph, so mutations made through the
// client are visible to the next Reason call.
package kgreason
