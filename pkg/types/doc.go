// Package types defines the core data types for the kgreason knowledge graph.
//
// This package contains the records shared by every other package:
//   - Concept: a named, categorized node in the graph
//   - Relation: a typed, weighted directed edge between two concepts
//   - Inference: a derived claim built by chaining relations along a path
//   - ReasoningResult: the outcome of reasoning over a question
//   - Snapshot: the serialized state of the concept table and edge set
//
// # Validation
//
// Types provide Validate() methods for input validation:
//
//	c := &types.Concept{ID: "c1", Name: "Machine Learning"}
//	if err := c.Validate(); err != nil {
//	    // Handle validation error
//	}
//
// # JSON Serialization
//
// All persisted types carry json and yaml struct tags matching the snapshot format.
package types
