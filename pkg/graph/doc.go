// Package graph provides the in-memory knowledge graph: a concept table plus a
// directed edge set stored as node-keyed adjacency lists.
//
// The graph stores at most one edge per ordered (source, target) pair. Adding a
// second relation between the same ordered pair overwrites the first, whatever
// its relation type. A bidirectional relation is stored as two directed edges.
//
// All methods are safe for concurrent use. Readers run concurrently with each
// other; mutations are serialized behind a single writer lock. Multi-step edits
// that must appear atomic to readers go through Update.
package graph
