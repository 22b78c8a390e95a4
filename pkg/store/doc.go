// Package store persists knowledge graph snapshots.
//
// A Store saves and loads a whole types.Snapshot. Every implementation is atomic
// from the caller's point of view: a failed Save leaves the previously stored
// snapshot readable, and Load never observes a partially written one.
//
// Implementations:
//   - FileStore: JSON or YAML file, written to a temporary file and renamed into place
//   - BadgerStore: one key in a Badger database, written in a single transaction
//   - ParquetStore: one Parquet file of typed rows, written to a temporary file and renamed
//   - BreakerStore: wraps any Store with a circuit breaker
//
// The codec functions Marshal and Unmarshal convert snapshots to and from the
// structured text formats used for export and import.
package store
