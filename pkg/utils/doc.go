// Package utils provides small helpers shared by the manager and the server:
// chunking for batch ingestion and panic-to-error recovery for per-item fault
// isolation.
package utils
