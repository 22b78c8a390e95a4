package main

import (
	"log/slog"

	"github.com/soundprediction/kgreason/pkg/logger"
)

func main() {
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("kgreason colored logger demo")
	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Persisting knowledge base", "concepts", 10, "relations", 10) // green
	log.Warn("Relation rejected", "source", "c1", "target", "c99")        // yellow
	log.Error("Snapshot save failed", "error", "disk full")               // red
}
