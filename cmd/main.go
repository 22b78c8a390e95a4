package main

import (
	"os"

	"github.com/soundprediction/kgreason/cmd/kgreason"
)

func main() {
	if err := kgreason.Execute(); err != nil {
		os.Exit(1)
	}
}
