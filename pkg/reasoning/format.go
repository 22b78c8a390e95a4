package reasoning

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/soundprediction/kgreason/pkg/types"
)

// NoConceptsMessage is rendered when a result carries no concepts.
const NoConceptsMessage = "I could not identify enough concepts to perform logical reasoning."

const descriptionPreview = 100

// FormatResult renders a result as human-readable text. The output depends only on
// the result and the concept names currently in the graph.
func (e *Engine) FormatResult(result *types.ReasoningResult) string {
	if result.Empty() {
		return NoConceptsMessage
	}

	names := e.nameIndex()
	nameOf := func(id string) string {
		if n, ok := names[id]; ok {
			return n
		}
		return id
	}

	var b strings.Builder
	b.WriteString("Deductive reasoning results:\n\n")

	b.WriteString("Identified concepts:\n")
	for i, c := range result.Concepts {
		fmt.Fprintf(&b, "%d. %s: %s\n", i+1, c.Name, preview(c.Description))
	}
	b.WriteString("\n")

	if len(result.Relations) > 0 {
		b.WriteString("Discovered relations:\n")
		for i, r := range result.Relations {
			fmt.Fprintf(&b, "%d. %s %s %s (confidence: %s)\n", i+1, nameOf(r.Source), r.RelationType, nameOf(r.Target), percent(r.Strength))
		}
	} else {
		b.WriteString("No direct relations were discovered between the concepts.\n")
	}
	b.WriteString("\n")

	if len(result.Inferences) > 0 {
		b.WriteString("Logical inferences:\n")
		for i, inf := range result.Inferences {
			fmt.Fprintf(&b, "%d. %s (confidence: %s)\n", i+1, inf.Conclusion, percent(inf.Confidence))
			b.WriteString("   Based on:\n")
			for _, p := range inf.Premises {
				fmt.Fprintf(&b, "   - %s\n", p)
			}
			b.WriteString("\n")
		}
	} else {
		b.WriteString("No logical inferences were reached.\n")
	}

	fmt.Fprintf(&b, "\nOverall assessment: confidence %s\n", percent(result.Confidence))
	return b.String()
}

func percent(v float64) string {
	return fmt.Sprintf("%.2f%%", v*100)
}

func preview(s string) string {
	if utf8.RuneCountInString(s) <= descriptionPreview {
		return s
	}
	return string([]rune(s)[:descriptionPreview]) + "..."
}
