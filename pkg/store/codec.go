package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/soundprediction/kgreason/pkg/types"
	"gopkg.in/yaml.v3"
)

// Format names a structured text encoding for snapshots.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat normalizes a format name. "yml" is accepted as YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, name)
	}
}

// FormatFromPath picks the format implied by a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Marshal encodes a snapshot. Empty collections are written as empty arrays.
func Marshal(snap *types.Snapshot, format Format) ([]byte, error) {
	out := normalize(snap)
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(out); err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return buf.Bytes(), nil
	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(out); err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, fmt.Errorf("failed to encode snapshot: %w", err)
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}
}

// Unmarshal decodes and validates a snapshot. Any decoding or validation failure
// wraps types.ErrMalformedSnapshot.
func Unmarshal(data []byte, format Format) (*types.Snapshot, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("%w: empty payload", types.ErrMalformedSnapshot)
	}

	var snap types.Snapshot
	switch format {
	case FormatJSON:
		if err := json.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrMalformedSnapshot, err)
		}
	case FormatYAML:
		if err := yaml.Unmarshal(data, &snap); err != nil {
			return nil, fmt.Errorf("%w: %v", types.ErrMalformedSnapshot, err)
		}
	default:
		return nil, fmt.Errorf("%w: %q", types.ErrUnsupportedFormat, format)
	}

	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return normalize(&snap), nil
}

// RepairJSON attempts to fix hand-edited JSON (trailing commas, single quotes,
// unquoted keys) before it is decoded.
func RepairJSON(data []byte) ([]byte, error) {
	repaired, err := jsonrepair.JSONRepair(string(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedSnapshot, err)
	}
	return []byte(repaired), nil
}

func normalize(snap *types.Snapshot) *types.Snapshot {
	out := &types.Snapshot{
		Concepts:  make([]*types.Concept, 0),
		Relations: make([]types.Relation, 0),
	}
	if snap == nil {
		return out
	}
	for _, c := range snap.Concepts {
		out.Concepts = append(out.Concepts, c.Clone())
	}
	out.Relations = append(out.Relations, snap.Relations...)
	return out
}
