package store

import (
	"testing"

	"github.com/soundprediction/kgreason/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{" yml ", FormatYAML, false},
		{"xml", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatFromPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatFromPath("kb.YML"))
	assert.Equal(t, FormatYAML, FormatFromPath("/data/kb.yaml"))
	assert.Equal(t, FormatJSON, FormatFromPath("kb.json"))
	assert.Equal(t, FormatJSON, FormatFromPath(""))
}

func TestMarshalUnsupportedFormat(t *testing.T) {
	_, err := Marshal(sampleSnapshot(), Format("csv"))
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)

	_, err = Unmarshal([]byte(`{}`), Format("csv"))
	assert.ErrorIs(t, err, types.ErrUnsupportedFormat)
}

func TestMarshalNilSnapshot(t *testing.T) {
	data, err := Marshal(nil, FormatJSON)
	require.NoError(t, err)
	assert.JSONEq(t, `{"concepts": [], "relations": []}`, string(data))
}

func TestMarshalKeepsNonASCII(t *testing.T) {
	snap := &types.Snapshot{Concepts: []*types.Concept{{ID: "c1", Name: "Ética & <IA>"}}}
	data, err := Marshal(snap, FormatJSON)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Ética & <IA>")
}

func TestUnmarshalMalformed(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"empty", "  ", FormatJSON},
		{"truncated json", `{"concepts": [`, FormatJSON},
		{"trailing garbage", `{"concepts": []} x`, FormatJSON},
		{"wrong shape", `{"concepts": "c1"}`, FormatJSON},
		{"bad yaml", "concepts: [c1, c2", FormatYAML},
		{"empty id", `{"concepts": [{"id": "", "name": "A"}]}`, FormatJSON},
		{"empty name", `{"concepts": [{"id": "c1", "name": " "}]}`, FormatJSON},
		{"duplicate id", `{"concepts": [{"id": "c1", "name": "A"}, {"id": "c1", "name": "B"}]}`, FormatJSON},
		{"dangling relation", `{"concepts": [{"id": "c1", "name": "A"}], "relations": [{"source": "c1", "target": "c9", "relation_type": "x", "strength": 0.5}]}`, FormatJSON},
		{"strength out of range", `{"concepts": [{"id": "c1", "name": "A"}, {"id": "c2", "name": "B"}], "relations": [{"source": "c1", "target": "c2", "relation_type": "x", "strength": 2}]}`, FormatJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Unmarshal([]byte(tt.data), tt.format)
			assert.ErrorIs(t, err, types.ErrMalformedSnapshot)
		})
	}
}

func TestUnmarshalYAML(t *testing.T) {
	data := []byte(`concepts:
  - id: c1
    name: Privacy
    category: ethics
  - id: c2
    name: Data
relations:
  - source: c1
    target: c2
    relation_type: protects
    strength: 0.7
`)
	snap, err := Unmarshal(data, FormatYAML)
	require.NoError(t, err)
	require.Len(t, snap.Concepts, 2)
	assert.Equal(t, "ethics", snap.Concepts[0].Category)
	assert.NotNil(t, snap.Concepts[1].RelatedConcepts)
	require.Len(t, snap.Relations, 1)
	assert.InDelta(t, 0.7, snap.Relations[0].Strength, 1e-9)
}

func TestRepairJSON(t *testing.T) {
	broken := []byte(`{'concepts': [{"id": "c1", "name": "Privacy",}], "relations": [],}`)

	_, err := Unmarshal(broken, FormatJSON)
	require.Error(t, err)

	fixed, err := RepairJSON(broken)
	require.NoError(t, err)

	snap, err := Unmarshal(fixed, FormatJSON)
	require.NoError(t, err)
	require.Len(t, snap.Concepts, 1)
	assert.Equal(t, "Privacy", snap.Concepts[0].Name)
}
