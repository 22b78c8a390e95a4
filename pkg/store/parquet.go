package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/parquet-go/parquet-go"
	"github.com/soundprediction/kgreason/pkg/types"
)

// DefaultParquetPath is the snapshot file used when none is configured.
const DefaultParquetPath = "knowledge_base.parquet"

const (
	rowKindConcept  = "concept"
	rowKindRelation = "relation"
)

// snapshotRow is the Parquet schema. Concepts and relations share one file and are
// told apart by Kind; list and map fields are stored as JSON strings.
type snapshotRow struct {
	Kind            string  `parquet:"kind"`
	ID              string  `parquet:"id"`
	Name            string  `parquet:"name"`
	Description     string  `parquet:"description"`
	Category        string  `parquet:"category"`
	RelatedConcepts string  `parquet:"related_concepts"`
	Attributes      string  `parquet:"attributes"`
	Source          string  `parquet:"source"`
	Target          string  `parquet:"target"`
	RelationType    string  `parquet:"relation_type"`
	Strength        float64 `parquet:"strength"`
	Bidirectional   bool    `parquet:"bidirectional"`
}

// ParquetStore keeps the snapshot in one Parquet file for columnar analysis.
type ParquetStore struct {
	path string
}

// NewParquetStore creates a Parquet store at path.
func NewParquetStore(path string) (*ParquetStore, error) {
	if path == "" {
		path = DefaultParquetPath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create snapshot directory: %w", err)
		}
	}
	return &ParquetStore{path: path}, nil
}

// Location returns the snapshot file path.
func (s *ParquetStore) Location() string {
	return s.path
}

// Save encodes the snapshot and renames it into place.
func (s *ParquetStore) Save(ctx context.Context, snap *types.Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	rows, err := toRows(normalize(snap))
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := parquet.Write(&buf, rows); err != nil {
		return fmt.Errorf("failed to encode parquet snapshot: %w", err)
	}
	return writeFileAtomic(s.path, buf.Bytes())
}

// Load reads and validates the snapshot file.
func (s *ParquetStore) Load(ctx context.Context) (*types.Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(s.path); errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", types.ErrSnapshotNotFound, s.path)
	}
	rows, err := parquet.ReadFile[snapshotRow](s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", types.ErrMalformedSnapshot, err)
	}
	snap, err := fromRows(rows)
	if err != nil {
		return nil, err
	}
	if err := snap.Validate(); err != nil {
		return nil, err
	}
	return snap, nil
}

// Close is a no-op for Parquet stores.
func (s *ParquetStore) Close() error {
	return nil
}

func toRows(snap *types.Snapshot) ([]snapshotRow, error) {
	rows := make([]snapshotRow, 0, len(snap.Concepts)+len(snap.Relations))
	for _, c := range snap.Concepts {
		related, err := json.Marshal(c.RelatedConcepts)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal related concepts: %w", err)
		}
		attrs, err := json.Marshal(c.Attributes)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal attributes: %w", err)
		}
		rows = append(rows, snapshotRow{
			Kind:            rowKindConcept,
			ID:              c.ID,
			Name:            c.Name,
			Description:     c.Description,
			Category:        c.Category,
			RelatedConcepts: string(related),
			Attributes:      string(attrs),
		})
	}
	for _, r := range snap.Relations {
		rows = append(rows, snapshotRow{
			Kind:          rowKindRelation,
			Source:        r.Source,
			Target:        r.Target,
			RelationType:  r.RelationType,
			Strength:      r.Strength,
			Description:   r.Description,
			Bidirectional: r.Bidirectional,
		})
	}
	return rows, nil
}

func fromRows(rows []snapshotRow) (*types.Snapshot, error) {
	snap := &types.Snapshot{
		Concepts:  make([]*types.Concept, 0),
		Relations: make([]types.Relation, 0),
	}
	for i, row := range rows {
		switch row.Kind {
		case rowKindConcept:
			c := &types.Concept{
				ID:          row.ID,
				Name:        row.Name,
				Description: row.Description,
				Category:    row.Category,
			}
			if err := json.Unmarshal([]byte(row.RelatedConcepts), &c.RelatedConcepts); err != nil {
				return nil, fmt.Errorf("%w: row %d related_concepts: %v", types.ErrMalformedSnapshot, i, err)
			}
			if err := json.Unmarshal([]byte(row.Attributes), &c.Attributes); err != nil {
				return nil, fmt.Errorf("%w: row %d attributes: %v", types.ErrMalformedSnapshot, i, err)
			}
			snap.Concepts = append(snap.Concepts, c.Clone())
		case rowKindRelation:
			snap.Relations = append(snap.Relations, types.Relation{
				Source:        row.Source,
				Target:        row.Target,
				RelationType:  row.RelationType,
				Strength:      row.Strength,
				Description:   row.Description,
				Bidirectional: row.Bidirectional,
			})
		default:
			return nil, fmt.Errorf("%w: row %d has unknown kind %q", types.ErrMalformedSnapshot, i, row.Kind)
		}
	}
	return snap, nil
}
