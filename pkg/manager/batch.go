package manager

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/soundprediction/kgreason/pkg/types"
	"github.com/soundprediction/kgreason/pkg/utils"
)

// BatchResult counts the outcome of a batch operation.
type BatchResult struct {
	Success int `json:"success"`
	Failed  int `json:"failed"`
}

var (
	conceptKeys  = []string{"name", "description", "category"}
	relationKeys = []string{"source_name", "target_name", "relation_type"}
)

// BatchProcessConcepts adds each item as a concept. Items are processed in chunks
// of BatchSize; each item must carry name, description and category. A failing or
// panicking item is counted and skipped without affecting the others. The graph
// is persisted once at the end if anything was added.
func (m *Manager) BatchProcessConcepts(ctx context.Context, items []map[string]any) BatchResult {
	return m.runBatch(ctx, "concepts", items, func(item map[string]any) error {
		in, err := conceptInputFrom(item)
		if err != nil {
			return err
		}
		_, err = m.addConcept(in)
		return err
	})
}

// BatchProcessRelations adds each item as a relation by concept name, with the same
// chunking and fault isolation as BatchProcessConcepts. Each item must carry
// source_name, target_name and relation_type.
func (m *Manager) BatchProcessRelations(ctx context.Context, items []map[string]any) BatchResult {
	return m.runBatch(ctx, "relations", items, func(item map[string]any) error {
		in, err := relationInputFrom(item)
		if err != nil {
			return err
		}
		return m.addRelation(in)
	})
}

func (m *Manager) runBatch(ctx context.Context, kind string, items []map[string]any, process func(map[string]any) error) BatchResult {
	var res BatchResult
	for i, chunk := range utils.Batch(items, m.BatchSize()) {
		for j, item := range chunk {
			if err := withRecovery(func() error { return process(item) }); err != nil {
				res.Failed++
				m.logger.Debug("Batch item failed", "kind", kind, "batch", i, "item", j, "error", err)
				continue
			}
			res.Success++
		}
	}

	m.logger.Info("Batch processed", "kind", kind, "success", res.Success, "failed", res.Failed)
	if res.Success > 0 {
		m.changed(ctx, true)
	}
	return res
}

func requireKeys(item map[string]any, keys []string) error {
	if item == nil {
		return fmt.Errorf("%w: item is empty", types.ErrMissingField)
	}
	for _, k := range keys {
		if _, ok := item[k]; !ok {
			return fmt.Errorf("%w: %s", types.ErrMissingField, k)
		}
	}
	return nil
}

func stringField(item map[string]any, key string) (string, error) {
	v, ok := item[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: %s must be a string, got %T", types.ErrInvalidFieldType, key, v)
	}
	return s, nil
}

func conceptInputFrom(item map[string]any) (types.ConceptInput, error) {
	var in types.ConceptInput
	if err := requireKeys(item, conceptKeys); err != nil {
		return in, err
	}

	var err error
	if in.Name, err = stringField(item, "name"); err != nil {
		return in, err
	}
	if in.Description, err = stringField(item, "description"); err != nil {
		return in, err
	}
	if in.Category, err = stringField(item, "category"); err != nil {
		return in, err
	}

	switch v := item["related_concepts"].(type) {
	case nil:
	case []string:
		in.RelatedConcepts = v
	case []any:
		for _, e := range v {
			s, ok := e.(string)
			if !ok {
				return in, fmt.Errorf("%w: related_concepts must hold strings, got %T", types.ErrInvalidFieldType, e)
			}
			in.RelatedConcepts = append(in.RelatedConcepts, s)
		}
	default:
		return in, fmt.Errorf("%w: related_concepts must be a list, got %T", types.ErrInvalidFieldType, v)
	}

	switch v := item["attributes"].(type) {
	case nil:
	case map[string]any:
		in.Attributes = v
	default:
		return in, fmt.Errorf("%w: attributes must be a mapping, got %T", types.ErrInvalidFieldType, v)
	}
	return in, nil
}

func relationInputFrom(item map[string]any) (types.RelationInput, error) {
	var in types.RelationInput
	if err := requireKeys(item, relationKeys); err != nil {
		return in, err
	}

	var err error
	if in.SourceName, err = stringField(item, "source_name"); err != nil {
		return in, err
	}
	if in.TargetName, err = stringField(item, "target_name"); err != nil {
		return in, err
	}
	if in.RelationType, err = stringField(item, "relation_type"); err != nil {
		return in, err
	}
	if in.Description, err = stringField(item, "description"); err != nil {
		return in, err
	}

	if v, ok := item["strength"]; ok && v != nil {
		s, err := toFloat(v)
		if err != nil {
			return in, fmt.Errorf("%w: strength: %v", types.ErrInvalidFieldType, err)
		}
		in.Strength = &s
	}

	switch v := item["bidirectional"].(type) {
	case nil:
	case bool:
		in.Bidirectional = v
	default:
		return in, fmt.Errorf("%w: bidirectional must be a boolean, got %T", types.ErrInvalidFieldType, v)
	}
	return in, nil
}

func toFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case json.Number:
		return n.Float64()
	default:
		return 0, fmt.Errorf("not a number: %T", v)
	}
}
