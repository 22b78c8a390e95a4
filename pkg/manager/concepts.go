package manager

import (
	"context"
	"fmt"
	"strings"

	"github.com/soundprediction/kgreason/pkg/graph"
	"github.com/soundprediction/kgreason/pkg/types"
	"github.com/soundprediction/kgreason/pkg/utils"
)

// AddConcept creates a concept and persists the graph. The id is "c" followed by
// the concept count plus one, advanced past any id already taken. It fails with
// types.ErrDuplicateName if a concept with the same name (case-insensitive) exists.
func (m *Manager) AddConcept(ctx context.Context, in types.ConceptInput) (string, error) {
	id, err := m.addConcept(in)
	if err != nil {
		return "", err
	}
	m.changed(ctx, true)
	return id, nil
}

func (m *Manager) addConcept(in types.ConceptInput) (string, error) {
	if err := in.Validate(); err != nil {
		return "", err
	}

	var id string
	err := m.graph.Update(func(tx *graph.Tx) error {
		if len(tx.IDsByName(in.Name)) > 0 {
			return fmt.Errorf("%w: %q", types.ErrDuplicateName, in.Name)
		}
		id = nextID(tx)
		tx.AddConcept(&types.Concept{
			ID:              id,
			Name:            in.Name,
			Description:     in.Description,
			Category:        in.Category,
			RelatedConcepts: utils.RemoveDuplicateStrings(in.RelatedConcepts),
			Attributes:      in.Attributes,
		})
		return nil
	})
	if err != nil {
		m.logger.Debug("Concept rejected", "name", in.Name, "error", err)
		return "", err
	}
	m.logger.Debug("Concept added", "id", id, "name", in.Name)
	return id, nil
}

func nextID(tx *graph.Tx) string {
	n := tx.ConceptCount() + 1
	for {
		id := fmt.Sprintf("c%d", n)
		if !tx.HasConcept(id) {
			return id
		}
		n++
	}
}

// UpdateConcept applies the supplied fields to an existing concept and persists.
func (m *Manager) UpdateConcept(ctx context.Context, id string, upd types.ConceptUpdate) error {
	if upd.Name != nil && strings.TrimSpace(*upd.Name) == "" {
		return types.ErrEmptyName
	}
	if !m.graph.UpdateConcept(id, upd.Apply) {
		return fmt.Errorf("%w: %s", types.ErrConceptNotFound, id)
	}
	m.logger.Debug("Concept updated", "id", id)
	m.changed(ctx, true)
	return nil
}

// DeleteConcept removes a concept with all incident edges and persists.
func (m *Manager) DeleteConcept(ctx context.Context, id string) error {
	if !m.graph.RemoveConcept(id) {
		return fmt.Errorf("%w: %s", types.ErrConceptNotFound, id)
	}
	m.logger.Debug("Concept deleted", "id", id)
	m.changed(ctx, true)
	return nil
}

// GetConcept returns a copy of the concept with the given id.
func (m *Manager) GetConcept(id string) (*types.Concept, error) {
	c, ok := m.graph.Concept(id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", types.ErrConceptNotFound, id)
	}
	return c, nil
}

// GetConceptByName finds the first concept whose name matches case-insensitively.
func (m *Manager) GetConceptByName(name string) (*types.Concept, error) {
	key := types.NameKey(name)
	if id, ok := m.nameCache.Get(key); ok {
		if c, ok := m.graph.Concept(id); ok && types.NameKey(c.Name) == key {
			return c, nil
		}
		m.nameCache.Remove(key)
	}
	for _, c := range m.graph.Concepts() {
		if types.NameKey(c.Name) == key {
			m.nameCache.Add(key, c.ID)
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", types.ErrConceptNotFound, name)
}

// GetConceptsByCategory returns the concepts whose category matches case-insensitively.
func (m *Manager) GetConceptsByCategory(category string) []*types.Concept {
	key := strings.ToLower(category)
	out := make([]*types.Concept, 0)
	for _, c := range m.graph.Concepts() {
		if strings.ToLower(c.Category) == key {
			out = append(out, c)
		}
	}
	return out
}

// SearchConcepts returns the concepts whose name or description contains query,
// compared case-insensitively.
func (m *Manager) SearchConcepts(query string) []*types.Concept {
	q := strings.ToLower(query)
	if ids, ok := m.searchCache.Get(q); ok {
		out := make([]*types.Concept, 0, len(ids))
		for _, id := range ids {
			if c, ok := m.graph.Concept(id); ok {
				out = append(out, c)
			}
		}
		return out
	}

	out := make([]*types.Concept, 0)
	ids := make([]string, 0)
	for _, c := range m.graph.Concepts() {
		if strings.Contains(strings.ToLower(c.Name), q) || strings.Contains(strings.ToLower(c.Description), q) {
			out = append(out, c)
			ids = append(ids, c.ID)
		}
	}
	m.searchCache.Add(q, ids)
	return out
}

// AddRelation adds an edge between two concepts named case-insensitively and
// persists. A name matching no concept fails with types.ErrConceptNotFound; a name
// matching more than one concept fails with types.ErrAmbiguousName.
func (m *Manager) AddRelation(ctx context.Context, in types.RelationInput) error {
	if err := m.addRelation(in); err != nil {
		return err
	}
	m.changed(ctx, true)
	return nil
}

func (m *Manager) addRelation(in types.RelationInput) error {
	if strings.TrimSpace(in.SourceName) == "" || strings.TrimSpace(in.TargetName) == "" {
		return fmt.Errorf("%w: source_name and target_name", types.ErrMissingField)
	}

	err := m.graph.Update(func(tx *graph.Tx) error {
		src, err := resolveName(tx, in.SourceName)
		if err != nil {
			return err
		}
		tgt, err := resolveName(tx, in.TargetName)
		if err != nil {
			return err
		}
		r := types.Relation{
			Source:        src,
			Target:        tgt,
			RelationType:  in.RelationType,
			Strength:      in.StrengthOrDefault(),
			Description:   in.Description,
			Bidirectional: in.Bidirectional,
		}
		if err := r.Validate(); err != nil {
			return err
		}
		if !tx.AddRelation(r) {
			return types.ErrRelationRejected
		}
		return nil
	})
	if err != nil {
		m.logger.Debug("Relation rejected", "source", in.SourceName, "target", in.TargetName, "error", err)
		return err
	}
	m.logger.Debug("Relation added", "source", in.SourceName, "target", in.TargetName, "type", in.RelationType)
	return nil
}

func resolveName(tx *graph.Tx, name string) (string, error) {
	ids := tx.IDsByName(name)
	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %q", types.ErrConceptNotFound, name)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %q matches %v", types.ErrAmbiguousName, name, ids)
	}
}
