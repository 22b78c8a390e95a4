package types

import (
	"maps"
	"slices"
	"strings"
)

// Concept represents a named, categorized node in the knowledge graph.
//
// RelatedConcepts is advisory only; the graph's edges are authoritative for traversal.
type Concept struct {
	ID              string                 `json:"id" yaml:"id" mapstructure:"id"`
	Name            string                 `json:"name" yaml:"name" mapstructure:"name"`
	Description     string                 `json:"description" yaml:"description" mapstructure:"description"`
	Category        string                 `json:"category" yaml:"category" mapstructure:"category"`
	RelatedConcepts []string               `json:"related_concepts" yaml:"related_concepts" mapstructure:"related_concepts"`
	Attributes      map[string]interface{} `json:"attributes" yaml:"attributes" mapstructure:"attributes"`
}

// Validate checks if the Concept has all required fields set.
func (c *Concept) Validate() error {
	if c.ID == "" {
		return ErrEmptyID
	}
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// Clone returns a deep copy of the concept. Nested maps and slices inside
// Attributes are copied too, so the clone shares no mutable state with c.
func (c *Concept) Clone() *Concept {
	if c == nil {
		return nil
	}
	out := *c
	out.RelatedConcepts = slices.Clone(c.RelatedConcepts)
	if out.RelatedConcepts == nil {
		out.RelatedConcepts = []string{}
	}
	out.Attributes = cloneAttributes(c.Attributes)
	if out.Attributes == nil {
		out.Attributes = map[string]interface{}{}
	}
	return &out
}

func cloneAttributes(m map[string]interface{}) map[string]interface{} {
	if m == nil {
		return nil
	}
	out := make(map[string]interface{}, len(m))
	for k, v := range m {
		out[k] = cloneValue(v)
	}
	return out
}

// cloneValue copies the container shapes produced by JSON, YAML and mapstructure decoding.
func cloneValue(v interface{}) interface{} {
	switch t := v.(type) {
	case map[string]interface{}:
		return cloneAttributes(t)
	case map[interface{}]interface{}:
		out := make(map[interface{}]interface{}, len(t))
		for k, e := range t {
			out[k] = cloneValue(e)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	case []string:
		return slices.Clone(t)
	case map[string]string:
		return maps.Clone(t)
	default:
		return v
	}
}

// NameKey is the case-insensitive comparison key for concept names.
func NameKey(name string) string {
	return strings.ToLower(name)
}

// Node carries the denormalized concept attributes stored on a graph node.
type Node struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

// NodeOf builds the denormalized node attributes for a concept.
func NodeOf(c *Concept) Node {
	return Node{ID: c.ID, Name: c.Name, Category: c.Category, Description: c.Description}
}

// ConceptInput holds the fields for creating a concept through the manager.
type ConceptInput struct {
	Name            string                 `json:"name" binding:"required"`
	Description     string                 `json:"description"`
	Category        string                 `json:"category"`
	RelatedConcepts []string               `json:"related_concepts,omitempty"`
	Attributes      map[string]interface{} `json:"attributes,omitempty"`
}

// Validate checks if the ConceptInput has all required fields set.
func (in *ConceptInput) Validate() error {
	if strings.TrimSpace(in.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

// ConceptUpdate is a partial update; nil fields retain their prior values.
type ConceptUpdate struct {
	Name            *string                `json:"name,omitempty"`
	Description     *string                `json:"description,omitempty"`
	Category        *string                `json:"category,omitempty"`
	RelatedConcepts []string               `json:"related_concepts,omitempty"`
	Attributes      map[string]interface{} `json:"attributes,omitempty"`
}

// Apply writes the supplied fields onto c.
func (u *ConceptUpdate) Apply(c *Concept) {
	if u.Name != nil {
		c.Name = *u.Name
	}
	if u.Description != nil {
		c.Description = *u.Description
	}
	if u.Category != nil {
		c.Category = *u.Category
	}
	if u.RelatedConcepts != nil {
		c.RelatedConcepts = slices.Clone(u.RelatedConcepts)
	}
	if u.Attributes != nil {
		c.Attributes = maps.Clone(u.Attributes)
	}
}
