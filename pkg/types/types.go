package types

import (
	"errors"
	"time"
)

// Validation errors
var (
	ErrEmptyID          = errors.New("id cannot be empty")
	ErrEmptyName        = errors.New("name cannot be empty")
	ErrEmptyRelation    = errors.New("relation_type cannot be empty")
	ErrInvalidStrength  = errors.New("strength must be within [0, 1]")
	ErrMissingField     = errors.New("required field missing")
	ErrInvalidFieldType = errors.New("field has invalid type")
)

// Lookup and lifecycle errors
var (
	ErrConceptNotFound   = errors.New("concept not found")
	ErrDuplicateName     = errors.New("concept with the same name already exists")
	ErrAmbiguousName     = errors.New("concept name matches more than one concept")
	ErrDuplicateID       = errors.New("concept id already exists")
	ErrRelationRejected  = errors.New("relation endpoints do not exist")
	ErrUnsupportedFormat = errors.New("unsupported snapshot format")
	ErrMalformedSnapshot = errors.New("malformed snapshot")
	ErrSnapshotNotFound  = errors.New("snapshot not found")
)

// DefaultRelationType is used when an edge carries no relation type.
const DefaultRelationType = "related_to"

// Inference is a derived claim produced by chaining relations along a path.
// Inferences are transient and never persisted.
type Inference struct {
	Premises      []string   `json:"premises"`
	Conclusion    string     `json:"conclusion"`
	Confidence    float64    `json:"confidence"`
	ReasoningPath []PathStep `json:"reasoning_path"`
	Timestamp     time.Time  `json:"timestamp"`
}

// PathStep is one traversed edge in a path: (source id, relation type, target id).
type PathStep struct {
	Source       string `json:"source"`
	RelationType string `json:"relation_type"`
	Target       string `json:"target"`
}

// Path is a sequence of traversed edges.
type Path []PathStep

// ReasoningResult holds the output of reasoning over one question.
type ReasoningResult struct {
	Concepts   []*Concept  `json:"concepts"`
	Relations  []Relation  `json:"relations"`
	Inferences []Inference `json:"inferences"`
	Confidence float64     `json:"confidence"`
}

// Empty reports whether no concepts grounded the question.
func (r *ReasoningResult) Empty() bool {
	return r == nil || len(r.Concepts) == 0
}

// Snapshot is the full serialized state of a knowledge graph.
type Snapshot struct {
	Concepts  []*Concept `json:"concepts" yaml:"concepts"`
	Relations []Relation `json:"relations" yaml:"relations"`
}

// Validate checks the structural integrity of the snapshot: every concept is valid,
// ids are unique, and every relation references known concepts.
func (s *Snapshot) Validate() error {
	if s == nil {
		return ErrMalformedSnapshot
	}
	ids := make(map[string]struct{}, len(s.Concepts))
	for i, c := range s.Concepts {
		if c == nil {
			return wrapIndex(ErrMalformedSnapshot, "concept", i, ErrEmptyID)
		}
		if err := c.Validate(); err != nil {
			return wrapIndex(ErrMalformedSnapshot, "concept", i, err)
		}
		if _, ok := ids[c.ID]; ok {
			return wrapIndex(ErrMalformedSnapshot, "concept", i, ErrDuplicateID)
		}
		ids[c.ID] = struct{}{}
	}
	for i := range s.Relations {
		r := &s.Relations[i]
		if err := r.Validate(); err != nil {
			return wrapIndex(ErrMalformedSnapshot, "relation", i, err)
		}
		_, okSrc := ids[r.Source]
		_, okTgt := ids[r.Target]
		if !okSrc || !okTgt {
			return wrapIndex(ErrMalformedSnapshot, "relation", i, ErrRelationRejected)
		}
	}
	return nil
}
