package types

// Relation represents a typed, weighted directed edge between two concepts.
//
// A bidirectional relation is materialized by the graph as two directed edges that
// carry identical type, strength, and description.
type Relation struct {
	Source        string  `json:"source" yaml:"source"`
	Target        string  `json:"target" yaml:"target"`
	RelationType  string  `json:"relation_type" yaml:"relation_type"`
	Strength      float64 `json:"strength" yaml:"strength"`
	Description   string  `json:"description" yaml:"description"`
	Bidirectional bool    `json:"bidirectional" yaml:"bidirectional"`
}

// Validate checks if the Relation has all required fields set.
func (r *Relation) Validate() error {
	if r.Source == "" || r.Target == "" {
		return ErrEmptyID
	}
	if r.RelationType == "" {
		return ErrEmptyRelation
	}
	if r.Strength < 0 || r.Strength > 1 {
		return ErrInvalidStrength
	}
	return nil
}

// Key returns the ordered endpoint pair identifying the edge in storage.
func (r *Relation) Key() EdgeKey {
	return EdgeKey{Source: r.Source, Target: r.Target}
}

// Reverse returns the mirror edge of r.
func (r Relation) Reverse() Relation {
	r.Source, r.Target = r.Target, r.Source
	return r
}

// EdgeKey identifies a directed edge. The graph stores at most one edge per key.
type EdgeKey struct {
	Source string
	Target string
}

// Edge is the stored form of one directed edge.
type Edge struct {
	Source       string  `json:"source"`
	Target       string  `json:"target"`
	RelationType string  `json:"relation_type"`
	Strength     float64 `json:"strength"`
	Description  string  `json:"description"`
}

// Relation converts the stored edge into a Relation view.
func (e Edge) Relation() Relation {
	return Relation{
		Source:       e.Source,
		Target:       e.Target,
		RelationType: e.RelationType,
		Strength:     e.Strength,
		Description:  e.Description,
	}
}

// RelationInput holds the fields for adding a relation by concept name.
type RelationInput struct {
	SourceName    string   `json:"source_name" binding:"required"`
	TargetName    string   `json:"target_name" binding:"required"`
	RelationType  string   `json:"relation_type" binding:"required"`
	Strength      *float64 `json:"strength,omitempty"`
	Description   string   `json:"description,omitempty"`
	Bidirectional bool     `json:"bidirectional,omitempty"`
}

// DefaultStrength is applied when a RelationInput omits its strength.
const DefaultStrength = 0.5

// StrengthOrDefault returns the input strength or DefaultStrength when unset.
func (in *RelationInput) StrengthOrDefault() float64 {
	if in.Strength == nil {
		return DefaultStrength
	}
	return *in.Strength
}
