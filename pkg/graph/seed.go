package graph

import "github.com/soundprediction/kgreason/pkg/types"

// NewInitialKnowledgeBase returns a freshly populated graph for bootstrapping and tests.
// Every call builds an independent instance.
func NewInitialKnowledgeBase() *KnowledgeGraph {
	g := New()

	concepts := []*types.Concept{
		{ID: "c1", Name: "Artificial Intelligence", Description: "Technology that enables machines to simulate human intelligence", Category: "technology"},
		{ID: "c2", Name: "Machine Learning", Description: "Branch of artificial intelligence focused on algorithms that learn from data", Category: "technology"},
		{ID: "c3", Name: "Deep Learning", Description: "Advanced form of machine learning using multi-layer neural networks", Category: "technology"},
		{ID: "c4", Name: "Natural Language Processing", Description: "Field focused on the interaction between computers and human languages", Category: "technology"},
		{ID: "c5", Name: "Neural Networks", Description: "Computational models inspired by the human brain", Category: "technology"},
		{ID: "c6", Name: "Big Data", Description: "Very large datasets that are hard to process with traditional methods", Category: "technology"},
		{ID: "c7", Name: "Privacy", Description: "Protection of personal information from unauthorized access", Category: "security"},
		{ID: "c8", Name: "Ethics", Description: "Principles that define right and wrong conduct", Category: "philosophy"},
		{ID: "c9", Name: "Bias", Description: "Unfair inclination toward or against a person or group", Category: "social"},
		{ID: "c10", Name: "Automation", Description: "Use of technology to perform tasks with limited human intervention", Category: "technology"},
	}
	for _, c := range concepts {
		g.AddConcept(c)
	}

	relations := []types.Relation{
		{Source: "c1", Target: "c2", RelationType: "includes", Strength: 0.9},
		{Source: "c2", Target: "c3", RelationType: "includes", Strength: 0.8},
		{Source: "c3", Target: "c5", RelationType: "uses", Strength: 0.9},
		{Source: "c4", Target: "c1", RelationType: "part of", Strength: 0.7},
		{Source: "c6", Target: "c2", RelationType: "supports", Strength: 0.8},
		{Source: "c1", Target: "c7", RelationType: "affects", Strength: 0.6},
		{Source: "c1", Target: "c8", RelationType: "raises issues of", Strength: 0.7},
		{Source: "c2", Target: "c9", RelationType: "may cause", Strength: 0.5},
		{Source: "c1", Target: "c10", RelationType: "enables", Strength: 0.8},
		{Source: "c10", Target: "c7", RelationType: "threatens", Strength: 0.4},
	}
	for _, r := range relations {
		g.AddRelation(r)
	}

	return g
}
