package featuregraph

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Wire documents consumed from the backend, one pair per DAG version.
// Every ingestion path (live fetch, raw cache write, cached-snapshot
// install) must call Validate before handing a document to NewGraph; the
// engine itself assumes well-formed input.

var validate = validator.New()

// GraphDocument mirrors the backend's graph JSON.
type GraphDocument struct {
	Nodes           []NodeDocument  `json:"nodes" validate:"dive"`
	Edges           []EdgeDocument  `json:"edges" validate:"dive"`
	ExecutionLevels []LevelDocument `json:"execution_levels"`
	TotalFeatures   int             `json:"total_features"`
	TotalNodes      int             `json:"total_nodes"`
}

// NodeDocument is one node entry of the graph document.
type NodeDocument struct {
	ID                string   `json:"id" validate:"required"`
	Type              string   `json:"type" validate:"required,oneof=extractor resource"`
	Label             string   `json:"label"`
	Features          []string `json:"features"`
	FeatureCount      int      `json:"feature_count"`
	RequiresResources []string `json:"requires_resources"`
	RequiresFeatures  []string `json:"requires_features"`
	Level             int      `json:"level" validate:"min=0"`
}

// EdgeDocument is one edge entry of the graph document.
type EdgeDocument struct {
	ID     string `json:"id"`
	Source string `json:"source" validate:"required"`
	Target string `json:"target" validate:"required"`
	Type   string `json:"type" validate:"required,oneof=feature_dependency resource_dependency"`
}

// LevelDocument is one execution level of the graph document.
type LevelDocument struct {
	Level int      `json:"level"`
	Nodes []string `json:"nodes"`
}

// FeatureSpec is one feature entry of the features-by-node document.
type FeatureSpec struct {
	Name               string   `json:"name" validate:"required"`
	DisplayName        string   `json:"display_name"`
	Description        string   `json:"description"`
	DataType           string   `json:"data_type"`
	IsActive           bool     `json:"is_active"`
	DependsOnFeatures  []string `json:"depends_on_features"`
	DependsOnResources []string `json:"depends_on_resources"`
}

// FeatureCatalog is the features-by-node document, keyed by node name.
type FeatureCatalog map[string][]FeatureSpec

// Validate checks the document's shape at the ingestion boundary.
func (d *GraphDocument) Validate() error {
	if err := validate.Struct(d); err != nil {
		return fmt.Errorf("featuregraph: invalid graph document: %w", err)
	}
	return nil
}

// Validate checks every feature entry at the ingestion boundary.
func (c FeatureCatalog) Validate() error {
	for node, specs := range c {
		for i := range specs {
			if err := validate.Struct(&specs[i]); err != nil {
				return fmt.Errorf("featuregraph: invalid feature under node %s: %w", node, err)
			}
		}
	}
	return nil
}
