package types

// StandardMappingEntry is one recommended standard inside a mapping document.
// InRepo distinguishes catalog entries from standards the model recommended
// on its own.
type StandardMappingEntry struct {
	StandardName                 string   `json:"standard_name"`
	RelevanceScore               float64  `json:"relevance_score"`
	TechnicalRequirementsMatched []string `json:"technical_requirements_matched"`
	ReasonForMapping             string   `json:"reason_for_mapping"`
	InRepo                       bool     `json:"in_repo"`
}

// StandardMapping is the document produced by the mapping workflow and stored
// verbatim on the project.
type StandardMapping struct {
	Mappings        []StandardMappingEntry `json:"mappings"`
	Summary         string                 `json:"summary"`
	ConfidenceScore float64                `json:"confidence_score"`
}

// CatalogStandard is the projection of an approved standard embedded in the
// mapping prompt.
type CatalogStandard struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Regions     []string `json:"regions"`
}
