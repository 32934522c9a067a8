package types

// ExtractedRevision and ExtractedStandard are the target schemas for
// inference-driven ingestion. Every date arrives as a plain string and is
// parsed against DateLayout afterwards, tolerating whatever the model emits.
type ExtractedRevision struct {
	RevisionNumber      string `json:"revision_number"`
	RevisionDate        string `json:"revision_date"`
	RevisionDescription string `json:"revision_description"`
}

type ExtractedStandard struct {
	Name                string              `json:"name"`
	Description         string              `json:"description"`
	IssuingOrganization string              `json:"issuingOrganization"`
	StandardNumber      string              `json:"standardNumber"`
	Version             string              `json:"version"`
	StandardOwner       string              `json:"standardOwner"`
	StandardWebsite     string              `json:"standardWebsite"`
	IssueDate           string              `json:"issueDate"`
	EffectiveDate       string              `json:"effectiveDate"`
	Revisions           []ExtractedRevision `json:"revisions"`
	GeneralCategories   []string            `json:"generalCategories"`
	ITCategories        []string            `json:"itCategories"`
	AdditionalNotes     string              `json:"additionalNotes"`
	Regions             []string            `json:"regions"`
	Countries           []string            `json:"countries"`
}
