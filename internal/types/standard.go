package types

import (
	"time"

	"github.com/pliro-dev/pliro/internal/models"
)

// DateLayout is the calendar-date format used everywhere a date crosses the
// wire: responses, manual create payloads and inference output.
const DateLayout = "2006-01-02"

type RevisionResponse struct {
	ID                  uint   `json:"id"`
	RevisionNumber      string `json:"revision_number"`
	RevisionDate        string `json:"revision_date"`
	RevisionDescription string `json:"revision_description"`
}

// StandardResponse is the wire shape of a standard. The mixed field casing is
// part of the public contract and must not be normalized.
type StandardResponse struct {
	ID                  uint               `json:"id"`
	Name                string             `json:"name"`
	Description         string             `json:"description"`
	IssuingOrganization string             `json:"issuingOrganization"`
	StandardNumber      string             `json:"standardNumber"`
	Version             string             `json:"version"`
	StandardOwner       string             `json:"standardOwner"`
	StandardWebsite     string             `json:"standardWebsite"`
	IssueDate           *string            `json:"issueDate"`
	EffectiveDate       *string            `json:"effectiveDate"`
	Revisions           []RevisionResponse `json:"revisions"`
	GeneralCategories   []string           `json:"generalCategories"`
	ITCategories        []string           `json:"itCategories"`
	AdditionalNotes     string             `json:"additionalNotes"`
	Regions             []string           `json:"regions"`
	Countries           []string           `json:"countries"`
	FilePath            string             `json:"file_path"`
	ApprovalStatus      string             `json:"approval_status"`
	PresignedURL        string             `json:"presigned_url,omitempty"`
}

type StandardPage struct {
	Items []StandardResponse `json:"items"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Size  int                `json:"size"`
}

func NewStandardResponse(standard models.Standard) StandardResponse {
	revisions := make([]RevisionResponse, 0, len(standard.Revisions))

	for _, revision := range standard.Revisions {
		revisions = append(revisions, RevisionResponse{
			ID:                  revision.ID,
			RevisionNumber:      revision.RevisionNumber,
			RevisionDate:        revision.RevisionDate,
			RevisionDescription: revision.RevisionDescription,
		})
	}

	return StandardResponse{
		ID:                  standard.ID,
		Name:                standard.Name,
		Description:         standard.Description,
		IssuingOrganization: standard.IssuingOrganization,
		StandardNumber:      standard.StandardNumber,
		Version:             standard.Version,
		StandardOwner:       standard.StandardOwner,
		StandardWebsite:     standard.StandardWebsite,
		IssueDate:           formatDate(standard.IssueDate),
		EffectiveDate:       formatDate(standard.EffectiveDate),
		Revisions:           revisions,
		GeneralCategories:   standard.GeneralCategories,
		ITCategories:        standard.ITCategories,
		AdditionalNotes:     standard.AdditionalNotes,
		Regions:             standard.Regions,
		Countries:           standard.Countries,
		FilePath:            standard.FilePath,
		ApprovalStatus:      standard.ApprovalStatus,
	}
}

func formatDate(date *time.Time) *string {
	if date == nil {
		return nil
	}

	formatted := date.Format(DateLayout)
	return &formatted
}
