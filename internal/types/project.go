package types

import (
	"github.com/pliro-dev/pliro/internal/models"
	"gorm.io/datatypes"
)

type ProjectResponse struct {
	ID                     uint           `json:"id"`
	Name                   string         `json:"name"`
	Use                    string         `json:"use"`
	Description            string         `json:"description"`
	ProductType            string         `json:"product_type"`
	ProductCategory        string         `json:"product_category"`
	Dimensions             string         `json:"dimensions"`
	Weight                 string         `json:"weight"`
	Regions                []string       `json:"regions"`
	Countries              []string       `json:"countries"`
	TechnicalDetails       datatypes.JSON `json:"technical_details"`
	StandardMapping        datatypes.JSON `json:"standard_mapping"`
	MultiVariant           bool           `json:"multi_variant"`
	PreCertifiedComponents bool           `json:"pre_certified_components"`
	UserID                 uint           `json:"user_id"`
}

type ProjectPage struct {
	Items []ProjectResponse `json:"items"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Size  int               `json:"size"`
}

func NewProjectResponse(project models.Project) ProjectResponse {
	return ProjectResponse{
		ID:                     project.ID,
		Name:                   project.Name,
		Use:                    project.Use,
		Description:            project.Description,
		ProductType:            project.ProductType,
		ProductCategory:        project.ProductCategory,
		Dimensions:             project.Dimensions,
		Weight:                 project.Weight,
		Regions:                project.Regions,
		Countries:              project.Countries,
		TechnicalDetails:       project.TechnicalDetails,
		StandardMapping:        project.StandardMapping,
		MultiVariant:           project.MultiVariant,
		PreCertifiedComponents: project.PreCertifiedComponents,
		UserID:                 project.UserID,
	}
}
