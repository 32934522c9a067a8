package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pliro-dev/pliro/internal/inference"
	"github.com/pliro-dev/pliro/internal/models"
	"github.com/pliro-dev/pliro/internal/types"
)

type ProjectCreate struct {
	Name                   string         `json:"name" binding:"required"`
	Use                    string         `json:"use" binding:"required"`
	Description            string         `json:"description" binding:"required"`
	ProductType            string         `json:"product_type" binding:"required"`
	ProductCategory        string         `json:"product_category" binding:"required"`
	Dimensions             string         `json:"dimensions"`
	Weight                 string         `json:"weight"`
	Regions                []string       `json:"regions"`
	Countries              []string       `json:"countries"`
	TechnicalDetails       datatypes.JSON `json:"technical_details"`
	MultiVariant           bool           `json:"multi_variant"`
	PreCertifiedComponents bool           `json:"pre_certified_components"`
	UserID                 uint           `json:"user_id" binding:"required"`
}

// ProjectUpdate deliberately has no standard_mapping and no user_id field:
// the mapping document belongs to the mapping workflow and ownership never
// changes hands through an update.
type ProjectUpdate struct {
	Name                   *string         `json:"name"`
	Use                    *string         `json:"use"`
	Description            *string         `json:"description"`
	ProductType            *string         `json:"product_type"`
	ProductCategory        *string         `json:"product_category"`
	Dimensions             *string         `json:"dimensions"`
	Weight                 *string         `json:"weight"`
	Regions                *[]string       `json:"regions"`
	Countries              *[]string       `json:"countries"`
	TechnicalDetails       *datatypes.JSON `json:"technical_details"`
	MultiVariant           *bool           `json:"multi_variant"`
	PreCertifiedComponents *bool           `json:"pre_certified_components"`
}

// MappingLimits caps how much of the standards catalog a mapping prompt may
// embed.
type MappingLimits struct {
	CatalogLimit    int
	CatalogMaxBytes int
}

func CreateProject(db *gorm.DB, req ProjectCreate) (models.Project, error) {
	var owner models.User

	if err := db.First(&owner, req.UserID).Error; err != nil {
		return models.Project{}, err
	}

	project := models.Project{
		Name:                   req.Name,
		Use:                    req.Use,
		Description:            req.Description,
		ProductType:            req.ProductType,
		ProductCategory:        req.ProductCategory,
		Dimensions:             req.Dimensions,
		Weight:                 req.Weight,
		Regions:                models.StringArray(req.Regions),
		Countries:              models.StringArray(req.Countries),
		TechnicalDetails:       req.TechnicalDetails,
		MultiVariant:           req.MultiVariant,
		PreCertifiedComponents: req.PreCertifiedComponents,
		UserID:                 req.UserID,
	}

	if err := db.Create(&project).Error; err != nil {
		return models.Project{}, fmt.Errorf("failed to create project: %w", err)
	}

	return project, nil
}

func GetProject(db *gorm.DB, id uint) (models.Project, error) {
	var project models.Project

	if err := db.First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	return project, nil
}

func ListProjects(db *gorm.DB, page, pageSize int) ([]models.Project, int64, error) {
	var total int64

	if err := db.Model(&models.Project{}).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count projects: %w", err)
	}

	var projects []models.Project

	if err := db.Order("id").Limit(pageSize).Offset(page * pageSize).Find(&projects).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	return projects, total, nil
}

func UpdateProject(db *gorm.DB, id uint, req ProjectUpdate) (models.Project, error) {
	var project models.Project

	if err := db.First(&project, id).Error; err != nil {
		return models.Project{}, err
	}

	applyProjectUpdate(&project, req)

	if err := db.Omit(clause.Associations).Save(&project).Error; err != nil {
		return models.Project{}, fmt.Errorf("failed to update project: %w", err)
	}

	return project, nil
}

func DeleteProject(db *gorm.DB, id uint) error {
	var project models.Project

	if err := db.First(&project, id).Error; err != nil {
		return err
	}

	// Memberships and invitations go with the project through the declared
	// foreign-key constraints.
	if err := db.Delete(&project).Error; err != nil {
		return fmt.Errorf("failed to delete project: %w", err)
	}

	return nil
}

// MapProjectStandards recomputes the standard-mapping document for a project
// and overwrites the stored one in a single commit. Each call embeds the
// current approved catalog in the prompt and fully recomputes; concurrent
// calls race and the last commit wins.
func MapProjectStandards(ctx context.Context, db *gorm.DB, client inference.Client, limits MappingLimits, projectID uint) (types.StandardMapping, error) {
	var project models.Project

	if err := db.First(&project, projectID).Error; err != nil {
		return types.StandardMapping{}, err
	}

	catalog, err := approvedCatalog(db, limits.CatalogLimit)

	if err != nil {
		return types.StandardMapping{}, err
	}

	prompt, err := buildMappingPrompt(project, catalog, limits.CatalogMaxBytes)

	if err != nil {
		return types.StandardMapping{}, err
	}

	var mapping types.StandardMapping

	content, err := client.CompleteStructured(ctx, prompt, "standard_mapping", &mapping)

	if err != nil {
		return types.StandardMapping{}, fmt.Errorf("%w: %v", ErrInference, err)
	}

	if err := db.Model(&project).Update("standard_mapping", datatypes.JSON(content)).Error; err != nil {
		return types.StandardMapping{}, fmt.Errorf("failed to save standard mapping: %w", err)
	}

	return mapping, nil
}

func applyProjectUpdate(project *models.Project, req ProjectUpdate) {
	if req.Name != nil {
		project.Name = *req.Name
	}

	if req.Use != nil {
		project.Use = *req.Use
	}

	if req.Description != nil {
		project.Description = *req.Description
	}

	if req.ProductType != nil {
		project.ProductType = *req.ProductType
	}

	if req.ProductCategory != nil {
		project.ProductCategory = *req.ProductCategory
	}

	if req.Dimensions != nil {
		project.Dimensions = *req.Dimensions
	}

	if req.Weight != nil {
		project.Weight = *req.Weight
	}

	if req.Regions != nil {
		project.Regions = models.StringArray(*req.Regions)
	}

	if req.Countries != nil {
		project.Countries = models.StringArray(*req.Countries)
	}

	if req.TechnicalDetails != nil {
		project.TechnicalDetails = *req.TechnicalDetails
	}

	if req.MultiVariant != nil {
		project.MultiVariant = *req.MultiVariant
	}

	if req.PreCertifiedComponents != nil {
		project.PreCertifiedComponents = *req.PreCertifiedComponents
	}
}

// approvedCatalog projects the approved standards down to the fields the
// mapping prompt embeds, newest first, capped at limit.
func approvedCatalog(db *gorm.DB, limit int) ([]types.CatalogStandard, error) {
	query := db.Where("approval_status = ?", models.ApprovalStatusApproved).Order("id DESC")

	if limit > 0 {
		query = query.Limit(limit)
	}

	var standards []models.Standard

	if err := query.Find(&standards).Error; err != nil {
		return nil, fmt.Errorf("failed to load standards catalog: %w", err)
	}

	catalog := make([]types.CatalogStandard, 0, len(standards))

	for _, standard := range standards {
		catalog = append(catalog, types.CatalogStandard{
			Name:        standard.Name,
			Description: standard.Description,
			Regions:     standard.Regions,
		})
	}

	return catalog, nil
}

// buildMappingPrompt renders the mapping instruction embedding the full
// project profile, its technical-details document and the serialized catalog,
// plus the mandatory instruction to also recommend standards outside the
// catalog.
func buildMappingPrompt(project models.Project, catalog []types.CatalogStandard, maxBytes int) (string, error) {
	serialized, err := serializeCatalog(catalog, maxBytes)

	if err != nil {
		return "", err
	}

	technicalDetails := "{}"

	if len(project.TechnicalDetails) > 0 {
		technicalDetails = string(project.TechnicalDetails)
	}

	var b strings.Builder

	b.WriteString("Identify the compliance standards that apply to the following product before it can be launched.\n\n")
	fmt.Fprintf(&b, "Product name: %s\n", project.Name)
	fmt.Fprintf(&b, "Use: %s\n", project.Use)
	fmt.Fprintf(&b, "Description: %s\n", project.Description)
	fmt.Fprintf(&b, "Product type: %s\n", project.ProductType)
	fmt.Fprintf(&b, "Product category: %s\n", project.ProductCategory)
	fmt.Fprintf(&b, "Dimensions: %s\n", project.Dimensions)
	fmt.Fprintf(&b, "Weight: %s\n", project.Weight)
	fmt.Fprintf(&b, "Regions: %s\n", strings.Join(project.Regions, ", "))
	fmt.Fprintf(&b, "Countries: %s\n", strings.Join(project.Countries, ", "))
	fmt.Fprintf(&b, "Multiple variants: %t\n", project.MultiVariant)
	fmt.Fprintf(&b, "Pre-certified components: %t\n", project.PreCertifiedComponents)
	fmt.Fprintf(&b, "Technical details: %s\n\n", technicalDetails)
	fmt.Fprintf(&b, "Known standards repository:\n%s\n\n", serialized)
	b.WriteString("Map the product against the repository, marking matched entries with in_repo true. ")
	b.WriteString("You must also recommend relevant standards that are not in the repository, marked with in_repo false.")

	return b.String(), nil
}

// serializeCatalog drops entries from the tail until the serialization fits
// the byte budget, so the newest standards survive truncation.
func serializeCatalog(catalog []types.CatalogStandard, maxBytes int) (string, error) {
	serialized, err := json.Marshal(catalog)

	if err != nil {
		return "", fmt.Errorf("failed to serialize standards catalog: %w", err)
	}

	for maxBytes > 0 && len(serialized) > maxBytes && len(catalog) > 0 {
		catalog = catalog[:len(catalog)-1]

		serialized, err = json.Marshal(catalog)

		if err != nil {
			return "", fmt.Errorf("failed to serialize standards catalog: %w", err)
		}
	}

	return string(serialized), nil
}
