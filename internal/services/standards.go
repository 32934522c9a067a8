package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pliro-dev/pliro/internal/inference"
	"github.com/pliro-dev/pliro/internal/models"
	"github.com/pliro-dev/pliro/internal/storage"
	"github.com/pliro-dev/pliro/internal/types"
)

// RevisionInput is one entry of a revisions payload. A nil ID marks the entry
// as new; an ID matching an existing revision updates that row in place.
type RevisionInput struct {
	ID                  *uint  `json:"id"`
	RevisionNumber      string `json:"revision_number" binding:"required"`
	RevisionDate        string `json:"revision_date"`
	RevisionDescription string `json:"revision_description"`
}

type StandardCreate struct {
	Name                string          `json:"name" binding:"required"`
	Description         string          `json:"description"`
	IssuingOrganization string          `json:"issuingOrganization"`
	StandardNumber      string          `json:"standardNumber"`
	Version             string          `json:"version"`
	StandardOwner       string          `json:"standardOwner"`
	StandardWebsite     string          `json:"standardWebsite"`
	IssueDate           *string         `json:"issueDate"`
	EffectiveDate       *string         `json:"effectiveDate"`
	Revisions           []RevisionInput `json:"revisions"`
	GeneralCategories   []string        `json:"generalCategories"`
	ITCategories        []string        `json:"itCategories"`
	AdditionalNotes     string          `json:"additionalNotes"`
	Regions             []string        `json:"regions"`
	Countries           []string        `json:"countries"`
	FilePath            string          `json:"file_path"`
	ApprovalStatus      string          `json:"approval_status"`
}

// StandardUpdate carries pointer fields so only the fields a client actually
// sent are written. A nil Revisions leaves the collection untouched; a present
// one replaces it.
type StandardUpdate struct {
	Name                *string          `json:"name"`
	Description         *string          `json:"description"`
	IssuingOrganization *string          `json:"issuingOrganization"`
	StandardNumber      *string          `json:"standardNumber"`
	Version             *string          `json:"version"`
	StandardOwner       *string          `json:"standardOwner"`
	StandardWebsite     *string          `json:"standardWebsite"`
	IssueDate           *string          `json:"issueDate"`
	EffectiveDate       *string          `json:"effectiveDate"`
	Revisions           *[]RevisionInput `json:"revisions"`
	GeneralCategories   *[]string        `json:"generalCategories"`
	ITCategories        *[]string        `json:"itCategories"`
	AdditionalNotes     *string          `json:"additionalNotes"`
	Regions             *[]string        `json:"regions"`
	Countries           *[]string        `json:"countries"`
	FilePath            *string          `json:"file_path"`
	ApprovalStatus      *string          `json:"approval_status"`
}

// FileUpload carries one uploaded file through ingestion.
type FileUpload struct {
	Filename    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

func CreateStandard(db *gorm.DB, req StandardCreate) (models.Standard, error) {
	issueDate, err := parseDate(req.IssueDate)

	if err != nil {
		return models.Standard{}, err
	}

	effectiveDate, err := parseDate(req.EffectiveDate)

	if err != nil {
		return models.Standard{}, err
	}

	approvalStatus := req.ApprovalStatus

	if approvalStatus == "" {
		approvalStatus = models.ApprovalStatusApproved
	}

	standard := models.Standard{
		Name:                req.Name,
		Description:         req.Description,
		IssuingOrganization: req.IssuingOrganization,
		StandardNumber:      req.StandardNumber,
		Version:             req.Version,
		StandardOwner:       req.StandardOwner,
		StandardWebsite:     req.StandardWebsite,
		IssueDate:           issueDate,
		EffectiveDate:       effectiveDate,
		GeneralCategories:   models.StringArray(req.GeneralCategories),
		ITCategories:        models.StringArray(req.ITCategories),
		Regions:             models.StringArray(req.Regions),
		Countries:           models.StringArray(req.Countries),
		AdditionalNotes:     req.AdditionalNotes,
		FilePath:            req.FilePath,
		ApprovalStatus:      approvalStatus,
	}

	for _, revision := range req.Revisions {
		standard.Revisions = append(standard.Revisions, models.Revision{
			RevisionNumber:      revision.RevisionNumber,
			RevisionDate:        revision.RevisionDate,
			RevisionDescription: revision.RevisionDescription,
		})
	}

	if err := db.Create(&standard).Error; err != nil {
		return models.Standard{}, fmt.Errorf("failed to create standard: %w", err)
	}

	return standard, nil
}

func GetStandard(db *gorm.DB, id uint) (models.Standard, error) {
	var standard models.Standard

	if err := db.Preload("Revisions").First(&standard, id).Error; err != nil {
		return models.Standard{}, err
	}

	return standard, nil
}

func ListStandards(db *gorm.DB, page, pageSize int, approvalStatus string) ([]models.Standard, int64, error) {
	var total int64

	countQuery := db.Model(&models.Standard{})

	if approvalStatus != "" {
		countQuery = countQuery.Where("approval_status = ?", approvalStatus)
	}

	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count standards: %w", err)
	}

	listQuery := db.Preload("Revisions").Order("id").Limit(pageSize).Offset(page * pageSize)

	if approvalStatus != "" {
		listQuery = listQuery.Where("approval_status = ?", approvalStatus)
	}

	var standards []models.Standard

	if err := listQuery.Find(&standards).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list standards: %w", err)
	}

	return standards, total, nil
}

// UpdateStandard writes the provided fields and, when a revisions list is
// present, reconciles the owned collection against it inside one transaction.
// Replacing the file locator deletes the old blob best-effort after commit.
func UpdateStandard(ctx context.Context, db *gorm.DB, store storage.Client, id uint, req StandardUpdate) (models.Standard, error) {
	var standard models.Standard

	if err := db.Preload("Revisions").First(&standard, id).Error; err != nil {
		return models.Standard{}, err
	}

	oldFilePath := standard.FilePath

	if err := applyStandardUpdate(&standard, req); err != nil {
		return models.Standard{}, err
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&standard).Error; err != nil {
			return fmt.Errorf("failed to update standard: %w", err)
		}

		if req.Revisions != nil {
			if err := reconcileRevisions(tx, &standard, *req.Revisions); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return models.Standard{}, err
	}

	if oldFilePath != "" && oldFilePath != standard.FilePath {
		if err := store.Delete(ctx, oldFilePath); err != nil {
			log.Printf("Error deleting file %s: %v", oldFilePath, err)
		}
	}

	var updated models.Standard

	if err := db.Preload("Revisions").First(&updated, id).Error; err != nil {
		return models.Standard{}, err
	}

	return updated, nil
}

// DeleteStandard removes the row and its revisions. A standard owning a blob
// triggers exactly one storage delete first; storage trouble is logged and the
// row still goes away.
func DeleteStandard(ctx context.Context, db *gorm.DB, store storage.Client, id uint) error {
	var standard models.Standard

	if err := db.First(&standard, id).Error; err != nil {
		return err
	}

	if standard.FilePath != "" {
		if err := store.Delete(ctx, standard.FilePath); err != nil {
			log.Printf("Error deleting file %s: %v", standard.FilePath, err)
		}
	}

	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("standard_id = ?", id).Delete(&models.Revision{}).Error; err != nil {
			return fmt.Errorf("failed to delete revisions: %w", err)
		}

		if err := tx.Delete(&models.Standard{}, id).Error; err != nil {
			return fmt.Errorf("failed to delete standard: %w", err)
		}

		return nil
	})
}

// ApproveStandard moves a pending standard to approved. Approving an already
// approved standard is a no-op success; there is no path back to pending.
func ApproveStandard(db *gorm.DB, id uint) (models.Standard, error) {
	var standard models.Standard

	if err := db.Preload("Revisions").First(&standard, id).Error; err != nil {
		return models.Standard{}, err
	}

	if standard.ApprovalStatus == models.ApprovalStatusApproved {
		return standard, nil
	}

	if err := db.Model(&standard).Update("approval_status", models.ApprovalStatusApproved).Error; err != nil {
		return models.Standard{}, fmt.Errorf("failed to approve standard: %w", err)
	}

	standard.ApprovalStatus = models.ApprovalStatusApproved

	return standard, nil
}

// IngestUploadedStandard stores the uploaded blob, infers every standard field
// from the filename and persists the result as a pending standard with its
// extracted revisions. Only the filename seeds the inference call; file
// content is not read. When inference or persistence fails nothing survives:
// the just-uploaded blob is removed best-effort and no row is written.
func IngestUploadedStandard(ctx context.Context, db *gorm.DB, store storage.Client, client inference.Client, upload FileUpload) (models.Standard, error) {
	filePath, err := store.Upload(ctx, upload.Reader, upload.Size, upload.Filename, upload.ContentType)

	if err != nil {
		return models.Standard{}, fmt.Errorf("failed to upload file: %w", err)
	}

	var extracted types.ExtractedStandard

	if _, err := client.CompleteStructured(ctx, buildExtractionPrompt(upload.Filename), "standard_extraction", &extracted); err != nil {
		discardBlob(ctx, store, filePath)
		return models.Standard{}, fmt.Errorf("%w: %v", ErrInference, err)
	}

	standard := models.Standard{
		Name:                extracted.Name,
		Description:         extracted.Description,
		IssuingOrganization: extracted.IssuingOrganization,
		StandardNumber:      extracted.StandardNumber,
		Version:             extracted.Version,
		StandardOwner:       extracted.StandardOwner,
		StandardWebsite:     extracted.StandardWebsite,
		IssueDate:           parseDateLenient(extracted.IssueDate),
		EffectiveDate:       parseDateLenient(extracted.EffectiveDate),
		GeneralCategories:   models.StringArray(extracted.GeneralCategories),
		ITCategories:        models.StringArray(extracted.ITCategories),
		Regions:             models.StringArray(extracted.Regions),
		Countries:           models.StringArray(extracted.Countries),
		AdditionalNotes:     extracted.AdditionalNotes,
		FilePath:            filePath,
		ApprovalStatus:      models.ApprovalStatusPending,
	}

	for _, revision := range extracted.Revisions {
		standard.Revisions = append(standard.Revisions, models.Revision{
			RevisionNumber:      revision.RevisionNumber,
			RevisionDate:        revision.RevisionDate,
			RevisionDescription: revision.RevisionDescription,
		})
	}

	if err := db.Create(&standard).Error; err != nil {
		discardBlob(ctx, store, filePath)
		return models.Standard{}, fmt.Errorf("failed to create standard: %w", err)
	}

	return standard, nil
}

func applyStandardUpdate(standard *models.Standard, req StandardUpdate) error {
	if req.Name != nil {
		standard.Name = *req.Name
	}

	if req.Description != nil {
		standard.Description = *req.Description
	}

	if req.IssuingOrganization != nil {
		standard.IssuingOrganization = *req.IssuingOrganization
	}

	if req.StandardNumber != nil {
		standard.StandardNumber = *req.StandardNumber
	}

	if req.Version != nil {
		standard.Version = *req.Version
	}

	if req.StandardOwner != nil {
		standard.StandardOwner = *req.StandardOwner
	}

	if req.StandardWebsite != nil {
		standard.StandardWebsite = *req.StandardWebsite
	}

	if req.IssueDate != nil {
		issueDate, err := parseDate(req.IssueDate)

		if err != nil {
			return err
		}

		standard.IssueDate = issueDate
	}

	if req.EffectiveDate != nil {
		effectiveDate, err := parseDate(req.EffectiveDate)

		if err != nil {
			return err
		}

		standard.EffectiveDate = effectiveDate
	}

	if req.GeneralCategories != nil {
		standard.GeneralCategories = models.StringArray(*req.GeneralCategories)
	}

	if req.ITCategories != nil {
		standard.ITCategories = models.StringArray(*req.ITCategories)
	}

	if req.AdditionalNotes != nil {
		standard.AdditionalNotes = *req.AdditionalNotes
	}

	if req.Regions != nil {
		standard.Regions = models.StringArray(*req.Regions)
	}

	if req.Countries != nil {
		standard.Countries = models.StringArray(*req.Countries)
	}

	if req.FilePath != nil {
		standard.FilePath = *req.FilePath
	}

	if req.ApprovalStatus != nil {
		standard.ApprovalStatus = *req.ApprovalStatus
	}

	return nil
}

// reconcileRevisions applies replace-the-collection semantics: entries with a
// known id update that row in place, entries without one insert fresh rows,
// and existing rows absent from the list are deleted.
func reconcileRevisions(tx *gorm.DB, standard *models.Standard, inputs []RevisionInput) error {
	existing := make(map[uint]models.Revision, len(standard.Revisions))

	for _, revision := range standard.Revisions {
		existing[revision.ID] = revision
	}

	kept := make(map[uint]bool, len(inputs))

	for _, input := range inputs {
		if input.ID != nil {
			if revision, ok := existing[*input.ID]; ok {
				revision.RevisionNumber = input.RevisionNumber
				revision.RevisionDate = input.RevisionDate
				revision.RevisionDescription = input.RevisionDescription

				if err := tx.Omit(clause.Associations).Save(&revision).Error; err != nil {
					return fmt.Errorf("failed to update revision %d: %w", revision.ID, err)
				}

				kept[revision.ID] = true
				continue
			}
		}

		revision := models.Revision{
			StandardID:          standard.ID,
			RevisionNumber:      input.RevisionNumber,
			RevisionDate:        input.RevisionDate,
			RevisionDescription: input.RevisionDescription,
		}

		if err := tx.Create(&revision).Error; err != nil {
			return fmt.Errorf("failed to create revision: %w", err)
		}

		kept[revision.ID] = true
	}

	for id := range existing {
		if !kept[id] {
			if err := tx.Delete(&models.Revision{}, id).Error; err != nil {
				return fmt.Errorf("failed to delete revision %d: %w", id, err)
			}
		}
	}

	return nil
}

// discardBlob removes a blob that never got an owning row.
func discardBlob(ctx context.Context, store storage.Client, filePath string) {
	if err := store.Delete(ctx, filePath); err != nil {
		log.Printf("Error deleting file %s: %v", filePath, err)
	}
}

func buildExtractionPrompt(filename string) string {
	var b strings.Builder

	b.WriteString("Extract the full details of the compliance standard referenced by the following document filename.\n")
	fmt.Fprintf(&b, "Filename: %s\n\n", filename)
	b.WriteString("Fill in every field of the response schema from what the filename implies about the standard, ")
	b.WriteString("including its published revisions. Use YYYY-MM-DD for all dates. ")
	b.WriteString("Leave fields you cannot determine empty.")

	return b.String()
}

// parseDate strictly parses an optional YYYY-MM-DD value from a client
// payload.
func parseDate(value *string) (*time.Time, error) {
	if value == nil || *value == "" {
		return nil, nil
	}

	date, err := time.Parse(types.DateLayout, *value)

	if err != nil {
		return nil, fmt.Errorf("%w: %q is not a %s date", ErrInvalidDate, *value, types.DateLayout)
	}

	return &date, nil
}

// parseDateLenient tolerates whatever the inference backend emitted: anything
// that is not a YYYY-MM-DD date is stored as null.
func parseDateLenient(value string) *time.Time {
	date, err := time.Parse(types.DateLayout, value)

	if err != nil {
		return nil
	}

	return &date
}
