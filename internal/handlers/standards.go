package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pliro-dev/pliro/db"
	"github.com/pliro-dev/pliro/internal/cache"
	"github.com/pliro-dev/pliro/internal/inference"
	"github.com/pliro-dev/pliro/internal/models"
	"github.com/pliro-dev/pliro/internal/services"
	"github.com/pliro-dev/pliro/internal/storage"
	"github.com/pliro-dev/pliro/internal/types"
	"github.com/pliro-dev/pliro/internal/utils"
)

type BulkActionRequest struct {
	IDs []uint `json:"ids" binding:"required"`
}

func CreateStandard(ctx *gin.Context) {
	var req services.StandardCreate

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	standard, err := services.CreateStandard(db.DB, req)

	if err != nil {
		if errors.Is(err, services.ErrInvalidDate) {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		log.Printf("Failed to create standard: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create standard"})
		return
	}

	cache.InvalidateStandardsList(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, types.NewStandardResponse(standard))
}

func ListStandards(ctx *gin.Context) {
	page, pageSize := utils.GetPagination(ctx)
	approvalStatus := ctx.Query("approval_status")

	key := cache.StandardsListKey(page, pageSize, approvalStatus)

	if body, ok := cache.GetResponse(ctx.Request.Context(), key); ok {
		ctx.Data(http.StatusOK, jsonContentType, body)
		return
	}

	standards, total, err := services.ListStandards(db.DB, page, pageSize, approvalStatus)

	if err != nil {
		log.Printf("Failed to list standards: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve standards"})
		return
	}

	items := make([]types.StandardResponse, 0, len(standards))

	for _, standard := range standards {
		items = append(items, types.NewStandardResponse(standard))
	}

	body, err := json.Marshal(types.StandardPage{
		Items: items,
		Total: total,
		Page:  page,
		Size:  pageSize,
	})

	if err != nil {
		log.Printf("Failed to marshal standards page: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve standards"})
		return
	}

	cache.SetResponse(ctx.Request.Context(), key, body)
	ctx.Data(http.StatusOK, jsonContentType, body)
}

func GetStandard(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := cache.StandardDetailKey(id)

	if body, ok := cache.GetResponse(ctx.Request.Context(), key); ok {
		ctx.Data(http.StatusOK, jsonContentType, body)
		return
	}

	standard, err := services.GetStandard(db.DB, id)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Standard not found"})
		} else {
			log.Printf("Failed to retrieve standard: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve standard"})
		}
		return
	}

	response := types.NewStandardResponse(standard)
	presignStandard(ctx, &response)

	body, err := json.Marshal(response)

	if err != nil {
		log.Printf("Failed to marshal standard: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve standard"})
		return
	}

	cache.SetResponse(ctx.Request.Context(), key, body)
	ctx.Data(http.StatusOK, jsonContentType, body)
}

func UpdateStandard(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req services.StandardUpdate

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	standard, err := services.UpdateStandard(ctx.Request.Context(), db.DB, storage.Default, id, req)

	if err != nil {
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Standard not found"})
		case errors.Is(err, services.ErrInvalidDate):
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			log.Printf("Failed to update standard: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update standard"})
		}
		return
	}

	cache.InvalidateStandardsList(ctx.Request.Context())
	cache.InvalidateStandardDetail(ctx.Request.Context(), id)

	ctx.JSON(http.StatusOK, types.NewStandardResponse(standard))
}

func DeleteStandard(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteStandard(ctx.Request.Context(), db.DB, storage.Default, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Standard not found"})
		} else {
			log.Printf("Failed to delete standard: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete standard"})
		}
		return
	}

	cache.InvalidateStandardsList(ctx.Request.Context())
	cache.InvalidateStandardDetail(ctx.Request.Context(), id)

	ctx.Status(http.StatusNoContent)
}

func ApproveStandard(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	standard, err := services.ApproveStandard(db.DB, id)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Standard not found"})
		} else {
			log.Printf("Failed to approve standard: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to approve standard"})
		}
		return
	}

	cache.InvalidateStandardsList(ctx.Request.Context())
	cache.InvalidateStandardDetail(ctx.Request.Context(), id)

	ctx.JSON(http.StatusOK, types.NewStandardResponse(standard))
}

// RejectStandard removes a standard outright: reject is delete, including the
// stored blob and revisions. There is no way back.
func RejectStandard(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteStandard(ctx.Request.Context(), db.DB, storage.Default, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Standard not found"})
		} else {
			log.Printf("Failed to reject standard: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to reject standard"})
		}
		return
	}

	cache.InvalidateStandardsList(ctx.Request.Context())
	cache.InvalidateStandardDetail(ctx.Request.Context(), id)

	ctx.JSON(http.StatusOK, gin.H{"message": "Standard rejected"})
}

func UploadStandard(ctx *gin.Context) {
	fileHeader, err := ctx.FormFile("file")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "File is required"})
		return
	}

	standard, err := ingestFile(ctx, fileHeader)

	if err != nil {
		log.Printf("Failed to ingest %s: %v", fileHeader.Filename, err)

		if errors.Is(err, services.ErrInference) {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to extract standard details"})
		} else {
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload standard"})
		}
		return
	}

	cache.InvalidateStandardsList(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, types.NewStandardResponse(standard))
}

func BulkUploadStandards(ctx *gin.Context) {
	form, err := ctx.MultipartForm()

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form"})
		return
	}

	files := form.File["files"]

	if len(files) == 0 {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "At least one file is required"})
		return
	}

	response := types.BulkUploadResponse{
		TotalProcessed: len(files),
		Results:        make([]types.BulkUploadResult, 0, len(files)),
	}

	for _, fileHeader := range files {
		standard, err := ingestFile(ctx, fileHeader)

		if err != nil {
			log.Printf("Failed to ingest %s: %v", fileHeader.Filename, err)

			response.Failed++
			response.Results = append(response.Results, types.BulkUploadResult{
				Filename: fileHeader.Filename,
				Status:   types.BulkStatusFailed,
				Error:    err.Error(),
			})
			continue
		}

		response.Successful++
		response.Results = append(response.Results, types.BulkUploadResult{
			Filename: fileHeader.Filename,
			Status:   types.BulkStatusSuccess,
			ID:       standard.ID,
		})
	}

	if response.Successful > 0 {
		cache.InvalidateStandardsList(ctx.Request.Context())
	}

	ctx.JSON(http.StatusOK, response)
}

func BulkApproveStandards(ctx *gin.Context) {
	var req BulkActionRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := types.BulkActionResponse{
		TotalProcessed: len(req.IDs),
		Results:        make([]types.BulkActionResult, 0, len(req.IDs)),
	}

	for _, id := range req.IDs {
		if _, err := services.ApproveStandard(db.DB, id); err != nil {
			message := err.Error()

			if errors.Is(err, gorm.ErrRecordNotFound) {
				message = "Standard not found"
			}

			response.Failed++
			response.Results = append(response.Results, types.BulkActionResult{
				ID:     id,
				Status: types.BulkStatusFailed,
				Error:  message,
			})
			continue
		}

		response.Successful++
		response.Results = append(response.Results, types.BulkActionResult{
			ID:     id,
			Status: types.BulkStatusSuccess,
		})

		cache.InvalidateStandardDetail(ctx.Request.Context(), id)
	}

	if response.Successful > 0 {
		cache.InvalidateStandardsList(ctx.Request.Context())
	}

	ctx.JSON(http.StatusOK, response)
}

func BulkDeleteStandards(ctx *gin.Context) {
	var req BulkActionRequest

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response := types.BulkActionResponse{
		TotalProcessed: len(req.IDs),
		Results:        make([]types.BulkActionResult, 0, len(req.IDs)),
	}

	for _, id := range req.IDs {
		if err := services.DeleteStandard(ctx.Request.Context(), db.DB, storage.Default, id); err != nil {
			message := err.Error()

			if errors.Is(err, gorm.ErrRecordNotFound) {
				message = "Standard not found"
			}

			response.Failed++
			response.Results = append(response.Results, types.BulkActionResult{
				ID:     id,
				Status: types.BulkStatusFailed,
				Error:  message,
			})
			continue
		}

		response.Successful++
		response.Results = append(response.Results, types.BulkActionResult{
			ID:     id,
			Status: types.BulkStatusSuccess,
		})

		cache.InvalidateStandardDetail(ctx.Request.Context(), id)
	}

	if response.Successful > 0 {
		cache.InvalidateStandardsList(ctx.Request.Context())
	}

	ctx.JSON(http.StatusOK, response)
}

func ingestFile(ctx *gin.Context, fileHeader *multipart.FileHeader) (models.Standard, error) {
	file, err := fileHeader.Open()

	if err != nil {
		return models.Standard{}, fmt.Errorf("failed to open upload: %w", err)
	}
	defer file.Close()

	return services.IngestUploadedStandard(ctx.Request.Context(), db.DB, storage.Default, inference.Default, services.FileUpload{
		Filename:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Reader:      file,
	})
}

// presignStandard fills the response's presigned link for stored documents.
// Presign trouble only costs the link, never the response.
func presignStandard(ctx *gin.Context, response *types.StandardResponse) {
	if response.FilePath == "" {
		return
	}

	expiry := time.Duration(cfg.PresignExpiryMinutes) * time.Minute

	presigned, err := storage.Default.PresignedURL(ctx.Request.Context(), response.FilePath, expiry)

	if err != nil {
		log.Printf("Error presigning file %s: %v", response.FilePath, err)
		return
	}

	response.PresignedURL = presigned
}
