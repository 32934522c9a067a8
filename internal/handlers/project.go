package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/pliro-dev/pliro/db"
	"github.com/pliro-dev/pliro/internal/cache"
	"github.com/pliro-dev/pliro/internal/inference"
	"github.com/pliro-dev/pliro/internal/services"
	"github.com/pliro-dev/pliro/internal/types"
	"github.com/pliro-dev/pliro/internal/utils"
)

func CreateProject(ctx *gin.Context) {
	var req services.ProjectCreate

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := services.CreateProject(db.DB, req)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		} else {
			log.Printf("Failed to create project: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create project"})
		}
		return
	}

	cache.InvalidateProjectsList(ctx.Request.Context())

	ctx.JSON(http.StatusCreated, types.NewProjectResponse(project))
}

func ListProjects(ctx *gin.Context) {
	page, pageSize := utils.GetPagination(ctx)

	key := cache.ProjectsListKey(page, pageSize)

	if body, ok := cache.GetResponse(ctx.Request.Context(), key); ok {
		ctx.Data(http.StatusOK, jsonContentType, body)
		return
	}

	projects, total, err := services.ListProjects(db.DB, page, pageSize)

	if err != nil {
		log.Printf("Failed to list projects: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	items := make([]types.ProjectResponse, 0, len(projects))

	for _, project := range projects {
		items = append(items, types.NewProjectResponse(project))
	}

	body, err := json.Marshal(types.ProjectPage{
		Items: items,
		Total: total,
		Page:  page,
		Size:  pageSize,
	})

	if err != nil {
		log.Printf("Failed to marshal projects page: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve projects"})
		return
	}

	cache.SetResponse(ctx.Request.Context(), key, body)
	ctx.Data(http.StatusOK, jsonContentType, body)
}

func GetProject(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	key := cache.ProjectDetailKey(id)

	if body, ok := cache.GetResponse(ctx.Request.Context(), key); ok {
		ctx.Data(http.StatusOK, jsonContentType, body)
		return
	}

	project, err := services.GetProject(db.DB, id)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("Failed to retrieve project: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		}
		return
	}

	body, err := json.Marshal(types.NewProjectResponse(project))

	if err != nil {
		log.Printf("Failed to marshal project: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve project"})
		return
	}

	cache.SetResponse(ctx.Request.Context(), key, body)
	ctx.Data(http.StatusOK, jsonContentType, body)
}

func UpdateProject(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var req services.ProjectUpdate

	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	project, err := services.UpdateProject(db.DB, id, req)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("Failed to update project: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update project"})
		}
		return
	}

	cache.InvalidateProjectsList(ctx.Request.Context())
	cache.InvalidateProjectDetail(ctx.Request.Context(), id)

	ctx.JSON(http.StatusOK, types.NewProjectResponse(project))
}

func DeleteProject(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := services.DeleteProject(db.DB, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("Failed to delete project: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete project"})
		}
		return
	}

	cache.InvalidateProjectsList(ctx.Request.Context())
	cache.InvalidateProjectDetail(ctx.Request.Context(), id)

	ctx.Status(http.StatusNoContent)
}

// MapProjectStandards recomputes and overwrites the project's
// standard-mapping document and returns it.
func MapProjectStandards(ctx *gin.Context) {
	id, err := utils.GetIDParam(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limits := services.MappingLimits{
		CatalogLimit:    cfg.MappingCatalogLimit,
		CatalogMaxBytes: cfg.MappingCatalogMaxBytes,
	}

	mapping, err := services.MapProjectStandards(ctx.Request.Context(), db.DB, inference.Default, limits, id)

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		} else {
			log.Printf("Failed to map standards for project %d: %v", id, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to map standards"})
		}
		return
	}

	cache.InvalidateProjectsList(ctx.Request.Context())
	cache.InvalidateProjectDetail(ctx.Request.Context(), id)

	ctx.JSON(http.StatusOK, mapping)
}
