package services_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pliro-dev/pliro/internal/models"
	"github.com/pliro-dev/pliro/internal/services"
)

const mappingPayload = `{
	"mappings": [
		{"standard_name": "IEC 62368-1", "relevance_score": 0.92, "technical_requirements_matched": ["low voltage"], "reason_for_mapping": "AV product", "in_repo": true},
		{"standard_name": "ISO 9001", "relevance_score": 0.4, "technical_requirements_matched": [], "reason_for_mapping": "Quality management", "in_repo": false}
	],
	"summary": "Two standards apply",
	"confidence_score": 0.88
}`

var wideOpenLimits = services.MappingLimits{CatalogLimit: 500, CatalogMaxBytes: 262144}

func mustCreateUser(t *testing.T, gormDB *gorm.DB, email string) models.User {
	t.Helper()

	user := models.User{Name: "Test User", Email: email, PasswordHash: "x"}
	if err := gormDB.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create user: %v", err)
	}

	return user
}

func mustCreateProject(t *testing.T, gormDB *gorm.DB, userID uint) models.Project {
	t.Helper()

	project, err := services.CreateProject(gormDB, services.ProjectCreate{
		Name:             "Smart Speaker",
		Use:              "Home audio",
		Description:      "Voice-controlled speaker",
		ProductType:      "Consumer electronics",
		ProductCategory:  "Audio",
		Regions:          []string{"EU"},
		Countries:        []string{"Germany"},
		TechnicalDetails: datatypes.JSON(`{"voltage": "230V"}`),
		UserID:           userID,
	})
	if err != nil {
		t.Fatalf("Failed to create project: %v", err)
	}

	return project
}

func approvedCatalogStandard(t *testing.T, gormDB *gorm.DB, name string) models.Standard {
	t.Helper()

	standard, err := services.CreateStandard(gormDB, services.StandardCreate{
		Name:        name,
		Description: "d",
		Regions:     []string{"EU"},
	})
	if err != nil {
		t.Fatalf("Failed to create standard %s: %v", name, err)
	}

	return standard
}

// TestCreateProjectRequiresOwner verifies the owner lookup: an unknown
// user_id aborts the create with a not-found.
func TestCreateProjectRequiresOwner(t *testing.T) {
	gormDB := setupTestDB(t)

	_, err := services.CreateProject(gormDB, services.ProjectCreate{
		Name:            "Smart Speaker",
		Use:             "Home audio",
		Description:     "Voice-controlled speaker",
		ProductType:     "Consumer electronics",
		ProductCategory: "Audio",
		UserID:          999,
	})
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}

	user := mustCreateUser(t, gormDB, "owner@example.com")
	project := mustCreateProject(t, gormDB, user.ID)

	if project.UserID != user.ID {
		t.Errorf("Expected owner %d, got %d", user.ID, project.UserID)
	}
}

func TestListProjectsPagination(t *testing.T) {
	gormDB := setupTestDB(t)
	user := mustCreateUser(t, gormDB, "owner@example.com")

	for i := 0; i < 3; i++ {
		mustCreateProject(t, gormDB, user.ID)
	}

	projects, total, err := services.ListProjects(gormDB, 0, 2)
	if err != nil {
		t.Fatalf("Failed to list projects: %v", err)
	}
	if total != 3 || len(projects) != 2 {
		t.Errorf("Expected 2 of 3 projects, got %d of %d", len(projects), total)
	}

	projects, total, err = services.ListProjects(gormDB, 1, 2)
	if err != nil {
		t.Fatalf("Failed to list projects: %v", err)
	}
	if total != 3 || len(projects) != 1 {
		t.Errorf("Expected 1 project on the last page, got %d of %d", len(projects), total)
	}
}

// TestUpdateProjectPreservesMappingAndOwner makes sure a client update can
// never touch the stored mapping document or reassign ownership.
func TestUpdateProjectPreservesMappingAndOwner(t *testing.T) {
	gormDB := setupTestDB(t)
	user := mustCreateUser(t, gormDB, "owner@example.com")
	project := mustCreateProject(t, gormDB, user.ID)

	stored := `{"summary": "existing mapping"}`
	if err := gormDB.Model(&project).Update("standard_mapping", datatypes.JSON(stored)).Error; err != nil {
		t.Fatalf("Failed to seed mapping: %v", err)
	}

	updated, err := services.UpdateProject(gormDB, project.ID, services.ProjectUpdate{
		Name:   strPtr("Smart Speaker v2"),
		Weight: strPtr("1.2kg"),
	})
	if err != nil {
		t.Fatalf("Failed to update project: %v", err)
	}

	if updated.Name != "Smart Speaker v2" {
		t.Errorf("Expected renamed project, got %q", updated.Name)
	}
	if updated.UserID != user.ID {
		t.Errorf("Expected owner untouched, got %d", updated.UserID)
	}

	var reloaded models.Project
	if err := gormDB.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("Failed to reload project: %v", err)
	}
	if string(reloaded.StandardMapping) != stored {
		t.Errorf("Expected mapping untouched, got %s", reloaded.StandardMapping)
	}
}

func TestDeleteProject(t *testing.T) {
	gormDB := setupTestDB(t)
	user := mustCreateUser(t, gormDB, "owner@example.com")
	project := mustCreateProject(t, gormDB, user.ID)

	if err := services.DeleteProject(gormDB, project.ID); err != nil {
		t.Fatalf("Failed to delete project: %v", err)
	}

	if _, err := services.GetProject(gormDB, project.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound after delete, got %v", err)
	}

	if err := services.DeleteProject(gormDB, project.ID); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound for a second delete, got %v", err)
	}
}

// TestMapProjectStandardsPersistsMapping covers the core workflow: the prompt
// embeds the project profile and the approved catalog, and the raw structured
// reply lands verbatim on the project.
func TestMapProjectStandardsPersistsMapping(t *testing.T) {
	gormDB := setupTestDB(t)
	user := mustCreateUser(t, gormDB, "owner@example.com")
	project := mustCreateProject(t, gormDB, user.ID)

	approvedCatalogStandard(t, gormDB, "IEC 62368-1")
	approvedCatalogStandard(t, gormDB, "EN 301 489")
	mustCreateStandard(t, gormDB, "PendingOnly", models.ApprovalStatusPending)

	client := &fakeInference{payload: mappingPayload}

	mapping, err := services.MapProjectStandards(context.Background(), gormDB, client, wideOpenLimits, project.ID)
	if err != nil {
		t.Fatalf("Failed to map standards: %v", err)
	}

	if mapping.Summary != "Two standards apply" {
		t.Errorf("Expected parsed summary, got %q", mapping.Summary)
	}
	if len(mapping.Mappings) != 2 {
		t.Fatalf("Expected 2 mapping entries, got %d", len(mapping.Mappings))
	}
	if mapping.Mappings[0].InRepo != true || mapping.Mappings[1].InRepo != false {
		t.Error("Expected in_repo flags preserved from the reply")
	}

	var reloaded models.Project
	if err := gormDB.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("Failed to reload project: %v", err)
	}
	if string(reloaded.StandardMapping) != mappingPayload {
		t.Errorf("Expected the raw reply persisted verbatim, got %s", reloaded.StandardMapping)
	}

	if len(client.prompts) != 1 {
		t.Fatalf("Expected one inference call, got %d", len(client.prompts))
	}

	prompt := client.prompts[0]

	for _, want := range []string{"Smart Speaker", "Known standards repository:", "IEC 62368-1", "EN 301 489", "in_repo false", `"voltage": "230V"`} {
		if !strings.Contains(prompt, want) {
			t.Errorf("Expected prompt to contain %q", want)
		}
	}
	if strings.Contains(prompt, "PendingOnly") {
		t.Error("Expected pending standards excluded from the catalog")
	}
	if client.schemas[0] != "standard_mapping" {
		t.Errorf("Expected schema standard_mapping, got %q", client.schemas[0])
	}
}

// TestMapProjectStandardsOverwrites verifies that re-running the workflow
// replaces the stored document, last commit wins.
func TestMapProjectStandardsOverwrites(t *testing.T) {
	gormDB := setupTestDB(t)
	user := mustCreateUser(t, gormDB, "owner@example.com")
	project := mustCreateProject(t, gormDB, user.ID)

	first := &fakeInference{payload: mappingPayload}
	if _, err := services.MapProjectStandards(context.Background(), gormDB, first, wideOpenLimits, project.ID); err != nil {
		t.Fatalf("Failed to map standards: %v", err)
	}

	rerun := `{"mappings": [], "summary": "Nothing applies", "confidence_score": 0.1}`

	second := &fakeInference{payload: rerun}
	if _, err := services.MapProjectStandards(context.Background(), gormDB, second, wideOpenLimits, project.ID); err != nil {
		t.Fatalf("Failed to re-map standards: %v", err)
	}

	var reloaded models.Project
	if err := gormDB.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("Failed to reload project: %v", err)
	}
	if string(reloaded.StandardMapping) != rerun {
		t.Errorf("Expected the rerun to overwrite the mapping, got %s", reloaded.StandardMapping)
	}
}

// TestMapProjectStandardsInferenceFailure checks that a failed call leaves
// the previously stored mapping untouched.
func TestMapProjectStandardsInferenceFailure(t *testing.T) {
	gormDB := setupTestDB(t)
	user := mustCreateUser(t, gormDB, "owner@example.com")
	project := mustCreateProject(t, gormDB, user.ID)

	if _, err := services.MapProjectStandards(context.Background(), gormDB, &fakeInference{payload: mappingPayload}, wideOpenLimits, project.ID); err != nil {
		t.Fatalf("Failed to map standards: %v", err)
	}

	failing := &fakeInference{err: errors.New("model offline")}

	_, err := services.MapProjectStandards(context.Background(), gormDB, failing, wideOpenLimits, project.ID)
	if !errors.Is(err, services.ErrInference) {
		t.Fatalf("Expected ErrInference, got %v", err)
	}

	var reloaded models.Project
	if err := gormDB.First(&reloaded, project.ID).Error; err != nil {
		t.Fatalf("Failed to reload project: %v", err)
	}
	if string(reloaded.StandardMapping) != mappingPayload {
		t.Errorf("Expected the previous mapping untouched, got %s", reloaded.StandardMapping)
	}
}

func TestMapProjectStandardsMissingProject(t *testing.T) {
	gormDB := setupTestDB(t)
	client := &fakeInference{payload: mappingPayload}

	_, err := services.MapProjectStandards(context.Background(), gormDB, client, wideOpenLimits, 999)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}
	if len(client.prompts) != 0 {
		t.Errorf("Expected no inference calls, got %d", len(client.prompts))
	}
}

// TestMapProjectStandardsCatalogLimits covers both caps: the newest-first row
// limit and the byte budget that drops catalog entries from the tail.
func TestMapProjectStandardsCatalogLimits(t *testing.T) {
	gormDB := setupTestDB(t)
	user := mustCreateUser(t, gormDB, "owner@example.com")
	project := mustCreateProject(t, gormDB, user.ID)

	approvedCatalogStandard(t, gormDB, "Alpha")
	approvedCatalogStandard(t, gormDB, "Bravo")
	approvedCatalogStandard(t, gormDB, "Charlie")

	client := &fakeInference{payload: mappingPayload}
	limits := services.MappingLimits{CatalogLimit: 2, CatalogMaxBytes: 262144}

	if _, err := services.MapProjectStandards(context.Background(), gormDB, client, limits, project.ID); err != nil {
		t.Fatalf("Failed to map standards: %v", err)
	}

	prompt := client.prompts[0]

	if strings.Contains(prompt, "Alpha") {
		t.Error("Expected the oldest standard cut by the row limit")
	}
	if !strings.Contains(prompt, "Bravo") || !strings.Contains(prompt, "Charlie") {
		t.Error("Expected the two newest standards in the catalog")
	}
	if strings.Index(prompt, "Charlie") > strings.Index(prompt, "Bravo") {
		t.Error("Expected newest-first catalog order")
	}

	squeezed := &fakeInference{payload: mappingPayload}
	tight := services.MappingLimits{CatalogLimit: 500, CatalogMaxBytes: 60}

	if _, err := services.MapProjectStandards(context.Background(), gormDB, squeezed, tight, project.ID); err != nil {
		t.Fatalf("Failed to map standards: %v", err)
	}

	prompt = squeezed.prompts[0]

	if !strings.Contains(prompt, "Charlie") {
		t.Error("Expected the newest standard to survive the byte budget")
	}
	if strings.Contains(prompt, "Bravo") || strings.Contains(prompt, "Alpha") {
		t.Errorf("Expected older standards dropped by the byte budget")
	}
}

func TestGetProjectNotFound(t *testing.T) {
	gormDB := setupTestDB(t)

	if _, err := services.GetProject(gormDB, 42); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("Expected ErrRecordNotFound, got %v", err)
	}
}

func TestProjectsAreOrderedByID(t *testing.T) {
	gormDB := setupTestDB(t)
	user := mustCreateUser(t, gormDB, "owner@example.com")

	var ids []uint
	for i := 0; i < 3; i++ {
		ids = append(ids, mustCreateProject(t, gormDB, user.ID).ID)
	}

	projects, _, err := services.ListProjects(gormDB, 0, 100)
	if err != nil {
		t.Fatalf("Failed to list projects: %v", err)
	}

	if len(projects) != len(ids) {
		t.Fatalf("Expected %d projects, got %d", len(ids), len(projects))
	}
	for i, project := range projects {
		if project.ID != ids[i] {
			t.Errorf("Expected project %d at position %d, got %d", ids[i], i, project.ID)
		}
	}
}
