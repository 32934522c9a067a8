package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/pliro-dev/pliro/db"
	"github.com/pliro-dev/pliro/internal/cache"
	"github.com/pliro-dev/pliro/internal/config"
	"github.com/pliro-dev/pliro/internal/handlers"
	"github.com/pliro-dev/pliro/internal/inference"
	"github.com/pliro-dev/pliro/internal/models"
	"github.com/pliro-dev/pliro/internal/router"
	"github.com/pliro-dev/pliro/internal/storage"
)

// fakeStorage stands in for the Spaces client behind the storage seam.
type fakeStorage struct {
	uploads   []string
	deleted   []string
	uploadErr error
	deleteErr error
}

func (f *fakeStorage) Upload(ctx context.Context, reader io.Reader, size int64, filename string, contentType string) (string, error) {
	if f.uploadErr != nil {
		return "", f.uploadErr
	}

	locator := fmt.Sprintf("https://nyc3.digitaloceanspaces.com/standards-storage/standards/blob-%d-%s", len(f.uploads), filename)
	f.uploads = append(f.uploads, locator)

	return locator, nil
}

func (f *fakeStorage) Delete(ctx context.Context, filePath string) error {
	f.deleted = append(f.deleted, filePath)
	return f.deleteErr
}

func (f *fakeStorage) PresignedURL(ctx context.Context, filePath string, expiry time.Duration) (string, error) {
	return filePath + "?signed", nil
}

// fakeInference returns a canned structured payload and captures every
// prompt. With failFrom set it fails from that 1-based call on.
type fakeInference struct {
	payload  string
	err      error
	failFrom int
	prompts  []string
	schemas  []string
}

func (f *fakeInference) CompleteStructured(ctx context.Context, prompt string, schemaName string, target any) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.schemas = append(f.schemas, schemaName)

	if f.err != nil && (f.failFrom == 0 || len(f.prompts) >= f.failFrom) {
		return "", f.err
	}

	if err := json.Unmarshal([]byte(f.payload), target); err != nil {
		return "", err
	}

	return f.payload, nil
}

// setupTest wires a full router against an in-memory database, a fresh
// in-process cache and fake storage and inference clients. Rate limiting is
// disabled so request-heavy tests never trip it.
func setupTest(t *testing.T) (*gin.Engine, *fakeStorage, *fakeInference) {
	t.Helper()

	gin.SetMode(gin.TestMode)

	gormDB, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	err = gormDB.AutoMigrate(
		&models.User{},
		&models.Project{},
		&models.Standard{},
		&models.Revision{},
		&models.Membership{},
		&models.Invitation{},
	)
	if err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	db.DB = gormDB
	cache.Default = cache.NewMemoryStore(cache.DefaultTTL)

	store := &fakeStorage{}
	storage.Default = store

	client := &fakeInference{}
	inference.Default = client

	cfg := config.Default()
	cfg.RateLimitHourly = 0
	cfg.RateLimitDaily = 0
	handlers.Init(cfg)

	return router.NewRouter(cfg), store, client
}

func doJSON(t *testing.T, engine *gin.Engine, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader

	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		body = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func doUpload(t *testing.T, engine *gin.Engine, path, field string, filenames ...string) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for _, filename := range filenames {
		part, err := writer.CreateFormFile(field, filename)
		if err != nil {
			t.Fatalf("Failed to build multipart form: %v", err)
		}
		if _, err := part.Write([]byte("%PDF-1.4 test document")); err != nil {
			t.Fatalf("Failed to write multipart part: %v", err)
		}
	}

	if err := writer.Close(); err != nil {
		t.Fatalf("Failed to close multipart form: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var body map[string]any

	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response %q: %v", w.Body.String(), err)
	}

	return body
}

func seedUser(t *testing.T, email string) models.User {
	t.Helper()

	user := models.User{Name: "Test User", Email: email, PasswordHash: "x"}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("Failed to seed user: %v", err)
	}

	return user
}

func seedStandard(t *testing.T, name, approvalStatus, filePath string) models.Standard {
	t.Helper()

	standard := models.Standard{Name: name, ApprovalStatus: approvalStatus, FilePath: filePath}
	if err := db.DB.Create(&standard).Error; err != nil {
		t.Fatalf("Failed to seed standard: %v", err)
	}

	return standard
}

func seedProject(t *testing.T, userID uint) models.Project {
	t.Helper()

	project := models.Project{
		Name:            "Smart Speaker",
		Use:             "Home audio",
		Description:     "Voice-controlled speaker",
		ProductType:     "Consumer electronics",
		ProductCategory: "Audio",
		UserID:          userID,
	}
	if err := db.DB.Create(&project).Error; err != nil {
		t.Fatalf("Failed to seed project: %v", err)
	}

	return project
}
