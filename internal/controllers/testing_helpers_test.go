package controllers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/franciscosanchezn/gin-recipe-api/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testImagePrefix = "http://localhost:8080/api/v1/recipes/images"

// pngBytes is a 1x1 transparent PNG
var pngBytes, _ = base64.StdEncoding.DecodeString(
	"iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII=")

type testServer struct {
	router *gin.Engine
	db     *gorm.DB
	store  *storage.MemoryStore
}

func setupTestServer(t *testing.T) *testServer {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.Category{}, &models.Recipe{}))

	store := storage.NewMemoryStore()
	images := services.NewImageService(store, testImagePrefix, services.DefaultMaxImageSize)
	recipeController := NewRecipeController(services.NewRecipeService(db, images), images, services.DefaultMaxImageSize)
	categoryController := NewCategoryController(services.NewCategoryService(db))

	router := gin.New()
	v1 := router.Group("/api/v1")
	{
		v1.GET("/recipes", recipeController.GetAllRecipes)
		v1.GET("/recipes/:id", recipeController.GetRecipeByID)
		v1.GET("/recipes/images/:filename", recipeController.GetRecipeImage)
		v1.POST("/recipes", recipeController.CreateRecipe)
		v1.PUT("/recipes/:id", recipeController.UpdateRecipe)
		v1.PATCH("/recipes/:id", recipeController.UpdateRecipe)
		v1.DELETE("/recipes/:id", recipeController.DeleteRecipe)

		v1.GET("/categories", categoryController.GetAllCategories)
		v1.GET("/categories/:id", categoryController.GetCategoryByID)
		v1.POST("/categories", categoryController.CreateCategory)
		v1.PUT("/categories/:id", categoryController.UpdateCategory)
		v1.DELETE("/categories/:id", categoryController.DeleteCategory)
	}

	return &testServer{router: router, db: db, store: store}
}

func (s *testServer) createCategory(t *testing.T, name string) models.Category {
	category := models.Category{Name: name}
	require.NoError(t, s.db.Create(&category).Error)
	return category
}

func (s *testServer) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) doJSON(method, path string, body interface{}) *httptest.ResponseRecorder {
	var payload []byte
	switch b := body.(type) {
	case nil:
	case string:
		payload = []byte(b)
	default:
		payload, _ = json.Marshal(b)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	return s.do(req)
}

func (s *testServer) doMultipart(t *testing.T, method, path string, fields map[string]string, image []byte) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if image != nil {
		part, err := writer.CreateFormFile("image", "dish.png")
		require.NoError(t, err)
		_, err = part.Write(image)
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return s.do(req)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body), w.Body.String())
	return body
}
