package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
)

// RecipeController handles HTTP requests related to recipes and their images
type RecipeController struct {
	service   services.RecipeService
	images    services.ImageService
	maxUpload int64
}

// NewRecipeController creates a new instance of RecipeController.
// maxUpload bounds how many bytes of an uploaded image are read.
func NewRecipeController(service services.RecipeService, images services.ImageService, maxUpload int64) *RecipeController {
	if maxUpload <= 0 {
		maxUpload = services.DefaultMaxImageSize
	}
	return &RecipeController{service: service, images: images, maxUpload: maxUpload}
}

// CreateRecipeResponse is the body returned when a recipe is created
type CreateRecipeResponse struct {
	Recipe   models.Recipe `json:"recipe"`
	ImageURL *string       `json:"image_url"`
}

// GetAllRecipes godoc
// @Summary List recipes
// @Description Get a page of recipes, newest first, optionally filtered by title
// @Tags recipes
// @Produce json
// @Param search query string false "Filter by title (substring match)"
// @Param page query int false "Page number" default(1)
// @Param per_page query int false "Page size" default(10)
// @Success 200 {object} models.Response{data=models.Page[models.Recipe]}
// @Failure 500 {object} models.APIError
// @Router /api/v1/recipes [get]
func (c *RecipeController) GetAllRecipes(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.Query("page"))
	perPage, _ := strconv.Atoi(ctx.Query("per_page"))

	recipes, err := c.service.GetAllRecipes(ctx.Request.Context(), services.ListRecipesParams{
		Search:  ctx.Query("search"),
		Page:    page,
		PerPage: perPage,
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.NewResponse(recipes))
}

// GetRecipeByID godoc
// @Summary Get recipe by ID
// @Description Get a single recipe with its category
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.Response{data=models.Recipe}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/recipes/{id} [get]
func (c *RecipeController) GetRecipeByID(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "recipe")
	if !ok {
		return
	}

	recipe, err := c.service.GetRecipeByID(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.NewResponse(recipe))
}

// CreateRecipe godoc
// @Summary Create a new recipe
// @Description Create a recipe from a JSON or multipart body. The image is taken from the
// @Description uploaded file, else from image_url (base64 data URI or http(s) URL).
// @Tags recipes
// @Accept json,mpfd
// @Produce json
// @Param title formData string true "Recipe title"
// @Param body formData string true "Instructions"
// @Param category_id formData int true "Category ID"
// @Param ingredients formData string true "Ingredients as bullet text or JSON array"
// @Param image formData file false "Image file (jpeg, png, gif)"
// @Param image_url formData string false "Image data URI or URL"
// @Success 201 {object} CreateRecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes [post]
func (c *RecipeController) CreateRecipe(ctx *gin.Context) {
	req, err := bindRecipeRequest(ctx, c.maxUpload, true)
	if err != nil {
		respondError(ctx, err)
		return
	}

	recipe, err := c.service.CreateRecipe(ctx.Request.Context(), services.RecipeInput{
		Title:       req.Title,
		Body:        req.Body,
		CategoryID:  *req.CategoryID,
		Ingredients: *req.Ingredients,
		Image:       req.imageInput(),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, CreateRecipeResponse{
		Recipe:   recipe,
		ImageURL: c.images.PublicURL(recipe.Image),
	})
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Update a recipe. Title and body are required, other fields are optional.
// @Tags recipes
// @Accept json,mpfd
// @Produce json
// @Param id path int true "Recipe ID"
// @Param title formData string true "Recipe title"
// @Param body formData string true "Instructions"
// @Param category_id formData int false "Category ID"
// @Param ingredients formData string false "Ingredients as bullet text or JSON array"
// @Param image formData file false "Image file (jpeg, png, gif)"
// @Param image_url formData string false "Image data URI or URL"
// @Success 200 {object} models.Response{data=models.Recipe}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [put]
func (c *RecipeController) UpdateRecipe(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "recipe")
	if !ok {
		return
	}

	req, err := bindRecipeRequest(ctx, c.maxUpload, false)
	if err != nil {
		respondError(ctx, err)
		return
	}

	recipe, err := c.service.UpdateRecipe(ctx.Request.Context(), id, services.RecipeUpdate{
		Title:       req.Title,
		Body:        req.Body,
		CategoryID:  req.CategoryID,
		Ingredients: req.Ingredients,
		Image:       req.imageInput(),
	})
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.NewResponse(recipe, "Recipe updated successfully"))
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Description Delete a recipe by its ID and return the deleted row
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} models.Response{data=models.Recipe}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 500 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/recipes/{id} [delete]
func (c *RecipeController) DeleteRecipe(ctx *gin.Context) {
	id, ok := parseIDParam(ctx, "id", "recipe")
	if !ok {
		return
	}

	recipe, err := c.service.DeleteRecipe(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.NewResponse(recipe, "Recipe deleted successfully"))
}

// GetRecipeImage godoc
// @Summary Get a recipe image
// @Description Serve a stored recipe image with a content type sniffed from its bytes
// @Tags recipes
// @Produce image/jpeg,image/png,image/gif
// @Param filename path string true "Image file name"
// @Success 200 {file} binary
// @Failure 404 {object} models.APIError
// @Router /api/v1/recipes/images/{filename} [get]
func (c *RecipeController) GetRecipeImage(ctx *gin.Context) {
	data, contentType, err := c.images.Open(ctx.Request.Context(), ctx.Param("filename"))
	if err != nil {
		respondError(ctx, err)
		return
	}

	ctx.Header("Cache-Control", "public, max-age=86400")
	ctx.Header("X-Content-Type-Options", "nosniff")
	ctx.Data(http.StatusOK, contentType, data)
}
