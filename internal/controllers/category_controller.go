package controllers

import (
	"errors"
	"net/http"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// CategoryController handles HTTP requests related to categories
type CategoryController struct {
	service services.CategoryService
}

// NewCategoryController creates a new instance of CategoryController
func NewCategoryController(service services.CategoryService) *CategoryController {
	return &CategoryController{service: service}
}

type categoryRequest struct {
	Name string `json:"name" form:"name" binding:"required,max=255"`
}

// GetAllCategories godoc
// @Summary List categories
// @Description Get all categories with the id and title of their recipes
// @Tags categories
// @Produce json
// @Success 200 {object} models.Response{data=[]models.Category}
// @Failure 500 {object} models.APIError
// @Router /api/v1/categories [get]
func (cc *CategoryController) GetAllCategories(c *gin.Context) {
	categories, err := cc.service.GetAllCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewResponse(categories))
}

// GetCategoryByID godoc
// @Summary Get category by ID
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Response{data=models.Category}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Router /api/v1/categories/{id} [get]
func (cc *CategoryController) GetCategoryByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}

	category, err := cc.service.GetCategoryByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewResponse(category))
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Param category body object{name=string} true "Category"
// @Success 201 {object} models.Response{data=models.Category}
// @Failure 400 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/categories [post]
func (cc *CategoryController) CreateCategory(c *gin.Context) {
	req, ok := bindCategoryRequest(c)
	if !ok {
		return
	}

	category, err := cc.service.CreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewResponse(category))
}

// UpdateCategory godoc
// @Summary Rename a category
// @Tags categories
// @Accept json
// @Produce json
// @Param id path int true "Category ID"
// @Param category body object{name=string} true "Category"
// @Success 200 {object} models.Response{data=models.Category}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 422 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/categories/{id} [put]
func (cc *CategoryController) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}
	req, ok := bindCategoryRequest(c)
	if !ok {
		return
	}

	category, err := cc.service.UpdateCategory(c.Request.Context(), id, req.Name)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewResponse(category, "Category updated successfully"))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Delete a category. Categories that still have recipes cannot be deleted.
// @Tags categories
// @Produce json
// @Param id path int true "Category ID"
// @Success 200 {object} models.Response{data=models.Category}
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Failure 409 {object} models.APIError
// @Security BearerAuth
// @Router /api/v1/categories/{id} [delete]
func (cc *CategoryController) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}

	category, err := cc.service.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewResponse(category, "Category deleted successfully"))
}

func bindCategoryRequest(c *gin.Context) (categoryRequest, bool) {
	var req categoryRequest
	if err := c.ShouldBind(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) {
			respondError(c, bindingValidationError(fieldErrs))
			return categoryRequest{}, false
		}
		respondError(c, errInvalidBody)
		return categoryRequest{}, false
	}
	return req, true
}
