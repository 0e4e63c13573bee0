package controllers

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"
)

func init() {
	// report validation failures with the JSON field names clients send
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterTagNameFunc(func(field reflect.StructField) string {
			name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
			if name == "-" {
				return ""
			}
			return name
		})
	}
}

// respondError maps service errors to HTTP responses.
// Unexpected errors are logged in full and reported with a generic message.
func respondError(ctx *gin.Context, err error) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		details := make(map[string]interface{}, len(validation.Fields))
		for field, reason := range validation.Fields {
			details[field] = reason
		}
		ctx.JSON(http.StatusUnprocessableEntity, models.NewAPIError(models.ErrValidationFailed, "The given data was invalid", details))
	case errors.Is(err, errInvalidBody):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid request body"))
	case errors.Is(err, services.ErrInvalidIngredients):
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidIngredients, "invalid ingredients format"))
	case errors.Is(err, services.ErrRecipeNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrRecipeNotFound, "Recipe not found"))
	case errors.Is(err, services.ErrCategoryNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrCategoryNotFound, "Category not found"))
	case errors.Is(err, services.ErrImageNotFound):
		ctx.JSON(http.StatusNotFound, models.NewAPIError(models.ErrImageNotFound, "Image not found"))
	case errors.Is(err, services.ErrCategoryInUse):
		ctx.JSON(http.StatusConflict, models.NewAPIError(models.ErrCategoryHasRecipes, "Category still has recipes and cannot be deleted"))
	default:
		log.WithError(err).WithFields(log.Fields{
			"request_id": ctx.GetString("requestID"),
			"method":     ctx.Request.Method,
			"path":       ctx.Request.URL.Path,
		}).Error("Request failed")
		ctx.JSON(http.StatusInternalServerError, models.NewAPIError(models.ErrInternalServer, "An internal error occurred"))
	}
}

// bindingValidationError converts validator failures into a ValidationError
func bindingValidationError(errs validator.ValidationErrors) *services.ValidationError {
	validation := &services.ValidationError{}
	for _, fe := range errs {
		validation.Add(fe.Field(), describeFieldError(fe))
	}
	return validation
}

func describeFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "the " + fe.Field() + " field is required"
	case "gt":
		return "the " + fe.Field() + " field must be greater than " + fe.Param()
	case "max":
		return "the " + fe.Field() + " field may not be greater than " + fe.Param() + " characters"
	default:
		return "the " + fe.Field() + " field is invalid"
	}
}

// parseIDParam reads a positive numeric ID from the named path parameter
func parseIDParam(ctx *gin.Context, name, resource string) (uint, bool) {
	raw, exists := ctx.Params.Get(name)
	if !exists {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+resource+" ID"))
		return 0, false
	}

	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		ctx.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "Invalid "+resource+" ID format"))
		return 0, false
	}
	return uint(id), true
}
