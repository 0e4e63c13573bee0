package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/franciscosanchezn/gin-recipe-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// errInvalidBody marks request bodies that could not be decoded at all
var errInvalidBody = errors.New("invalid request body")

// recipeRequest holds the decoded fields of a recipe create or update request,
// whether it arrived as JSON or as a multipart/urlencoded form.
type recipeRequest struct {
	Title       string  `json:"title" binding:"required"`
	Body        string  `json:"body" binding:"required"`
	CategoryID  *uint   `json:"category_id" binding:"omitempty,gt=0"`
	Ingredients *string `json:"ingredients"`
	ImageURL    string  `json:"image_url" binding:"omitempty,max=8388608"`

	Upload *services.UploadedFile `json:"-"`
}

// recipeJSON is the wire shape of a JSON recipe body
type recipeJSON struct {
	Title       string          `json:"title"`
	Body        string          `json:"body"`
	CategoryID  json.RawMessage `json:"category_id"`
	Ingredients json.RawMessage `json:"ingredients"`
	ImageURL    string          `json:"image_url"`
}

// bindRecipeRequest decodes the request and validates the fields shared by create and update.
// Create additionally requires category_id and ingredients.
func bindRecipeRequest(ctx *gin.Context, maxUpload int64, create bool) (recipeRequest, error) {
	var (
		req        recipeRequest
		validation = &services.ValidationError{}
		err        error
	)

	switch ctx.ContentType() {
	case binding.MIMEMultipartPOSTForm, binding.MIMEPOSTForm:
		err = req.fromForm(ctx, maxUpload, validation)
	default:
		err = req.fromJSON(ctx, validation)
	}
	if err != nil {
		return recipeRequest{}, err
	}

	if err := binding.Validator.ValidateStruct(&req); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return recipeRequest{}, err
		}
		for field, reason := range bindingValidationError(fieldErrs).Fields {
			validation.Add(field, reason)
		}
	}

	if create {
		if req.CategoryID == nil {
			validation.Add("category_id", "the category_id field is required")
		}
		if req.Ingredients == nil {
			validation.Add("ingredients", "the ingredients field is required")
		}
	}
	if req.Ingredients != nil && *req.Ingredients == "" {
		validation.Add("ingredients", "the ingredients field is required")
	}

	if err := validation.Err(); err != nil {
		return recipeRequest{}, err
	}
	return req, nil
}

func (r *recipeRequest) fromJSON(ctx *gin.Context, validation *services.ValidationError) error {
	var payload recipeJSON
	if err := ctx.ShouldBindJSON(&payload); err != nil {
		return errInvalidBody
	}

	r.Title = payload.Title
	r.Body = payload.Body
	r.ImageURL = payload.ImageURL
	r.CategoryID = parseCategoryID(rawScalar(payload.CategoryID), validation)

	if raw := strings.TrimSpace(string(payload.Ingredients)); raw != "" && raw != "null" {
		ingredients, err := services.ParseIngredientsJSON(payload.Ingredients)
		if err != nil {
			return err
		}
		r.Ingredients = &ingredients
	}
	return nil
}

func (r *recipeRequest) fromForm(ctx *gin.Context, maxUpload int64, validation *services.ValidationError) error {
	r.Title = ctx.PostForm("title")
	r.Body = ctx.PostForm("body")
	r.ImageURL = ctx.PostForm("image_url")
	r.CategoryID = parseCategoryID(ctx.PostForm("category_id"), validation)

	if items, ok := ctx.GetPostFormArray("ingredients[]"); ok {
		ingredients := services.NormalizeIngredientsList(items)
		r.Ingredients = &ingredients
	} else if items, ok := ctx.GetPostFormArray("ingredients"); ok {
		var (
			ingredients string
			err         error
		)
		if len(items) > 1 {
			ingredients = services.NormalizeIngredientsList(items)
		} else {
			ingredients, err = services.ParseIngredientsText(items[0])
		}
		if err != nil {
			return err
		}
		r.Ingredients = &ingredients
	}

	if ctx.ContentType() != binding.MIMEMultipartPOSTForm {
		return nil
	}
	upload, err := readUpload(ctx, "image", maxUpload)
	if err != nil {
		return err
	}
	r.Upload = upload
	return nil
}

// rawScalar returns a JSON number or string as plain text, "" for null
func rawScalar(raw json.RawMessage) string {
	text := strings.TrimSpace(string(raw))
	if text == "" || text == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return text
}

// parseCategoryID returns nil when the value is absent and records a
// validation failure when it is not a positive integer
func parseCategoryID(raw string, validation *services.ValidationError) *uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		validation.Add("category_id", "the category_id field must be a positive integer")
		return nil
	}
	value := uint(id)
	return &value
}

// readUpload reads at most maxUpload+1 bytes of the named file so oversized
// uploads are detected without buffering them whole
func readUpload(ctx *gin.Context, field string, maxUpload int64) (*services.UploadedFile, error) {
	header, err := ctx.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, errInvalidBody
	}

	file, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded image: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded image: %w", err)
	}
	return &services.UploadedFile{Filename: header.Filename, Data: data}, nil
}

func (r recipeRequest) imageInput() services.ImageInput {
	return services.ImageInput{Upload: r.Upload, ImageURL: r.ImageURL}
}
