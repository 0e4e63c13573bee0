package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-recipe-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateRecipe(t *testing.T) {
	service, db, store := newTestRecipeService(t)
	category := createCategory(t, db, "Desserts")

	t.Run("persists the recipe with its category", func(t *testing.T) {
		recipe, err := service.CreateRecipe(bg, RecipeInput{
			Title:       "Chocolate Cake",
			Body:        "Mix and bake.",
			CategoryID:  category.ID,
			Ingredients: NormalizeIngredientsText("* flour\n* sugar\n* eggs"),
		})
		require.NoError(t, err)

		assert.NotZero(t, recipe.ID)
		assert.Equal(t, "flour\nsugar\neggs", recipe.Ingredients)
		assert.Nil(t, recipe.Image)
		require.NotNil(t, recipe.Category)
		assert.Equal(t, "Desserts", recipe.Category.Name)
		assert.Equal(t, []models.RecipeSummary{{ID: recipe.ID, Title: "Chocolate Cake", CategoryID: category.ID}}, recipe.Category.Recipes)
	})

	t.Run("rejects an unknown category without writing anything", func(t *testing.T) {
		var before int64
		db.Model(&models.Recipe{}).Count(&before)

		_, err := service.CreateRecipe(bg, RecipeInput{
			Title:       "Ghost",
			Body:        "Nothing.",
			CategoryID:  9999,
			Ingredients: "air",
			Image:       ImageInput{Upload: &UploadedFile{Filename: "a.png", Data: pngBytes}},
		})
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Fields, "category_id")

		var after int64
		db.Model(&models.Recipe{}).Count(&after)
		assert.Equal(t, before, after)
		assert.Equal(t, 0, store.Len(), "no image should be stored for a rejected recipe")
	})

	t.Run("reports every missing required field", func(t *testing.T) {
		_, err := service.CreateRecipe(bg, RecipeInput{})
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		for _, field := range []string{"title", "body", "category_id", "ingredients"} {
			assert.Contains(t, validation.Fields, field)
		}
	})

	t.Run("stores a data uri image", func(t *testing.T) {
		recipe, err := service.CreateRecipe(bg, RecipeInput{
			Title:       "Pancakes",
			Body:        "Fry.",
			CategoryID:  category.ID,
			Ingredients: "milk",
			Image:       ImageInput{ImageURL: "data:image/png;base64,iVBORw0KGgoAAAANSUhEUgAAAAEAAAABCAQAAAC1HAwCAAAAC0lEQVR42mNkYAAAAAYAAjCB0C8AAAAASUVORK5CYII="},
		})
		require.NoError(t, err)
		require.NotNil(t, recipe.Image)

		stored, err := store.Get(bg, *recipe.Image)
		require.NoError(t, err)
		assert.Equal(t, pngBytes, stored)
	})
}

func TestGetAllRecipes(t *testing.T) {
	service, db, _ := newTestRecipeService(t)
	category := createCategory(t, db, "Baking")

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	titles := []string{"Carrot Cake", "Bread", "Cheesecake", "Cupcake", "Scones"}
	for i, title := range titles {
		recipe := models.Recipe{
			Title:       title,
			Body:        "Bake.",
			Ingredients: "flour",
			CategoryID:  category.ID,
			CreatedAt:   base.Add(time.Duration(i) * time.Hour),
		}
		require.NoError(t, db.Create(&recipe).Error)
	}

	t.Run("returns newest first with category attached", func(t *testing.T) {
		page, err := service.GetAllRecipes(bg, ListRecipesParams{})
		require.NoError(t, err)

		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 1, page.CurrentPage)
		assert.Equal(t, DefaultPerPage, page.PerPage)
		assert.Equal(t, 1, page.LastPage)
		require.Len(t, page.Data, 5)
		assert.Equal(t, "Scones", page.Data[0].Title)
		assert.Equal(t, "Carrot Cake", page.Data[4].Title)
		require.NotNil(t, page.Data[0].Category)
		assert.Equal(t, "Baking", page.Data[0].Category.Name)
		assert.Len(t, page.Data[0].Category.Recipes, 5)
	})

	t.Run("filters by title substring", func(t *testing.T) {
		page, err := service.GetAllRecipes(bg, ListRecipesParams{Search: "cake"})
		require.NoError(t, err)

		assert.Equal(t, int64(3), page.Total)
		var got []string
		for _, recipe := range page.Data {
			got = append(got, recipe.Title)
		}
		assert.Equal(t, []string{"Cupcake", "Cheesecake", "Carrot Cake"}, got)
	})

	t.Run("paginates", func(t *testing.T) {
		page, err := service.GetAllRecipes(bg, ListRecipesParams{Page: 2, PerPage: 2})
		require.NoError(t, err)

		assert.Equal(t, int64(5), page.Total)
		assert.Equal(t, 2, page.CurrentPage)
		assert.Equal(t, 3, page.LastPage)
		require.Len(t, page.Data, 2)
		assert.Equal(t, "Cheesecake", page.Data[0].Title)
		assert.Equal(t, "Bread", page.Data[1].Title)
	})

	t.Run("page past the end is empty", func(t *testing.T) {
		page, err := service.GetAllRecipes(bg, ListRecipesParams{Page: 10})
		require.NoError(t, err)
		assert.NotNil(t, page.Data)
		assert.Empty(t, page.Data)
	})

	t.Run("caps per page", func(t *testing.T) {
		page, err := service.GetAllRecipes(bg, ListRecipesParams{PerPage: 1000})
		require.NoError(t, err)
		assert.Equal(t, MaxPerPage, page.PerPage)
	})
}

func TestUpdateRecipe(t *testing.T) {
	service, db, store := newTestRecipeService(t)
	desserts := createCategory(t, db, "Desserts")
	breakfast := createCategory(t, db, "Breakfast")

	created, err := service.CreateRecipe(bg, RecipeInput{
		Title:       "Waffles",
		Body:        "Cook.",
		CategoryID:  desserts.ID,
		Ingredients: "flour",
		Image:       ImageInput{Upload: &UploadedFile{Filename: "w.png", Data: pngBytes}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, store.Len())

	t.Run("updates fields and replaces the stored image", func(t *testing.T) {
		updated, err := service.UpdateRecipe(bg, created.ID, RecipeUpdate{
			Title:       "Belgian Waffles",
			Body:        "Cook longer.",
			CategoryID:  uintPtr(breakfast.ID),
			Ingredients: strPtr("flour\nbutter"),
			Image:       ImageInput{ImageURL: "https://cdn.example.com/waffles.jpg"},
		})
		require.NoError(t, err)

		assert.Equal(t, "Belgian Waffles", updated.Title)
		assert.Equal(t, "Cook longer.", updated.Body)
		assert.Equal(t, "flour\nbutter", updated.Ingredients)
		assert.Equal(t, breakfast.ID, updated.CategoryID)
		require.NotNil(t, updated.Image)
		assert.Equal(t, "https://cdn.example.com/waffles.jpg", *updated.Image)
		assert.Equal(t, 0, store.Len(), "replaced image should be removed")
	})

	t.Run("keeps unspecified fields", func(t *testing.T) {
		updated, err := service.UpdateRecipe(bg, created.ID, RecipeUpdate{Title: "Waffles", Body: "Cook."})
		require.NoError(t, err)
		assert.Equal(t, "flour\nbutter", updated.Ingredients)
		assert.Equal(t, breakfast.ID, updated.CategoryID)
		require.NotNil(t, updated.Image)
	})

	t.Run("requires title and body", func(t *testing.T) {
		_, err := service.UpdateRecipe(bg, created.ID, RecipeUpdate{})
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Fields, "title")
		assert.Contains(t, validation.Fields, "body")
	})

	t.Run("rejects unknown category", func(t *testing.T) {
		_, err := service.UpdateRecipe(bg, created.ID, RecipeUpdate{Title: "a", Body: "b", CategoryID: uintPtr(4242)})
		var validation *ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Fields, "category_id")
	})

	t.Run("unknown recipe", func(t *testing.T) {
		_, err := service.UpdateRecipe(bg, 4242, RecipeUpdate{Title: "a", Body: "b"})
		assert.ErrorIs(t, err, ErrRecipeNotFound)
	})
}

func TestDeleteRecipe(t *testing.T) {
	service, db, store := newTestRecipeService(t)
	category := createCategory(t, db, "Soups")

	created, err := service.CreateRecipe(bg, RecipeInput{
		Title:       "Tomato Soup",
		Body:        "Simmer.",
		CategoryID:  category.ID,
		Ingredients: "tomatoes",
		Image:       ImageInput{Upload: &UploadedFile{Filename: "soup.png", Data: pngBytes}},
	})
	require.NoError(t, err)

	deleted, err := service.DeleteRecipe(bg, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, deleted.ID)
	assert.Equal(t, "Tomato Soup", deleted.Title)
	assert.Equal(t, 0, store.Len())

	_, err = service.GetRecipeByID(bg, created.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)

	_, err = service.DeleteRecipe(bg, created.ID)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
}

func TestGetRecipeByIDNotFound(t *testing.T) {
	service, _, _ := newTestRecipeService(t)

	_, err := service.GetRecipeByID(bg, 1)
	assert.ErrorIs(t, err, ErrRecipeNotFound)
	assert.Equal(t, "recipe not found", fmt.Sprint(err))
}
