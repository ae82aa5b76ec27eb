package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"recipe-api/internal/domain"
	"recipe-api/internal/repository"
	"recipe-api/internal/service"
	"recipe-api/internal/storage"
)

type nameRequest struct {
	Name string `json:"name"`
}

type recipeRequest struct {
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"`
	Price       float64 `json:"price"`
	Link        string  `json:"link"`
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

// recipePatchRequest mirrors recipeRequest with all fields optional.
type recipePatchRequest struct {
	Title       *string  `json:"title"`
	TimeMinutes *int     `json:"time_minutes"`
	Price       *float64 `json:"price"`
	Link        *string  `json:"link"`
	Tags        *[]int64 `json:"tags"`
	Ingredients *[]int64 `json:"ingredients"`
}

type tagResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type ingredientResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type recipeResponse struct {
	ID          int64                `json:"id"`
	Title       string               `json:"title"`
	TimeMinutes int                  `json:"time_minutes"`
	Price       float64              `json:"price"`
	Link        string               `json:"link"`
	ImageKey    string               `json:"image_key,omitempty"`
	Tags        []tagResponse        `json:"tags"`
	Ingredients []ingredientResponse `json:"ingredients"`
	CreatedAt   string               `json:"created_at"`
	UpdatedAt   string               `json:"updated_at"`
}

func tagToResponse(tag domain.Tag) tagResponse {
	return tagResponse{ID: tag.ID, Name: tag.Name}
}

func ingredientToResponse(ing domain.Ingredient) ingredientResponse {
	return ingredientResponse{ID: ing.ID, Name: ing.Name}
}

func recipeToResponse(recipe domain.Recipe) recipeResponse {
	resp := recipeResponse{
		ID:          recipe.ID,
		Title:       recipe.Title,
		TimeMinutes: recipe.TimeMinutes,
		Price:       recipe.Price,
		Link:        recipe.Link,
		ImageKey:    recipe.ImageKey,
		Tags:        make([]tagResponse, len(recipe.Tags)),
		Ingredients: make([]ingredientResponse, len(recipe.Ingredients)),
		CreatedAt:   recipe.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   recipe.UpdatedAt.Format(time.RFC3339),
	}
	for i := range recipe.Tags {
		resp.Tags[i] = tagToResponse(recipe.Tags[i])
	}
	for i := range recipe.Ingredients {
		resp.Ingredients[i] = ingredientToResponse(recipe.Ingredients[i])
	}
	return resp
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}

// parseIDList splits a comma-separated query value like "1,2,3".
func parseIDList(raw string) ([]int64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (h *Handler) listTags(c *gin.Context) {
	tags, err := h.recipes.ListTags(c.Request.Context(), authUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]tagResponse, len(tags))
	for i := range tags {
		resp[i] = tagToResponse(tags[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createTag(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.recipes.CreateTag(c.Request.Context(), authUser(c).ID, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tagToResponse(*tag))
}

func (h *Handler) updateTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tag, err := h.recipes.UpdateTag(c.Request.Context(), authUser(c).ID, id, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, tagToResponse(*tag))
}

func (h *Handler) deleteTag(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.recipes.DeleteTag(c.Request.Context(), authUser(c).ID, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listIngredients(c *gin.Context) {
	ingredients, err := h.recipes.ListIngredients(c.Request.Context(), authUser(c).ID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]ingredientResponse, len(ingredients))
	for i := range ingredients {
		resp[i] = ingredientToResponse(ingredients[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createIngredient(c *gin.Context) {
	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredient, err := h.recipes.CreateIngredient(c.Request.Context(), authUser(c).ID, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, ingredientToResponse(*ingredient))
}

func (h *Handler) updateIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ingredient, err := h.recipes.UpdateIngredient(c.Request.Context(), authUser(c).ID, id, req.Name)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, ingredientToResponse(*ingredient))
}

func (h *Handler) deleteIngredient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.recipes.DeleteIngredient(c.Request.Context(), authUser(c).ID, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) listRecipes(c *gin.Context) {
	tagIDs, err := parseIDList(c.Query("tags"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tags filter"})
		return
	}
	ingredientIDs, err := parseIDList(c.Query("ingredients"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid ingredients filter"})
		return
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), authUser(c).ID, repository.RecipeFilter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredientIDs,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	resp := make([]recipeResponse, len(recipes))
	for i := range recipes {
		resp[i] = recipeToResponse(recipes[i])
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) createRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.CreateRecipe(c.Request.Context(), authUser(c).ID, service.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredients,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, recipeToResponse(*recipe))
}

func (h *Handler) getRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	recipe, err := h.recipes.GetRecipe(c.Request.Context(), authUser(c).ID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) putRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), authUser(c).ID, id, service.RecipeInput{
		Title:         req.Title,
		TimeMinutes:   req.TimeMinutes,
		Price:         req.Price,
		Link:          req.Link,
		TagIDs:        req.Tags,
		IngredientIDs: req.Ingredients,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) patchRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req recipePatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := authUser(c).ID
	existing, err := h.recipes.GetRecipe(c.Request.Context(), userID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	input := service.RecipeInput{
		Title:         existing.Title,
		TimeMinutes:   existing.TimeMinutes,
		Price:         existing.Price,
		Link:          existing.Link,
		TagIDs:        idsOfTags(existing.Tags),
		IngredientIDs: idsOfIngredients(existing.Ingredients),
	}
	if req.Title != nil {
		input.Title = *req.Title
	}
	if req.TimeMinutes != nil {
		input.TimeMinutes = *req.TimeMinutes
	}
	if req.Price != nil {
		input.Price = *req.Price
	}
	if req.Link != nil {
		input.Link = *req.Link
	}
	if req.Tags != nil {
		input.TagIDs = *req.Tags
	}
	if req.Ingredients != nil {
		input.IngredientIDs = *req.Ingredients
	}

	recipe, err := h.recipes.UpdateRecipe(c.Request.Context(), userID, id, input)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) deleteRecipe(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.recipes.DeleteRecipe(c.Request.Context(), authUser(c).ID, id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadRecipeImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image file is required"})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer file.Close()

	recipe, err := h.recipes.AttachImage(c.Request.Context(), authUser(c).ID, id, fileHeader.Filename, storage.Object{
		Body:        file,
		ContentType: fileHeader.Header.Get("Content-Type"),
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, recipeToResponse(*recipe))
}

func (h *Handler) recipeImageURL(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	url, err := h.recipes.ImageURL(c.Request.Context(), authUser(c).ID, id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"url": url})
}

func idsOfTags(tags []domain.Tag) []int64 {
	ids := make([]int64, len(tags))
	for i := range tags {
		ids[i] = tags[i].ID
	}
	return ids
}

func idsOfIngredients(ingredients []domain.Ingredient) []int64 {
	ids := make([]int64, len(ingredients))
	for i := range ingredients {
		ids[i] = ingredients[i].ID
	}
	return ids
}
