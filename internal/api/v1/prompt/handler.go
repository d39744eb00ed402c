package prompt

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func currentUser(c *gin.Context) (models.User, bool) {
	value, exists := c.Get("user")
	if !exists {
		c.JSON(http.StatusUnauthorized, utils.NewErrorResponse(http.StatusUnauthorized, "Unauthorized"))
		return models.User{}, false
	}
	return value.(models.User), true
}

func promptID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid prompt ID"))
		return 0, false
	}
	return uint(id), true
}

func handleServiceError(c *gin.Context, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		c.JSON(http.StatusBadRequest, utils.Response{
			Status:  http.StatusBadRequest,
			Message: validationErr.Error(),
			Data:    gin.H{"missing": validationErr.Missing},
		})
	case errors.Is(err, services.ErrNotTemplate),
		errors.Is(err, services.ErrInvalidColorLabel):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.Is(err, services.ErrForbidden):
		c.JSON(http.StatusForbidden, utils.NewErrorResponse(http.StatusForbidden, err.Error()))
	case errors.Is(err, services.ErrPromptNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
	}
}

func toInput(req PromptRequest) services.PromptInput {
	return services.PromptInput{
		Title:      req.Title,
		Content:    req.Content,
		CategoryID: req.CategoryID,
		Tags:       req.Tags,
		IsTemplate: req.IsTemplate,
		ColorLabel: models.ColorLabel(req.ColorLabel),
		IsFavorite: req.IsFavorite,
		IsPublic:   req.IsPublic,
	}
}

// CreatePrompt godoc
// @Summary Create a new prompt
// @Description Create a prompt owned by the caller; template variables are extracted on save
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body PromptRequest true "Prompt"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 400 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /prompts [post]
func CreatePrompt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req PromptRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	created, err := services.CreatePrompt(user.ID, toInput(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt created successfully", created))
}

// GetPrompt godoc
// @Summary Get a prompt
// @Description Get a prompt by ID; only own or public prompts are visible
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [get]
func GetPrompt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := promptID(c)
	if !ok {
		return
	}

	found, err := services.GetPrompt(id, user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", found))
}

// UpdatePrompt godoc
// @Summary Update a prompt
// @Description Update an owned prompt; template variables are re-extracted on save
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param request body PromptRequest true "Prompt"
// @Success 200 {object} utils.Response{data=models.Prompt}
// @Failure 400 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [put]
func UpdatePrompt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := promptID(c)
	if !ok {
		return
	}

	var req PromptRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := services.UpdatePrompt(id, user.ID, toInput(req))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt updated successfully", updated))
}

// DeletePrompt godoc
// @Summary Delete a prompt
// @Description Delete an owned prompt and its usage history
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id} [delete]
func DeletePrompt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := promptID(c)
	if !ok {
		return
	}

	if err := services.DeletePrompt(id, user.ID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt deleted successfully", nil))
}

// ListPrompts godoc
// @Summary List prompts
// @Description Paginated list of visible prompts with filtering and ordering
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Param q query string false "Search in title, content and tags"
// @Param category query int false "Category ID"
// @Param tags query string false "Comma-separated tag labels, all must match"
// @Param is_template query bool false "Template flag"
// @Param is_favorite query bool false "Favorite flag"
// @Param color_label query string false "Color label"
// @Param created_after query string false "RFC3339 lower bound"
// @Param created_before query string false "RFC3339 upper bound"
// @Param ordering query string false "Order field, '-' prefix for descending" default(-created_at)
// @Success 200 {object} utils.Response{data=PromptListResponse}
// @Failure 500 {object} utils.Response
// @Router /prompts [get]
func ListPrompts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	filter := parseFilter(c)

	prompts, total, err := services.ListPrompts(user.ID, filter)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", PromptListResponse{
		Total: total,
		Items: prompts,
	}))
}

func parseFilter(c *gin.Context) services.PromptFilter {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filter := services.PromptFilter{
		Search:     c.Query("q"),
		ColorLabel: c.Query("color_label"),
		OrderBy:    c.DefaultQuery("ordering", "-created_at"),
		Page:       page,
		Limit:      limit,
	}

	if v := c.Query("category"); v != "" {
		if id, err := strconv.ParseUint(v, 10, 32); err == nil {
			categoryID := uint(id)
			filter.CategoryID = &categoryID
		}
	}
	if v := c.Query("tags"); v != "" {
		filter.Tags = strings.Split(v, ",")
	}
	if v := c.Query("is_template"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.IsTemplate = &b
		}
	}
	if v := c.Query("is_favorite"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			filter.IsFavorite = &b
		}
	}
	if v := c.Query("created_after"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedAfter = &t
		}
	}
	if v := c.Query("created_before"); v != "" {
		if t, err := time.Parse(time.RFC3339, v); err == nil {
			filter.CreatedBefore = &t
		}
	}

	return filter
}

// RenderPrompt godoc
// @Summary Render a template prompt
// @Description Substitute variable values into a template and record the usage
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param request body RenderRequest true "Variable values"
// @Success 200 {object} utils.Response{data=services.RenderResult}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /prompts/{id}/render [post]
func RenderPrompt(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := promptID(c)
	if !ok {
		return
	}

	var req RenderRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	found, err := services.GetPrompt(id, user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	result, err := services.RenderPrompt(found, user.ID, req.VariableValues)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Prompt rendered successfully", result))
}

// MarkUsed godoc
// @Summary Record a plain usage
// @Description Record a usage of a prompt without variable substitution
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response{data=MarkUsedResponse}
// @Failure 404 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /prompts/{id}/mark-used [post]
func MarkUsed(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := promptID(c)
	if !ok {
		return
	}

	found, err := services.GetPrompt(id, user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	if err := services.MarkUsed(found, user.ID); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Usage recorded", MarkUsedResponse{Status: "recorded"}))
}

// ToggleFavorite godoc
// @Summary Toggle favorite
// @Description Flip the favorite flag on an owned prompt
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Success 200 {object} utils.Response{data=FavoriteResponse}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/favorite [post]
func ToggleFavorite(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := promptID(c)
	if !ok {
		return
	}

	isFavorite, err := services.ToggleFavorite(id, user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", FavoriteResponse{IsFavorite: isFavorite}))
}

// ListFavorites godoc
// @Summary List favorites
// @Description List the caller's favorited prompts
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=[]models.Prompt}
// @Failure 500 {object} utils.Response
// @Router /prompts/favorites [get]
func ListFavorites(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	favorites, err := services.ListFavorites(user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", favorites))
}

// ListUsages godoc
// @Summary List usage history
// @Description List usage events of an owned prompt, newest first
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Prompt ID"
// @Param limit query int false "Maximum entries" default(50)
// @Success 200 {object} utils.Response{data=UsageListResponse}
// @Failure 403 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /prompts/{id}/usages [get]
func ListUsages(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	id, ok := promptID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	usages, err := services.ListUsages(id, user.ID, limit)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", UsageListResponse{Items: usages}))
}

// ExportPrompts godoc
// @Summary Export prompts
// @Description Download all of the caller's prompts as a JSON attachment
// @Tags prompts
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} services.ExportPayload
// @Failure 500 {object} utils.Response
// @Router /prompts/export [get]
func ExportPrompts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	payload, err := services.ExportPrompts(user.ID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	filename := fmt.Sprintf("prompts_export_%s.json", time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.JSON(http.StatusOK, payload)
}

// ImportPrompts godoc
// @Summary Import prompts
// @Description Bulk-create prompts from an exported JSON payload
// @Tags prompts
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body ImportRequest true "Import payload"
// @Success 200 {object} utils.Response{data=services.ImportReport}
// @Failure 400 {object} utils.Response
// @Failure 500 {object} utils.Response
// @Router /prompts/import [post]
func ImportPrompts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req ImportRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	report, err := services.ImportPrompts(user.ID, req.Prompts, req.Overwrite)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Import completed", report))
}
