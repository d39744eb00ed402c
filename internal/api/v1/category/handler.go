package category

import (
	"errors"
	"net/http"
	"strconv"

	"promptvault-backend/internal/models"
	"promptvault-backend/internal/services"
	"promptvault-backend/internal/utils"

	"github.com/gin-gonic/gin"
)

func handleServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrCategoryExists):
		c.JSON(http.StatusConflict, utils.NewErrorResponse(http.StatusConflict, err.Error()))
	case errors.Is(err, services.ErrInvalidColor):
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, err.Error()))
	case errors.Is(err, services.ErrCategoryNotFound):
		c.JSON(http.StatusNotFound, utils.NewErrorResponse(http.StatusNotFound, err.Error()))
	default:
		c.JSON(http.StatusInternalServerError, utils.NewErrorResponse(http.StatusInternalServerError, err.Error()))
	}
}

// CreateCategory godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} utils.Response{data=models.Category}
// @Failure 400 {object} utils.Response
// @Failure 409 {object} utils.Response
// @Router /categories [post]
func CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	created, err := services.CreateCategory(req.Name, req.Description, models.CategoryColor(req.Color))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Category created successfully", created))
}

// UpdateCategory godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category ID"
// @Param request body CategoryRequest true "Category"
// @Success 200 {object} utils.Response{data=models.Category}
// @Failure 400 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /categories/{id} [put]
func UpdateCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid category ID"))
		return
	}

	var req CategoryRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	updated, err := services.UpdateCategory(uint(id), req.Name, req.Description, models.CategoryColor(req.Color))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Category updated successfully", updated))
}

// DeleteCategory godoc
// @Summary Delete a category
// @Description Delete a category; its prompts keep existing uncategorized
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Param id path int true "Category ID"
// @Success 200 {object} utils.Response
// @Failure 404 {object} utils.Response
// @Router /categories/{id} [delete]
func DeleteCategory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, utils.NewErrorResponse(http.StatusBadRequest, "Invalid category ID"))
		return
	}

	if err := services.DeleteCategory(uint(id)); err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Category deleted successfully", nil))
}

// ListCategories godoc
// @Summary List categories
// @Description List all categories with prompt counts
// @Tags categories
// @Produce json
// @Security ApiKeyAuth
// @Success 200 {object} utils.Response{data=[]services.CategoryWithCount}
// @Failure 500 {object} utils.Response
// @Router /categories [get]
func ListCategories(c *gin.Context) {
	categories, err := services.ListCategories()
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, utils.NewSuccessResponse("Success", categories))
}
