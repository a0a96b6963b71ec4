// internal/handlers/category.go
package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/modaline/shop-backend/internal/services"
	"github.com/modaline/shop-backend/internal/utils"
)

type CategoryHandler struct {
	categoryService *services.CategoryService
}

func NewCategoryHandler(categoryService *services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// GET /categories
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	filter := services.CategoryFilter{
		Type:     c.Query("type"),
		Featured: c.Query("featured") == "true",
	}

	categories, err := h.categoryService.ListCategories(filter)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.ListResponse(c, len(categories), gin.H{"categories": categories})
}

// GET /categories/:slug
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	category, err := h.categoryService.GetCategoryBySlug(c.Param("slug"))
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"category": category})
}

// GET /categories/:slug/products
func (h *CategoryHandler) GetCategoryProducts(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	products, total, err := h.categoryService.GetCategoryProducts(c.Param("slug"), params)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, len(products), total, utils.TotalPages(total, params.Limit),
		gin.H{"products": products})
}

// POST /categories
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input")
		return
	}

	category, err := h.categoryService.CreateCategory(&req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "", gin.H{"category": category})
}

// PATCH /categories/:slug
// The path parameter carries the category id here; gin requires admin
// routes to share the browse routes' parameter name.
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("slug"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID")
		return
	}

	var req services.UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input")
		return
	}

	category, err := h.categoryService.UpdateCategory(id, &req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"category": category})
}

// DELETE /categories/:slug
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("slug"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid category ID")
		return
	}

	if err := h.categoryService.DeleteCategory(id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.NoContentResponse(c)
}
