// internal/handlers/product.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/modaline/shop-backend/internal/services"
	"github.com/modaline/shop-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	storageService *services.StorageService
}

func NewProductHandler(productService *services.ProductService, storageService *services.StorageService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		storageService: storageService,
	}
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := services.ProductSearchParams{
		PaginationParams: utils.GetPaginationParams(c),
		Search:           c.Query("search"),
	}
	if categories := c.Query("categories"); categories != "" {
		params.Categories = strings.Split(categories, ",")
	}

	products, total, err := h.productService.SearchProducts(params)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.PaginatedResponse(c, len(products), total, utils.TotalPages(total, params.Limit),
		gin.H{"products": products})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetProduct(id)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// POST /products/bulk
func (h *ProductHandler) GetProductsBulk(c *gin.Context) {
	var req struct {
		ProductIDs []string `json:"productIds"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || len(req.ProductIDs) == 0 {
		utils.BadRequestResponse(c, "Please provide an array of product IDs")
		return
	}

	ids := make([]uuid.UUID, 0, len(req.ProductIDs))
	var invalid []string
	for _, raw := range req.ProductIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			invalid = append(invalid, raw)
			continue
		}
		ids = append(ids, id)
	}
	if len(invalid) > 0 {
		utils.BadRequestResponse(c, "Invalid product IDs: "+strings.Join(invalid, ", "))
		return
	}

	products, err := h.productService.GetProductsBulk(ids)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.ListResponse(c, len(products), gin.H{"products": products})
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input")
		return
	}

	product, err := h.productService.CreateProduct(&req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.CreatedResponse(c, "", gin.H{"product": product})
}

// PATCH /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID")
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input")
		return
	}

	product, err := h.productService.UpdateProduct(id, &req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID")
		return
	}

	if err := h.productService.DeleteProduct(id); err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessMessageResponse(c, "Product deleted successfully", nil)
}

// PATCH /products/:id/variants/:variantId/stock
func (h *ProductHandler) AdjustVariantStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID")
		return
	}

	var req struct {
		QuantityChange *int `json:"quantityChange"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.QuantityChange == nil || *req.QuantityChange == 0 {
		utils.BadRequestResponse(c, "Quantity change must be a non-zero integer")
		return
	}

	product, err := h.productService.AdjustVariantStock(id, c.Param("variantId"), *req.QuantityChange)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// PATCH /products/:id/variants/:variantId
func (h *ProductHandler) UpsertVariant(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID")
		return
	}

	var req services.UpsertVariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid input")
		return
	}

	product, err := h.productService.UpsertVariant(id, c.Param("variantId"), &req)
	if err != nil {
		utils.ErrorResponse(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

// POST /products/upload-images
func (h *ProductHandler) UploadProductImages(c *gin.Context) {
	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form")
		return
	}

	files := form.File["images"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No images uploaded")
		return
	}

	uploaded := make([]services.UploadResult, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Could not read uploaded file")
			return
		}

		result, err := h.storageService.UploadImage(file, fileHeader)
		file.Close()
		if err != nil {
			utils.ErrorResponse(c, err)
			return
		}
		uploaded = append(uploaded, *result)
	}

	utils.SuccessResponse(c, gin.H{"images": uploaded})
}
