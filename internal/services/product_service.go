// internal/services/product_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/modaline/shop-backend/internal/models"
	"github.com/modaline/shop-backend/internal/utils"
)

type ProductService struct {
	db *gorm.DB
}

type VariantInput struct {
	VariantID string `json:"variantId" validate:"required"`
	Color     string `json:"color" validate:"required"`
	Size      string `json:"size" validate:"required"`
	Stock     int    `json:"stock" validate:"min=0"`
}

type CreateProductRequest struct {
	Title         string           `json:"title" validate:"required,max=100"`
	Description   string           `json:"description" validate:"required,max=1000"`
	Price         decimal.Decimal  `json:"price"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Categories    []uuid.UUID      `json:"categories" validate:"required,min=1"`
	SKU           string           `json:"sku" validate:"required,max=100"`
	Material      string           `json:"material" validate:"required,max=100"`
	Images        []string         `json:"images" validate:"required,min=1"`
	Variants      []VariantInput   `json:"variants" validate:"required,min=1,dive"`
}

type UpdateProductRequest struct {
	Title         string           `json:"title,omitempty" validate:"omitempty,max=100"`
	Description   string           `json:"description,omitempty" validate:"omitempty,max=1000"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	DiscountPrice *decimal.Decimal `json:"discountPrice,omitempty"`
	Categories    []uuid.UUID      `json:"categories,omitempty"`
	Material      string           `json:"material,omitempty"`
	Images        []string         `json:"images,omitempty"`
}

type ProductSearchParams struct {
	utils.PaginationParams
	Categories []string // category ids or slugs; products must carry all of them
	Search     string
}

type UpsertVariantRequest struct {
	Color string `json:"color,omitempty"`
	Size  string `json:"size,omitempty"`
	Stock *int   `json:"stock,omitempty" validate:"omitempty,min=0"`
}

func NewProductService(db *gorm.DB) *ProductService {
	return &ProductService{db: db}
}

func (s *ProductService) GetProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Variants").Preload("Categories").
		First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("No product found with that ID")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// GetProductsBulk fetches products by id list; ids that resolve to nothing are
// logged, not treated as errors, so a cart can still render its other lines.
func (s *ProductService) GetProductsBulk(ids []uuid.UUID) ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Preload("Variants").Preload("Categories").
		Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	if len(products) < len(ids) {
		found := make(map[uuid.UUID]bool, len(products))
		for _, p := range products {
			found[p.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id.String())
			}
		}
		logrus.Warnf("Some products not found: %s", strings.Join(missing, ", "))
	}

	return products, nil
}

func (s *ProductService) SearchProducts(params ProductSearchParams) ([]models.Product, int64, error) {
	query := s.db.Model(&models.Product{})

	if len(params.Categories) > 0 {
		categoryIDs, err := s.resolveCategoryRefs(params.Categories)
		if err != nil {
			return nil, 0, err
		}

		// Products carrying every requested category.
		var productIDs []uuid.UUID
		if err := s.db.Table("product_categories").
			Select("product_id").
			Where("category_id IN ?", categoryIDs).
			Group("product_id").
			Having("COUNT(DISTINCT category_id) = ?", len(categoryIDs)).
			Pluck("product_id", &productIDs).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to filter by categories: %w", err)
		}
		query = query.Where("products.id IN ?", productIDs)
	}

	if params.Search != "" {
		// Title match, or membership in a category whose name matches.
		var matchedCategoryIDs []uuid.UUID
		if err := s.db.Model(&models.Category{}).
			Where("name ILIKE ?", "%"+params.Search+"%").
			Pluck("id", &matchedCategoryIDs).Error; err != nil {
			return nil, 0, fmt.Errorf("failed to search categories: %w", err)
		}

		var inMatched []uuid.UUID
		if len(matchedCategoryIDs) > 0 {
			if err := s.db.Table("product_categories").
				Where("category_id IN ?", matchedCategoryIDs).
				Distinct("product_id").
				Pluck("product_id", &inMatched).Error; err != nil {
				return nil, 0, fmt.Errorf("failed to search products: %w", err)
			}
		}

		query = query.Where("title ILIKE ? OR products.id IN ?", "%"+params.Search+"%", inMatched)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query = query.Preload("Variants").Preload("Categories")
	query = utils.ApplySort(query, params.PaginationParams, []string{"title", "price", "created_at"})
	query = utils.ApplyPagination(query, params.PaginationParams)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, total, nil
}

func (s *ProductService) CreateProduct(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.NewValidationError("%s", utils.ValidationMessage(err))
	}
	if err := validatePricing(req.Price, req.DiscountPrice); err != nil {
		return nil, err
	}

	categories, err := s.loadCategories(req.Categories)
	if err != nil {
		return nil, err
	}

	var existing models.Product
	if err := s.db.Unscoped().Where("sku = ?", req.SKU).First(&existing).Error; err == nil {
		return nil, utils.NewConflictError("Product with this SKU already exists")
	}

	product := &models.Product{
		Title:         req.Title,
		Description:   req.Description,
		Price:         req.Price,
		DiscountPrice: req.DiscountPrice,
		SKU:           req.SKU,
		Material:      req.Material,
		Images:        pq.StringArray(req.Images),
		Categories:    categories,
	}
	for _, v := range req.Variants {
		product.Variants = append(product.Variants, models.Variant{
			VariantID: v.VariantID,
			Color:     v.Color,
			Size:      v.Size,
			Stock:     v.Stock,
		})
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return fmt.Errorf("failed to create product: %w", err)
		}
		return adjustProductCounts(tx, req.Categories, 1)
	})
	if err != nil {
		return nil, err
	}

	return product, nil
}

func (s *ProductService) UpdateProduct(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.NewValidationError("%s", utils.ValidationMessage(err))
	}

	product, err := s.GetProduct(id)
	if err != nil {
		return nil, err
	}

	price := product.Price
	if req.Price != nil {
		price = *req.Price
	}
	discount := product.DiscountPrice
	if req.DiscountPrice != nil {
		discount = req.DiscountPrice
	}
	if err := validatePricing(price, discount); err != nil {
		return nil, err
	}

	var newCategories []models.Category
	if req.Categories != nil {
		if len(req.Categories) == 0 {
			return nil, utils.NewValidationError("Categories must be a non-empty array")
		}
		newCategories, err = s.loadCategories(req.Categories)
		if err != nil {
			return nil, err
		}
	}

	updates := make(map[string]interface{})
	if req.Title != "" {
		updates["title"] = req.Title
	}
	if req.Description != "" {
		updates["description"] = req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.DiscountPrice != nil {
		updates["discount_price"] = *req.DiscountPrice
	}
	if req.Material != "" {
		updates["material"] = req.Material
	}
	if req.Images != nil {
		updates["images"] = pq.StringArray(req.Images)
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(product).Updates(updates).Error; err != nil {
				return fmt.Errorf("failed to update product: %w", err)
			}
		}

		if req.Categories != nil {
			added, removed := diffCategorySets(product.Categories, req.Categories)
			if err := tx.Model(product).Association("Categories").Replace(newCategories); err != nil {
				return fmt.Errorf("failed to update categories: %w", err)
			}
			if err := adjustProductCounts(tx, added, 1); err != nil {
				return err
			}
			if err := adjustProductCounts(tx, removed, -1); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(id)
}

// DeleteProduct soft-deletes so past orders keep a resolvable reference.
func (s *ProductService) DeleteProduct(id uuid.UUID) error {
	product, err := s.GetProduct(id)
	if err != nil {
		return err
	}

	categoryIDs := make([]uuid.UUID, 0, len(product.Categories))
	for _, c := range product.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(product).Error; err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return adjustProductCounts(tx, categoryIDs, -1)
	})
}

// AdjustVariantStock applies an integer delta to a variant's stock. A delta
// that would drive stock negative is rejected; the guard and the write happen
// in one statement so concurrent adjustments cannot oversell.
func (s *ProductService) AdjustVariantStock(productID uuid.UUID, variantID string, delta int) (*models.Product, error) {
	product, err := s.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	variant := product.FindVariant(variantID)
	if variant == nil {
		return nil, utils.NewNotFoundError("Variant not found")
	}

	result := s.db.Model(&models.Variant{}).
		Where("id = ? AND stock + ? >= 0", variant.ID, delta).
		UpdateColumn("stock", gorm.Expr("stock + ?", delta))
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update stock: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, utils.NewInsufficientStockError("Insufficient stock")
	}

	return s.GetProduct(productID)
}

// UpsertVariant updates an existing variant in place or appends a new one.
func (s *ProductService) UpsertVariant(productID uuid.UUID, variantID string, req *UpsertVariantRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.NewValidationError("%s", utils.ValidationMessage(err))
	}

	product, err := s.GetProduct(productID)
	if err != nil {
		return nil, err
	}

	if variant := product.FindVariant(variantID); variant != nil {
		updates := make(map[string]interface{})
		if req.Color != "" {
			updates["color"] = req.Color
		}
		if req.Size != "" {
			updates["size"] = req.Size
		}
		if req.Stock != nil {
			updates["stock"] = *req.Stock
		}
		if len(updates) > 0 {
			if err := s.db.Model(variant).Updates(updates).Error; err != nil {
				return nil, fmt.Errorf("failed to update variant: %w", err)
			}
		}
	} else {
		if req.Color == "" || req.Size == "" {
			return nil, utils.NewValidationError("Color and size are required for a new variant")
		}
		stock := 0
		if req.Stock != nil {
			stock = *req.Stock
		}
		newVariant := models.Variant{
			ProductID: productID,
			VariantID: variantID,
			Color:     req.Color,
			Size:      req.Size,
			Stock:     stock,
		}
		if err := s.db.Create(&newVariant).Error; err != nil {
			return nil, fmt.Errorf("failed to create variant: %w", err)
		}
	}

	return s.GetProduct(productID)
}

// Helpers

func validatePricing(price decimal.Decimal, discount *decimal.Decimal) error {
	if price.IsNegative() {
		return utils.NewValidationError("Price cannot be negative")
	}
	if discount != nil {
		if discount.IsNegative() {
			return utils.NewValidationError("Discount price cannot be negative")
		}
		if discount.GreaterThanOrEqual(price) {
			return utils.NewValidationError("Discount price must be below the regular price")
		}
	}
	return nil
}

func (s *ProductService) loadCategories(ids []uuid.UUID) ([]models.Category, error) {
	var categories []models.Category
	if err := s.db.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	if len(categories) != len(ids) {
		found := make(map[uuid.UUID]bool, len(categories))
		for _, c := range categories {
			found[c.ID] = true
		}
		var missing []string
		for _, id := range ids {
			if !found[id] {
				missing = append(missing, id.String())
			}
		}
		return nil, utils.NewValidationError("Categories not found: %s", strings.Join(missing, ", "))
	}
	return categories, nil
}

func (s *ProductService) resolveCategoryRefs(refs []string) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	var slugs []string
	for _, ref := range refs {
		if id, err := uuid.Parse(ref); err == nil {
			ids = append(ids, id)
		} else {
			slugs = append(slugs, ref)
		}
	}

	if len(slugs) > 0 {
		var slugIDs []uuid.UUID
		if err := s.db.Model(&models.Category{}).
			Where("slug IN ?", slugs).
			Pluck("id", &slugIDs).Error; err != nil {
			return nil, fmt.Errorf("failed to resolve category slugs: %w", err)
		}
		if len(slugIDs) != len(slugs) {
			return nil, utils.NewValidationError("One or more categories not found")
		}
		ids = append(ids, slugIDs...)
	}

	var count int64
	if err := s.db.Model(&models.Category{}).Where("id IN ?", ids).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("failed to verify categories: %w", err)
	}
	if count != int64(len(ids)) {
		return nil, utils.NewValidationError("One or more categories not found")
	}
	return ids, nil
}

// adjustProductCounts moves the denormalized productCount counter; it must run
// in the same transaction as the product write that triggered it.
func adjustProductCounts(tx *gorm.DB, categoryIDs []uuid.UUID, delta int) error {
	if len(categoryIDs) == 0 {
		return nil
	}
	if err := tx.Model(&models.Category{}).
		Where("id IN ?", categoryIDs).
		UpdateColumn("product_count", gorm.Expr("product_count + ?", delta)).Error; err != nil {
		return fmt.Errorf("failed to adjust category product counts: %w", err)
	}
	return nil
}

func diffCategorySets(old []models.Category, next []uuid.UUID) (added, removed []uuid.UUID) {
	oldSet := make(map[uuid.UUID]bool, len(old))
	for _, c := range old {
		oldSet[c.ID] = true
	}
	nextSet := make(map[uuid.UUID]bool, len(next))
	for _, id := range next {
		nextSet[id] = true
		if !oldSet[id] {
			added = append(added, id)
		}
	}
	for _, c := range old {
		if !nextSet[c.ID] {
			removed = append(removed, c.ID)
		}
	}
	return added, removed
}
