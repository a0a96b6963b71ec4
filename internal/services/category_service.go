// internal/services/category_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/modaline/shop-backend/internal/models"
	"github.com/modaline/shop-backend/internal/utils"
)

type CategoryService struct {
	db *gorm.DB
}

type CategoryFilter struct {
	Type     string
	Featured bool
}

type CreateCategoryRequest struct {
	Name        string              `json:"name" validate:"required,min=2,max=50"`
	Type        models.CategoryType `json:"type" validate:"required,oneof=product demographic collection"`
	Description string              `json:"description,omitempty" validate:"omitempty,max=500"`
	Image       string              `json:"image,omitempty"`
	Parent      *uuid.UUID          `json:"parent,omitempty"`
	IsFeatured  bool                `json:"isFeatured,omitempty"`
}

type UpdateCategoryRequest struct {
	Name        string              `json:"name,omitempty" validate:"omitempty,min=2,max=50"`
	Type        models.CategoryType `json:"type,omitempty" validate:"omitempty,oneof=product demographic collection"`
	Description *string             `json:"description,omitempty"`
	Image       string              `json:"image,omitempty"`
	Parent      *uuid.UUID          `json:"parent,omitempty"`
	IsFeatured  *bool               `json:"isFeatured,omitempty"`
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{db: db}
}

func (s *CategoryService) ListCategories(filter CategoryFilter) ([]models.Category, error) {
	query := s.db.Model(&models.Category{})
	if filter.Type != "" {
		query = query.Where("type = ?", filter.Type)
	}
	if filter.Featured {
		query = query.Where("is_featured = ?", true)
	}

	var categories []models.Category
	if err := query.Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (s *CategoryService) GetCategoryBySlug(categorySlug string) (*models.Category, error) {
	var category models.Category
	if err := s.db.Where("slug = ?", categorySlug).First(&category).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("No category found with that slug")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &category, nil
}

// GetCategoryProducts returns the non-deleted products carrying the category.
func (s *CategoryService) GetCategoryProducts(categorySlug string, params utils.PaginationParams) ([]models.Product, int64, error) {
	category, err := s.GetCategoryBySlug(categorySlug)
	if err != nil {
		return nil, 0, err
	}

	base := s.db.Model(&models.Product{}).
		Joins("JOIN product_categories pc ON pc.product_id = products.id").
		Where("pc.category_id = ?", category.ID)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := base.Preload("Variants").Preload("Categories")
	query = utils.ApplySort(query, params, []string{"title", "price", "created_at"})
	query = utils.ApplyPagination(query, params)

	var products []models.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, total, nil
}

func (s *CategoryService) CreateCategory(req *CreateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.NewValidationError("%s", utils.ValidationMessage(err))
	}

	if req.Parent != nil {
		var parent models.Category
		if err := s.db.First(&parent, "id = ?", *req.Parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.NewValidationError("Parent category does not exist")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	categorySlug := slug.Make(req.Name)
	var existing models.Category
	if err := s.db.Where("slug = ?", categorySlug).First(&existing).Error; err == nil {
		return nil, utils.NewConflictError("Category with this slug already exists")
	}

	image := req.Image
	if image == "" {
		image = "default-category.jpg"
	}

	category := &models.Category{
		Name:        req.Name,
		Slug:        categorySlug,
		Type:        req.Type,
		Description: req.Description,
		Image:       image,
		ParentID:    req.Parent,
		IsFeatured:  req.IsFeatured,
	}

	if err := s.db.Create(category).Error; err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	return category, nil
}

func (s *CategoryService) UpdateCategory(id uuid.UUID, req *UpdateCategoryRequest) (*models.Category, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, utils.NewValidationError("%s", utils.ValidationMessage(err))
	}

	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("No category found with that ID")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}

	if req.Parent != nil {
		if *req.Parent == id {
			return nil, utils.NewValidationError("Category cannot be its own parent")
		}
		var parent models.Category
		if err := s.db.First(&parent, "id = ?", *req.Parent).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.NewValidationError("Parent category does not exist")
			}
			return nil, fmt.Errorf("database error: %w", err)
		}
	}

	updates := make(map[string]interface{})
	if req.Name != "" {
		updates["name"] = req.Name
		updates["slug"] = slug.Make(req.Name)
	}
	if req.Type != "" {
		updates["type"] = req.Type
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Image != "" {
		updates["image"] = req.Image
	}
	if req.Parent != nil {
		updates["parent_id"] = *req.Parent
	}
	if req.IsFeatured != nil {
		updates["is_featured"] = *req.IsFeatured
	}

	if err := s.db.Model(&category).Updates(updates).Error; err != nil {
		return nil, fmt.Errorf("failed to update category: %w", err)
	}
	return &category, nil
}

// DeleteCategory removes the category and detaches it from every product.
// Counters of other categories are untouched.
func (s *CategoryService) DeleteCategory(id uuid.UUID) error {
	var category models.Category
	if err := s.db.First(&category, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NewNotFoundError("No category found with that ID")
		}
		return fmt.Errorf("database error: %w", err)
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("DELETE FROM product_categories WHERE category_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to detach category from products: %w", err)
		}
		if err := tx.Unscoped().Delete(&category).Error; err != nil {
			return fmt.Errorf("failed to delete category: %w", err)
		}
		return nil
	})
}
