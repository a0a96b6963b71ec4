// internal/services/cart_service.go
package services

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/modaline/shop-backend/internal/models"
	"github.com/modaline/shop-backend/internal/utils"
)

type CartService struct {
	db *gorm.DB
}

type AddToCartRequest struct {
	ProductID uuid.UUID         `json:"productId"`
	Quantity  int               `json:"quantity"`
	Variant   models.VariantRef `json:"variant"`
}

// SyncCartRequest mirrors the client-held cart snapshot. Product ids arrive as
// raw strings: a malformed id is a line to skip, not a request to reject.
type SyncCartRequest struct {
	Cart struct {
		Items []SyncCartLine `json:"items"`
	} `json:"cart"`
}

type SyncCartLine struct {
	ProductID string            `json:"productId"`
	Quantity  int               `json:"quantity"`
	Variant   models.VariantRef `json:"variant"`
}

type UpdateCartItemRequest struct {
	ItemID   uuid.UUID `json:"itemId"`
	Quantity int       `json:"quantity"`
}

func NewCartService(db *gorm.DB) *CartService {
	return &CartService{db: db}
}

// GetCart returns the user's cart, or an empty one if none exists yet.
func (s *CartService) GetCart(userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := s.db.Preload("Items").Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &models.Cart{UserID: userID, Items: []models.CartItem{}, TotalAmount: decimal.Zero}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &cart, nil
}

// AddToCart merges the requested quantity into the cart: an existing line with
// the same product and variant descriptor has its quantity summed, and the sum
// must still be covered by live stock. The running total moves by
// unitPrice * quantity; it is never recomputed from scratch.
func (s *CartService) AddToCart(userID uuid.UUID, req *AddToCartRequest) (*models.Cart, error) {
	if req.ProductID == uuid.Nil || req.Quantity < 1 || req.Variant.VariantID == "" {
		return nil, utils.NewValidationError("Product ID, quantity, and variant are required")
	}

	product, err := s.getLiveProduct(req.ProductID)
	if err != nil {
		return nil, err
	}

	variant := product.MatchVariant(req.Variant)
	if variant == nil {
		return nil, utils.NewNotFoundError("Variant not found or mismatch")
	}
	if variant.Stock < req.Quantity {
		return nil, utils.NewInsufficientStockError("Insufficient stock for this variant")
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockCart(tx, userID, true)
		if err != nil {
			return err
		}

		existing, newQuantity, err := planAddLine(cart, variant, req.ProductID, req.Variant, req.Quantity)
		if err != nil {
			return err
		}
		if existing != nil {
			if err := tx.Model(existing).UpdateColumn("quantity", newQuantity).Error; err != nil {
				return fmt.Errorf("failed to update cart item: %w", err)
			}
		} else {
			item := models.CartItem{
				CartID:    cart.ID,
				ProductID: req.ProductID,
				Quantity:  req.Quantity,
				Variant:   req.Variant,
			}
			if err := tx.Create(&item).Error; err != nil {
				return fmt.Errorf("failed to add cart item: %w", err)
			}
		}

		lineTotal := product.UnitPrice().Mul(decimal.NewFromInt(int64(req.Quantity)))
		if err := tx.Model(cart).
			UpdateColumn("total_amount", gorm.Expr("total_amount + ?", lineTotal)).Error; err != nil {
			return fmt.Errorf("failed to update cart total: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// SyncCart reconciles a client-held snapshot into the server cart. The merge
// is best effort and monotonic: lines that cannot be honored are skipped
// silently, existing quantities never decrease, and lines present only
// server-side are preserved.
func (s *CartService) SyncCart(userID uuid.UUID, req *SyncCartRequest) (*models.Cart, error) {
	if req.Cart.Items == nil {
		return nil, utils.NewValidationError("Invalid local cart data")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockCart(tx, userID, true)
		if err != nil {
			return err
		}

		for _, line := range req.Cart.Items {
			productID, ok := parseSyncLine(line)
			if !ok {
				continue
			}

			product, err := s.getLiveProduct(productID)
			if err != nil {
				var appErr *utils.AppError
				if errors.As(err, &appErr) {
					continue // product gone; drop the line
				}
				return err
			}

			item, quantity, action := planSyncLine(cart, product, line.Variant, line.Quantity)
			switch action {
			case syncAppend:
				newItem := models.CartItem{
					CartID:    cart.ID,
					ProductID: productID,
					Quantity:  quantity,
					Variant:   line.Variant,
				}
				if err := tx.Create(&newItem).Error; err != nil {
					return fmt.Errorf("failed to add cart item: %w", err)
				}
				cart.Items = append(cart.Items, newItem)
			case syncRaise:
				if err := tx.Model(item).UpdateColumn("quantity", quantity).Error; err != nil {
					return fmt.Errorf("failed to update cart item: %w", err)
				}
				item.Quantity = quantity
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// UpdateCartItem sets a line's quantity absolutely, bounded by live stock.
func (s *CartService) UpdateCartItem(userID uuid.UUID, req *UpdateCartItemRequest) (*models.Cart, error) {
	if req.ItemID == uuid.Nil || req.Quantity < 1 {
		return nil, utils.NewValidationError("Valid item ID and quantity are required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockCart(tx, userID, false)
		if err != nil {
			return err
		}

		item := cart.ItemByID(req.ItemID)
		if item == nil {
			return utils.NewNotFoundError("Item not found in cart")
		}

		product, err := s.getLiveProduct(item.ProductID)
		if err != nil {
			return err
		}
		variant := product.FindVariant(item.Variant.VariantID)
		if variant == nil {
			return utils.NewNotFoundError("Variant not found")
		}
		if variant.Stock < req.Quantity {
			return utils.NewInsufficientStockError("Insufficient stock for this variant")
		}

		if err := tx.Model(item).UpdateColumn("quantity", req.Quantity).Error; err != nil {
			return fmt.Errorf("failed to update cart item: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// RemoveFromCart removes one line by its id.
func (s *CartService) RemoveFromCart(userID uuid.UUID, itemID uuid.UUID) (*models.Cart, error) {
	if itemID == uuid.Nil {
		return nil, utils.NewValidationError("Item ID is required")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockCart(tx, userID, false)
		if err != nil {
			return err
		}

		result := tx.Unscoped().Where("cart_id = ? AND id = ?", cart.ID, itemID).Delete(&models.CartItem{})
		if result.Error != nil {
			return fmt.Errorf("failed to remove cart item: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return utils.NewNotFoundError("Item not found in cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetCart(userID)
}

// ClearCart deletes the whole aggregate.
func (s *CartService) ClearCart(userID uuid.UUID) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		cart, err := s.lockCart(tx, userID, false)
		if err != nil {
			return err
		}
		return deleteCart(tx, cart)
	})
}

// Merge planning. Pure so the merge rules are testable without a database.

// planAddLine decides how a requested quantity lands in the cart. An existing
// line with the same product and variant descriptor absorbs the request as a
// sum, and the sum must still be covered by live stock; otherwise the request
// opens a new line at its own quantity.
func planAddLine(cart *models.Cart, variant *models.Variant, productID uuid.UUID, ref models.VariantRef, quantity int) (*models.CartItem, int, error) {
	if existing := cart.FindItem(productID, ref); existing != nil {
		newQuantity := existing.Quantity + quantity
		if variant.Stock < newQuantity {
			return nil, 0, utils.NewInsufficientStockError("Insufficient stock for this variant")
		}
		return existing, newQuantity, nil
	}
	return nil, quantity, nil
}

type syncAction int

const (
	syncSkip syncAction = iota
	syncRaise
	syncAppend
)

// planSyncLine decides what one proposed line does to the cart. Stock gates
// every outcome: an identical line is raised to max(server, proposed) only if
// stock covers the raise (otherwise left untouched, never partially applied);
// an unknown line is appended at the proposed quantity.
func planSyncLine(cart *models.Cart, product *models.Product, ref models.VariantRef, quantity int) (*models.CartItem, int, syncAction) {
	variant := product.MatchVariant(ref)
	if variant == nil {
		return nil, 0, syncSkip
	}
	if variant.Stock < quantity {
		return nil, 0, syncSkip
	}

	if existing := cart.FindItem(product.ID, ref); existing != nil {
		newQuantity := existing.Quantity
		if quantity > newQuantity {
			newQuantity = quantity
		}
		if newQuantity == existing.Quantity || variant.Stock < newQuantity {
			return existing, existing.Quantity, syncSkip
		}
		return existing, newQuantity, syncRaise
	}

	return nil, quantity, syncAppend
}

func parseSyncLine(line SyncCartLine) (uuid.UUID, bool) {
	if line.ProductID == "" || line.Quantity < 1 || line.Variant.VariantID == "" {
		return uuid.Nil, false
	}
	productID, err := uuid.Parse(line.ProductID)
	if err != nil {
		return uuid.Nil, false
	}
	return productID, true
}

// Helpers

func (s *CartService) getLiveProduct(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := s.db.Preload("Variants").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Product not found")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &product, nil
}

// lockCart loads the user's cart under FOR UPDATE so concurrent mutations of
// the same aggregate serialize at the database. With createMissing it starts
// an empty cart on first use.
func (s *CartService) lockCart(tx *gorm.DB, userID uuid.UUID, createMissing bool) (*models.Cart, error) {
	var cart models.Cart
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).First(&cart).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if !createMissing {
			return nil, utils.NewNotFoundError("Cart not found")
		}
		cart = models.Cart{UserID: userID, TotalAmount: decimal.Zero}
		if err := tx.Create(&cart).Error; err != nil {
			return nil, fmt.Errorf("failed to create cart: %w", err)
		}
		return &cart, nil
	}
	if err != nil {
		return nil, fmt.Errorf("database error: %w", err)
	}

	if err := tx.Where("cart_id = ?", cart.ID).Find(&cart.Items).Error; err != nil {
		return nil, fmt.Errorf("failed to load cart items: %w", err)
	}
	return &cart, nil
}

func deleteCart(tx *gorm.DB, cart *models.Cart) error {
	if err := tx.Unscoped().Where("cart_id = ?", cart.ID).Delete(&models.CartItem{}).Error; err != nil {
		return fmt.Errorf("failed to delete cart items: %w", err)
	}
	if err := tx.Unscoped().Delete(cart).Error; err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}
