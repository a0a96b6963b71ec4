// internal/services/order_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/modaline/shop-backend/internal/models"
	"github.com/modaline/shop-backend/internal/utils"
)

type OrderService struct {
	db   *gorm.DB
	cart *CartService
}

type GuestCartLine struct {
	ProductID uuid.UUID `json:"productId"`
	VariantID string    `json:"variantId"`
	Quantity  int       `json:"quantity" validate:"min=1"`
}

type CreateOrderRequest struct {
	PaymentMethod   models.PaymentMethod    `json:"paymentMethod" validate:"required,oneof=cash card"`
	ShippingAddress *models.ShippingAddress `json:"shippingAddress" validate:"required"`
	GuestCart       []GuestCartLine         `json:"guestCart,omitempty" validate:"omitempty,dive"`
}

type UpdateOrderStatusRequest struct {
	Status models.OrderStatus `json:"status"`
}

func NewOrderService(db *gorm.DB, cart *CartService) *OrderService {
	return &OrderService{db: db, cart: cart}
}

// CreateOrder materializes an order either from the authenticated user's cart
// or from a guest payload. Field validation happens before any cart or stock
// state is touched; order insertion and cart deletion share one transaction so
// a failure cannot leave an order without its cart cleanup or vice versa.
func (s *OrderService) CreateOrder(userID *uuid.UUID, req *CreateOrderRequest) (*models.Order, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, orderValidationError(err)
	}

	var order *models.Order
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var items []models.OrderItem
		var err error

		switch {
		case userID != nil:
			items, err = s.materializeUserCart(tx, *userID)
		case len(req.GuestCart) > 0:
			items, err = s.materializeGuestCart(tx, req.GuestCart)
		default:
			return utils.NewValidationError("No cart data provided")
		}
		if err != nil {
			return err
		}

		totalAmount := decimal.Zero
		for _, item := range items {
			totalAmount = totalAmount.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
		}

		order = &models.Order{
			UserID:          userID,
			Items:           items,
			TotalAmount:     totalAmount,
			Status:          models.OrderStatusPending,
			PaymentMethod:   req.PaymentMethod,
			ShippingAddress: *req.ShippingAddress,
		}
		if err := tx.Create(order).Error; err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return order, nil
}

// orderValidationError names the part of the request that failed validation.
// A guest cart line with a bad quantity is reported as such, not blamed on the
// payment fields.
func orderValidationError(err error) *utils.AppError {
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		for _, fe := range fieldErrs {
			if strings.Contains(fe.Namespace(), "GuestCart") {
				return utils.NewValidationError("Guest cart items must have a quantity of at least 1")
			}
		}
	}
	return utils.NewValidationError("Payment method and shipping address are required")
}

// materializeUserCart snapshots the cart into order lines, re-validating each
// line against live stock, then deletes the cart.
func (s *OrderService) materializeUserCart(tx *gorm.DB, userID uuid.UUID) ([]models.OrderItem, error) {
	cart, err := s.cart.lockCart(tx, userID, false)
	if err != nil {
		var appErr *utils.AppError
		if errors.As(err, &appErr) && appErr.Code == utils.CodeNotFound {
			return nil, utils.NewNotFoundError("Cart is empty or not found")
		}
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, utils.NewNotFoundError("Cart is empty or not found")
	}

	items := make([]models.OrderItem, 0, len(cart.Items))
	for _, line := range cart.Items {
		var product models.Product
		if err := tx.Preload("Variants").First(&product, "id = ?", line.ProductID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, utils.NewNotFoundError("Product not found: %s", line.ProductID)
			}
			return nil, fmt.Errorf("database error: %w", err)
		}

		variant := product.MatchVariant(line.Variant)
		if variant == nil || variant.Stock < line.Quantity {
			return nil, utils.NewInsufficientStockError("Insufficient stock for product: %s", product.Title)
		}

		items = append(items, snapshotLine(&product, variant, line.Quantity))
	}

	if err := deleteCart(tx, cart); err != nil {
		return nil, err
	}
	return items, nil
}

// materializeGuestCart resolves all products in one batch, then validates each
// line the same way the authenticated path does, failing fast on the first
// offender.
func (s *OrderService) materializeGuestCart(tx *gorm.DB, lines []GuestCartLine) ([]models.OrderItem, error) {
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		ids = append(ids, line.ProductID)
	}

	var products []models.Product
	if err := tx.Preload("Variants").Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}
	productsByID := make(map[uuid.UUID]*models.Product, len(products))
	for i := range products {
		productsByID[products[i].ID] = &products[i]
	}

	items := make([]models.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, ok := productsByID[line.ProductID]
		if !ok {
			return nil, utils.NewNotFoundError("Product not found: %s", line.ProductID)
		}

		variant := product.FindVariant(line.VariantID)
		if variant == nil {
			return nil, utils.NewNotFoundError("Variant not found for product: %s", product.Title)
		}
		if variant.Stock < line.Quantity {
			return nil, utils.NewInsufficientStockError("Insufficient stock for product: %s", product.Title)
		}

		items = append(items, snapshotLine(product, variant, line.Quantity))
	}
	return items, nil
}

// snapshotLine freezes the product fields an order line must keep even after
// the catalog changes underneath it.
func snapshotLine(product *models.Product, variant *models.Variant, quantity int) models.OrderItem {
	return models.OrderItem{
		ProductID:   product.ID,
		Title:       product.Title,
		Description: product.Description,
		Size:        variant.Size,
		Color:       variant.Color,
		Quantity:    quantity,
		Price:       product.UnitPrice(),
		Images:      product.Images,
	}
}

func (s *OrderService) GetUserOrders(userID uuid.UUID) ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("Items").Where("user_id = ?", userID).
		Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) GetOrder(userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Items").
		Where("id = ? AND user_id = ?", orderID, userID).
		First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NewNotFoundError("Order not found or you don't have access to it")
		}
		return nil, fmt.Errorf("database error: %w", err)
	}
	return &order, nil
}

// UpdateOrderStatus moves the order along the status state machine; any step
// the transition table does not allow is rejected.
func (s *OrderService) UpdateOrderStatus(userID uuid.UUID, orderID uuid.UUID, status models.OrderStatus) (*models.Order, error) {
	if status == "" {
		return nil, utils.NewValidationError("Status is required")
	}
	if !status.Valid() {
		return nil, utils.NewValidationError("Invalid status value")
	}

	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.CanTransitionTo(status) {
		return nil, utils.NewValidationError("Cannot change order status from %s to %s", order.Status, status)
	}

	if err := s.db.Model(order).Update("status", status).Error; err != nil {
		return nil, fmt.Errorf("failed to update order status: %w", err)
	}
	return order, nil
}

// CancelOrder is the user-facing cancellation entry point. It shares the
// transition table with UpdateOrderStatus but keeps its own message for the
// shipped/delivered refusal.
func (s *OrderService) CancelOrder(userID uuid.UUID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.GetOrder(userID, orderID)
	if err != nil {
		return nil, err
	}

	if !order.Status.Cancellable() {
		return nil, utils.NewValidationError("Cannot cancel an order that has been shipped or delivered")
	}

	if err := s.db.Model(order).Update("status", models.OrderStatusCancelled).Error; err != nil {
		return nil, fmt.Errorf("failed to cancel order: %w", err)
	}
	return order, nil
}

// GetAllOrders lists every order; the admin role check happens at the router.
func (s *OrderService) GetAllOrders() ([]models.Order, error) {
	var orders []models.Order
	if err := s.db.Preload("Items").Order("created_at DESC").Find(&orders).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch orders: %w", err)
	}
	return orders, nil
}
