package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/modaline/shop-backend/internal/models"
	"github.com/modaline/shop-backend/internal/utils"
)

func newMockOrderService(t *testing.T) (*OrderService, sqlmock.Sqlmock, *sql.DB) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	cartService := NewCartService(gormDB)
	return NewOrderService(gormDB, cartService), mock, mockDB
}

func validOrderRequest() *CreateOrderRequest {
	return &CreateOrderRequest{
		PaymentMethod: models.PaymentMethodCash,
		ShippingAddress: &models.ShippingAddress{
			Street:     "1 Main St",
			City:       "Springfield",
			State:      "IL",
			PostalCode: "62701",
		},
	}
}

func TestCreateOrderRequiresPaymentAndAddress(t *testing.T) {
	svc, _, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	userID := uuid.New()
	cases := []*CreateOrderRequest{
		{},
		{PaymentMethod: models.PaymentMethodCash},
		{ShippingAddress: &models.ShippingAddress{Street: "1 Main St"}},
		{PaymentMethod: "bitcoin", ShippingAddress: &models.ShippingAddress{Street: "1 Main St"}},
	}

	for i, req := range cases {
		_, err := svc.CreateOrder(&userID, req)
		var appErr *utils.AppError
		require.ErrorAs(t, err, &appErr, "case %d", i)
		assert.Equal(t, utils.CodeValidation, appErr.Code, "case %d", i)
		assert.Equal(t, "Payment method and shipping address are required", appErr.Message, "case %d", i)
	}
}

func TestCreateOrderNamesGuestLineValidationFailure(t *testing.T) {
	svc, _, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	req := validOrderRequest()
	req.GuestCart = []GuestCartLine{
		{ProductID: uuid.New(), VariantID: "shirt-m-white", Quantity: 0},
	}

	_, err := svc.CreateOrder(nil, req)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeValidation, appErr.Code)
	assert.Equal(t, "Guest cart items must have a quantity of at least 1", appErr.Message)
}

func TestCreateOrderAnonymousWithoutGuestCart(t *testing.T) {
	svc, mock, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.CreateOrder(nil, validOrderRequest())

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeValidation, appErr.Code)
	assert.Equal(t, "No cart data provided", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderUserWithoutCart(t *testing.T) {
	svc, mock, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1`).
		WithArgs(userID, 1).
		WillReturnError(gorm.ErrRecordNotFound)
	mock.ExpectRollback()

	_, err := svc.CreateOrder(&userID, validOrderRequest())

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeNotFound, appErr.Code)
	assert.Equal(t, "Cart is empty or not found", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateOrderFromUserCart(t *testing.T) {
	svc, mock, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	userID := uuid.New()
	cartID := uuid.New()
	shirtID := uuid.New()
	hatID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT \* FROM "carts" WHERE user_id = \$1`).
		WithArgs(userID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "total_amount"}).
			AddRow(cartID, userID, decimal.NewFromInt(90)))
	mock.ExpectQuery(`SELECT \* FROM "cart_items" WHERE cart_id = \$1`).
		WithArgs(cartID).
		WillReturnRows(sqlmock.NewRows(
			[]string{"id", "cart_id", "product_id", "quantity", "variant_variant_id", "variant_size", "variant_color"}).
			AddRow(uuid.New(), cartID, shirtID, 2, "shirt-m-white", "M", "white").
			AddRow(uuid.New(), cartID, hatID, 1, "hat-one-size", "one-size", "black"))

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WithArgs(shirtID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price"}).
			AddRow(shirtID, "Linen Shirt", decimal.NewFromInt(20)))
	mock.ExpectQuery(`SELECT \* FROM "variants" WHERE`).
		WithArgs(shirtID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "variant_id", "size", "color", "stock"}).
			AddRow(uuid.New(), shirtID, "shirt-m-white", "M", "white", 5))

	mock.ExpectQuery(`SELECT \* FROM "products" WHERE id = \$1`).
		WithArgs(hatID, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "price"}).
			AddRow(hatID, "Wool Hat", decimal.NewFromInt(50)))
	mock.ExpectQuery(`SELECT \* FROM "variants" WHERE`).
		WithArgs(hatID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "product_id", "variant_id", "size", "color", "stock"}).
			AddRow(uuid.New(), hatID, "hat-one-size", "one-size", "black", 3))

	mock.ExpectExec(`DELETE FROM "cart_items" WHERE cart_id = \$1`).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(`DELETE FROM "carts"`).
		WithArgs(cartID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	orderID := uuid.New()
	mock.ExpectQuery(`INSERT INTO "orders"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(orderID))
	mock.ExpectQuery(`INSERT INTO "order_items"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).
			AddRow(uuid.New()).
			AddRow(uuid.New()))
	mock.ExpectCommit()

	order, err := svc.CreateOrder(&userID, validOrderRequest())

	require.NoError(t, err)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 2)
	// 2 x 20 for the shirt plus 1 x 50 for the hat.
	assert.True(t, order.TotalAmount.Equal(decimal.NewFromInt(90)),
		"total %s", order.TotalAmount)
	assert.Equal(t, "Linen Shirt", order.Items[0].Title)
	assert.Equal(t, 2, order.Items[0].Quantity)
	assert.Equal(t, "Wool Hat", order.Items[1].Title)
	// The DELETE expectations prove the cart was removed in the same transaction.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateOrderStatusRejectsUnknownStatus(t *testing.T) {
	svc, _, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	_, err := svc.UpdateOrderStatus(uuid.New(), uuid.New(), "returned")

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeValidation, appErr.Code)

	_, err = svc.UpdateOrderStatus(uuid.New(), uuid.New(), "")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeValidation, appErr.Code)
}

func TestUpdateOrderStatusRejectsIllegalTransition(t *testing.T) {
	svc, mock, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	userID := uuid.New()
	orderID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status"}).
		AddRow(orderID, userID, decimal.NewFromInt(100), "shipped")

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE`).
		WithArgs(orderID, userID, 1).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	_, err := svc.UpdateOrderStatus(userID, orderID, models.OrderStatusCancelled)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeValidation, appErr.Code)
	assert.Contains(t, appErr.Message, "Cannot change order status from shipped to cancelled")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCancelOrderRefusesShipped(t *testing.T) {
	svc, mock, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	userID := uuid.New()
	orderID := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "user_id", "total_amount", "status"}).
		AddRow(orderID, userID, decimal.NewFromInt(100), "shipped")

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE`).
		WithArgs(orderID, userID, 1).
		WillReturnRows(rows)
	mock.ExpectQuery(`SELECT \* FROM "order_items" WHERE`).
		WithArgs(orderID).
		WillReturnRows(sqlmock.NewRows([]string{"id", "order_id"}))

	_, err := svc.CancelOrder(userID, orderID)

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Cannot cancel an order that has been shipped or delivered", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrderScopedToOwner(t *testing.T) {
	svc, mock, mockDB := newMockOrderService(t)
	defer mockDB.Close()

	userID := uuid.New()
	orderID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "orders" WHERE`).
		WithArgs(orderID, userID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	order, err := svc.GetOrder(userID, orderID)

	assert.Nil(t, order)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSnapshotLineFreezesProductFields(t *testing.T) {
	discount := decimal.NewFromInt(35)
	product := &models.Product{
		BaseModel:     models.BaseModel{ID: uuid.New()},
		Title:         "Linen Shirt",
		Description:   "A breezy shirt",
		Price:         decimal.NewFromInt(50),
		DiscountPrice: &discount,
		Images:        []string{"https://cdn.example.com/shirt.jpg"},
	}
	variant := &models.Variant{VariantID: "shirt-m-white", Size: "M", Color: "white"}

	item := snapshotLine(product, variant, 3)

	assert.Equal(t, product.ID, item.ProductID)
	assert.Equal(t, "Linen Shirt", item.Title)
	assert.Equal(t, "M", item.Size)
	assert.Equal(t, "white", item.Color)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.Price.Equal(discount))
}
