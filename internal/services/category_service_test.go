package services

import (
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/modaline/shop-backend/internal/utils"
)

func newMockCategoryService(t *testing.T) (*CategoryService, sqlmock.Sqlmock, *sql.DB) {
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

	return NewCategoryService(gormDB), mock, mockDB
}

func TestGetCategoryBySlugNotFound(t *testing.T) {
	svc, mock, mockDB := newMockCategoryService(t)
	defer mockDB.Close()

	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE slug = \$1`).
		WithArgs("no-such-slug", 1).
		WillReturnError(gorm.ErrRecordNotFound)

	category, err := svc.GetCategoryBySlug("no-such-slug")

	assert.Nil(t, category)
	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, utils.CodeNotFound, appErr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateCategoryValidation(t *testing.T) {
	svc, _, mockDB := newMockCategoryService(t)
	defer mockDB.Close()

	cases := []*CreateCategoryRequest{
		{},
		{Name: "x", Type: "product"},
		{Name: "Sneakers", Type: "footwear"},
	}
	for i, req := range cases {
		_, err := svc.CreateCategory(req)
		var appErr *utils.AppError
		require.ErrorAs(t, err, &appErr, "case %d", i)
		assert.Equal(t, utils.CodeValidation, appErr.Code, "case %d", i)
	}
}

func TestCreateCategoryRejectsMissingParent(t *testing.T) {
	svc, mock, mockDB := newMockCategoryService(t)
	defer mockDB.Close()

	parentID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE id = \$1`).
		WithArgs(parentID, 1).
		WillReturnError(gorm.ErrRecordNotFound)

	_, err := svc.CreateCategory(&CreateCategoryRequest{
		Name:   "Sneakers",
		Type:   "product",
		Parent: &parentID,
	})

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Parent category does not exist", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateCategoryRejectsSelfParent(t *testing.T) {
	svc, mock, mockDB := newMockCategoryService(t)
	defer mockDB.Close()

	id := uuid.New()

	rows := sqlmock.NewRows([]string{"id", "name", "slug", "type"}).
		AddRow(id, "Sneakers", "sneakers", "product")
	mock.ExpectQuery(`SELECT \* FROM "categories" WHERE id = \$1`).
		WithArgs(id, 1).
		WillReturnRows(rows)

	_, err := svc.UpdateCategory(id, &UpdateCategoryRequest{Parent: &id})

	var appErr *utils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "Category cannot be its own parent", appErr.Message)
	assert.NoError(t, mock.ExpectationsWereMet())
}
