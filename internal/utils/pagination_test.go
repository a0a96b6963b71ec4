package utils

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsForQuery(t *testing.T, query string) PaginationParams {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/products?"+query, nil)
	return GetPaginationParams(c)
}

func TestGetPaginationParamsDefaults(t *testing.T) {
	params := paramsForQuery(t, "")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
	assert.Equal(t, "", params.Sort)
}

func TestGetPaginationParamsClampsBadValues(t *testing.T) {
	params := paramsForQuery(t, "page=0&limit=-5")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)

	params = paramsForQuery(t, "page=-3&limit=500")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)

	params = paramsForQuery(t, "page=abc&limit=xyz")
	assert.Equal(t, 1, params.Page)
	assert.Equal(t, 10, params.Limit)
}

func TestGetPaginationParamsPassesValidValues(t *testing.T) {
	params := paramsForQuery(t, "page=3&limit=25&sort=-price")
	assert.Equal(t, 3, params.Page)
	assert.Equal(t, 25, params.Limit)
	assert.Equal(t, "-price", params.Sort)
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 0, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(1, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 2, TotalPages(11, 10))
	assert.Equal(t, 5, TotalPages(41, 10))
}
