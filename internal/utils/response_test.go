package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordResponse(t *testing.T, fn func(c *gin.Context)) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/test", nil)
	fn(c)

	var body map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w, body
}

func TestSuccessEnvelope(t *testing.T) {
	w, body := recordResponse(t, func(c *gin.Context) {
		SuccessResponse(c, gin.H{"cart": gin.H{"items": []string{}}})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", body["status"])
	assert.Contains(t, body["data"], "cart")
	assert.NotContains(t, body, "message")
}

func TestListEnvelopeCarriesResults(t *testing.T) {
	w, body := recordResponse(t, func(c *gin.Context) {
		ListResponse(c, 3, gin.H{"orders": []int{1, 2, 3}})
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(3), body["results"])
}

func TestErrorResponseMapsAppError(t *testing.T) {
	w, body := recordResponse(t, func(c *gin.Context) {
		ErrorResponse(c, NewNotFoundError("No product found with that ID"))
	})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "fail", body["status"])
	assert.Equal(t, "No product found with that ID", body["message"])
}

func TestErrorResponseHidesUnknownErrors(t *testing.T) {
	w, body := recordResponse(t, func(c *gin.Context) {
		ErrorResponse(c, errors.New("pq: connection refused"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "error", body["status"])
	assert.Equal(t, "Something went wrong", body["message"])
}

func TestErrorResponseUnwrapsWrappedAppError(t *testing.T) {
	wrapped := NewInsufficientStockError("Insufficient stock for product: Linen Shirt")

	w, body := recordResponse(t, func(c *gin.Context) {
		ErrorResponse(c, wrapped)
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "fail", body["status"])
	assert.Contains(t, body["message"], "Linen Shirt")
}
