package handlers

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testContext(target string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.NewValidationError("amount", "must be positive"), http.StatusBadRequest},
		{fmt.Errorf("get plan: %w", domain.ErrNotFound), http.StatusNotFound},
		{domain.ErrAlreadyExists, http.StatusConflict},
		{fmt.Errorf("delete: %w", domain.ErrInUse), http.StatusConflict},
		{domain.ErrInvalidTransition, http.StatusConflict},
		{domain.ErrInsufficientStock, http.StatusConflict},
		{domain.ErrUnauthorized, http.StatusUnauthorized},
		{fmt.Errorf("connection reset"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestParseDateRange(t *testing.T) {
	c := testContext("/x?from=2026-01-01&to=2026-01-31")
	from, to, err := parseDateRange(c)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), *from)
	assert.Equal(t, time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC), *to, "date-only upper bound covers the whole day")

	c = testContext("/x?to=2026-01-31T15:00:00Z")
	from, to, err = parseDateRange(c)
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Equal(t, time.Date(2026, 1, 31, 15, 0, 0, 0, time.UTC), *to)

	c = testContext("/x?from=yesterday")
	_, _, err = parseDateRange(c)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestParsePage(t *testing.T) {
	page := parsePage(testContext("/x?page=3&page_size=25"))
	assert.Equal(t, domain.Page{Page: 3, PageSize: 25}, page)

	page = parsePage(testContext("/x?page=-1&page_size=abc"))
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 0, page.PageSize)
}

func TestPathID(t *testing.T) {
	c := testContext("/x")
	c.Params = gin.Params{{Key: "id", Value: "6F1C1E0A-3B0E-4C55-9D55-0F7D2A6B9E11"}}
	id, ok := pathID(c)
	require.True(t, ok)
	assert.Equal(t, "6f1c1e0a-3b0e-4c55-9d55-0f7d2a6b9e11", id)

	rec := httptest.NewRecorder()
	c, _ = gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/x", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}
	_, ok = pathID(c)
	assert.False(t, ok)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.True(t, c.IsAborted())
}

func TestCheckID(t *testing.T) {
	assert.NoError(t, checkID("sale_id", "2b7d4c1e-8a0f-4f3e-9c1d-5e6f7a8b9c0d"))
	assert.NoError(t, checkID("sale_id", ""), "empty ids are reported by input validation")

	err := checkID("sale_id", "s1")
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "sale_id")
}
