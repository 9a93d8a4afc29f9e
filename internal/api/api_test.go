package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/andresuchdata/joyeria/backend-go/internal/auth"
	"github.com/andresuchdata/joyeria/backend-go/internal/catalog"
	"github.com/andresuchdata/joyeria/backend-go/internal/domain"
	"github.com/andresuchdata/joyeria/backend-go/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const goodToken = "good-token"

const (
	productID  = "6f1c1e0a-3b0e-4c55-9d55-0f7d2a6b9e11"
	missingID  = "00000000-0000-4000-8000-000000000404"
	brokenID   = "00000000-0000-4000-8000-000000000500"
	closedID   = "00000000-0000-4000-8000-000000000409"
	reservedID = "00000000-0000-4000-8000-000000000410"
	planSaleID = "2b7d4c1e-8a0f-4f3e-9c1d-5e6f7a8b9c0d"
)

type stubTokens struct{}

func (stubTokens) Authenticate(raw string) (*auth.Claims, error) {
	if raw != goodToken {
		return nil, domain.ErrUnauthorized
	}
	return &auth.Claims{UserID: "user-1", Email: "ana@example.com", Role: "staff"}, nil
}

type stubAuth struct {
	signedOut bool
}

func (s *stubAuth) SignUp(_ context.Context, in domain.SignUpInput) (*domain.User, error) {
	return &domain.User{ID: "user-2", Email: in.Email, Name: in.Name, Role: "staff"}, nil
}

func (s *stubAuth) SignIn(_ context.Context, in domain.SignInInput, _ domain.ClientInfo) (*service.Session, error) {
	if in.Password != "secret-pass" {
		return nil, domain.ErrUnauthorized
	}
	return &service.Session{Token: goodToken, User: &domain.User{ID: "user-1", Email: in.Email}}, nil
}

func (s *stubAuth) SignOut(context.Context, *auth.Claims, domain.ClientInfo) {
	s.signedOut = true
}

func (s *stubAuth) Me(_ context.Context, userID string) (*domain.User, error) {
	return &domain.User{ID: userID, Email: "ana@example.com"}, nil
}

type stubProducts struct {
	created      *string
	importedFile string
	lastFilter   domain.ProductFilter
	deleted      []string
}

func (s *stubProducts) CreateProduct(_ context.Context, in domain.CreateProductInput, userID *string) (*domain.Product, error) {
	if in.Name == "" {
		return nil, domain.NewValidationError("name", "is required")
	}
	s.created = userID
	return &domain.Product{ID: "prod-1", Name: in.Name}, nil
}

func (s *stubProducts) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	if id == missingID {
		return nil, domain.ErrNotFound
	}
	if id == brokenID {
		return nil, io.ErrUnexpectedEOF
	}
	return &domain.Product{ID: id, Name: "Anillo"}, nil
}

func (s *stubProducts) ListProducts(_ context.Context, filter domain.ProductFilter) ([]*domain.Product, int, error) {
	s.lastFilter = filter
	return nil, 0, nil
}

func (s *stubProducts) UpdateProduct(_ context.Context, id string, _ domain.UpdateProductInput) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}

func (s *stubProducts) DeleteProduct(_ context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	if id == reservedID {
		return fmt.Errorf("failed to delete product %s: %w: product has reservations", id, domain.ErrInUse)
	}
	return nil
}

func (s *stubProducts) UploadImage(_ context.Context, id string, _ []byte) (*domain.Product, error) {
	return &domain.Product{ID: id}, nil
}

func (s *stubProducts) ImportCatalog(_ context.Context, filename string, _ io.Reader, _ *string) (*catalog.Report, error) {
	s.importedFile = filename
	return &catalog.Report{File: filename, Created: 2}, nil
}

type stubDeposits struct{}

func (stubDeposits) QuoteDeposit(_ context.Context, productID string) (*service.DepositQuote, error) {
	return &service.DepositQuote{
		ProductID:        productID,
		TotalAmount:      decimal.NewFromInt(1000),
		MinimumDeposit:   decimal.NewFromInt(100),
		SuggestedDeposit: decimal.NewFromInt(300),
	}, nil
}

type stubPlans struct{}

func (stubPlans) CreatePlan(context.Context, domain.CreatePlanInput, *string) (*service.PlanView, error) {
	return nil, domain.ErrAlreadyExists
}

func (stubPlans) RegisterPayment(_ context.Context, installmentID string, _ domain.RegisterPaymentInput) (*service.PlanView, error) {
	if installmentID == closedID {
		return nil, domain.ErrInvalidTransition
	}
	return &service.PlanView{PaymentPlan: &domain.PaymentPlan{ID: "plan-1"}, StatusLabel: "in_progress"}, nil
}

func (stubPlans) CancelPlan(context.Context, string) (*service.PlanView, error) {
	return nil, domain.ErrNotFound
}

func (stubPlans) GetPlan(context.Context, string) (*service.PlanView, error) {
	return nil, domain.ErrNotFound
}

func (stubPlans) ListPlans(context.Context, domain.PlanFilter) ([]*service.PlanView, int, error) {
	return nil, 0, nil
}

func newTestRouter(t *testing.T) (*gin.Engine, *stubAuth, *stubProducts) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	authSvc := &stubAuth{}
	products := &stubProducts{}
	router := NewRouter(&Services{
		Auth:     authSvc,
		Tokens:   stubTokens{},
		Products: products,
		Deposits: stubDeposits{},
		Plans:    stubPlans{},
	}, Options{ServiceName: "Joyeria API", AllowedOrigins: []string{"http://shop.local"}})
	return router, authSvc, products
}

func do(router http.Handler, method, path string, body io.Reader, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func TestHealth(t *testing.T) {
	router, _, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/api/v1/health"} {
		rec := do(router, http.MethodGet, path, nil, "")
		require.Equal(t, http.StatusOK, rec.Code, path)

		body := decodeBody(t, rec)
		assert.Equal(t, "ok", body["status"])
		assert.Equal(t, "Joyeria API", body["service"])
		_, err := time.Parse(time.RFC3339, body["timestamp"].(string))
		assert.NoError(t, err)
	}
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/products", nil, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/products", nil, "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/products", nil, goodToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(router, http.MethodGet, "/api/v1/products?access_token="+goodToken, nil, "")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSignInAndMe(t *testing.T) {
	router, authSvc, _ := newTestRouter(t)

	rec := do(router, http.MethodPost, "/api/v1/auth/signin",
		bytes.NewBufferString(`{"email":"ana@example.com","password":"wrong-pass"}`), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(router, http.MethodPost, "/api/v1/auth/signin",
		bytes.NewBufferString(`{"email":"ana@example.com","password":"secret-pass"}`), "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, goodToken, decodeBody(t, rec)["token"])

	rec = do(router, http.MethodGet, "/api/v1/auth/me", nil, goodToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", decodeBody(t, rec)["id"])

	rec = do(router, http.MethodPost, "/api/v1/auth/signout", nil, goodToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, authSvc.signedOut)
}

func TestErrorMapping(t *testing.T) {
	router, _, _ := newTestRouter(t)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantError  string
	}{
		{"validation", http.MethodPost, "/api/v1/products", `{"name":""}`, http.StatusBadRequest, "name"},
		{"malformed body", http.MethodPost, "/api/v1/products", `{"name":`, http.StatusBadRequest, "invalid JSON"},
		{"not found", http.MethodGet, "/api/v1/products/" + missingID, "", http.StatusNotFound, "not found"},
		{"malformed path id", http.MethodGet, "/api/v1/products/abc", "", http.StatusNotFound, "not found"},
		{"malformed installment id", http.MethodPost, "/api/v1/installments/1/payments", `{"amount":"10"}`, http.StatusNotFound, "not found"},
		{"already exists", http.MethodPost, "/api/v1/plans", `{"sale_id":"` + planSaleID + `","installment_count":3,"due_date":"2026-02-01"}`, http.StatusConflict, "already exists"},
		{"malformed body id", http.MethodPost, "/api/v1/plans", `{"sale_id":"s1","installment_count":3,"due_date":"2026-02-01"}`, http.StatusBadRequest, "sale_id"},
		{"invalid transition", http.MethodPost, "/api/v1/installments/" + closedID + "/payments", `{"amount":"10"}`, http.StatusConflict, "invalid status transition"},
		{"in use", http.MethodDelete, "/api/v1/products/" + reservedID, "", http.StatusConflict, "product has reservations"},
		{"internal", http.MethodGet, "/api/v1/products/" + brokenID, "", http.StatusInternalServerError, "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body io.Reader
			if tt.body != "" {
				body = bytes.NewBufferString(tt.body)
			}
			rec := do(router, tt.method, tt.path, body, goodToken)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, decodeBody(t, rec)["error"], tt.wantError)
		})
	}
}

func TestCreateProductPassesUserID(t *testing.T) {
	router, _, products := newTestRouter(t)

	rec := do(router, http.MethodPost, "/api/v1/products", bytes.NewBufferString(`{"name":"Anillo"}`), goodToken)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.NotNil(t, products.created)
	assert.Equal(t, "user-1", *products.created)
}

func TestListProductsEmptyPage(t *testing.T) {
	router, _, products := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/products?search=%20oro%20&available=true&page=2&page_size=10", nil, goodToken)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, []any{}, body["items"])
	assert.EqualValues(t, 2, body["page"])
	assert.EqualValues(t, 10, body["page_size"])
	assert.Equal(t, "oro", products.lastFilter.Search)
	assert.True(t, products.lastFilter.OnlyAvailable)
}

func TestDepositQuote(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/products/"+productID+"/deposit", nil, goodToken)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody(t, rec)
	assert.Equal(t, productID, body["product_id"])
	assert.Equal(t, "100", body["minimum_deposit"])
}

func TestDeleteProduct(t *testing.T) {
	router, _, products := newTestRouter(t)

	rec := do(router, http.MethodDelete, "/api/v1/products/"+productID, nil, goodToken)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = do(router, http.MethodDelete, "/api/v1/products/"+reservedID, nil, goodToken)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = do(router, http.MethodDelete, "/api/v1/products/not-a-uuid", nil, goodToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	assert.Equal(t, []string{productID, reservedID}, products.deleted, "malformed ids never reach the service")
}

func TestImportCatalog(t *testing.T) {
	router, _, products := newTestRouter(t)

	upload := func(filename string) *httptest.ResponseRecorder {
		var buf bytes.Buffer
		mw := multipart.NewWriter(&buf)
		fw, err := mw.CreateFormFile("file", filename)
		require.NoError(t, err)
		_, err = fw.Write([]byte("name,sale_price\nAnillo,100\n"))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/products/import", &buf)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+goodToken)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := upload("catalog.csv")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "catalog.csv", products.importedFile)
	assert.EqualValues(t, 2, decodeBody(t, rec)["created"])

	rec = upload("catalog.pdf")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExtractIsPublic(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := do(router, http.MethodPost, "/api/v1/ai/extract", bytes.NewBufferString(`{"text":""}`), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUnconfiguredServicesHaveNoRoutes(t *testing.T) {
	router, _, _ := newTestRouter(t)

	rec := do(router, http.MethodGet, "/api/v1/sales", nil, goodToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCORSPreflight(t *testing.T) {
	router, _, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/products", nil)
	req.Header.Set("Origin", "http://shop.local")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "http://shop.local", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestNormalizeAllowedOrigins(t *testing.T) {
	origins, allowAll := normalizeAllowedOrigins([]string{"http://a.local, http://b.local", " "})
	assert.Equal(t, []string{"http://a.local", "http://b.local"}, origins)
	assert.False(t, allowAll)

	_, allowAll = normalizeAllowedOrigins([]string{"*"})
	assert.True(t, allowAll)
}
