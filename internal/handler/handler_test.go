package handler

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"fashionec/internal/auth"
	apperrors "fashionec/internal/errors"
	"fashionec/internal/model"
	"fashionec/internal/service"
)

type testValidator struct {
	v *validator.Validate
}

func (tv *testValidator) Validate(i interface{}) error { return tv.v.Struct(i) }

type stubUsers map[string]*model.User

func (s stubUsers) FindByUsername(_ context.Context, username string) (*model.User, error) {
	if u, ok := s[username]; ok {
		return u, nil
	}
	return nil, apperrors.ErrInvalidToken
}

// MockAuthService is a mock implementation of AuthService.
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, input service.RegisterInput) (*model.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, login, password string) (*service.LoginResult, error) {
	args := m.Called(ctx, login, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LoginResult), args.Error(1)
}

// MockProductService is a mock implementation of ProductService.
type MockProductService struct {
	mock.Mock
}

func (m *MockProductService) Create(ctx context.Context, input service.ProductInput, seller *model.User) (*model.Product, error) {
	args := m.Called(ctx, input, seller)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uint) (*model.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) List(ctx context.Context, skip, limit int) ([]model.Product, error) {
	args := m.Called(ctx, skip, limit)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) ListMine(ctx context.Context, seller *model.User) ([]model.Product, error) {
	args := m.Called(ctx, seller)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) ListBySeller(ctx context.Context, sellerID uint) ([]model.Product, error) {
	args := m.Called(ctx, sellerID)
	return args.Get(0).([]model.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uint, patch model.ProductPatch, actor *model.User) (*model.Product, error) {
	args := m.Called(ctx, id, patch, actor)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uint, actor *model.User) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}

var seller = &model.User{ID: 10, Username: "seller", Role: model.RoleUser, IsActive: true}

type testServer struct {
	echo     *echo.Echo
	auth     *MockAuthService
	products *MockProductService
	token    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	tokens := auth.NewJWTService("handler-secret", time.Hour)
	guard := auth.NewGuard(tokens, stubUsers{"seller": seller})
	token, _, err := tokens.Issue("seller")
	require.NoError(t, err)

	ts := &testServer{
		echo:     echo.New(),
		auth:     new(MockAuthService),
		products: new(MockProductService),
		token:    token,
	}
	ts.echo.Validator = &testValidator{v: validator.New()}

	authHandler := NewAuthHandler(ts.auth)
	productHandler := NewProductHandler(ts.products)

	ts.echo.POST("/api/auth/register", authHandler.Register)
	ts.echo.POST("/api/auth/login", authHandler.Login)
	ts.echo.GET("/api/products", productHandler.ListProducts)
	secured := ts.echo.Group("/api", guard.Middleware())
	secured.GET("/auth/me", authHandler.Me)
	secured.PUT("/products/:id", productHandler.UpdateProduct)
	secured.DELETE("/products/:id", productHandler.DeleteProduct)
	return ts
}

func (ts *testServer) do(method, target, contentType, body string, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	if authed {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+ts.token)
	}
	rec := httptest.NewRecorder()
	ts.echo.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Login(t *testing.T) {
	ts := newTestServer(t)
	result := &service.LoginResult{
		AccessToken: "token-value",
		ExpiresAt:   time.Now().Add(30 * time.Minute),
		User:        &model.User{ID: 1, Username: "admin", Role: model.RoleAdmin},
	}
	ts.auth.On("Login", mock.Anything, "admin", "admin123").Return(result, nil)
	ts.auth.On("Login", mock.Anything, "admin@example.com", "admin123").Return(result, nil)
	ts.auth.On("Login", mock.Anything, "admin", "wrong").Return(nil, apperrors.ErrInvalidCredentials)

	form := url.Values{"username": {"admin"}, "password": {"admin123"}}.Encode()
	rec := ts.do(http.MethodPost, "/api/auth/login", echo.MIMEApplicationForm, form, false)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"token_type":"bearer"`)
	assert.Contains(t, rec.Body.String(), `"role":"admin"`)
	assert.Contains(t, rec.Body.String(), `"user_id":1`)

	rec = ts.do(http.MethodPost, "/api/auth/login", echo.MIMEApplicationJSON, `{"email":"admin@example.com","password":"admin123"}`, false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodPost, "/api/auth/login", echo.MIMEApplicationJSON, `{"username":"admin","password":"wrong"}`, false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_CREDENTIALS")

	rec = ts.do(http.MethodPost, "/api/auth/login", echo.MIMEApplicationJSON, `{"password":"admin123"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.auth.AssertExpectations(t)
}

func TestAuthHandler_Register(t *testing.T) {
	ts := newTestServer(t)
	ts.auth.On("Register", mock.Anything, service.RegisterInput{Email: "new@example.com", Username: "newbie", Password: "pw123456"}).
		Return(&model.User{ID: 3, Email: "new@example.com", Username: "newbie", Role: model.RoleUser, PasswordHash: "secret-hash"}, nil)
	ts.auth.On("Register", mock.Anything, service.RegisterInput{Email: "taken@example.com", Username: "other", Password: "pw123456"}).
		Return(nil, apperrors.ErrEmailTaken)

	rec := ts.do(http.MethodPost, "/api/auth/register", echo.MIMEApplicationJSON,
		`{"email":"new@example.com","username":"newbie","password":"pw123456","role":"admin"}`, false)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"role":"user"`)
	assert.NotContains(t, rec.Body.String(), "secret-hash")

	rec = ts.do(http.MethodPost, "/api/auth/register", echo.MIMEApplicationJSON,
		`{"email":"taken@example.com","username":"other","password":"pw123456"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EMAIL_TAKEN")

	rec = ts.do(http.MethodPost, "/api/auth/register", echo.MIMEApplicationJSON,
		`{"email":"not-an-email","username":"x","password":"pw"}`, false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_REQUEST")
}

func TestAuthHandler_Me(t *testing.T) {
	ts := newTestServer(t)

	rec := ts.do(http.MethodGet, "/api/auth/me", "", "", true)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"username":"seller"`)

	rec = ts.do(http.MethodGet, "/api/auth/me", "", "", false)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestProductHandler_ListProducts(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("List", mock.Anything, 20, 10).Return([]model.Product{}, nil)

	rec := ts.do(http.MethodGet, "/api/products?skip=20&limit=10", "", "", false)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = ts.do(http.MethodGet, "/api/products?limit=ten", "", "", false)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	ts.products.AssertExpectations(t)
}

func TestProductHandler_UpdateProduct(t *testing.T) {
	priceOnly := mock.MatchedBy(func(p model.ProductPatch) bool {
		return p.Price.Set && p.Price.Value.Equal(decimal.NewFromInt(3000)) && !p.Name.Set && !p.Status.Set
	})

	tests := []struct {
		name       string
		target     string
		body       string
		setup      func(m *MockProductService)
		authed     bool
		wantStatus int
		wantCode   string
	}{
		{
			name:   "owner update",
			target: "/api/products/7",
			body:   `{"price":3000}`,
			authed: true,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, uint(7), priceOnly, seller).Return(&model.Product{ID: 7, Price: decimal.NewFromInt(3000)}, nil)
			},
			wantStatus: http.StatusOK,
		},
		{
			name:   "not owner",
			target: "/api/products/7",
			body:   `{"price":3000}`,
			authed: true,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, uint(7), priceOnly, seller).Return(nil, apperrors.ErrForbidden)
			},
			wantStatus: http.StatusForbidden,
			wantCode:   "FORBIDDEN",
		},
		{
			name:   "deleted product",
			target: "/api/products/7",
			body:   `{"price":3000}`,
			authed: true,
			setup: func(m *MockProductService) {
				m.On("Update", mock.Anything, uint(7), priceOnly, seller).Return(nil, apperrors.ErrProductDeleted)
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "PRODUCT_DELETED",
		},
		{
			name:       "bad id",
			target:     "/api/products/abc",
			body:       `{}`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "malformed body",
			target:     "/api/products/7",
			body:       `{"price":`,
			authed:     true,
			wantStatus: http.StatusBadRequest,
			wantCode:   "INVALID_REQUEST",
		},
		{
			name:       "no token",
			target:     "/api/products/7",
			body:       `{"price":3000}`,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "MISSING_TOKEN",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			if tt.setup != nil {
				tt.setup(ts.products)
			}

			rec := ts.do(http.MethodPut, tt.target, echo.MIMEApplicationJSON, tt.body, tt.authed)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantCode != "" {
				assert.Contains(t, rec.Body.String(), tt.wantCode)
			}
			ts.products.AssertExpectations(t)
		})
	}
}

func TestProductHandler_ErrorBodyHidesDetail(t *testing.T) {
	ts := newTestServer(t)
	ts.products.On("Update", mock.Anything, uint(7), mock.Anything, seller).
		Return(nil, fmt.Errorf("%w: 99", apperrors.ErrInvalidCategory))

	rec := ts.do(http.MethodPut, "/api/products/7", echo.MIMEApplicationJSON, `{"category_id":99}`, true)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"category does not exist","code":"INVALID_CATEGORY"}`, rec.Body.String())
}

func TestProductHandler_DeleteProduct(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"soft delete", nil, http.StatusOK},
		{"missing", apperrors.ErrProductNotFound, http.StatusNotFound},
		{"not owner", apperrors.ErrForbidden, http.StatusForbidden},
		{"store failure", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.products.On("Delete", mock.Anything, uint(7), seller).Return(tt.err)

			rec := ts.do(http.MethodDelete, "/api/products/7", "", "", true)
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusInternalServerError {
				assert.NotContains(t, rec.Body.String(), assert.AnError.Error())
			}
		})
	}
}
