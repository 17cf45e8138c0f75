package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"fashionec/internal/auth"
	"fashionec/internal/config"
	"fashionec/internal/handler"
)

func newTestEcho() *echo.Echo {
	e := echo.New()
	cfg := &config.Config{FrontendURL: "https://shop.example.com"}
	guard := auth.NewGuard(auth.NewJWTService("router-secret", time.Hour), nil)
	Register(e, cfg, guard, Handlers{
		Auth:     handler.NewAuthHandler(nil),
		Product:  handler.NewProductHandler(nil),
		Category: handler.NewCategoryHandler(nil),
		Order:    handler.NewOrderHandler(nil),
		Admin:    handler.NewAdminHandler(nil),
		User:     handler.NewUserHandler(nil, nil),
	})
	return e
}

func TestRegister_PublicEndpoints(t *testing.T) {
	e := newTestEcho()

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Fashion EC API")

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
}

func TestRegister_SecuredRoutesNeedToken(t *testing.T) {
	e := newTestEcho()

	routes := []struct {
		method, path string
	}{
		{http.MethodGet, "/api/auth/me"},
		{http.MethodPost, "/api/products"},
		{http.MethodPut, "/api/products/1"},
		{http.MethodDelete, "/api/products/1"},
		{http.MethodGet, "/api/my-products"},
		{http.MethodPost, "/api/orders"},
		{http.MethodGet, "/api/orders"},
		{http.MethodGet, "/api/orders/1"},
		{http.MethodGet, "/api/admin/users"},
		{http.MethodPut, "/api/admin/users/1"},
		{http.MethodDelete, "/api/admin/users/1"},
	}

	for _, r := range routes {
		t.Run(r.method+" "+r.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, httptest.NewRequest(r.method, r.path, nil))
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
		})
	}
}

func TestRegister_CORS(t *testing.T) {
	e := newTestEcho()

	for _, origin := range []string{"https://shop.example.com", "http://localhost:3000"} {
		req := httptest.NewRequest(http.MethodOptions, "/api/products", nil)
		req.Header.Set(echo.HeaderOrigin, origin)
		req.Header.Set(echo.HeaderAccessControlRequestMethod, http.MethodGet)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.Equal(t, origin, rec.Header().Get(echo.HeaderAccessControlAllowOrigin))
		assert.Equal(t, "true", rec.Header().Get(echo.HeaderAccessControlAllowCredentials))
	}
}

func TestAllowedOrigins(t *testing.T) {
	assert.Equal(t, []string{"http://localhost:3000"}, AllowedOrigins(""))
	assert.Equal(t, []string{"http://localhost:3000"}, AllowedOrigins("http://localhost:3000"))
	assert.Equal(t, []string{"https://shop.example.com", "http://localhost:3000"}, AllowedOrigins("https://shop.example.com"))
}
