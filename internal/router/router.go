package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"
	echoSwagger "github.com/swaggo/echo-swagger"

	"fashionec/internal/auth"
	"fashionec/internal/config"
	"fashionec/internal/handler"
)

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth     *handler.AuthHandler
	Product  *handler.ProductHandler
	Category *handler.CategoryHandler
	Order    *handler.OrderHandler
	Admin    *handler.AdminHandler
	User     *handler.UserHandler
}

// Register wires routes and middleware.
func Register(e *echo.Echo, cfg *config.Config, guard *auth.Guard, h Handlers) {
	e.Use(middleware.RequestID())
	e.Use(middleware.RequestLoggerWithConfig(requestLoggerConfig()))
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins:     AllowedOrigins(cfg.FrontendURL),
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"message": "Fashion EC API"})
	})
	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", h.Auth.Register)
	api.POST("/auth/login", h.Auth.Login)
	api.GET("/products", h.Product.ListProducts)
	api.GET("/products/:id", h.Product.GetProduct)
	api.GET("/categories", h.Category.ListCategories)
	api.GET("/users/:id", h.User.GetUser)
	api.GET("/users/:id/products", h.User.ListUserProducts)

	// Secured routes (require a bearer token of an active user)
	secured := api.Group("", guard.Middleware())
	secured.GET("/auth/me", h.Auth.Me)
	secured.POST("/products", h.Product.CreateProduct)
	secured.PUT("/products/:id", h.Product.UpdateProduct)
	secured.DELETE("/products/:id", h.Product.DeleteProduct)
	secured.GET("/my-products", h.Product.MyProducts)
	secured.POST("/orders", h.Order.CreateOrder)
	secured.GET("/orders", h.Order.ListOrders)
	secured.GET("/orders/:id", h.Order.GetOrder)

	// Admin routes
	admin := api.Group("/admin", guard.Middleware(), guard.AdminOnly())
	admin.GET("/users", h.Admin.ListUsers)
	admin.PUT("/users/:id", h.Admin.UpdateUser)
	admin.DELETE("/users/:id", h.Admin.DeleteUser)
}

// AllowedOrigins returns the CORS origins for the configured frontend.
func AllowedOrigins(frontendURL string) []string {
	const local = "http://localhost:3000"
	if frontendURL == "" || frontendURL == local {
		return []string{local}
	}
	return []string{frontendURL, local}
}

func requestLoggerConfig() middleware.RequestLoggerConfig {
	return middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := logrus.WithFields(logrus.Fields{
				"method":     v.Method,
				"uri":        v.URI,
				"status":     v.Status,
				"latency":    v.Latency.String(),
				"request_id": v.RequestID,
			})
			if v.Error != nil && v.Status >= http.StatusInternalServerError {
				entry.WithError(v.Error).Error("request")
				return nil
			}
			entry.Info("request")
			return nil
		},
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
