package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"fashionec/docs"
	"fashionec/internal/auth"
	"fashionec/internal/cache"
	"fashionec/internal/config"
	"fashionec/internal/db"
	"fashionec/internal/handler"
	"fashionec/internal/logging"
	"fashionec/internal/repository"
	"fashionec/internal/router"
	"fashionec/internal/service"
)

// @title Fashion EC API
// @version 1.0
// @description Fashion marketplace API: accounts, product listings, categories and orders.
// @host localhost:8000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.IsProduction())

	// Prices and totals are sent as JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true

	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		logrus.Warn("RESET_DB=true detected, dropping all tables")
		if err := db.Reset(gormDB); err != nil {
			logrus.Fatalf("reset database: %v", err)
		}
	}
	if err := db.Migrate(gormDB); err != nil {
		logrus.Fatalf("%v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	if err := cacheClient.Ping(context.Background()); err != nil {
		logrus.WithError(err).Warn("redis unavailable, serving without cache")
	}
	defer cacheClient.Close()

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	orderRepo := repository.NewOrderRepository(gormDB)

	// Initialize auth components
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)
	jwtService := auth.NewJWTService(cfg.JWTSecret, cfg.TokenTTL)
	guard := auth.NewGuard(jwtService, userRepo)

	// Initialize services
	authService := service.NewAuthService(userRepo, hasher, jwtService)
	userService := service.NewUserService(userRepo, hasher, cacheClient)
	productService := service.NewProductService(productRepo, categoryRepo)
	categoryService := service.NewCategoryService(categoryRepo, cacheClient)
	orderService := service.NewOrderService(orderRepo, productRepo)

	e := echo.New()
	e.HideBanner = true

	// Register routes
	router.Register(e, cfg, guard, router.Handlers{
		Auth:     handler.NewAuthHandler(authService),
		Product:  handler.NewProductHandler(productService),
		Category: handler.NewCategoryHandler(categoryService),
		Order:    handler.NewOrderHandler(orderService),
		Admin:    handler.NewAdminHandler(userService),
		User:     handler.NewUserHandler(userService, productService),
	})

	if cfg.SwaggerHost != "" {
		docs.SwaggerInfo.Host = strings.TrimPrefix(strings.TrimPrefix(cfg.SwaggerHost, "https://"), "http://")
	}
	logrus.Infof("Swagger documentation available at: %s", swaggerURL(cfg))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logrus.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("server shutdown")
	}
	logrus.Info("server stopped")
}

func swaggerURL(cfg *config.Config) string {
	host := cfg.SwaggerHost
	if host == "" {
		host = "localhost:" + cfg.ServerPort
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
