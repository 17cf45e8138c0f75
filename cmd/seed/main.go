package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"fashionec/internal/auth"
	"fashionec/internal/config"
	"fashionec/internal/db"
	"fashionec/internal/logging"
	"fashionec/internal/model"
	"fashionec/internal/repository"
)

// seedUser is a user the seed guarantees, identified by email.
type seedUser struct {
	Email    string
	Username string
	Password string
	Role     model.Role
}

var seedUsers = []seedUser{
	{Email: "admin@example.com", Username: "admin", Password: "admin123", Role: model.RoleAdmin},
	{Email: "user@example.com", Username: "testuser", Password: "user123", Role: model.RoleUser},
}

var seedCategories = []model.Category{
	{Name: "トップス", Slug: "tops"},
	{Name: "アウター", Slug: "outerwear"},
	{Name: "パーカー", Slug: "hoodies"},
	{Name: "シャツ", Slug: "t-shirts"},
	{Name: "パンツ", Slug: "pants"},
	{Name: "スカート", Slug: "skirts"},
	{Name: "ヘアス", Slug: "heads"},
	{Name: "シューズ", Slug: "shoes"},
	{Name: "アクセサリー", Slug: "accessories"},
	{Name: "その他", Slug: "other"},
}

// seedProduct is a sample listing owned by SellerEmail in category CategorySlug.
type seedProduct struct {
	Name         string
	Description  string
	Price        decimal.Decimal
	CategorySlug string
	SellerEmail  string
	ImageURL     string
	Stock        int
}

var seedProducts = []seedProduct{
	{
		Name:         "オーバーサイズパーカー",
		Description:  "トレンドのオーバーサイズシルエット",
		Price:        decimal.NewFromInt(4980),
		CategorySlug: "hoodies",
		SellerEmail:  "user@example.com",
		ImageURL:     "/images/oversized-hoodie.jpg",
		Stock:        3,
	},
}

func main() {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel, cfg.IsProduction())
	logrus.Info("Starting seed script...")

	gormDB, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logrus.Fatalf("Failed to connect to database: %v", err)
	}
	if err := db.Migrate(gormDB); err != nil {
		logrus.Fatalf("Failed to run migrations: %v", err)
	}

	ctx := context.Background()
	userRepo := repository.NewUserRepository(gormDB)
	categoryRepo := repository.NewCategoryRepository(gormDB)
	productRepo := repository.NewProductRepository(gormDB)
	hasher := auth.NewPasswordHasher(cfg.BcryptCost)

	users, err := seedAllUsers(ctx, userRepo, hasher, seedUsers)
	if err != nil {
		logrus.Fatalf("Failed to seed users: %v", err)
	}
	categories, err := seedAllCategories(ctx, categoryRepo, seedCategories)
	if err != nil {
		logrus.Fatalf("Failed to seed categories: %v", err)
	}
	products, err := seedAllProducts(ctx, userRepo, categoryRepo, productRepo, seedProducts)
	if err != nil {
		logrus.Fatalf("Failed to seed products: %v", err)
	}

	for _, r := range []result{users, categories, products} {
		logrus.WithFields(logrus.Fields{
			"created": r.Created,
			"updated": r.Updated,
		}).Infof("%s seeded", r.Kind)
	}
	logrus.Info("Seed completed successfully!")
}

type result struct {
	Kind    string
	Created int
	Updated int
}

// seedAllUsers creates missing users. Existing users keep their password but
// get their role restored and are reactivated.
func seedAllUsers(ctx context.Context, repo repository.UserRepository, hasher *auth.PasswordHasher, users []seedUser) (result, error) {
	res := result{Kind: "users"}
	for _, u := range users {
		existing, err := repo.FindByEmail(ctx, u.Email)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return res, fmt.Errorf("error checking user %s: %w", u.Email, err)
		}

		if existing != nil {
			if existing.Role == u.Role && existing.IsActive {
				continue
			}
			existing.Role = u.Role
			existing.IsActive = true
			if err := repo.Update(ctx, existing); err != nil {
				return res, fmt.Errorf("error updating user %s: %w", u.Email, err)
			}
			res.Updated++
			continue
		}

		hashed, err := hasher.Hash(u.Password)
		if err != nil {
			return res, err
		}
		user := &model.User{
			Email:        u.Email,
			Username:     u.Username,
			PasswordHash: hashed,
			Role:         u.Role,
			IsActive:     true,
		}
		if err := repo.Create(ctx, user); err != nil {
			return res, fmt.Errorf("error creating user %s: %w", u.Email, err)
		}
		res.Created++
	}
	return res, nil
}

// seedAllCategories creates missing categories by slug and renames drifted ones.
func seedAllCategories(ctx context.Context, repo repository.CategoryRepository, categories []model.Category) (result, error) {
	res := result{Kind: "categories"}
	for _, c := range categories {
		existing, err := repo.FindBySlug(ctx, c.Slug)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return res, fmt.Errorf("error checking category %s: %w", c.Slug, err)
		}

		if existing != nil {
			if existing.Name == c.Name {
				continue
			}
			existing.Name = c.Name
			if err := repo.Update(ctx, existing); err != nil {
				return res, fmt.Errorf("error updating category %s: %w", c.Slug, err)
			}
			res.Updated++
			continue
		}

		category := c
		if err := repo.Create(ctx, &category); err != nil {
			return res, fmt.Errorf("error creating category %s: %w", c.Slug, err)
		}
		res.Created++
	}
	return res, nil
}

// seedAllProducts creates sample listings that the seller does not already have.
func seedAllProducts(
	ctx context.Context,
	userRepo repository.UserRepository,
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	products []seedProduct,
) (result, error) {
	res := result{Kind: "products"}
	for _, p := range products {
		seller, err := userRepo.FindByEmail(ctx, p.SellerEmail)
		if err != nil {
			return res, fmt.Errorf("error finding seller %s: %w", p.SellerEmail, err)
		}
		category, err := categoryRepo.FindBySlug(ctx, p.CategorySlug)
		if err != nil {
			return res, fmt.Errorf("error finding category %s: %w", p.CategorySlug, err)
		}

		owned, err := productRepo.ListBySeller(ctx, seller.ID, false)
		if err != nil {
			return res, fmt.Errorf("error listing products of %s: %w", p.SellerEmail, err)
		}
		if hasProductNamed(owned, p.Name) {
			continue
		}

		description, imageURL := p.Description, p.ImageURL
		product := &model.Product{
			Name:        p.Name,
			Description: &description,
			Price:       p.Price,
			CategoryID:  category.ID,
			SellerID:    seller.ID,
			ImageURL:    &imageURL,
			Stock:       p.Stock,
			IsActive:    true,
			Status:      model.ProductStatusAvailable,
		}
		if err := productRepo.Create(ctx, product); err != nil {
			return res, fmt.Errorf("error creating product %s: %w", p.Name, err)
		}
		res.Created++
	}
	return res, nil
}

func hasProductNamed(products []model.Product, name string) bool {
	for _, p := range products {
		if p.Name == name {
			return true
		}
	}
	return false
}
