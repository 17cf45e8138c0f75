package service

import (
	"context"
	"time"

	"fashionec/internal/cache"
	"fashionec/internal/model"
	"fashionec/internal/repository"
)

const (
	categoriesCacheKey = "categories:all"
	categoriesCacheTTL = 10 * time.Minute
)

// CategoryService serves the read-only category catalogue.
type CategoryService interface {
	List(ctx context.Context) ([]model.Category, error)
}

type categoryService struct {
	repo  repository.CategoryRepository
	cache *cache.Client
}

// NewCategoryService builds a CategoryService with repository and cache.
func NewCategoryService(repo repository.CategoryRepository, cache *cache.Client) CategoryService {
	return &categoryService{repo: repo, cache: cache}
}

func (s *categoryService) List(ctx context.Context) ([]model.Category, error) {
	var cached []model.Category
	if s.cache.GetJSON(ctx, categoriesCacheKey, &cached) {
		return cached, nil
	}

	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	s.cache.SetJSON(ctx, categoriesCacheKey, categories, categoriesCacheTTL)
	return categories, nil
}
