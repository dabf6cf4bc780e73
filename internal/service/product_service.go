package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
)

// ListProductsInput carries the raw catalog query parameters.
type ListProductsInput struct {
	Category          string
	BestSeller        string
	ExcludeCategories string
}

type ProductService struct {
	repo repository.ProductRepository
}

func NewProductService(repo repository.ProductRepository) *ProductService {
	return &ProductService{repo: repo}
}

func (s *ProductService) List(ctx context.Context, in ListProductsInput) ([]*domain.Product, error) {
	products, err := s.repo.ListProducts(ctx, parseProductQuery(in))
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.repo.GetProduct(ctx, domain.NewProductID(id))
}

// parseProductQuery never rejects a category. An unknown one simply matches
// no products.
func parseProductQuery(in ListProductsInput) domain.ProductQuery {
	q := domain.ProductQuery{
		Category:       strings.TrimSpace(in.Category),
		BestSellerOnly: in.BestSeller == "true",
	}
	for _, c := range strings.Split(in.ExcludeCategories, ",") {
		if c = strings.TrimSpace(c); c != "" {
			q.ExcludedCategories = append(q.ExcludedCategories, c)
		}
	}
	return q
}
