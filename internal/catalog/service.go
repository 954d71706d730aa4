package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

const (
	relatedProductLimit  = 4
	featuredProductLimit = 8
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog read and admin write operations.
type Service interface {
	ListProducts(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error)
	Categories(ctx context.Context) ([]string, error)
	FeaturedProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error)
	RelatedProducts(ctx context.Context, id uuid.UUID) ([]models.Product, error)
	CreateProduct(ctx context.Context, createdBy uuid.UUID, input ProductInput) (*models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	SetVariantStock(ctx context.Context, variantID uuid.UUID, stock int) (*models.ProductVariant, error)
}

type service struct {
	repo *Repository
	tx   txRunner
}

// NewService builds a catalog service backed by the provided stack.
func NewService(repo *Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

// ListResult bundles one catalog page with its pagination metadata and the
// distinct category list used by storefront filters.
type ListResult struct {
	Products   []models.Product
	Page       pagination.Page
	Categories []string
}

// VariantInput carries a brand option for create/update.
type VariantInput struct {
	Name       string
	PriceCents int
	Stock      int
}

// ProductInput captures the payload for product create/update.
type ProductInput struct {
	Name        string
	Description string
	Category    string
	Images      []string
	IsActive    bool
	IsFeatured  bool
	Variants    []VariantInput
}

func (s *service) ListProducts(ctx context.Context, filters ListFilters, params pagination.Params) (*ListResult, error) {
	if filters.SortBy != "" {
		if _, ok := sortColumns[filters.SortBy]; !ok {
			return nil, pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("unsupported sort field %q", filters.SortBy))
		}
	}

	rows, total, err := s.repo.List(ctx, filters, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}

	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}

	return &ListResult{
		Products:   rows,
		Page:       pagination.PageFor(params, total),
		Categories: categories,
	}, nil
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	return categories, nil
}

func (s *service) FeaturedProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.ListFeatured(ctx, featuredProductLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list featured products")
	}
	return rows, nil
}

func (s *service) GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error) {
	product, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	if !product.IsActive && !includeInactive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

func (s *service) RelatedProducts(ctx context.Context, id uuid.UUID) ([]models.Product, error) {
	product, err := s.GetProduct(ctx, id, false)
	if err != nil {
		return nil, err
	}
	rows, err := s.repo.ListRelated(ctx, product.ID, product.Category, relatedProductLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list related products")
	}
	return rows, nil
}

func (s *service) CreateProduct(ctx context.Context, createdBy uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	product := &models.Product{
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		Category:    strings.TrimSpace(input.Category),
		Images:      input.Images,
		IsActive:    input.IsActive,
		IsFeatured:  input.IsFeatured,
		Variants:    variantsFromInput(uuid.Nil, input.Variants),
	}
	if createdBy != uuid.Nil {
		product.CreatedBy = &createdBy
	}

	created, err := s.repo.Create(ctx, product)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
	}
	return created, nil
}

func (s *service) UpdateProduct(ctx context.Context, id uuid.UUID, input ProductInput) (*models.Product, error) {
	if err := validateProductInput(input); err != nil {
		return nil, err
	}

	existing, err := s.GetProduct(ctx, id, true)
	if err != nil {
		return nil, err
	}

	existing.Name = strings.TrimSpace(input.Name)
	existing.Description = input.Description
	existing.Category = strings.TrimSpace(input.Category)
	existing.Images = input.Images
	existing.IsActive = input.IsActive
	existing.IsFeatured = input.IsFeatured
	existing.Variants = nil

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if _, err := txRepo.Update(ctx, existing); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		variants := variantsFromInput(existing.ID, input.Variants)
		if err := txRepo.ReplaceVariants(ctx, existing.ID, variants); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "replace variants")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetProduct(ctx, id, true)
}

func (s *service) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id, true); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
	}
	return nil
}

func (s *service) SetVariantStock(ctx context.Context, variantID uuid.UUID, stock int) (*models.ProductVariant, error) {
	if stock < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "stock must be non-negative")
	}

	affected, err := s.repo.SetVariantStock(ctx, variantID, stock)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set variant stock")
	}
	if affected == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "variant not found")
	}
	return s.repo.FindVariant(ctx, variantID)
}

func validateProductInput(input ProductInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product name is required")
	}
	if strings.TrimSpace(input.Category) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "product category is required")
	}
	if len(input.Variants) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "product needs at least one brand variant")
	}

	seen := map[string]struct{}{}
	for _, variant := range input.Variants {
		name := strings.TrimSpace(variant.Name)
		if name == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant name is required")
		}
		key := strings.ToLower(name)
		if _, dup := seen[key]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("duplicate variant %q on product", name))
		}
		seen[key] = struct{}{}
		if variant.PriceCents < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant price must be non-negative")
		}
		if variant.Stock < 0 {
			return pkgerrors.New(pkgerrors.CodeValidation, "variant stock must be non-negative")
		}
	}
	return nil
}

func variantsFromInput(productID uuid.UUID, inputs []VariantInput) []models.ProductVariant {
	variants := make([]models.ProductVariant, 0, len(inputs))
	for _, input := range inputs {
		variants = append(variants, models.ProductVariant{
			ProductID:  productID,
			Name:       strings.TrimSpace(input.Name),
			PriceCents: input.PriceCents,
			Stock:      input.Stock,
		})
	}
	return variants
}
