package reviews

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db"
	"github.com/medkitstore/medkit-backend/pkg/db/models"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error)
}

type purchaseChecker interface {
	HasSessionWithProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error)
}

// ListResult is one page of a product's reviews.
type ListResult struct {
	Reviews       []models.Review
	Page          pagination.Page
	AverageRating float64
}

// Service exposes purchase-gated product reviews.
type Service interface {
	CreateReview(ctx context.Context, customerID, productID uuid.UUID, rating int, comment string) (*models.Review, error)
	ListReviews(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ListResult, error)
}

type service struct {
	repo      *Repository
	products  productLoader
	purchases purchaseChecker
}

// NewService builds a reviews service backed by the provided stack.
func NewService(repo *Repository, products productLoader, purchases purchaseChecker) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("review repository required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if purchases == nil {
		return nil, fmt.Errorf("purchase checker required")
	}
	return &service{repo: repo, products: products, purchases: purchases}, nil
}

// CreateReview stores one review per customer per product. Only customers who
// checked the product out may review it.
func (s *service) CreateReview(ctx context.Context, customerID, productID uuid.UUID, rating int, comment string) (*models.Review, error) {
	if rating < 1 || rating > 5 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "rating must be between 1 and 5")
	}

	if _, err := s.products.GetProduct(ctx, productID, false); err != nil {
		return nil, err
	}

	purchased, err := s.purchases.HasSessionWithProduct(ctx, customerID, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check purchase history")
	}
	if !purchased {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "only customers who bought this product can review it")
	}

	if _, err := s.repo.FindByProductAndCustomer(ctx, productID, customerID); err == nil {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check existing review")
	}

	review := &models.Review{
		ProductID:  productID,
		CustomerID: customerID,
		Rating:     rating,
		Comment:    strings.TrimSpace(comment),
	}
	created, err := s.repo.Create(ctx, review)
	if err != nil {
		if db.IsUniqueViolation(err, "idx_review_product_customer") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "product already reviewed")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create review")
	}
	return created, nil
}

func (s *service) ListReviews(ctx context.Context, productID uuid.UUID, params pagination.Params) (*ListResult, error) {
	if _, err := s.products.GetProduct(ctx, productID, false); err != nil {
		return nil, err
	}

	rows, total, err := s.repo.ListByProduct(ctx, productID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list reviews")
	}
	avg, err := s.repo.AverageRating(ctx, productID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "average rating")
	}
	return &ListResult{
		Reviews:       rows,
		Page:          pagination.PageFor(params, total),
		AverageRating: avg,
	}, nil
}
