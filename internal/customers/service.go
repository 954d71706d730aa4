package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
	"github.com/medkitstore/medkit-backend/pkg/enums"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

// ProfileInput carries a partial profile update; nil fields are left as-is.
type ProfileInput struct {
	FullName *string
	Phone    *string
	Street   *string
	City     *string
	State    *string
	Zip      *string
	Country  *string
}

// ListResult is one admin page of customer accounts.
type ListResult struct {
	Customers []models.User
	Page      pagination.Page
}

// Service exposes customer account operations.
type Service interface {
	GetCustomer(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetUser(ctx context.Context, id uuid.UUID) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*models.User, error)
	ListCustomers(ctx context.Context, params pagination.Params) (*ListResult, error)
}

type service struct {
	repo *Repository
}

// NewService builds a customers service backed by the provided repository.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	return &service{repo: repo}, nil
}

// GetCustomer loads an active customer account. Admin accounts and
// deactivated customers read as not found.
func (s *service) GetCustomer(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.Role != enums.RoleCustomer || !user.IsActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
	}
	return user, nil
}

func (s *service) GetUser(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load user")
	}
	return user, nil
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, input ProfileInput) (*models.User, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.FullName != nil {
		name := strings.TrimSpace(*input.FullName)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "full name cannot be blank")
		}
		user.FullName = name
	}
	if input.Phone != nil {
		user.Phone = input.Phone
	}
	if input.Street != nil {
		user.Street = input.Street
	}
	if input.City != nil {
		user.City = input.City
	}
	if input.State != nil {
		user.State = input.State
	}
	if input.Zip != nil {
		user.Zip = input.Zip
	}
	if input.Country != nil {
		user.Country = input.Country
	}

	if err := s.repo.Save(ctx, user); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save user")
	}
	return user, nil
}

func (s *service) ListCustomers(ctx context.Context, params pagination.Params) (*ListResult, error) {
	rows, total, err := s.repo.ListCustomers(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list customers")
	}
	return &ListResult{Customers: rows, Page: pagination.PageFor(params, total)}, nil
}
