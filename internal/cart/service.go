package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type productLoader interface {
	GetProduct(ctx context.Context, id uuid.UUID, includeInactive bool) (*models.Product, error)
}

// Service exposes cart operations for both authenticated and anonymous owners.
type Service interface {
	Get(ctx context.Context, owner Owner) (*models.Cart, error)
	AddItem(ctx context.Context, owner Owner, productID uuid.UUID, variantName string, quantity int) (*models.Cart, error)
	UpdateItem(ctx context.Context, owner Owner, productID uuid.UUID, variantName string, quantity int) (*models.Cart, error)
	RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, variantName string) (*models.Cart, error)
	Clear(ctx context.Context, owner Owner) (*models.Cart, error)
}

type service struct {
	repo     *Repository
	tx       txRunner
	products productLoader
}

// NewService builds a cart service backed by the provided stack.
func NewService(repo *Repository, tx txRunner, products productLoader) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	return &service{repo: repo, tx: tx, products: products}, nil
}

// Get returns the persisted cart, or an empty unsaved view when the owner has
// never added an item. The empty view is deliberately not persisted.
func (s *service) Get(ctx context.Context, owner Owner) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	cart, err := s.repo.FindByOwner(ctx, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &models.Cart{
				CustomerID: owner.CustomerID,
				SessionKey: owner.SessionKey,
				Items:      []models.CartItem{},
			}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}
	return cart, nil
}

func (s *service) AddItem(ctx context.Context, owner Owner, productID uuid.UUID, variantName string, quantity int) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	variantName = strings.TrimSpace(variantName)
	if variantName == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "variant name is required")
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetProduct(ctx, productID, false)
	if err != nil {
		return nil, err
	}
	variant := findVariant(product, variantName)
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("variant %q not found on product", variantName))
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByOwner(ctx, owner)
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
			}
			cart, err = txRepo.Create(ctx, owner)
			if err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart")
			}
		}

		merged := quantity
		existing := findItem(cart, productID, variant.Name)
		if existing != nil {
			merged += existing.Quantity
		}
		// Check-then-write gap: a concurrent add can still pass here. The
		// conditional decrement at order finalization is the backstop.
		if merged > variant.Stock {
			return insufficientStock(product.ID, variant.Name, variant.Stock)
		}

		if existing != nil {
			existing.Quantity = merged
			existing.UnitPriceCents = variant.PriceCents
			existing.LineSubtotalCents = merged * variant.PriceCents
			if err := txRepo.SaveItem(ctx, existing); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
			}
		} else {
			item := models.CartItem{
				CartID:            cart.ID,
				ProductID:         product.ID,
				VariantName:       variant.Name,
				ProductName:       product.Name,
				Quantity:          merged,
				UnitPriceCents:    variant.PriceCents,
				LineSubtotalCents: merged * variant.PriceCents,
			}
			if err := txRepo.SaveItem(ctx, &item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "insert cart item")
			}
		}

		return recomputeTotal(ctx, txRepo, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, owner)
}

func (s *service) UpdateItem(ctx context.Context, owner Owner, productID uuid.UUID, variantName string, quantity int) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}

	product, err := s.products.GetProduct(ctx, productID, false)
	if err != nil {
		return nil, err
	}
	variant := findVariant(product, variantName)
	if variant == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound,
			fmt.Sprintf("variant %q not found on product", variantName))
	}
	if quantity > variant.Stock {
		return nil, insufficientStock(product.ID, variant.Name, variant.Stock)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		item := findItem(cart, productID, variant.Name)
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}

		item.Quantity = quantity
		item.UnitPriceCents = variant.PriceCents
		item.LineSubtotalCents = quantity * variant.PriceCents
		if err := txRepo.SaveItem(ctx, item); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart item")
		}

		return recomputeTotal(ctx, txRepo, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, owner)
}

func (s *service) RemoveItem(ctx context.Context, owner Owner, productID uuid.UUID, variantName string) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		item := findItem(cart, productID, strings.TrimSpace(variantName))
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "item not in cart")
		}
		if err := txRepo.DeleteItem(ctx, item.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete cart item")
		}

		return recomputeTotal(ctx, txRepo, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, owner)
}

// Clear keeps the cart row and zeroes its items and total.
func (s *service) Clear(ctx context.Context, owner Owner) (*models.Cart, error) {
	if err := owner.Validate(); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)

		cart, err := txRepo.FindByOwner(ctx, owner)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
		}

		if err := txRepo.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart items")
		}
		return txRepo.SetTotal(ctx, cart.ID, 0)
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, owner)
}

func recomputeTotal(ctx context.Context, txRepo *Repository, cartID uuid.UUID) error {
	var total int
	err := txRepo.db.WithContext(ctx).
		Model(&models.CartItem{}).
		Where("cart_id = ?", cartID).
		Select("COALESCE(SUM(line_subtotal_cents), 0)").
		Scan(&total).
		Error
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum cart total")
	}
	return txRepo.SetTotal(ctx, cartID, total)
}

func findVariant(product *models.Product, name string) *models.ProductVariant {
	for i := range product.Variants {
		if strings.EqualFold(product.Variants[i].Name, name) {
			return &product.Variants[i]
		}
	}
	return nil
}

func findItem(cart *models.Cart, productID uuid.UUID, variantName string) *models.CartItem {
	for i := range cart.Items {
		if cart.Items[i].ProductID == productID && strings.EqualFold(cart.Items[i].VariantName, variantName) {
			return &cart.Items[i]
		}
	}
	return nil
}

func insufficientStock(productID uuid.UUID, variantName string, available int) error {
	return pkgerrors.New(pkgerrors.CodeInsufficientStock, "requested quantity exceeds stock").
		WithDetails(map[string]any{
			"product_id": productID,
			"variant":    variantName,
			"available":  available,
		})
}
