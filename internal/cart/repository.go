package cart

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
)

// Owner identifies who a cart belongs to. Exactly one field must be set:
// CustomerID for authenticated customers, SessionKey for anonymous browsers.
type Owner struct {
	CustomerID *uuid.UUID
	SessionKey *string
}

// Validate enforces the exactly-one-owner rule.
func (o Owner) Validate() error {
	hasCustomer := o.CustomerID != nil && *o.CustomerID != uuid.Nil
	hasSession := o.SessionKey != nil && *o.SessionKey != ""
	if hasCustomer == hasSession {
		return fmt.Errorf("cart owner must be exactly one of customer id or session key")
	}
	return nil
}

// Repository wires together cart persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func (r *Repository) ownerScope(qb *gorm.DB, owner Owner) *gorm.DB {
	if owner.CustomerID != nil && *owner.CustomerID != uuid.Nil {
		return qb.Where("customer_id = ?", *owner.CustomerID)
	}
	return qb.Where("session_key = ?", *owner.SessionKey)
}

// FindByOwner loads the owner's cart with items, or gorm.ErrRecordNotFound.
func (r *Repository) FindByOwner(ctx context.Context, owner Owner) (*models.Cart, error) {
	var cart models.Cart
	err := r.ownerScope(r.db.WithContext(ctx), owner).
		Preload("Items", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&cart).
		Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

// Create persists a new cart row for the owner.
func (r *Repository) Create(ctx context.Context, owner Owner) (*models.Cart, error) {
	cart := models.Cart{
		CustomerID: owner.CustomerID,
		SessionKey: owner.SessionKey,
	}
	if err := r.db.WithContext(ctx).Create(&cart).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// SaveItem inserts or updates a cart line.
func (r *Repository) SaveItem(ctx context.Context, item *models.CartItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes a single cart line.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", itemID).Delete(&models.CartItem{}).Error
}

// DeleteItems removes every line of the cart.
func (r *Repository) DeleteItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).Where("cart_id = ?", cartID).Delete(&models.CartItem{}).Error
}

// SetTotal updates the denormalized cart total.
func (r *Repository) SetTotal(ctx context.Context, cartID uuid.UUID, totalCents int) error {
	return r.db.WithContext(ctx).
		Model(&models.Cart{}).
		Where("id = ?", cartID).
		Update("total_cents", totalCents).
		Error
}
