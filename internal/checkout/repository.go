package checkout

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
	"github.com/medkitstore/medkit-backend/pkg/enums"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

// ListFilters narrows the admin payment review queue.
type ListFilters struct {
	Status *enums.PaymentStatus
}

// Repository wires together checkout session persistence helpers.
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

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

// Create persists a session with its item snapshots.
func (r *Repository) Create(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error) {
	if err := r.db.WithContext(ctx).Create(session).Error; err != nil {
		return nil, err
	}
	return session, nil
}

// FindByID loads a session with items.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		First(&session, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// FindLatestByCustomer returns the customer's most recent session, if any.
func (r *Repository) FindLatestByCustomer(ctx context.Context, customerID uuid.UUID) (*models.CheckoutSession, error) {
	var session models.CheckoutSession
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("customer_id = ?", customerID).
		Order("created_at DESC").
		First(&session).
		Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// HasSessionWithProduct reports whether any of the customer's sessions contain
// the product. Reviews use this as the purchase gate.
func (r *Repository) HasSessionWithProduct(ctx context.Context, customerID, productID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.CheckoutItem{}).
		Joins("JOIN checkout_sessions cs ON cs.id = checkout_items.session_id").
		Where("cs.customer_id = ? AND checkout_items.product_id = ?", customerID, productID).
		Count(&count).
		Error
	return count > 0, err
}

// List returns one admin page of sessions plus the total row count.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.CheckoutSession, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.CheckoutSession{})
	if filters.Status != nil {
		qb = qb.Where("payment_status = ?", *filters.Status)
	} else {
		// Default review queue: sessions that have ever carried a proof.
		qb = qb.Where("payment_status IN ?", []enums.PaymentStatus{
			enums.PaymentStatusSubmitted,
			enums.PaymentStatusApproved,
			enums.PaymentStatusRejected,
		})
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	normalized := params.Normalize()
	var rows []models.CheckoutSession
	err := qb.
		Preload("Items", preloadItems).
		Order("created_at DESC").
		Offset(params.Offset()).
		Limit(normalized.Limit).
		Find(&rows).
		Error
	return rows, total, err
}

// Save persists the mutated session row without touching items.
func (r *Repository) Save(ctx context.Context, session *models.CheckoutSession) error {
	return r.db.WithContext(ctx).Omit("Items").Save(session).Error
}

// ClaimForOrder sets the session's order id if and only if it is still unset.
// Zero rows affected means another finalization already claimed it.
func (r *Repository) ClaimForOrder(ctx context.Context, sessionID, orderID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.CheckoutSession{}).
		Where("id = ? AND order_id IS NULL", sessionID).
		Update("order_id", orderID)
	return result.RowsAffected, result.Error
}
