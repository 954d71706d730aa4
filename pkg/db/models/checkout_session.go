package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/enums"
	"github.com/medkitstore/medkit-backend/pkg/types"
)

// CheckoutSession is the canonical purchase document between cart and order.
// Payment verification state lives here; OrderID is set exactly once when the
// approved session is finalized, which makes finalization idempotent.
type CheckoutSession struct {
	ID            uuid.UUID      `gorm:"column:id;type:uuid;primaryKey"`
	SessionNumber string         `gorm:"column:session_number;not null;uniqueIndex"`
	CustomerID    uuid.UUID      `gorm:"column:customer_id;type:uuid;not null;index"`
	Items         []CheckoutItem `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE"`

	SubtotalCents int    `gorm:"column:subtotal_cents;not null"`
	ShippingCents int    `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents    int    `gorm:"column:total_cents;not null"`
	Notes         string `gorm:"column:notes;not null;default:''"`

	PaymentStatus      enums.PaymentStatus `gorm:"column:payment_status;not null;default:'pending'"`
	PaymentProofURI    *string             `gorm:"column:payment_proof_uri"`
	PaymentSubmittedAt *time.Time          `gorm:"column:payment_submitted_at"`
	PaymentReviewedAt  *time.Time          `gorm:"column:payment_reviewed_at"`
	RejectionReason    *string             `gorm:"column:rejection_reason"`
	AdminNotes         *string             `gorm:"column:admin_notes"`

	DeliveryDetails *types.Address `gorm:"column:delivery_details;type:jsonb;serializer:json"`

	OrderID *uuid.UUID `gorm:"column:order_id;type:uuid;uniqueIndex"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (s *CheckoutSession) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// CheckoutItem is an immutable line snapshot captured when the session is
// created from the cart.
type CheckoutItem struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	SessionID         uuid.UUID `gorm:"column:session_id;type:uuid;not null;index"`
	ProductID         uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName       string    `gorm:"column:product_name;not null"`
	VariantName       string    `gorm:"column:variant_name;not null"`
	Quantity          int       `gorm:"column:quantity;not null"`
	UnitPriceCents    int       `gorm:"column:unit_price_cents;not null"`
	LineSubtotalCents int       `gorm:"column:line_subtotal_cents;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *CheckoutItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
