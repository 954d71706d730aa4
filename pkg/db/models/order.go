package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/enums"
	"github.com/medkitstore/medkit-backend/pkg/types"
)

// Order is the fulfillment document created when delivery details are added to
// an approved checkout session. CustomerInfo snapshots the customer's contact
// data at finalization so later profile edits do not rewrite history.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;primaryKey"`
	OrderNumber  string            `gorm:"column:order_number;not null;uniqueIndex"`
	SessionID    uuid.UUID         `gorm:"column:session_id;type:uuid;not null;uniqueIndex"`
	CustomerID   uuid.UUID         `gorm:"column:customer_id;type:uuid;not null;index"`
	Status       enums.OrderStatus `gorm:"column:status;not null;default:'processing'"`
	CustomerInfo types.Address     `gorm:"column:customer_info;type:jsonb;serializer:json"`
	Items        []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`

	SubtotalCents int `gorm:"column:subtotal_cents;not null"`
	ShippingCents int `gorm:"column:shipping_cents;not null;default:0"`
	TotalCents    int `gorm:"column:total_cents;not null"`

	DeliveryDetails *types.Address `gorm:"column:delivery_details;type:jsonb;serializer:json"`
	TrackingNumber  *string        `gorm:"column:tracking_number"`
	ShippedAt       *time.Time     `gorm:"column:shipped_at"`
	DeliveredAt     *time.Time     `gorm:"column:delivered_at"`
	CancelledAt     *time.Time     `gorm:"column:cancelled_at"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem carries the line snapshot over from the checkout session.
type OrderItem struct {
	ID                uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	OrderID           uuid.UUID `gorm:"column:order_id;type:uuid;not null;index"`
	ProductID         uuid.UUID `gorm:"column:product_id;type:uuid;not null"`
	ProductName       string    `gorm:"column:product_name;not null"`
	VariantName       string    `gorm:"column:variant_name;not null"`
	Quantity          int       `gorm:"column:quantity;not null"`
	UnitPriceCents    int       `gorm:"column:unit_price_cents;not null"`
	LineSubtotalCents int       `gorm:"column:line_subtotal_cents;not null"`
	CreatedAt         time.Time `gorm:"column:created_at;autoCreateTime"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
