package cart

import (
	"time"

	"github.com/google/uuid"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
)

// CartDTO is the cart payload returned to clients. The owner columns stay
// server-side; callers already know which identity they presented.
type CartDTO struct {
	ID         uuid.UUID     `json:"id"`
	Items      []CartItemDTO `json:"items"`
	TotalCents int           `json:"total_cents"`
	UpdatedAt  time.Time     `json:"updated_at"`
}

// CartItemDTO is one variant line in the cart.
type CartItemDTO struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	VariantName       string    `json:"variant_name"`
	Quantity          int       `json:"quantity"`
	UnitPriceCents    int       `json:"unit_price_cents"`
	LineSubtotalCents int       `json:"line_subtotal_cents"`
}

// NewCartDTO builds the client payload from the persisted model.
func NewCartDTO(c *models.Cart) *CartDTO {
	items := make([]CartItemDTO, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemDTO{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			VariantName:       item.VariantName,
			Quantity:          item.Quantity,
			UnitPriceCents:    item.UnitPriceCents,
			LineSubtotalCents: item.LineSubtotalCents,
		})
	}
	return &CartDTO{
		ID:         c.ID,
		Items:      items,
		TotalCents: c.TotalCents,
		UpdatedAt:  c.UpdatedAt,
	}
}
