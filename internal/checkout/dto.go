package checkout

import (
	"time"

	"github.com/google/uuid"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
	"github.com/medkitstore/medkit-backend/pkg/types"
)

// SessionDTO is the checkout session payload returned to clients. The same
// shape serves the owning customer and the admin verification queue.
type SessionDTO struct {
	ID            uuid.UUID        `json:"id"`
	SessionNumber string           `json:"session_number"`
	CustomerID    uuid.UUID        `json:"customer_id"`
	Items         []SessionItemDTO `json:"items"`

	SubtotalCents int    `json:"subtotal_cents"`
	ShippingCents int    `json:"shipping_cents"`
	TotalCents    int    `json:"total_cents"`
	Notes         string `json:"notes,omitempty"`

	PaymentStatus      string     `json:"payment_status"`
	PaymentProofURI    *string    `json:"payment_proof_uri,omitempty"`
	PaymentSubmittedAt *time.Time `json:"payment_submitted_at,omitempty"`
	PaymentReviewedAt  *time.Time `json:"payment_reviewed_at,omitempty"`
	RejectionReason    *string    `json:"rejection_reason,omitempty"`
	AdminNotes         *string    `json:"admin_notes,omitempty"`

	DeliveryDetails *types.Address `json:"delivery_details,omitempty"`
	OrderID         *uuid.UUID     `json:"order_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionItemDTO is one immutable line snapshot of the session.
type SessionItemDTO struct {
	ProductID         uuid.UUID `json:"product_id"`
	ProductName       string    `json:"product_name"`
	VariantName       string    `json:"variant_name"`
	Quantity          int       `json:"quantity"`
	UnitPriceCents    int       `json:"unit_price_cents"`
	LineSubtotalCents int       `json:"line_subtotal_cents"`
}

// NewSessionDTO builds the client payload from the persisted model.
func NewSessionDTO(session *models.CheckoutSession) *SessionDTO {
	items := make([]SessionItemDTO, 0, len(session.Items))
	for _, item := range session.Items {
		items = append(items, SessionItemDTO{
			ProductID:         item.ProductID,
			ProductName:       item.ProductName,
			VariantName:       item.VariantName,
			Quantity:          item.Quantity,
			UnitPriceCents:    item.UnitPriceCents,
			LineSubtotalCents: item.LineSubtotalCents,
		})
	}
	return &SessionDTO{
		ID:                 session.ID,
		SessionNumber:      session.SessionNumber,
		CustomerID:         session.CustomerID,
		Items:              items,
		SubtotalCents:      session.SubtotalCents,
		ShippingCents:      session.ShippingCents,
		TotalCents:         session.TotalCents,
		Notes:              session.Notes,
		PaymentStatus:      string(session.PaymentStatus),
		PaymentProofURI:    session.PaymentProofURI,
		PaymentSubmittedAt: session.PaymentSubmittedAt,
		PaymentReviewedAt:  session.PaymentReviewedAt,
		RejectionReason:    session.RejectionReason,
		AdminNotes:         session.AdminNotes,
		DeliveryDetails:    session.DeliveryDetails,
		OrderID:            session.OrderID,
		CreatedAt:          session.CreatedAt,
		UpdatedAt:          session.UpdatedAt,
	}
}

// NewSessionDTOs maps a session page.
func NewSessionDTOs(sessions []models.CheckoutSession) []SessionDTO {
	out := make([]SessionDTO, 0, len(sessions))
	for i := range sessions {
		out = append(out, *NewSessionDTO(&sessions[i]))
	}
	return out
}
