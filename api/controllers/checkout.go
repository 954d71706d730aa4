package controllers

import (
	"net/http"

	"github.com/medkitstore/medkit-backend/api/responses"
	"github.com/medkitstore/medkit-backend/api/validators"
	"github.com/medkitstore/medkit-backend/internal/cart"
	"github.com/medkitstore/medkit-backend/internal/checkout"
	"github.com/medkitstore/medkit-backend/pkg/logger"
)

type createSessionRequest struct {
	ShippingCents int    `json:"shipping_cents" validate:"gte=0"`
	Notes         string `json:"notes"`
}

type sessionResponse struct {
	Session     *checkout.SessionDTO `json:"session"`
	BankDetails checkout.BankDetails `json:"bank_details"`
}

type summaryResponse struct {
	Cart          *cart.CartDTO        `json:"cart,omitempty"`
	SubtotalCents int                  `json:"subtotal_cents"`
	LastSession   *checkout.SessionDTO `json:"last_session,omitempty"`
}

// CreateCheckoutSession snapshots the cart into a new pending session and
// returns the bank transfer details to pay against.
func CreateCheckoutSession(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req createSessionRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.CreateSession(r.Context(), customerID, req.ShippingCents, req.Notes)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, sessionResponse{
			Session:     checkout.NewSessionDTO(result.Session),
			BankDetails: result.BankDetails,
		})
	}
}

// CheckoutSummary returns the pre-checkout view of the customer's cart.
func CheckoutSummary(svc checkout.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		summary, err := svc.GetSummary(r.Context(), customerID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		resp := summaryResponse{SubtotalCents: summary.SubtotalCents}
		if summary.Cart != nil {
			resp.Cart = cart.NewCartDTO(summary.Cart)
		}
		if summary.LastSession != nil {
			resp.LastSession = checkout.NewSessionDTO(summary.LastSession)
		}
		responses.WriteSuccess(w, resp)
	}
}
