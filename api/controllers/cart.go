package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/medkitstore/medkit-backend/api/middleware"
	"github.com/medkitstore/medkit-backend/api/responses"
	"github.com/medkitstore/medkit-backend/api/validators"
	"github.com/medkitstore/medkit-backend/internal/cart"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/logger"
)

const sessionKeyHeader = "X-Session-Key"

// cartOwner resolves the cart owner from the request: the authenticated
// customer wins, otherwise the anonymous session key header.
func cartOwner(r *http.Request) (cart.Owner, error) {
	if userID, ok := middleware.UserIDFromContext(r.Context()); ok {
		return cart.Owner{CustomerID: &userID}, nil
	}
	if key := strings.TrimSpace(r.Header.Get(sessionKeyHeader)); key != "" {
		return cart.Owner{SessionKey: &key}, nil
	}
	return cart.Owner{}, pkgerrors.New(pkgerrors.CodeValidation,
		"authenticate or supply an X-Session-Key header")
}

type cartItemRequest struct {
	ProductID   uuid.UUID `json:"product_id" validate:"required"`
	VariantName string    `json:"variant_name" validate:"required"`
	Quantity    int       `json:"quantity" validate:"required,gte=1"`
}

// GetCart returns the owner's cart, empty if they never added an item.
func GetCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Get(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.NewCartDTO(result))
	}
}

// AddCartItem adds a variant to the cart, merging quantities.
func AddCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cartItemRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.AddItem(r.Context(), owner, req.ProductID, req.VariantName, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.NewCartDTO(result))
	}
}

// UpdateCartItem sets the quantity of an existing line.
func UpdateCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req cartItemRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.UpdateItem(r.Context(), owner, req.ProductID, req.VariantName, req.Quantity)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.NewCartDTO(result))
	}
}

// RemoveCartItem deletes one line from the cart.
func RemoveCartItem(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req struct {
			ProductID   uuid.UUID `json:"product_id" validate:"required"`
			VariantName string    `json:"variant_name" validate:"required"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.RemoveItem(r.Context(), owner, req.ProductID, req.VariantName)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.NewCartDTO(result))
	}
}

// ClearCart empties the cart while keeping the row.
func ClearCart(svc cart.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner, err := cartOwner(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Clear(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, cart.NewCartDTO(result))
	}
}
