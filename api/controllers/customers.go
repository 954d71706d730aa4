package controllers

import (
	"net/http"

	"github.com/medkitstore/medkit-backend/api/responses"
	"github.com/medkitstore/medkit-backend/api/validators"
	"github.com/medkitstore/medkit-backend/internal/customers"
	"github.com/medkitstore/medkit-backend/pkg/logger"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

type customerListResponse struct {
	Customers  []*customers.UserDTO `json:"customers"`
	Pagination pagination.Page      `json:"pagination"`
}

// Me returns the authenticated account's profile.
func Me(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.GetUser(r.Context(), userID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customers.FromModel(user))
	}
}

// UpdateProfile applies a partial profile update to the authenticated account.
func UpdateProfile(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		userID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req struct {
			FullName *string `json:"full_name,omitempty"`
			Phone    *string `json:"phone,omitempty"`
			Street   *string `json:"street,omitempty"`
			City     *string `json:"city,omitempty"`
			State    *string `json:"state,omitempty"`
			Zip      *string `json:"zip,omitempty"`
			Country  *string `json:"country,omitempty"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		user, err := svc.UpdateProfile(r.Context(), userID, customers.ProfileInput{
			FullName: req.FullName,
			Phone:    req.Phone,
			Street:   req.Street,
			City:     req.City,
			State:    req.State,
			Zip:      req.Zip,
			Country:  req.Country,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, customers.FromModel(user))
	}
}

// AdminListCustomers pages through the customer accounts.
func AdminListCustomers(svc customers.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		result, err := svc.ListCustomers(r.Context(), validators.ParsePagination(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dtos := make([]*customers.UserDTO, 0, len(result.Customers))
		for i := range result.Customers {
			dtos = append(dtos, customers.FromModel(&result.Customers[i]))
		}
		responses.WriteSuccess(w, customerListResponse{
			Customers:  dtos,
			Pagination: result.Page,
		})
	}
}
