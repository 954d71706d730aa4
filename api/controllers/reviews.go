package controllers

import (
	"net/http"

	"github.com/medkitstore/medkit-backend/api/responses"
	"github.com/medkitstore/medkit-backend/api/validators"
	"github.com/medkitstore/medkit-backend/internal/reviews"
	"github.com/medkitstore/medkit-backend/pkg/logger"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

type reviewListResponse struct {
	Reviews       []reviews.ReviewDTO `json:"reviews"`
	AverageRating float64             `json:"average_rating"`
	Pagination    pagination.Page     `json:"pagination"`
}

// CreateReview posts a purchase-gated review on a product.
func CreateReview(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		customerID, err := requireUserID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req struct {
			Rating  int    `json:"rating" validate:"required,gte=1,lte=5"`
			Comment string `json:"comment"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		review, err := svc.CreateReview(r.Context(), customerID, productID, req.Rating, req.Comment)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, reviews.NewReviewDTO(review))
	}
}

// ListProductReviews pages through a product's reviews.
func ListProductReviews(svc reviews.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		productID, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListReviews(r.Context(), productID, validators.ParsePagination(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, reviewListResponse{
			Reviews:       reviews.NewReviewDTOs(result.Reviews),
			AverageRating: result.AverageRating,
			Pagination:    result.Page,
		})
	}
}
