package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/medkitstore/medkit-backend/api/middleware"
	"github.com/medkitstore/medkit-backend/api/responses"
	"github.com/medkitstore/medkit-backend/api/validators"
	"github.com/medkitstore/medkit-backend/internal/catalog"
	pkgerrors "github.com/medkitstore/medkit-backend/pkg/errors"
	"github.com/medkitstore/medkit-backend/pkg/logger"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

type productListResponse struct {
	Products   []catalog.ProductDTO `json:"products"`
	Categories []string             `json:"categories"`
	Pagination pagination.Page      `json:"pagination"`
}

type variantRequest struct {
	Name       string `json:"name" validate:"required"`
	PriceCents int    `json:"price_cents" validate:"gte=0"`
	Stock      int    `json:"stock" validate:"gte=0"`
}

type productRequest struct {
	Name        string           `json:"name" validate:"required"`
	Description string           `json:"description"`
	Category    string           `json:"category" validate:"required"`
	Images      []string         `json:"images"`
	IsActive    bool             `json:"is_active"`
	IsFeatured  bool             `json:"is_featured"`
	Variants    []variantRequest `json:"variants" validate:"required,min=1,dive"`
}

func (req productRequest) toInput() catalog.ProductInput {
	variants := make([]catalog.VariantInput, 0, len(req.Variants))
	for _, v := range req.Variants {
		variants = append(variants, catalog.VariantInput{
			Name:       v.Name,
			PriceCents: v.PriceCents,
			Stock:      v.Stock,
		})
	}
	return catalog.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Images:      req.Images,
		IsActive:    req.IsActive,
		IsFeatured:  req.IsFeatured,
		Variants:    variants,
	}
}

func catalogFiltersFromQuery(r *http.Request, includeInactive bool) (catalog.ListFilters, error) {
	query := r.URL.Query()

	priceMin, err := validators.ParseQueryIntPtr(r, "price_min")
	if err != nil {
		return catalog.ListFilters{}, err
	}
	priceMax, err := validators.ParseQueryIntPtr(r, "price_max")
	if err != nil {
		return catalog.ListFilters{}, err
	}

	return catalog.ListFilters{
		Category:        strings.TrimSpace(query.Get("category")),
		Search:          strings.TrimSpace(query.Get("search")),
		FeaturedOnly:    query.Get("featured") == "true",
		IncludeInactive: includeInactive,
		PriceMinCents:   priceMin,
		PriceMaxCents:   priceMax,
		SortBy:          strings.TrimSpace(query.Get("sort")),
		SortDesc:        query.Get("order") == "desc",
	}, nil
}

// ListProducts serves the storefront catalog page.
func ListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, false)
}

// AdminListProducts serves the catalog including inactive products.
func AdminListProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return listProducts(svc, logg, true)
}

func listProducts(svc catalog.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filters, err := catalogFiltersFromQuery(r, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.ListProducts(r.Context(), filters, validators.ParsePagination(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productListResponse{
			Products:   catalog.NewProductDTOs(result.Products),
			Categories: result.Categories,
			Pagination: result.Page,
		})
	}
}

// ProductsByCategory serves one category's page of the storefront catalog.
func ProductsByCategory(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		category := strings.TrimSpace(chi.URLParam(r, "category"))
		if category == "" {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "category is required"))
			return
		}

		result, err := svc.ListProducts(r.Context(), catalog.ListFilters{Category: category}, validators.ParsePagination(r))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, productListResponse{
			Products:   catalog.NewProductDTOs(result.Products),
			Categories: result.Categories,
			Pagination: result.Page,
		})
	}
}

// Categories returns the distinct category list for storefront filters.
func Categories(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := svc.Categories(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"categories": categories})
	}
}

// FeaturedProducts returns the homepage highlight list.
func FeaturedProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		products, err := svc.FeaturedProducts(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": catalog.NewProductDTOs(products)})
	}
}

// GetProduct returns one product detail page.
func GetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return getProduct(svc, logg, false)
}

// AdminGetProduct returns one product, inactive included.
func AdminGetProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return getProduct(svc, logg, true)
}

func getProduct(svc catalog.Service, logg *logger.Logger, includeInactive bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.GetProduct(r.Context(), id, includeInactive)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.NewProductDTO(product))
	}
}

// RelatedProducts returns products in the same category.
func RelatedProducts(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		products, err := svc.RelatedProducts(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]any{"products": catalog.NewProductDTOs(products)})
	}
}

// CreateProduct handles admin product creation.
func CreateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req productRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		adminID, _ := middleware.UserIDFromContext(r.Context())
		product, err := svc.CreateProduct(r.Context(), adminID, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, catalog.NewProductDTO(product))
	}
}

// UpdateProduct handles admin product updates, replacing the variant set.
func UpdateProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req productRequest
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), id, req.toInput())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.NewProductDTO(product))
	}
}

// DeleteProduct handles admin product removal.
func DeleteProduct(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := validators.ParseUUIDParam(r, "productID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// SetVariantStock handles the admin stock adjustment for one variant.
func SetVariantStock(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		variantID, err := validators.ParseUUIDParam(r, "variantID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var req struct {
			Stock int `json:"stock" validate:"gte=0"`
		}
		if err := validators.DecodeJSONBody(w, r, &req); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		variant, err := svc.SetVariantStock(r.Context(), variantID, req.Stock)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, catalog.NewVariantDTO(variant))
	}
}
