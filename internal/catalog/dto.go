package catalog

import (
	"time"

	"github.com/google/uuid"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
)

// ProductDTO is the catalog payload returned to clients.
type ProductDTO struct {
	ID          uuid.UUID    `json:"id"`
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Category    string       `json:"category"`
	Images      []string     `json:"images"`
	IsActive    bool         `json:"is_active"`
	IsFeatured  bool         `json:"is_featured"`
	Variants    []VariantDTO `json:"variants"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// VariantDTO is one purchasable brand option under a product.
type VariantDTO struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewProductDTO builds the client payload from the persisted model.
func NewProductDTO(product *models.Product) *ProductDTO {
	variants := make([]VariantDTO, 0, len(product.Variants))
	for i := range product.Variants {
		variants = append(variants, NewVariantDTO(&product.Variants[i]))
	}
	images := product.Images
	if images == nil {
		images = []string{}
	}
	return &ProductDTO{
		ID:          product.ID,
		Name:        product.Name,
		Description: product.Description,
		Category:    product.Category,
		Images:      images,
		IsActive:    product.IsActive,
		IsFeatured:  product.IsFeatured,
		Variants:    variants,
		CreatedAt:   product.CreatedAt,
		UpdatedAt:   product.UpdatedAt,
	}
}

// NewProductDTOs maps a product page.
func NewProductDTOs(products []models.Product) []ProductDTO {
	out := make([]ProductDTO, 0, len(products))
	for i := range products {
		out = append(out, *NewProductDTO(&products[i]))
	}
	return out
}

// NewVariantDTO builds the variant payload from the persisted model.
func NewVariantDTO(variant *models.ProductVariant) VariantDTO {
	return VariantDTO{
		ID:         variant.ID,
		Name:       variant.Name,
		PriceCents: variant.PriceCents,
		Stock:      variant.Stock,
		UpdatedAt:  variant.UpdatedAt,
	}
}
