package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/medkitstore/medkit-backend/pkg/db/models"
	"github.com/medkitstore/medkit-backend/pkg/pagination"
)

// ListFilters narrows the public and admin product listings.
type ListFilters struct {
	Category        string
	Search          string
	FeaturedOnly    bool
	IncludeInactive bool
	PriceMinCents   *int
	PriceMaxCents   *int
	SortBy          string
	SortDesc        bool
}

// Columns the public listing may sort on. Keys are the API names.
var sortColumns = map[string]string{
	"created_at":   "created_at",
	"product_name": "name",
	"category":     "category",
}

// Repository wires together catalog persistence helpers.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return &Repository{db: tx}
}

func preloadVariants(db *gorm.DB) *gorm.DB {
	return db.Order("name ASC")
}

// FindByID loads the product with its variants.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		First(&product, "id = ?", id).
		Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

// FindVariant loads a single variant row by id.
func (r *Repository) FindVariant(ctx context.Context, id uuid.UUID) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	if err := r.db.WithContext(ctx).First(&variant, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &variant, nil
}

// FindVariantByName loads the variant identified by product and brand name.
func (r *Repository) FindVariantByName(ctx context.Context, productID uuid.UUID, name string) (*models.ProductVariant, error) {
	var variant models.ProductVariant
	err := r.db.WithContext(ctx).
		First(&variant, "product_id = ? AND name = ?", productID, name).
		Error
	if err != nil {
		return nil, err
	}
	return &variant, nil
}

// List returns one page of products plus the total row count for the filters.
func (r *Repository) List(ctx context.Context, filters ListFilters, params pagination.Params) ([]models.Product, int64, error) {
	qb := r.db.WithContext(ctx).Model(&models.Product{})

	if !filters.IncludeInactive {
		qb = qb.Where("is_active = ?", true)
	}
	if filters.FeaturedOnly {
		qb = qb.Where("is_featured = ?", true)
	}
	if filters.Category != "" {
		qb = qb.Where("category = ?", filters.Category)
	}
	if search := strings.TrimSpace(filters.Search); search != "" {
		pattern := "%" + strings.ToLower(search) + "%"
		qb = qb.Where("(LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(category) LIKE ?)",
			pattern, pattern, pattern)
	}
	if filters.PriceMinCents != nil {
		qb = qb.Where("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.price_cents >= ?)",
			*filters.PriceMinCents)
	}
	if filters.PriceMaxCents != nil {
		qb = qb.Where("EXISTS (SELECT 1 FROM product_variants v WHERE v.product_id = products.id AND v.price_cents <= ?)",
			*filters.PriceMaxCents)
	}

	var total int64
	if err := qb.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := sortColumns[filters.SortBy]
	if !ok {
		column = "created_at"
	}
	direction := "ASC"
	if filters.SortDesc || filters.SortBy == "" {
		direction = "DESC"
	}

	normalized := params.Normalize()
	var rows []models.Product
	err := qb.
		Preload("Variants", preloadVariants).
		Order(fmt.Sprintf("%s %s", column, direction)).
		Offset(params.Offset()).
		Limit(normalized.Limit).
		Find(&rows).
		Error
	return rows, total, err
}

// Categories returns the distinct category names of active products.
func (r *Repository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("is_active = ?", true).
		Distinct("category").
		Order("category ASC").
		Pluck("category", &categories).
		Error
	return categories, err
}

// ListFeatured returns the most recent featured active products.
func (r *Repository) ListFeatured(ctx context.Context, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		Where("is_featured = ? AND is_active = ?", true, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// ListRelated returns other active products sharing the category.
func (r *Repository) ListRelated(ctx context.Context, productID uuid.UUID, category string, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := r.db.WithContext(ctx).
		Preload("Variants", preloadVariants).
		Where("category = ? AND id <> ? AND is_active = ?", category, productID, true).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	return rows, err
}

// Create inserts a product with its variants.
func (r *Repository) Create(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Create(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Update saves the product row without touching variants.
func (r *Repository) Update(ctx context.Context, product *models.Product) (*models.Product, error) {
	if err := r.db.WithContext(ctx).Omit("Variants").Save(product).Error; err != nil {
		return nil, err
	}
	return product, nil
}

// Delete removes a product and its variants.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", id).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	return tx.Where("id = ?", id).Delete(&models.Product{}).Error
}

// ReplaceVariants swaps the product's variant set for the provided one.
func (r *Repository) ReplaceVariants(ctx context.Context, productID uuid.UUID, variants []models.ProductVariant) error {
	tx := r.db.WithContext(ctx)
	if err := tx.Where("product_id = ?", productID).Delete(&models.ProductVariant{}).Error; err != nil {
		return err
	}
	if len(variants) == 0 {
		return nil
	}
	return tx.Create(&variants).Error
}

// SetVariantStock overwrites the stock level for a variant. Returns the number
// of rows touched so callers can distinguish a missing variant.
func (r *Repository) SetVariantStock(ctx context.Context, variantID uuid.UUID, stock int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ?", variantID).
		Update("stock", stock)
	return result.RowsAffected, result.Error
}

// DecrementStock conditionally subtracts quantity from a variant's stock.
// The guard in the WHERE clause keeps concurrent finalizations from driving
// stock negative; zero rows affected means the stock was insufficient.
func (r *Repository) DecrementStock(ctx context.Context, productID uuid.UUID, variantName string, quantity int) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("product_id = ? AND name = ? AND stock >= ?", productID, variantName, quantity).
		Update("stock", gorm.Expr("stock - ?", quantity))
	return result.RowsAffected, result.Error
}
