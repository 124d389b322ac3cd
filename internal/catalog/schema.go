package catalog

import (
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/quickbasket/quickbasket/internal/domain"
)

// ValidateProduct checks schema constraints on a fully merged product.
// ExtraDetails is open-ended and never validated beyond being a map.
func ValidateProduct(p *domain.Product) error {
	if strings.TrimSpace(p.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if p.Price != nil && *p.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must not be negative"}
	}
	if p.Stock != nil && *p.Stock < 0 {
		return &ValidationError{Field: "stock", Reason: "must not be negative"}
	}
	if p.Discount != nil && *p.Discount < 0 {
		return &ValidationError{Field: "discount", Reason: "must not be negative"}
	}
	return nil
}

func ValidateCategory(c *domain.Category) error {
	if strings.TrimSpace(c.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	return nil
}

func ValidateSubCategory(s *domain.SubCategory) error {
	if strings.TrimSpace(s.Name) == "" {
		return &ValidationError{Field: "name", Reason: "is required"}
	}
	if len(s.CategoryIDs) == 0 {
		return &ValidationError{Field: "categories", Reason: "at least one category is required"}
	}
	return nil
}

// EnsureSearchIndex creates the weighted text index over the
// normalized product name and description columns. On postgres this is
// a GIN tsvector expression index ('A' ~ name, 'B' ~ description)
// used to prefilter search candidates;
// relevance scoring itself lives in the query engine so the ranking
// contract is identical across database backends.
func EnsureSearchIndex(db *gorm.DB) error {
	if db.Name() != "postgres" {
		return nil
	}
	ddl := `CREATE INDEX IF NOT EXISTS idx_catalog_product_search
ON catalog_product USING GIN (
  (setweight(to_tsvector('simple', coalesce(search_name, '')), 'A') ||
   setweight(to_tsvector('simple', coalesce(search_desc, '')), 'B'))
)`
	if err := db.Exec(ddl).Error; err != nil {
		zap.L().Error("failed to create product search index", zap.Error(err))
		return err
	}
	return nil
}
