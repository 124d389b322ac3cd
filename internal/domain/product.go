package domain

import "time"

// Text search weights declared by the catalog schema. A name match
// counts twice a description match.
const (
	SearchWeightName        = 10
	SearchWeightDescription = 5
)

// Product is a catalog item. Category and sub-category references are
// kept in join rows (no database foreign keys) so a reference may
// outlive its target; readers resolve lazily and omit dangling ids.
type Product struct {
	ID           int64      `json:"id,string" gorm:"primaryKey"`
	Name         string     `gorm:"index" json:"name"`
	Images       StringList `gorm:"type:text" json:"images"`
	Unit         string     `json:"unit"`
	Stock        *int64     `json:"stock"`
	Price        *float64   `json:"price"`
	Discount     *float64   `json:"discount"`
	Description  string     `gorm:"type:text" json:"description"`
	ExtraDetails AttrMap    `gorm:"type:text" json:"extraDetails"`
	Published    bool       `json:"published"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `gorm:"index" json:"updatedAt"`

	// Case-folded, diacritic-stripped copies of name and description,
	// kept in sync on every write; the search prefilter matches these.
	SearchName string `gorm:"index" json:"-"`
	SearchDesc string `gorm:"type:text" json:"-"`

	// Loaded from join rows, not columns.
	CategoryIDs    Int64List `gorm:"-" json:"categories"`
	SubCategoryIDs Int64List `gorm:"-" json:"subCategories"`
}

func (Product) TableName() string {
	return "catalog_product"
}

// ProductCategory links a product to a category.
type ProductCategory struct {
	ProductID  int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id,string"`
	CategoryID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"category_id,string"`
}

func (ProductCategory) TableName() string {
	return "catalog_product_category"
}

// ProductSubCategory links a product to a sub-category.
type ProductSubCategory struct {
	ProductID     int64 `gorm:"primaryKey;autoIncrement:false" json:"product_id,string"`
	SubCategoryID int64 `gorm:"primaryKey;autoIncrement:false;index" json:"sub_category_id,string"`
}

func (ProductSubCategory) TableName() string {
	return "catalog_product_sub_category"
}
