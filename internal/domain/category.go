package domain

import "time"

// Category is a top-level catalog grouping.
type Category struct {
	ID        int64     `json:"id,string" gorm:"primaryKey"`
	Name      string    `gorm:"index" json:"name"`
	Image     string    `gorm:"size:1024" json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Category) TableName() string {
	return "catalog_category"
}

// SubCategory belongs to one or more categories (many-to-many through
// SubCategoryCategory rows).
type SubCategory struct {
	ID        int64     `json:"id,string" gorm:"primaryKey"`
	Name      string    `gorm:"index" json:"name"`
	Image     string    `gorm:"size:1024" json:"image"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	CategoryIDs Int64List `gorm:"-" json:"categories"`
}

func (SubCategory) TableName() string {
	return "catalog_sub_category"
}

// SubCategoryCategory links a sub-category to a category.
type SubCategoryCategory struct {
	SubCategoryID int64 `gorm:"primaryKey;autoIncrement:false" json:"sub_category_id,string"`
	CategoryID    int64 `gorm:"primaryKey;autoIncrement:false;index" json:"category_id,string"`
}

func (SubCategoryCategory) TableName() string {
	return "catalog_sub_category_category"
}
