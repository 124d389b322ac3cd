package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	perrors "github.com/pkg/errors"
	"gorm.io/gorm"

	"github.com/quickbasket/quickbasket/internal/domain"
	"github.com/quickbasket/quickbasket/pkg/common"
)

// Repository is the mutation gateway: every write is validated against
// the catalog schema and applied transactionally, so a rejected
// mutation leaves no partial state. Deleting a category or
// sub-category never cascades; dependent references go dangling and
// are omitted at read time.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) DB() *gorm.DB {
	return r.db
}

// CategoryRef is a resolved category summary used in read views.
type CategoryRef struct {
	ID   int64  `json:"id,string"`
	Name string `json:"name"`
}

// ProductPatch carries the fields of a partial product update. Nil
// means the field was not provided and keeps its stored value.
type ProductPatch struct {
	Name           *string
	Images         *domain.StringList
	CategoryIDs    *domain.Int64List
	SubCategoryIDs *domain.Int64List
	Unit           *string
	Stock          *int64
	Price          *float64
	Discount       *float64
	Description    *string
	ExtraDetails   *domain.AttrMap
	Published      *bool
}

// SubCategoryPatch carries the fields of a partial sub-category update.
type SubCategoryPatch struct {
	Name        *string
	Image       *string
	CategoryIDs *domain.Int64List
}

// CategoryPatch carries the fields of a partial category update.
type CategoryPatch struct {
	Name  *string
	Image *string
}

// checkCategoryRefs verifies every id resolves to a stored category
// inside the caller's transaction.
func checkCategoryRefs(tx *gorm.DB, ids domain.Int64List) error {
	for _, id := range ids {
		var n int64
		if err := tx.Model(&domain.Category{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return perrors.Wrap(err, "resolve category reference")
		}
		if n == 0 {
			return &InvalidReferenceError{Kind: "category", ID: id}
		}
	}
	return nil
}

func checkSubCategoryRefs(tx *gorm.DB, ids domain.Int64List) error {
	for _, id := range ids {
		var n int64
		if err := tx.Model(&domain.SubCategory{}).Where("id = ?", id).Count(&n).Error; err != nil {
			return perrors.Wrap(err, "resolve sub-category reference")
		}
		if n == 0 {
			return &InvalidReferenceError{Kind: "sub-category", ID: id}
		}
	}
	return nil
}

func dedupIDs(ids domain.Int64List) domain.Int64List {
	seen := make(map[int64]struct{}, len(ids))
	out := make(domain.Int64List, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CreateProduct validates input, assigns id and timestamps, persists
// the product with its reference rows and returns the stored value.
func (r *Repository) CreateProduct(ctx context.Context, p *domain.Product) (*domain.Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.CategoryIDs = dedupIDs(p.CategoryIDs)
	p.SubCategoryIDs = dedupIDs(p.SubCategoryIDs)
	if err := ValidateProduct(p); err != nil {
		return nil, err
	}

	now := time.Now()
	p.ID = common.UUIDint64()
	p.CreatedAt = now
	p.UpdatedAt = now
	p.SearchName = normalizeTerm(p.Name)
	p.SearchDesc = normalizeTerm(p.Description)
	if p.Images == nil {
		p.Images = domain.StringList{}
	}
	if p.ExtraDetails == nil {
		p.ExtraDetails = domain.AttrMap{}
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategoryRefs(tx, p.CategoryIDs); err != nil {
			return err
		}
		if err := checkSubCategoryRefs(tx, p.SubCategoryIDs); err != nil {
			return err
		}
		if err := tx.Create(p).Error; err != nil {
			return perrors.Wrap(err, "create product")
		}
		return writeProductRefs(tx, p.ID, p.CategoryIDs, p.SubCategoryIDs)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func writeProductRefs(tx *gorm.DB, productID int64, cats, subs domain.Int64List) error {
	for _, id := range cats {
		if err := tx.Create(&domain.ProductCategory{ProductID: productID, CategoryID: id}).Error; err != nil {
			return perrors.Wrap(err, "write product category reference")
		}
	}
	for _, id := range subs {
		if err := tx.Create(&domain.ProductSubCategory{ProductID: productID, SubCategoryID: id}).Error; err != nil {
			return perrors.Wrap(err, "write product sub-category reference")
		}
	}
	return nil
}

// GetProduct loads a product with its reference id sets.
func (r *Repository) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "product", ID: id}
	}
	if err != nil {
		return nil, perrors.Wrap(err, "query product")
	}
	if err := r.loadProductRefs(ctx, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *Repository) loadProductRefs(ctx context.Context, p *domain.Product) error {
	var prows []domain.ProductCategory
	if err := r.db.WithContext(ctx).Where("product_id = ?", p.ID).Find(&prows).Error; err != nil {
		return perrors.Wrap(err, "load product category references")
	}
	p.CategoryIDs = make(domain.Int64List, 0, len(prows))
	for _, row := range prows {
		p.CategoryIDs = append(p.CategoryIDs, row.CategoryID)
	}

	var srows []domain.ProductSubCategory
	if err := r.db.WithContext(ctx).Where("product_id = ?", p.ID).Find(&srows).Error; err != nil {
		return perrors.Wrap(err, "load product sub-category references")
	}
	p.SubCategoryIDs = make(domain.Int64List, 0, len(srows))
	for _, row := range srows {
		p.SubCategoryIDs = append(p.SubCategoryIDs, row.SubCategoryID)
	}
	return nil
}

// UpdateProduct merges provided fields into the stored product,
// re-validates and persists. Reference sets, when provided, replace
// the stored sets and every id must resolve at call time.
func (r *Repository) UpdateProduct(ctx context.Context, id int64, patch ProductPatch) (*domain.Product, error) {
	var out *domain.Product
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var p domain.Product
		err := tx.Where("id = ?", id).First(&p).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Kind: "product", ID: id}
		}
		if err != nil {
			return perrors.Wrap(err, "query product")
		}

		if patch.Name != nil {
			p.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Images != nil {
			p.Images = *patch.Images
		}
		if patch.Unit != nil {
			p.Unit = *patch.Unit
		}
		if patch.Stock != nil {
			p.Stock = patch.Stock
		}
		if patch.Price != nil {
			p.Price = patch.Price
		}
		if patch.Discount != nil {
			p.Discount = patch.Discount
		}
		if patch.Description != nil {
			p.Description = *patch.Description
		}
		if patch.ExtraDetails != nil {
			p.ExtraDetails = *patch.ExtraDetails
		}
		if patch.Published != nil {
			p.Published = *patch.Published
		}
		if err := ValidateProduct(&p); err != nil {
			return err
		}

		if patch.CategoryIDs != nil {
			cats := dedupIDs(*patch.CategoryIDs)
			if err := checkCategoryRefs(tx, cats); err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", id).Delete(&domain.ProductCategory{}).Error; err != nil {
				return perrors.Wrap(err, "replace product category references")
			}
			for _, cid := range cats {
				if err := tx.Create(&domain.ProductCategory{ProductID: id, CategoryID: cid}).Error; err != nil {
					return perrors.Wrap(err, "write product category reference")
				}
			}
		}
		if patch.SubCategoryIDs != nil {
			subs := dedupIDs(*patch.SubCategoryIDs)
			if err := checkSubCategoryRefs(tx, subs); err != nil {
				return err
			}
			if err := tx.Where("product_id = ?", id).Delete(&domain.ProductSubCategory{}).Error; err != nil {
				return perrors.Wrap(err, "replace product sub-category references")
			}
			for _, sid := range subs {
				if err := tx.Create(&domain.ProductSubCategory{ProductID: id, SubCategoryID: sid}).Error; err != nil {
					return perrors.Wrap(err, "write product sub-category reference")
				}
			}
		}

		p.UpdatedAt = time.Now()
		p.SearchName = normalizeTerm(p.Name)
		p.SearchDesc = normalizeTerm(p.Description)
		if err := tx.Save(&p).Error; err != nil {
			return perrors.Wrap(err, "update product")
		}
		out = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.loadProductRefs(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteProduct removes a product and its reference rows. A second
// delete of the same id observes the row already gone and fails
// NotFound without touching other records.
func (r *Repository) DeleteProduct(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.Product{})
		if res.Error != nil {
			return perrors.Wrap(res.Error, "delete product")
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Kind: "product", ID: id}
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductCategory{}).Error; err != nil {
			return perrors.Wrap(err, "delete product category references")
		}
		if err := tx.Where("product_id = ?", id).Delete(&domain.ProductSubCategory{}).Error; err != nil {
			return perrors.Wrap(err, "delete product sub-category references")
		}
		return nil
	})
}

// CreateCategory validates and persists a category.
func (r *Repository) CreateCategory(ctx context.Context, c *domain.Category) (*domain.Category, error) {
	c.Name = strings.TrimSpace(c.Name)
	if err := ValidateCategory(c); err != nil {
		return nil, err
	}
	now := time.Now()
	c.ID = common.UUIDint64()
	c.CreatedAt = now
	c.UpdatedAt = now
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, perrors.Wrap(err, "create category")
	}
	return c, nil
}

func (r *Repository) GetCategory(ctx context.Context, id int64) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "category", ID: id}
	}
	if err != nil {
		return nil, perrors.Wrap(err, "query category")
	}
	return &c, nil
}

func (r *Repository) UpdateCategory(ctx context.Context, id int64, patch CategoryPatch) (*domain.Category, error) {
	var c domain.Category
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "category", ID: id}
	}
	if err != nil {
		return nil, perrors.Wrap(err, "query category")
	}
	if patch.Name != nil {
		c.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Image != nil {
		c.Image = *patch.Image
	}
	if err := ValidateCategory(&c); err != nil {
		return nil, err
	}
	c.UpdatedAt = time.Now()
	if err := r.db.WithContext(ctx).Save(&c).Error; err != nil {
		return nil, perrors.Wrap(err, "update category")
	}
	return &c, nil
}

// DeleteCategory removes the category only. Products and
// sub-categories referencing it keep their now-dangling reference.
func (r *Repository) DeleteCategory(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Category{})
	if res.Error != nil {
		return perrors.Wrap(res.Error, "delete category")
	}
	if res.RowsAffected == 0 {
		return &NotFoundError{Kind: "category", ID: id}
	}
	return nil
}

// CreateSubCategory validates the category reference set (every id
// must resolve at call time, all-or-nothing) and persists.
func (r *Repository) CreateSubCategory(ctx context.Context, s *domain.SubCategory) (*domain.SubCategory, error) {
	s.Name = strings.TrimSpace(s.Name)
	s.CategoryIDs = dedupIDs(s.CategoryIDs)
	if err := ValidateSubCategory(s); err != nil {
		return nil, err
	}
	now := time.Now()
	s.ID = common.UUIDint64()
	s.CreatedAt = now
	s.UpdatedAt = now
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := checkCategoryRefs(tx, s.CategoryIDs); err != nil {
			return err
		}
		if err := tx.Create(s).Error; err != nil {
			return perrors.Wrap(err, "create sub-category")
		}
		for _, cid := range s.CategoryIDs {
			if err := tx.Create(&domain.SubCategoryCategory{SubCategoryID: s.ID, CategoryID: cid}).Error; err != nil {
				return perrors.Wrap(err, "write sub-category category reference")
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *Repository) GetSubCategory(ctx context.Context, id int64) (*domain.SubCategory, error) {
	var s domain.SubCategory
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, &NotFoundError{Kind: "sub-category", ID: id}
	}
	if err != nil {
		return nil, perrors.Wrap(err, "query sub-category")
	}
	if err := r.loadSubCategoryRefs(ctx, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *Repository) loadSubCategoryRefs(ctx context.Context, s *domain.SubCategory) error {
	var rows []domain.SubCategoryCategory
	if err := r.db.WithContext(ctx).Where("sub_category_id = ?", s.ID).Find(&rows).Error; err != nil {
		return perrors.Wrap(err, "load sub-category category references")
	}
	s.CategoryIDs = make(domain.Int64List, 0, len(rows))
	for _, row := range rows {
		s.CategoryIDs = append(s.CategoryIDs, row.CategoryID)
	}
	return nil
}

func (r *Repository) UpdateSubCategory(ctx context.Context, id int64, patch SubCategoryPatch) (*domain.SubCategory, error) {
	var out *domain.SubCategory
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s domain.SubCategory
		err := tx.Where("id = ?", id).First(&s).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &NotFoundError{Kind: "sub-category", ID: id}
		}
		if err != nil {
			return perrors.Wrap(err, "query sub-category")
		}
		if patch.Name != nil {
			s.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Image != nil {
			s.Image = *patch.Image
		}
		if patch.CategoryIDs != nil {
			cats := dedupIDs(*patch.CategoryIDs)
			if len(cats) == 0 {
				return &ValidationError{Field: "categories", Reason: "at least one category is required"}
			}
			if err := checkCategoryRefs(tx, cats); err != nil {
				return err
			}
			if err := tx.Where("sub_category_id = ?", id).Delete(&domain.SubCategoryCategory{}).Error; err != nil {
				return perrors.Wrap(err, "replace sub-category category references")
			}
			for _, cid := range cats {
				if err := tx.Create(&domain.SubCategoryCategory{SubCategoryID: id, CategoryID: cid}).Error; err != nil {
					return perrors.Wrap(err, "write sub-category category reference")
				}
			}
		}
		if strings.TrimSpace(s.Name) == "" {
			return &ValidationError{Field: "name", Reason: "is required"}
		}
		s.UpdatedAt = time.Now()
		if err := tx.Save(&s).Error; err != nil {
			return perrors.Wrap(err, "update sub-category")
		}
		out = &s
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := r.loadSubCategoryRefs(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteSubCategory removes the sub-category only; the delete never
// cascades to products referencing it.
func (r *Repository) DeleteSubCategory(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&domain.SubCategory{})
		if res.Error != nil {
			return perrors.Wrap(res.Error, "delete sub-category")
		}
		if res.RowsAffected == 0 {
			return &NotFoundError{Kind: "sub-category", ID: id}
		}
		if err := tx.Where("sub_category_id = ?", id).Delete(&domain.SubCategoryCategory{}).Error; err != nil {
			return perrors.Wrap(err, "delete sub-category category references")
		}
		return nil
	})
}

// ResolveCategoryRefs resolves ids to summaries. Unresolved ids are
// silently omitted, never an error.
func (r *Repository) ResolveCategoryRefs(ctx context.Context, ids domain.Int64List) ([]CategoryRef, error) {
	refs := make([]CategoryRef, 0, len(ids))
	if len(ids) == 0 {
		return refs, nil
	}
	var cats []domain.Category
	if err := r.db.WithContext(ctx).Where("id IN ?", []int64(ids)).Find(&cats).Error; err != nil {
		return nil, perrors.Wrap(err, "resolve category references")
	}
	byID := make(map[int64]domain.Category, len(cats))
	for _, c := range cats {
		byID[c.ID] = c
	}
	for _, id := range ids {
		if c, ok := byID[id]; ok {
			refs = append(refs, CategoryRef{ID: c.ID, Name: c.Name})
		}
	}
	return refs, nil
}
