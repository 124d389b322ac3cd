package catalog

import (
	"context"
	"sort"
	"strings"
	"unicode"

	perrors "github.com/pkg/errors"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/quickbasket/quickbasket/internal/domain"
)

const (
	// DefaultPageSize bounds a list request that supplies no limit.
	DefaultPageSize = 20
	// MaxPageSize caps any caller-supplied limit.
	MaxPageSize = 100
	// searchCandidateCap bounds the rows pulled for in-engine ranking.
	searchCandidateCap = 1000
)

// Page is an offset/limit window over a list operation.
type Page struct {
	Offset int
	Limit  int
}

// Normalize bounds the window: negative offsets become zero, a zero
// limit falls back to DefaultPageSize and anything above MaxPageSize
// is clamped.
func (p Page) Normalize() Page {
	if p.Offset < 0 {
		p.Offset = 0
	}
	if p.Limit <= 0 {
		p.Limit = DefaultPageSize
	}
	if p.Limit > MaxPageSize {
		p.Limit = MaxPageSize
	}
	return p
}

// SearchFilters narrows a text search.
type SearchFilters struct {
	// PublishedOnly hides unpublished products (storefront view).
	// Admin views keep it false and see everything.
	PublishedOnly bool
	CategoryID    int64
}

// SubCategoryView is a sub-category with its category references
// eagerly resolved. Dangling references are omitted from Categories
// while the raw id set stays intact.
type SubCategoryView struct {
	domain.SubCategory
	Categories []CategoryRef `json:"category"`
}

// ProductView is a product with its category references resolved the
// same way.
type ProductView struct {
	domain.Product
	Categories []CategoryRef `json:"category"`
}

// Query is the catalog read side: weighted text search plus the
// structured list operations.
type Query struct {
	repo *Repository
}

func NewQuery(repo *Repository) *Query {
	return &Query{repo: repo}
}

// Diacritics are stripped and case folded so "Açaí" matches "acai".
var termNormalizer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func normalizeTerm(s string) string {
	out, _, err := transform.String(termNormalizer, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(out)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(normalizeTerm(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// termFrequency counts occurrences of each query token in the field.
func termFrequency(fieldTokens []string, queryTokens []string) int {
	n := 0
	for _, q := range queryTokens {
		for _, f := range fieldTokens {
			if f == q {
				n++
			}
		}
	}
	return n
}

func scoreProduct(p *domain.Product, queryTokens []string) int {
	score := domain.SearchWeightName * termFrequency(tokenize(p.Name), queryTokens)
	score += domain.SearchWeightDescription * termFrequency(tokenize(p.Description), queryTokens)
	return score
}

// Search runs the weighted free-text match across name and description.
// A name match contributes SearchWeightName per occurrence, a
// description match SearchWeightDescription; results come back ordered
// by descending score, ties broken by most recent update. No match is
// an empty slice, not an error.
func (q *Query) Search(ctx context.Context, term string, filters SearchFilters, page Page) ([]domain.Product, error) {
	page = page.Normalize()
	tokens := tokenize(term)
	if len(tokens) == 0 {
		return []domain.Product{}, nil
	}

	db := q.repo.db.WithContext(ctx).Model(&domain.Product{})
	if filters.PublishedOnly {
		db = db.Where("published = ?", true)
	}
	if filters.CategoryID != 0 {
		db = db.Where("id IN (?)", q.repo.db.Model(&domain.ProductCategory{}).
			Select("product_id").Where("category_id = ?", filters.CategoryID))
	}

	// Prefilter candidates with LIKE per token against the normalized
	// shadow columns; exact scoring happens below over tokenized fields.
	var conds []string
	var args []interface{}
	for _, tok := range tokens {
		conds = append(conds, "(search_name LIKE ? OR search_desc LIKE ?)")
		pat := "%" + tok + "%"
		args = append(args, pat, pat)
	}
	db = db.Where("("+strings.Join(conds, " OR ")+")", args...)

	var candidates []domain.Product
	if err := db.Limit(searchCandidateCap).Find(&candidates).Error; err != nil {
		return nil, perrors.Wrap(err, "query search candidates")
	}

	type scored struct {
		product domain.Product
		score   int
	}
	ranked := make([]scored, 0, len(candidates))
	for _, p := range candidates {
		if s := scoreProduct(&p, tokens); s > 0 {
			ranked = append(ranked, scored{product: p, score: s})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].product.UpdatedAt.After(ranked[j].product.UpdatedAt)
	})

	if page.Offset >= len(ranked) {
		return []domain.Product{}, nil
	}
	end := page.Offset + page.Limit
	if end > len(ranked) {
		end = len(ranked)
	}
	out := make([]domain.Product, 0, end-page.Offset)
	for _, s := range ranked[page.Offset:end] {
		p := s.product
		if err := q.repo.loadProductRefs(ctx, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// GetProduct returns one product with category summaries resolved.
// A dangling category reference is omitted from the resolved list
// rather than faulting the read.
func (q *Query) GetProduct(ctx context.Context, id int64) (*ProductView, error) {
	p, err := q.repo.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	refs, err := q.repo.ResolveCategoryRefs(ctx, p.CategoryIDs)
	if err != nil {
		return nil, err
	}
	return &ProductView{Product: *p, Categories: refs}, nil
}

// ListByCategory returns the products referencing a category in
// creation order, no ranking.
func (q *Query) ListByCategory(ctx context.Context, categoryID int64, page Page) ([]domain.Product, error) {
	page = page.Normalize()
	sub := q.repo.db.Model(&domain.ProductCategory{}).
		Select("product_id").Where("category_id = ?", categoryID)

	var products []domain.Product
	err := q.repo.db.WithContext(ctx).
		Where("id IN (?)", sub).
		Order("id ASC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, perrors.Wrap(err, "query products by category")
	}
	for i := range products {
		if err := q.repo.loadProductRefs(ctx, &products[i]); err != nil {
			return nil, err
		}
	}
	return products, nil
}

// ListProducts returns all products in creation order.
func (q *Query) ListProducts(ctx context.Context, page Page) ([]domain.Product, int64, error) {
	page = page.Normalize()
	var total int64
	if err := q.repo.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error; err != nil {
		return nil, 0, perrors.Wrap(err, "count products")
	}
	var products []domain.Product
	err := q.repo.db.WithContext(ctx).
		Order("id ASC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, perrors.Wrap(err, "query products")
	}
	for i := range products {
		if err := q.repo.loadProductRefs(ctx, &products[i]); err != nil {
			return nil, 0, err
		}
	}
	return products, total, nil
}

// ListCategories returns categories in creation order.
func (q *Query) ListCategories(ctx context.Context, page Page) ([]domain.Category, error) {
	page = page.Normalize()
	var cats []domain.Category
	err := q.repo.db.WithContext(ctx).
		Order("id ASC").
		Offset(page.Offset).Limit(page.Limit).
		Find(&cats).Error
	if err != nil {
		return nil, perrors.Wrap(err, "query categories")
	}
	return cats, nil
}

// ListSubCategories returns sub-categories, optionally those
// referencing one category, with category summaries eagerly resolved.
// A reference that no longer resolves is omitted from the resolved
// list rather than faulting the query.
func (q *Query) ListSubCategories(ctx context.Context, categoryID int64, page Page) ([]SubCategoryView, error) {
	page = page.Normalize()
	db := q.repo.db.WithContext(ctx).Model(&domain.SubCategory{})
	if categoryID != 0 {
		db = db.Where("id IN (?)", q.repo.db.Model(&domain.SubCategoryCategory{}).
			Select("sub_category_id").Where("category_id = ?", categoryID))
	}

	var subs []domain.SubCategory
	if err := db.Order("id ASC").Offset(page.Offset).Limit(page.Limit).Find(&subs).Error; err != nil {
		return nil, perrors.Wrap(err, "query sub-categories")
	}

	views := make([]SubCategoryView, 0, len(subs))
	for i := range subs {
		if err := q.repo.loadSubCategoryRefs(ctx, &subs[i]); err != nil {
			return nil, err
		}
		refs, err := q.repo.ResolveCategoryRefs(ctx, subs[i].CategoryIDs)
		if err != nil {
			return nil, err
		}
		views = append(views, SubCategoryView{SubCategory: subs[i], Categories: refs})
	}
	return views, nil
}
