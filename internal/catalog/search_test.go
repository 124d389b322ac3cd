package catalog

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quickbasket/quickbasket/internal/domain"
)

func TestSearchFindsCreatedProductByName(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	p, err := repo.CreateProduct(ctx, &domain.Product{Name: "Mango Juice", Price: floatPtr(50)})
	require.NoError(t, err)

	results, err := q.Search(ctx, "Mango Juice", SearchFilters{}, Page{})
	require.NoError(t, err)
	require.NotEmpty(t, results)
	assert.Equal(t, p.ID, results[0].ID)
}

func TestSearchNameOutranksDescription(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	_, err := repo.CreateProduct(ctx, &domain.Product{Name: "Organic Apple"})
	require.NoError(t, err)
	_, err = repo.CreateProduct(ctx, &domain.Product{
		Name:        "Apple Juice",
		Description: "made from organic apples",
	})
	require.NoError(t, err)

	results, err := q.Search(ctx, "organic apple", SearchFilters{}, Page{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Organic Apple", results[0].Name)
	assert.Equal(t, "Apple Juice", results[1].Name)
}

func TestSearchNoMatchIsEmptyNotError(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)

	results, err := q.Search(context.Background(), "zanzibar", SearchFilters{}, Page{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestSearchTieBreaksByMostRecentUpdate(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	older, err := repo.CreateProduct(ctx, &domain.Product{Name: "Butter"})
	require.NoError(t, err)
	newer, err := repo.CreateProduct(ctx, &domain.Product{Name: "Butter"})
	require.NoError(t, err)

	// push the second product's update forward
	require.NoError(t, repo.DB().Model(&domain.Product{}).Where("id = ?", newer.ID).
		Update("updated_at", time.Now().Add(time.Hour)).Error)

	results, err := q.Search(ctx, "butter", SearchFilters{}, Page{})
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, newer.ID, results[0].ID)
	assert.Equal(t, older.ID, results[1].ID)
}

func TestSearchPublishedFilter(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	_, err := repo.CreateProduct(ctx, &domain.Product{Name: "Hidden Honey", Published: false})
	require.NoError(t, err)
	shown, err := repo.CreateProduct(ctx, &domain.Product{Name: "Honey", Published: true})
	require.NoError(t, err)

	results, err := q.Search(ctx, "honey", SearchFilters{PublishedOnly: true}, Page{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, shown.ID, results[0].ID)

	// admin view sees both
	results, err = q.Search(ctx, "honey", SearchFilters{}, Page{})
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestListByCategoryScenario(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	beverages := mustCreateCategory(t, repo, "Beverages")
	juices, err := repo.CreateSubCategory(ctx, &domain.SubCategory{
		Name:        "Juices",
		CategoryIDs: domain.Int64List{beverages.ID},
	})
	require.NoError(t, err)

	_, err = repo.CreateProduct(ctx, &domain.Product{
		Name:           "Mango Juice",
		CategoryIDs:    domain.Int64List{beverages.ID},
		SubCategoryIDs: domain.Int64List{juices.ID},
		Price:          floatPtr(50),
	})
	require.NoError(t, err)

	products, err := q.ListByCategory(ctx, beverages.ID, Page{})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "Mango Juice", products[0].Name)
	require.NotNil(t, products[0].Price)
	assert.Equal(t, 50.0, *products[0].Price)
}

func TestListByCategoryPreservesCreationOrder(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	cat := mustCreateCategory(t, repo, "Pantry")
	var want []int64
	for i := 0; i < 5; i++ {
		p, err := repo.CreateProduct(ctx, &domain.Product{
			Name:        fmt.Sprintf("Item %d", i),
			CategoryIDs: domain.Int64List{cat.ID},
		})
		require.NoError(t, err)
		want = append(want, p.ID)
	}

	products, err := q.ListByCategory(ctx, cat.ID, Page{})
	require.NoError(t, err)
	require.Len(t, products, 5)
	for i, p := range products {
		assert.Equal(t, want[i], p.ID)
	}
}

func TestListSubCategoriesResolvesAndOmitsDangling(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	kept := mustCreateCategory(t, repo, "Beverages")
	doomed := mustCreateCategory(t, repo, "Seasonal")

	_, err := repo.CreateSubCategory(ctx, &domain.SubCategory{
		Name:        "Juices",
		CategoryIDs: domain.Int64List{kept.ID, doomed.ID},
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCategory(ctx, doomed.ID))

	views, err := q.ListSubCategories(ctx, 0, Page{})
	require.NoError(t, err)
	require.Len(t, views, 1)

	// both ids stay stored, only the resolvable one appears
	assert.Len(t, views[0].CategoryIDs, 2)
	require.Len(t, views[0].Categories, 1)
	assert.Equal(t, kept.ID, views[0].Categories[0].ID)
	assert.Equal(t, "Beverages", views[0].Categories[0].Name)
}

func TestListSubCategoriesFilterByCategory(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	a := mustCreateCategory(t, repo, "Frozen")
	b := mustCreateCategory(t, repo, "Fresh")

	_, err := repo.CreateSubCategory(ctx, &domain.SubCategory{Name: "Ice Cream", CategoryIDs: domain.Int64List{a.ID}})
	require.NoError(t, err)
	_, err = repo.CreateSubCategory(ctx, &domain.SubCategory{Name: "Salads", CategoryIDs: domain.Int64List{b.ID}})
	require.NoError(t, err)

	views, err := q.ListSubCategories(ctx, a.ID, Page{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Equal(t, "Ice Cream", views[0].Name)
}

func TestPageLimitDefaultsAndCap(t *testing.T) {
	p := Page{}.Normalize()
	assert.Equal(t, DefaultPageSize, p.Limit)

	p = Page{Limit: 100000, Offset: -3}.Normalize()
	assert.Equal(t, MaxPageSize, p.Limit)
	assert.Zero(t, p.Offset)
}

func TestTokenizeNormalizes(t *testing.T) {
	assert.Equal(t, []string{"acai", "berries"}, tokenize("Açaí, Berries!"))
	assert.Empty(t, tokenize("  ,.  "))
}

func TestSearchMatchesDiacriticNames(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	berry, err := repo.CreateProduct(ctx, &domain.Product{Name: "Açaí Berry"})
	require.NoError(t, err)

	// plain-ascii query must reach the accented name
	results, err := q.Search(ctx, "acai", SearchFilters{}, Page{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, berry.ID, results[0].ID)

	// and the accented form of the query folds to the same tokens
	results, err = q.Search(ctx, "AÇAÍ", SearchFilters{}, Page{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, berry.ID, results[0].ID)
}

func TestSearchStaysCurrentAfterRename(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	p, err := repo.CreateProduct(ctx, &domain.Product{Name: "House Blend"})
	require.NoError(t, err)

	name := "Café Blend"
	_, err = repo.UpdateProduct(ctx, p.ID, ProductPatch{Name: &name})
	require.NoError(t, err)

	results, err := q.Search(ctx, "cafe", SearchFilters{}, Page{})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, p.ID, results[0].ID)

	results, err = q.Search(ctx, "house", SearchFilters{}, Page{})
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestGetProductResolvesCategories(t *testing.T) {
	repo := NewRepository(setupTestDB(t))
	q := NewQuery(repo)
	ctx := context.Background()

	kept := mustCreateCategory(t, repo, "Frozen")
	doomed := mustCreateCategory(t, repo, "Seasonal")

	p, err := repo.CreateProduct(ctx, &domain.Product{
		Name:        "Ice Cream",
		CategoryIDs: domain.Int64List{kept.ID, doomed.ID},
	})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteCategory(ctx, doomed.ID))

	view, err := q.GetProduct(ctx, p.ID)
	require.NoError(t, err)

	// the raw id set keeps the dangling reference, the resolved list
	// drops it
	assert.Len(t, view.CategoryIDs, 2)
	require.Len(t, view.Categories, 1)
	assert.Equal(t, kept.ID, view.Categories[0].ID)
	assert.Equal(t, "Frozen", view.Categories[0].Name)
}
