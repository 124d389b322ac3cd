package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quickbasket/quickbasket/internal/catalog"
	"github.com/quickbasket/quickbasket/internal/domain"
)

func setupRepo(t *testing.T) *catalog.Repository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:                                   logger.Default.LogMode(logger.Silent),
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return catalog.NewRepository(db)
}

func TestParseCSV(t *testing.T) {
	sheet := strings.Join([]string{
		"name,unit,price,stock,discount,categories,description,published",
		"Mango Juice,1l,50,10,,,fresh juice,true",
		"Rice,5kg,120.5,3,5,,,",
	}, "\n")

	rows, err := ParseCSV(strings.NewReader(sheet))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Mango Juice", rows[0].Name)
	assert.Equal(t, "120.5", rows[1].Price)
}

func TestRunCreatesRowsIndependently(t *testing.T) {
	repo := setupRepo(t)
	cat, err := repo.CreateCategory(context.Background(), &domain.Category{Name: "Beverages"})
	require.NoError(t, err)

	rows := []ProductRow{
		{Name: "Mango Juice", Unit: "1l", Price: "50", Categories: fmt.Sprintf("%d", cat.ID)},
		{Name: "", Unit: "1l", Price: "10"},
		{Name: "Rice", Price: "not-a-number"},
		{Name: "Apple", Price: "12", Categories: "999999"},
	}

	summary := Run(context.Background(), repo, rows, 2)
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 1, summary.Created)
	assert.Equal(t, 3, summary.Rejected)
	assert.Len(t, summary.Errors, 3)

	// The good row committed despite its neighbors failing.
	query := catalog.NewQuery(repo)
	products, total, err := query.ListProducts(context.Background(), catalog.Page{})
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "Mango Juice", products[0].Name)
}

func TestRowToProductDefaults(t *testing.T) {
	p, err := ProductRow{Name: "Milk", Unit: "1l"}.toProduct()
	require.NoError(t, err)
	assert.True(t, p.Published)
	assert.Nil(t, p.Price)
	assert.Empty(t, p.CategoryIDs)

	p, err = ProductRow{Name: "Milk", Published: "0"}.toProduct()
	require.NoError(t, err)
	assert.False(t, p.Published)
}
