package adminapi

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"github.com/quickbasket/quickbasket/internal/catalog"
)

func queryContext(t *testing.T, rawQuery string) echo.Context {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/?"+rawQuery, nil)
	return echo.New().NewContext(req, httptest.NewRecorder())
}

func TestPageFromQueryLimitOffset(t *testing.T) {
	page := pageFromQuery(queryContext(t, "limit=10&offset=20"))
	assert.Equal(t, catalog.Page{Offset: 20, Limit: 10}, page)
}

func TestPageFromQueryPagePerPageFallback(t *testing.T) {
	page := pageFromQuery(queryContext(t, "page=3&perPage=15"))
	assert.Equal(t, catalog.Page{Offset: 30, Limit: 15}, page)
}

func TestPageFromQueryDefaults(t *testing.T) {
	page := pageFromQuery(queryContext(t, ""))
	assert.Equal(t, catalog.Page{Offset: 0, Limit: defaultPageSize}, page)
}

func TestPageMetaMatchesQueriedWindow(t *testing.T) {
	pageNo, pageSize := pageMeta(catalog.Page{Offset: 20, Limit: 10})
	assert.Equal(t, 3, pageNo)
	assert.Equal(t, 10, pageSize)

	// the metadata reflects the window the engine actually bounds to
	pageNo, pageSize = pageMeta(catalog.Page{})
	assert.Equal(t, 1, pageNo)
	assert.Equal(t, catalog.DefaultPageSize, pageSize)

	pageNo, pageSize = pageMeta(catalog.Page{Offset: 500, Limit: 10_000})
	assert.Equal(t, 6, pageNo)
	assert.Equal(t, catalog.MaxPageSize, pageSize)
}
