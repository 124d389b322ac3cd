package adminapi

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/quickbasket/quickbasket/internal/catalog"
	"github.com/quickbasket/quickbasket/internal/domain"
	"github.com/quickbasket/quickbasket/internal/webserver"
	"github.com/quickbasket/quickbasket/pkg/metrics"
)

func registerProductRoutes() {
	webserver.ApiGET("/products", listProducts)
	webserver.ApiGET("/products/search", searchProducts)
	webserver.ApiGET("/products/export", exportProducts)
	webserver.ApiGET("/products/:id", getProduct)
	webserver.ApiPOST("/products", createProduct)
	webserver.ApiPOST("/products/import", importProducts)
	webserver.ApiPUT("/products/:id", updateProduct)
	webserver.ApiDELETE("/products/:id", deleteProduct)
}

type productPayload struct {
	Name          *string            `json:"name"`
	Images        *domain.StringList `json:"images"`
	Categories    *domain.Int64List  `json:"categories"`
	SubCategories *domain.Int64List  `json:"subCategories"`
	Unit          *string            `json:"unit"`
	Stock         *int64             `json:"stock"`
	Price         *float64           `json:"price"`
	Discount      *float64           `json:"discount"`
	Description   *string            `json:"description"`
	ExtraDetails  *domain.AttrMap    `json:"extraDetails"`
	Published     *bool              `json:"published"`
}

// listProducts lists products in creation order, optionally filtered
// to one category.
func listProducts(c echo.Context) error {
	page := pageFromQuery(c)
	if v := c.QueryParam("categoryId"); v != "" {
		categoryID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Invalid category ID")
		}
		products, err := query.ListByCategory(c.Request().Context(), categoryID, page)
		if err != nil {
			return failErr(c, err)
		}
		return ok(c, products)
	}

	products, total, err := query.ListProducts(c.Request().Context(), page)
	if err != nil {
		return failErr(c, err)
	}
	pageNo, pageSize := pageMeta(page)
	return paged(c, products, total, pageNo, pageSize)
}

// searchProducts runs the weighted text search. The storefront passes
// published=true; the admin table omits it and sees everything.
func searchProducts(c echo.Context) error {
	metrics.CounterIncrement(metrics.MetricSearchRequest)

	term := strings.TrimSpace(c.QueryParam("q"))
	filters := catalog.SearchFilters{}
	if v := c.QueryParam("published"); v != "" {
		filters.PublishedOnly = v == "true" || v == "1"
	}
	if v := c.QueryParam("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Invalid category ID")
		}
		filters.CategoryID = id
	}

	products, err := query.Search(c.Request().Context(), term, filters, pageFromQuery(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, products)
}

func getProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID")
	}
	view, err := query.GetProduct(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, view)
}

func createProduct(c echo.Context) error {
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse product")
	}

	input := &domain.Product{Published: true}
	if payload.Name != nil {
		input.Name = *payload.Name
	}
	if payload.Images != nil {
		input.Images = *payload.Images
	}
	if payload.Categories != nil {
		input.CategoryIDs = *payload.Categories
	}
	if payload.SubCategories != nil {
		input.SubCategoryIDs = *payload.SubCategories
	}
	if payload.Unit != nil {
		input.Unit = *payload.Unit
	}
	input.Stock = payload.Stock
	input.Price = payload.Price
	input.Discount = payload.Discount
	if payload.Description != nil {
		input.Description = *payload.Description
	}
	if payload.ExtraDetails != nil {
		input.ExtraDetails = *payload.ExtraDetails
	}
	if payload.Published != nil {
		input.Published = *payload.Published
	}

	p, err := repo.CreateProduct(c.Request().Context(), input)
	if err != nil {
		return failErr(c, err)
	}
	return okMessage(c, p, "Product created")
}

func updateProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID")
	}
	var payload productPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse product")
	}

	p, err := repo.UpdateProduct(c.Request().Context(), id, catalog.ProductPatch{
		Name:           payload.Name,
		Images:         payload.Images,
		CategoryIDs:    payload.Categories,
		SubCategoryIDs: payload.SubCategories,
		Unit:           payload.Unit,
		Stock:          payload.Stock,
		Price:          payload.Price,
		Discount:       payload.Discount,
		Description:    payload.Description,
		ExtraDetails:   payload.ExtraDetails,
		Published:      payload.Published,
	})
	if err != nil {
		return failErr(c, err)
	}
	return okMessage(c, p, "Product updated")
}

func deleteProduct(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid product ID")
	}
	if err := repo.DeleteProduct(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return okMessage(c, map[string]interface{}{"id": id}, "Product deleted")
}
