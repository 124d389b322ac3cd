package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/quickbasket/quickbasket/internal/catalog"
	"github.com/quickbasket/quickbasket/internal/domain"
	"github.com/quickbasket/quickbasket/internal/webserver"
)

func registerSubCategoryRoutes() {
	webserver.ApiGET("/sub-categories", listSubCategories)
	webserver.ApiGET("/sub-categories/:id", getSubCategory)
	webserver.ApiPOST("/sub-categories", createSubCategory)
	webserver.ApiPUT("/sub-categories/:id", updateSubCategory)
	webserver.ApiDELETE("/sub-categories/:id", deleteSubCategory)
}

type subCategoryPayload struct {
	Name       *string           `json:"name"`
	Image      *string           `json:"image"`
	Categories *domain.Int64List `json:"categories"`
}

// listSubCategories returns sub-categories with resolved category
// summaries, optionally filtered to one category.
func listSubCategories(c echo.Context) error {
	var categoryID int64
	if v := c.QueryParam("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fail(c, http.StatusBadRequest, "Invalid category ID")
		}
		categoryID = id
	}
	views, err := query.ListSubCategories(c.Request().Context(), categoryID, pageFromQuery(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, views)
}

func getSubCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid sub-category ID")
	}
	sub, err := repo.GetSubCategory(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, sub)
}

func createSubCategory(c echo.Context) error {
	var payload subCategoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse sub-category")
	}
	input := &domain.SubCategory{}
	if payload.Name != nil {
		input.Name = *payload.Name
	}
	if payload.Image != nil {
		input.Image = *payload.Image
	}
	if payload.Categories != nil {
		input.CategoryIDs = *payload.Categories
	}
	sub, err := repo.CreateSubCategory(c.Request().Context(), input)
	if err != nil {
		return failErr(c, err)
	}
	return okMessage(c, sub, "Sub-category created")
}

func updateSubCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid sub-category ID")
	}
	var payload subCategoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse sub-category")
	}
	sub, err := repo.UpdateSubCategory(c.Request().Context(), id, catalog.SubCategoryPatch{
		Name:        payload.Name,
		Image:       payload.Image,
		CategoryIDs: payload.Categories,
	})
	if err != nil {
		return failErr(c, err)
	}
	return okMessage(c, sub, "Sub-category updated")
}

func deleteSubCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid sub-category ID")
	}
	if err := repo.DeleteSubCategory(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return okMessage(c, map[string]interface{}{"id": id}, "Sub-category deleted")
}
