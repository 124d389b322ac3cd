package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickbasket/quickbasket/internal/catalog"
	"github.com/quickbasket/quickbasket/internal/domain"
	"github.com/quickbasket/quickbasket/internal/webserver"
)

func registerCategoryRoutes() {
	webserver.ApiGET("/categories", listCategories)
	webserver.ApiGET("/categories/:id", getCategory)
	webserver.ApiPOST("/categories", createCategory)
	webserver.ApiPUT("/categories/:id", updateCategory)
	webserver.ApiDELETE("/categories/:id", deleteCategory)
}

type categoryPayload struct {
	Name  *string `json:"name"`
	Image *string `json:"image"`
}

func listCategories(c echo.Context) error {
	cats, err := query.ListCategories(c.Request().Context(), pageFromQuery(c))
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, cats)
}

func getCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID")
	}
	cat, err := repo.GetCategory(c.Request().Context(), id)
	if err != nil {
		return failErr(c, err)
	}
	return ok(c, cat)
}

func createCategory(c echo.Context) error {
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse category")
	}
	input := &domain.Category{}
	if payload.Name != nil {
		input.Name = *payload.Name
	}
	if payload.Image != nil {
		input.Image = *payload.Image
	}
	cat, err := repo.CreateCategory(c.Request().Context(), input)
	if err != nil {
		return failErr(c, err)
	}
	return okMessage(c, cat, "Category created")
}

func updateCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID")
	}
	var payload categoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "Unable to parse category")
	}
	cat, err := repo.UpdateCategory(c.Request().Context(), id, catalog.CategoryPatch{
		Name:  payload.Name,
		Image: payload.Image,
	})
	if err != nil {
		return failErr(c, err)
	}
	return okMessage(c, cat, "Category updated")
}

func deleteCategory(c echo.Context) error {
	id, err := parseIDParam(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Invalid category ID")
	}
	if err := repo.DeleteCategory(c.Request().Context(), id); err != nil {
		return failErr(c, err)
	}
	return okMessage(c, map[string]interface{}{"id": id}, "Category deleted")
}
