package adminapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/quickbasket/quickbasket/internal/catalog"
	"github.com/quickbasket/quickbasket/internal/webserver"
)

// Response is the envelope every endpoint returns. error=true marks a
// recoverable, user-displayable failure; transport and server faults
// are signaled by a non-2xx status instead.
type Response struct {
	Success bool        `json:"success"`
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

type PagedData struct {
	Rows     interface{} `json:"rows"`
	Total    int64       `json:"total"`
	Page     int         `json:"page"`
	PageSize int         `json:"page_size"`
}

func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextDBKey).(*gorm.DB)
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: "ok", Data: data})
}

func okMessage(c echo.Context, data interface{}, message string) error {
	return c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, Response{
		Success: true,
		Message: "ok",
		Data:    PagedData{Rows: rows, Total: total, Page: page, PageSize: pageSize},
	})
}

func fail(c echo.Context, status int, message string) error {
	return c.JSON(status, Response{Success: false, Error: true, Message: message})
}

// failErr maps the catalog error taxonomy onto the envelope. Domain
// failures stay 2xx with error=true so the client can surface the
// message; anything else is a server fault.
func failErr(c echo.Context, err error) error {
	switch {
	case catalog.IsValidation(err), catalog.IsInvalidReference(err), catalog.IsNotFound(err):
		return fail(c, http.StatusOK, catalog.UserMessage(err))
	default:
		return fail(c, http.StatusInternalServerError, "internal error")
	}
}

func parseIDParam(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

// defaultPageSize backs a request that supplies no limit. InitRouter
// overrides it from the catalog settings.
var defaultPageSize = catalog.DefaultPageSize

// pageFromQuery reads limit/offset, falling back to page/perPage.
// Missing or oversized limits are bounded by the engine defaults.
func pageFromQuery(c echo.Context) catalog.Page {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if limit == 0 {
		if perPage, err := strconv.Atoi(c.QueryParam("perPage")); err == nil && perPage > 0 {
			limit = perPage
			if page, err := strconv.Atoi(c.QueryParam("page")); err == nil && page > 1 {
				offset = (page - 1) * perPage
			}
		}
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	return catalog.Page{Offset: offset, Limit: limit}
}

// pageMeta derives the reported page number and size from the
// normalized window the query actually ran with, so the envelope
// metadata always describes the returned slice.
func pageMeta(p catalog.Page) (int, int) {
	p = p.Normalize()
	return p.Offset/p.Limit + 1, p.Limit
}
