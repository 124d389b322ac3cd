package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/quickbasket/quickbasket/internal/importer"
)

// importProducts accepts a CSV sheet (multipart field "file") and bulk
// creates products. Rows fail independently; the response reports
// per-line rejections.
func importProducts(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Import file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "Unable to read import file")
	}
	defer src.Close()

	rows, err := importer.ParseCSV(src)
	if err != nil {
		return fail(c, http.StatusOK, "Import file is not a valid CSV sheet")
	}
	if len(rows) == 0 {
		return fail(c, http.StatusOK, "Import file contains no rows")
	}

	summary := importer.Run(c.Request().Context(), repo, rows, 4)
	return okMessage(c, summary, "Import finished")
}
