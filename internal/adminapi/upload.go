package adminapi

import (
	"io"
	"net/http"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/quickbasket/quickbasket/internal/webserver"
)

func registerUploadRoutes() {
	webserver.ApiPOST("/upload", uploadFile)
	webserver.PubGET("/files/:name", serveFile)
}

// uploadFile stores a binary payload and returns its stable URI. The
// catalog only ever stores and forwards that URI.
func uploadFile(c echo.Context) error {
	if files == nil {
		return fail(c, http.StatusInternalServerError, "File store unavailable")
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return fail(c, http.StatusBadRequest, "Upload file is required")
	}
	src, err := fileHeader.Open()
	if err != nil {
		return fail(c, http.StatusBadRequest, "Unable to read upload")
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return fail(c, http.StatusBadRequest, "Unable to read upload")
	}

	uri, err := files.Save(filepath.Ext(fileHeader.Filename), data)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to store upload")
	}
	return okMessage(c, map[string]interface{}{"url": uri}, "Upload complete")
}

func serveFile(c echo.Context) error {
	if files == nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	data, contentType, err := files.Get(c.Param("name"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}
	return c.Blob(http.StatusOK, contentType, data)
}
