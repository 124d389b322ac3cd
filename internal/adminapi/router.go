package adminapi

import (
	"go.uber.org/zap"

	"github.com/quickbasket/quickbasket/internal/catalog"
	"github.com/quickbasket/quickbasket/internal/filestore"
	"github.com/quickbasket/quickbasket/internal/webserver"
)

var (
	repo  *catalog.Repository
	query *catalog.Query
	files *filestore.Store
)

// InitRouter wires the catalog services and registers all admin API
// routes. Call after webserver.Init.
func InitRouter() {
	appCtx := webserver.AppCtx()
	repo = catalog.NewRepository(appCtx.DB())
	query = catalog.NewQuery(repo)
	defaultPageSize = appCtx.CatalogSettings().StorefrontPageSize

	var err error
	files, err = filestore.Open(appCtx.Config().System.Workdir)
	if err != nil {
		zap.L().Error("failed to open file store, uploads disabled", zap.Error(err))
	}

	registerAuthRoutes()
	registerCategoryRoutes()
	registerSubCategoryRoutes()
	registerProductRoutes()
	registerUploadRoutes()
	registerStatusRoutes()
}
