package adminapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"

	"github.com/quickbasket/quickbasket/internal/domain"
)

type productExportRow struct {
	ID          string  `csv:"id"`
	Name        string  `csv:"name"`
	Unit        string  `csv:"unit"`
	Price       string  `csv:"price"`
	Stock       string  `csv:"stock"`
	Discount    string  `csv:"discount"`
	Categories  string  `csv:"categories"`
	Description string  `csv:"description"`
	Published   bool    `csv:"published"`
	CreatedAt   string  `csv:"created_at"`
}

func buildExportRows(c echo.Context) ([]productExportRow, error) {
	var products []domain.Product
	if err := GetDB(c).Order("id ASC").Find(&products).Error; err != nil {
		return nil, err
	}

	rows := make([]productExportRow, 0, len(products))
	for _, p := range products {
		row := productExportRow{
			ID:          fmt.Sprintf("%d", p.ID),
			Name:        p.Name,
			Unit:        p.Unit,
			Description: p.Description,
			Published:   p.Published,
			CreatedAt:   p.CreatedAt.Format("2006-01-02 15:04:05"),
		}
		if p.Price != nil {
			row.Price = fmt.Sprintf("%g", *p.Price)
		}
		if p.Stock != nil {
			row.Stock = fmt.Sprintf("%d", *p.Stock)
		}
		if p.Discount != nil {
			row.Discount = fmt.Sprintf("%g", *p.Discount)
		}

		var catRows []domain.ProductCategory
		if err := GetDB(c).Where("product_id = ?", p.ID).Find(&catRows).Error; err == nil && len(catRows) > 0 {
			ids := make(domain.Int64List, 0, len(catRows))
			for _, cr := range catRows {
				ids = append(ids, cr.CategoryID)
			}
			refs, err := repo.ResolveCategoryRefs(c.Request().Context(), ids)
			if err == nil {
				names := make([]string, 0, len(refs))
				for _, ref := range refs {
					names = append(names, ref.Name)
				}
				row.Categories = strings.Join(names, "|")
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// exportProducts streams the product table as CSV or XLSX.
func exportProducts(c echo.Context) error {
	rows, err := buildExportRows(c)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to export products")
	}

	switch strings.ToLower(c.QueryParam("format")) {
	case "xlsx":
		return exportXLSX(c, rows)
	default:
		return exportCSV(c, rows)
	}
}

func exportCSV(c echo.Context, rows []productExportRow) error {
	data, err := gocsv.MarshalBytes(&rows)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "Failed to export products")
	}
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.csv"`)
	return c.Blob(http.StatusOK, "text/csv", data)
}

var exportColumns = []string{"A", "B", "C", "D", "E", "F", "G", "H", "I", "J"}

func exportXLSX(c echo.Context, rows []productExportRow) error {
	f := excelize.NewFile()
	headers := []string{"id", "name", "unit", "price", "stock", "discount", "categories", "description", "published", "created_at"}
	for i, h := range headers {
		f.SetCellValue("Sheet1", exportColumns[i]+"1", h)
	}
	for n, row := range rows {
		line := fmt.Sprintf("%d", n+2)
		values := []interface{}{
			row.ID, row.Name, row.Unit, row.Price, row.Stock,
			row.Discount, row.Categories, row.Description, row.Published, row.CreatedAt,
		}
		for i, v := range values {
			f.SetCellValue("Sheet1", exportColumns[i]+line, v)
		}
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="products.xlsx"`)
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().WriteHeader(http.StatusOK)
	return f.Write(c.Response())
}
