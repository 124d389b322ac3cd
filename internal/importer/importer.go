package importer

import (
	"context"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/gocarina/gocsv"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/quickbasket/quickbasket/internal/catalog"
	"github.com/quickbasket/quickbasket/internal/domain"
)

// ProductRow is one line of a product import sheet. Category columns
// carry pipe-separated category ids.
type ProductRow struct {
	Name        string `csv:"name"`
	Unit        string `csv:"unit"`
	Price       string `csv:"price"`
	Stock       string `csv:"stock"`
	Discount    string `csv:"discount"`
	Categories  string `csv:"categories"`
	Description string `csv:"description"`
	Published   string `csv:"published"`
}

// RowError reports one rejected line.
type RowError struct {
	Line    int    `json:"line"`
	Message string `json:"message"`
}

// Summary is the outcome of a bulk import. Rows fail independently;
// one bad line never blocks the rest.
type Summary struct {
	Total    int        `json:"total"`
	Created  int        `json:"created"`
	Rejected int        `json:"rejected"`
	Errors   []RowError `json:"errors,omitempty"`
}

// ParseCSV decodes an import sheet.
func ParseCSV(r io.Reader) ([]ProductRow, error) {
	var rows []ProductRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (row ProductRow) toProduct() (*domain.Product, error) {
	p := &domain.Product{
		Name:        strings.TrimSpace(row.Name),
		Unit:        strings.TrimSpace(row.Unit),
		Description: row.Description,
		Published:   true,
	}
	if v := strings.TrimSpace(row.Price); v != "" {
		price, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &catalog.ValidationError{Field: "price", Reason: "is not a number"}
		}
		p.Price = &price
	}
	if v := strings.TrimSpace(row.Stock); v != "" {
		stock, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, &catalog.ValidationError{Field: "stock", Reason: "is not an integer"}
		}
		p.Stock = &stock
	}
	if v := strings.TrimSpace(row.Discount); v != "" {
		discount, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, &catalog.ValidationError{Field: "discount", Reason: "is not a number"}
		}
		p.Discount = &discount
	}
	if v := strings.TrimSpace(row.Published); v != "" {
		p.Published = v == "true" || v == "1"
	}
	for _, part := range strings.Split(row.Categories, "|") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, &catalog.ValidationError{Field: "categories", Reason: "contains an invalid id"}
		}
		p.CategoryIDs = append(p.CategoryIDs, id)
	}
	return p, nil
}

// Run creates the rows on a bounded worker pool. Each row validates
// and commits independently through the mutation gateway.
func Run(ctx context.Context, repo *catalog.Repository, rows []ProductRow, workers int) Summary {
	if workers <= 0 {
		workers = 4
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		zap.L().Error("failed to create import pool", zap.Error(err))
		return Summary{Total: len(rows)}
	}
	defer pool.Release()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		summary = Summary{Total: len(rows)}
	)

	for i, row := range rows {
		line := i + 2 // header is line 1
		row := row
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			p, err := row.toProduct()
			if err == nil {
				_, err = repo.CreateProduct(ctx, p)
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				summary.Rejected++
				summary.Errors = append(summary.Errors, RowError{Line: line, Message: catalog.UserMessage(err)})
				return
			}
			summary.Created++
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			summary.Rejected++
			summary.Errors = append(summary.Errors, RowError{Line: line, Message: "import worker unavailable"})
			mu.Unlock()
		}
	}
	wg.Wait()
	return summary
}
