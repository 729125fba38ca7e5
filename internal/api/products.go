package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

// Product — товар каталога в объёме, который нужен клиенту.
type Product struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Brand            string `json:"brand"`
	ShortDescription string `json:"short_description"`
	Price            string `json:"price"`
	DiscountPercent  string `json:"discount_percent"`
	FinalPrice       string `json:"final_price"`
	StockQuantity    int64  `json:"stock_quantity"`
	IsAvailable      bool   `json:"is_available"`
}

// ProductsParams — параметры листинга каталога.
type ProductsParams struct {
	Search string
	Page   int
}

// Products возвращает страницу каталога (GET /products/) и общее число
// позиций. Форма ответа распознаётся по правилу Page.
func (c *Client) Products(ctx context.Context, params ProductsParams) ([]Product, int64, error) {
	endpoint := "/products/"

	q := url.Values{}
	if params.Search != "" {
		q.Set("search", params.Search)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var page Page
	if err := c.do(ctx, endpoint, jsonOpts(http.MethodGet, nil), &page); err != nil {
		return nil, 0, err
	}

	var items []Product
	if err := page.Decode(&items); err != nil {
		return nil, 0, err
	}

	return items, page.Count, nil
}
