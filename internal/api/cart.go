package api

import (
	"context"
	"net/http"
)

// CartItem — позиция корзины.
type CartItem struct {
	ID              int64   `json:"id"`
	Product         Product `json:"product"`
	Quantity        int64   `json:"quantity"`
	PriceAtAddition string  `json:"price_at_addition"`
	Subtotal        string  `json:"subtotal"`
}

// AddCartItem добавляет товар в корзину текущего пользователя (POST /cart/).
func (c *Client) AddCartItem(ctx context.Context, productID, quantity int64) (*CartItem, error) {
	var out CartItem

	opts := jsonOpts(http.MethodPost, map[string]int64{
		"product_id": productID,
		"quantity":   quantity,
	})

	if err := c.do(ctx, "/cart/", opts, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
