package api

import (
	"context"
	"net/http"
)

// TokenPair — ответ эндпойнта выпуска токенов.
type TokenPair struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// ObtainToken обменивает логин и пароль на пару токенов (POST /token/).
// Вызов уходит анонимным; отказ в выпуске (400/401) возвращается как
// *StatusError с дословным detail сервера.
func (c *Client) ObtainToken(ctx context.Context, username, password string) (*TokenPair, error) {
	var out TokenPair

	opts := jsonOpts(http.MethodPost, map[string]string{
		"username": username,
		"password": password,
	})

	if err := c.do(ctx, "/token/", opts, &out); err != nil {
		return nil, err
	}

	return &out, nil
}
