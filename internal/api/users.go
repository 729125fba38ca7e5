package api

import (
	"context"
	"net/http"

	"github.com/pribylovaa/storefront-client/internal/models"
)

// UpdateUserRequest — изменяемые поля профиля (PATCH /users/me/).
// nil-поля не отправляются и остаются без изменений.
type UpdateUserRequest struct {
	FirstName *string                 `json:"first_name,omitempty"`
	LastName  *string                 `json:"last_name,omitempty"`
	Email     *string                 `json:"email,omitempty"`
	Customer  *models.CustomerProfile `json:"customer_profile,omitempty"`
}

// Me возвращает профиль текущего пользователя (GET /users/me/).
func (c *Client) Me(ctx context.Context) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(ctx, "/users/me/", jsonOpts(http.MethodGet, nil), &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// UpdateMe частично обновляет профиль текущего пользователя (PATCH /users/me/)
// и возвращает обновлённое представление.
func (c *Client) UpdateMe(ctx context.Context, in UpdateUserRequest) (*models.UserProfile, error) {
	var out models.UserProfile
	if err := c.do(ctx, "/users/me/", jsonOpts(http.MethodPatch, in), &out); err != nil {
		return nil, err
	}

	return &out, nil
}
