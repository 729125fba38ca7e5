package session

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/storefront-client/internal/models"
	"github.com/pribylovaa/storefront-client/internal/pkg/log"
)

// FetchUserProfile загружает профиль текущего пользователя (/users/me/)
// по переданному access-токену; пустой token означает «взять из хранилища».
//
// Ответ 401/403 трактуется как отказ в аутентификации: сессия завершается
// (Logout) и возвращается ErrUnauthorized. Любой другой сбой — транзиентная
// сеть, 5xx — не разлогинивает пользователя: возвращается ошибка, профиль nil.
// Успешно загруженный профиль кэшируется в хранилище.
func (s *Session) FetchUserProfile(ctx context.Context, token string) (*models.UserProfile, error) {
	const op = "session.FetchUserProfile"

	lg := log.From(ctx)

	if token == "" {
		token = s.store.Tokens().AccessToken
	}
	if token == "" {
		return nil, fmt.Errorf("%s: %w", op, ErrNoAccessToken)
	}

	s.setProfileLoading(true)
	defer s.setProfileLoading(false)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.base+"/users/me/", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		lg.Warn("profile_fetch_unauthorized",
			slog.String("op", op),
			slog.Int("status", resp.StatusCode),
		)
		s.Logout(ctx)
		return nil, fmt.Errorf("%s: %w", op, ErrUnauthorized)

	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%s: unexpected status %d", op, resp.StatusCode)
	}

	var user models.UserProfile
	if err := json.NewDecoder(resp.Body).Decode(&user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.store.SetCurrentUser(&user)

	return &user, nil
}
