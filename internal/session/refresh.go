package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/pribylovaa/storefront-client/internal/pkg/log"
	"github.com/pribylovaa/storefront-client/internal/pkg/redact"
)

// refreshResponse — ответ эндпойнта обновления токенов.
// Бэкенд может не ротировать refresh-токен, тогда поле refresh пустое.
type refreshResponse struct {
	Access  string `json:"access"`
	Refresh string `json:"refresh"`
}

// Refresh — единственная авторитетная процедура обновления пары токенов.
//
// Порядок:
//  1. нет refresh-токена — Logout, false;
//  2. refresh-токен истёк (без допуска на часы: при его сроке жизни
//     расхождение часов несущественно) — Logout, false;
//  3. сетевая ошибка или не-2xx от эндпойнта обновления — Logout, false;
//  4. успех — SetTokens(новый access, новый refresh, если бэкенд его ротировал),
//     затем профиль перечитывается с новым токеном; true.
//
// Конкурентные вызовы (несколько запросов одновременно словили 401)
// объединяются в один сетевой вызов: все ожидающие получают его результат.
func (s *Session) Refresh(ctx context.Context) bool {
	v, _, _ := s.refreshGroup.Do("refresh", func() (any, error) {
		return s.refreshOnce(ctx), nil
	})

	ok, _ := v.(bool)
	return ok
}

func (s *Session) refreshOnce(ctx context.Context) bool {
	const op = "session.refresh"

	lg := log.From(ctx)

	creds := s.store.Tokens()
	if !creds.HasRefresh() {
		lg.Info("refresh_skipped_no_token", slog.String("op", op))
		s.Logout(ctx)
		return false
	}

	if IsExpired(creds.RefreshToken, 0) {
		lg.Info("refresh_token_expired", slog.String("op", op))
		s.Logout(ctx)
		return false
	}

	var out refreshResponse
	if err := s.postJSON(ctx, "/token/refresh/", map[string]string{"refresh": creds.RefreshToken}, &out); err != nil {
		lg.Warn("refresh_failed",
			slog.String("op", op),
			slog.String("refresh_token", redact.Token()),
			slog.String("err", err.Error()),
		)
		s.Logout(ctx)
		return false
	}

	s.store.SetTokens(out.Access, out.Refresh)
	lg.Info("refresh_succeeded", slog.String("op", op), slog.Bool("rotated", out.Refresh != ""))

	// Профиль перечитывается с обновлённым токеном; сбой не по авторизации
	// не отменяет успешное обновление пары.
	if _, err := s.FetchUserProfile(ctx, out.Access); err != nil {
		lg.Warn("refresh_profile_fetch_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	return true
}

// blacklist отзывает refresh-токен на бэкенде.
func (s *Session) blacklist(ctx context.Context, refreshToken string) error {
	const op = "session.blacklist"

	if err := s.postJSON(ctx, "/token/blacklist/", map[string]string{"refresh": refreshToken}, nil); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

// postJSON выполняет служебный POST без авторизационного заголовка.
// Не-2xx ответ трактуется как ошибка.
func (s *Session) postJSON(ctx context.Context, endpoint string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base+endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
