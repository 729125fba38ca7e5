// api — типизированные обёртки над REST-эндпойнтами бэкенда.
//
// Пакет — потребитель шлюза: прикрепление токена, обновление пары и повтор
// после 401 выполняет gateway, здесь только формы запросов/ответов и разбор
// ошибок. Бизнес-ошибки бэкенда (400, 404, 500 и т.д.) доносятся до
// вызывающего как *StatusError с дословным detail сервера.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pribylovaa/storefront-client/internal/gateway"
)

// Client — клиент REST API поверх аутентифицированного шлюза.
type Client struct {
	gw *gateway.Gateway
}

// New создаёт клиент.
func New(gw *gateway.Gateway) *Client {
	return &Client{gw: gw}
}

// StatusError — не-2xx ответ бэкенда.
// Detail — дословное сообщение сервера (поле detail тела ответа);
// пользовательский слой показывает его без пересказа.
type StatusError struct {
	StatusCode int
	Detail     string
}

func (e *StatusError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Detail)
	}

	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// Raw выполняет произвольный аутентифицированный GET и отдаёт тело ответа
// без типизации. Используется CLI для ad-hoc запросов.
func (c *Client) Raw(ctx context.Context, endpoint string, out *json.RawMessage) error {
	return c.do(ctx, endpoint, jsonOpts(http.MethodGet, nil), out)
}

// jsonOpts — краткая форма параметров JSON-вызова.
func jsonOpts(method string, body any) gateway.Options {
	return gateway.Options{Method: method, Body: body}
}

// do выполняет вызов через шлюз и декодирует успешный JSON-ответ в out.
// Не-2xx превращается в *StatusError.
func (c *Client) do(ctx context.Context, endpoint string, opts gateway.Options, out any) error {
	resp, err := c.gw.Do(ctx, endpoint, opts)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return statusError(resp)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// statusError извлекает detail из тела ошибки; тело без detail или не-JSON
// сводится к статусной строке.
func statusError(resp *http.Response) *StatusError {
	out := &StatusError{StatusCode: resp.StatusCode}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if err != nil || len(body) == 0 {
		return out
	}

	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		out.Detail = payload.Detail
	}

	return out
}
