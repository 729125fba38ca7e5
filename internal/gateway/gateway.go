// gateway выполняет исходящие вызовы REST-бэкенда с прозрачным прикреплением
// учётных данных и восстановлением после 401.
//
// Контракт одного логического вызова строго последователен: чтение токена →
// запрос → (условно) обновление пары → единственный повтор. На вызов
// приходится не более одной попытки обновления и не более одного повтора,
// сколько бы раз ни повторялся 401. Сетевые ошибки (DNS, connection refused)
// пробрасываются вызывающему без повторов — повтор полагается только на
// отказ аутентификации.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pribylovaa/storefront-client/internal/pkg/log"
	"github.com/pribylovaa/storefront-client/internal/session"
	"github.com/pribylovaa/storefront-client/internal/storage"
)

// Authenticator — часть сессии, нужная шлюзу: процедура обновления пары токенов.
type Authenticator interface {
	Refresh(ctx context.Context) bool
}

// Config — параметры шлюза.
type Config struct {
	// BaseURL — базовый адрес API; endpoint каждого вызова задаётся
	// относительно него.
	BaseURL string
	// Store — хранилище учётных данных (источник access-токена).
	Store storage.Store
	// Auth — процедура обновления токенов (обычно *session.Session).
	Auth Authenticator
	// HTTPClient — исходящий HTTP-клиент. nil — клиент по умолчанию.
	HTTPClient *http.Client
	// ClockSkew — допуск при упреждающей проверке истечения access-токена.
	ClockSkew time.Duration
}

// Options — параметры одного вызова.
type Options struct {
	// Method — HTTP-метод; пустой означает GET.
	Method string
	// Header — дополнительные заголовки.
	Header http.Header
	// Body — тело запроса. Структурное значение сериализуется в JSON
	// (с Content-Type: application/json, если вызывающий не задал свой);
	// io.Reader или []byte передаются как есть, без какой-либо сериализации.
	// Для multipart-тела Content-Type обязан задать вызывающий из
	// multipart.Writer.FormDataContentType(): только writer знает boundary,
	// фиксированный заголовок здесь ломал бы такие запросы.
	Body any
}

// Gateway — аутентифицированный шлюз исходящих вызовов.
type Gateway struct {
	base  string
	store storage.Store
	auth  Authenticator
	httpc *http.Client
	skew  time.Duration
}

// New создаёт шлюз.
func New(cfg Config) (*Gateway, error) {
	const op = "gateway.New"

	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("%s: empty base url", op)
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("%s: nil store", op)
	}

	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}

	skew := cfg.ClockSkew
	if skew == 0 {
		skew = 60 * time.Second
	}

	return &Gateway{
		base:  strings.TrimRight(cfg.BaseURL, "/"),
		store: cfg.Store,
		auth:  cfg.Auth,
		httpc: httpc,
		skew:  skew,
	}, nil
}

// Do выполняет вызов endpoint (путь относительно базового адреса API).
//
// Если в хранилище есть access-токен, он прикрепляется заголовком
// Authorization: Bearer; без токена вызов уходит анонимным. Истёкший (с
// учётом допуска на часы) токен упреждающе обновляется до запроса. Ответ 401
// запускает одно обновление пары и один повтор с новым токеном; результат
// повтора возвращается как есть. Если обновление не удалось, возвращается
// исходный 401 — сессия к этому моменту уже анонимна. Все прочие статусы
// возвращаются вызывающему без интерпретации.
//
// Отменённый контекст никогда не приводит к обновлению или повтору.
func (g *Gateway) Do(ctx context.Context, endpoint string, opts Options) (*http.Response, error) {
	const op = "gateway.Do"

	lg := log.From(ctx)

	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	method = strings.ToUpper(method)

	body, contentType, err := prepareBody(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	requestID := uuid.NewString()
	refreshed := false

	token := g.store.Tokens().AccessToken
	if token != "" && g.auth != nil && session.IsExpired(token, g.skew) {
		lg.Debug("proactive_refresh",
			slog.String("op", op),
			slog.String("endpoint", endpoint),
		)
		refreshed = true
		g.auth.Refresh(ctx)
		token = g.store.Tokens().AccessToken
	}

	resp, err := g.send(ctx, method, endpoint, opts.Header, body, contentType, token, requestID)
	if err != nil {
		return nil, fmt.Errorf("%s: %s %s: %w", op, method, endpoint, err)
	}

	if resp.StatusCode == http.StatusUnauthorized && !refreshed && g.auth != nil && ctx.Err() == nil {
		lg.Debug("unauthorized_attempting_refresh",
			slog.String("op", op),
			slog.String("endpoint", endpoint),
		)

		if g.auth.Refresh(ctx) {
			token = g.store.Tokens().AccessToken

			retry, err := g.send(ctx, method, endpoint, opts.Header, body, contentType, token, requestID)
			if err != nil {
				_ = resp.Body.Close()
				return nil, fmt.Errorf("%s: %s %s (retry): %w", op, method, endpoint, err)
			}

			_ = resp.Body.Close()
			return retry, nil
		}
	}

	return resp, nil
}

// send строит и выполняет один HTTP-запрос. Тело передаётся срезом байт,
// чтобы повтор после обновления токена отправил его заново целиком.
func (g *Gateway) send(ctx context.Context, method, endpoint string, header http.Header, body []byte, contentType, token, requestID string) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, g.base+endpoint, reader)
	if err != nil {
		return nil, err
	}

	for k, vals := range header {
		for _, v := range vals {
			req.Header.Add(k, v)
		}
	}

	if contentType != "" && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if req.Header.Get("X-Request-Id") == "" {
		req.Header.Set("X-Request-Id", requestID)
	}

	return g.httpc.Do(req)
}

// prepareBody приводит тело вызова к срезу байт.
//
// io.Reader и []byte проходят насквозь без сериализации и без навязанного
// Content-Type (для multipart его задаёт сам вызывающий, см. Options.Body).
// Остальные значения сериализуются в JSON.
func prepareBody(opts Options) ([]byte, string, error) {
	switch b := opts.Body.(type) {
	case nil:
		return nil, "", nil
	case io.Reader:
		data, err := io.ReadAll(b)
		if err != nil {
			return nil, "", err
		}
		return data, "", nil
	case []byte:
		return b, "", nil
	default:
		data, err := json.Marshal(b)
		if err != nil {
			return nil, "", err
		}
		return data, "application/json", nil
	}
}
