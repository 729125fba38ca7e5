// session реализует машину состояний аутентифицированной сессии:
// вход, выход, обновление пары токенов и загрузку профиля пользователя.
//
// Основные аспекты:
//   - Session безопасна для конкурентного использования из разных горутин;
//     единственное разделяемое изменяемое состояние — пара токенов — живёт
//     в storage.Store и мутируется только Login/Logout/Refresh;
//   - наблюдаемое состояние производно: «аутентифицирован» означает ровно
//     «в хранилище есть access-токен», независимо от того, загрузился ли
//     уже профиль;
//   - конкурентные Refresh сведены к одному сетевому вызову (singleflight).
package session

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/pribylovaa/storefront-client/internal/models"
	"github.com/pribylovaa/storefront-client/internal/pkg/log"
	"github.com/pribylovaa/storefront-client/internal/storage"
)

var (
	// ErrUnauthorized — бэкенд отверг учётные данные (401/403);
	// сессия при этом уже переведена в анонимное состояние.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrNoAccessToken — операция требует access-токен, а его нет.
	ErrNoAccessToken = errors.New("no access token")
)

// State — наблюдаемое состояние сессии.
type State string

const (
	// StateAnonymous — пары токенов нет.
	StateAnonymous State = "anonymous"
	// StateAuthenticating — токен есть, профиль ещё загружается.
	StateAuthenticating State = "authenticating"
	// StateAuthenticated — токен и профиль на месте.
	StateAuthenticated State = "authenticated"
)

// Severity — тип пользовательского уведомления.
type Severity string

const (
	SeveritySuccess Severity = "success"
	SeverityInfo    Severity = "info"
	SeverityError   Severity = "error"
)

// Notice — уведомление для пользовательского слоя (баннер, тост и т.п.).
type Notice struct {
	Message  string
	Severity Severity
}

// Config — параметры сессии.
type Config struct {
	// BaseURL — базовый адрес API.
	BaseURL string
	// ClockSkew — допуск на расхождение часов при проверке access-токена.
	// Ноль означает значение по умолчанию (60 секунд).
	ClockSkew time.Duration
	// HTTPClient — клиент для служебных вызовов (refresh, blacklist, профиль).
	// nil — использовать клиент по умолчанию.
	HTTPClient *http.Client
	// Notify — необязательный приёмник уведомлений (приветствие после входа,
	// сообщение о выходе). nil — уведомления не доставляются.
	Notify func(Notice)
}

const defaultClockSkew = 60 * time.Second

// Session — машина состояний аутентифицированной сессии.
type Session struct {
	store  storage.Store
	base   string
	httpc  *http.Client
	skew   time.Duration
	notify func(Notice)

	refreshGroup singleflight.Group

	mu             sync.RWMutex
	profileLoading bool
}

// New создаёт сессию поверх данного хранилища учётных данных.
func New(store storage.Store, cfg Config) *Session {
	httpc := cfg.HTTPClient
	if httpc == nil {
		httpc = &http.Client{Timeout: 15 * time.Second}
	}

	skew := cfg.ClockSkew
	if skew == 0 {
		skew = defaultClockSkew
	}

	return &Session{
		store:  store,
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		httpc:  httpc,
		skew:   skew,
		notify: cfg.Notify,
	}
}

// IsAuthenticated — true ровно тогда, когда в хранилище есть access-токен.
// Отсутствие профиля во время его загрузки не делает пользователя «разлогиненным».
func (s *Session) IsAuthenticated() bool {
	return s.store.Tokens().HasAccess()
}

// ClockSkew возвращает действующий допуск на расхождение часов.
func (s *Session) ClockSkew() time.Duration {
	return s.skew
}

// State возвращает производное состояние сессии.
func (s *Session) State() State {
	if !s.store.Tokens().HasAccess() {
		return StateAnonymous
	}

	s.mu.RLock()
	loading := s.profileLoading
	s.mu.RUnlock()

	if loading || s.store.CurrentUser() == nil {
		return StateAuthenticating
	}

	return StateAuthenticated
}

// CurrentUser возвращает кэшированный профиль или nil.
func (s *Session) CurrentUser() *models.UserProfile {
	return s.store.CurrentUser()
}

// Username возвращает имя пользователя для отображения: из профиля,
// а до его загрузки — из клейма access-токена.
func (s *Session) Username() string {
	if u := s.store.CurrentUser(); u != nil && u.Username != "" {
		return u.Username
	}

	if creds := s.store.Tokens(); creds.HasAccess() {
		return usernameClaim(creds.AccessToken)
	}

	return ""
}

// Login сохраняет пару токенов и загружает профиль пользователя.
//
// Приветственное уведомление привязывается к имени из профиля; если профиль
// ещё не загрузился (или загрузка не удалась не по причине авторизации),
// используется клейм username из access-токена.
// Ошибка возвращается только если бэкенд отверг токен при загрузке профиля
// (ErrUnauthorized) — сессия в этом случае уже анонимна.
func (s *Session) Login(ctx context.Context, access, refresh string) (*models.UserProfile, error) {
	const op = "session.Login"

	lg := log.From(ctx)

	s.store.SetTokens(access, refresh)

	user, err := s.FetchUserProfile(ctx, access)
	if err != nil && errors.Is(err, ErrUnauthorized) {
		return nil, err
	}
	if err != nil {
		// Не связанный с авторизацией сбой загрузки профиля не отменяет вход.
		lg.Warn("login_profile_fetch_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}

	name := usernameClaim(access)
	if user != nil && user.Username != "" {
		name = user.Username
	}
	if name == "" {
		name = "User"
	}

	s.post(Notice{Message: "Welcome back, " + name + "!", Severity: SeveritySuccess})
	lg.Info("login_succeeded", slog.String("op", op), slog.String("username", name))

	return user, nil
}

// Logout завершает сессию.
//
// Сначала выполняется best-effort вызов эндпойнта отзыва refresh-токена:
// его сбой (сеть, не-2xx) логируется и проглатывается — локальная очистка
// не должна зависеть от доступности бэкенда. Затем безусловно очищаются
// токены и кэшированный профиль. Повторный вызов безопасен.
func (s *Session) Logout(ctx context.Context) {
	const op = "session.Logout"

	lg := log.From(ctx)

	if creds := s.store.Tokens(); creds.HasRefresh() {
		if err := s.blacklist(ctx, creds.RefreshToken); err != nil {
			lg.Warn("token_blacklist_failed",
				slog.String("op", op),
				slog.String("err", err.Error()),
			)
		}
	}

	s.store.Clear()

	s.mu.Lock()
	s.profileLoading = false
	s.mu.Unlock()

	s.post(Notice{Message: "You have been logged out.", Severity: SeverityInfo})
	lg.Info("logout_completed", slog.String("op", op))
}

// Bootstrap восстанавливает состояние после старта процесса.
//
// Если в хранилище есть access-токен, но нет кэшированного профиля
// (например, первый запуск после входа на другом устройстве), профиль
// догружается; сбой загрузки по авторизации переводит сессию в анонимное
// состояние. Без токена хранилище приводится к чистому виду.
func (s *Session) Bootstrap(ctx context.Context) {
	const op = "session.Bootstrap"

	lg := log.From(ctx)

	creds := s.store.Tokens()
	if !creds.HasAccess() {
		s.store.Clear()
		return
	}

	if s.store.CurrentUser() != nil {
		return
	}

	if _, err := s.FetchUserProfile(ctx, creds.AccessToken); err != nil {
		lg.Warn("bootstrap_profile_fetch_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
	}
}

// post доставляет уведомление, если приёмник сконфигурирован.
func (s *Session) post(n Notice) {
	if s.notify != nil {
		s.notify(n)
	}
}

func (s *Session) setProfileLoading(v bool) {
	s.mu.Lock()
	s.profileLoading = v
	s.mu.Unlock()
}
