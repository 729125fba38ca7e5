package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pribylovaa/storefront-client/internal/models"
	"github.com/pribylovaa/storefront-client/internal/storage/memory"
)

// backend — управляемый фейковый бэкенд для тестов сессии.
type backend struct {
	srv *httptest.Server

	profileStatus int32 // статус ответа /users/me/
	profileHits   int32
	refreshHits   int32
	blacklistHits int32

	// Параметры ответа /token/refresh/; выставляются до первого запроса.
	refreshStatus  int
	refreshAccess  string
	refreshRefresh string
	refreshDelay   time.Duration
}

func newBackend(t *testing.T, username string) *backend {
	t.Helper()

	b := &backend{refreshStatus: http.StatusOK}
	atomic.StoreInt32(&b.profileStatus, http.StatusOK)

	mux := http.NewServeMux()
	mux.HandleFunc("/users/me/", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&b.profileHits, 1)

		status := int(atomic.LoadInt32(&b.profileStatus))
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(models.UserProfile{
			ID:       1,
			Username: username,
			Email:    username + "@example.com",
		})
	})
	mux.HandleFunc("/token/refresh/", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&b.refreshHits, 1)

		if b.refreshDelay > 0 {
			time.Sleep(b.refreshDelay)
		}

		if b.refreshStatus != http.StatusOK {
			w.WriteHeader(b.refreshStatus)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"access":  b.refreshAccess,
			"refresh": b.refreshRefresh,
		})
	})
	mux.HandleFunc("/token/blacklist/", func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&b.blacklistHits, 1)
		w.WriteHeader(http.StatusOK)
	})

	b.srv = httptest.NewServer(mux)
	t.Cleanup(b.srv.Close)

	return b
}

func newTestSession(t *testing.T, b *backend, notify func(Notice)) (*Session, *memory.Store) {
	t.Helper()

	store := memory.New()
	sess := New(store, Config{
		BaseURL: b.srv.URL,
		Notify:  notify,
	})

	return sess, store
}

func TestLogin_OK(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice")

	var notices []Notice
	sess, store := newTestSession(t, b, func(n Notice) { notices = append(notices, n) })

	access := makeUserToken(t, "alice", time.Now().Add(time.Hour))
	refresh := makeUserToken(t, "alice", time.Now().Add(24*time.Hour))

	user, err := sess.Login(context.Background(), access, refresh)
	require.NoError(t, err)
	require.NotNil(t, user)
	require.Equal(t, "alice", user.Username)

	creds := store.Tokens()
	require.Equal(t, access, creds.AccessToken)
	require.Equal(t, refresh, creds.RefreshToken)

	require.Equal(t, StateAuthenticated, sess.State())
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, "alice", sess.Username())

	require.Len(t, notices, 1)
	require.Equal(t, SeveritySuccess, notices[0].Severity)
	require.Equal(t, "Welcome back, alice!", notices[0].Message)
}

func TestLogin_ProfileUnauthorized_ForcesLogout(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice")
	atomic.StoreInt32(&b.profileStatus, http.StatusUnauthorized)

	sess, store := newTestSession(t, b, nil)

	access := makeUserToken(t, "alice", time.Now().Add(time.Hour))
	refresh := makeUserToken(t, "alice", time.Now().Add(24*time.Hour))

	_, err := sess.Login(context.Background(), access, refresh)
	require.Error(t, err)
	require.ErrorIs(t, err, ErrUnauthorized)

	require.Equal(t, StateAnonymous, sess.State())
	require.False(t, store.Tokens().HasAccess())
	require.Nil(t, store.CurrentUser())
}

func TestLogin_ProfileTransientFailure_DoesNotLogout(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice")
	atomic.StoreInt32(&b.profileStatus, http.StatusInternalServerError)

	var notices []Notice
	sess, store := newTestSession(t, b, func(n Notice) { notices = append(notices, n) })

	access := makeUserToken(t, "alice", time.Now().Add(time.Hour))

	user, err := sess.Login(context.Background(), access, "")
	require.NoError(t, err)
	require.Nil(t, user)

	// Вход состоялся: токен на месте, профиль догрузится позже.
	require.True(t, sess.IsAuthenticated())
	require.Equal(t, StateAuthenticating, sess.State())
	require.True(t, store.Tokens().HasAccess())

	// Приветствие по клейму из токена: профиль недоступен.
	require.Len(t, notices, 1)
	require.Equal(t, "Welcome back, alice!", notices[0].Message)
}

func TestLogout_Idempotent(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice")
	sess, store := newTestSession(t, b, nil)

	access := makeUserToken(t, "alice", time.Now().Add(time.Hour))
	refresh := makeUserToken(t, "alice", time.Now().Add(24*time.Hour))

	_, err := sess.Login(context.Background(), access, refresh)
	require.NoError(t, err)

	sess.Logout(context.Background())

	require.Equal(t, StateAnonymous, sess.State())
	require.False(t, store.Tokens().HasAccess())
	require.False(t, store.Tokens().HasRefresh())
	require.Nil(t, store.CurrentUser())
	require.Equal(t, int32(1), atomic.LoadInt32(&b.blacklistHits))

	// Повторный выход не паникует и не меняет конечное состояние.
	sess.Logout(context.Background())

	require.Equal(t, StateAnonymous, sess.State())
	require.False(t, store.Tokens().HasAccess())
	// Без refresh-токена второй вызов не ходит на эндпойнт отзыва.
	require.Equal(t, int32(1), atomic.LoadInt32(&b.blacklistHits))
}

func TestLogout_BlacklistFailureSwallowed(t *testing.T) {
	t.Parallel()

	// Бэкенд недоступен: локальная очистка всё равно обязана пройти.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)

	store := memory.New()
	store.SetTokens(
		makeUserToken(t, "alice", time.Now().Add(time.Hour)),
		makeUserToken(t, "alice", time.Now().Add(24*time.Hour)),
	)

	sess := New(store, Config{BaseURL: srv.URL})
	sess.Logout(context.Background())

	require.Equal(t, StateAnonymous, sess.State())
	require.False(t, store.Tokens().HasAccess())
}

func TestFetchUserProfile_NoToken(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice")
	sess, _ := newTestSession(t, b, nil)

	_, err := sess.FetchUserProfile(context.Background(), "")
	require.Error(t, err)
	require.ErrorIs(t, err, ErrNoAccessToken)
	require.Equal(t, int32(0), atomic.LoadInt32(&b.profileHits))
}

func TestBootstrap_LoadsMissingProfile(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice")

	store := memory.New()
	store.SetTokens(makeUserToken(t, "alice", time.Now().Add(time.Hour)), "")

	sess := New(store, Config{BaseURL: b.srv.URL})
	require.Equal(t, StateAuthenticating, sess.State())

	sess.Bootstrap(context.Background())

	require.Equal(t, StateAuthenticated, sess.State())
	require.NotNil(t, store.CurrentUser())
	require.Equal(t, int32(1), atomic.LoadInt32(&b.profileHits))
}

func TestBootstrap_CachedProfileSkipsNetwork(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice")

	store := memory.New()
	store.SetTokens(makeUserToken(t, "alice", time.Now().Add(time.Hour)), "")
	store.SetCurrentUser(&models.UserProfile{ID: 1, Username: "alice"})

	sess := New(store, Config{BaseURL: b.srv.URL})
	sess.Bootstrap(context.Background())

	require.Equal(t, StateAuthenticated, sess.State())
	require.Equal(t, int32(0), atomic.LoadInt32(&b.profileHits))
}

func TestBootstrap_NoToken_CleansUp(t *testing.T) {
	t.Parallel()

	b := newBackend(t, "alice")

	store := memory.New()
	// Осиротевший профиль без токена не должен пережить Bootstrap.
	store.SetCurrentUser(&models.UserProfile{ID: 1, Username: "alice"})

	sess := New(store, Config{BaseURL: b.srv.URL})
	sess.Bootstrap(context.Background())

	require.Equal(t, StateAnonymous, sess.State())
	require.Nil(t, store.CurrentUser())
}
