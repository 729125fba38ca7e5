package stub

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Router собирает http.Handler заглушки с подключёнными middleware и роутами.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(
		chimw.Recoverer,
		chimw.RequestID,
	)

	r.Get("/livez", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", s.metrics.handler())

	// Поверхность, которую потребляет клиент.
	r.Post("/token/", s.handleToken)
	r.Post("/token/refresh/", s.handleRefresh)
	r.Post("/token/blacklist/", s.handleBlacklist)
	r.Get("/users/me/", s.requireAuth(s.handleMe))
	r.Patch("/users/me/", s.requireAuth(s.handleUpdateMe))
	r.Get("/products/", s.handleProducts)
	r.Post("/cart/", s.requireAuth(s.handleAddCartItem))

	return r
}

// requireAuth проверяет заголовок Authorization: Bearer и кладёт учётную
// запись в запрос через замыкание.
func (s *Server) requireAuth(next func(w http.ResponseWriter, r *http.Request, acc *account)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		auth := r.Header.Get("Authorization")

		const prefix = "Bearer "
		if !strings.HasPrefix(auth, prefix) || len(auth) <= len(prefix) {
			writeDetail(w, http.StatusUnauthorized, "Authentication credentials were not provided.")
			return
		}

		claims, err := s.verify(strings.TrimSpace(auth[len(prefix):]), tokenTypeAccess)
		if err != nil {
			writeDetail(w, http.StatusUnauthorized, "Given token not valid for any token type")
			return
		}

		s.mu.RLock()
		acc := s.accounts[claims.Username]
		s.mu.RUnlock()

		if acc == nil {
			writeDetail(w, http.StatusUnauthorized, "User not found")
			return
		}

		next(w, r, acc)
	}
}
