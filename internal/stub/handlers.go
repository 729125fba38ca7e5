package stub

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/pribylovaa/storefront-client/internal/models"
	"github.com/pribylovaa/storefront-client/internal/pkg/redact"
)

// product — позиция каталога заглушки.
type product struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Slug             string `json:"slug"`
	Brand            string `json:"brand"`
	ShortDescription string `json:"short_description"`
	Price            string `json:"price"`
	DiscountPercent  string `json:"discount_percent"`
	FinalPrice       string `json:"final_price"`
	StockQuantity    int64  `json:"stock_quantity"`
	IsAvailable      bool   `json:"is_available"`
}

func parseInt(s string) int64 {
	v, _ := strconv.ParseInt(s, 10, 64)
	return v
}

// writeJSON — единый ответ JSON с нужным Content-Type.
func writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(value)
}

// writeDetail — ответ об ошибке в форме DRF: {"detail": "..."}.
func writeDetail(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

// decodeStrict — строгий JSON-декодер: запрещаем неизвестные поля.
func decodeStrict(r *http.Request, value any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(value)
}

// handleToken — POST /token/: обмен логина и пароля на пару токенов.
func (s *Server) handleToken(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeStrict(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	s.mu.RLock()
	acc := s.accounts[in.Username]
	s.mu.RUnlock()

	if acc == nil || !checkPassword(acc.PasswordHash, in.Password) {
		s.log.Info("token_rejected",
			slog.String("username", in.Username),
			slog.String("password", redact.Password()),
		)
		writeDetail(w, http.StatusUnauthorized, "No active account found with the given credentials")
		return
	}

	access, refresh, err := s.issuePair(acc)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Token issue failed.")
		return
	}

	s.metrics.tokensIssued.WithLabelValues("password").Inc()
	s.log.Info("token_issued", slog.String("username", acc.Username))

	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

// handleRefresh — POST /token/refresh/: выпуск новой пары по refresh-токену.
// Заглушка ротирует refresh-токен и отзывает предъявленный.
func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := decodeStrict(r, &in); err != nil || in.Refresh == "" {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	claims, err := s.verify(in.Refresh, tokenTypeRefresh)
	if err != nil {
		s.metrics.refreshes.WithLabelValues("rejected").Inc()
		writeDetail(w, http.StatusUnauthorized, "Token is invalid or expired")
		return
	}

	s.mu.RLock()
	acc := s.accounts[claims.Username]
	s.mu.RUnlock()

	if acc == nil {
		s.metrics.refreshes.WithLabelValues("rejected").Inc()
		writeDetail(w, http.StatusUnauthorized, "User not found")
		return
	}

	access, refresh, err := s.issuePair(acc)
	if err != nil {
		writeDetail(w, http.StatusInternalServerError, "Token issue failed.")
		return
	}

	// Ротация: предъявленный refresh-токен отзывается.
	s.mu.Lock()
	s.blacklisted[claims.ID] = struct{}{}
	s.mu.Unlock()

	s.metrics.tokensIssued.WithLabelValues("refresh").Inc()
	s.metrics.refreshes.WithLabelValues("ok").Inc()

	writeJSON(w, http.StatusOK, map[string]string{"access": access, "refresh": refresh})
}

// handleBlacklist — POST /token/blacklist/: отзыв refresh-токена.
// Повторный отзыв уже отозванного токена не считается ошибкой.
func (s *Server) handleBlacklist(w http.ResponseWriter, r *http.Request) {
	var in struct {
		Refresh string `json:"refresh"`
	}
	if err := decodeStrict(r, &in); err != nil || in.Refresh == "" {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	claims, err := s.verify(in.Refresh, tokenTypeRefresh)
	if err != nil {
		// Уже отозванный или просроченный токен: отзыв идемпотентен.
		writeJSON(w, http.StatusOK, map[string]string{})
		return
	}

	s.mu.Lock()
	s.blacklisted[claims.ID] = struct{}{}
	s.mu.Unlock()

	s.log.Info("token_blacklisted", slog.String("username", claims.Username))

	writeJSON(w, http.StatusOK, map[string]string{})
}

// handleMe — GET /users/me/.
func (s *Server) handleMe(w http.ResponseWriter, _ *http.Request, acc *account) {
	s.mu.RLock()
	profile := acc.Profile
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, profile)
}

// handleUpdateMe — PATCH /users/me/: частичное обновление профиля.
func (s *Server) handleUpdateMe(w http.ResponseWriter, r *http.Request, acc *account) {
	var in struct {
		FirstName *string                 `json:"first_name"`
		LastName  *string                 `json:"last_name"`
		Email     *string                 `json:"email"`
		Customer  *models.CustomerProfile `json:"customer_profile"`
	}
	if err := decodeStrict(r, &in); err != nil {
		writeDetail(w, http.StatusBadRequest, "Malformed request body.")
		return
	}

	s.mu.Lock()
	if in.FirstName != nil {
		acc.Profile.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		acc.Profile.LastName = *in.LastName
	}
	if in.Email != nil {
		acc.Profile.Email = *in.Email
	}
	if in.Customer != nil {
		acc.Profile.Customer = *in.Customer
	}
	profile := acc.Profile
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, profile)
}

// handleProducts — GET /products/: страница каталога в форме {results, count}.
func (s *Server) handleProducts(w http.ResponseWriter, r *http.Request) {
	search := strings.ToLower(r.URL.Query().Get("search"))

	s.mu.RLock()
	items := make([]product, 0, len(s.products))
	for _, p := range s.products {
		if search != "" && !strings.Contains(strings.ToLower(p.Name), search) {
			continue
		}
		items = append(items, p)
	}
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]any{
		"results": items,
		"count":   len(items),
	})
}

// handleAddCartItem — POST /cart/: добавление позиции в корзину.
// Принимает JSON и multipart/form-data (клиент проверяет оба пути).
func (s *Server) handleAddCartItem(w http.ResponseWriter, r *http.Request, acc *account) {
	var productID, quantity int64

	ct := r.Header.Get("Content-Type")
	switch {
	case strings.HasPrefix(ct, "multipart/form-data"):
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			writeDetail(w, http.StatusBadRequest, "Malformed multipart body.")
			return
		}
		productID = parseInt(r.FormValue("product_id"))
		quantity = parseInt(r.FormValue("quantity"))
	default:
		var in struct {
			ProductID int64 `json:"product_id"`
			Quantity  int64 `json:"quantity"`
		}
		if err := decodeStrict(r, &in); err != nil {
			writeDetail(w, http.StatusBadRequest, "Malformed request body.")
			return
		}
		productID, quantity = in.ProductID, in.Quantity
	}

	if quantity <= 0 {
		quantity = 1
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var found *product
	for i := range s.products {
		if s.products[i].ID == productID {
			found = &s.products[i]
			break
		}
	}
	if found == nil {
		writeDetail(w, http.StatusNotFound, "Product not found.")
		return
	}

	item := cartItem{
		ID:        int64(len(s.carts[acc.ID]) + 1),
		ProductID: productID,
		Quantity:  quantity,
	}
	s.carts[acc.ID] = append(s.carts[acc.ID], item)

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":                item.ID,
		"product":           *found,
		"quantity":          quantity,
		"price_at_addition": found.Price,
		"subtotal":          found.Price,
	})
}
