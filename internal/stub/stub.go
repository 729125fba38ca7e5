// stub — локальный dev-бэкенд, реализующий REST-поверхность, которую
// потребляет клиент: выпуск/обновление/отзыв токенов, профиль пользователя,
// каталог и корзину. Все данные живут в памяти процесса; заглушка
// предназначена исключительно для разработки и ручной проверки SDK,
// никакой продакшен-семантики у неё нет.
package stub

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pribylovaa/storefront-client/internal/config"
	"github.com/pribylovaa/storefront-client/internal/models"
)

// account — учётная запись заглушки.
type account struct {
	ID           int64
	Username     string
	PasswordHash string
	Profile      models.UserProfile
}

// Server — состояние dev-бэкенда.
type Server struct {
	cfg config.StubConfig
	log *slog.Logger

	mu          sync.RWMutex
	accounts    map[string]*account // username -> account
	blacklisted map[string]struct{} // jti отозванных refresh-токенов
	products    []product
	carts       map[int64][]cartItem

	metrics *metrics
}

type cartItem struct {
	ID        int64
	ProductID int64
	Quantity  int64
}

// New создаёт заглушку с предзаполненными пользователями и каталогом.
func New(cfg config.StubConfig, log *slog.Logger) (*Server, error) {
	s := &Server{
		cfg:         cfg,
		log:         log,
		accounts:    make(map[string]*account),
		blacklisted: make(map[string]struct{}),
		carts:       make(map[int64][]cartItem),
		metrics:     newMetrics(),
	}

	if err := s.seed(); err != nil {
		return nil, err
	}

	return s, nil
}

// seed наполняет заглушку тестовыми пользователями и товарами.
func (s *Server) seed() error {
	users := []struct {
		id       int64
		username string
		password string
		email    string
	}{
		{1, "alice", "password123", "alice@example.com"},
		{2, "bob", "password123", "bob@example.com"},
	}

	for _, u := range users {
		hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		s.accounts[u.username] = &account{
			ID:           u.id,
			Username:     u.username,
			PasswordHash: string(hash),
			Profile: models.UserProfile{
				ID:       u.id,
				Username: u.username,
				Email:    u.email,
				Customer: models.CustomerProfile{Country: "Unknown"},
			},
		}
	}

	s.products = []product{
		{ID: 1, Name: "Catan", Slug: "catan", Brand: "Kosmos", Price: "39.99", FinalPrice: "39.99", StockQuantity: 12, IsAvailable: true},
		{ID: 2, Name: "Carcassonne", Slug: "carcassonne", Brand: "Hans im Glueck", Price: "29.99", FinalPrice: "26.99", DiscountPercent: "10.00", StockQuantity: 5, IsAvailable: true},
		{ID: 3, Name: "Azul", Slug: "azul", Brand: "Next Move", Price: "34.99", FinalPrice: "34.99", StockQuantity: 0, IsAvailable: false},
	}

	return nil
}

// checkPassword сверяет пароль с хэшем учётной записи.
func checkPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// now выделено для единообразия использования UTC во всех выдаваемых клеймах.
func now() time.Time {
	return time.Now().UTC()
}
