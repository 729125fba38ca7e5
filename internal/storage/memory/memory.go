// memory — хранилище учётных данных в памяти процесса.
// Используется в тестах и в сценариях, где персистентность не нужна.
package memory

import (
	"sync"

	"github.com/pribylovaa/storefront-client/internal/models"
)

// Store — потокобезопасное in-memory хранилище.
type Store struct {
	mu    sync.RWMutex
	creds models.Credentials
	user  *models.UserProfile
}

// New создаёт пустое хранилище.
func New() *Store {
	return &Store{}
}

// Tokens возвращает текущую пару токенов.
func (s *Store) Tokens() models.Credentials {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.creds
}

// SetTokens сохраняет пару токенов; пустой refresh оставляет прежний.
func (s *Store) SetTokens(access, refresh string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds.AccessToken = access
	if refresh != "" {
		s.creds.RefreshToken = refresh
	}
}

// CurrentUser возвращает кэшированный профиль или nil.
func (s *Store) CurrentUser() *models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return nil
	}

	u := *s.user
	return &u
}

// SetCurrentUser кэширует профиль.
func (s *Store) SetCurrentUser(user *models.UserProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user == nil {
		s.user = nil
		return
	}

	u := *user
	s.user = &u
}

// Clear удаляет токены и профиль.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = models.Credentials{}
	s.user = nil
}
