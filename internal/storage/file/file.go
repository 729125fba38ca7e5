// file — долговременное хранилище учётных данных в JSON-файле.
//
// Формат файла повторяет ключи клиентского хранилища исходной системы:
// accessToken, refreshToken, currentUser. Запись выполняется write-through
// при каждой мутации: сначала обновляется состояние в памяти, затем файл
// перезаписывается целиком через временный файл и rename, чтобы читатель
// с диска никогда не увидел частично записанное состояние.
//
// Ошибка записи на носитель не прерывает вызывающего: она логируется
// предупреждением, и действующей истиной до конца процесса остаётся
// состояние в памяти.
package file

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/pribylovaa/storefront-client/internal/models"
)

// persisted — сериализуемая форма состояния.
type persisted struct {
	AccessToken  string              `json:"accessToken,omitempty"`
	RefreshToken string              `json:"refreshToken,omitempty"`
	CurrentUser  *models.UserProfile `json:"currentUser,omitempty"`
}

// Store — файловое хранилище учётных данных.
type Store struct {
	path string
	log  *slog.Logger

	mu    sync.RWMutex
	creds models.Credentials
	user  *models.UserProfile
}

// New открывает хранилище по пути path и восстанавливает состояние из файла,
// если он существует. Повреждённый файл трактуется как пустое состояние:
// сессия в этом случае начинается анонимной, а не падает.
func New(path string, log *slog.Logger) (*Store, error) {
	const op = "storage.file.New"

	if path == "" {
		return nil, fmt.Errorf("%s: empty path", op)
	}
	if log == nil {
		log = slog.Default()
	}

	s := &Store{path: path, log: log}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return s, nil
		}

		return nil, fmt.Errorf("%s: read %q: %w", op, path, err)
	}

	var p persisted
	if err := json.Unmarshal(data, &p); err != nil {
		log.Warn("credentials_file_corrupted",
			slog.String("op", op),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return s, nil
	}

	s.creds = models.Credentials{AccessToken: p.AccessToken, RefreshToken: p.RefreshToken}
	s.user = p.CurrentUser

	return s, nil
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

	s.flushLocked()
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
	} else {
		u := *user
		s.user = &u
	}

	s.flushLocked()
}

// Clear удаляет токены и профиль из памяти и с диска.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.creds = models.Credentials{}
	s.user = nil

	s.flushLocked()
}

// flushLocked перезаписывает файл текущим состоянием. Вызывается под s.mu.
func (s *Store) flushLocked() {
	const op = "storage.file.flush"

	p := persisted{
		AccessToken:  s.creds.AccessToken,
		RefreshToken: s.creds.RefreshToken,
		CurrentUser:  s.user,
	}

	data, err := json.Marshal(p)
	if err != nil {
		s.log.Warn("credentials_marshal_failed",
			slog.String("op", op),
			slog.String("err", err.Error()),
		)
		return
	}

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		s.warnWriteFailed(op, err)
		return
	}
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		s.warnWriteFailed(op, err)
		return
	}
	if err := os.Rename(tmp, s.path); err != nil {
		s.warnWriteFailed(op, err)
		return
	}
}

func (s *Store) warnWriteFailed(op string, err error) {
	s.log.Warn("credentials_write_failed",
		slog.String("op", op),
		slog.String("path", s.path),
		slog.String("err", err.Error()),
	)
}
