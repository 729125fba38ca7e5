package stub

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const (
	tokenTypeAccess  = "access"
	tokenTypeRefresh = "refresh"
)

var errInvalidToken = errors.New("invalid token")

// stubClaims — клеймы выдаваемых токенов. Форма повторяет контракт,
// который ожидает клиент: exp в Unix-секундах и клейм username.
type stubClaims struct {
	Username  string `json:"username"`
	UserID    int64  `json:"user_id"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// issuePair выпускает пару access+refresh для учётной записи.
func (s *Server) issuePair(acc *account) (access, refresh string, err error) {
	const op = "stub.token.issuePair"

	access, err = s.sign(acc, tokenTypeAccess, s.cfg.AccessTokenTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	refresh, err = s.sign(acc, tokenTypeRefresh, s.cfg.RefreshTokenTTL)
	if err != nil {
		return "", "", fmt.Errorf("%s: %w", op, err)
	}

	return access, refresh, nil
}

func (s *Server) sign(acc *account, tokenType string, ttl time.Duration) (string, error) {
	claims := stubClaims{
		Username:  acc.Username,
		UserID:    acc.ID,
		TokenType: tokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   acc.Username,
			ExpiresAt: jwt.NewNumericDate(now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

// verify разбирает и проверяет токен, требуя ожидаемый token_type.
func (s *Server) verify(tokenStr, wantType string) (*stubClaims, error) {
	const op = "stub.token.verify"

	token, err := jwt.ParseWithClaims(tokenStr, &stubClaims{},
		func(t *jwt.Token) (interface{}, error) {
			if t.Method != jwt.SigningMethodHS256 {
				return nil, fmt.Errorf("%s: %w", op, errInvalidToken)
			}

			return []byte(s.cfg.JWTSecret), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, errInvalidToken)
	}

	claims, ok := token.Claims.(*stubClaims)
	if !ok || !token.Valid || claims.TokenType != wantType {
		return nil, fmt.Errorf("%s: %w", op, errInvalidToken)
	}

	if claims.TokenType == tokenTypeRefresh {
		s.mu.RLock()
		_, revoked := s.blacklisted[claims.ID]
		s.mu.RUnlock()

		if revoked {
			return nil, fmt.Errorf("%s: %w", op, errInvalidToken)
		}
	}

	return claims, nil
}
