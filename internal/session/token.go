package session

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// tokenClaims — клеймы, которые клиент читает из токена.
// Клиент не владеет ключом подписи, поэтому разбор выполняется без проверки
// подписи: токену всё равно доверяет только бэкенд, нам из него нужны лишь
// срок действия и имя пользователя для отображения.
type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// decodeClaims разбирает компактный трёхсегментный токен без проверки подписи.
func decodeClaims(token string) (*tokenClaims, error) {
	const op = "session.token.decodeClaims"

	var claims tokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &claims, nil
}

// IsExpired сообщает, истёк ли токен с учётом допуска на расхождение часов.
//
// Допуск вычитается из «сейчас»: токен считается истёкшим, только если его
// exp оказался раньше, чем now-skew. Токен, у которого клейм exp отсутствует
// или не разбирается, считается истёкшим — безопаснее отправить клиента на
// повторную аутентификацию, чем молча доверять повреждённому токену.
func IsExpired(token string, skew time.Duration) bool {
	claims, err := decodeClaims(token)
	if err != nil || claims.ExpiresAt == nil {
		return true
	}

	return claims.ExpiresAt.Time.Before(time.Now().Add(-skew))
}

// usernameClaim возвращает имя пользователя из токена (клейм username,
// при его отсутствии — sub). Пустая строка, если токен не разбирается.
func usernameClaim(token string) string {
	claims, err := decodeClaims(token)
	if err != nil {
		return ""
	}

	if claims.Username != "" {
		return claims.Username
	}

	return claims.Subject
}
