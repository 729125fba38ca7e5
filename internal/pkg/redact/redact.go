// redact — маскировка секретов в логах.
package redact

import "strings"

// Email маскирует локальную часть адреса, оставляя домен.
func Email(s string) string {
	parts := strings.Split(s, "@")
	if len(parts) != 2 {
		return "***"
	}

	local, domain := parts[0], parts[1]
	if len(local) > 2 {
		local = local[:2] + "***"
	} else {
		local = "***"
	}

	return local + "@" + domain
}

// Token заменяет значение токена плейсхолдером: сами токены в логи не попадают.
func Token() string { return "[REDACTED_TOKEN]" }

// Password заменяет пароль плейсхолдером.
func Password() string { return "[REDACTED_PASSWORD]" }
