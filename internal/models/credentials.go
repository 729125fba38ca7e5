package models

// Credentials — пара токенов, которой владеет хранилище сессии.
//
// Описание:
//   - AccessToken — короткоживущий JWT, прикладывается к каждому запросу API;
//   - RefreshToken — долгоживущий токен для выпуска нового access-токена
//     без повторного ввода пароля.
//
// Пустая строка означает отсутствие токена.
type Credentials struct {
	// AccessToken — JWT для авторизации запросов.
	AccessToken string `json:"accessToken"`
	// RefreshToken — токен для обновления пары.
	RefreshToken string `json:"refreshToken"`
}

// HasAccess сообщает, есть ли access-токен.
// Именно этот признак определяет «аутентифицирован» для потребителей,
// независимо от того, успел ли загрузиться профиль.
func (c Credentials) HasAccess() bool {
	return c.AccessToken != ""
}

// HasRefresh сообщает, есть ли refresh-токен.
// Без него сессия не может самовосстановиться после истечения access-токена.
func (c Credentials) HasRefresh() bool {
	return c.RefreshToken != ""
}
