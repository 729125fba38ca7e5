// storage задаёт контракт хранилища учётных данных сессии.
//
// Хранилище — единственный владелец пары токенов и кэшированного профиля.
// Основные аспекты:
//   - чтение синхронное и не ходит в сеть;
//   - SetTokens/Clear применяются атомарно с точки зрения конкурентного
//     читателя: видна либо полностью старая, либо полностью новая пара,
//     никогда не смесь;
//   - каждая мутация сразу сбрасывается в долговременное хранилище
//     (write-through), чтобы перезапуск процесса восстановил сессию;
//   - ошибка записи на носитель не фатальна: хранилище логирует предупреждение,
//     а состояние в памяти остаётся действующей истиной до конца процесса.
package storage

import "github.com/pribylovaa/storefront-client/internal/models"

// Store — контракт хранилища учётных данных.
type Store interface {
	// Tokens возвращает текущую пару токенов.
	Tokens() models.Credentials
	// SetTokens сохраняет пару токенов. Пустой refresh означает «оставить
	// прежний» (бэкенд может не ротировать refresh-токен при обновлении).
	SetTokens(access, refresh string)
	// CurrentUser возвращает кэшированный профиль или nil.
	CurrentUser() *models.UserProfile
	// SetCurrentUser кэширует профиль пользователя.
	SetCurrentUser(user *models.UserProfile)
	// Clear удаляет пару токенов и кэшированный профиль.
	Clear()
}
