package coord

import (
	"context"
	"time"
)

// Store — интерфейс координационного store.
//
// Семантика TTL: ttl > 0 задаёт время жизни ключа, ttl == 0 — ключ
// не истекает. Get для истёкшего ключа возвращает ErrNotFound.
type Store interface {
	// Get возвращает значение ключа. ErrNotFound, если ключа нет.
	Get(ctx context.Context, key string) (string, error)

	// Set записывает значение ключа с TTL.
	Set(ctx context.Context, key, value string, ttl time.Duration) error

	// SetNX атомарно записывает значение, только если ключа ещё нет.
	// Возвращает true, если запись произошла.
	SetNX(ctx context.Context, key, value string, ttl time.Duration) (bool, error)

	// Delete удаляет ключ. Удаление отсутствующего ключа — не ошибка.
	Delete(ctx context.Context, key string) error

	// Keys возвращает все живые ключи с данным префиксом.
	Keys(ctx context.Context, prefix string) ([]string, error)
}
