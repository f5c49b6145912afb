package coord

import "errors"

// Ошибки координационного store.
var (
	// ErrNotFound — ключ отсутствует или истёк по TTL.
	ErrNotFound = errors.New("key not found")
)
