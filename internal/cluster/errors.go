package cluster

import "errors"

// Ошибки кластерного слоя.
var (
	// ErrNotRegistered — heartbeat до регистрации worker'а.
	ErrNotRegistered = errors.New("worker not registered")
)
