package worker

import "errors"

// Ошибки worker'а.
var (
	// ErrExecutionTimeout — выполнение задачи превысило таймаут.
	ErrExecutionTimeout = errors.New("task execution timeout")
)
