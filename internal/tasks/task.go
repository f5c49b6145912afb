package tasks

import (
	"context"
	"errors"
)

// Ошибки задач.
var (
	// ErrTaskNotFound — имя задачи не найдено в реестре.
	ErrTaskNotFound = errors.New("task not found")

	// ErrCommandFailed — системная команда завершилась с ошибкой.
	ErrCommandFailed = errors.New("command failed")

	// ErrToolMissing — требуемая утилита отсутствует на хосте.
	ErrToolMissing = errors.New("required tool not found")
)

// Handler — интерфейс именованной задачи.
//
// Каждая задача (check-security-updates, ping, ...) реализует этот
// интерфейс и регистрируется в Registry под своим именем.
type Handler interface {
	// Name возвращает имя задачи.
	Name() string

	// Execute выполняет задачу и возвращает результат.
	// Задача должна проверять ctx.Done() для graceful shutdown.
	Execute(ctx context.Context, req *Request) (*Result, error)
}

// Request — входные данные выполнения задачи.
type Request struct {
	// Schedule — имя schedule, породившего dispatch (пустое при
	// ручном запуске).
	Schedule string

	// Params — параметры из конфигурации schedule.
	Params map[string]any
}

// Result — результат выполнения задачи.
type Result struct {
	// Outputs — выходные данные задачи, попадают в лог выполнения.
	Outputs map[string]any
}

// NewResult создаёт Result с outputs.
func NewResult(outputs map[string]any) *Result {
	if outputs == nil {
		outputs = make(map[string]any)
	}
	return &Result{Outputs: outputs}
}

// ParamString извлекает строковый параметр.
func ParamString(params map[string]any, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return defaultVal
}

// ParamInt извлекает числовой параметр.
func ParamInt(params map[string]any, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return defaultVal
}
