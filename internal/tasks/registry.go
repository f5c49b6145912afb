package tasks

import (
	"fmt"
	"sort"
	"sync"
)

// Registry — реестр задач worker'а.
//
// Позволяет регистрировать и получать реализации Handler по имени.
// Потокобезопасен.
type Registry struct {
	mu    sync.RWMutex
	tasks map[string]Handler
}

// NewRegistry создаёт пустой реестр.
func NewRegistry() *Registry {
	return &Registry{
		tasks: make(map[string]Handler),
	}
}

// DefaultRegistry создаёт реестр со всеми стандартными задачами.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Регистрируем все стандартные задачи
	r.Register(NewCheckSecurityUpdatesTask())
	r.Register(NewCleanupUnusedPackagesTask())
	r.Register(NewUpdatePackageCacheTask())
	r.Register(NewPingTask())
	r.Register(NewConnectivityCheckTask())

	return r
}

// Register регистрирует задачу в реестре.
// Если задача с таким именем уже существует, она будет перезаписана.
func (r *Registry) Register(task Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks[task.Name()] = task
}

// Get возвращает задачу по имени.
// Возвращает ErrTaskNotFound, если задача не найдена.
func (r *Registry) Get(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, exists := r.tasks[name]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrTaskNotFound, name)
	}

	return task, nil
}

// Has проверяет, зарегистрирована ли задача.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, exists := r.tasks[name]
	return exists
}

// Names возвращает отсортированный список зарегистрированных задач.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tasks))
	for name := range r.tasks {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count возвращает количество зарегистрированных задач.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}
