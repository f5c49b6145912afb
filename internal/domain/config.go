package domain

import (
	"fmt"
	"sort"
)

// ScheduleSpec — именованная cron-задача кластера.
//
// Schedules объявляются в конфигурации кластера и оцениваются
// встроенным планировщиком каждого worker'а. Ключ Name уникален
// в пределах одного снапшота конфигурации.
type ScheduleSpec struct {
	// Name — уникальное имя schedule (ключ для lock и last-run state).
	Name string `json:"name" yaml:"name"`

	// Cron — cron-выражение (5 полей, опционально 6 с секундами).
	// Примеры:
	//   "0 2 * * *"   — каждый день в 02:00
	//   "*/5 * * * *" — каждые 5 минут
	Cron string `json:"cron" yaml:"cron"`

	// Task — идентификатор задачи, которая будет отправлена
	// целевым worker'ам (см. internal/tasks).
	Task string `json:"task" yaml:"task"`

	// Targets — селекторы целевых worker'ов. Итоговое множество
	// целей — объединение совпадений всех селекторов.
	Targets []Target `json:"targets" yaml:"targets"`

	// Params — произвольные параметры, передаваемые задаче.
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty"`

	// Description — описание для операторов.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Enabled — выключенные schedules планировщик игнорирует.
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// Target — одна цель schedule: селектор worker'ов.
type Target struct {
	Selector Selector `json:"selector" yaml:"selector"`
}

// HostConfig — хост в топологии кластера.
type HostConfig struct {
	Hostname string            `json:"hostname" yaml:"hostname"`
	Address  string            `json:"address,omitempty" yaml:"address,omitempty"`
	Roles    []string          `json:"roles,omitempty" yaml:"roles,omitempty"`
	Labels   map[string]string `json:"labels,omitempty" yaml:"labels,omitempty"`
	Enabled  bool              `json:"enabled" yaml:"enabled"`
}

// HasRole проверяет, назначена ли хосту роль.
func (h HostConfig) HasRole(role string) bool {
	for _, r := range h.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// RoleConfig — роль в топологии кластера.
type RoleConfig struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Tasks       []string `json:"tasks,omitempty" yaml:"tasks,omitempty"`
}

// ClusterConfig — полная конфигурация кластера.
//
// Источник истины — YAML-файл, редактируемый через CLI.
// Планировщику нужна только часть schedules — она публикуется
// в координационный store как ConfigSnapshot (см. Snapshot).
type ClusterConfig struct {
	Name        string                  `json:"name" yaml:"name"`
	Description string                  `json:"description,omitempty" yaml:"description,omitempty"`
	Hosts       map[string]HostConfig   `json:"hosts,omitempty" yaml:"hosts,omitempty"`
	Roles       map[string]RoleConfig   `json:"roles,omitempty" yaml:"roles,omitempty"`
	Schedules   map[string]ScheduleSpec `json:"schedules,omitempty" yaml:"schedules,omitempty"`
}

// NewClusterConfig создаёт пустую конфигурацию с инициализированными map'ами.
func NewClusterConfig(name string) *ClusterConfig {
	return &ClusterConfig{
		Name:      name,
		Hosts:     make(map[string]HostConfig),
		Roles:     make(map[string]RoleConfig),
		Schedules: make(map[string]ScheduleSpec),
	}
}

// AddHost добавляет или перезаписывает хост.
func (c *ClusterConfig) AddHost(h HostConfig) {
	if c.Hosts == nil {
		c.Hosts = make(map[string]HostConfig)
	}
	c.Hosts[h.Hostname] = h
}

// RemoveHost удаляет хост. Возвращает false, если хоста не было.
func (c *ClusterConfig) RemoveHost(hostname string) bool {
	if _, ok := c.Hosts[hostname]; !ok {
		return false
	}
	delete(c.Hosts, hostname)
	return true
}

// AddRole добавляет или перезаписывает роль.
func (c *ClusterConfig) AddRole(r RoleConfig) {
	if c.Roles == nil {
		c.Roles = make(map[string]RoleConfig)
	}
	c.Roles[r.Name] = r
}

// RemoveRole удаляет роль и снимает её со всех хостов.
// Возвращает false, если роли не было.
func (c *ClusterConfig) RemoveRole(name string) bool {
	if _, ok := c.Roles[name]; !ok {
		return false
	}
	for hostname, host := range c.Hosts {
		kept := host.Roles[:0]
		for _, r := range host.Roles {
			if r != name {
				kept = append(kept, r)
			}
		}
		host.Roles = kept
		c.Hosts[hostname] = host
	}
	delete(c.Roles, name)
	return true
}

// AddSchedule добавляет или перезаписывает schedule.
func (c *ClusterConfig) AddSchedule(s ScheduleSpec) {
	if c.Schedules == nil {
		c.Schedules = make(map[string]ScheduleSpec)
	}
	c.Schedules[s.Name] = s
}

// RemoveSchedule удаляет schedule. Возвращает false, если его не было.
func (c *ClusterConfig) RemoveSchedule(name string) bool {
	if _, ok := c.Schedules[name]; !ok {
		return false
	}
	delete(c.Schedules, name)
	return true
}

// Validate проверяет целостность конфигурации.
// Возвращает список проблем (пустой список — конфигурация валидна).
// Синтаксис cron-выражений проверяется отдельно (scheduler.ValidateCronExpr),
// domain не зависит от cron-парсера.
func (c *ClusterConfig) Validate() []string {
	var problems []string

	for hostname, host := range c.Hosts {
		if host.Hostname != hostname {
			problems = append(problems, fmt.Sprintf("host %q: hostname field is %q", hostname, host.Hostname))
		}
		for _, role := range host.Roles {
			if _, ok := c.Roles[role]; !ok {
				problems = append(problems, fmt.Sprintf("host %q has undefined role %q", hostname, role))
			}
		}
	}

	for name, sched := range c.Schedules {
		if sched.Name != name {
			problems = append(problems, fmt.Sprintf("schedule %q: name field is %q", name, sched.Name))
		}
		if sched.Cron == "" {
			problems = append(problems, fmt.Sprintf("schedule %q has empty cron expression", name))
		}
		if sched.Task == "" {
			problems = append(problems, fmt.Sprintf("schedule %q has empty task", name))
		}
		for _, target := range sched.Targets {
			if target.Selector.Role == "" {
				continue
			}
			if _, ok := c.Roles[target.Selector.Role]; !ok {
				problems = append(problems, fmt.Sprintf("schedule %q targets undefined role %q", name, target.Selector.Role))
			}
		}
	}

	return problems
}

// Snapshot строит снапшот конфигурации для публикации в store.
// Schedules отсортированы по имени для детерминированного вывода.
func (c *ClusterConfig) Snapshot() *ConfigSnapshot {
	schedules := make([]ScheduleSpec, 0, len(c.Schedules))
	for _, s := range c.Schedules {
		schedules = append(schedules, s)
	}
	sort.Slice(schedules, func(i, j int) bool { return schedules[i].Name < schedules[j].Name })

	return &ConfigSnapshot{
		Name: c.Name,
		Spec: SnapshotSpec{Schedules: schedules},
	}
}

// ConfigSnapshot — read-only снапшот конфигурации, который планировщик
// читает из store каждый цикл. Пишет его только админ-CLI.
type ConfigSnapshot struct {
	Name string       `json:"name"`
	Spec SnapshotSpec `json:"spec"`
}

// SnapshotSpec — полезная часть снапшота.
type SnapshotSpec struct {
	Schedules []ScheduleSpec `json:"schedules"`
}
